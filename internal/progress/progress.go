// Package progress shows a spinner on interactive terminals while work runs.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Run calls fn while a spinner labelled message animates on w. When w is
// not a terminal fn runs without any output.
func Run(ctx context.Context, w io.Writer, message string, fn func(context.Context) error) error {
	if !IsTerminal(w) {
		return fn(ctx)
	}

	p := tea.NewProgram(newModel(message),
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithContext(ctx),
	)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		// Spinner failures never fail the work.
		_, _ = p.Run()
	}()

	err := fn(ctx)

	p.Send(doneMsg{err: err})
	<-stopped

	return err
}

type model struct {
	spinner spinner.Model
	message string
	done    bool
	err     error
}

type doneMsg struct {
	err error
}

func newModel(message string) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &model{
		spinner: s,
		message: message,
	}
}

func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *model) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("❌ %s\n", m.message)
		}
		return fmt.Sprintf("✅ %s\n", m.message)
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), m.message)
}
