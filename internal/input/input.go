// Package input provides interactive terminal prompts.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Prompt asks for text input on w and reads the answer from r. An empty
// answer or a read error returns defaultValue.
//
// Example:
//
//	dir := input.Prompt(os.Stdin, os.Stdout, "Output directory", "reports")
//	// Displays: Output directory (reports): _
func Prompt(r io.Reader, w io.Writer, message, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprint(w, promptStyle.Render(message)+" "+
			hintStyle.Render(fmt.Sprintf("(%s)", defaultValue))+": ")
	} else {
		fmt.Fprint(w, promptStyle.Render(message)+": ")
	}

	answer, ok := readLine(r)
	if !ok || answer == "" {
		return defaultValue
	}
	return answer
}

// Confirm asks a yes/no question. y and yes (any case) answer yes; an empty
// answer or a read error returns defaultYes.
func Confirm(r io.Reader, w io.Writer, message string, defaultYes bool) bool {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}

	fmt.Fprint(w, promptStyle.Render(message)+" "+hintStyle.Render(hint)+": ")

	answer, ok := readLine(r)
	if !ok || answer == "" {
		return defaultYes
	}

	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func readLine(r io.Reader) (string, bool) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}
