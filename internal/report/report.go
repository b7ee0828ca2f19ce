// Package report writes normalized files as JSON, YAML or a text summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/simonhull/firebird-suite/magpie/internal/output"
	"github.com/simonhull/firebird-suite/magpie/pkg/config"
	"github.com/simonhull/firebird-suite/magpie/pkg/model"
)

// Encode writes v to w in the given format (json or yaml).
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported encoding format %q", format)
	}
}

// Write renders a normalized file. The text format is a per-compilation
// summary table; json and yaml carry the full model.
func Write(w io.Writer, format string, file *model.File) error {
	if format == config.FormatText {
		_, err := io.WriteString(w, Summary(file)+"\n")
		return err
	}
	return Encode(w, format, file)
}

// FileName returns the output name for a report: the report's base name
// with a ".normalized.<format>" suffix.
func FileName(reportPath, format string) string {
	base := strings.TrimSuffix(filepath.Base(reportPath), filepath.Ext(reportPath))
	ext := format
	if format == config.FormatText {
		ext = "txt"
	}
	return base + ".normalized." + ext
}

// WriteFile writes a normalized file into dir and returns the path written.
func WriteFile(dir, format string, file *model.File) (string, error) {
	return writeFile(dir, FileName(file.Path, format), format, file)
}

// WriteFiles writes every file into dir and returns the paths written, in
// order. Reports sharing a base name get a numeric suffix ("stats-2") so no
// output overwrites another from the same run.
func WriteFiles(dir, format string, files []*model.File) ([]string, error) {
	used := make(map[string]bool, len(files))
	written := make([]string, 0, len(files))

	for _, f := range files {
		name := FileName(f.Path, format)
		for n := 2; used[name]; n++ {
			name = suffixed(f.Path, format, n)
		}
		used[name] = true

		path, err := writeFile(dir, name, format, f)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func suffixed(reportPath, format string, n int) string {
	name := FileName(reportPath, format)
	base := strings.TrimSuffix(filepath.Base(reportPath), filepath.Ext(reportPath))
	return base + "-" + strconv.Itoa(n) + strings.TrimPrefix(name, base)
}

func writeFile(dir, name, format string, file *model.File) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(f, format, file); err != nil {
		return "", err
	}
	return path, f.Close()
}

// SummaryHeaders are the columns of Summary.
var SummaryHeaders = []string{
	"Compilation", "Hash", "Modules", "Chunks", "Assets", "Entrypoints", "Packages", "Graph", "Cycles",
}

// SummaryRows returns one row per compilation, children indented under
// their parents.
func SummaryRows(file *model.File) [][]string {
	depth := make(map[string]int, len(file.Compilations))
	rows := make([][]string, 0, len(file.Compilations))

	for _, c := range file.Compilations {
		d := 0
		if c.IsChild {
			d = depth[c.Parent] + 1
		}
		depth[c.Hash] = d

		name := c.Name
		if name == "" {
			name = "(unnamed)"
		}

		nodes, cycles := 0, 0
		if c.Graph != nil {
			s := c.Graph.Stats()
			nodes, cycles = s.Nodes, s.Cycles
		}

		rows = append(rows, []string{
			strings.Repeat("  ", d) + name,
			shortHash(c.Hash),
			strconv.Itoa(len(c.Modules)),
			strconv.Itoa(len(c.Chunks)),
			strconv.Itoa(len(c.Assets)),
			strconv.Itoa(len(c.Entrypoints)),
			strconv.Itoa(len(c.Packages)),
			strconv.Itoa(nodes),
			strconv.Itoa(cycles),
		})
	}
	return rows
}

// Summary renders the compilations of a file as a table.
func Summary(file *model.File) string {
	return file.Path + "\n" + output.RenderTable(SummaryHeaders, SummaryRows(file))
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
