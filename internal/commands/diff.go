package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/magpie/internal/output"
	"github.com/simonhull/firebird-suite/magpie/internal/report"
	"github.com/simonhull/firebird-suite/magpie/pkg/config"
	"github.com/simonhull/firebird-suite/magpie/pkg/diff"
	"github.com/simonhull/firebird-suite/magpie/pkg/model"
)

func diffCmd(s *settings) *cobra.Command {
	var unified bool

	cmd := &cobra.Command{
		Use:   "diff [before] [after]",
		Short: "Compare the packages of two builds",
		Long: `Compare the packages bundled by the root compilations of two
reports: packages added, removed, and packages whose installed instances
changed.

Example:
  magpie diff main.json feature.json
  magpie diff main.json feature.json --unified`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := s.normalizeFiles(cmd.Context(), args)
			if err != nil {
				return err
			}

			before, err := selectCompilation(files[0], "")
			if err != nil {
				return err
			}
			after, err := selectCompilation(files[1], "")
			if err != nil {
				return err
			}

			if unified {
				text, err := diff.Unified(before, after)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), text)
				return err
			}

			d := diff.Packages(before, after)

			if s.cfg.Output.Format != config.FormatText {
				return report.Encode(cmd.OutOrStdout(), s.cfg.Output.Format, d)
			}

			if d.Empty() {
				output.Success("No package changes")
				return nil
			}

			printChanges("Added", d.Added)
			printChanges("Removed", d.Removed)
			printChanges("Changed", d.Changed)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&unified, "unified", "u", false, "Print a unified diff of package instance listings")

	return cmd
}

func printChanges(title string, changes []diff.PackageChange) {
	if len(changes) == 0 {
		return
	}

	output.Info(fmt.Sprintf("%s (%d)", title, len(changes)))

	rows := make([][]string, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, []string{
			c.Package.Name,
			strconv.Itoa(len(c.Package.Instances)),
			instancePaths("+", c.Added),
			instancePaths("-", c.Removed),
		})
	}
	output.Table([]string{"Package", "Instances", "Added", "Removed"}, rows)
}

func instancePaths(sign string, instances []*model.Instance) string {
	if len(instances) == 0 {
		return "-"
	}
	lines := make([]string, 0, len(instances))
	for _, inst := range instances {
		line := sign + inst.Path
		if inst.Version != "" {
			line += "@" + inst.Version
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
