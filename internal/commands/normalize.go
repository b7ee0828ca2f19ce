package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/magpie/internal/discover"
	"github.com/simonhull/firebird-suite/magpie/internal/output"
	"github.com/simonhull/firebird-suite/magpie/internal/report"
	"github.com/simonhull/firebird-suite/magpie/pkg/config"
)

func normalizeCmd(s *settings) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "normalize [path...]",
		Short: "Normalize build reports",
		Long: `Normalize one or more build reports. Directories are searched for
report files (see discover.patterns in magpie.yaml).

With --out, one normalized file per report is written to the directory;
otherwise a summary (text) or the full model (json, yaml) is printed.

Example:
  magpie normalize stats.json
  magpie normalize ./reports --format json --out ./normalized`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("out") {
				s.cfg.Output.Path = outDir
			}

			paths, err := discover.Reports(args, discover.Options{
				IgnoreDirs: s.cfg.Discover.IgnoreDirs,
				Patterns:   s.cfg.Discover.Patterns,
			})
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				output.Warn("No reports found")
				return nil
			}
			output.Verbose(fmt.Sprintf("Found %d report(s)", len(paths)))

			files, err := s.normalizeFiles(cmd.Context(), paths)
			if err != nil {
				return fmt.Errorf("normalization failed: %w", err)
			}

			format := s.cfg.Output.Format

			if s.cfg.Output.Path != "" {
				written, err := report.WriteFiles(s.cfg.Output.Path, format, files)
				for _, path := range written {
					output.Step(path)
				}
				if err != nil {
					return err
				}
				output.Success(fmt.Sprintf("Normalized %d report(s) into %s", len(files), s.cfg.Output.Path))
				return nil
			}

			if format == config.FormatText {
				for _, f := range files {
					output.Info(f.Path)
					output.Table(report.SummaryHeaders, report.SummaryRows(f))
				}
				return nil
			}

			if len(files) == 1 {
				return report.Encode(cmd.OutOrStdout(), format, files[0])
			}
			return report.Encode(cmd.OutOrStdout(), format, files)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Write normalized files to this directory")

	return cmd
}
