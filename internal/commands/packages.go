package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/magpie/internal/output"
	"github.com/simonhull/firebird-suite/magpie/internal/report"
	"github.com/simonhull/firebird-suite/magpie/pkg/config"
	"github.com/simonhull/firebird-suite/magpie/pkg/model"
)

func packagesCmd(s *settings) *cobra.Command {
	var hash string
	var duplicates bool

	cmd := &cobra.Command{
		Use:   "packages [report]",
		Short: "List the packages bundled by a build",
		Long: `List every package found under node_modules with its installed
instances, versions and the modules importing each instance.

Example:
  magpie packages stats.json
  magpie packages stats.json --duplicates`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := s.normalizeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c, err := selectCompilation(f, hash)
			if err != nil {
				return err
			}

			pkgs := c.Packages
			if duplicates {
				pkgs = duplicated(pkgs)
			}

			if s.cfg.Output.Format != config.FormatText {
				return report.Encode(cmd.OutOrStdout(), s.cfg.Output.Format, pkgs)
			}

			if len(pkgs) == 0 {
				output.Info("No packages found")
				return nil
			}

			instances := 0
			rows := make([][]string, 0, len(pkgs))
			for _, p := range pkgs {
				for _, inst := range p.Instances {
					instances++
					rows = append(rows, []string{
						p.Name,
						inst.Path,
						yesNo(inst.IsRoot),
						orDash(inst.Version),
						strconv.Itoa(len(inst.Modules)),
						importers(c, inst),
					})
				}
			}

			output.Table([]string{"Package", "Instance", "Root", "Version", "Modules", "Imported by"}, rows)
			output.Info(fmt.Sprintf("%d packages, %d instances", len(pkgs), instances))
			return nil
		},
	}

	cmd.Flags().StringVarP(&hash, "compilation", "C", "", "Compilation hash (default: root compilation)")
	cmd.Flags().BoolVarP(&duplicates, "duplicates", "d", false, "Only show packages with more than one instance")

	return cmd
}

func duplicated(pkgs []*model.Package) []*model.Package {
	out := make([]*model.Package, 0)
	for _, p := range pkgs {
		if len(p.Instances) > 1 {
			out = append(out, p)
		}
	}
	return out
}

// importers names up to three modules importing an instance.
func importers(c *model.Compilation, inst *model.Instance) string {
	const limit = 3

	names := make([]string, 0, limit)
	for _, id := range inst.Reasons {
		if len(names) == limit {
			break
		}
		name := id
		if m := c.ResolveModule(id); m != nil && m.Name != "" {
			name = m.Name
		}
		names = append(names, name)
	}

	if extra := len(inst.Reasons) - len(names); extra > 0 {
		names = append(names, fmt.Sprintf("+%d more", extra))
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
