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

// graphReport is the json/yaml form of the graph command.
type graphReport struct {
	Stats     model.GraphStats `json:"stats" yaml:"stats"`
	Roots     []string         `json:"roots" yaml:"roots"`
	Cycles    [][]string       `json:"cycles" yaml:"cycles"`
	Reachable []string         `json:"reachable,omitempty" yaml:"reachable,omitempty"`
}

func graphCmd(s *settings) *cobra.Command {
	var hash string
	var from string

	cmd := &cobra.Command{
		Use:   "graph [report]",
		Short: "Inspect the module graph reachable from entrypoints",
		Long: `Build the dependency graph of a compilation starting at its
entrypoints and report its size, depth and circular dependencies.

Example:
  magpie graph stats.json
  magpie graph stats.json --from /app/src/index.js`,
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

			g := c.Graph
			if g == nil {
				g = model.NewModuleGraph()
			}

			rep := graphReport{
				Stats:  g.Stats(),
				Roots:  g.Roots(),
				Cycles: g.Cycles(),
			}
			if from != "" {
				m := c.ResolveModule(from)
				if m == nil || g.Node(m.Identifier) == nil {
					return fmt.Errorf("module %q is not in the graph", from)
				}
				rep.Reachable = g.Reachable(m.Identifier)
			}

			if s.cfg.Output.Format != config.FormatText {
				return report.Encode(cmd.OutOrStdout(), s.cfg.Output.Format, rep)
			}

			output.Table(
				[]string{"Nodes", "Edges", "Roots", "Cycles", "Max depth"},
				[][]string{{
					strconv.Itoa(rep.Stats.Nodes),
					strconv.Itoa(rep.Stats.Edges),
					strconv.Itoa(rep.Stats.Roots),
					strconv.Itoa(rep.Stats.Cycles),
					strconv.Itoa(rep.Stats.MaxDepth),
				}},
			)

			output.Info("Roots:")
			for _, id := range rep.Roots {
				output.Step(fmt.Sprintf("%s (%s)", id, strings.Join(g.Node(id).Entries, ", ")))
			}

			if len(rep.Cycles) > 0 {
				output.Warn(fmt.Sprintf("%d circular dependencies:", len(rep.Cycles)))
				for _, cycle := range rep.Cycles {
					closed := append(append([]string(nil), cycle...), cycle[0])
					output.Step(strings.Join(closed, " → "))
				}
			}

			if rep.Reachable != nil {
				output.Info(fmt.Sprintf("%d modules reachable from %s", len(rep.Reachable), from))
				for _, id := range rep.Reachable {
					output.Verbose(id)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&hash, "compilation", "C", "", "Compilation hash (default: root compilation)")
	cmd.Flags().StringVar(&from, "from", "", "Also list the modules reachable from this module")

	return cmd
}
