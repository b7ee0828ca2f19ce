package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/magpie/internal/output"
	"github.com/simonhull/firebird-suite/magpie/pkg/resolve"
)

func resolveCmd(s *settings) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "resolve [plugin|reporter] [alias]",
		Short: "Resolve a validator plugin or reporter package",
		Long: `Resolve a validator plugin or reporter by its full or short alias,
looking in node_modules from the resolution root upwards.

Example:
  magpie resolve plugin webpack
  magpie resolve reporter @statoscope/console --from ./app`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := resolve.ParseKind(args[0])
			if err != nil {
				return err
			}

			root := s.cfg.Resolve.Root
			if cmd.Flags().Changed("from") {
				root = from
			}

			output.Verbose(fmt.Sprintf("Trying %s", strings.Join(resolve.Aliases(kind, args[1]), ", ")))

			name, err := resolve.AliasPackage(kind, args[1], root)
			if err != nil {
				var resErr *resolve.ResolutionError
				if errors.As(err, &resErr) {
					output.Error(resErr.Error())
					for _, line := range strings.Split(strings.TrimSpace(resErr.Hint()), "\n") {
						output.Step(line)
					}
				}
				return err
			}

			output.Success(fmt.Sprintf("%s → %s", args[1], name))
			if path, ok := resolve.Locate(name, root); ok {
				output.Step(path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", ".", "Directory to resolve from (default: resolve.root)")

	return cmd
}
