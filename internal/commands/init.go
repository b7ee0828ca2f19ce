package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/magpie/internal/input"
	"github.com/simonhull/firebird-suite/magpie/internal/output"
	"github.com/simonhull/firebird-suite/magpie/pkg/config"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default magpie.yaml",
		Long: `Write a magpie.yaml with the default settings, asking before an
existing file is replaced.

Example:
  magpie init
  magpie init ./app --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path := filepath.Join(dir, config.FileName)

			_, err := os.Stat(path)
			switch {
			case err == nil && !force:
				msg := fmt.Sprintf("%s exists. Overwrite?", path)
				if !input.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), msg, false) {
					output.Info("Left existing configuration unchanged")
					return nil
				}
			case err != nil && !errors.Is(err, fs.ErrNotExist):
				return fmt.Errorf("checking %s: %w", path, err)
			}

			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
			if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
				return err
			}

			output.Success(fmt.Sprintf("Created %s", path))
			output.Step(fmt.Sprintf("Settings can be overridden with %s_* environment variables", config.EnvPrefix))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing magpie.yaml without asking")

	return cmd
}
