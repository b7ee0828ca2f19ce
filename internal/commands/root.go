package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/magpie"
	"github.com/simonhull/firebird-suite/magpie/internal/output"
	"github.com/simonhull/firebird-suite/magpie/internal/progress"
	"github.com/simonhull/firebird-suite/magpie/pkg/config"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
	"github.com/simonhull/firebird-suite/magpie/pkg/model"
	"github.com/simonhull/firebird-suite/magpie/pkg/normalize"
	"github.com/simonhull/firebird-suite/magpie/pkg/resource"
)

// settings is the state shared by every command: persistent flags and the
// configuration they override.
type settings struct {
	verbose    bool
	configPath string
	format     string
	workers    int

	cfg    *config.Config
	log    logger.Logger
	stderr io.Writer
}

// RootCmd creates and returns the root command for the magpie CLI
func RootCmd() *cobra.Command {
	s := &settings{}

	cmd := &cobra.Command{
		Use:   "magpie",
		Short: "Normalize and inspect bundler build reports",
		Long: `Magpie reads webpack-style stats reports and turns them into a
cross-linked model of compilations, modules, chunks, assets, entrypoints
and packages.

Use it to:
• Normalize reports into JSON or YAML for further tooling
• List packages and their duplicated instances
• Inspect the module graph reachable from entrypoints
• Compare the packages of two builds`,
		Version:      magpie.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.load(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().StringVarP(&s.configPath, "config", "c", "", "Path to configuration file (default magpie.yaml)")
	cmd.PersistentFlags().StringVarP(&s.format, "format", "f", config.FormatText, "Output format: text, json or yaml")
	cmd.PersistentFlags().IntVarP(&s.workers, "workers", "w", 0, "Parallel workers (0 = one per CPU)")

	cmd.AddCommand(normalizeCmd(s))
	cmd.AddCommand(packagesCmd(s))
	cmd.AddCommand(graphCmd(s))
	cmd.AddCommand(diffCmd(s))
	cmd.AddCommand(resolveCmd(s))
	cmd.AddCommand(initCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// Execute runs the root command, cancelling work on interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return RootCmd().ExecuteContext(ctx)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Magpie v%s\n", magpie.Version)
		},
	}
}

// load reads the configuration, applies flag overrides and sets up output
// and logging.
func (s *settings) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("format") {
		cfg.Output.Format = s.format
	}
	if cmd.Flags().Changed("workers") {
		cfg.Normalize.Workers = s.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg

	output.SetWriter(cmd.OutOrStdout())
	output.SetVerbose(s.verbose)

	level := logger.ParseLevel(cfg.Log.Level)
	if s.verbose {
		level = logger.LevelDebug
	}
	s.stderr = cmd.ErrOrStderr()
	s.log = logger.NewLogger(level, s.stderr)
	logger.SetDefault(s.log)

	return nil
}

func (s *settings) normalizer() (*normalize.Normalizer, error) {
	cache, err := resource.NewCache(s.cfg.Normalize.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating resource cache: %w", err)
	}

	return normalize.New(cache).
		WithWorkers(s.cfg.Normalize.Workers).
		WithLogger(s.log), nil
}

// normalizeFiles normalizes reports and checks them in strict mode.
func (s *settings) normalizeFiles(ctx context.Context, paths []string) ([]*model.File, error) {
	n, err := s.normalizer()
	if err != nil {
		return nil, err
	}

	var files []*model.File
	work := func(ctx context.Context) error {
		var err error
		files, err = n.NormalizeAll(ctx, paths)
		return err
	}

	// Debug logs share stderr with the spinner.
	if s.verbose {
		err = work(ctx)
	} else {
		err = progress.Run(ctx, s.stderr, fmt.Sprintf("Normalizing %d report(s)", len(paths)), work)
	}
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		if err := s.check(f); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (s *settings) normalizeFile(ctx context.Context, path string) (*model.File, error) {
	files, err := s.normalizeFiles(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	return files[0], nil
}

// check reports dangling references; in strict mode they fail the file.
func (s *settings) check(f *model.File) error {
	dangling := 0
	for _, c := range f.Compilations {
		for _, ref := range c.Validate() {
			dangling++
			s.log.Warn("Dangling reference",
				logger.F("file", f.Path),
				logger.F("compilation", c.Hash),
				logger.F("ref", ref.String()))
		}
	}

	if dangling > 0 && s.cfg.Normalize.Strict {
		return fmt.Errorf("%s: %d dangling references", f.Path, dangling)
	}
	return nil
}

// selectCompilation returns the compilation with the given hash, or the
// root compilation when hash is empty.
func selectCompilation(f *model.File, hash string) (*model.Compilation, error) {
	if hash == "" {
		if root := f.Root(); root != nil {
			return root, nil
		}
		return nil, fmt.Errorf("%s: no compilations", f.Path)
	}

	c := f.ResolveCompilation(hash)
	if c == nil {
		return nil, fmt.Errorf("%s: no compilation with hash %q", f.Path, hash)
	}
	return c, nil
}
