// Package commands implements the algodoc command line.
package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/algodoc/algodoc/internal/catalog/cache"
	"github.com/algodoc/algodoc/internal/catalog/discovery"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
	"github.com/algodoc/algodoc/internal/catalog/scanner"
	"github.com/algodoc/algodoc/internal/cli/config"
	"github.com/algodoc/algodoc/internal/logging"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	configFile string
	dir        string
	pkg        string
	logLevel   string
	logFormat  string
	format     string
	noColor    bool
}

// app is the state built once per invocation, before any command runs.
type app struct {
	flags globalFlags
	fs    afero.Fs

	cfg     *config.Config
	logger  *zap.Logger
	root    string
	scanner *scanner.Scanner
}

// Option configures the root command
type Option func(*app)

// WithFs replaces the filesystem used to read and write algorithm sources
func WithFs(fs afero.Fs) Option {
	return func(a *app) {
		a.fs = fs
	}
}

// silentError has already been reported to the user.
type silentError struct {
	error
}

// NewRootCommand creates the root command
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{fs: afero.NewOsFs(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}

	rootCmd := &cobra.Command{
		Use:   "algodoc",
		Short: "Algorithm catalog tooling for documented Go functions",
		Long: color.CyanString(`algodoc - algorithm metadata from Go doc comments

algodoc reads the "Algorithm:" blocks in the doc comments of a package of
Go functions, turns them into typed metadata records and writes them back
as source. Every generated file scans to the metadata it was generated from.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.flags.configFile, "config", "", "Configuration file (default: algodoc.yml in the project root)")
	flags.StringVarP(&a.flags.dir, "dir", "C", ".", "Project directory")
	flags.StringVarP(&a.flags.pkg, "package", "p", "", "Package directory below the library root")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&a.flags.logFormat, "log-format", "", "Log format: console or json")
	flags.StringVarP(&a.flags.format, "format", "f", "table", "Output format: table, json or yaml")
	flags.BoolVar(&a.flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewCompletionCommand())
	rootCmd.AddCommand(newScanCommand(a))
	rootCmd.AddCommand(newShowCommand(a))
	rootCmd.AddCommand(newGenerateCommand(a))
	rootCmd.AddCommand(newCheckCommand(a))
	rootCmd.AddCommand(newCallCommand(a))
	rootCmd.AddCommand(newNewCommand(a))
	rootCmd.AddCommand(newWatchCommand(a))
	rootCmd.AddCommand(newDocsCommand(a))
	rootCmd.AddCommand(newServeCommand(a))

	return rootCmd
}

// setup loads the configuration, applies flag overrides and builds the
// logger and scanner.
func (a *app) setup(cmd *cobra.Command) error {
	if a.flags.noColor {
		color.NoColor = true
	}

	base := a.flags.dir
	var cfg *config.Config
	var err error
	if a.flags.configFile != "" {
		base = filepath.Dir(a.flags.configFile)
		cfg, err = config.LoadFile(a.flags.configFile)
	} else {
		if found, ferr := config.FindRoot(base); ferr == nil {
			base = found
		}
		cfg, err = config.Load(base)
	}
	if err != nil {
		return err
	}

	changed := cmd.Flags().Changed
	if changed("package") {
		cfg.Library.Package = a.flags.pkg
	}
	if changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = a.flags.logFormat
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	root := cfg.Library.Root
	if !filepath.IsAbs(root) {
		root = filepath.Join(base, root)
	}

	store, err := cache.NewLRU[*scanner.Snapshot](cfg.Cache.Size)
	if err != nil {
		return fmt.Errorf("failed to create snapshot cache: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.root = root
	a.scanner = scanner.New(
		discovery.New(a.fs, root, discovery.WithLogger(logger)),
		scanner.WithStore(store),
		scanner.WithLabels(metadata.DefaultCategoryLabels().Merge(cfg.Labels)),
		scanner.WithLogger(logger),
	)

	logger.Debug("configuration loaded",
		zap.String("root", root),
		zap.String("package", cfg.Library.Package),
		zap.Int("cache_size", cfg.Cache.Size))
	return nil
}

// pkg returns the package to operate on: the positional argument when
// given, else the configured library package.
func (a *app) pkg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return a.cfg.Library.Package
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the algodoc version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			w := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)

			for _, row := range [][2]string{
				{"algodoc version: ", Version},
				{"Git commit: ", GitCommit},
				{"Build date: ", BuildDate},
				{"Go version: ", goVer},
			} {
				titleColor.Fprint(w, row[0])
				fmt.Fprintln(w, row[1])
			}
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
		return err
	}
	return nil
}

func reportError(w io.Writer, err error) {
	var silent silentError
	if errors.As(err, &silent) {
		return
	}
	errorColor := color.New(color.FgRed, color.Bold)
	errorColor.Fprintf(w, "Error: %v\n", err)
}
