package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"userdir/cmd/userdir/ui"
	"userdir/internal/config"
	"userdir/internal/directory"
	"userdir/internal/logging"
	"userdir/internal/source"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	verbose    bool
	configPath string
	endpoint   string
	sourceFile string
	timeout    time.Duration

	// Logger, replaced once config is loaded
	logger = logging.Wrap(zap.NewNop())
)

// errReported marks a failure that has already been printed for the user.
var errReported = errors.New("error already reported")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "userdir",
	Short: "Browse a user directory in the terminal",
	Long: `userdir fetches user records from a JSON endpoint and shows them as
cards you can search, sort and expand.

Run without arguments to start the interactive directory.
Use "userdir list" to print the same view as a table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runInteractive,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the userdir version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "userdir %s\n", version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: .userdir/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Users endpoint URL (or set USERDIR_ENDPOINT)")
	rootCmd.PersistentFlags().StringVar(&sourceFile, "file", "", "Read users from a local JSON file instead of the endpoint")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Fetch timeout (default from config, 10s)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// loadConfig resolves configuration: file, then environment, then flags.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if endpoint != "" {
		cfg.Source.Endpoint = endpoint
	}
	if sourceFile != "" {
		cfg.Source.File = sourceFile
	}
	if timeout > 0 {
		cfg.Source.Timeout = timeout.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSource picks the file source when configured, the HTTP source otherwise.
func newSource(cfg *config.Config, log *logging.Logger) directory.Source {
	if cfg.UsesFile() {
		return source.NewFileSource(cfg.Source.File)
	}
	return source.NewHTTPSource(cfg.Source.Endpoint,
		source.WithTimeout(cfg.GetTimeout()),
		source.WithLogger(log.For(logging.CategorySource)),
		source.WithUserAgent("userdir/"+version),
	)
}

// sourceField describes where a source reads from, for log lines.
func sourceField(src directory.Source) zap.Field {
	switch s := src.(type) {
	case *source.FileSource:
		return zap.String("file", s.Path())
	case *source.HTTPSource:
		return zap.String("endpoint", s.Endpoint())
	default:
		return zap.Skip()
	}
}

func newController(cfg *config.Config, log *logging.Logger, src directory.Source) (*directory.Controller, error) {
	cmp, err := directory.NewCompareFunc(cfg.Sort.Collation, cfg.Sort.Locale)
	if err != nil {
		return nil, fmt.Errorf("invalid sort settings: %w", err)
	}
	return directory.NewController(src,
		directory.WithLogger(log.For(logging.CategoryDirectory)),
		directory.WithCompare(cmp),
	), nil
}

// runInteractive launches the directory TUI.
func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging, logging.Options{Interactive: true, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = log

	src := newSource(cfg, log)
	log.For(logging.CategoryBoot).Info("starting directory",
		zap.String("version", version),
		sourceField(src),
	)

	ctrl, err := newController(cfg, log, src)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	styles := ui.NewStyles(ui.ThemeFor(cfg.UI.Theme))
	page := ui.NewDirectoryPageModel(ctrl, styles, log.For(logging.CategoryUI))
	p := tea.NewProgram(page, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("directory UI failed: %w", err)
	}
	return nil
}
