package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/funcbind/internal/config"
	"github.com/roach88/funcbind/internal/ir"
	"github.com/roach88/funcbind/internal/registry"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // explicit funcbind.yaml path
	NoColor bool

	// Logger is built from Verbose before any subcommand runs.
	Logger *zap.Logger
	// Catalog resolves binding roles. Nil means registry.Default().
	Catalog *registry.Catalog
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the funcbind CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "funcbind",
		Short: "funcbind - binding metadata for serverless functions",
		Long: `Resolve the parameters of serverless function definitions to host bindings.

funcbind compiles CUE function definitions, writes the function.json
manifests consumed by the function host, and generates a Go registration
table that rebuilds the same bindings at build time.`,
		Version:       ir.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.NoColor {
				color.NoColor = true
			}
			logger, err := newLogger(opts.Verbose)
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			opts.Logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Logger != nil {
				_ = opts.Logger.Sync()
			}
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "path to funcbind.yaml (default: search upward from the source directory)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRolesCommand(opts))

	return cmd
}

// newLogger returns a development logger writing to stderr when verbose,
// and a no-op logger otherwise.
func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// logger returns the configured logger, or a no-op logger when a subcommand
// runs without the root command (as in tests).
func (o *RootOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *RootOptions) catalog() *registry.Catalog {
	if o.Catalog == nil {
		return registry.Default()
	}
	return o.Catalog
}

// loadConfig returns the project configuration: the --config file if given,
// otherwise the nearest funcbind.yaml above dir, otherwise defaults rooted at dir.
func (o *RootOptions) loadConfig(dir string) (*config.Config, error) {
	if o.Config != "" {
		return config.LoadConfig(o.Config)
	}
	path, err := config.FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return config.Default(dir), nil
	}
	o.logger().Debug("using config", zap.String("path", path))
	return config.LoadConfig(path)
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			// Flag and argument errors never reached a formatter.
			fmt.Fprintln(os.Stderr, "Error:", err)
			return ExitCommandError
		}
		return exitErr.Code
	}
	return ExitSuccess
}
