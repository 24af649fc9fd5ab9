package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/funcbind/internal/ir"
	"github.com/roach88/funcbind/pkg/bindings"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the manifest of every compiled function, keyed by
// function name.
type CompilationResult struct {
	Manifests map[string]*ir.Manifest `json:"manifests"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <source-dir>",
		Short: "Compile CUE function definitions to host manifests",
		Long: `Compile CUE function definitions and print their host manifests.

Every parameter is resolved against the binding registries and every
error is reported. Nothing is written unless --output is given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write all manifests as one JSON document to this file")

	return cmd
}

func runCompile(opts *CompileOptions, sourceDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	loadResult, loadErrors := LoadFunctions([]string{sourceDir}, opts.catalog(), LoadModeCollectAll)

	// Directory not found, no files, etc.
	if loadResult == nil {
		return outputCommandError(formatter, loadErrors[0])
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, sourceDir)

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := &CompilationResult{Manifests: make(map[string]*ir.Manifest, len(loadResult.Functions))}
	for _, fn := range loadResult.Functions {
		formatter.VerboseLog("Compiled function: %s", fn.Name)
		logger.Debug("compiled function",
			zap.String("function", fn.Name),
			zap.Int("params", len(fn.Params)),
			zap.Bool("disabled", fn.Disabled),
		)
		result.Manifests[fn.Name] = ir.NewManifest(fn)
	}

	if opts.Output != "" {
		if err := writeManifestsToFile(result, opts.Output); err != nil {
			return outputCommandError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing output file: %v", err)})
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	formatter.Status(true, "Compiled %d function(s)", len(loadResult.Functions))
	fmt.Fprintln(formatter.Writer)
	for _, fn := range loadResult.Functions {
		fmt.Fprintf(formatter.Writer, "  %s\n", describeFunction(fn))
	}
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote manifests to %s\n", opts.Output)
	}
	return nil
}

// describeFunction renders a one-line summary: name, trigger type and
// binding count.
func describeFunction(fn *ir.Function) string {
	trigger := "no trigger"
	if t := fn.Trigger(); t != nil {
		trigger, _ = bindings.Type(t)
	}
	suffix := ""
	if fn.Disabled {
		suffix = " (disabled)"
	}
	return fmt.Sprintf("%s: %s, %d binding(s)%s", fn.Name, trigger, len(fn.Bindings()), suffix)
}

// outputCommandError outputs a single command-level error.
func outputCommandError(formatter *OutputFormatter, err error) error {
	code, message := parseCompileError(err)
	_ = formatter.Error(code, message, nil)
	// Command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	cliErrors := make([]CLIError, len(errs))
	for i, err := range errs {
		code, message := parseCompileError(err)
		cliErrors[i] = CLIError{Code: code, Message: message}
		var loadErr *LoadError
		if formatter.Format != "json" && errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			cliErrors[i].Details = posString(loadErr.Pos)
		}
	}

	if formatter.Format != "json" {
		fmt.Fprintf(formatter.Writer, "%s Compilation failed\n\n", failMark())
	}
	if err := formatter.Errors(cliErrors, nil); err != nil {
		return err
	}

	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeManifestsToFile writes the compilation result to a file as indented JSON.
func writeManifestsToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifests: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
