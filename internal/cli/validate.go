package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/funcbind/internal/compiler"
	"github.com/roach88/funcbind/internal/registry"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                       `json:"valid"`
	Functions int                        `json:"functions"`
	Errors    []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <source-dir>",
		Short: "Validate function definitions without writing anything",
		Long: `Validate CUE function definitions without generating output files.

Resolves every binding and checks each function's structure: exactly one
trigger, at most one context parameter, and unique binding names.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, sourceDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	result, err := ValidateSourceDir(sourceDir, opts.catalog())
	if err != nil {
		return outputCommandError(formatter, err)
	}

	formatter.VerboseLog("Validated %d function(s) in %s", result.Functions, sourceDir)
	opts.logger().Debug("validated functions",
		zap.Int("functions", result.Functions),
		zap.Int("errors", len(result.Errors)),
	)

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// ValidateSourceDir compiles and validates every function in dir, collecting
// all problems. The error is non-nil only when nothing could be loaded.
func ValidateSourceDir(dir string, catalog *registry.Catalog) (*ValidationResult, error) {
	loadResult, loadErrors := LoadFunctions([]string{dir}, catalog, LoadModeCollectAll)
	if loadResult == nil {
		return nil, loadErrors[0]
	}

	result := &ValidationResult{Functions: len(loadResult.Functions)}
	for _, err := range loadErrors {
		code, message := parseCompileError(err)
		line := 0
		if loadErr, ok := err.(*LoadError); ok && loadErr.Pos.IsValid() {
			line = loadErr.Pos.Line()
		}
		result.Errors = append(result.Errors, compiler.ValidationError{
			Field:   "load",
			Message: message,
			Code:    code,
			Line:    line,
		})
	}
	for _, fn := range loadResult.Functions {
		result.Errors = append(result.Errors, compiler.Validate(fn)...)
	}
	result.Valid = len(result.Errors) == 0
	return result, nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result *ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	formatter.Status(true, "All %d function(s) valid", result.Functions)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, result *ValidationResult) error {
	errs := result.Errors
	cliErrors := make([]CLIError, len(errs))
	for i, e := range errs {
		cliErrors[i] = CLIError{Code: e.Code, Message: e.Message}
		if formatter.Format == "json" {
			continue
		}
		if e.Function != "" {
			cliErrors[i].Message = fmt.Sprintf("%s.%s: %s", e.Function, e.Field, e.Message)
		}
		if e.Line > 0 {
			cliErrors[i].Details = fmt.Sprintf("line %d", e.Line)
		}
	}

	if formatter.Format != "json" {
		fmt.Fprintf(formatter.Writer, "%s Validation failed\n\n", failMark())
	}
	if err := formatter.Errors(cliErrors, result); err != nil {
		return err
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
