package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/funcbind/internal/compiler"
	"github.com/roach88/funcbind/internal/ir"
	"github.com/roach88/funcbind/internal/registry"
)

// LoadMode controls how errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the functions loaded from one or more directories.
type LoadResult struct {
	Functions []*ir.Function // sorted by name
	FileCount int            // Number of CUE files found
}

// LoadError represents an error that occurred during loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadFunctions loads and compiles the function definitions of every
// directory in dirs. A nil result means nothing could be loaded; a non-nil
// result with errors holds the functions that did compile.
func LoadFunctions(dirs []string, catalog *registry.Catalog, mode LoadMode) (*LoadResult, []error) {
	c := compiler.New(catalog)
	result := &LoadResult{}
	var errs []error
	seen := make(map[string]token.Pos)

	for _, dir := range dirs {
		value, fileCount, err := loadDir(dir)
		if err != nil {
			return nil, []error{err}
		}
		result.FileCount += fileCount

		functionsVal := value.LookupPath(cue.ParsePath("function"))
		if !functionsVal.Exists() {
			continue
		}
		iter, iterErr := functionsVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating functions: %v", iterErr), Pos: functionsVal.Pos()})
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		for iter.Next() {
			fn, compileErr := c.CompileFunction(iter.Value())
			if compileErr != nil {
				errs = append(errs, convertCompileError(compileErr, "function."+iter.Label()))
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			if prev, dup := seen[fn.Name]; dup {
				errs = append(errs, &LoadError{
					Code:    ErrCodeDuplicate,
					Message: fmt.Sprintf("function %q already defined at %s", fn.Name, posString(prev)),
					Pos:     fn.Pos,
				})
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			seen[fn.Name] = fn.Pos
			result.Functions = append(result.Functions, fn)
		}
	}

	slices.SortFunc(result.Functions, func(a, b *ir.Function) int {
		return strings.Compare(a.Name, b.Name)
	})

	if len(result.Functions) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no functions found in " + strings.Join(dirs, ", ")})
	}

	return result, errs
}

// loadDir builds the CUE instance of one directory.
func loadDir(dir string) (cue.Value, int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("source directory not found: %s", dir)}
	}
	if err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing source directory: %v", err)}
	}
	if !info.IsDir() {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return value, len(cueFiles), nil
}

func posString(pos token.Pos) string {
	if !pos.IsValid() {
		return "unknown position"
	}
	return fmt.Sprintf("%s:%d:%d", pos.Filename(), pos.Line(), pos.Column())
}

// FindCUEFiles returns the .cue files directly inside dir. Subdirectories
// are separate CUE packages and are not loaded with dir.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapCompileErrorCode(compileErr),
			Message: fmt.Sprintf("%s: %s: %s", context, compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeDuplicate   = "E008" // Function defined twice
	ErrCodeConfig      = "E009" // Invalid funcbind.yaml
	ErrCodeCache       = "E010" // Build cache error

	// Binding resolution errors
	ErrCodeUnsupportedRole = "E210" // Role has no factory for its usage
	ErrCodeInvalidArgument = "E211" // Malformed attribute argument
	ErrCodeInvalidParam    = "E212" // Malformed parameter or return declaration
)

// MapCompileErrorCode maps a compiler error to an error code.
func MapCompileErrorCode(err *compiler.CompileError) string {
	var argErr *registry.ArgError
	switch {
	case errors.Is(err, registry.ErrUnsupportedRole):
		return ErrCodeUnsupportedRole
	case errors.As(err, &argErr):
		return ErrCodeInvalidArgument
	case err.Field == "cue":
		return ErrCodeBuildFailed
	case strings.HasPrefix(err.Field, "params") || strings.HasPrefix(err.Field, "returns"):
		return ErrCodeInvalidParam
	default:
		return ErrCodeGeneric
	}
}
