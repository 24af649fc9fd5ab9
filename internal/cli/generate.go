package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/funcbind/internal/codegen"
	"github.com/roach88/funcbind/internal/compiler"
	"github.com/roach88/funcbind/internal/config"
	"github.com/roach88/funcbind/internal/ir"
	"github.com/roach88/funcbind/internal/store"
)

// GenerateOptions holds flags for the generate command. Flags that are set
// override funcbind.yaml.
type GenerateOptions struct {
	*RootOptions
	Output    string
	Manifests string
	Package   string
	Qualifier string
	Cache     string
	NoCache   bool
	Force     bool
}

// GenerateResult lists what a generate run did with each artifact.
type GenerateResult struct {
	Functions int      `json:"functions"`
	Written   []string `json:"written"`
	Unchanged []string `json:"unchanged"`
	Removed   []string `json:"removed,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate [source-dir]",
		Short: "Write function.json manifests and the Go registration table",
		Long: `Compile and validate function definitions, then write one function.json
manifest per function and a Go registration table.

Settings come from funcbind.yaml (found by searching upward from the source
directory, or given with --config); flags override them. Artifacts whose
content is unchanged since the last run are skipped using the build cache.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runGenerate(opts, dir, len(args) == 1, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "directory for the registration table")
	cmd.Flags().StringVar(&opts.Manifests, "manifests", "", "directory for function.json manifests")
	cmd.Flags().StringVar(&opts.Package, "package", "", "package name of the registration table")
	cmd.Flags().StringVar(&opts.Qualifier, "qualifier", "", "local name of the bindings package in generated code")
	cmd.Flags().StringVar(&opts.Cache, "cache", "", "path of the build cache database")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "do not read or update the build cache")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "rewrite every artifact even if unchanged")

	return cmd
}

func runGenerate(opts *GenerateOptions, dir string, dirGiven bool, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := opts.resolveConfig(dir, dirGiven, cmd)
	if err != nil {
		return outputCommandError(formatter, &LoadError{Code: ErrCodeConfig, Message: err.Error()})
	}

	loadResult, loadErrors := LoadFunctions(cfg.SourceDirs(), opts.catalog(), LoadModeCollectAll)
	if loadResult == nil {
		return outputCommandError(formatter, loadErrors[0])
	}
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	var invalid []compiler.ValidationError
	for _, fn := range loadResult.Functions {
		invalid = append(invalid, compiler.Validate(fn)...)
	}
	if len(invalid) > 0 {
		return outputValidationErrors(formatter, &ValidationResult{Functions: len(loadResult.Functions), Errors: invalid})
	}

	var cache *store.Store
	if !opts.NoCache {
		cache, err = openCache(cfg.CachePath(), logger)
		if err != nil {
			return outputCommandError(formatter, &LoadError{Code: ErrCodeCache, Message: err.Error()})
		}
		defer cache.Close()
	}

	gen := codegen.New(cfg.Package, logger)
	gen.Qualifier = cfg.Qualifier

	a := &artifactWriter{cache: cache, force: opts.Force, logger: logger}
	result := &GenerateResult{Functions: len(loadResult.Functions), Written: []string{}, Unchanged: []string{}}
	digests := make(map[string]string, len(loadResult.Functions))

	for _, fn := range loadResult.Functions {
		digest, err := ir.ManifestDigest(ir.NewManifest(fn))
		if err != nil {
			return outputCommandError(formatter, &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Pos: fn.Pos})
		}
		digests[fn.Name] = digest

		art := store.Artifact{
			Path:       codegen.ManifestPath(cfg.ManifestDir(), fn),
			Kind:       store.KindManifest,
			Function:   fn.Name,
			FunctionID: ir.FunctionID(fn.Name),
			Digest:     digest,
		}
		wrote, err := a.write(ctx, art, func() error {
			_, err := gen.WriteManifest(cfg.ManifestDir(), fn)
			return err
		})
		if err != nil {
			return outputCommandError(formatter, err)
		}
		result.record(art.Path, wrote)
	}

	regDigest, err := ir.RegistrationDigest(cfg.Package, cfg.Qualifier, digests)
	if err != nil {
		return outputCommandError(formatter, err)
	}
	reg := store.Artifact{
		Path:   cfg.RegistrationPath(),
		Kind:   store.KindRegistrations,
		Digest: regDigest,
	}
	wrote, err := a.write(ctx, reg, func() error {
		return gen.WriteRegistrations(reg.Path, loadResult.Functions)
	})
	if err != nil {
		return outputCommandError(formatter, err)
	}
	result.record(reg.Path, wrote)

	if cache != nil {
		removed, err := a.prune(ctx, append(append([]string{}, result.Written...), result.Unchanged...))
		if err != nil {
			return outputCommandError(formatter, &LoadError{Code: ErrCodeCache, Message: err.Error()})
		}
		result.Removed = removed
	}

	return outputGenerateSuccess(formatter, result)
}

// resolveConfig loads funcbind.yaml and applies the flags that were set.
func (o *GenerateOptions) resolveConfig(dir string, dirGiven bool, cmd *cobra.Command) (*config.Config, error) {
	cfg, err := o.loadConfig(dir)
	if err != nil {
		return nil, err
	}

	abs := func(p string) string {
		if a, err := filepath.Abs(p); err == nil {
			return a
		}
		return p
	}
	if dirGiven {
		cfg.Sources = []string{abs(dir)}
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = abs(o.Output)
	}
	if flags.Changed("manifests") {
		cfg.Manifests = abs(o.Manifests)
	}
	if flags.Changed("package") {
		cfg.Package = o.Package
	}
	if flags.Changed("qualifier") {
		cfg.Qualifier = o.Qualifier
	}
	if flags.Changed("cache") {
		cfg.Cache = abs(o.Cache)
	}
	return cfg, nil
}

func openCache(path string, logger *zap.Logger) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return store.Open(path, logger)
}

// artifactWriter writes artifacts that are stale according to the cache.
type artifactWriter struct {
	cache  *store.Store
	force  bool
	logger *zap.Logger
}

// write calls emit unless art is recorded in the cache with the same digest
// and its file still exists. It reports whether emit ran.
func (a *artifactWriter) write(ctx context.Context, art store.Artifact, emit func() error) (bool, error) {
	art.GeneratorVersion = ir.Version

	if a.cache != nil && !a.force {
		fresh, err := a.cache.Fresh(ctx, art.Path, art.Digest, art.GeneratorVersion)
		if err != nil {
			return false, &LoadError{Code: ErrCodeCache, Message: err.Error()}
		}
		if fresh && fileExists(art.Path) {
			a.logger.Debug("artifact unchanged", zap.String("path", art.Path))
			return false, nil
		}
	}

	if err := emit(); err != nil {
		return false, &LoadError{Code: ErrCodeWriteFailed, Message: err.Error()}
	}
	if a.cache != nil {
		if err := a.cache.Put(ctx, art); err != nil {
			return false, &LoadError{Code: ErrCodeCache, Message: err.Error()}
		}
	}
	return true, nil
}

// prune deletes manifests recorded by an earlier run whose function no
// longer exists, and drops every cache record not in keep.
func (a *artifactWriter) prune(ctx context.Context, keep []string) ([]string, error) {
	kept := make(map[string]bool, len(keep))
	for _, p := range keep {
		kept[p] = true
	}

	all, err := a.cache.List(ctx)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, art := range all {
		if kept[art.Path] || art.Kind != store.KindManifest {
			continue
		}
		if err := os.Remove(art.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("removing stale manifest: %w", err)
		}
		// The function directory is removed only if nothing else is in it.
		_ = os.Remove(filepath.Dir(art.Path))
		a.logger.Debug("removed stale manifest", zap.String("function", art.Function), zap.String("path", art.Path))
		removed = append(removed, art.Path)
	}

	if _, err := a.cache.Prune(ctx, keep); err != nil {
		return nil, err
	}
	return removed, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (r *GenerateResult) record(path string, wrote bool) {
	if wrote {
		r.Written = append(r.Written, path)
	} else {
		r.Unchanged = append(r.Unchanged, path)
	}
}

// outputGenerateSuccess outputs the generate summary.
func outputGenerateSuccess(formatter *OutputFormatter, result *GenerateResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	formatter.Status(true, "Generated %d function(s): %d written, %d unchanged",
		result.Functions, len(result.Written), len(result.Unchanged))
	for _, p := range result.Written {
		fmt.Fprintf(formatter.Writer, "  %s %s\n", okMark(), p)
	}
	for _, p := range result.Unchanged {
		fmt.Fprintf(formatter.Writer, "  %s %s (unchanged)\n", skipMark(), p)
	}
	for _, p := range result.Removed {
		fmt.Fprintf(formatter.Writer, "  %s %s (removed)\n", failMark(), p)
	}
	return nil
}
