package codegen

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/tools/imports"

	"github.com/roach88/funcbind/internal/ir"
	"github.com/roach88/funcbind/pkg/bindings"
)

// ManifestFile is the file name of a function's host manifest.
const ManifestFile = "function.json"

// Header is the first line of every generated Go file.
const Header = "// Code generated by funcbind. DO NOT EDIT."

// Generator writes host manifests and the Go registration table.
type Generator struct {
	// Package is the package clause of the registration file.
	Package string
	// Qualifier is the local name of the bindings package in the
	// registration file. Empty means bindings.DefaultQualifier.
	Qualifier string

	logger *zap.Logger
}

// New returns a generator for the given package. A nil logger is replaced
// with a no-op logger.
func New(pkg string, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{Package: pkg, logger: logger}
}

// Manifest renders fn's function.json document, indented, with a trailing newline.
func (g *Generator) Manifest(fn *ir.Function) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ir.NewManifest(fn)); err != nil {
		return nil, fmt.Errorf("function %s: encoding manifest: %w", fn.Name, err)
	}
	return buf.Bytes(), nil
}

// ManifestPath returns where fn's manifest is written under dir.
func ManifestPath(dir string, fn *ir.Function) string {
	return filepath.Join(dir, fn.Name, ManifestFile)
}

// WriteManifest writes fn's manifest to <dir>/<name>/function.json and
// returns the path written.
func (g *Generator) WriteManifest(dir string, fn *ir.Function) (string, error) {
	data, err := g.Manifest(fn)
	if err != nil {
		return "", err
	}
	path := ManifestPath(dir, fn)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	g.logger.Debug("wrote manifest",
		zap.String("function", fn.Name),
		zap.String("path", path),
		zap.Int("bindings", len(fn.Bindings())),
	)
	return path, nil
}

// Registrations renders the Go registration table for fns, sorted by
// function name and formatted. Context parameters are never emitted.
func (g *Generator) Registrations(fns []*ir.Function) ([]byte, error) {
	if g.Package == "" {
		return nil, fmt.Errorf("registration table: package name is required")
	}
	q := g.Qualifier
	if q == "" {
		q = bindings.DefaultQualifier
	}
	w := bindings.SourceWriter{Qualifier: q}

	sorted := slices.Clone(fns)
	slices.SortFunc(sorted, func(a, b *ir.Function) int {
		return cmp.Compare(a.Name, b.Name)
	})

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n\npackage %s\n\n", Header, g.Package)
	if q == bindings.DefaultQualifier {
		fmt.Fprintf(&buf, "import %q\n\n", bindings.ImportPath)
	} else {
		fmt.Fprintf(&buf, "import %s %q\n\n", q, bindings.ImportPath)
	}

	buf.WriteString("// Registrations lists every generated function with its host bindings.\n")
	if len(sorted) == 0 {
		fmt.Fprintf(&buf, "var Registrations = []%s.Registration{}\n", q)
	} else {
		fmt.Fprintf(&buf, "var Registrations = []%s.Registration{\n", q)
		for _, fn := range sorted {
			buf.WriteString("\t{\n")
			fmt.Fprintf(&buf, "\t\tName:     %s,\n", strconv.Quote(fn.Name))
			fmt.Fprintf(&buf, "\t\tDisabled: %t,\n", fn.Disabled)
			fmt.Fprintf(&buf, "\t\tBindings: []%s.Binding{\n", q)
			for _, b := range fn.Bindings() {
				fmt.Fprintf(&buf, "\t\t\t%s,\n", w.Source(b))
			}
			buf.WriteString("\t\t},\n")
			buf.WriteString("\t},\n")
		}
		buf.WriteString("}\n")
	}

	src, err := imports.Process(g.Package+".go", buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("formatting registration table: %w", err)
	}
	return src, nil
}

// WriteRegistrations writes the registration table for fns to path.
func (g *Generator) WriteRegistrations(path string, fns []*ir.Function) error {
	src, err := g.Registrations(fns)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return fmt.Errorf("writing registration table: %w", err)
	}
	g.logger.Debug("wrote registration table",
		zap.String("path", path),
		zap.Int("functions", len(fns)),
	)
	return nil
}
