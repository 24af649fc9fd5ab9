package ir

import (
	"cuelang.org/go/cue/token"

	"github.com/roach88/funcbind/pkg/bindings"
)

// ReturnName is the binding name of a function's return value.
const ReturnName = "$return"

// Function is a compiled function definition.
type Function struct {
	Name     string
	Disabled bool
	Params   []Param
	// Return is the binding of the function's return value, or nil.
	Return *Param
	Pos    token.Pos
}

// Param is one resolved function parameter.
type Param struct {
	Name    string
	Role    string
	Usage   string
	Binding bindings.Binding
	Pos     token.Pos
}

// Bindings returns the host bindings of f in declaration order: parameters
// first, then the return binding. Context parameters are skipped.
func (f *Function) Bindings() []bindings.Binding {
	out := make([]bindings.Binding, 0, len(f.Params)+1)
	for _, p := range f.Params {
		if bindings.IsContext(p.Binding) {
			continue
		}
		out = append(out, p.Binding)
	}
	if f.Return != nil {
		out = append(out, f.Return.Binding)
	}
	return out
}

// Trigger returns the function's trigger binding, or nil if it has none.
func (f *Function) Trigger() bindings.Binding {
	for _, p := range f.Params {
		if bindings.IsTrigger(p.Binding) && p.Usage == UsageTrigger {
			return p.Binding
		}
	}
	return nil
}

// HasContext reports whether f declares a context parameter.
func (f *Function) HasContext() bool {
	for _, p := range f.Params {
		if bindings.IsContext(p.Binding) {
			return true
		}
	}
	return false
}

// UsageTrigger is the usage string of a function's trigger parameter.
const UsageTrigger = "trigger"

// Manifest is the host metadata document for one function (function.json).
type Manifest struct {
	GeneratedBy string             `json:"generatedBy"`
	ID          string             `json:"id"`
	Disabled    bool               `json:"disabled"`
	Bindings    []bindings.Binding `json:"bindings"`
}

// NewManifest builds the manifest for f.
func NewManifest(f *Function) *Manifest {
	return &Manifest{
		GeneratedBy: GeneratorName,
		ID:          FunctionID(f.Name),
		Disabled:    f.Disabled,
		Bindings:    f.Bindings(),
	}
}
