package registry

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/funcbind/pkg/bindings"
)

// Usage is where a parameter appears in a function signature.
type Usage int

const (
	// UsageTrigger is the parameter that starts the function.
	UsageTrigger Usage = iota
	// UsageInput is a read-only input binding.
	UsageInput
	// UsageShared is a binding read and written by the function.
	UsageShared
	// UsageOutput is a binding the function writes.
	UsageOutput
)

var usageNames = [...]string{
	UsageTrigger: "trigger",
	UsageInput:   "in",
	UsageShared:  "inout",
	UsageOutput:  "out",
}

func (u Usage) String() string {
	if u < UsageTrigger || u > UsageOutput {
		return fmt.Sprintf("Usage(%d)", int(u))
	}
	return usageNames[u]
}

// ParseUsage maps "trigger", "in", "inout" or "out" to a Usage.
func ParseUsage(s string) (Usage, error) {
	for u, name := range usageNames {
		if name == s {
			return Usage(u), nil
		}
	}
	return UsageInput, fmt.Errorf("invalid usage %q, must be \"trigger\", \"in\", \"inout\" or \"out\"", s)
}

// ErrUnsupportedRole is wrapped by every ResolveError.
var ErrUnsupportedRole = errors.New("unsupported binding role")

// ResolveError reports a role name with no factory for its usage.
type ResolveError struct {
	Role  string
	Usage Usage
	Pos   token.Pos
}

func (e *ResolveError) Error() string {
	var what string
	switch e.Usage {
	case UsageTrigger:
		what = "trigger"
	case UsageOutput:
		what = "output binding"
	case UsageShared:
		what = "input/output binding"
	default:
		what = "input binding"
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: unsupported %s %q",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), what, e.Role)
	}
	return fmt.Sprintf("unsupported %s %q", what, e.Role)
}

func (e *ResolveError) Unwrap() error {
	return ErrUnsupportedRole
}

// step is one registry consulted by the dispatch policy, with the direction
// stamped on a hit. A nil stamp keeps the factory default.
type step struct {
	kind  Kind
	stamp *bindings.Direction
}

func stamp(d bindings.Direction) *bindings.Direction { return &d }

// policy is the ordered lookup for each usage. The trigger position never
// falls back; input and output positions fall back to the dual registry.
var policy = map[Usage][]step{
	UsageTrigger: {{Triggers, nil}},
	UsageInput:   {{Inputs, nil}, {Dual, nil}},
	UsageShared:  {{Dual, stamp(bindings.InOut)}},
	UsageOutput:  {{Outputs, stamp(bindings.Out)}, {Dual, stamp(bindings.Out)}},
}

// Consults reports whether resolving a parameter at usage looks in the
// registry of kind k.
func Consults(usage Usage, k Kind) bool {
	for _, s := range policy[usage] {
		if s.kind == k {
			return true
		}
	}
	return false
}

// Lookup returns the registry and factory that Resolve would use for role.
func (c *Catalog) Lookup(role string, usage Usage) (*Registry, Factory, bool) {
	for _, s := range policy[usage] {
		r := c.registries[s.kind]
		if f, ok := r.Lookup(role); ok {
			return r, f, true
		}
	}
	return nil, nil, false
}

// Resolve builds the binding for a parameter declared with role at usage.
// Kinds with a mutable direction are stamped InOut for shared usage and Out
// for output usage; kinds with a fixed direction keep it.
func (c *Catalog) Resolve(role string, usage Usage, args cue.Value, pos token.Pos) (bindings.Binding, error) {
	for _, s := range policy[usage] {
		f, ok := c.registries[s.kind].Lookup(role)
		if !ok {
			continue
		}
		b, err := f(args, pos)
		if err != nil {
			return nil, err
		}
		if s.stamp != nil {
			if d, ok := b.(bindings.Directional); ok {
				d.SetDirection(*s.stamp)
			}
		}
		return b, nil
	}
	return nil, &ResolveError{Role: role, Usage: usage, Pos: pos}
}
