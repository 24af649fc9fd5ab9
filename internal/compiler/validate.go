package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/funcbind/internal/ir"
	"github.com/roach88/funcbind/pkg/bindings"
)

// Validation error codes (E200-E299)
const (
	ErrNoTrigger        = "E201" // function has no trigger
	ErrMultipleTriggers = "E202" // more than one trigger parameter
	ErrDuplicateBinding = "E203" // two bindings share a name
	ErrMultipleContexts = "E204" // more than one context parameter
	ErrInvalidName      = "E205" // function or binding name is not a valid identifier
)

// ValidationError represents a function validation error.
type ValidationError struct {
	Function string `json:"function"`
	Field    string `json:"field"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Line     int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s.%s: %s", e.Code, e.Line, e.Function, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s.%s: %s", e.Code, e.Function, e.Field, e.Message)
}

var (
	functionNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
	bindingNamePattern  = regexp.MustCompile(`^(\$return|[A-Za-z_][A-Za-z0-9_]*)$`)
)

// Validate checks a compiled function against the host's structural rules.
// Returns all errors found (does not fail-fast).
func Validate(fn *ir.Function) []ValidationError {
	var errs []ValidationError
	add := func(field, code, msg string, line int) {
		errs = append(errs, ValidationError{Function: fn.Name, Field: field, Message: msg, Code: code, Line: line})
	}

	// E205: function name
	if !functionNamePattern.MatchString(fn.Name) {
		add("name", ErrInvalidName, fmt.Sprintf("invalid function name %q", fn.Name), fn.Pos.Line())
	}

	triggers := 0
	contexts := 0
	names := make(map[string]string)

	params := fn.Params
	if fn.Return != nil {
		params = append(params[:len(params):len(params)], *fn.Return)
	}

	for i, p := range params {
		field := fmt.Sprintf("params[%d]", i)
		if fn.Return != nil && i == len(params)-1 {
			field = "returns"
		}
		line := p.Pos.Line()

		if bindings.IsContext(p.Binding) {
			contexts++
			// E204: one context parameter at most
			if contexts == 2 {
				add(field, ErrMultipleContexts, "a function may declare only one context parameter", line)
			}
			continue
		}

		if p.Usage == ir.UsageTrigger {
			triggers++
			// E202: exactly one trigger
			if triggers == 2 {
				add(field, ErrMultipleTriggers, "a function may declare only one trigger", line)
			}
		}

		name, _ := bindings.Name(p.Binding)
		// E205: binding name
		if !bindingNamePattern.MatchString(name) {
			add(field+".name", ErrInvalidName, fmt.Sprintf("invalid binding name %q", name), line)
		}
		// E203: unique binding names
		if prev, dup := names[name]; dup {
			add(field+".name", ErrDuplicateBinding, fmt.Sprintf("binding name %q already used by %s", name, prev), line)
		} else {
			names[name] = field
		}
	}

	// E201: a function needs a trigger
	if triggers == 0 {
		add("params", ErrNoTrigger, "a function must declare a trigger", fn.Pos.Line())
	}

	return errs
}
