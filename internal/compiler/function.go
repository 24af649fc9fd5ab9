package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/funcbind/internal/ir"
	"github.com/roach88/funcbind/internal/registry"
	"github.com/roach88/funcbind/pkg/bindings"
)

// ContextRole is the role name of the function context parameter.
// It is handled here, never by the registries.
const ContextRole = "Context"

// Compiler compiles CUE function definitions against a binding catalog.
type Compiler struct {
	catalog *registry.Catalog
}

// New returns a compiler using catalog. A nil catalog means registry.Default().
func New(catalog *registry.Catalog) *Compiler {
	if catalog == nil {
		catalog = registry.Default()
	}
	return &Compiler{catalog: catalog}
}

// CompileFunction compiles v with the default catalog.
func CompileFunction(v cue.Value) (*ir.Function, error) {
	return New(nil).CompileFunction(v)
}

// CompileFunction parses a CUE value into a Function.
//
// The CUE value should be the function struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`function: greet: { params: [...] }`)
//	fn, err := c.CompileFunction(v.LookupPath(cue.ParsePath("function.greet")))
func (c *Compiler) CompileFunction(v cue.Value) (*ir.Function, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	fn := &ir.Function{Pos: v.Pos()}

	// Function name comes from the struct label
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		fn.Name = labels[len(labels)-1].String()
	}
	if fn.Name == "" {
		return nil, &CompileError{Field: "function", Message: "function name is required", Pos: v.Pos()}
	}

	disabledVal := v.LookupPath(cue.ParsePath("disabled"))
	if disabledVal.Exists() {
		disabled, err := disabledVal.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		fn.Disabled = disabled
	}

	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if !paramsVal.Exists() {
		return nil, &CompileError{Field: "params", Message: "params is required", Pos: v.Pos()}
	}
	iter, err := paramsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		param, err := c.compileParam(iter.Value(), fmt.Sprintf("params[%d]", i))
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, *param)
	}

	returnsVal := v.LookupPath(cue.ParsePath("returns"))
	if returnsVal.Exists() {
		ret, err := c.compileReturn(returnsVal)
		if err != nil {
			return nil, err
		}
		fn.Return = ret
	}

	return fn, nil
}

// compileParam resolves one parameter. The whole parameter struct is handed
// to the factory as its attribute arguments.
func (c *Compiler) compileParam(v cue.Value, field string) (*ir.Param, error) {
	role, err := requiredString(v, "role", field)
	if err != nil {
		return nil, err
	}

	param := &ir.Param{Role: role, Usage: registry.UsageInput.String(), Pos: v.Pos()}

	usageVal := v.LookupPath(cue.ParsePath("usage"))
	if usageVal.Exists() {
		s, err := usageVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		param.Usage = s
	}
	usage, err := registry.ParseUsage(param.Usage)
	if err != nil {
		return nil, &CompileError{Field: field + ".usage", Message: err.Error(), Pos: usageVal.Pos()}
	}

	if role == ContextRole {
		if name, err := v.LookupPath(cue.ParsePath("name")).String(); err == nil {
			param.Name = name
		}
		param.Binding = &bindings.Context{}
		return param, nil
	}

	b, err := c.catalog.Resolve(role, usage, v, v.Pos())
	if err != nil {
		return nil, bindingError(field, err, v.Pos())
	}
	param.Binding = b
	param.Name, _ = bindings.Name(b)
	return param, nil
}

// compileReturn resolves the return binding. It always resolves as an output
// and is named $return unless a name is given.
func (c *Compiler) compileReturn(v cue.Value) (*ir.Param, error) {
	const field = "returns"

	role, err := requiredString(v, "role", field)
	if err != nil {
		return nil, err
	}
	if role == ContextRole {
		return nil, &CompileError{Field: field + ".role", Message: "a function cannot return its context", Pos: v.Pos()}
	}

	usageVal := v.LookupPath(cue.ParsePath("usage"))
	if usageVal.Exists() {
		if s, err := usageVal.String(); err != nil || s != registry.UsageOutput.String() {
			return nil, &CompileError{Field: field + ".usage", Message: "return bindings are always outputs", Pos: usageVal.Pos()}
		}
	}

	if !v.LookupPath(cue.ParsePath("name")).Exists() {
		v = v.FillPath(cue.MakePath(cue.Str("name")), ir.ReturnName)
	}

	b, err := c.catalog.Resolve(role, registry.UsageOutput, v, v.Pos())
	if err != nil {
		return nil, bindingError(field, err, v.Pos())
	}
	name, _ := bindings.Name(b)
	return &ir.Param{
		Name:    name,
		Role:    role,
		Usage:   registry.UsageOutput.String(),
		Binding: b,
		Pos:     v.Pos(),
	}, nil
}

func requiredString(v cue.Value, key, field string) (string, error) {
	val := v.LookupPath(cue.ParsePath(key))
	if !val.Exists() {
		return "", &CompileError{Field: field + "." + key, Message: key + " is required", Pos: v.Pos()}
	}
	s, err := val.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	if s == "" {
		return "", &CompileError{Field: field + "." + key, Message: key + " must not be empty", Pos: val.Pos()}
	}
	return s, nil
}

// bindingError converts resolution and argument errors into CompileErrors,
// keeping the original error for errors.Is/As.
func bindingError(field string, err error, pos token.Pos) error {
	var resolveErr *registry.ResolveError
	var argErr *registry.ArgError
	switch {
	case errors.As(err, &resolveErr):
		msg := fmt.Sprintf("unsupported %s role %q", resolveErr.Usage, resolveErr.Role)
		return &CompileError{Field: field + ".role", Message: msg, Pos: resolveErr.Pos, Err: err}
	case errors.As(err, &argErr):
		return &CompileError{Field: field + "." + argErr.Key, Message: argErr.Message, Pos: argErr.Pos, Err: err}
	default:
		return &CompileError{Field: field, Message: err.Error(), Pos: pos, Err: err}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
	Err     error
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
			Err:     err,
		}
	}

	return err
}
