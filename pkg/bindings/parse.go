package bindings

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strconv"
)

var kindsByName = map[string]func() Binding{
	"HTTPTrigger":      func() Binding { return &HTTPTrigger{} },
	"HTTP":             func() Binding { return &HTTP{} },
	"TimerTrigger":     func() Binding { return &TimerTrigger{} },
	"QueueTrigger":     func() Binding { return &QueueTrigger{} },
	"Queue":            func() Binding { return &Queue{} },
	"BlobTrigger":      func() Binding { return &BlobTrigger{} },
	"Blob":             func() Binding { return &Blob{} },
	"Table":            func() Binding { return &Table{} },
	"EventGridTrigger": func() Binding { return &EventGridTrigger{} },
	"EventHubTrigger":  func() Binding { return &EventHubTrigger{} },
	"EventHub":         func() Binding { return &EventHub{} },
}

var (
	directionType = reflect.TypeOf(Direction(0))
	stringType    = reflect.TypeOf("")
	stringsType   = reflect.TypeOf([]string(nil))
	boolPtrType   = reflect.TypeOf((*bool)(nil))
	int64Type     = reflect.TypeOf(int64(0))
)

// ParseSource evaluates a Go expression produced by SourceWriter and returns
// the Binding it denotes. Any package qualifier is accepted.
func ParseSource(src string) (Binding, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("parsing binding source: %w", err)
	}

	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 || selectorName(call.Fun) != "Binding" {
		return nil, fmt.Errorf("binding source must be a Binding(...) conversion")
	}
	addr, ok := call.Args[0].(*ast.UnaryExpr)
	if !ok || addr.Op != token.AND {
		return nil, fmt.Errorf("binding source must take the address of a composite literal")
	}
	lit, ok := addr.X.(*ast.CompositeLit)
	if !ok {
		return nil, fmt.Errorf("binding source must take the address of a composite literal")
	}

	kind := selectorName(lit.Type)
	newBinding, ok := kindsByName[kind]
	if !ok {
		return nil, fmt.Errorf("unknown binding kind %q", kind)
	}
	b := newBinding()
	rv := reflect.ValueOf(b).Elem()

	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			return nil, fmt.Errorf("%s: fields must be keyed", kind)
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("%s: invalid field key", kind)
		}
		field := rv.FieldByName(key.Name)
		if !field.IsValid() {
			return nil, fmt.Errorf("%s has no field %s", kind, key.Name)
		}
		if err := setField(field, kv.Value); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", kind, key.Name, err)
		}
	}
	return b, nil
}

func setField(field reflect.Value, expr ast.Expr) error {
	switch field.Type() {
	case stringType:
		s, err := stringLit(expr)
		if err != nil {
			return err
		}
		field.SetString(s)
	case stringsType:
		lit, ok := expr.(*ast.CompositeLit)
		if !ok {
			return fmt.Errorf("expected []string literal")
		}
		vals := make([]string, 0, len(lit.Elts))
		for _, elt := range lit.Elts {
			s, err := stringLit(elt)
			if err != nil {
				return err
			}
			vals = append(vals, s)
		}
		field.Set(reflect.ValueOf(vals))
	case boolPtrType:
		call, ok := expr.(*ast.CallExpr)
		if !ok || len(call.Args) != 1 || selectorName(call.Fun) != "Bool" {
			return fmt.Errorf("expected Bool(...) call")
		}
		ident, ok := call.Args[0].(*ast.Ident)
		if !ok || (ident.Name != "true" && ident.Name != "false") {
			return fmt.Errorf("expected boolean constant")
		}
		field.Set(reflect.ValueOf(Bool(ident.Name == "true")))
	case int64Type:
		lit, ok := expr.(*ast.BasicLit)
		if !ok || lit.Kind != token.INT {
			return fmt.Errorf("expected integer literal")
		}
		n, err := strconv.ParseInt(lit.Value, 0, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case directionType:
		d, err := ParseDirectionName(selectorName(expr))
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

// ParseDirectionName maps a Go constant name (In, InOut, Out) to a Direction.
func ParseDirectionName(name string) (Direction, error) {
	switch name {
	case "In":
		return In, nil
	case "InOut":
		return InOut, nil
	case "Out":
		return Out, nil
	default:
		return In, fmt.Errorf("unknown direction constant %q", name)
	}
}

func stringLit(expr ast.Expr) (string, error) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", fmt.Errorf("expected string literal")
	}
	return strconv.Unquote(lit.Value)
}

// selectorName returns the selected name of pkg.Name, or the name of a bare identifier.
func selectorName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.Ident:
		return e.Name
	default:
		return ""
	}
}
