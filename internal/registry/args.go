package registry

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"
)

// ReservedKeys are parameter keys owned by the function compiler rather than
// by a binding kind. Factories ignore them.
var ReservedKeys = map[string]bool{
	"role":  true,
	"usage": true,
}

// ArgError reports a malformed attribute argument.
type ArgError struct {
	Key     string
	Message string
	Pos     token.Pos
}

func (e *ArgError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Key, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Key, e.Message)
}

// attrs reads attribute arguments for one factory call and tracks which keys
// were consumed, so unknown keys can be reported.
type attrs struct {
	v    cue.Value
	pos  token.Pos
	used map[string]bool
}

func newAttrs(v cue.Value, pos token.Pos) *attrs {
	return &attrs{v: v, pos: pos, used: make(map[string]bool)}
}

func (a *attrs) errorf(key string, val cue.Value, format string, args ...any) *ArgError {
	pos := a.pos
	if val.Exists() && val.Pos().IsValid() {
		pos = val.Pos()
	}
	return &ArgError{Key: key, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func (a *attrs) lookup(key string) cue.Value {
	a.used[key] = true
	return a.v.LookupPath(cue.MakePath(cue.Str(key)))
}

// str returns an optional string argument.
func (a *attrs) str(key string) (string, error) {
	val := a.lookup(key)
	if !val.Exists() {
		return "", nil
	}
	s, err := val.String()
	if err != nil {
		return "", a.errorf(key, val, "must be a string")
	}
	return s, nil
}

// required returns a string argument that must be present and non-empty.
func (a *attrs) required(key string) (string, error) {
	val := a.lookup(key)
	if !val.Exists() {
		return "", a.errorf(key, val, "argument is required")
	}
	s, err := val.String()
	if err != nil {
		return "", a.errorf(key, val, "must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return "", a.errorf(key, val, "must not be empty")
	}
	return s, nil
}

// name returns the declared parameter name.
func (a *attrs) name() (string, error) {
	return a.required("name")
}

// list returns a list of strings, given either as a CUE list or as a
// "|"-separated string.
func (a *attrs) list(key string) ([]string, error) {
	val := a.lookup(key)
	if !val.Exists() {
		return nil, nil
	}
	if s, err := val.String(); err == nil {
		var out []string
		for _, part := range strings.Split(s, "|") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
	iter, err := val.List()
	if err != nil {
		return nil, a.errorf(key, val, "must be a string or a list of strings")
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, a.errorf(key, iter.Value(), "must be a string or a list of strings")
		}
		out = append(out, s)
	}
	return out, nil
}

// flag returns an optional boolean; nil when absent.
func (a *attrs) flag(key string) (*bool, error) {
	val := a.lookup(key)
	if !val.Exists() {
		return nil, nil
	}
	b, err := val.Bool()
	if err != nil {
		return nil, a.errorf(key, val, "must be a boolean")
	}
	return &b, nil
}

// count returns an optional non-negative integer; zero when absent.
func (a *attrs) count(key string) (int64, error) {
	val := a.lookup(key)
	if !val.Exists() {
		return 0, nil
	}
	n, err := val.Int64()
	if err != nil {
		return 0, a.errorf(key, val, "must be an integer")
	}
	if n < 0 {
		return 0, a.errorf(key, val, "must not be negative")
	}
	return n, nil
}

// done reports the first argument no lookup asked for.
func (a *attrs) done() error {
	if !a.v.Exists() {
		return nil
	}
	iter, err := a.v.Fields()
	if err != nil {
		return &ArgError{Key: "args", Message: "attribute arguments must be a struct", Pos: a.pos}
	}
	for iter.Next() {
		key := iter.Label()
		if a.used[key] || ReservedKeys[key] {
			continue
		}
		return a.errorf(key, iter.Value(), "unsupported argument")
	}
	return nil
}
