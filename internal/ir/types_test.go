package ir

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/funcbind/pkg/bindings"
)

func greetFunction() *Function {
	return &Function{
		Name: "greet",
		Params: []Param{
			{Name: "ctx", Role: "Context", Usage: "in", Binding: &bindings.Context{}},
			{Name: "req", Role: "HttpRequest", Usage: UsageTrigger, Binding: &bindings.HTTPTrigger{Name: "req", AuthLevel: "anonymous"}},
			{Name: "photo", Role: "Blob", Usage: "inout", Binding: &bindings.Blob{Name: "photo", Path: "photos/{name}", Direction: bindings.InOut}},
		},
		Return: &Param{Name: ReturnName, Role: "HttpResponse", Usage: "out", Binding: &bindings.HTTP{Name: ReturnName}},
	}
}

func TestFunctionBindingsSkipContext(t *testing.T) {
	f := greetFunction()
	got := f.Bindings()
	require.Len(t, got, 3)
	for _, b := range got {
		assert.False(t, bindings.IsContext(b))
	}
	name, _ := bindings.Name(got[2])
	assert.Equal(t, ReturnName, name)
	assert.True(t, f.HasContext())
}

func TestFunctionTrigger(t *testing.T) {
	f := greetFunction()
	assert.Equal(t, f.Params[1].Binding, f.Trigger())

	f.Params = f.Params[2:]
	assert.Nil(t, f.Trigger())
	assert.False(t, f.HasContext())
}

func TestNewManifest(t *testing.T) {
	m := NewManifest(greetFunction())

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"generatedBy": "funcbind",
		"id": "`+FunctionID("greet")+`",
		"disabled": false,
		"bindings": [
			{"type": "httpTrigger", "direction": "in", "name": "req", "authLevel": "anonymous"},
			{"type": "blob", "direction": "inout", "name": "photo", "path": "photos/{name}"},
			{"type": "http", "direction": "out", "name": "$return"}
		]
	}`, string(data))
}

func TestFunctionID(t *testing.T) {
	id := FunctionID("greet")
	assert.Equal(t, id, FunctionID("greet"))
	assert.NotEqual(t, id, FunctionID("greet2"))

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}
