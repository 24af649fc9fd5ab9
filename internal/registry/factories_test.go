package registry

import (
	"errors"
	"testing"

	"cuelang.org/go/cue/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/funcbind/pkg/bindings"
)

func TestFactoriesPopulatePayloads(t *testing.T) {
	tests := []struct {
		name    string
		factory Factory
		args    string
		want    bindings.Binding
	}{
		{
			name:    "http trigger with method list",
			factory: NewHTTPTrigger,
			args:    `{name: "req", auth_level: "function", methods: ["get", "post"], route: "users/{id}"}`,
			want:    &bindings.HTTPTrigger{Name: "req", AuthLevel: "function", Methods: []string{"get", "post"}, Route: "users/{id}"},
		},
		{
			name:    "http trigger with piped methods",
			factory: NewHTTPTrigger,
			args:    `{name: "req", methods: "get | post"}`,
			want:    &bindings.HTTPTrigger{Name: "req", Methods: []string{"get", "post"}},
		},
		{
			name:    "timer flags",
			factory: NewTimerTrigger,
			args:    `{name: "t", schedule: "0 0 * * * *", run_on_startup: true, use_monitor: false}`,
			want:    &bindings.TimerTrigger{Name: "t", Schedule: "0 0 * * * *", RunOnStartup: bindings.Bool(true), UseMonitor: bindings.Bool(false)},
		},
		{
			name:    "table",
			factory: NewTable,
			args:    `{name: "rows", table_name: "people", partition_key: "p", row_key: "r", filter: "x eq 1", take: 25, connection: "Storage"}`,
			want:    &bindings.Table{Name: "rows", TableName: "people", PartitionKey: "p", RowKey: "r", Filter: "x eq 1", Take: 25, Connection: "Storage"},
		},
		{
			name:    "event hub trigger",
			factory: NewEventHubTrigger,
			args:    `{name: "e", event_hub_name: "hub", consumer_group: "$Default", connection: "Conn"}`,
			want:    &bindings.EventHubTrigger{Name: "e", EventHubName: "hub", ConsumerGroup: "$Default", Connection: "Conn"},
		},
		{
			name:    "reserved keys ignored",
			factory: NewQueue,
			args:    `{name: "out", role: "QueueMessage", usage: "out", queue_name: "q"}`,
			want:    &bindings.Queue{Name: "out", QueueName: "q"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.factory(compileArgs(t, tt.args), token.NoPos)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFactoryArgErrors(t *testing.T) {
	tests := []struct {
		name    string
		factory Factory
		args    string
		key     string
	}{
		{"missing name", NewHTTP, `{}`, "name"},
		{"empty name", NewHTTP, `{name: ""}`, "name"},
		{"name not string", NewHTTP, `{name: 3}`, "name"},
		{"missing schedule", NewTimerTrigger, `{name: "t"}`, "schedule"},
		{"flag not bool", NewTimerTrigger, `{name: "t", schedule: "x", use_monitor: "yes"}`, "use_monitor"},
		{"missing queue", NewQueueTrigger, `{name: "q"}`, "queue_name"},
		{"missing path", NewBlob, `{name: "b"}`, "path"},
		{"negative take", NewTable, `{name: "r", table_name: "t", take: -1}`, "take"},
		{"take not int", NewTable, `{name: "r", table_name: "t", take: "all"}`, "take"},
		{"bad methods", NewHTTPTrigger, `{name: "r", methods: [1, 2]}`, "methods"},
		{"missing connection", NewEventHub, `{name: "e"}`, "connection"},
		{"unknown argument", NewEventGridTrigger, `{name: "e", topic: "x"}`, "topic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.factory(compileArgs(t, tt.args), token.NoPos)
			require.Error(t, err)
			assert.Nil(t, b)

			var argErr *ArgError
			require.True(t, errors.As(err, &argErr))
			assert.Equal(t, tt.key, argErr.Key)
		})
	}
}

func TestArgErrorCarriesPosition(t *testing.T) {
	args := compileArgs(t, "{\n\tname: \"t\"\n\tschedule: 5\n}")
	_, err := NewTimerTrigger(args, args.Pos())
	require.Error(t, err)

	var argErr *ArgError
	require.True(t, errors.As(err, &argErr))
	require.True(t, argErr.Pos.IsValid())
	assert.Equal(t, "schedule", argErr.Key)
	assert.Contains(t, err.Error(), "args.cue:")
}
