package registry

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/funcbind/pkg/bindings"
)

// Factory builds a binding from a parameter's raw attribute arguments.
// pos is the parameter's source position, used for diagnostics.
// The returned binding has its kind's default direction.
type Factory func(args cue.Value, pos token.Pos) (bindings.Binding, error)

// NewHTTPTrigger parses name, auth_level, methods and route.
func NewHTTPTrigger(args cue.Value, pos token.Pos) (bindings.Binding, error) {
	a := newAttrs(args, pos)
	b := &bindings.HTTPTrigger{}
	var err error
	if b.Name, err = a.name(); err != nil {
		return nil, err
	}
	if b.AuthLevel, err = a.str("auth_level"); err != nil {
		return nil, err
	}
	if b.Methods, err = a.list("methods"); err != nil {
		return nil, err
	}
	if b.Route, err = a.str("route"); err != nil {
		return nil, err
	}
	return finish(a, b)
}

// NewHTTP parses an HTTP response binding.
func NewHTTP(args cue.Value, pos token.Pos) (bindings.Binding, error) {
	a := newAttrs(args, pos)
	name, err := a.name()
	if err != nil {
		return nil, err
	}
	return finish(a, &bindings.HTTP{Name: name})
}

// NewTimerTrigger parses name, schedule, run_on_startup and use_monitor.
func NewTimerTrigger(args cue.Value, pos token.Pos) (bindings.Binding, error) {
	a := newAttrs(args, pos)
	b := &bindings.TimerTrigger{}
	var err error
	if b.Name, err = a.name(); err != nil {
		return nil, err
	}
	if b.Schedule, err = a.required("schedule"); err != nil {
		return nil, err
	}
	if b.RunOnStartup, err = a.flag("run_on_startup"); err != nil {
		return nil, err
	}
	if b.UseMonitor, err = a.flag("use_monitor"); err != nil {
		return nil, err
	}
	return finish(a, b)
}

func queueArgs(a *attrs) (name, queue, conn string, err error) {
	if name, err = a.name(); err != nil {
		return
	}
	if queue, err = a.required("queue_name"); err != nil {
		return
	}
	conn, err = a.str("connection")
	return
}

// NewQueueTrigger parses name, queue_name and connection.
func NewQueueTrigger(args cue.Value, pos token.Pos) (bindings.Binding, error) {
	a := newAttrs(args, pos)
	name, queue, conn, err := queueArgs(a)
	if err != nil {
		return nil, err
	}
	return finish(a, &bindings.QueueTrigger{Name: name, QueueName: queue, Connection: conn})
}

// NewQueue parses a queue message output.
func NewQueue(args cue.Value, pos token.Pos) (bindings.Binding, error) {
	a := newAttrs(args, pos)
	name, queue, conn, err := queueArgs(a)
	if err != nil {
		return nil, err
	}
	return finish(a, &bindings.Queue{Name: name, QueueName: queue, Connection: conn})
}

func blobArgs(a *attrs) (name, path, conn string, err error) {
	if name, err = a.name(); err != nil {
		return
	}
	if path, err = a.required("path"); err != nil {
		return
	}
	conn, err = a.str("connection")
	return
}

// NewBlobTrigger parses name, path and connection.
func NewBlobTrigger(args cue.Value, pos token.Pos) (bindings.Binding, error) {
	a := newAttrs(args, pos)
	name, path, conn, err := blobArgs(a)
	if err != nil {
		return nil, err
	}
	return finish(a, &bindings.BlobTrigger{Name: name, Path: path, Connection: conn})
}

// NewBlob parses name, path and connection.
func NewBlob(args cue.Value, pos token.Pos) (bindings.Binding, error) {
	a := newAttrs(args, pos)
	name, path, conn, err := blobArgs(a)
	if err != nil {
		return nil, err
	}
	return finish(a, &bindings.Blob{Name: name, Path: path, Connection: conn})
}

// NewTable parses the table entity arguments.
func NewTable(args cue.Value, pos token.Pos) (bindings.Binding, error) {
	a := newAttrs(args, pos)
	b := &bindings.Table{}
	var err error
	if b.Name, err = a.name(); err != nil {
		return nil, err
	}
	if b.TableName, err = a.required("table_name"); err != nil {
		return nil, err
	}
	if b.PartitionKey, err = a.str("partition_key"); err != nil {
		return nil, err
	}
	if b.RowKey, err = a.str("row_key"); err != nil {
		return nil, err
	}
	if b.Filter, err = a.str("filter"); err != nil {
		return nil, err
	}
	if b.Take, err = a.count("take"); err != nil {
		return nil, err
	}
	if b.Connection, err = a.str("connection"); err != nil {
		return nil, err
	}
	return finish(a, b)
}

// NewEventGridTrigger parses an Event Grid trigger.
func NewEventGridTrigger(args cue.Value, pos token.Pos) (bindings.Binding, error) {
	a := newAttrs(args, pos)
	name, err := a.name()
	if err != nil {
		return nil, err
	}
	return finish(a, &bindings.EventGridTrigger{Name: name})
}

// NewEventHubTrigger parses name, event_hub_name, consumer_group and connection.
func NewEventHubTrigger(args cue.Value, pos token.Pos) (bindings.Binding, error) {
	a := newAttrs(args, pos)
	b := &bindings.EventHubTrigger{}
	var err error
	if b.Name, err = a.name(); err != nil {
		return nil, err
	}
	if b.EventHubName, err = a.str("event_hub_name"); err != nil {
		return nil, err
	}
	if b.ConsumerGroup, err = a.str("consumer_group"); err != nil {
		return nil, err
	}
	if b.Connection, err = a.required("connection"); err != nil {
		return nil, err
	}
	return finish(a, b)
}

// NewEventHub parses an Event Hub message output.
func NewEventHub(args cue.Value, pos token.Pos) (bindings.Binding, error) {
	a := newAttrs(args, pos)
	b := &bindings.EventHub{}
	var err error
	if b.Name, err = a.name(); err != nil {
		return nil, err
	}
	if b.EventHubName, err = a.str("event_hub_name"); err != nil {
		return nil, err
	}
	if b.Connection, err = a.required("connection"); err != nil {
		return nil, err
	}
	return finish(a, b)
}

func finish(a *attrs, b bindings.Binding) (bindings.Binding, error) {
	if err := a.done(); err != nil {
		return nil, err
	}
	return b, nil
}
