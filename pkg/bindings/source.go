package bindings

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultQualifier is the package name generated code uses to refer to this package.
const DefaultQualifier = "bindings"

// ImportPath is the import path generated registration code must import.
const ImportPath = "github.com/roach88/funcbind/pkg/bindings"

// GoSource returns a Go expression that evaluates to a Binding equal to b,
// qualified with DefaultQualifier.
//
// GoSource panics if b is a context binding. Context bindings only exist
// while resolving a function signature and must never reach generated code.
func GoSource(b Binding) string {
	return SourceWriter{}.Source(b)
}

// SourceWriter synthesizes Go expressions for bindings.
type SourceWriter struct {
	// Qualifier is the package name of this package in the generated file.
	// Empty means DefaultQualifier.
	Qualifier string
}

type sourceField struct {
	name string
	expr string
}

// Source returns the Go expression reconstructing b.
// It panics on a context binding, like GoSource.
func (w SourceWriter) Source(b Binding) string {
	q := w.Qualifier
	if q == "" {
		q = DefaultQualifier
	}

	var kind string
	var fields []sourceField
	str := func(name, v string) {
		if v != "" {
			fields = append(fields, sourceField{name, strconv.Quote(v)})
		}
	}
	strs := func(name string, vs []string) {
		if len(vs) == 0 {
			return
		}
		quoted := make([]string, len(vs))
		for i, v := range vs {
			quoted[i] = strconv.Quote(v)
		}
		fields = append(fields, sourceField{name, "[]string{" + strings.Join(quoted, ", ") + "}"})
	}
	flag := func(name string, v *bool) {
		if v != nil {
			fields = append(fields, sourceField{name, fmt.Sprintf("%s.Bool(%t)", q, *v)})
		}
	}
	dir := func(d Direction) {
		switch d {
		case InOut:
			fields = append(fields, sourceField{"Direction", q + ".InOut"})
		case Out:
			fields = append(fields, sourceField{"Direction", q + ".Out"})
		}
	}

	switch v := b.(type) {
	case *Context:
		panic("context bindings cannot be synthesized")
	case *HTTPTrigger:
		kind = "HTTPTrigger"
		str("Name", v.Name)
		str("AuthLevel", v.AuthLevel)
		strs("Methods", v.Methods)
		str("Route", v.Route)
	case *HTTP:
		kind = "HTTP"
		str("Name", v.Name)
	case *TimerTrigger:
		kind = "TimerTrigger"
		str("Name", v.Name)
		str("Schedule", v.Schedule)
		flag("RunOnStartup", v.RunOnStartup)
		flag("UseMonitor", v.UseMonitor)
	case *QueueTrigger:
		kind = "QueueTrigger"
		str("Name", v.Name)
		str("QueueName", v.QueueName)
		str("Connection", v.Connection)
	case *Queue:
		kind = "Queue"
		str("Name", v.Name)
		str("QueueName", v.QueueName)
		str("Connection", v.Connection)
	case *BlobTrigger:
		kind = "BlobTrigger"
		str("Name", v.Name)
		str("Path", v.Path)
		str("Connection", v.Connection)
		dir(v.Direction)
	case *Blob:
		kind = "Blob"
		str("Name", v.Name)
		str("Path", v.Path)
		str("Connection", v.Connection)
		dir(v.Direction)
	case *Table:
		kind = "Table"
		str("Name", v.Name)
		str("TableName", v.TableName)
		str("PartitionKey", v.PartitionKey)
		str("RowKey", v.RowKey)
		str("Filter", v.Filter)
		if v.Take != 0 {
			fields = append(fields, sourceField{"Take", strconv.FormatInt(v.Take, 10)})
		}
		str("Connection", v.Connection)
		dir(v.Direction)
	case *EventGridTrigger:
		kind = "EventGridTrigger"
		str("Name", v.Name)
	case *EventHubTrigger:
		kind = "EventHubTrigger"
		str("Name", v.Name)
		str("EventHubName", v.EventHubName)
		str("ConsumerGroup", v.ConsumerGroup)
		str("Connection", v.Connection)
	case *EventHub:
		kind = "EventHub"
		str("Name", v.Name)
		str("EventHubName", v.EventHubName)
		str("Connection", v.Connection)
	default:
		panic(fmt.Sprintf("cannot synthesize binding of type %T", b))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s.Binding(&%s.%s{", q, q, kind)
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.name)
		sb.WriteString(": ")
		sb.WriteString(f.expr)
	}
	sb.WriteString("})")
	return sb.String()
}
