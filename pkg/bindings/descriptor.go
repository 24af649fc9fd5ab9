package bindings

import (
	"encoding/json"
	"fmt"
)

// descriptor is the host's binding metadata record. Every kind encodes to a
// subset of these fields; there is no wrapper object, the host infers the
// kind from the type field and the fields present.
type descriptor struct {
	Type          string    `json:"type"`
	Direction     Direction `json:"direction"`
	Name          string    `json:"name"`
	AuthLevel     string    `json:"authLevel,omitempty"`
	Methods       []string  `json:"methods,omitempty"`
	Route         string    `json:"route,omitempty"`
	Schedule      string    `json:"schedule,omitempty"`
	RunOnStartup  *bool     `json:"runOnStartup,omitempty"`
	UseMonitor    *bool     `json:"useMonitor,omitempty"`
	QueueName     string    `json:"queueName,omitempty"`
	Path          string    `json:"path,omitempty"`
	TableName     string    `json:"tableName,omitempty"`
	PartitionKey  string    `json:"partitionKey,omitempty"`
	RowKey        string    `json:"rowKey,omitempty"`
	Filter        string    `json:"filter,omitempty"`
	Take          int64     `json:"take,omitempty"`
	EventHubName  string    `json:"eventHubName,omitempty"`
	ConsumerGroup string    `json:"consumerGroup,omitempty"`
	Connection    string    `json:"connection,omitempty"`
}

func describe(b Binding) (*descriptor, error) {
	d := &descriptor{Direction: DirectionOf(b)}
	switch v := b.(type) {
	case *HTTPTrigger:
		d.Type, d.Name = TypeHTTPTrigger, v.Name
		d.AuthLevel, d.Methods, d.Route = v.AuthLevel, v.Methods, v.Route
	case *HTTP:
		d.Type, d.Name = TypeHTTP, v.Name
	case *TimerTrigger:
		d.Type, d.Name = TypeTimerTrigger, v.Name
		d.Schedule, d.RunOnStartup, d.UseMonitor = v.Schedule, v.RunOnStartup, v.UseMonitor
	case *QueueTrigger:
		d.Type, d.Name = TypeQueueTrigger, v.Name
		d.QueueName, d.Connection = v.QueueName, v.Connection
	case *Queue:
		d.Type, d.Name = TypeQueue, v.Name
		d.QueueName, d.Connection = v.QueueName, v.Connection
	case *BlobTrigger:
		d.Type, d.Name = TypeBlobTrigger, v.Name
		d.Path, d.Connection = v.Path, v.Connection
	case *Blob:
		d.Type, d.Name = TypeBlob, v.Name
		d.Path, d.Connection = v.Path, v.Connection
	case *Table:
		d.Type, d.Name = TypeTable, v.Name
		d.TableName, d.PartitionKey, d.RowKey = v.TableName, v.PartitionKey, v.RowKey
		d.Filter, d.Take, d.Connection = v.Filter, v.Take, v.Connection
	case *EventGridTrigger:
		d.Type, d.Name = TypeEventGridTrigger, v.Name
	case *EventHubTrigger:
		d.Type, d.Name = TypeEventHubTrigger, v.Name
		d.EventHubName, d.ConsumerGroup, d.Connection = v.EventHubName, v.ConsumerGroup, v.Connection
	case *EventHub:
		d.Type, d.Name = TypeEventHub, v.Name
		d.EventHubName, d.Connection = v.EventHubName, v.Connection
	case *Context, nil:
		return nil, ErrContextBinding
	default:
		return nil, fmt.Errorf("unknown binding type: %T", b)
	}
	return d, nil
}

func marshalDescriptor(b Binding) ([]byte, error) {
	d, err := describe(b)
	if err != nil {
		return nil, err
	}
	return json.Marshal(d)
}

// MarshalJSON always fails: a context binding has no descriptor.
func (*Context) MarshalJSON() ([]byte, error) { return nil, ErrContextBinding }

func (b *HTTPTrigger) MarshalJSON() ([]byte, error)      { return marshalDescriptor(b) }
func (b *HTTP) MarshalJSON() ([]byte, error)             { return marshalDescriptor(b) }
func (b *TimerTrigger) MarshalJSON() ([]byte, error)     { return marshalDescriptor(b) }
func (b *QueueTrigger) MarshalJSON() ([]byte, error)     { return marshalDescriptor(b) }
func (b *Queue) MarshalJSON() ([]byte, error)            { return marshalDescriptor(b) }
func (b *BlobTrigger) MarshalJSON() ([]byte, error)      { return marshalDescriptor(b) }
func (b *Blob) MarshalJSON() ([]byte, error)             { return marshalDescriptor(b) }
func (b *Table) MarshalJSON() ([]byte, error)            { return marshalDescriptor(b) }
func (b *EventGridTrigger) MarshalJSON() ([]byte, error) { return marshalDescriptor(b) }
func (b *EventHubTrigger) MarshalJSON() ([]byte, error)  { return marshalDescriptor(b) }
func (b *EventHub) MarshalJSON() ([]byte, error)         { return marshalDescriptor(b) }

// DecodeDescriptor rebuilds a Binding from its host descriptor.
// The kind is selected by the descriptor's type field.
func DecodeDescriptor(data []byte) (Binding, error) {
	var d descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding binding descriptor: %w", err)
	}
	if d.Name == "" {
		return nil, fmt.Errorf("binding descriptor of type %q has no name", d.Type)
	}

	var b Binding
	switch d.Type {
	case TypeHTTPTrigger:
		b = &HTTPTrigger{Name: d.Name, AuthLevel: d.AuthLevel, Methods: d.Methods, Route: d.Route}
	case TypeHTTP:
		b = &HTTP{Name: d.Name}
	case TypeTimerTrigger:
		b = &TimerTrigger{Name: d.Name, Schedule: d.Schedule, RunOnStartup: d.RunOnStartup, UseMonitor: d.UseMonitor}
	case TypeQueueTrigger:
		b = &QueueTrigger{Name: d.Name, QueueName: d.QueueName, Connection: d.Connection}
	case TypeQueue:
		b = &Queue{Name: d.Name, QueueName: d.QueueName, Connection: d.Connection}
	case TypeBlobTrigger:
		b = &BlobTrigger{Name: d.Name, Path: d.Path, Connection: d.Connection, Direction: d.Direction}
	case TypeBlob:
		b = &Blob{Name: d.Name, Path: d.Path, Connection: d.Connection, Direction: d.Direction}
	case TypeTable:
		b = &Table{
			Name:         d.Name,
			TableName:    d.TableName,
			PartitionKey: d.PartitionKey,
			RowKey:       d.RowKey,
			Filter:       d.Filter,
			Take:         d.Take,
			Connection:   d.Connection,
			Direction:    d.Direction,
		}
	case TypeEventGridTrigger:
		b = &EventGridTrigger{Name: d.Name}
	case TypeEventHubTrigger:
		b = &EventHubTrigger{Name: d.Name, EventHubName: d.EventHubName, ConsumerGroup: d.ConsumerGroup, Connection: d.Connection}
	case TypeEventHub:
		b = &EventHub{Name: d.Name, EventHubName: d.EventHubName, Connection: d.Connection}
	default:
		return nil, fmt.Errorf("unknown binding type %q", d.Type)
	}

	if got := DirectionOf(b); got != d.Direction {
		return nil, fmt.Errorf("binding %q of type %q cannot have direction %q", d.Name, d.Type, d.Direction)
	}
	return b, nil
}
