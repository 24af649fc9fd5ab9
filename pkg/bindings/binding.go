package bindings

import "errors"

// Binding is a sealed interface over the supported binding kinds.
// Only the pointer types declared in this package implement it:
// *Context, *HTTPTrigger, *HTTP, *TimerTrigger, *QueueTrigger, *Queue,
// *BlobTrigger, *Blob, *Table, *EventGridTrigger, *EventHubTrigger and *EventHub.
type Binding interface {
	binding() // Sealed
}

// Directional is implemented by kinds whose direction is not fixed by the
// kind itself. The dispatch policy stamps direction through it.
type Directional interface {
	Binding
	SetDirection(Direction)
}

// ErrContextBinding is returned when a context binding reaches a path that
// has no representation for it.
var ErrContextBinding = errors.New("context bindings have no descriptor")

// Wire type tags.
const (
	TypeHTTPTrigger      = "httpTrigger"
	TypeHTTP             = "http"
	TypeTimerTrigger     = "timerTrigger"
	TypeQueueTrigger     = "queueTrigger"
	TypeQueue            = "queue"
	TypeBlobTrigger      = "blobTrigger"
	TypeBlob             = "blob"
	TypeTable            = "table"
	TypeEventGridTrigger = "eventGridTrigger"
	TypeEventHubTrigger  = "eventHubTrigger"
	TypeEventHub         = "eventHub"
)

// Context is the function's ambient execution context parameter.
// It carries no name or type and is never emitted as a descriptor.
type Context struct{}

// HTTPTrigger starts a function from an HTTP request.
type HTTPTrigger struct {
	Name      string
	AuthLevel string
	Methods   []string
	Route     string
}

// HTTP is the HTTP response of a function.
type HTTP struct {
	Name string
}

// TimerTrigger starts a function on a CRON schedule.
type TimerTrigger struct {
	Name         string
	Schedule     string
	RunOnStartup *bool
	UseMonitor   *bool
}

// QueueTrigger starts a function from a storage queue message.
type QueueTrigger struct {
	Name       string
	QueueName  string
	Connection string
}

// Queue writes a storage queue message.
type Queue struct {
	Name       string
	QueueName  string
	Connection string
}

// BlobTrigger starts a function when a blob changes.
type BlobTrigger struct {
	Name       string
	Path       string
	Connection string
	Direction  Direction
}

// Blob reads or writes a storage blob.
type Blob struct {
	Name       string
	Path       string
	Connection string
	Direction  Direction
}

// Table reads or writes storage table entities.
type Table struct {
	Name         string
	TableName    string
	PartitionKey string
	RowKey       string
	Filter       string
	Take         int64
	Connection   string
	Direction    Direction
}

// EventGridTrigger starts a function from an Event Grid event.
type EventGridTrigger struct {
	Name string
}

// EventHubTrigger starts a function from Event Hub events.
type EventHubTrigger struct {
	Name          string
	EventHubName  string
	ConsumerGroup string
	Connection    string
}

// EventHub writes Event Hub messages.
type EventHub struct {
	Name         string
	EventHubName string
	Connection   string
}

func (*Context) binding()          {}
func (*HTTPTrigger) binding()      {}
func (*HTTP) binding()             {}
func (*TimerTrigger) binding()     {}
func (*QueueTrigger) binding()     {}
func (*Queue) binding()            {}
func (*BlobTrigger) binding()      {}
func (*Blob) binding()             {}
func (*Table) binding()            {}
func (*EventGridTrigger) binding() {}
func (*EventHubTrigger) binding()  {}
func (*EventHub) binding()         {}

func (b *BlobTrigger) SetDirection(d Direction) { b.Direction = d }
func (b *Blob) SetDirection(d Direction)        { b.Direction = d }
func (b *Table) SetDirection(d Direction)       { b.Direction = d }

// Bool returns a pointer to v. Generated registration code uses it for
// optional flags.
func Bool(v bool) *bool {
	return &v
}

// Name returns the declared parameter name of b.
// Reports false for a context binding.
func Name(b Binding) (string, bool) {
	switch v := b.(type) {
	case *HTTPTrigger:
		return v.Name, true
	case *HTTP:
		return v.Name, true
	case *TimerTrigger:
		return v.Name, true
	case *QueueTrigger:
		return v.Name, true
	case *Queue:
		return v.Name, true
	case *BlobTrigger:
		return v.Name, true
	case *Blob:
		return v.Name, true
	case *Table:
		return v.Name, true
	case *EventGridTrigger:
		return v.Name, true
	case *EventHubTrigger:
		return v.Name, true
	case *EventHub:
		return v.Name, true
	default:
		return "", false
	}
}

// Type returns the binding type tag of b's kind family.
// An HTTP response shares the httpTrigger tag with the HTTP trigger; the host
// tells them apart by direction and shape. Reports false for a context binding.
func Type(b Binding) (string, bool) {
	switch b.(type) {
	case *HTTPTrigger, *HTTP:
		return TypeHTTPTrigger, true
	case *TimerTrigger:
		return TypeTimerTrigger, true
	case *QueueTrigger:
		return TypeQueueTrigger, true
	case *Queue:
		return TypeQueue, true
	case *BlobTrigger:
		return TypeBlobTrigger, true
	case *Blob:
		return TypeBlob, true
	case *Table:
		return TypeTable, true
	case *EventGridTrigger:
		return TypeEventGridTrigger, true
	case *EventHubTrigger:
		return TypeEventHubTrigger, true
	case *EventHub:
		return TypeEventHub, true
	default:
		return "", false
	}
}

// IsContext reports whether b is the context sentinel.
func IsContext(b Binding) bool {
	_, ok := b.(*Context)
	return ok
}

// IsTrigger reports whether b can start a function.
func IsTrigger(b Binding) bool {
	switch b.(type) {
	case *HTTPTrigger, *TimerTrigger, *QueueTrigger, *BlobTrigger, *EventGridTrigger, *EventHubTrigger:
		return true
	default:
		return false
	}
}

// DirectionOf returns the data flow direction of b.
// Context bindings report In.
func DirectionOf(b Binding) Direction {
	switch v := b.(type) {
	case *HTTP, *Queue, *EventHub:
		return Out
	case *BlobTrigger:
		return v.Direction
	case *Blob:
		return v.Direction
	case *Table:
		return v.Direction
	default:
		return In
	}
}

// Registration is one entry of a generated registration table.
type Registration struct {
	Name     string
	Disabled bool
	Bindings []Binding
}
