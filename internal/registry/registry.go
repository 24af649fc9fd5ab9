package registry

import (
	"fmt"
	"slices"
	"sync"
)

// Kind names one of the four registries.
type Kind int

const (
	// Triggers holds role names that can only start a function.
	Triggers Kind = iota
	// Inputs holds role names usable as named input bindings.
	Inputs
	// Dual holds role names usable as input, output or both.
	Dual
	// Outputs holds role names usable as named output bindings.
	Outputs
)

var kindNames = [...]string{
	Triggers: "trigger",
	Inputs:   "input",
	Dual:     "input/output",
	Outputs:  "output",
}

func (k Kind) String() string {
	if k < Triggers || k > Outputs {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds lists the registries in lookup order.
var Kinds = []Kind{Triggers, Inputs, Dual, Outputs}

// Registry maps role names to factories. It is immutable once built.
type Registry struct {
	kind      Kind
	factories map[string]Factory
}

// Kind returns which registry r is.
func (r *Registry) Kind() Kind {
	return r.kind
}

// Lookup returns the factory registered for role.
func (r *Registry) Lookup(role string) (Factory, bool) {
	f, ok := r.factories[role]
	return f, ok
}

// Roles returns the registered role names in sorted order.
func (r *Registry) Roles() []string {
	roles := make([]string, 0, len(r.factories))
	for role := range r.factories {
		roles = append(roles, role)
	}
	slices.Sort(roles)
	return roles
}

// Entry registers one factory under a role name in one registry.
type Entry struct {
	Kind    Kind
	Role    string
	Factory Factory
}

// Catalog holds the four registries used by Resolve.
type Catalog struct {
	registries [len(kindNames)]*Registry
}

// NewCatalog builds a catalog from entries. A role may appear in several
// registries but only once per registry.
func NewCatalog(entries ...Entry) (*Catalog, error) {
	c := &Catalog{}
	for _, k := range Kinds {
		c.registries[k] = &Registry{kind: k, factories: make(map[string]Factory)}
	}
	for _, e := range entries {
		if e.Kind < Triggers || e.Kind > Outputs {
			return nil, fmt.Errorf("role %q: invalid registry %v", e.Role, e.Kind)
		}
		if e.Role == "" {
			return nil, fmt.Errorf("%s registry: empty role name", e.Kind)
		}
		if e.Factory == nil {
			return nil, fmt.Errorf("%s registry: role %q has no factory", e.Kind, e.Role)
		}
		r := c.registries[e.Kind]
		if _, dup := r.factories[e.Role]; dup {
			return nil, fmt.Errorf("%s registry: duplicate role %q", e.Kind, e.Role)
		}
		r.factories[e.Role] = e.Factory
	}
	return c, nil
}

// Registry returns the registry of the given kind.
func (c *Catalog) Registry(k Kind) *Registry {
	return c.registries[k]
}

// DefaultEntries returns the built-in binding kinds. Callers can append
// entries for new kinds and pass the result to NewCatalog.
func DefaultEntries() []Entry {
	return []Entry{
		{Triggers, "HttpRequest", NewHTTPTrigger},
		{Triggers, "TimerInfo", NewTimerTrigger},
		{Triggers, "QueueTrigger", NewQueueTrigger},
		{Triggers, "BlobTrigger", NewBlobTrigger},
		{Triggers, "EventGridEvent", NewEventGridTrigger},
		{Triggers, "EventHubTrigger", NewEventHubTrigger},

		{Inputs, "Blob", NewBlob},
		{Inputs, "Table", NewTable},

		{Dual, "BlobTrigger", NewBlobTrigger},
		{Dual, "Blob", NewBlob},

		{Outputs, "HttpResponse", NewHTTP},
		{Outputs, "QueueMessage", NewQueue},
		{Outputs, "Blob", NewBlob},
		{Outputs, "Table", NewTable},
		{Outputs, "EventHubMessage", NewEventHub},
	}
}

// Default returns the process-wide catalog of built-in kinds.
// It is built on first use and never modified afterwards.
var Default = sync.OnceValue(func() *Catalog {
	c, err := NewCatalog(DefaultEntries()...)
	if err != nil {
		panic(fmt.Sprintf("building default binding catalog: %v", err))
	}
	return c
})
