// Package bindings defines the binding kinds a function can declare and their
// two output representations.
//
// A Binding is a closed union: the sealed interface is implemented only by the
// pointer types in this package. Each non-context binding encodes to the host's
// binding metadata record through encoding/json and can be synthesized into a
// Go expression with GoSource, which generated registration tables embed.
//
// Generated code imports this package, so it depends on nothing beyond the
// standard library.
package bindings
