// Package codegen writes the artifacts of a compiled function set: one
// function.json manifest per function for the host process, and a formatted
// Go registration table that rebuilds the same bindings at build time.
package codegen
