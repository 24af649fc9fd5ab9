// Package ir holds compiled function definitions and the host manifest model.
//
// Functions are produced by the compiler and consumed by codegen. A Manifest
// is the function.json document the host reads; MarshalCanonical gives it a
// deterministic encoding so ManifestDigest is stable across runs.
//
// Key constraints:
//   - no floats and no nulls in manifests
//   - manifest keys use the host's camelCase names
//   - function IDs derive from the function name only
package ir
