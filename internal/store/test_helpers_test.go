package store

import (
	"path/filepath"
	"testing"
)

// createTestStore opens a fresh cache in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// manifestArtifact returns a manifest record with the given digest.
func manifestArtifact(fn, digest string) Artifact {
	return Artifact{
		Path:             "functions/" + fn + "/function.json",
		Kind:             KindManifest,
		Function:         fn,
		FunctionID:       "id-" + fn,
		Digest:           digest,
		GeneratorVersion: "0.1.0",
	}
}
