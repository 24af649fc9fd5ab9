package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/funcbind/pkg/bindings"
)

func TestManifestDigestStable(t *testing.T) {
	a, err := ManifestDigest(NewManifest(greetFunction()))
	require.NoError(t, err)
	b, err := ManifestDigest(NewManifest(greetFunction()))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestManifestDigestTracksDirection(t *testing.T) {
	f := greetFunction()
	before, err := ManifestDigest(NewManifest(f))
	require.NoError(t, err)

	f.Params[2].Binding.(*bindings.Blob).Direction = bindings.Out
	after, err := ManifestDigest(NewManifest(f))
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestManifestDigestRejectsContext(t *testing.T) {
	m := NewManifest(greetFunction())
	m.Bindings = append(m.Bindings, &bindings.Context{})

	_, err := ManifestDigest(m)
	assert.ErrorIs(t, err, bindings.ErrContextBinding)
}

func TestHashWithDomainSeparation(t *testing.T) {
	data := []byte(`{}`)
	assert.NotEqual(t, hashWithDomain(DomainManifest, data), hashWithDomain("other/v1", data))
}

func TestRegistrationDigest(t *testing.T) {
	manifests := map[string]string{"greet": "aa", "tick": "bb"}

	a, err := RegistrationDigest("functions", "", manifests)
	require.NoError(t, err)
	b, err := RegistrationDigest("functions", "", map[string]string{"tick": "bb", "greet": "aa"})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	renamed, err := RegistrationDigest("handlers", "", manifests)
	require.NoError(t, err)
	assert.NotEqual(t, a, renamed)

	changed, err := RegistrationDigest("functions", "", map[string]string{"greet": "aa", "tick": "cc"})
	require.NoError(t, err)
	assert.NotEqual(t, a, changed)
}
