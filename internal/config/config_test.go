package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigFull(t *testing.T) {
	data := []byte(`
sources: [api, jobs]
package: handlers
qualifier: fb
output: internal/gen
manifests: dist
registration_file: bindings_gen.go
cache: tmp/cache.db
`)
	cfg, err := ParseConfig(data, "/proj/funcbind.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"api", "jobs"}, cfg.Sources)
	assert.Equal(t, "handlers", cfg.Package)
	assert.Equal(t, "fb", cfg.Qualifier)
	assert.Equal(t, "/proj", cfg.Dir)
	assert.Equal(t, []string{"/proj/api", "/proj/jobs"}, cfg.SourceDirs())
	assert.Equal(t, "/proj/internal/gen/bindings_gen.go", cfg.RegistrationPath())
	assert.Equal(t, "/proj/dist", cfg.ManifestDir())
	assert.Equal(t, "/proj/tmp/cache.db", cfg.CachePath())
}

func TestParseConfigDefaults(t *testing.T) {
	for _, data := range []string{"", "# nothing set\n", "package: functions\n"} {
		cfg, err := ParseConfig([]byte(data), "/proj/funcbind.yaml")
		require.NoError(t, err, "config %q", data)

		assert.Equal(t, []string{"."}, cfg.Sources)
		assert.Equal(t, "functions", cfg.Package)
		assert.Empty(t, cfg.Qualifier)
		assert.Equal(t, "gen", cfg.Output)
		assert.Empty(t, cfg.Manifests)
		assert.Equal(t, "/proj/gen", cfg.ManifestDir())
		assert.Equal(t, "/proj/gen/registrations.go", cfg.RegistrationPath())
		assert.Equal(t, "/proj/.funcbind/cache.db", cfg.CachePath())
	}
}

func TestDefault(t *testing.T) {
	cfg := Default("/work")
	assert.Equal(t, []string{"/work"}, cfg.SourceDirs())
	assert.Equal(t, "/work/gen", cfg.ManifestDir())
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad yaml", "package: [", "parsing"},
		{"unknown field", "packages: x\n", "field packages not found"},
		{"bad package", "package: my-funcs\n", "not a valid Go identifier"},
		{"bad qualifier", "qualifier: 9x\n", "not a valid Go identifier"},
		{"registration path", "registration_file: gen/r.go\n", "must be a file name"},
		{"registration ext", "registration_file: r.txt\n", "must end in .go"},
		{"empty source", "sources: ['']\n", "sources[0] is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data), "funcbind.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPathKeepsAbsolute(t *testing.T) {
	cfg := Default("/proj")
	assert.Equal(t, "/elsewhere/cache.db", cfg.Path("/elsewhere/cache.db"))
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, err := FindConfig(nested)
	require.NoError(t, err)
	assert.Empty(t, path)

	want := filepath.Join(root, FileName)
	require.NoError(t, os.WriteFile(want, []byte("package: fns\n"), 0o644))

	path, err = FindConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, want, path)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "fns", cfg.Package)
	assert.Equal(t, root, cfg.Dir)
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), FileName))
	assert.ErrorContains(t, err, "reading config")
}
