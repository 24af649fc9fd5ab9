package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateJSON runs generate in JSON mode and decodes the result.
func generateJSON(t *testing.T, args ...string) GenerateResult {
	t.Helper()
	out, err := runCLI(t, append([]string{"--format", "json", "generate"}, args...)...)
	require.NoError(t, err, out)

	var resp struct {
		Status string         `json:"status"`
		Data   GenerateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestGenerateWritesArtifacts(t *testing.T) {
	dir := copyFixtures(t)

	result := generateJSON(t, dir)
	assert.Equal(t, 3, result.Functions)
	assert.Len(t, result.Written, 4)
	assert.Empty(t, result.Unchanged)

	for _, name := range []string{"greet", "resize", "tick"} {
		assert.FileExists(t, filepath.Join(dir, "gen", name, "function.json"))
	}
	assert.FileExists(t, filepath.Join(dir, ".funcbind", "cache.db"))

	got, err := os.ReadFile(filepath.Join(dir, "gen", "registrations.go"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("..", "codegen", "testdata", "golden", "registrations.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	manifest, err := os.ReadFile(filepath.Join(dir, "gen", "greet", "function.json"))
	require.NoError(t, err)
	wantManifest, err := os.ReadFile(filepath.Join("..", "codegen", "testdata", "golden", "manifest_greet.golden"))
	require.NoError(t, err)
	assert.JSONEq(t, string(wantManifest), string(manifest))
}

func TestGenerateSkipsUnchanged(t *testing.T) {
	dir := copyFixtures(t)
	generateJSON(t, dir)

	result := generateJSON(t, dir)
	assert.Empty(t, result.Written)
	assert.Len(t, result.Unchanged, 4)
	assert.Empty(t, result.Removed)
}

func TestGenerateRewritesDeletedFile(t *testing.T) {
	dir := copyFixtures(t)
	generateJSON(t, dir)

	path := filepath.Join(dir, "gen", "tick", "function.json")
	require.NoError(t, os.Remove(path))

	result := generateJSON(t, dir)
	assert.Equal(t, []string{path}, result.Written)
	assert.FileExists(t, path)
}

func TestGenerateRewritesChangedFunction(t *testing.T) {
	dir := copyFixtures(t)
	generateJSON(t, dir)

	src := `package functions

function: greet: {
	params: [
		{name: "ctx", role: "Context"},
		{name: "req", role: "HttpRequest", usage: "trigger", auth_level: "function", methods: "get|post"},
	]
	returns: {role: "HttpResponse"}
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "http.cue"), []byte(src), 0o644))

	result := generateJSON(t, dir)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "gen", "greet", "function.json"),
		filepath.Join(dir, "gen", "registrations.go"),
	}, result.Written)
	assert.Len(t, result.Unchanged, 2)
}

func TestGenerateForce(t *testing.T) {
	dir := copyFixtures(t)
	generateJSON(t, dir)

	result := generateJSON(t, dir, "--force")
	assert.Len(t, result.Written, 4)
	assert.Empty(t, result.Unchanged)
}

func TestGenerateNoCache(t *testing.T) {
	dir := copyFixtures(t)

	result := generateJSON(t, dir, "--no-cache")
	assert.Len(t, result.Written, 4)
	assert.NoDirExists(t, filepath.Join(dir, ".funcbind"))

	result = generateJSON(t, dir, "--no-cache")
	assert.Len(t, result.Written, 4)
}

func TestGeneratePrunesRemovedFunction(t *testing.T) {
	dir := copyFixtures(t)
	generateJSON(t, dir)

	require.NoError(t, os.Remove(filepath.Join(dir, "http.cue")))

	result := generateJSON(t, dir)
	assert.Equal(t, 2, result.Functions)
	greet := filepath.Join(dir, "gen", "greet", "function.json")
	assert.Equal(t, []string{greet}, result.Removed)
	assert.NoFileExists(t, greet)
	assert.NoDirExists(t, filepath.Join(dir, "gen", "greet"))

	reg, err := os.ReadFile(filepath.Join(dir, "gen", "registrations.go"))
	require.NoError(t, err)
	assert.NotContains(t, string(reg), `"greet"`)
}

func TestGenerateFlags(t *testing.T) {
	dir := copyFixtures(t)
	out := filepath.Join(t.TempDir(), "out")
	manifests := filepath.Join(t.TempDir(), "manifests")

	generateJSON(t, dir,
		"--output", out,
		"--manifests", manifests,
		"--package", "handlers",
		"--qualifier", "fb",
		"--no-cache",
	)

	assert.FileExists(t, filepath.Join(manifests, "tick", "function.json"))
	assert.NoFileExists(t, filepath.Join(out, "tick", "function.json"))

	reg, err := os.ReadFile(filepath.Join(out, "registrations.go"))
	require.NoError(t, err)
	assert.Contains(t, string(reg), "package handlers")
	assert.Contains(t, string(reg), `fb "github.com/roach88/funcbind/pkg/bindings"`)
	assert.Contains(t, string(reg), "[]fb.Registration{")
}

func TestGenerateConfigFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "defs")
	require.NoError(t, os.Mkdir(src, 0o755))
	for _, name := range []string{"http.cue", "storage.cue"} {
		data, err := os.ReadFile(filepath.Join(fixturesDir, name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(src, name), data, 0o644))
	}

	cfg := `sources: [defs]
package: app
output: internal/app
manifests: functions
registration_file: zz_registrations.go
cache: build/cache.db
`
	cfgPath := filepath.Join(root, "funcbind.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	result := generateJSON(t, "--config", cfgPath)
	assert.Len(t, result.Written, 4)

	assert.FileExists(t, filepath.Join(root, "functions", "resize", "function.json"))
	assert.FileExists(t, filepath.Join(root, "build", "cache.db"))
	reg, err := os.ReadFile(filepath.Join(root, "internal", "app", "zz_registrations.go"))
	require.NoError(t, err)
	assert.Contains(t, string(reg), "package app")
}

func TestGenerateFindsConfigAboveSources(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "funcbind.yaml"), []byte("package: found\n"), 0o644))

	dir := filepath.Join(root, "defs")
	require.NoError(t, os.Mkdir(dir, 0o755))
	data, err := os.ReadFile(filepath.Join(fixturesDir, "storage.cue"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "storage.cue"), data, 0o644))

	generateJSON(t, dir, "--no-cache")

	reg, err := os.ReadFile(filepath.Join(root, "gen", "registrations.go"))
	require.NoError(t, err)
	assert.Contains(t, string(reg), "package found")
}

func TestGenerateInvalidConfig(t *testing.T) {
	dir := copyFixtures(t)
	cfgPath := filepath.Join(dir, "funcbind.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("package: not-valid\n"), 0o644))

	_, err := runCLI(t, "generate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "not a valid Go identifier")
}

func TestGenerateStopsOnValidationErrors(t *testing.T) {
	dir := writeCUE(t, `package functions

function: lonely: params: [{name: "b", role: "Blob", path: "p"}]
`)

	out, err := runCLI(t, "generate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E201")
	assert.NoDirExists(t, filepath.Join(dir, "gen"))
}

func TestGenerateStopsOnCompileErrors(t *testing.T) {
	dir := writeCUE(t, `package functions

function: f: params: [{name: "x", role: "Frobnicate", usage: "trigger"}]
`)

	_, err := runCLI(t, "generate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.NoDirExists(t, filepath.Join(dir, "gen"))
}

func TestGenerateTextOutput(t *testing.T) {
	dir := copyFixtures(t)

	out, err := runCLI(t, "generate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Generated 3 function(s): 4 written, 0 unchanged")

	out, err = runCLI(t, "generate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "0 written, 4 unchanged")
	assert.Contains(t, out, "(unchanged)")
}
