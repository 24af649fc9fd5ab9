package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/funcbind/internal/registry"
)

func TestListRolesDefault(t *testing.T) {
	listing := ListRoles(registry.Default())
	require.Len(t, listing, 4)

	byName := make(map[string]RegistryRoles)
	for _, r := range listing {
		byName[r.Registry] = r
	}

	assert.Equal(t, []string{"trigger"}, byName["trigger"].Usages)
	assert.Equal(t, []string{"in"}, byName["input"].Usages)
	assert.Equal(t, []string{"in", "inout", "out"}, byName["input/output"].Usages)
	assert.Equal(t, []string{"out"}, byName["output"].Usages)

	assert.Equal(t, []string{"Blob", "BlobTrigger"}, byName["input/output"].Roles)
	assert.Contains(t, byName["trigger"].Roles, "HttpRequest")
	assert.NotContains(t, byName["trigger"].Roles, "HttpResponse")
}

func TestListRolesCustomCatalog(t *testing.T) {
	catalog, err := registry.NewCatalog(
		registry.Entry{Kind: registry.Triggers, Role: "Cron", Factory: registry.NewTimerTrigger},
	)
	require.NoError(t, err)

	listing := ListRoles(catalog)
	require.Len(t, listing, 4)
	assert.Equal(t, []string{"Cron"}, listing[0].Roles)
	for _, r := range listing[1:] {
		assert.Empty(t, r.Roles, r.Registry)
	}
}

func TestRolesText(t *testing.T) {
	out, err := runCLI(t, "roles")
	require.NoError(t, err)

	assert.Contains(t, out, "trigger (usage: trigger)")
	assert.Contains(t, out, "input/output (usage: in, inout, out)")
	assert.Contains(t, out, "  QueueMessage\n")
}

func TestRolesJSON(t *testing.T) {
	out, err := runCLI(t, "--format", "json", "roles")
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   []RegistryRoles `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ListRoles(registry.Default()), resp.Data)
}

func TestRolesRejectsArgs(t *testing.T) {
	_, err := runCLI(t, "roles", "extra")
	assert.Error(t, err)
}
