package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args and captures output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "binderd.db")
}

func TestSeedCommand(t *testing.T) {
	db := tempDB(t)

	out, err := runCLI(t, "seed", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "4 users")
	assert.Contains(t, out, "plans")
}

func TestSeedRefusesSecondRun(t *testing.T) {
	db := tempDB(t)

	_, err := runCLI(t, "seed", "--db", db)
	require.NoError(t, err)

	_, err = runCLI(t, "seed", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "already seeded")
}

func TestLoginAndState(t *testing.T) {
	db := tempDB(t)

	_, err := runCLI(t, "seed", "--db", db)
	require.NoError(t, err)

	out, err := runCLI(t, "login", "alex.doe@example.com", "--db", db, "--password", "password123")
	require.NoError(t, err)
	assert.Contains(t, out, "alex.doe@example.com")
	assert.Contains(t, out, "owner")

	out, err = runCLI(t, "state", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	snapshot, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, snapshot["authenticated"])
	assert.Equal(t, "dashboard", snapshot["currentView"])
	assert.Equal(t, "binder-1", snapshot["selectedBinderId"])
}

func TestLoginWrongPassword(t *testing.T) {
	db := tempDB(t)

	_, err := runCLI(t, "seed", "--db", db)
	require.NoError(t, err)

	_, err = runCLI(t, "login", "alex.doe@example.com", "--db", db, "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestLogoutCommand(t *testing.T) {
	db := tempDB(t)

	_, err := runCLI(t, "seed", "--db", db)
	require.NoError(t, err)
	_, err = runCLI(t, "login", "alex.doe@example.com", "--db", db, "--password", "password123")
	require.NoError(t, err)

	out, err := runCLI(t, "logout", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	out, err = runCLI(t, "state", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Session: none")
}

func TestReplayCommand(t *testing.T) {
	db := tempDB(t)

	_, err := runCLI(t, "seed", "--db", db)
	require.NoError(t, err)
	_, err = runCLI(t, "login", "alex.doe@example.com", "--db", db, "--password", "password123")
	require.NoError(t, err)

	out, err := runCLI(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "verified deterministic")

	out, err = runCLI(t, "replay", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestTestCommand(t *testing.T) {
	dir := t.TempDir()
	scenario := `name: login-basic
description: Owner signs in with seeded credentials.
steps:
  - login:
      email: alex.doe@example.com
      password: password123
assertions:
  - type: authenticated
    value: "true"
  - type: view
    value: dashboard
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "login-basic.yaml"), []byte(scenario), 0o644))

	out, err := runCLI(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ login-basic")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestCommandFailure(t *testing.T) {
	dir := t.TempDir()
	scenario := `name: login-wrong
description: Wrong password is rejected.
steps:
  - login:
      email: alex.doe@example.com
      password: nope
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "login-wrong.yaml"), []byte(scenario), 0o644))

	_, err := runCLI(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("name: x\n"), 0o644))

	out, err := runCLI(t, "test", dir, "--filter", "shop-*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandMissingDir(t *testing.T) {
	_, err := runCLI(t, "test", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
