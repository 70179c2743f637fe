package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smuti/greydb-api/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSteps(t *testing.T) {
	got, err := parseSteps(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = parseSteps([]string{" 3 "})
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	for _, raw := range []string{"0", "-1", "x"} {
		_, err := parseSteps([]string{raw})
		assert.Error(t, err, raw)
	}
}

func TestParseVersionAndTarget(t *testing.T) {
	version, err := parseVersion("1772323200")
	require.NoError(t, err)
	assert.Equal(t, 1772323200, version)

	_, err = parseVersion("-5")
	assert.Error(t, err)

	target, err := parseTarget("7")
	require.NoError(t, err)
	assert.Equal(t, uint(7), target)

	_, err = parseTarget("-7")
	assert.Error(t, err)
}

func TestWithPreparedBinaryFlag(t *testing.T) {
	raw := "postgres://u:p@localhost:5432/greydb?sslmode=disable"

	t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "false")
	assert.Equal(t, raw, withPreparedBinaryFlag(raw))

	t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
	assert.Contains(t, withPreparedBinaryFlag(raw), "disable_prepared_binary_result=yes")

	explicit := raw + "&disable_prepared_binary_result=no"
	t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "true")
	assert.Equal(t, explicit, withPreparedBinaryFlag(explicit))
}

func TestResolveMigrationsDir_PrefersExplicitFlag(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MIGRATIONS_DIR", filepath.Join(dir, "missing"))

	got, err := resolveMigrationsDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestResolveMigrationsDir_NotFound(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Setenv("MIGRATIONS_DIR", "")

	_, err = resolveMigrationsDir("")
	if _, statErr := os.Stat("/app/db/migrations"); statErr == nil {
		t.Skip("container migrations dir present")
	}
	assert.Error(t, err)
}

func TestUpRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DB_URL", "")

	cmd := rootCmd(logging.NewNop())
	cmd.SetArgs([]string{"up"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_URL is required")
}
