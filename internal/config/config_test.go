package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("conn", "c", "", "")
	fs.String("log-level", "", "")
	fs.String("log-file", "", "")
	fs.Int64("log-max-size", 10, "")
	fs.String("addr", "localhost:8000", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadConnectionList(t *testing.T) {
	t.Setenv("POSTGRES_CONNECTION_STRING", "postgres://a, postgres://b ,postgres://c")

	cfg, err := Load(testFlags(t))
	require.NoError(t, err)

	assert.Empty(t, cfg.PrimaryDSN)
	assert.Equal(t, []string{"postgres://a", "postgres://b", "postgres://c"}, cfg.ConnectionList)
}

func TestLoadNamedConnections(t *testing.T) {
	t.Setenv("POSTGRES_DB_REPORTING", "postgres://reporting")
	t.Setenv("POSTGRES_DB_ANALYTICS", "postgres://analytics")

	cfg, err := Load(testFlags(t))
	require.NoError(t, err)

	// Names are lowercased and ordered deterministically.
	assert.Equal(t, []NamedDSN{
		{Name: "analytics", DSN: "postgres://analytics"},
		{Name: "reporting", DSN: "postgres://reporting"},
	}, cfg.Named)
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	t.Setenv("PGEXPLORER_CONN", "postgres://from-env")
	t.Setenv("PGEXPLORER_LOG_LEVEL", "warn")

	cfg, err := Load(testFlags(t, "--conn", "postgres://from-flag"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://from-flag", cfg.PrimaryDSN)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_CONNECTION_STRING", "")

	cfg, err := Load(testFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "localhost:8000", cfg.HTTPAddr)
	assert.Empty(t, cfg.ConnectionList)
}
