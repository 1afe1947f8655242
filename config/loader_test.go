package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(`
active: false
defaults:
  runTimes: 10
  concurrent: true
  verbose: true
  recursionCheck: false
report:
  color: never
logging:
  level: debug
`))
	require.NoError(t, err)

	require.NotNil(t, cfg.Active)
	assert.False(t, *cfg.Active)
	assert.Equal(t, 10, cfg.Defaults.RunTimes)
	assert.True(t, cfg.Defaults.Concurrent)
	assert.True(t, cfg.Defaults.Verbose)
	require.NotNil(t, cfg.Defaults.RecursionCheck)
	assert.False(t, *cfg.Defaults.RecursionCheck)
	assert.Equal(t, "never", cfg.Report.Color)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestParse_EmptyIsValid(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Nil(t, cfg.Active)
	assert.Zero(t, cfg.Defaults.RunTimes)
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	_, err := Parse([]byte("runtimes: 5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestParse_SchemaRejectsZeroRunTimes(t *testing.T) {
	_, err := Parse([]byte("defaults:\n  runTimes: -3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema violation")
}

func TestParse_SchemaRejectsBadColor(t *testing.T) {
	_, err := Parse([]byte("report:\n  color: sometimes\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema violation")
}

func TestParse_BadLogLevel(t *testing.T) {
	_, err := Parse([]byte("logging:\n  level: loud\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestParse_NotYAML(t *testing.T) {
	_, err := Parse([]byte("{{nope"))
	require.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stint.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defaults:\n  runTimes: 3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Defaults.RunTimes)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}
