package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "lf", cfg.Codec.LineEnding)
	assert.False(t, cfg.Codec.UseCRLF())
	assert.False(t, cfg.Codec.KeepEmptyLines)
	assert.Zero(t, cfg.Codec.FieldsPerRecord)
	assert.Empty(t, cfg.Metrics.File)
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("LINECSV_LOG_LEVEL", "debug")
	t.Setenv("LINECSV_LOG_FORMAT", "json")
	t.Setenv("LINECSV_LINE_ENDING", "CRLF")
	t.Setenv("LINECSV_KEEP_EMPTY_LINES", "true")
	t.Setenv("LINECSV_FIELDS_PER_RECORD", "4")
	t.Setenv("LINECSV_METRICS_FILE", "/tmp/linecsv.prom")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Codec.UseCRLF())
	assert.True(t, cfg.Codec.KeepEmptyLines)
	assert.Equal(t, 4, cfg.Codec.FieldsPerRecord)
	assert.Equal(t, "/tmp/linecsv.prom", cfg.Metrics.File)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{name: "badInt", env: "LINECSV_FIELDS_PER_RECORD", val: "four"},
		{name: "badBool", env: "LINECSV_KEEP_EMPTY_LINES", val: "sometimes"},
		{name: "badLevel", env: "LINECSV_LOG_LEVEL", val: "loud"},
		{name: "badFormat", env: "LINECSV_LOG_FORMAT", val: "xml"},
		{name: "badEnding", env: "LINECSV_LINE_ENDING", val: "cr"},
		{name: "negativeWidth", env: "LINECSV_FIELDS_PER_RECORD", val: "-1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.env, tc.val)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.env)
		})
	}
}

func TestLoadEnvFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LINECSV_LOG_FORMAT=json\nLINECSV_LINE_ENDING=crlf\n"), 0o600))

	// Existing variables win over the file.
	t.Setenv("LINECSV_LINE_ENDING", "lf")
	t.Setenv("LINECSV_LOG_FORMAT", "")
	os.Unsetenv("LINECSV_LOG_FORMAT")

	require.NoError(t, LoadEnvFiles(path, filepath.Join(t.TempDir(), "missing.env")))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "lf", cfg.Codec.LineEnding)
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Codec:   CodecConfig{LineEnding: "crlf"},
	}
	s := cfg.String()
	assert.Contains(t, s, `Level: "info"`)
	assert.Contains(t, s, `LineEnding: "crlf"`)
}
