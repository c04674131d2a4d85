package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canectors/gridfilter/internal/errhandling"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gridfilter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.String("output-format", "table", "")
	flags.Bool("permissive-descriptors", false, "")
	return flags
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := Load("", nil)

	require.NoError(t, err)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
	assert.Empty(t, s.LogFile)
	assert.Equal(t, "name", s.SearchField)
	assert.False(t, s.PermissiveDescriptors)
	assert.Equal(t, "table", s.OutputFormat)
	assert.Empty(t, s.ConfigFile)
}

func TestLoad_File(t *testing.T) {
	path := writeSettings(t, `
log_level: debug
log_format: human
search_field: title
permissive_descriptors: true
output_format: yaml
`)

	s, err := Load(path, nil)

	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "human", s.LogFormat)
	assert.Equal(t, "title", s.SearchField)
	assert.True(t, s.PermissiveDescriptors)
	assert.Equal(t, "yaml", s.OutputFormat)
	assert.Equal(t, path, s.ConfigFile)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeSettings(t, "log_level: warn\noutput_format: yaml\nsearch_field: title\n")
	t.Setenv("GRIDFILTER_OUTPUT_FORMAT", "json")
	t.Setenv("GRIDFILTER_SEARCH_FIELD", "code")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--log-level", "error"}))

	s, err := Load(path, flags)

	require.NoError(t, err)
	assert.Equal(t, "error", s.LogLevel, "changed flag beats file")
	assert.Equal(t, "json", s.OutputFormat, "env beats file")
	assert.Equal(t, "code", s.SearchField)
	assert.False(t, s.PermissiveDescriptors, "unchanged flag keeps default")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad level", "log_level: loud\n"},
		{"bad format", "log_format: xml\n"},
		{"bad output", "output_format: csv\n"},
		{"empty search field", "search_field: ' '\n"},
		{"malformed yaml", "log_level: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeSettings(t, tt.content), nil)
			require.Error(t, err)
			assert.Equal(t, errhandling.CategoryConfig, errhandling.GetErrorCategory(err))
		})
	}

	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		assert.Error(t, err)
	})
}

func TestConfigureLogger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "gridfilter.log")
	s := &Settings{LogLevel: "debug", LogFormat: "human", LogFile: logFile, SearchField: "name", OutputFormat: "json"}

	require.NoError(t, s.ConfigureLogger())
	t.Cleanup(func() {
		s := &Settings{LogLevel: "info", LogFormat: "json"}
		_ = s.ConfigureLogger()
	})

	_, err := os.Stat(logFile)
	assert.NoError(t, err)

	bad := &Settings{LogLevel: "debug", LogFormat: "json", LogFile: filepath.Join(t.TempDir(), "missing", "x.log")}
	assert.Error(t, bad.ConfigureLogger())
}
