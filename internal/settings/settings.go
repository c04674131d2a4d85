// Package settings loads tool-wide settings from gridfilter.yaml, GRIDFILTER_*
// environment variables and command-line flags, in increasing precedence.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/canectors/gridfilter/internal/errhandling"
	"github.com/canectors/gridfilter/internal/logger"
	"github.com/canectors/gridfilter/pkg/grid"
)

// Setting keys. Flags use the same names with dashes.
const (
	KeyLogLevel              = "log_level"
	KeyLogFormat             = "log_format"
	KeyLogFile               = "log_file"
	KeySearchField           = "search_field"
	KeyPermissiveDescriptors = "permissive_descriptors"
	KeyOutputFormat          = "output_format"
)

// EnvPrefix prefixes environment overrides, e.g. GRIDFILTER_LOG_LEVEL.
const EnvPrefix = "GRIDFILTER"

// Settings are the resolved tool settings.
type Settings struct {
	LogLevel              string `mapstructure:"log_level"`
	LogFormat             string `mapstructure:"log_format"`
	LogFile               string `mapstructure:"log_file"`
	SearchField           string `mapstructure:"search_field"`
	PermissiveDescriptors bool   `mapstructure:"permissive_descriptors"`
	OutputFormat          string `mapstructure:"output_format"`

	// ConfigFile is the settings file that was read, empty if none
	ConfigFile string `mapstructure:"-"`
}

var outputFormats = []string{"json", "yaml", "table", "xlsx"}

// Load resolves settings. configFile names an explicit settings file; when
// empty, gridfilter.yaml is looked up in the working directory and in
// $HOME/.config/gridfilter, and a missing file is not an error. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeySearchField, grid.DefaultSearchField)
	v.SetDefault(KeyPermissiveDescriptors, false)
	v.SetDefault(KeyOutputFormat, "table")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{KeyLogLevel, KeyLogFormat, KeyLogFile, KeySearchField, KeyPermissiveDescriptors, KeyOutputFormat} {
			if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", f.Name, err)
				}
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("gridfilter")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "gridfilter"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errhandling.NewConfigError("reading settings", err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, errhandling.NewConfigError("decoding settings", err)
	}
	s.ConfigFile = v.ConfigFileUsed()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks enumerated values.
func (s *Settings) Validate() error {
	if _, err := logger.ParseLevel(s.LogLevel); err != nil {
		return errhandling.NewConfigError("invalid log_level", err)
	}
	if _, err := logger.ParseFormat(s.LogFormat); err != nil {
		return errhandling.NewConfigError("invalid log_format", err)
	}
	if !slices.Contains(outputFormats, s.OutputFormat) {
		return errhandling.NewConfigError(
			fmt.Sprintf("invalid output_format %q (expected one of %s)", s.OutputFormat, strings.Join(outputFormats, ", ")), nil)
	}
	if strings.TrimSpace(s.SearchField) == "" {
		return errhandling.NewConfigError("search_field cannot be empty", nil)
	}
	return nil
}

// ConfigureLogger applies the log settings to the package logger.
func (s *Settings) ConfigureLogger() error {
	level, err := logger.ParseLevel(s.LogLevel)
	if err != nil {
		return errhandling.NewConfigError("invalid log_level", err)
	}
	format, err := logger.ParseFormat(s.LogFormat)
	if err != nil {
		return errhandling.NewConfigError("invalid log_format", err)
	}

	if s.LogFile != "" {
		if err := logger.SetLogFile(s.LogFile, level, format); err != nil {
			return errhandling.NewConfigError("opening log file", err)
		}
	} else {
		logger.CloseLogFile()
		logger.SetLevelAndFormat(level, format)
	}

	if s.ConfigFile != "" {
		logger.Debug("settings loaded", slog.String("path", s.ConfigFile))
	}
	return nil
}
