package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"cloudctl/pkg/logging"
)

const (
	userConfigDir  = ".config/cloudctl"
	configFileName = "config"
	// EnvPrefix prefixes every settings environment variable,
	// e.g. CLOUDCTL_WAIT_TIMEOUT overrides wait.timeout.
	EnvPrefix = "CLOUDCTL"
)

// DefaultConfigDir returns ~/.config/cloudctl.
func DefaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// Load reads settings from defaults, an optional settings file and
// CLOUDCTL_* environment variables, in increasing precedence.
//
// When cfgFile is empty, config.yaml in configDir is used if present. A
// missing default file is not an error; a missing explicit file is.
func Load(cfgFile, configDir string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	case configDir != "":
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir)
	}

	if cfgFile != "" || configDir != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if cfgFile != "" || !errors.As(err, &notFound) {
				return nil, NewConfigurationError(cfgFile, "read", err.Error(),
					"Check that the file exists and is valid YAML")
			}
			logging.Debug("config", "no settings file in %s, using defaults", configDir)
		} else {
			logging.Debug("config", "loaded settings from %s", v.ConfigFileUsed())
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, NewConfigurationError(v.ConfigFileUsed(), "parse", fmt.Sprintf("unmarshal settings: %v", err))
	}

	if err := settings.Validate(); err != nil {
		return nil, NewConfigurationError(v.ConfigFileUsed(), "validation", err.Error(),
			"Run with default settings by removing the offending key")
	}
	return &settings, nil
}
