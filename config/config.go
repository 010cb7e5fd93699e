package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/SteamServerUI/WorldBackupManager/global"
)

// Config holds the process settings. Preferences (last backup location, world
// path) are not part of it; they live in the preferences file.
type Config struct {
	LogLevel        string `mapstructure:"log_level" validate:"required,oneof=Debug Info Warn Error debug info warn error"`
	LogFormat       string `mapstructure:"log_format" validate:"required,oneof=console json"`
	LogFile         string `mapstructure:"log_file"`
	PreferencesFile string `mapstructure:"preferences_file" validate:"required"`
	ContainerName   string `mapstructure:"container_name" validate:"required,excludesall=/\\,ne=.,ne=.."`
	BackupSuffix    string `mapstructure:"backup_suffix" validate:"required,excludesall=/\\,ne=.,ne=.."`
}

var validate = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", global.DefaultLogLevel)
	v.SetDefault("log_format", global.DefaultLogFormat)
	v.SetDefault("log_file", "")
	v.SetDefault("preferences_file", global.PreferencesFile)
	v.SetDefault("container_name", global.ContainerName)
	v.SetDefault("backup_suffix", global.BackupSuffix)
}

// Load reads settings from configFile, or from worldbackup.yaml in the working
// directory or the user config directory when configFile is empty. A missing
// default config file is not an error. WORLDBACKUP_* environment variables
// override file values.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(global.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(global.ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, global.AppName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
