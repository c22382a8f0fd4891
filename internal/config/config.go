// Package config loads the optional run file.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the run file configuration.
type Config struct {
	Chats     []int64   `mapstructure:"chats"`
	Cutoff    string    `mapstructure:"cutoff"`
	DryRun    bool      `mapstructure:"dry_run"`
	PageSize  int       `mapstructure:"page_size"`
	ChunkSize int       `mapstructure:"chunk_size"`
	Log       LogConfig `mapstructure:"log"`
}

// LogConfig is the log file configuration.  If File is empty, logs are
// written to the terminal only.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

const (
	DefPageSize  = 100
	DefChunkSize = 100
)

// Load reads the configuration from the file at configPath.  Values missing
// from the file get the defaults.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return decode(v)
}

// Default returns the configuration with default values.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		// defaults are static
		panic(err)
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chats", []int64{})
	v.SetDefault("cutoff", "")
	v.SetDefault("dry_run", false)
	v.SetDefault("page_size", DefPageSize)
	v.SetDefault("chunk_size", DefChunkSize)

	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", false)
}
