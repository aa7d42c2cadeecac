package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables overriding configuration keys,
// e.g. PNGSTASH_PNG_HIDDEN_TYPE.
const EnvPrefix = "PNGSTASH"

// Config represents the complete application configuration
type Config struct {
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	PNG    PNGConfig    `yaml:"png" mapstructure:"png"`
	Inject InjectConfig `yaml:"inject" mapstructure:"inject"`
	Dump   DumpConfig   `yaml:"dump" mapstructure:"dump"`
}

// LogConfig represents logging configuration with rotation support
type LogConfig struct {
	File       string `yaml:"file" mapstructure:"file"`               // Log file path (empty = stderr only)
	Level      string `yaml:"level" mapstructure:"level"`             // Log level (debug, info, warn, error)
	Format     string `yaml:"format" mapstructure:"format"`           // Handler format (text, json)
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // Max size in MB before rotation
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // Max age in days to keep files
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // Max number of old files to keep
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // Compress old log files
}

// PNGConfig represents chunk parsing configuration
type PNGConfig struct {
	HiddenType     string `yaml:"hidden_type" mapstructure:"hidden_type"`
	MaxChunkLength int64  `yaml:"max_chunk_length" mapstructure:"max_chunk_length"`
	MaxChunks      int    `yaml:"max_chunks" mapstructure:"max_chunks"`
	BufferSize     int    `yaml:"buffer_size" mapstructure:"buffer_size"`
}

// InjectConfig represents inject command configuration
type InjectConfig struct {
	DefaultMessage string `yaml:"default_message" mapstructure:"default_message"`
	Overwrite      bool   `yaml:"overwrite" mapstructure:"overwrite"`
}

// DumpConfig represents dump command configuration
type DumpConfig struct {
	Format   string `yaml:"format" mapstructure:"format"`
	Collapse bool   `yaml:"collapse" mapstructure:"collapse"`
	Workers  int    `yaml:"workers" mapstructure:"workers"`
}

var (
	validLogLevels   = []string{"debug", "info", "warn", "error"}
	validLogFormats  = []string{"text", "json"}
	validDumpFormats = []string{"text", "json", "yaml"}
)

// DeepCopy returns a deep copy of the configuration
func (c *Config) DeepCopy() *Config {
	if c == nil {
		return nil
	}

	copyCfg := &Config{}
	if err := copier.CopyWithOption(copyCfg, c, copier.Option{DeepCopy: true}); err != nil {
		// Config only holds value fields, a shallow copy is still a full copy.
		v := *c
		return &v
	}

	return copyCfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Log.Level != "" && !slices.Contains(validLogLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of: %s", strings.Join(validLogLevels, ", "))
	}

	if c.Log.Format != "" && !slices.Contains(validLogFormats, c.Log.Format) {
		return fmt.Errorf("log.format must be one of: %s", strings.Join(validLogFormats, ", "))
	}

	if c.Log.MaxSize < 0 {
		return fmt.Errorf("log.max_size must be non-negative")
	}

	if c.Log.MaxAge < 0 {
		return fmt.Errorf("log.max_age must be non-negative")
	}

	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_backups must be non-negative")
	}

	if _, err := c.HiddenChunkType(); err != nil {
		return fmt.Errorf("png.hidden_type: %w", err)
	}

	if c.PNG.MaxChunkLength < 0 || c.PNG.MaxChunkLength > maxChunkLength {
		return fmt.Errorf("png.max_chunk_length must be between 0 and %d", maxChunkLength)
	}

	if c.PNG.MaxChunks < 0 {
		return fmt.Errorf("png.max_chunks must be non-negative")
	}

	if c.PNG.BufferSize < 0 {
		return fmt.Errorf("png.buffer_size must be non-negative")
	}

	if c.Dump.Format != "" && !slices.Contains(validDumpFormats, c.Dump.Format) {
		return fmt.Errorf("dump.format must be one of: %s", strings.Join(validDumpFormats, ", "))
	}

	if c.Dump.Workers < 0 {
		return fmt.Errorf("dump.workers must be non-negative")
	}

	return nil
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			File:       "",     // Empty = stderr only
			Level:      "info", // Default log level
			Format:     "text",
			MaxSize:    10, // 10MB max size
			MaxAge:     30, // Keep for 30 days
			MaxBackups: 3,  // Keep 3 old files
			Compress:   true,
		},
		PNG: PNGConfig{
			HiddenType:     "hIDe",
			MaxChunkLength: maxChunkLength,
			MaxChunks:      defaultMaxChunks,
			BufferSize:     defaultBufferSize, // 32KB
		},
		Inject: InjectConfig{
			DefaultMessage: "Kilroy was here!",
			Overwrite:      false,
		},
		Dump: DumpConfig{
			Format:   "text",
			Collapse: false,
			Workers:  4,
		},
	}
}

// SaveToFile saves a configuration to a YAML file
func SaveToFile(config *Config, filename string) error {
	if filename == "" {
		return fmt.Errorf("no config file path provided")
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadConfig loads configuration from file and merges with defaults.
// An explicitly named file must exist; without one, pngstash.yaml is looked up in
// the working directory and the user config directory, and defaults are used when
// none is found. Environment variables prefixed with EnvPrefix override file values.
func LoadConfig(configFile string) (*Config, error) {
	config := DefaultConfig()
	v := newViper(config)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("pngstash")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "pngstash"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// newViper registers every key with its default so environment overrides apply
// even when the key is absent from the config file.
func newViper(defaults *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("log.max_size", defaults.Log.MaxSize)
	v.SetDefault("log.max_age", defaults.Log.MaxAge)
	v.SetDefault("log.max_backups", defaults.Log.MaxBackups)
	v.SetDefault("log.compress", defaults.Log.Compress)
	v.SetDefault("png.hidden_type", defaults.PNG.HiddenType)
	v.SetDefault("png.max_chunk_length", defaults.PNG.MaxChunkLength)
	v.SetDefault("png.max_chunks", defaults.PNG.MaxChunks)
	v.SetDefault("png.buffer_size", defaults.PNG.BufferSize)
	v.SetDefault("inject.default_message", defaults.Inject.DefaultMessage)
	v.SetDefault("inject.overwrite", defaults.Inject.Overwrite)
	v.SetDefault("dump.format", defaults.Dump.Format)
	v.SetDefault("dump.collapse", defaults.Dump.Collapse)
	v.SetDefault("dump.workers", defaults.Dump.Workers)

	return v
}
