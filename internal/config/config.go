// File: internal/config/config.go
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Extractor ExtractorConfig `mapstructure:"extractor" yaml:"extractor"`
	// Run gets its marching orders from CLI flags, not the config file.
	Run RunConfig `mapstructure:"-" yaml:"-"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ExtractorConfig tunes the extraction pipeline.
type ExtractorConfig struct {
	// AttributeValueCeiling is the maximum attribute value length eligible
	// for selector pairs; longer href/src-like values are reduced to their
	// URI tail.
	AttributeValueCeiling int `mapstructure:"attribute_value_ceiling" yaml:"attribute_value_ceiling"`
	// AncestorDepthCeiling bounds selector escalation through ancestors.
	AncestorDepthCeiling int `mapstructure:"ancestor_depth_ceiling" yaml:"ancestor_depth_ceiling"`
	// ChildContentDepth bounds the accessible-name child content walk.
	ChildContentDepth int `mapstructure:"child_content_depth" yaml:"child_content_depth"`
	// InstrumentationAttribute is the attribute written to mark an element
	// as exposed. The write is idempotent.
	InstrumentationAttribute string `mapstructure:"instrumentation_attribute" yaml:"instrumentation_attribute"`
	// Patterns overrides the built-in candidate allowlist when non-empty.
	Patterns []string `mapstructure:"patterns" yaml:"patterns"`
}

// WithDefaults returns a copy with zero-valued tunables replaced by the
// shipped defaults, so a hand-built ExtractorConfig behaves like the viper
// defaults.
func (e ExtractorConfig) WithDefaults() ExtractorConfig {
	if e.AttributeValueCeiling <= 0 {
		e.AttributeValueCeiling = 30
	}
	if e.AncestorDepthCeiling <= 0 {
		e.AncestorDepthCeiling = 3
	}
	if e.ChildContentDepth <= 0 {
		e.ChildContentDepth = 2
	}
	if e.InstrumentationAttribute == "" {
		e.InstrumentationAttribute = "data-ax-id"
	}
	return e
}

// RunConfig holds settings populated from CLI flags for a specific
// extraction run.
type RunConfig struct {
	Inputs      []string
	Output      string
	Pretty      bool
	Concurrency int
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "axtract")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Extractor --
	v.SetDefault("extractor.attribute_value_ceiling", 30)
	v.SetDefault("extractor.ancestor_depth_ceiling", 3)
	v.SetDefault("extractor.child_content_depth", 2)
	v.SetDefault("extractor.instrumentation_attribute", "data-ax-id")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Extractor.AttributeValueCeiling <= 0 {
		return fmt.Errorf("extractor.attribute_value_ceiling must be a positive integer")
	}
	if c.Extractor.AncestorDepthCeiling <= 0 {
		return fmt.Errorf("extractor.ancestor_depth_ceiling must be a positive integer")
	}
	if c.Extractor.ChildContentDepth <= 0 {
		return fmt.Errorf("extractor.child_content_depth must be a positive integer")
	}
	if c.Extractor.InstrumentationAttribute == "" {
		return fmt.Errorf("extractor.instrumentation_attribute must not be empty")
	}
	return nil
}
