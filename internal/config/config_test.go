// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "axtract", cfg.Logger.ServiceName)

	assert.Equal(t, 30, cfg.Extractor.AttributeValueCeiling)
	assert.Equal(t, 3, cfg.Extractor.AncestorDepthCeiling)
	assert.Equal(t, 2, cfg.Extractor.ChildContentDepth)
	assert.Equal(t, "data-ax-id", cfg.Extractor.InstrumentationAttribute)

	assert.NoError(t, cfg.Validate())
}

func TestNewConfigFromViper(t *testing.T) {
	t.Run("overrides apply", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("logger.level", "debug")
		v.Set("extractor.ancestor_depth_ceiling", 5)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logger.Level)
		assert.Equal(t, 5, cfg.Extractor.AncestorDepthCeiling)
		// Untouched keys keep their defaults.
		assert.Equal(t, 30, cfg.Extractor.AttributeValueCeiling)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("extractor.child_content_depth", 0)

		_, err := NewConfigFromViper(v)
		assert.Error(t, err)
	})
}

func TestExtractorConfigWithDefaults(t *testing.T) {
	t.Run("zero value is filled in", func(t *testing.T) {
		cfg := ExtractorConfig{}.WithDefaults()
		assert.Equal(t, 30, cfg.AttributeValueCeiling)
		assert.Equal(t, 3, cfg.AncestorDepthCeiling)
		assert.Equal(t, 2, cfg.ChildContentDepth)
		assert.Equal(t, "data-ax-id", cfg.InstrumentationAttribute)
	})

	t.Run("explicit values survive", func(t *testing.T) {
		cfg := ExtractorConfig{AncestorDepthCeiling: 6, InstrumentationAttribute: "data-mark"}.WithDefaults()
		assert.Equal(t, 6, cfg.AncestorDepthCeiling)
		assert.Equal(t, "data-mark", cfg.InstrumentationAttribute)
	})
}
