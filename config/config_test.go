package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taintflow/ifc/config"
)

func TestDefaultIsText(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, config.FormatText, cfg.Format)
	assert.False(t, cfg.Color)
}

func TestResolverExpandsPreset(t *testing.T) {
	cfg := &config.Config{SinkPresets: map[string][]string{
		"internal": {"internal", "ops"},
	}}
	resolve := cfg.Resolver()
	assert.ElementsMatch(t, []string{"internal", "ops", "public"}, resolve([]string{"preset:internal", "public"}))
}

func TestResolverLeavesUnknownPresetLiteral(t *testing.T) {
	cfg := &config.Config{SinkPresets: map[string][]string{"internal": {"internal"}}}
	resolve := cfg.Resolver()
	assert.Equal(t, []string{"preset:missing"}, resolve([]string{"preset:missing"}))
}

func TestNilConfigResolverIsIdentity(t *testing.T) {
	var cfg *config.Config
	resolve := cfg.Resolver()
	assert.Equal(t, []string{"a", "b"}, resolve([]string{"a", "b"}))
}
