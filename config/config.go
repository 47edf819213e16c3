// Package config loads the analyzer's optional CLI configuration: output
// rendering preferences and named sink-clearance presets, the same
// yaml:"..." struct-tag convention the teacher uses throughout its IR types.
package config

import (
	"context"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Format selects how diagnostics are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// Config is the optional CLI-facing settings document (spec.md carries no
// [MODULE] for this; it is ambient CLI surface, SPEC_FULL.md §1).
type Config struct {
	// Format selects the diagnostic renderer. Defaults to FormatText.
	Format Format `yaml:"format"`
	// Color enables ANSI highlighting in the text renderer.
	Color bool `yaml:"color"`
	// SinkPresets maps a preset name to the concrete clearance tags it
	// stands for. A sink annotation may reference a preset by writing one
	// of its tags as "preset:<name>"; Resolver expands it in place.
	SinkPresets map[string][]string `yaml:"sinkPresets"`
}

// Default returns the configuration used when no file is loaded.
func Default() *Config {
	return &Config{Format: FormatText}
}

// Load reads and parses a YAML config document from url via afs, so it works
// against local paths and any afs-supported scheme alike.
func Load(ctx context.Context, fs afs.Service, url string) (*Config, error) {
	content, err := fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "downloading config %s", url)
	}
	cfg := Default()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", url)
	}
	return cfg, nil
}

// Resolver expands "preset:<name>" tags using c.SinkPresets, leaving any
// other tag untouched. It is the function analysis.AnalyzeWithResolver
// expects.
func (c *Config) Resolver() func([]string) []string {
	return func(tags []string) []string {
		if c == nil || len(c.SinkPresets) == 0 {
			return tags
		}
		var resolved []string
		for _, tag := range tags {
			name, ok := strippedPreset(tag)
			if !ok {
				resolved = append(resolved, tag)
				continue
			}
			preset, ok := c.SinkPresets[name]
			if !ok {
				resolved = append(resolved, tag)
				continue
			}
			resolved = append(resolved, preset...)
		}
		return resolved
	}
}

func strippedPreset(tag string) (string, bool) {
	const prefix = "preset:"
	if len(tag) <= len(prefix) || tag[:len(prefix)] != prefix {
		return "", false
	}
	return tag[len(prefix):], true
}
