// Package models defines data structures for configuration and captured archives.
package models

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTargetEndpoint = "turo.com/api/v2/search"
	DefaultScoreColumn    = "Profitability Score"
)

// DefaultContainerKeys are the response keys checked, in order, for listing arrays.
var DefaultContainerKeys = []string{"vehicles", "results", "data", "banners"}

// Config holds runtime configuration for a conversion run.
// Values come from built-in defaults, an optional YAML file, then CLI flags.
type Config struct {
	SchemaVariant  SchemaVariant `yaml:"schema_variant"`
	TargetEndpoint string        `yaml:"target_endpoint_substring"`
	ContainerKeys  []string      `yaml:"container_keys"`
	Columns        []string      `yaml:"columns,omitempty"`     // overrides the variant's built-in columns
	ScoreColumn    string        `yaml:"score_column"`
	HistoryDB      string        `yaml:"history_db,omitempty"` // empty disables run history
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		SchemaVariant:  SchemaScoring,
		TargetEndpoint: DefaultTargetEndpoint,
		ContainerKeys:  append([]string(nil), DefaultContainerKeys...),
		ScoreColumn:    DefaultScoreColumn,
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
// Keys missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.SchemaVariant, err = ParseSchemaVariant(string(cfg.SchemaVariant)); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	if c.SchemaVariant != SchemaScoring && c.SchemaVariant != SchemaPlain {
		return fmt.Errorf("unknown schema variant: %q", c.SchemaVariant)
	}
	if strings.TrimSpace(c.TargetEndpoint) == "" {
		return fmt.Errorf("target_endpoint_substring must not be empty")
	}
	if len(c.ContainerKeys) == 0 {
		return fmt.Errorf("container_keys must list at least one key")
	}
	if c.SchemaVariant == SchemaScoring && c.ScoreColumn == "" {
		return fmt.Errorf("score_column must not be empty for the %s variant", SchemaScoring)
	}

	seen := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		if col == "" {
			return fmt.Errorf("columns must not contain empty names")
		}
		if seen[col] {
			return fmt.Errorf("duplicate column: %q", col)
		}
		seen[col] = true
	}
	return nil
}

// Scoring reports whether the profitability score is computed and written.
func (c Config) Scoring() bool {
	return c.SchemaVariant == SchemaScoring
}

// ColumnSchema returns the ordered output columns for this run.
// In the scoring variant the score column is always last.
func (c Config) ColumnSchema() []string {
	base := c.Columns
	if len(base) == 0 {
		base = c.SchemaVariant.Columns()
	}

	cols := make([]string, 0, len(base)+1)
	for _, col := range base {
		if c.Scoring() && col == c.ScoreColumn {
			continue
		}
		cols = append(cols, col)
	}
	if c.Scoring() {
		cols = append(cols, c.ScoreColumn)
	}
	return cols
}
