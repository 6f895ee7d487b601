package service

import (
	"context"
	"strconv"

	"github.com/viant/afs"
	"github.com/viant/docanchor/chunk"
	"github.com/viant/docanchor/normalize"
	"github.com/viant/docanchor/store"
	"gopkg.in/yaml.v3"
)

// Config defines ingestion settings. Zero fields fall back to defaults,
// so a partial yaml document is a valid configuration.
type Config struct {
	DB            string        `yaml:"db"`
	ChunkMaxChars int           `yaml:"chunkMaxChars"`
	EmbedDim      int           `yaml:"embedDim"`
	EmbedWorkers  int           `yaml:"embedWorkers"`
	LeaseTTLSec   int           `yaml:"leaseTTLSeconds"`
	Quality       QualityConfig `yaml:"quality"`
}

// QualityConfig sets the thresholds that route a finished run to ready
// or needs_review.
type QualityConfig struct {
	MinHeadingConfidence float64 `yaml:"minHeadingConfidence"`
	MaxFactGapRate       float64 `yaml:"maxFactGapRate"`
	RequireSchedule      bool    `yaml:"requireSchedule"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		ChunkMaxChars: chunk.DefaultMaxChars,
		EmbedDim:      chunk.DefaultDim,
		EmbedWorkers:  4,
		LeaseTTLSec:   int(store.DefaultLeaseTTL.Seconds()),
		Quality: QualityConfig{
			MinHeadingConfidence: 0.3,
			MaxFactGapRate:       1.0,
			RequireSchedule:      false,
		},
	}
}

// LoadConfig reads a yaml configuration from a local path or URL.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.ChunkMaxChars <= 0 {
		c.ChunkMaxChars = defaults.ChunkMaxChars
	}
	if c.EmbedDim <= 0 {
		c.EmbedDim = defaults.EmbedDim
	}
	if c.EmbedWorkers <= 0 {
		c.EmbedWorkers = defaults.EmbedWorkers
	}
	if c.LeaseTTLSec <= 0 {
		c.LeaseTTLSec = defaults.LeaseTTLSec
	}
	if c.Quality.MinHeadingConfidence <= 0 {
		c.Quality.MinHeadingConfidence = defaults.Quality.MinHeadingConfidence
	}
	if c.Quality.MaxFactGapRate <= 0 {
		c.Quality.MaxFactGapRate = defaults.Quality.MaxFactGapRate
	}
}

// Hash fingerprints the effective configuration so a run records exactly
// which settings produced it.
func (c Config) Hash() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return strconv.FormatUint(normalize.Hash(string(data)), 16)
}
