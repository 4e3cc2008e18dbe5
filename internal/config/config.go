// Package config loads the tool's settings from a TOML file with
// environment-variable overrides. Missing files fall back to defaults so
// the tool runs without any configuration at all.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment variables recognized by applyEnv. Each overrides the
// corresponding file setting when set.
const (
	envOutputDir         = "BOOKFORGE_OUTPUT_DIR"
	envFetchConcurrency  = "BOOKFORGE_FETCH_CONCURRENCY"
	envEmbedFonts        = "BOOKFORGE_EMBED_FONTS"
	envRequestsPerMinute = "BOOKFORGE_REQUESTS_PER_MINUTE"
)

// GeneratorSettings tunes collaborator implementations built on the
// generate package's Retry and Throttled helpers.
type GeneratorSettings struct {
	// Concurrency caps chapter-level fan-out within a generation stage.
	Concurrency int `toml:"concurrency"`

	// MaxAttempts is the total attempt budget per collaborator call.
	MaxAttempts int `toml:"max_attempts"`

	// BaseDelayMS is the wait in milliseconds before the second attempt;
	// it doubles after each failure.
	BaseDelayMS int `toml:"base_delay_ms"`

	// RequestsPerMinute meters all collaborator calls collectively.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// BaseDelay returns the retry base delay as a duration.
func (g GeneratorSettings) BaseDelay() time.Duration {
	return time.Duration(g.BaseDelayMS) * time.Millisecond
}

// Settings holds all configuration options.
type Settings struct {
	// OutputDir receives every produced artifact.
	OutputDir string `toml:"output_dir"`

	// FetchConcurrency caps parallel asset downloads during packaging.
	FetchConcurrency int `toml:"fetch_concurrency"`

	// EmbedFonts controls whether the theme's font pairing is fetched
	// and embedded into the e-book.
	EmbedFonts bool `toml:"embed_fonts"`

	Generator GeneratorSettings `toml:"generator"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		OutputDir:        ".",
		FetchConcurrency: 4,
		EmbedFonts:       true,
		Generator: GeneratorSettings{
			Concurrency:       4,
			MaxAttempts:       3,
			BaseDelayMS:       1000,
			RequestsPerMinute: 60,
		},
	}
}

// Load reads settings from a TOML file and applies environment
// overrides. A missing file is not an error; defaults are used.
func Load(path string) (*Settings, error) {
	s := DefaultSettings()
	if path != "" {
		if _, err := toml.DecodeFile(path, s); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}
	if err := s.applyEnv(); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyEnv() error {
	if v := os.Getenv(envOutputDir); v != "" {
		s.OutputDir = v
	}
	if v := os.Getenv(envFetchConcurrency); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envFetchConcurrency, v, err)
		}
		s.FetchConcurrency = n
	}
	if v := os.Getenv(envEmbedFonts); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envEmbedFonts, v, err)
		}
		s.EmbedFonts = b
	}
	if v := os.Getenv(envRequestsPerMinute); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envRequestsPerMinute, v, err)
		}
		s.Generator.RequestsPerMinute = n
	}
	return nil
}

func (s *Settings) validate() error {
	if s.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if s.FetchConcurrency < 1 {
		return fmt.Errorf("fetch_concurrency must be at least 1, got %d", s.FetchConcurrency)
	}
	if s.Generator.Concurrency < 1 {
		return fmt.Errorf("generator.concurrency must be at least 1, got %d", s.Generator.Concurrency)
	}
	if s.Generator.MaxAttempts < 1 {
		return fmt.Errorf("generator.max_attempts must be at least 1, got %d", s.Generator.MaxAttempts)
	}
	if s.Generator.RequestsPerMinute < 1 {
		return fmt.Errorf("generator.requests_per_minute must be at least 1, got %d", s.Generator.RequestsPerMinute)
	}
	return nil
}
