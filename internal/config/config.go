// Package config holds the mdxfix settings and loads them from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/ezerfernandes/mdxfix/internal/fixer"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is named explicitly.
const DefaultPath = ".mdxfix.yaml"

// DefaultIgnoreRegion is the region name that keeps text away from the fixer.
const DefaultIgnoreRegion = "mdxfix-ignore"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Config is the full set of knobs for a run.
type Config struct {
	Patterns     []string     `yaml:"patterns"`
	Lang         string       `yaml:"lang"`
	Keywords     []string     `yaml:"keywords"`
	MaxScan      int          `yaml:"max_scan"`
	Unterminated fixer.Policy `yaml:"unterminated"`
	IgnoreRegion string       `yaml:"ignore_region"`
	Exec         string       `yaml:"exec,omitempty"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Patterns: []string{
			"docs/cookbook-zh/references/**/*.md",
			"docs/solana-development-course/**/*.md",
		},
		Lang:         fixer.DefaultLang,
		Keywords:     append([]string(nil), fixer.DefaultKeywords...),
		Unterminated: fixer.PolicyWrap,
		IgnoreRegion: DefaultIgnoreRegion,
	}
}

// Load reads the YAML file at path on top of the defaults. When optional is
// set a missing file yields the defaults.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}

		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the settings for values the fixer cannot use.
func (c *Config) Validate() error {
	if len(c.Lang) == 0 {
		return fmt.Errorf("%w: lang must not be empty", ErrInvalid)
	}

	if strings.ContainsAny(c.Lang, " \t\r\n`") {
		return fmt.Errorf("%w: lang %q must be a single word without backticks", ErrInvalid, c.Lang)
	}

	if c.MaxScan < 0 {
		return fmt.Errorf("%w: max_scan must not be negative", ErrInvalid)
	}

	if _, err := fixer.ParsePolicy(string(c.Unterminated)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	for _, kw := range c.Keywords {
		if len(kw) == 0 {
			return fmt.Errorf("%w: keywords must not be empty", ErrInvalid)
		}
	}

	return nil
}
