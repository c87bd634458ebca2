// Package config loads the moon tool configuration.
//
// A configuration file is TOML or YAML, chosen by extension:
//
//	[lexer]
//	tab_width = 4
//
//	[format]
//	indent = 4
//	use_tabs = false
//
//	[output]
//	format = "sexpr"   # sexpr, json, yaml or outline
//	color = "auto"     # auto, always or never
//
// Missing values fall back to the defaults returned by [Default].
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding a config file path.
const EnvVar = "MOON_CONFIG"

// SearchPaths are tried in order when neither a path nor EnvVar is given.
var SearchPaths = []string{"moon.toml", "moon.yaml", "moon.yml"}

// Config holds the complete tool configuration
type Config struct {
	Lexer  LexerConfig  `toml:"lexer" yaml:"lexer"`
	Format FormatConfig `toml:"format" yaml:"format"`
	Output OutputConfig `toml:"output" yaml:"output"`
}

// LexerConfig holds tokeniser settings
type LexerConfig struct {
	TabWidth int `toml:"tab_width" yaml:"tab_width"`
}

// FormatConfig holds formatter settings
type FormatConfig struct {
	Indent  int  `toml:"indent" yaml:"indent"`
	UseTabs bool `toml:"use_tabs" yaml:"use_tabs"`
}

// IndentString returns one indentation unit.
func (f FormatConfig) IndentString() string {
	if f.UseTabs {
		return "\t"
	}
	return strings.Repeat(" ", f.Indent)
}

// OutputConfig holds settings for tree and diagnostic output
type OutputConfig struct {
	Format string `toml:"format" yaml:"format"`
	Color  string `toml:"color" yaml:"color"`
}

// Output formats accepted by OutputConfig.Format.
const (
	OutputSExpr   = "sexpr"
	OutputJSON    = "json"
	OutputYAML    = "yaml"
	OutputOutline = "outline"
)

// Color modes accepted by OutputConfig.Color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(content, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes content in the given format ("toml" or "yaml"), applies the
// defaults and validates the result.
func Parse(content []byte, format string) (*Config, error) {
	var cfg Config
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case "toml":
		if _, err := toml.Decode(string(content), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %q", format)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Discover finds and loads the configuration. An explicit path wins, then
// EnvVar, then the first of SearchPaths that exists. With nothing found the
// defaults are returned. The second result is the file used, if any.
func Discover(explicit string) (*Config, string, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		for _, p := range SearchPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path == "" {
		return Default(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// formatOf detects the file format from the extension; TOML is the default.
func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Lexer.TabWidth == 0 {
		c.Lexer.TabWidth = 4
	}
	if c.Format.Indent == 0 {
		c.Format.Indent = 4
	}
	if c.Output.Format == "" {
		c.Output.Format = OutputSExpr
	}
	if c.Output.Color == "" {
		c.Output.Color = ColorAuto
	}
}

// Validate checks the configuration for out-of-range values
func (c *Config) Validate() error {
	if c.Lexer.TabWidth < 1 || c.Lexer.TabWidth > 16 {
		return fmt.Errorf("lexer.tab_width must be between 1 and 16, got %d", c.Lexer.TabWidth)
	}
	if c.Format.Indent < 1 || c.Format.Indent > 16 {
		return fmt.Errorf("format.indent must be between 1 and 16, got %d", c.Format.Indent)
	}
	switch c.Output.Format {
	case OutputSExpr, OutputJSON, OutputYAML, OutputOutline:
	default:
		return fmt.Errorf("output.format must be sexpr, json, yaml or outline, got %q", c.Output.Format)
	}
	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("output.color must be auto, always or never, got %q", c.Output.Color)
	}
	return nil
}
