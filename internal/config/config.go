// Package config loads the marq command configuration from TOML or YAML.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding an explicit config path.
const EnvVar = "MARQ_CONFIG"

// Format is a configuration file format.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Config holds the command settings. Zero values are replaced by defaults
// after loading.
type Config struct {
	// Format is the tree dump format: tree, json or go.
	Format      string `toml:"format" yaml:"format"`
	Tokens      bool   `toml:"tokens" yaml:"tokens"`
	IndentUnit  int    `toml:"indent_unit" yaml:"indent_unit"`
	BaseDir     string `toml:"base_dir" yaml:"base_dir"`
	FrontMatter *bool  `toml:"front_matter" yaml:"front_matter"`
	Color       string `toml:"color" yaml:"color"`
	OSC8        string `toml:"osc8" yaml:"osc8"`
	Width       int    `toml:"width" yaml:"width"`
	Styles      Styles `toml:"styles" yaml:"styles"`
}

// Styles holds terminal colors for the dump output, as lipgloss color
// strings.
type Styles struct {
	Kind    string `toml:"kind" yaml:"kind"`
	Field   string `toml:"field" yaml:"field"`
	Value   string `toml:"value" yaml:"value"`
	Range   string `toml:"range" yaml:"range"`
	Warning string `toml:"warning" yaml:"warning"`
	Error   string `toml:"error" yaml:"error"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// FrontMatterEnabled reports whether front matter detection is on.
func (c *Config) FrontMatterEnabled() bool {
	return c.FrontMatter == nil || *c.FrontMatter
}

// Load reads the configuration at path. The format follows the file
// extension; unknown extensions are read as TOML.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open config")
	}
	cfg, err := Parse(data, DetectFormat(path))
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes data in the given format and applies defaults.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, errors.Wrap(err, "could not parse toml")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrap(err, "could not parse yaml")
		}
	default:
		return nil, errors.Errorf("unsupported format %s", format)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault loads the file named by MARQ_CONFIG, else the first of
// ./marq.toml, ./marq.yaml, ./marq.yml and the user config directory. It
// returns Default when no file exists.
func LoadDefault() (*Config, error) {
	if path := os.Getenv(EnvVar); path != "" {
		return Load(path)
	}
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

func searchPaths() []string {
	paths := []string{"marq.toml", "marq.yaml", "marq.yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(dir, "marq", "config.toml"),
			filepath.Join(dir, "marq", "config.yaml"),
		)
	}
	return paths
}

// DetectFormat determines the format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

func (c *Config) applyDefaults() {
	if c.Format == "" {
		c.Format = "tree"
	}
	if c.IndentUnit == 0 {
		c.IndentUnit = 2
	}
	if c.Color == "" {
		c.Color = "auto"
	}
	if c.OSC8 == "" {
		c.OSC8 = "auto"
	}
	if c.Styles.Kind == "" {
		c.Styles.Kind = "12"
	}
	if c.Styles.Field == "" {
		c.Styles.Field = "8"
	}
	if c.Styles.Value == "" {
		c.Styles.Value = "10"
	}
	if c.Styles.Range == "" {
		c.Styles.Range = "244"
	}
	if c.Styles.Warning == "" {
		c.Styles.Warning = "11"
	}
	if c.Styles.Error == "" {
		c.Styles.Error = "9"
	}
}

func (c *Config) validate() error {
	switch c.Format {
	case "tree", "json", "go":
	default:
		return errors.Errorf("invalid format %q: expected tree|json|go", c.Format)
	}
	for name, mode := range map[string]string{"color": c.Color, "osc8": c.OSC8} {
		switch mode {
		case "auto", "on", "off":
		default:
			return errors.Errorf("invalid %s %q: expected auto|on|off", name, mode)
		}
	}
	if c.IndentUnit < 0 {
		return errors.Errorf("invalid indent_unit %d", c.IndentUnit)
	}
	if c.Width < 0 {
		return errors.Errorf("invalid width %d", c.Width)
	}
	return nil
}
