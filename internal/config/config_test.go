package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseTOML(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(`
format = "json"
indent_unit = 4
front_matter = false
width = 100

[styles]
kind = "#ff00ff"
`), FormatTOML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Format != "json" || cfg.IndentUnit != 4 || cfg.Width != 100 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.FrontMatterEnabled() {
		t.Fatalf("front matter must be disabled")
	}
	if cfg.Styles.Kind != "#ff00ff" || cfg.Styles.Value != "10" {
		t.Fatalf("unexpected styles: %+v", cfg.Styles)
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte("tokens: true\ncolor: off\nstyles:\n  error: \"1\"\n"), FormatYAML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.Tokens || cfg.Color != "off" || cfg.Styles.Error != "1" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.FrontMatterEnabled() {
		t.Fatalf("front matter must default to enabled")
	}
}

func TestParseEmptyAppliesDefaults(t *testing.T) {
	t.Parallel()
	for _, format := range []Format{FormatTOML, FormatYAML} {
		cfg, err := Parse(nil, format)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		want := Default()
		if cfg.Format != want.Format || cfg.IndentUnit != want.IndentUnit || cfg.Color != "auto" || cfg.OSC8 != "auto" {
			t.Fatalf("%s: unexpected defaults %+v", format, cfg)
		}
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		data   string
		format Format
		want   string
	}{
		{"format", `format = "xml"`, FormatTOML, "invalid format"},
		{"color", `color = "sometimes"`, FormatTOML, "invalid color"},
		{"osc8", "osc8: maybe\n", FormatYAML, "invalid osc8"},
		{"indent", `indent_unit = -1`, FormatTOML, "invalid indent_unit"},
		{"width", "width: -3\n", FormatYAML, "invalid width"},
		{"syntax", `format = `, FormatTOML, "could not parse toml"},
		{"unknown yaml field", "colour: on\n", FormatYAML, "could not parse yaml"},
		{"unsupported", ``, Format(7), "unsupported format"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.data), tc.format)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()
	tests := map[string]Format{
		"marq.toml":   FormatTOML,
		"marq.yaml":   FormatYAML,
		"MARQ.YML":    FormatYAML,
		"marq.config": FormatTOML,
		"marq":        FormatTOML,
	}
	for path, want := range tests {
		if got := DetectFormat(path); got != want {
			t.Fatalf("DetectFormat(%q)=%s want %s", path, got, want)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "marq.yml")
	if err := os.WriteFile(path, []byte("format: go\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Format != "go" {
		t.Fatalf("unexpected format %q", cfg.Format)
	}
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil || !strings.Contains(err.Error(), "could not open config") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestLoadDefaultUsesEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("width = 42\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvVar, path)
	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if cfg.Width != 42 {
		t.Fatalf("unexpected width %d", cfg.Width)
	}
}

func TestLoadDefaultSearchesWorkingDir(t *testing.T) {
	dir := t.TempDir()
	isolateUserConfig(t)
	t.Setenv(EnvVar, "")
	t.Chdir(dir)

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if cfg.Format != "tree" {
		t.Fatalf("expected defaults without a config file, got %+v", cfg)
	}

	if err := os.WriteFile(filepath.Join(dir, "marq.yaml"), []byte("format: json\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err = LoadDefault()
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if cfg.Format != "json" {
		t.Fatalf("expected marq.yaml to be picked up, got %q", cfg.Format)
	}
}

func isolateUserConfig(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("AppData", filepath.Join(home, "AppData"))
}
