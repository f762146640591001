package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format selects the configuration syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatForPath picks YAML for .yaml/.yml files and TOML otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// LoadResult is a loaded configuration plus diagnostics.
type LoadResult struct {
	Config *Config
	File   string
	Format Format
	// Undecoded lists keys present in the file that no setting uses.
	Undecoded []string
}

// LoadFromPath reads and validates the configuration file at path. Desktop
// names in rules are resolved against desktops, so the topology must be read
// first.
func LoadFromPath(path string, desktops DesktopResolver) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Msg: "read " + path, Err: err}
	}
	res, err := Parse(data, FormatForPath(path), desktops)
	if err != nil {
		return nil, err
	}
	res.File = path
	return res, nil
}

// Parse validates configuration data. Rules are kept in document order.
func Parse(data []byte, format Format, desktops DesktopResolver) (*LoadResult, error) {
	var (
		raw       RawConfig
		order     []string
		undecoded []string
		err       error
	)
	switch format {
	case FormatYAML:
		order, err = decodeYAML(data, &raw)
	default:
		order, undecoded, err = decodeTOML(data, &raw)
	}
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("parse %s", format), Err: err}
	}

	cfg, err := build(raw, order, desktops)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, Format: format, Undecoded: undecoded}, nil
}

func build(raw RawConfig, order []string, desktops DesktopResolver) (*Config, error) {
	setup, err := buildSetup(raw.Setup)
	if err != nil {
		return nil, err
	}
	if len(raw.Apps) == 0 {
		return nil, &ConfigError{Msg: "no app rules in config file"}
	}

	cfg := &Config{Setup: setup}
	for _, name := range order {
		app, ok := raw.Apps[name]
		if !ok {
			continue
		}
		rule, err := buildRule(name, app, desktops)
		if err != nil {
			return nil, err
		}
		if err := cfg.Rules.Add(rule); err != nil {
			return nil, &ConfigError{Rule: name, Msg: "invalid rule", Err: err}
		}
	}
	return cfg, nil
}

func decodeTOML(data []byte, raw *RawConfig) ([]string, []string, error) {
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(raw)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]bool)
	var order []string
	for _, key := range md.Keys() {
		if len(key) < 2 || key[0] != "Apps" || seen[key[1]] {
			continue
		}
		seen[key[1]] = true
		order = append(order, key[1])
	}

	var undecoded []string
	for _, key := range md.Undecoded() {
		undecoded = append(undecoded, key.String())
	}
	return order, undecoded, nil
}

func decodeYAML(data []byte, raw *RawConfig) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 {
		return nil, nil
	}
	if err := root.Decode(raw); err != nil {
		return nil, err
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "Apps" || doc.Content[i+1].Kind != yaml.MappingNode {
			continue
		}
		apps := doc.Content[i+1]
		order := make([]string, 0, len(apps.Content)/2)
		for j := 0; j+1 < len(apps.Content); j += 2 {
			order = append(order, apps.Content[j].Value)
		}
		return order, nil
	}
	return nil, nil
}
