// Package snapshot dumps the observed window layout as a rules skeleton.
package snapshot

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/wsorg/internal/config"
	"github.com/1broseidon/wsorg/internal/state"
)

// App is one dumped window, shaped like an [Apps.<name>] rule section.
type App struct {
	Type        string `toml:"Type" yaml:"Type"`
	Description string `toml:"Description" yaml:"Description"`
	Desktop     int    `toml:"Desktop" yaml:"Desktop"`
	PosX        int    `toml:"Pos_x" yaml:"Pos_x"`
	PosY        int    `toml:"Pos_y" yaml:"Pos_y"`
	SizeX       int    `toml:"Size_x" yaml:"Size_x"`
	SizeY       int    `toml:"Size_y" yaml:"Size_y"`
}

// File is the document written to disk.
type File struct {
	Apps map[string]App `toml:"Apps" yaml:"Apps"`
}

// Build converts tracked windows into rule-shaped records. Buckets with more
// than one window get keys "<type>_<n>" numbered from 1 in bucket order;
// single windows use the bare type. A key already taken by an earlier bucket
// gets a further "_<n>" suffix. Maximize flags are not observable and are
// omitted.
func Build(buckets []state.Bucket) File {
	f := File{Apps: make(map[string]App)}
	for _, b := range buckets {
		for i, w := range b.Windows {
			key := w.Type
			if len(b.Windows) > 1 {
				key = fmt.Sprintf("%s_%d", w.Type, i+1)
			}
			key = uniqueKey(f.Apps, key)
			f.Apps[key] = App{
				Type:        w.Type,
				Description: w.Title,
				Desktop:     w.Desktop,
				PosX:        w.Geometry.X,
				PosY:        w.Geometry.Y,
				SizeX:       w.Geometry.Width,
				SizeY:       w.Geometry.Height,
			}
		}
	}
	return f
}

func uniqueKey(apps map[string]App, key string) string {
	if _, taken := apps[key]; !taken {
		return key
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", key, n)
		if _, taken := apps[candidate]; !taken {
			return candidate
		}
	}
}

// Encode renders the snapshot in the given format.
func Encode(f File, format config.Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case config.FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return nil, fmt.Errorf("encode snapshot: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode snapshot: %w", err)
		}
	default:
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return nil, fmt.Errorf("encode snapshot: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Dump writes the current window state to path, TOML unless the extension
// asks for YAML.
func Dump(buckets []state.Bucket, path string) error {
	data, err := Encode(Build(buckets), config.FormatForPath(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}
