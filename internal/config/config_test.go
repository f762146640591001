package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/wsorg/internal/platform"
	"github.com/1broseidon/wsorg/internal/rules"
	"github.com/1broseidon/wsorg/internal/state"
)

var desktops = state.Desktops{
	0: {Index: 0, Name: "Main", Width: 1920, Height: 1080},
	1: {Index: 1, Name: "Web", Width: 1920, Height: 1080},
	2: {Index: 2, Name: "Chat", Width: 1920, Height: 1080},
}

const fullTOML = `
[Setup]
MaxTime = 120
SleepTime = 2.5
Demaximise = true
CommandTimeout = 3

[Apps.xterm]
Type = "xterm"
Desktop = 0
Pos_x = 0
Pos_y = 0.5
Size_x = 0.5
Size_y = -1

[Apps.browser]
Type = "firefox"
Desktop = "Web"
Flags = "Maximised"

[Apps.chat]
Description = "Slack"
Desktop = 2
Flags = "maxvertical"
`

func requireConfigError(t *testing.T, err error, contains string) {
	t.Helper()
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if !strings.Contains(err.Error(), contains) {
		t.Fatalf("error %q does not mention %q", err, contains)
	}
}

func TestParseTOML(t *testing.T) {
	res, err := Parse([]byte(fullTOML), FormatTOML, desktops)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantSetup := Setup{
		MaxTime:        120 * time.Second,
		SleepTime:      2500 * time.Millisecond,
		CommandTimeout: 3 * time.Second,
		Demaximise:     true,
	}
	if res.Config.Setup != wantSetup {
		t.Fatalf("setup = %+v, want %+v", res.Config.Setup, wantSetup)
	}

	want := []rules.Rule{
		{
			Name: "xterm", Type: "xterm", Desktop: 0,
			PosX: rules.Pixels(0), PosY: rules.Fraction(0.5), SizeX: rules.Fraction(0.5), SizeY: rules.Unset,
		},
		{
			Name: "browser", Type: "firefox", Desktop: 1,
			PosX: rules.Unset, PosY: rules.Unset, SizeX: rules.Unset, SizeY: rules.Unset,
			Flags: platform.Maximised,
		},
		{
			Name: "chat", Description: "Slack", Desktop: 2,
			PosX: rules.Unset, PosY: rules.Unset, SizeX: rules.Unset, SizeY: rules.Unset,
			Flags: platform.MaxState{Vertical: true},
		},
	}
	if diff := cmp.Diff(want, res.Config.Rules.Rules()); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAMLKeepsDocumentOrder(t *testing.T) {
	data := `
Setup:
  SleepTime: 1
Apps:
  zeta:
    Type: xterm
    Desktop: Chat
    Size_x: 0.25
  alpha:
    Description: Inbox
    Desktop: 1
`
	res, err := Parse([]byte(data), FormatYAML, desktops)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := res.Config.Rules.Rules()
	if len(got) != 2 || got[0].Name != "zeta" || got[1].Name != "alpha" {
		t.Fatalf("rules out of order: %+v", got)
	}
	if got[0].Desktop != 2 || got[0].SizeX != rules.Fraction(0.25) {
		t.Fatalf("unexpected zeta rule: %+v", got[0])
	}
	if res.Config.Setup.MaxTime != DefaultMaxTime || res.Config.Setup.SleepTime != time.Second {
		t.Fatalf("unexpected setup: %+v", res.Config.Setup)
	}
}

func TestParseDefaults(t *testing.T) {
	res, err := Parse([]byte("[Apps.a]\nType = \"xterm\"\nDesktop = 0\n"), FormatTOML, desktops)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Config.Setup != DefaultSetup() {
		t.Fatalf("setup = %+v", res.Config.Setup)
	}
}

func TestParseKeepsTOMLDeclarationOrder(t *testing.T) {
	data := "[Apps.z]\nType = \"a\"\nDesktop = 0\n[Apps.m]\nType = \"b\"\nDesktop = 0\n[Apps.a]\nType = \"c\"\nDesktop = 0\n"
	res, err := Parse([]byte(data), FormatTOML, desktops)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var names []string
	for _, r := range res.Config.Rules.Rules() {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff([]string{"z", "m", "a"}, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		contains string
	}{
		{"wildcard", "[Apps.all]\nDesktop = 0\n", "missing type or description"},
		{"no apps", "[Setup]\nMaxTime = 5\n", "no app rules"},
		{"missing desktop", "[Apps.a]\nType = \"x\"\n", "missing desktop"},
		{"sentinel desktop", "[Apps.a]\nType = \"x\"\nDesktop = -1\n", "missing desktop"},
		{"unknown desktop name", "[Apps.a]\nType = \"x\"\nDesktop = \"Games\"\n", "unknown desktop Games"},
		{"desktop name is case sensitive", "[Apps.a]\nType = \"x\"\nDesktop = \"web\"\n", "unknown desktop web"},
		{"unknown desktop index", "[Apps.a]\nType = \"x\"\nDesktop = 9\n", "unknown desktop 9"},
		{"axis type", "[Apps.a]\nType = \"x\"\nDesktop = 0\nPos_x = \"left\"\n", "unknown Pos_x"},
		{"fraction too large", "[Apps.a]\nType = \"x\"\nDesktop = 0\nSize_y = 1.5\n", "Size_y fraction"},
		{"bad pixel", "[Apps.a]\nType = \"x\"\nDesktop = 0\nPos_y = -20\n", "Pos_y must be -1"},
		{"flags", "[Apps.a]\nType = \"x\"\nDesktop = 0\nFlags = \"fullscreen\"\n", "bad Flags"},
		{"negative time", "[Setup]\nMaxTime = -1\n[Apps.a]\nType = \"x\"\nDesktop = 0\n", "MaxTime must not be negative"},
		{"syntax", "[Apps.a\n", "parse toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatTOML, desktops)
			requireConfigError(t, err, tt.contains)
		})
	}
}

func TestParseReportsUndecodedKeys(t *testing.T) {
	data := "[Setup]\nMaxTim = 5\n[Apps.a]\nType = \"x\"\nDesktop = 0\n"
	res, err := Parse([]byte(data), FormatTOML, desktops)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff([]string{"Setup.MaxTim"}, res.Undecoded); diff != "" {
		t.Fatalf("undecoded mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "rules.toml")
	if err := os.WriteFile(tomlPath, []byte(fullTOML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	res, err := LoadFromPath(tomlPath, desktops)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if res.File != tomlPath || res.Format != FormatTOML || res.Config.Rules.Len() != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}

	_, err = LoadFromPath(filepath.Join(dir, "missing.toml"), desktops)
	requireConfigError(t, err, "read ")
}

func TestFormatForPath(t *testing.T) {
	if FormatForPath("a/rules.YML") != FormatYAML || FormatForPath("rules.yaml") != FormatYAML {
		t.Fatal("expected YAML format")
	}
	if FormatForPath("rules.toml") != FormatTOML || FormatForPath("rules") != FormatTOML {
		t.Fatal("expected TOML format")
	}
}
