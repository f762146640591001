package rules

import (
	"errors"
	"testing"

	"github.com/1broseidon/wsorg/internal/platform"
)

func TestResolveFractions(t *testing.T) {
	d := platform.Desktop{Index: 0, Width: 1200, Height: 800}
	r := Rule{
		Name:  "half",
		Type:  "xterm",
		PosX:  Fraction(0.5),
		PosY:  Fraction(0.25),
		SizeX: Fraction(0.5),
		SizeY: Fraction(-0.1),
	}

	got := r.Resolve(d)
	want := platform.Rect{X: 604, Y: 204, Width: 592, Height: platform.Unset}
	if got != want {
		t.Fatalf("Resolve = %+v, want %+v", got, want)
	}
}

func TestResolveAbsoluteKeepsSentinel(t *testing.T) {
	r := Rule{Type: "xterm", PosX: Unset, PosY: Pixels(100), SizeX: Unset, SizeY: Unset}

	got := r.Resolve(platform.Desktop{Width: 1920, Height: 1080})
	want := platform.Rect{X: -1, Y: 100, Width: -1, Height: -1}
	if got != want {
		t.Fatalf("Resolve = %+v, want %+v", got, want)
	}
	if !r.HasGeometry() {
		t.Fatal("expected geometry")
	}
}

func TestResolveRoundsToNearest(t *testing.T) {
	if got := Fraction(0.333).ResolvePosition(1000); got != 337 {
		t.Fatalf("ResolvePosition = %d", got)
	}
	if got := Fraction(0.3336).ResolveSize(1000); got != 326 {
		t.Fatalf("ResolveSize = %d", got)
	}
}

func TestHasGeometry(t *testing.T) {
	r := Rule{Type: "x", PosX: Unset, PosY: Unset, SizeX: Unset, SizeY: Fraction(-1)}
	if r.HasGeometry() {
		t.Fatal("all axes unset but HasGeometry is true")
	}
}

func TestRuleString(t *testing.T) {
	r := Rule{
		Name:    "term",
		Type:    "xterm",
		Desktop: 2,
		PosX:    Fraction(0.5),
		PosY:    Pixels(100),
		SizeX:   Unset,
		SizeY:   Unset,
		Flags:   platform.Maximised,
	}
	want := `term (type "xterm", description "") => desktop 2 at 0.5,100 size -1,-1 flags maximised`
	if got := r.String(); got != want {
		t.Fatalf("String = %q, want %q", got, want)
	}
}

func TestMatching(t *testing.T) {
	r := Rule{Type: "xterm"}
	if !r.MatchesType("xterm-256color") {
		t.Fatal("xterm should match xterm-256color")
	}
	if r.MatchesType("gnome-terminal") {
		t.Fatal("xterm should not match gnome-terminal")
	}

	byTitle := Rule{Description: "Firefox"}
	if !byTitle.MatchesType("Navigator.firefox") {
		t.Fatal("empty type should match every bucket")
	}
	if !byTitle.MatchesTitle("Release notes - Mozilla Firefox") {
		t.Fatal("description substring should match")
	}
	if byTitle.MatchesTitle("mozilla firefox") {
		t.Fatal("matching is case sensitive")
	}
	if !r.MatchesTitle("") {
		t.Fatal("empty description should match dialogs without a title")
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		in   string
		want platform.MaxState
	}{
		{"", platform.MaxState{}},
		{"Maximised", platform.Maximised},
		{"maximized", platform.Maximised},
		{"maxvertical", platform.MaxState{Vertical: true}},
		{"MaxHorizontal", platform.MaxState{Horizontal: true}},
	}
	for _, tt := range tests {
		got, err := ParseFlags(tt.in)
		if err != nil {
			t.Fatalf("ParseFlags(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseFlags(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseFlags("fullscreen"); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestStoreRejectsWildcard(t *testing.T) {
	var s Store
	err := s.Add(Rule{Name: "everything"})
	if !errors.Is(err, ErrWildcardRule) {
		t.Fatalf("expected ErrWildcardRule, got %v", err)
	}
	if err := s.Add(Rule{Name: "a", Type: "xterm"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(Rule{Name: "b", Description: "Mail"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if s.Len() != 2 || s.Rules()[0].Name != "a" || s.Rules()[1].Name != "b" {
		t.Fatalf("unexpected rules: %+v", s.Rules())
	}
}
