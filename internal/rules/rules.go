// Package rules holds the declarative window placement rules.
package rules

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/1broseidon/wsorg/internal/platform"
)

// decorationMargin is the assumed window frame width in pixels, applied when
// converting fractions of a desktop into absolute geometry.
const decorationMargin = 4

// ErrWildcardRule is returned for a rule that matches every window.
var ErrWildcardRule = errors.New("rule needs a type or a description")

// Axis is one geometry value of a rule: either absolute pixels or a fraction
// of the desktop dimension.
type Axis struct {
	Pixels     int
	Fraction   float64
	IsFraction bool
}

// Unset leaves the axis unchanged.
var Unset = Axis{Pixels: platform.Unset}

// Pixels returns an absolute axis value.
func Pixels(v int) Axis {
	return Axis{Pixels: v}
}

// Fraction returns an axis relative to the desktop dimension.
func Fraction(f float64) Axis {
	return Axis{Fraction: f, IsFraction: true}
}

// IsUnset reports whether the axis leaves the window unchanged.
func (a Axis) IsUnset() bool {
	if a.IsFraction {
		return a.Fraction < 0
	}
	return a.Pixels == platform.Unset
}

// ResolvePosition converts the axis into an absolute coordinate on a desktop
// dimension of dim pixels.
func (a Axis) ResolvePosition(dim int) int {
	if !a.IsFraction {
		return a.Pixels
	}
	if a.Fraction < 0 {
		return platform.Unset
	}
	return int(math.Round(float64(dim)*a.Fraction)) + decorationMargin
}

// ResolveSize converts the axis into an absolute extent.
func (a Axis) ResolveSize(dim int) int {
	if !a.IsFraction {
		return a.Pixels
	}
	if a.Fraction < 0 {
		return platform.Unset
	}
	return int(math.Round(float64(dim)*a.Fraction)) - 2*decorationMargin
}

func (a Axis) String() string {
	if a.IsFraction {
		return strconv.FormatFloat(a.Fraction, 'g', -1, 64)
	}
	return strconv.Itoa(a.Pixels)
}

// Rule places every window whose type contains Type and whose title contains
// Description. Empty matchers match anything, but not both may be empty.
type Rule struct {
	Name        string
	Type        string
	Description string
	Desktop     int
	PosX        Axis
	PosY        Axis
	SizeX       Axis
	SizeY       Axis
	Flags       platform.MaxState
}

// Validate checks the rule's invariants.
func (r Rule) Validate() error {
	if r.Type == "" && r.Description == "" {
		return ErrWildcardRule
	}
	return nil
}

// MatchesType reports whether a bucket of windows with the given type is
// selected by the rule.
func (r Rule) MatchesType(winType string) bool {
	return strings.Contains(winType, r.Type)
}

// MatchesTitle reports whether a window title is selected by the rule.
func (r Rule) MatchesTitle(title string) bool {
	return strings.Contains(title, r.Description)
}

// Resolve converts the rule's geometry into absolute values for a desktop.
// Unset axes are reported as platform.Unset.
func (r Rule) Resolve(d platform.Desktop) platform.Rect {
	return platform.Rect{
		X:      r.PosX.ResolvePosition(d.Width),
		Y:      r.PosY.ResolvePosition(d.Height),
		Width:  r.SizeX.ResolveSize(d.Width),
		Height: r.SizeY.ResolveSize(d.Height),
	}
}

// HasGeometry reports whether at least one axis is set.
func (r Rule) HasGeometry() bool {
	return !r.PosX.IsUnset() || !r.PosY.IsUnset() || !r.SizeX.IsUnset() || !r.SizeY.IsUnset()
}

func (r Rule) String() string {
	return fmt.Sprintf("%s (type %q, description %q) => desktop %d at %s,%s size %s,%s flags %s",
		r.Name, r.Type, r.Description, r.Desktop, r.PosX, r.PosY, r.SizeX, r.SizeY, r.Flags)
}

// ParseFlags converts a configuration flag name into maximize bits.
func ParseFlags(s string) (platform.MaxState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return platform.MaxState{}, nil
	case "maximised", "maximized":
		return platform.Maximised, nil
	case "maxvertical":
		return platform.MaxState{Vertical: true}, nil
	case "maxhorizontal":
		return platform.MaxState{Horizontal: true}, nil
	default:
		return platform.MaxState{}, fmt.Errorf("unknown flags %q", s)
	}
}

// Store is the ordered rule list loaded from configuration. Order matters:
// rules are applied in declaration order and later rules may override
// earlier ones.
type Store struct {
	rules []Rule
}

// Add validates and appends a rule.
func (s *Store) Add(r Rule) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("rule %s: %w", r.Name, err)
	}
	s.rules = append(s.rules, r)
	return nil
}

// Rules returns the rules in declaration order.
func (s *Store) Rules() []Rule {
	if s == nil {
		return nil
	}
	return s.rules
}

// Len returns the number of rules.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}
