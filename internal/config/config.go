package config

import (
	"fmt"
	"time"

	"github.com/1broseidon/wsorg/internal/platform"
	"github.com/1broseidon/wsorg/internal/rules"
)

const (
	DefaultMaxTime   = 60 * time.Second
	DefaultSleepTime = 5 * time.Second
)

// Setup holds the process-wide run settings.
type Setup struct {
	MaxTime        time.Duration
	SleepTime      time.Duration
	CommandTimeout time.Duration
	Demaximise     bool
}

// Config is a validated configuration ready for the control loop.
type Config struct {
	Setup Setup
	Rules rules.Store
}

// DesktopResolver maps desktop names to indices and validates indices.
type DesktopResolver interface {
	Resolve(name string) (int, bool)
	Has(index int) bool
}

// DefaultSetup returns the settings used when [Setup] omits a value.
func DefaultSetup() Setup {
	return Setup{
		MaxTime:   DefaultMaxTime,
		SleepTime: DefaultSleepTime,
	}
}

func buildSetup(raw *RawSetup) (Setup, error) {
	setup := DefaultSetup()
	if raw == nil {
		return setup, nil
	}
	var err error
	if setup.MaxTime, err = seconds("MaxTime", raw.MaxTime, setup.MaxTime); err != nil {
		return setup, err
	}
	if setup.SleepTime, err = seconds("SleepTime", raw.SleepTime, setup.SleepTime); err != nil {
		return setup, err
	}
	if setup.CommandTimeout, err = seconds("CommandTimeout", raw.CommandTimeout, 0); err != nil {
		return setup, err
	}
	if raw.Demaximise != nil {
		setup.Demaximise = *raw.Demaximise
	}
	return setup, nil
}

func seconds(key string, v any, def time.Duration) (time.Duration, error) {
	if v == nil {
		return def, nil
	}
	n, _, ok := number(v)
	if !ok {
		return 0, &ConfigError{Msg: fmt.Sprintf("%s must be a number of seconds, got %v", key, v)}
	}
	if n < 0 {
		return 0, &ConfigError{Msg: fmt.Sprintf("%s must not be negative", key)}
	}
	return time.Duration(n * float64(time.Second)), nil
}

func buildRule(name string, app RawApp, desktops DesktopResolver) (rules.Rule, error) {
	if app.Type == "" && app.Description == "" {
		return rules.Rule{}, ruleError(name, "missing type or description entry")
	}

	desktop, err := resolveDesktop(name, app.Desktop, desktops)
	if err != nil {
		return rules.Rule{}, err
	}

	r := rules.Rule{
		Name:        name,
		Type:        app.Type,
		Description: app.Description,
		Desktop:     desktop,
	}
	axes := []struct {
		key string
		raw any
		dst *rules.Axis
	}{
		{"Pos_x", app.PosX, &r.PosX},
		{"Pos_y", app.PosY, &r.PosY},
		{"Size_x", app.SizeX, &r.SizeX},
		{"Size_y", app.SizeY, &r.SizeY},
	}
	for _, a := range axes {
		if *a.dst, err = parseAxis(name, a.key, a.raw); err != nil {
			return rules.Rule{}, err
		}
	}

	if r.Flags, err = rules.ParseFlags(app.Flags); err != nil {
		return rules.Rule{}, &ConfigError{Rule: name, Msg: "bad Flags", Err: err}
	}
	return r, nil
}

func resolveDesktop(rule string, v any, desktops DesktopResolver) (int, error) {
	if v == nil {
		return 0, ruleError(rule, "missing desktop entry")
	}
	if name, ok := v.(string); ok {
		index, found := desktops.Resolve(name)
		if !found {
			return 0, ruleError(rule, "unknown desktop %s", name)
		}
		return index, nil
	}
	n, integral, ok := number(v)
	if !ok || !integral {
		return 0, ruleError(rule, "desktop must be an index or a name, got %v", v)
	}
	index := int(n)
	if index == platform.Unset {
		return 0, ruleError(rule, "missing desktop entry")
	}
	if !desktops.Has(index) {
		return 0, ruleError(rule, "unknown desktop %d", index)
	}
	return index, nil
}

// parseAxis accepts integers as pixels and floats as fractions of the
// desktop. Negative fractions and -1 leave the axis unchanged.
func parseAxis(rule, key string, v any) (rules.Axis, error) {
	if v == nil {
		return rules.Unset, nil
	}
	n, integral, ok := number(v)
	if !ok {
		return rules.Axis{}, ruleError(rule, "unknown %s (%v)", key, v)
	}
	if integral {
		if n < platform.Unset {
			return rules.Axis{}, ruleError(rule, "%s must be -1 or a pixel value, got %v", key, v)
		}
		return rules.Pixels(int(n)), nil
	}
	if n >= 1.0 {
		return rules.Axis{}, ruleError(rule, "%s fraction must be below 1.0, got %v", key, v)
	}
	return rules.Fraction(n), nil
}
