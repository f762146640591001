// Package placement reconciles tracked windows against placement rules.
package placement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/wsorg/internal/platform"
	"github.com/1broseidon/wsorg/internal/rules"
	"github.com/1broseidon/wsorg/internal/state"
)

// Commander issues the window-manager commands the engine needs.
type Commander interface {
	SetDesktop(ctx context.Context, h platform.Handle, desktop int) error
	MoveResize(ctx context.Context, h platform.Handle, geom platform.Rect) error
	AddMaximized(ctx context.Context, h platform.Handle, state platform.MaxState) error
	RemoveMaximized(ctx context.Context, h platform.Handle, state platform.MaxState) error
}

// Options controls engine policy.
type Options struct {
	// Demaximise clears both maximize bits before moving a window, for window
	// managers that refuse to move maximized windows.
	Demaximise bool
	// DryRun logs commands instead of issuing them.
	DryRun bool
}

// Stats counts what one Apply pass did.
type Stats struct {
	Matched     int
	Reassigned  int
	Moved       int
	Demaximised int
	Maximised   int
}

// Commands is the number of window-manager commands issued.
func (s Stats) Commands() int {
	return s.Reassigned + s.Moved + s.Demaximised + s.Maximised
}

// Engine applies rules to tracked windows.
type Engine struct {
	cmd    Commander
	opts   Options
	logger *slog.Logger
}

// New creates an engine issuing commands through cmd.
func New(cmd Commander, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.DryRun {
		cmd = dryRun{logger: logger}
	}
	return &Engine{cmd: cmd, opts: opts, logger: logger}
}

// Apply runs every rule, in order, against every matching window. Window
// records are updated in place once the corresponding command succeeds. The
// first failing command aborts the pass; a window may then be left on its
// new desktop without its new geometry.
func (e *Engine) Apply(ctx context.Context, rs []rules.Rule, buckets []state.Bucket, desktops state.Desktops) (Stats, error) {
	var stats Stats
	for _, rule := range rs {
		for _, bucket := range buckets {
			if !rule.MatchesType(bucket.Type) {
				continue
			}
			e.logger.Debug("rule matches type", "rule", rule.Name, "type", bucket.Type)
			for _, w := range bucket.Windows {
				if !rule.MatchesTitle(w.Title) {
					continue
				}
				stats.Matched++
				if err := e.applyWindow(ctx, rule, w, desktops, &stats); err != nil {
					return stats, fmt.Errorf("rule %s, window %s: %w", rule.Name, w.Handle, err)
				}
			}
		}
	}
	return stats, nil
}

func (e *Engine) applyWindow(ctx context.Context, rule rules.Rule, w *state.Window, desktops state.Desktops, stats *Stats) error {
	demaximised := false

	if w.Desktop != rule.Desktop {
		if e.opts.Demaximise {
			if err := e.demaximise(ctx, w, stats); err != nil {
				return err
			}
			demaximised = true
		}
		e.logger.Debug("moving window to desktop", "rule", rule.Name, "handle", w.Handle, "from", w.Desktop, "to", rule.Desktop)
		if err := e.cmd.SetDesktop(ctx, w.Handle, rule.Desktop); err != nil {
			return err
		}
		w.Desktop = rule.Desktop
		stats.Reassigned++
	} else {
		e.logger.Debug("window already on desktop", "rule", rule.Name, "handle", w.Handle, "desktop", w.Desktop)
	}

	desk, ok := desktops[w.Desktop]
	if !ok && needsDesktop(rule) {
		return fmt.Errorf("unknown desktop %d", w.Desktop)
	}
	target := rule.Resolve(desk)
	if rule.HasGeometry() && differs(w.Geometry, target) {
		if e.opts.Demaximise && !demaximised {
			if err := e.demaximise(ctx, w, stats); err != nil {
				return err
			}
		}
		e.logger.Info("moving window", "rule", rule.Name, "handle", w.Handle,
			"x", target.X, "y", target.Y, "width", target.Width, "height", target.Height)
		if err := e.cmd.MoveResize(ctx, w.Handle, target); err != nil {
			return err
		}
		w.Geometry = merge(w.Geometry, target)
		stats.Moved++
	}

	// The listing does not report maximize state, so the bits are re-sent on
	// every pass in case the window restored itself.
	if rule.Flags.Any() {
		e.logger.Info("maximizing window", "rule", rule.Name, "handle", w.Handle, "flags", rule.Flags)
		if err := e.cmd.AddMaximized(ctx, w.Handle, rule.Flags); err != nil {
			return err
		}
		stats.Maximised++
	}
	return nil
}

func (e *Engine) demaximise(ctx context.Context, w *state.Window, stats *Stats) error {
	e.logger.Debug("demaximising window", "handle", w.Handle)
	if err := e.cmd.RemoveMaximized(ctx, w.Handle, platform.Maximised); err != nil {
		return err
	}
	stats.Demaximised++
	return nil
}

func needsDesktop(r rules.Rule) bool {
	return r.PosX.IsFraction || r.PosY.IsFraction || r.SizeX.IsFraction || r.SizeY.IsFraction
}

// differs compares only the axes the target sets.
func differs(cur, target platform.Rect) bool {
	return axisDiffers(cur.X, target.X) || axisDiffers(cur.Y, target.Y) ||
		axisDiffers(cur.Width, target.Width) || axisDiffers(cur.Height, target.Height)
}

func axisDiffers(cur, target int) bool {
	return target != platform.Unset && cur != target
}

func merge(cur, target platform.Rect) platform.Rect {
	pick := func(c, t int) int {
		if t == platform.Unset {
			return c
		}
		return t
	}
	return platform.Rect{
		X:      pick(cur.X, target.X),
		Y:      pick(cur.Y, target.Y),
		Width:  pick(cur.Width, target.Width),
		Height: pick(cur.Height, target.Height),
	}
}
