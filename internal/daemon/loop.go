// Package daemon runs the bounded refresh/reconcile control loop.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/wsorg/internal/placement"
	"github.com/1broseidon/wsorg/internal/rules"
	"github.com/1broseidon/wsorg/internal/state"
)

// Reconciler applies rules to the tracked windows for one cycle.
type Reconciler interface {
	Apply(ctx context.Context, rs []rules.Rule, buckets []state.Bucket, desktops state.Desktops) (placement.Stats, error)
}

// LoopConfig holds configuration for the control loop.
type LoopConfig struct {
	MaxTime   time.Duration
	SleepTime time.Duration
	Rules     []rules.Rule
	// Desktops is the topology to reconcile against. When nil it is read
	// from the desktop source before the first cycle.
	Desktops state.Desktops
	Logger   *slog.Logger

	// Now and Sleep default to the wall clock.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Summary describes a finished run.
type Summary struct {
	Cycles      int
	Elapsed     time.Duration
	Stats       placement.Stats
	Interrupted bool
}

// Loop refreshes window state and reconciles it against the rules until the
// time budget is spent.
type Loop struct {
	cfg      LoopConfig
	desktops state.DesktopSource
	tracker  *state.Tracker
	engine   Reconciler
	logger   *slog.Logger
}

// NewLoop creates a control loop. The tracker may already hold state from an
// earlier refresh.
func NewLoop(cfg LoopConfig, desktops state.DesktopSource, tracker *state.Tracker, engine Reconciler) *Loop {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleep
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		cfg:      cfg,
		desktops: desktops,
		tracker:  tracker,
		engine:   engine,
		logger:   logger,
	}
}

// Run blocks until MaxTime has elapsed since the loop started, the context is
// cancelled, or a command fails. At least one cycle always runs. Cancellation
// is not an error; the summary reports it.
func (l *Loop) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	topo := l.cfg.Desktops
	if topo == nil {
		var err error
		topo, err = state.LoadDesktops(ctx, l.desktops)
		if err != nil {
			return sum, err
		}
	}
	l.logger.Debug("topology loaded", "desktops", len(topo))

	start := l.cfg.Now()
	l.logger.Info("loop started",
		"rules", len(l.cfg.Rules),
		"max_time", l.cfg.MaxTime,
		"sleep_time", l.cfg.SleepTime)

	for n := 1; ; n++ {
		if err := l.cycle(ctx, n, topo, &sum); err != nil {
			if ctx.Err() != nil {
				return l.interrupted(sum, start), nil
			}
			sum.Elapsed = l.cfg.Now().Sub(start)
			return sum, err
		}
		if l.cfg.Now().Sub(start) >= l.cfg.MaxTime {
			break
		}

		l.logger.Debug("sleeping", "loop", n, "duration", l.cfg.SleepTime)
		if err := l.cfg.Sleep(ctx, l.cfg.SleepTime); err != nil {
			return l.interrupted(sum, start), nil
		}
		if l.cfg.Now().Sub(start) >= l.cfg.MaxTime {
			break
		}
	}

	sum.Elapsed = l.cfg.Now().Sub(start)
	l.logger.Info("loop finished",
		"cycles", sum.Cycles,
		"elapsed", sum.Elapsed,
		"commands", sum.Stats.Commands())
	return sum, nil
}

func (l *Loop) cycle(ctx context.Context, n int, topo state.Desktops, sum *Summary) error {
	l.logger.Info(fmt.Sprintf("loop %d start", n))

	rs, err := l.tracker.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("loop %d: refresh windows: %w", n, err)
	}
	l.logger.Debug("windows refreshed",
		"loop", n,
		"total", rs.Total,
		"added", rs.Added,
		"updated", rs.Updated,
		"removed", rs.Removed)

	stats, err := l.engine.Apply(ctx, l.cfg.Rules, l.tracker.Buckets(), topo)
	sum.Cycles++
	sum.Stats = addStats(sum.Stats, stats)
	if err != nil {
		return fmt.Errorf("loop %d: %w", n, err)
	}
	if stats.Commands() > 0 {
		l.logger.Info("windows placed",
			"loop", n,
			"matched", stats.Matched,
			"reassigned", stats.Reassigned,
			"moved", stats.Moved,
			"demaximised", stats.Demaximised,
			"maximised", stats.Maximised)
	}
	return nil
}

func (l *Loop) interrupted(sum Summary, start time.Time) Summary {
	sum.Interrupted = true
	sum.Elapsed = l.cfg.Now().Sub(start)
	l.logger.Info("loop interrupted", "cycles", sum.Cycles, "elapsed", sum.Elapsed)
	return sum
}

func addStats(a, b placement.Stats) placement.Stats {
	return placement.Stats{
		Matched:     a.Matched + b.Matched,
		Reassigned:  a.Reassigned + b.Reassigned,
		Moved:       a.Moved + b.Moved,
		Demaximised: a.Demaximised + b.Demaximised,
		Maximised:   a.Maximised + b.Maximised,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
