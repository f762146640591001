package state

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/wsorg/internal/platform"
)

// WindowSource lists the currently open windows.
type WindowSource interface {
	Windows(ctx context.Context) ([]platform.Window, error)
}

// Window is a tracked window. Fields are updated in place on every refresh
// and by the placement engine after a command succeeds.
type Window struct {
	platform.Window

	generation uint64
}

// Bucket groups windows that report the same type.
type Bucket struct {
	Type    string
	Windows []*Window
}

// RefreshStats summarises one refresh.
type RefreshStats struct {
	Added   int
	Updated int
	Removed int
	Total   int
}

// Tracker keeps the set of live windows keyed by handle, with type buckets
// rebuilt as a secondary index after every refresh.
type Tracker struct {
	src        WindowSource
	logger     *slog.Logger
	windows    map[platform.Handle]*Window
	buckets    []Bucket
	generation uint64
}

// NewTracker creates an empty tracker reading from src.
func NewTracker(src WindowSource, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{
		src:     src,
		logger:  logger,
		windows: make(map[platform.Handle]*Window),
	}
}

// Refresh re-reads the window list. Windows not present in the listing are
// dropped once the whole listing has been processed. On error the tracked
// state is left untouched.
func (t *Tracker) Refresh(ctx context.Context) (RefreshStats, error) {
	listed, err := t.src.Windows(ctx)
	if err != nil {
		return RefreshStats{}, fmt.Errorf("list windows: %w", err)
	}

	t.generation++
	gen := t.generation
	var stats RefreshStats

	order := make([]*Window, 0, len(listed))
	for _, lw := range listed {
		w, ok := t.windows[lw.Handle]
		if !ok {
			w = &Window{Window: lw}
			t.windows[lw.Handle] = w
			stats.Added++
			t.logger.Info("adding window", "handle", lw.Handle, "type", lw.Type)
		} else {
			if w.generation == gen {
				// Listed twice in one pass; keep the first position.
				w.update(lw)
				continue
			}
			if w.update(lw) {
				stats.Updated++
				t.logger.Info("updating window", "handle", lw.Handle, "type", lw.Type)
			}
		}
		w.generation = gen
		order = append(order, w)
	}

	var gone []platform.Handle
	for h, w := range t.windows {
		if w.generation != gen {
			gone = append(gone, h)
		}
	}
	for _, h := range gone {
		t.logger.Debug("removing window as not found", "handle", h)
		delete(t.windows, h)
	}
	stats.Removed = len(gone)
	stats.Total = len(t.windows)

	t.buckets = bucketize(order)
	return stats, nil
}

// update copies the listed state into w and reports whether any placement
// relevant field changed.
func (w *Window) update(lw platform.Window) bool {
	changed := w.Desktop != lw.Desktop ||
		w.Geometry != lw.Geometry ||
		w.Title != lw.Title
	w.Desktop = lw.Desktop
	w.Geometry = lw.Geometry
	w.Title = lw.Title
	w.Type = lw.Type
	return changed
}

func bucketize(order []*Window) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket
	for _, w := range order {
		i, ok := index[w.Type]
		if !ok {
			i = len(buckets)
			index[w.Type] = i
			buckets = append(buckets, Bucket{Type: w.Type})
		}
		buckets[i].Windows = append(buckets[i].Windows, w)
	}
	return buckets
}

// Buckets returns the windows grouped by type, in order of first appearance
// in the latest listing.
func (t *Tracker) Buckets() []Bucket {
	return t.buckets
}

// Window looks up a tracked window by handle.
func (t *Tracker) Window(h platform.Handle) (*Window, bool) {
	w, ok := t.windows[h]
	return w, ok
}

// Len returns the number of tracked windows.
func (t *Tracker) Len() int {
	return len(t.windows)
}
