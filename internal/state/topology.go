package state

import (
	"context"
	"fmt"
	"sort"

	"github.com/1broseidon/wsorg/internal/platform"
)

// DesktopSource lists virtual desktops.
type DesktopSource interface {
	Desktops(ctx context.Context) ([]platform.Desktop, error)
}

// Desktops indexes the virtual desktops read at startup.
type Desktops map[int]platform.Desktop

// LoadDesktops reads the desktop topology.
func LoadDesktops(ctx context.Context, src DesktopSource) (Desktops, error) {
	list, err := src.Desktops(ctx)
	if err != nil {
		return nil, fmt.Errorf("list desktops: %w", err)
	}
	desktops := make(Desktops, len(list))
	for _, d := range list {
		desktops[d.Index] = d
	}
	return desktops, nil
}

// Resolve returns the index of the desktop with exactly this name. Names are
// compared case-sensitively; the lowest index wins on duplicates.
func (d Desktops) Resolve(name string) (int, bool) {
	for _, desk := range d.Sorted() {
		if desk.Name == name {
			return desk.Index, true
		}
	}
	return 0, false
}

// Has reports whether index names a known desktop.
func (d Desktops) Has(index int) bool {
	_, ok := d[index]
	return ok
}

// Sorted returns the desktops ordered by index.
func (d Desktops) Sorted() []platform.Desktop {
	out := make([]platform.Desktop, 0, len(d))
	for _, desk := range d {
		out = append(out, desk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
