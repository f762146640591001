package platform

import (
	"context"
	"fmt"
)

// Handle is the opaque window identifier reported by the window manager.
// It stays stable for the lifetime of one physical window.
type Handle string

// Unset marks a geometry axis that should be left unchanged.
const Unset = -1

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	Handle   Handle
	Desktop  int
	Geometry Rect
	Type     string
	Title    string
}

// Desktop is one virtual desktop (workspace) a window can be assigned to.
type Desktop struct {
	Index  int
	Name   string
	Width  int
	Height int
}

// Monitor describes a connected physical display.
type Monitor struct {
	Connector  string
	HardwareID string
	Width      int
	Height     int
	OffsetX    int
	OffsetY    int
}

// MaxState is the pair of independent maximize bits of a window.
type MaxState struct {
	Horizontal bool
	Vertical   bool
}

// Maximised has both bits set.
var Maximised = MaxState{Horizontal: true, Vertical: true}

// Any reports whether at least one bit is set.
func (m MaxState) Any() bool {
	return m.Horizontal || m.Vertical
}

func (m MaxState) String() string {
	switch {
	case m.Horizontal && m.Vertical:
		return "maximised"
	case m.Vertical:
		return "maxvertical"
	case m.Horizontal:
		return "maxhorizontal"
	default:
		return "none"
	}
}

// Backend abstracts the window-manager operations the placement engine needs.
// Geometry values of Unset leave that axis unchanged.
type Backend interface {
	Windows(ctx context.Context) ([]Window, error)
	Desktops(ctx context.Context) ([]Desktop, error)
	Monitors(ctx context.Context) ([]Monitor, error)
	SetDesktop(ctx context.Context, h Handle, desktop int) error
	MoveResize(ctx context.Context, h Handle, geom Rect) error
	AddMaximized(ctx context.Context, h Handle, state MaxState) error
	RemoveMaximized(ctx context.Context, h Handle, state MaxState) error
}
