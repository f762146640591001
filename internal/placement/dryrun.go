package placement

import (
	"context"
	"log/slog"

	"github.com/1broseidon/wsorg/internal/platform"
)

// dryRun logs commands and reports success without touching the window
// manager.
type dryRun struct {
	logger *slog.Logger
}

func (d dryRun) SetDesktop(_ context.Context, h platform.Handle, desktop int) error {
	d.logger.Info("dry run: set desktop", "handle", h, "desktop", desktop)
	return nil
}

func (d dryRun) MoveResize(_ context.Context, h platform.Handle, geom platform.Rect) error {
	d.logger.Info("dry run: move/resize", "handle", h, "geometry", geom)
	return nil
}

func (d dryRun) AddMaximized(_ context.Context, h platform.Handle, state platform.MaxState) error {
	d.logger.Info("dry run: maximize", "handle", h, "flags", state)
	return nil
}

func (d dryRun) RemoveMaximized(_ context.Context, h platform.Handle, state platform.MaxState) error {
	d.logger.Info("dry run: demaximize", "handle", h, "flags", state)
	return nil
}
