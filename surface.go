package mdnarrate

import "context"

// Surface displays documents and follows narration.
type Surface interface {
	// Show replaces the displayed document with a complete HTML page.
	Show(ctx context.Context, html string) error

	// ScrollTo smoothly scrolls to percent/100 of the scrollable height.
	ScrollTo(ctx context.Context, percent int) error
}

// Zoomer is implemented by surfaces that can scale the page.
type Zoomer interface {
	SetZoom(ctx context.Context, factor float64) error
}

// StateListener is implemented by surfaces that render controller state.
type StateListener interface {
	StateChanged(ctx context.Context, snap Snapshot)
}

// Dispatcher receives commands from interactive surfaces.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Command) error
	Snapshot() (Snapshot, error)
}

// NopSurface discards everything, for headless narration.
type NopSurface struct{}

// Show implements Surface.
func (NopSurface) Show(context.Context, string) error { return nil }

// ScrollTo implements Surface.
func (NopSurface) ScrollTo(context.Context, int) error { return nil }

var _ Surface = NopSurface{}
