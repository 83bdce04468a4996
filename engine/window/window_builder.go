package window

import "github.com/Carmen-Shannon/oxy-fluid/common"

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial client area size. The surface and every render target start at this size.
// It is clamped into the size limits when the window is created.
//
// Parameters:
//   - width, height: initial size in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
		w.height = height
	}
}

// WithSizeLimits bounds interactive resizing, and with it the largest surface and render targets the
// renderer will allocate. Swapped bounds are reordered.
//
// Parameters:
//   - minWidth, minHeight: smallest size in pixels
//   - maxWidth, maxHeight: largest size in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth, w.maxWidth = min(minWidth, maxWidth), max(minWidth, maxWidth)
		w.minHeight, w.maxHeight = min(minHeight, maxHeight), max(minHeight, maxHeight)
	}
}

// WithResizable controls whether the user can resize the window. A fixed window never fires the resize
// callback after creation.
//
// Parameters:
//   - resizable: false to lock the window at its initial size
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.resizable = resizable
	}
}

// newWindowConfig applies the defaults and options and clamps the initial size into the limits.
func newWindowConfig(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "oxy-fluid",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 240,
		width:     1280,
		height:    720,
		resizable: true,
	}
	for _, opt := range options {
		opt(w)
	}
	w.minWidth, w.minHeight = max(w.minWidth, 1), max(w.minHeight, 1)
	w.maxWidth, w.maxHeight = max(w.maxWidth, w.minWidth), max(w.maxHeight, w.minHeight)
	w.width = common.Clamp(w.width, w.minWidth, w.maxWidth)
	w.height = common.Clamp(w.height, w.minHeight, w.maxHeight)
	return w
}
