package engine

import (
	"github.com/Carmen-Shannon/oxy-fluid/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fluid/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//   - options: optional profiler configuration (interval, reporter)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool, options ...profiler.ProfilerOption) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
		if len(options) > 0 {
			e.profiler = profiler.NewProfiler(options...)
		}
	}
}

// WithWindow sets a configured window for the engine to drive.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithFrameHook registers a frame hook at the given z-index key during engine construction.
//
// Parameters:
//   - key: the z-index determining run order (lower runs first)
//   - fn: the hook, receiving the frame delta time in seconds
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameHook(key int, fn func(deltaTime float32)) EngineBuilderOption {
	return func(e *engine) {
		if fn != nil {
			e.hooks[key] = fn
		}
	}
}

// WithRenderFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}
