package background

import (
	"slices"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-fluid/engine/fluid"
	"github.com/Carmen-Shannon/oxy-fluid/engine/overlay"
)

// BackgroundBuilderOption is a functional option applied to a Background by NewBackground.
type BackgroundBuilderOption func(*background)

// WithLines sets the text overlay lines. No lines means no overlay.
//
// Parameters:
//   - lines: ordered text lines
//
// Returns:
//   - BackgroundBuilderOption: option function to apply
func WithLines(lines ...string) BackgroundBuilderOption {
	return func(b *background) {
		b.lines = slices.Clone(lines)
	}
}

// WithConfigStore shares a configuration store with the host for live tuning.
//
// Parameters:
//   - store: the store read once per frame
//
// Returns:
//   - BackgroundBuilderOption: option function to apply
func WithConfigStore(store *fluid.ConfigStore) BackgroundBuilderOption {
	return func(b *background) {
		b.config = store
	}
}

// WithConfig starts from cfg instead of the default configuration.
//
// Parameters:
//   - cfg: the initial configuration
//
// Returns:
//   - BackgroundBuilderOption: option function to apply
func WithConfig(cfg fluid.SimulationConfig) BackgroundBuilderOption {
	return func(b *background) {
		b.config = fluid.NewConfigStore(cfg)
	}
}

// WithFont sets the font name handed to the font resolver.
//
// Parameters:
//   - name: the font name
//
// Returns:
//   - BackgroundBuilderOption: option function to apply
func WithFont(name string) BackgroundBuilderOption {
	return func(b *background) {
		b.fontName = name
	}
}

// WithFontResolver replaces overlay.BuiltinResolver.
//
// Parameters:
//   - resolver: resolves font names to fonts
//
// Returns:
//   - BackgroundBuilderOption: option function to apply
func WithFontResolver(resolver overlay.FontResolver) BackgroundBuilderOption {
	return func(b *background) {
		if resolver != nil {
			b.resolver = resolver
		}
	}
}

// WithWorkerPool runs font resolution on pool instead of a private single-worker pool.
//
// Parameters:
//   - pool: the worker pool
//
// Returns:
//   - BackgroundBuilderOption: option function to apply
func WithWorkerPool(pool worker.DynamicWorkerPool) BackgroundBuilderOption {
	return func(b *background) {
		b.pool = pool
	}
}

// WithFrameKey sets the frame hook key. Host content registered at a higher key draws later.
//
// Parameters:
//   - key: the frame hook key (DefaultFrameKey by default)
//
// Returns:
//   - BackgroundBuilderOption: option function to apply
func WithFrameKey(key int) BackgroundBuilderOption {
	return func(b *background) {
		b.frameKey = key
	}
}

// WithIdleTimeout sets how long the pointer may rest before its forcing is dropped.
//
// Parameters:
//   - d: the idle timeout (fluid.DefaultIdleTimeout by default)
//
// Returns:
//   - BackgroundBuilderOption: option function to apply
func WithIdleTimeout(d time.Duration) BackgroundBuilderOption {
	return func(b *background) {
		b.idleTimeout = d
	}
}

// WithTimeScale sets the factor between frame seconds and shader time.
//
// Parameters:
//   - scale: the time scale (DefaultTimeScale by default)
//
// Returns:
//   - BackgroundBuilderOption: option function to apply
func WithTimeScale(scale float32) BackgroundBuilderOption {
	return func(b *background) {
		b.timeScale = scale
	}
}

// WithDeviceFactory replaces NewWGPUDevice.
//
// Parameters:
//   - factory: creates the device at mount time
//
// Returns:
//   - BackgroundBuilderOption: option function to apply
func WithDeviceFactory(factory DeviceFactory) BackgroundBuilderOption {
	return func(b *background) {
		if factory != nil {
			b.deviceFactory = factory
		}
	}
}

// WithClock replaces time.Now for pointer timestamps and idle decay.
//
// Parameters:
//   - now: the clock
//
// Returns:
//   - BackgroundBuilderOption: option function to apply
func WithClock(now func() time.Time) BackgroundBuilderOption {
	return func(b *background) {
		if now != nil {
			b.clock = now
		}
	}
}

// WithLayoutOptions configures the text layout metrics.
//
// Parameters:
//   - options: overlay layout options
//
// Returns:
//   - BackgroundBuilderOption: option function to apply
func WithLayoutOptions(options ...overlay.LayoutBuilderOption) BackgroundBuilderOption {
	return func(b *background) {
		b.layoutOpts = append(b.layoutOpts, options...)
	}
}

// WithAnimatorOptions configures the text reveal animation.
//
// Parameters:
//   - options: overlay animator options
//
// Returns:
//   - BackgroundBuilderOption: option function to apply
func WithAnimatorOptions(options ...overlay.AnimatorBuilderOption) BackgroundBuilderOption {
	return func(b *background) {
		b.animatorOpts = append(b.animatorOpts, options...)
	}
}
