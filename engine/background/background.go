package background

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-fluid/engine/fluid"
	"github.com/Carmen-Shannon/oxy-fluid/engine/overlay"
)

var (
	// ErrNotMounted is returned by operations that need a mounted Background.
	ErrNotMounted = errors.New("background: not mounted")

	// ErrAlreadyMounted is returned by Mount on a Background that is already mounted.
	ErrAlreadyMounted = errors.New("background: already mounted")
)

const (
	// MaxFrameFailures is how many consecutive frames may fail before the render loop halts.
	MaxFrameFailures = 60

	// DefaultFrameKey is the frame hook key used when none is configured. Host content drawn with a
	// higher key lands on top.
	DefaultFrameKey = -1000

	// DefaultTimeScale converts frame seconds to shader time.
	DefaultTimeScale = 0.5

	// DefaultFontName resolves to the regular Go font with overlay.BuiltinResolver.
	DefaultFontName = "go regular"
)

// Background is a full-viewport fluid animation with an optional text overlay. It is mounted into a
// Host, stepped once per frame by a Scheduler and releases every GPU resource on Unmount.
// All methods must be called from the frame thread.
type Background interface {
	// Mount creates the device and every per-mount resource, subscribes to host events and registers
	// the frame hook. A host without a viewport is not an error: nothing is created and nil is returned.
	//
	// Returns:
	//   - error: ErrAlreadyMounted, or a wrapped device creation error
	Mount() error

	// Unmount stops the frame hook, cancels event subscriptions and releases every resource. Idempotent.
	Unmount()

	// Mounted reports whether the Background holds live resources.
	Mounted() bool

	// Step runs one frame: advance time, decay the pointer, snapshot config, refresh text, simulate,
	// composite and swap. It is the registered frame hook.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	Step(deltaTime float32)

	// Resize resizes the surface, both state buffers and the text surface, resets the frame counter and
	// relays out text in its revealed state. Zero dimensions are ignored.
	//
	// Parameters:
	//   - width, height: the new viewport size in device pixels
	Resize(width, height int)

	// SetLines replaces the text overlay. A changed list is laid out again and re-animated; an empty list
	// removes the overlay.
	//
	// Parameters:
	//   - lines: ordered text lines
	SetLines(lines []string)

	// Config returns the live configuration store.
	Config() *fluid.ConfigStore

	// Frame returns the number of frames stepped since mount or the last resize.
	Frame() uint32

	// Time returns the scaled time accumulator fed to the shaders.
	Time() float32

	// Halted reports whether the render loop stopped after MaxFrameFailures consecutive failures.
	Halted() bool
}

type background struct {
	host      Host
	scheduler Scheduler

	// Configuration
	lines         []string
	config        *fluid.ConfigStore
	fontName      string
	resolver      overlay.FontResolver
	pool          worker.DynamicWorkerPool
	frameKey      int
	idleTimeout   time.Duration
	timeScale     float32
	deviceFactory DeviceFactory
	clock         func() time.Time
	layoutOpts    []overlay.LayoutBuilderOption
	animatorOpts  []overlay.AnimatorBuilderOption

	// Per-mount state
	mounted       bool
	device        Device
	buffers       *fluid.FrameBufferPair[fluid.Target]
	pointer       *fluid.PointerState
	loader        *overlay.FontLoader
	rasterizer    *overlay.Rasterizer
	layout        *overlay.Layout
	animator      *overlay.Animator
	cancelPointer func()
	cancelResize  func()

	time           float32
	frame          uint32
	failures       int
	halted         bool
	textDirty      bool
	textUploaded   bool
	fontFailLogged bool
}

var _ Background = &background{}

// NewBackground creates an unmounted Background.
//
// Parameters:
//   - host: the viewport and event source (may be nil; Mount is then a no-op)
//   - scheduler: the frame hook runner (may be nil when the caller drives Step itself)
//   - options: variadic list of BackgroundBuilderOption functions
//
// Returns:
//   - Background: the background
func NewBackground(host Host, scheduler Scheduler, options ...BackgroundBuilderOption) Background {
	b := &background{
		host:          host,
		scheduler:     scheduler,
		fontName:      DefaultFontName,
		resolver:      overlay.BuiltinResolver{},
		frameKey:      DefaultFrameKey,
		idleTimeout:   fluid.DefaultIdleTimeout,
		timeScale:     DefaultTimeScale,
		deviceFactory: NewWGPUDevice,
		clock:         time.Now,
	}
	for _, opt := range options {
		opt(b)
	}
	if b.config == nil {
		b.config = fluid.NewConfigStore(fluid.DefaultSimulationConfig())
	}
	return b
}

func (b *background) Mount() error {
	if b.mounted {
		return ErrAlreadyMounted
	}
	if b.host == nil || b.host.Width() <= 0 || b.host.Height() <= 0 {
		Logger().Debug("background: no viewport, skipping mount")
		return nil
	}

	width, height := b.host.Width(), b.host.Height()
	device, err := b.deviceFactory(b.host)
	if err != nil {
		return fmt.Errorf("background: create device: %w", err)
	}
	buffers, err := newStateBuffers(device, uint32(width), uint32(height))
	if err != nil {
		device.Release()
		return err
	}

	if b.pool == nil {
		b.pool = worker.NewDynamicWorkerPool(1, 16, time.Second)
	}

	b.device = device
	b.buffers = buffers
	b.pointer = fluid.NewPointerState(b.idleTimeout)
	b.loader = overlay.NewFontLoader(b.pool, b.resolver)
	b.rasterizer = overlay.NewRasterizer(width, height)
	b.layout, b.animator = nil, nil
	b.time, b.frame, b.failures = 0, 0, 0
	b.halted, b.textDirty, b.textUploaded, b.fontFailLogged = false, false, false, false
	if len(b.lines) > 0 {
		b.loader.Load(b.fontName)
	}

	b.cancelPointer = b.host.SubscribePointer(b.onPointerMove, b.onPointerLeave)
	b.cancelResize = b.host.SubscribeResize(b.Resize)
	b.mounted = true
	if b.scheduler != nil {
		b.scheduler.AddFrameHook(b.frameKey, b.Step)
	}

	Logger().Debug("background: mounted", "width", width, "height", height, "lines", len(b.lines))
	return nil
}

func newStateBuffers(device Device, width, height uint32) (*fluid.FrameBufferPair[fluid.Target], error) {
	a, err := device.NewStateTarget("Fluid State A", width, height)
	if err != nil {
		return nil, fmt.Errorf("background: state buffer: %w", err)
	}
	bt, err := device.NewStateTarget("Fluid State B", width, height)
	if err != nil {
		a.Release()
		return nil, fmt.Errorf("background: state buffer: %w", err)
	}
	pair, err := fluid.NewFrameBufferPair(a, bt)
	if err != nil {
		a.Release()
		bt.Release()
		return nil, err
	}
	return pair, nil
}

func (b *background) Unmount() {
	if !b.mounted {
		return
	}
	b.mounted = false

	// Stop the loop and event delivery before anything is released.
	if b.scheduler != nil && !b.halted {
		b.scheduler.RemoveFrameHook(b.frameKey)
	}
	if b.cancelPointer != nil {
		b.cancelPointer()
		b.cancelPointer = nil
	}
	if b.cancelResize != nil {
		b.cancelResize()
		b.cancelResize = nil
	}

	b.buffers.Release()
	b.device.Release()
	if err := b.rasterizer.Close(); err != nil {
		Logger().Warn("background: close text surface", "err", err)
	}
	if err := b.loader.Close(); err != nil {
		Logger().Warn("background: close font", "err", err)
	}
	b.buffers, b.device, b.rasterizer, b.loader = nil, nil, nil, nil
	b.layout, b.animator, b.pointer = nil, nil, nil

	Logger().Debug("background: unmounted")
}

func (b *background) Mounted() bool {
	return b.mounted
}

func (b *background) Step(deltaTime float32) {
	if !b.mounted || b.halted {
		return
	}

	b.time += deltaTime * b.timeScale
	b.pointer.Decay(b.clock())
	cfg := b.config.Load()
	b.refreshText(float64(deltaTime))

	if err := b.device.BeginFrame(); err != nil {
		b.frameFailed(err, cfg)
		return
	}
	err := b.encode(cfg)
	if endErr := b.device.EndFrame(); err == nil {
		err = endErr
	}
	if err != nil {
		b.frameFailed(err, cfg)
		return
	}

	b.buffers.Swap()
	b.pointer.Advance()
	b.frame++
	b.failures = 0
}

// encode records the simulation and compositing passes of one frame.
func (b *background) encode(cfg fluid.SimulationConfig) error {
	width, height := b.buffers.Size()
	current, previous := b.buffers.Current(), b.buffers.Previous()

	fu := fluid.NewGPUFluidUniforms(cfg, b.pointer.Forcing(), width, height, b.time, b.frame)
	if err := b.device.SimulationPass(current, previous, fu); err != nil {
		return err
	}
	du := fluid.NewGPUDisplayUniforms(cfg, width, height, b.time, b.textEnabled())
	return b.device.DisplayPass(current, du)
}

// frameFailed skips the frame. After MaxFrameFailures in a row the loop halts on the fallback colour.
func (b *background) frameFailed(err error, cfg fluid.SimulationConfig) {
	b.failures++
	Logger().Warn("background: frame skipped", "err", err, "consecutive", b.failures)
	if b.failures < MaxFrameFailures {
		return
	}

	b.halted = true
	if b.scheduler != nil {
		b.scheduler.RemoveFrameHook(b.frameKey)
	}
	Logger().Error("background: render loop halted", "failures", b.failures, "err", err)
	if clearErr := b.device.ClearSurface(fluid.ParseColor(cfg.Color1)); clearErr != nil {
		Logger().Error("background: fallback clear failed", "err", clearErr)
	}
}

func (b *background) textEnabled() bool {
	return b.textUploaded && b.layout != nil && len(b.layout.Records()) > 0
}

// refreshText builds the layout once the font is ready, then re-renders and uploads the text texture
// while the reveal animation runs or after a relayout.
func (b *background) refreshText(dt float64) {
	if len(b.lines) == 0 {
		return
	}
	if b.layout == nil {
		switch b.loader.Poll() {
		case overlay.FontStateReady:
			b.buildLayout(false)
		case overlay.FontStateFailed:
			if !b.fontFailLogged {
				Logger().Warn("background: text overlay disabled", "font", b.fontName, "err", b.loader.Err())
				b.fontFailLogged = true
			}
			return
		default:
			return
		}
	}

	animating := b.animator != nil && !b.animator.Done()
	if !animating && !b.textDirty {
		return
	}
	if animating {
		b.animator.Advance(dt, b.layout.Records())
	}

	b.rasterizer.Render(b.layout, b.loader.Font())
	width, height := b.rasterizer.Size()
	if err := b.device.UploadText(b.rasterizer.Pixels(), uint32(width), uint32(height)); err != nil {
		Logger().Warn("background: text upload failed", "err", err)
		return
	}
	b.textDirty = false
	b.textUploaded = true
}

// buildLayout lays out the current lines at the text surface size. revealed skips the reveal animation.
func (b *background) buildLayout(revealed bool) {
	width, height := b.rasterizer.Size()
	b.layout = overlay.NewLayout(b.layoutOpts...)
	b.layout.Build(b.lines, b.loader.Font(), width, height)

	b.animator = overlay.NewAnimator(len(b.layout.Records()), b.animatorOpts...)
	if revealed {
		b.layout.SnapRevealed(b.animator.TargetOpacity())
		b.animator = nil
	}
	b.textDirty = true
}

func (b *background) Resize(width, height int) {
	if !b.mounted {
		return
	}
	if width <= 0 || height <= 0 {
		Logger().Debug("background: ignoring empty resize", "width", width, "height", height)
		return
	}

	if err := b.device.Resize(width, height); err != nil {
		Logger().Warn("background: surface resize failed", "err", err)
	}
	if err := b.buffers.Resize(uint32(width), uint32(height)); err != nil {
		Logger().Warn("background: state buffer resize failed", "err", err)
	}
	if err := b.rasterizer.Resize(width, height); err != nil {
		Logger().Warn("background: text surface resize failed", "err", err)
	}
	b.frame = 0

	if b.layout != nil {
		b.buildLayout(true)
	}
	Logger().Debug("background: resized", "width", width, "height", height)
}

func (b *background) SetLines(lines []string) {
	if slices.Equal(lines, b.lines) {
		return
	}
	b.lines = slices.Clone(lines)
	if !b.mounted {
		return
	}

	b.layout, b.animator = nil, nil
	b.textUploaded = false
	if len(b.lines) == 0 {
		return
	}
	if b.loader.Poll() == overlay.FontStateIdle {
		b.loader.Load(b.fontName)
	}
}

func (b *background) Config() *fluid.ConfigStore {
	return b.config
}

func (b *background) Frame() uint32 {
	return b.frame
}

func (b *background) Time() float32 {
	return b.time
}

func (b *background) Halted() bool {
	return b.halted
}

func (b *background) onPointerMove(x, y float64) {
	b.pointer.Move(float32(x), float32(y), b.clock())
}

func (b *background) onPointerLeave() {
	b.pointer.Leave()
}
