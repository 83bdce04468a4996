package engine

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-fluid/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fluid/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// engine implements the Engine interface.
// Everything runs on the window's message loop: events first, then frame hooks.
type engine struct {
	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	hooks map[int]func(deltaTime float32)

	nextSubID   int
	pointerSubs map[int]pointerSubscription
	resizeSubs  map[int]func(width, height int)

	now       func() time.Time
	lastFrame time.Time

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

type pointerSubscription struct {
	onMove  func(x, y float64)
	onLeave func()
}

// Engine is the main entry point for the engine.
// It owns the window and drives z-ordered frame hooks from a single cooperative loop.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, or nil if none was configured
	Window() window.Window

	// Width returns the window's framebuffer width in pixels, or 0 without a window.
	Width() int

	// Height returns the window's framebuffer height in pixels, or 0 without a window.
	Height() int

	// SurfaceDescriptor returns the window's surface descriptor, or nil without a window.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddFrameHook registers fn at the given z-index key, replacing any hook already there.
	// Hooks run once per frame in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining run order (lower runs first)
	//   - fn: the hook, receiving the frame delta time in seconds
	AddFrameHook(key int, fn func(deltaTime float32))

	// RemoveFrameHook removes the hook at key. A hook removed during a frame does not run again,
	// including later in that same frame.
	//
	// Parameters:
	//   - key: the z-index of the hook to remove
	RemoveFrameHook(key int)

	// SubscribePointer registers pointer move and leave callbacks. Coordinates are framebuffer pixels with
	// the origin at the top-left corner.
	//
	// Parameters:
	//   - onMove: called on every pointer move (may be nil)
	//   - onLeave: called when the pointer leaves the window (may be nil)
	//
	// Returns:
	//   - func(): cancels the subscription; safe to call more than once
	SubscribePointer(onMove func(x, y float64), onLeave func()) func()

	// SubscribeResize registers a framebuffer resize callback.
	//
	// Parameters:
	//   - fn: called with the new width and height in pixels
	//
	// Returns:
	//   - func(): cancels the subscription; safe to call more than once
	SubscribeResize(fn func(width, height int)) func()

	// Run starts the main loop (blocks until the window closes or Quit is called).
	Run()

	// Quit stops the loop after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (window, profiling, frame limit)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel: make(chan struct{}),
		hooks:       make(map[int]func(float32)),
		pointerSubs: make(map[int]pointerSubscription),
		resizeSubs:  make(map[int]func(int, int)),
		now:         time.Now,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.dispatchResize)
		e.window.SetCursorMoveCallback(e.dispatchCursorMove)
		e.window.SetCursorLeaveCallback(e.dispatchCursorLeave)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Width() int {
	if e.window == nil {
		return 0
	}
	return e.window.Width()
}

func (e *engine) Height() int {
	if e.window == nil {
		return 0
	}
	return e.window.Height()
}

func (e *engine) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if e.window == nil {
		return nil
	}
	return e.window.SurfaceDescriptor()
}

func (e *engine) Run() {
	if e.window == nil {
		log.Printf("engine: Run called without a window")
		return
	}
	e.lastFrame = e.now()
	e.window.SetUpdateCallback(e.frame)
	e.window.ProcessMessages()
	e.window.SetUpdateCallback(nil)
}

// Quit signals the loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// frame is the window's update callback: one iteration of the loop after events were polled.
func (e *engine) frame() {
	select {
	case <-e.quitChannel:
		e.window.RequestClose()
		return
	default:
	}

	start := e.now()
	dt := float32(start.Sub(e.lastFrame).Seconds())
	e.lastFrame = start

	e.runHooks(dt)

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - e.now().Sub(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// runHooks invokes every registered hook in ascending key order. Hooks may add or remove hooks; removed
// ones are skipped, added ones first run next frame.
func (e *engine) runHooks(dt float32) {
	keys := make([]int, 0, len(e.hooks))
	for k := range e.hooks {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		if fn, ok := e.hooks[k]; ok {
			fn(dt)
		}
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

func (e *engine) AddFrameHook(key int, fn func(deltaTime float32)) {
	if fn == nil {
		return
	}
	e.hooks[key] = fn
}

func (e *engine) RemoveFrameHook(key int) {
	delete(e.hooks, key)
}

func (e *engine) SubscribePointer(onMove func(x, y float64), onLeave func()) func() {
	id := e.nextSubID
	e.nextSubID++
	e.pointerSubs[id] = pointerSubscription{onMove: onMove, onLeave: onLeave}
	return func() { delete(e.pointerSubs, id) }
}

func (e *engine) SubscribeResize(fn func(width, height int)) func() {
	id := e.nextSubID
	e.nextSubID++
	e.resizeSubs[id] = fn
	return func() { delete(e.resizeSubs, id) }
}

func (e *engine) dispatchResize(width, height int) {
	for _, id := range sortedIDs(e.resizeSubs) {
		if fn, ok := e.resizeSubs[id]; ok && fn != nil {
			fn(width, height)
		}
	}
}

func (e *engine) dispatchCursorMove(x, y float64) {
	for _, id := range sortedIDs(e.pointerSubs) {
		if sub, ok := e.pointerSubs[id]; ok && sub.onMove != nil {
			sub.onMove(x, y)
		}
	}
}

func (e *engine) dispatchCursorLeave() {
	for _, id := range sortedIDs(e.pointerSubs) {
		if sub, ok := e.pointerSubs[id]; ok && sub.onLeave != nil {
			sub.onLeave()
		}
	}
}

// sortedIDs returns the subscription ids in registration order.
func sortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
