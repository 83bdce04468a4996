package background

// Host is the environment a Background is embedded in: it reports the viewport size and delivers pointer
// and resize events on the frame thread. engine.Engine implements it.
type Host interface {
	// Width returns the viewport width in device pixels.
	Width() int

	// Height returns the viewport height in device pixels.
	Height() int

	// SubscribePointer registers pointer callbacks. Coordinates are device pixels, origin top-left.
	//
	// Parameters:
	//   - onMove: called on every pointer move
	//   - onLeave: called when the pointer leaves the viewport
	//
	// Returns:
	//   - func(): cancels the subscription
	SubscribePointer(onMove func(x, y float64), onLeave func()) func()

	// SubscribeResize registers a viewport resize callback.
	//
	// Parameters:
	//   - fn: called with the new size in device pixels
	//
	// Returns:
	//   - func(): cancels the subscription
	SubscribeResize(fn func(width, height int)) func()
}

// Scheduler runs frame hooks once per display frame. engine.Engine implements it.
type Scheduler interface {
	// AddFrameHook registers fn at key; hooks run in ascending key order.
	AddFrameHook(key int, fn func(deltaTime float32))

	// RemoveFrameHook removes the hook at key. It must not run again afterwards.
	RemoveFrameHook(key int)
}
