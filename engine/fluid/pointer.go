package fluid

import "time"

// DefaultIdleTimeout is how long the pointer may stay still before its forcing is dropped.
const DefaultIdleTimeout = 100 * time.Millisecond

// Forcing is the pointer-derived input consumed by one simulation step.
// Positions are in viewport pixels with the origin at the top-left corner.
// The zero value is the neutral forcing.
type Forcing struct {
	Current  [2]float32
	Previous [2]float32
	Active   bool
}

// Vec4 packs the forcing into the (x, y, prevX, prevY) layout used by the fluid shader.
// Neutral forcing packs to zero.
func (f Forcing) Vec4() [4]float32 {
	if !f.Active {
		return [4]float32{}
	}
	return [4]float32{f.Current[0], f.Current[1], f.Previous[0], f.Previous[1]}
}

// PointerState tracks the pointer between frames. It is mutated by window event callbacks and read by
// the frame step on the same thread.
type PointerState struct {
	idleTimeout time.Duration
	forcing     Forcing
	lastMove    time.Time
	moved       bool
}

// NewPointerState creates a PointerState in the neutral state.
//
// Parameters:
//   - idleTimeout: how long without movement before forcing is dropped (DefaultIdleTimeout if <= 0)
//
// Returns:
//   - *PointerState: the pointer state
func NewPointerState(idleTimeout time.Duration) *PointerState {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &PointerState{idleTimeout: idleTimeout}
}

// Move records a pointer-move event at (x, y). The previous position stays at the point the last
// simulation step consumed, so several events within one frame form a single segment. The first move
// after neutral starts the segment at the new position.
//
// Parameters:
//   - x, y: pointer position in viewport pixels
//   - now: the event time
func (p *PointerState) Move(x, y float32, now time.Time) {
	prev := p.forcing.Previous
	if !p.moved {
		prev = [2]float32{x, y}
	}
	p.forcing = Forcing{
		Current:  [2]float32{x, y},
		Previous: prev,
		Active:   true,
	}
	p.lastMove = now
	p.moved = true
}

// Advance marks the current segment as consumed by a simulation step. Until the next move the forcing
// is a zero-length segment at the pointer, which the simulation treats as a stationary dab.
func (p *PointerState) Advance() {
	p.forcing.Previous = p.forcing.Current
}

// Leave resets the pointer to neutral, as when the cursor exits the window.
func (p *PointerState) Leave() {
	p.forcing = Forcing{}
	p.moved = false
}

// Decay drops the forcing to neutral once the pointer has been idle for at least the idle timeout.
//
// Parameters:
//   - now: the current frame time
func (p *PointerState) Decay(now time.Time) {
	if p.moved && now.Sub(p.lastMove) >= p.idleTimeout {
		p.Leave()
	}
}

// Forcing returns the forcing for the next simulation step.
func (p *PointerState) Forcing() Forcing {
	return p.forcing
}

// LastMove returns the time of the last recorded movement, or the zero time when neutral.
func (p *PointerState) LastMove() time.Time {
	if !p.moved {
		return time.Time{}
	}
	return p.lastMove
}
