package fluid

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned when a target is resized to a zero dimension.
var ErrInvalidSize = errors.New("fluid: target dimensions must be non-zero")

// Target is a single offscreen colour target owned by a FrameBufferPair.
type Target interface {
	// Width returns the target width in pixels.
	Width() uint32

	// Height returns the target height in pixels.
	Height() uint32

	// Resize reallocates the target at the given dimensions. Contents are discarded.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if reallocation failed
	Resize(width, height uint32) error

	// Release frees the target's resources. The target must not be used afterwards.
	Release()
}

// FrameBufferPair holds two equally sized targets that are read and written in alternation.
// The simulation reads Previous and writes Current; Swap exchanges the labels without touching the targets.
type FrameBufferPair[T Target] struct {
	targets  [2]T
	current  int
	released bool
}

// NewFrameBufferPair creates a FrameBufferPair over two targets. Both targets must already share the same
// dimensions; a is labelled current and b previous.
//
// Parameters:
//   - a: the initial current target
//   - b: the initial previous target
//
// Returns:
//   - *FrameBufferPair[T]: the pair
//   - error: an error if the targets differ in size
func NewFrameBufferPair[T Target](a, b T) (*FrameBufferPair[T], error) {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return nil, fmt.Errorf("fluid: frame buffer sizes differ: %dx%d vs %dx%d", a.Width(), a.Height(), b.Width(), b.Height())
	}
	return &FrameBufferPair[T]{targets: [2]T{a, b}}, nil
}

// Current returns the target written by the next simulation step.
func (p *FrameBufferPair[T]) Current() T {
	return p.targets[p.current]
}

// Previous returns the target holding the last completed simulation state.
func (p *FrameBufferPair[T]) Previous() T {
	return p.targets[1-p.current]
}

// Swap exchanges the current and previous labels.
func (p *FrameBufferPair[T]) Swap() {
	p.current = 1 - p.current
}

// Size returns the shared dimensions of both targets.
func (p *FrameBufferPair[T]) Size() (uint32, uint32) {
	return p.targets[0].Width(), p.targets[0].Height()
}

// Resize reallocates both targets at the new dimensions. Both targets are resized even if the first fails,
// and the returned error joins every failure.
//
// Parameters:
//   - width: the new width in pixels
//   - height: the new height in pixels
//
// Returns:
//   - error: ErrInvalidSize for a zero dimension, or the joined target errors
func (p *FrameBufferPair[T]) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return ErrInvalidSize
	}
	var errs []error
	for i := range p.targets {
		if err := p.targets[i].Resize(width, height); err != nil {
			errs = append(errs, fmt.Errorf("fluid: resize target %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Release releases both targets. Subsequent calls are no-ops.
func (p *FrameBufferPair[T]) Release() {
	if p.released {
		return
	}
	p.released = true
	for i := range p.targets {
		p.targets[i].Release()
	}
}
