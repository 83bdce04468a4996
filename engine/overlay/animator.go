package overlay

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

const (
	// animatorFPS is the fixed step the springs integrate at, independent of the render rate.
	animatorFPS = 60

	settleOpacity  = 1e-3
	settleOffset   = 0.05
	settleVelocity = 0.05
)

// Animator reveals laid-out glyphs one after another. Each record fades toward the target opacity and
// rises to its baseline on its own spring, starting index*stagger seconds after the first.
type Animator struct {
	spring        harmonica.Spring
	step          float64
	stagger       float64
	targetOpacity float64
	frequency     float64
	damping       float64

	elapsed     float64
	accumulator float64
	opacityVel  []float64
	offsetVel   []float64
	done        bool
}

// AnimatorBuilderOption is a functional option for configuring an Animator.
type AnimatorBuilderOption func(a *Animator)

// NewAnimator creates an Animator for count records.
//
// Parameters:
//   - count: the number of records to animate
//   - options: functional options to apply
//
// Returns:
//   - *Animator: the animator
func NewAnimator(count int, options ...AnimatorBuilderOption) *Animator {
	a := &Animator{
		stagger:       0.03,
		targetOpacity: 0.15,
		frequency:     8.0,
		damping:       1.0,
		opacityVel:    make([]float64, count),
		offsetVel:     make([]float64, count),
	}
	for _, opt := range options {
		opt(a)
	}
	a.step = harmonica.FPS(animatorFPS)
	a.spring = harmonica.NewSpring(a.step, a.frequency, a.damping)
	a.done = count == 0
	return a
}

// WithStagger sets the delay between the starts of consecutive records.
//
// Parameters:
//   - seconds: per-record start delay
//
// Returns:
//   - AnimatorBuilderOption: option function to apply
func WithStagger(seconds float64) AnimatorBuilderOption {
	return func(a *Animator) {
		a.stagger = seconds
	}
}

// WithTargetOpacity sets the resting opacity of revealed glyphs.
//
// Parameters:
//   - opacity: the resting opacity in [0, 1]
//
// Returns:
//   - AnimatorBuilderOption: option function to apply
func WithTargetOpacity(opacity float64) AnimatorBuilderOption {
	return func(a *Animator) {
		a.targetOpacity = opacity
	}
}

// WithSpring sets the spring's angular frequency and damping ratio.
//
// Parameters:
//   - frequency: angular frequency (higher settles faster)
//   - damping: damping ratio (1 is critically damped)
//
// Returns:
//   - AnimatorBuilderOption: option function to apply
func WithSpring(frequency, damping float64) AnimatorBuilderOption {
	return func(a *Animator) {
		a.frequency = frequency
		a.damping = damping
	}
}

// TargetOpacity returns the resting opacity of revealed glyphs.
func (a *Animator) TargetOpacity() float64 {
	return a.targetOpacity
}

// Done reports whether every record has settled. A done animator no longer mutates records.
func (a *Animator) Done() bool {
	return a.done
}

// Advance moves the animation forward by dt seconds and writes the new state into records.
// Records beyond the count the animator was created for are left untouched.
//
// Parameters:
//   - dt: elapsed wall time in seconds
//   - records: the records to animate
func (a *Animator) Advance(dt float64, records []CharRecord) {
	if a.done || dt <= 0 {
		return
	}
	n := min(len(records), len(a.opacityVel))
	a.accumulator += dt
	for a.accumulator >= a.step {
		a.accumulator -= a.step
		a.elapsed += a.step
		for i := range n {
			if a.elapsed < float64(i)*a.stagger {
				break
			}
			r := &records[i]
			r.Opacity, a.opacityVel[i] = a.spring.Update(r.Opacity, a.opacityVel[i], a.targetOpacity)
			r.OffsetY, a.offsetVel[i] = a.spring.Update(r.OffsetY, a.offsetVel[i], 0)
		}
	}

	if a.settled(records[:n]) {
		for i := range n {
			records[i].Opacity = a.targetOpacity
			records[i].OffsetY = 0
		}
		a.done = true
	}
}

func (a *Animator) settled(records []CharRecord) bool {
	if a.elapsed < float64(len(records)-1)*a.stagger {
		return false
	}
	for i, r := range records {
		if math.Abs(r.Opacity-a.targetOpacity) > settleOpacity || math.Abs(r.OffsetY) > settleOffset {
			return false
		}
		if math.Abs(a.opacityVel[i]) > settleVelocity || math.Abs(a.offsetVel[i]) > settleVelocity {
			return false
		}
	}
	return true
}
