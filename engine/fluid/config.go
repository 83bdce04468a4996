package fluid

import (
	"github.com/gogpu/gg"
)

// SimulationConfig holds the tunable parameters read by both shader stages every frame.
// Values are plain data; negative or out-of-range values are passed through unchanged and only
// degrade the visual output.
type SimulationConfig struct {
	// BrushSize is the pointer impulse radius in pixels.
	BrushSize float32
	// BrushStrength scales the impulse deposited by a moving pointer.
	BrushStrength float32
	// DistortionAmount scales the displacement applied to the gradient coordinates.
	DistortionAmount float32
	// FluidDecay is the per-step geometric decay of the velocity field.
	FluidDecay float32
	// TrailLength controls how long the moving trail persists (higher is longer).
	TrailLength float32
	// StopDecay is the per-step decay of the dab left by a stationary pointer.
	StopDecay float32

	// Color1 through Color4 are the gradient colours as hex strings ("#rrggbb").
	Color1, Color2, Color3, Color4 string

	// ColorIntensity multiplies the blended gradient colour.
	ColorIntensity float32
	// Softness widens the gradient transition bands.
	Softness float32
	// NoiseAmount scales the dither noise added to the final colour.
	NoiseAmount float32
}

// ConfigBuilderOption is a functional option for configuring a SimulationConfig.
type ConfigBuilderOption func(c *SimulationConfig)

// DefaultSimulationConfig returns the stock tuning: a monochrome charcoal and off-white gradient
// with a medium brush.
//
// Returns:
//   - SimulationConfig: the default configuration
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		BrushSize:        25.0,
		BrushStrength:    0.3,
		DistortionAmount: 1.5,
		FluidDecay:       0.98,
		TrailLength:      0.8,
		StopDecay:        0.85,
		Color1:           "#24242a",
		Color2:           "#f0eff1",
		Color3:           "#24242a",
		Color4:           "#f0eff1",
		ColorIntensity:   1.0,
		Softness:         1.0,
		NoiseAmount:      0.04,
	}
}

// NewSimulationConfig creates a SimulationConfig from the defaults with each option applied in order.
//
// Parameters:
//   - options: functional options to apply
//
// Returns:
//   - SimulationConfig: the configured value
func NewSimulationConfig(options ...ConfigBuilderOption) SimulationConfig {
	c := DefaultSimulationConfig()
	for _, opt := range options {
		opt(&c)
	}
	return c
}

// WithBrush sets the brush radius in pixels and the impulse strength.
//
// Parameters:
//   - size: brush radius in pixels
//   - strength: impulse strength
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithBrush(size, strength float32) ConfigBuilderOption {
	return func(c *SimulationConfig) {
		c.BrushSize = size
		c.BrushStrength = strength
	}
}

// WithDecay sets the fluid, trail and stop decay parameters.
//
// Parameters:
//   - fluidDecay: per-step velocity decay
//   - trailLength: moving trail persistence
//   - stopDecay: per-step decay of a stationary dab
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithDecay(fluidDecay, trailLength, stopDecay float32) ConfigBuilderOption {
	return func(c *SimulationConfig) {
		c.FluidDecay = fluidDecay
		c.TrailLength = trailLength
		c.StopDecay = stopDecay
	}
}

// WithColors sets the four gradient colours as hex strings.
//
// Parameters:
//   - c1, c2, c3, c4: hex colours ("#rgb", "#rrggbb" or with alpha)
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithColors(c1, c2, c3, c4 string) ConfigBuilderOption {
	return func(c *SimulationConfig) {
		c.Color1, c.Color2, c.Color3, c.Color4 = c1, c2, c3, c4
	}
}

// WithDistortion sets the distortion amount.
//
// Parameters:
//   - amount: displacement scale
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithDistortion(amount float32) ConfigBuilderOption {
	return func(c *SimulationConfig) {
		c.DistortionAmount = amount
	}
}

// WithTone sets the colour intensity, band softness and noise amount.
//
// Parameters:
//   - intensity: colour multiplier
//   - softness: band width factor
//   - noise: dither amplitude
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithTone(intensity, softness, noise float32) ConfigBuilderOption {
	return func(c *SimulationConfig) {
		c.ColorIntensity = intensity
		c.Softness = softness
		c.NoiseAmount = noise
	}
}

// Palette returns the four gradient colours as linear RGBA vectors ready for upload.
//
// Returns:
//   - [4][4]float32: colours 1 to 4
func (c SimulationConfig) Palette() [4][4]float32 {
	return [4][4]float32{
		ParseColor(c.Color1),
		ParseColor(c.Color2),
		ParseColor(c.Color3),
		ParseColor(c.Color4),
	}
}

// ParseColor converts a hex colour string into normalized RGBA components.
// Malformed strings yield opaque black.
//
// Parameters:
//   - hex: the colour string, with or without a leading '#'
//
// Returns:
//   - [4]float32: red, green, blue, alpha in [0, 1]
func ParseColor(hex string) [4]float32 {
	rgba := gg.Hex(hex)
	return [4]float32{float32(rgba.R), float32(rgba.G), float32(rgba.B), float32(rgba.A)}
}
