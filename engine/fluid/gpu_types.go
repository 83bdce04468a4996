package fluid

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUQuadVertexSource is the full-screen quad vertex shader shared by both stages.
//
//go:embed assets/quad_vert.wgsl
var GPUQuadVertexSource string

// GPUFluidFragmentSource is the simulation step fragment shader.
//
//go:embed assets/fluid_frag.wgsl
var GPUFluidFragmentSource string

// GPUDisplayFragmentSource is the compositing fragment shader.
//
//go:embed assets/display_frag.wgsl
var GPUDisplayFragmentSource string

// GPUFluidUniformsSource is the canonical WGSL definition of the FluidUniforms struct.
// Matches GPUFluidUniforms layout exactly (64 bytes).
//
//go:embed assets/fluid_uniforms.wgsl
var GPUFluidUniformsSource string

// GPUDisplayUniformsSource is the canonical WGSL definition of the DisplayUniforms struct.
// Matches GPUDisplayUniforms layout exactly (96 bytes).
//
//go:embed assets/display_uniforms.wgsl
var GPUDisplayUniformsSource string

// GPUFluidUniforms is the GPU-aligned uniform block for the simulation stage.
// Size: 64 bytes (WGSL uniform aligned).
type GPUFluidUniforms struct {
	Mouse         [4]float32 // offset  0: pointer (x, y, prevX, prevY) in pixels, zero when neutral
	Resolution    [2]float32 // offset 16: viewport size in pixels
	Time          float32    // offset 24: scaled elapsed time
	Frame         uint32     // offset 28: frames since the last resize
	BrushSize     float32    // offset 32
	BrushStrength float32    // offset 36
	FluidDecay    float32    // offset 40
	TrailLength   float32    // offset 44
	StopDecay     float32    // offset 48
	PointerActive float32    // offset 52: 1 while forcing is active
	_pad          [2]float32 // offset 56: padding to 64 bytes
}

// NewGPUFluidUniforms packs one simulation step's inputs.
//
// Parameters:
//   - cfg: the frame's configuration snapshot
//   - forcing: the pointer forcing for this step
//   - width, height: viewport size in pixels
//   - time: scaled elapsed time
//   - frame: frames since the last resize
//
// Returns:
//   - GPUFluidUniforms: the packed uniforms
func NewGPUFluidUniforms(cfg SimulationConfig, forcing Forcing, width, height uint32, time float32, frame uint32) GPUFluidUniforms {
	u := GPUFluidUniforms{
		Mouse:         forcing.Vec4(),
		Resolution:    [2]float32{float32(width), float32(height)},
		Time:          time,
		Frame:         frame,
		BrushSize:     cfg.BrushSize,
		BrushStrength: cfg.BrushStrength,
		FluidDecay:    cfg.FluidDecay,
		TrailLength:   cfg.TrailLength,
		StopDecay:     cfg.StopDecay,
	}
	if forcing.Active {
		u.PointerActive = 1
	}
	return u
}

// Size returns the size of the GPUFluidUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUFluidUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFluidUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFluidUniforms) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Mouse[i]))
	}
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(g.Resolution[0]))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(g.Resolution[1]))
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[28:], g.Frame)
	binary.LittleEndian.PutUint32(buf[32:], math.Float32bits(g.BrushSize))
	binary.LittleEndian.PutUint32(buf[36:], math.Float32bits(g.BrushStrength))
	binary.LittleEndian.PutUint32(buf[40:], math.Float32bits(g.FluidDecay))
	binary.LittleEndian.PutUint32(buf[44:], math.Float32bits(g.TrailLength))
	binary.LittleEndian.PutUint32(buf[48:], math.Float32bits(g.StopDecay))
	binary.LittleEndian.PutUint32(buf[52:], math.Float32bits(g.PointerActive))
	return buf
}

// GPUDisplayUniforms is the GPU-aligned uniform block for the compositing stage.
// Size: 96 bytes (WGSL uniform aligned).
type GPUDisplayUniforms struct {
	Colors           [4][4]float32 // offset  0: gradient colours 1 to 4 (vec4<f32> each)
	Resolution       [2]float32    // offset 64
	Time             float32       // offset 72
	DistortionAmount float32       // offset 76
	ColorIntensity   float32       // offset 80
	Softness         float32       // offset 84
	NoiseAmount      float32       // offset 88
	TextEnabled      float32       // offset 92: 0 makes the text layer transparent
}

// NewGPUDisplayUniforms packs one compositing pass's inputs.
//
// Parameters:
//   - cfg: the frame's configuration snapshot
//   - width, height: viewport size in pixels
//   - time: scaled elapsed time
//   - textEnabled: whether the text texture contributes
//
// Returns:
//   - GPUDisplayUniforms: the packed uniforms
func NewGPUDisplayUniforms(cfg SimulationConfig, width, height uint32, time float32, textEnabled bool) GPUDisplayUniforms {
	u := GPUDisplayUniforms{
		Colors:           cfg.Palette(),
		Resolution:       [2]float32{float32(width), float32(height)},
		Time:             time,
		DistortionAmount: cfg.DistortionAmount,
		ColorIntensity:   cfg.ColorIntensity,
		Softness:         cfg.Softness,
		NoiseAmount:      cfg.NoiseAmount,
	}
	if textEnabled {
		u.TextEnabled = 1
	}
	return u
}

// Size returns the size of the GPUDisplayUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUDisplayUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUDisplayUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUDisplayUniforms) Marshal() []byte {
	buf := make([]byte, g.Size())
	for c := range 4 {
		for i := range 4 {
			binary.LittleEndian.PutUint32(buf[c*16+i*4:], math.Float32bits(g.Colors[c][i]))
		}
	}
	binary.LittleEndian.PutUint32(buf[64:], math.Float32bits(g.Resolution[0]))
	binary.LittleEndian.PutUint32(buf[68:], math.Float32bits(g.Resolution[1]))
	binary.LittleEndian.PutUint32(buf[72:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[76:], math.Float32bits(g.DistortionAmount))
	binary.LittleEndian.PutUint32(buf[80:], math.Float32bits(g.ColorIntensity))
	binary.LittleEndian.PutUint32(buf[84:], math.Float32bits(g.Softness))
	binary.LittleEndian.PutUint32(buf[88:], math.Float32bits(g.NoiseAmount))
	binary.LittleEndian.PutUint32(buf[92:], math.Float32bits(g.TextEnabled))
	return buf
}
