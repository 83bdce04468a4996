package background

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fluid/common"
	"github.com/Carmen-Shannon/oxy-fluid/engine/fluid"
	"github.com/Carmen-Shannon/oxy-fluid/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fluid/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoSurface is returned by NewWGPUDevice when the host cannot provide a window surface.
var ErrNoSurface = errors.New("background: host has no window surface")

// Device is the GPU side of a Background: the surface, both shader stages, the text texture and the
// shared quad. A frame is BeginFrame, SimulationPass, DisplayPass, EndFrame.
type Device interface {
	// Resize reconfigures the visible surface.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	//
	// Returns:
	//   - error: an error if the size is not positive
	Resize(width, height int) error

	// NewStateTarget allocates one floating-point fluid state target.
	//
	// Parameters:
	//   - label: a debug label
	//   - width, height: the target size in pixels
	//
	// Returns:
	//   - fluid.Target: the target, owned by the caller
	//   - error: an error if allocation fails
	NewStateTarget(label string, width, height uint32) (fluid.Target, error)

	// UploadText replaces the text texture with RGBA8 pixels, resizing it when needed.
	//
	// Parameters:
	//   - pixels: tightly packed RGBA8 rows
	//   - width, height: the pixel dimensions
	//
	// Returns:
	//   - error: an error if the upload is rejected
	UploadText(pixels []byte, width, height uint32) error

	// BeginFrame acquires the next surface texture.
	//
	// Returns:
	//   - error: an error if no surface texture could be acquired
	BeginFrame() error

	// SimulationPass advances the fluid one step, reading previous and writing current.
	//
	// Parameters:
	//   - current: the target written this step
	//   - previous: the target written last step
	//   - uniforms: the packed step inputs
	//
	// Returns:
	//   - error: an error if the pass could not be encoded
	SimulationPass(current, previous fluid.Target, uniforms fluid.GPUFluidUniforms) error

	// DisplayPass composites state and the text texture onto the surface.
	//
	// Parameters:
	//   - state: the target the simulation just wrote
	//   - uniforms: the packed compositing inputs
	//
	// Returns:
	//   - error: an error if the pass could not be encoded
	DisplayPass(state fluid.Target, uniforms fluid.GPUDisplayUniforms) error

	// EndFrame submits the frame and presents the surface.
	//
	// Returns:
	//   - error: an error if submission failed
	EndFrame() error

	// ClearSurface presents a single frame filled with color.
	//
	// Parameters:
	//   - color: straight RGBA in [0, 1]
	//
	// Returns:
	//   - error: an error if the frame could not be presented
	ClearSurface(color [4]float32) error

	// Release frees every GPU object the device created, then the device itself. Idempotent.
	Release()
}

// DeviceFactory creates the Device for a host at mount time.
type DeviceFactory func(host Host) (Device, error)

type wgpuDevice struct {
	renderer   renderer.Renderer
	quad       bind_group_provider.BindGroupProvider
	simulation *stage
	display    *stage
	text       *renderer.RenderTarget
	released   bool
}

var _ Device = &wgpuDevice{}

// NewWGPUDevice is the default DeviceFactory. The host must also implement renderer.SurfaceSource, as
// engine.Engine does. Adapter and device failures are returned as errors.
//
// Parameters:
//   - host: the mounting host
//
// Returns:
//   - Device: the device
//   - error: ErrNoSurface or a wrapped GPU initialisation error
func NewWGPUDevice(host Host) (dev Device, err error) {
	src, ok := host.(renderer.SurfaceSource)
	if !ok || src.SurfaceDescriptor() == nil {
		return nil, ErrNoSurface
	}

	// Renderer construction panics on adapter or device failure.
	defer func() {
		if r := recover(); r != nil {
			dev, err = nil, fmt.Errorf("background: gpu init: %v", r)
		}
	}()
	return newWGPUDevice(renderer.NewRenderer(renderer.BackendTypeWGPU, src, renderer.WithPresentMode(renderer.PresentModeVSync)))
}

func newWGPUDevice(r renderer.Renderer) (*wgpuDevice, error) {
	d := &wgpuDevice{renderer: r}
	if err := d.init(); err != nil {
		d.Release()
		return nil, err
	}
	return d, nil
}

func (d *wgpuDevice) init() error {
	vertices, indices := common.FullscreenQuad()
	d.quad = bind_group_provider.NewBindGroupProvider("Fullscreen Quad")
	if err := d.renderer.InitMeshBuffers(d.quad, common.SliceToBytes(vertices), common.SliceToBytes(indices), len(indices)); err != nil {
		return fmt.Errorf("background: quad buffers: %w", err)
	}

	var err error
	if d.simulation, err = newSimulationStage(d.renderer); err != nil {
		return err
	}
	if d.display, err = newDisplayStage(d.renderer); err != nil {
		return err
	}

	// 1x1 transparent texture until the first text upload.
	d.text, err = d.renderer.CreateRenderTarget(common.RenderTargetData{
		Label:  "Text Overlay",
		Width:  1,
		Height: 1,
		Format: wgpu.TextureFormatRGBA8Unorm,
		Usage:  wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("background: text texture: %w", err)
	}
	return d.renderer.WriteTexture(d.text, common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1})
}

func (d *wgpuDevice) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("background: surface size %dx%d: %w", width, height, renderer.ErrZeroSize)
	}
	d.renderer.Resize(width, height)
	return nil
}

func (d *wgpuDevice) NewStateTarget(label string, width, height uint32) (fluid.Target, error) {
	return d.renderer.CreateRenderTarget(common.RenderTargetData{
		Label:  label,
		Width:  width,
		Height: height,
		Format: stateFormat,
	})
}

func (d *wgpuDevice) UploadText(pixels []byte, width, height uint32) error {
	return d.renderer.WriteTexture(d.text, common.TextureStagingData{Pixels: pixels, Width: width, Height: height})
}

func (d *wgpuDevice) BeginFrame() error {
	return d.renderer.BeginFrame()
}

func (d *wgpuDevice) SimulationPass(current, previous fluid.Target, uniforms fluid.GPUFluidUniforms) error {
	cur, err := asRenderTarget(current)
	if err != nil {
		return err
	}
	prev, err := asRenderTarget(previous)
	if err != nil {
		return err
	}
	return d.simulation.draw(d.renderer, d.quad, cur, uniforms.Marshal(), prev, nil)
}

func (d *wgpuDevice) DisplayPass(state fluid.Target, uniforms fluid.GPUDisplayUniforms) error {
	src, err := asRenderTarget(state)
	if err != nil {
		return err
	}
	return d.display.draw(d.renderer, d.quad, nil, uniforms.Marshal(), src, d.text)
}

func (d *wgpuDevice) EndFrame() error {
	err := d.renderer.EndFrame()
	d.renderer.Present()
	return err
}

func (d *wgpuDevice) ClearSurface(color [4]float32) error {
	if err := d.renderer.BeginFrame(); err != nil {
		return err
	}
	fill := wgpu.Color{R: float64(color[0]), G: float64(color[1]), B: float64(color[2]), A: float64(color[3])}
	if err := d.renderer.BeginPass(nil, fill); err != nil {
		_ = d.EndFrame()
		return err
	}
	return d.EndFrame()
}

func (d *wgpuDevice) Release() {
	if d.released {
		return
	}
	d.released = true
	for _, s := range []*stage{d.simulation, d.display} {
		if s != nil {
			s.release(d.renderer)
		}
	}
	if d.text != nil {
		d.text.Release()
	}
	if d.quad != nil {
		d.quad.Release()
	}
	d.renderer.Release()
}

func asRenderTarget(t fluid.Target) (*renderer.RenderTarget, error) {
	rt, ok := t.(*renderer.RenderTarget)
	if !ok || rt == nil {
		return nil, fmt.Errorf("background: state target %T was not created by this device", t)
	}
	return rt, nil
}
