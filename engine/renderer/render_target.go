package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fluid/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrZeroSize is returned when a render target is created or resized with a zero dimension.
var ErrZeroSize = errors.New("renderer: render target dimensions must be non-zero")

// RenderTarget is an offscreen texture and its default view. Resizing reallocates both and bumps
// the generation so bind groups built over the old view can be detected as stale.
type RenderTarget struct {
	label  string
	format wgpu.TextureFormat
	usage  wgpu.TextureUsage

	width, height uint32
	generation    uint64

	device  *wgpu.Device
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func newRenderTarget(device *wgpu.Device, data common.RenderTargetData) (*RenderTarget, error) {
	t := &RenderTarget{
		label:  data.Label,
		format: common.Coalesce(data.Format, wgpu.TextureFormatRGBA16Float),
		usage:  common.Coalesce(data.Usage, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding),
		device: device,
	}
	if err := t.allocate(data.Width, data.Height); err != nil {
		return nil, err
	}
	return t, nil
}

// Width returns the target width in pixels.
func (t *RenderTarget) Width() uint32 {
	return t.width
}

// Height returns the target height in pixels.
func (t *RenderTarget) Height() uint32 {
	return t.height
}

// Format returns the texel format.
func (t *RenderTarget) Format() wgpu.TextureFormat {
	return t.format
}

// Texture returns the underlying texture, or nil after Release.
func (t *RenderTarget) Texture() *wgpu.Texture {
	return t.texture
}

// View returns the default texture view, or nil after Release.
func (t *RenderTarget) View() *wgpu.TextureView {
	return t.view
}

// Generation increases every time the texture is reallocated.
func (t *RenderTarget) Generation() uint64 {
	return t.generation
}

// Resize reallocates the texture at the new dimensions, discarding its contents. Resizing to the
// current dimensions is a no-op.
//
// Parameters:
//   - width: the new width in pixels
//   - height: the new height in pixels
//
// Returns:
//   - error: ErrZeroSize for a zero dimension, or the allocation error
func (t *RenderTarget) Resize(width, height uint32) error {
	if width == t.width && height == t.height && t.texture != nil {
		return nil
	}
	return t.allocate(width, height)
}

// Release frees the texture and view. Safe to call more than once.
func (t *RenderTarget) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

func (t *RenderTarget) allocate(width, height uint32) error {
	if width == 0 || height == 0 {
		return ErrZeroSize
	}
	tex, err := t.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: t.label,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        t.format,
		Usage:         t.usage,
	})
	if err != nil {
		return fmt.Errorf("renderer: create texture %q: %w", t.label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("renderer: create view %q: %w", t.label, err)
	}

	t.Release()
	t.texture = tex
	t.view = view
	t.width = width
	t.height = height
	t.generation++
	return nil
}
