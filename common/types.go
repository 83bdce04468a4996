// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureStagingData holds RGBA8 pixel data pending upload into a texture.
type TextureStagingData struct {
	// Pixels is tightly packed RGBA, 4 bytes per pixel, row-major from the top-left corner.
	Pixels []byte
	// Width is the width of the pixel data in pixels.
	Width uint32
	// Height is the height of the pixel data in pixels.
	Height uint32
}

// RenderTargetData describes an offscreen texture that can be sampled by a shader.
type RenderTargetData struct {
	// Label is the debug label applied to the texture and its view.
	Label string
	// Width and Height are the target dimensions in pixels.
	Width, Height uint32
	// Format is the texel format. Defaults to RGBA16Float when left undefined.
	Format wgpu.TextureFormat
	// Usage is the texture usage. Defaults to RenderAttachment | TextureBinding when left undefined.
	Usage wgpu.TextureUsage
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// This is primarily used in the BindGroupProvider to stage sampler data before creating the GPU sampler and bind group.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}
