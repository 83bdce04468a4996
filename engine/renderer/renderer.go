package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fluid/common"
	"github.com/Carmen-Shannon/oxy-fluid/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fluid/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingPipelines     []pipeline.Pipeline
}

// SurfaceSource is anything that can hand out a platform surface descriptor and its pixel size,
// typically a window.Window.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// Renderer is a high-level API over a GPU backend. It caches render pipelines by key and encodes frames
// as a sequence of passes: BeginFrame, then any number of BeginPass / DrawCall / EndPass, then EndFrame
// and Present. A pass writes either an offscreen RenderTarget or the surface.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU objects for each pipeline and caches them by PipelineKey.
	// Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// ReleasePipeline releases and evicts the pipeline cached under key. Unknown keys are ignored.
	//
	// Parameters:
	//   - key: the pipeline key
	ReleasePipeline(key string)

	// SurfaceFormat returns the colour format of the configured surface.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// Resize reconfigures the surface for a new size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. A call to Resize is required for it to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// InitMeshBuffers creates vertex and index buffers from raw bytes and stores them on provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the buffers on
	//   - vertexData: the raw vertex bytes
	//   - indexData: the raw uint32 index bytes
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates missing buffers and a bind group for descriptor and stores them on provider.
	// Texture views and samplers must already be set on the provider. Calling it again rebuilds the
	// bind group, which is required after a bound texture view changes.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferUsageOverrides: additional buffer usage flags keyed by binding index (nil safe)
	//   - bufferSizeOverrides: buffer sizes replacing MinBindingSize keyed by binding index (nil safe)
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitSampler creates a sampler and stores it on provider at bindingKey.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// CreateRenderTarget allocates an offscreen texture that can be rendered into and sampled.
	//
	// Parameters:
	//   - data: the label, size, format and usage of the target
	//
	// Returns:
	//   - *RenderTarget: the target
	//   - error: an error if allocation fails
	CreateRenderTarget(data common.RenderTargetData) (*RenderTarget, error)

	// WriteTexture uploads RGBA8 pixels into target, resizing it when the dimensions differ.
	//
	// Parameters:
	//   - target: the destination texture
	//   - data: the pixels and their dimensions
	//
	// Returns:
	//   - error: an error if the upload is rejected
	WriteTexture(target *RenderTarget, data common.TextureStagingData) error

	// WriteBuffers writes all staged buffer writes to the GPU queue. Nothing is written if any write
	// fails validation.
	//
	// Parameters:
	//   - writes: the BufferWrites to apply
	//
	// Returns:
	//   - error: the first validation error
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// BeginFrame acquires the surface texture and opens the frame's command encoder.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// BeginPass opens a render pass that clears target, or the surface when target is nil.
	//
	// Parameters:
	//   - target: the colour attachment, or nil for the surface
	//   - clear: the clear colour
	//
	// Returns:
	//   - error: an error if no frame is active or a pass is already open
	BeginPass(target *RenderTarget, clear wgpu.Color) error

	// DrawCall encodes one indexed draw of meshProvider with the cached pipeline, setting bindGroups[i]
	// at group i.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered pipeline
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - bindGroups: the BindGroupProviders whose bind groups are set in group order
	//
	// Returns:
	//   - error: an error if the pipeline is not found or no pass is open
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndPass closes the open render pass.
	EndPass()

	// EndFrame closes any open pass and submits the frame's command buffer. Does not present.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the surface and releases the frame's surface texture.
	Present()

	// Release releases every cached pipeline and the GPU device. The Renderer must not be used afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with the specified backend over the surface of src and configures the
// surface at src's size. Adapter or device failures panic.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - src: the surface source, usually the engine window
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured Renderer
func NewRenderer(backendType RendererBackendType, src SurfaceSource, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
	}

	// Options first so config flags are available before the backend requests an adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(src.SurfaceDescriptor(), r.forceFallbackAdapter)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.ConfigureSurface(src.Width(), src.Height())

	if err := r.RegisterPipelines(r.pendingPipelines...); err != nil {
		panic(fmt.Sprintf("renderer: failed to register pipelines: %v", err))
	}
	r.pendingPipelines = nil
	return r
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) ReleasePipeline(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pipelineCache[key]; ok {
		p.Release()
		delete(r.pipelineCache, key)
	}
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) CreateRenderTarget(data common.RenderTargetData) (*RenderTarget, error) {
	return r.backend.CreateRenderTarget(data)
}

func (r *renderer) WriteTexture(target *RenderTarget, data common.TextureStagingData) error {
	return r.backend.WriteTexture(target, data)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	return r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) BeginPass(target *RenderTarget, clear wgpu.Color) error {
	return r.backend.BeginPass(target, clear)
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	return r.backend.DrawCall(p, meshProvider, bindGroups)
}

func (r *renderer) EndPass() {
	r.backend.EndPass()
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()
	r.backend.Release()
}
