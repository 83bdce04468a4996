package background

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fluid/common"
	"github.com/Carmen-Shannon/oxy-fluid/engine/fluid"
	"github.com/Carmen-Shannon/oxy-fluid/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fluid/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fluid/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fluid/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	simulationPipelineKey = "fluid_simulation"
	displayPipelineKey    = "fluid_display"

	// stateFormat holds signed velocity and trail intensities above 1.
	stateFormat = wgpu.TextureFormatRGBA16Float
)

// stage is one fullscreen shader pass: a pipeline, its uniform block and the sampled targets it reads.
type stage struct {
	key      string
	fragment shader.Shader
	groups   int

	uniforms       bind_group_provider.BindGroupProvider
	uniformGroup   int
	uniformBinding int

	state *targetSlot
	text  *targetSlot
}

// targetSlot is a texture+sampler bind group fed from render targets. Bind groups are cached per target
// and rebuilt when the target reallocates.
type targetSlot struct {
	label    string
	group    int
	texture  int
	sampler  int
	bindings map[*renderer.RenderTarget]*targetBinding
}

type targetBinding struct {
	provider   bind_group_provider.BindGroupProvider
	generation uint64
}

func newSimulationStage(r renderer.Renderer) (*stage, error) {
	fragment := shader.NewShaderFromSource("fluid_fs", shader.ShaderTypeFragment, fluid.GPUFluidFragmentSource)
	return newStage(r, simulationPipelineKey, fragment, pipeline.WithTargetFormat(stateFormat))
}

func newDisplayStage(r renderer.Renderer) (*stage, error) {
	fragment := shader.NewShaderFromSource("display_fs", shader.ShaderTypeFragment, fluid.GPUDisplayFragmentSource)
	s, err := newStage(r, displayPipelineKey, fragment)
	if err != nil {
		return nil, err
	}
	if s.text, err = newTargetSlot("Display Text", fragment, shader.AnnotationArgTextTexture, shader.AnnotationArgTextSampler); err != nil {
		s.release(r)
		return nil, err
	}
	return s, nil
}

func newStage(r renderer.Renderer, key string, fragment shader.Shader, options ...pipeline.PipelineBuilderOption) (*stage, error) {
	vertex := shader.NewShaderFromSource(key+"_vs", shader.ShaderTypeVertex, fluid.GPUQuadVertexSource)
	options = append([]pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(vertex),
		pipeline.WithFragmentShader(fragment),
	}, options...)
	if err := r.RegisterPipelines(pipeline.NewPipeline(key, options...)); err != nil {
		return nil, fmt.Errorf("background: %s pipeline: %w", key, err)
	}

	s := &stage{key: key, fragment: fragment, uniformGroup: -1}
	descriptors := fragment.BindGroupLayoutDescriptors()
	for g, desc := range descriptors {
		s.groups = max(s.groups, g+1)
		for _, e := range desc.Entries {
			if e.Buffer.Type == wgpu.BufferBindingTypeUniform {
				s.uniformGroup, s.uniformBinding = g, int(e.Binding)
			}
		}
	}
	if s.uniformGroup < 0 {
		r.ReleasePipeline(key)
		return nil, fmt.Errorf("background: %s: fragment shader declares no uniform block", key)
	}

	s.uniforms = bind_group_provider.NewBindGroupProvider(key + " Uniforms")
	if err := r.InitBindGroup(s.uniforms, descriptors[s.uniformGroup], nil, nil); err != nil {
		s.release(r)
		return nil, fmt.Errorf("background: %s uniforms: %w", key, err)
	}

	var err error
	if s.state, err = newTargetSlot(key+" State", fragment, shader.AnnotationArgStateTexture, shader.AnnotationArgStateSampler); err != nil {
		s.release(r)
		return nil, err
	}
	return s, nil
}

func newTargetSlot(label string, fragment shader.Shader, textureRole, samplerRole shader.AnnotationArg) (*targetSlot, error) {
	group, texture, ok := fragment.RoleBinding(textureRole)
	if !ok {
		return nil, fmt.Errorf("background: %s: shader %q has no %s binding", label, fragment.Key(), textureRole)
	}
	samplerGroup, sampler, ok := fragment.RoleBinding(samplerRole)
	if !ok {
		return nil, fmt.Errorf("background: %s: shader %q has no %s binding", label, fragment.Key(), samplerRole)
	}
	if samplerGroup != group {
		return nil, fmt.Errorf("background: %s: %s in group %d but %s in group %d", label, textureRole, group, samplerRole, samplerGroup)
	}
	return &targetSlot{
		label:    label,
		group:    group,
		texture:  texture,
		sampler:  sampler,
		bindings: make(map[*renderer.RenderTarget]*targetBinding),
	}, nil
}

// bind returns a provider whose bind group samples target, rebuilding it if target reallocated.
func (ts *targetSlot) bind(r renderer.Renderer, fragment shader.Shader, target *renderer.RenderTarget) (bind_group_provider.BindGroupProvider, error) {
	b, ok := ts.bindings[target]
	if !ok {
		p := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s %d", ts.label, len(ts.bindings)))
		if err := r.InitSampler(p, ts.sampler, common.SamplerStagingData{}); err != nil {
			p.Release()
			return nil, fmt.Errorf("background: %s sampler: %w", ts.label, err)
		}
		b = &targetBinding{provider: p}
		ts.bindings[target] = b
	} else if b.generation == target.Generation() && b.provider.BindGroup() != nil {
		return b.provider, nil
	}

	b.provider.BorrowTextureView(ts.texture, target.View())
	if err := r.InitBindGroup(b.provider, fragment.BindGroupLayoutDescriptor(ts.group), nil, nil); err != nil {
		return nil, fmt.Errorf("background: %s bind group: %w", ts.label, err)
	}
	b.generation = target.Generation()
	return b.provider, nil
}

func (ts *targetSlot) release() {
	for target, b := range ts.bindings {
		b.provider.Release()
		delete(ts.bindings, target)
	}
}

// draw encodes one fullscreen pass into target, or the surface when target is nil.
func (s *stage) draw(r renderer.Renderer, quad bind_group_provider.BindGroupProvider, target *renderer.RenderTarget, uniforms []byte, state, text *renderer.RenderTarget) error {
	if err := r.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: s.uniforms,
		Binding:  s.uniformBinding,
		Data:     uniforms,
	}}); err != nil {
		return fmt.Errorf("background: write %s uniforms: %w", s.key, err)
	}

	groups := make([]bind_group_provider.BindGroupProvider, s.groups)
	groups[s.uniformGroup] = s.uniforms

	p, err := s.state.bind(r, s.fragment, state)
	if err != nil {
		return err
	}
	groups[s.state.group] = p

	if s.text != nil {
		if text == nil {
			return fmt.Errorf("background: %s: no text texture", s.key)
		}
		if p, err = s.text.bind(r, s.fragment, text); err != nil {
			return err
		}
		groups[s.text.group] = p
	}

	for g, p := range groups {
		if p == nil {
			return fmt.Errorf("background: %s: bind group %d has no provider", s.key, g)
		}
	}

	if err := r.BeginPass(target, wgpu.Color{}); err != nil {
		return fmt.Errorf("background: %s pass: %w", s.key, err)
	}
	defer r.EndPass()
	return r.DrawCall(s.key, quad, groups)
}

func (s *stage) release(r renderer.Renderer) {
	if s.uniforms != nil {
		s.uniforms.Release()
	}
	if s.state != nil {
		s.state.release()
	}
	if s.text != nil {
		s.text.release()
	}
	r.ReleasePipeline(s.key)
}
