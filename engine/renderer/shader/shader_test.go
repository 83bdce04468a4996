package shader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fluid/engine/fluid"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestQuadVertexShader(t *testing.T) {
	s := NewShaderFromSource("quad_vert", ShaderTypeVertex, fluid.GPUQuadVertexSource)
	if s.EntryPoint() != "vs_main" {
		t.Errorf("EntryPoint = %q, want vs_main", s.EntryPoint())
	}
	layouts := s.VertexLayout(0)
	if len(layouts) != 1 {
		t.Fatalf("VertexLayout(0) has %d layouts, want 1", len(layouts))
	}
	l := layouts[0]
	if l.ArrayStride != 8 || len(l.Attributes) != 1 {
		t.Fatalf("layout = stride %d, %d attributes", l.ArrayStride, len(l.Attributes))
	}
	if l.Attributes[0].Format != wgpu.VertexFormatFloat32x2 || l.Attributes[0].ShaderLocation != 0 {
		t.Errorf("attribute = %+v", l.Attributes[0])
	}
	if len(s.BindGroupLayoutDescriptors()) != 0 {
		t.Errorf("vertex shader should declare no bind groups, got %d", len(s.BindGroupLayoutDescriptors()))
	}
	if s.Module() == nil || s.Module().WGSLDescriptor.Code != s.Source() {
		t.Error("module descriptor should carry the processed source")
	}
}

func TestFluidFragmentShader(t *testing.T) {
	s := NewShaderFromSource("fluid_frag", ShaderTypeFragment, fluid.GPUFluidFragmentSource)
	if s.EntryPoint() != "fs_main" {
		t.Errorf("EntryPoint = %q, want fs_main", s.EntryPoint())
	}
	if strings.Contains(s.Source(), annotationPrefix+"include") {
		t.Error("include annotation should be expanded")
	}
	if !strings.Contains(s.Source(), "@group(0) @binding(0) var<uniform> params: FluidUniforms;") {
		t.Error("group annotation should generate the uniform declaration")
	}

	g0 := s.BindGroupLayoutDescriptor(0)
	if len(g0.Entries) != 1 {
		t.Fatalf("group 0 has %d entries, want 1", len(g0.Entries))
	}
	if g0.Entries[0].Buffer.Type != wgpu.BufferBindingTypeUniform || g0.Entries[0].Buffer.MinBindingSize != 64 {
		t.Errorf("group 0 entry = %+v, want 64 byte uniform", g0.Entries[0].Buffer)
	}
	if g0.Entries[0].Visibility != wgpu.ShaderStageFragment {
		t.Errorf("visibility = %v, want fragment", g0.Entries[0].Visibility)
	}

	g1 := s.BindGroupLayoutDescriptor(1)
	if len(g1.Entries) != 2 {
		t.Fatalf("group 1 has %d entries, want 2", len(g1.Entries))
	}
	if g1.Entries[0].Texture.ViewDimension != wgpu.TextureViewDimension2D || g1.Entries[0].Texture.SampleType != wgpu.TextureSampleTypeFloat {
		t.Errorf("group 1 binding 0 = %+v, want 2D float texture", g1.Entries[0].Texture)
	}
	if g1.Entries[1].Sampler.Type != wgpu.SamplerBindingTypeFiltering {
		t.Errorf("group 1 binding 1 = %+v, want filtering sampler", g1.Entries[1].Sampler)
	}
	if got := s.BindGroupVarName(1, 0); got != "previousState" {
		t.Errorf("BindGroupVarName(1, 0) = %q", got)
	}
	if got := s.BindGroupVarName(5, 0); got != "" {
		t.Errorf("BindGroupVarName(5, 0) = %q, want empty", got)
	}

	groups := s.ProviderGroups()
	if len(groups) != 1 || groups[AnnotationArgFluidState] != 1 {
		t.Errorf("ProviderGroups = %v", groups)
	}
	if g, b, ok := s.RoleBinding(AnnotationArgStateSampler); !ok || g != 1 || b != 1 {
		t.Errorf("RoleBinding(state_sampler) = %d, %d, %v", g, b, ok)
	}
	if _, _, ok := s.RoleBinding(AnnotationArgTextTexture); ok {
		t.Error("fluid shader should not declare a text texture")
	}
}

func TestDisplayFragmentShader(t *testing.T) {
	s := NewShaderFromSource("display_frag", ShaderTypeFragment, fluid.GPUDisplayFragmentSource)
	if got := s.BindGroupLayoutDescriptor(0).Entries[0].Buffer.MinBindingSize; got != 96 {
		t.Errorf("display uniform MinBindingSize = %d, want 96", got)
	}
	groups := s.ProviderGroups()
	if groups[AnnotationArgFluidState] != 1 || groups[AnnotationArgText] != 2 {
		t.Errorf("ProviderGroups = %v", groups)
	}
	if g, b, ok := s.RoleBinding(AnnotationArgTextTexture); !ok || g != 2 || b != 0 {
		t.Errorf("RoleBinding(text_texture) = %d, %d, %v", g, b, ok)
	}
	if n := len(s.Declarations()); n != 5 {
		t.Errorf("Declarations = %d, want 5", n)
	}
}

func TestNewShaderFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.wgsl")
	if err := os.WriteFile(path, []byte(fluid.GPUQuadVertexSource), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewShader("quad", ShaderTypeVertex, path)
	if s.Key() != "quad" || s.ShaderType() != ShaderTypeVertex || s.EntryPoint() != "vs_main" {
		t.Errorf("unexpected shader %q type %v entry %q", s.Key(), s.ShaderType(), s.EntryPoint())
	}
}

func TestNewShaderPanics(t *testing.T) {
	cases := []struct {
		name string
		fn   func()
	}{
		{"empty path", func() { NewShader("x", ShaderTypeVertex, "") }},
		{"missing file", func() { NewShader("x", ShaderTypeVertex, filepath.Join(t.TempDir(), "nope.wgsl")) }},
		{"bad annotation", func() { NewShaderFromSource("x", ShaderTypeFragment, "//@oxy:include camera") }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			c.fn()
		})
	}
}
