package shader

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the render stage a shader belongs to.
type ShaderType int

const (
	// ShaderTypeVertex is a shader containing a @vertex entry point.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is a shader containing a @fragment entry point.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              map[int][]wgpu.VertexBufferLayout
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader is a pre-processed and parsed WGSL shader. It exposes the layout metadata needed to build a
// render pipeline and the annotation declarations needed to wire its bind groups.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the processed WGSL source.
	//
	// Returns:
	//   - string: the WGSL source with annotations expanded
	Source() string

	// BindGroupLayoutDescriptor retrieves the layout descriptor for one group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is unused
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed layout descriptors keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the WGSL variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or "" if nothing is declared there
	BindGroupVarName(group, binding int) string

	// VertexLayout retrieves the vertex buffer layout for a buffer slot.
	//
	// Parameters:
	//   - slot: the vertex buffer slot
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layout, or nil if not set
	VertexLayout(slot int) []wgpu.VertexBufferLayout

	// VertexLayouts retrieves every vertex buffer layout keyed by slot.
	//
	// Returns:
	//   - map[int][]wgpu.VertexBufferLayout: layouts keyed by slot
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// EntryPoint returns the entry point function name.
	//
	// Returns:
	//   - string: the entry point name (e.g. "fs_main")
	EntryPoint() string

	// Module returns the shader module descriptor built from the processed source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// ShaderType returns the stage of the shader.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// Declarations returns the group and provider annotations parsed from the source.
	//
	// Returns:
	//   - []Annotation: the declarations in source order
	Declarations() []Annotation

	// ProviderGroups returns the bind group index of every provider identity declared by the shader.
	//
	// Returns:
	//   - map[AnnotationArg]int: group indices keyed by provider identity
	ProviderGroups() map[AnnotationArg]int

	// RoleBinding finds the group and binding tagged with a binding role.
	//
	// Parameters:
	//   - role: the binding role to look up
	//
	// Returns:
	//   - int: the group index
	//   - int: the binding index
	//   - bool: true if the role is declared
	RoleBinding(role AnnotationArg) (int, int, bool)
}

var _ Shader = &shader{}

// NewShader creates a Shader from a WGSL file on disk. Failing to read or pre-process the file panics.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage of the shader
//   - sourcePath: the file path to read WGSL source from
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, sourcePath string) Shader {
	if sourcePath == "" {
		panic(fmt.Sprintf("shader: %s must have a valid source path", key))
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read source file %q: %v", sourcePath, err))
	}
	return NewShaderFromSource(key, shaderType, string(data))
}

// NewShaderFromSource creates a Shader from WGSL source held in memory, typically an embedded asset.
// A pre-processing failure panics.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage of the shader
//   - source: the raw WGSL source
//
// Returns:
//   - Shader: the parsed shader
func NewShaderFromSource(key string, shaderType ShaderType, source string) Shader {
	s := &shader{
		key:        key,
		shaderType: shaderType,
		pp:         NewPreProcessor(),
	}
	s.parseSource(source)
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexLayout(slot int) []wgpu.VertexBufferLayout {
	return s.vertexLayouts[slot]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

func (s *shader) ProviderGroups() map[AnnotationArg]int {
	groups := make(map[AnnotationArg]int)
	for _, d := range s.Declarations() {
		if d.Type == AnnotationTypeProvider {
			groups[d.Args[0]] = *d.Group
		}
	}
	return groups
}

func (s *shader) RoleBinding(role AnnotationArg) (int, int, bool) {
	for _, d := range s.Declarations() {
		if d.Type == AnnotationTypeProvider && len(d.Args) > 1 && d.Args[1] == role {
			return *d.Group, *d.Binding, true
		}
	}
	return -1, -1, false
}

// parseSource pre-processes the source, builds the module descriptor and extracts the entry point,
// vertex layouts (vertex stage only) and bind group layouts.
func (s *shader) parseSource(raw string) {
	var err error
	s.source, err = s.pp.Process(raw)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to pre-process %s: %v", s.key, err))
	}
	s.module = &wgpu.ShaderModuleDescriptor{
		Label:          s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: s.source},
	}
	s.entryPoint = parseEntryPoint(s.source, s.shaderType)

	visibility := wgpu.ShaderStageFragment
	s.vertexLayouts = make(map[int][]wgpu.VertexBufferLayout)
	if s.shaderType == ShaderTypeVertex {
		visibility = wgpu.ShaderStageVertex
		s.vertexLayouts = parseVertexLayouts(s.source)
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(s.source, visibility)
}
