package common

import (
	"unsafe"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// FullscreenQuad returns the vertex and index data for a two-triangle quad covering clip space.
// Each vertex is a vec2<f32> position; UVs are derived in the vertex shader.
//
// Returns:
//   - []float32: 4 vertices, 2 floats each
//   - []uint32: 6 indices, counter-clockwise winding
func FullscreenQuad() ([]float32, []uint32) {
	vertices := []float32{
		-1, -1,
		1, -1,
		1, 1,
		-1, 1,
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return vertices, indices
}
