package common

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   int
	}{
		{"first non-zero", []int{0, 3, 5}, 3},
		{"all zero", []int{0, 0}, 0},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coalesce(tt.values...); got != tt.want {
				t.Errorf("Coalesce(%v) = %d, want %d", tt.values, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.5, 0.0, 1.0); got != 1.0 {
		t.Errorf("Clamp above = %v, want 1", got)
	}
	if got := Clamp(-2, 0, 10); got != 0 {
		t.Errorf("Clamp below = %v, want 0", got)
	}
	if got := Clamp(4, 0, 10); got != 4 {
		t.Errorf("Clamp inside = %v, want 4", got)
	}
}

func TestFullscreenQuadBytes(t *testing.T) {
	vertices, indices := FullscreenQuad()
	vb := SliceToBytes(vertices)
	if len(vb) != len(vertices)*4 {
		t.Fatalf("vertex bytes = %d, want %d", len(vb), len(vertices)*4)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(vb[8:12])); got != 1 {
		t.Errorf("second vertex x = %v, want 1", got)
	}
	if len(SliceToBytes(indices)) != 24 {
		t.Errorf("index bytes = %d, want 24", len(SliceToBytes(indices)))
	}
	if SliceToBytes([]float32{}) != nil {
		t.Error("SliceToBytes on empty slice should be nil")
	}
}
