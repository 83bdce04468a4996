package window

import "testing"

func TestScaleCursor(t *testing.T) {
	tests := []struct {
		name                 string
		x, y                 float64
		winW, winH, fbW, fbH int
		wantX, wantY         float64
	}{
		{"identity", 100, 50, 800, 600, 800, 600, 100, 50},
		{"retina", 100, 50, 800, 600, 1600, 1200, 200, 100},
		{"anisotropic", 10, 10, 100, 100, 150, 300, 15, 30},
		{"minimized", 42, 7, 0, 0, 0, 0, 42, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotX, gotY := scaleCursor(tt.x, tt.y, tt.winW, tt.winH, tt.fbW, tt.fbH)
			if gotX != tt.wantX || gotY != tt.wantY {
				t.Errorf("scaleCursor = (%v, %v), want (%v, %v)", gotX, gotY, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestNewWindowConfig(t *testing.T) {
	tests := []struct {
		name               string
		options            []WindowBuilderOption
		wantW, wantH       int
		wantMinW, wantMaxW int
		wantMinH, wantMaxH int
		wantResizable      bool
	}{
		{"defaults", nil, 1280, 720, 320, 3840, 240, 2160, true},
		{"size", []WindowBuilderOption{WithSize(1920, 1080)}, 1920, 1080, 320, 3840, 240, 2160, true},
		{"clamped up", []WindowBuilderOption{WithSize(10, 10)}, 320, 240, 320, 3840, 240, 2160, true},
		{"clamped down", []WindowBuilderOption{WithSizeLimits(100, 100, 800, 600), WithSize(1920, 1080)}, 800, 600, 100, 800, 100, 600, true},
		{"swapped limits", []WindowBuilderOption{WithSizeLimits(800, 600, 100, 100)}, 800, 600, 100, 800, 100, 600, true},
		{"fixed", []WindowBuilderOption{WithResizable(false)}, 1280, 720, 320, 3840, 240, 2160, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWindowConfig(tt.options...)
			if w.width != tt.wantW || w.height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", w.width, w.height, tt.wantW, tt.wantH)
			}
			if w.minWidth != tt.wantMinW || w.maxWidth != tt.wantMaxW || w.minHeight != tt.wantMinH || w.maxHeight != tt.wantMaxH {
				t.Errorf("limits = %d..%d x %d..%d", w.minWidth, w.maxWidth, w.minHeight, w.maxHeight)
			}
			if w.resizable != tt.wantResizable {
				t.Errorf("resizable = %v, want %v", w.resizable, tt.wantResizable)
			}
			if w.title != "oxy-fluid" {
				t.Errorf("title = %q", w.title)
			}
		})
	}
}
