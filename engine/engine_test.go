package engine

import (
	"reflect"
	"testing"
	"time"
)

func TestRunHooksAscendingOrder(t *testing.T) {
	var order []int
	e := NewEngine(WithFrameHook(10, func(float32) { order = append(order, 10) })).(*engine)
	e.AddFrameHook(-5, func(float32) { order = append(order, -5) })
	e.AddFrameHook(3, func(float32) { order = append(order, 3) })

	e.runHooks(0.016)

	if want := []int{-5, 3, 10}; !reflect.DeepEqual(order, want) {
		t.Errorf("hook order = %v, want %v", order, want)
	}
}

func TestRemoveFrameHookDuringFrame(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *engine, calls map[int]int)
		want  map[int]int
	}{
		{
			name: "earlier hook removes later",
			setup: func(e *engine, calls map[int]int) {
				e.AddFrameHook(0, func(float32) { calls[0]++; e.RemoveFrameHook(1) })
				e.AddFrameHook(1, func(float32) { calls[1]++ })
			},
			want: map[int]int{0: 2},
		},
		{
			name: "hook removes itself",
			setup: func(e *engine, calls map[int]int) {
				e.AddFrameHook(0, func(float32) { calls[0]++; e.RemoveFrameHook(0) })
				e.AddFrameHook(1, func(float32) { calls[1]++ })
			},
			want: map[int]int{0: 1, 1: 2},
		},
		{
			name: "hook added mid-frame waits a frame",
			setup: func(e *engine, calls map[int]int) {
				e.AddFrameHook(0, func(float32) {
					calls[0]++
					e.AddFrameHook(1, func(float32) { calls[1]++ })
				})
			},
			want: map[int]int{0: 2, 1: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine().(*engine)
			calls := map[int]int{}
			tt.setup(e, calls)
			e.runHooks(0.016)
			e.runHooks(0.016)
			if !reflect.DeepEqual(calls, tt.want) {
				t.Errorf("calls = %v, want %v", calls, tt.want)
			}
		})
	}
}

func TestAddFrameHookIgnoresNil(t *testing.T) {
	e := NewEngine().(*engine)
	e.AddFrameHook(0, nil)
	if len(e.hooks) != 0 {
		t.Error("nil hook should not be registered")
	}
}

func TestPointerSubscriptions(t *testing.T) {
	e := NewEngine().(*engine)

	var moves [][2]float64
	leaves := 0
	cancel := e.SubscribePointer(
		func(x, y float64) { moves = append(moves, [2]float64{x, y}) },
		func() { leaves++ },
	)
	other := 0
	e.SubscribePointer(func(x, y float64) { other++ }, nil)

	e.dispatchCursorMove(100, 100)
	e.dispatchCursorMove(200, 100)
	e.dispatchCursorLeave()
	cancel()
	cancel()
	e.dispatchCursorMove(300, 300)
	e.dispatchCursorLeave()

	if want := [][2]float64{{100, 100}, {200, 100}}; !reflect.DeepEqual(moves, want) {
		t.Errorf("moves = %v, want %v", moves, want)
	}
	if leaves != 1 {
		t.Errorf("leaves = %d, want 1", leaves)
	}
	if other != 3 {
		t.Errorf("second subscriber saw %d moves, want 3", other)
	}
}

func TestResizeSubscriptions(t *testing.T) {
	e := NewEngine().(*engine)
	var got [][2]int
	cancel := e.SubscribeResize(func(w, h int) { got = append(got, [2]int{w, h}) })

	e.dispatchResize(800, 600)
	cancel()
	e.dispatchResize(1024, 768)

	if want := [][2]int{{800, 600}}; !reflect.DeepEqual(got, want) {
		t.Errorf("resizes = %v, want %v", got, want)
	}
}

func TestNoWindowDefaults(t *testing.T) {
	e := NewEngine()
	if e.Width() != 0 || e.Height() != 0 {
		t.Errorf("size = %dx%d, want 0x0", e.Width(), e.Height())
	}
	if e.SurfaceDescriptor() != nil {
		t.Error("SurfaceDescriptor should be nil without a window")
	}
	e.Run()
	e.Quit()
	e.Quit()
}

func TestFrameDuration(t *testing.T) {
	tests := []struct {
		fps  float64
		want time.Duration
	}{
		{0, 0},
		{-30, 0},
		{60, time.Second / 60},
		{144, time.Duration(float64(time.Second) / 144)},
	}
	for _, tt := range tests {
		if got := frameDuration(tt.fps); got != tt.want {
			t.Errorf("frameDuration(%v) = %v, want %v", tt.fps, got, tt.want)
		}
	}
}
