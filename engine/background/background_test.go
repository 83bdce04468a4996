package background

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-fluid/engine/fluid"
)

type fixture struct {
	bg     *background
	device *fakeDevice
	host   *fakeHost
	sched  *fakeScheduler
	clock  *fakeClock
}

func newFixture(t *testing.T, w, h int, options ...BackgroundBuilderOption) *fixture {
	t.Helper()
	f := &fixture{
		device: &fakeDevice{},
		host:   &fakeHost{w: w, h: h},
		sched:  newFakeScheduler(),
		clock:  &fakeClock{t: time.Unix(1000, 0)},
	}
	options = append([]BackgroundBuilderOption{
		WithDeviceFactory(func(Host) (Device, error) { return f.device, nil }),
		WithClock(f.clock.now),
	}, options...)
	f.bg = NewBackground(f.host, f.sched, options...).(*background)
	return f
}

func (f *fixture) mount(t *testing.T) {
	t.Helper()
	if err := f.bg.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
}

// frame advances the clock by one 60 Hz frame and runs the scheduler.
func (f *fixture) frame() {
	f.clock.advance(16 * time.Millisecond)
	f.sched.runFrame(1.0 / 60)
}

func TestMountWithoutViewport(t *testing.T) {
	tests := []struct {
		name string
		host Host
	}{
		{"nil host", nil},
		{"zero width", &fakeHost{w: 0, h: 600}},
		{"zero height", &fakeHost{w: 800, h: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			bg := NewBackground(tt.host, newFakeScheduler(), WithDeviceFactory(func(Host) (Device, error) {
				called = true
				return &fakeDevice{}, nil
			}))
			if err := bg.Mount(); err != nil {
				t.Fatalf("Mount = %v, want nil", err)
			}
			if bg.Mounted() || called {
				t.Error("Mount without a viewport should not create anything")
			}
		})
	}
}

func TestMountTwice(t *testing.T) {
	f := newFixture(t, 800, 600)
	f.mount(t)
	if err := f.bg.Mount(); !errors.Is(err, ErrAlreadyMounted) {
		t.Errorf("second Mount = %v, want ErrAlreadyMounted", err)
	}
}

func TestMountDeviceError(t *testing.T) {
	gpuErr := errors.New("no adapter")
	bg := NewBackground(&fakeHost{w: 800, h: 600}, newFakeScheduler(),
		WithDeviceFactory(func(Host) (Device, error) { return nil, gpuErr }))
	err := bg.Mount()
	if !errors.Is(err, gpuErr) {
		t.Fatalf("Mount = %v, want wrapped %v", err, gpuErr)
	}
	if bg.Mounted() {
		t.Error("failed Mount should leave the background unmounted")
	}
}

func TestMountAllocatesStateBuffers(t *testing.T) {
	f := newFixture(t, 1280, 720)
	f.mount(t)
	if len(f.device.targets) != 2 {
		t.Fatalf("allocated %d state targets, want 2", len(f.device.targets))
	}
	for _, tg := range f.device.targets {
		if tg.w != 1280 || tg.h != 720 {
			t.Errorf("%s is %dx%d, want 1280x720", tg.label, tg.w, tg.h)
		}
	}
	if _, ok := f.sched.hooks[DefaultFrameKey]; !ok {
		t.Error("Mount should register the frame hook")
	}
}

func TestStepOrderAndPingPong(t *testing.T) {
	f := newFixture(t, 640, 480)
	f.mount(t)
	for range 3 {
		f.frame()
	}

	if f.device.begins != 3 || f.device.ends != 3 || len(f.device.sims) != 3 || len(f.device.displays) != 3 {
		t.Fatalf("begins=%d ends=%d sims=%d displays=%d, want 3 each",
			f.device.begins, f.device.ends, len(f.device.sims), len(f.device.displays))
	}
	for i := 1; i < len(f.device.sims); i++ {
		prev, cur := f.device.sims[i-1], f.device.sims[i]
		if cur.previous != prev.current {
			t.Errorf("frame %d reads %v, want last frame's output %v", i, cur.previous, prev.current)
		}
		if cur.current == cur.previous {
			t.Errorf("frame %d reads and writes the same target", i)
		}
	}
	for i, s := range f.device.sims {
		if s.uniforms.Frame != uint32(i) {
			t.Errorf("sim %d frame index = %d, want %d", i, s.uniforms.Frame, i)
		}
	}
	if f.bg.Frame() != 3 {
		t.Errorf("Frame = %d, want 3", f.bg.Frame())
	}
}

func TestTimeAccumulator(t *testing.T) {
	tests := []struct {
		name  string
		opts  []BackgroundBuilderOption
		steps []float32
		want  float32
	}{
		{"default scale", nil, []float32{1, 1}, 1},
		{"custom scale", []BackgroundBuilderOption{WithTimeScale(2)}, []float32{0.25, 0.25}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 100, 100, tt.opts...)
			f.mount(t)
			for _, dt := range tt.steps {
				f.bg.Step(dt)
			}
			if f.bg.Time() != tt.want {
				t.Errorf("Time = %v, want %v", f.bg.Time(), tt.want)
			}
			last := f.device.sims[len(f.device.sims)-1].uniforms
			if last.Time != tt.want {
				t.Errorf("uniform time = %v, want %v", last.Time, tt.want)
			}
		})
	}
}

func TestConfigReadEveryFrame(t *testing.T) {
	f := newFixture(t, 100, 100)
	f.mount(t)
	f.frame()
	f.bg.Config().Update(func(c *fluid.SimulationConfig) { c.BrushSize = 80 })
	f.frame()

	if got := f.device.sims[0].uniforms.BrushSize; got != fluid.DefaultSimulationConfig().BrushSize {
		t.Errorf("first frame brush = %v, want default", got)
	}
	if got := f.device.sims[1].uniforms.BrushSize; got != 80 {
		t.Errorf("second frame brush = %v, want 80", got)
	}
}

func TestNoTextScenario(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	f.mount(t)
	f.frame()

	if len(f.device.uploads) != 0 {
		t.Errorf("text texture written %d times, want 0", len(f.device.uploads))
	}
	if len(f.device.displays) != 1 || f.device.displays[0].TextEnabled != 0 {
		t.Errorf("display uniforms = %+v, want TextEnabled 0", f.device.displays)
	}
}

func TestPointerSegmentScenario(t *testing.T) {
	f := newFixture(t, 800, 600)
	f.mount(t)

	f.host.move(100, 100)
	f.frame()
	f.host.move(200, 100)
	f.frame()

	got := f.device.sims[1].uniforms.Mouse
	if want := [4]float32{200, 100, 100, 100}; got != want {
		t.Errorf("forcing = %v, want current (200,100) previous (100,100)", got)
	}
	if f.device.sims[1].uniforms.PointerActive != 1 {
		t.Error("forcing should be active")
	}
}

func TestPointerStopsIntoDab(t *testing.T) {
	f := newFixture(t, 800, 600)
	f.mount(t)

	f.host.move(100, 100)
	f.frame()
	f.host.move(200, 100)
	f.frame()
	f.frame()
	f.frame()

	for i, want := range [][4]float32{
		{100, 100, 100, 100},
		{200, 100, 100, 100},
		{200, 100, 200, 100},
		{200, 100, 200, 100},
	} {
		u := f.device.sims[i].uniforms
		if u.Mouse != want || u.PointerActive != 1 {
			t.Errorf("frame %d: forcing = %v active=%v, want %v active", i, u.Mouse, u.PointerActive, want)
		}
	}
}

func TestPointerIdleAndLeave(t *testing.T) {
	tests := []struct {
		name  string
		after func(f *fixture)
	}{
		{"idle past timeout", func(f *fixture) { f.clock.advance(150 * time.Millisecond) }},
		{"pointer leave", func(f *fixture) { f.host.leave() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 800, 600)
			f.mount(t)
			f.host.move(640, 360)
			f.host.move(700, 300)
			tt.after(f)
			f.frame()

			u := f.device.sims[0].uniforms
			if u.Mouse != [4]float32{} || u.PointerActive != 0 {
				t.Errorf("forcing = %v active=%v, want neutral", u.Mouse, u.PointerActive)
			}
		})
	}
}

func TestResizeProperty(t *testing.T) {
	sizes := [][2]int{{800, 600}, {1920, 1080}, {333, 777}, {1, 1}}
	for _, size := range sizes {
		f := newFixture(t, 1024, 768)
		f.mount(t)
		f.frame()
		f.frame()

		f.host.resize(size[0], size[1])

		w, h := uint32(size[0]), uint32(size[1])
		for _, tg := range f.device.targets {
			if tg.w != w || tg.h != h {
				t.Errorf("%v: %s is %dx%d", size, tg.label, tg.w, tg.h)
			}
		}
		if rw, rh := f.bg.rasterizer.Size(); rw != size[0] || rh != size[1] {
			t.Errorf("%v: text surface is %dx%d", size, rw, rh)
		}
		if last := f.device.resizes[len(f.device.resizes)-1]; last != size {
			t.Errorf("%v: surface resized to %v", size, last)
		}
		if f.bg.Frame() != 0 {
			t.Errorf("%v: Frame = %d after resize, want 0", size, f.bg.Frame())
		}

		f.frame()
		if u := f.device.sims[len(f.device.sims)-1].uniforms; u.Frame != 0 || u.Resolution != [2]float32{float32(w), float32(h)} {
			t.Errorf("%v: first frame after resize has frame %d resolution %v", size, u.Frame, u.Resolution)
		}
	}
}

func TestResizeIgnoresEmptyViewport(t *testing.T) {
	f := newFixture(t, 800, 600)
	f.mount(t)
	f.frame()
	f.host.resize(0, 0)

	if len(f.device.resizes) != 0 {
		t.Errorf("surface resized %d times, want 0", len(f.device.resizes))
	}
	if f.bg.Frame() != 1 {
		t.Errorf("Frame = %d, want 1", f.bg.Frame())
	}
}

func TestUnmountScenario(t *testing.T) {
	f := newFixture(t, 800, 600)
	calls := 0
	f.mount(t)
	step := f.sched.hooks[DefaultFrameKey]
	f.sched.hooks[DefaultFrameKey] = func(dt float32) { calls++; step(dt) }

	f.frame()
	f.frame()
	f.bg.Unmount()
	for range 5 {
		f.frame()
	}
	f.bg.Step(1.0 / 60)

	if calls != 2 {
		t.Errorf("frame hook ran %d times, want 2", calls)
	}
	if len(f.device.sims) != 2 {
		t.Errorf("simulation ran %d times, want 2", len(f.device.sims))
	}
	if f.host.pointerCancels != 1 || f.host.resizeCancels != 1 {
		t.Errorf("cancels pointer=%d resize=%d, want 1 each", f.host.pointerCancels, f.host.resizeCancels)
	}
	if f.device.released != 1 {
		t.Errorf("device released %d times, want 1", f.device.released)
	}
	for _, tg := range f.device.targets {
		if tg.released != 1 {
			t.Errorf("%s released %d times, want 1", tg.label, tg.released)
		}
	}

	f.bg.Unmount()
	if f.device.released != 1 {
		t.Error("second Unmount should be a no-op")
	}
	f.host.move(10, 10)
	f.host.resize(100, 100)
}

func TestRemountAfterUnmount(t *testing.T) {
	f := newFixture(t, 800, 600)
	f.mount(t)
	f.frame()
	f.bg.Unmount()

	f.device = &fakeDevice{}
	f.bg.deviceFactory = func(Host) (Device, error) { return f.device, nil }
	f.mount(t)
	f.frame()

	if f.bg.Frame() != 1 || len(f.device.sims) != 1 {
		t.Errorf("remounted frame=%d sims=%d, want 1 and 1", f.bg.Frame(), len(f.device.sims))
	}
}

func TestHaltAfterConsecutiveFailures(t *testing.T) {
	f := newFixture(t, 800, 600, WithConfig(fluid.NewSimulationConfig(fluid.WithColors("#ff0000", "#00ff00", "#0000ff", "#ffffff"))))
	f.mount(t)
	f.device.failBegin = true

	for range MaxFrameFailures - 1 {
		f.frame()
	}
	if f.bg.Halted() {
		t.Fatal("halted before MaxFrameFailures")
	}
	f.frame()
	if !f.bg.Halted() {
		t.Fatal("not halted after MaxFrameFailures")
	}
	if !slices.Contains(f.sched.removed, DefaultFrameKey) {
		t.Error("halt should remove the frame hook")
	}
	if len(f.device.clears) != 1 || f.device.clears[0] != [4]float32{1, 0, 0, 1} {
		t.Errorf("fallback clears = %v, want one clear with color1", f.device.clears)
	}

	begins := f.device.begins
	f.bg.Step(1.0 / 60)
	if f.device.begins != begins {
		t.Error("halted background should not begin frames")
	}
	f.bg.Unmount()
	if f.device.released != 1 {
		t.Error("Unmount after halt should still release the device")
	}
}

func TestFailuresResetOnSuccess(t *testing.T) {
	f := newFixture(t, 800, 600)
	f.mount(t)

	f.device.failBegin = true
	for range MaxFrameFailures - 1 {
		f.frame()
	}
	f.device.failBegin = false
	f.frame()
	f.device.failBegin = true
	for range MaxFrameFailures - 1 {
		f.frame()
	}
	if f.bg.Halted() {
		t.Error("failures separated by a good frame should not halt")
	}
	if f.bg.Frame() != 1 {
		t.Errorf("Frame = %d, want 1", f.bg.Frame())
	}
}

func TestDefaultLoggerSilent(t *testing.T) {
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelWarn, slog.LevelError} {
		if Logger().Enabled(context.Background(), level) {
			t.Errorf("default logger enabled at %v", level)
		}
	}
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	SetLogger(slog.Default())
	if Logger() != slog.Default() {
		t.Error("SetLogger did not store the logger")
	}
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should restore the silent logger")
	}
}
