package background

import (
	"errors"
	"sort"
	"time"

	"github.com/Carmen-Shannon/oxy-fluid/engine/fluid"
)

type fakeTarget struct {
	label    string
	w, h     uint32
	released int
}

func (f *fakeTarget) Width() uint32  { return f.w }
func (f *fakeTarget) Height() uint32 { return f.h }
func (f *fakeTarget) Release()       { f.released++ }
func (f *fakeTarget) Resize(w, h uint32) error {
	if w == 0 || h == 0 {
		return fluid.ErrInvalidSize
	}
	f.w, f.h = w, h
	return nil
}

type simulationCall struct {
	current, previous fluid.Target
	uniforms          fluid.GPUFluidUniforms
}

type upload struct {
	bytes int
	w, h  uint32
}

type fakeDevice struct {
	failBegin bool

	targets  []*fakeTarget
	resizes  [][2]int
	uploads  []upload
	begins   int
	sims     []simulationCall
	displays []fluid.GPUDisplayUniforms
	ends     int
	clears   [][4]float32
	released int
}

func (d *fakeDevice) Resize(w, h int) error {
	d.resizes = append(d.resizes, [2]int{w, h})
	return nil
}

func (d *fakeDevice) NewStateTarget(label string, w, h uint32) (fluid.Target, error) {
	t := &fakeTarget{label: label, w: w, h: h}
	d.targets = append(d.targets, t)
	return t, nil
}

func (d *fakeDevice) UploadText(pixels []byte, w, h uint32) error {
	d.uploads = append(d.uploads, upload{bytes: len(pixels), w: w, h: h})
	return nil
}

func (d *fakeDevice) BeginFrame() error {
	d.begins++
	if d.failBegin {
		return errors.New("surface lost")
	}
	return nil
}

func (d *fakeDevice) SimulationPass(current, previous fluid.Target, u fluid.GPUFluidUniforms) error {
	d.sims = append(d.sims, simulationCall{current: current, previous: previous, uniforms: u})
	return nil
}

func (d *fakeDevice) DisplayPass(_ fluid.Target, u fluid.GPUDisplayUniforms) error {
	d.displays = append(d.displays, u)
	return nil
}

func (d *fakeDevice) EndFrame() error {
	d.ends++
	return nil
}

func (d *fakeDevice) ClearSurface(c [4]float32) error {
	d.clears = append(d.clears, c)
	return nil
}

func (d *fakeDevice) Release() { d.released++ }

type fakeHost struct {
	w, h int

	onMove   func(x, y float64)
	onLeave  func()
	onResize func(w, h int)

	pointerCancels int
	resizeCancels  int
}

func (h *fakeHost) Width() int  { return h.w }
func (h *fakeHost) Height() int { return h.h }

func (h *fakeHost) SubscribePointer(onMove func(x, y float64), onLeave func()) func() {
	h.onMove, h.onLeave = onMove, onLeave
	return func() {
		h.pointerCancels++
		h.onMove, h.onLeave = nil, nil
	}
}

func (h *fakeHost) SubscribeResize(fn func(w, h int)) func() {
	h.onResize = fn
	return func() {
		h.resizeCancels++
		h.onResize = nil
	}
}

func (h *fakeHost) move(x, y float64) {
	if h.onMove != nil {
		h.onMove(x, y)
	}
}

func (h *fakeHost) leave() {
	if h.onLeave != nil {
		h.onLeave()
	}
}

func (h *fakeHost) resize(w, hh int) {
	h.w, h.h = w, hh
	if h.onResize != nil {
		h.onResize(w, hh)
	}
}

type fakeScheduler struct {
	hooks   map[int]func(float32)
	removed []int
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{hooks: make(map[int]func(float32))}
}

func (s *fakeScheduler) AddFrameHook(key int, fn func(float32)) { s.hooks[key] = fn }

func (s *fakeScheduler) RemoveFrameHook(key int) {
	delete(s.hooks, key)
	s.removed = append(s.removed, key)
}

func (s *fakeScheduler) runFrame(dt float32) {
	keys := make([]int, 0, len(s.hooks))
	for k := range s.hooks {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		if fn, ok := s.hooks[k]; ok {
			fn(dt)
		}
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }
