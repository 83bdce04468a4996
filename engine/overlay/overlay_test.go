package overlay

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

func regularFont(t *testing.T) *Font {
	t.Helper()
	f, err := BuiltinResolver{}.Resolve("go regular")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestLayoutScenarioCreativeDeveloper(t *testing.T) {
	font := regularFont(t)
	l := NewLayout()
	l.Build([]string{"CREATIVE DEVELOPER"}, font, 1920, 1080)

	recs := l.Records()
	if len(recs) != 18 {
		t.Fatalf("records = %d, want 18", len(recs))
	}
	if l.FontSize() != 200 {
		t.Errorf("FontSize = %v, want 200 (capped)", l.FontSize())
	}
	for i, want := range "CREATIVE DEVELOPER" {
		if recs[i].Glyph != want {
			t.Fatalf("record %d glyph = %q, want %q", i, recs[i].Glyph, want)
		}
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].X <= recs[i-1].X {
			t.Errorf("X not strictly increasing at %d: %v <= %v", i, recs[i].X, recs[i-1].X)
		}
		if recs[i].Y != recs[0].Y {
			t.Errorf("record %d Y = %v, want %v", i, recs[i].Y, recs[0].Y)
		}
	}
	if recs[0].Y != 960 {
		t.Errorf("baseline = %v, want 960", recs[0].Y)
	}
	for _, r := range recs {
		if r.Opacity != 0 || r.OffsetY != l.RiseDistance() {
			t.Fatalf("initial record not hidden: %+v", r)
		}
	}
}

func TestLayoutCountAndOrder(t *testing.T) {
	font := regularFont(t)
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"empty", nil, ""},
		{"blank line", []string{""}, ""},
		{"two lines", []string{"AB", "CDE"}, "ABCDE"},
		{"multibyte", []string{"héllo"}, "héllo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLayout()
			l.Build(tt.lines, font, 800, 600)
			got := make([]rune, 0, len(l.Records()))
			for _, r := range l.Records() {
				got = append(got, r.Glyph)
			}
			if string(got) != tt.want {
				t.Errorf("glyphs = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestLayoutLinesStackAboveBottom(t *testing.T) {
	font := regularFont(t)
	l := NewLayout(WithBottomOffset(100), WithLineHeight(1))
	l.Build([]string{"TOP", "BOTTOM"}, font, 1000, 800)
	recs := l.Records()
	top, bottom := recs[0].Y, recs[len(recs)-1].Y
	if bottom != 700 {
		t.Errorf("last baseline = %v, want 700", bottom)
	}
	if top != bottom-l.FontSize() {
		t.Errorf("first baseline = %v, want %v", top, bottom-l.FontSize())
	}
}

func TestLayoutRelayoutIdempotent(t *testing.T) {
	font := regularFont(t)
	lines := []string{"HELLO", "WORLD"}
	l := NewLayout()
	l.Build(lines, font, 1280, 720)
	first := append([]CharRecord(nil), l.Records()...)
	l.Build(lines, font, 1280, 720)
	second := l.Records()
	if len(first) != len(second) {
		t.Fatalf("record count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("record %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestLayoutSnapRevealed(t *testing.T) {
	font := regularFont(t)
	l := NewLayout()
	l.Build([]string{"AB"}, font, 400, 300)
	l.SnapRevealed(0.15)
	for _, r := range l.Records() {
		if r.Opacity != 0.15 || r.OffsetY != 0 {
			t.Errorf("record not revealed: %+v", r)
		}
	}
}

func TestAnimatorRevealsInOrder(t *testing.T) {
	records := make([]CharRecord, 5)
	for i := range records {
		records[i].OffsetY = 40
	}
	a := NewAnimator(len(records))

	a.Advance(0.05, records)
	if records[0].Opacity <= 0 {
		t.Error("first record should have started")
	}
	if records[4].Opacity != 0 || records[4].OffsetY != 40 {
		t.Errorf("last record started early: %+v", records[4])
	}
	if a.Done() {
		t.Fatal("animator done too early")
	}

	for i := 0; i < 600 && !a.Done(); i++ {
		a.Advance(1.0/60, records)
	}
	if !a.Done() {
		t.Fatal("animator never settled")
	}
	for i, r := range records {
		if r.Opacity != a.TargetOpacity() || r.OffsetY != 0 {
			t.Errorf("record %d final = %+v", i, r)
		}
	}

	records[0].Opacity = 1
	a.Advance(1, records)
	if records[0].Opacity != 1 {
		t.Error("done animator mutated records")
	}
}

func TestAnimatorEmpty(t *testing.T) {
	if a := NewAnimator(0); !a.Done() {
		t.Error("animator with no records should be done")
	}
}

func TestRasterizerRender(t *testing.T) {
	font := regularFont(t)
	r := NewRasterizer(320, 200)
	t.Cleanup(func() { _ = r.Close() })

	l := NewLayout()
	l.Build([]string{"HI"}, font, 320, 200)
	r.Render(l, font)
	if hasInk(r.Pixels()) {
		t.Fatal("hidden records should not draw")
	}

	l.SnapRevealed(1)
	r.Render(l, font)
	if !hasInk(r.Pixels()) {
		t.Fatal("revealed records drew nothing")
	}

	if err := r.Resize(640, 400); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if w, h := r.Size(); w != 640 || h != 400 {
		t.Errorf("Size = %dx%d", w, h)
	}
	if len(r.Pixels()) != 640*400*4 {
		t.Errorf("pixel bytes = %d", len(r.Pixels()))
	}
	if err := r.Resize(0, 10); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestRasterizerPremultipliedAlpha(t *testing.T) {
	font := regularFont(t)
	r := NewRasterizer(400, 300)
	t.Cleanup(func() { _ = r.Close() })

	l := NewLayout()
	l.Build([]string{"H"}, font, 400, 300)
	l.SnapRevealed(0.15)
	r.Render(l, font)

	pix := r.Pixels()
	var maxAlpha byte
	for i := 0; i < len(pix); i += 4 {
		rgb, a := pix[i:i+3], pix[i+3]
		maxAlpha = max(maxAlpha, a)
		for _, c := range rgb {
			if d := int(c) - int(a); d < -1 || d > 1 {
				t.Fatalf("pixel %d = %v, want white premultiplied by alpha %d", i/4, pix[i:i+4], a)
			}
		}
	}
	// 0.15 * 255 rounds to 38.
	if maxAlpha == 0 || maxAlpha > 39 {
		t.Errorf("max alpha = %d, want glyph coverage capped near 38", maxAlpha)
	}
}

func hasInk(pix []byte) bool {
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0 {
			return true
		}
	}
	return false
}

func TestBuiltinResolver(t *testing.T) {
	for _, name := range []string{"", "Go Regular", "go bold", "GO MONO"} {
		f, err := BuiltinResolver{}.Resolve(name)
		if err != nil {
			t.Errorf("Resolve(%q): %v", name, err)
			continue
		}
		_ = f.Close()
	}
	if _, err := (BuiltinResolver{}).Resolve("Comic Sans"); !errors.Is(err, ErrFontNotFound) {
		t.Errorf("err = %v, want ErrFontNotFound", err)
	}
}

type gatedResolver struct {
	gate  chan struct{}
	mu    sync.Mutex
	hits  int
	fonts []*Font
}

func (g *gatedResolver) Resolve(name string) (*Font, error) {
	<-g.gate
	f, err := BuiltinResolver{}.Resolve(name)
	g.mu.Lock()
	g.hits++
	if f != nil {
		g.fonts = append(g.fonts, f)
	}
	g.mu.Unlock()
	return f, err
}

func (g *gatedResolver) resolved() []*Font {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.fonts)
}

func waitClosed(t *testing.T, f *Font) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !f.closed.Load() {
		if time.Now().After(deadline) {
			t.Fatalf("font %q was never closed", f.Name())
		}
		time.Sleep(time.Millisecond)
	}
}

func pollUntil(t *testing.T, l *FontLoader, want FontState) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if l.Poll() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("loader state = %v, want %v", l.Poll(), want)
}

func TestFontLoader(t *testing.T) {
	pool := worker.NewDynamicWorkerPool(1, 8, time.Second)
	res := &gatedResolver{gate: make(chan struct{})}
	l := NewFontLoader(pool, res)

	if l.Poll() != FontStateIdle {
		t.Fatal("new loader should be idle")
	}
	l.Load("go regular")
	if l.Poll() != FontStatePending {
		t.Fatal("loader should be pending before the resolver returns")
	}
	close(res.gate)
	pollUntil(t, l, FontStateReady)
	if l.Font() == nil {
		t.Fatal("ready loader has no font")
	}

	l.Load("no such font")
	pollUntil(t, l, FontStateFailed)
	if !errors.Is(l.Err(), ErrFontNotFound) {
		t.Errorf("Err = %v, want ErrFontNotFound", l.Err())
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestFontLoaderClosesAbandonedFonts(t *testing.T) {
	tests := []struct {
		name    string
		abandon func(l *FontLoader)
	}{
		{"superseded by Load", func(l *FontLoader) { l.Load("go bold") }},
		{"closed while pending", func(l *FontLoader) { _ = l.Close() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := worker.NewDynamicWorkerPool(2, 8, time.Second)
			res := &gatedResolver{gate: make(chan struct{})}
			l := NewFontLoader(pool, res)
			t.Cleanup(func() { _ = l.Close() })

			l.Load("go regular")
			tt.abandon(l)
			close(res.gate)

			deadline := time.Now().Add(5 * time.Second)
			var first *Font
			for first == nil {
				if time.Now().After(deadline) {
					t.Fatal("abandoned request never resolved")
				}
				time.Sleep(time.Millisecond)
				for _, f := range res.resolved() {
					if f.Name() == "go regular" {
						first = f
					}
				}
			}
			waitClosed(t, first)
			if l.Font() == first {
				t.Error("abandoned font was delivered")
			}
		})
	}
}
