package background

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-fluid/engine/overlay"
)

// stepUntil runs frames until cond holds, giving the font worker time to finish.
func stepUntil(t *testing.T, f *fixture, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		f.frame()
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestTextOverlayUploads(t *testing.T) {
	f := newFixture(t, 1920, 1080, WithLines("CREATIVE DEVELOPER"))
	f.mount(t)
	stepUntil(t, f, func() bool { return len(f.device.uploads) > 0 })

	up := f.device.uploads[0]
	if up.w != 1920 || up.h != 1080 || up.bytes != 1920*1080*4 {
		t.Errorf("upload = %+v, want 1920x1080 RGBA", up)
	}
	if last := f.device.displays[len(f.device.displays)-1]; last.TextEnabled != 1 {
		t.Error("display should enable text once the texture is uploaded")
	}
	if n := len(f.bg.layout.Records()); n != 18 {
		t.Errorf("layout has %d records, want 18", n)
	}
}

func TestTextAnimationStopsUploading(t *testing.T) {
	f := newFixture(t, 800, 600,
		WithLines("HI"),
		WithAnimatorOptions(overlay.WithStagger(0), overlay.WithSpring(30, 1)),
	)
	f.mount(t)
	stepUntil(t, f, func() bool { return f.bg.animator != nil && f.bg.animator.Done() })

	uploads := len(f.device.uploads)
	for range 10 {
		f.frame()
	}
	if len(f.device.uploads) != uploads {
		t.Errorf("text re-uploaded %d times after the reveal finished", len(f.device.uploads)-uploads)
	}
}

func TestResizeSnapsTextRevealed(t *testing.T) {
	f := newFixture(t, 1920, 1080, WithLines("CREATIVE", "DEVELOPER"))
	f.mount(t)
	stepUntil(t, f, func() bool { return f.bg.layout != nil })

	f.host.resize(1280, 720)
	first := append([]overlay.CharRecord(nil), f.bg.layout.Records()...)
	for _, r := range first {
		if r.Opacity != 0.15 || r.OffsetY != 0 {
			t.Fatalf("record %q = opacity %v offset %v, want revealed", r.Glyph, r.Opacity, r.OffsetY)
		}
	}
	if f.bg.animator != nil {
		t.Error("resize should not re-animate")
	}

	f.host.resize(1280, 720)
	second := f.bg.layout.Records()
	if len(first) != len(second) {
		t.Fatalf("relayout changed record count %d -> %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("record %d changed on identical relayout: %+v -> %+v", i, first[i], second[i])
		}
	}

	f.frame()
	if last := f.device.uploads[len(f.device.uploads)-1]; last.w != 1280 || last.h != 720 {
		t.Errorf("upload after resize is %dx%d, want 1280x720", last.w, last.h)
	}
}

func TestSetLines(t *testing.T) {
	f := newFixture(t, 800, 600, WithLines("A"))
	f.mount(t)
	stepUntil(t, f, func() bool { return len(f.device.uploads) > 0 })

	f.bg.SetLines(nil)
	f.frame()
	if last := f.device.displays[len(f.device.displays)-1]; last.TextEnabled != 0 {
		t.Error("clearing lines should disable the text layer")
	}

	f.bg.SetLines([]string{"AB", "C"})
	stepUntil(t, f, func() bool { return f.bg.layout != nil && f.bg.textEnabled() })
	if n := len(f.bg.layout.Records()); n != 3 {
		t.Errorf("layout has %d records, want 3", n)
	}
}

func TestFontFailureLeavesOverlayInert(t *testing.T) {
	f := newFixture(t, 800, 600, WithLines("HELLO"), WithFont("no such font"))
	f.mount(t)
	stepUntil(t, f, func() bool { return f.bg.fontFailLogged })

	for range 3 {
		f.frame()
	}
	if len(f.device.uploads) != 0 {
		t.Errorf("text uploaded %d times with no font", len(f.device.uploads))
	}
	if last := f.device.displays[len(f.device.displays)-1]; last.TextEnabled != 0 {
		t.Error("text layer should stay disabled")
	}
}
