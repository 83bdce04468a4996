package overlay

import (
	"unicode/utf8"
)

// CharRecord is one laid-out glyph. X is the left edge and Y the baseline, both in surface pixels.
// Opacity and OffsetY are animated; the glyph is drawn at (X, Y+OffsetY).
type CharRecord struct {
	Glyph   rune
	X, Y    float64
	Opacity float64
	OffsetY float64
}

// layoutMetrics holds the sizing rules applied by Build.
type layoutMetrics struct {
	fontScale     float64
	maxFontSize   float64
	letterSpacing float64
	lineHeight    float64
	bottomOffset  float64
	riseDistance  float64
}

// Layout positions the characters of an ordered list of lines across a viewport.
// Lines are centred horizontally and stacked so the last baseline sits a fixed distance above the bottom edge.
type Layout struct {
	metrics  layoutMetrics
	records  []CharRecord
	fontSize float64
	width    int
	height   int
}

// LayoutBuilderOption is a functional option for configuring a Layout.
type LayoutBuilderOption func(l *Layout)

// NewLayout creates an empty Layout with the default metrics and applies the options.
//
// Parameters:
//   - options: functional options to apply
//
// Returns:
//   - *Layout: the layout
func NewLayout(options ...LayoutBuilderOption) *Layout {
	l := &Layout{
		metrics: layoutMetrics{
			fontScale:     0.11,
			maxFontSize:   200,
			letterSpacing: -0.04,
			lineHeight:    0.9,
			bottomOffset:  120,
			riseDistance:  40,
		},
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// WithFontScale sets the font size as a fraction of the viewport width and its upper bound.
//
// Parameters:
//   - scale: font size per pixel of viewport width
//   - maxSize: largest font size in pixels
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithFontScale(scale, maxSize float64) LayoutBuilderOption {
	return func(l *Layout) {
		l.metrics.fontScale = scale
		l.metrics.maxFontSize = maxSize
	}
}

// WithLetterSpacing sets the extra advance between characters, in ems.
//
// Parameters:
//   - em: spacing as a fraction of the font size (negative tightens)
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithLetterSpacing(em float64) LayoutBuilderOption {
	return func(l *Layout) {
		l.metrics.letterSpacing = em
	}
}

// WithLineHeight sets the baseline-to-baseline distance, in ems.
//
// Parameters:
//   - em: line height as a fraction of the font size
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithLineHeight(em float64) LayoutBuilderOption {
	return func(l *Layout) {
		l.metrics.lineHeight = em
	}
}

// WithBottomOffset sets the distance from the viewport bottom to the last baseline.
//
// Parameters:
//   - px: offset in pixels
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithBottomOffset(px float64) LayoutBuilderOption {
	return func(l *Layout) {
		l.metrics.bottomOffset = px
	}
}

// WithRiseDistance sets how far below its resting position each glyph starts before the reveal.
//
// Parameters:
//   - px: offset in pixels
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithRiseDistance(px float64) LayoutBuilderOption {
	return func(l *Layout) {
		l.metrics.riseDistance = px
	}
}

// Build lays out lines for a width x height viewport, replacing any previous records.
// Every record starts hidden at the rise offset. The result depends only on the inputs,
// so rebuilding with the same arguments yields the same records.
//
// Parameters:
//   - lines: ordered text lines
//   - font: the font used for measurement
//   - width, height: viewport size in pixels
func (l *Layout) Build(lines []string, font Facer, width, height int) {
	l.width, l.height = width, height
	l.fontSize = min(float64(width)*l.metrics.fontScale, l.metrics.maxFontSize)

	count := 0
	for _, line := range lines {
		count += utf8.RuneCountInString(line)
	}
	l.records = make([]CharRecord, 0, count)
	if count == 0 || l.fontSize <= 0 {
		return
	}

	face := font.Face(l.fontSize)
	spacing := l.metrics.letterSpacing * l.fontSize
	lead := l.metrics.lineHeight * l.fontSize
	lastBaseline := float64(height) - l.metrics.bottomOffset

	for i, line := range lines {
		n := utf8.RuneCountInString(line)
		if n == 0 {
			continue
		}
		advances := make([]float64, 0, n)
		lineWidth := 0.0
		for _, r := range line {
			a := face.Advance(string(r))
			advances = append(advances, a)
			lineWidth += a
		}
		lineWidth += spacing * float64(n-1)

		x := (float64(width) - lineWidth) / 2
		y := lastBaseline - float64(len(lines)-1-i)*lead
		j := 0
		for _, r := range line {
			l.records = append(l.records, CharRecord{
				Glyph:   r,
				X:       x,
				Y:       y,
				OffsetY: l.metrics.riseDistance,
			})
			x += advances[j] + spacing
			j++
		}
	}
}

// SnapRevealed moves every record to its fully revealed state.
//
// Parameters:
//   - opacity: the resting opacity
func (l *Layout) SnapRevealed(opacity float64) {
	for i := range l.records {
		l.records[i].Opacity = opacity
		l.records[i].OffsetY = 0
	}
}

// Records returns the laid-out records. The slice is shared with the layout so the animator can mutate it.
func (l *Layout) Records() []CharRecord {
	return l.records
}

// FontSize returns the font size chosen by the last Build.
func (l *Layout) FontSize() float64 {
	return l.fontSize
}

// Size returns the viewport size used by the last Build.
func (l *Layout) Size() (int, int) {
	return l.width, l.height
}

// RiseDistance returns the initial downward offset of hidden glyphs.
func (l *Layout) RiseDistance() float64 {
	return l.metrics.riseDistance
}
