package overlay

import (
	"fmt"
	"unicode"

	"github.com/Carmen-Shannon/oxy-fluid/common"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// Rasterizer draws a Layout onto an RGBA surface that is uploaded as the text texture.
type Rasterizer struct {
	ctx      *gg.Context
	face     text.Face
	faceFont Facer
	faceSize float64
}

// NewRasterizer creates a transparent width x height surface.
//
// Parameters:
//   - width, height: surface size in pixels (clamped to at least 1)
//
// Returns:
//   - *Rasterizer: the rasterizer
func NewRasterizer(width, height int) *Rasterizer {
	return &Rasterizer{ctx: gg.NewContext(max(width, 1), max(height, 1))}
}

// Resize reallocates the surface. Contents are discarded.
//
// Parameters:
//   - width, height: the new size in pixels
//
// Returns:
//   - error: an error if either dimension is not positive
func (r *Rasterizer) Resize(width, height int) error {
	if err := r.ctx.Resize(width, height); err != nil {
		return fmt.Errorf("overlay: resize text surface: %w", err)
	}
	return nil
}

// Size returns the surface dimensions.
func (r *Rasterizer) Size() (int, int) {
	return r.ctx.Width(), r.ctx.Height()
}

// Render clears the surface and draws every visible record in white at its opacity.
//
// Parameters:
//   - layout: the laid-out records
//   - font: the font the layout was built with
func (r *Rasterizer) Render(layout *Layout, font Facer) {
	r.ctx.Clear()
	if layout == nil || font == nil || layout.FontSize() <= 0 {
		return
	}
	if r.face == nil || r.faceFont != font || r.faceSize != layout.FontSize() {
		r.face = font.Face(layout.FontSize())
		r.faceFont = font
		r.faceSize = layout.FontSize()
	}
	r.ctx.SetFont(r.face)
	for _, rec := range layout.Records() {
		if rec.Opacity <= 0 || unicode.IsSpace(rec.Glyph) {
			continue
		}
		r.ctx.SetRGBA(1, 1, 1, common.Clamp(rec.Opacity, 0, 1))
		r.ctx.DrawString(string(rec.Glyph), rec.X, rec.Y+rec.OffsetY)
	}
}

// Pixels returns the surface as tightly packed premultiplied RGBA8 rows. The slice aliases the surface.
func (r *Rasterizer) Pixels() []byte {
	return r.ctx.ResizeTarget().Data()
}

// Close releases the drawing context.
func (r *Rasterizer) Close() error {
	return r.ctx.Close()
}
