package overlay

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrFontNotFound is returned by a FontResolver that has no font registered under the requested name.
var ErrFontNotFound = errors.New("overlay: font not found")

// Font is a parsed font that produces sized faces for layout and rasterization.
type Font struct {
	name   string
	source *text.FontSource
	closed atomic.Bool
}

// Facer produces a face at a given pixel size. Font implements it.
type Facer interface {
	// Face returns a face of the font at the given size.
	//
	// Parameters:
	//   - size: the face size in pixels
	//
	// Returns:
	//   - text.Face: the sized face
	Face(size float64) text.Face
}

var _ Facer = &Font{}

// NewFont parses TrueType or OpenType data into a Font.
//
// Parameters:
//   - name: a display name for the font
//   - data: the raw font file bytes
//
// Returns:
//   - *Font: the parsed font
//   - error: an error if the data could not be parsed
func NewFont(name string, data []byte) (*Font, error) {
	src, err := text.NewFontSource(data)
	if err != nil {
		return nil, fmt.Errorf("overlay: parse font %q: %w", name, err)
	}
	return &Font{name: name, source: src}, nil
}

// Name returns the font's display name.
func (f *Font) Name() string {
	return f.name
}

func (f *Font) Face(size float64) text.Face {
	return f.source.Face(size)
}

// Close releases the parsed font data. Later calls are no-ops.
func (f *Font) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	return f.source.Close()
}

// FontResolver maps a font name to a parsed Font. Resolution may block and is run off the frame thread.
type FontResolver interface {
	// Resolve loads the font registered under name.
	//
	// Parameters:
	//   - name: the font name
	//
	// Returns:
	//   - *Font: the resolved font
	//   - error: ErrFontNotFound if no font matches, or a parse error
	Resolve(name string) (*Font, error)
}

// BuiltinResolver resolves the Go font family bundled with golang.org/x/image.
// Names are matched case-insensitively; "" resolves to the regular face.
type BuiltinResolver struct{}

var _ FontResolver = BuiltinResolver{}

var builtinFonts = map[string][]byte{
	"":           goregular.TTF,
	"go":         goregular.TTF,
	"go regular": goregular.TTF,
	"go bold":    gobold.TTF,
	"go mono":    gomono.TTF,
}

func (BuiltinResolver) Resolve(name string) (*Font, error) {
	data, ok := builtinFonts[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFontNotFound, name)
	}
	return NewFont(name, data)
}
