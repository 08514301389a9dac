package renderer

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/ivlev/overlaykit/internal/geometry"
	"github.com/ivlev/overlaykit/internal/overlay"
)

type faceKey struct {
	variant string
	size    int // 1/64 px
}

// Faces caches font faces for the preview rasterizer. Only the Go fonts are
// bundled; any family containing "mono" maps to Go Mono, everything else to
// Go Regular/Bold/Italic.
type Faces struct {
	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

// NewFaces returns an empty face cache.
func NewFaces() *Faces {
	return &Faces{
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

var fontData = map[string][]byte{
	"regular":    goregular.TTF,
	"bold":       gobold.TTF,
	"italic":     goitalic.TTF,
	"bolditalic": gobolditalic.TTF,
	"mono":       gomono.TTF,
}

func variantOf(s overlay.Style) string {
	if strings.Contains(strings.ToLower(s.FontFamily), "mono") {
		return "mono"
	}
	bold := s.FontWeight == "bold" || s.FontWeight == "bolder" || s.FontWeight >= "600" && s.FontWeight <= "900"
	italic := s.FontStyle == "italic" || s.FontStyle == "oblique"
	switch {
	case bold && italic:
		return "bolditalic"
	case bold:
		return "bold"
	case italic:
		return "italic"
	default:
		return "regular"
	}
}

// Face returns a face for the style at the given pixel size.
func (f *Faces) Face(s overlay.Style, px float64) (font.Face, error) {
	if px <= 0 || math.IsNaN(px) {
		px = overlay.DefaultStyle().FontSize
	}
	key := faceKey{variant: variantOf(s), size: int(math.Round(px * 64))}

	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[key]; ok {
		return face, nil
	}
	fnt, ok := f.fonts[key.variant]
	if !ok {
		var err error
		fnt, err = opentype.Parse(fontData[key.variant])
		if err != nil {
			return nil, fmt.Errorf("parse %s font: %w", key.variant, err)
		}
		f.fonts[key.variant] = fnt
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(key.size) / 64,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new %s face: %w", key.variant, err)
	}
	f.faces[key] = face
	return face, nil
}

// Close releases every cached face.
func (f *Faces) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, face := range f.faces {
		face.Close()
		delete(f.faces, k)
	}
	return nil
}

// lineHeight is the distance between baselines.
func lineHeight(face font.Face) float64 {
	m := face.Metrics()
	return float64(m.Height) / 64
}

// Measure returns the unscaled size of text set in face, one line per "\n".
// padding is added on every side.
func Measure(face font.Face, text string, padding float64) geometry.Size {
	lines := strings.Split(text, "\n")
	w := 0.0
	for _, l := range lines {
		if lw := float64(font.MeasureString(face, l)) / 64; lw > w {
			w = lw
		}
	}
	return geometry.Size{
		Width:  w + 2*padding,
		Height: float64(len(lines))*lineHeight(face) + 2*padding,
	}
}

// NaturalSize measures the node at its style's font size.
func (f *Faces) NaturalSize(n Node) (geometry.Size, error) {
	face, err := f.Face(n.Style, n.Style.FontSize)
	if err != nil {
		return geometry.Size{}, err
	}
	return Measure(face, n.VisibleText(), padding(n.Style)), nil
}

// VisualRect returns where the node is drawn on surface, which the drag
// gesture uses to compute its grab offset.
func (f *Faces) VisualRect(n Node, surface geometry.Rect) (geometry.Rect, error) {
	size, err := f.NaturalSize(n)
	if err != nil {
		return geometry.Rect{}, err
	}
	return n.Placement.ScreenRect(surface, size), nil
}

func padding(s overlay.Style) float64 {
	if s.Background == "" {
		return 0
	}
	return s.FontSize * 0.25
}
