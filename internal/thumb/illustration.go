package thumb

import (
	"bytes"
	"context"
	"hash/fnv"
	"image/color"
	"image/jpeg"
	"strconv"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Provider generates an illustration for a title. Implementations are
// treated as untrusted and unreliable; any failure degrades to "no
// thumbnail" at the resolver.
type Provider interface {
	Generate(ctx context.Context, title string) ([]byte, error)
}

// cardPalette holds gradient color pairs; a title hashes to one pair so
// the same title always renders the same card.
var cardPalette = [][2]string{
	{"#34d399", "#059669"},
	{"#818cf8", "#4f46e5"},
	{"#f472b6", "#db2777"},
	{"#fbbf24", "#d97706"},
	{"#38bdf8", "#0284c7"},
	{"#a78bfa", "#7c3aed"},
}

// CardProvider is the built-in Provider. It renders a deterministic
// square title card so every surface showing the same title gets the same
// art even when no external generator is configured.
type CardProvider struct {
	Size     int    // 0 means DefaultCaptureSize
	FontPath string // optional TTF; a builtin bitmap face is the fallback
}

// Generate implements Provider. It never fails except on cancellation.
func (p *CardProvider) Generate(ctx context.Context, title string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := p.Size
	if size <= 0 {
		size = DefaultCaptureSize
	}

	h := fnv.New32a()
	h.Write([]byte(title))
	seed := h.Sum32()
	colors := cardPalette[int(seed)%len(cardPalette)]

	dc := gg.NewContext(size, size)

	grad := gg.NewLinearGradient(0, 0, float64(size), float64(size))
	grad.AddColorStop(0, parseHexColor(colors[0]))
	grad.AddColorStop(1, parseHexColor(colors[1]))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	// A few translucent circles placed by the hash give each card its own
	// texture without any randomness.
	for i := 0; i < 3; i++ {
		x := float64((seed >> (4 * i)) % uint32(size))
		y := float64((seed >> (4*i + 2)) % uint32(size))
		r := float64(size) * (0.15 + 0.1*float64(i))
		dc.SetRGBA(1, 1, 1, 0.06)
		dc.DrawCircle(x, y, r)
		dc.Fill()
	}

	if p.FontPath != "" {
		if err := dc.LoadFontFace(p.FontPath, float64(size)/12); err != nil {
			dc.SetFontFace(basicfont.Face7x13)
		}
	} else {
		dc.SetFontFace(basicfont.Face7x13)
	}
	dc.SetRGBA(0, 0, 0, 0.35)
	dc.DrawStringWrapped(title, float64(size)/2+1, float64(size)/2+1, 0.5, 0.5, float64(size)*0.8, 1.5, gg.AlignCenter)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringWrapped(title, float64(size)/2, float64(size)/2, 0.5, 0.5, float64(size)*0.8, 1.5, gg.AlignCenter)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dc.Image(), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parseHexColor(s string) color.Color {
	if len(s) == 7 && s[0] == '#' {
		if v, err := strconv.ParseUint(s[1:], 16, 32); err == nil {
			return color.RGBA{
				R: uint8(v >> 16),
				G: uint8(v >> 8),
				B: uint8(v),
				A: 0xff,
			}
		}
	}
	return color.Black
}
