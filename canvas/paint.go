package canvas

import (
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/gogpu/cdivs/css"
)

// Paint supplies premultiplied colour for a point in user space.
type Paint interface {
	At(x, y float64) color.RGBA
}

// Solid is a uniform colour paint.
type Solid struct{ c color.RGBA }

// SolidColor returns a uniform paint.
func SolidColor(c css.Color) Solid { return Solid{premul(c)} }

// At implements Paint.
func (s Solid) At(float64, float64) color.RGBA { return s.c }

func premul(c css.Color) color.RGBA {
	n := c.NRGBA()
	a := uint16(n.A)
	return color.RGBA{
		R: uint8((uint16(n.R)*a + 127) / 255),
		G: uint8((uint16(n.G)*a + 127) / 255),
		B: uint8((uint16(n.B)*a + 127) / 255),
		A: n.A,
	}
}

// Stop is one gradient colour stop.
type Stop struct {
	Offset float64
	Color  css.Color
}

// ramp evaluates stops with pad extension. Colours are interpolated
// without premultiplication.
type ramp []Stop

func newRamp(stops []Stop) ramp {
	r := make(ramp, 0, len(stops))
	prev := math.Inf(-1)
	for _, s := range stops {
		s.Offset = math.Max(prev, math.Min(1, math.Max(0, s.Offset)))
		prev = s.Offset
		r = append(r, s)
	}
	return r
}

func (r ramp) at(t float64) color.RGBA {
	switch {
	case len(r) == 0 || math.IsNaN(t):
		return color.RGBA{}
	case t <= r[0].Offset:
		return premul(r[0].Color)
	case t >= r[len(r)-1].Offset:
		return premul(r[len(r)-1].Color)
	}
	i, _ := slices.BinarySearchFunc(r, t, func(s Stop, t float64) int {
		if s.Offset <= t {
			return -1
		}
		return 1
	})
	a, b := r[i-1], r[i]
	span := b.Offset - a.Offset
	if span <= 0 {
		return premul(b.Color)
	}
	w := (t - a.Offset) / span
	return premul(css.Color{
		R: a.Color.R + (b.Color.R-a.Color.R)*w,
		G: a.Color.G + (b.Color.G-a.Color.G)*w,
		B: a.Color.B + (b.Color.B-a.Color.B)*w,
		A: a.Color.A + (b.Color.A-a.Color.A)*w,
	})
}

// LinearGradient paints along the line (X0,Y0)→(X1,Y1).
type LinearGradient struct {
	X0, Y0, X1, Y1 float64
	stops          ramp
}

// NewLinearGradient builds a linear gradient paint.
func NewLinearGradient(x0, y0, x1, y1 float64, stops []Stop) *LinearGradient {
	return &LinearGradient{X0: x0, Y0: y0, X1: x1, Y1: y1, stops: newRamp(stops)}
}

// At implements Paint.
func (g *LinearGradient) At(x, y float64) color.RGBA {
	dx, dy := g.X1-g.X0, g.Y1-g.Y0
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return color.RGBA{}
	}
	return g.stops.at(((x-g.X0)*dx + (y-g.Y0)*dy) / l2)
}

// RadialGradient paints between two concentric circles.
type RadialGradient struct {
	X, Y, R0, R1 float64
	stops        ramp
}

// NewRadialGradient builds a concentric radial gradient paint.
func NewRadialGradient(x, y, r0, r1 float64, stops []Stop) *RadialGradient {
	return &RadialGradient{X: x, Y: y, R0: r0, R1: r1, stops: newRamp(stops)}
}

// At implements Paint.
func (g *RadialGradient) At(x, y float64) color.RGBA {
	if g.R1 == g.R0 {
		return color.RGBA{}
	}
	d := math.Hypot(x-g.X, y-g.Y)
	return g.stops.at((d - g.R0) / (g.R1 - g.R0))
}

// Pattern tiles an image from the user-space origin.
type Pattern struct {
	Img              *image.RGBA
	RepeatX, RepeatY bool
}

// NewPattern wraps img as a repeating pattern.
func NewPattern(img *image.RGBA) *Pattern {
	return &Pattern{Img: img, RepeatX: true, RepeatY: true}
}

// Size returns the tile size.
func (p *Pattern) Size() (int, int) {
	if p == nil || p.Img == nil {
		return 0, 0
	}
	b := p.Img.Bounds()
	return b.Dx(), b.Dy()
}

// At implements Paint.
func (p *Pattern) At(x, y float64) color.RGBA {
	w, h := p.Size()
	if w == 0 || h == 0 {
		return color.RGBA{}
	}
	ix, iy := int(math.Floor(x)), int(math.Floor(y))
	if p.RepeatX {
		ix = wrap(ix, w)
	} else if ix < 0 || ix >= w {
		return color.RGBA{}
	}
	if p.RepeatY {
		iy = wrap(iy, h)
	} else if iy < 0 || iy >= h {
		return color.RGBA{}
	}
	b := p.Img.Bounds()
	return p.Img.RGBAAt(b.Min.X+ix, b.Min.Y+iy)
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
