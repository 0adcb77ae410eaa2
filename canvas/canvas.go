package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/gogpu/cdivs/css"
)

// Quality selects the interpolator used when drawing images.
type Quality uint8

const (
	QualityLow Quality = iota
	QualityHigh
)

func (q Quality) interpolator() xdraw.Interpolator {
	if q == QualityHigh {
		return xdraw.CatmullRom
	}
	return xdraw.ApproxBiLinear
}

type state struct {
	m         Matrix
	fill      Paint
	stroke    Paint
	lineWidth float64
	alpha     float64
	op        Op
	quality   Quality
}

func defaultState() state {
	black := SolidColor(css.Color{A: 1})
	return state{
		m:         Identity(),
		fill:      black,
		stroke:    black,
		lineWidth: 1,
		alpha:     1,
	}
}

// Canvas is a premultiplied RGBA drawing surface.
type Canvas struct {
	img   *image.RGBA
	mask  *image.Alpha
	ras   *vector.Rasterizer
	path  path
	st    state
	stack []state
}

// New creates a cleared w×h canvas. Sizes below 1 become 1.
func New(w, h int) *Canvas {
	c := &Canvas{st: defaultState()}
	c.Resize(w, h)
	return c
}

// Resize reallocates the surface, clearing pixels and resetting state.
func (c *Canvas) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if c.img != nil && c.img.Rect.Dx() == w && c.img.Rect.Dy() == h {
		clear(c.img.Pix)
	} else {
		c.img = image.NewRGBA(image.Rect(0, 0, w, h))
		c.mask = image.NewAlpha(image.Rect(0, 0, w, h))
		c.ras = vector.NewRasterizer(w, h)
	}
	c.st = defaultState()
	c.stack = c.stack[:0]
	c.path.reset()
}

// W returns the width in device pixels.
func (c *Canvas) W() int { return c.img.Rect.Dx() }

// H returns the height in device pixels.
func (c *Canvas) H() int { return c.img.Rect.Dy() }

// Image returns the live backing image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Snapshot returns a copy of the current pixels.
func (c *Canvas) Snapshot() *image.RGBA {
	out := image.NewRGBA(c.img.Rect)
	copy(out.Pix, c.img.Pix)
	return out
}

// Pattern returns a repeating pattern of the current pixels.
func (c *Canvas) Pattern() *Pattern { return NewPattern(c.Snapshot()) }

// Clear makes every pixel transparent.
func (c *Canvas) Clear() { clear(c.img.Pix) }

// Save pushes the drawing state.
func (c *Canvas) Save() { c.stack = append(c.stack, c.st) }

// Restore pops the drawing state.
func (c *Canvas) Restore() {
	if n := len(c.stack); n > 0 {
		c.st = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
}

// Translate prepends a translation to the current transform.
func (c *Canvas) Translate(x, y float64) { c.st.m = c.st.m.Mul(Translation(x, y)) }

// Scale prepends a scale to the current transform.
func (c *Canvas) Scale(x, y float64) { c.st.m = c.st.m.Mul(Scaling(x, y)) }

// SetTransform replaces the current transform.
func (c *Canvas) SetTransform(m Matrix) { c.st.m = m }

// Transform returns the current transform.
func (c *Canvas) Transform() Matrix { return c.st.m }

// ResetTransform restores the identity transform.
func (c *Canvas) ResetTransform() { c.st.m = Identity() }

// SetFill sets the fill paint.
func (c *Canvas) SetFill(p Paint) { c.st.fill = p }

// SetStroke sets the stroke paint.
func (c *Canvas) SetStroke(p Paint) { c.st.stroke = p }

// SetColor sets both fill and stroke to a solid colour.
func (c *Canvas) SetColor(col css.Color) {
	s := SolidColor(col)
	c.st.fill, c.st.stroke = s, s
}

// SetLineWidth sets the stroke width in user units.
func (c *Canvas) SetLineWidth(w float64) {
	if w > 0 && !math.IsInf(w, 0) {
		c.st.lineWidth = w
	}
}

// SetAlpha sets the global alpha, clamped to [0,1].
func (c *Canvas) SetAlpha(a float64) { c.st.alpha = math.Max(0, math.Min(1, a)) }

// Alpha returns the global alpha.
func (c *Canvas) Alpha() float64 { return c.st.alpha }

// SetOp sets the composite operation.
func (c *Canvas) SetOp(op Op) { c.st.op = op }

// SetQuality sets the image smoothing quality.
func (c *Canvas) SetQuality(q Quality) { c.st.quality = q }

// BeginPath discards the current path.
func (c *Canvas) BeginPath() { c.path.reset() }

func (c *Canvas) pt(x, y float64) point {
	dx, dy := c.st.m.Apply(x, y)
	return point{dx, dy}
}

// MoveTo starts a subpath.
func (c *Canvas) MoveTo(x, y float64) { c.path.moveTo(c.pt(x, y)) }

// LineTo adds a straight segment.
func (c *Canvas) LineTo(x, y float64) { c.path.lineTo(c.pt(x, y)) }

// QuadTo adds a quadratic Bézier segment.
func (c *Canvas) QuadTo(cx, cy, x, y float64) { c.path.quadTo(c.pt(cx, cy), c.pt(x, y)) }

// CubicTo adds a cubic Bézier segment.
func (c *Canvas) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	c.path.cubicTo(c.pt(c1x, c1y), c.pt(c2x, c2y), c.pt(x, y))
}

// ClosePath closes the current subpath.
func (c *Canvas) ClosePath() { c.path.close() }

// Rect adds a closed rectangle subpath.
func (c *Canvas) Rect(x, y, w, h float64) {
	c.MoveTo(x, y)
	c.LineTo(x+w, y)
	c.LineTo(x+w, y+h)
	c.LineTo(x, y+h)
	c.ClosePath()
}

// Arc adds a circular arc centred on (x, y), joined to the current point.
func (c *Canvas) Arc(x, y, r, a0, a1 float64, ccw bool) {
	c.Ellipse(x, y, r, r, 0, a0, a1, ccw)
}

// Ellipse adds an elliptical arc, joined to the current point.
func (c *Canvas) Ellipse(x, y, rx, ry, rot, a0, a1 float64, ccw bool) {
	if rx < 0 || ry < 0 {
		return
	}
	c.path.ellipseArc(c.st.m, x, y, rx, ry, rot, a0, arcSweep(a0, a1, ccw))
}

// ArcTo adds a line to the tangent point and an arc of radius r tangent
// to the lines current→(x1,y1) and (x1,y1)→(x2,y2).
func (c *Canvas) ArcTo(x1, y1, x2, y2, r float64) {
	if !c.path.has {
		c.MoveTo(x1, y1)
		return
	}
	inv := c.st.m.Invert()
	x0, y0 := inv.Apply(c.path.cur.x, c.path.cur.y)

	v1x, v1y := x0-x1, y0-y1
	v2x, v2y := x2-x1, y2-y1
	l1, l2 := math.Hypot(v1x, v1y), math.Hypot(v2x, v2y)
	cross := v1x*v2y - v1y*v2x
	if r <= 0 || l1 == 0 || l2 == 0 || math.Abs(cross) < 1e-9 {
		c.LineTo(x1, y1)
		return
	}
	v1x, v1y, v2x, v2y = v1x/l1, v1y/l1, v2x/l2, v2y/l2
	theta := math.Acos(math.Max(-1, math.Min(1, v1x*v2x+v1y*v2y)))
	dist := r / math.Tan(theta/2)
	t1x, t1y := x1+v1x*dist, y1+v1y*dist
	t2x, t2y := x1+v2x*dist, y1+v2y*dist

	bx, by := v1x+v2x, v1y+v2y
	bl := math.Hypot(bx, by)
	h := r / math.Sin(theta/2)
	cx, cy := x1+bx/bl*h, y1+by/bl*h

	a0 := math.Atan2(t1y-cy, t1x-cx)
	a1 := math.Atan2(t2y-cy, t2x-cx)
	sweep := a1 - a0
	for sweep > math.Pi {
		sweep -= 2 * math.Pi
	}
	for sweep < -math.Pi {
		sweep += 2 * math.Pi
	}
	c.path.lineTo(c.pt(t1x, t1y))
	c.path.ellipseArc(c.st.m, cx, cy, r, r, 0, a0, sweep)
}

// Fill fills the current path with the fill paint.
func (c *Canvas) Fill() {
	x0, y0, x1, y1, ok := c.path.bounds()
	if !ok && !c.st.op.unbounded() {
		return
	}
	c.ras.Reset(c.W(), c.H())
	for _, s := range c.path.subs {
		if len(s.segs) == 0 {
			continue
		}
		c.ras.MoveTo(f32(s.start.x), f32(s.start.y))
		for _, seg := range s.segs {
			switch seg.kind {
			case segLine:
				c.ras.LineTo(f32(seg.p[0].x), f32(seg.p[0].y))
			case segQuad:
				c.ras.QuadTo(f32(seg.p[0].x), f32(seg.p[0].y), f32(seg.p[1].x), f32(seg.p[1].y))
			case segCubic:
				c.ras.CubeTo(f32(seg.p[0].x), f32(seg.p[0].y), f32(seg.p[1].x), f32(seg.p[1].y),
					f32(seg.p[2].x), f32(seg.p[2].y))
			}
		}
		c.ras.ClosePath()
	}
	c.paintMask(c.st.fill, image.Rect(x0, y0, x1+1, y1+1))
}

// Stroke strokes the current path with the stroke paint.
func (c *Canvas) Stroke() {
	w := c.st.lineWidth * c.st.m.LineScale()
	polys := c.path.strokePolygons(w)
	if len(polys) == 0 && !c.st.op.unbounded() {
		return
	}
	c.ras.Reset(c.W(), c.H())
	r := image.Rectangle{}
	for _, poly := range polys {
		c.ras.MoveTo(f32(poly[0].x), f32(poly[0].y))
		for _, pt := range poly[1:] {
			c.ras.LineTo(f32(pt.x), f32(pt.y))
		}
		c.ras.ClosePath()
		for _, pt := range poly {
			r = r.Union(image.Rect(int(math.Floor(pt.x)), int(math.Floor(pt.y)),
				int(math.Ceil(pt.x))+1, int(math.Ceil(pt.y))+1))
		}
	}
	c.paintMask(c.st.stroke, r)
}

// FillRect fills a rectangle without touching the current path.
func (c *Canvas) FillRect(x, y, w, h float64) {
	saved := c.path
	c.path = path{}
	c.Rect(x, y, w, h)
	c.Fill()
	c.path = saved
}

// ClearRect makes a rectangle transparent.
func (c *Canvas) ClearRect(x, y, w, h float64) {
	st := c.st
	c.st.op, c.st.alpha = DestinationOut, 1
	c.st.fill = SolidColor(css.Color{A: 1})
	c.FillRect(x, y, w, h)
	c.st = st
}

// FillAll covers the whole surface with p using op. Coverage ignores the
// current transform; paint lookup does not.
func (c *Canvas) FillAll(p Paint, op Op) {
	saved, savedPath := c.st, c.path
	c.st.op, c.st.fill = op, p
	w, h := float64(c.W()), float64(c.H())
	c.path = path{}
	c.path.moveTo(point{0, 0})
	c.path.lineTo(point{w, 0})
	c.path.lineTo(point{w, h})
	c.path.lineTo(point{0, h})
	c.path.close()
	c.Fill()
	c.st, c.path = saved, savedPath
}

// DrawImage draws src scaled into the user-space rectangle (x, y, w, h).
func (c *Canvas) DrawImage(src image.Image, x, y, w, h float64) {
	sb := src.Bounds()
	if sb.Empty() || w == 0 || h == 0 {
		return
	}
	m := c.st.m.Mul(Translation(x, y)).Mul(Scaling(w/float64(sb.Dx()), h/float64(sb.Dy()))).
		Mul(Translation(-float64(sb.Min.X), -float64(sb.Min.Y)))

	layer := image.NewRGBA(c.img.Rect)
	c.st.quality.interpolator().Transform(layer, m.aff3(), src, sb, xdraw.Src, nil)

	// Image coverage is carried by the layer's own alpha.
	draw.Draw(c.mask, c.mask.Rect, image.Opaque, image.Point{}, draw.Src)
	c.composite(func(px, py int) color.RGBA { return layer.RGBAAt(px, py) }, c.img.Rect)
}

// paintMask rasterises into the mask and composites paint through it.
func (c *Canvas) paintMask(p Paint, r image.Rectangle) {
	c.ras.DrawOp = draw.Src
	c.ras.Draw(c.mask, c.mask.Rect, image.Opaque, image.Point{})
	inv := c.st.m.Invert()
	c.composite(func(px, py int) color.RGBA {
		ux, uy := inv.Apply(float64(px)+0.5, float64(py)+0.5)
		return p.At(ux, uy)
	}, r)
}

// composite blends src through the coverage mask. Bounded operations only
// visit r; unbounded ones visit the whole surface.
func (c *Canvas) composite(src func(x, y int) color.RGBA, r image.Rectangle) {
	op := c.st.op
	if op.unbounded() {
		r = c.img.Rect
	}
	r = r.Intersect(c.img.Rect)
	k := uint8(math.Round(c.st.alpha * 255))

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cov := mul(c.mask.Pix[c.mask.PixOffset(x, y)], k)
			if cov == 0 && !op.unbounded() {
				continue
			}
			var s color.RGBA
			if cov > 0 {
				s = src(x, y)
				if cov < 255 {
					s = color.RGBA{mul(s.R, cov), mul(s.G, cov), mul(s.B, cov), mul(s.A, cov)}
				}
			}
			i := c.img.PixOffset(x, y)
			d := c.img.Pix[i : i+4 : i+4]
			d[0], d[1], d[2], d[3] = op.apply(s.R, s.G, s.B, s.A, d[0], d[1], d[2], d[3])
		}
	}
}

func f32(v float64) float32 { return float32(v) }
