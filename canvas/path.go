package canvas

import "math"

type point struct{ x, y float64 }

type segKind uint8

const (
	segLine segKind = iota
	segQuad
	segCubic
)

// segment ends at its last used point; the start is the previous end.
type segment struct {
	kind segKind
	p    [3]point
}

func (s segment) end() point {
	switch s.kind {
	case segQuad:
		return s.p[1]
	case segCubic:
		return s.p[2]
	}
	return s.p[0]
}

type subpath struct {
	start  point
	segs   []segment
	closed bool
}

// path holds geometry already mapped to device space.
type path struct {
	subs []subpath
	cur  point
	has  bool
}

func (p *path) reset() {
	p.subs = p.subs[:0]
	p.has = false
}

func (p *path) moveTo(pt point) {
	p.subs = append(p.subs, subpath{start: pt})
	p.cur, p.has = pt, true
}

func (p *path) ensure(pt point) {
	if !p.has {
		p.moveTo(pt)
	}
}

func (p *path) push(s segment) {
	last := &p.subs[len(p.subs)-1]
	last.segs = append(last.segs, s)
	p.cur = s.end()
}

func (p *path) lineTo(pt point) {
	if !p.has {
		p.moveTo(pt)
		return
	}
	p.push(segment{kind: segLine, p: [3]point{pt}})
}

func (p *path) quadTo(c, pt point) {
	p.ensure(c)
	p.push(segment{kind: segQuad, p: [3]point{c, pt}})
}

func (p *path) cubicTo(c1, c2, pt point) {
	p.ensure(c1)
	p.push(segment{kind: segCubic, p: [3]point{c1, c2, pt}})
}

func (p *path) close() {
	if !p.has {
		return
	}
	last := &p.subs[len(p.subs)-1]
	last.closed = true
	p.moveTo(last.start)
}

// bounds returns the integer device bounds of every point in the path.
func (p *path) bounds() (x0, y0, x1, y1 int, ok bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	visit := func(pt point) {
		minX, maxX = math.Min(minX, pt.x), math.Max(maxX, pt.x)
		minY, maxY = math.Min(minY, pt.y), math.Max(maxY, pt.y)
	}
	for _, s := range p.subs {
		if len(s.segs) == 0 {
			continue
		}
		visit(s.start)
		for _, seg := range s.segs {
			n := int(seg.kind) + 1
			for _, pt := range seg.p[:n] {
				visit(pt)
			}
		}
	}
	if math.IsInf(minX, 1) {
		return 0, 0, 0, 0, false
	}
	return int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)), true
}

// flatten converts a subpath to a polyline.
func (s subpath) flatten() []point {
	pts := []point{s.start}
	cur := s.start
	for _, seg := range s.segs {
		switch seg.kind {
		case segLine:
			pts = append(pts, seg.p[0])
		case segQuad:
			n := curveSteps(cur, seg.p[0], seg.p[1])
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				mt := 1 - t
				pts = append(pts, point{
					mt*mt*cur.x + 2*mt*t*seg.p[0].x + t*t*seg.p[1].x,
					mt*mt*cur.y + 2*mt*t*seg.p[0].y + t*t*seg.p[1].y,
				})
			}
		case segCubic:
			n := curveSteps(cur, seg.p[0], seg.p[1], seg.p[2])
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				mt := 1 - t
				a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
				pts = append(pts, point{
					a*cur.x + b*seg.p[0].x + c*seg.p[1].x + d*seg.p[2].x,
					a*cur.y + b*seg.p[0].y + c*seg.p[1].y + d*seg.p[2].y,
				})
			}
		}
		cur = seg.end()
	}
	return pts
}

// curveSteps picks a subdivision count from the control polygon length.
func curveSteps(pts ...point) int {
	var l float64
	for i := 1; i < len(pts); i++ {
		l += math.Hypot(pts[i].x-pts[i-1].x, pts[i].y-pts[i-1].y)
	}
	return min(max(int(math.Ceil(l/3)), 2), 96)
}

// ellipseArc appends cubic segments approximating an elliptical arc from
// angle a0 sweeping by sweep radians. Points are produced in user space
// and mapped through m. The first point is joined with lineTo.
func (p *path) ellipseArc(m Matrix, cx, cy, rx, ry, rot, a0, sweep float64) {
	cosR, sinR := math.Cos(rot), math.Sin(rot)
	at := func(x, y float64) point {
		ux := cx + x*cosR - y*sinR
		uy := cy + x*sinR + y*cosR
		dx, dy := m.Apply(ux, uy)
		return point{dx, dy}
	}

	start := at(rx*math.Cos(a0), ry*math.Sin(a0))
	p.lineTo(start)
	if sweep == 0 {
		return
	}

	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	a := a0
	for range n {
		b := a + step
		ca, sa := math.Cos(a), math.Sin(a)
		cb, sb := math.Cos(b), math.Sin(b)
		p.cubicTo(
			at(rx*(ca-k*sa), ry*(sa+k*ca)),
			at(rx*(cb+k*sb), ry*(sb-k*cb)),
			at(rx*cb, ry*sb),
		)
		a = b
	}
}

// arcSweep resolves canvas arc angles into a signed sweep.
func arcSweep(a0, a1 float64, ccw bool) float64 {
	const tau = 2 * math.Pi
	if !ccw {
		if a1-a0 >= tau {
			return tau
		}
		return math.Mod(math.Mod(a1-a0, tau)+tau, tau)
	}
	if a0-a1 >= tau {
		return -tau
	}
	return -math.Mod(math.Mod(a0-a1, tau)+tau, tau)
}
