package canvas

import "math"

// strokePolygons expands every subpath into quads along its segments and
// round joins at interior vertices. All polygons share one winding so
// overlaps saturate instead of cancelling in the rasteriser.
func (p *path) strokePolygons(width float64) [][]point {
	hw := width / 2
	if hw <= 0 {
		return nil
	}
	var polys [][]point
	for _, s := range p.subs {
		if len(s.segs) == 0 {
			continue
		}
		pts := dedupe(s.flatten())
		if s.closed && len(pts) > 1 && pts[0] != pts[len(pts)-1] {
			pts = append(pts, pts[0])
		}
		for i := 1; i < len(pts); i++ {
			a, b := pts[i-1], pts[i]
			dx, dy := b.x-a.x, b.y-a.y
			l := math.Hypot(dx, dy)
			if l == 0 {
				continue
			}
			nx, ny := -dy/l*hw, dx/l*hw
			polys = append(polys, orient([]point{
				{a.x + nx, a.y + ny},
				{b.x + nx, b.y + ny},
				{b.x - nx, b.y - ny},
				{a.x - nx, a.y - ny},
			}))
		}
		last := len(pts) - 1
		for i, pt := range pts {
			interior := i > 0 && i < last
			if interior || (s.closed && i == 0) {
				polys = append(polys, orient(disc(pt, hw)))
			}
		}
	}
	return polys
}

func dedupe(pts []point) []point {
	out := pts[:1]
	for _, pt := range pts[1:] {
		if pt != out[len(out)-1] {
			out = append(out, pt)
		}
	}
	return out
}

func disc(c point, r float64) []point {
	n := min(max(int(math.Ceil(r*2)), 8), 48)
	out := make([]point, n)
	for i := range out {
		a := 2 * math.Pi * float64(i) / float64(n)
		out[i] = point{c.x + r*math.Cos(a), c.y + r*math.Sin(a)}
	}
	return out
}

// orient reverses poly when its signed area is positive.
func orient(poly []point) []point {
	var area float64
	for i := range poly {
		j := (i + 1) % len(poly)
		area += poly[i].x*poly[j].y - poly[j].x*poly[i].y
	}
	if area > 0 {
		for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}
	return poly
}
