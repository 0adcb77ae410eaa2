package gradient

import (
	"math"

	"github.com/gogpu/cdivs/canvas"
	"github.com/gogpu/cdivs/css"
)

// Render paints the gradient for a bgW×bgH image inside a tileW×tileH tile
// (the tile is larger when background-repeat: space adds gaps). Gradients
// that fit their tile are returned as a paint directly; everything else is
// drawn into a tile pattern on the scratch canvas.
func (g *Gradient) Render(bgW, bgH float64, tileW, tileH int, env css.Env) (canvas.Paint, error) {
	env = env.Normalize()
	if g.Kind == Radial {
		return g.renderRadial(bgW, bgH, tileW, tileH, env)
	}
	return g.renderLinear(bgW, bgH, tileW, tileH, env)
}

// Line returns the gradient line endpoints for a w×h box.
func (g *Gradient) Line(w, h float64) (x1, y1, x2, y2 float64) {
	angle := g.Angle
	if g.Corner != nil {
		angle = math.Atan2(g.Corner[0]*h, g.Corner[1]*w) / math.Pi * 180
		if angle < 0 {
			angle += 360
		}
	}

	switch angle {
	case 0, 360:
		return 0, h, 0, 0
	case 90:
		return 0, 0, w, 0
	case 180:
		return 0, 0, 0, h
	case 270:
		return w, 0, 0, 0
	}

	hW, hH := w/2, h/2
	slope := math.Tan((90 - angle) * math.Pi / 180)
	pSlope := -1 / slope

	corX, corY := hW, hH
	if angle >= 180 {
		corX = -hW
	}
	if angle >= 90 && angle < 270 {
		corY = -hH
	}
	c := corY - pSlope*corX
	endX := c / (slope - pSlope)
	endY := pSlope*endX + c
	return hW - endX, hH + endY, hW + endX, hH - endY
}

func (g *Gradient) renderLinear(bgW, bgH float64, tileW, tileH int, env css.Env) (canvas.Paint, error) {
	x1, y1, x2, y2 := g.Line(bgW, bgH)
	length := math.Hypot(x1-x2, y1-y2)
	stops, rep := g.Stops.Calc(length, g.Repeating, 0, 1, env)
	repeating := g.Repeating && rep.Count > 0

	var xShift, yShift, xLen, yLen float64
	if repeating {
		pad := env.Profile.LinearRepeatPad()
		xLen, yLen = x2-x1+pad, y2-y1+pad
		xCenter, yCenter := x1+xLen/2, y1+yLen/2
		xOff, yOff := xLen*rep.Length/2, yLen*rep.Length/2
		xShift, yShift = xLen/2-xOff, yLen/2-yOff

		x1, x2 = xCenter-xOff, xCenter+xOff
		y1, y2 = yCenter-yOff, yCenter+yOff
		xLen, yLen = x2-x1, y2-y1
		xShift -= xLen*rep.Shift - xLen
		yShift -= yLen*rep.Shift - yLen
	}

	paint := canvas.NewLinearGradient(x1, y1, x2, y2, paintStops(stops))
	if !repeating && float64(tileW) >= bgW && float64(tileH) >= bgH {
		return paint, nil
	}

	pat, err := canvas.Tile(tileW, tileH, func(c *canvas.Canvas) {
		c.SetFill(paint)
		if !repeating {
			c.FillRect(0, 0, bgW, bgH)
			return
		}
		x, y := -xShift, -yShift
		c.Translate(x, y)
		for range rep.Count + 1 {
			c.FillRect(-x, -y, bgW*2, bgH*2)
			c.Translate(xLen, yLen)
			x += xLen
			y += yLen
		}
		c.ResetTransform()
		if tw := float64(tileW); bgW < tw {
			c.ClearRect(bgW, 0, tw-bgW, float64(tileH))
		}
		if th := float64(tileH); bgH < th {
			c.ClearRect(0, bgH, float64(tileW), th-bgH)
		}
	})
	if err != nil {
		return nil, err
	}
	return pat, nil
}

// radialGeometry holds the resolved radial layout in (possibly scaled)
// gradient space.
type radialGeometry struct {
	posX, posY   float64
	scale        [2]float64
	inscribed    float64
	circumscribe float64
	pxScale      float64
}

func (g *Gradient) radialGeometry(w, h, dpr float64) radialGeometry {
	r := radialGeometry{scale: [2]float64{1, 1}, pxScale: 1}
	r.posX = g.Pos[0].ToPx(w, 1, dpr)
	r.posY = g.Pos[1].ToPx(h, 1, dpr)

	sideX := w > 0 && r.posX/w > .5
	sideY := h > 0 && r.posY/h > .5
	cornerX, cornerY := w, h
	if sideX != g.Closest {
		cornerX = 0
	}
	if sideY != g.Closest {
		cornerY = 0
	}
	shapeW := math.Abs(cornerX - r.posX)
	shapeH := math.Abs(cornerY - r.posY)

	if g.Circle {
		switch {
		case !g.Side:
			r.inscribed = math.Hypot(shapeW, shapeH)
		case (w > h) != g.Closest:
			r.inscribed = shapeW
		default:
			r.inscribed = shapeH
		}
	} else {
		ew, eh := shapeW, shapeH
		if !g.Side {
			ew, eh = math.Sqrt(2*shapeW*shapeW), math.Sqrt(2*shapeH*shapeH)
		}
		if ew > eh {
			r.inscribed = ew
			r.scale[1] = eh / ew
		} else {
			r.inscribed = eh
			if eh > 0 {
				r.scale[0] = ew / eh
			}
		}
		for i := range r.scale {
			if r.scale[i] == 0 || math.IsNaN(r.scale[i]) {
				r.scale[i] = 0.001
			}
		}
		if eh > ew && ew > 0 {
			r.pxScale = eh / ew
		}
		r.posX /= r.scale[0]
		r.posY /= r.scale[1]
	}

	farX, farY := w, h
	if sideX {
		farX = 0
	}
	if sideY {
		farY = 0
	}
	d := math.Hypot(r.posX-farX, r.posY-farY)
	r.circumscribe = math.Sqrt(2 * d * d)
	return r
}

func (g *Gradient) renderRadial(bgW, bgH float64, tileW, tileH int, env css.Env) (canvas.Paint, error) {
	geo := g.radialGeometry(bgW, bgH, env.DPR)
	stops, rep := g.Stops.Calc(geo.inscribed, g.Repeating, geo.circumscribe, geo.pxScale, env)
	repeating := g.Repeating && rep.Length > 0
	if repeating && geo.inscribed > 0 {
		rep.Count = int(math.Ceil(geo.circumscribe / (geo.inscribed * rep.Length)))
	}
	cs := paintStops(stops)

	if !repeating && g.Circle {
		return canvas.NewRadialGradient(geo.posX, geo.posY, 0, geo.circumscribe, cs), nil
	}

	pat, err := canvas.Tile(tileW, tileH, func(c *canvas.Canvas) {
		c.Scale(geo.scale[0], geo.scale[1])
		rw, rh := bgW/geo.scale[0], bgH/geo.scale[1]
		if !repeating {
			c.SetFill(canvas.NewRadialGradient(geo.posX, geo.posY, 0, geo.circumscribe, cs))
			c.FillRect(0, 0, rw, rh)
			return
		}
		radius := rep.Length * geo.circumscribe
		r := rep.Shift * radius
		if r > 0.01 {
			first := paintStops(ScaleSegment(stops, 1-rep.Shift, 1, env.Profile))
			c.SetFill(canvas.NewRadialGradient(geo.posX, geo.posY, 0, r, first))
			c.FillRect(0, 0, rw, rh)
		}
		for range rep.Count {
			r += radius
			c.SetFill(canvas.NewRadialGradient(geo.posX, geo.posY, r-radius, r, cs))
			c.FillRect(0, 0, rw, rh)
		}
	})
	if err != nil {
		return nil, err
	}
	return pat, nil
}
