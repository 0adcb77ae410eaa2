package cdivs

import (
	"math"

	"github.com/gogpu/cdivs/background"
	"github.com/gogpu/cdivs/canvas"
	"github.com/gogpu/cdivs/css"
	"github.com/gogpu/cdivs/host"
	"github.com/gogpu/cdivs/internal/logx"
	"github.com/gogpu/cdivs/scheduler"
)

var white = css.Color{R: 255, G: 255, B: 255, A: 1}

func whiteA(a float64) css.Color {
	c := white
	c.A = a
	return c
}

// canvasInit creates the drawing surface, places its element in the
// wrapper and registers the frame callbacks.
func (d *Divider) canvasInit() {
	d.c = canvas.New(1, 1)
	d.canvasEl = d.h.CreateElement("canvas")
	d.canvasEl.AddClass(Prefix + "-canvas")
	d.canvasEl.AddClass(Prefix + "-canvas-" + d.pos)
	for _, kv := range [][2]string{
		{"width", "100%"},
		{"position", "absolute"},
		{"left", "0"},
		{d.pos, "0"},
		{"will-change", "transform"},
		{"z-index", "2"},
	} {
		d.canvasEl.SetStyle(kv[0], kv[1])
	}
	d.h.Prepend(d.wrap, d.canvasEl)

	d.surf = d.sched.Observe(d.canvasEl, scheduler.Funcs{
		Style: func(float64) {
			if d.isResize {
				d.resizeSurface()
			}
			d.style()
			d.isResize = false
			d.changes = [3]bool{}
		},
		Iterate: d.iterate,
		Draw:    d.draw,
	})
	d.createPaths()
}

// canvasRefresh sizes the surface from the measured element and requests
// a resize pass when anything it depends on changed.
func (d *Divider) canvasRefresh() {
	dpr := d.env.DPR
	cw := int(d.env.Snap(d.rects[0].W))
	if cw == 0 {
		cw = max(d.cw, 1)
	}
	ch := int(math.Round(d.s.size * dpr))

	bgChanged := false
	for _, t := range d.trackers {
		bgChanged = bgChanged || t.Changed()
	}
	screenChanged := d.dpr.Changed() || d.adaptive.Changed()
	sizeChanged := cw != d.cw || ch != d.ch
	visible := cw > 1 && ch > 1
	changes := [3]bool{d.dpr.Changed(), d.adaptive.Changed(), d.optionsChanged}
	for i, v := range changes {
		d.changes[i] = d.changes[i] || v
	}

	if visible && (bgChanged || screenChanged || sizeChanged || d.optionsChanged) {
		d.cw, d.ch = cw, ch
		d.isResize = true
		d.surf.Style.ReqOnce()
		d.surf.Draw.ReqOnce()
	}
	if d.adaptive.Changed() {
		d.refreshDuration()
	}
	if d.adaptive.Changed() || d.optionsChanged {
		d.canvasEl.SetStyle("height", px(d.s.size))
	}
	if visible && d.hasFixed {
		vp := d.h.Viewport()
		d.bcr = d.canvasEl.Rect().Move(vp.ScrollX, vp.ScrollY)
	}
	if visible && d.env.Profile.PositionFollowsElement() {
		d.alignSurface()
	}
}

// alignSurface nudges the surface element by under a device pixel so that
// it starts on a pixel boundary.
func (d *Divider) alignSurface() {
	dpr := d.env.DPR
	vp := d.h.Viewport()
	r := d.canvasEl.Rect().Move(vp.ScrollX, vp.ScrollY)
	left := (r.X - d.cLeft) * dpr
	top := (r.Y - d.cTop) * dpr
	d.cLeft, d.cTop = 0, 0
	if math.Mod(left, 1) >= .5 {
		d.cLeft = (.5 - math.Mod(left, .5)) / dpr
	}
	if math.Mod(top, 1) >= .5 {
		d.cTop = (.5 - math.Mod(top, .5)) / dpr
	}
	y := d.cTop
	if d.bottom {
		y = -y
	}
	d.canvasEl.SetStyle(d.pos, px(y))
	d.canvasEl.SetStyle("left", px(d.cLeft))
}

// resizeSurface applies a pending size change and rebuilds the patterns
// that depend on it.
func (d *Divider) resizeSurface() {
	c := d.c
	c.Resize(d.cw, d.ch)
	w, h := c.W(), c.H()
	dprChanged, adaptiveChanged, optionsChanged := d.changes[0], d.changes[1], d.changes[2]

	if d.cut != nil && (dprChanged || optionsChanged || d.cut.Grid().Width == 0) {
		d.cut.SetDPR(d.env.DPR)
		d.cut.Prepare(w, h, canvas.SolidColor(white))
	}
	if dprChanged || adaptiveChanged || optionsChanged || d.gradPattern == nil {
		d.buildPatterns(float64(h))
	}
	rh := h - 1
	if d.semi {
		rh = h
	}
	for _, r := range d.renderers {
		r.SetDPR(d.env.DPR)
		r.Prepare(w, rh, nil)
	}
	logx.L().Debug("divider surface resized", "pos", d.pos, "w", w, "h", h)
}

// buildPatterns renders the decorative cut pattern and the vertical
// opacity ramp the shapes are filled with.
func (d *Divider) buildPatterns(h float64) {
	s := d.s
	stops := []canvas.Stop{
		{Offset: 0, Color: whiteA(s.decorOpacity)},
		{Offset: 1, Color: whiteA(0)},
	}
	if s.decorFading == "centerFade" || s.decorFading == "cF" {
		stops = []canvas.Stop{
			{Offset: 0, Color: whiteA(0)},
			{Offset: .5, Color: whiteA(s.decorOpacity)},
			{Offset: 1, Color: whiteA(0)},
		}
	}
	fade := canvas.NewLinearGradient(0, 0, 0, h, stops)

	cutW := 2
	if d.cut != nil {
		cutW = max(int(d.cut.Grid().Width), 1)
	}
	cut, err := canvas.Tile(cutW, int(h), func(c *canvas.Canvas) {
		c.SetColor(white)
		if d.cut != nil {
			d.cut.Draw(c, 0)
		}
		c.FillAll(fade, canvas.DestinationIn)
	})
	if err != nil {
		logx.Diag("cdivs", "decor pattern skipped", "err", err)
	} else {
		d.cutPattern = cut
	}

	ramp := canvas.NewLinearGradient(0, 0, 0, h, []canvas.Stop{
		{Offset: 0, Color: whiteA(s.opacity)},
		{Offset: 1, Color: white},
	})
	grad, err := canvas.Tile(2, int(h), func(c *canvas.Canvas) {
		c.FillAll(ramp, canvas.SourceOver)
	})
	if err != nil {
		logx.Diag("cdivs", "opacity pattern skipped", "err", err)
		return
	}
	d.gradPattern = grad
}

// style refreshes the backgrounds and snapshots them into bgPattern.
func (d *Divider) style() {
	if d.scrolled || d.longScroll {
		if d.s.scroll || d.s.scrollTimed {
			d.refreshRects()
			d.bgResize()
		}
		d.scrolled = false
	} else {
		for _, t := range d.trackers {
			t.Refresh()
		}
	}

	c := d.c
	c.Clear()
	var addY float64
	if d.bottom && len(d.trackers) > 0 {
		addY = math.Round(d.trackers[0].Height()) - float64(c.H())
	}
	for _, t := range d.trackers {
		t.Draw(c, addY, d.bcr)
	}
	d.bgPattern = c.Pattern()
}

func (d *Divider) iterate(dt float64) {
	for _, r := range d.renderers {
		r.Iterate(dt)
	}
}

// draw fills the shapes with the opacity ramp, cuts the decor out and
// keeps the background inside (top) or outside (bottom) the shapes.
func (d *Divider) draw(float64) {
	c := d.c
	c.Clear()
	if d.gradPattern == nil || d.bgPattern == nil {
		return
	}
	c.SetFill(d.gradPattern)
	for _, r := range d.renderers {
		r.Draw(c, 0)
	}
	if d.cutPattern != nil {
		c.FillAll(d.cutPattern, canvas.DestinationOut)
	}
	op := canvas.SourceIn
	if d.bottom {
		op = canvas.SourceOut
	}
	c.FillAll(d.bgPattern, op)
}

// bgInit acquires the background trackers of every element.
func (d *Divider) bgInit() {
	d.trackers = d.trackers[:0]
	d.hasFixed = false
	for _, e := range d.els {
		t := background.Acquire(e, d.surf, background.Options{
			Env:         d.env,
			Images:      d.h,
			Transitions: d.h,
			Viewport:    d.h.Viewport,
		})
		d.trackers = append(d.trackers, t)
		d.hasFixed = d.hasFixed || t.HasFixed()
	}
	d.scrollInit()
}

func (d *Divider) bgRelease() {
	for _, e := range d.els {
		background.Release(e, d.surf)
		unwatch(e, d)
	}
	d.trackers = d.trackers[:0]
}

// bgResize hands every tracker its box on the surface and its element box,
// both in device pixels.
func (d *Divider) bgResize() {
	env := d.env
	snapFirst := env.Profile.PositionFollowsElement()
	shift := d.rects[0]
	if snapFirst {
		shift = snapRect(shift, env)
	}
	screen := d.width.Changed() || d.height.Changed()
	for i, t := range d.trackers {
		if i >= len(d.rects) {
			break
		}
		frac := d.rects[i]
		var r host.Rect
		if snapFirst {
			r = snapRect(frac, env).Move(-shift.X, -shift.Y)
		} else {
			r = snapRect(frac.Move(-shift.X, -shift.Y), env)
		}
		dpr := env.DPR
		t.SetEnv(env)
		t.Resize(r, host.Rect{X: frac.X * dpr, Y: frac.Y * dpr, W: frac.W * dpr, H: frac.H * dpr}, screen)
	}
}

// snapRect snaps the edges of r to device pixels.
func snapRect(r host.Rect, env css.Env) host.Rect {
	x, y := env.Snap(r.X), env.Snap(r.Y)
	return host.Rect{X: x, Y: y, W: env.Snap(r.X+r.W) - x, H: env.Snap(r.Y+r.H) - y}
}
