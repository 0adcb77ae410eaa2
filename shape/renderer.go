package shape

import (
	"math"

	"github.com/gogpu/cdivs/canvas"
	"github.com/gogpu/cdivs/css"
	"github.com/gogpu/cdivs/internal/cache"
	"github.com/gogpu/cdivs/internal/logx"
)

// Surface is the drawing target of a renderer. *canvas.Canvas implements it.
type Surface interface {
	H() int
	SetAlpha(a float64)
	SetLineWidth(w float64)
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Rect(x, y, w, h float64)
	Arc(x, y, r, a0, a1 float64, ccw bool)
	ArcTo(x1, y1, x2, y2, r float64)
	Ellipse(x, y, rx, ry, rot, a0, a1 float64, ccw bool)
	QuadTo(cx, cy, x, y float64)
	CubicTo(c1x, c1y, c2x, c2y, x, y float64)
	Fill()
	Stroke()
	FillAll(p canvas.Paint, op canvas.Op)
}

var _ Surface = (*canvas.Canvas)(nil)

// Options configure one renderer.
type Options struct {
	// Type is a shape name or abbreviation.
	Type    string
	Opacity float64
	// IsBottom places the divider at the bottom seam; IsOpaque adds the
	// one pixel seam overlap on the inner side.
	IsBottom bool
	IsOpaque bool
	// Strength damps animated coordinates toward their first keyframe:
	// 1 animates fully, 0 freezes.
	Strength float64
	Inverted bool
	// Delay is the per-segment animation delay as a fraction of the
	// duration.
	Delay   float64
	SegFit  bool
	SegSize float64
	// ShiftDur is the time in ms to shift by one surface height; Shift is
	// the starting shift offset.
	ShiftDur float64
	Shift    float64
	Stroke   float64
	UseAnim  bool
	// Top and Bottom trim the drawable height, as fractions of it.
	Top, Bottom float64
	DPR         float64
}

// Grid is the resolved segment layout of a shape on a surface.
type Grid struct {
	Width, Height       float64
	SegWidth, SegHeight float64
	XCount, YCount      int
	XRepeat, YRepeat    int
}

// Layout resolves the segment grid of h on a cw×ch surface.
func Layout(cw, ch float64, h Header, segFit bool, segSize, dpr float64) Grid {
	g := Grid{Width: cw, Height: ch, SegWidth: cw, SegHeight: ch, XCount: 1, YCount: 1, XRepeat: 1, YRepeat: 1}
	if !h.IsPattern() {
		return g
	}
	val := func(v, s float64) float64 {
		if v > 1 {
			return math.Round(v * dpr)
		}
		return math.Round(v * s)
	}
	fit := func(v, s float64, is bool) float64 {
		if !is || v <= 0 {
			return v
		}
		n := math.Round(s / v)
		if n == 0 {
			n = 1
		}
		return math.Ceil(s / n)
	}

	w := val(h.Width.V, cw)
	ht := val(h.Height.V, ch)
	if h.Width.Has(FlagRelative) {
		w = math.Round(h.Width.V * ht)
	}
	w *= segSize
	if h.Height.Has(FlagRelative) {
		ht = math.Round(h.Height.V * w)
	}
	w = fit(w, cw, h.Width.Has(FlagFit) && segFit)
	ht = fit(ht, ch, h.Height.Has(FlagFit) && segFit)
	g.SegWidth, g.SegHeight = w, ht

	g.XRepeat, g.YRepeat = h.XRepeat, h.YRepeat
	if g.XRepeat == 0 {
		g.XRepeat = ceilDiv(cw, w)
	}
	if g.YRepeat == 0 {
		g.YRepeat = ceilDiv(ch, ht)
	}
	g.Width = w * float64(g.XRepeat)
	g.Height = ht * float64(g.YRepeat)

	g.XCount = ceilDiv(cw, g.Width) + 1
	g.YCount = ceilDiv(ch, g.Height)
	if h.Start.Has(FlagShift) {
		g.XCount++
	}
	return g
}

func ceilDiv(a, b float64) int {
	if b <= 0 {
		return 1
	}
	return int(math.Ceil(a / b))
}

// arg is one coordinate bound to a segment.
type arg struct {
	kind CoordKind
	v    float64
	vals []float64
	key  int
	xp   float64
}

type step struct {
	op   Op
	args []arg
}

// Renderer binds a shape program to a surface size and a clock.
type Renderer struct {
	opts  Options
	prog  *Program
	clock *Clock

	grid        Grid
	w, h        float64
	top, bottom float64
	steps       []step

	addX, addY   float64
	lineWidth    float64
	startX, endX float64
	pattern      canvas.Paint
	args         [8]float64
	shift        float64
}

// NewRenderer looks up the shape and returns an unprepared renderer.
func NewRenderer(o Options) *Renderer {
	if o.SegSize == 0 {
		o.SegSize = 1
	}
	if o.DPR <= 0 {
		o.DPR = 1
	}
	return &Renderer{opts: o, prog: Lookup(o.Type), clock: NewClock(), shift: o.Shift}
}

// Program returns the compiled shape.
func (r *Renderer) Program() *Program { return r.prog }

// Options returns the renderer options.
func (r *Renderer) Options() Options { return r.opts }

// Clock returns the animation clock.
func (r *Renderer) Clock() *Clock { return r.clock }

// Grid returns the layout resolved by the last Prepare.
func (r *Renderer) Grid() Grid { return r.grid }

// Shift returns the current shift offset in device pixels.
func (r *Renderer) Shift() float64 { return r.shift }

// UsesAnim reports whether Iterate advances the clock.
func (r *Renderer) UsesAnim() bool { return r.opts.UseAnim }

// SetUseAnim enables or disables clock advancement.
func (r *Renderer) SetUseAnim(on bool) { r.opts.UseAnim = on }

// SetDPR changes the device pixel ratio used by the next Prepare.
func (r *Renderer) SetDPR(dpr float64) {
	if dpr > 0 {
		r.opts.DPR = dpr
	}
}

// Prepare lays the shape out on a w×h device pixel surface and binds every
// coordinate to its segment. Static shapes are drawn once into a pattern
// filled with fill; a nil fill is white.
func (r *Renderer) Prepare(w, h int, fill canvas.Paint) {
	o := r.opts
	r.w, r.h = float64(w), float64(h)
	r.grid = Layout(r.w, r.h, r.prog.Header, o.SegFit, o.SegSize, o.DPR)

	r.bottom = math.Round(o.Bottom * r.h)
	r.top = math.Round(o.Top * r.h)
	sub := r.top + r.bottom
	if o.IsOpaque {
		if o.IsBottom {
			r.top++
		} else {
			r.bottom++
		}
	}
	r.grid.Height -= sub
	r.grid.SegHeight -= sub

	r.steps = r.bind(r.invertType())

	r.addX, r.addY = 0, 0
	r.lineWidth = math.Round(o.Stroke * o.DPR)
	if o.Stroke != 0 && math.Mod(r.lineWidth, 2) != 0 {
		r.addX, r.addY = .5, .5
	}
	r.startX, r.endX = 0, r.grid.Width*float64(r.grid.XCount)
	if r.invertType() == InvertX {
		r.startX, r.endX = r.endX, r.startX
	}
	r.prepareStatic(fill)
}

func (r *Renderer) invertType() int {
	if r.opts.Inverted {
		return r.prog.Header.InvertType
	}
	return InvertNone
}

// bind evaluates the commands for every segment of one pattern period.
func (r *Renderer) bind(invert int) []step {
	g := r.grid
	var out []step
	prev := make([]float64, 8)
	curX := 0.0

	for i := range g.XRepeat {
		for j := range g.YRepeat {
			ii := i
			if invert == InvertX {
				ii = g.XRepeat - 1 - i
			}
			var dyn []float64
			if r.prog.Dynamic != nil {
				wp, hp := ratio(i, g.XRepeat), ratio(j, g.YRepeat)
				dyn = r.prog.Dynamic(Params{
					I: i, J: j,
					W: g.Width / r.opts.DPR, H: g.Height / r.opts.DPR,
					WP: wp, HP: hp, IWP: 1 - wp, IHP: 1 - hp,
				})
			}

			for _, cmd := range r.prog.Commands {
				if !cmd.Place.Accepts(i, g.XRepeat) {
					continue
				}
				sizes := cmd.Op.Arity()
				s := step{op: cmd.Op, args: make([]arg, len(cmd.Coords))}
				for ci, c := range cmd.Coords {
					if c.Kind == Index && len(c.Items) > 0 {
						c = c.Items[ii%len(c.Items)]
					}
					addX := 0.0
					if invert == InvertShiftX {
						addX = g.SegWidth * float64(g.XRepeat) / 2
					}
					additive := 0.0
					switch sizes[ci] {
					case SizeX:
						additive = g.SegWidth*float64(ii) + addX
					case SizeY:
						additive = g.SegHeight*float64(j) + r.top
					}
					subtractive := 0.0
					if sizes[ci]+1 == invert {
						switch invert {
						case InvertX:
							subtractive = g.SegWidth
						case InvertY:
							subtractive = g.SegHeight
						}
					}
					sizeIndex := sizes[ci]
					if c.Size >= 0 {
						sizeIndex = c.Size
					}
					size := [...]float64{g.SegWidth, g.SegHeight, math.Pi, g.SegWidth, g.SegHeight, 1}[sizeIndex]

					a := r.bindCoord(c, dyn, additive, subtractive, size, sizeIndex != SizeAngle)

					var rep float64
					switch a.kind {
					case Anim, Parallax:
						rep = a.vals[0]
					case Ref:
						rep = prev[int(a.v)]
					default:
						rep = a.v
					}
					if sizes[ci] == SizeX {
						curX = rep
					}
					if a.kind == Anim {
						if span := g.SegWidth * float64(g.XRepeat); span != 0 {
							a.xp = curX / span
						}
						a.xp += c.Delay / float64(g.XRepeat)
					}
					prev[ci] = rep
					s.args[ci] = a
				}
				out = append(out, s)
			}
		}
	}
	return out
}

func ratio(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

func (r *Renderer) bindCoord(c Coord, dyn []float64, additive, subtractive, size float64, toPx bool) arg {
	switch c.Kind {
	case Anim, Parallax:
		a := arg{kind: c.Kind, key: c.Key, vals: make([]float64, len(c.Items))}
		for i, it := range c.Items {
			a.vals[i] = r.bindCoord(it, dyn, additive, subtractive, size, false).v
		}
		if s := r.opts.Strength; s < 1 {
			for i := 1; i < len(a.vals); i++ {
				a.vals[i] = a.vals[0] + (a.vals[i]-a.vals[0])*s
			}
		}
		return a
	case Ref:
		return arg{kind: Ref, v: float64(c.Ref - 1)}
	}

	v := c.Frac*size + c.Px*r.opts.DPR
	if c.Dyn > 0 && c.Dyn <= len(dyn) {
		v += dyn[c.Dyn-1] * r.opts.DPR
	}
	if subtractive != 0 {
		v = subtractive - v
	}
	v += additive
	if toPx {
		v = math.Round(v)
	}
	return arg{kind: Plain, v: v}
}

type tileKey struct {
	name     string
	inverted bool
	stroke   float64
	dpr      float64
	w, h     int
}

// tiles holds the white silhouettes of static shapes.
var tiles = cache.New[tileKey, *canvas.Pattern](64)

func resetTiles() { tiles.Clear() }

// ResetTiles drops every cached static tile.
func ResetTiles() { resetTiles() }

var white = css.Color{R: 255, G: 255, B: 255, A: 1}

func (r *Renderer) prepareStatic(fill canvas.Paint) {
	r.pattern = nil
	if !r.prog.Static() {
		return
	}
	w, h := int(r.grid.Width), int(r.grid.Height)
	if w < 1 || h < 1 {
		return
	}
	key := tileKey{r.prog.Name, r.opts.Inverted, r.opts.Stroke, r.opts.DPR, w, h}
	tile, ok := tiles.Get(key)
	if !ok {
		var err error
		tile, err = canvas.Tile(w, h, func(c *canvas.Canvas) {
			c.SetColor(white)
			r.draw(c, true, 0)
		})
		if err != nil {
			logx.Diag("shape", "static tile skipped", "type", r.prog.Name, "err", err)
			return
		}
		tiles.Set(key, tile)
	}
	if fill == nil {
		fill = canvas.SolidColor(white)
	}
	pat, err := canvas.Tile(w, h, func(c *canvas.Canvas) {
		c.FillAll(fill, canvas.SourceOver)
		c.SetAlpha(r.opts.Opacity)
		c.FillAll(tile, canvas.DestinationIn)
	})
	if err != nil {
		logx.Diag("shape", "static pattern skipped", "type", r.prog.Name, "err", err)
		return
	}
	r.pattern = pat
}

// Iterate advances the clock and the shift offset by dt milliseconds.
func (r *Renderer) Iterate(dt float64) {
	if r.opts.UseAnim {
		r.clock.Advance(dt)
	}
	if r.prog.Shifts() && r.opts.ShiftDur != 0 {
		r.shift += r.h / r.opts.ShiftDur * dt
	}
}

// Draw fills or strokes the shape on s. parallax in [0,1] drives
// parallax coordinates.
func (r *Renderer) Draw(s Surface, parallax float64) {
	if r.pattern != nil {
		s.SetAlpha(1)
		s.FillAll(r.pattern, canvas.SourceOver)
		return
	}
	r.draw(s, false, parallax)
}

func (r *Renderer) draw(s Surface, forPattern bool, parallax float64) {
	if r.steps == nil {
		return
	}
	o, g := r.opts, r.grid
	start := int(r.prog.Header.Start.V)
	useShift := r.prog.Shifts()
	animDelay := r.clock.Dur * o.Delay * r.prog.Header.DelayMul

	addX, addY := r.addX, r.addY
	shiftIndex := 1
	if g.Width > 0 {
		shiftIndex = int(r.shift/g.Width) + 1
	}
	if useShift && g.Width > 0 {
		n := 1
		if r.prog.Header.IsPattern() {
			n++
		}
		addX += math.Mod(r.shift, g.Width) - g.Width*float64(n)
	}

	xLen, yLen := g.XCount, g.YCount
	if forPattern {
		xLen, yLen = 1, 1
	}
	if !forPattern && o.Opacity < 1 {
		s.SetAlpha(o.Opacity)
	}
	if o.Stroke > 0 {
		s.SetLineWidth(r.lineWidth)
	}

	s.BeginPath()
	startX, endX := addX+r.startX, addX+r.endX
	bottom := float64(s.H()) - r.bottom
	below := float64(s.H()) + 2
	if start == StartBefore {
		s.MoveTo(startX, below)
		s.LineTo(startX, bottom)
	}

	for i := range r.args {
		r.args[i] = math.NaN()
	}
	animIndex := xLen + shiftIndex
	for i := range xLen {
		ii := i
		if r.invertType() == InvertX {
			ii = xLen - 1 - i
		}
		offset := float64(animIndex-ii) * animDelay
		for j := range yLen {
			r.drawSteps(s, addX+g.Width*float64(ii), addY+g.Height*float64(j), offset, animDelay, parallax)
		}
	}

	if start > StartNone {
		if start == StartAfter {
			s.MoveTo(startX, below)
			s.LineTo(startX, bottom)
		}
		s.LineTo(endX, bottom)
		s.LineTo(endX, below)
	}

	if o.Stroke > 0 {
		s.Stroke()
	} else {
		s.Fill()
	}
	if !forPattern && o.Opacity < 1 {
		s.SetAlpha(1)
	}
}

// drawSteps issues every bound command translated to segment (x, y).
func (r *Renderer) drawSteps(s Surface, x, y, offset, animDelay, parallax float64) {
	for _, st := range r.steps {
		dirs := st.op.Arity()
		for n, a := range st.args {
			switch a.kind {
			case Ref:
				if k := int(a.v); k >= 0 && k < len(r.args) {
					r.args[n] = r.args[k]
				}
				continue
			case Anim:
				r.args[n] = Keyframes(a.vals, r.prog.Keys[a.key], r.clock.Phase(offset-a.xp*animDelay))
			case Parallax:
				r.args[n] = Keyframes(a.vals, r.prog.Keys[a.key], math.Max(0, math.Min(1, parallax)))
			default:
				r.args[n] = a.v
			}
			switch dirs[n] {
			case SizeX:
				r.args[n] += x
			case SizeY:
				r.args[n] += y
			}
		}
		r.issue(s, st.op)
	}
}

// issue sends the current arguments to s. Commands with a non-finite
// argument are skipped.
func (r *Renderer) issue(s Surface, op Op) {
	a := r.args
	n := len(op.Arity())
	for i := range n {
		if op.Arity()[i] == SizeNone {
			continue
		}
		if math.IsNaN(a[i]) || math.IsInf(a[i], 0) {
			return
		}
	}
	flag := func(v float64) bool { return v != 0 && !math.IsNaN(v) }
	switch op {
	case MoveTo:
		s.MoveTo(a[0], a[1])
	case LineTo:
		s.LineTo(a[0], a[1])
	case Rect:
		s.Rect(a[0], a[1], a[2], a[3])
	case Arc:
		s.Arc(a[0], a[1], a[2], a[3], a[4], flag(a[5]))
	case ArcTo:
		s.ArcTo(a[0], a[1], a[2], a[3], a[4])
	case Ellipse:
		s.Ellipse(a[0], a[1], a[2], a[3], a[4], a[5], a[6], flag(a[7]))
	case QuadTo:
		s.QuadTo(a[0], a[1], a[2], a[3])
	case CubicTo:
		s.CubicTo(a[0], a[1], a[2], a[3], a[4], a[5])
	}
}
