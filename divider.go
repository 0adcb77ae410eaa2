package cdivs

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/cdivs/background"
	"github.com/gogpu/cdivs/canvas"
	"github.com/gogpu/cdivs/css"
	"github.com/gogpu/cdivs/host"
	"github.com/gogpu/cdivs/internal/cache"
	"github.com/gogpu/cdivs/internal/logx"
	"github.com/gogpu/cdivs/scheduler"
	"github.com/gogpu/cdivs/shape"
)

var (
	// ErrNoHost is returned by New when neither WithHost nor
	// SetDefaultHost provided a page.
	ErrNoHost = errors.New("cdivs: no host")
	// ErrNilElement is returned by New for a nil element.
	ErrNilElement = errors.New("cdivs: nil element")
)

// Prefix starts every class name and custom property the engine sets.
const Prefix = "cdivs"

// Divider is one decorated seam of an element.
type Divider struct {
	h     host.Host
	sched *scheduler.Manager
	env   css.Env

	// options are the merged raw options; current is options resolved for
	// the active breakpoint and s its typed form.
	options        Options
	current        Options
	s              settings
	optionsChanged bool

	width, height, dpr cache.Var[float64]
	adaptive           cache.Var[int]

	el, wrap, opp host.Element
	oppStyle      styleSnapshot
	bottom        bool
	pos           string
	els           []host.Element
	rects         []host.Rect
	semi          bool

	canvasEl host.Element
	surf     *scheduler.Surface
	c        *canvas.Canvas
	cw, ch   int
	isResize bool
	// changes are the device pixel ratio, breakpoint and option changes
	// not yet seen by a surface resize.
	changes      [3]bool
	cLeft, cTop  float64
	bcr          host.Rect
	trackers     []*background.Tracker
	hasFixed     bool
	scrolled     bool
	longScroll   bool
	scrollStop   func()
	scrollCancel func()

	renderers     []*shape.Renderer
	cut           *shape.Renderer
	hasAdditional bool
	isAdditive    bool
	animOn        bool

	gradPattern, cutPattern, bgPattern canvas.Paint

	destroyed bool
}

// New attaches a divider to el and returns a handle to it. When el
// already carries a divider on the resolved seam, that divider is returned
// instead. Configuration problems never fail New: they are logged and the
// divider falls back to defaults.
func New(el host.Element, opts ...Option) (*Handle, error) {
	cfg := newConfig(opts)
	if cfg.host == nil {
		return nil, ErrNoHost
	}
	if el == nil {
		return nil, ErrNilElement
	}
	if !hooked[cfg.scheduler] {
		hooked[cfg.scheduler] = true
		cfg.scheduler.OnStylePhase(background.BeginPass)
	}

	d := &Divider{
		h:       cfg.host,
		sched:   cfg.scheduler,
		env:     css.Env{Profile: cfg.profile},
		options: DefaultOptions(),
	}
	for k, v := range cfg.options {
		if !known(k) {
			logx.Diag("cdivs", "unknown option kept", "option", k)
		}
		d.options[k] = v
	}
	d.updateOptions()

	el, bottom := cfg.discovery.Discover(Inner(el), Seam{
		Bottom:             d.s.bottom,
		Opposite:           d.s.opposite,
		IgnoreTransparency: d.s.ignoreTransparency,
	})
	d.el, d.bottom = el, bottom
	d.pos = "top"
	if bottom {
		d.pos = "bottom"
		d.opp = Outer(el).Next()
	} else {
		d.opp = Outer(el).Prev()
	}

	list := onElement[el.ID()]
	if i := slices.IndexFunc(list, func(x *Divider) bool { return x.bottom == bottom }); i >= 0 {
		return &Handle{list: []*Divider{list[i]}}, nil
	}

	d.refreshSemiTransparent()
	d.els = append([]host.Element{el}, d.queryInners()...)
	d.refreshRects()

	d.clipInit()
	d.canvasInit()
	d.bgInit()
	if d.hasFixed {
		d.wrap.SetStyle("transform", "none")
	}

	for _, e := range d.els {
		watch(d.h, e, d)
	}
	onElement[el.ID()] = append(onElement[el.ID()], d)

	d.bgResize()
	d.canvasRefresh()

	el.AddClass(Prefix + "-element")
	el.AddClass(Prefix + "-element-" + d.pos)

	all = append(all, d)
	watchViewport(d.h)
	logx.L().Debug("divider created", "tag", el.Tag(), "pos", d.pos, "type", d.s.typ)
	return &Handle{list: []*Divider{d}}, nil
}

// Element returns the element whose background the divider extends.
func (d *Divider) Element() host.Element { return d.el }

// Bottom reports whether the divider sits on the bottom seam.
func (d *Divider) Bottom() bool { return d.bottom }

// Canvas returns the drawing surface. Its pixels hold the last drawn frame.
func (d *Divider) Canvas() *canvas.Canvas { return d.c }

// CanvasElement returns the element standing for the surface in the page.
func (d *Divider) CanvasElement() host.Element { return d.canvasEl }

// Renderers returns the shape renderers: the primary shape first, then the
// additional ones.
func (d *Divider) Renderers() []*shape.Renderer { return slices.Clone(d.renderers) }

// Destroyed reports whether Destroy ran.
func (d *Divider) Destroyed() bool { return d.destroyed }

// Resize re-resolves breakpoints and re-measures the element. Only the
// steps whose inputs changed do work.
func (d *Divider) Resize() {
	if d.destroyed {
		return
	}
	d.updateOptions()
	d.refreshRects()
	d.clipRefresh()
	d.bgResize()
	d.canvasRefresh()
}

// SetOptions merges o into the divider options, re-runs the resize
// cascade and rebuilds the shapes.
func (d *Divider) SetOptions(o Options) {
	if d.destroyed {
		return
	}
	o = canonical(o)
	d.optionsChanged = true
	for k, v := range o {
		if !known(k) {
			logx.Diag("cdivs", "unknown option kept", "option", k)
		}
		d.options[k] = v
	}
	d.updateOptions()

	if _, ok := o["semiTransparent"]; ok {
		d.refreshSemiTransparent()
	}
	if _, ok := o["inners"]; ok {
		d.bgRelease()
		d.els = append([]host.Element{d.el}, d.queryInners()...)
		for _, e := range d.els {
			watch(d.h, e, d)
		}
		d.bgInit()
	}
	_, sc := o["scroll"]
	_, sp := o["scrollParent"]
	if sc || sp {
		d.scrollInit()
	}

	d.refreshRects()
	d.clipRefresh()
	d.bgResize()
	d.canvasRefresh()
	d.createPaths()

	d.optionsChanged = false
	logx.L().Debug("divider options changed", "pos", d.pos, "type", d.s.typ)
}

// Options returns the merged options, breakpoint arrays included.
func (d *Divider) Options() Options { return d.options.Clone() }

// CurrentOptions returns the options resolved for the active breakpoint.
func (d *Divider) CurrentOptions() Options { return d.current.Clone() }

// Destroy detaches the divider. The last divider of an element also
// unwraps it and restores its style attribute.
func (d *Divider) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	d.scrollDestroy()

	id := d.el.ID()
	last := len(onElement[id]) == 1
	d.bgRelease()
	d.sched.Unobserve(d.surf)
	d.h.Remove(d.canvasEl)

	d.el.RemoveClass(Prefix + "-element")
	d.el.RemoveClass(Prefix + "-element-" + d.pos)
	if d.opp != nil {
		d.oppRestore()
	}
	d.wrap.RemoveClass(Prefix + "-wrap-" + d.pos)
	if last {
		d.clipDestroy()
	} else {
		d.el.SetStyle("--"+Prefix+"-"+d.pos, "0px")
	}

	onElement[id] = slices.DeleteFunc(onElement[id], func(x *Divider) bool { return x == d })
	if len(onElement[id]) == 0 {
		delete(onElement, id)
	}
	for _, e := range d.els {
		unwatch(e, d)
	}
	all = slices.DeleteFunc(all, func(x *Divider) bool { return x == d })
	unwatchViewport(d.h)
	logx.L().Debug("divider destroyed", "tag", d.el.Tag(), "pos", d.pos)
}

// updateOptions reads the viewport and recomputes the resolved options
// when the breakpoint or the options changed.
func (d *Divider) updateOptions() {
	vp := d.h.Viewport()
	d.width.Set(positive(vp.W))
	d.height.Set(positive(vp.H))
	d.dpr.Set(positive(vp.DPR))
	d.env.DPR = d.dpr.Get()

	idx := breakpointIndex(numbers(d.options["breakpoints"]), d.width.Get())
	if d.adaptive.Set(idx) || d.optionsChanged || d.current == nil {
		d.current = resolveOptions(d.options, idx)
		d.s = settingsOf(d.current)
	}
}

func positive(v float64) float64 {
	if v > 0 {
		return v
	}
	return 1
}

func (d *Divider) queryInners() []host.Element {
	if d.s.inners == "" {
		return nil
	}
	return d.h.Query(d.el, d.s.inners)
}

func (d *Divider) refreshSemiTransparent() {
	if d.s.semiAuto {
		d.semi = IsSemiTransparent(d.el)
		return
	}
	d.semi = d.s.semi
}

// refreshRects measures every background element in page coordinates.
// Width and height come from computed style when it holds a length.
func (d *Divider) refreshRects() {
	vp := d.h.Viewport()
	d.rects = d.rects[:0]
	for _, e := range d.els {
		r := e.Rect().Move(vp.ScrollX, vp.ScrollY)
		r.W = styleLength(e.Computed("width"), r.W)
		r.H = styleLength(e.Computed("height"), r.H)
		d.rects = append(d.rects, r)
	}
}

// styleLength parses a pixel length, falling back to measured and then 1.
func styleLength(v string, measured float64) float64 {
	if f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64); err == nil && f > 0 {
		return f
	}
	if measured > 0 {
		return measured
	}
	return 1
}

func px(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + "px" }
