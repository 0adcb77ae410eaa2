package background

import (
	"image"
	"math"
	"slices"
	"strings"

	"github.com/gogpu/cdivs/canvas"
	"github.com/gogpu/cdivs/css"
	"github.com/gogpu/cdivs/host"
	"github.com/gogpu/cdivs/internal/cache"
	"github.com/gogpu/cdivs/internal/logx"
)

// Holder is a scheduled surface that draws a tracker's background.
type Holder interface {
	// Request asks for style and draw runs; once asks for exactly one.
	Request(once bool)
	// Unrequest drops a Request(false).
	Unrequest()
}

// Options wires a tracker to its page.
type Options struct {
	Env         css.Env
	Images      host.ImageLoader
	Transitions host.TransitionSource
	// Viewport reports the window for fixed attachments.
	Viewport func() host.Viewport
}

type item struct {
	image, size, position, repeat cache.Var[string]

	layer   *Layer
	sizes   []css.Value
	pos     []css.Value
	repeats [2]css.Repeat
	fixed   bool

	fresh     bool
	sizeDirty bool
	posDirty  bool
}

// Tracker holds the parsed background layers of one element and the
// surfaces that draw them.
type Tracker struct {
	el      host.Element
	opts    Options
	holders []Holder
	stop    func()

	isImage  bool
	img      image.Image
	hasFixed bool

	width, height, x, y cache.Var[float64]
	bg                  host.Rect
	moved, resized      bool

	// Color is the background-color seen by the last Refresh.
	Color css.Color
	items []*item

	bgImage, bgSize, bgPos, bgRepeat cache.Var[string]
}

var (
	trackers  = map[string]*Tracker{}
	refreshed = map[*Tracker]bool{}
)

// Acquire returns the tracker for el, creating it on first use, and adds
// h to its holders.
func Acquire(el host.Element, h Holder, opts Options) *Tracker {
	if t, ok := trackers[el.ID()]; ok {
		if !slices.Contains(t.holders, h) {
			t.holders = append(t.holders, h)
		}
		return t
	}
	opts.Env = opts.Env.Normalize()
	t := &Tracker{
		el:       el,
		opts:     opts,
		holders:  []Holder{h},
		isImage:  el.Tag() == "img",
		hasFixed: strings.Contains(el.Computed("background-attachment"), "fixed"),
		resized:  true,
	}
	trackers[el.ID()] = t
	if t.isImage {
		if src, ok := el.Attr("src"); ok {
			loadImage(opts.Images, src, func(img image.Image) {
				t.img = img
				t.requestOnce()
			})
		}
	}
	if opts.Transitions != nil {
		t.stop = opts.Transitions.WatchTransitions(el, t.transitionStart, t.transitionEnd)
	}
	return t
}

// Release drops h from the tracker of el and destroys the tracker when it
// was the last holder. It reports whether the tracker was destroyed.
func Release(el host.Element, h Holder) bool {
	t, ok := trackers[el.ID()]
	if !ok {
		return false
	}
	t.holders = slices.DeleteFunc(t.holders, func(x Holder) bool { return x == h })
	if len(t.holders) > 0 {
		return false
	}
	if t.stop != nil {
		t.stop()
	}
	delete(trackers, el.ID())
	delete(refreshed, t)
	return true
}

// Lookup returns the live tracker for el, if any.
func Lookup(el host.Element) (*Tracker, bool) {
	t, ok := trackers[el.ID()]
	return t, ok
}

// BeginPass starts a style pass: every tracker may refresh once more.
func BeginPass() { clear(refreshed) }

// Reset drops every tracker and cached image.
func Reset() {
	for _, t := range trackers {
		if t.stop != nil {
			t.stop()
		}
	}
	clear(trackers)
	clear(refreshed)
	images.Clear()
}

// Element returns the tracked element.
func (t *Tracker) Element() host.Element { return t.el }

// Holders returns the number of holders.
func (t *Tracker) Holders() int { return len(t.holders) }

// HasFixed reports whether any layer uses a fixed attachment.
func (t *Tracker) HasFixed() bool { return t.hasFixed }

// Changed reports whether the element moved or resized since the last
// Refresh.
func (t *Tracker) Changed() bool { return t.resized || t.moved }

// Height returns the element height in device pixels from the last Resize.
func (t *Tracker) Height() float64 { return t.height.Get() }

// SetEnv replaces the rendering environment. A new device pixel ratio or
// profile relays out every layer on the next Refresh.
func (t *Tracker) SetEnv(env css.Env) {
	env = env.Normalize()
	if env != t.opts.Env {
		t.opts.Env = env
		t.resized = true
	}
}

// Layers returns the parsed layers, front to back. Layers that failed to
// parse are nil.
func (t *Tracker) Layers() []*Layer {
	out := make([]*Layer, len(t.items))
	for i, it := range t.items {
		out[i] = it.layer
	}
	return out
}

func (t *Tracker) transitionStart() {
	for _, h := range t.holders {
		h.Request(false)
	}
}

func (t *Tracker) transitionEnd(notStarted bool) {
	for _, h := range t.holders {
		if !notStarted {
			h.Unrequest()
		}
		h.Request(true)
	}
}

func (t *Tracker) requestOnce() {
	for _, h := range t.holders {
		h.Request(true)
	}
}

// Resize records the background box on the surface (bg) and the element
// box (el), both in device pixels.
func (t *Tracker) Resize(bg, el host.Rect, screenChanged bool) {
	t.bg = bg
	xc := t.x.Set(el.X)
	yc := t.y.Set(el.Y)
	wc := t.width.Set(el.W)
	hc := t.height.Set(el.H)

	moved := xc || yc
	t.moved = t.moved || moved
	t.resized = t.resized || wc || hc ||
		t.hasFixed && screenChanged ||
		t.opts.Env.Profile.PositionFollowsElement() && moved
}

// Refresh re-reads computed style and recomputes the layers whose inputs
// changed. It runs at most once per style pass.
func (t *Tracker) Refresh() {
	if refreshed[t] {
		return
	}
	refreshed[t] = true
	defer func() { t.resized, t.moved = false, false }()
	if t.isImage {
		return
	}

	el := t.el
	col, err := css.ParseColor(el.Computed("background-color"))
	if err != nil {
		logx.Diag("background", "bad background-color", "err", err)
	}
	t.Color = col

	if t.resized {
		t.bgImage.Set(el.Computed("background-image"), t.setImages)
		if n := len(t.items); n > 0 {
			t.bgSize.Set(el.Computed("background-size"), func(v string) {
				for i, s := range css.Fixed(css.Split(v, ','), n) {
					it := t.items[i]
					it.size.Set(s, func(s string) {
						it.sizes, it.sizeDirty = css.ParseValues(s, false), true
					})
				}
			})
			t.bgRepeat.Set(el.Computed("background-repeat"), func(v string) {
				for i, s := range css.Fixed(strings.Split(v, ", "), n) {
					it := t.items[i]
					it.repeat.Set(s, func(s string) {
						it.repeats, it.sizeDirty = css.ParseRepeat(s), true
					})
				}
			})
			att := el.Computed("background-attachment")
			t.hasFixed = strings.Contains(att, "fixed")
			for i, s := range css.Fixed(strings.Split(att, ", "), n) {
				it := t.items[i]
				if fixed := strings.TrimSpace(s) == "fixed"; fixed != it.fixed {
					it.fixed, it.sizeDirty = fixed, true
				}
			}
		}
	}

	if n := len(t.items); n > 0 {
		t.bgPos.Set(el.Computed("background-position"), func(v string) {
			for i, s := range css.Fixed(css.Split(v, ','), n) {
				it := t.items[i]
				it.position.Set(s, func(s string) {
					it.pos, it.posDirty = css.ParseValues(s, true), true
				})
			}
		})
	}

	for _, it := range t.items {
		if it.fresh {
			t.parseItem(it)
		}
		t.calcItem(it)
	}
}

// setImages matches the new background-image list against the current
// items by raw string.
func (t *Tracker) setImages(v string) {
	var raws []string
	if v != "none" && v != "" {
		raws = css.Split(v, ',')
	}
	items := make([]*item, 0, len(raws))
	pool := slices.Clone(t.items)
	for _, raw := range raws {
		i := slices.IndexFunc(pool, func(it *item) bool { return it.image.Get() == raw })
		var it *item
		if i >= 0 {
			it = pool[i]
			pool = slices.Delete(pool, i, i+1)
		} else {
			it = &item{fresh: true}
			it.image.Set(raw)
		}
		items = append(items, it)
	}
	t.items = items
	t.bgSize.Invalidate()
	t.bgPos.Invalidate()
	t.bgRepeat.Invalidate()
}

func (t *Tracker) parseItem(it *item) {
	it.fresh = false
	layer, err := NewLayer(it.image.Get())
	if err != nil {
		logx.Diag("background", "layer skipped", "err", err)
		it.layer = nil
		return
	}
	it.layer, it.sizeDirty = layer, true
	if layer.Kind == Image {
		loadImage(t.opts.Images, layer.Src, func(img image.Image) {
			if it.layer != layer {
				return
			}
			layer.SetImage(img)
			if t.width.Get() > 0 {
				t.calcItem(it)
			}
			t.requestOnce()
		})
	}
}

// calcItem lays out one layer: size, then position, then pattern. A
// position-only change skips the size step.
func (t *Tracker) calcItem(it *item) {
	l := it.layer
	if l == nil || !l.Ready() {
		return
	}
	sizeDirty := t.resized || it.sizeDirty || l.stage == stageNone
	if !sizeDirty && !it.posDirty {
		return
	}
	env := t.opts.Env
	if sizeDirty {
		w, h := t.width.Get(), t.height.Get()
		if it.fixed && t.opts.Viewport != nil {
			vp := t.opts.Viewport()
			w, h = vp.W*env.DPR, vp.H*env.DPR
		}
		l.CalcSize(it.sizes, it.repeats, math.Ceil(w), h, env)
	}
	l.CalcPosition(it.pos, t.x.Get(), t.y.Get(), env)
	if err := l.CreatePattern(env); err != nil {
		logx.Diag("background", "layer not drawn", "layer", l.String(), "err", err)
	}
	it.sizeDirty, it.posDirty = false, false
}

// Draw paints the background onto c: the colour, then the layers from
// back to front. addY is subtracted from the vertical position; bcr is
// the surface's viewport rect in CSS pixels.
func (t *Tracker) Draw(c *canvas.Canvas, addY float64, bcr host.Rect) {
	bg := t.bg
	if t.isImage {
		if t.img != nil {
			c.Save()
			c.SetQuality(canvas.QualityHigh)
			c.DrawImage(t.img, bg.X, bg.Y-addY, bg.W, bg.H)
			c.Restore()
		}
		return
	}

	c.Save()
	defer c.Restore()
	c.SetColor(t.Color)
	c.FillRect(bg.X, bg.Y-addY, bg.W, bg.H)

	var vp host.Viewport
	if t.opts.Viewport != nil {
		vp = t.opts.Viewport()
	}
	dpr := t.opts.Env.DPR
	for i := len(t.items) - 1; i >= 0; i-- {
		it := t.items[i]
		l := it.layer
		if l == nil || l.Paint == nil {
			continue
		}
		var fixedX, fixedY float64
		ay := addY
		if it.fixed {
			fixedY = -((vp.ScrollY-bcr.Y)*dpr - bg.Y)
			fixedX = -((vp.ScrollX-bcr.X)*dpr - bg.X)
			ay = 0
		}

		c.ResetTransform()
		c.Translate(l.X+bg.X-fixedX, l.Y+bg.Y-ay-fixedY)
		c.Scale(l.ScaleW, l.ScaleH)

		var dx, dy float64
		dw, dh := l.Width/l.ScaleW, l.Height/l.ScaleH
		if l.Repeat[0].Tiles() {
			dx = -(l.X - fixedX) / l.ScaleW
			dw = bg.W / l.ScaleW
		}
		if l.Repeat[1].Tiles() {
			dy = -(l.Y - fixedY) / l.ScaleH
			dh = bg.H / l.ScaleH
		}
		c.SetFill(l.Paint)
		c.FillRect(dx, dy, dw, dh)
	}
}
