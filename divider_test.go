package cdivs

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gogpu/cdivs/host"
	"github.com/gogpu/cdivs/host/static"
)

const twoSections = `<html><body>
<section id="a" data-rect="0 0 1280 400" style="background-color: rgb(255, 0, 0)"></section>
<section id="b" data-rect="0 400 1280 400" style="background-color: rgb(0, 0, 255)"></section>
<section id="c" data-rect="0 800 1280 400"></section>
</body></html>`

func newPage(t *testing.T, src string, opts ...static.Option) *static.Document {
	t.Helper()
	t.Cleanup(Reset)
	doc, err := static.ParseString(src, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func attach(t *testing.T, doc *static.Document, id string, o Options) *Divider {
	t.Helper()
	h, err := New(doc.ByID(id), WithHost(doc), WithOptions(o))
	if err != nil {
		t.Fatalf("New(%s): %v", id, err)
	}
	if h.Len() != 1 {
		t.Fatalf("New(%s) returned %d dividers", id, h.Len())
	}
	return h.Divider()
}

func styleOf(el host.Element) (string, bool) { return el.Attr("style") }

func TestNewErrors(t *testing.T) {
	doc := newPage(t, twoSections)
	if _, err := New(doc.ByID("a")); !errors.Is(err, ErrNoHost) {
		t.Errorf("without host: err = %v, want ErrNoHost", err)
	}
	if _, err := New(nil, WithHost(doc)); !errors.Is(err, ErrNilElement) {
		t.Errorf("nil element: err = %v, want ErrNilElement", err)
	}

	SetDefaultHost(doc)
	if _, err := New(doc.ByID("a")); err != nil {
		t.Errorf("with default host: %v", err)
	}
}

func TestNewWrapsAndClips(t *testing.T) {
	doc := newPage(t, twoSections)
	b := doc.ByID("b")
	d := attach(t, doc, "b", nil)

	if d.Element().ID() != b.ID() || d.Bottom() {
		t.Fatalf("divider on %s bottom=%v, want top of b", d.Element().Tag(), d.Bottom())
	}
	wrap, ok := Outer(b).(*static.Element)
	if !ok || wrap.ID() == b.ID() {
		t.Fatal("element is not wrapped")
	}
	if b.Parent().ID() != wrap.ID() {
		t.Error("element should sit inside its wrapper")
	}
	if Inner(wrap).ID() != b.ID() {
		t.Error("Inner(wrapper) should return the element")
	}
	if _, ok := wrap.Attr("id"); ok {
		t.Error("wrapper must not copy the id")
	}
	for _, cl := range []string{"cdivs-reset", "cdivs-wrap", "cdivs-wrap-top"} {
		if !wrap.HasClass(cl) {
			t.Errorf("wrapper lacks class %s", cl)
		}
	}
	for _, cl := range []string{"cdivs-element", "cdivs-element-top"} {
		if !b.HasClass(cl) {
			t.Errorf("element lacks class %s", cl)
		}
	}

	// 1280 wide is past the last breakpoint: size 120, opaque, no clip
	// correction for the generic profile.
	if got := b.Computed("--cdivs-top"); got != "119px" {
		t.Errorf("--cdivs-top = %q, want 119px", got)
	}
	if got := b.Computed("--cdivs-bottom"); got != "0px" {
		t.Errorf("--cdivs-bottom = %q, want 0px", got)
	}
	if got := doc.ByID("a").Computed("--cdivs-offset-bottom"); got != "0px" {
		t.Errorf("opposite offset = %q, want 0px", got)
	}
	if got := d.CanvasElement().Computed("height"); got != "120px" {
		t.Errorf("canvas height = %q, want 120px", got)
	}
	if got := wrap.Computed("background-image"); got != "none" {
		t.Errorf("wrapper background-image = %q", got)
	}
}

func TestSameSeamSharesDivider(t *testing.T) {
	doc := newPage(t, twoSections)
	first := attach(t, doc, "b", nil)
	again := attach(t, doc, "b", Options{"t": "triangles"})
	if first != again {
		t.Error("second New on the same seam should return the existing divider")
	}
	bottom := attach(t, doc, "b", Options{"bt": true})
	if bottom == first {
		t.Fatal("bottom seam should get its own divider")
	}
	if Outer(first.Element()).ID() != Outer(bottom.Element()).ID() {
		t.Error("dividers of one element should share the wrapper")
	}
	if n := len(All()); n != 2 {
		t.Errorf("All() = %d dividers, want 2", n)
	}
}

func TestDestroyRestoresElement(t *testing.T) {
	doc := newPage(t, twoSections)
	b := doc.ByID("b")
	body := b.Parent()
	orig, _ := styleOf(b)

	top := attach(t, doc, "b", nil)
	bottom := attach(t, doc, "b", Options{"bottom": true})
	doc.Advance(100 * time.Millisecond)

	top.Destroy()
	if !top.Destroyed() {
		t.Error("Destroyed() = false after Destroy")
	}
	if b.Parent().ID() == body.ID() {
		t.Fatal("element unwrapped while a divider remains")
	}
	if got := b.Computed("--cdivs-top"); got != "0px" {
		t.Errorf("--cdivs-top after destroying the top divider = %q, want 0px", got)
	}
	if b.HasClass("cdivs-element-top") {
		t.Error("top element class kept")
	}

	bottom.Destroy()
	if b.Parent().ID() != body.ID() {
		t.Error("last Destroy should unwrap the element")
	}
	if got, _ := styleOf(b); got != orig {
		t.Errorf("style = %q, want %q", got, orig)
	}
	if _, ok := b.Attr("class"); ok {
		t.Error("class attribute should be gone")
	}
	if got := doc.ByID("a").Computed("--cdivs-offset-bottom"); got != "" {
		t.Errorf("opposite offset kept: %q", got)
	}
	if Outer(b).ID() != b.ID() {
		t.Error("side table still maps the element")
	}
	if n := len(All()); n != 0 {
		t.Errorf("All() = %d after destroying everything", n)
	}

	// Destroy is idempotent and a new divider wraps again.
	bottom.Destroy()
	attach(t, doc, "b", nil)
	if b.Parent().ID() == body.ID() {
		t.Error("element not wrapped again")
	}
}

func TestDestroyWithoutStyleAttribute(t *testing.T) {
	doc := newPage(t, `<html><head><style>#x { background-color: rgb(0, 128, 0) }</style></head>
<body><div id="x" data-rect="0 0 800 300"></div></body></html>`)
	h, err := New(doc.ByID("x"), WithHost(doc))
	if err != nil {
		t.Fatal(err)
	}
	h.Destroy()
	if _, ok := doc.ByID("x").Attr("style"); ok {
		t.Error("style attribute should be removed when there was none")
	}
}

func TestDiscovery(t *testing.T) {
	t.Run("transparent hands the seam to the previous sibling", func(t *testing.T) {
		doc := newPage(t, twoSections)
		d := attach(t, doc, "c", nil)
		if d.Element().ID() != doc.ByID("b").ID() || !d.Bottom() {
			t.Errorf("got bottom=%v on %v, want bottom seam of b", d.Bottom(), d.Element().ID())
		}
	})
	t.Run("ignoreTransparency keeps the element", func(t *testing.T) {
		doc := newPage(t, twoSections)
		d := attach(t, doc, "c", Options{"iT": true})
		if d.Element().ID() != doc.ByID("c").ID() || d.Bottom() {
			t.Error("element should be kept")
		}
	})
	t.Run("opposite prefers the neighbour", func(t *testing.T) {
		doc := newPage(t, twoSections)
		d := attach(t, doc, "b", Options{"op": true})
		if d.Element().ID() != doc.ByID("a").ID() || !d.Bottom() {
			t.Error("want bottom seam of a")
		}
	})
	t.Run("no neighbour", func(t *testing.T) {
		doc := newPage(t, `<html><body><div id="only" data-rect="0 0 600 200"></div></body></html>`)
		d := attach(t, doc, "only", nil)
		if d.Element().ID() != doc.ByID("only").ID() {
			t.Error("transparent element without neighbour should be kept")
		}
	})
	t.Run("wrapped neighbour", func(t *testing.T) {
		doc := newPage(t, twoSections)
		attach(t, doc, "b", Options{"bt": true})
		d := attach(t, doc, "c", nil)
		if d.Element().ID() != doc.ByID("b").ID() {
			t.Error("discovery should look through the wrapper")
		}
	})
}

func TestTransparency(t *testing.T) {
	doc := newPage(t, `<html><body>
<div id="none"></div>
<div id="half" style="background-color: rgba(0, 0, 0, .5)"></div>
<div id="faded" style="background-color: rgb(0, 0, 0); opacity: .9"></div>
<div id="image" style="background-image: url(x.png)"></div>
</body></html>`)
	for _, tt := range []struct {
		id                string
		transparent, semi bool
	}{
		{"none", true, false},
		{"half", false, true},
		{"faded", false, true},
		{"image", false, false},
	} {
		el := doc.ByID(tt.id)
		if got := IsTransparent(el); got != tt.transparent {
			t.Errorf("IsTransparent(%s) = %v, want %v", tt.id, got, tt.transparent)
		}
		if got := IsSemiTransparent(el); got != tt.semi {
			t.Errorf("IsSemiTransparent(%s) = %v, want %v", tt.id, got, tt.semi)
		}
	}
}

func TestBreakpoints(t *testing.T) {
	doc := newPage(t, twoSections, static.WithViewport(host.Viewport{W: 700, H: 800, DPR: 1}))
	d := attach(t, doc, "b", Options{"s": []any{40.0, 60.0}})
	if got := d.CurrentOptions()["size"]; got != 40.0 {
		t.Fatalf("size at 700px = %v, want 40", got)
	}
	doc.Advance(50 * time.Millisecond)
	if got := d.Canvas().H(); got != 40 {
		t.Errorf("canvas height = %d, want 40", got)
	}

	doc.SetViewport(host.Viewport{W: 1000, H: 800, DPR: 2})
	ResizeAll()
	if got := d.CurrentOptions()["size"]; got != 60.0 {
		t.Errorf("size at 1000px = %v, want the last entry 60", got)
	}
	if got := d.CanvasElement().Computed("height"); got != "60px" {
		t.Errorf("canvas style height = %q, want 60px", got)
	}
	doc.Advance(50 * time.Millisecond)
	if got := d.Canvas().H(); got != 120 {
		t.Errorf("canvas height at 2x = %d, want 120", got)
	}
	if got, _ := d.Options()["size"].([]any); len(got) != 2 {
		t.Errorf("Options() should keep the array, got %v", d.Options()["size"])
	}
}

func TestViewportChangeFollowsBreakpoints(t *testing.T) {
	doc := newPage(t, twoSections, static.WithViewport(host.Viewport{W: 700, H: 800, DPR: 1}))
	d := attach(t, doc, "b", Options{"s": []any{40.0, 60.0}})
	doc.Advance(50 * time.Millisecond)

	doc.SetViewport(host.Viewport{W: 1000, H: 800, DPR: 1})
	doc.Flush()
	if got := d.CurrentOptions()["size"]; got != 60.0 {
		t.Errorf("size after the viewport grew = %v, want 60", got)
	}

	d.Destroy()
	if len(viewports) != 0 {
		t.Errorf("viewport observations left = %d, want 0", len(viewports))
	}
}

func TestDrawPaintsBackground(t *testing.T) {
	doc := newPage(t, twoSections)
	d := attach(t, doc, "b", Options{"d": []any{0.0}, "dc": false})
	doc.Advance(100 * time.Millisecond)

	img := d.Canvas().Image()
	if img.Rect.Dx() != 1280 || img.Rect.Dy() != 120 {
		t.Fatalf("canvas = %v, want 1280x120", img.Rect)
	}
	var painted, clear int
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < img.Rect.Dx(); x += 8 {
			p := img.RGBAAt(x, y)
			switch {
			case p.A == 0:
				clear++
			case p.R != 0 || p.G != 0:
				t.Fatalf("pixel (%d,%d) = %v is not the element's blue", x, y, p)
			default:
				painted++
			}
		}
	}
	if painted == 0 {
		t.Error("nothing painted")
	}
	if clear == 0 {
		t.Error("shape covers the whole surface")
	}
}

func TestSetOptionsKeepsAnimationPhase(t *testing.T) {
	doc := newPage(t, twoSections)
	d := attach(t, doc, "b", nil)
	doc.Advance(500 * time.Millisecond)

	before := d.AnimationTimes()
	if len(before) == 0 || before[0] <= 0 {
		t.Fatalf("animation did not run: %v", before)
	}
	d.SetOptions(Options{"d": []any{4000.0}})
	after := d.AnimationTimes()
	if math.Abs(after[0]-2*before[0]) > 1e-6 {
		t.Errorf("time after doubling the duration = %v, want %v", after[0], 2*before[0])
	}
	if got := d.Renderers()[0].Clock().Dur; got != 4000 {
		t.Errorf("Dur = %v, want 4000", got)
	}
}

func TestAdditionalShapes(t *testing.T) {
	doc := newPage(t, twoSections)
	d := attach(t, doc, "b", Options{"aT": "a", "aC": 3.0, "sl": .5})
	rs := d.Renderers()
	if len(rs) != 4 {
		t.Fatalf("renderers = %d, want 4", len(rs))
	}
	if top := rs[0].Options().Top; top != .5 {
		t.Errorf("primary Top = %v, want .5", top)
	}
	last := rs[3].Options()
	if last.Top != 0 || last.Bottom != .5 {
		t.Errorf("last additive Top/Bottom = %v/%v, want 0/.5", last.Top, last.Bottom)
	}

	d.SetOptions(Options{"aT": false})
	if n := len(d.Renderers()); n != 1 {
		t.Errorf("renderers without addType = %d, want 1", n)
	}
}

func TestUnderlay(t *testing.T) {
	doc := newPage(t, twoSections)
	d := attach(t, doc, "b", Options{"u": .5})
	wrap := Outer(d.Element()).(*static.Element)
	if !wrap.HasClass("cdivs-underlay") {
		t.Error("numeric underlay should add the underlay class")
	}
	if got := wrap.Computed("margin-top"); got != "-61px" {
		t.Errorf("margin-top = %q, want -61px", got)
	}
	if got := doc.ByID("a").Computed("--cdivs-offset-bottom"); got != "120px" {
		t.Errorf("opposite offset = %q, want 120px", got)
	}
	d.SetOptions(Options{"u": false})
	if got := wrap.Computed("margin-top"); got != "" {
		t.Errorf("margin-top after disabling underlay = %q, want cleared", got)
	}
}

func TestDestroyRestoresNeighbour(t *testing.T) {
	doc := newPage(t, twoSections)
	a, c := doc.ByID("a"), doc.ByID("c")
	origA, _ := styleOf(a)

	top := attach(t, doc, "b", Options{"underlay": true})
	bottom := attach(t, doc, "b", Options{"bottom": true, "underlay": true})
	doc.Advance(100 * time.Millisecond)
	if got := a.Computed("--cdivs-offset-bottom"); got == "" {
		t.Fatal("opposite offset not set on the neighbour above")
	}

	top.Destroy()
	bottom.Destroy()
	if got, ok := styleOf(a); !ok || got != origA {
		t.Errorf("neighbour style = %q, want %q", got, origA)
	}
	if got, ok := styleOf(c); ok {
		t.Errorf("neighbour without a style attribute got %q", got)
	}
}

func TestDestroyKeepsForeignNeighbourStyle(t *testing.T) {
	doc := newPage(t, twoSections)
	a := doc.ByID("a")
	d := attach(t, doc, "b", Options{"underlay": true})
	doc.Advance(100 * time.Millisecond)

	a.SetStyle("color", "white")
	d.Destroy()
	if got := a.Computed("color"); got != "white" {
		t.Errorf("color = %q, want the later change kept", got)
	}
	if got := a.Computed("--cdivs-offset-bottom"); got != "" {
		t.Errorf("opposite offset = %q, want removed", got)
	}
}

func TestTimedScroll(t *testing.T) {
	doc := newPage(t, twoSections)
	d := attach(t, doc, "b", Options{"d": []any{0.0}, "sc": 300.0})
	doc.Advance(50 * time.Millisecond)
	if n := d.surf.Draw.Count(); n != 0 {
		t.Fatalf("draw requests before scrolling = %d, want 0", n)
	}

	doc.ScrollTo(0, 10)
	doc.ScrollTo(0, 20)
	if n := d.surf.Draw.Count(); n != 1 {
		t.Errorf("draw requests while scrolling = %d, want 1", n)
	}
	doc.Advance(200 * time.Millisecond)
	if !d.longScroll {
		t.Error("dwell should not have expired yet")
	}
	doc.Advance(200 * time.Millisecond)
	if d.longScroll || d.surf.Draw.Count() != 0 {
		t.Errorf("after dwell: longScroll=%v requests=%d", d.longScroll, d.surf.Draw.Count())
	}
}

func TestUnknownOptionKept(t *testing.T) {
	doc := newPage(t, twoSections)
	d := attach(t, doc, "b", Options{"colour": "red"})
	if got := d.Options()["colour"]; got != "red" {
		t.Errorf("unknown option = %v, want kept", got)
	}
}

func TestAttach(t *testing.T) {
	doc := newPage(t, twoSections)
	h, err := Attach([]host.Element{doc.ByID("a"), doc.ByID("b"), nil}, WithHost(doc))
	if !errors.Is(err, ErrNilElement) {
		t.Errorf("err = %v, want ErrNilElement joined", err)
	}
	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}
	h.SetOptions(Options{"t": "triangles"})
	for _, o := range h.CurrentOptions() {
		if o["type"] != "triangles" {
			t.Errorf("type = %v", o["type"])
		}
	}
	h.Destroy()
	if len(All()) != 0 {
		t.Error("Destroy should detach every divider")
	}
}
