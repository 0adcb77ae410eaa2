package shape

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/gogpu/cdivs/canvas"
)

const eps = 1e-9

func TestParseHeader(t *testing.T) {
	tests := []struct {
		in   string
		want Header
	}{
		{"0", Header{DelayMul: 1, XRepeat: 1, YRepeat: 1}},
		{"1 2", Header{Start: Num{V: 1}, InvertType: 2, DelayMul: 1, XRepeat: 1, YRepeat: 1}},
		{"1S 3 1 2rf 1", Header{
			Start: Num{1, FlagShift}, InvertType: 3, DelayMul: 1,
			Width: Num{2, FlagRelative | FlagFit}, Height: Num{V: 1},
			XRepeat: 1, YRepeat: 1,
		}},
		{"0s 0 1 16 16 1 0", Header{
			Start: Num{0, FlagStatic}, DelayMul: 1,
			Width: Num{V: 16}, Height: Num{V: 16}, XRepeat: 1, YRepeat: 0,
		}},
		{"1S 1 5 2rf 1 0 1", Header{
			Start: Num{1, FlagShift}, InvertType: 1, DelayMul: 5,
			Width: Num{2, FlagRelative | FlagFit}, Height: Num{V: 1}, XRepeat: 0, YRepeat: 1,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHeader(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseHeader mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseHeaderBadFlag(t *testing.T) {
	if _, err := ParseHeader("1X 1"); !errors.Is(err, ErrSyntax) {
		t.Errorf("err = %v, want ErrSyntax", err)
	}
}

func TestParseCommandsExpands(t *testing.T) {
	tests := []struct {
		in   string
		ops  []Op
		lens []int
	}{
		{"M 0 1 0 .9 .2 .8", []Op{MoveTo, LineTo, LineTo}, []int{2, 2, 2}},
		{"L 0 1 .5 a0/.5 1 1", []Op{LineTo, LineTo, LineTo}, []int{2, 2, 2}},
		{"L 0 1 T .5 a0/.5 1 1 2 1 1", []Op{LineTo, ArcTo, ArcTo}, []int{2, 5, 2}},
		{"M .5$2 .5 A .5 .5 $1 -1 1.2", []Op{MoveTo, Arc}, []int{2, 5}},
		{"Ls 0 1 L 0 a.3$2/.2$2 .5 a0$1/.1$1", []Op{LineTo, LineTo, LineTo}, []int{2, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cmds, err := ParseCommands(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			var ops []Op
			var lens []int
			for _, c := range cmds {
				ops = append(ops, c.Op)
				lens = append(lens, len(c.Coords))
			}
			if diff := cmp.Diff(tt.ops, ops); diff != "" {
				t.Errorf("ops (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.lens, lens); diff != "" {
				t.Errorf("coord counts (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCommandsPlacementCarries(t *testing.T) {
	cmds, err := ParseCommands("Ls 0 1 1 1 L 0 0")
	if err != nil {
		t.Fatal(err)
	}
	want := []Placement{First, First, Everywhere}
	for i, c := range cmds {
		if c.Place != want[i] {
			t.Errorf("cmd %d placement = %q, want %q", i, c.Place, want[i])
		}
	}
}

func TestParseCommandsErrors(t *testing.T) {
	for _, in := range []string{"0 1", "X 0 0", "Lq 0 0"} {
		if _, err := ParseCommands(in); !errors.Is(err, ErrSyntax) {
			t.Errorf("ParseCommands(%q) err = %v, want ErrSyntax", in, err)
		}
	}
}

func TestParseCoord(t *testing.T) {
	tests := []struct {
		in   string
		want Coord
	}{
		{".5", Coord{Frac: .5, Size: -1}},
		{"-.05", Coord{Frac: -.05, Size: -1}},
		{"~10", Coord{Frac: 1, Px: -10, Size: -1}},
		{".5~10", Coord{Frac: .5, Px: -10, Size: -1}},
		{".5#1", Coord{Frac: .5, Px: 1, Size: -1}},
		{"#-13", Coord{Px: -13, Size: -1}},
		{".5$2", Coord{Frac: .5, Dyn: 2, Size: -1}},
		{"@4", Coord{Kind: Ref, Ref: 4, Size: -1}},
		{"s0.07", Coord{Frac: .07, Size: 0}},
		{"s3a.1/.08", Coord{Kind: Anim, Size: 3, Items: []Coord{
			{Frac: .1, Size: 3}, {Frac: .08, Size: 3},
		}}},
		{"1a0/1", Coord{Kind: Anim, Key: 1, Size: -1, Items: []Coord{
			{Size: -1}, {Frac: 1, Size: -1},
		}}},
		{"d-.4ia0/.3,a1/.7", Coord{Kind: Index, Delay: -.4, Size: -1, Items: []Coord{
			{Kind: Anim, Delay: -.4, Size: -1, Items: []Coord{{Size: -1}, {Frac: .3, Size: -1}}},
			{Kind: Anim, Delay: -.4, Size: -1, Items: []Coord{{Frac: 1, Size: -1}, {Frac: .7, Size: -1}}},
		}}},
		{"p0_1", Coord{Kind: Parallax, Size: -1, Items: []Coord{{Size: -1}, {Frac: 1, Size: -1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCoord(tt.in, 0, -1)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, eps), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("parseCoord(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestCompileDeterministic(t *testing.T) {
	Reset()
	defs, err := ParseLibrary(builtinYAML)
	if err != nil {
		t.Fatal(err)
	}
	ignoreFunc := cmpopts.IgnoreFields(Program{}, "Dynamic")
	for _, d := range defs {
		t.Run(d.Name, func(t *testing.T) {
			a, err := Compile(d)
			if err != nil {
				t.Fatal(err)
			}
			b, err := Compile(d)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(a, b, ignoreFunc); diff != "" {
				t.Errorf("compile not deterministic (-first +second):\n%s", diff)
			}
			if (a.Dynamic == nil) != (d.Dynamic == "") {
				t.Errorf("dynamic bound = %v, def %q", a.Dynamic != nil, d.Dynamic)
			}
		})
	}
}

func TestLookupCachesAndResolvesAbbr(t *testing.T) {
	Reset()
	full := Lookup("waves")
	if abbr := Lookup("ws"); abbr != full {
		t.Error("abbreviation compiled a second program")
	}
	if again := Lookup("waves"); again != full {
		t.Error("program not cached")
	}
	if full.Name != "waves" || !full.Shifts() || full.Static() {
		t.Errorf("waves = %+v", full.Header)
	}
}

func TestLookupUnknownIsEmpty(t *testing.T) {
	Reset()
	if _, err := Find("no-such-shape"); !errors.Is(err, ErrUnknownShape) {
		t.Fatalf("Find err = %v, want ErrUnknownShape", err)
	}
	p := Lookup("no-such-shape")
	if p.Name != Empty {
		t.Errorf("Lookup fallback = %q, want %q", p.Name, Empty)
	}
}

func TestRegisterWithParent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	err := Register(Def{Name: "steepSkew", Abbr: "ss", Header: "1 1 2", Parent: "s"})
	if err != nil {
		t.Fatal(err)
	}
	p := Lookup("ss")
	base := Lookup("skew")
	if diff := cmp.Diff(base.Commands, p.Commands); diff != "" {
		t.Errorf("commands not inherited (-parent +child):\n%s", diff)
	}
	if p.Header.DelayMul != 2 {
		t.Errorf("DelayMul = %v, want 2", p.Header.DelayMul)
	}

	if err := Register(Def{Name: "broken", Header: "1", Commands: "Z 0"}); !errors.Is(err, ErrSyntax) {
		t.Errorf("Register(broken) err = %v, want ErrSyntax", err)
	}
	if err := Register(Def{Name: "orphan", Parent: "missing"}); !errors.Is(err, ErrUnknownShape) {
		t.Errorf("Register(orphan) err = %v, want ErrUnknownShape", err)
	}
}

func TestRegisterInvalidatesChildren(t *testing.T) {
	Reset()
	canvas.ResetScratch()
	t.Cleanup(Reset)
	if err := Register(Def{Name: "dotsBase", Header: "0s 0 1 10 10", Commands: "R .5 .5 #1 #1"}); err != nil {
		t.Fatal(err)
	}
	if err := Register(Def{Name: "dotsChild", Parent: "dotsBase"}); err != nil {
		t.Fatal(err)
	}
	before := Lookup("dotsChild")
	r := NewRenderer(Options{Type: "dotsChild", Opacity: 1, Strength: 1})
	r.Prepare(40, 20, nil)
	if tiles.Len() != 1 {
		t.Fatalf("tile cache len = %d, want 1", tiles.Len())
	}

	if err := Register(Def{Name: "dotsBase", Header: "0s 0 1 10 10", Commands: "R .25 .25 #2 #2"}); err != nil {
		t.Fatal(err)
	}
	after := Lookup("dotsChild")
	if after == before {
		t.Error("child program not recompiled after its parent changed")
	}
	if diff := cmp.Diff(Lookup("dotsBase").Commands, after.Commands); diff != "" {
		t.Errorf("child commands stale (-parent +child):\n%s", diff)
	}
	if tiles.Len() != 0 {
		t.Errorf("tile cache len after re-register = %d, want 0", tiles.Len())
	}
}

func TestNamesIncludeBuiltins(t *testing.T) {
	Reset()
	names := Names()
	for _, want := range []string{"skew", "waves", "clouds", "pattern3", "_lines", "_arcs", Empty} {
		found := false
		for _, n := range names {
			found = found || n == want
		}
		if !found {
			t.Errorf("Names() missing %q", want)
		}
	}
	if Abbr("waves") != "ws" {
		t.Errorf("Abbr(waves) = %q", Abbr("waves"))
	}
}

func TestEasings(t *testing.T) {
	for _, name := range EasingNames() {
		e, _ := EasingByName(name)
		if math.Abs(e(0)) > eps || math.Abs(e(1)-1) > eps {
			t.Errorf("%s: e(0)=%v e(1)=%v", name, e(0), e(1))
		}
	}
	tests := []struct {
		name string
		t    float64
		want float64
	}{
		{"linear", .3, .3},
		{"in", .5, .25},
		{"out", .5, .75},
		{"inOut", .25, .125},
		{"inOut", .75, .875},
		{"cubicIn", .5, .125},
		{"cubicOut", .5, .875},
		{"cubicInOut", .25, .0625},
		{"cubicInOut", .75, .9375},
	}
	for _, tt := range tests {
		e, ok := EasingByName(tt.name)
		if !ok {
			t.Fatalf("easing %q missing", tt.name)
		}
		if got := e(tt.t); math.Abs(got-tt.want) > eps {
			t.Errorf("%s(%v) = %v, want %v", tt.name, tt.t, got, tt.want)
		}
	}
}

func TestClockPhaseReverses(t *testing.T) {
	c := NewClock()
	c.Easing, _ = EasingByName("linear")
	tests := []struct {
		total, offset, want float64
	}{
		{0, 0, 0},
		{250, 0, .25},
		{1000, 0, 1},
		{1250, 0, .75},
		{2000, 0, 0},
		{0, 500, .5},
	}
	for _, tt := range tests {
		c.Total = tt.total
		if got := c.Phase(tt.offset); math.Abs(got-tt.want) > eps {
			t.Errorf("Phase at %v+%v = %v, want %v", tt.total, tt.offset, got, tt.want)
		}
	}
}

func TestKeyframes(t *testing.T) {
	vals := []float64{10, 20, 40}
	keys := []float64{.2, .6, 1}
	tests := []struct{ t, want float64 }{
		{0, 10},
		{.2, 10},
		{.4, 15},
		{.8, 30},
		{1.5, 40},
	}
	for _, tt := range tests {
		if got := Keyframes(vals, keys, tt.t); math.Abs(got-tt.want) > eps {
			t.Errorf("Keyframes(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestLayoutPattern(t *testing.T) {
	Reset()
	p := Lookup("waves")
	g := Layout(1000, 100, p.Header, true, 1, 1)
	want := Grid{
		Width: 334, Height: 100, SegWidth: 167, SegHeight: 100,
		XCount: 5, YCount: 1, XRepeat: 2, YRepeat: 1,
	}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("Layout mismatch (-want +got):\n%s", diff)
	}

	g = Layout(1000, 100, p.Header, false, 1, 1)
	if g.SegWidth != 180 {
		t.Errorf("unfitted SegWidth = %v, want 180", g.SegWidth)
	}
}

func TestLayoutFullWidth(t *testing.T) {
	Reset()
	g := Layout(1000, 100, Lookup("skew").Header, true, 1, 2)
	want := Grid{Width: 1000, Height: 100, SegWidth: 1000, SegHeight: 100, XCount: 1, YCount: 1, XRepeat: 1, YRepeat: 1}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("Layout mismatch (-want +got):\n%s", diff)
	}
}

// recorder logs the path commands a renderer issues.
type recorder struct {
	h     int
	calls []string
	alpha float64
}

func (r *recorder) add(op string, args ...float64) {
	parts := []string{op}
	for _, a := range args {
		parts = append(parts, fmt.Sprintf("%g", math.Round(a*1000)/1000))
	}
	r.calls = append(r.calls, strings.Join(parts, " "))
}

func (r *recorder) H() int                  { return r.h }
func (r *recorder) SetAlpha(a float64)      { r.alpha = a }
func (r *recorder) SetLineWidth(float64)    {}
func (r *recorder) BeginPath()              { r.calls = r.calls[:0] }
func (r *recorder) MoveTo(x, y float64)     { r.add("M", x, y) }
func (r *recorder) LineTo(x, y float64)     { r.add("L", x, y) }
func (r *recorder) Rect(x, y, w, h float64) { r.add("R", x, y, w, h) }
func (r *recorder) Arc(x, y, rad, a0, a1 float64, ccw bool) {
	r.add("A", x, y, rad, a0, a1)
}
func (r *recorder) ArcTo(x1, y1, x2, y2, rad float64) { r.add("T", x1, y1, x2, y2, rad) }
func (r *recorder) Ellipse(x, y, rx, ry, rot, a0, a1 float64, ccw bool) {
	r.add("E", x, y, rx, ry, rot, a0, a1)
}
func (r *recorder) QuadTo(cx, cy, x, y float64) { r.add("Q", cx, cy, x, y) }
func (r *recorder) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	r.add("C", c1x, c1y, c2x, c2y, x, y)
}
func (r *recorder) Fill()                           { r.add("fill") }
func (r *recorder) Stroke()                         { r.add("stroke") }
func (r *recorder) FillAll(canvas.Paint, canvas.Op) { r.add("fillAll") }

func skewRenderer(strength float64, inverted bool) *Renderer {
	r := NewRenderer(Options{Type: "skew", Opacity: 1, Strength: strength, Inverted: inverted, UseAnim: true})
	r.Prepare(1000, 100, nil)
	return r
}

func TestSkewScenario(t *testing.T) {
	Reset()
	tests := []struct {
		name     string
		strength float64
		inverted bool
		advance  float64
		want     []string
	}{
		{"phase 0", 1, false, 0, []string{"M 0 102", "L 0 100", "L 0 0", "L 1000 100", "L 1000 100", "L 1000 102", "fill"}},
		{"phase 1", 1, false, 1000, []string{"M 0 102", "L 0 100", "L 0 50", "L 1000 100", "L 1000 100", "L 1000 102", "fill"}},
		{"half strength", .5, false, 1000, []string{"M 0 102", "L 0 100", "L 0 25", "L 1000 100", "L 1000 100", "L 1000 102", "fill"}},
		{"frozen", 0, false, 1000, []string{"M 0 102", "L 0 100", "L 0 0", "L 1000 100", "L 1000 100", "L 1000 102", "fill"}},
		{"inverted", 1, true, 1000, []string{"M 1000 102", "L 1000 100", "L 1000 50", "L 0 100", "L 0 100", "L 0 102", "fill"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := skewRenderer(tt.strength, tt.inverted)
			r.Iterate(tt.advance)
			rec := &recorder{h: 100}
			r.Draw(rec, 0)
			if diff := cmp.Diff(tt.want, rec.calls); diff != "" {
				t.Errorf("draw mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpaqueSeamTrimsBottom(t *testing.T) {
	Reset()
	r := NewRenderer(Options{Type: "skew", Opacity: 1, Strength: 1, IsOpaque: true})
	r.Prepare(1000, 100, nil)
	rec := &recorder{h: 100}
	r.Draw(rec, 0)
	if rec.calls[1] != "L 0 99" {
		t.Errorf("closing edge = %q, want %q", rec.calls[1], "L 0 99")
	}
}

func TestIterateShift(t *testing.T) {
	Reset()
	r := NewRenderer(Options{Type: "waves", Opacity: 1, Strength: 1, SegFit: true, ShiftDur: 1000})
	r.Prepare(1000, 100, nil)
	r.Iterate(500)
	if math.Abs(r.Shift()-50) > eps {
		t.Errorf("Shift = %v, want 50", r.Shift())
	}
	if r.Clock().Total != 0 {
		t.Errorf("clock advanced without UseAnim: %v", r.Clock().Total)
	}

	r = NewRenderer(Options{Type: "skew", Opacity: 1, ShiftDur: 1000})
	r.Prepare(1000, 100, nil)
	r.Iterate(500)
	if r.Shift() != 0 {
		t.Errorf("non-shift shape shifted by %v", r.Shift())
	}
}

func TestOpacityRestored(t *testing.T) {
	Reset()
	r := NewRenderer(Options{Type: "skew", Opacity: .5, Strength: 1})
	r.Prepare(100, 10, nil)
	rec := &recorder{h: 10}
	r.Draw(rec, 0)
	if rec.alpha != 1 {
		t.Errorf("alpha after draw = %v, want 1", rec.alpha)
	}
}

func TestStaticShapeUsesPattern(t *testing.T) {
	Reset()
	canvas.ResetScratch()
	r := NewRenderer(Options{Type: "_do", Opacity: 1, Strength: 1})
	r.Prepare(40, 20, nil)

	rec := &recorder{h: 20}
	r.Draw(rec, 0)
	if diff := cmp.Diff([]string{"fillAll"}, rec.calls); diff != "" {
		t.Errorf("static draw (-want +got):\n%s", diff)
	}

	c := canvas.New(40, 20)
	r.Draw(c, 0)
	for _, p := range [][2]int{{5, 5}, {15, 5}, {25, 15}} {
		if a := c.Image().RGBAAt(p[0], p[1]).A; a != 255 {
			t.Errorf("dot at %v alpha = %d, want 255", p, a)
		}
	}
	if a := c.Image().RGBAAt(0, 0).A; a != 0 {
		t.Errorf("gap alpha = %d, want 0", a)
	}
	if tiles.Len() != 1 {
		t.Errorf("tile cache len = %d, want 1", tiles.Len())
	}
}

func TestDynamicValues(t *testing.T) {
	Reset()
	r := NewRenderer(Options{Type: "_squares", Opacity: 1, Strength: 1})
	g := Layout(32, 32, r.Program().Header, false, 1, 1)
	if g.YRepeat != 2 {
		t.Fatalf("YRepeat = %d, want 2", g.YRepeat)
	}
	r.grid = g
	steps := r.bind(InvertNone)
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
	// Row 0: hp=0 gives [4, 8]; row 1: hp=1 gives [7, 2], offset by the row.
	want := [][]float64{{4, 4, 8, 8}, {7, 23, 2, 2}}
	for i, st := range steps {
		for j, a := range st.args {
			if math.Abs(a.v-want[i][j]) > eps {
				t.Errorf("step %d arg %d = %v, want %v", i, j, a.v, want[i][j])
			}
		}
	}
}
