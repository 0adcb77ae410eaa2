package scheduler

import (
	"strings"
	"testing"

	"github.com/gogpu/cdivs/host"
	"github.com/gogpu/cdivs/host/static"
)

func setup(t *testing.T) (*static.Document, host.Element) {
	t.Helper()
	d, err := static.ParseString(`<div id="c" style="height: 100px"></div>`)
	if err != nil {
		t.Fatal(err)
	}
	return d, d.ByID("c")
}

func TestInvisibleSurfaceNeverQueued(t *testing.T) {
	d, el := setup(t)
	m := New(d)
	ran := false
	s := m.Observe(el, Funcs{Draw: func(float64) { ran = true }})
	d.SetVisible(el, false)
	d.Flush()

	check := func(when string) {
		t.Helper()
		for p := Style; p <= Draw; p++ {
			if n := m.Pending(p); n != 0 {
				t.Errorf("%s: %s worklist has %d entries", when, p, n)
			}
		}
		if d.PendingFrames() != 0 || m.Running() {
			t.Errorf("%s: frame requested", when)
		}
	}
	check("idle")

	s.Draw.Req()
	s.Style.Req()
	check("requested while hidden")
	d.Step(16)
	if ran {
		t.Error("hidden surface ran")
	}

	d.SetVisible(el, true)
	d.Step(16)
	if !s.Draw.Queued() || !m.Running() {
		t.Error("visible requested surface must be queued")
	}
}

func TestPhaseOrderAndOneShot(t *testing.T) {
	d, el := setup(t)
	m := New(d)
	var log []string
	rec := func(name string) func(float64) { return func(float64) { log = append(log, name) } }
	s := m.Observe(el, Funcs{Style: rec("style"), Iterate: rec("iterate"), Draw: rec("draw")})
	d.Flush()

	s.Draw.Req()
	s.Iterate.Req()
	s.Style.ReqOnce()
	d.Step(16)
	if got := strings.Join(log, ","); got != "style,iterate,draw" {
		t.Errorf("order = %s", got)
	}
	if s.Style.Queued() {
		t.Error("one-shot callback must leave the worklist after running")
	}

	log = nil
	d.Step(16)
	if got := strings.Join(log, ","); got != "iterate,draw" {
		t.Errorf("second frame = %s", got)
	}
}

func TestOneShotRunsWhileHidden(t *testing.T) {
	d, el := setup(t)
	m := New(d)
	runs := 0
	s := m.Observe(el, Funcs{Draw: func(float64) { runs++ }})
	d.SetVisible(el, false)
	d.Flush()
	s.Request(true)
	d.Step(16)
	d.Step(16)
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
	if m.Running() {
		t.Error("manager should stop once the worklists drain")
	}
}

func TestDeltaClamped(t *testing.T) {
	d, el := setup(t)
	m := New(d)
	var dts []float64
	s := m.Observe(el, Funcs{Iterate: func(dt float64) { dts = append(dts, dt) }})
	d.Flush()
	s.Iterate.Req()
	d.Step(16)
	d.Step(20)
	d.Step(400)
	want := []float64{16, 20, MaxDelta}
	if len(dts) != len(want) {
		t.Fatalf("dts = %v", dts)
	}
	for i := range want {
		if dts[i] != want[i] {
			t.Errorf("dt[%d] = %v, want %v", i, dts[i], want[i])
		}
	}
}

func TestUnreqStop(t *testing.T) {
	d, el := setup(t)
	m := New(d)
	s := m.Observe(el, Funcs{})
	d.Flush()
	s.Draw.Req()
	s.Draw.Req()
	s.Draw.Unreq(false)
	if !s.Draw.Queued() || s.Draw.Count() != 1 {
		t.Error("one request must remain")
	}
	s.Draw.ReqOnce()
	s.Draw.Unreq(true)
	if s.Draw.Queued() || s.Draw.Count() != 0 {
		t.Error("stop must drop every request")
	}
	s.Draw.Unreq(false)
	if s.Draw.Count() != 0 {
		t.Error("count must not go negative")
	}
}

func TestUnobserveHaltsTicks(t *testing.T) {
	d, el := setup(t)
	m := New(d)
	runs := 0
	s := m.Observe(el, Funcs{Draw: func(float64) { runs++ }})
	d.Flush()
	s.Draw.Req()
	d.Step(16)
	m.Unobserve(s)
	d.Step(16)
	s.Draw.Req()
	d.Step(16)
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
	if m.Pending(Draw) != 0 {
		t.Error("unobserved surface still queued")
	}
}

func TestStylePhaseHook(t *testing.T) {
	d, el := setup(t)
	m := New(d)
	passes := 0
	m.OnStylePhase(func() { passes++ })
	s := m.Observe(el, Funcs{})
	d.Flush()
	s.Draw.Req()
	d.Step(16)
	if passes != 0 {
		t.Error("hook must not run without style work")
	}
	s.Request(true)
	d.Step(16)
	d.Step(16)
	if passes != 1 {
		t.Errorf("passes = %d, want 1", passes)
	}
}

func TestSurfaceRectInPageSpace(t *testing.T) {
	d, el := setup(t)
	m := New(d)
	d.ScrollTo(0, 30)
	s := m.Observe(el, Funcs{})
	d.Flush()
	if r := s.Rect(); r.Y != 0 || r.H != 100 {
		t.Errorf("rect = %+v", r)
	}
	if !s.Visible() {
		t.Error("surface should be visible")
	}
}

func TestDefault(t *testing.T) {
	t.Cleanup(Reset)
	d, _ := setup(t)
	m := Default(d)
	if Default(d) != m {
		t.Error("default must be reused for the same host")
	}
	Reset()
	if Default(d) == m {
		t.Error("reset must drop the default")
	}
	other := New(d)
	SetDefault(other)
	if Default(d) != other {
		t.Error("SetDefault ignored")
	}
}

func TestDefaultPerHost(t *testing.T) {
	t.Cleanup(Reset)
	d1, el := setup(t)
	d2, _ := setup(t)
	m1 := Default(d1)
	runs := 0
	s := m1.Observe(el, Funcs{Draw: func(float64) { runs++ }})
	d1.Flush()
	s.Draw.Req()

	if m2 := Default(d2); m2 == m1 {
		t.Fatal("a second host must get its own manager")
	}
	if Default(d1) != m1 {
		t.Error("the first host's manager was replaced")
	}
	d1.Step(16)
	if runs != 1 {
		t.Errorf("surface on the first manager ran %d times, want 1", runs)
	}
}

func TestWorklistRunsNewestFirst(t *testing.T) {
	d, err := static.ParseString(`<div id="a" style="height: 100px"></div><div id="b" style="height: 100px"></div>`)
	if err != nil {
		t.Fatal(err)
	}
	m := New(d)
	var log []string
	var sa, sb *Surface
	sa = m.Observe(d.ByID("a"), Funcs{Draw: func(float64) { log = append(log, "a") }})
	sb = m.Observe(d.ByID("b"), Funcs{Draw: func(float64) {
		log = append(log, "b")
		m.Unobserve(sa)
	}})
	d.Flush()
	sa.Draw.Req()
	sb.Draw.Req()
	d.Step(16)
	if got := strings.Join(log, ","); got != "b" {
		t.Errorf("order = %s, want b only once it unobserves a", got)
	}
}
