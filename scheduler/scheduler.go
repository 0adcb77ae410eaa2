// Package scheduler drives per-frame work for drawing surfaces.
//
// Every surface registers three callbacks, run each frame in a fixed
// order: style, iterate, draw. A callback is queued only while its surface
// is visible and it has outstanding requests, or while it holds a one-shot
// request. The manager asks the host for a frame only while some callback
// is queued.
package scheduler

import (
	"slices"

	"github.com/gogpu/cdivs/host"
	"github.com/gogpu/cdivs/internal/logx"
)

// MaxDelta caps the time step passed to callbacks, in milliseconds.
const MaxDelta = 50.0

// Phase indexes the three worklists.
type Phase int

const (
	Style Phase = iota
	Iterate
	Draw
)

func (p Phase) String() string {
	switch p {
	case Style:
		return "style"
	case Iterate:
		return "iterate"
	}
	return "draw"
}

// Host is what a Manager needs from the page.
type Host interface {
	host.Frames
	Viewport() host.Viewport
	ObserveIntersection(el host.Element, fn func(visible bool, r host.Rect)) (stop func())
}

// Funcs are the per-phase callbacks of a surface. dt is in milliseconds.
// Nil entries are skipped.
type Funcs struct {
	Style, Iterate, Draw func(dt float64)
}

// Manager owns the three worklists.
type Manager struct {
	host    Host
	lists   [3][]*Callback
	running bool
	last    float64
	hooks   []func()
}

// New returns a manager that schedules frames on h.
func New(h Host) *Manager { return &Manager{host: h} }

// OnStylePhase registers fn to run at the start of every non-empty style
// phase.
func (m *Manager) OnStylePhase(fn func()) { m.hooks = append(m.hooks, fn) }

// Running reports whether a frame is outstanding.
func (m *Manager) Running() bool { return m.running }

// Pending returns the number of queued callbacks in phase p.
func (m *Manager) Pending(p Phase) int { return len(m.lists[p]) }

// Observe registers a surface for el. Visibility follows intersection
// observation of el.
func (m *Manager) Observe(el host.Element, fns Funcs) *Surface {
	s := &Surface{m: m, el: el}
	s.Style = &Callback{s: s, phase: Style, fn: fns.Style}
	s.Iterate = &Callback{s: s, phase: Iterate, fn: fns.Iterate}
	s.Draw = &Callback{s: s, phase: Draw, fn: fns.Draw}
	if el == nil {
		s.visible = true
		return s
	}
	s.stop = m.host.ObserveIntersection(el, func(visible bool, r host.Rect) {
		if s.dead {
			return
		}
		vp := m.host.Viewport()
		s.rect = r.Move(vp.ScrollX, vp.ScrollY)
		s.visible = visible
		s.rebuild()
	})
	return s
}

// Unobserve removes s from every worklist immediately.
func (m *Manager) Unobserve(s *Surface) {
	if s.dead {
		return
	}
	s.dead = true
	if s.stop != nil {
		s.stop()
	}
	for _, c := range s.callbacks() {
		c.count, c.once = 0, false
		m.remove(c)
	}
}

func (m *Manager) add(c *Callback) {
	if c.queued {
		return
	}
	c.queued = true
	m.lists[c.phase] = append(m.lists[c.phase], c)
	if !m.running {
		m.running = true
		m.host.RequestFrame(m.process)
	}
}

func (m *Manager) remove(c *Callback) {
	if !c.queued {
		return
	}
	c.queued = false
	m.lists[c.phase] = slices.DeleteFunc(m.lists[c.phase], func(x *Callback) bool { return x == c })
}

func (m *Manager) process(now float64) {
	dt := min(now-m.last, MaxDelta)
	if len(m.lists[Style]) > 0 {
		for _, h := range m.hooks {
			h()
		}
	}
	for p := range m.lists {
		list := slices.Clone(m.lists[p])
		for i := len(list) - 1; i >= 0; i-- {
			c := list[i]
			if !c.queued {
				continue
			}
			if c.fn != nil {
				c.fn(dt)
			}
			if c.once {
				c.once = false
				c.rebuild()
			}
		}
	}
	m.running = slices.ContainsFunc(m.lists[:], func(l []*Callback) bool { return len(l) > 0 })
	if m.running {
		m.last = now
		m.host.RequestFrame(m.process)
	}
}

// Surface is one registered drawing surface.
type Surface struct {
	m                    *Manager
	el                   host.Element
	Style, Iterate, Draw *Callback

	visible bool
	rect    host.Rect
	stop    func()
	dead    bool
}

func (s *Surface) callbacks() [3]*Callback { return [3]*Callback{s.Style, s.Iterate, s.Draw} }

func (s *Surface) rebuild() {
	for _, c := range s.callbacks() {
		c.rebuild()
	}
}

// Visible reports the last observed visibility.
func (s *Surface) Visible() bool { return s.visible }

// Rect returns the last observed box in page coordinates.
func (s *Surface) Rect() host.Rect { return s.rect }

// Request asks for style and draw runs: every visible frame, or exactly
// once when once is set.
func (s *Surface) Request(once bool) {
	if once {
		s.Style.ReqOnce()
		s.Draw.ReqOnce()
		return
	}
	s.Style.Req()
	s.Draw.Req()
}

// Unrequest drops one Request(false).
func (s *Surface) Unrequest() {
	s.Style.Unreq(false)
	s.Draw.Unreq(false)
}

// Callback is one phase of a surface.
type Callback struct {
	s      *Surface
	phase  Phase
	fn     func(float64)
	count  int
	once   bool
	queued bool
}

// Req asks for a run every frame while the surface is visible.
func (c *Callback) Req() {
	c.count++
	c.rebuild()
}

// ReqOnce asks for exactly one run, visible or not.
func (c *Callback) ReqOnce() {
	c.once = true
	c.rebuild()
}

// Unreq drops one request; stop drops all of them and any one-shot run.
func (c *Callback) Unreq(stop bool) {
	c.count = max(c.count-1, 0)
	if stop {
		c.count, c.once = 0, false
	}
	c.rebuild()
}

// Count returns the outstanding request count.
func (c *Callback) Count() int { return c.count }

// Queued reports whether the callback is in its worklist.
func (c *Callback) Queued() bool { return c.queued }

func (c *Callback) rebuild() {
	if c.s.dead {
		return
	}
	if c.s.visible && c.count > 0 || c.once {
		c.s.m.add(c)
		return
	}
	c.s.m.remove(c)
}

// managers holds the process-wide manager of every host. Hosts must be
// comparable.
var managers = map[Host]*Manager{}

// Default returns the process-wide manager for h, creating it on first use.
// Managers of other hosts keep running.
func Default(h Host) *Manager {
	if m, ok := managers[h]; ok {
		return m
	}
	m := New(h)
	managers[h] = m
	if len(managers) > 1 {
		logx.L().Debug("scheduler: manager added", "hosts", len(managers))
	}
	return m
}

// SetDefault installs m as the process-wide manager of its host.
func SetDefault(m *Manager) { managers[m.host] = m }

// Reset drops every process-wide manager. Frames already requested by them
// still arrive but find nothing to do.
func Reset() {
	for _, m := range managers {
		for p := range m.lists {
			for _, c := range m.lists[p] {
				c.queued = false
			}
			m.lists[p] = nil
		}
	}
	clear(managers)
}
