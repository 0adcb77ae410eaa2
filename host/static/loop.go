package static

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"slices"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/cdivs/host"
)

// FrameInterval is the frame length Advance steps by, in milliseconds.
const FrameInterval = 1000.0 / 60

// ErrNoImage is returned by LoadImage when src cannot be found.
var ErrNoImage = errors.New("static: image not found")

var _ host.Host = (*Document)(nil)

type timer struct {
	at   float64
	seq  int
	fn   func()
	dead bool
}

type intersection struct {
	el      *Element
	fn      func(bool, host.Rect)
	visible bool
	fired   bool
	dead    bool
}

type resizeWatch struct {
	el    *Element
	fn    func()
	w, h  float64
	fired bool
	dead  bool
}

type viewportWatch struct {
	fn   func()
	dead bool
}

type scrollWatch struct {
	target string
	fn     func()
	dead   bool
}

type transitionWatch struct {
	el    *Element
	start func()
	end   func(bool)
	dead  bool
}

// loop is the manual clock and event queue of a Document.
type loop struct {
	d   *Document
	now float64
	seq int

	tasks  []func()
	frames []func(float64)
	timers []*timer

	inters      []*intersection
	resizes     []*resizeWatch
	scrolls     []*scrollWatch
	viewports   []*viewportWatch
	seenVP      host.Viewport
	transitions []*transitionWatch
	forced      map[*Element]bool
}

func (l *loop) init(d *Document) {
	l.d = d
	l.forced = make(map[*Element]bool)
}

// Now returns the clock in milliseconds.
func (l *loop) Now() float64 { return l.now }

// PendingFrames returns the number of queued frame callbacks.
func (l *loop) PendingFrames() int { return len(l.frames) }

// RequestFrame implements host.Frames.
func (l *loop) RequestFrame(fn func(now float64)) { l.frames = append(l.frames, fn) }

// AfterFunc implements host.Timers.
func (l *loop) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	l.seq++
	t := &timer{at: l.now + float64(d)/float64(time.Millisecond), seq: l.seq, fn: fn}
	l.timers = append(l.timers, t)
	return func() { t.dead = true }
}

// Flush runs queued tasks and observer notifications without moving the
// clock.
func (l *loop) Flush() {
	for len(l.tasks) > 0 {
		tasks := l.tasks
		l.tasks = nil
		for _, t := range tasks {
			t()
		}
	}
	l.observe()
}

// Step advances the clock by dt milliseconds and runs one frame: due
// timers, queued tasks, frame callbacks, then observer notifications.
func (l *loop) Step(dt float64) { l.stepTo(l.now + dt) }

func (l *loop) stepTo(now float64) {
	l.now = now
	l.runTimers()
	l.Flush()
	frames := l.frames
	l.frames = nil
	for _, fn := range frames {
		fn(l.now)
	}
	l.observe()
}

// Advance steps frames of FrameInterval until d has elapsed.
func (l *loop) Advance(d time.Duration) {
	end := l.now + float64(d)/float64(time.Millisecond)
	for l.now < end-1e-9 {
		l.stepTo(min(l.now+FrameInterval, end))
	}
}

func (l *loop) runTimers() {
	due := slices.DeleteFunc(slices.Clone(l.timers), func(t *timer) bool { return t.dead || t.at > l.now })
	slices.SortFunc(due, func(a, b *timer) int {
		if a.at != b.at {
			if a.at < b.at {
				return -1
			}
			return 1
		}
		return a.seq - b.seq
	})
	for _, t := range due {
		t.dead = true
	}
	l.timers = slices.DeleteFunc(l.timers, func(t *timer) bool { return t.dead })
	for _, t := range due {
		t.fn()
	}
}

func (l *loop) observe() {
	vp := l.d.vp
	if vp.W != l.seenVP.W || vp.H != l.seenVP.H || vp.DPR != l.seenVP.DPR {
		l.seenVP = vp
		for _, o := range slices.Clone(l.viewports) {
			if !o.dead {
				o.fn()
			}
		}
		l.viewports = slices.DeleteFunc(l.viewports, func(o *viewportWatch) bool { return o.dead })
	}
	for _, o := range slices.Clone(l.inters) {
		if o.dead {
			continue
		}
		r := o.el.Rect()
		vis := r.W > 0 && r.H > 0 && r.Right() > 0 && r.X < vp.W && r.Bottom() > 0 && r.Y < vp.H
		if f, ok := l.forced[o.el]; ok {
			vis = f
		}
		if !o.fired || vis != o.visible {
			o.fired, o.visible = true, vis
			o.fn(vis, r)
		}
	}
	for _, o := range slices.Clone(l.resizes) {
		if o.dead {
			continue
		}
		r := o.el.Rect()
		if !o.fired || r.W != o.w || r.H != o.h {
			o.fired, o.w, o.h = true, r.W, r.H
			o.fn()
		}
	}
	l.inters = slices.DeleteFunc(l.inters, func(o *intersection) bool { return o.dead })
	l.resizes = slices.DeleteFunc(l.resizes, func(o *resizeWatch) bool { return o.dead })
}

// ObserveIntersection implements host.Observers. The first notification
// arrives on the next Flush or Step.
func (l *loop) ObserveIntersection(e host.Element, fn func(bool, host.Rect)) (stop func()) {
	el := l.d.elem(e)
	if el == nil {
		return func() {}
	}
	o := &intersection{el: el, fn: fn}
	l.inters = append(l.inters, o)
	return func() { o.dead = true }
}

// SetVisible overrides the computed visibility of e; Unforce drops it.
func (l *loop) SetVisible(e host.Element, visible bool) {
	if el := l.d.elem(e); el != nil {
		l.forced[el] = visible
	}
}

// Unforce returns e to geometric visibility.
func (l *loop) Unforce(e host.Element) {
	if el := l.d.elem(e); el != nil {
		delete(l.forced, el)
	}
}

// ObserveResize implements host.Observers.
func (l *loop) ObserveResize(e host.Element, fn func()) (stop func()) {
	el := l.d.elem(e)
	if el == nil {
		return func() {}
	}
	o := &resizeWatch{el: el, fn: fn}
	l.resizes = append(l.resizes, o)
	return func() { o.dead = true }
}

// ObserveViewport implements host.Observers. Observers run on the next
// Flush or Step after SetViewport changed the size or pixel ratio.
func (l *loop) ObserveViewport(fn func()) (stop func()) {
	o := &viewportWatch{fn: fn}
	l.viewports = append(l.viewports, o)
	return func() { o.dead = true }
}

// ObserveScroll implements host.Observers.
func (l *loop) ObserveScroll(target string, fn func()) (stop func()) {
	o := &scrollWatch{target: target, fn: fn}
	l.scrolls = append(l.scrolls, o)
	return func() { o.dead = true }
}

// Scroll dispatches a scroll event to observers of target.
func (l *loop) Scroll(target string) {
	for _, o := range slices.Clone(l.scrolls) {
		if !o.dead && o.target == target {
			o.fn()
		}
	}
	l.scrolls = slices.DeleteFunc(l.scrolls, func(o *scrollWatch) bool { return o.dead })
}

// ScrollTo moves the window scroll position and dispatches a scroll event.
func (l *loop) ScrollTo(x, y float64) {
	l.d.vp.ScrollX, l.d.vp.ScrollY = x, y
	l.Scroll("")
}

// SetViewport replaces the viewport and invalidates layout.
func (l *loop) SetViewport(vp host.Viewport) {
	l.d.vp = vp
	l.d.rects = nil
}

// WatchTransitions implements host.TransitionSource.
func (l *loop) WatchTransitions(e host.Element, start func(), end func(bool)) (stop func()) {
	el := l.d.elem(e)
	if el == nil {
		return func() {}
	}
	o := &transitionWatch{el: el, start: start, end: end}
	l.transitions = append(l.transitions, o)
	return func() { o.dead = true }
}

// StartTransition signals a transition start on e.
func (l *loop) StartTransition(e host.Element) {
	for _, o := range l.watchers(e) {
		o.start()
	}
}

// EndTransition signals a transition end on e.
func (l *loop) EndTransition(e host.Element, notStarted bool) {
	for _, o := range l.watchers(e) {
		o.end(notStarted)
	}
}

func (l *loop) watchers(e host.Element) []*transitionWatch {
	l.transitions = slices.DeleteFunc(l.transitions, func(o *transitionWatch) bool { return o.dead })
	el := l.d.elem(e)
	var out []*transitionWatch
	for _, o := range l.transitions {
		if o.el == el {
			out = append(out, o)
		}
	}
	return out
}

// LoadImage implements host.ImageLoader. done runs on the next Flush or
// Step.
func (l *loop) LoadImage(src string, done func(image.Image, error)) {
	l.tasks = append(l.tasks, func() {
		done(l.decode(src))
	})
}

func (l *loop) decode(src string) (image.Image, error) {
	if img, ok := l.d.Images[src]; ok {
		return img, nil
	}
	if l.d.FS == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoImage, src)
	}
	f, err := l.d.FS.Open(strings.TrimPrefix(src, "/"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoImage, src)
		}
		return nil, fmt.Errorf("static: open %s: %w", src, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("static: decode %s: %w", src, err)
	}
	return img, nil
}
