package cdivs

import (
	"slices"

	"github.com/gogpu/cdivs/background"
	"github.com/gogpu/cdivs/canvas"
	"github.com/gogpu/cdivs/host"
	"github.com/gogpu/cdivs/scheduler"
	"github.com/gogpu/cdivs/shape"
)

// clipState is the wrapper of one background element.
type clipState struct {
	el, wrap host.Element
	// style is the element's style attribute before wrapping.
	style    string
	hasStyle bool
}

// resizeWatch is the resize observation of one element shared by every
// divider drawing its background.
type resizeWatch struct {
	stop     func()
	dividers []*Divider
}

// Side tables keyed by host.Element.ID.
var (
	// onElement lists the dividers of a background element.
	onElement = map[string][]*Divider{}
	// clips maps a background element and its wrapper to the wrap state.
	clips   = map[string]*clipState{}
	watches = map[string]*resizeWatch{}
	all     []*Divider
	hooked  = map[*scheduler.Manager]bool{}
	// viewports holds the viewport observation of every host with live
	// dividers.
	viewports = map[host.Host]func(){}
)

// Inner returns the element wrapped by el when el is a divider wrapper,
// or el itself.
func Inner(el host.Element) host.Element {
	if el == nil {
		return nil
	}
	if cs, ok := clips[el.ID()]; ok {
		return cs.el
	}
	return el
}

// Outer returns the wrapper of el when el carries a divider, or el itself.
func Outer(el host.Element) host.Element {
	if el == nil {
		return nil
	}
	if cs, ok := clips[el.ID()]; ok {
		return cs.wrap
	}
	return el
}

func watch(h host.Host, el host.Element, d *Divider) {
	w, ok := watches[el.ID()]
	if !ok {
		w = &resizeWatch{}
		watches[el.ID()] = w
		w.stop = h.ObserveResize(el, func() {
			for _, d := range slices.Clone(w.dividers) {
				d.Resize()
			}
		})
	}
	if !slices.Contains(w.dividers, d) {
		w.dividers = append(w.dividers, d)
	}
}

func unwatch(el host.Element, d *Divider) {
	w, ok := watches[el.ID()]
	if !ok {
		return
	}
	w.dividers = slices.DeleteFunc(w.dividers, func(x *Divider) bool { return x == d })
	if len(w.dividers) == 0 {
		w.stop()
		delete(watches, el.ID())
	}
}

// watchViewport re-measures the dividers of h whenever its viewport
// changes, so breakpoints follow the window.
func watchViewport(h host.Host) {
	if _, ok := viewports[h]; ok {
		return
	}
	viewports[h] = h.ObserveViewport(func() {
		for _, d := range slices.Clone(all) {
			if d.h == h {
				d.Resize()
			}
		}
	})
}

func unwatchViewport(h host.Host) {
	stop, ok := viewports[h]
	if !ok || slices.ContainsFunc(all, func(d *Divider) bool { return d.h == h }) {
		return
	}
	stop()
	delete(viewports, h)
}

// All returns every live divider in creation order.
func All() []*Divider { return slices.Clone(all) }

// ResizeAll re-measures every divider. Viewport changes reported by the
// host already do this.
func ResizeAll() {
	for _, d := range slices.Clone(all) {
		d.Resize()
	}
}

// Reset destroys every divider and drops all process-wide state: side
// tables, background trackers, shape caches, the scratch surface and the
// default scheduler. Default options are restored.
func Reset() {
	for i := len(all) - 1; i >= 0; i-- {
		all[i].Destroy()
	}
	for _, w := range watches {
		w.stop()
	}
	for _, stop := range viewports {
		stop()
	}
	clear(viewports)
	clear(onElement)
	clear(clips)
	clear(watches)
	clear(hooked)
	all = nil
	defaultHost = nil
	resetDefaults()

	background.Reset()
	shape.Reset()
	canvas.ResetScratch()
	scheduler.Reset()
}
