// Package host defines the page collaborators the divider engine runs
// against: elements and their computed style, frame and timer callbacks,
// observers, image loading and the transition-state signal.
//
// A browser binding implements these on top of the DOM. Package
// host/static provides an in-memory implementation for tests and the CLI.
package host

import (
	"image"
	"time"
)

// Rect is a box in CSS pixels relative to the viewport.
type Rect struct {
	X, Y, W, H float64
}

// Move returns r shifted by (dx, dy).
func (r Rect) Move(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Viewport describes the window the page is shown in.
type Viewport struct {
	W, H             float64
	DPR              float64
	ScrollX, ScrollY float64
}

// Element is one node of the page.
type Element interface {
	// ID is stable for the element's lifetime and unique per document.
	ID() string
	// Tag is the lower-case tag name.
	Tag() string
	// Computed returns the computed value of a CSS property.
	Computed(prop string) string
	// Rect returns the border box relative to the viewport.
	Rect() Rect

	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)

	// SetStyle sets an inline style property; an empty value removes it.
	SetStyle(prop, value string)
	AddClass(name string)
	RemoveClass(name string)

	Parent() Element
	Next() Element
	Prev() Element
}

// Document creates and moves elements.
type Document interface {
	CreateElement(tag string) Element
	// Clone returns a shallow copy of el without children.
	Clone(el Element) Element
	// Wrap puts wrapper in el's place and moves el inside it.
	Wrap(el, wrapper Element)
	// Unwrap replaces wrapper with its children.
	Unwrap(wrapper Element)
	// Prepend inserts child as the first child of parent.
	Prepend(parent, child Element)
	Remove(el Element)
	// Query returns the descendants of root matching selector.
	Query(root Element, selector string) []Element
	Viewport() Viewport
	UserAgent() string
}

// Frames schedules animation frame callbacks. now is in milliseconds.
type Frames interface {
	RequestFrame(fn func(now float64))
}

// Timers schedules delayed callbacks.
type Timers interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// Observers reports visibility, size and scroll changes.
type Observers interface {
	ObserveIntersection(el Element, fn func(visible bool, r Rect)) (stop func())
	ObserveResize(el Element, fn func()) (stop func())
	// ObserveViewport runs fn after the viewport size or device pixel
	// ratio changed.
	ObserveViewport(fn func()) (stop func())
	// ObserveScroll watches the scroll container matched by target, or the
	// window when target is empty.
	ObserveScroll(target string, fn func()) (stop func())
}

// ImageLoader loads background images. done runs once, possibly after
// LoadImage has returned.
type ImageLoader interface {
	LoadImage(src string, done func(image.Image, error))
}

// TransitionSource signals when a CSS transition or animation starts and
// ends on an element. notStarted is set when end fires without a matching
// start.
type TransitionSource interface {
	WatchTransitions(el Element, start func(), end func(notStarted bool)) (stop func())
}

// Host bundles every collaborator.
type Host interface {
	Document
	Frames
	Timers
	Observers
	ImageLoader
	TransitionSource
}
