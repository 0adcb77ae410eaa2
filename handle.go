package cdivs

import (
	"errors"
	"slices"

	"github.com/gogpu/cdivs/host"
)

// Handle addresses the dividers created by one call. Every method applies
// to each of them.
type Handle struct {
	list []*Divider
}

// Attach creates a divider on every element and returns one handle for
// all of them. Elements that fail are skipped; their errors are joined.
func Attach(els []host.Element, opts ...Option) (*Handle, error) {
	h := &Handle{}
	var errs []error
	for _, el := range els {
		one, err := New(el, opts...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, d := range one.list {
			if !slices.Contains(h.list, d) {
				h.list = append(h.list, d)
			}
		}
	}
	return h, errors.Join(errs...)
}

// Dividers returns the dividers behind the handle.
func (h *Handle) Dividers() []*Divider { return slices.Clone(h.list) }

// Len returns the number of dividers.
func (h *Handle) Len() int { return len(h.list) }

// Divider returns the first divider, or nil for an empty handle.
func (h *Handle) Divider() *Divider {
	if len(h.list) == 0 {
		return nil
	}
	return h.list[0]
}

// Resize re-measures every divider.
func (h *Handle) Resize() {
	for _, d := range h.list {
		d.Resize()
	}
}

// SetOptions merges o into the options of every divider.
func (h *Handle) SetOptions(o Options) {
	for _, d := range h.list {
		d.SetOptions(o)
	}
}

// Options returns the merged options of every divider.
func (h *Handle) Options() []Options {
	out := make([]Options, len(h.list))
	for i, d := range h.list {
		out[i] = d.Options()
	}
	return out
}

// CurrentOptions returns the breakpoint-resolved options of every divider.
func (h *Handle) CurrentOptions() []Options {
	out := make([]Options, len(h.list))
	for i, d := range h.list {
		out[i] = d.CurrentOptions()
	}
	return out
}

// Destroy detaches every divider, newest first.
func (h *Handle) Destroy() {
	for i := len(h.list) - 1; i >= 0; i-- {
		h.list[i].Destroy()
	}
}
