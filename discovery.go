package cdivs

import (
	"strconv"
	"strings"

	"github.com/gogpu/cdivs/css"
	"github.com/gogpu/cdivs/host"
	"github.com/gogpu/cdivs/internal/logx"
)

// Seam is the request a Discovery resolves.
type Seam struct {
	// Bottom asks for the bottom seam of the element.
	Bottom bool
	// Opposite prefers the neighbour on the other side of the seam when
	// it has a background.
	Opposite bool
	// IgnoreTransparency keeps a transparent element instead of falling
	// back to its neighbour.
	IgnoreTransparency bool
}

// Discovery picks the element whose background a divider extends. It
// returns that element and whether the divider sits on its bottom seam.
type Discovery interface {
	Discover(el host.Element, s Seam) (host.Element, bool)
}

// Siblings is the default Discovery. A transparent element hands the seam
// to the neighbour across it: its previous sibling for a top seam, its
// next sibling for a bottom one.
type Siblings struct{}

// Discover implements Discovery.
func (Siblings) Discover(el host.Element, s Seam) (host.Element, bool) {
	bottom := s.Bottom
	across := func() host.Element {
		if bottom {
			return Inner(Outer(el).Next())
		}
		return Inner(Outer(el).Prev())
	}
	switch {
	case s.Opposite:
		if n := across(); n != nil && !IsTransparent(n) {
			return n, !bottom
		}
	case !s.IgnoreTransparency && IsTransparent(el):
		if n := across(); n != nil {
			return n, !bottom
		}
		logx.Diag("cdivs", "transparent element has no neighbour, keeping it", "tag", el.Tag())
	}
	return el, bottom
}

// IsTransparent reports whether el paints no background at all.
func IsTransparent(el host.Element) bool {
	if el.Computed("background-image") != "none" {
		return false
	}
	c, err := css.ParseColor(el.Computed("background-color"))
	if err != nil {
		logx.Diag("cdivs", "bad background-color", "err", err)
	}
	return c.A == 0
}

// IsSemiTransparent reports whether el's background colour or opacity lets
// the page show through.
func IsSemiTransparent(el host.Element) bool {
	c, err := css.ParseColor(el.Computed("background-color"))
	if err != nil {
		logx.Diag("cdivs", "bad background-color", "err", err)
	}
	if c.A > 0 && c.A < 1 {
		return true
	}
	op, err := strconv.ParseFloat(strings.TrimSpace(el.Computed("opacity")), 64)
	return err == nil && op < 1
}
