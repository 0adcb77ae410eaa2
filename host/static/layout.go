package static

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/gogpu/cdivs/css"
	"github.com/gogpu/cdivs/host"
)

var hidden = map[string]bool{
	"head": true, "style": true, "script": true, "title": true, "meta": true, "link": true,
}

// rect returns the viewport-relative box of n, laying out the document
// on first use after an invalidation.
func (d *Document) rect(n *html.Node) host.Rect {
	if d.rects == nil {
		d.rects = make(map[*html.Node]host.Rect)
		d.flow(d.root, 0, 0, d.vp.W, d.vp.H)
	}
	return d.rects[n].Move(-d.vp.ScrollX, -d.vp.ScrollY)
}

// flow lays out the element children of n in a box at (x, y) with width w
// and height h (negative when the height depends on content). It returns
// the content height.
func (d *Document) flow(n *html.Node, x, y, w, h float64) float64 {
	cursor := y
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode && c.Type != html.DocumentNode {
			continue
		}
		el := d.wrap(c)
		if el == nil || hidden[c.Data] || el.Computed("display") == "none" {
			continue
		}
		if r, ok := dataRect(el); ok {
			d.rects[c] = r
			d.flow(c, r.X, r.Y, r.W, r.H)
			continue
		}

		mt, mb, ml := length(el, "margin-top", w), length(el, "margin-bottom", w), length(el, "margin-left", w)
		cw := w - ml - length(el, "margin-right", w)
		if v := el.Computed("width"); v != "auto" {
			cw = resolve(v, w, cw)
		}
		ch := -1.0
		if v := el.Computed("height"); v != "auto" {
			if css.ParseValue(v).Unit != css.Percent || h >= 0 {
				ch = resolve(v, h, -1)
			}
		}

		abs := el.Computed("position") == "absolute"
		bx, by := x+ml, cursor+mt
		if abs {
			bx = x + length(el, "left", w) + ml
			by = y + length(el, "top", h) + mt
		}
		content := d.flow(c, bx, by, cw, ch)
		if ch < 0 {
			ch = content
		}
		d.rects[c] = host.Rect{X: bx, Y: by, W: cw, H: ch}
		if !abs {
			cursor = by + ch + mb
		}
	}
	return cursor - y
}

// dataRect reads a "x y w h" document-space override.
func dataRect(el *Element) (host.Rect, bool) {
	v, ok := el.Attr("data-rect")
	if !ok {
		return host.Rect{}, false
	}
	f := strings.Fields(v)
	if len(f) != 4 {
		return host.Rect{}, false
	}
	var nums [4]float64
	for i, s := range f {
		n, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
		if err != nil {
			return host.Rect{}, false
		}
		nums[i] = n
	}
	return host.Rect{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}, true
}

func length(el *Element, prop string, ref float64) float64 {
	return resolve(el.Computed(prop), ref, 0)
}

func resolve(v string, ref, fallback float64) float64 {
	if v == "" {
		return fallback
	}
	val := css.ParseValue(v)
	if val.Unit == css.Keyword {
		return fallback
	}
	return val.ToPx(ref, 1, 1)
}
