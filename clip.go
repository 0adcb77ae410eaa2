package cdivs

import "github.com/gogpu/cdivs/host"

// clipBackground wraps el in a copy of itself and clips el to the box
// between the --cdivs-top and --cdivs-bottom insets. The wrapper is shared
// by every divider of el.
func clipBackground(h host.Host, el host.Element) *clipState {
	if cs, ok := clips[el.ID()]; ok {
		return cs
	}
	style, hasStyle := el.Attr("style")
	isImg := el.Tag() == "img"

	var wrap host.Element
	if isImg {
		wrap = h.CreateElement("div")
		if cl, ok := el.Attr("class"); ok {
			wrap.SetAttr("class", cl)
		}
		if hasStyle {
			wrap.SetAttr("style", style)
		}
	} else {
		wrap = h.Clone(el)
	}
	wrap.RemoveAttr("id")

	static := el.Computed("position") == "static"
	for _, kv := range [][2]string{
		{"background", "none"},
		{"overflow", "visible"},
		{"padding", "0"},
		{"display", "block"},
		{"will-change", "transform"},
	} {
		wrap.SetStyle(kv[0], kv[1])
	}
	if static {
		wrap.SetStyle("position", "relative")
	}
	wrap.AddClass(Prefix + "-reset")
	h.Wrap(el, wrap)

	clip := "inset(var(--" + Prefix + "-top) -1px var(--" + Prefix + "-bottom) -1px)"
	for _, kv := range [][2]string{
		{"width", "100%"},
		{"height", "100%"},
		{"margin", "0"},
		{"position", "relative"},
		{"top", "0"},
		{"left", "0"},
		{"right", "auto"},
		{"bottom", "auto"},
		{"transform", "none"},
		{"z-index", "1"},
		{"opacity", "1"},
		{"clip-path", clip},
		{"-webkit-clip-path", clip},
		{"-moz-clip-path", clip},
		{"--" + Prefix + "-top", "0px"},
		{"--" + Prefix + "-bottom", "0px"},
	} {
		el.SetStyle(kv[0], kv[1])
	}
	if isImg {
		el.SetStyle("display", "block")
	}

	cs := &clipState{el: el, wrap: wrap, style: style, hasStyle: hasStyle}
	clips[el.ID()] = cs
	clips[wrap.ID()] = cs
	return cs
}

// clipInit wraps the background element and applies the clip insets.
func (d *Divider) clipInit() {
	cs := clipBackground(d.h, d.el)
	d.wrap = cs.wrap
	d.wrap.AddClass(Prefix + "-wrap")
	d.wrap.AddClass(Prefix + "-wrap-" + d.pos)
	d.clipRefresh()
	if d.s.underlayScaled {
		d.wrap.AddClass(Prefix + "-underlay")
	}
}

// clipRefresh moves the clip inset of the divider's seam so that the
// element ends where the surface starts.
func (d *Divider) clipRefresh() {
	s := d.s
	r := d.rects[0]
	diff, ok := d.env.Profile.ClipDiff(s.size, r.Y, r.H, d.env.DPR, d.bottom)
	changed := d.adaptive.Changed() || d.optionsChanged

	if changed || ok {
		inset := s.size + diff
		if !d.semi {
			inset--
		}
		d.el.SetStyle("--"+Prefix+"-"+d.pos, px(inset))
	}
	if changed && d.opp != nil {
		off := 0.0
		if s.underlay != 0 {
			off = s.size
		}
		d.oppSet(px(off))
	}
	if changed {
		margin := ""
		if s.underlay != 0 {
			margin = px(-(s.underlay*s.size + 1))
		}
		d.wrap.SetStyle("margin-"+d.pos, margin)
	}
}

// oppVar is the custom property telling the neighbour across the seam how
// far the divider overlaps it.
func (d *Divider) oppVar() string {
	side := "bottom"
	if d.bottom {
		side = "top"
	}
	return "--" + Prefix + "-offset-" + side
}

// styleSnapshot is a style attribute as it was before the divider first
// wrote to it, and as the divider last left it.
type styleSnapshot struct {
	orig, written string
	hasOrig       bool
	saved         bool
}

// oppSet writes the overlap variable on the opposite element.
func (d *Divider) oppSet(value string) {
	if !d.oppStyle.saved {
		d.oppStyle.orig, d.oppStyle.hasOrig = d.opp.Attr("style")
		d.oppStyle.saved = true
	}
	d.opp.SetStyle(d.oppVar(), value)
	d.oppStyle.written, _ = d.opp.Attr("style")
}

// oppRestore puts back the opposite element's style attribute. When
// something else changed the attribute since the divider wrote it, only
// the overlap variable is removed.
func (d *Divider) oppRestore() {
	snap := d.oppStyle
	d.oppStyle = styleSnapshot{}
	if !snap.saved {
		return
	}
	if cur, _ := d.opp.Attr("style"); cur != snap.written {
		d.opp.SetStyle(d.oppVar(), "")
		return
	}
	if snap.hasOrig {
		d.opp.SetAttr("style", snap.orig)
	} else {
		d.opp.RemoveAttr("style")
	}
}

// clipDestroy unwraps the element and restores its style attribute.
func (d *Divider) clipDestroy() {
	cs, ok := clips[d.el.ID()]
	if !ok {
		return
	}
	d.h.Unwrap(cs.wrap)
	if cs.hasStyle {
		cs.el.SetAttr("style", cs.style)
	} else {
		cs.el.RemoveAttr("style")
	}
	delete(clips, cs.el.ID())
	delete(clips, cs.wrap.ID())
	d.wrap = nil
}
