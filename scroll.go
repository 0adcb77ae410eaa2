package cdivs

import "time"

// scrollInit follows scrolling of the scroll parent when the divider has a
// fixed background or the scroll option is on. A numeric scroll option
// keeps the surface redrawing every frame until no scroll event arrived
// for that many milliseconds.
func (d *Divider) scrollInit() {
	d.scrollDestroy()
	if !d.hasFixed && !d.s.scroll {
		return
	}
	d.scrollStop = d.h.ObserveScroll(d.s.scrollParent, d.onScroll)
}

func (d *Divider) onScroll() {
	if d.destroyed {
		return
	}
	surf := d.surf
	if !d.s.scrollTimed {
		if surf.Visible() {
			d.scrolled = true
			surf.Style.ReqOnce()
			surf.Draw.ReqOnce()
		}
		return
	}

	if !d.longScroll {
		d.longScroll = true
		surf.Style.Req()
		surf.Draw.Req()
	}
	if d.scrollCancel != nil {
		d.scrollCancel()
	}
	dwell := time.Duration(d.s.scrollDwell * float64(time.Millisecond))
	d.scrollCancel = d.h.AfterFunc(dwell, func() {
		d.scrollCancel = nil
		d.longScroll = false
		surf.Style.Unreq(false)
		surf.Draw.Unreq(false)
		surf.Style.ReqOnce()
		surf.Draw.ReqOnce()
	})
}

func (d *Divider) scrollDestroy() {
	if d.scrollCancel != nil {
		d.scrollCancel()
		d.scrollCancel = nil
	}
	if d.scrollStop != nil {
		d.scrollStop()
		d.scrollStop = nil
	}
	if d.longScroll {
		d.longScroll = false
		d.surf.Style.Unreq(false)
		d.surf.Draw.Unreq(false)
	}
}
