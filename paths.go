package cdivs

import (
	"github.com/gogpu/cdivs/internal/logx"
	"github.com/gogpu/cdivs/shape"
)

// Additional shape modes. AddInvert draws the same shape inverted on top;
// the others stack scaled copies of the primary shape.
const (
	AddInvert        = "invert"
	AddAdditive      = "additive"
	AddStretchedUp   = "stretchedUp"
	AddStretchedDown = "stretchedDown"
)

var addModes = map[string]string{
	"a":  AddAdditive,
	"su": AddStretchedUp,
	"sd": AddStretchedDown,
}

func addMode(v string) string {
	if full, ok := addModes[v]; ok {
		return full
	}
	return v
}

// createPaths rebuilds the renderers from the current options. Animation
// time and shift offsets carry over from the previous renderers.
func (d *Divider) createPaths() {
	s := d.s
	mode := addMode(s.addType)
	d.hasAdditional = mode != ""
	d.isAdditive = mode == AddAdditive || mode == AddStretchedUp || mode == AddStretchedDown
	stretchedDown := mode == AddStretchedDown

	main := shape.Options{
		Type:     s.typ,
		Opacity:  1,
		IsBottom: d.bottom,
		IsOpaque: !d.semi,
		Strength: s.strength,
		Inverted: s.inverted,
		Delay:    s.delay,
		SegFit:   s.segFit,
		SegSize:  s.segSize,
		ShiftDur: s.shift,
		Stroke:   s.stroke,
		UseAnim:  s.dur != 0,
		DPR:      d.env.DPR,
	}
	add := main
	add.Inverted = !s.inverted
	add.Opacity = s.addOpacity
	add.SegSize = s.segSize
	if s.addSegSize != 0 {
		add.SegSize = s.addSegSize
	}
	add.SegFit = s.addSegFit.or(s.segFit)
	add.Delay = s.addDelay.or(s.delay)
	add.ShiftDur = s.addShift.or(s.shift)
	add.Strength = s.addStrength.or(s.strength)
	add.UseAnim = s.addDur.or(s.dur) != 0

	adds := make([]shape.Options, s.addCount)
	for i := range adds {
		adds[i] = add
	}

	old := d.renderers
	for i, r := range old {
		if i == 0 && s.shift != 0 {
			main.Shift = r.Shift()
			for j := range adds {
				adds[j].Shift = r.Shift()
			}
		}
		if i > 0 && i-1 < len(adds) && s.addShift.ok {
			adds[i-1].Shift = 0
			if s.addShift.v != 0 {
				adds[i-1].Shift = r.Shift()
			}
		}
	}

	if !stretchedDown {
		main.Top = s.scale
	}
	if d.isAdditive {
		for i := range adds {
			o := main
			power := float64(i+1) / float64(s.addCount)
			o.Opacity = s.addOpacity
			o.Top = s.scale * (1 - power)
			if stretchedDown {
				o.Top = 0
			}
			if stretchedDown || mode == AddAdditive {
				o.Bottom = s.scale * power
			}
			adds[i] = o
		}
	}

	d.renderers = []*shape.Renderer{shape.NewRenderer(main)}
	if d.hasAdditional {
		for _, o := range adds {
			d.renderers = append(d.renderers, shape.NewRenderer(o))
		}
	}

	d.refreshDuration()

	easing, ok := shape.EasingByName(s.timingFnc)
	if !ok {
		logx.Diag("cdivs", "unknown timing function, using inOut", "timingFnc", s.timingFnc)
		easing, _ = shape.EasingByName("inOut")
	}
	for _, r := range d.renderers {
		r.Clock().Easing = easing
	}

	if len(old) > 0 {
		for i, r := range d.renderers {
			if !r.UsesAnim() {
				continue
			}
			prev := old[min(i, len(old)-1)].Clock()
			if prev.Dur != 0 {
				r.Clock().Total = prev.Total * (r.Clock().Dur / prev.Dur)
			}
		}
	}

	d.cut = nil
	if s.decor != "" {
		d.cut = shape.NewRenderer(shape.Options{
			Type:    "_" + s.decor,
			Opacity: 1,
			Stroke:  s.decorWidth,
			SegFit:  true,
			DPR:     d.env.DPR,
		})
	}
	logx.L().Debug("divider shapes built", "pos", d.pos, "type", s.typ, "count", len(d.renderers))
}

// refreshDuration applies the animation durations of the current
// breakpoint and starts or stops the per-frame callbacks.
func (d *Divider) refreshDuration() {
	s := d.s
	for i, r := range d.renderers {
		dur, start := s.dur, s.startTime
		if i > 0 && d.hasAdditional && !d.isAdditive {
			dur = s.addDur.or(s.dur)
			start = s.addStartTime.or(s.startTime)
		}
		clock := r.Clock()
		r.SetUseAnim(dur != 0)
		if dur != 0 {
			clock.Dur = dur
		} else {
			clock.Dur = 1000
			clock.Total = clock.Dur * start
		}
	}

	addAnim := d.hasAdditional && !d.isAdditive && (s.addDur.or(0) != 0 || s.addShift.or(0) != 0)
	if s.dur != 0 || s.shift != 0 || addAnim {
		d.enableAnim()
	} else {
		d.disableAnim()
	}
}

func (d *Divider) enableAnim() {
	if d.animOn {
		return
	}
	d.animOn = true
	d.surf.Draw.Req()
	d.surf.Iterate.Req()
}

func (d *Divider) disableAnim() {
	if !d.animOn {
		return
	}
	d.animOn = false
	d.surf.Draw.Unreq(false)
	d.surf.Iterate.Unreq(false)
}

// AnimationTimes returns the elapsed animation time of every renderer.
func (d *Divider) AnimationTimes() []float64 {
	out := make([]float64, 0, len(d.renderers))
	for _, r := range d.renderers {
		out = append(out, r.Clock().Total)
	}
	return out
}
