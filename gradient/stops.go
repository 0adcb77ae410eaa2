package gradient

import (
	"math"

	"github.com/gogpu/cdivs/canvas"
	"github.com/gogpu/cdivs/css"
)

// RawStop is one parsed colour stop. A stop without colour is a midpoint
// hint; a stop without offset is positioned during normalisation.
type RawStop struct {
	Offset    css.Value
	HasOffset bool
	Color     css.Color
	HasColor  bool
}

// Stop is a resolved stop. Hint marks a midpoint hint that has not been
// expanded yet.
type Stop struct {
	Offset float64
	Color  css.Color
	Hint   bool
}

// Repeat describes how a repeating gradient tiles: the unit length as a
// fraction of the gradient line, the phase of the first unit and the
// number of units covering the line.
type Repeat struct {
	Length float64
	Shift  float64
	Count  int
}

// Stops is a stop list as written in CSS.
type Stops struct {
	raw          []RawStop
	hasHints     bool
	hasAlphaDiff bool
}

// NewStops wraps raw stops.
func NewStops(raw []RawStop) *Stops {
	s := &Stops{raw: raw}
	for _, r := range raw {
		if !r.HasColor {
			s.hasHints = true
			continue
		}
		if len(raw) > 0 && raw[0].HasColor && r.Color.A != raw[0].Color.A {
			s.hasAlphaDiff = true
		}
	}
	return s
}

// Len returns the number of raw stops.
func (s *Stops) Len() int { return len(s.raw) }

// Calc resolves the stop list for a gradient line of the given length.
// relLength is the length offsets are expressed against (0 means length)
// and pxScale scales pixel offsets. For repeating gradients the returned
// Repeat is non-zero.
func (s *Stops) Calc(length float64, repeating bool, relLength, pxScale float64, env css.Env) ([]Stop, Repeat) {
	env = env.Normalize()
	if relLength == 0 {
		relLength = length
	}
	if pxScale == 0 {
		pxScale = 1
	}
	stops := Normalize(s.raw, length, relLength, pxScale, env.DPR)
	if s.hasHints {
		stops = FillMidpoints(stops, env.Profile)
	}
	if s.hasAlphaDiff && env.Profile.OpaqueBlend() {
		stops = OpaqueDiff(stops, env.Profile)
	}
	if repeating {
		return PrepareForRepeating(stops, env.Profile)
	}
	return FixRange(stops, env.Profile), Repeat{}
}

// Normalize resolves offsets to fractions of relLength. Offsets never
// decrease; runs of stops without offset are spread evenly between their
// resolved neighbours.
func Normalize(raw []RawStop, length, relLength, pxScale, dpr float64) []Stop {
	if len(raw) == 0 {
		return nil
	}
	frac := func(v css.Value) float64 {
		if relLength == 0 {
			return 0
		}
		return v.ToPx(length, pxScale, dpr) / relLength
	}

	out := make([]Stop, len(raw))
	var prev float64
	if raw[0].HasOffset {
		prev = frac(raw[0].Offset)
	}
	pending := 0
	for i, r := range raw {
		out[i] = Stop{Color: r.Color, Hint: !r.HasColor}
		if !r.HasOffset {
			pending++
			continue
		}
		off := math.Max(prev, frac(r.Offset))
		out[i].Offset = off
		for k := range pending {
			out[i-pending+k].Offset = prev + float64(k+1)/float64(pending+1)*(off-prev)
		}
		pending = 0
		prev = off
	}
	for k := range pending {
		out[len(out)-pending+k].Offset = prev
	}
	return out
}

// FillMidpoints replaces every midpoint hint with nine eased stops. The
// easing exponent is log(0.5)/log(left/total), which places the half-way
// colour at the hint.
func FillMidpoints(stops []Stop, p css.Profile) []Stop {
	out := make([]Stop, 0, len(stops)+8)
	for i, s := range stops {
		if !s.Hint {
			out = append(out, s)
			continue
		}
		if i == 0 || i == len(stops)-1 || stops[i-1].Hint || stops[i+1].Hint {
			continue
		}
		prev, next := stops[i-1], stops[i+1]
		left := s.Offset - prev.Offset
		right := next.Offset - s.Offset
		total := next.Offset - prev.Offset

		switch {
		case left == right:
			continue
		case left == 0:
			out = append(out, Stop{Offset: s.Offset, Color: next.Color})
			continue
		case right == 0:
			out = append(out, Stop{Offset: s.Offset, Color: prev.Color})
			continue
		}

		offsets := make([]float64, 0, 9)
		if left > right {
			for j := range 7 {
				offsets = append(offsets, prev.Offset+left*float64(7+j)/13)
			}
			offsets = append(offsets, s.Offset+right/3, s.Offset+right*2/3)
		} else {
			offsets = append(offsets, prev.Offset+left/3, prev.Offset+left*2/3)
			for j := range 7 {
				offsets = append(offsets, s.Offset+right*float64(j)/13)
			}
		}

		exp := math.Log(.5) / math.Log(left/total)
		for _, off := range offsets {
			rel := (off - prev.Offset) / total
			out = append(out, Stop{Offset: off, Color: prev.Color.Blend(next.Color, math.Pow(rel, exp), p)})
		}
	}
	return out
}

// OpaqueDiff subdivides every pair of adjacent stops that differ in both
// alpha and RGB into eleven stops blended through opaque colours.
func OpaqueDiff(stops []Stop, p css.Profile) []Stop {
	out := make([]Stop, 0, len(stops))
	skip := false
	for i, s := range stops {
		if i < len(stops)-1 && s.Color.HasDiff(stops[i+1].Color, p) {
			next := stops[i+1]
			for j := 0; j <= 10; j++ {
				w := float64(j) / 10
				out = append(out, Stop{
					Offset: s.Offset + (next.Offset-s.Offset)*w,
					Color:  s.Color.OpaqueBlend(next.Color, w),
				})
			}
			skip = true
			continue
		}
		if !skip {
			out = append(out, s)
		}
		skip = false
	}
	return out
}

// FixRange clamps offsets into [0,1]. A clamped stop takes the colour the
// gradient has at the boundary. A list that stops short of either end is
// padded with the end colour so the first offset is 0 and the last is 1.
func FixRange(stops []Stop, p css.Profile) []Stop {
	out := make([]Stop, len(stops), len(stops)+2)
	for i, s := range stops {
		if s.Offset < 0 {
			if i+1 < len(stops) {
				if next := stops[i+1]; next.Offset > 0 {
					s.Color = s.Color.Blend(next.Color, math.Abs(s.Offset/(next.Offset-s.Offset)), p)
				}
			}
			s.Offset = 0
		}
		if s.Offset > 1 {
			if i > 0 {
				if prev := stops[i-1]; prev.Offset < 1 {
					s.Color = s.Color.Blend(prev.Color, math.Abs((s.Offset-1)/(s.Offset-prev.Offset)), p)
				}
			}
			s.Offset = 1
		}
		out[i] = s
	}
	if len(out) == 0 {
		return out
	}
	if first := out[0]; first.Offset > 0 {
		out = append([]Stop{{Offset: 0, Color: first.Color}}, out...)
	}
	if last := out[len(out)-1]; last.Offset < 1 {
		out = append(out, Stop{Offset: 1, Color: last.Color})
	}
	return out
}

// ScaleSegment maps [start,end] onto [0,1] and fixes the range.
func ScaleSegment(stops []Stop, start, end float64, p css.Profile) []Stop {
	span := end - start
	out := make([]Stop, len(stops))
	for i, s := range stops {
		if span != 0 {
			s.Offset = (s.Offset - start) / span
		}
		out[i] = s
	}
	return FixRange(out, p)
}

// PrepareForRepeating rescales stops into one repeat unit framed by
// transparent guard stops at 0 and 1.
func PrepareForRepeating(stops []Stop, p css.Profile) ([]Stop, Repeat) {
	if len(stops) == 0 {
		return []Stop{{0, css.Transparent, false}, {1, css.Transparent, false}}, Repeat{}
	}
	start, end := stops[0].Offset, stops[len(stops)-1].Offset
	length := end - start
	if length <= 0 {
		return FixRange(stops, p), Repeat{}
	}
	scaled := ScaleSegment(stops, start, end, p)
	out := make([]Stop, 0, len(scaled)+2)
	out = append(out, Stop{Offset: 0, Color: css.Transparent})
	out = append(out, scaled...)
	out = append(out, Stop{Offset: 1, Color: css.Transparent})
	return out, Repeat{
		Length: length,
		Shift:  math.Mod(start, length) / length,
		Count:  int(math.Ceil(1 / length)),
	}
}

func paintStops(stops []Stop) []canvas.Stop {
	out := make([]canvas.Stop, len(stops))
	for i, s := range stops {
		out[i] = canvas.Stop{Offset: s.Offset, Color: s.Color}
	}
	return out
}
