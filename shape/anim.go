package shape

import "math"

// Clock is the animation time of one renderer. Phases run forward and
// then backward when Reverse is set.
type Clock struct {
	Dur     float64
	Reverse bool
	Easing  Easing
	Total   float64
}

// NewClock returns a one second reversing clock with inOut easing.
func NewClock() *Clock {
	return &Clock{Dur: 1000, Reverse: true, Easing: easings["inOut"]}
}

// Advance moves the clock forward by dt milliseconds.
func (c *Clock) Advance(dt float64) { c.Total += dt }

// Phase returns the eased phase at Total+offset.
func (c *Clock) Phase(offset float64) float64 {
	if c.Dur <= 0 {
		return 0
	}
	t := c.Total + offset
	cur := math.Mod(t, c.Dur)
	if c.Reverse && math.Mod(t/c.Dur, 2) >= 1 {
		cur = c.Dur - cur
	}
	e := c.Easing
	if e == nil {
		e = easings["linear"]
	}
	return e(cur / c.Dur)
}

// Keyframes interpolates vals placed at the times in keys. Before the
// first key it holds the first value and past the last key the last one.
func Keyframes(vals, keys []float64, t float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	if len(keys) == 0 || keys[0] > t {
		return vals[0]
	}
	for i := 1; i < len(keys) && i < len(vals); i++ {
		if keys[i] >= t {
			span := keys[i] - keys[i-1]
			if span == 0 {
				return vals[i]
			}
			return vals[i-1] + (t-keys[i-1])/span*(vals[i]-vals[i-1])
		}
	}
	return vals[len(vals)-1]
}
