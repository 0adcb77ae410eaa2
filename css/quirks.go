package css

import (
	"math"
	"strings"
)

// Profile captures the numeric corrections a rendering engine applies when
// painting backgrounds natively. The engine reproduces the same output by
// routing these decisions through the active profile.
type Profile interface {
	// Name identifies the profile in logs and CLI flags.
	Name() string

	// OpaqueBlend reports whether colour pairs that differ in both alpha
	// and RGB must be interpolated through their opaque equivalents.
	OpaqueBlend() bool

	// RoundPosition snaps one axis of a resolved background offset.
	// size is the resolved tile size and elPos the element's offset on the
	// drawing surface along the same axis.
	RoundPosition(offset, size, elPos float64, repeat Repeat) float64

	// PositionFollowsElement reports whether sub-pixel element placement
	// affects the rendered tile (tile size snapping and move-as-resize) and
	// the placement of a divider surface.
	PositionFollowsElement() bool

	// ClipDiff returns the correction added to a divider's clip inset of
	// size CSS pixels on an element at y with height h. ok is false when
	// the inset is used as is.
	ClipDiff(size, y, h, dpr float64, bottom bool) (diff float64, ok bool)

	// RoundSpaceGap reports whether background-repeat: space gaps are
	// rounded to whole pixels.
	RoundSpaceGap() bool

	// LinearRepeatPad is added to the gradient line length when laying out
	// repeating linear gradients.
	LinearRepeatPad() float64

	// SnapMid is the fractional threshold at which a device pixel rounds up.
	SnapMid() float64
}

type gecko struct{}

func (gecko) Name() string                 { return "gecko" }
func (gecko) OpaqueBlend() bool            { return true }
func (gecko) PositionFollowsElement() bool { return false }
func (gecko) RoundSpaceGap() bool          { return false }
func (gecko) LinearRepeatPad() float64     { return 0 }
func (gecko) SnapMid() float64             { return 0.5 - 1.0/120 }

func (gecko) ClipDiff(_, _, _, _ float64, _ bool) (float64, bool) { return 0, false }

// Gecko offsets depend on the fractional part of the tile size; zero
// offsets ignore it.
func (p gecko) RoundPosition(offset, size, _ float64, _ Repeat) float64 {
	if offset == 0 {
		return 0
	}
	return Snap(offset-(size-math.Round(size)), 1, p.SnapMid())
}

type blink struct{}

func (blink) Name() string                 { return "blink" }
func (blink) OpaqueBlend() bool            { return true }
func (blink) PositionFollowsElement() bool { return true }
func (blink) RoundSpaceGap() bool          { return false }
func (blink) LinearRepeatPad() float64     { return 0 }
func (blink) SnapMid() float64             { return 0.5 - 1.0/128 }

func (blink) RoundPosition(offset, size, elPos float64, _ Repeat) float64 {
	end := elPos + size
	return math.Round(offset - (end - math.Round(end)))
}

// Only the bottom clip moves, by a whole pixel, when the element's
// fractional top and height carry across a pixel boundary.
func (blink) ClipDiff(_, y, h, dpr float64, bottom bool) (float64, bool) {
	if !bottom {
		return 0, false
	}
	fy := math.Mod(y*dpr, 1)
	fh := math.Mod(h*dpr, 1)
	sum := fy + fh
	switch {
	case fy < .5 && fh < .5 && sum >= .5:
		return -1, true
	case fy >= .5 && fh >= .5 && sum >= 1 && sum < 1.5:
		return 1, true
	}
	return 0, false
}

type webkit struct{}

func (webkit) Name() string                 { return "webkit" }
func (webkit) OpaqueBlend() bool            { return false }
func (webkit) PositionFollowsElement() bool { return false }
func (webkit) RoundSpaceGap() bool          { return true }
func (webkit) LinearRepeatPad() float64     { return 1 }
func (webkit) SnapMid() float64             { return 0.5 - 1.0/128 }

func (p webkit) ClipDiff(size, _, h, dpr float64, bottom bool) (float64, bool) {
	mid := p.SnapMid()
	var d float64
	if bottom {
		d = math.Mod((h-size)*dpr, 1)
		if d >= mid {
			d = -(1 - d)
		}
	} else {
		d = math.Mod(size*dpr, 1)
		if d >= mid {
			d = 1 - d
		} else {
			d = -d
		}
	}
	return d / dpr, true
}

// Repeated WebKit backgrounds keep sub-pixel offsets.
func (webkit) RoundPosition(offset, _, _ float64, repeat Repeat) float64 {
	if repeat == RepeatRepeat {
		return offset
	}
	return math.Round(offset)
}

type generic struct{}

func (generic) Name() string                                         { return "generic" }
func (generic) OpaqueBlend() bool                                    { return false }
func (generic) PositionFollowsElement() bool                         { return false }
func (generic) RoundSpaceGap() bool                                  { return false }
func (generic) LinearRepeatPad() float64                             { return 0 }
func (generic) SnapMid() float64                                     { return 0.5 - 1.0/128 }
func (generic) RoundPosition(offset, _, _ float64, _ Repeat) float64 { return math.Round(offset) }
func (generic) ClipDiff(_, _, _, _ float64, _ bool) (float64, bool)  { return 0, false }

// Built-in profiles.
var (
	Gecko   Profile = gecko{}
	Blink   Profile = blink{}
	WebKit  Profile = webkit{}
	Generic Profile = generic{}
)

// ProfileByName returns a built-in profile, or Generic for unknown names.
func ProfileByName(name string) Profile {
	switch strings.ToLower(name) {
	case "gecko", "firefox":
		return Gecko
	case "blink", "chrome", "chromium":
		return Blink
	case "webkit", "safari":
		return WebKit
	}
	return Generic
}

// DetectProfile picks a profile from a user agent string.
func DetectProfile(userAgent string) Profile {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "gecko/"):
		return Gecko
	case strings.Contains(ua, "chrome"):
		return Blink
	case strings.Contains(ua, "webkit"):
		return WebKit
	}
	return Generic
}

// Env is the rendering environment a resolution runs in.
type Env struct {
	DPR     float64
	Profile Profile
}

// DefaultEnv is a 1x generic environment.
func DefaultEnv() Env { return Env{DPR: 1, Profile: Generic} }

// Normalize fills zero fields with defaults.
func (e Env) Normalize() Env {
	if e.DPR <= 0 {
		e.DPR = 1
	}
	if e.Profile == nil {
		e.Profile = Generic
	}
	return e
}

// Snap converts CSS pixels to device pixels, rounding up once the
// fractional part reaches the profile's threshold.
func (e Env) Snap(v float64) float64 {
	return Snap(v, e.DPR, e.Profile.SnapMid())
}

// Snap scales v by dpr and rounds up when the fraction reaches mid.
func Snap(v, dpr, mid float64) float64 {
	v *= dpr
	f := math.Floor(v)
	if v-f >= mid {
		f++
	}
	return f
}
