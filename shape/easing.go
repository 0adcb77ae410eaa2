package shape

import "slices"

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(t float64) float64

var easings = map[string]Easing{
	"linear": func(t float64) float64 { return t },
	"in":     func(t float64) float64 { return t * t },
	"out":    func(t float64) float64 { return -(t * (t - 2)) },
	"inOut": func(t float64) float64 {
		if t < .5 {
			return 2 * t * t
		}
		return -2*t*t + 4*t - 1
	},
	"cubicIn": func(t float64) float64 { return t * t * t },
	"cubicOut": func(t float64) float64 {
		t--
		return t*t*t + 1
	},
	"cubicInOut": func(t float64) float64 {
		if t < .5 {
			return 4 * t * t * t
		}
		t = 2*t - 2
		return .5*t*t*t + 1
	},
}

// EasingByName returns a named easing; unknown names report false.
func EasingByName(name string) (Easing, bool) {
	e, ok := easings[name]
	return e, ok
}

// EasingNames lists the easing names in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
