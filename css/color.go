package css

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ErrInvalidColor is returned for colour syntax the parser does not know.
var ErrInvalidColor = errors.New("css: invalid color")

// Color is a non-premultiplied colour with R, G, B in [0,255] and A in [0,1].
// All operations return new values.
type Color struct {
	R, G, B, A float64
}

// Transparent is transparent black.
var Transparent = Color{}

// RGBA builds a colour from channel values.
func RGBA(r, g, b, a float64) Color { return Color{r, g, b, a} }

// ToOpaque multiplies the channels by alpha and returns an opaque colour.
func (c Color) ToOpaque() Color {
	return Color{c.R * c.A, c.G * c.A, c.B * c.A, 1}
}

// HasDiff reports whether interpolating c toward o needs the opaque path
// under profile p: both alpha and RGB differ and the profile asks for it.
func (c Color) HasDiff(o Color, p Profile) bool {
	if p == nil || !p.OpaqueBlend() {
		return false
	}
	return c.A != o.A && (c.R != o.R || c.G != o.G || c.B != o.B)
}

// Blend interpolates from c toward o by weight w.
func (c Color) Blend(o Color, w float64, p Profile) Color {
	if c.HasDiff(o, p) {
		return c.OpaqueBlend(o, w)
	}
	return c.lerp(o, w)
}

func (c Color) lerp(o Color, w float64) Color {
	return Color{
		R: c.R + (o.R-c.R)*w,
		G: c.G + (o.G-c.G)*w,
		B: c.B + (o.B-c.B)*w,
		A: c.A + (o.A-c.A)*w,
	}
}

// OpaqueBlend blends the opaque equivalents of c and o, then divides the
// result back by the interpolated alpha.
func (c Color) OpaqueBlend(o Color, w float64) Color {
	alpha := math.Max(c.A+(o.A-c.A)*w, 0.001)
	mixed := c.ToOpaque().lerp(o.ToOpaque(), w)
	return Color{mixed.R / alpha, mixed.G / alpha, mixed.B / alpha, alpha}
}

// NRGBA converts to an 8-bit non-premultiplied colour.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: clampByte(c.R),
		G: clampByte(c.G),
		B: clampByte(c.B),
		A: clampByte(c.A * 255),
	}
}

// FromNRGBA converts an 8-bit colour.
func FromNRGBA(n color.NRGBA) Color {
	return Color{float64(n.R), float64(n.G), float64(n.B), float64(n.A) / 255}
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}

// String renders rgba() with truncated channels.
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", int(c.R), int(c.G), int(c.B),
		strconv.FormatFloat(c.A, 'f', -1, 64))
}

// ParseColor parses rgb()/rgba(), hex, hsl()/hsla(), named colours and
// transparent. Unknown syntax yields Transparent and ErrInvalidColor.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "transparent" || s == "none":
		return Transparent, nil
	case strings.HasPrefix(s, "rgb"):
		return parseFunc(s, false)
	case strings.HasPrefix(s, "hsl"):
		return parseFunc(s, true)
	case s[0] == '#':
		return parseHex(s[1:])
	}
	if n, ok := colornames.Map[s]; ok {
		return Color{float64(n.R), float64(n.G), float64(n.B), float64(n.A) / 255}, nil
	}
	return Transparent, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// MustColor parses s and returns Transparent on error.
func MustColor(s string) Color {
	c, _ := ParseColor(s)
	return c
}

func parseHex(h string) (Color, error) {
	var ch []float64
	switch len(h) {
	case 3, 4:
		for i := range len(h) {
			v, err := strconv.ParseUint(h[i:i+1], 16, 8)
			if err != nil {
				return Transparent, fmt.Errorf("%w: #%s", ErrInvalidColor, h)
			}
			ch = append(ch, float64(v*17))
		}
	case 6, 8:
		for i := 0; i < len(h); i += 2 {
			v, err := strconv.ParseUint(h[i:i+2], 16, 8)
			if err != nil {
				return Transparent, fmt.Errorf("%w: #%s", ErrInvalidColor, h)
			}
			ch = append(ch, float64(v))
		}
	default:
		return Transparent, fmt.Errorf("%w: #%s", ErrInvalidColor, h)
	}
	c := Color{ch[0], ch[1], ch[2], 1}
	if len(ch) == 4 {
		c.A = ch[3] / 255
	}
	return c, nil
}

// parseFunc handles the comma and space separated rgb()/hsl() syntaxes.
func parseFunc(s string, hsl bool) (Color, error) {
	body := strings.NewReplacer(",", " ", "/", " ").Replace(Content(s))
	args := strings.Fields(body)
	if len(args) < 3 {
		return Transparent, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	nums := make([]float64, len(args))
	for i, a := range args {
		v, ok := leadingFloat(a)
		if !ok {
			return Transparent, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		if strings.HasSuffix(a, "%") {
			v /= 100
			if i < 3 && !hsl {
				v *= 255
			}
		}
		if hsl && i == 0 && strings.HasSuffix(a, "turn") {
			v *= 360
		}
		nums[i] = v
	}
	alpha := 1.0
	if len(nums) > 3 {
		alpha = math.Max(0, math.Min(1, nums[3]))
	}
	if hsl {
		sat, light := nums[1], nums[2]
		if !strings.HasSuffix(args[1], "%") {
			sat /= 100
		}
		if !strings.HasSuffix(args[2], "%") {
			light /= 100
		}
		hue := math.Mod(nums[0], 360)
		if hue < 0 {
			hue += 360
		}
		rgb := colorful.Hsl(hue, sat, light).Clamped()
		return Color{rgb.R * 255, rgb.G * 255, rgb.B * 255, alpha}, nil
	}
	return Color{nums[0], nums[1], nums[2], alpha}, nil
}
