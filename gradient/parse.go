package gradient

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/gogpu/cdivs/css"
	"github.com/gogpu/cdivs/internal/logx"
)

// ErrSyntax is returned for image functions the parser does not handle.
var ErrSyntax = errors.New("gradient: unsupported syntax")

// Kind is the gradient function family.
type Kind uint8

const (
	Linear Kind = iota
	Radial
)

func (k Kind) String() string {
	if k == Radial {
		return "radial"
	}
	return "linear"
}

// Gradient is a parsed linear-gradient() or radial-gradient().
type Gradient struct {
	Kind      Kind
	Repeating bool

	// Angle is the linear direction in degrees, 0 pointing up. When
	// Corner is set the angle follows the box diagonal instead.
	Angle  float64
	Corner *[2]float64

	// Radial shape and sizing keyword.
	Circle  bool
	Side    bool
	Closest bool
	Pos     [2]css.Value

	Stops *Stops
}

var cornerVectors = map[string][2]float64{
	"left top":     {-1, 1},
	"left bottom":  {-1, -1},
	"right top":    {1, 1},
	"right bottom": {1, -1},
}

var sideAngles = map[string]float64{
	"top":    0,
	"right":  90,
	"bottom": 180,
	"left":   270,
}

// Parse parses a CSS gradient function. Colours that fail to parse become
// transparent and are reported through the package logger.
func Parse(s string) (*Gradient, error) {
	s = strings.TrimSpace(s)
	g := &Gradient{Repeating: strings.HasPrefix(s, "repeating-")}
	switch {
	case strings.Contains(s, "linear-gradient"):
		g.Kind, g.Angle = Linear, 180
	case strings.Contains(s, "radial-gradient"):
		g.Kind = Radial
	default:
		return nil, fmt.Errorf("%w: %q", ErrSyntax, s)
	}

	parts := css.Split(css.Content(s), ',')
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: no stops in %q", ErrSyntax, s)
	}
	info := strings.TrimSpace(parts[0])

	if g.Kind == Linear {
		if a, ok := parseAngle(info); ok {
			g.Angle = a
			parts = parts[1:]
		} else if rest, ok := strings.CutPrefix(info, "to "); ok {
			g.parseDirection(rest)
			parts = parts[1:]
		}
	} else if g.parseRadialShape(info) {
		parts = parts[1:]
	}

	g.Stops = ParseStops(parts)
	if g.Stops.Len() == 0 {
		return nil, fmt.Errorf("%w: no stops in %q", ErrSyntax, s)
	}
	return g, nil
}

func parseAngle(s string) (float64, bool) {
	units := []struct {
		suffix string
		scale  float64
	}{
		{"deg", 1},
		{"grad", 0.9},
		{"rad", 180 / math.Pi},
		{"turn", 360},
	}
	for _, u := range units {
		num, ok := strings.CutSuffix(s, u.suffix)
		if !ok || !css.IsNumeric(num) {
			continue
		}
		v := css.ParseValue(num).Num * u.scale
		v = math.Mod(v, 360)
		if v < 0 {
			v += 360
		}
		return v, true
	}
	return 0, false
}

func (g *Gradient) parseDirection(dir string) {
	words := strings.Fields(dir)
	slices.SortFunc(words, func(a, b string) int {
		// Horizontal keyword first: "top left" == "left top".
		return horizontalRank(a) - horizontalRank(b)
	})
	key := strings.Join(words, " ")
	if v, ok := cornerVectors[key]; ok {
		g.Corner = &v
		return
	}
	if a, ok := sideAngles[key]; ok {
		g.Angle = a
		return
	}
	logx.Diag("gradient", "unknown direction", "value", dir)
}

func horizontalRank(w string) int {
	if w == "left" || w == "right" {
		return 0
	}
	return 1
}

// parseRadialShape reads the optional shape/size/position prefix and
// reports whether info was consumed.
func (g *Gradient) parseRadialShape(info string) bool {
	shape, pos, hasPos := strings.Cut(info, "at ")
	consumed := hasPos

	size := "farthest-corner"
	for _, w := range strings.Fields(shape) {
		switch w {
		case "circle":
			g.Circle, consumed = true, true
		case "ellipse":
			consumed = true
		case "closest-side", "closest-corner", "farthest-side", "farthest-corner":
			size, consumed = w, true
		}
	}
	g.Side = strings.HasSuffix(size, "side")
	g.Closest = strings.HasPrefix(size, "closest")

	if !hasPos {
		pos = "center center"
	}
	vals := css.ParseValues(strings.TrimSpace(pos), true)
	g.Pos = css.Pair(vals, css.Pct(50))
	return consumed
}

// ParseStops parses the comma separated stop arguments of a gradient.
// A stop may carry zero, one or two offsets; a lone colour at either end
// gets 0% or 100%.
func ParseStops(parts []string) *Stops {
	var raw []RawStop
	for i, part := range parts {
		tokens := css.Split(strings.TrimSpace(part), ' ')
		if len(tokens) == 0 {
			continue
		}
		var col css.Color
		hasColor := false
		if !isOffset(tokens[0]) {
			c, err := css.ParseColor(tokens[0])
			if err != nil {
				logx.Diag("gradient", "bad stop colour", "value", tokens[0], "err", err)
			}
			col, hasColor = c, true
			tokens = tokens[1:]
		}
		for _, t := range tokens {
			raw = append(raw, RawStop{Offset: css.ParseValue(t), HasOffset: true, Color: col, HasColor: hasColor})
		}
		if len(tokens) == 0 {
			r := RawStop{Color: col, HasColor: hasColor}
			switch i {
			case 0:
				r.Offset, r.HasOffset = css.Pct(0), true
			case len(parts) - 1:
				r.Offset, r.HasOffset = css.Pct(100), true
			}
			raw = append(raw, r)
		}
	}
	return NewStops(raw)
}

func isOffset(tok string) bool {
	return css.IsNumeric(tok) || strings.HasPrefix(tok, "calc(")
}
