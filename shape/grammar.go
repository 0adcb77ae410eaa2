package shape

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"
)

// Flags are the single-letter modifiers of a header number.
type Flags uint8

const (
	FlagShift    Flags = 1 << iota // S: horizontal shift animation
	FlagStatic                     // s: drawn once into a cached tile
	FlagRelative                   // r: size relative to the other axis
	FlagFit                        // f: fit segments to the surface width
)

var flagLetters = map[byte]Flags{
	'S': FlagShift,
	's': FlagStatic,
	'r': FlagRelative,
	'f': FlagFit,
}

// Num is a header number with its flags.
type Num struct {
	V     float64
	Flags Flags
}

// Has reports whether all of f are set.
func (n Num) Has(f Flags) bool { return n.Flags&f == f }

// Start modes of the closing edges added around the segments.
const (
	StartNone   = 0
	StartBefore = 1
	StartAfter  = 2
)

// Invert transforms applied when a renderer is inverted.
const (
	InvertNone   = 0
	InvertX      = 1
	InvertY      = 2
	InvertShiftX = 3
)

// Header is the pattern metadata of a shape.
type Header struct {
	// Start is the start mode; its flags carry shift and static.
	Start      Num
	InvertType int
	DelayMul   float64
	// Width and Height are fractions of the surface when at most 1 and
	// CSS pixels otherwise.
	Width, Height Num
	// XRepeat and YRepeat are segment repeat counts; 0 means as many as
	// fit the surface.
	XRepeat, YRepeat int
}

// IsPattern reports whether the shape is tiled from fixed-size segments.
func (h Header) IsPattern() bool { return h.Width.V > 0 }

// ParseHeader parses "<start><flags> <invert> <delay> <w><flags> <h><flags> <xRepeat> <yRepeat>".
// Missing fields take their defaults.
func ParseHeader(s string) (Header, error) {
	h := Header{DelayMul: 1, XRepeat: 1, YRepeat: 1}
	for i, tok := range strings.Fields(s) {
		n, err := parseNum(tok)
		if err != nil {
			return h, err
		}
		switch i {
		case 0:
			h.Start = n
		case 1:
			h.InvertType = int(n.V)
		case 2:
			h.DelayMul = n.V
		case 3:
			h.Width = n
		case 4:
			h.Height = n
		case 5:
			h.XRepeat = int(n.V)
		case 6:
			h.YRepeat = int(n.V)
		}
	}
	return h, nil
}

func parseNum(tok string) (Num, error) {
	v, n := strconv.ParseFloat([]byte(tok))
	num := Num{V: v}
	for i := n; i < len(tok); i++ {
		f, ok := flagLetters[tok[i]]
		if !ok {
			return num, fmt.Errorf("%w: flag %q in %q", ErrSyntax, tok[i], tok)
		}
		num.Flags |= f
	}
	return num, nil
}

// Op is a drawing primitive.
type Op uint8

const (
	MoveTo Op = iota
	LineTo
	Rect
	Arc
	ArcTo
	Ellipse
	QuadTo
	CubicTo
	Spiral
)

const opLetters = "MLRATEQCS"

var opNames = [...]string{"moveTo", "lineTo", "rect", "arc", "arcTo", "ellipse", "quadraticCurveTo", "bezierCurveTo", "spiral"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "op(" + fmt.Sprint(int(o)) + ")"
}

// Size indices select what a coordinate is a fraction of.
const (
	SizeX       = iota // segment width, offset by the segment column
	SizeY              // segment height, offset by the segment row
	SizeAngle          // π
	SizeRadiusX        // segment width
	SizeRadiusY        // segment height
	SizeNone           // used as is
)

// arity lists the size index of every argument of an op.
var arity = [...][]int{
	MoveTo:  {SizeX, SizeY},
	LineTo:  {SizeX, SizeY},
	Rect:    {SizeX, SizeY, SizeRadiusX, SizeRadiusY},
	Arc:     {SizeX, SizeY, SizeRadiusY, SizeAngle, SizeAngle, SizeNone},
	ArcTo:   {SizeX, SizeY, SizeX, SizeY, SizeRadiusY},
	Ellipse: {SizeX, SizeY, SizeRadiusX, SizeRadiusY, SizeAngle, SizeAngle, SizeAngle, SizeNone},
	QuadTo:  {SizeX, SizeY, SizeX, SizeY},
	CubicTo: {SizeX, SizeY, SizeX, SizeY, SizeX, SizeY},
	Spiral:  {SizeX, SizeY, SizeX, SizeY, SizeX, SizeY},
}

// Arity returns the size index of every argument of o.
func (o Op) Arity() []int { return arity[o] }

// Placement limits a command to some segments of a repeated pattern.
type Placement byte

const (
	Everywhere Placement = 0
	First      Placement = 's'
	Middle     Placement = 'm'
	Last       Placement = 'e'
	Edges      Placement = 'c'
)

// Accepts reports whether a command with placement p runs in column i of n.
func (p Placement) Accepts(i, n int) bool {
	first, last := i == 0, i == n-1
	switch p {
	case First:
		return first
	case Last:
		return last
	case Middle:
		return !first && !last
	case Edges:
		return first || last
	}
	return true
}

// Command is one drawing primitive with its coordinates.
type Command struct {
	Op     Op
	Place  Placement
	Coords []Coord
}

// CoordKind tells how a coordinate is evaluated.
type CoordKind uint8

const (
	Plain    CoordKind = iota
	Ref                // @N: argument N of the previous evaluation
	Index              // iA,B: chosen by segment column
	Anim               // aA/B: keyframe values
	Parallax           // pA_B: values chosen by parallax offset
)

// Coord is one compiled coordinate.
type Coord struct {
	Kind CoordKind

	// Plain: Frac × size + Px device pixels + dynamic value Dyn (1-based).
	Frac float64
	Px   float64
	Dyn  int

	// Ref is the 1-based argument index copied by Ref coordinates.
	Ref int

	// Size overrides the argument's size index when not -1.
	Size int

	// Key, Delay and Items describe Index, Anim and Parallax coordinates.
	Key   int
	Delay float64
	Items []Coord
}

// ParseCommands splits a command string on command letters and expands
// commands carrying more coordinates than their arity into follow-ups.
// Follow-ups of a move are lines.
func ParseCommands(s string) ([]Command, error) {
	var groups [][]string
	for _, tok := range strings.Fields(s) {
		if tok[0] >= 'A' && tok[0] <= 'Z' {
			groups = append(groups, []string{tok})
			continue
		}
		if len(groups) == 0 {
			return nil, fmt.Errorf("%w: coordinate %q before any command", ErrSyntax, tok)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], tok)
	}

	var out []Command
	for _, g := range groups {
		head := g[0]
		i := strings.IndexByte(opLetters, head[0])
		if i < 0 {
			return nil, fmt.Errorf("%w: command %q", ErrSyntax, head)
		}
		op := Op(i)
		var place Placement
		if len(head) > 1 {
			place = Placement(head[1])
			if !strings.ContainsRune("smec", rune(place)) {
				return nil, fmt.Errorf("%w: placement %q", ErrSyntax, head)
			}
		}
		coords, err := parseCoords(g[1:], 0, -1)
		if err != nil {
			return nil, err
		}
		n := len(arity[op])
		first := min(n, len(coords))
		out = append(out, Command{Op: op, Place: place, Coords: coords[:first]})

		if op == MoveTo {
			op = LineTo
		}
		n = len(arity[op])
		for rest := coords[first:]; len(rest) > 0; {
			k := min(n, len(rest))
			out = append(out, Command{Op: op, Place: place, Coords: rest[:k]})
			rest = rest[k:]
		}
	}
	return out, nil
}

var itemSeparators = map[byte]string{'a': "/", 'p': "_", 'i': ","}

func parseCoords(toks []string, delay float64, size int) ([]Coord, error) {
	out := make([]Coord, 0, len(toks))
	for _, tok := range toks {
		c, err := parseCoord(tok, delay, size)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func parseCoord(tok string, delay float64, size int) (Coord, error) {
	if tok == "" {
		return Coord{}, fmt.Errorf("%w: empty coordinate", ErrSyntax)
	}
	if i := sizeMarker(tok); i >= 0 {
		size = int(tok[i+1] - '0')
		tok = tok[:i] + tok[i+2:]
	}

	if sym := strings.IndexAny(tok, "api"); sym >= 0 {
		if i := strings.IndexByte(tok[:sym], 'd'); i >= 0 {
			if d, n := strconv.ParseFloat([]byte(tok[i+1 : sym])); n > 0 && d != 0 {
				delay = d
			}
		}
		items, err := parseCoords(strings.Split(tok[sym+1:], itemSeparators[tok[sym]]), delay, size)
		if err != nil {
			return Coord{}, err
		}
		key, _ := strconv.ParseInt([]byte(tok))
		c := Coord{Key: int(key), Delay: delay, Size: size, Items: items}
		switch tok[sym] {
		case 'a':
			c.Kind = Anim
		case 'p':
			c.Kind = Parallax
		default:
			c.Kind = Index
		}
		return c, nil
	}

	c := Coord{Kind: Plain, Size: size}
	frac, n := strconv.ParseFloat([]byte(tok))
	if n > 0 {
		c.Frac = frac
	} else if strings.Contains(tok, "~") {
		c.Frac = 1
	}
	if i := strings.IndexAny(tok, "~#"); i >= 0 {
		px, _ := strconv.ParseFloat([]byte(tok[i+1:]))
		if tok[i] == '~' {
			px = -px
		}
		c.Px = px
	}
	if _, after, ok := strings.Cut(tok, "$"); ok {
		v, _ := strconv.ParseInt([]byte(after))
		c.Dyn = int(v)
	}
	if _, after, ok := strings.Cut(tok, "@"); ok {
		v, _ := strconv.ParseInt([]byte(after))
		if v > 0 {
			c.Kind, c.Ref = Ref, int(v)
		}
	}
	return c, nil
}

// sizeMarker returns the index of the first "s<digit>" in tok, or -1.
func sizeMarker(tok string) int {
	for i := 0; i+1 < len(tok); i++ {
		if tok[i] == 's' && tok[i+1] >= '0' && tok[i+1] <= '9' {
			return i
		}
	}
	return -1
}
