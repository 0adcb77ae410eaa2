package shape

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is returned for malformed shape definitions.
	ErrSyntax = errors.New("shape: syntax error")
	// ErrUnknownShape is returned when a shape name is not registered.
	ErrUnknownShape = errors.New("shape: unknown shape")
)

// Params are the inputs of a dynamic value function for one segment.
type Params struct {
	I, J int
	// W and H are the surface size in CSS pixels.
	W, H float64
	// WP and HP are the segment column and row as fractions of the repeat
	// counts; IWP and IHP are their complements.
	WP, HP, IWP, IHP float64
}

// DynamicFunc computes the $N values of a shape for one segment.
type DynamicFunc func(p Params) []float64

// Def is a shape definition as written in the library.
type Def struct {
	Name     string      `yaml:"name"`
	Abbr     string      `yaml:"abbr"`
	Header   string      `yaml:"header"`
	Commands string      `yaml:"commands"`
	Parent   string      `yaml:"parent"`
	Keys     [][]float64 `yaml:"keys"`
	Dynamic  string      `yaml:"dynamic"`
}

// Program is a compiled shape. Programs are immutable and shared.
type Program struct {
	Name     string
	Header   Header
	Commands []Command
	// Keys are keyframe time tables indexed by Coord.Key.
	Keys    [][]float64
	Dynamic DynamicFunc
}

var defaultKeys = [][]float64{{0, 1}}

// Compile compiles a definition whose parent references are resolved.
func Compile(d Def) (*Program, error) {
	h, err := ParseHeader(d.Header)
	if err != nil {
		return nil, fmt.Errorf("shape %q header: %w", d.Name, err)
	}
	cmds, err := ParseCommands(d.Commands)
	if err != nil {
		return nil, fmt.Errorf("shape %q commands: %w", d.Name, err)
	}
	p := &Program{Name: d.Name, Header: h, Commands: cmds, Keys: d.Keys}
	if len(p.Keys) == 0 {
		p.Keys = defaultKeys
	}
	if d.Dynamic != "" {
		fn, ok := dynamicFunc(d.Dynamic)
		if !ok {
			return nil, fmt.Errorf("shape %q: %w: dynamic function %q", d.Name, ErrSyntax, d.Dynamic)
		}
		p.Dynamic = fn
	}
	for _, c := range cmds {
		if err := p.checkKeys(c.Coords); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Program) checkKeys(cs []Coord) error {
	for _, c := range cs {
		if (c.Kind == Anim || c.Kind == Parallax) && (c.Key < 0 || c.Key >= len(p.Keys)) {
			return fmt.Errorf("shape %q: %w: keyframe table %d", p.Name, ErrSyntax, c.Key)
		}
		if err := p.checkKeys(c.Items); err != nil {
			return err
		}
	}
	return nil
}

// Static reports whether the shape is drawn once into a cached tile.
func (p *Program) Static() bool { return p.Header.Start.Has(FlagStatic) }

// Shifts reports whether the shape supports horizontal shift animation.
func (p *Program) Shifts() bool { return p.Header.Start.Has(FlagShift) }

// Animated reports whether any coordinate is animated.
func (p *Program) Animated() bool {
	var walk func([]Coord) bool
	walk = func(cs []Coord) bool {
		for _, c := range cs {
			if c.Kind == Anim || walk(c.Items) {
				return true
			}
		}
		return false
	}
	for _, c := range p.Commands {
		if walk(c.Coords) {
			return true
		}
	}
	return false
}
