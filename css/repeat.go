package css

import "strings"

// Repeat is one axis of background-repeat.
type Repeat uint8

const (
	NoRepeat Repeat = iota
	RepeatRepeat
	Round
	Space
)

func (r Repeat) String() string {
	switch r {
	case RepeatRepeat:
		return "repeat"
	case Round:
		return "round"
	case Space:
		return "space"
	}
	return "no-repeat"
}

// Tiles reports whether the axis paints more than one tile.
func (r Repeat) Tiles() bool { return r != NoRepeat }

// ParseRepeat parses a background-repeat value into per-axis behaviour.
// A single keyword applies to both axes.
func ParseRepeat(s string) [2]Repeat {
	switch s = strings.TrimSpace(s); s {
	case "repeat-x":
		return [2]Repeat{RepeatRepeat, NoRepeat}
	case "repeat-y":
		return [2]Repeat{NoRepeat, RepeatRepeat}
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return [2]Repeat{RepeatRepeat, RepeatRepeat}
	}
	out := [2]Repeat{}
	for i := range out {
		switch fields[min(i, len(fields)-1)] {
		case "no-repeat":
			out[i] = NoRepeat
		case "round":
			out[i] = Round
		case "space":
			out[i] = Space
		default:
			out[i] = RepeatRepeat
		}
	}
	return out
}
