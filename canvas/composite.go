package canvas

import "strings"

// Op is a Porter-Duff composite operation. Pixel values are premultiplied.
type Op uint8

const (
	SourceOver      Op = iota // S + D(1-Sa)
	SourceIn                  // S·Da
	SourceOut                 // S(1-Da)
	SourceAtop                // S·Da + D(1-Sa)
	DestinationOver           // S(1-Da) + D
	DestinationIn             // D·Sa
	DestinationOut            // D(1-Sa)
	DestinationAtop           // S(1-Da) + D·Sa
	Copy                      // S
	Xor                       // S(1-Da) + D(1-Sa)
	Lighter                   // S + D
)

var opNames = [...]string{
	SourceOver:      "source-over",
	SourceIn:        "source-in",
	SourceOut:       "source-out",
	SourceAtop:      "source-atop",
	DestinationOver: "destination-over",
	DestinationIn:   "destination-in",
	DestinationOut:  "destination-out",
	DestinationAtop: "destination-atop",
	Copy:            "copy",
	Xor:             "xor",
	Lighter:         "lighter",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "source-over"
}

// ParseOp maps a globalCompositeOperation name to an Op.
func ParseOp(name string) (Op, bool) {
	name = strings.TrimSpace(name)
	for i, n := range opNames {
		if n == name {
			return Op(i), true
		}
	}
	return SourceOver, false
}

// unbounded ops change the destination outside the painted shape, where
// the source is transparent.
func (o Op) unbounded() bool {
	switch o {
	case SourceIn, SourceOut, DestinationIn, DestinationAtop, Copy:
		return true
	}
	return false
}

func (o Op) apply(sr, sg, sb, sa, dr, dg, db, da uint8) (uint8, uint8, uint8, uint8) {
	switch o {
	case SourceIn:
		return mul(sr, da), mul(sg, da), mul(sb, da), mul(sa, da)
	case SourceOut:
		ida := 255 - da
		return mul(sr, ida), mul(sg, ida), mul(sb, ida), mul(sa, ida)
	case SourceAtop:
		isa := 255 - sa
		return add(mul(sr, da), mul(dr, isa)), add(mul(sg, da), mul(dg, isa)),
			add(mul(sb, da), mul(db, isa)), da
	case DestinationOver:
		ida := 255 - da
		return add(mul(sr, ida), dr), add(mul(sg, ida), dg), add(mul(sb, ida), db), add(mul(sa, ida), da)
	case DestinationIn:
		return mul(dr, sa), mul(dg, sa), mul(db, sa), mul(da, sa)
	case DestinationOut:
		isa := 255 - sa
		return mul(dr, isa), mul(dg, isa), mul(db, isa), mul(da, isa)
	case DestinationAtop:
		ida := 255 - da
		return add(mul(sr, ida), mul(dr, sa)), add(mul(sg, ida), mul(dg, sa)),
			add(mul(sb, ida), mul(db, sa)), sa
	case Copy:
		return sr, sg, sb, sa
	case Xor:
		ida, isa := 255-da, 255-sa
		return add(mul(sr, ida), mul(dr, isa)), add(mul(sg, ida), mul(dg, isa)),
			add(mul(sb, ida), mul(db, isa)), add(mul(sa, ida), mul(da, isa))
	case Lighter:
		return add(sr, dr), add(sg, dg), add(sb, db), add(sa, da)
	}
	isa := 255 - sa
	return add(sr, mul(dr, isa)), add(sg, mul(dg, isa)), add(sb, mul(db, isa)), add(sa, mul(da, isa))
}

// mul computes a·b/255 with rounding.
func mul(a, b uint8) uint8 {
	return uint8((uint16(a)*uint16(b) + 127) / 255)
}

func add(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}
