package css

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit tags a Value.
type Unit uint8

const (
	// Number is a unitless magnitude; it resolves like pixels.
	Number Unit = iota
	Px
	Percent
	Calc
	// Keyword values carry an unparsed identifier such as auto or cover.
	Keyword
)

// Value is a CSS length, percentage, calc() expression or keyword.
type Value struct {
	Num     float64
	Unit    Unit
	Keyword string

	// Op is '+' or '-' for calc() terms and 0 elsewhere.
	Op    byte
	Terms []Value
}

// PxValue returns a pixel value.
func PxValue(n float64) Value { return Value{Num: n, Unit: Px} }

// Pct returns a percentage value.
func Pct(n float64) Value { return Value{Num: n, Unit: Percent} }

// Kw returns a keyword value.
func Kw(k string) Value { return Value{Unit: Keyword, Keyword: k} }

// IsKeyword reports whether v is the keyword k.
func (v Value) IsKeyword(k string) bool { return v.Unit == Keyword && v.Keyword == k }

// IsLength reports whether v resolves to a number.
func (v Value) IsLength() bool { return v.Unit != Keyword }

// Resolve evaluates v. With toPx set, percentages resolve against ref and
// pixels scale by pxScale·dpr; otherwise the result is a fraction of ref.
func (v Value) Resolve(toPx bool, ref, pxScale, dpr float64) float64 {
	switch v.Unit {
	case Keyword:
		return 0
	case Calc:
		var sum float64
		for _, t := range v.Terms {
			r := t.Resolve(toPx, ref, pxScale, dpr)
			if t.Op == '-' {
				r = -r
			}
			sum += r
		}
		return sum
	case Percent:
		if toPx {
			return v.Num / 100 * ref
		}
		return v.Num / 100
	}
	if toPx {
		return v.Num * pxScale * dpr
	}
	if ref == 0 {
		return 0
	}
	return v.Num * dpr / ref
}

// ToPx resolves v to device pixels.
func (v Value) ToPx(ref, pxScale, dpr float64) float64 {
	return v.Resolve(true, ref, pxScale, dpr)
}

// String renders v back to CSS text.
func (v Value) String() string {
	switch v.Unit {
	case Keyword:
		return v.Keyword
	case Percent:
		return formatNum(v.Num) + "%"
	case Px:
		return formatNum(v.Num) + "px"
	case Calc:
		var b strings.Builder
		b.WriteString("calc(")
		for i, t := range v.Terms {
			if i > 0 {
				b.WriteByte(' ')
				b.WriteByte(t.Op)
				b.WriteByte(' ')
			}
			t.Op = 0
			b.WriteString(t.String())
		}
		b.WriteByte(')')
		return b.String()
	}
	return formatNum(v.Num)
}

func formatNum(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

var positionKeywords = map[string]float64{
	"left":   0,
	"top":    0,
	"center": 50,
	"right":  100,
	"bottom": 100,
}

// IsNumeric reports whether s starts with a number.
func IsNumeric(s string) bool {
	_, ok := leadingFloat(s)
	return ok
}

// leadingFloat parses the longest numeric prefix of s.
func leadingFloat(s string) (float64, bool) {
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case (c == '+' || c == '-') && (end == 0 || s[end-1] == 'e' || s[end-1] == 'E'):
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && seenDigit && !seenExp && end+1 < len(s) &&
			(s[end+1] >= '0' && s[end+1] <= '9' || s[end+1] == '-' || s[end+1] == '+'):
			seenExp = true
		default:
			goto done
		}
		end++
	}
done:
	if !seenDigit {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseValue parses one length token. Unknown tokens become keywords.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "calc") {
		parts := strings.Fields(Content(s))
		out := Value{Unit: Calc}
		for i := 0; i < len(parts); i += 2 {
			term := ParseValue(parts[i])
			term.Op = '+'
			if i > 0 && parts[i-1] == "-" {
				term.Op = '-'
			}
			out.Terms = append(out.Terms, term)
		}
		return out
	}
	if pct, ok := positionKeywords[s]; ok {
		return Pct(pct)
	}
	n, ok := leadingFloat(s)
	if !ok {
		return Kw(s)
	}
	switch {
	case strings.HasSuffix(s, "%"):
		return Pct(n)
	case strings.HasSuffix(s, "px"):
		return PxValue(n)
	}
	return Value{Num: n, Unit: Number}
}

var edgeOffset = regexp.MustCompile(`(left|right|top|bottom)(\s+[-+]?[\d.]+\S*)?`)

// ParseValues parses a space separated list. For background-position,
// edge-offset pairs such as "right 10px" become calc(100% - 10px).
func ParseValues(list string, isPosition bool) []Value {
	if isPosition && edgeOffset.MatchString(list) {
		list = edgeOffset.ReplaceAllStringFunc(list, func(m string) string {
			sub := edgeOffset.FindStringSubmatch(m)
			edge, off := sub[1], strings.TrimSpace(sub[2])
			if off == "" {
				off = "0px"
			}
			op := "+"
			if edge == "right" || edge == "bottom" {
				op = "-"
			}
			return "calc(" + formatNum(positionKeywords[edge]) + "% " + op + " " + off + ")"
		})
	}
	parts := Split(list, ' ')
	out := make([]Value, len(parts))
	for i, p := range parts {
		out[i] = ParseValue(p)
	}
	return out
}

// Pair returns the first two values of list, repeating the last one.
func Pair(list []Value, fallback Value) [2]Value {
	switch len(list) {
	case 0:
		return [2]Value{fallback, fallback}
	case 1:
		return [2]Value{list[0], list[0]}
	}
	return [2]Value{list[0], list[1]}
}
