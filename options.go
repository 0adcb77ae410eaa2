package cdivs

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	pstrconv "github.com/tdewolff/parse/v2/strconv"

	"github.com/gogpu/cdivs/css"
)

// ErrUnknownOption is returned by ParseOptions for names that are neither an
// option nor an abbreviation. The value is kept.
var ErrUnknownOption = errors.New("cdivs: unknown option")

// Options maps option names to values. Values are bool, float64, string,
// nil (unset) or []any for breakpoint arrays. Abbreviated names are
// accepted wherever Options are taken.
type Options map[string]any

// Clone returns a copy of o. Arrays are copied too.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		if a, ok := v.([]any); ok {
			v = slices.Clone(a)
		}
		out[k] = v
	}
	return out
}

type optionDef struct {
	name, abbr string
	def        any
	// dynamic options pick their value from an array by breakpoint index.
	dynamic bool
}

var optionDefs = []optionDef{
	{"breakpoints", "b", []any{768.0, 992.0, 1200.0}, false},
	{"size", "s", []any{80.0, 100.0, 110.0, 120.0}, true},

	{"semiTransparent", "sTr", "auto", false},
	{"ignoreTransparency", "iT", false, false},

	{"type", "t", "waves", false},
	{"inverted", "i", false, false},
	{"opacity", "o", .8, false},
	{"underlay", "u", false, false},
	{"inners", "in", false, false},
	{"opposite", "op", false, false},
	{"bottom", "bt", false, false},
	{"scroll", "sc", false, false},
	{"scrollParent", "sp", "", false},
	{"stroke", "sr", 0.0, false},

	{"dur", "d", []any{2000.0}, true},
	{"startTime", "sT", 0.0, false},
	{"timingFnc", "tF", "inOut", false},
	{"delay", "dl", 0.0, false},
	{"strength", "st", 1.0, false},
	{"shift", "sh", false, false},

	{"segFit", "sF", true, false},
	{"segSize", "sS", 1.0, false},
	{"scale", "sl", 0.0, false},

	{"addType", "aT", "invert", false},
	{"addCount", "aC", 1.0, false},
	{"addOpacity", "aO", .5, false},
	{"addSegFit", "aF", nil, false},
	{"addSegSize", "aSS", nil, false},

	{"addDur", "aD", []any{nil}, true},
	{"addStartTime", "aST", nil, false},
	{"addStrength", "aSt", nil, false},
	{"addDelay", "aDl", nil, false},
	{"addShift", "aSh", nil, false},

	{"decor", "dc", "lines", false},
	{"decorFading", "dF", "fade", false},
	{"decorOpacity", "dO", .5, false},
	{"decorWidth", "dW", 1.0, false},
}

var (
	abbrs    = map[string]string{}
	dynamic  = map[string]bool{}
	defaults Options
)

func init() { resetDefaults() }

func resetDefaults() {
	defaults = make(Options, len(optionDefs))
	for _, d := range optionDefs {
		defaults[d.name] = d.def
		abbrs[d.abbr] = d.name
		dynamic[d.name] = d.dynamic
	}
	defaults = defaults.Clone()
}

// OptionName returns the full name of an option or abbreviation.
func OptionName(name string) string {
	if full, ok := abbrs[name]; ok {
		return full
	}
	return name
}

func known(name string) bool {
	_, ok := dynamic[name]
	return ok
}

// canonical returns o with every abbreviation expanded.
func canonical(o Options) Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[OptionName(k)] = v
	}
	return out
}

// DefaultOptions returns a copy of the current defaults.
func DefaultOptions() Options { return defaults.Clone() }

// SetDefaultOptions changes the defaults of dividers created afterwards.
func SetDefaultOptions(o Options) {
	maps.Copy(defaults, canonical(o).Clone())
}

// ParseOptions parses "name: value, name: [a, b]". Values are booleans
// (true, false, ! and !!), unsigned numbers, bracketed arrays or strings
// with quotes and parentheses stripped. In an array given for a breakpoint
// option, $ keeps the default at that position.
func ParseOptions(s string) (Options, error) {
	out := Options{}
	var errs []error
	for _, part := range css.Split(s, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		prop, val, _ := strings.Cut(part, ":")
		prop = OptionName(strings.TrimSpace(prop))
		if !known(prop) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownOption, prop))
		}
		v := parseValue(strings.TrimSpace(val))
		if a, ok := v.([]any); ok && dynamic[prop] {
			def, _ := defaults[prop].([]any)
			for i, x := range a {
				if x == "$" {
					a[i] = nil
					if i < len(def) {
						a[i] = def[i]
					}
				}
			}
		}
		out[prop] = v
	}
	return out, errors.Join(errs...)
}

func parseValue(v string) any {
	switch {
	case v == "":
		return nil
	case v == "true" || v == "false":
		return v == "true"
	case v == "!" || v == "!!":
		return v == "!"
	case strings.Trim(v, "0123456789.") == "":
		f, _ := pstrconv.ParseFloat([]byte(v))
		return f
	case v[0] == '[':
		inner := strings.TrimSuffix(v[1:], "]")
		var out []any
		for _, item := range strings.Split(inner, ",") {
			out = append(out, parseValue(strings.TrimSpace(item)))
		}
		return out
	}
	return css.Content(v)
}

// breakpointIndex returns the index of the first breakpoint at or above
// width, or len(bps).
func breakpointIndex(bps []float64, width float64) int {
	for i, b := range bps {
		if b >= width {
			return i
		}
	}
	return len(bps)
}

// resolveOptions picks breakpoint values out of o.
func resolveOptions(o Options, index int) Options {
	out := make(Options, len(o))
	for k, v := range o {
		if a, ok := v.([]any); ok && dynamic[k] && len(a) > 0 {
			v = a[min(index, len(a)-1)]
		}
		out[k] = v
	}
	return out
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	case string:
		return x != ""
	}
	return true
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case int:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

func numberOr(v any, def float64) float64 {
	if f, ok := number(v); ok {
		return f
	}
	return def
}

func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "true"
		}
	}
	return ""
}

func numbers(v any) []float64 {
	a, ok := v.([]any)
	if !ok {
		if f, ok := number(v); ok {
			return []float64{f}
		}
		return nil
	}
	out := make([]float64, 0, len(a))
	for _, x := range a {
		if f, ok := number(x); ok {
			out = append(out, f)
		}
	}
	return out
}

// optional is a setting that falls back to another one when unset.
type optional[T any] struct {
	v  T
	ok bool
}

func (o optional[T]) or(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

func optNumber(v any) optional[float64] {
	if v == nil {
		return optional[float64]{}
	}
	f, ok := number(v)
	return optional[float64]{f, ok}
}

// settings are resolved options in typed form.
type settings struct {
	size float64

	semiAuto, semi     bool
	ignoreTransparency bool

	typ      string
	inverted bool
	opacity  float64
	// underlay is a multiple of size; underlayScaled is set when it was
	// given as a number.
	underlay       float64
	underlayScaled bool
	inners         string
	opposite       bool
	bottom         bool

	scroll       bool
	scrollDwell  float64
	scrollTimed  bool
	scrollParent string
	stroke       float64

	dur       float64
	startTime float64
	timingFnc string
	delay     float64
	strength  float64
	shift     float64

	segFit  bool
	segSize float64
	scale   float64

	addType    string
	addCount   int
	addOpacity float64
	addSegFit  optional[bool]
	addSegSize float64

	addDur       optional[float64]
	addStartTime optional[float64]
	addStrength  optional[float64]
	addDelay     optional[float64]
	addShift     optional[float64]

	decor        string
	decorFading  string
	decorOpacity float64
	decorWidth   float64
}

func settingsOf(o Options) settings {
	s := settings{
		size:               numberOr(o["size"], 0),
		ignoreTransparency: truthy(o["ignoreTransparency"]),
		typ:                text(o["type"]),
		inverted:           truthy(o["inverted"]),
		opacity:            numberOr(o["opacity"], 1),
		opposite:           truthy(o["opposite"]),
		bottom:             truthy(o["bottom"]),
		scrollParent:       text(o["scrollParent"]),
		stroke:             numberOr(o["stroke"], 0),
		dur:                numberOr(o["dur"], 0),
		startTime:          numberOr(o["startTime"], 0),
		timingFnc:          text(o["timingFnc"]),
		delay:              numberOr(o["delay"], 0),
		strength:           numberOr(o["strength"], 0),
		shift:              numberOr(o["shift"], 0),
		segFit:             truthy(o["segFit"]),
		segSize:            numberOr(o["segSize"], 1),
		scale:              numberOr(o["scale"], 0),
		addOpacity:         numberOr(o["addOpacity"], 1),
		addSegSize:         numberOr(o["addSegSize"], 0),
		addDur:             optNumber(o["addDur"]),
		addStartTime:       optNumber(o["addStartTime"]),
		addStrength:        optNumber(o["addStrength"]),
		addDelay:           optNumber(o["addDelay"]),
		addShift:           optNumber(o["addShift"]),
		decorFading:        text(o["decorFading"]),
		decorOpacity:       numberOr(o["decorOpacity"], 0),
		decorWidth:         numberOr(o["decorWidth"], 0),
	}
	if v := o["semiTransparent"]; v == "auto" {
		s.semiAuto = true
	} else {
		s.semi = truthy(v)
	}
	if v := o["underlay"]; truthy(v) {
		s.underlay = numberOr(v, 1)
		_, isBool := v.(bool)
		s.underlayScaled = !isBool
	}
	if truthy(o["inners"]) {
		s.inners = text(o["inners"])
	}
	switch v := o["scroll"].(type) {
	case bool:
		s.scroll = v
	case nil:
	default:
		s.scrollTimed = true
		s.scrollDwell = numberOr(v, 0)
		s.scroll = s.scrollDwell != 0
	}
	if truthy(o["addType"]) {
		s.addType = text(o["addType"])
	}
	s.addCount = max(int(numberOr(o["addCount"], 1)), 0)
	if v := o["addSegFit"]; v != nil {
		s.addSegFit = optional[bool]{truthy(v), true}
	}
	if truthy(o["decor"]) {
		s.decor = text(o["decor"])
	}
	return s
}
