package css

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestParseValue(t *testing.T) {
	tests := []struct {
		in      string
		unit    Unit
		num     float64
		keyword string
	}{
		{"10px", Px, 10, ""},
		{"-2.5px", Px, -2.5, ""},
		{"50%", Percent, 50, ""},
		{"0", Number, 0, ""},
		{"left", Percent, 0, ""},
		{"center", Percent, 50, ""},
		{"bottom", Percent, 100, ""},
		{"auto", Keyword, 0, "auto"},
		{"cover", Keyword, 0, "cover"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v := ParseValue(tt.in)
			if v.Unit != tt.unit || v.Num != tt.num || v.Keyword != tt.keyword {
				t.Errorf("ParseValue(%q) = %+v", tt.in, v)
			}
		})
	}
}

func TestCalcResolves(t *testing.T) {
	v := ParseValue("calc(100% - 10px + 5px)")
	if v.Unit != Calc || len(v.Terms) != 3 {
		t.Fatalf("ParseValue(calc) = %+v", v)
	}
	// 200 - 10*2 + 5*2 at dpr 2
	if got := v.ToPx(200, 1, 2); !near(got, 190) {
		t.Errorf("ToPx = %v, want 190", got)
	}
}

func TestValueFraction(t *testing.T) {
	if got := PxValue(25).Resolve(false, 100, 1, 1); !near(got, 0.25) {
		t.Errorf("px fraction = %v, want 0.25", got)
	}
	if got := Pct(40).Resolve(false, 100, 1, 1); !near(got, 0.4) {
		t.Errorf("percent fraction = %v, want 0.4", got)
	}
}

func TestParseValuesPosition(t *testing.T) {
	vals := ParseValues("right 10px bottom 20%", true)
	if len(vals) != 2 {
		t.Fatalf("got %d values, want 2", len(vals))
	}
	if got := vals[0].ToPx(300, 1, 1); !near(got, 290) {
		t.Errorf("x = %v, want 290", got)
	}
	if got := vals[1].ToPx(100, 1, 1); !near(got, 100-20) {
		t.Errorf("y = %v, want 80", got)
	}

	plain := ParseValues("left top", true)
	if plain[0].ToPx(300, 1, 1) != 0 || plain[1].ToPx(100, 1, 1) != 0 {
		t.Errorf("left top should resolve to 0 0, got %+v", plain)
	}
}

func TestValueString(t *testing.T) {
	v := ParseValue("calc(100% - 10px)")
	if got := v.String(); got != "calc(100% - 10px)" {
		t.Errorf("String() = %q", got)
	}
}
