package css

import (
	"errors"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"rgb(10, 20, 30)", Color{10, 20, 30, 1}},
		{"rgba(10, 20, 30, 0.5)", Color{10, 20, 30, 0.5}},
		{"rgba(10, 20, 30, 50%)", Color{10, 20, 30, 0.5}},
		{"rgb(10 20 30 / 0.25)", Color{10, 20, 30, 0.25}},
		{"#fff", Color{255, 255, 255, 1}},
		{"#ff000080", Color{255, 0, 0, 128.0 / 255}},
		{"#0f08", Color{0, 255, 0, 136.0 / 255}},
		{"transparent", Color{}},
		{"red", Color{255, 0, 0, 1}},
		{"hsl(120, 100%, 50%)", Color{0, 255, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if err != nil {
				t.Fatalf("ParseColor(%q) error: %v", tt.in, err)
			}
			if !near(got.R, tt.want.R) || !near(got.G, tt.want.G) || !near(got.B, tt.want.B) || !near(got.A, tt.want.A) {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseColorInvalid(t *testing.T) {
	c, err := ParseColor("not-a-colour")
	if !errors.Is(err, ErrInvalidColor) {
		t.Errorf("err = %v, want ErrInvalidColor", err)
	}
	if c != Transparent {
		t.Errorf("invalid colour should fall back to transparent, got %v", c)
	}
}

func TestBlendIdempotent(t *testing.T) {
	colors := []Color{{0, 0, 0, 0}, {255, 128, 3, 0.3}, {12, 34, 56, 1}}
	for _, p := range []Profile{Gecko, Blink, WebKit, Generic} {
		for _, c := range colors {
			for _, w := range []float64{0, 0.25, 0.5, 1} {
				if got := c.Blend(c, w, p); got != c {
					t.Errorf("%s: %v.Blend(self, %v) = %v", p.Name(), c, w, got)
				}
			}
		}
	}
}

func TestBlendOpaquePath(t *testing.T) {
	red := Color{255, 0, 0, 1}
	clear := Color{0, 0, 255, 0}

	// Linear blending drags blue into the midpoint.
	lin := red.Blend(clear, 0.5, Generic)
	if !near(lin.B, 127.5) || !near(lin.A, 0.5) {
		t.Errorf("linear blend = %v", lin)
	}

	// Opaque blending keeps the visible hue red.
	op := red.Blend(clear, 0.5, Blink)
	if !near(op.R, 255) || !near(op.B, 0) || !near(op.A, 0.5) {
		t.Errorf("opaque blend = %v", op)
	}
}

func TestColorString(t *testing.T) {
	if got := (Color{10.9, 20, 30.2, 0.5}).String(); got != "rgba(10,20,30,0.5)" {
		t.Errorf("String() = %q", got)
	}
}
