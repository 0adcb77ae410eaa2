package background

import (
	"image"
	"math"
	"testing"

	"github.com/gogpu/cdivs/css"
)

const eps = 1e-9

func imageLayer(t *testing.T, w, h int) *Layer {
	t.Helper()
	l, err := NewLayer(`url("bg.png")`)
	if err != nil {
		t.Fatal(err)
	}
	if l.Src != "bg.png" {
		t.Fatalf("src = %q", l.Src)
	}
	l.SetImage(image.NewRGBA(image.Rect(0, 0, w, h)))
	return l
}

func TestNewLayer(t *testing.T) {
	if l, err := NewLayer("linear-gradient(red, blue)"); err != nil || l.Kind != Gradient {
		t.Errorf("gradient layer = %v, %v", l, err)
	}
	if _, err := NewLayer("element(#x)"); err == nil {
		t.Error("unsupported image should fail")
	}
}

func TestCoverScenario(t *testing.T) {
	l := imageLayer(t, 800, 200)
	env := css.DefaultEnv()
	l.CalcSize(css.ParseValues("cover", false), css.ParseRepeat("no-repeat"), 400, 200, env)
	if l.Width != 800 || l.Height != 200 {
		t.Fatalf("cover size = %vx%v, want 800x200", l.Width, l.Height)
	}
	l.CalcPosition(css.ParseValues("center", true), 0, 0, env)
	if l.X != -200 || l.Y != 0 {
		t.Errorf("position = %v,%v, want -200,0", l.X, l.Y)
	}
}

func TestCoverCoversBox(t *testing.T) {
	tests := []struct {
		imgW, imgH int
		elW, elH   float64
	}{
		{800, 200, 400, 200},
		{100, 100, 400, 200},
		{50, 300, 400, 200},
		{640, 480, 333, 77},
		{10, 10, 10, 10},
	}
	for _, tt := range tests {
		l := imageLayer(t, tt.imgW, tt.imgH)
		l.CalcSize([]css.Value{css.Kw("cover")}, [2]css.Repeat{}, tt.elW, tt.elH, css.DefaultEnv())
		if l.Width < tt.elW-eps || l.Height < tt.elH-eps {
			t.Errorf("%dx%d in %vx%v: %vx%v does not cover", tt.imgW, tt.imgH, tt.elW, tt.elH, l.Width, l.Height)
		}
		if math.Abs(l.Width-tt.elW) > 1e-6 && math.Abs(l.Height-tt.elH) > 1e-6 {
			t.Errorf("%dx%d in %vx%v: %vx%v matches neither axis", tt.imgW, tt.imgH, tt.elW, tt.elH, l.Width, l.Height)
		}
	}
}

func TestContainAndAuto(t *testing.T) {
	env := css.Env{DPR: 2, Profile: css.Generic}
	l := imageLayer(t, 100, 50)
	l.CalcSize([]css.Value{css.Kw("contain")}, [2]css.Repeat{}, 400, 400, env)
	if l.Width != 400 || l.Height != 200 {
		t.Errorf("contain = %vx%v", l.Width, l.Height)
	}
	l.CalcSize(nil, [2]css.Repeat{}, 400, 400, env)
	if l.Width != 200 || l.Height != 100 {
		t.Errorf("auto = %vx%v, want natural size times dpr", l.Width, l.Height)
	}
	l.CalcSize(css.ParseValues("50px", false), [2]css.Repeat{}, 400, 400, env)
	if l.Width != 100 || l.Height != 50 {
		t.Errorf("50px auto = %vx%v", l.Width, l.Height)
	}

	g, err := NewLayer("linear-gradient(red, blue)")
	if err != nil {
		t.Fatal(err)
	}
	g.CalcSize(css.ParseValues("25% auto", false), [2]css.Repeat{}, 400, 300, env)
	if g.Width != 100 || g.Height != 300 {
		t.Errorf("gradient 25%% auto = %vx%v", g.Width, g.Height)
	}
}

func TestRoundRepeatFillsBox(t *testing.T) {
	tests := []struct {
		size     string
		elW, elH float64
	}{
		{"30px 30px", 100, 50},
		{"7px 13px", 250, 99},
		{"64px 10px", 100, 100},
	}
	for _, tt := range tests {
		l, err := NewLayer("linear-gradient(red, blue)")
		if err != nil {
			t.Fatal(err)
		}
		env := css.DefaultEnv()
		l.CalcSize(css.ParseValues(tt.size, false), css.ParseRepeat("round"), tt.elW, tt.elH, env)
		l.CalcPosition(nil, 0, 0, env)
		if err := l.CreatePattern(env); err != nil {
			t.Fatal(err)
		}
		for axis, el := range [2]float64{tt.elW, tt.elH} {
			pitch := float64(l.PatternW) * l.ScaleW
			if axis == 1 {
				pitch = float64(l.PatternH) * l.ScaleH
			}
			count := math.Round(el / pitch)
			if math.Abs(count*pitch-el) > 1e-6 {
				t.Errorf("%s axis %d: %v tiles of %v != %v", tt.size, axis, count, pitch, el)
			}
		}
		if l.Paint == nil {
			t.Errorf("%s: no paint", tt.size)
		}
	}
}

func TestSpaceGap(t *testing.T) {
	for _, tt := range []struct {
		prof  css.Profile
		pitch int
		scale float64
	}{
		{css.Generic, 23, 22.5 / 23},
		{css.WebKit, 23, 1},
	} {
		l := imageLayer(t, 20, 20)
		env := css.Env{DPR: 1, Profile: tt.prof}
		l.CalcSize(nil, css.ParseRepeat("space no-repeat"), 110, 20, env)
		l.CalcPosition(css.ParseValues("10px 0", true), 0, 0, env)
		if l.X != 0 {
			t.Errorf("%s: space offset = %v, want 0", tt.prof.Name(), l.X)
		}
		if err := l.CreatePattern(env); err != nil {
			t.Fatal(err)
		}
		if l.PatternW != tt.pitch || math.Abs(l.ScaleW-tt.scale) > eps {
			t.Errorf("%s: pitch %d scale %v, want %d %v", tt.prof.Name(), l.PatternW, l.ScaleW, tt.pitch, tt.scale)
		}
	}
}

func TestPositionProfiles(t *testing.T) {
	tests := []struct {
		prof css.Profile
		want float64
	}{
		{css.Generic, 45},
		{css.Gecko, 44},
		{css.Blink, 45},
	}
	for _, tt := range tests {
		l, err := NewLayer("linear-gradient(red, blue)")
		if err != nil {
			t.Fatal(err)
		}
		env := css.Env{DPR: 1, Profile: tt.prof}
		l.CalcSize(css.ParseValues("10.4px 10px", false), [2]css.Repeat{}, 100, 10, env)
		l.CalcPosition(css.ParseValues("50% 0", true), 0.3, 0, env)
		if l.X != tt.want {
			t.Errorf("%s: x = %v, want %v", tt.prof.Name(), l.X, tt.want)
		}
	}
}

func TestOrderContract(t *testing.T) {
	l, err := NewLayer("linear-gradient(red, blue)")
	if err != nil {
		t.Fatal(err)
	}
	env := css.DefaultEnv()
	l.CalcPosition(css.ParseValues("10px 10px", true), 0, 0, env)
	if err := l.CreatePattern(env); err != nil {
		t.Fatal(err)
	}
	if l.X != 0 || l.Paint != nil {
		t.Error("out of order calls must be ignored")
	}
}

func TestImageLayerWaitsForImage(t *testing.T) {
	l, err := NewLayer("url(a.png)")
	if err != nil {
		t.Fatal(err)
	}
	l.CalcSize(nil, [2]css.Repeat{}, 100, 100, css.DefaultEnv())
	if l.Ready() || l.stage != stageNone {
		t.Error("unloaded image layer must not size")
	}
}
