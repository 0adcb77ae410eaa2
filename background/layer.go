package background

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/gogpu/cdivs/canvas"
	"github.com/gogpu/cdivs/css"
	"github.com/gogpu/cdivs/gradient"
	"github.com/gogpu/cdivs/internal/logx"
)

// ErrUnsupported is returned for background-image values that are neither
// url() nor a gradient.
var ErrUnsupported = errors.New("background: unsupported image")

// Kind is the source of a layer.
type Kind uint8

const (
	Gradient Kind = iota
	Image
)

type stage uint8

const (
	stageNone stage = iota
	stageSized
	stagePositioned
)

// Layer is one background-image entry laid out for an element box.
// Geometry is in device pixels.
type Layer struct {
	Kind Kind
	// Src is the image URL for Image layers.
	Src  string
	Grad *gradient.Gradient

	img     image.Image
	imgTile *canvas.Pattern

	Repeat        [2]css.Repeat
	Width, Height float64
	ElW, ElH      float64
	X, Y          float64
	ElX, ElY      float64

	// PatternW and PatternH are the integer tile size, ScaleW and ScaleH
	// map it back to the fractional one.
	PatternW, PatternH int
	ScaleW, ScaleH     float64
	Paint              canvas.Paint

	autoW, autoH bool
	stage        stage
}

// NewLayer parses one background-image list entry.
func NewLayer(raw string) (*Layer, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "url"):
		return &Layer{Kind: Image, Src: css.Content(raw)}, nil
	case strings.Contains(raw, "gradient"):
		g, err := gradient.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		return &Layer{Kind: Gradient, Grad: g}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, raw)
}

// SetImage supplies the decoded image of an Image layer.
func (l *Layer) SetImage(img image.Image) {
	l.img = img
	l.imgTile = nil
	l.stage = stageNone
}

// Ready reports whether the layer has everything it needs to lay out.
func (l *Layer) Ready() bool { return l.Kind == Gradient || l.img != nil }

func (l *Layer) natural() (float64, float64) {
	b := l.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// CalcSize resolves background-size for an elW×elH box. Missing size
// values default to auto.
func (l *Layer) CalcSize(size []css.Value, repeat [2]css.Repeat, elW, elH float64, env css.Env) {
	if !l.Ready() {
		return
	}
	env = env.Normalize()
	l.Repeat = repeat
	l.ElW, l.ElH = elW, elH
	l.stage = stageSized
	if elW <= 0 || elH <= 0 {
		l.Width, l.Height = 0, 0
		return
	}
	sz := css.Pair(size, css.Kw("auto"))
	if len(size) == 0 {
		sz = [2]css.Value{css.Kw("auto"), css.Kw("auto")}
	} else if len(size) == 1 && size[0].IsLength() {
		sz[1] = css.Kw("auto")
	}
	w, h := sz[0], sz[1]
	l.autoW, l.autoH = w.IsKeyword("auto"), h.IsKeyword("auto")

	imgW, imgH := elW, elH
	isURL := l.Kind == Image
	if isURL {
		nw, nh := l.natural()
		imgW, imgH = nw*env.DPR, nh*env.DPR
	}

	var width, height float64
	if w.IsLength() {
		width = w.ToPx(elW, 1, env.DPR)
	}
	if h.IsLength() {
		height = h.ToPx(elH, 1, env.DPR)
	}

	switch {
	case w.IsLength() && h.IsLength():
	case l.autoW && l.autoH:
		width, height = imgW, imgH
	case w.IsKeyword("cover") || w.IsKeyword("contain"):
		wf, hf := imgW/elW, imgH/elH
		factor := math.Min(wf, hf)
		if w.IsKeyword("contain") {
			factor = math.Max(wf, hf)
		}
		width, height = imgW/factor, imgH/factor
	case l.autoW:
		width = elW
		if isURL {
			width = imgW * (height / imgH)
		}
	default:
		height = elH
		if isURL {
			height = imgH * (width / imgW)
		}
	}

	l.Width, l.Height = width, height
}

// CalcPosition resolves background-position against the sized layer.
// elX and elY are the element's offsets on the drawing surface.
func (l *Layer) CalcPosition(pos []css.Value, elX, elY float64, env css.Env) {
	if l.stage < stageSized {
		logx.Diag("background", "position before size", "layer", l.String())
		return
	}
	env = env.Normalize()
	p := css.Pair(pos, css.Pct(0))
	if len(pos) == 1 {
		p[1] = css.Pct(50)
	}
	l.ElX, l.ElY = elX, elY

	posW := l.ElW - l.Width
	posH := math.Round(l.ElH) - math.Round(l.Height)
	x := p[0].ToPx(posW, 1, env.DPR)
	y := p[1].ToPx(posH, 1, env.DPR)
	if l.Repeat[0] == css.Space {
		x = 0
	}
	if l.Repeat[1] == css.Space {
		y = 0
	}

	prof := env.Profile
	l.X = prof.RoundPosition(x, l.Width, elX, l.Repeat[0])
	l.Y = prof.RoundPosition(y, l.Height, elY, l.Repeat[1])
	l.stage = stagePositioned
}

// repeatResize applies round and space to one axis. It returns the drawn
// size, the tile pitch and the round factor.
func repeatResize(size float64, r css.Repeat, block float64, p css.Profile) (float64, float64, float64) {
	pitch, factor := size, 0.0
	if size <= 0 {
		return size, pitch, factor
	}
	switch r {
	case css.Space:
		if count := math.Floor(block / size); count > 1 {
			gap := (block - size*count) / (count - 1)
			if p.RoundSpaceGap() {
				gap = math.Round(gap)
			}
			pitch += gap
		}
	case css.Round:
		count := math.Max(math.Round(block/size), 1)
		pitch = block / count
		factor = size / pitch
		size = pitch
	}
	return size, pitch, factor
}

// CreatePattern builds the tile paint for the positioned layer.
func (l *Layer) CreatePattern(env css.Env) error {
	if l.stage < stagePositioned {
		logx.Diag("background", "pattern before position", "layer", l.String())
		return nil
	}
	env = env.Normalize()
	prof := env.Profile
	width, height := l.Width, l.Height
	rx, ry := l.Repeat[0], l.Repeat[1]
	hasSpace := rx == css.Space || ry == css.Space

	if prof.PositionFollowsElement() {
		width = math.Round(width + (l.ElX - math.Round(l.ElX)))
		height = math.Round(height + (l.ElY - math.Round(l.ElY)))
	}

	width, pw, fw := repeatResize(width, rx, l.ElW, prof)
	height, ph, fh := repeatResize(height, ry, l.ElH, prof)

	if l.autoW && rx != css.Round && ry == css.Round {
		pw *= fh
		width *= fh
	}
	if l.autoH && ry != css.Round && rx == css.Round {
		ph *= fw
		height *= fw
	}

	l.ScaleW, l.ScaleH = scale(pw), scale(ph)
	if l.Kind == Image && !hasSpace {
		nw, nh := l.natural()
		l.ScaleW, l.ScaleH = pw/nw, ph/nh
	}
	l.PatternW, l.PatternH = int(math.Round(pw)), int(math.Round(ph))
	if l.PatternW <= 0 || l.PatternH <= 0 {
		l.Paint = nil
		return nil
	}

	var err error
	switch l.Kind {
	case Gradient:
		l.Paint, err = l.gradientPaint(width, height, env)
	case Image:
		l.Paint, err = l.imagePaint(width, height, hasSpace)
	}
	if err != nil {
		l.Paint = nil
		return fmt.Errorf("background: pattern: %w", err)
	}
	return nil
}

func scale(v float64) float64 {
	if r := math.Round(v); r != 0 {
		return v / r
	}
	return 1
}

func (l *Layer) gradientPaint(width, height float64, env css.Env) (canvas.Paint, error) {
	tw, th := l.PatternW, l.PatternH
	paint, err := l.Grad.Render(math.Round(width), math.Round(height), tw, th, env)
	if err != nil {
		return nil, err
	}
	if _, ok := paint.(*canvas.Pattern); ok {
		return paint, nil
	}
	// Direct gradients extend forever; repeated axes need a real tile.
	tiled := l.Repeat[0].Tiles() && float64(tw) < l.ElW || l.Repeat[1].Tiles() && float64(th) < l.ElH
	if !tiled {
		return paint, nil
	}
	return canvas.Tile(tw, th, func(c *canvas.Canvas) {
		c.SetFill(paint)
		c.FillRect(0, 0, math.Round(width), math.Round(height))
	})
}

func (l *Layer) imagePaint(width, height float64, hasSpace bool) (canvas.Paint, error) {
	if hasSpace {
		return canvas.Tile(l.PatternW, l.PatternH, func(c *canvas.Canvas) {
			c.SetQuality(canvas.QualityHigh)
			c.DrawImage(l.img, 0, 0, width, height)
		})
	}
	if l.imgTile == nil {
		nw, nh := l.natural()
		tile, err := canvas.Tile(int(nw), int(nh), func(c *canvas.Canvas) {
			c.SetQuality(canvas.QualityHigh)
			c.DrawImage(l.img, 0, 0, nw, nh)
		})
		if err != nil {
			return nil, err
		}
		l.imgTile = tile
	}
	return l.imgTile, nil
}

// String names the layer for diagnostics.
func (l *Layer) String() string {
	if l.Kind == Image {
		return "url(" + l.Src + ")"
	}
	return l.Grad.Kind.String() + "-gradient"
}
