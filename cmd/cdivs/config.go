package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/cdivs"
	"github.com/gogpu/cdivs/host"
)

// renderConfig is the YAML file driving the render command.
type renderConfig struct {
	Viewport struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
		DPR    float64 `yaml:"dpr"`
	} `yaml:"viewport"`
	UserAgent string `yaml:"userAgent"`
	// Library is an extra shape library, relative to the working directory.
	Library string `yaml:"library"`
	// Defaults are option strings applied before every divider's own.
	Defaults string          `yaml:"defaults"`
	Dividers []dividerConfig `yaml:"dividers"`
}

type dividerConfig struct {
	// Element is the id attribute of the element to decorate.
	Element string `yaml:"element"`
	Options string `yaml:"options"`
}

var errNoDividers = errors.New("config lists no dividers")

func loadConfig(path string) (renderConfig, error) {
	var c renderConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(c.Dividers) == 0 {
		return c, fmt.Errorf("%s: %w", path, errNoDividers)
	}
	return c, nil
}

func (c renderConfig) viewport() host.Viewport {
	vp := host.Viewport{W: 1280, H: 800, DPR: 1}
	if c.Viewport.Width > 0 {
		vp.W = c.Viewport.Width
	}
	if c.Viewport.Height > 0 {
		vp.H = c.Viewport.Height
	}
	if c.Viewport.DPR > 0 {
		vp.DPR = c.Viewport.DPR
	}
	return vp
}

// options parses the defaults followed by the divider's own options.
// Unknown names are reported but kept.
func (d dividerConfig) options(defaults string) (cdivs.Options, error) {
	out := cdivs.Options{}
	var errs []error
	for _, s := range []string{defaults, d.Options} {
		o, err := cdivs.ParseOptions(s)
		if err != nil {
			errs = append(errs, err)
		}
		for k, v := range o {
			out[k] = v
		}
	}
	return out, errors.Join(errs...)
}
