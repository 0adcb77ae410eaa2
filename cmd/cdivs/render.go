package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/cdivs"
	"github.com/gogpu/cdivs/host/static"
)

type renderOpts struct {
	config   string
	out      string
	duration time.Duration
	frames   int
	dpr      float64
}

func newRenderCmd() *cobra.Command {
	opts := renderOpts{out: ".", duration: time.Second, frames: 1}
	cmd := &cobra.Command{
		Use:   "render <page.html>",
		Short: "Run dividers on a static page and write their surfaces as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "YAML file listing the dividers (required)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", opts.out, "output directory")
	cmd.Flags().DurationVarP(&opts.duration, "duration", "d", opts.duration, "page time to simulate before the first frame is written")
	cmd.Flags().IntVarP(&opts.frames, "frames", "n", opts.frames, "frames to write per divider")
	cmd.Flags().Float64Var(&opts.dpr, "dpr", 0, "device pixel ratio, overriding the config")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runRender(cmd *cobra.Command, page string, opts renderOpts) error {
	log := cdivs.Logger()
	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	if err := loadLibrary(cfg.Library); err != nil {
		return err
	}
	vp := cfg.viewport()
	if opts.dpr > 0 {
		vp.DPR = opts.dpr
	}

	f, err := os.Open(page)
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	defer f.Close()
	docOpts := []static.Option{static.WithViewport(vp), static.WithFS(os.DirFS(filepath.Dir(page)))}
	if cfg.UserAgent != "" {
		docOpts = append(docOpts, static.WithUserAgent(cfg.UserAgent))
	}
	doc, err := static.Parse(f, docOpts...)
	if err != nil {
		return err
	}
	defer cdivs.Reset()

	var dividers []*cdivs.Divider
	for _, dc := range cfg.Dividers {
		el := doc.ByID(dc.Element)
		if el == nil {
			return fmt.Errorf("element %q not found in %s", dc.Element, page)
		}
		o, err := dc.options(cfg.Defaults)
		if err != nil {
			log.Warn("divider options", "element", dc.Element, "err", err)
		}
		h, err := cdivs.New(el, cdivs.WithHost(doc), cdivs.WithOptions(o))
		if err != nil {
			return fmt.Errorf("divider on %q: %w", dc.Element, err)
		}
		dividers = append(dividers, h.Dividers()...)
	}

	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	doc.Advance(opts.duration)
	for frame := 0; frame < max(opts.frames, 1); frame++ {
		if frame > 0 {
			doc.Step(static.FrameInterval)
		}
		for i, d := range dividers {
			if err := ctxErr(cmd); err != nil {
				return err
			}
			name := fmt.Sprintf("%02d-%s-%s-%03d.png", i, d.Element().Tag(), position(d), frame)
			if err := writePNG(filepath.Join(opts.out, name), d); err != nil {
				return err
			}
			log.Debug("frame written", "file", name)
		}
	}
	log.Info("rendered", "dividers", len(dividers), "frames", max(opts.frames, 1), "out", opts.out)
	return nil
}

func ctxErr(cmd *cobra.Command) error {
	if ctx := cmd.Context(); ctx != nil {
		return ctx.Err()
	}
	return nil
}

func position(d *cdivs.Divider) string {
	if d.Bottom() {
		return "bottom"
	}
	return "top"
}

func writePNG(path string, d *cdivs.Divider) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, d.Canvas().Image()); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
