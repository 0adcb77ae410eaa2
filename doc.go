// Package cdivs draws animated section dividers between page blocks.
//
// # Overview
//
// A divider extends the background of one element across the seam it
// shares with its neighbour. The element is wrapped and clipped a few
// pixels short of the seam; a canvas placed over the gap paints the
// element's own background through a wave, zigzag, cloud or any other
// shape from the library in package shape. The shape can animate, be
// paired with additional shapes and be decorated with a faded cut line.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/cdivs"
//		"github.com/gogpu/cdivs/host/static"
//	)
//
//	doc, _ := static.ParseString(page)
//	h, err := cdivs.New(doc.ByID("hero"),
//		cdivs.WithHost(doc),
//		cdivs.WithOptions(cdivs.Options{"type": "waves", "bottom": true}))
//	if err != nil {
//		return err
//	}
//	doc.Advance(time.Second)
//	img := h.Divider().Canvas().Image()
//
// # Options
//
// Options are a flat map keyed by name or abbreviation, the same set the
// data-cdivs attribute accepts through ParseOptions. Size, duration and
// the additional duration take arrays with one entry per breakpoint.
// Unknown options are kept and logged.
//
// # Architecture
//
// The package is organized into:
//   - cdivs: divider lifecycle, options, discovery and page wiring
//   - css: values, colours, gradients and the rendering-quirk profiles
//   - background: background layer tracking and drawing
//   - shape: the shape compiler, library and renderer
//   - scheduler: style, iterate and draw phases per frame
//   - canvas: the software drawing surface
//   - host: the page abstraction, with host/static for tests and the CLI
//
// # Coordinate System
//
// Rects are in CSS pixels. Canvas sizes and shape coordinates are in
// device pixels: CSS pixels times the viewport device pixel ratio.
package cdivs

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
