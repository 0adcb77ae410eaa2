// Package canvas is the software drawing surface the divider engine paints
// on. It follows the 2D canvas model: a current transform, a path built in
// user space, fill and stroke paints (solid colours, linear and radial
// gradients, tiled patterns), global alpha and Porter-Duff composite
// operations.
//
// Paths are rasterised with golang.org/x/image/vector into a coverage mask
// that is then composited pixel by pixel onto a premultiplied *image.RGBA.
//
// A single process-wide scratch surface is available for building tiles;
// see Tile and AcquireScratch.
package canvas
