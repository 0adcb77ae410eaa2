// Package gradient emulates CSS linear and radial gradients, including their
// repeating forms, on a canvas.
//
// Stop lists go through the same pipeline a browser applies before
// painting: offsets are normalised, midpoint hints are expanded into eased
// stops, alpha/colour transitions are subdivided for engines that
// interpolate in premultiplied space, and the result is clamped to [0,1]
// or rescaled into a single repeat unit.
package gradient
