// Package background reproduces an element's CSS background on a canvas.
//
// A Layer lays out one background-image entry: CalcSize, CalcPosition and
// CreatePattern must run in that order. A Tracker owns the layers of one
// element, re-reads computed style when it changes and draws the result.
// Trackers are shared per element through Acquire and Release.
package background
