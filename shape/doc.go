// Package shape compiles divider shape definitions and renders them.
//
// A shape is a header describing the segment grid and a command string:
//
//	1S 3 2 1.8rf 1 2 1
//	C .4 d-.4ia0/.3,a1/.7 .6 d.4ia1/.7,a0/.3 1 @4
//
// Commands are M (move), L (line), R (rect), A (arc), T (arcTo), E (ellipse),
// Q (quadratic) and C (cubic). Coordinates are fractions of the segment
// size with optional pixel (#N, ~N), dynamic ($N), reference (@N), index
// (iA,B), animated (aA/B) and parallax (pA_B) forms.
//
// Compiled programs are cached by name and shared. A Renderer binds a
// program to a surface size and an animation clock.
package shape
