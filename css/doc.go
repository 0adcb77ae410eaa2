// Package css models the handful of CSS value types the divider engine
// reads from computed styles: lengths with calc() expressions, colours,
// background repeat keywords and comma/space separated lists.
//
// Numeric corrections that differ between browser engines are isolated in
// the Profile interface; every function that needs one takes an Env.
package css
