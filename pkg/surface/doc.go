// Package surface holds the two named rendering surfaces of the viewer.
//
// The "stanford" surface shows the parse tree and the "sensala" surface shows
// the term tree. Each accepts a clear command and a render command carrying
// a graph, its layout and a fit transform. Rendering stores the fitted SVG
// produced by [viewport.Apply].
//
// Surfaces do not share state. A [Set] fans events from both out to
// subscribers such as websocket clients; pan and zoom are left to the page.
package surface
