// Package viewport fits a laid-out graph into a fixed-size display surface.
//
// [ComputeFit] picks the largest uniform scale at which the padded graph
// fits both surface dimensions, centers it horizontally and keeps it
// top-aligned. [Apply] wraps a rendered SVG in a surface-sized canvas
// carrying that transform.
//
// Degenerate inputs are reported as DEGENERATE_LAYOUT errors; callers fall
// back to [Identity].
package viewport
