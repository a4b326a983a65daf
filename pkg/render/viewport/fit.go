package viewport

import (
	"math"
	"strconv"

	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/graph"
)

// FitTransform maps layout coordinates into surface coordinates:
// a point p lands at (TranslateX + Scale*p.X, TranslateY + Scale*p.Y).
type FitTransform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// Surface is a fixed-size drawing region.
type Surface struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// PaddingX is extra horizontal room reserved around the graph.
	PaddingX float64 `json:"padding_x"`
}

// Identity is the unscaled transform, used when a fit cannot be computed.
func Identity() FitTransform { return FitTransform{Scale: 1} }

// ComputeFit scales a graph uniformly so it fits the surface in both
// dimensions, centers it horizontally and aligns it to the top.
//
//	scale      = min(surfaceW / (graphW + padX), surfaceH / graphH)
//	translateX = surfaceW/2 - (graphW + padX)*scale/2
//	translateY = 0
//
// A zero, negative or non-finite dimension yields a DEGENERATE_LAYOUT error
// instead of a division by zero.
func ComputeFit(graphW, graphH, surfaceW, surfaceH, padX float64) (FitTransform, error) {
	for _, v := range []float64{graphW, graphH, surfaceW, surfaceH, padX} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return FitTransform{}, errors.New(errors.ErrCodeDegenerateLayout, "non-finite dimension %v", v)
		}
	}
	if graphW <= 0 || graphH <= 0 || graphW+padX <= 0 {
		return FitTransform{}, errors.New(errors.ErrCodeDegenerateLayout, "graph has no area (%gx%g, padding %g)", graphW, graphH, padX)
	}
	if surfaceW <= 0 || surfaceH <= 0 {
		return FitTransform{}, errors.New(errors.ErrCodeDegenerateLayout, "surface has no area (%gx%g)", surfaceW, surfaceH)
	}

	paddedW := graphW + padX
	scale := math.Min(surfaceW/paddedW, surfaceH/graphH)
	return FitTransform{
		Scale:      scale,
		TranslateX: surfaceW/2 - paddedW*scale/2,
		TranslateY: 0,
	}, nil
}

// Fit computes the transform that fits a layout into s.
func (s Surface) Fit(l graph.Layout) (FitTransform, error) {
	return ComputeFit(l.Width, l.Height, s.Width, s.Height, s.PaddingX)
}

// Point maps a layout position into surface coordinates.
func (f FitTransform) Point(p graph.Position) graph.Position {
	return graph.Position{
		X: f.TranslateX + f.Scale*p.X,
		Y: f.TranslateY + f.Scale*p.Y,
	}
}

// SVGAttr renders the transform as an SVG transform attribute value.
func (f FitTransform) SVGAttr() string {
	return "translate(" + fmtFloat(f.TranslateX) + "," + fmtFloat(f.TranslateY) + ") scale(" + fmtFloat(f.Scale) + ")"
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
