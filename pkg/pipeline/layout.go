package pipeline

import (
	"context"

	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/graph"
	"github.com/sensala/viewer/pkg/render/nodelink"
	"github.com/sensala/viewer/pkg/render/viewport"
)

// =============================================================================
// Layout Generation
// =============================================================================

// LayoutEngine positions a DOT layout request. [*nodelink.Engine] is the
// production implementation.
type LayoutEngine interface {
	Layout(ctx context.Context, req nodelink.Request) (graph.Layout, error)
}

// GenerateLayout builds the DOT request for g and lays it out with engine.
func GenerateLayout(ctx context.Context, engine LayoutEngine, g graph.Graph, opts Options) (graph.Layout, error) {
	if g.Empty() {
		return graph.Layout{}, errors.New(errors.ErrCodeInvalidInput, "cannot lay out an empty graph")
	}
	req := nodelink.Build(g, opts.BuildOptions())
	return engine.Layout(ctx, req)
}

// =============================================================================
// Fit
// =============================================================================

// Fit computes the transform for l inside s. A degenerate layout or surface
// falls back to the identity transform and reports degenerate = true; any
// other error is returned.
func Fit(l graph.Layout, s viewport.Surface) (fit viewport.FitTransform, degenerate bool, err error) {
	fit, err = s.Fit(l)
	if err == nil {
		return fit, false, nil
	}
	if errors.Is(err, errors.ErrCodeDegenerateLayout) {
		return viewport.Identity(), true, nil
	}
	return viewport.FitTransform{}, false, err
}
