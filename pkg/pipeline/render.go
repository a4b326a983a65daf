package pipeline

import (
	"context"
	"encoding/json"

	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/graph"
	"github.com/sensala/viewer/pkg/render"
	"github.com/sensala/viewer/pkg/render/viewport"
)

// DefaultPNGScale is the rasterization scale for PNG output.
const DefaultPNGScale = 2.0

// FittedSVG returns the surface-sized SVG of a pipeline result: the layout's
// rendering wrapped in the fit transform.
func FittedSVG(res *Result, s viewport.Surface) []byte {
	return viewport.Apply(res.Layout.SVG, res.Fit, s)
}

// Render generates output artifacts of a result in the requested formats.
// SVG, PNG and PDF are the fitted surface; JSON is the normalized graph with
// its layout and fit.
func Render(ctx context.Context, res *Result, s viewport.Surface, formats []string) (map[string][]byte, error) {
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}
	if len(res.Layout.SVG) == 0 && needsSVG(formats) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "result for %s has no rendered layout", res.Surface)
	}

	svg := FittedSVG(res, s)
	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svg
		case FormatPNG:
			data, err = render.ToPNG(ctx, svg, DefaultPNGScale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, svg)
		case FormatJSON:
			data, err = marshalResult(res)
		}

		if err != nil {
			return nil, errors.Wrap(codeOr(err, errors.ErrCodeInternal), err, "render %s %s", res.Surface, format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func needsSVG(formats []string) bool {
	for _, f := range formats {
		if f != FormatJSON {
			return true
		}
	}
	return false
}

type resultJSON struct {
	Surface    string                    `json:"surface"`
	Graph      graph.Graph               `json:"graph"`
	Width      float64                   `json:"width"`
	Height     float64                   `json:"height"`
	Positions  map[string]graph.Position `json:"positions"`
	Fit        viewport.FitTransform     `json:"fit"`
	Degenerate bool                      `json:"degenerate,omitempty"`
	Stats      map[string]int            `json:"stats"`
}

func marshalResult(res *Result) ([]byte, error) {
	return json.MarshalIndent(resultJSON{
		Surface:    res.Surface,
		Graph:      res.Graph,
		Width:      res.Layout.Width,
		Height:     res.Layout.Height,
		Positions:  res.Layout.Positions,
		Fit:        res.Fit,
		Degenerate: res.Degenerate,
		Stats:      map[string]int{"nodes": res.Stats.NodeCount, "edges": res.Stats.EdgeCount},
	}, "", "  ")
}
