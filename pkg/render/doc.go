// Package render provides the rendering side of the viewer: layout, fitting
// and output conversion of normalized graphs.
//
// # Overview
//
//   - Node-link layout and SVG rendering (in [nodelink] subpackage)
//   - Viewport fitting of a laid-out graph into a fixed surface (in
//     [viewport] subpackage)
//   - Generic format conversion (SVG to PDF/PNG, this package)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). [Convert] dispatches on a
// format name and passes SVG through unchanged.
//
//	svg := viewport.Apply(layout.SVG, fit, surface)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/sensala/viewer/pkg/render/nodelink
// [viewport]: github.com/sensala/viewer/pkg/render/viewport
package render
