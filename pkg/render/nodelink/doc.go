// Package nodelink turns normalized graphs into positioned node-link diagrams.
//
// # Overview
//
// This package is the bridge between [graph.Graph] and Graphviz. [Build] maps
// a graph onto a layout [Request]; an [Engine] lays the request out and
// returns a [graph.Layout] carrying the bounding box, per-node positions and
// the rendered SVG.
//
// # Usage
//
//	engine, err := nodelink.NewEngine(ctx)
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
//	req := nodelink.Build(g, nodelink.Options{})
//	layout, err := engine.Layout(ctx, req)
//
// For a one-off rendering without positions, use [RenderSVG] on the DOT text:
//
//	svg, err := nodelink.RenderSVG(ctx, req.DOT())
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - RankDir: "TB" (default) or "LR"
//   - Detailed: when true, node labels include the node id and style class
//
// # Positions
//
// Graphviz reports coordinates with a bottom-left origin. [ParsePositioned]
// reads its positioned DOT output and flips positions to the top-left origin
// used by SVG and by the viewport fitter.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process layout and
// SVG rendering; no system Graphviz install is needed.
package nodelink
