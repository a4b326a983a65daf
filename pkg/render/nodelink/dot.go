package nodelink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sensala/viewer/pkg/graph"
)

// Rank directions accepted by [Options].
const (
	RankDirTB = "TB"
	RankDirLR = "LR"
)

// Options configures node-link diagram generation.
type Options struct {
	// RankDir is the Graphviz rank direction. Defaults to "TB" so parents sit
	// above their children.
	RankDir string

	// Detailed appends the node id and style class to each label.
	// When false, only the node label is shown.
	Detailed bool
}

func (o Options) rankDir() string {
	if o.RankDir == RankDirLR {
		return RankDirLR
	}
	return RankDirTB
}

// Request is a graph prepared for the layout engine. It holds no state beyond
// its inputs; [Request.DOT] renders it on demand.
type Request struct {
	Graph   graph.Graph
	Options Options
}

// Build maps a graph onto a layout request. Every node carries its id, label,
// style class and a fixed padding and rounding hint; every edge carries its
// endpoints, its id and a curve smoothing hint. Build performs no I/O.
func Build(g graph.Graph, opts Options) Request {
	return Request{Graph: g, Options: opts}
}

// DOT returns the Graphviz DOT source for the request.
func (r Request) DOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", r.Options.rankDir())
	buf.WriteString("  bgcolor=\"transparent\";\n")
	// No outer pad, so the SVG viewBox matches the bounding box the fit uses.
	buf.WriteString("  pad=0;\n")
	buf.WriteString("  splines=spline;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range r.Graph.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, r.Options.Detailed))
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range r.Graph.Edges {
		fmt.Fprintf(&buf, "  %s -> %s [id=%s];\n", quote(e.Source), quote(e.Target), quote(e.ID))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.Label
	}
	return n.Label + "\n#" + n.ID + " " + n.StyleClass
}

func fmtAttrs(n graph.Node, label string) []string {
	attrs := []string{
		"label=" + quote(label),
		"id=" + quote("node-"+n.ID),
	}
	if n.StyleClass != "" {
		attrs = append(attrs, "class="+quote(n.StyleClass))
	}
	if n.IsWord() {
		attrs = append(attrs, "fillcolor=\"#f4f4f4\"", "fontname=\"Helvetica-Oblique\"")
	}
	return attrs
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

// quote renders s as a DOT double-quoted string.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
