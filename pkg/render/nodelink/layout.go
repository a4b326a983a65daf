package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-graphviz"

	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/graph"
)

// positionedFormat is Graphviz's own DOT output, annotated with the computed
// bounding box (bb) and node positions (pos).
const positionedFormat graphviz.Format = "dot"

// Engine lays out requests with an in-process Graphviz instance.
// The instance is not safe for concurrent use, so calls are serialized.
type Engine struct {
	mu sync.Mutex
	gv *graphviz.Graphviz
}

// NewEngine starts a Graphviz instance. Callers must Close it.
func NewEngine(ctx context.Context) (*Engine, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	return &Engine{gv: gv}, nil
}

// Close releases the Graphviz instance.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gv.Close()
}

// Layout positions the request's graph. The returned layout carries the
// bounding box, top-down node positions, the DOT source and the unscaled SVG.
func (e *Engine) Layout(ctx context.Context, req Request) (graph.Layout, error) {
	dot := req.DOT()

	e.mu.Lock()
	defer e.mu.Unlock()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return graph.Layout{}, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var positioned bytes.Buffer
	if err := e.gv.Render(ctx, g, positionedFormat, &positioned); err != nil {
		return graph.Layout{}, errors.Wrap(errors.ErrCodeInternal, err, "layout")
	}

	var svg bytes.Buffer
	if err := e.gv.Render(ctx, g, graphviz.SVG, &svg); err != nil {
		return graph.Layout{}, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}

	l, err := ParsePositioned(positioned.String())
	if err != nil {
		return graph.Layout{}, err
	}
	l.DOT = dot
	l.SVG = normalizeViewBox(svg.Bytes())
	return l, nil
}

// RenderSVG renders a DOT graph to SVG using a short-lived Graphviz instance.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

const num = `(-?[0-9]*\.?[0-9]+(?:[eE][-+]?[0-9]+)?)`

var (
	bbRe   = regexp.MustCompile(`bb="` + num + `,` + num + `,` + num + `,` + num + `"`)
	stmtRe = regexp.MustCompile(`(?m)^\s*("(?:[^"\\]|\\.)*"|[A-Za-z0-9_.]+)\s*\[((?:[^\]"]|"(?:[^"\\]|\\.)*")*)\]`)
	posRe  = regexp.MustCompile(`(?:^|[\s,])pos="` + num + `,` + num + `"`)
)

// ParsePositioned extracts the bounding box and node centers from Graphviz's
// positioned DOT output. Graphviz puts the origin at the bottom-left; the
// returned positions are flipped to a top-left origin.
func ParsePositioned(out string) (graph.Layout, error) {
	out = strings.ReplaceAll(out, "\\\n", "")

	bb := bbRe.FindStringSubmatch(out)
	if bb == nil {
		return graph.Layout{}, errors.New(errors.ErrCodeInternal, "layout output has no bounding box")
	}
	x0, y0, x1, y1 := parseNum(bb[1]), parseNum(bb[2]), parseNum(bb[3]), parseNum(bb[4])

	l := graph.Layout{
		Width:     x1 - x0,
		Height:    y1 - y0,
		Positions: make(map[string]graph.Position),
	}

	for _, m := range stmtRe.FindAllStringSubmatch(out, -1) {
		id := unquote(m[1])
		switch id {
		case "graph", "node", "edge":
			continue
		}
		pos := posRe.FindStringSubmatch(m[2])
		if pos == nil {
			continue
		}
		l.Positions[id] = graph.Position{
			X: parseNum(pos[1]) - x0,
			Y: y1 - parseNum(pos[2]),
		}
	}
	return l, nil
}

func parseNum(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' {
		return s
	}
	return strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(s[1 : len(s)-1])
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
