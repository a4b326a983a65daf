package nodelink

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/sensala/viewer/pkg/graph"
	"github.com/sensala/viewer/pkg/render/viewport"
)

func twoNodes() graph.Graph {
	return graph.Graph{
		Root: "0",
		Nodes: []graph.Node{
			{ID: "0", Label: "App", StyleClass: "App", Kind: graph.KindTag},
			{ID: "1", Label: "walk", StyleClass: "walk", Kind: graph.KindWord, Depth: 1},
		},
		Edges: []graph.Edge{{ID: "e0", Source: "0", Target: "1"}},
	}
}

func TestDOT_Basic(t *testing.T) {
	dot := Build(twoNodes(), Options{}).DOT()

	for _, want := range []string{
		"digraph G",
		"rankdir=TB",
		"splines=spline",
		"pad=0",
		`"0" [label="App", id="node-0", class="App"]`,
		`"1" [label="walk"`,
		`"0" -> "1" [id="e0"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT() missing %q in:\n%s", want, dot)
		}
	}
}

func TestDOT_Options(t *testing.T) {
	dot := Build(twoNodes(), Options{RankDir: RankDirLR, Detailed: true}).DOT()

	if !strings.Contains(dot, "rankdir=LR") {
		t.Error("DOT() should honor RankDir")
	}
	if !strings.Contains(dot, `label="App\n#0 App"`) {
		t.Errorf("DOT() detailed label missing id and class:\n%s", dot)
	}

	if got := (Options{RankDir: "sideways"}).rankDir(); got != RankDirTB {
		t.Errorf("rankDir() = %q, want TB for unknown values", got)
	}
}

func TestDOT_WordNodesStyled(t *testing.T) {
	attrs := fmtAttrs(graph.Node{ID: "3", Label: "x", StyleClass: "x", Kind: graph.KindWord}, "x")
	if !strings.Contains(strings.Join(attrs, " "), "fontname") {
		t.Errorf("fmtAttrs() word node = %v, want italic font", attrs)
	}

	attrs = fmtAttrs(graph.Node{ID: "0", Label: "S"}, "S")
	if len(attrs) != 2 {
		t.Errorf("fmtAttrs() without class = %v, want label and id only", attrs)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{`a\b`, `"a\\b"`},
		{"two\nlines", `"two\nlines"`},
		{"λx.walk(x)", `"λx.walk(x)"`},
	}
	for _, tt := range tests {
		if got := quote(tt.in); got != tt.want {
			t.Errorf("quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParsePositioned(t *testing.T) {
	out := `digraph G {
	graph [bb="0,0,126,108",
		nodesep=0.3,
		rankdir=TB
	];
	node [label="\N"];
	0	[class=App,
		height=0.5,
		id="node-0",
		label=App,
		pos="63,90",
		width=0.75];
	"1"	[class="walk",
		label="a \"quoted\" ] label",
		pos="27,18",
		width=0.75];
	0 -> "1"	[id=e0,
		pos="e,36.104,34.69 53.896,73.31 49.76,65.551 44.729,56.108 40.051,47.327"];
	2 [label=extra, pos="99.5,\
18"];
}
`
	l, err := ParsePositioned(out)
	if err != nil {
		t.Fatalf("ParsePositioned() error: %v", err)
	}
	if l.Width != 126 || l.Height != 108 {
		t.Errorf("bounding box = %vx%v, want 126x108", l.Width, l.Height)
	}

	want := map[string]graph.Position{
		"0": {X: 63, Y: 18},
		"1": {X: 27, Y: 90},
		"2": {X: 99.5, Y: 90},
	}
	if len(l.Positions) != len(want) {
		t.Fatalf("positions = %v, want %d entries", l.Positions, len(want))
	}
	for id, p := range want {
		if got := l.Positions[id]; got != p {
			t.Errorf("position %s = %+v, want %+v", id, got, p)
		}
	}
}

func TestParsePositioned_OffsetBoundingBox(t *testing.T) {
	l, err := ParsePositioned("digraph {\n\tgraph [bb=\"10,20,110,70\"];\n\ta [pos=\"60,45\"];\n}\n")
	if err != nil {
		t.Fatal(err)
	}
	if l.Width != 100 || l.Height != 50 {
		t.Errorf("bounding box = %vx%v, want 100x50", l.Width, l.Height)
	}
	if got := l.Positions["a"]; got.X != 50 || got.Y != 25 {
		t.Errorf("position = %+v, want {50 25}", got)
	}
}

func TestParsePositioned_NoBoundingBox(t *testing.T) {
	if _, err := ParsePositioned("digraph G { a; }"); err == nil {
		t.Error("expected error without bb")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestEngineLayout(t *testing.T) {
	ctx := context.Background()
	e, err := NewEngine(ctx)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	defer e.Close()

	l, err := e.Layout(ctx, Build(twoNodes(), Options{}))
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if l.Degenerate() {
		t.Fatalf("layout is degenerate: %vx%v", l.Width, l.Height)
	}
	if len(l.Positions) != 2 {
		t.Fatalf("positions = %v, want 2", l.Positions)
	}
	// Top-down: the root sits above its child.
	if l.Positions["0"].Y >= l.Positions["1"].Y {
		t.Errorf("root y = %v, child y = %v; root should be above", l.Positions["0"].Y, l.Positions["1"].Y)
	}
	if !strings.Contains(string(l.SVG), "<svg") {
		t.Error("layout SVG missing <svg> tag")
	}
	if !strings.Contains(l.DOT, "digraph G") {
		t.Error("layout should carry its DOT request")
	}
}

func chain(n int) graph.Graph {
	g := graph.Graph{Root: "0"}
	for i := 0; i < n; i++ {
		id := strconv.Itoa(i)
		g.Nodes = append(g.Nodes, graph.Node{ID: id, Label: "N" + id, StyleClass: "phrase", Kind: graph.KindTree, Depth: i})
		if i > 0 {
			g.Edges = append(g.Edges, graph.Edge{ID: fmt.Sprintf("e%d", i-1), Source: strconv.Itoa(i - 1), Target: id})
		}
	}
	return g
}

func TestEngineLayoutFitsSurface(t *testing.T) {
	ctx := context.Background()
	e, err := NewEngine(ctx)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	defer e.Close()

	l, err := e.Layout(ctx, Build(chain(8), Options{}))
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	m := viewBoxRe.FindSubmatch(l.SVG)
	if m == nil {
		t.Fatalf("layout SVG has no viewBox:\n%s", l.SVG)
	}
	vbW, _ := strconv.ParseFloat(string(m[3]), 64)
	vbH, _ := strconv.ParseFloat(string(m[4]), 64)
	if math.Abs(vbW-l.Width) > 1 || math.Abs(vbH-l.Height) > 1 {
		t.Errorf("viewBox %vx%v, want the bounding box %vx%v", vbW, vbH, l.Width, l.Height)
	}

	const side = 600
	fit, err := viewport.ComputeFit(l.Width, l.Height, side, side, 40)
	if err != nil {
		t.Fatal(err)
	}
	// A tall chain is height-bound; the drawn SVG must not run past the bottom.
	if bottom := fit.TranslateY + vbH*fit.Scale; bottom > side+fit.Scale {
		t.Errorf("fitted SVG bottom = %v, overflows the %v surface", bottom, side)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), `digraph G { a -> b; }`)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
