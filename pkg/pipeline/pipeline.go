// Package pipeline provides the per-tree render pipeline for the viewer.
//
// This package implements the normalize → build → layout → fit pipeline that
// is used by the interpretation session, the CLI and the HTTP server. By
// centralizing this logic, every entry point draws a given tree the same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Normalize: Flatten a parse tree or term tree into a [graph.Graph]
//  2. Build: Turn the graph into a DOT layout request
//  3. Layout: Position the graph with Graphviz (cached by graph hash)
//  4. Fit: Scale and center the layout inside the target surface
//
// A degenerate layout never fails the pipeline: the result carries the
// unscaled identity transform and Degenerate is set.
//
// # Usage
//
// Create a Runner and render both trees of a response:
//
//	engine, _ := nodelink.NewEngine(ctx)
//	runner := pipeline.NewRunner(engine, cache, nil, logger)
//	opts := pipeline.Options{Surface: viewport.Surface{Width: 600, Height: 600}}
//	parse, err := runner.RenderParseTree(ctx, resp.ParseTree, opts)
//	term, err := runner.RenderTerm(ctx, resp.Term, opts)
//
// Render a fitted result to a file format:
//
//	artifacts, err := pipeline.Render(ctx, parse, []string{"svg", "png"})
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sensala/viewer/pkg/cache"
	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/graph"
	"github.com/sensala/viewer/pkg/render"
	"github.com/sensala/viewer/pkg/render/nodelink"
	"github.com/sensala/viewer/pkg/render/viewport"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, Server and Session
// =============================================================================

const (
	// DefaultSurfaceWidth is the default surface width in pixels.
	DefaultSurfaceWidth = 600.0

	// DefaultSurfaceHeight is the default surface height in pixels.
	DefaultSurfaceHeight = 600.0

	// DefaultPaddingX is the default horizontal room reserved around a graph.
	DefaultPaddingX = 40.0

	// DefaultRankDir lays trees out top to bottom.
	DefaultRankDir = nodelink.RankDirTB
)

// Format constants for output formats.
const (
	FormatSVG  = render.FormatSVG
	FormatPNG  = render.FormatPNG
	FormatPDF  = render.FormatPDF
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidRankDirs is the set of supported layout directions.
var ValidRankDirs = map[string]bool{
	nodelink.RankDirTB: true,
	nodelink.RankDirLR: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fit options
	Surface viewport.Surface `json:"surface"`

	// Layout options
	RankDir  string `json:"rank_dir,omitempty"`
	Detailed bool   `json:"detailed,omitempty"` // Labels include node id and class
	Refresh  bool   `json:"refresh,omitempty"`  // Bypass the layout cache

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run for one tree.
type Result struct {
	// Surface names the surface the tree belongs on.
	Surface string

	// Graph is the normalized tree.
	Graph graph.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Layout contains positions, the DOT request and the unscaled SVG.
	Layout graph.Layout

	// Fit maps the layout into the surface.
	Fit viewport.FitTransform

	// Degenerate is set when the layout could not be fitted and Fit is
	// the identity transform.
	Degenerate bool

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	NormalizeTime time.Duration
	LayoutTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRankDir checks that a layout direction is valid.
func ValidateRankDir(dir string) error {
	if !ValidRankDirs[dir] {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid rank_dir: %q (must be one of: TB, LR)", dir)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and checks the options.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := ValidateRankDir(o.RankDir); err != nil {
		return err
	}
	if o.Surface.Width < 0 || o.Surface.Height < 0 || o.Surface.PaddingX < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "surface dimensions must not be negative: %gx%g padding %g",
			o.Surface.Width, o.Surface.Height, o.Surface.PaddingX)
	}
	o.validated = true
	return nil
}

// SetDefaults fills unset fields. Only a wholly unset surface gets the
// default size; a zero padding on a sized surface is kept.
func (o *Options) SetDefaults() {
	if o.Surface == (viewport.Surface{}) {
		o.Surface = viewport.Surface{
			Width:    DefaultSurfaceWidth,
			Height:   DefaultSurfaceHeight,
			PaddingX: DefaultPaddingX,
		}
	}
	if o.RankDir == "" {
		o.RankDir = DefaultRankDir
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// BuildOptions returns the DOT builder options.
func (o *Options) BuildOptions() nodelink.Options {
	return nodelink.Options{RankDir: o.RankDir, Detailed: o.Detailed}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		RankDir:  o.RankDir,
		Detailed: o.Detailed,
	}
}

// String summarizes the options for logs.
func (o Options) String() string {
	return fmt.Sprintf("%gx%g pad=%g rankdir=%s", o.Surface.Width, o.Surface.Height, o.Surface.PaddingX, o.RankDir)
}
