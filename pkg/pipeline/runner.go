package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sensala/viewer/pkg/cache"
	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/graph"
	"github.com/sensala/viewer/pkg/normalize"
	"github.com/sensala/viewer/pkg/observability"
	"github.com/sensala/viewer/pkg/tree"
)

// Runner encapsulates pipeline execution with layout caching.
// The session, CLI and server all use it so trees are drawn identically.
//
// The Runner is stateless except for the engine, cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Engine LayoutEngine
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given engine, cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(engine LayoutEngine, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Engine: engine,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// RenderParseTree runs the pipeline for a generic parse tree.
func (r *Runner) RenderParseTree(ctx context.Context, t tree.GenericTree, opts Options) (*Result, error) {
	return execute(ctx, r, normalize.GenericTreeNormalizer{}, t, opts)
}

// RenderTerm runs the pipeline for a tagged term tree.
func (r *Runner) RenderTerm(ctx context.Context, t tree.Term, opts Options) (*Result, error) {
	return execute(ctx, r, normalize.TaggedTermNormalizer{}, t, opts)
}

// execute runs the complete normalize → build → layout → fit pipeline.
func execute[T any](ctx context.Context, r *Runner, n normalize.Normalizer[T], src T, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	surface := n.Surface()
	logger := opts.Logger.With("surface", surface)

	result := &Result{Surface: surface}

	// Stage 1: Normalize
	g, elapsed, err := Normalize(ctx, n, src)
	if err != nil {
		return nil, errors.Wrap(codeOr(err, errors.ErrCodeContractViolation), err, "normalize %s tree", surface)
	}
	result.Graph = g
	result.Stats.NodeCount = g.Len()
	result.Stats.EdgeCount = len(g.Edges)
	result.Stats.NormalizeTime = elapsed

	logger.Debug("normalized tree",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", elapsed)

	// Stages 2 and 3: Build + Layout
	layoutStart := time.Now()
	layout, hit, err := r.ComputeLayoutWithCacheInfo(ctx, surface, g, opts)
	if err != nil {
		return nil, errors.Wrap(codeOr(err, errors.ErrCodeInternal), err, "layout %s tree", surface)
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit
	if hash, err := GraphHash(g); err == nil {
		result.GraphHash = hash
	}

	logger.Debug("computed layout",
		"width", layout.Width,
		"height", layout.Height,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Fit
	fit, degenerate, err := Fit(layout, opts.Surface)
	if err != nil {
		return nil, err
	}
	if degenerate {
		observability.Pipeline().OnDegenerateFit(ctx, surface)
		logger.Warn("degenerate layout, rendering unscaled",
			"width", layout.Width,
			"height", layout.Height)
	}
	result.Fit = fit
	result.Degenerate = degenerate

	return result, nil
}

// ComputeLayoutWithCacheInfo lays out g with caching and returns cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, surface string, g graph.Graph, opts Options) (graph.Layout, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Layout{}, false, err
	}
	if r.Engine == nil {
		return graph.Layout{}, false, errors.New(errors.ErrCodeInternal, "runner has no layout engine")
	}

	// Compute cache key
	graphHash, err := GraphHash(g)
	if err != nil {
		return graph.Layout{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := graph.UnmarshalLayout(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	// Generate layout
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, surface, g.Len())
	start := time.Now()
	layout, err := GenerateLayout(ctx, r.Engine, g, opts)
	hooks.OnLayoutComplete(ctx, surface, time.Since(start), err)
	if err != nil {
		return graph.Layout{}, false, err
	}

	// Cache the result
	if data, err := graph.MarshalLayout(layout); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout) == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return layout, false, nil // Cache miss
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, surface string, g graph.Graph, opts Options) (graph.Layout, error) {
	layout, _, err := r.ComputeLayoutWithCacheInfo(ctx, surface, g, opts)
	return layout, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func codeOr(err error, fallback errors.Code) errors.Code {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return fallback
}
