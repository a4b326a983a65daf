package pipeline

import (
	"context"
	"time"

	"github.com/sensala/viewer/pkg/cache"
	"github.com/sensala/viewer/pkg/graph"
	"github.com/sensala/viewer/pkg/normalize"
	"github.com/sensala/viewer/pkg/observability"
)

// Normalize flattens src with n and checks the result.
func Normalize[T any](ctx context.Context, n normalize.Normalizer[T], src T) (graph.Graph, time.Duration, error) {
	start := time.Now()
	g, err := n.Normalize(src)
	if err == nil {
		err = g.Validate()
	}
	elapsed := time.Since(start)
	observability.Pipeline().OnNormalizeComplete(ctx, n.Surface(), g.Len(), elapsed, err)
	if err != nil {
		return graph.Graph{}, elapsed, err
	}
	return g, elapsed, nil
}

// GraphHash returns the content hash used to key cached layouts.
func GraphHash(g graph.Graph) (string, error) {
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
