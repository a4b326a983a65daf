package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sensala/viewer/pkg/errors"
)

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	interpretations  *prometheus.CounterVec
	interpretSeconds prometheus.Histogram
	staleResponses   prometheus.Counter

	graphNodes     *prometheus.HistogramVec
	layoutSeconds  *prometheus.HistogramVec
	pipelineErrors *prometheus.CounterVec
	degenerateFits *prometheus.CounterVec

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpSeconds  *prometheus.HistogramVec
}

var _ Hooks = (*Prometheus)(nil)

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		interpretations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensala_interpretations_total",
				Help: "Interpretations by outcome code (ok on success)",
			},
			[]string{"outcome"},
		),
		interpretSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sensala_interpretation_duration_seconds",
				Help:    "End-to-end interpretation latency",
				Buckets: prometheus.DefBuckets,
			},
		),
		staleResponses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sensala_stale_responses_total",
				Help: "Responses discarded because a newer interpretation had started",
			},
		),
		graphNodes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sensala_graph_nodes",
				Help:    "Nodes per normalized graph",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"surface"},
		),
		layoutSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sensala_layout_duration_seconds",
				Help:    "Graphviz layout latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"surface"},
		),
		pipelineErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensala_pipeline_errors_total",
				Help: "Pipeline failures by stage",
			},
			[]string{"surface", "stage"},
		),
		degenerateFits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensala_degenerate_fits_total",
				Help: "Layouts shown unscaled because they could not be fitted",
			},
			[]string{"surface"},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensala_cache_events_total",
				Help: "Cache hits, misses and writes",
			},
			[]string{"key_type", "event"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensala_cache_written_bytes_total",
				Help: "Bytes written to the cache",
			},
			[]string{"key_type"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensala_upstream_requests_total",
				Help: "Requests to the interpretation service by status",
			},
			[]string{"method", "path", "status"},
		),
		httpSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sensala_upstream_request_duration_seconds",
				Help:    "Interpretation service latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	reg.MustRegister(
		p.interpretations, p.interpretSeconds, p.staleResponses,
		p.graphNodes, p.layoutSeconds, p.pipelineErrors, p.degenerateFits,
		p.cacheEvents, p.cacheBytes,
		p.httpRequests, p.httpSeconds,
	)
	return p
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return string(errors.ErrCodeInternal)
}

func (p *Prometheus) OnInterpretStart(context.Context, uint64) {}

func (p *Prometheus) OnInterpretComplete(_ context.Context, _ uint64, d time.Duration, err error) {
	p.interpretations.WithLabelValues(outcome(err)).Inc()
	p.interpretSeconds.Observe(d.Seconds())
}

func (p *Prometheus) OnStaleDiscarded(context.Context, uint64, uint64) {
	p.staleResponses.Inc()
}

func (p *Prometheus) OnNormalizeComplete(_ context.Context, surface string, nodes int, _ time.Duration, err error) {
	if err != nil {
		p.pipelineErrors.WithLabelValues(surface, "normalize").Inc()
		return
	}
	p.graphNodes.WithLabelValues(surface).Observe(float64(nodes))
}

func (p *Prometheus) OnLayoutStart(context.Context, string, int) {}

func (p *Prometheus) OnLayoutComplete(_ context.Context, surface string, d time.Duration, err error) {
	if err != nil {
		p.pipelineErrors.WithLabelValues(surface, "layout").Inc()
		return
	}
	p.layoutSeconds.WithLabelValues(surface).Observe(d.Seconds())
}

func (p *Prometheus) OnDegenerateFit(_ context.Context, surface string) {
	p.degenerateFits.WithLabelValues(surface).Inc()
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, _, path string, status int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	p.httpSeconds.WithLabelValues(method, path).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, method, _, path string, _ error) {
	p.httpRequests.WithLabelValues(method, path, "error").Inc()
}
