package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sensala/viewer/pkg/errors"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Session hooks
	s := NoopSessionHooks{}
	s.OnInterpretStart(ctx, 1)
	s.OnInterpretComplete(ctx, 1, time.Second, nil)
	s.OnStaleDiscarded(ctx, 1, 2)

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnNormalizeComplete(ctx, "stanford", 9, time.Millisecond, nil)
	p.OnLayoutStart(ctx, "sensala", 100)
	p.OnLayoutComplete(ctx, "sensala", time.Second, nil)
	p.OnDegenerateFit(ctx, "stanford")

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "response")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "layout", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "localhost:8080", "/eval")
	h.OnResponse(ctx, "POST", "localhost:8080", "/eval", 200, time.Second)
	h.OnError(ctx, "POST", "localhost:8080", "/eval", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Session().(NoopSessionHooks); !ok {
		t.Error("Session() should return NoopSessionHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customSession := &testSessionHooks{}
	SetSessionHooks(customSession)
	if Session() != customSession {
		t.Error("SetSessionHooks should set custom hooks")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Session().(NoopSessionHooks); !ok {
		t.Error("Reset() should restore NoopSessionHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

func TestRegisterInstallsAllCategories(t *testing.T) {
	Reset()
	defer Reset()

	p := NewPrometheus(prometheus.NewRegistry())
	Register(p)

	if Session() != SessionHooks(p) || Pipeline() != PipelineHooks(p) ||
		Cache() != CacheHooks(p) || HTTP() != HTTPHooks(p) {
		t.Error("Register should install the hooks for every category")
	}
}

func TestPrometheusCounts(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.OnInterpretComplete(ctx, 1, time.Millisecond, nil)
	p.OnInterpretComplete(ctx, 2, time.Millisecond, errors.New(errors.ErrCodeTransport, "down"))
	p.OnStaleDiscarded(ctx, 1, 2)
	p.OnNormalizeComplete(ctx, "stanford", 9, 0, nil)
	p.OnNormalizeComplete(ctx, "sensala", 0, 0, errors.New(errors.ErrCodeContractViolation, "bad"))
	p.OnLayoutComplete(ctx, "stanford", time.Millisecond, nil)
	p.OnDegenerateFit(ctx, "stanford")
	p.OnCacheHit(ctx, "layout")
	p.OnCacheMiss(ctx, "layout")
	p.OnCacheSet(ctx, "layout", 10)
	p.OnResponse(ctx, "POST", "h", "/eval", 200, time.Millisecond)
	p.OnError(ctx, "POST", "h", "/eval", nil)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"ok", testutil.ToFloat64(p.interpretations.WithLabelValues("ok")), 1},
		{"transport", testutil.ToFloat64(p.interpretations.WithLabelValues("TRANSPORT_FAILURE")), 1},
		{"stale", testutil.ToFloat64(p.staleResponses), 1},
		{"normalize error", testutil.ToFloat64(p.pipelineErrors.WithLabelValues("sensala", "normalize")), 1},
		{"degenerate", testutil.ToFloat64(p.degenerateFits.WithLabelValues("stanford")), 1},
		{"cache hit", testutil.ToFloat64(p.cacheEvents.WithLabelValues("layout", "hit")), 1},
		{"cache miss", testutil.ToFloat64(p.cacheEvents.WithLabelValues("layout", "miss")), 1},
		{"cache bytes", testutil.ToFloat64(p.cacheBytes.WithLabelValues("layout")), 10},
		{"http 200", testutil.ToFloat64(p.httpRequests.WithLabelValues("POST", "/eval", "200")), 1},
		{"http error", testutil.ToFloat64(p.httpRequests.WithLabelValues("POST", "/eval", "error")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if n, err := testutil.GatherAndCount(reg, "sensala_interpretation_duration_seconds"); err != nil || n != 1 {
		t.Errorf("duration histogram count = %d, %v", n, err)
	}

	names, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range names {
		if !strings.HasPrefix(mf.GetName(), "sensala_") {
			t.Errorf("metric %q lacks the sensala_ prefix", mf.GetName())
		}
	}
}

// Test implementations
type testSessionHooks struct{ NoopSessionHooks }
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
