package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/graph"
	"github.com/sensala/viewer/pkg/integrations/sensala"
	"github.com/sensala/viewer/pkg/pipeline"
	"github.com/sensala/viewer/pkg/render/nodelink"
	"github.com/sensala/viewer/pkg/render/viewport"
	"github.com/sensala/viewer/pkg/surface"
	"github.com/sensala/viewer/pkg/tree"
)

type boxEngine struct{ calls atomic.Int32 }

func (e *boxEngine) Layout(_ context.Context, req nodelink.Request) (graph.Layout, error) {
	e.calls.Add(1)
	return graph.Layout{
		Width:  100,
		Height: 50,
		DOT:    req.DOT(),
		SVG:    []byte(`<svg width="100pt" height="50pt"><g id="graph0"/></svg>`),
	}, nil
}

// stubInterpreter answers by discourse. A discourse listed in gates blocks
// until its channel is closed.
type stubInterpreter struct {
	mu      sync.Mutex
	answers map[string]*sensala.Response
	errs    map[string]error
	gates   map[string]chan struct{}
	started chan string
	calls   atomic.Int32
}

func newStub() *stubInterpreter {
	return &stubInterpreter{
		answers: map[string]*sensala.Response{},
		errs:    map[string]error{},
		gates:   map[string]chan struct{}{},
		started: make(chan string, 8),
	}
}

func (s *stubInterpreter) Interpret(ctx context.Context, discourse string, _ bool) (*sensala.Response, error) {
	s.calls.Add(1)
	s.started <- discourse
	s.mu.Lock()
	gate := s.gates[discourse]
	resp, err := s.answers[discourse], s.errs[discourse]
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeTransport, ctx.Err(), "interpret")
		}
	}
	return resp, err
}

func socratesResponse() *sensala.Response {
	return &sensala.Response{
		ParseTree: tree.GenericTree{Label: "S", NodeType: "root"},
		Term:      tree.Word("Socrates"),
		Result:    "walk(socrates)",
	}
}

func platoResponse() *sensala.Response {
	return &sensala.Response{
		ParseTree: tree.GenericTree{Label: "S", NodeType: "root", Children: []tree.GenericTree{
			{Label: "NP", NodeType: "phrase"},
			{Label: "VP", NodeType: "phrase"},
		}},
		Term:   tree.Tag("Sleep", tree.F("agent", tree.Word("plato"))),
		Result: "sleep(plato)",
	}
}

func newTestSession(t *testing.T, interp Interpreter) (*Session, *surface.Set) {
	t.Helper()
	surfaces := surface.NewSet(viewport.Surface{Width: 600, Height: 600, PaddingX: 40})
	runner := pipeline.NewRunner(&boxEngine{}, nil, nil, nil)
	return New(interp, runner, surfaces, Options{Timeout: 5 * time.Second}, nil), surfaces
}

func TestInterpretSocrates(t *testing.T) {
	stub := newStub()
	stub.answers["Socrates walks."] = socratesResponse()
	sess, surfaces := newTestSession(t, stub)

	out, err := sess.Interpret(context.Background(), "Socrates walks.")
	if err != nil {
		t.Fatalf("Interpret() error: %v", err)
	}
	if out.Response.Result != "walk(socrates)" {
		t.Errorf("Result = %q", out.Response.Result)
	}

	st := sess.State()
	if st.Loading {
		t.Error("Loading should be false after success")
	}
	if st.Result != "walk(socrates)" || !st.ShowResult() {
		t.Errorf("state = %+v", st)
	}
	if st.Generation != 1 || st.RequestID == "" {
		t.Errorf("Generation = %d RequestID = %q", st.Generation, st.RequestID)
	}

	stanford := surfaces.Stanford().Snapshot()
	if stanford.Empty() || stanford.Graph.Len() != 1 || len(stanford.Graph.Edges) != 0 {
		t.Fatalf("stanford graph = %+v", stanford.Graph)
	}
	if stanford.Graph.Nodes[0].Label != "S" {
		t.Errorf("stanford label = %q", stanford.Graph.Nodes[0].Label)
	}

	term := surfaces.Sensala().Snapshot()
	if term.Empty() || term.Graph.Len() != 1 || len(term.Graph.Edges) != 0 {
		t.Fatalf("sensala graph = %+v", term.Graph)
	}
	if n := term.Graph.Nodes[0]; n.Label != "Socrates" || !n.IsWord() {
		t.Errorf("sensala node = %+v", n)
	}
	if term.Generation != 1 || len(term.SVG) == 0 {
		t.Errorf("sensala snapshot generation=%d svg=%d bytes", term.Generation, len(term.SVG))
	}
}

func TestInterpretFailureKeepsResult(t *testing.T) {
	stub := newStub()
	stub.answers["Socrates walks."] = socratesResponse()
	stub.errs["broken"] = errors.New(errors.ErrCodeTransport, "POST http://x/eval: connection refused")
	sess, surfaces := newTestSession(t, stub)

	if _, err := sess.Interpret(context.Background(), "Socrates walks."); err != nil {
		t.Fatalf("Interpret() error: %v", err)
	}

	_, err := sess.Interpret(context.Background(), "broken")
	if !errors.Is(err, errors.ErrCodeTransport) {
		t.Fatalf("Interpret() error = %v, want TRANSPORT_FAILURE", err)
	}

	st := sess.State()
	if st.Loading {
		t.Error("Loading should be false after failure")
	}
	if st.Result != "walk(socrates)" {
		t.Errorf("Result = %q, want previous result", st.Result)
	}
	if st.LastErrorCode != string(errors.ErrCodeTransport) || st.LastError == "" {
		t.Errorf("last error = %q (%s)", st.LastError, st.LastErrorCode)
	}
	for _, sf := range surfaces.All() {
		if !sf.Snapshot().Empty() {
			t.Errorf("surface %s should stay cleared after failure", sf.Name())
		}
	}
}

func TestInterpretContractViolation(t *testing.T) {
	stub := newStub()
	stub.answers["bad tree"] = &sensala.Response{
		ParseTree: tree.GenericTree{Label: "S", NodeType: "root"},
		Term:      tree.Tag("Walk", tree.Field{Name: "agent"}),
		Result:    "?",
	}
	sess, _ := newTestSession(t, stub)

	_, err := sess.Interpret(context.Background(), "bad tree")
	if !errors.Is(err, errors.ErrCodeContractViolation) {
		t.Fatalf("Interpret() error = %v, want CONTRACT_VIOLATION", err)
	}
	if st := sess.State(); st.Result != "" || st.Loading {
		t.Errorf("state = %+v", st)
	}
}

func TestInterpretEmptyDiscourse(t *testing.T) {
	stub := newStub()
	sess, _ := newTestSession(t, stub)

	for _, in := range []string{"", "   ", "\n\t"} {
		if _, err := sess.Interpret(context.Background(), in); err != ErrEmptyDiscourse {
			t.Errorf("Interpret(%q) error = %v, want ErrEmptyDiscourse", in, err)
		}
	}
	if stub.calls.Load() != 0 {
		t.Errorf("interpreter called %d times, want 0", stub.calls.Load())
	}
	if st := sess.State(); st.Generation != 0 || st.Loading {
		t.Errorf("state changed on empty input: %+v", st)
	}
}

func TestInterpretInvalidDiscourse(t *testing.T) {
	sess, _ := newTestSession(t, newStub())
	_, err := sess.Interpret(context.Background(), "bell\x07")
	if !errors.Is(err, errors.ErrCodeInvalidDiscourse) {
		t.Errorf("Interpret() error = %v, want INVALID_DISCOURSE", err)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	stub := newStub()
	stub.answers["slow"] = socratesResponse()
	stub.answers["fast"] = platoResponse()
	release := make(chan struct{})
	stub.gates["slow"] = release
	sess, surfaces := newTestSession(t, stub)

	slowErr := make(chan error, 1)
	go func() {
		_, err := sess.Interpret(context.Background(), "slow")
		slowErr <- err
	}()
	<-stub.started

	if _, err := sess.Interpret(context.Background(), "fast"); err != nil {
		t.Fatalf("Interpret(fast) error: %v", err)
	}
	close(release)

	if err := <-slowErr; !IsStale(err) {
		t.Fatalf("slow Interpret() error = %v, want ErrStale", err)
	}

	st := sess.State()
	if st.Result != "sleep(plato)" || st.Generation != 2 || st.Loading {
		t.Errorf("state = %+v, want the newer result", st)
	}
	snap := surfaces.Stanford().Snapshot()
	if snap.Generation != 2 || snap.Graph.Len() != 3 {
		t.Errorf("stanford generation=%d nodes=%d, want 2 and 3", snap.Generation, snap.Graph.Len())
	}
}

func TestStaleFailureDiscarded(t *testing.T) {
	stub := newStub()
	stub.errs["slow"] = errors.New(errors.ErrCodeTransport, "late failure")
	stub.answers["fast"] = socratesResponse()
	release := make(chan struct{})
	stub.gates["slow"] = release
	sess, _ := newTestSession(t, stub)

	slowErr := make(chan error, 1)
	go func() {
		_, err := sess.Interpret(context.Background(), "slow")
		slowErr <- err
	}()
	<-stub.started

	if _, err := sess.Interpret(context.Background(), "fast"); err != nil {
		t.Fatalf("Interpret(fast) error: %v", err)
	}
	close(release)

	if err := <-slowErr; !IsStale(err) {
		t.Fatalf("slow Interpret() error = %v, want ErrStale", err)
	}
	if st := sess.State(); st.LastError != "" || st.Result != "walk(socrates)" {
		t.Errorf("stale failure leaked into state: %+v", st)
	}
}

func TestSubmit(t *testing.T) {
	stub := newStub()
	stub.answers["Socrates walks."] = socratesResponse()
	release := make(chan struct{})
	stub.gates["Socrates walks."] = release
	sess, surfaces := newTestSession(t, stub)

	ctx, cancel := context.WithCancel(context.Background())
	events := surfaces.Subscribe(ctx)
	defer cancel()

	gen, err := sess.Submit(ctx, "Socrates walks.")
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if gen != 1 {
		t.Errorf("generation = %d, want 1", gen)
	}
	<-stub.started
	if st := sess.State(); !st.Loading || st.ShowResult() {
		t.Errorf("state while loading = %+v", st)
	}

	close(release)
	sess.Wait()

	if st := sess.State(); st.Loading || st.Result != "walk(socrates)" {
		t.Errorf("state after Wait = %+v", st)
	}

	kinds := map[string]int{}
	timeout := time.After(time.Second)
	for kinds[surface.EventRender] < 2 || kinds[surface.EventState] < 2 {
		select {
		case evt := <-events:
			kinds[evt.Kind]++
		case <-timeout:
			t.Fatalf("events = %v, want 2 clears, 2 renders and 2 states", kinds)
		}
	}
	if kinds[surface.EventClear] != 2 {
		t.Errorf("clear events = %d, want 2", kinds[surface.EventClear])
	}
}

func TestSubmitOutlivesCallerContext(t *testing.T) {
	stub := newStub()
	stub.answers["Socrates walks."] = socratesResponse()
	release := make(chan struct{})
	stub.gates["Socrates walks."] = release
	sess, _ := newTestSession(t, stub)

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := sess.Submit(ctx, "Socrates walks."); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	<-stub.started
	cancel()
	close(release)
	sess.Wait()

	if st := sess.State(); st.Result != "walk(socrates)" {
		t.Errorf("Result = %q, want walk(socrates)", st.Result)
	}
}

func TestInterpretTimeout(t *testing.T) {
	stub := newStub()
	stub.answers["hang"] = socratesResponse()
	stub.gates["hang"] = make(chan struct{})
	surfaces := surface.NewSet(viewport.Surface{Width: 600, Height: 600})
	sess := New(stub, pipeline.NewRunner(&boxEngine{}, nil, nil, nil), surfaces, Options{Timeout: 20 * time.Millisecond}, nil)

	_, err := sess.Interpret(context.Background(), "hang")
	if !errors.Is(err, errors.ErrCodeTransport) {
		t.Fatalf("Interpret() error = %v, want TRANSPORT_FAILURE", err)
	}
	if sess.State().Loading {
		t.Error("Loading should be false after timeout")
	}
}

func TestInterpretZeroPadding(t *testing.T) {
	stub := newStub()
	stub.answers["Socrates walks."] = socratesResponse()
	surfaces := surface.NewSet(viewport.Surface{Width: 600, Height: 600, PaddingX: 0})
	sess := New(stub, pipeline.NewRunner(&boxEngine{}, nil, nil, nil), surfaces, Options{Timeout: 5 * time.Second}, nil)

	out, err := sess.Interpret(context.Background(), "Socrates walks.")
	if err != nil {
		t.Fatalf("Interpret() error: %v", err)
	}

	// A 100x50 layout on a 600x600 surface with no padding fills the width.
	want := viewport.FitTransform{Scale: 6, TranslateX: 0, TranslateY: 0}
	if out.ParseTree.Fit != want {
		t.Errorf("parse tree fit = %+v, want %+v", out.ParseTree.Fit, want)
	}
	for _, sf := range surfaces.All() {
		if got := sf.Snapshot().Fit; got != want {
			t.Errorf("%s fit = %+v, want %+v", sf.Name(), got, want)
		}
	}
}

func TestStateEventsInGenerationOrder(t *testing.T) {
	const n = 6
	stub := newStub()
	for i := 0; i < n; i++ {
		stub.answers[fmt.Sprintf("Socrates walks %d.", i)] = socratesResponse()
	}
	sess, surfaces := newTestSession(t, stub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := surfaces.Subscribe(ctx)

	var gens []uint64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for evt := range events {
			if evt.Kind != surface.EventState {
				continue
			}
			gens = append(gens, evt.Generation)
			if st, ok := evt.Data.(State); ok && evt.Generation == n && !st.Loading {
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := sess.Submit(ctx, fmt.Sprintf("Socrates walks %d.", i)); err != nil {
				t.Errorf("Submit() error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	sess.Wait()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("no settled state for generation %d, saw %v", n, gens)
	}
	for i := 1; i < len(gens); i++ {
		if gens[i] < gens[i-1] {
			t.Fatalf("state generations out of order: %v", gens)
		}
	}
}
