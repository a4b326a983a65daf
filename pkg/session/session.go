// Package session provides the interpretation session behind the viewer.
//
// A [Session] owns the user-facing state (discourse, busy flag, result text)
// and the two rendering surfaces. One call to [Session.Interpret]:
//
//  1. clears both surfaces, sets Loading and starts a new generation
//  2. sends the discourse to the interpretation service
//  3. on success, runs the parse tree and term tree through the render
//     pipeline, stores the result text and renders both surfaces
//  4. on failure, clears Loading, keeps the previous result text and
//     records the error; the surfaces stay cleared
//
// # Generations
//
// Every interpretation carries a generation number. When a response arrives
// after a newer interpretation has started, it is discarded with [ErrStale]
// and nothing is touched, so a slow early response can never overwrite a
// later one.
//
// # Usage
//
//	sess := session.New(client, runner, surfaces, session.Options{}, logger)
//	out, err := sess.Interpret(ctx, "Socrates walks.")
//	if err != nil {
//	    // sess.State().LastError describes the failure
//	}
//	fmt.Println(out.Response.Result)
//
// For callers that must not block (page, TUI), [Session.Submit] starts the
// interpretation in the background and returns its generation.
package session

import (
	"context"
	stderrors "errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/integrations/sensala"
	"github.com/sensala/viewer/pkg/observability"
	"github.com/sensala/viewer/pkg/pipeline"
	"github.com/sensala/viewer/pkg/surface"
	"github.com/sensala/viewer/pkg/tree"
)

// Sentinel errors for session operations.
var (
	// ErrStale is returned when a response arrives after a newer
	// interpretation has started. It is not shown to users.
	ErrStale = errors.New(errors.ErrCodeStale, "response superseded by a newer interpretation")

	// ErrEmptyDiscourse is returned for blank input, before any state changes.
	ErrEmptyDiscourse = errors.New(errors.ErrCodeInvalidInput, "discourse cannot be empty")
)

// DefaultTimeout bounds one remote call.
const DefaultTimeout = 30 * time.Second

// Interpreter calls the interpretation service. [*sensala.Client] is the
// production implementation.
type Interpreter interface {
	Interpret(ctx context.Context, discourse string, refresh bool) (*sensala.Response, error)
}

// Renderer runs trees through the render pipeline. [*pipeline.Runner] is the
// production implementation.
type Renderer interface {
	RenderParseTree(ctx context.Context, t tree.GenericTree, opts pipeline.Options) (*pipeline.Result, error)
	RenderTerm(ctx context.Context, t tree.Term, opts pipeline.Options) (*pipeline.Result, error)
}

// Options configures a session.
type Options struct {
	// Timeout bounds the remote call. Zero selects DefaultTimeout.
	Timeout time.Duration

	// Refresh bypasses the response cache.
	Refresh bool

	// RankDir and Detailed are passed to the render pipeline.
	RankDir  string
	Detailed bool
}

// State is a snapshot of the user-facing session state.
type State struct {
	Discourse     string    `json:"discourse"`
	Loading       bool      `json:"loading"`
	Result        string    `json:"result"`
	Generation    uint64    `json:"generation"`
	RequestID     string    `json:"request_id,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	LastErrorCode string    `json:"last_error_code,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ShowResult reports whether the result text should be displayed: only
// when not loading and non-empty.
func (s State) ShowResult() bool { return !s.Loading && s.Result != "" }

// Outcome is the product of a committed interpretation.
type Outcome struct {
	RequestID  string
	Generation uint64
	Response   *sensala.Response
	ParseTree  *pipeline.Result
	Term       *pipeline.Result
	Duration   time.Duration
}

// Session orchestrates interpretations. It is safe for concurrent use.
type Session struct {
	client   Interpreter
	runner   Renderer
	surfaces *surface.Set
	opts     Options
	logger   *log.Logger

	mu    sync.Mutex
	state State

	inflight sync.WaitGroup
}

// New creates a session. A nil logger discards output.
func New(client Interpreter, runner Renderer, surfaces *surface.Set, opts Options, logger *log.Logger) *Session {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Session{
		client:   client,
		runner:   runner,
		surfaces: surfaces,
		opts:     opts,
		logger:   logger,
	}
}

// Surfaces returns the session's rendering surfaces.
func (s *Session) Surfaces() *surface.Set { return s.surfaces }

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Interpret runs one interpretation to completion. It returns [ErrStale] if
// a newer interpretation started while this one was waiting.
func (s *Session) Interpret(ctx context.Context, discourse string) (*Outcome, error) {
	gen, reqID, err := s.begin(ctx, discourse)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, gen, reqID, discourse)
}

// Submit starts an interpretation in the background and returns its
// generation. The interpretation outlives ctx's cancellation but keeps its
// values; use [Session.Wait] to wait for background work.
func (s *Session) Submit(ctx context.Context, discourse string) (uint64, error) {
	gen, reqID, err := s.begin(ctx, discourse)
	if err != nil {
		return 0, err
	}
	bg := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		_, _ = s.run(bg, gen, reqID, discourse)
	}()
	return gen, nil
}

// Wait blocks until all submitted interpretations have settled.
func (s *Session) Wait() { s.inflight.Wait() }

// begin validates the input, starts a new generation and clears the surfaces.
func (s *Session) begin(ctx context.Context, discourse string) (uint64, string, error) {
	if strings.TrimSpace(discourse) == "" {
		return 0, "", ErrEmptyDiscourse
	}
	if err := errors.ValidateDiscourse(discourse); err != nil {
		return 0, "", err
	}

	reqID := uuid.NewString()

	s.mu.Lock()
	s.state.Generation++
	gen := s.state.Generation
	s.state.Discourse = discourse
	s.state.Loading = true
	s.state.RequestID = reqID
	s.state.LastError = ""
	s.state.LastErrorCode = ""
	s.state.UpdatedAt = time.Now()
	s.surfaces.ClearAll(gen)
	// Announced under the lock so subscribers see state events in
	// generation order.
	s.surfaces.Announce(surface.EventState, gen, s.state)
	s.mu.Unlock()

	observability.Session().OnInterpretStart(ctx, gen)
	s.logger.Debug("interpreting", "request_id", reqID, "generation", gen, "discourse", discourse)
	return gen, reqID, nil
}

// run performs the remote call and the pipelines, then commits.
func (s *Session) run(ctx context.Context, gen uint64, reqID, discourse string) (*Outcome, error) {
	start := time.Now()
	logger := s.logger.With("request_id", reqID, "generation", gen)

	out, err := s.fetchAndRender(ctx, gen, reqID, discourse)
	if out != nil {
		out.Duration = time.Since(start)
	}

	if committed := s.commit(gen, out, err); !committed {
		latest := s.State().Generation
		observability.Session().OnStaleDiscarded(ctx, gen, latest)
		logger.Debug("discarded stale response", "latest", latest)
		return nil, ErrStale
	}

	duration := time.Since(start)
	observability.Session().OnInterpretComplete(ctx, gen, duration, err)
	if err != nil {
		logger.Error("interpretation failed", "code", errors.GetCode(err), "err", err)
		return nil, err
	}
	logger.Info("interpreted",
		"result", out.Response.Result,
		"stanford_nodes", out.ParseTree.Stats.NodeCount,
		"sensala_nodes", out.Term.Stats.NodeCount,
		"duration", duration)
	return out, nil
}

func (s *Session) fetchAndRender(ctx context.Context, gen uint64, reqID, discourse string) (*Outcome, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	resp, err := s.client.Interpret(callCtx, discourse, s.opts.Refresh)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeTransport, err, "interpret")
		}
		return nil, err
	}
	if resp == nil {
		return nil, errors.New(errors.ErrCodeContractViolation, "empty response")
	}

	popts := func(sf *surface.Surface) pipeline.Options {
		return pipeline.Options{
			Surface:  sf.Size(),
			RankDir:  s.opts.RankDir,
			Detailed: s.opts.Detailed,
			Logger:   s.logger,
		}
	}

	parse, err := s.runner.RenderParseTree(ctx, resp.ParseTree, popts(s.surfaces.Stanford()))
	if err != nil {
		return nil, err
	}
	term, err := s.runner.RenderTerm(ctx, resp.Term, popts(s.surfaces.Sensala()))
	if err != nil {
		return nil, err
	}

	return &Outcome{
		RequestID:  reqID,
		Generation: gen,
		Response:   resp,
		ParseTree:  parse,
		Term:       term,
	}, nil
}

// commit applies an outcome or failure if gen is still the latest
// generation. It reports false for a stale generation, in which case nothing
// changed.
func (s *Session) commit(gen uint64, out *Outcome, err error) bool {
	s.mu.Lock()
	if gen != s.state.Generation {
		s.mu.Unlock()
		return false
	}

	s.state.Loading = false
	s.state.UpdatedAt = time.Now()
	if err != nil {
		s.state.LastError = errors.UserMessage(err)
		s.state.LastErrorCode = string(errors.GetCode(err))
	} else {
		s.state.Result = out.Response.Result
		s.surfaces.Stanford().Render(gen, out.ParseTree.Graph, out.ParseTree.Layout, out.ParseTree.Fit)
		s.surfaces.Sensala().Render(gen, out.Term.Graph, out.Term.Layout, out.Term.Fit)
	}
	s.surfaces.Announce(surface.EventState, gen, s.state)
	s.mu.Unlock()
	return true
}

// IsStale reports whether err is [ErrStale].
func IsStale(err error) bool { return stderrors.Is(err, ErrStale) }
