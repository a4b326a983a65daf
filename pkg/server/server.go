// Package server serves the viewer page and its JSON API.
//
// Routes:
//
//	GET  /                         the page (input, busy indicator, two surfaces)
//	POST /api/interpret            interpret a discourse
//	GET  /api/state                current session state
//	GET  /api/surfaces/{name}      surface snapshot (graph, fit, generation)
//	GET  /api/surfaces/{name}/svg  fitted SVG of one surface
//	GET  /ws                       surface and state event stream
//	GET  /healthz                  liveness
//	GET  /metrics                  Prometheus metrics, when a gatherer is set
//
// All routes share one [session.Session]: the viewer is a single-user
// application and a new interpretation from any client supersedes the
// previous one.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sensala/viewer/pkg/session"
)

// Timeouts for the HTTP server.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Options configures a [Server].
type Options struct {
	Logger *log.Logger

	// Gatherer serves /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	// Endpoint is shown on the page footer.
	Endpoint string
}

// Server is the viewer HTTP front end.
type Server struct {
	session  *session.Session
	logger   *log.Logger
	gatherer prometheus.Gatherer
	endpoint string
	router   chi.Router
}

// New creates a server around sess.
func New(sess *session.Session, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{
		session:  sess,
		logger:   opts.Logger,
		gatherer: opts.Gatherer,
		endpoint: opts.Endpoint,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handlePage)
	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Post("/interpret", s.handleInterpret)
		r.Get("/state", s.handleState)
		r.Get("/surfaces/{name}", s.handleSurface)
		r.Get("/surfaces/{name}/svg", s.handleSurfaceSVG)
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully and waits for in-flight interpretations.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is [Server.ListenAndServe] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.session.Wait()
	s.logger.Info("server stopped")
	return err
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
