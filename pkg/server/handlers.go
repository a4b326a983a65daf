package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/graph"
	"github.com/sensala/viewer/pkg/render/viewport"
	"github.com/sensala/viewer/pkg/session"
	"github.com/sensala/viewer/pkg/surface"
)

// maxRequestBody bounds POST bodies.
const maxRequestBody = 64 << 10

type interpretRequest struct {
	Discourse string `json:"discourse"`
	// Async returns 202 immediately; results arrive over /ws.
	Async bool `json:"async,omitempty"`
}

type interpretResponse struct {
	RequestID  string                 `json:"request_id,omitempty"`
	Generation uint64                 `json:"generation"`
	Result     string                 `json:"result,omitempty"`
	Graphs     map[string]graph.Graph `json:"graphs,omitempty"`
	State      session.State          `json:"state"`
}

type surfaceResponse struct {
	Name       string                `json:"name"`
	Generation uint64                `json:"generation"`
	Empty      bool                  `json:"empty"`
	Graph      *graph.Graph          `json:"graph,omitempty"`
	Fit        viewport.FitTransform `json:"fit"`
	Size       viewport.Surface      `json:"size"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if err := decodeInterpretRequest(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Async {
		gen, err := s.session.Submit(r.Context(), req.Discourse)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, interpretResponse{Generation: gen, State: s.session.State()})
		return
	}

	out, err := s.session.Interpret(r.Context(), req.Discourse)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, interpretResponse{
		RequestID:  out.RequestID,
		Generation: out.Generation,
		Result:     out.Response.Result,
		Graphs: map[string]graph.Graph{
			graph.SurfaceStanford: out.ParseTree.Graph,
			graph.SurfaceSensala:  out.Term.Graph,
		},
		State: s.session.State(),
	})
}

// decodeInterpretRequest accepts a JSON body or a form with a discourse field.
func decodeInterpretRequest(w http.ResponseWriter, r *http.Request, req *interpretRequest) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid form")
	}
	req.Discourse = r.FormValue("discourse")
	req.Async = r.FormValue("async") == "true"
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.State())
}

func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	sf, err := s.session.Surfaces().Get(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotResponse(sf))
}

func (s *Server) handleSurfaceSVG(w http.ResponseWriter, r *http.Request) {
	sf, err := s.session.Surfaces().Get(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap := sf.Snapshot()
	if snap.Empty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(snap.SVG)
}

func snapshotResponse(sf *surface.Surface) surfaceResponse {
	snap := sf.Snapshot()
	return surfaceResponse{
		Name:       snap.Name,
		Generation: snap.Generation,
		Empty:      snap.Empty(),
		Graph:      snap.Graph,
		Fit:        snap.Fit,
		Size:       sf.Size(),
	}
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDiscourse, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidSurface, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTransport, errors.ErrCodeContractViolation:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeStale:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
