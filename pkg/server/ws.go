package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/surface"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
	wsBacklog   = 32
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// wsInbound is a client message: {"type":"interpret","discourse":"..."} or
// {"type":"ping"}.
type wsInbound struct {
	Type      string `json:"type"`
	Discourse string `json:"discourse,omitempty"`
}

// wsOutbound is either a surface event, forwarded as is, or one of the
// control messages below.
type wsOutbound struct {
	Type       string `json:"type"`
	Generation uint64 `json:"generation,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
}

// handleWS streams surface and state events. On connect the client receives
// the current state and both surfaces so a reload restores the page.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		s.logger.Debug("ws set read deadline failed", "err", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writeCh := make(chan any, wsBacklog)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Subscribe before taking the snapshot so no event falls in between.
	events := s.session.Surfaces().Subscribe(ctx)
	for _, msg := range s.initialMessages() {
		pushWS(writeCh, msg)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				pushWS(writeCh, evt)
			}
		}
	}()

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			pushWS(writeCh, wsOutbound{Type: "pong"})
		case "interpret":
			gen, err := s.session.Submit(ctx, in.Discourse)
			if err != nil {
				pushWS(writeCh, wsOutbound{
					Type:    "error",
					Code:    string(errors.GetCode(err)),
					Message: errors.UserMessage(err),
				})
				continue
			}
			pushWS(writeCh, wsOutbound{Type: "accepted", Generation: gen})
		default:
			pushWS(writeCh, wsOutbound{
				Type:    "error",
				Code:    string(errors.ErrCodeInvalidInput),
				Message: "unsupported type: " + in.Type,
			})
		}
	}
}

// initialMessages describes the current session as events.
func (s *Server) initialMessages() []any {
	st := s.session.State()
	msgs := []any{surface.Event{Kind: surface.EventState, Generation: st.Generation, Data: st, At: st.UpdatedAt}}
	for _, sf := range s.session.Surfaces().All() {
		snap := sf.Snapshot()
		if snap.Empty() {
			msgs = append(msgs, surface.Event{Kind: surface.EventClear, Surface: snap.Name, Generation: snap.Generation, At: snap.UpdatedAt})
			continue
		}
		fit := snap.Fit
		msgs = append(msgs, surface.Event{
			Kind:       surface.EventRender,
			Surface:    snap.Name,
			Generation: snap.Generation,
			Fit:        &fit,
			Graph:      snap.Graph,
			SVG:        string(snap.SVG),
			At:         snap.UpdatedAt,
		})
	}
	return msgs
}

// pushWS queues a message, dropping the oldest one when the backlog is full.
func pushWS(writeCh chan any, out any) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
