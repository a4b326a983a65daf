package surface

import (
	"context"
	"sync"
	"time"

	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/graph"
	"github.com/sensala/viewer/pkg/render/viewport"
)

// subscriberBuffer is the per-subscriber event backlog. When it is full the
// oldest event is dropped.
const subscriberBuffer = 16

// Set holds the two surfaces of the viewer and fans their events out to
// subscribers.
type Set struct {
	stanford *Surface
	sensala  *Surface
	hub      *hub
}

// NewSet creates the "stanford" and "sensala" surfaces with the same size.
func NewSet(size viewport.Surface) *Set {
	h := &hub{subs: make(map[int]chan Event)}
	return &Set{
		stanford: newSurface(graph.SurfaceStanford, size, h),
		sensala:  newSurface(graph.SurfaceSensala, size, h),
		hub:      h,
	}
}

// Stanford returns the parse tree surface.
func (s *Set) Stanford() *Surface { return s.stanford }

// Sensala returns the term tree surface.
func (s *Set) Sensala() *Surface { return s.sensala }

// All returns both surfaces in display order.
func (s *Set) All() []*Surface { return []*Surface{s.stanford, s.sensala} }

// Get returns the surface with the given name.
func (s *Set) Get(name string) (*Surface, error) {
	switch name {
	case graph.SurfaceStanford:
		return s.stanford, nil
	case graph.SurfaceSensala:
		return s.sensala, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidSurface, "unknown surface %q", name)
	}
}

// ClearAll clears both surfaces.
func (s *Set) ClearAll(generation uint64) {
	for _, sf := range s.All() {
		sf.Clear(generation)
	}
}

// Announce sends a non-surface event, such as [EventState], to subscribers.
func (s *Set) Announce(kind string, generation uint64, data any) {
	s.hub.publish(Event{Kind: kind, Generation: generation, Data: data, At: time.Now()})
}

// Subscribe streams events from both surfaces until ctx is done, then closes
// the channel. Slow subscribers lose their oldest events instead of blocking
// renders.
func (s *Set) Subscribe(ctx context.Context) <-chan Event {
	out := make(chan Event, subscriberBuffer)
	id := s.hub.add(out)

	go func() {
		<-ctx.Done()
		s.hub.remove(id)
	}()
	return out
}

type hub struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func (h *hub) add(ch chan Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.subs[id] = ch
	return id
}

func (h *hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *hub) publish(evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		pushEvent(ch, evt)
	}
}

// pushEvent sends without blocking, evicting the oldest queued event once.
func pushEvent(out chan Event, evt Event) {
	select {
	case out <- evt:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	select {
	case out <- evt:
	default:
	}
}
