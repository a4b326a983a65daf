package surface

import (
	"sync"
	"time"

	"github.com/sensala/viewer/pkg/graph"
	"github.com/sensala/viewer/pkg/render/viewport"
)

// Event kinds.
const (
	EventClear  = "clear"
	EventRender = "render"

	// EventState carries session state (loading, result, error) in Data.
	// Its Surface is empty.
	EventState = "state"
)

// Event is one change to a surface, as seen by subscribers.
type Event struct {
	Kind       string                 `json:"type"`
	Surface    string                 `json:"surface"`
	Generation uint64                 `json:"generation"`
	Fit        *viewport.FitTransform `json:"fit,omitempty"`
	Graph      *graph.Graph           `json:"graph,omitempty"`
	SVG        string                 `json:"svg,omitempty"`
	Data       any                    `json:"data,omitempty"`
	At         time.Time              `json:"at"`
}

// Snapshot is the current content of a surface. A cleared surface has a nil
// Graph and an empty SVG.
type Snapshot struct {
	Name       string                `json:"name"`
	Generation uint64                `json:"generation"`
	Graph      *graph.Graph          `json:"graph,omitempty"`
	Layout     *graph.Layout         `json:"-"`
	Fit        viewport.FitTransform `json:"fit"`
	// SVG is the fitted, surface-sized rendering.
	SVG       []byte    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Empty reports whether the surface currently shows nothing.
func (s Snapshot) Empty() bool { return s.Graph == nil }

// Surface is one named drawing region. Each render fully replaces the previous
// content; nothing is diffed.
type Surface struct {
	name string
	size viewport.Surface
	hub  *hub

	mu    sync.RWMutex
	state Snapshot
}

func newSurface(name string, size viewport.Surface, h *hub) *Surface {
	return &Surface{
		name:  name,
		size:  size,
		hub:   h,
		state: Snapshot{Name: name, Fit: viewport.Identity()},
	}
}

// Name returns the surface name.
func (s *Surface) Name() string { return s.name }

// Size returns the surface dimensions and padding.
func (s *Surface) Size() viewport.Surface { return s.size }

// Clear removes the current graph.
func (s *Surface) Clear(generation uint64) {
	now := time.Now()
	s.mu.Lock()
	s.state = Snapshot{Name: s.name, Generation: generation, Fit: viewport.Identity(), UpdatedAt: now}
	s.mu.Unlock()

	s.hub.publish(Event{Kind: EventClear, Surface: s.name, Generation: generation, At: now})
}

// Render replaces the surface content with a laid-out graph under fit.
func (s *Surface) Render(generation uint64, g graph.Graph, l graph.Layout, fit viewport.FitTransform) {
	svg := viewport.Apply(l.SVG, fit, s.size)
	now := time.Now()

	s.mu.Lock()
	s.state = Snapshot{
		Name:       s.name,
		Generation: generation,
		Graph:      &g,
		Layout:     &l,
		Fit:        fit,
		SVG:        svg,
		UpdatedAt:  now,
	}
	s.mu.Unlock()

	s.hub.publish(Event{
		Kind:       EventRender,
		Surface:    s.name,
		Generation: generation,
		Fit:        &fit,
		Graph:      &g,
		SVG:        string(svg),
		At:         now,
	})
}

// Snapshot returns the current content.
func (s *Surface) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
