package graph

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// Layout - Positioned Graph
// =============================================================================

// Layout is a graph positioned by the layout engine.
//
// Coordinates are top-down: (0, 0) is the top-left corner of the bounding
// box and Y grows downwards, matching SVG.
type Layout struct {
	Width     float64             `json:"width"`
	Height    float64             `json:"height"`
	Positions map[string]Position `json:"positions,omitempty"`

	// DOT is the request the layout was computed from.
	DOT string `json:"dot,omitempty"`
	// SVG is the engine's rendering of the layout, unscaled.
	SVG []byte `json:"svg,omitempty"`
}

// Position is a node center in layout coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Degenerate reports whether the bounding box has no area.
func (l *Layout) Degenerate() bool { return l.Width <= 0 || l.Height <= 0 }

// MarshalLayout serializes a layout to JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.Marshal(l)
}

// UnmarshalLayout deserializes JSON bytes into a layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.DOT == "" {
		return Layout{}, fmt.Errorf("layout must contain DOT string")
	}
	return l, nil
}
