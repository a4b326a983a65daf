package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sensala/viewer/pkg/errors"
	"github.com/sensala/viewer/pkg/integrations/sensala"
	"github.com/sensala/viewer/pkg/pipeline"
	"github.com/sensala/viewer/pkg/render/viewport"
	"github.com/sensala/viewer/pkg/session"
	"github.com/sensala/viewer/pkg/surface"
)

func newReplSession(t *testing.T) *session.Session {
	t.Helper()
	client := sensala.NewClient(nil, newUpstream(t), time.Hour)
	runner := pipeline.NewRunner(boxEngine{}, nil, nil, nil)
	surfaces := surface.NewSet(viewport.Surface{Width: 600, Height: 600, PaddingX: 40})
	sess := session.New(client, runner, surfaces, session.Options{Timeout: 5 * time.Second}, nil)
	t.Cleanup(sess.Wait)
	return sess
}

// send feeds msg to m and then every message its commands produce, until
// no commands remain. Quit ends the loop.
func send(t *testing.T, m ReplModel, msg tea.Msg) ReplModel {
	t.Helper()
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		model, cmd := m.Update(next)
		m = model.(ReplModel)
		if cmd == nil {
			continue
		}
		switch res := cmd().(type) {
		case tea.BatchMsg:
			for _, c := range res {
				if c != nil {
					queue = append(queue, c())
				}
			}
		case tea.QuitMsg:
			return m
		default:
			queue = append(queue, res)
		}
	}
	return m
}

func typeText(t *testing.T, m ReplModel, s string) ReplModel {
	t.Helper()
	for i, word := range strings.Split(s, " ") {
		if i > 0 {
			m = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		}
		m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(word)})
	}
	return m
}

func TestReplInterpret(t *testing.T) {
	m := NewReplModel(context.Background(), newReplSession(t))

	if !strings.Contains(m.View(), replPlaceholder) {
		t.Error("empty input should show the placeholder")
	}

	m = typeText(t, m, "Socrates walks.")
	if m.Input != "Socrates walks." {
		t.Fatalf("Input = %q", m.Input)
	}

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	busy := model.(ReplModel)
	if cmd == nil || !busy.State.Loading {
		t.Fatal("enter should start an interpretation")
	}
	if !strings.Contains(busy.View(), "Interpreting") {
		t.Error("view should show the busy indicator while loading")
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.State.Loading {
		t.Error("interpretation should have settled")
	}
	if m.State.Result != "walk(socrates)" {
		t.Errorf("Result = %q", m.State.Result)
	}

	view := m.View()
	for _, want := range []string{"walk(socrates)", "stanford", "sensala", "Socrates"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestReplFailureKeepsResult(t *testing.T) {
	m := NewReplModel(context.Background(), newReplSession(t))
	m = typeText(t, m, "Socrates walks.")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m = typeText(t, m, "down")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.State.LastErrorCode != string(errors.ErrCodeTransport) {
		t.Errorf("LastErrorCode = %q", m.State.LastErrorCode)
	}
	if m.State.Result != "walk(socrates)" {
		t.Errorf("failure should keep the previous result, got %q", m.State.Result)
	}
	if strings.Contains(m.View(), "walk(socrates)") {
		t.Error("the error line replaces the result while it is set")
	}
}

func TestReplEditing(t *testing.T) {
	m := NewReplModel(context.Background(), newReplSession(t))

	m = typeText(t, m, "walks")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Input != "walk" {
		t.Errorf("Input after backspace = %q", m.Input)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || model.(ReplModel).State.Loading {
		t.Error("blank input should not start an interpretation")
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc}); cmd == nil {
		t.Error("esc should quit")
	} else if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should return tea.Quit")
	}
}
