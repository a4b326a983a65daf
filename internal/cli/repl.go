package cli

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sensala/viewer/pkg/session"
	"github.com/sensala/viewer/pkg/surface"
)

// replCommand creates the repl command: the viewer page, in the terminal.
func (c *CLI) replCommand() *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "repl [discourse...]",
		Short: "Interpret discourses interactively in the terminal",
		Long: `Interpret discourses interactively in the terminal.

Type a discourse and press enter. Both trees are shown side by side as
outlines; a new discourse replaces the previous one even while it is still
being interpreted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			a, err := c.newApp(ctx, cfg, detailed)
			if err != nil {
				return err
			}
			defer a.Close()

			m := NewReplModel(ctx, a.session)
			m.Input = strings.Join(args, " ")
			_, err = tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with their id and class")
	return cmd
}

// Repl styles
var (
	replPromptStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	replBoxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

const replPlaceholder = "Discourse to interpret"

// =============================================================================
// ReplModel - Interactive interpretation
// =============================================================================

// interpreter is the part of a session the repl drives.
type interpreter interface {
	Interpret(ctx context.Context, discourse string) (*session.Outcome, error)
	State() session.State
	Surfaces() *surface.Set
}

type interpretDoneMsg struct{ err error }

type tickMsg time.Time

// ReplModel is the bubbletea model for the interactive session.
type ReplModel struct {
	Input string
	State session.State
	Width int

	ctx     context.Context
	sess    interpreter
	frame   int
	ticking bool
}

// NewReplModel creates a repl model driving sess.
func NewReplModel(ctx context.Context, sess interpreter) ReplModel {
	return ReplModel{ctx: ctx, sess: sess, State: sess.State()}
}

func (m ReplModel) Init() tea.Cmd {
	return nil
}

func (m ReplModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyBackspace:
			if r := []rune(m.Input); len(r) > 0 {
				m.Input = string(r[:len(r)-1])
			}
		case tea.KeyCtrlU:
			m.Input = ""
		case tea.KeySpace:
			m.Input += " "
		case tea.KeyRunes:
			m.Input += string(msg.Runes)
		}
	case interpretDoneMsg:
		m.State = m.sess.State()
	case tickMsg:
		m.State = m.sess.State()
		if !m.State.Loading {
			m.ticking = false
			return m, nil
		}
		m.frame++
		return m, tick()
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	}
	return m, nil
}

// submit starts an interpretation of the input. Blank input is ignored so
// the current result stays on screen.
func (m ReplModel) submit() (tea.Model, tea.Cmd) {
	discourse := strings.TrimSpace(m.Input)
	if discourse == "" {
		return m, nil
	}
	m.State.Loading = true

	ctx, sess := m.ctx, m.sess
	run := func() tea.Msg {
		_, err := sess.Interpret(ctx, discourse)
		return interpretDoneMsg{err: err}
	}
	if m.ticking {
		return m, run
	}
	m.ticking = true
	return m, tea.Batch(run, tick())
}

func tick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m ReplModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Sensala"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("enter interpret  ctrl+u clear  esc quit"))
	b.WriteString("\n\n")

	b.WriteString(replPromptStyle.Render(iconInfo + " "))
	if m.Input == "" {
		b.WriteString(StyleDim.Render(replPlaceholder))
	} else {
		b.WriteString(m.Input)
	}
	b.WriteString("\n\n")

	switch {
	case m.State.Loading:
		b.WriteString(styleIconSpinner.Render(spinnerFrames[m.frame%len(spinnerFrames)]))
		b.WriteString(StyleDim.Render(" Interpreting..."))
	case m.State.LastError != "":
		b.WriteString(styleIconError.Render(iconError) + " " + StyleError.Render(m.State.LastError))
	case m.State.ShowResult():
		b.WriteString(StyleResult.Render(m.State.Result))
	}
	b.WriteString("\n\n")

	b.WriteString(m.surfaces())
	return b.String()
}

// surfaces draws both surfaces side by side as tree outlines.
func (m ReplModel) surfaces() string {
	box := replBoxStyle
	if m.Width > 0 {
		box = box.Width(m.Width/2 - 2)
	}

	all := m.sess.Surfaces().All()
	boxes := make([]string, 0, len(all))
	for _, sf := range all {
		snap := sf.Snapshot()
		boxes = append(boxes, box.Render(StyleTitle.Render(sf.Name())+"\n\n"+outline(snap.Graph)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}
