package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ErrCancelled is returned when the user interrupts a loader or picker.
var ErrCancelled = errors.New("cancelled")

type loadDoneMsg struct {
	err error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	label  string
	loadFn func(ctx context.Context) error
	ctx    context.Context
	cancel context.CancelFunc
	frame  int
	err    error
	done   bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doLoad(), m.tick())
}

func (m loaderModel) doLoad() tea.Cmd {
	loadFn, ctx := m.loadFn, m.ctx
	return func() tea.Msg {
		return loadDoneMsg{err: loadFn(ctx)}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDoneMsg:
		if !m.done {
			m.err = msg.err
			m.done = true
		}
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	return fmt.Sprintf("%s %s...\n", spinner, m.label)
}

// RunLoader shows a spinner labelled label while loadFn runs. It renders
// inline (no alt screen). ctrl+c cancels the context passed to loadFn.
func RunLoader(ctx context.Context, label string, loadFn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := loaderModel{
		label:  label,
		loadFn: loadFn,
		ctx:    ctx,
		cancel: cancel,
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return err
	}
	return result.(loaderModel).err
}
