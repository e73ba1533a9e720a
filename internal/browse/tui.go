package browse

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/careercompass/compass/internal/button"
	"github.com/careercompass/compass/internal/model"
)

// Lines per entry in the list pane (heading + subtitle + blank separator).
const entryHeight = 3

const refreshInterval = 100 * time.Millisecond

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	entryTitleStyle = lipgloss.NewStyle().
			Bold(true)

	entrySubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	savedBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	pendingBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	toastStyles = map[model.ToastLevel]lipgloss.Style{
		model.ToastSuccess: statusBarStyle.Foreground(lipgloss.Color("42")),
		model.ToastError:   statusBarStyle.Foreground(lipgloss.Color("196")),
		model.ToastWarning: statusBarStyle.Foreground(lipgloss.Color("214")),
		model.ToastInfo:    statusBarStyle,
	}
)

// Toaster is the source of toasts shown in the status bar.
type Toaster interface {
	Drain() []model.Toast
}

// clickDoneMsg is sent when a save or unsave request completes.
type clickDoneMsg struct {
	control string
	state   button.State
	err     error
}

// refreshMsg redraws the panes while a request is in flight.
type refreshMsg struct{}

// toastExpiredMsg clears the toast with the given sequence number.
type toastExpiredMsg struct {
	seq int
}

type browseModel struct {
	ctx      context.Context
	title    string
	entries  []Entry
	toasts   Toaster
	openFunc func(string)

	listViewport   viewport.Model
	detailViewport viewport.Model
	cursor         int
	width          int
	height         int
	ready          bool

	inFlight int
	toast    *model.Toast
	toastSeq int

	wantBack bool
}

func newBrowseModel(ctx context.Context, title string, entries []Entry, toasts Toaster) browseModel {
	return browseModel{
		ctx:      ctx,
		title:    title,
		entries:  entries,
		toasts:   toasts,
		openFunc: openURL,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case clickDoneMsg:
		m.inFlight = max(m.inFlight-1, 0)
		m.recalcContent()
		cmd := m.pullToasts()
		return m, cmd

	case refreshMsg:
		m.recalcContent()
		if m.inFlight > 0 {
			return m, refreshTick()
		}
		return m, nil

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m browseModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantBack = false
		return m, tea.Quit
	case "esc", "b":
		m.wantBack = true
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "s", " ":
		return m.clickSelected()
	case "o":
		if e, ok := m.selected(); ok && e.URL != "" {
			m.openFunc(e.URL)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m browseModel) clickSelected() (tea.Model, tea.Cmd) {
	e, ok := m.selected()
	if !ok {
		return m, nil
	}
	if state, _ := e.Button.State(); state.Pending() {
		return m, nil
	}
	m.inFlight++
	return m, tea.Batch(clickCmd(m.ctx, e.Button), refreshTick())
}

func clickCmd(ctx context.Context, b *button.Button) tea.Cmd {
	return func() tea.Msg {
		state, err := b.Click(ctx)
		return clickDoneMsg{control: b.Control(), state: state, err: err}
	}
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// pullToasts shows the newest queued toast and schedules its expiry.
func (m *browseModel) pullToasts() tea.Cmd {
	if m.toasts == nil {
		return nil
	}
	queued := m.toasts.Drain()
	if len(queued) == 0 {
		return nil
	}
	t := queued[len(queued)-1]
	m.toast = &t
	m.toastSeq++
	seq := m.toastSeq
	d := t.Duration
	if d <= 0 {
		d = model.DefaultToastDuration
	}
	return tea.Tick(d, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (m browseModel) selected() (Entry, bool) {
	if len(m.entries) == 0 {
		return Entry{}, false
	}
	return m.entries[m.cursor], true
}

func (m *browseModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.entries)-1, 0))
	m.recalcContent()
	m.detailViewport.SetYOffset(0)

	cursorTop := m.cursor * entryHeight
	cursorBottom := cursorTop + entryHeight - 1
	vp := &m.listViewport
	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m *browseModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	listWidth := max((m.width-5)*2/5, 20)
	detailWidth := max(m.width-5-listWidth, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(listWidth, paneHeight)
		m.detailViewport = viewport.New(detailWidth, paneHeight)
		m.ready = true
	} else {
		m.listViewport.Width = listWidth
		m.listViewport.Height = paneHeight
		m.detailViewport.Width = detailWidth
		m.detailViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	if !m.ready {
		return
	}
	m.listViewport.SetContent(renderEntries(m.entries, m.cursor))
	if e, ok := m.selected(); ok {
		m.detailViewport.SetContent(renderDetail(e, m.detailViewport.Width))
	} else {
		m.detailViewport.SetContent("")
	}
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	listWidth := m.listViewport.Width
	detailWidth := m.detailViewport.Width

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(listWidth+2).Render(headerStyle.Render(fmt.Sprintf("%s (%d)", m.title, len(m.entries)))),
		" ",
		lipgloss.NewStyle().Width(detailWidth+2).Render(headerStyle.Render("Details")),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		activeBorderStyle.Width(listWidth).Render(m.listViewport.View()),
		" ",
		inactiveBorderStyle.Width(detailWidth).Render(m.detailViewport.View()),
	)

	return headerRow + "\n" + panes + "\n" + m.statusBar()
}

func (m browseModel) statusBar() string {
	if m.toast != nil {
		style, ok := toastStyles[m.toast.Level]
		if !ok {
			style = statusBarStyle
		}
		return style.Width(m.width).Render(toastText(*m.toast))
	}
	return statusBarStyle.Width(m.width).Render(" ↑/↓ move  s save/unsave  o open  pgup/pgdn scroll  esc back  q quit")
}

func toastText(t model.Toast) string {
	if t.Title != "" {
		return " " + t.Title + ": " + t.Message
	}
	return " " + t.Message
}

func badge(b *button.Button) string {
	state, _ := b.State()
	switch {
	case state == button.StateSaved:
		return savedBadgeStyle.Render(" ★ " + state.Label())
	case state.Pending():
		return pendingBadgeStyle.Render(" " + state.Label())
	}
	return ""
}

func renderEntries(entries []Entry, cursor int) string {
	if len(entries) == 0 {
		return "  (nothing here yet)"
	}

	var b strings.Builder
	for i, e := range entries {
		titleSt, subtitleSt, prefix := entryTitleStyle, entrySubtitleStyle, "  "
		if i == cursor {
			titleSt, subtitleSt, prefix = selectedTitleStyle, selectedSubtitleStyle, "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(orUntitled(e.Heading)))
		b.WriteString(badge(e.Button))
		b.WriteByte('\n')
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(e.Subtitle))
		b.WriteByte('\n')

		if i < len(entries)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderDetail(e Entry, width int) string {
	var b strings.Builder
	b.WriteString(detailTitleStyle.Render(orUntitled(e.Heading)))
	b.WriteByte('\n')

	wrapWidth := max(width-16, 20)
	for _, f := range detailFields[e.Category] {
		v := e.Payload.String(f.Key)
		if v == "" {
			continue
		}
		lines := strings.Split(wordWrap(v, wrapWidth), "\n")
		b.WriteString(detailLabelStyle.Render(f.Label))
		b.WriteString(lines[0])
		b.WriteByte('\n')
		for _, l := range lines[1:] {
			b.WriteString(strings.Repeat(" ", 14) + l + "\n")
		}
	}
	if skills := payloadList(e.Payload, "skills"); len(skills) > 0 {
		b.WriteString(detailLabelStyle.Render("Skills"))
		b.WriteString(wordWrap(strings.Join(skills, ", "), wrapWidth))
		b.WriteByte('\n')
	}
	if e.URL != "" {
		b.WriteByte('\n')
		b.WriteString(detailLabelStyle.Render("Link"))
		b.WriteString(e.URL)
		b.WriteByte('\n')
	}

	state, _ := e.Button.State()
	b.WriteString("\n[ " + state.Label() + " ]\n")
	return b.String()
}

func payloadList(p model.Payload, key string) []string {
	raw, ok := p[key].([]any)
	if !ok {
		if s, ok := p[key].([]string); ok {
			return s
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func orUntitled(s string) string {
	if s == "" {
		return "(untitled)"
	}
	return s
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the full-screen browser over entries. s toggles the selected
// entry's save state; toasts raised by the click appear in the status bar.
// Returns back=true if the user pressed esc to return to the picker, false
// if they quit.
func Run(ctx context.Context, title string, entries []Entry, toasts Toaster) (back bool, err error) {
	p := tea.NewProgram(newBrowseModel(ctx, title, entries, toasts), tea.WithAltScreen(), tea.WithContext(ctx))
	result, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, err
	}
	return result.(browseModel).wantBack, nil
}
