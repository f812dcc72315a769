// Package display is the Bubble Tea front end: a status bar showing the
// session state and a command prompt pinned to the bottom of the
// terminal, with everything else scrolling above them.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hammamikhairi/celestialwok/internal/domain"
)

const (
	prompt       = "wok> "
	windowTitle  = "Celestial Wok"
	defaultWidth = 80
)

// UI owns the terminal while Run is active. Print methods and Show may be
// called from other goroutines once WaitReady returns; before Run starts
// and after it ends they write to stdout directly.
type UI struct {
	program *tea.Program
	running atomic.Bool

	lines   chan string
	ready   chan struct{}
	stopped chan struct{}

	// ImagePath maps an image prompt to a file the user can open. Optional.
	ImagePath func(prompt string) string

	last domain.Snapshot
	seen bool
}

func NewUI() *UI {
	return &UI{
		lines:   make(chan string, 16),
		ready:   make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// InputChan yields each non-blank line the user submits.
func (u *UI) InputChan() <-chan string { return u.lines }

// WaitReady blocks until the event loop is up.
func (u *UI) WaitReady() { <-u.ready }

// QuitChan is closed once Run has returned.
func (u *UI) QuitChan() <-chan struct{} { return u.stopped }

func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// Run blocks until the user quits or Quit is called.
func (u *UI) Run() error {
	u.program = tea.NewProgram(newModel(u.lines, u.ready, u.PrintUserInput))
	u.running.Store(true)
	_, err := u.program.Run()
	u.running.Store(false)
	close(u.stopped)
	return err
}

// ── Output ───────────────────────────────────────────────────────

func (u *UI) Println(a ...any) {
	if u.program != nil && u.running.Load() {
		u.program.Println(a...)
		return
	}
	fmt.Println(a...)
}

func (u *UI) Printf(format string, a ...any) {
	u.Println(strings.TrimSuffix(fmt.Sprintf(format, a...), "\n"))
}

// PrintChat prints what the assistant says.
func (u *UI) PrintChat(text string) { u.Println(indented(voiceStyle, text)) }

// PrintHint prints a dimmed aside.
func (u *UI) PrintHint(text string) { u.Println(indented(dimStyle, text)) }

// PrintUrgent prints an error.
func (u *UI) PrintUrgent(text string) { u.Println(indented(alertStyle, text)) }

// PrintUserInput keeps a copy of a submitted command in the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render(strings.TrimSpace(prompt)) + " " + echoStyle.Render(text))
}

// Show prints what changed since the previous snapshot and updates the
// status bar. Snapshots must come from one goroutine.
func (u *UI) Show(snap domain.Snapshot) {
	var prev *domain.Snapshot
	if u.seen {
		prev = &u.last
	}
	for _, line := range Describe(prev, snap, u.ImagePath) {
		u.Println(line)
	}
	u.last, u.seen = snap, true

	if u.program != nil && u.running.Load() {
		u.program.Send(snapshotMsg(snap))
	}
}

// ── Model ────────────────────────────────────────────────────────

type snapshotMsg domain.Snapshot

type model struct {
	input    textinput.Model
	spinner  spinner.Model
	progress progress.Model

	lines chan<- string
	ready chan struct{}
	echo  func(string)

	snap  *domain.Snapshot
	width int
}

func newModel(lines chan<- string, ready chan struct{}, echo func(string)) model {
	in := textinput.New()
	// The prompt stays unstyled text; ANSI in the prompt throws off the
	// cursor offset on long input.
	in.Prompt = prompt
	in.PromptStyle = promptStyle
	in.TextStyle = echoStyle
	in.Cursor.Style = cursorStyle
	in.CharLimit = 300
	in.Width = defaultWidth - len(prompt)
	in.Focus()

	return model{
		input:    in,
		spinner:  spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(stateStyle)),
		progress: progress.New(progress.WithGradient("#ef4444", "#fbbf24"), progress.WithWidth(24), progress.WithoutPercentage()),
		lines:    lines,
		ready:    ready,
		echo:     echo,
	}
}

func (m model) Init() tea.Cmd {
	ready := m.ready
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		tea.SetWindowTitle(windowTitle),
		func() tea.Msg { close(ready); return nil },
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.onKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-len(prompt), 10)
		return m, nil

	case snapshotMsg:
		snap := domain.Snapshot(msg)
		m.snap = &snap
		return m, tea.SetWindowTitle(titleFor(snap))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// onKey handles submit and interrupt. Other keys go to the text input.
func (m *model) onKey(k tea.KeyMsg) (tea.Cmd, bool) {
	switch k.Type {
	case tea.KeyCtrlC:
		// Same as typing exit.
		m.lines <- "exit"
		return tea.Quit, true

	case tea.KeyEnter:
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if line == "" {
			return nil, true
		}
		m.lines <- line
		echo := m.echo
		// Println must not run inside Update.
		return func() tea.Msg { echo(line); return nil }, true
	}
	return nil, false
}

func (m model) View() string {
	if m.snap == nil {
		return "\n" + m.input.View()
	}
	return m.statusBar() + "\n\n" + m.input.View()
}

func (m model) statusBar() string {
	snap := *m.snap

	state := stateStyle.Render(StateLabel(snap.State))
	if busy(snap.State) {
		state = m.spinner.View() + " " + state
	}
	cells := []string{state}
	if snap.RecipeName != "" {
		cells = append(cells, labelStyle.Render(snap.RecipeName))
	}
	if snap.State == domain.StateCooking && snap.StepCount > 0 {
		counter := labelStyle.Render(fmt.Sprintf("%d/%d", snap.StepIndex+1, snap.StepCount))
		cells = append(cells, m.progress.ViewAs(Progress(snap))+" "+counter)
	}

	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	return barStyle.Width(width).Render(" " + strings.Join(cells, sepStyle.Render("  │  ")) + " ")
}

// busy reports whether the session is waiting on a backend.
func busy(s domain.SessionState) bool {
	return s == domain.StateLoadingDetails || s == domain.StateGrading
}

func titleFor(snap domain.Snapshot) string {
	if snap.RecipeName == "" {
		return windowTitle
	}
	return windowTitle + " | " + snap.RecipeName + " | " + StateLabel(snap.State)
}
