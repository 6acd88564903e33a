// Package tui is the interactive terminal front end for a radio station.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/timmfy/ai-radio/internal/core"
	apperr "github.com/timmfy/ai-radio/internal/errors"
	"github.com/timmfy/ai-radio/internal/radio"
	"github.com/timmfy/ai-radio/internal/tui/components"
	"github.com/timmfy/ai-radio/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelBacklog
	PanelHistory
	panelCount
)

const (
	seekStep     = 10 * time.Second
	errorTimeout = 5 * time.Second
)

// Station is the engine the UI drives. *radio.Radio implements it.
type Station interface {
	Snapshot() radio.Snapshot
	Subscribe() (<-chan radio.Snapshot, func())
	SubmitPrompt(ctx context.Context, prompt string) error
	Skip(ctx context.Context) error
	Previous(ctx context.Context) error
	PauseOrResume(ctx context.Context) error
	SeekBy(ctx context.Context, delta time.Duration) error
}

// Options configures the UI.
type Options struct {
	// Prompt, if set, is submitted on start.
	Prompt string
	Theme  string
}

// Model is the main TUI model
type Model struct {
	ctx       context.Context
	station   Station
	snapshots <-chan radio.Snapshot
	initial   string

	width        int
	height       int
	focusedPanel Panel

	snap radio.Snapshot

	// Components
	nowPlaying  *components.NowPlaying
	backlogView *components.Backlog
	historyView *components.History

	input   textinput.Model
	editing bool

	showHelp bool

	// Error handling
	lastError   error
	errorExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model reading snapshots from snapshots.
func NewModel(ctx context.Context, station Station, snapshots <-chan radio.Snapshot, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Describe a mood, a moment, a genre..."
	ti.Prompt = "📻 "
	ti.CharLimit = 200
	ti.Width = 60

	snap := station.Snapshot()
	m := Model{
		ctx:          ctx,
		station:      station,
		snapshots:    snapshots,
		initial:      strings.TrimSpace(opts.Prompt),
		focusedPanel: PanelNowPlaying,
		snap:         snap,
		nowPlaying:   components.NewNowPlaying(),
		backlogView:  components.NewBacklog(),
		historyView:  components.NewHistory(),
		input:        ti,
	}
	if snap.Prompt == "" && m.initial == "" {
		m.editing = true
		m.input.Focus()
	}
	return m
}

// Messages
type snapshotMsg radio.Snapshot
type streamClosedMsg struct{}
type errMsg struct{ err error }

func waitForSnapshot(ch <-chan radio.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// command runs fn against the station off the UI goroutine.
func (m Model) command(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(m.ctx); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m Model) submit(prompt string) tea.Cmd {
	return m.command(func(ctx context.Context) error {
		return m.station.SubmitPrompt(ctx, prompt)
	})
}

func (m Model) seek(delta time.Duration) tea.Cmd {
	return m.command(func(ctx context.Context) error {
		return m.station.SeekBy(ctx, delta)
	})
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForSnapshot(m.snapshots)}
	if m.editing {
		cmds = append(cmds, textinput.Blink)
	}
	if m.initial != "" {
		cmds = append(cmds, m.submit(m.initial))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 8
		return m, nil

	case snapshotMsg:
		if time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		m.snap = radio.Snapshot(msg)
		return m, waitForSnapshot(m.snapshots)

	case streamClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case errMsg:
		m.lastError = msg.err
		m.errorExpiry = time.Now().Add(errorTimeout)
		return m, nil
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	if m.editing {
		return m.handleInputKeyPress(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "/", "i", "enter":
		m.editing = true
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil
	}

	// Playback controls
	switch msg.String() {
	case " ":
		return m, m.command(m.station.PauseOrResume)
	case "n":
		return m, m.command(m.station.Skip)
	case "p":
		return m, m.command(m.station.Previous)
	case "left", "h":
		return m, m.seek(-seekStep)
	case "right", "l":
		return m, m.seek(seekStep)
	}

	// Panel-specific keys
	switch m.focusedPanel {
	case PanelBacklog:
		switch msg.String() {
		case "j", "down":
			m.backlogView.ScrollDown()
		case "k", "up":
			m.backlogView.ScrollUp()
		}
	case PanelHistory:
		switch msg.String() {
		case "j", "down":
			m.historyView.ScrollDown()
		case "k", "up":
			m.historyView.ScrollUp()
		}
	}

	return m, nil
}

func (m Model) handleInputKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil

	case "enter":
		prompt := strings.TrimSpace(m.input.Value())
		if prompt == "" {
			return m, nil
		}
		m.editing = false
		m.input.Blur()
		m.input.SetValue("")
		return m, m.submit(prompt)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// currentDescriptor returns the descriptor of the track playing now.
func (m Model) currentDescriptor() core.Descriptor {
	if n := len(m.snap.History); n > 0 && m.snap.State.HasTrack() {
		return m.snap.History[n-1].Desc
	}
	return ""
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Prompt bar on top; left column: Now Playing over Up Next; right
	// column: History.
	promptBar := m.renderPrompt()
	bodyHeight := m.height - lipgloss.Height(promptBar) - 1

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := bodyHeight * 45 / 100
	bottomHeight := bodyHeight - topHeight - 2

	nowPlaying := m.nowPlaying.Render(m.snap, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	backlog := m.backlogView.Render(m.snap.Backlog, m.currentDescriptor(), leftWidth-2, bottomHeight-2, m.focusedPanel == PanelBacklog)
	history := m.historyView.Render(m.snap.History, rightWidth-2, bodyHeight-4, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, backlog)
	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, history)

	return lipgloss.JoinVertical(lipgloss.Left, promptBar, main, m.renderStatusBar())
}

func (m Model) renderPrompt() string {
	var content string
	switch {
	case m.editing:
		content = m.input.View()
	case m.snap.Prompt != "":
		content = styles.Title.Render("📻 "+m.snap.Prompt) + styles.Dim.Render("   (/ for a new station)")
	default:
		content = styles.Dim.Render("Press / to start a station")
	}
	return styles.Panel(m.editing).Width(m.width - 2).Render(content)
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  /:prompt  space:play/pause  n:next  p:previous  ←/→:seek  tab:switch panel")
	if m.editing {
		status = styles.Dim.Render("enter:start station  esc:cancel")
	}

	switch {
	case m.lastError != nil:
		status = styles.Notice.Render("Error: " + apperr.Format(m.lastError))
	case m.snap.Notice != "":
		status = styles.Paused.Render(m.snap.Notice)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "airadio - Keyboard Shortcuts"
	divider := strings.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  /, i, Enter  New prompt
  Tab          Next panel
  Shift+Tab    Previous panel

  Prompt
  ──────
  Enter        Start station
  Esc          Cancel

  Playback
  ────────
  Space        Play/Pause
  n            Next song
  p            First song again
  ←/h          Back 10s
  →/l          Forward 10s

  Up Next / History
  ─────────────────
  j/↓          Scroll down
  k/↑          Scroll up

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

// Run starts the UI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, station Station, opts Options) error {
	styles.SetTheme(opts.Theme)

	snapshots, unsubscribe := station.Subscribe()
	defer unsubscribe()

	model := NewModel(ctx, station, snapshots, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
