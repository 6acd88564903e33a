package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/timmfy/ai-radio/internal/core"
	"github.com/timmfy/ai-radio/internal/radio"
)

type fakeStation struct {
	mu      sync.Mutex
	snap    radio.Snapshot
	prompts []string
	calls   []string
	seeks   []time.Duration
	err     error
}

func (s *fakeStation) Snapshot() radio.Snapshot { return s.snap }

func (s *fakeStation) Subscribe() (<-chan radio.Snapshot, func()) {
	ch := make(chan radio.Snapshot)
	return ch, func() {}
}

func (s *fakeStation) record(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
	return s.err
}

func (s *fakeStation) SubmitPrompt(ctx context.Context, prompt string) error {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	return s.record("submit")
}

func (s *fakeStation) Skip(ctx context.Context) error          { return s.record("skip") }
func (s *fakeStation) Previous(ctx context.Context) error      { return s.record("previous") }
func (s *fakeStation) PauseOrResume(ctx context.Context) error { return s.record("toggle") }

func (s *fakeStation) SeekBy(ctx context.Context, delta time.Duration) error {
	s.mu.Lock()
	s.seeks = append(s.seeks, delta)
	s.mu.Unlock()
	return s.record("seek")
}

func newTestModel(st *fakeStation, opts Options) Model {
	ch, _ := st.Subscribe()
	return NewModel(context.Background(), st, ch, opts)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPromptEntrySubmits(t *testing.T) {
	st := &fakeStation{}
	m := newTestModel(st, Options{})
	if !m.editing {
		t.Fatal("model without a station should start in prompt entry")
	}

	m, _ = press(t, m, runes("rainy day"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing {
		t.Error("enter should leave prompt entry")
	}
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	if msg := cmd(); msg != nil {
		t.Fatalf("submit returned %v", msg)
	}
	if len(st.prompts) != 1 || st.prompts[0] != "rainy day" {
		t.Errorf("prompts = %v", st.prompts)
	}
}

func TestBlankPromptIgnored(t *testing.T) {
	st := &fakeStation{}
	m := newTestModel(st, Options{})
	m, cmd := press(t, m, runes("   "), tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("blank prompt should not submit")
	}
	if !m.editing {
		t.Error("blank prompt should stay in prompt entry")
	}
}

func TestPlaybackKeys(t *testing.T) {
	tests := []struct {
		key  tea.KeyMsg
		want string
	}{
		{runes(" "), "toggle"},
		{runes("n"), "skip"},
		{runes("p"), "previous"},
		{tea.KeyMsg{Type: tea.KeyRight}, "seek"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			st := &fakeStation{snap: radio.Snapshot{Prompt: "jazz"}}
			m := newTestModel(st, Options{})
			if m.editing {
				t.Fatal("model with a station should not start in prompt entry")
			}
			_, cmd := press(t, m, tt.key)
			if cmd == nil {
				t.Fatal("no command")
			}
			cmd()
			if len(st.calls) != 1 || st.calls[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", st.calls, tt.want)
			}
		})
	}
}

func TestSeekDirection(t *testing.T) {
	st := &fakeStation{snap: radio.Snapshot{Prompt: "jazz"}}
	m := newTestModel(st, Options{})

	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	cmd()
	_, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	cmd()

	if len(st.seeks) != 2 || st.seeks[0] != -seekStep || st.seeks[1] != seekStep {
		t.Errorf("seeks = %v", st.seeks)
	}
}

func TestCommandErrorShown(t *testing.T) {
	st := &fakeStation{snap: radio.Snapshot{Prompt: "jazz"}, err: errors.New("device offline")}
	m := newTestModel(st, Options{})

	_, cmd := press(t, m, runes("n"))
	msg := cmd()
	next, _ := m.Update(msg)
	m = next.(Model)
	if m.lastError == nil {
		t.Fatal("error not recorded")
	}

	next, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	if !strings.Contains(m.View(), "device offline") {
		t.Error("view does not show the error")
	}
}

func TestInitialPromptSubmittedOnInit(t *testing.T) {
	st := &fakeStation{}
	m := newTestModel(st, Options{Prompt: "  synthwave "})
	if m.editing {
		t.Error("initial prompt should skip prompt entry")
	}
	if m.Init() == nil {
		t.Fatal("Init returned no command")
	}
	if msg := m.submit(m.initial)(); msg != nil {
		t.Fatalf("submit returned %v", msg)
	}
	if len(st.prompts) != 1 || st.prompts[0] != "synthwave" {
		t.Errorf("prompts = %v", st.prompts)
	}
}

func TestViewRendersSnapshot(t *testing.T) {
	snap := radio.Snapshot{
		DeviceID: "dev-1",
		Prompt:   "late night jazz",
		State: core.PlaybackState{
			Track:     &core.Track{Title: "So What", Artist: "Miles Davis", Album: "Kind of Blue"},
			IsPlaying: true,
			Position:  65 * time.Second,
			Duration:  9 * time.Minute,
		},
		Backlog: core.Backlog{
			Entries: []core.Descriptor{"So What Miles Davis", "Naima John Coltrane"},
			Played:  []bool{true, false},
		},
		History: []core.HistoryEntry{{
			Track:    &core.Track{Title: "So What", Artist: "Miles Davis"},
			PlayedAt: time.Now(),
			Desc:     "So What Miles Davis",
		}},
	}
	st := &fakeStation{snap: snap}
	m := newTestModel(st, Options{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	m = next.(Model)

	view := m.View()
	for _, want := range []string{"So What", "Miles Davis", "1:05", "9:00", "Naima John Coltrane", "late night jazz", "dev-1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
