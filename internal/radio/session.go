package radio

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/timmfy/ai-radio/internal/core"
)

const maxHistory = 50

// Snapshot is a consistent copy of session state for presentation.
type Snapshot struct {
	SessionID string              `json:"session_id"`
	DeviceID  string              `json:"device_id,omitempty"`
	Prompt    string              `json:"prompt,omitempty"`
	State     core.PlaybackState  `json:"state"`
	Backlog   core.Backlog        `json:"backlog"`
	History   []core.HistoryEntry `json:"history"`
	Pending   core.Descriptor     `json:"pending,omitempty"`
	Notice    string              `json:"notice,omitempty"`
}

// DeviceReady returns true once a device id is known.
func (s Snapshot) DeviceReady() bool {
	return s.DeviceID != ""
}

type intent struct {
	desc   core.Descriptor
	replay bool
}

// Session holds all mutable state of one listening session. Every field
// below mu is guarded by it; collaborators are never called with mu held.
type Session struct {
	id  uuid.UUID
	now func() time.Time

	mu         sync.Mutex
	deviceID   string
	lastPrompt string
	played     *PlayedSet
	backlog    []core.Descriptor
	state      core.PlaybackState
	lastWrite  time.Time
	inflight   map[core.Descriptor]struct{}
	history    []core.HistoryEntry
	pending    *intent
	notice     string

	backlogCh chan struct{}
	changeCh  chan struct{}
}

// NewSession creates an empty session. now defaults to time.Now.
func NewSession(now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		id:        uuid.New(),
		now:       now,
		played:    NewPlayedSet(),
		inflight:  make(map[core.Descriptor]struct{}),
		lastWrite: now(),
		backlogCh: make(chan struct{}, 1),
		changeCh:  make(chan struct{}, 1),
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// BacklogChanges fires after the backlog or the last prompt changes.
func (s *Session) BacklogChanges() <-chan struct{} {
	return s.backlogCh
}

// Changes fires after any state change. Signals coalesce.
func (s *Session) Changes() <-chan struct{} {
	return s.changeCh
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// DeviceID returns the connected device id, or "".
func (s *Session) DeviceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceID
}

// LastPrompt returns the most recently submitted prompt.
func (s *Session) LastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPrompt
}

// State returns a copy of the playback state.
func (s *Session) State() core.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Backlog returns a copy of the backlog.
func (s *Session) Backlog() []core.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Descriptor, len(s.backlog))
	copy(out, s.backlog)
	return out
}

// Played returns the played descriptors in play order.
func (s *Session) Played() []core.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.played.List()
}

// HasPlayed reports whether d is in the played set.
func (s *Session) HasPlayed(d core.Descriptor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.played.Has(d)
}

// Snapshot returns a consistent copy of the whole session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]core.Descriptor, len(s.backlog))
	copy(entries, s.backlog)
	played := make([]bool, len(entries))
	for i, d := range entries {
		played[i] = s.played.Has(d)
	}

	history := make([]core.HistoryEntry, len(s.history))
	copy(history, s.history)

	snap := Snapshot{
		SessionID: s.id.String(),
		DeviceID:  s.deviceID,
		Prompt:    s.lastPrompt,
		State:     s.state,
		Backlog:   core.Backlog{Entries: entries, Played: played},
		History:   history,
		Notice:    s.notice,
	}
	if s.pending != nil {
		snap.Pending = s.pending.desc
	}
	return snap
}

// setDevice records the device id. Only the first id is kept.
func (s *Session) setDevice(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deviceID != "" || id == "" {
		return false
	}
	s.deviceID = id
	signal(s.changeCh)
	return true
}

// filterNew applies FilterNew against the current played set.
func (s *Session) filterNew(ds []core.Descriptor) []core.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FilterNew(ds, s.played)
}

// claim reserves d for a play command and returns the target device id.
// It fails if d was played meanwhile (unless replay) or is already in flight.
func (s *Session) claim(d core.Descriptor, replay bool) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !replay && s.played.Has(d) {
		return "", false
	}
	if _, busy := s.inflight[d]; busy {
		return "", false
	}
	s.inflight[d] = struct{}{}
	return s.deviceID, true
}

func (s *Session) release(d core.Descriptor) {
	s.mu.Lock()
	delete(s.inflight, d)
	s.mu.Unlock()
}

// startTrack applies a successful play command as one transition.
func (s *Session) startTrack(d core.Descriptor, track *core.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.state = core.PlaybackState{
		Track:     track,
		IsPlaying: true,
		Position:  0,
		Duration:  track.Duration,
		Origin:    core.OriginPlay,
	}
	s.lastWrite = now
	s.played.Add(d)
	s.notice = ""

	s.history = append(s.history, core.HistoryEntry{Track: track, PlayedAt: now, Desc: d})
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
	signal(s.changeCh)
}

// replaceBacklog installs the result of a new prompt and returns the head.
func (s *Session) replaceBacklog(prompt string, ds []core.Descriptor) core.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.backlog = FilterNew(ds, s.played)
	s.lastPrompt = prompt
	s.pending = nil
	signal(s.backlogCh)
	signal(s.changeCh)

	if len(s.backlog) == 0 {
		return ""
	}
	return s.backlog[0]
}

// appendBacklog adds descriptors that are neither played nor already queued.
// Results for a prompt other than the current one are discarded.
func (s *Session) appendBacklog(prompt string, ds []core.Descriptor) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prompt != s.lastPrompt {
		return 0
	}

	queued := make(map[core.Descriptor]struct{}, len(s.backlog))
	for _, d := range s.backlog {
		queued[d] = struct{}{}
	}

	added := 0
	for _, d := range FilterNew(ds, s.played) {
		if _, ok := queued[d]; ok {
			continue
		}
		s.backlog = append(s.backlog, d)
		added++
	}

	if added > 0 {
		signal(s.backlogCh)
		signal(s.changeCh)
	}
	return added
}

// takeNextUnplayed removes and returns the first backlog entry not yet
// played, along with the index it was removed from.
func (s *Session) takeNextUnplayed() (core.Descriptor, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.backlog {
		if s.played.Has(d) {
			continue
		}
		s.backlog = append(s.backlog[:i:i], s.backlog[i+1:]...)
		signal(s.backlogCh)
		signal(s.changeCh)
		return d, i, true
	}
	return "", 0, false
}

// restoreBacklog puts d back at index i after a failed play. It does nothing
// if d was played or queued again meanwhile.
func (s *Session) restoreBacklog(i int, d core.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.played.Has(d) {
		return
	}
	for _, q := range s.backlog {
		if q == d {
			return
		}
	}
	if i > len(s.backlog) {
		i = len(s.backlog)
	}
	s.backlog = append(s.backlog[:i:i], append([]core.Descriptor{d}, s.backlog[i:]...)...)
	signal(s.backlogCh)
	signal(s.changeCh)
}

func (s *Session) head() core.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.backlog) == 0 {
		return ""
	}
	return s.backlog[0]
}

// needsReplenish reports whether the backlog is below the watermark while a
// prompt is active.
func (s *Session) needsReplenish(watermark int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPrompt != "" && len(s.backlog) < watermark
}

// advanceLocked moves the predicted position forward to now.
func (s *Session) advanceLocked(now time.Time) bool {
	elapsed := now.Sub(s.lastWrite)
	s.lastWrite = now
	if !s.state.IsPlaying || s.state.Track == nil || elapsed <= 0 {
		return false
	}
	pos := s.state.Position + elapsed
	if pos > s.state.Duration {
		pos = s.state.Duration
	}
	if pos == s.state.Position {
		return false
	}
	s.state.Position = pos
	s.state.Origin = core.OriginTick
	return true
}

// tick advances the local position prediction.
func (s *Session) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.advanceLocked(s.now()) {
		signal(s.changeCh)
	}
}

// applyDeviceState overwrites playback state with a device report and
// returns the state it replaced.
func (s *Session) applyDeviceState(ds *core.DeviceState) core.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	s.state.IsPlaying = !ds.Paused
	s.state.Position = ds.Position
	s.state.Duration = ds.Duration
	s.state.Origin = core.OriginDevice
	s.lastWrite = s.now()
	signal(s.changeCh)
	return prev
}

// toggleTarget returns what a pause/resume command needs.
func (s *Session) toggleTarget() (deviceID string, playing, hasTrack bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceID, s.state.IsPlaying, s.state.Track != nil
}

func (s *Session) setPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(s.now())
	s.state.IsPlaying = playing
	signal(s.changeCh)
}

// seekTo clamps target into the current track and applies it optimistically.
// It returns "" without touching state when no device is connected.
func (s *Session) seekTo(target time.Duration) (string, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deviceID == "" {
		return "", 0
	}
	if target < 0 {
		target = 0
	}
	if target > s.state.Duration {
		target = s.state.Duration
	}
	s.state.Position = target
	s.state.Origin = core.OriginSeek
	s.lastWrite = s.now()
	signal(s.changeCh)
	return s.deviceID, target
}

// setPending buffers a play intent until a device is ready. It stores
// nothing and returns true when a device became ready in the meantime, so
// the caller must play again itself.
func (s *Session) setPending(d core.Descriptor, replay bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deviceID != "" {
		return true
	}
	s.pending = &intent{desc: d, replay: replay}
	signal(s.changeCh)
	return false
}

func (s *Session) takePending() *intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.pending
	s.pending = nil
	return in
}

func (s *Session) setNotice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = msg
	signal(s.changeCh)
}
