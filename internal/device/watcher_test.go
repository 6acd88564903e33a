package device

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/timmfy/ai-radio/internal/core"
)

func TestPickDevice(t *testing.T) {
	devices := []core.Device{
		{ID: "a", Name: "Laptop"},
		{ID: "b", Name: "Kitchen", IsActive: true},
	}

	tests := []struct {
		name    string
		devices []core.Device
		query   string
		wantID  string
	}{
		{"by name", devices, "laptop", "a"},
		{"missing name", devices, "Bedroom", ""},
		{"active", devices, "", "b"},
		{"first", []core.Device{{ID: "x"}, {ID: "y"}}, "", "x"},
		{"none", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickDevice(tt.devices, tt.query); got != tt.wantID {
				t.Errorf("pickDevice() = %q, want %q", got, tt.wantID)
			}
		})
	}
}

func TestChanged(t *testing.T) {
	playing := &core.DeviceState{TrackURI: "u1", Position: 10 * time.Second, Duration: 200 * time.Second}

	tests := []struct {
		name    string
		prev    *core.DeviceState
		curr    *core.DeviceState
		elapsed time.Duration
		want    bool
	}{
		{"both nil", nil, nil, time.Second, false},
		{"stopped", playing, nil, time.Second, true},
		{"started", nil, playing, time.Second, true},
		{"on schedule", playing, &core.DeviceState{TrackURI: "u1", Position: 11 * time.Second, Duration: 200 * time.Second}, time.Second, false},
		{"seeked", playing, &core.DeviceState{TrackURI: "u1", Position: 90 * time.Second, Duration: 200 * time.Second}, time.Second, true},
		{"paused", playing, &core.DeviceState{Paused: true, TrackURI: "u1", Position: 11 * time.Second, Duration: 200 * time.Second}, time.Second, true},
		{"new track", playing, &core.DeviceState{TrackURI: "u2", Position: 0, Duration: 180 * time.Second}, time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := changed(tt.prev, tt.curr, tt.elapsed); got != tt.want {
				t.Errorf("changed() = %v, want %v", got, tt.want)
			}
		})
	}
}

type fakeSource struct {
	mu      sync.Mutex
	devices []core.Device
	state   *core.DeviceState
	err     error
}

func (f *fakeSource) GetDevices(ctx context.Context) ([]core.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.devices, f.err
}

func (f *fakeSource) State(ctx context.Context) (*core.DeviceState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, nil
}

func (f *fakeSource) set(fn func(f *fakeSource)) {
	f.mu.Lock()
	fn(f)
	f.mu.Unlock()
}

func next(t *testing.T, ch <-chan core.DeviceEvent) core.DeviceEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for device event")
		return nil
	}
}

func TestWatcherEmitsReadyThenState(t *testing.T) {
	src := &fakeSource{err: errors.New("offline")}
	w := NewWatcher(src, "Kitchen", 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	src.set(func(f *fakeSource) {
		f.err = nil
		f.devices = []core.Device{{ID: "dev-k", Name: "Kitchen"}}
		f.state = &core.DeviceState{TrackURI: "u1", Duration: time.Minute}
	})

	ready, ok := next(t, w.Events()).(core.DeviceReady)
	if !ok || ready.DeviceID != "dev-k" {
		t.Fatalf("first event = %#v, want DeviceReady{dev-k}", ready)
	}

	sc, ok := next(t, w.Events()).(core.StateChanged)
	if !ok || sc.State == nil || sc.State.TrackURI != "u1" {
		t.Fatalf("second event = %#v, want state for u1", sc)
	}

	src.set(func(f *fakeSource) {
		f.state = &core.DeviceState{Paused: true, TrackURI: "u1", Duration: time.Minute}
	})
	sc, ok = next(t, w.Events()).(core.StateChanged)
	if !ok || sc.State == nil || !sc.State.Paused {
		t.Fatalf("third event = %#v, want paused state", sc)
	}

	w.Stop()
	if err := <-done; err != nil {
		t.Errorf("Start() error = %v", err)
	}
	for range w.Events() {
		// Events channel must be closed once Start returns.
	}
}
