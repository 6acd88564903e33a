package radio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterSkipsIdenticalSnapshots(t *testing.T) {
	b := NewBroadcaster()
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	snap := Snapshot{SessionID: "s", Prompt: "p"}
	assert.True(t, b.Publish(snap))
	assert.False(t, b.Publish(snap))

	got := <-ch
	assert.Equal(t, "p", got.Prompt)

	snap.Prompt = "q"
	assert.True(t, b.Publish(snap))
	assert.Equal(t, "q", (<-ch).Prompt)
}

func TestBroadcasterKeepsLatestForSlowSubscriber(t *testing.T) {
	b := NewBroadcaster()
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	b.Publish(Snapshot{Prompt: "1"})
	b.Publish(Snapshot{Prompt: "2"})
	b.Publish(Snapshot{Prompt: "3"})

	assert.Equal(t, "3", (<-ch).Prompt)
}

func TestBroadcasterUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	ch, unsubscribe := b.Subscribe()
	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	require.False(t, ok)

	// Publishing after unsubscribe must not panic.
	b.Publish(Snapshot{Prompt: "x"})
	b.Close()
}
