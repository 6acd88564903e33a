package radio

import (
	"sync"

	"github.com/mitchellh/hashstructure/v2"
)

// Broadcaster fans snapshots out to subscribers. Identical consecutive
// snapshots are published once. Slow subscribers only see the latest one.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan Snapshot
	next int
	last uint64
	seen bool
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Snapshot)}
}

// Subscribe returns a channel of snapshots and a function that ends the
// subscription and closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Snapshot, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Snapshot, 1)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Publish sends s to every subscriber unless it equals the previous
// snapshot. It reports whether s was sent.
func (b *Broadcaster) Publish(s Snapshot) bool {
	hash, err := hashstructure.Hash(s, hashstructure.FormatV2, nil)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		if b.seen && hash == b.last {
			return false
		}
		b.last, b.seen = hash, true
	}

	for _, ch := range b.subs {
		select {
		case ch <- s:
		default:
			// Replace the stale snapshot.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
	return true
}

// Close ends every subscription.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
