package radio

import "github.com/timmfy/ai-radio/internal/core"

// PlayedSet records every descriptor handed to the device during a session.
// It only grows. It has no lock of its own; the owning Session guards it.
type PlayedSet struct {
	seen  map[core.Descriptor]struct{}
	order []core.Descriptor
}

// NewPlayedSet returns an empty set.
func NewPlayedSet() *PlayedSet {
	return &PlayedSet{seen: make(map[core.Descriptor]struct{})}
}

// Has reports whether d has been played.
func (p *PlayedSet) Has(d core.Descriptor) bool {
	_, ok := p.seen[d]
	return ok
}

// Add marks d as played. Adding twice is a no-op.
func (p *PlayedSet) Add(d core.Descriptor) {
	if p.Has(d) {
		return
	}
	p.seen[d] = struct{}{}
	p.order = append(p.order, d)
}

// Len returns the number of played descriptors.
func (p *PlayedSet) Len() int {
	return len(p.order)
}

// List returns played descriptors in the order they were first played.
func (p *PlayedSet) List() []core.Descriptor {
	out := make([]core.Descriptor, len(p.order))
	copy(out, p.order)
	return out
}

// FilterNew returns ds without descriptors in played, preserving order.
// Repeats within ds are dropped after their first occurrence.
func FilterNew(ds []core.Descriptor, played *PlayedSet) []core.Descriptor {
	out := make([]core.Descriptor, 0, len(ds))
	seen := make(map[core.Descriptor]struct{}, len(ds))
	for _, d := range ds {
		if d.IsEmpty() || played.Has(d) {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
