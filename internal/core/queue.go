package core

// Backlog is a read-only snapshot of the session's pending descriptors.
type Backlog struct {
	Entries []Descriptor `json:"entries"`
	Played  []bool       `json:"played"`
}

// Head returns the first entry, or "" if the backlog is empty.
func (b *Backlog) Head() Descriptor {
	if b == nil || len(b.Entries) == 0 {
		return ""
	}
	return b.Entries[0]
}

// Upcoming returns the entries that have not been played yet.
func (b *Backlog) Upcoming() []Descriptor {
	if b == nil {
		return nil
	}
	var out []Descriptor
	for i, d := range b.Entries {
		if i < len(b.Played) && b.Played[i] {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Len returns the total number of entries.
func (b *Backlog) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Entries)
}

// IsEmpty returns true if the backlog has no entries.
func (b *Backlog) IsEmpty() bool {
	return b.Len() == 0
}
