package core

import "time"

// Track is a catalog entry resolved from a descriptor. It is produced on
// demand for each play request and never cached.
type Track struct {
	ID       string        `json:"id"`
	URI      string        `json:"uri"`
	Title    string        `json:"title"`
	Artist   string        `json:"artist"`
	Artists  []string      `json:"artists"`
	Album    string        `json:"album"`
	Duration time.Duration `json:"duration"`
}

// Descriptor identifies a song as "<title> <artist>". Two descriptors are the
// same song only if they are byte-identical.
type Descriptor string

// NewDescriptor joins a title and artist into a descriptor.
func NewDescriptor(title, artist string) Descriptor {
	return Descriptor(title + " " + artist)
}

// IsEmpty returns true for the zero descriptor.
func (d Descriptor) IsEmpty() bool {
	return d == ""
}

func (d Descriptor) String() string {
	return string(d)
}

// Song is a recommendation as returned by the recommendation service.
type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// Descriptor returns the song's descriptor.
func (s Song) Descriptor() Descriptor {
	return NewDescriptor(s.Title, s.Artist)
}

// Descriptors maps songs to descriptors, preserving order.
func Descriptors(songs []Song) []Descriptor {
	out := make([]Descriptor, 0, len(songs))
	for _, s := range songs {
		out = append(out, s.Descriptor())
	}
	return out
}
