package artifact

import (
	"fmt"
	"sync"
	"time"
)

// Namer produces "<prefix>-<epoch-millis>.<ext>" file names. Within one
// Namer the millisecond component is strictly increasing, so two captures
// in the same millisecond still get distinct names.
type Namer struct {
	Prefix    string
	Extension string
	// Now defaults to time.Now.
	Now func() time.Time

	mu   sync.Mutex
	last int64
}

// NewNamer returns a Namer for the given prefix and extension.
func NewNamer(prefix, ext string) *Namer {
	return &Namer{Prefix: prefix, Extension: ext}
}

// Next returns the next unique name and the timestamp it encodes.
func (n *Namer) Next() (string, time.Time) {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	t := now()

	n.mu.Lock()
	ms := t.UnixMilli()
	if ms <= n.last {
		ms = n.last + 1
	}
	n.last = ms
	n.mu.Unlock()

	return fmt.Sprintf("%s-%d.%s", n.Prefix, ms, n.Extension), time.UnixMilli(ms)
}
