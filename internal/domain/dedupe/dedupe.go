// Package dedupe detects match records that were already loaded.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"

	model "github.com/okian/quiniela/internal/domain/model"
)

// Deduper records fixture keys so overlapping season files load each match once.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Forget removes a key so the fixture can be loaded again.
	Forget(ctx context.Context, key string)

	Size() int64
}

// keySet implements Deduper with a map and, in bounded mode, a ring of
// insertion order used for eviction.
type keySet struct {
	mu      sync.Mutex
	seen    map[string]int // key -> ring slot, -1 when unbounded
	ring    []string
	next    int
	maxSize int
	size    atomic.Int64
}

// New creates an in-memory Deduper. Unbounded unless WithMaxSize is given.
func New(opts ...Option) Deduper {
	d := &keySet{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *keySet) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if d.maxSize <= 0 {
		d.seen[key] = -1
		d.size.Add(1)
		return false
	}

	// evict whatever occupies the next slot
	if old := d.ring[d.next]; old != "" {
		if slot, ok := d.seen[old]; ok && slot == d.next {
			delete(d.seen, old)
			d.size.Add(-1)
		}
	}
	d.ring[d.next] = key
	d.seen[key] = d.next
	d.next = (d.next + 1) % d.maxSize
	d.size.Add(1)
	return false
}

func (d *keySet) Forget(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)
	if slot >= 0 {
		d.ring[slot] = ""
	}
	d.size.Add(-1)
}

func (d *keySet) Size() int64 {
	return d.size.Load()
}

// Unique returns records in order with repeated fixtures removed, and how many
// were dropped.
func Unique(ctx context.Context, d Deduper, records []model.MatchRecord) ([]model.MatchRecord, int) {
	out := make([]model.MatchRecord, 0, len(records))
	dups := 0
	for _, m := range records {
		if d.SeenAndRecord(ctx, m.Key()) {
			dups++
			continue
		}
		out = append(out, m)
	}
	return out, dups
}
