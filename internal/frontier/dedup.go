package frontier

import "sync"

// Dedup is the set of article ids already persisted for one category
// partition. It is primed once from the sink before the walk starts and read
// during link discovery; the core never adds freshly-ingested ids back, so
// the sink's unique index remains the backstop for ids that race past it.
type Dedup struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewDedup takes ownership of the id set loaded from the sink. A nil map is
// treated as empty.
func NewDedup(ids map[string]struct{}) *Dedup {
	if ids == nil {
		ids = make(map[string]struct{})
	}
	return &Dedup{ids: ids}
}

func (d *Dedup) Has(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.ids[id]
	return ok
}

func (d *Dedup) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.ids)
}
