package devserver

import (
	"sort"
	"sync"
	"time"

	"github.com/five82/backoffice/internal/content"
)

// record is a content variant the store can assign identity to.
type record interface {
	content.Entity
	Created() time.Time
	Stamp(id int64, created, updated time.Time)
}

// collection is the in-memory table of one variant. Ids are sequential and
// never reused.
type collection[T record] struct {
	mu    sync.RWMutex
	items map[int64]T
	next  int64
	fresh func() T
}

func newCollection[T record](fresh func() T) *collection[T] {
	return &collection[T]{items: make(map[int64]T), next: 1, fresh: fresh}
}

func (c *collection[T]) list() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.items))
	for _, v := range c.items {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID() < out[j].EntityID() })
	return out
}

func (c *collection[T]) get(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[id]
	return v, ok
}

func (c *collection[T]) create(v T, now time.Time) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	v.Stamp(c.next, now, now)
	if v.PhotoRefs() == nil {
		v.SetPhotoRefs(nil)
	}
	c.items[c.next] = v
	c.next++
	return v
}

// replace swaps the stored value, keeping id and creation time. Stored
// values are never mutated in place, so readers may encode them unlocked.
// Last write wins.
func (c *collection[T]) replace(id int64, v T, now time.Time) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	old, ok := c.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	v.Stamp(id, old.Created(), now)
	c.items[id] = v
	return v, true
}

func (c *collection[T]) remove(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	return true
}

func (c *collection[T]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
