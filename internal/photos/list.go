package photos

import (
	"errors"
	"fmt"
	"sync"
)

// ErrIndexOutOfRange is returned by RemoveAt for a position past the end.
var ErrIndexOutOfRange = errors.New("photo index out of range")

// List is the ordered photo list of one form. Every change goes through its
// mutex; order is insertion order and duplicates are allowed.
type List struct {
	mu    sync.Mutex
	items []string
}

// NewList returns a List holding a copy of refs.
func NewList(refs []string) *List {
	return &List{items: append([]string(nil), refs...)}
}

// Append adds ref at the end and returns its index.
func (l *List) Append(ref string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, ref)
	return len(l.items) - 1
}

// RemoveAt deletes the entry at i. Later entries shift down by one.
func (l *List) RemoveAt(i int) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.items) {
		return "", fmt.Errorf("remove photo %d of %d: %w", i, len(l.items), ErrIndexOutOfRange)
	}
	ref := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	return ref, nil
}

// Items returns a copy of the list.
func (l *List) Items() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.items...)
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}
