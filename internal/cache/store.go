package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/five82/backoffice/internal/metrics"
)

// Fetcher retrieves the raw JSON for one key.
type Fetcher func(ctx context.Context) ([]byte, error)

// Entry is a copy of one cached response.
type Entry struct {
	Key       string
	Value     []byte
	Stale     bool
	FetchedAt time.Time
}

// Stats summarizes cache activity since the store was created.
type Stats struct {
	Entries             int
	Hits                int64
	Misses              int64
	Joined              int64
	Invalidations       int64
	LastError           error
	LastErrorAt         time.Time
	ConsecutiveFailures int
}

// IsOffline reports whether the last few loads all failed.
func (s Stats) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store is an in-memory response cache keyed by resource path.
//
// Reads of a fresh entry never touch the network. At most one fetch per key
// is in flight; concurrent loads of the same key share it. A failed fetch
// leaves the existing entry as it was. Invalidation marks entries stale; stale entries remain readable with
// Get until a later load replaces them.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	// gens counts invalidations per key so a fetch that started before an
	// invalidation cannot store its result as fresh.
	gens  map[string]uint64
	group singleflight.Group
	stats Stats
	now   func() time.Time
}

type entry struct {
	value     []byte
	stale     bool
	fetchedAt time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		entries: make(map[string]*entry),
		gens:    make(map[string]uint64),
		now:     time.Now,
	}
}

// Get returns a copy of the entry for key, fresh or stale.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	return e.export(key), true
}

// Put stores value as a fresh entry, replacing whatever was there.
func (s *Store) Put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[key]++
	s.entries[key] = &entry{value: clone(value), fetchedAt: s.now()}
}

// Load returns the fresh entry for key or fetches it. Loads of the same key
// that overlap share one fetch. The fetch runs detached from ctx so a caller
// that gives up does not cancel it for the others, and its result still
// lands in the store.
func (s *Store) Load(ctx context.Context, key string, fetch Fetcher) ([]byte, error) {
	if v, ok := s.fresh(key); ok {
		return v, nil
	}
	return s.load(ctx, key, fetch)
}

// Refresh fetches key even when a fresh entry exists. On failure the
// existing entry is kept.
func (s *Store) Refresh(ctx context.Context, key string, fetch Fetcher) ([]byte, error) {
	return s.load(ctx, key, fetch)
}

// fetchResult is what one shared fetch hands to every caller waiting on it.
type fetchResult struct {
	value []byte
	gen   uint64
}

// load keeps at most one fetch per key in flight. A caller that saw an
// invalidation the running fetch predates waits for it, then fetches again.
func (s *Store) load(ctx context.Context, key string, fetch Fetcher) ([]byte, error) {
	want := s.generation(key)
	detached := context.WithoutCancel(ctx)

	for {
		ch := s.group.DoChan(key, func() (any, error) {
			gen := s.generation(key)
			value, err := fetch(detached)
			s.record(key, value, gen, err)
			if err != nil {
				return nil, err
			}
			return fetchResult{value: value, gen: gen}, nil
		})

		var res singleflight.Result
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("load %s: %w", key, ctx.Err())
		case res = <-ch:
		}
		if res.Shared {
			s.mu.Lock()
			s.stats.Joined++
			s.mu.Unlock()
			metrics.CacheJoined.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}

		r := res.Val.(fetchResult)
		if r.gen >= want {
			return clone(r.value), nil
		}
		if v, ok := s.freshValue(key); ok {
			return v, nil
		}
	}
}

// freshValue returns the entry for key when it is fresh, without counting a
// hit or miss.
func (s *Store) freshValue(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || e.stale {
		return nil, false
	}
	return clone(e.value), true
}

func (s *Store) fresh(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if ok && !e.stale {
		s.stats.Hits++
		metrics.CacheHits.Inc()
		return clone(e.value), true
	}
	s.stats.Misses++
	metrics.CacheMisses.Inc()
	return nil, false
}

func (s *Store) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen, ok := s.gens[key]
	if !ok {
		s.gens[key] = 0
	}
	return gen
}

func (s *Store) record(key string, value []byte, gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.stats.LastError = err
		s.stats.LastErrorAt = s.now()
		s.stats.ConsecutiveFailures++
		return
	}
	s.stats.LastError = nil
	s.stats.ConsecutiveFailures = 0

	current, exists := s.entries[key]
	if s.gens[key] != gen {
		// Invalidated or overwritten while the fetch was running.
		if exists && !current.stale {
			return
		}
		s.entries[key] = &entry{value: clone(value), stale: true, fetchedAt: s.now()}
		return
	}
	s.entries[key] = &entry{value: clone(value), fetchedAt: s.now()}
}

// Invalidate marks the given keys stale and returns how many cached entries
// were affected. Keys without an entry are still tracked so an in-flight
// fetch for them is not stored as fresh.
func (s *Store) Invalidate(keys ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, key := range keys {
		if s.invalidateLocked(key) {
			n++
		}
	}
	return n
}

// InvalidatePrefix marks every key starting with prefix stale.
func (s *Store) InvalidatePrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			seen[key] = struct{}{}
		}
	}
	for key := range s.gens {
		if strings.HasPrefix(key, prefix) {
			seen[key] = struct{}{}
		}
	}
	n := 0
	for key := range seen {
		if s.invalidateLocked(key) {
			n++
		}
	}
	return n
}

func (s *Store) invalidateLocked(key string) bool {
	s.gens[key]++
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	e.stale = true
	s.stats.Invalidations++
	metrics.CacheInvalidations.Inc()
	return true
}

// Remove drops key entirely.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[key]++
	delete(s.entries, key)
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if _, tracked := s.gens[key]; !tracked {
			s.gens[key] = 0
		}
	}
	for key := range s.gens {
		s.gens[key]++
	}
	s.entries = make(map[string]*entry)
}

// Keys returns the cached keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Stats returns a copy of the current counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.stats
	st.Entries = len(s.entries)
	if s.stats.LastError != nil {
		st.LastError = fmt.Errorf("%w", s.stats.LastError)
	}
	return st
}

func (e *entry) export(key string) Entry {
	return Entry{Key: key, Value: clone(e.value), Stale: e.stale, FetchedAt: e.fetchedAt}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
