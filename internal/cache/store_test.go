package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func staticFetch(counter *atomic.Int32, body string) Fetcher {
	return func(context.Context) ([]byte, error) {
		counter.Add(1)
		return []byte(body), nil
	}
}

func TestLoad_ServesFreshEntryWithoutFetching(t *testing.T) {
	s := New()
	var calls atomic.Int32
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := s.Load(ctx, "/api/products", staticFetch(&calls, `[1,2,3]`))
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if string(got) != `[1,2,3]` {
			t.Fatalf("Load = %s", got)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls.Load())
	}
	st := s.Stats()
	if st.Hits != 2 || st.Misses != 1 || st.Entries != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestLoad_ConcurrentReadersShareOneFetch(t *testing.T) {
	s := New()
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte(`["a"]`), nil
	}

	const readers = 5
	var wg sync.WaitGroup
	results := make([]string, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := s.Load(context.Background(), "/api/blogs", fetch)
			if err != nil {
				t.Errorf("Load returned error: %v", err)
				return
			}
			results[i] = string(got)
		}(i)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Stats().Misses < readers && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls.Load())
	}
	for i, r := range results {
		if r != `["a"]` {
			t.Fatalf("reader %d got %q", i, r)
		}
	}
}

func TestRefresh_FailureLeavesEntryUntouched(t *testing.T) {
	s := New()
	s.Put("/api/gallery", []byte(`[{"id":5}]`))
	boom := errors.New("connection refused")

	_, err := s.Refresh(context.Background(), "/api/gallery", func(context.Context) ([]byte, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Refresh error = %v, want %v", err, boom)
	}

	e, ok := s.Get("/api/gallery")
	if !ok || string(e.Value) != `[{"id":5}]` || e.Stale {
		t.Fatalf("entry after failure = %+v, %v", e, ok)
	}
	st := s.Stats()
	if st.ConsecutiveFailures != 1 || st.LastError == nil {
		t.Fatalf("stats = %+v", st)
	}
}

func TestInvalidate_MarksStaleAndNextLoadRefetches(t *testing.T) {
	s := New()
	var calls atomic.Int32
	ctx := context.Background()

	if _, err := s.Load(ctx, "/api/products", staticFetch(&calls, `[1]`)); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if n := s.Invalidate("/api/products", "/api/unknown"); n != 1 {
		t.Fatalf("Invalidate affected %d entries, want 1", n)
	}
	e, ok := s.Get("/api/products")
	if !ok || !e.Stale {
		t.Fatalf("entry after invalidate = %+v, want stale", e)
	}

	got, err := s.Load(ctx, "/api/products", staticFetch(&calls, `[1,2]`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if string(got) != `[1,2]` || calls.Load() != 2 {
		t.Fatalf("Load = %s after %d calls", got, calls.Load())
	}
	if e, _ := s.Get("/api/products"); e.Stale {
		t.Fatal("refetched entry should be fresh")
	}
}

func TestInvalidate_DuringFetchStoresResultAsStale(t *testing.T) {
	s := New()
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = s.Load(context.Background(), "/api/portfolio", func(context.Context) ([]byte, error) {
			close(started)
			<-release
			return []byte(`["old"]`), nil
		})
	}()

	<-started
	s.Invalidate("/api/portfolio")
	close(release)
	<-done

	e, ok := s.Get("/api/portfolio")
	if !ok || !e.Stale {
		t.Fatalf("entry = %+v, want stale result of pre-invalidation fetch", e)
	}
}

func TestInvalidate_DuringFetchKeepsOneFetchInFlight(t *testing.T) {
	s := New()
	var inFlight, peak, calls atomic.Int32
	started := make(chan struct{}, 2)
	release := make(chan struct{})

	fetch := func(context.Context) ([]byte, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		call := calls.Add(1)
		started <- struct{}{}
		if call == 1 {
			<-release
			return []byte(`["old"]`), nil
		}
		return []byte(`["new"]`), nil
	}

	var first, second []byte
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, _ = s.Load(context.Background(), "/api/products", fetch)
	}()
	<-started

	s.Invalidate("/api/products")

	wg.Add(1)
	go func() {
		defer wg.Done()
		second, _ = s.Load(context.Background(), "/api/products", fetch)
	}()

	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("fetches started while the first was running = %d, want 1", got)
	}
	close(release)
	wg.Wait()

	if got := peak.Load(); got != 1 {
		t.Fatalf("peak concurrent fetches = %d, want 1", got)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("fetches = %d, want 2 (the running one, then one refetch)", got)
	}
	if string(first) != `["old"]` {
		t.Fatalf("first Load = %s, want the result of its own fetch", first)
	}
	if string(second) != `["new"]` {
		t.Fatalf("second Load = %s, want the post-invalidation refetch", second)
	}
	if e, _ := s.Get("/api/products"); e.Stale || string(e.Value) != `["new"]` {
		t.Fatalf("entry = %+v, want fresh refetched value", e)
	}
}

func TestPut_NotOverwrittenByOlderFetch(t *testing.T) {
	s := New()
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = s.Load(context.Background(), "/api/me", func(context.Context) ([]byte, error) {
			close(started)
			<-release
			return []byte(`{"id":0}`), nil
		})
	}()

	<-started
	s.Put("/api/me", []byte(`{"id":1}`))
	close(release)
	<-done

	e, _ := s.Get("/api/me")
	if string(e.Value) != `{"id":1}` || e.Stale {
		t.Fatalf("entry = %+v, want seeded value kept", e)
	}
}

func TestLoad_CallerCancelDoesNotDropResult(t *testing.T) {
	s := New()
	release := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Load(ctx, "/api/customers", func(fctx context.Context) ([]byte, error) {
			<-release
			if fctx.Err() != nil {
				return nil, fctx.Err()
			}
			return []byte(`[]`), nil
		})
		errCh <- err
	}()

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("Load error = %v, want context.Canceled", err)
	}
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e, ok := s.Get("/api/customers"); ok {
			if string(e.Value) != `[]` {
				t.Fatalf("entry = %+v", e)
			}
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("late result never reached the store")
}

func TestValuesAreCopied(t *testing.T) {
	s := New()
	src := []byte(`{"a":1}`)
	s.Put("k", src)
	src[0] = 'X'

	e, _ := s.Get("k")
	e.Value[1] = 'Y'

	again, _ := s.Get("k")
	if string(again.Value) != `{"a":1}` {
		t.Fatalf("stored value aliased: %s", again.Value)
	}
}

func TestInvalidatePrefixAndRemove(t *testing.T) {
	s := New()
	s.Put("/api/blogs", []byte(`[]`))
	s.Put("/api/blogs/1", []byte(`{}`))
	s.Put("/api/products", []byte(`[]`))

	if n := s.InvalidatePrefix("/api/blogs"); n != 2 {
		t.Fatalf("InvalidatePrefix affected %d, want 2", n)
	}
	if e, _ := s.Get("/api/products"); e.Stale {
		t.Fatal("unrelated key invalidated")
	}

	s.Remove("/api/blogs/1")
	keys := s.Keys()
	if len(keys) != 2 || keys[0] != "/api/blogs" || keys[1] != "/api/products" {
		t.Fatalf("Keys = %v", keys)
	}

	s.Clear()
	if len(s.Keys()) != 0 {
		t.Fatal("Clear left entries behind")
	}
}

func TestStats_IsOffline(t *testing.T) {
	if (Stats{ConsecutiveFailures: 1}).IsOffline() {
		t.Fatal("one failure should not be offline")
	}
	if !(Stats{ConsecutiveFailures: 2}).IsOffline() {
		t.Fatal("two failures should be offline")
	}
}
