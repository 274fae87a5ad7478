package cache

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/five82/backoffice/internal/metrics"
)

func TestMetrics_CountHitsMissesAndInvalidations(t *testing.T) {
	s := New()
	var calls atomic.Int32
	ctx := context.Background()

	hits := testutil.ToFloat64(metrics.CacheHits)
	misses := testutil.ToFloat64(metrics.CacheMisses)
	invalidations := testutil.ToFloat64(metrics.CacheInvalidations)

	for i := 0; i < 3; i++ {
		if _, err := s.Load(ctx, "/api/blogs", staticFetch(&calls, `[]`)); err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
	}
	if got := s.Invalidate("/api/blogs", "/api/unknown"); got != 1 {
		t.Fatalf("Invalidate = %d, want 1", got)
	}

	if d := testutil.ToFloat64(metrics.CacheMisses) - misses; d != 1 {
		t.Fatalf("misses delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(metrics.CacheHits) - hits; d != 2 {
		t.Fatalf("hits delta = %v, want 2", d)
	}
	if d := testutil.ToFloat64(metrics.CacheInvalidations) - invalidations; d != 1 {
		t.Fatalf("invalidations delta = %v, want 1", d)
	}
}
