// Package cache keeps raw JSON responses keyed by resource path, tracks
// their freshness and deduplicates concurrent loads of the same key.
//
// # Overview
//
// Store maps a key such as "/api/products" or "/api/products/3" to the last
// response body fetched for it. An entry is either fresh or stale. Load
// returns a fresh entry without calling the Fetcher; anything else runs the
// Fetcher and stores its result as fresh. Refresh always fetches.
//
// # Fetch Deduplication
//
// Loads of one key share a single in-flight fetch through singleflight. The
// fetch runs on a context detached from the caller, so a caller that gives
// up does not cancel it for the others and its result still lands in the
// store. Joined loads are counted in Stats.Joined.
//
// # Invalidation
//
// Invalidate and InvalidatePrefix mark entries stale. Stale entries stay
// readable through Get so a list can keep showing rows while it reloads.
// Each key carries a generation counter that Put, invalidation, Remove and
// Clear advance:
//
//	Load(k)  ─ fetch starts at gen 3 ─────────────── result stored stale
//	                  Invalidate(k) → gen 4
//	Load(k)  ─ waits for the running fetch ── fetches again at gen 4 ── fresh
//
// A fetch that started before the invalidation can only store its result as
// stale, and can never overwrite a newer Put. A caller that arrived after
// the invalidation waits for the running fetch and then starts one more, so
// there is never more than one fetch per key at a time.
//
// # Failures
//
// A failed fetch leaves the existing entry untouched. Stats records the last
// error and the run of consecutive failures; IsOffline reports two or more in
// a row, which the UI shows as an offline badge.
//
// # Metrics
//
// Hits, misses, joined loads and invalidations are also exported through the
// metrics package.
package cache
