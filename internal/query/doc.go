// Package query combines the API client with the response cache: reads go
// through the cache, mutations invalidate a declared set of keys on success.
//
// # Overview
//
// Client owns a cache.Store and an api.Doer. Read returns the cached body
// for a key or fetches it with a GET of the same path. Fetch decodes that
// body into a typed value:
//
//	products, err := query.Fetch[[]content.Product](ctx, qc, query.ListKey(content.PathProducts))
//
// # Keys
//
// A key is the request path. ListKey trims a trailing slash from a
// collection path and ItemKey appends an id, so "/api/products/" and
// "/api/products" share one entry.
//
// # Mutations
//
// Mutate sends one write described by a Mutation. Only when the server
// accepts it are the listed Invalidates keys and InvalidatePrefixes marked
// stale; a rejected write leaves every entry as it was. Views that show an
// invalidated key refetch it on their next read.
//
// # Priming and Forgetting
//
// Prime stores a value the caller already holds, such as the user returned
// by a login. Forget drops a key outright. Peek decodes whatever is cached,
// fresh or stale, without touching the network.
package query
