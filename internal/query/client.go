package query

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/five82/backoffice/internal/api"
	"github.com/five82/backoffice/internal/cache"
)

// ListKey is the cache key of a collection.
func ListKey(path string) string {
	return strings.TrimRight(path, "/")
}

// ItemKey is the cache key of one item in a collection.
func ItemKey(path string, id int64) string {
	return ListKey(path) + "/" + strconv.FormatInt(id, 10)
}

// Mutation describes one write and the cache keys it makes stale.
type Mutation struct {
	Method string
	Path   string
	Body   any
	// Invalidates lists exact keys; InvalidatePrefixes lists key prefixes.
	Invalidates        []string
	InvalidatePrefixes []string
}

// Client reads through the cache and writes through the API.
type Client struct {
	api   api.Doer
	cache *cache.Store
	log   zerolog.Logger
}

// New builds a Client. A nil store gets a fresh one.
func New(doer api.Doer, store *cache.Store, log zerolog.Logger) *Client {
	if store == nil {
		store = cache.New()
	}
	return &Client{api: doer, cache: store, log: log.With().Str("component", "query").Logger()}
}

// Cache exposes the underlying store.
func (c *Client) Cache() *cache.Store { return c.cache }

// Read returns the raw JSON for key, fetching it with GET when the cache has
// no fresh entry.
func (c *Client) Read(ctx context.Context, key string) ([]byte, error) {
	return c.cache.Load(ctx, key, c.fetcher(key))
}

// Refresh refetches key regardless of freshness. A failure keeps the cached
// entry.
func (c *Client) Refresh(ctx context.Context, key string) ([]byte, error) {
	return c.cache.Refresh(ctx, key, c.fetcher(key))
}

func (c *Client) fetcher(key string) cache.Fetcher {
	return func(ctx context.Context) ([]byte, error) {
		var raw json.RawMessage
		if err := c.api.Do(ctx, http.MethodGet, key, nil, &raw); err != nil {
			return nil, err
		}
		return raw, nil
	}
}

// Peek decodes the cached value for key without fetching. It reports false
// when nothing is cached.
func (c *Client) Peek(key string, dest any) (stale bool, ok bool, err error) {
	e, found := c.cache.Get(key)
	if !found {
		return false, false, nil
	}
	if err := json.Unmarshal(e.Value, dest); err != nil {
		return e.Stale, true, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return e.Stale, true, nil
}

// Prime stores v under key as a fresh entry.
func (c *Client) Prime(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	c.cache.Put(key, data)
	return nil
}

// Forget drops key from the cache.
func (c *Client) Forget(key string) {
	c.cache.Remove(key)
}

// Invalidate marks keys stale without issuing a request.
func (c *Client) Invalidate(keys ...string) {
	c.cache.Invalidate(keys...)
}

// Mutate issues m. On success the declared keys are invalidated and the
// response, if any, is decoded into dest. On failure the cache is untouched.
func (c *Client) Mutate(ctx context.Context, m Mutation, dest any) error {
	var raw json.RawMessage
	if err := c.api.Do(ctx, m.Method, m.Path, m.Body, &raw); err != nil {
		c.log.Debug().Err(err).Str("method", m.Method).Str("path", m.Path).Msg("mutation failed")
		return err
	}

	n := c.cache.Invalidate(m.Invalidates...)
	for _, prefix := range m.InvalidatePrefixes {
		n += c.cache.InvalidatePrefix(prefix)
	}
	c.log.Debug().Str("method", m.Method).Str("path", m.Path).Int("invalidated", n).Msg("mutation applied")

	if dest == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s %s: %w", m.Method, m.Path, err)
	}
	return nil
}

// Fetch reads key through c and decodes it into T.
func Fetch[T any](ctx context.Context, c *Client, key string) (T, error) {
	var out T
	raw, err := c.Read(ctx, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}
