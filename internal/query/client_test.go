package query

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/five82/backoffice/internal/api"
)

type fakeDoer struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]string
	errs      map[string]error
}

func newFakeDoer() *fakeDoer {
	return &fakeDoer{responses: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeDoer) Do(_ context.Context, method, path string, _ any, dest any) error {
	f.mu.Lock()
	key := method + " " + path
	f.calls = append(f.calls, key)
	body, err := f.responses[key], f.errs[key]
	f.mu.Unlock()
	if err != nil {
		return err
	}
	if dest == nil || body == "" {
		return nil
	}
	return json.Unmarshal([]byte(body), dest)
}

func (f *fakeDoer) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

func TestKeys(t *testing.T) {
	if got := ListKey("/api/products/"); got != "/api/products" {
		t.Fatalf("ListKey = %q", got)
	}
	if got := ItemKey("/api/products", 42); got != "/api/products/42" {
		t.Fatalf("ItemKey = %q", got)
	}
}

func TestFetch_ReadsThroughCache(t *testing.T) {
	doer := newFakeDoer()
	doer.responses["GET /api/products"] = `[{"id":1},{"id":2}]`
	c := New(doer, nil, zerolog.Nop())
	ctx := context.Background()

	type item struct {
		ID int64 `json:"id"`
	}
	for i := 0; i < 2; i++ {
		items, err := Fetch[[]item](ctx, c, "/api/products")
		if err != nil {
			t.Fatalf("Fetch returned error: %v", err)
		}
		if len(items) != 2 || items[1].ID != 2 {
			t.Fatalf("items = %#v", items)
		}
	}
	if n := doer.count("GET /api/products"); n != 1 {
		t.Fatalf("GET count = %d, want 1", n)
	}
}

func TestMutate_InvalidatesDeclaredKeysOnSuccess(t *testing.T) {
	doer := newFakeDoer()
	doer.responses["GET /api/products"] = `[{"id":1}]`
	doer.responses["GET /api/blogs"] = `[]`
	doer.responses["POST /api/products"] = `{"id":2}`
	c := New(doer, nil, zerolog.Nop())
	ctx := context.Background()

	_, _ = c.Read(ctx, "/api/products")
	_, _ = c.Read(ctx, "/api/blogs")

	var created struct {
		ID int64 `json:"id"`
	}
	err := c.Mutate(ctx, Mutation{
		Method:      http.MethodPost,
		Path:        "/api/products",
		Body:        map[string]string{"name": "Lamp"},
		Invalidates: []string{"/api/products"},
	}, &created)
	if err != nil {
		t.Fatalf("Mutate returned error: %v", err)
	}
	if created.ID != 2 {
		t.Fatalf("created = %#v", created)
	}

	if e, _ := c.Cache().Get("/api/products"); !e.Stale {
		t.Fatal("declared key not invalidated")
	}
	if e, _ := c.Cache().Get("/api/blogs"); e.Stale {
		t.Fatal("undeclared key invalidated")
	}

	doer.responses["GET /api/products"] = `[{"id":1},{"id":2}]`
	raw, err := c.Read(ctx, "/api/products")
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if string(raw) != `[{"id":1},{"id":2}]` {
		t.Fatalf("Read after create = %s", raw)
	}
}

func TestMutate_FailureTouchesNothing(t *testing.T) {
	doer := newFakeDoer()
	doer.responses["GET /api/gallery"] = `[{"id":5}]`
	doer.errs["DELETE /api/gallery/5"] = &api.Error{Kind: api.KindAuthRequired, Status: http.StatusUnauthorized}
	c := New(doer, nil, zerolog.Nop())
	ctx := context.Background()

	before, _ := c.Read(ctx, "/api/gallery")

	err := c.Mutate(ctx, Mutation{
		Method:      http.MethodDelete,
		Path:        ItemKey("/api/gallery", 5),
		Invalidates: []string{"/api/gallery", "/api/gallery/5"},
	}, nil)
	if !api.IsAuthRequired(err) {
		t.Fatalf("Mutate error = %v, want auth required", err)
	}

	e, ok := c.Cache().Get("/api/gallery")
	if !ok || e.Stale || string(e.Value) != string(before) {
		t.Fatalf("gallery entry changed: %+v", e)
	}
}

func TestPeekPrimeForget(t *testing.T) {
	c := New(newFakeDoer(), nil, zerolog.Nop())

	var user struct {
		Username string `json:"username"`
	}
	if _, ok, _ := c.Peek("/api/me", &user); ok {
		t.Fatal("Peek found an entry in an empty cache")
	}
	if err := c.Prime("/api/me", map[string]string{"username": "admin"}); err != nil {
		t.Fatalf("Prime returned error: %v", err)
	}
	stale, ok, err := c.Peek("/api/me", &user)
	if err != nil || !ok || stale || user.Username != "admin" {
		t.Fatalf("Peek = stale:%v ok:%v err:%v user:%+v", stale, ok, err, user)
	}
	c.Forget("/api/me")
	if _, ok, _ := c.Peek("/api/me", &user); ok {
		t.Fatal("Forget left the entry behind")
	}
}
