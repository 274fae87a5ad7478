package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != defaultBaseURL {
		t.Fatalf("default url = %q, want http://%s", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("https://shop.example.com:8443/admin?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatal("expected error for missing host")
	}
}

func newTestClient(t *testing.T, h http.Handler, breaker *BreakerConfig) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	c, err := NewClient(Options{BaseURL: server.URL, Timeout: 2 * time.Second, Breaker: breaker})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestClient_EncodesBodyAndDecodesResponse(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	var gotUserAgent, gotContentType string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7,"name":"Lamp"}`))
	}), nil)

	var out struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := c.Do(context.Background(), http.MethodPost, "/api/products", map[string]any{"name": "Lamp"}, &out); err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if out.ID != 7 || out.Name != "Lamp" {
		t.Fatalf("decoded = %#v, want id=7 name=Lamp", out)
	}
	if gotBody["name"] != "Lamp" {
		t.Fatalf("request body = %#v, want name=Lamp", gotBody)
	}
	if gotUserAgent != defaultUserAgent || gotContentType != "application/json" {
		t.Fatalf("headers = %q / %q", gotUserAgent, gotContentType)
	}
}

func TestClient_EmptyResponseBodyIsNotAnError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), nil)

	var raw json.RawMessage
	if err := c.Do(context.Background(), http.MethodDelete, "/api/gallery/5", nil, &raw); err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if len(raw) != 0 {
		t.Fatalf("raw = %q, want empty", raw)
	}
}

func TestClient_MapsStatusToKind(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/me":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"not signed in"}`))
		case "/api/products":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"validation failed","fields":{"name":"name is required"}}`))
		case "/api/gallery/1":
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			_, _ = w.Write([]byte(`{"error":"request body exceeds 1024 bytes"}`))
		case "/api/blogs/99":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"blog not found"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		}
	}), nil)
	ctx := context.Background()

	err := c.Do(ctx, http.MethodGet, "/api/me", nil, nil)
	if !IsAuthRequired(err) || !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("GET /api/me error = %v, want auth required", err)
	}

	err = c.Do(ctx, http.MethodPost, "/api/products", map[string]string{}, nil)
	if !IsValidation(err) {
		t.Fatalf("POST error = %v, want validation", err)
	}
	fields := FieldErrors(err)
	if fields["name"] != "name is required" {
		t.Fatalf("fields = %#v, want name message", fields)
	}

	err = c.Do(ctx, http.MethodPut, "/api/gallery/1", map[string]string{}, nil)
	if !IsValidation(err) || !strings.Contains(err.Error(), "exceeds 1024 bytes") {
		t.Fatalf("PUT oversized error = %v, want validation with server message", err)
	}

	err = c.Do(ctx, http.MethodGet, "/api/blogs/99", nil, nil)
	if !IsNotFound(err) {
		t.Fatalf("GET blog error = %v, want not found", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Message != "blog not found" {
		t.Fatalf("api error = %#v", apiErr)
	}

	err = c.Do(ctx, http.MethodGet, "/api/gallery", nil, nil)
	if !IsTransport(err) || IsAuthRequired(err) {
		t.Fatalf("GET gallery error = %v, want transport", err)
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("error text %q should mention status", err.Error())
	}
}

func TestClient_UndecodableResponseIsTransport(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	}), nil)

	var out map[string]any
	err := c.Do(context.Background(), http.MethodGet, "/api/contact-info", nil, &out)
	if !IsTransport(err) || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("error = %v, want transport decode failure", err)
	}
}

func TestClient_ConnectionRefusedIsTransport(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := NewClient(Options{BaseURL: url, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	err = c.Do(context.Background(), http.MethodPost, "/api/logout", nil, nil)
	if !IsTransport(err) {
		t.Fatalf("error = %v, want transport", err)
	}
}

func TestClient_CookieJarCarriesSession(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/", HttpOnly: true})
			_, _ = w.Write([]byte(`{"id":1,"username":"admin"}`))
		case "/api/me":
			if ck, err := r.Cookie("session"); err != nil || ck.Value != "abc" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"id":1,"username":"admin"}`))
		}
	}), nil)
	ctx := context.Background()

	if err := c.Do(ctx, http.MethodGet, "/api/me", nil, nil); !IsAuthRequired(err) {
		t.Fatalf("GET /api/me before login = %v, want auth required", err)
	}
	if err := c.Do(ctx, http.MethodPost, "/api/login", map[string]string{"username": "admin"}, nil); err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if err := c.Do(ctx, http.MethodGet, "/api/me", nil, nil); err != nil {
		t.Fatalf("GET /api/me after login returned error: %v", err)
	}
}

func TestClient_BreakerOpensOnServerErrorsOnly(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/api/me" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}), &BreakerConfig{MaxFailures: 2, OpenTimeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := c.Do(ctx, http.MethodGet, "/api/me", nil, nil); !IsAuthRequired(err) {
			t.Fatalf("attempt %d: error = %v, want auth required", i, err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := c.Do(ctx, http.MethodGet, "/api/products", nil, nil); !IsTransport(err) {
			t.Fatalf("attempt %d: error = %v, want transport", i, err)
		}
	}
	before := hits.Load()

	err := c.Do(ctx, http.MethodGet, "/api/products", nil, nil)
	if !IsTransport(err) || !strings.Contains(err.Error(), "circuit breaker open") {
		t.Fatalf("error = %v, want open breaker", err)
	}
	if hits.Load() != before {
		t.Fatalf("open breaker still reached the server")
	}
}

func TestKind_String(t *testing.T) {
	cases := map[Kind]string{
		KindTransport:    "transport",
		KindAuthRequired: "auth_required",
		KindValidation:   "validation",
		KindNotFound:     "not_found",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
	if KindOf(errors.New("plain")) != KindTransport {
		t.Fatal("KindOf(plain) should be transport")
	}
}
