package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/five82/backoffice/internal/api"
	"github.com/five82/backoffice/internal/content"
	"github.com/five82/backoffice/internal/devserver"
	"github.com/five82/backoffice/internal/query"
	"github.com/five82/backoffice/internal/session"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s
		{"many failures capped", 40, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	for _, base := range []time.Duration{time.Second, 10 * time.Second, time.Minute} {
		ceiling := backoffCeiling(base)
		for failures := 1; failures <= 20; failures++ {
			got := calculateBackoff(failures, base)
			if got > ceiling {
				t.Errorf("calculateBackoff(%d, %v) = %v, exceeds ceiling %v", failures, base, got, ceiling)
			}
		}
	}
}

func TestCalculateBackoff_NeverBelowInterval(t *testing.T) {
	for _, base := range []time.Duration{defaultRefreshInterval, time.Minute, 5 * time.Minute} {
		prev := base
		for failures := 1; failures <= 20; failures++ {
			got := calculateBackoff(failures, base)
			if got < prev {
				t.Errorf("calculateBackoff(%d, %v) = %v, shorter than %v", failures, base, got, prev)
			}
			prev = got
		}
		if got := calculateBackoff(1, base); got <= base {
			t.Errorf("calculateBackoff(1, %v) = %v, want longer than the interval", base, got)
		}
		if got := calculateBackoff(20, base); got != maxBackoffFactor*base {
			t.Errorf("calculateBackoff(20, %v) = %v, want %v", base, got, maxBackoffFactor*base)
		}
	}
}

type pollFixture struct {
	ts       *httptest.Server
	qc       *query.Client
	sess     *session.Service
	requests atomic.Int64
	deny     atomic.Bool
}

func newPollFixture(t *testing.T) *pollFixture {
	t.Helper()
	srv, err := devserver.New(devserver.Config{
		AdminUsername: "admin",
		AdminPassword: "correctpass",
		BcryptCost:    bcrypt.MinCost,
		Seed:          true,
		Logger:        zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("devserver.New: %v", err)
	}
	f := &pollFixture{}
	f.ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == content.PathProducts {
			f.requests.Add(1)
		}
		if f.deny.Load() && r.URL.Path != content.PathLogin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"not signed in"}`))
			return
		}
		srv.ServeHTTP(w, r)
	}))
	t.Cleanup(f.ts.Close)

	client, err := api.NewClient(api.Options{BaseURL: f.ts.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	f.qc = query.New(client, nil, zerolog.Nop())
	f.sess = session.New(f.qc, zerolog.Nop())
	return f
}

func TestPoll_SkipsWhenSignedOut(t *testing.T) {
	f := newPollFixture(t)
	p := NewPoller(f.qc, f.sess, time.Second, zerolog.Nop())
	p.Watch(content.PathProducts)

	if got := p.poll(context.Background()); got != time.Second {
		t.Fatalf("poll delay = %v, want 1s", got)
	}
	if n := f.requests.Load(); n != 0 {
		t.Fatalf("requests = %d, want 0", n)
	}
}

func TestPoll_RefreshesWatchedKey(t *testing.T) {
	f := newPollFixture(t)
	if _, err := f.sess.Login(context.Background(), "admin", "correctpass"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	p := NewPoller(f.qc, f.sess, time.Second, zerolog.Nop())

	if got := p.poll(context.Background()); got != time.Second {
		t.Fatalf("poll with no key = %v, want 1s", got)
	}
	p.Watch(content.PathProducts)
	if p.Watching() != content.PathProducts {
		t.Fatalf("Watching = %q", p.Watching())
	}
	p.poll(context.Background())
	p.poll(context.Background())
	if n := f.requests.Load(); n != 2 {
		t.Fatalf("requests = %d, want 2", n)
	}
	if _, ok := f.qc.Cache().Get(content.PathProducts); !ok {
		t.Fatalf("products not cached after poll")
	}
}

func TestPoll_BacksOffOnFailure(t *testing.T) {
	f := newPollFixture(t)
	if _, err := f.sess.Login(context.Background(), "admin", "correctpass"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	p := NewPoller(f.qc, f.sess, time.Second, zerolog.Nop())
	p.Watch(content.PathProducts)
	f.ts.Close()

	if got := p.poll(context.Background()); got != 2*time.Second {
		t.Fatalf("first failure delay = %v, want 2s", got)
	}
	if got := p.poll(context.Background()); got != 4*time.Second {
		t.Fatalf("second failure delay = %v, want 4s", got)
	}
	if !f.sess.IsAuthenticated() {
		t.Fatalf("transport failures should not end the session")
	}

	p.Watch(content.PathBlogs)
	p.mu.Lock()
	failures := p.failures
	p.mu.Unlock()
	if failures != 0 {
		t.Fatalf("failures after Watch = %d, want 0", failures)
	}
}

func TestPoll_ExpiresSessionOn401(t *testing.T) {
	f := newPollFixture(t)
	if _, err := f.sess.Login(context.Background(), "admin", "correctpass"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	p := NewPoller(f.qc, f.sess, time.Second, zerolog.Nop())
	p.Watch(content.PathCustomers)
	p.poll(context.Background())
	if !f.sess.IsAuthenticated() {
		t.Fatalf("session expired after a successful poll")
	}

	f.deny.Store(true)
	if got := p.poll(context.Background()); got != time.Second {
		t.Fatalf("delay after 401 = %v, want 1s", got)
	}
	if f.sess.IsAuthenticated() {
		t.Fatalf("session still authenticated after 401")
	}
	if _, ok := f.qc.Cache().Get(content.PathMe); ok {
		t.Fatalf("/api/me still cached after expiry")
	}
}
