package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/backoffice/internal/api"
	"github.com/five82/backoffice/internal/query"
	"github.com/five82/backoffice/internal/session"
)

const (
	defaultRefreshInterval = 30 * time.Second
	maxBackoff             = 30 * time.Second
	maxBackoffFactor       = 8
)

// Poller refetches the list the operator is looking at. It only polls while
// signed in and backs off exponentially while requests fail.
type Poller struct {
	qc       *query.Client
	sess     *session.Service
	interval time.Duration
	log      zerolog.Logger

	mu       sync.Mutex
	key      string
	failures int
	wake     chan struct{}
}

func NewPoller(qc *query.Client, sess *session.Service, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &Poller{
		qc:       qc,
		sess:     sess,
		interval: interval,
		log:      log.With().Str("component", "poller").Logger(),
		wake:     make(chan struct{}, 1),
	}
}

// Watch replaces the key being polled. An empty key pauses polling.
func (p *Poller) Watch(key string) {
	p.mu.Lock()
	changed := p.key != key
	p.key = key
	if changed {
		p.failures = 0
	}
	p.mu.Unlock()
	if changed {
		select {
		case p.wake <- struct{}{}:
		default:
		}
	}
}

// Watching returns the key being polled.
func (p *Poller) Watching() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.key
}

// Start runs the poll loop in a goroutine until ctx is done.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	delay := p.interval
	for {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.wake:
			timer.Stop()
			delay = p.interval
			continue
		case <-timer.C:
		}
		delay = p.poll(ctx)
	}
}

// poll refreshes the watched key once and returns the delay before the next
// attempt.
func (p *Poller) poll(ctx context.Context) time.Duration {
	p.mu.Lock()
	key := p.key
	p.mu.Unlock()
	if key == "" || !p.sess.IsAuthenticated() {
		return p.interval
	}

	_, err := p.qc.Refresh(ctx, key)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		p.failures = 0
		return p.interval
	}
	if ctx.Err() != nil {
		return p.interval
	}
	if api.IsAuthRequired(err) {
		p.sess.Expire()
		p.failures = 0
		return p.interval
	}
	p.failures++
	next := calculateBackoff(p.failures, p.interval)
	p.log.Warn().Err(err).Str("key", key).Int("failures", p.failures).Dur("retry_in", next).Msg("refresh failed")
	return next
}

// backoffCeiling is the longest delay calculateBackoff returns for base:
// maxBackoff, or maxBackoffFactor intervals when that is longer.
func backoffCeiling(base time.Duration) time.Duration {
	return max(maxBackoff, maxBackoffFactor*base)
}

// calculateBackoff doubles base per consecutive failure, capped at
// backoffCeiling. It never returns less than base.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	ceiling := backoffCeiling(base)
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	return d
}
