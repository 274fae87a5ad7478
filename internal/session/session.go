package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/backoffice/internal/api"
	"github.com/five82/backoffice/internal/content"
	"github.com/five82/backoffice/internal/metrics"
	"github.com/five82/backoffice/internal/query"
)

// State is the authentication state of the operator.
type State int

const (
	Unauthenticated State = iota
	Loading
	Authenticated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Redirect is the entry point the caller should show after a transition.
type Redirect string

const (
	AdminEntry  Redirect = "/admin"
	PublicEntry Redirect = "/"
)

var (
	ErrClosed          = errors.New("session service closed")
	ErrMissingUsername = errors.New("username is required")
	ErrMissingPassword = errors.New("password is required")
)

// Change is delivered to subscribers after every transition.
type Change struct {
	From State
	To   State
	User *content.User
}

// Service owns the authentication state. It is created once by the
// composition root and handed to everything that needs it.
type Service struct {
	qc  *query.Client
	log zerolog.Logger

	mu     sync.RWMutex
	state  State
	user   *content.User
	subs   []chan Change
	closed bool

	checkOnce sync.Once
	checkErr  error
}

// New returns a Service in the Unauthenticated state.
func New(qc *query.Client, log zerolog.Logger) *Service {
	return &Service{qc: qc, log: log.With().Str("component", "session").Logger()}
}

// Initialize asks /api/me once. Concurrent and later callers share the
// first answer. A 401 is the normal signed-out answer and is not
// returned as an error.
func (s *Service) Initialize(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	s.checkOnce.Do(func() {
		s.transition(Loading, nil)
		user, err := query.Fetch[content.User](ctx, s.qc, content.PathMe)
		switch {
		case err == nil:
			s.transition(Authenticated, &user)
		case api.IsAuthRequired(err):
			s.transition(Unauthenticated, nil)
		default:
			s.transition(Unauthenticated, nil)
			s.checkErr = fmt.Errorf("check session: %w", err)
			s.log.Warn().Err(err).Msg("session check failed")
		}
	})
	return s.checkErr
}

// Login authenticates with the given credentials. On success the user is
// held, /api/me is seeded with it and AdminEntry is returned. On failure the
// state and the cache are left as they were.
func (s *Service) Login(ctx context.Context, username, password string) (Redirect, error) {
	if s.isClosed() {
		return "", ErrClosed
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrMissingUsername
	}
	if password == "" {
		return "", ErrMissingPassword
	}

	var user content.User
	err := s.qc.Mutate(ctx, query.Mutation{
		Method: http.MethodPost,
		Path:   content.PathLogin,
		Body:   content.Credentials{Username: username, Password: password},
	}, &user)
	if err != nil {
		s.log.Info().Err(err).Str("username", username).Msg("login failed")
		return "", err
	}
	if s.isClosed() {
		return "", ErrClosed
	}

	if err := s.qc.Prime(content.PathMe, user); err != nil {
		s.log.Warn().Err(err).Msg("seed session cache")
	}
	s.transition(Authenticated, &user)
	s.log.Info().Str("username", user.Username).Msg("signed in")
	return AdminEntry, nil
}

// Logout asks the server to end the session and always clears local state.
// A request failure is returned for display only.
func (s *Service) Logout(ctx context.Context) (Redirect, error) {
	if s.isClosed() {
		return "", ErrClosed
	}
	err := s.qc.Mutate(ctx, query.Mutation{
		Method:      http.MethodPost,
		Path:        content.PathLogout,
		Invalidates: []string{content.PathMe},
	}, nil)
	s.qc.Forget(content.PathMe)
	s.transition(Unauthenticated, nil)

	if err != nil {
		s.log.Warn().Err(err).Msg("logout request failed; local session cleared")
		return PublicEntry, fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Msg("signed out")
	return PublicEntry, nil
}

// Expire drops the held user after the server reported the session gone.
func (s *Service) Expire() {
	if s.State() != Authenticated {
		return
	}
	s.qc.Forget(content.PathMe)
	s.transition(Unauthenticated, nil)
	s.log.Info().Msg("session expired")
}

// CurrentUser returns a copy of the held user.
func (s *Service) CurrentUser() (content.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return content.User{}, false
	}
	return *s.user, true
}

func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Service) IsAuthenticated() bool {
	return s.State() == Authenticated
}

// Subscribe returns a channel receiving every later Change. Slow readers
// miss changes rather than block the service.
func (s *Service) Subscribe() <-chan Change {
	ch := make(chan Change, 8)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch
	}
	s.subs = append(s.subs, ch)
	return ch
}

// Teardown closes subscriber channels. Later calls return ErrClosed.
func (s *Service) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}

func (s *Service) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Service) transition(to State, user *content.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	from := s.state
	s.state = to
	if to == Authenticated && user != nil {
		u := *user
		s.user = &u
	} else {
		s.user = nil
	}
	if from == to && to != Authenticated {
		return
	}
	metrics.SessionTransitions.WithLabelValues(from.String(), to.String()).Inc()

	change := Change{From: from, To: to}
	if s.user != nil {
		u := *s.user
		change.User = &u
	}
	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
		}
	}
}
