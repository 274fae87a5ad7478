package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/five82/backoffice/internal/content"
)

type access int

const (
	// publicRead lets anyone list and get; writes need a session.
	publicRead access = iota
	// publicCreate lets anyone create; everything else needs a session.
	publicCreate
	adminOnly
)

// mount registers list, item, create, update and delete routes for c.
func mount[T record](r chi.Router, s *Server, c *collection[T], acc access) {
	read := r
	if acc != publicRead {
		read = r.With(s.requireAuth)
	}
	read.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, c.list())
	})
	read.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		v, found := c.get(id)
		if !found {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, v)
	})

	create := r.With(s.requireAuth)
	if acc == publicCreate {
		create = r
	}
	create.Post("/", func(w http.ResponseWriter, r *http.Request) {
		v := c.fresh()
		if !s.decodeValid(w, r, v) {
			return
		}
		writeJSON(w, http.StatusCreated, c.create(v, s.now()))
	})

	write := r.With(s.requireAuth)
	write.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if _, found := c.get(id); !found {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		v := c.fresh()
		if !s.decodeValid(w, r, v) {
			return
		}
		saved, found := c.replace(id, v, s.now())
		if !found {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, saved)
	})
	write.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if !c.remove(id) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds content.Credentials
	if !s.decodeValid(w, r, &creds) {
		return
	}
	op := s.operator
	if creds.Username != op.user.Username ||
		bcrypt.CompareHashAndPassword(op.hash, []byte(creds.Password)) != nil {
		s.log.Info().Str("username", creds.Username).Msg("login rejected")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sid := uuid.NewString()
	s.mu.Lock()
	s.sessions[sid] = op.user.ID
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	writeJSON(w, http.StatusOK, op.user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if ck, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, ck.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.sessionUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
