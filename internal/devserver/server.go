package devserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/five82/backoffice/internal/content"
)

const (
	sessionCookie       = "backoffice_session"
	defaultMaxBodyBytes = 32 << 20
)

// Config configures a Server.
type Config struct {
	AdminUsername string
	AdminPassword string
	AdminEmail    string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// LoginLimit is the number of login attempts allowed per client IP per
	// minute. Zero selects 10.
	LoginLimit int
	// MaxBodyBytes caps a request body, embedded photos included. Larger
	// bodies get 413. Zero selects 32 MiB.
	MaxBodyBytes int64
	// Seed fills the store with sample content.
	Seed   bool
	Years  int
	Awards int
	Logger zerolog.Logger
}

type account struct {
	user content.User
	hash []byte
}

// Server is an in-memory implementation of the content API.
type Server struct {
	log    zerolog.Logger
	now    func() time.Time
	router chi.Router
	years  int
	awards int
	// maxBody caps request bodies in bytes.
	maxBody int64

	operator account

	mu       sync.RWMutex
	sessions map[string]int64
	contact  *content.ContactInfo

	products  *collection[*content.Product]
	blogs     *collection[*content.Blog]
	gallery   *collection[*content.GalleryItem]
	portfolio *collection[*content.PortfolioItem]
	customers *collection[*content.Customer]
	inquiries *collection[*content.Inquiry]
}

// New builds a Server with one operator account.
func New(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.AdminUsername) == "" || cfg.AdminPassword == "" {
		return nil, errors.New("admin username and password are required")
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	s := &Server{
		log:     cfg.Logger.With().Str("component", "devserver").Logger(),
		now:     time.Now,
		years:   cfg.Years,
		awards:  cfg.Awards,
		maxBody: maxBody,
		operator: account{
			user: content.User{ID: 1, Username: strings.TrimSpace(cfg.AdminUsername), Email: cfg.AdminEmail},
			hash: hash,
		},
		sessions:  make(map[string]int64),
		contact:   &content.ContactInfo{Email: cfg.AdminEmail},
		products:  newCollection(content.ProductSchema().New),
		blogs:     newCollection(content.BlogSchema().New),
		gallery:   newCollection(content.GallerySchema().New),
		portfolio: newCollection(content.PortfolioSchema().New),
		customers: newCollection(content.CustomerSchema().New),
		inquiries: newCollection(content.InquirySchema().New),
	}
	s.contact.Stamp(1, s.now(), s.now())
	if cfg.Seed {
		s.seed()
	}
	s.router = s.routes(cfg.LoginLimit)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(loginLimit int) chi.Router {
	if loginLimit <= 0 {
		loginLimit = 10
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.With(httprate.LimitByIP(loginLimit, time.Minute)).Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/me", s.handleMe)

		r.Get("/contact-info", s.handleGetContact)
		r.With(s.requireAuth).Put("/contact-info", s.handlePutContact)
		r.Get("/about-stats", s.handleAboutStats)

		r.Route("/products", func(r chi.Router) { mount(r, s, s.products, publicRead) })
		r.Route("/blogs", func(r chi.Router) { mount(r, s, s.blogs, publicRead) })
		r.Route("/gallery", func(r chi.Router) { mount(r, s, s.gallery, publicRead) })
		r.Route("/portfolio", func(r chi.Router) { mount(r, s, s.portfolio, publicRead) })
		r.Route("/customers", func(r chi.Router) { mount(r, s, s.customers, adminOnly) })
		r.Route("/inquiries", func(r chi.Router) {
			mount(r, s, s.inquiries, publicCreate)
			r.With(s.requireAuth).Patch("/{id}/read", s.handleMarkRead)
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.now()
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type ctxKey struct{}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.sessionUser(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

func (s *Server) sessionUser(r *http.Request) (content.User, bool) {
	ck, err := r.Cookie(sessionCookie)
	if err != nil || ck.Value == "" {
		return content.User{}, false
	}
	s.mu.RLock()
	uid, ok := s.sessions[ck.Value]
	s.mu.RUnlock()
	if !ok || uid != s.operator.user.ID {
		return content.User{}, false
	}
	return s.operator.user, true
}

func (s *Server) handleAboutStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, content.AboutStats{
		Years:    s.years,
		Projects: s.portfolio.len(),
		Clients:  s.customers.len(),
		Awards:   s.awards,
	})
}

func (s *Server) handleGetContact(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	info := s.contact
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handlePutContact(w http.ResponseWriter, r *http.Request) {
	var info content.ContactInfo
	if !s.decodeValid(w, r, &info) {
		return
	}
	s.mu.Lock()
	info.Stamp(1, s.contact.CreatedAt, s.now())
	if info.Photos == nil {
		info.SetPhotoRefs(nil)
	}
	s.contact = &info
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, &info)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cur, found := s.inquiries.get(id)
	if !found {
		writeError(w, http.StatusNotFound, "inquiry not found")
		return
	}
	next := *cur
	next.Read = true
	saved, found := s.inquiries.replace(id, &next, s.now())
	if !found {
		writeError(w, http.StatusNotFound, "inquiry not found")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

// decodeValid decodes the request body into v and validates it. It writes
// the 413 or 400 response itself and reports false on failure.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.log.Warn().Int64("limit", tooLarge.Limit).Str("path", r.URL.Path).Msg("request body too large")
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes; use smaller or linked photos", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if fields := content.Validate(v); fields != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fields})
		return false
	}
	return true
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
