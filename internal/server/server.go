package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bookself/bookself/internal/ai"
	"github.com/bookself/bookself/internal/quiz"
	"github.com/bookself/bookself/internal/roadmap"
	"github.com/bookself/bookself/internal/session"
	"github.com/bookself/bookself/internal/store"
)

// Server is the bookself HTTP API server. Every route below /api is
// JSON; access is enforced centrally by the gate middleware, never per
// handler.
type Server struct {
	state    *store.State
	gate     *session.Gate
	client   ai.Client
	quiz     *quiz.Session
	wizard   *roadmap.Wizard
	hints    *roadmap.HintFetcher
	log      *zap.Logger
	validate *validator.Validate
	router   chi.Router
	version  string
	started  time.Time
	inflight inflight
}

// Options carries the server's collaborators.
type Options struct {
	State          *store.State
	Gate           *session.Gate
	Client         ai.Client
	Quiz           *quiz.Session
	Wizard         *roadmap.Wizard
	Hints          *roadmap.HintFetcher
	Log            *zap.Logger
	Version        string
	AllowedOrigins []string
}

// New creates a new Server.
func New(opts Options) *Server {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	s := &Server{
		state:    opts.State,
		gate:     opts.Gate,
		client:   opts.Client,
		quiz:     opts.Quiz,
		wizard:   opts.Wizard,
		hints:    opts.Hints,
		log:      opts.Log,
		validate: validator.New(),
		version:  opts.Version,
		started:  time.Now(),
		inflight: inflight{ops: make(map[string]bool)},
	}
	s.routes(opts.AllowedOrigins)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(origins []string) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))
	if len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/navigate", s.handleNavigate)

		r.Post("/auth/signin", s.handleSignIn)
		r.Post("/auth/signout", s.handleSignOut)

		// Setup surface — reachable only mid-setup.
		r.Group(func(r chi.Router) {
			r.Use(s.requirePhase(session.PhaseSettingUp))
			r.Get("/setup/username", s.handleUsernameCheck)
			r.Post("/setup", s.handleCompleteSetup)
		})

		// Full route set — reachable only once setup is complete.
		r.Group(func(r chi.Router) {
			r.Use(s.requirePhase(session.PhaseActive))

			r.Get("/dashboard", s.handleDashboard)

			r.Post("/books", s.handleCreateBook)
			r.Get("/books/{bookID}", s.handleGetBook)
			r.Put("/books/{bookID}/settings", s.handleUpdateBookSettings)
			r.Post("/books/{bookID}/cover", s.handleGenerateCover)
			r.Post("/books/{bookID}/chapters", s.handleAddChapter)
			r.Post("/books/{bookID}/chapters/{chapterID}/lessons", s.handleAddLesson)

			r.Get("/pages/{pageID}", s.handleGetPage)
			r.Put("/pages/{pageID}", s.handleSavePage)
			r.Post("/pages/{pageID}/optimize", s.handleOptimize)
			r.Post("/pages/{pageID}/feedback", s.handleFeedback)
			r.Post("/pages/{pageID}/quiz", s.handleStartQuiz)

			r.Get("/quiz", s.handleQuizState)
			r.Post("/quiz/answer", s.handleQuizAnswer)
			r.Post("/quiz/cancel", s.handleQuizCancel)

			r.Get("/roadmap", s.handleRoadmapView)
			r.Get("/roadmap/hints", s.handleRoadmapHints)
			r.Post("/roadmap/setup", s.handleRoadmapSetup)
			r.Post("/roadmap/generate", s.handleRoadmapGenerate)
			r.Post("/roadmap/edit", s.handleRoadmapEdit)
			r.Post("/roadmap/preview", s.handleRoadmapPreview)
			r.Post("/roadmap/save", s.handleRoadmapSave)
			r.Post("/roadmap/refine", s.handleRoadmapRefine)
			r.Post("/roadmap/reset", s.handleRoadmapReset)
			r.Post("/roadmap/items", s.handleRoadmapAddPhase)
			r.Put("/roadmap/items/{index}", s.handleRoadmapUpdateItem)
			r.Delete("/roadmap/items/{index}", s.handleRoadmapRemoveItem)

			r.Get("/review", s.handleReview)
			r.Post("/advice", s.handleAdvice)

			r.Get("/community", s.handleCommunity)
			r.Post("/community/{bookID}/clone", s.handleCloneBook)
			r.Post("/community/{bookID}/like", s.handleLikeBook)

			r.Put("/profile", s.handleUpdateProfile)
			r.Post("/profile/avatar", s.handleGenerateAvatar)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"phase":   s.gate.Phase(),
	})
}

// handleNavigate returns the target the current phase resolves a
// requested navigation to. This is the central routing contract: no
// path reaches an active-only view from outside the active phase.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("to")
	writeJSON(w, http.StatusOK, map[string]string{
		"requested": target,
		"target":    s.gate.Resolve(target),
	})
}

// inflight guards re-entrant triggering of collaborator-backed actions:
// a second request for the same action while one is pending is
// rejected, and the flag is released on every exit path.
type inflight struct {
	mu  sync.Mutex
	ops map[string]bool
}

func (f *inflight) acquire(op string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ops[op] {
		return false
	}
	f.ops[op] = true
	return true
}

func (f *inflight) release(op string) {
	f.mu.Lock()
	delete(f.ops, op)
	f.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// currentProfile re-reads the profile inside the handler. The gate
// middleware already checked the phase, but a sign-out can land between
// that check and this read; answering 403 there beats a nil deref.
func (s *Server) currentProfile(w http.ResponseWriter) (store.UserProfile, bool) {
	p := s.state.Profile()
	if p == nil {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error":    "session ended",
			"redirect": s.gate.Resolve(session.TargetDashboard),
		})
		return store.UserProfile{}, false
	}
	return *p, true
}

// decodeBody decodes and validates a JSON request payload.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
