package api

import (
	"log/slog"
	"net/http"

	"docstruct/internal/config"
	"docstruct/internal/store"
	"docstruct/internal/structure"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP surface over the structuring engine.
type Server struct {
	router chi.Router
	store  *store.Store
	svc    *structure.Service
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(st *store.Store, svc *structure.Service, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store: st,
		svc:   svc,
		log:   log,
		cfg:   cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey))

		r.Post("/api/documents", s.handleRegisterDocument)
		r.Get("/api/documents", s.handleListDocuments)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)
		r.Post("/api/documents/{docID}/processed", s.handleRegisterProcessed)
		r.Get("/api/documents/{docID}/processed", s.handleListProcessed)

		r.Post("/api/processed/{procID}/structure", s.handleRunStructure)
		r.Get("/api/processed/{procID}/structure", s.handleGetStructure)
		r.Delete("/api/processed/{procID}/structure", s.handleDeleteStructure)
		r.Get("/api/processed/{procID}/toc", s.handleGetTOC)
		r.Get("/api/processed/{procID}/headers/search", s.handleSearchHeaders)
		r.Get("/api/nodes/{nodeID}/subtree", s.handleGetSubtree)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
