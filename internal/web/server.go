package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/fieldtech/internal/auth"
	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/realtime"
	"github.com/vbonduro/fieldtech/internal/service"
)

type tokenParser interface {
	Parse(token string) (auth.Principal, error)
}

// Options are the collaborators the HTTP API is served from.
type Options struct {
	Services *service.Services
	Tokens   tokenParser
	Hub      *realtime.Hub
	// Health reports whether the backing database is reachable.
	Health func(ctx context.Context) error
	// AllowedOrigins are the browser origins served CORS headers.
	AllowedOrigins []string
	Logger         *slog.Logger
}

type Server struct {
	svc     *service.Services
	tokens  tokenParser
	hub     *realtime.Hub
	health  func(ctx context.Context) error
	origins []string
	router  chi.Router
	logger  *slog.Logger
	now     func() time.Time
}

func NewServer(opts Options) *Server {
	s := &Server{
		svc:     opts.Services,
		tokens:  opts.Tokens,
		hub:     opts.Hub,
		health:  opts.Health,
		origins: opts.AllowedOrigins,
		logger:  opts.Logger.With("component", "web"),
		now:     time.Now,
	}
	if s.health == nil {
		s.health = func(context.Context) error { return nil }
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	mux := chi.NewRouter()
	mux.Use(s.requestLogger, s.recoverer, securityHeaders, s.cors)
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.sendError(w, r, domain.ErrNotFound)
	})

	mux.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/password", s.handleChangePassword)
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/ws", s.handleWS)
			r.With(s.allow(auth.ActionRead, domain.CollectionHarpInspections)).
				Get("/harp/checklist", s.handleChecklist)

			r.Route("/clients", func(r chi.Router) {
				newResource[domain.Client](s, s.svc.Clients, domain.CollectionClients, clientExport).mount(r)
			})
			r.Route("/equipment", func(r chi.Router) {
				r.With(s.allow(auth.ActionWrite, domain.CollectionEquipment)).Post("/nameplate", s.handleNameplate)
				newResource[domain.Equipment](s, s.svc.Equipment, domain.CollectionEquipment, equipmentExport).mount(r)
			})
			r.Route("/repairs", func(r chi.Router) {
				r.With(s.allow(auth.ActionWrite, domain.CollectionRepairs)).Post("/{id}/complete", s.handleCompleteRepair)
				newResource[domain.Repair](s, s.svc.Repairs, domain.CollectionRepairs, repairExport).mount(r)
			})
			r.Route("/invoices", s.invoiceRoutes)
			r.Route("/harp-inspections", s.inspectionRoutes)
			r.Route("/parts", s.partRoutes)
			r.Route("/schedules", func(r chi.Router) {
				r.With(s.allow(auth.ActionRead, domain.CollectionSchedules)).Get("/range", s.handleScheduleRange)
				newResource[domain.Schedule](s, s.svc.Schedules, domain.CollectionSchedules, scheduleExport).mount(r)
			})
			r.Route("/manuals", func(r chi.Router) {
				r.With(s.allow(auth.ActionWrite, domain.CollectionManuals)).Post("/{id}/file", s.handleUploadManual)
				r.With(s.allow(auth.ActionRead, domain.CollectionManuals)).Get("/{id}/file", s.handleGetManualFile)
				newResource[domain.Manual](s, s.svc.Manuals, domain.CollectionManuals, manualExport).mount(r)
			})
			r.Route("/notifications", s.notificationRoutes)
			r.Route("/photos", s.photoRoutes)
			r.Route("/users", func(r chi.Router) {
				users := newResource[domain.User](s, s.svc.Users, domain.CollectionUsers, userExport)
				users.create = s.handleRegisterUser
				users.mount(r)
			})
		})
	})
	s.router = mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer builds the listener for addr. Callers own its lifecycle.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.health(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "health check failed", "error", err)
		s.sendJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.sendJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Dashboard.Stats(r.Context(), s.now())
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	s.sendData(w, r, http.StatusOK, stats)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	inbox, err := s.inbox(r)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	realtime.ServeWS(s.hub, w, r, realtime.Options{
		CheckOrigin: s.checkOrigin,
		Filter:      notificationFilter(inbox),
	})
}
