// Package server exposes a chart gallery over HTTP.
//
// Routes:
//
//	GET    /healthz                      liveness and session count
//	GET    /charts                       gallery listing
//	GET    /charts/{name}.svg            chart at its defaults or query state
//	POST   /sessions                     open a session {"chart": name}
//	GET    /sessions/{id}                session record
//	DELETE /sessions/{id}                end a session
//	POST   /sessions/{id}/events         apply a view message
//	GET    /sessions/{id}/chart.svg      session chart at its current state
//	POST   /sessions/{id}/snapshots      store the session view
//	GET    /snapshots                    snapshot listing (?chart=&limit=)
//	GET    /snapshots/{id}               snapshot record
//	GET    /snapshots/{id}.svg           snapshot rendering
//	DELETE /snapshots/{id}               remove a snapshot
//
// Errors are JSON objects {"error": message, "code": code} with a status
// derived from the error code.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/config"
	"github.com/matzehuels/vizlab/pkg/observability"
	"github.com/matzehuels/vizlab/pkg/pipeline"
	"github.com/matzehuels/vizlab/pkg/session"
	"github.com/matzehuels/vizlab/pkg/store"
	"github.com/matzehuels/vizlab/pkg/view"
)

// Options configures a Server.
type Options struct {
	Config    *config.Config
	Runner    *pipeline.Runner
	Sessions  *session.Manager
	Snapshots store.Store
	Logger    *log.Logger
	// RequestTimeout bounds each request; 0 uses 30s.
	RequestTimeout time.Duration
}

// Server serves the gallery of one config.
type Server struct {
	cfg       *config.Config
	runner    *pipeline.Runner
	sessions  *session.Manager
	snapshots store.Store
	logger    *log.Logger
	router    chi.Router
}

// New builds the server and its routes. A nil Sessions manager gets an
// in-memory store; a nil Snapshots store keeps snapshots in memory.
func New(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = &config.Config{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, nil, opts.Logger)
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewManager(session.NewMemoryStore(), Opener(opts.Config, opts.Runner), opts.Config.Server.SessionTTL, opts.Logger)
	}
	if opts.Snapshots == nil {
		opts.Snapshots = store.NewMemoryStore()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	s := &Server{
		cfg:       opts.Config,
		runner:    opts.Runner,
		sessions:  opts.Sessions,
		snapshots: opts.Snapshots,
		logger:    opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(instrument)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/charts", func(r chi.Router) {
		r.Get("/", s.handleCharts)
		r.Get("/{name}.svg", s.handleChartSVG)
	})
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/events", s.handleEvent)
			r.Get("/chart.svg", s.handleSessionSVG)
			r.Post("/snapshots", s.handleCreateSnapshot)
		})
	})
	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.handleListSnapshots)
		r.Get("/{id}.svg", s.handleSnapshotSVG)
		r.Get("/{id}", s.handleGetSnapshot)
		r.Delete("/{id}", s.handleDeleteSnapshot)
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "charts", len(s.cfg.Charts))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// Opener builds session charts from the gallery of cfg through r, so
// sessions share the runner's loader and its HTTP cache.
func Opener(cfg *config.Config, r *pipeline.Runner) session.Opener {
	return func(ctx context.Context, name string, state *view.State) (chart.Chart, view.State, error) {
		cc, err := cfg.Chart(name)
		if err != nil {
			return nil, view.State{}, err
		}
		d, err := r.Load(ctx, cc)
		if err != nil {
			return nil, view.State{}, err
		}
		return r.Build(ctx, cc, d, state)
	}
}

// instrument reports requests to the observability HTTP hooks.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		ctx := r.Context()
		hooks.OnRequest(ctx, r.Method, r.Host, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(ctx, r.Method, r.Host, r.URL.Path, status, time.Since(start))
	})
}
