package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"saishi/internal/log"
	"saishi/internal/middleware/ratelimit"
	"saishi/internal/middleware/security"
	"saishi/internal/middleware/trace"
	"saishi/internal/services"
	"saishi/internal/store"
)

// Options configures NewServer. Tournaments and Aggregator are required.
type Options struct {
	Addr        string
	Tournaments *services.TournamentService
	Aggregator  *services.Aggregator
	// Checks are probed by /readyz.
	Checks map[string]store.Pinger
	Logger *log.Logger

	CORSAllowedOrigins []string
	RateLimitPerMinute int
	// RecentLimit is the default size of the "recent" dashboard kind.
	RecentLimit int
}

type appMetrics struct {
	uptime             time.Time
	tournamentsCreated int64
	exports            int64
}

type Server struct {
	http.Server
	tournaments *services.TournamentService
	aggregator  *services.Aggregator
	checks      map[string]store.Pinger
	logger      *log.Logger
	recentLimit int
	now         func() time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}
	recent := opts.RecentLimit
	if recent < 1 {
		recent = services.DefaultRecentLimit
	}

	detector := security.NewDetector()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		tournaments:      opts.Tournaments,
		aggregator:       opts.Aggregator,
		checks:           opts.Checks,
		logger:           logger,
		recentLimit:      recent,
		now:              time.Now,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/tournaments", s.handleListTournaments)
	mux.HandleFunc("POST /api/tournaments", s.handleCreateTournament)
	mux.HandleFunc("POST /api/tournaments/preview", s.handlePreviewFees)
	mux.HandleFunc("GET /api/tournaments/{id}", s.handleGetTournament)
	mux.HandleFunc("PUT /api/tournaments/{id}", s.handleUpdateTournament)
	mux.HandleFunc("DELETE /api/tournaments/{id}", s.handleDeleteTournament)
	mux.HandleFunc("PATCH /api/tournaments/{id}/settlement", s.handleSetSettlement)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	mux.HandleFunc("GET /api/export", s.handleExportQuery)
	mux.HandleFunc("POST /api/export", s.handleExportBody)

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("接口不存在").Write(w)
	})

	s.Handler = chain(mux,
		s.traceMiddleware.Middleware,
		log.Middleware(logger),
		log.RequestIDMiddleware(trace.RequestID),
		s.securityDetector.Middleware,
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		security.NewCORS(opts.CORSAllowedOrigins).Middleware,
		s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, ratelimit.MutatingOnly, func(w http.ResponseWriter, r *http.Request) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			ErrorResponse(http.StatusTooManyRequests, MsgRateLimited).Write(w)
		}),
	)
	return s
}

// chain wraps h so that the first middleware is the outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
