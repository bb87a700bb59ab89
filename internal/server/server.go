package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/osse101/FateProtocol_Go/internal/admin"
	"github.com/osse101/FateProtocol_Go/internal/arena"
	"github.com/osse101/FateProtocol_Go/internal/council"
	"github.com/osse101/FateProtocol_Go/internal/eventlog"
	"github.com/osse101/FateProtocol_Go/internal/handler"
	"github.com/osse101/FateProtocol_Go/internal/logger"
	"github.com/osse101/FateProtocol_Go/internal/market"
	"github.com/osse101/FateProtocol_Go/internal/metrics"
)

// Options configures the HTTP surface
type Options struct {
	Port              int
	APIKey            string
	AdminAPIKey       string
	TrustedProxies    []string
	RequestsPerSecond float64
	RequestBurst      int
}

// Services are the protocol services and probes the router exposes
type Services struct {
	Matches   arena.Service
	Proposals council.Service
	Admin     admin.Service
	Markets   market.Registry
	Quotes    handler.QuoteSource
	// Events is optional; without it the journal route is not mounted
	Events    eventlog.Service
	Readiness map[string]handler.Pinger
}

type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(opts Options, svc Services) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           NewRouter(opts, svc),
			ReadHeaderTimeout: ReadHeaderTimeout,
			WriteTimeout:      WriteTimeout,
			IdleTimeout:       IdleTimeout,
		},
	}
}

// NewRouter builds the middleware stack and every route
func NewRouter(opts Options, svc Services) http.Handler {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector(opts.RequestsPerSecond, opts.RequestBurst)

	r.Use(loggingMiddleware)
	r.Use(SecurityHeadersMiddleware())
	r.Use(RateLimitMiddleware(opts.TrustedProxies, detector))
	r.Use(AuthMiddleware(opts.APIKey, opts.TrustedProxies, detector))
	r.Use(AdminMiddleware(opts.AdminAPIKey, opts.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(MaxBodyBytes))
	r.Use(metrics.Middleware)

	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(svc.Readiness))
	r.Get("/version", handler.HandleVersion())
	r.Handle("/metrics", promhttp.Handler())

	matches := handler.NewMatchHandler(svc.Matches)
	proposals := handler.NewProposalHandler(svc.Proposals)
	adminHandler := handler.NewAdminHandler(svc.Admin, svc.Matches, svc.Proposals)
	markets := handler.NewMarketHandler(svc.Markets, svc.Quotes)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/matches", func(r chi.Router) {
			r.Get("/", matches.HandleListMatches)
			r.Post("/", matches.HandleCreateMatch)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", matches.HandleGetMatch)
				r.Get("/entries", matches.HandleGetEntries)
				r.Post("/join", matches.HandleJoinMatch)
				r.Post("/predict", matches.HandlePredict)
				r.Post("/start", matches.HandleStartMatch)
				r.Post("/resolve", matches.HandleResolveMatch)
				r.Post("/claim", matches.HandleClaimWinnings)
				r.Post("/cancel", matches.HandleCancelMatch)
			})
		})

		r.Route("/proposals", func(r chi.Router) {
			r.Get("/", proposals.HandleListProposals)
			r.Post("/", proposals.HandleCreateProposal)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", proposals.HandleGetProposal)
				r.Get("/votes", proposals.HandleGetVotes)
				r.Post("/trade", proposals.HandleTrade)
				r.Post("/resolve", proposals.HandleResolveProposal)
				r.Post("/execute", proposals.HandleExecuteProposal)
				r.Post("/claim", proposals.HandleClaimVote)
				r.Post("/cancel", proposals.HandleCancelProposal)
			})
		})

		r.Get("/markets", markets.HandleListMarkets)
		// Symbols contain a slash (SOL/USD), so the oracle route takes the rest of the path
		r.Get("/oracle/*", markets.HandleGetQuote)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/config", adminHandler.HandleGetConfig)
			r.Put("/config", adminHandler.HandleUpdateConfig)
			r.Post("/pause", adminHandler.HandlePause)
			r.Post("/matches/{id}/void", adminHandler.HandleVoidMatch)
			r.Post("/matches/{id}/sweep", adminHandler.HandleSweepMatch)
			r.Post("/proposals/{id}/sweep", adminHandler.HandleSweepProposal)
			r.Get("/balances/{account}", adminHandler.HandleGetBalance)
			r.Get("/transfers", adminHandler.HandleListTransfers)
			if svc.Events != nil {
				r.Get("/events", handler.NewEventLogHandler(svc.Events).HandleListEvents)
			}
		})
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()

		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = logger.GenerateRequestID()
		}
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		w.Header().Set(HeaderRequestID, requestID)

		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		if log.Enabled(ctx, slog.LevelDebug) {
			sanitized := make(http.Header, len(r.Header))
			for k, v := range r.Header {
				switch {
				case strings.EqualFold(k, HeaderAPIKey), strings.EqualFold(k, HeaderAdminKey), strings.EqualFold(k, HeaderAuthorization):
					sanitized[k] = []string{RedactedValue}
				default:
					sanitized[k] = v
				}
			}
			log.Debug(LogMsgRequestHeaders, "headers", sanitized)
		}

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start serves until Stop is called. It returns http.ErrServerClosed after a clean shutdown.
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	slog.Default().Info(LogMsgServerStopping)
	return s.httpServer.Shutdown(ctx)
}
