package web

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"quizgate/internal/infra/logging"
	"quizgate/internal/infra/metrics"
	"quizgate/internal/infra/ratelimit"
	"quizgate/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server wires the public and admin HTTP API to the use cases.
type Server struct {
	activation usecase.ActivationUseCase
	admin      usecase.AdminUseCase
	referral   usecase.ReferralUseCase
	analytics  usecase.AnalyticsUseCase
	site       usecase.SiteUseCase
	catalog    usecase.CatalogUseCase

	limiter ratelimit.Limiter
	log     *zerolog.Logger

	httpSrv *http.Server
}

func NewServer(
	port int,
	activationUC usecase.ActivationUseCase,
	adminUC usecase.AdminUseCase,
	referralUC usecase.ReferralUseCase,
	analyticsUC usecase.AnalyticsUseCase,
	siteUC usecase.SiteUseCase,
	catalogUC usecase.CatalogUseCase,
	limiter ratelimit.Limiter,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		activation: activationUC,
		admin:      adminUC,
		referral:   referralUC,
		analytics:  analyticsUC,
		site:       siteUC,
		catalog:    catalogUC,
		limiter:    limiter,
		log:        logger,
	}
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the chi route tree with the shared middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestContext)
	r.Use(s.recoverer)
	r.Use(s.instrument)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeOK(w, nil)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/redeem", s.handleRedeem)
		r.Post("/validate", s.handleValidate)
		r.Post("/logout", s.handleLogout)
		r.Post("/track", s.handleTrack)
		r.Get("/site", s.handleSite)
		r.Post("/admin", s.handleAdmin)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	})
	return r
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpSrv.Addr).Msg("http server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// requestContext stamps each request with a trace id and the client ip so
// downstream log events carry them.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), uuid.NewString())
		ctx = logging.WithClientIP(ctx, clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recoverer converts panics into a logged 500 envelope instead of a dropped
// connection.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.With(r.Context(), s.log).Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("handler panic")
				writeError(w, http.StatusInternalServerError, "internal_error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// instrument logs every request and feeds the latency histogram.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		metrics.ObserveRequest(route, ww.Status(), float64(elapsed.Milliseconds()))
		logging.With(r.Context(), s.log).Info().
			Str("method", r.Method).
			Str("route", route).
			Int("status", ww.Status()).
			Dur("duration", elapsed).
			Msg("request")
	})
}

// allow runs the fixed-window check for scope keyed by the client ip and
// writes the 429 envelope itself on denial. A limiter backend failure fails
// open with a warning rather than blocking traffic.
func (s *Server) allow(w http.ResponseWriter, r *http.Request, scope string, max int, window time.Duration) bool {
	key := ratelimit.Key(scope, clientIP(r))
	ok, err := s.limiter.Allow(r.Context(), key, max, window)
	if err != nil {
		logging.With(r.Context(), s.log).Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable")
		return true
	}
	if ok {
		return true
	}

	metrics.IncRateLimited(scope)
	retry := int(math.Ceil(s.limiter.RetryAfter(r.Context(), key).Seconds()))
	if retry < 1 {
		retry = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	writeJSON(w, http.StatusTooManyRequests, envelope{
		"ok":         false,
		"error":      "rate_limit_exceeded",
		"message":    errorMessages["rate_limit_exceeded"],
		"retryAfter": retry,
	})
	return false
}

// clientIP resolves the caller address, honoring proxy headers when present.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		if ip := strings.TrimSpace(xff); ip != "" {
			return ip
		}
	}
	if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); xr != "" {
		return xr
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
