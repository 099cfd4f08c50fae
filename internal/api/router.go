package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/sgkim/tradelens/internal/api/handlers"
	"github.com/sgkim/tradelens/pkg/config"
	"github.com/sgkim/tradelens/pkg/database"
	"github.com/sgkim/tradelens/pkg/logger"
	"github.com/sgkim/tradelens/pkg/redis"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, reportHandler *handlers.ReportHandler, db *database.DB, redisClient *redis.Client, limiter *redis.RateLimiter, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(db, redisClient)).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Report endpoints
	api.Handle("/reports", rateLimitMiddleware(cfg, limiter, log)(http.HandlerFunc(reportHandler.Create))).Methods("POST")
	api.HandleFunc("/reports/{id}", reportHandler.Get).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler reports server health plus dependency status.
func healthCheckHandler(db *database.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "unavailable"
		if db != nil {
			dbStatus = "ok"
			if err := db.Ping(ctx); err != nil {
				dbStatus = "error"
			}
		}

		redisStatus := "disabled"
		if redisClient != nil && redisClient.Enabled() {
			redisStatus = "ok"
			if err := redisClient.Ping(ctx); err != nil {
				redisStatus = "error"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ok",
			"service":  "tradelens-api",
			"database": dbStatus,
			"redis":    redisStatus,
		})
	}
}

// rateLimitMiddleware throttles report submissions per client IP. With
// Redis enabled the limit is shared across instances via a sliding
// window; otherwise a process-local token bucket applies.
func rateLimitMiddleware(cfg *config.Config, limiter *redis.RateLimiter, log *logger.Logger) mux.MiddlewareFunc {
	local := rate.NewLimiter(
		rate.Limit(float64(cfg.Report.RateLimit)/cfg.Report.RateWindow.Seconds()),
		cfg.Report.RateLimit,
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Redis.Enabled {
				allowed, _, err := limiter.Allow(r.Context(), redis.RateLimitConfig{
					Key:    clientIP(r),
					Limit:  cfg.Report.RateLimit,
					Window: cfg.Report.RateWindow,
				})
				if err != nil {
					log.WithError(err).Warn("Rate limit check failed, allowing request")
				} else if !allowed {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusTooManyRequests)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Too many requests",
					})
					return
				}
			} else if !local.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP derives the rate-limit key. X-Forwarded-For may carry a
// comma-separated hop chain; only the first entry is the client, and
// an unparsable value falls back to the socket address so a forged
// header cannot mint fresh keys.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := fwd
		if idx := strings.Index(fwd, ","); idx >= 0 {
			first = fwd[:idx]
		}
		first = strings.TrimSpace(first)
		if net.ParseIP(first) != nil {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
