// Package http serves the dashboard comparison API: chart and
// dashboard metadata plus the comparison endpoints that resolve date
// ranges, fetch rows and aggregate them.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"cruscotto/internal/charts"
	"cruscotto/internal/core"
	"cruscotto/internal/rows"
	"cruscotto/internal/services"
)

type Server struct {
	http.Server
	store       charts.Store
	source      rows.Source
	compare     *services.CompareService
	rateLimiter *rateLimiter

	// Per-chart fetched windows with eviction policy
	seriesCache *seriesCache

	// Cache cleanup management
	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes and caches, returning a ready-to-run
// http.Server. The clock anchors the Previous Month preset; pass nil
// for the wall clock.
func NewServer(addr string, store charts.Store, source rows.Source, clock func() time.Time, cacheSize int, cacheTTL time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:            store,
		source:           source,
		compare:          services.NewCompareService(store, source, clock),
		rateLimiter:      newRateLimiter(),
		seriesCache:      newSeriesCache(cacheSize, cacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	// Start periodic cache cleanup
	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/dashboard/", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("/chart/", s.withSecurityHeaders(s.handleChart))

	return s
}

// startCacheCleanup runs periodic cleanup for the series cache
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := s.seriesCache.CleanExpired()
			if cleaned > 0 {
				slog.Debug("Cache cleanup completed", "series_entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	// Ensure shutdown logic runs only once
	s.shutdownOnce.Do(func() {
		// Stop cache cleanup goroutine
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}

		// Stop rate limiter cleanup goroutine
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		// Shutdown HTTP server
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// InvalidateChart drops the chart's cached window, or every window when
// chartID is empty. Called from the refresh event consumer.
func (s *Server) InvalidateChart(chartID string) {
	if chartID == "" {
		s.seriesCache.InvalidateAll()
		return
	}
	s.seriesCache.Invalidate(chartID)
}

// getRows returns rows covering the required window, serving from the
// cache when the cached window already covers it. A fetch that loses
// the race against a newer one is returned to its caller but not
// cached.
func (s *Server) getRows(ctx context.Context, chart charts.Chart, required core.DateRange) ([]core.RawPoint, error) {
	if entry, found := s.seriesCache.Get(chart.ID); found && !core.NeedsRefetch(entry.window, required) {
		slog.DebugContext(ctx, "Series cache hit", "chart_id", chart.ID, "from", entry.window.From, "to", entry.window.To)
		return entry.rows, nil
	}

	seq := s.seriesCache.Begin(chart.ID)

	// Add a timeout to avoid hanging the comparison view
	cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	fetched, err := s.source.FetchRows(cctx, chart, required)
	if err != nil {
		return nil, fmt.Errorf("fetch rows for chart %q: %w", chart.ID, err)
	}

	if !s.seriesCache.Store(chart.ID, seq, seriesEntry{window: required, rows: fetched}) {
		slog.DebugContext(ctx, "Discarded stale series fetch", "chart_id", chart.ID, "seq", seq)
	}
	return fetched, nil
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		// Generate request ID for tracing
		requestID := generateRequestID()

		// Add request context with metadata and request ID
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Apply rate limiting to comparison requests (they fan out to the row source)
		if strings.HasSuffix(r.URL.Path, "/compare") && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Create a custom response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		// Log request completion
		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
