package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"ledger/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady pings the store before declaring the instance ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{}

	if s.store == nil {
		checks["store"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else if err := s.store.Ping(ctx); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentHTTP).WarnContext(ctx, "Readiness check failed",
			log.FieldError, err.Error())
		checks["store"] = "failed"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	writeMetric(w, "http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	writeMetric(w, "http_last_response_time_microseconds", "gauge", "Duration of the most recent request", traceMetrics.AverageResponseTime)
	writeMetric(w, "transactions_written_total", "counter", "Transactions created, updated or deleted", atomic.LoadInt64(&s.appMetrics.transactionsWritten))
	writeMetric(w, "auth_failures_total", "counter", "Rejected sign-in attempts", atomic.LoadInt64(&s.appMetrics.authFailures))
	writeMetric(w, "rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", rateLimitMetrics.TotalHits)
	writeMetric(w, "rate_limit_active_clients", "gauge", "Clients tracked by the rate limiter", rateLimitMetrics.ClientCount)
	writeMetric(w, "suspicious_requests_total", "counter", "Requests flagged by the security detector", securityMetrics.SuspiciousRequests)
	writeMetric(w, "uptime_seconds", "gauge", "Seconds since the server started", int64(time.Since(s.appMetrics.uptime).Seconds()))
}

func writeMetric(w http.ResponseWriter, name, kind, help string, value int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(w, "%s %d\n\n", name, value)
}
