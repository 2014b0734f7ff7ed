package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"invoiceflow/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db        Pinger
	cache     Pinger
	storage   Pinger
	startedAt time.Time
	timeout   time.Duration
}

// NewHealthHandlers creates a new health handlers instance. storage may be nil.
func NewHealthHandlers(db, cache, storage Pinger) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		cache:     cache,
		storage:   storage,
		startedAt: time.Now(),
		timeout:   3 * time.Second,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Services   map[string]string `json:"services"`
	Uptime     string            `json:"uptime"`
	Version    string            `json:"version"`
	Goroutines int               `json:"goroutines"`
}

func check(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

// HealthCheck performs comprehensive health checks
// @Summary Dependency health
// @Tags health
// @Produce json
// @Success 200 {object} HealthStatus
// @Router /health [get]
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	health := &HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Version:    middleware.Version,
		Goroutines: runtime.NumGoroutine(),
		Services: map[string]string{
			"database": check(ctx, h.db),
			"redis":    check(ctx, h.cache),
			"storage":  check(ctx, h.storage),
		},
	}
	for _, s := range health.Services {
		if s == "unhealthy" {
			health.Status = "degraded"
		}
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, health)
}

// ReadinessCheck determines if the application is ready to serve traffic.
// Only Postgres and Redis are critical.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if check(ctx, h.db) == "unhealthy" || check(ctx, h.cache) == "unhealthy" {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Critical services unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// LivenessCheck determines if the application is running (basic liveness probe)
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
