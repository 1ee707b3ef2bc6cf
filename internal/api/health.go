// Package api provides HTTP handlers for flowgraph.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/flowgraphai/flowgraph/internal/dbpool"
	"github.com/flowgraphai/flowgraph/internal/ws"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	pool       *dbpool.Pool
	hub        *ws.Hub
	log        *logrus.Logger
	httpClient *http.Client
	version    string
	startTime  time.Time
	ollamaURL  string
	galaxyURL  string
}

// NewHealthHandler creates a HealthHandler with the given dependencies.
func NewHealthHandler(pool *dbpool.Pool, hub *ws.Hub, log *logrus.Logger, version, ollamaURL, galaxyURL string) *HealthHandler {
	return &HealthHandler{
		pool:       pool,
		hub:        hub,
		log:        log,
		httpClient: &http.Client{Timeout: 2 * time.Second},
		version:    version,
		startTime:  time.Now(),
		ollamaURL:  ollamaURL,
		galaxyURL:  galaxyURL,
	}
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthResponse is the JSON payload returned by the health/liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	Galaxy        string  `json:"galaxy"`
	Clients       int     `json:"websocket_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Liveness handles GET /api/v1/health — returns status with db and uptime info.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Database:      "connected",
		Galaxy:        "not_configured",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	// Best-effort database ping (non-fatal for liveness).
	if h.pool != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.pool.HealthCheck(ctx); err != nil {
			resp.Database = "disconnected"
		}
	} else {
		resp.Database = "not_configured"
	}

	if h.galaxyURL != "" {
		resp.Galaxy = "configured"
	}

	if h.hub != nil {
		resp.Clients = h.hub.ClientCount()
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/v1/ready — checks DB, schema, and Ollama.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{
		"database": "ok",
		"schema":   "ok",
		"ollama":   "ok",
	}
	status := "ready"
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	// Check database connectivity.
	if err := h.pool.HealthCheck(ctx); err != nil {
		h.log.WithError(err).Error("readiness: database health check failed")
		checks["database"] = "error"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	// Check schema by querying the tools table.
	if checks["database"] == "ok" {
		if err := h.checkSchema(ctx); err != nil {
			h.log.WithError(err).Error("readiness: schema check failed")
			checks["schema"] = "error"
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
		}
	} else {
		checks["schema"] = "unknown"
	}

	// Check Ollama (best-effort; embeddings and summaries degrade gracefully).
	if err := h.checkOllama(); err != nil {
		h.log.WithError(err).Warn("readiness: ollama check failed")
		checks["ollama"] = "degraded"
	}

	c.JSON(statusCode, readinessResponse{
		Status: status,
		Checks: checks,
	})
}

// checkSchema verifies the database schema by querying the tools table.
func (h *HealthHandler) checkSchema(ctx context.Context) error {
	var count int
	err := h.pool.QueryRow(ctx, "SELECT COUNT(*) FROM fg_tools").Scan(&count)
	if err != nil {
		return fmt.Errorf("schema check: %w", err)
	}

	return nil
}

// checkOllama does a best-effort connectivity check to the Ollama API.
func (h *HealthHandler) checkOllama() error {
	if h.ollamaURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.ollamaURL+"/api/version", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	return nil
}
