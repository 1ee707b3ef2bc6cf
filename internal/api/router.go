package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/flowgraphai/flowgraph/internal/dbpool"
	"github.com/flowgraphai/flowgraph/internal/middleware"
	"github.com/flowgraphai/flowgraph/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Pool        *dbpool.Pool
	Hub         *ws.Hub
	Tools       ToolRepository
	Graph       GraphRepository
	Runs        RunRepository
	Communities CommunityRepository
	Pipeline    PipelineRunner
	CORSOrigins []string
	Version     string
	OllamaURL   string
	GalaxyURL   string
}

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (outside the API group, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, deps.Hub, log, deps.Version, deps.OllamaURL, deps.GalaxyURL)
	tools := NewToolHandler(deps.Tools, log)
	graph := NewGraphHandler(deps.Graph, log)
	runs := NewRunHandler(ctx, deps.Pipeline, deps.Runs, log)
	communities := NewCommunityHandler(deps.Communities, deps.Runs, log)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Tools.
	api.GET("/tools", tools.List)
	api.GET("/tools/:id", tools.Get)

	// Graph reads.
	api.GET("/graph", graph.GetGraph)
	api.GET("/graph/neighbors/:id", graph.Neighbors)
	api.GET("/stats", graph.GetStats)

	// Pipeline runs.
	api.POST("/runs", runs.Trigger)
	api.GET("/runs", runs.List)
	api.GET("/runs/latest", runs.Latest)
	api.GET("/runs/:id", runs.Get)

	// Community hierarchy.
	api.GET("/runs/:id/levels", communities.Levels)
	api.GET("/runs/:id/communities", communities.List)
	api.GET("/runs/:id/communities/:level/:label", communities.Get)
	api.GET("/communities", communities.ListLatest)

	// WebSocket endpoint for run events.
	api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins))
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
