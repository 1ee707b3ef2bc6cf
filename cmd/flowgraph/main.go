// Command flowgraph runs the workflow co-occurrence graph server: it
// extracts tool and workflow records from a Galaxy instance, assembles the
// weighted co-occurrence graph, detects hierarchical communities, and serves
// the results over a REST and WebSocket API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flowgraphai/flowgraph/internal/api"
	"github.com/flowgraphai/flowgraph/internal/config"
	"github.com/flowgraphai/flowgraph/internal/dbpool"
	"github.com/flowgraphai/flowgraph/internal/leiden"
	"github.com/flowgraphai/flowgraph/internal/models"
	"github.com/flowgraphai/flowgraph/internal/service"
	"github.com/flowgraphai/flowgraph/internal/source"
	"github.com/flowgraphai/flowgraph/internal/store"
	"github.com/flowgraphai/flowgraph/internal/ws"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
	embedQueueSize    = 1000
)

// noSource stands in when no Galaxy instance is configured. Pipeline runs
// fail with a clear error instead of a nil dereference.
type noSource struct{}

func (noSource) FetchTools(context.Context) ([]models.Tool, error) {
	return nil, errors.New("GALAXY_URL is not configured")
}

func (noSource) FetchWorkflows(context.Context) ([]models.WorkflowRecord, error) {
	return nil, errors.New("GALAXY_URL is not configured")
}

// backfillEmbeddings enqueues embedding jobs for tools persisted by earlier
// runs that never got a vector (worker restarts, Ollama outages).
func backfillEmbeddings(ctx context.Context, tools *store.ToolStore, worker *service.EmbedWorker, log *logrus.Logger) {
	pending, err := tools.ToolsWithoutEmbedding(ctx)
	if err != nil {
		log.WithError(err).Warn("embedding backfill scan failed")
		return
	}
	if len(pending) == 0 {
		return
	}

	log.WithField("count", len(pending)).Info("backfilling tool embeddings")
	for _, t := range pending {
		worker.Enqueue(service.EmbedJob{ToolID: t.ID, Text: t.EmbeddingText()})
	}
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Fatal("parsing LOG_LEVEL")
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
	if err != nil {
		log.WithError(err).Fatal("connecting to database")
	}
	defer pool.Close()

	base := store.Base{Pool: pool, Log: log}
	if err := base.EnsureSchema(ctx); err != nil {
		log.WithError(err).Fatal("ensuring database schema")
	}

	toolStore := store.NewToolStore(base)
	edgeStore := store.NewEdgeStore(base)
	graphStore := store.NewGraphStore(base)
	runStore := store.NewRunStore(base)
	communityStore := store.NewCommunityStore(base)

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	embedSvc := service.NewEmbeddingService(cfg.OllamaURL, cfg.EmbeddingModel)
	embedWorker := service.NewEmbedWorker(embedSvc, toolStore, log, embedQueueSize, cfg.EmbedWorkers)
	go embedWorker.Run(ctx)
	go backfillEmbeddings(ctx, toolStore, embedWorker, log)

	summarizer := service.NewSummarizerService(cfg.OllamaURL, cfg.SummaryModel)

	var recordSource service.RecordSource = noSource{}
	if cfg.GalaxyURL != "" {
		recordSource = source.NewGalaxyClient(cfg.GalaxyURL, cfg.GalaxyAPIKey.Value(), log)
	} else {
		log.Warn("GALAXY_URL not set, pipeline runs are disabled")
	}

	pipeline := service.NewPipelineService(
		service.PipelineConfig{
			EdgeIncrement: cfg.EdgeIncrement,
			Leiden: leiden.Config{
				Resolution:     cfg.Resolution,
				MaxLocalPasses: cfg.MaxLocalPasses,
				MaxLevels:      cfg.MaxLevels,
			},
		},
		recordSource,
		toolStore,
		edgeStore,
		runStore,
		communityStore,
		summarizer,
		embedWorker,
		hub,
		log,
	)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		Hub:         hub,
		Tools:       toolStore,
		Graph:       graphStore,
		Runs:        runStore,
		Communities: communityStore,
		Pipeline:    pipeline,
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
		OllamaURL:   cfg.OllamaURL,
		GalaxyURL:   cfg.GalaxyURL,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Addr(),
			"version": config.Version,
		}).Info("server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}

	hub.Shutdown()
	log.Info("server stopped")
}
