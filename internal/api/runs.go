package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/flowgraphai/flowgraph/internal/models"
)

// RunHandler serves pipeline run endpoints.
type RunHandler struct {
	appCtx   context.Context
	pipeline PipelineRunner
	repo     RunRepository
	log      *logrus.Logger
}

// NewRunHandler creates a RunHandler. appCtx outlives individual requests
// so a triggered run survives the HTTP request that started it.
func NewRunHandler(appCtx context.Context, pipeline PipelineRunner, repo RunRepository, log *logrus.Logger) *RunHandler {
	return &RunHandler{appCtx: appCtx, pipeline: pipeline, repo: repo, log: log}
}

// Trigger handles POST /api/v1/runs. The pipeline executes in the
// background; progress is observable via GET /runs and the WebSocket
// event stream.
func (h *RunHandler) Trigger(c *gin.Context) {
	inProgress, err := h.repo.RunInProgress(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("checking run state")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	if inProgress {
		respondError(c, http.StatusConflict, ErrCodeConflict, "a run is already in progress")

		return
	}

	go func() {
		if _, err := h.pipeline.Run(h.appCtx); err != nil {
			if errors.Is(err, models.ErrRunInProgress) {
				return // lost the race to another trigger
			}
			h.log.WithError(err).Error("background pipeline run failed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// List handles GET /api/v1/runs.
func (h *RunHandler) List(c *gin.Context) {
	limit := parseInt(c.DefaultQuery("limit", "20"), 20)

	runs, err := h.repo.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.log.WithError(err).Error("listing runs")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// Latest handles GET /api/v1/runs/latest.
func (h *RunHandler) Latest(c *gin.Context) {
	run, err := h.repo.LatestRun(c.Request.Context())
	if err != nil {
		if errors.Is(err, models.ErrRunNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "no completed run")

			return
		}

		h.log.WithError(err).Error("getting latest run")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, run)
}

// Get handles GET /api/v1/runs/:id.
func (h *RunHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "run id must be a UUID")

		return
	}

	run, err := h.repo.GetRun(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrRunNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "run not found")

			return
		}

		h.log.WithError(err).Error("getting run")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, run)
}
