package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/flowgraphai/flowgraph/internal/models"
)

// CommunityHandler serves community hierarchy endpoints.
type CommunityHandler struct {
	repo CommunityRepository
	runs RunRepository
	log  *logrus.Logger
}

// NewCommunityHandler creates a CommunityHandler with the given repositories.
func NewCommunityHandler(repo CommunityRepository, runs RunRepository, log *logrus.Logger) *CommunityHandler {
	return &CommunityHandler{repo: repo, runs: runs, log: log}
}

// Levels handles GET /api/v1/runs/:id/levels.
func (h *CommunityHandler) Levels(c *gin.Context) {
	runID, ok := h.parseRunID(c)
	if !ok {
		return
	}

	levels, err := h.repo.Levels(c.Request.Context(), runID)
	if err != nil {
		h.log.WithError(err).Error("listing levels")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, gin.H{"levels": levels})
}

// List handles GET /api/v1/runs/:id/communities?level=N. Level defaults
// to 0, the finest partition.
func (h *CommunityHandler) List(c *gin.Context) {
	runID, ok := h.parseRunID(c)
	if !ok {
		return
	}

	level, err := strconv.Atoi(c.DefaultQuery("level", "0"))
	if err != nil || level < 0 {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "level must be a non-negative integer")

		return
	}

	h.list(c, runID, level)
}

// ListLatest handles GET /api/v1/communities?level=N against the most
// recent completed run.
func (h *CommunityHandler) ListLatest(c *gin.Context) {
	run, err := h.runs.LatestRun(c.Request.Context())
	if err != nil {
		if errors.Is(err, models.ErrRunNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "no completed run")

			return
		}

		h.log.WithError(err).Error("getting latest run")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	level, convErr := strconv.Atoi(c.DefaultQuery("level", "0"))
	if convErr != nil || level < 0 {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "level must be a non-negative integer")

		return
	}

	h.list(c, run.ID, level)
}

func (h *CommunityHandler) list(c *gin.Context, runID uuid.UUID, level int) {
	communities, err := h.repo.ListCommunities(c.Request.Context(), runID, level)
	if err != nil {
		h.log.WithError(err).Error("listing communities")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":      runID,
		"level":       level,
		"communities": communities,
		"count":       len(communities),
	})
}

// Get handles GET /api/v1/runs/:id/communities/:level/:label.
func (h *CommunityHandler) Get(c *gin.Context) {
	runID, ok := h.parseRunID(c)
	if !ok {
		return
	}

	level, err := strconv.Atoi(c.Param("level"))
	if err != nil || level < 0 {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "level must be a non-negative integer")

		return
	}

	label, err := strconv.Atoi(c.Param("label"))
	if err != nil || label < 0 {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "label must be a non-negative integer")

		return
	}

	community, err := h.repo.GetCommunity(c.Request.Context(), runID, level, label)
	if err != nil {
		if errors.Is(err, models.ErrCommunityNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "community not found")

			return
		}

		h.log.WithError(err).Error("getting community")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) parseRunID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "run id must be a UUID")

		return uuid.Nil, false
	}

	return id, true
}
