package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/flowgraphai/flowgraph/internal/models"
)

// GraphHandler serves graph read endpoints.
type GraphHandler struct {
	repo GraphRepository
	log  *logrus.Logger
}

// NewGraphHandler creates a GraphHandler with the given repository and logger.
func NewGraphHandler(repo GraphRepository, log *logrus.Logger) *GraphHandler {
	return &GraphHandler{repo: repo, log: log}
}

// GetGraph handles GET /api/v1/graph.
func (h *GraphHandler) GetGraph(c *gin.Context) {
	result, err := h.repo.GetGraph(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("getting graph")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, result)
}

// Neighbors handles GET /api/v1/graph/neighbors/:id.
func (h *GraphHandler) Neighbors(c *gin.Context) {
	toolID := c.Param("id")
	if err := validatePathID(toolID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	result, err := h.repo.Neighbors(c.Request.Context(), toolID)
	if err != nil {
		if errors.Is(err, models.ErrToolNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "tool not found")

			return
		}

		h.log.WithError(err).Error("getting neighbors")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStats handles GET /api/v1/stats.
func (h *GraphHandler) GetStats(c *gin.Context) {
	stats, err := h.repo.GetStats(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("getting stats")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, stats)
}
