package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/flowgraphai/flowgraph/internal/models"
)

// ToolHandler serves tool node endpoints.
type ToolHandler struct {
	repo ToolRepository
	log  *logrus.Logger
}

// NewToolHandler creates a ToolHandler with the given repository and logger.
func NewToolHandler(repo ToolRepository, log *logrus.Logger) *ToolHandler {
	return &ToolHandler{repo: repo, log: log}
}

// List handles GET /api/v1/tools.
func (h *ToolHandler) List(c *gin.Context) {
	limit := parseInt(c.DefaultQuery("limit", "100"), 100)

	tools, err := h.repo.ListTools(c.Request.Context(), limit)
	if err != nil {
		h.log.WithError(err).Error("listing tools")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, gin.H{"tools": tools, "count": len(tools)})
}

// Get handles GET /api/v1/tools/:id.
func (h *ToolHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if err := validatePathID(id); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	tool, err := h.repo.GetTool(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrToolNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "tool not found")

			return
		}

		h.log.WithError(err).Error("getting tool")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, tool)
}
