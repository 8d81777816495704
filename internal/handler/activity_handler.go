package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ddelizo/sis-api/internal/models"
	"github.com/ddelizo/sis-api/internal/service"
	"github.com/ddelizo/sis-api/pkg/response"
)

// ActivityHandler exposes the audit trail.
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler creates a new handler.
func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// List godoc
// @Summary List activity logs
// @Description List audit entries newest first, capped at the configured limit
// @Tags Activity
// @Produce json
// @Param user_id query string false "Filter by acting user"
// @Param action query string false "Filter by action"
// @Param entity_type query string false "Filter by entity type"
// @Param limit query int false "Row limit"
// @Success 200 {object} response.Envelope
// @Router /activity-logs [get]
func (h *ActivityHandler) List(c *gin.Context) {
	filter := models.ActivityLogFilter{
		UserID:     c.Query("user_id"),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))

	entries, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}
