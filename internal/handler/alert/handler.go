package alert

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/oppe-api/internal/handler"
	"github.com/jwalitptl/oppe-api/internal/model"
	"github.com/jwalitptl/oppe-api/internal/service/alerting"
	apperrors "github.com/jwalitptl/oppe-api/pkg/errors"
)

type Handler struct {
	service *alerting.Service
}

func NewHandler(service *alerting.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	alerts := r.Group("/alerts")
	{
		alerts.GET("", h.ListAlerts)
		alerts.POST("/:id/acknowledge", h.Acknowledge)
	}
}

func (h *Handler) ListAlerts(c *gin.Context) {
	filters := &model.AlertFilters{}
	if id := c.Query("physician_id"); id != "" {
		physicianID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid physician ID"))
			return
		}
		filters.PhysicianID = physicianID
	}
	if v := c.Query("acknowledged"); v != "" {
		acknowledged, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid acknowledged filter"))
			return
		}
		filters.Acknowledged = &acknowledged
	}
	if err := c.ShouldBindQuery(&filters.Pagination); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	alerts, err := h.service.ListAlerts(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(alerts))
}

func (h *Handler) Acknowledge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid alert ID"))
		return
	}

	if err := h.service.Acknowledge(c.Request.Context(), id); err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("alert not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"acknowledged": true}))
}
