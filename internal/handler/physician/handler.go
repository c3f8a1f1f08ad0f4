package physician

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/oppe-api/internal/handler"
	"github.com/jwalitptl/oppe-api/internal/model"
	"github.com/jwalitptl/oppe-api/internal/service/physician"
	apperrors "github.com/jwalitptl/oppe-api/pkg/errors"
)

type Handler struct {
	service *physician.Service
}

func NewHandler(service *physician.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	physicians := r.Group("/physicians")
	{
		physicians.POST("", h.Register)
		physicians.GET("", h.List)
		physicians.GET("/:id", h.Get)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterPhysicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	physician, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(physician))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid physician ID"))
		return
	}

	physician, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("physician not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(physician))
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.PhysicianFilters{
		Role:      model.PhysicianRole(c.Query("role")),
		Specialty: c.Query("specialty"),
	}
	if err := c.ShouldBindQuery(&filters.Pagination); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	physicians, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(physicians))
}
