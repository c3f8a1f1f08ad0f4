package score

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/oppe-api/internal/handler"
	"github.com/jwalitptl/oppe-api/internal/service/scoring"
)

type Handler struct {
	service *scoring.Service
}

func NewHandler(service *scoring.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/competencies", h.ListCompetencies)

	scores := r.Group("/physicians/:id/scores")
	{
		scores.GET("", h.LatestScores)
		scores.GET("/history", h.History)
	}
}

// LatestScores returns the current snapshot per competency for a physician,
// alongside the previous one where a physician has assessment history.
func (h *Handler) LatestScores(c *gin.Context) {
	physicianID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid physician ID"))
		return
	}

	entries, err := h.service.LatestScores(c.Request.Context(), physicianID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}

func (h *Handler) History(c *gin.Context) {
	physicianID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid physician ID"))
		return
	}

	scores, err := h.service.History(c.Request.Context(), physicianID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(scores))
}

func (h *Handler) ListCompetencies(c *gin.Context) {
	competencies, err := h.service.Competencies(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(competencies))
}
