package review

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/oppe-api/internal/handler"
	"github.com/jwalitptl/oppe-api/internal/model"
	"github.com/jwalitptl/oppe-api/internal/service/casereview"
	apperrors "github.com/jwalitptl/oppe-api/pkg/errors"
)

type Handler struct {
	service *casereview.Service
}

func NewHandler(service *casereview.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reviews := r.Group("/reviews")
	{
		reviews.POST("", h.CreateReview)
		reviews.GET("", h.ListReviews)
	}
}

func (h *Handler) CreateReview(c *gin.Context) {
	var req model.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	review := &model.Review{
		CaseID:          req.CaseID,
		ReviewerID:      req.ReviewerID,
		Rating:          req.Rating,
		TechnicalSkill:  req.TechnicalSkill,
		Judgment:        req.Judgment,
		Communication:   req.Communication,
		Professionalism: req.Professionalism,
		Comments:        req.Comments,
		Concerns:        req.Concerns,
	}

	if err := h.service.RecordReview(c.Request.Context(), review); err != nil {
		if errors.Is(err, apperrors.ErrCaseNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("case not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(review))
}

func (h *Handler) ListReviews(c *gin.Context) {
	filters := &model.ReviewFilters{}
	if id := c.Query("case_id"); id != "" {
		caseID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid case ID"))
			return
		}
		filters.CaseID = caseID
	}
	if id := c.Query("reviewer_id"); id != "" {
		reviewerID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid reviewer ID"))
			return
		}
		filters.ReviewerID = reviewerID
	}
	if err := c.ShouldBindQuery(&filters.Pagination); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	reviews, err := h.service.ListReviews(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(reviews))
}
