package caserecord

import (
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
	cases := r.Group("/cases")
	{
		cases.POST("", h.CreateCase)
		cases.GET("", h.ListCases)
		cases.GET("/:id", h.GetCase)
	}
}

func (h *Handler) CreateCase(c *gin.Context) {
	var req model.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	caseRecord := &model.Case{
		PhysicianID:   req.PhysicianID,
		PatientMRN:    req.PatientMRN,
		CaseType:      req.CaseType,
		ProcedureCode: req.ProcedureCode,
		Diagnosis:     req.Diagnosis,
		Outcome:       req.Outcome,
		Complications: req.Complications,
		OccurredAt:    req.OccurredAt,
		Notes:         req.Notes,
	}

	if err := h.service.CreateCase(c.Request.Context(), caseRecord); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(caseRecord))
}

func (h *Handler) GetCase(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid case ID"))
		return
	}

	caseRecord, err := h.service.GetCase(c.Request.Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("case not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(caseRecord))
}

func (h *Handler) ListCases(c *gin.Context) {
	filters := &model.CaseFilters{
		Status: model.ReviewStatus(c.Query("status")),
	}
	if id := c.Query("physician_id"); id != "" {
		physicianID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid physician ID"))
			return
		}
		filters.PhysicianID = physicianID
	}
	if err := c.ShouldBindQuery(&filters.Pagination); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	cases, err := h.service.ListCases(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(cases))
}
