package model

import (
	"time"

	"github.com/google/uuid"
)

// ReviewDimension names an optional sub-score on a peer review.
type ReviewDimension string

const (
	DimensionTechnicalSkill  ReviewDimension = "technical_skill"
	DimensionJudgment        ReviewDimension = "judgment"
	DimensionCommunication   ReviewDimension = "communication"
	DimensionProfessionalism ReviewDimension = "professionalism"
)

// Review is a peer review of a case. Immutable once created; a case may
// accumulate any number of reviews.
type Review struct {
	Base
	CaseID          uuid.UUID `db:"case_id" json:"case_id"`
	ReviewerID      uuid.UUID `db:"reviewer_id" json:"reviewer_id"`
	Rating          int       `db:"rating" json:"rating"`
	TechnicalSkill  *int      `db:"technical_skill" json:"technical_skill,omitempty"`
	Judgment        *int      `db:"judgment" json:"judgment,omitempty"`
	Communication   *int      `db:"communication" json:"communication,omitempty"`
	Professionalism *int      `db:"professionalism" json:"professionalism,omitempty"`
	Comments        string    `db:"comments" json:"comments,omitempty"`
	Concerns        string    `db:"concerns" json:"concerns,omitempty"`
	ReviewedAt      time.Time `db:"reviewed_at" json:"reviewed_at"`
}

// SubScore returns the rating for one dimension, if present.
func (r *Review) SubScore(dim ReviewDimension) (int, bool) {
	var v *int
	switch dim {
	case DimensionTechnicalSkill:
		v = r.TechnicalSkill
	case DimensionJudgment:
		v = r.Judgment
	case DimensionCommunication:
		v = r.Communication
	case DimensionProfessionalism:
		v = r.Professionalism
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

type CreateReviewRequest struct {
	CaseID          uuid.UUID `json:"case_id" binding:"required"`
	ReviewerID      uuid.UUID `json:"reviewer_id" binding:"required"`
	Rating          int       `json:"rating" binding:"required,min=1,max=5"`
	TechnicalSkill  *int      `json:"technical_skill" binding:"omitempty,min=1,max=5"`
	Judgment        *int      `json:"judgment" binding:"omitempty,min=1,max=5"`
	Communication   *int      `json:"communication" binding:"omitempty,min=1,max=5"`
	Professionalism *int      `json:"professionalism" binding:"omitempty,min=1,max=5"`
	Comments        string    `json:"comments" binding:"omitempty,max=4000"`
	Concerns        string    `json:"concerns" binding:"omitempty,max=4000"`
}

type ReviewFilters struct {
	CaseID     uuid.UUID
	ReviewerID uuid.UUID
	Pagination
}
