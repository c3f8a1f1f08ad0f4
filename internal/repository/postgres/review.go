package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/oppe-api/internal/model"
)

type reviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *reviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (
			id, case_id, reviewer_id, rating, technical_skill, judgment,
			communication, professionalism, comments, concerns, reviewed_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		review.ID,
		review.CaseID,
		review.ReviewerID,
		review.Rating,
		review.TechnicalSkill,
		review.Judgment,
		review.Communication,
		review.Professionalism,
		review.Comments,
		review.Concerns,
		review.ReviewedAt,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) List(ctx context.Context, filters *model.ReviewFilters) ([]*model.Review, error) {
	query := `
		SELECT id, case_id, reviewer_id, rating, technical_skill, judgment,
			   communication, professionalism, comments, concerns, reviewed_at,
			   created_at, updated_at
		FROM reviews
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.CaseID != uuid.Nil {
		query += fmt.Sprintf(" AND case_id = $%d", argCount)
		args = append(args, filters.CaseID)
		argCount++
	}
	if filters.ReviewerID != uuid.Nil {
		query += fmt.Sprintf(" AND reviewer_id = $%d", argCount)
		args = append(args, filters.ReviewerID)
		argCount++
	}

	filters.Normalize()
	query += fmt.Sprintf(" ORDER BY reviewed_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.Limit, filters.Offset)

	var reviews []*model.Review
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) ListForCases(ctx context.Context, caseIDs []uuid.UUID) ([]*model.Review, error) {
	if len(caseIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, case_id, reviewer_id, rating, technical_skill, judgment,
			   communication, professionalism, comments, concerns, reviewed_at,
			   created_at, updated_at
		FROM reviews
		WHERE case_id = ANY($1)
		ORDER BY reviewed_at ASC
	`
	var reviews []*model.Review
	if err := r.db.SelectContext(ctx, &reviews, query, pq.Array(caseIDs)); err != nil {
		return nil, fmt.Errorf("failed to list reviews for cases: %w", err)
	}
	return reviews, nil
}
