package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/oppe-api/internal/model"
)

type scoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) *scoreRepository {
	return &scoreRepository{db: db}
}

// Insert appends a snapshot to the score time series. There is no update
// path: history is the audit trail.
func (r *scoreRepository) Insert(ctx context.Context, score *model.CompetencyScore) error {
	query := `
		INSERT INTO competency_scores (
			id, physician_id, competency_id, score, assessed_at, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	score.CreatedAt = time.Now()
	score.UpdatedAt = score.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		score.ID,
		score.PhysicianID,
		score.CompetencyID,
		score.Score,
		score.AssessedAt,
		score.Notes,
		score.CreatedAt,
		score.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert score snapshot: %w", err)
	}
	return nil
}

func (r *scoreRepository) GetLatest(ctx context.Context, physicianID, competencyID uuid.UUID) (*model.CompetencyScore, error) {
	query := `
		SELECT id, physician_id, competency_id, score, assessed_at, notes,
			   created_at, updated_at
		FROM competency_scores
		WHERE physician_id = $1 AND competency_id = $2
		ORDER BY assessed_at DESC
		LIMIT 1
	`
	var score model.CompetencyScore
	err := r.db.GetContext(ctx, &score, query, physicianID, competencyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest score: %w", err)
	}
	return &score, nil
}

func (r *scoreRepository) ListRecent(ctx context.Context, physicianID, competencyID uuid.UUID, limit int) ([]*model.CompetencyScore, error) {
	query := `
		SELECT id, physician_id, competency_id, score, assessed_at, notes,
			   created_at, updated_at
		FROM competency_scores
		WHERE physician_id = $1 AND competency_id = $2
		ORDER BY assessed_at DESC
		LIMIT $3
	`
	var scores []*model.CompetencyScore
	if err := r.db.SelectContext(ctx, &scores, query, physicianID, competencyID, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent scores: %w", err)
	}
	return scores, nil
}

func (r *scoreRepository) ListForPhysician(ctx context.Context, physicianID uuid.UUID) ([]*model.CompetencyScore, error) {
	query := `
		SELECT id, physician_id, competency_id, score, assessed_at, notes,
			   created_at, updated_at
		FROM competency_scores
		WHERE physician_id = $1
		ORDER BY assessed_at DESC
	`
	var scores []*model.CompetencyScore
	if err := r.db.SelectContext(ctx, &scores, query, physicianID); err != nil {
		return nil, fmt.Errorf("failed to list scores for physician: %w", err)
	}
	return scores, nil
}
