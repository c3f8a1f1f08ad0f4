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
	apperrors "github.com/jwalitptl/oppe-api/pkg/errors"
)

type competencyRepository struct {
	db *sqlx.DB
}

func NewCompetencyRepository(db *sqlx.DB) *competencyRepository {
	return &competencyRepository{db: db}
}

func (r *competencyRepository) Get(ctx context.Context, id uuid.UUID) (*model.Competency, error) {
	query := `
		SELECT id, name, description, category, minimum_score, created_at, updated_at
		FROM competencies
		WHERE id = $1
	`
	var competency model.Competency
	err := r.db.GetContext(ctx, &competency, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("competency", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competency: %w", err)
	}
	return &competency, nil
}

// Seed inserts the given competencies, skipping names that already exist,
// so repeated startups leave department-adjusted minimums untouched.
func (r *competencyRepository) Seed(ctx context.Context, competencies []*model.Competency) error {
	query := `
		INSERT INTO competencies (
			id, name, description, category, minimum_score, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (name) DO NOTHING
	`
	now := time.Now()
	for _, competency := range competencies {
		id := competency.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		if _, err := r.db.ExecContext(ctx, query,
			id,
			competency.Name,
			competency.Description,
			competency.Category,
			competency.MinimumScore,
			now,
		); err != nil {
			return fmt.Errorf("failed to seed competency %q: %w", competency.Name, err)
		}
	}
	return nil
}

func (r *competencyRepository) List(ctx context.Context) ([]*model.Competency, error) {
	query := `
		SELECT id, name, description, category, minimum_score, created_at, updated_at
		FROM competencies
		ORDER BY category ASC
	`
	var competencies []*model.Competency
	if err := r.db.SelectContext(ctx, &competencies, query); err != nil {
		return nil, fmt.Errorf("failed to list competencies: %w", err)
	}
	return competencies, nil
}
