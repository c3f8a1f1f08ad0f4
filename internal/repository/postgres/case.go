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

type caseRepository struct {
	db *sqlx.DB
}

func NewCaseRepository(db *sqlx.DB) *caseRepository {
	return &caseRepository{db: db}
}

func (r *caseRepository) Create(ctx context.Context, c *model.Case) error {
	query := `
		INSERT INTO cases (
			id, physician_id, patient_mrn, case_type, procedure_code,
			diagnosis, outcome, complications, occurred_at, review_status,
			notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.PhysicianID,
		c.PatientMRN,
		c.CaseType,
		c.ProcedureCode,
		c.Diagnosis,
		c.Outcome,
		c.Complications,
		c.OccurredAt,
		c.ReviewStatus,
		c.Notes,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}
	return nil
}

func (r *caseRepository) Get(ctx context.Context, id uuid.UUID) (*model.Case, error) {
	query := `
		SELECT id, physician_id, patient_mrn, case_type, procedure_code,
			   diagnosis, outcome, complications, occurred_at, review_status,
			   notes, created_at, updated_at
		FROM cases
		WHERE id = $1
	`
	var c model.Case
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrCaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return &c, nil
}

func (r *caseRepository) List(ctx context.Context, filters *model.CaseFilters) ([]*model.Case, error) {
	query := `
		SELECT id, physician_id, patient_mrn, case_type, procedure_code,
			   diagnosis, outcome, complications, occurred_at, review_status,
			   notes, created_at, updated_at
		FROM cases
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.PhysicianID != uuid.Nil {
		query += fmt.Sprintf(" AND physician_id = $%d", argCount)
		args = append(args, filters.PhysicianID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND review_status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	filters.Normalize()
	query += fmt.Sprintf(" ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.Limit, filters.Offset)

	var cases []*model.Case
	if err := r.db.SelectContext(ctx, &cases, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, nil
}

func (r *caseRepository) ListInWindow(ctx context.Context, physicianID uuid.UUID, since time.Time) ([]*model.Case, error) {
	query := `
		SELECT id, physician_id, patient_mrn, case_type, procedure_code,
			   diagnosis, outcome, complications, occurred_at, review_status,
			   notes, created_at, updated_at
		FROM cases
		WHERE physician_id = $1 AND occurred_at >= $2
		ORDER BY occurred_at ASC
	`
	var cases []*model.Case
	if err := r.db.SelectContext(ctx, &cases, query, physicianID, since); err != nil {
		return nil, fmt.Errorf("failed to list cases in window: %w", err)
	}
	return cases, nil
}

// TransitionStatus is a conditional update: the WHERE clause on the current
// status makes concurrent callers race safely, with exactly one observing
// the transition.
func (r *caseRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.ReviewStatus) (bool, error) {
	query := `
		UPDATE cases
		SET review_status = $1, updated_at = $2
		WHERE id = $3 AND review_status = $4
	`
	result, err := r.db.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition case status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	// No transition: distinguish an already-transitioned case from a
	// missing one.
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM cases WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("failed to check case existence: %w", err)
	}
	if !exists {
		return false, apperrors.ErrCaseNotFound
	}
	return false, nil
}
