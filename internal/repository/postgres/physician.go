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

type physicianRepository struct {
	db *sqlx.DB
}

func NewPhysicianRepository(db *sqlx.DB) *physicianRepository {
	return &physicianRepository{db: db}
}

func (r *physicianRepository) Create(ctx context.Context, physician *model.Physician) error {
	query := `
		INSERT INTO physicians (
			id, email, password_hash, name, role, specialty,
			npi, license_number, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	physician.CreatedAt = time.Now()
	physician.UpdatedAt = physician.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		physician.ID,
		physician.Email,
		physician.PasswordHash,
		physician.Name,
		physician.Role,
		physician.Specialty,
		physician.NPI,
		physician.LicenseNumber,
		physician.CreatedAt,
		physician.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create physician: %w", err)
	}
	return nil
}

func (r *physicianRepository) Get(ctx context.Context, id uuid.UUID) (*model.Physician, error) {
	query := `
		SELECT id, email, password_hash, name, role, specialty,
			   npi, license_number, created_at, updated_at
		FROM physicians
		WHERE id = $1
	`
	var physician model.Physician
	err := r.db.GetContext(ctx, &physician, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrPhysicianNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get physician: %w", err)
	}
	return &physician, nil
}

func (r *physicianRepository) GetByEmail(ctx context.Context, email string) (*model.Physician, error) {
	query := `
		SELECT id, email, password_hash, name, role, specialty,
			   npi, license_number, created_at, updated_at
		FROM physicians
		WHERE email = $1
	`
	var physician model.Physician
	err := r.db.GetContext(ctx, &physician, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrPhysicianNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get physician by email: %w", err)
	}
	return &physician, nil
}

func (r *physicianRepository) List(ctx context.Context, filters *model.PhysicianFilters) ([]*model.Physician, error) {
	query := `
		SELECT id, email, password_hash, name, role, specialty,
			   npi, license_number, created_at, updated_at
		FROM physicians
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.Role != "" {
		query += fmt.Sprintf(" AND role = $%d", argCount)
		args = append(args, filters.Role)
		argCount++
	}
	if filters.Specialty != "" {
		query += fmt.Sprintf(" AND specialty = $%d", argCount)
		args = append(args, filters.Specialty)
		argCount++
	}

	filters.Normalize()
	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.Limit, filters.Offset)

	var physicians []*model.Physician
	if err := r.db.SelectContext(ctx, &physicians, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list physicians: %w", err)
	}
	return physicians, nil
}

func (r *physicianRepository) ListActiveSince(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT p.id
		FROM physicians p
		JOIN cases c ON c.physician_id = p.id
		WHERE p.role = $1 AND c.occurred_at >= $2
	`
	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, model.RolePhysician, since); err != nil {
		return nil, fmt.Errorf("failed to list active physicians: %w", err)
	}
	return ids, nil
}
