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

type alertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) *alertRepository {
	return &alertRepository{db: db}
}

// Upsert relies on the partial unique index
//
//	CREATE UNIQUE INDEX alerts_open_physician_type
//	  ON alerts (physician_id, type) WHERE NOT acknowledged
//
// so concurrent evaluator runs for the same (physician, type) cannot race
// into duplicate unacknowledged rows; the conflicting writer updates the
// existing row instead.
func (r *alertRepository) Upsert(ctx context.Context, alert *model.Alert) (*model.Alert, error) {
	query := `
		INSERT INTO alerts (
			id, physician_id, severity, type, message, details,
			acknowledged, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, false, $7, $7)
		ON CONFLICT (physician_id, type) WHERE NOT acknowledged
		DO UPDATE SET
			severity = EXCLUDED.severity,
			message = EXCLUDED.message,
			details = EXCLUDED.details,
			updated_at = EXCLUDED.updated_at
		RETURNING id, physician_id, severity, type, message, details,
				  acknowledged, acknowledged_at, created_at, updated_at
	`
	now := time.Now()
	var stored model.Alert
	err := r.db.GetContext(ctx, &stored, query,
		alert.ID,
		alert.PhysicianID,
		alert.Severity,
		alert.Type,
		alert.Message,
		alert.Details,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert alert: %w", err)
	}
	return &stored, nil
}

func (r *alertRepository) Get(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	query := `
		SELECT id, physician_id, severity, type, message, details,
			   acknowledged, acknowledged_at, created_at, updated_at
		FROM alerts
		WHERE id = $1
	`
	var alert model.Alert
	err := r.db.GetContext(ctx, &alert, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("alert", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &alert, nil
}

func (r *alertRepository) List(ctx context.Context, filters *model.AlertFilters) ([]*model.Alert, error) {
	query := `
		SELECT id, physician_id, severity, type, message, details,
			   acknowledged, acknowledged_at, created_at, updated_at
		FROM alerts
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.PhysicianID != uuid.Nil {
		query += fmt.Sprintf(" AND physician_id = $%d", argCount)
		args = append(args, filters.PhysicianID)
		argCount++
	}
	if filters.Acknowledged != nil {
		query += fmt.Sprintf(" AND acknowledged = $%d", argCount)
		args = append(args, *filters.Acknowledged)
		argCount++
	}

	filters.Normalize()
	query += fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.Limit, filters.Offset)

	var alerts []*model.Alert
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (r *alertRepository) Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE alerts
		SET acknowledged = true, acknowledged_at = $1, updated_at = $1
		WHERE id = $2 AND NOT acknowledged
	`
	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("unacknowledged alert", nil)
	}
	return nil
}
