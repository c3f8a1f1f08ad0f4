package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/oppe-api/internal/model"
)

// All repository interfaces in one file
type (
	PhysicianRepository interface {
		Create(ctx context.Context, physician *model.Physician) error
		Get(ctx context.Context, id uuid.UUID) (*model.Physician, error)
		GetByEmail(ctx context.Context, email string) (*model.Physician, error)
		List(ctx context.Context, filters *model.PhysicianFilters) ([]*model.Physician, error)
		// ListActiveSince returns IDs of physicians with at least one case
		// dated on or after since. Used to scope the periodic sweep.
		ListActiveSince(ctx context.Context, since time.Time) ([]uuid.UUID, error)
	}

	CaseRepository interface {
		Create(ctx context.Context, c *model.Case) error
		Get(ctx context.Context, id uuid.UUID) (*model.Case, error)
		List(ctx context.Context, filters *model.CaseFilters) ([]*model.Case, error)
		ListInWindow(ctx context.Context, physicianID uuid.UUID, since time.Time) ([]*model.Case, error)
		// TransitionStatus moves a case from one review status to another.
		// It reports whether the row actually transitioned; false with a nil
		// error means the case was already past the from status.
		TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.ReviewStatus) (bool, error)
	}

	ReviewRepository interface {
		Create(ctx context.Context, review *model.Review) error
		List(ctx context.Context, filters *model.ReviewFilters) ([]*model.Review, error)
		ListForCases(ctx context.Context, caseIDs []uuid.UUID) ([]*model.Review, error)
	}

	CompetencyRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Competency, error)
		List(ctx context.Context) ([]*model.Competency, error)
	}

	ScoreRepository interface {
		// Insert appends a snapshot. Existing snapshots are never updated.
		Insert(ctx context.Context, score *model.CompetencyScore) error
		GetLatest(ctx context.Context, physicianID, competencyID uuid.UUID) (*model.CompetencyScore, error)
		// ListRecent returns up to limit snapshots, most recent first.
		ListRecent(ctx context.Context, physicianID, competencyID uuid.UUID, limit int) ([]*model.CompetencyScore, error)
		ListForPhysician(ctx context.Context, physicianID uuid.UUID) ([]*model.CompetencyScore, error)
	}

	AlertRepository interface {
		// Upsert atomically creates an alert or, when an unacknowledged
		// alert with the same (physician, type) exists, updates its
		// severity, message, details and timestamp. Returns the stored row.
		Upsert(ctx context.Context, alert *model.Alert) (*model.Alert, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Alert, error)
		List(ctx context.Context, filters *model.AlertFilters) ([]*model.Alert, error)
		Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) error
	}
)
