package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/oppe-api/internal/repository"
	"github.com/jwalitptl/oppe-api/internal/service/alerting"
	"github.com/jwalitptl/oppe-api/internal/service/scoring"
	apperrors "github.com/jwalitptl/oppe-api/pkg/errors"
	"github.com/jwalitptl/oppe-api/pkg/logger"
	"github.com/jwalitptl/oppe-api/pkg/metrics"
)

// UnitError records one failed unit of work without aborting the sweep.
type UnitError struct {
	PhysicianID uuid.UUID
	Err         error
}

func (e UnitError) Error() string {
	return fmt.Sprintf("physician %s: %v", e.PhysicianID, e.Err)
}

// Summary reports one sweep run.
type Summary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Physicians int
	Snapshots  int
	Skipped    int
	Failures   []UnitError
}

// Sweeper recomputes scores and re-evaluates alert rules for every
// physician with in-window activity. Each physician is one self-contained
// unit of work: failures are isolated into the summary, and cancellation
// is honored on unit boundaries so no partial state is left behind.
type Sweeper struct {
	physicians repository.PhysicianRepository
	scoring    *scoring.Service
	alerting   *alerting.Service
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

func NewSweeper(
	physicians repository.PhysicianRepository,
	scoringSvc *scoring.Service,
	alertingSvc *alerting.Service,
	log *logger.Logger,
	m *metrics.Metrics,
) *Sweeper {
	return &Sweeper{
		physicians: physicians,
		scoring:    scoringSvc,
		alerting:   alertingSvc,
		logger:     log,
		metrics:    m,
	}
}

// Run executes one sweep as of the given timestamp. The returned error is
// non-nil only when the sweep could not start at all; per-physician
// failures land in the summary.
func (s *Sweeper) Run(ctx context.Context, asOf time.Time) (*Summary, error) {
	summary := &Summary{StartedAt: time.Now()}

	ids, err := s.physicians.ListActiveSince(ctx, s.scoring.WindowStart(asOf))
	if err != nil {
		return nil, fmt.Errorf("failed to list physicians for sweep: %w", err)
	}
	summary.Physicians = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = time.Now()
			return summary, err
		}

		snapshots, err := s.runUnit(ctx, id, asOf)
		if err != nil {
			summary.Failures = append(summary.Failures, UnitError{PhysicianID: id, Err: err})
			if s.metrics != nil {
				s.metrics.SweepUnitsFailed.Inc()
			}
			s.logger.ZL.Error().Err(err).Str("physician_id", id.String()).Msg("sweep unit failed")
			continue
		}
		if snapshots == 0 {
			summary.Skipped++
			continue
		}
		summary.Snapshots += snapshots
	}

	summary.FinishedAt = time.Now()

	if s.metrics != nil {
		s.metrics.SweepRuns.Inc()
		s.metrics.SweepDuration.Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	}

	s.logger.ZL.Info().
		Int("physicians", summary.Physicians).
		Int("snapshots", summary.Snapshots).
		Int("skipped", summary.Skipped).
		Int("failures", len(summary.Failures)).
		Msg("sweep finished")

	return summary, nil
}

func (s *Sweeper) runUnit(ctx context.Context, physicianID uuid.UUID, asOf time.Time) (int, error) {
	assessment, err := s.scoring.Recompute(ctx, physicianID, asOf)
	if errors.Is(err, apperrors.ErrInsufficientData) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	if err := s.alerting.Evaluate(ctx, assessment); err != nil {
		return 0, err
	}
	return len(assessment.Entries), nil
}
