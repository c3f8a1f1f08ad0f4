package casereview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/oppe-api/internal/model"
	"github.com/jwalitptl/oppe-api/internal/repository"
	"github.com/jwalitptl/oppe-api/internal/service/alerting"
	"github.com/jwalitptl/oppe-api/internal/service/scoring"
	apperrors "github.com/jwalitptl/oppe-api/pkg/errors"
	"github.com/jwalitptl/oppe-api/pkg/logger"
)

// Service owns the case review workflow: case intake, review recording,
// the single PENDING -> COMPLETED transition, and the downstream
// aggregation and rule evaluation triggered by each review.
type Service struct {
	cases    repository.CaseRepository
	reviews  repository.ReviewRepository
	scoring  *scoring.Service
	alerting *alerting.Service
	logger   *logger.Logger
}

func NewService(
	cases repository.CaseRepository,
	reviews repository.ReviewRepository,
	scoringSvc *scoring.Service,
	alertingSvc *alerting.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		cases:    cases,
		reviews:  reviews,
		scoring:  scoringSvc,
		alerting: alertingSvc,
		logger:   log,
	}
}

func (s *Service) CreateCase(ctx context.Context, c *model.Case) error {
	c.ID = uuid.New()
	c.ReviewStatus = model.ReviewStatusPending

	if err := s.cases.Create(ctx, c); err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}
	return nil
}

func (s *Service) GetCase(ctx context.Context, id uuid.UUID) (*model.Case, error) {
	return s.cases.Get(ctx, id)
}

func (s *Service) ListCases(ctx context.Context, filters *model.CaseFilters) ([]*model.Case, error) {
	cases, err := s.cases.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, nil
}

// RecordReview stores a review and drives the workflow. The first review
// of a case fires the one-time PENDING -> COMPLETED transition; later
// reviews are stored without re-firing it. Every review, first or not,
// triggers score recomputation and rule evaluation for the case's
// physician.
func (s *Service) RecordReview(ctx context.Context, review *model.Review) error {
	c, err := s.cases.Get(ctx, review.CaseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCaseNotFound) {
			return apperrors.ErrCaseNotFound
		}
		return fmt.Errorf("failed to load case: %w", err)
	}

	review.ID = uuid.New()
	if review.ReviewedAt.IsZero() {
		review.ReviewedAt = time.Now()
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	transitioned, err := s.cases.TransitionStatus(ctx, c.ID, model.ReviewStatusPending, model.ReviewStatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to complete case: %w", err)
	}
	if transitioned {
		s.logger.ZL.Info().
			Str("case_id", c.ID.String()).
			Str("review_id", review.ID.String()).
			Msg("case review completed")
	}

	return s.refreshPhysician(ctx, c.PhysicianID)
}

func (s *Service) ListReviews(ctx context.Context, filters *model.ReviewFilters) ([]*model.Review, error) {
	reviews, err := s.reviews.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *Service) refreshPhysician(ctx context.Context, physicianID uuid.UUID) error {
	assessment, err := s.scoring.Recompute(ctx, physicianID, time.Now())
	if errors.Is(err, apperrors.ErrInsufficientData) {
		// An empty window is a defined no-op, not a failure.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to recompute scores: %w", err)
	}

	if err := s.alerting.Evaluate(ctx, assessment); err != nil {
		return fmt.Errorf("failed to evaluate alert rules: %w", err)
	}
	return nil
}
