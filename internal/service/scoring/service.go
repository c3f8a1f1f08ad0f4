package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/oppe-api/internal/config"
	"github.com/jwalitptl/oppe-api/internal/model"
	"github.com/jwalitptl/oppe-api/internal/repository"
	apperrors "github.com/jwalitptl/oppe-api/pkg/errors"
	"github.com/jwalitptl/oppe-api/pkg/keylock"
	"github.com/jwalitptl/oppe-api/pkg/logger"
	"github.com/jwalitptl/oppe-api/pkg/metrics"
)

const competencyCacheKey = "competencies"

// ScoreEntry pairs a freshly produced snapshot with the snapshot it
// superseded, so the rule evaluator can reason about consecutive
// assessments without reading the score store itself.
type ScoreEntry struct {
	Competency *model.Competency
	Current    *model.CompetencyScore
	Previous   *model.CompetencyScore
}

// WindowSummary describes the physician's case history inside the trailing
// window. It is handed to the rule evaluator together with the score
// entries so the evaluator stays decoupled from the repositories.
type WindowSummary struct {
	From          time.Time
	To            time.Time
	TotalCases    int
	Complications int
	MissingData   int
}

// Assessment is the output of one aggregation run for one physician.
type Assessment struct {
	PhysicianID uuid.UUID
	AsOf        time.Time
	Entries     []ScoreEntry
	Window      WindowSummary
}

type Service struct {
	cases        repository.CaseRepository
	reviews      repository.ReviewRepository
	scores       repository.ScoreRepository
	competencies repository.CompetencyRepository
	mapping      *Mapping
	cfg          config.ScoringConfig
	locks        *keylock.KeyLock
	cache        *gocache.Cache
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func NewService(
	cases repository.CaseRepository,
	reviews repository.ReviewRepository,
	scores repository.ScoreRepository,
	competencies repository.CompetencyRepository,
	mapping *Mapping,
	cfg config.ScoringConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		cases:        cases,
		reviews:      reviews,
		scores:       scores,
		competencies: competencies,
		mapping:      mapping,
		cfg:          cfg,
		locks:        keylock.New(),
		cache:        gocache.New(cfg.CompetencyCacheTTL, 2*cfg.CompetencyCacheTTL),
		logger:       log,
		metrics:      m,
	}
}

// WindowStart returns the lower bound of the trailing window ending at asOf.
func (s *Service) WindowStart(asOf time.Time) time.Time {
	return asOf.AddDate(0, 0, -s.cfg.WindowDays)
}

// Recompute produces one new score snapshot per competency for the
// physician from the in-window case and review history. Snapshots are
// appended, never rewritten; the computation is a deterministic function of
// the window, so recomputing over unchanged data yields equal scores.
// Returns apperrors.ErrInsufficientData when the window holds no signals at
// all, which is a defined no-op, not a failure.
func (s *Service) Recompute(ctx context.Context, physicianID uuid.UUID, asOf time.Time) (*Assessment, error) {
	start := time.Now()
	since := s.WindowStart(asOf)

	cases, err := s.cases.ListInWindow(ctx, physicianID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load case window: %w", err)
	}

	caseIDs := make([]uuid.UUID, 0, len(cases))
	for _, c := range cases {
		caseIDs = append(caseIDs, c.ID)
	}

	reviews, err := s.reviews.ListForCases(ctx, caseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load review window: %w", err)
	}

	competencies, err := s.listCompetencies(ctx)
	if err != nil {
		return nil, err
	}

	assessment := &Assessment{
		PhysicianID: physicianID,
		AsOf:        asOf,
		Window:      summarizeWindow(cases, since, asOf),
	}

	for _, competency := range competencies {
		entry, err := s.recomputeOne(ctx, physicianID, competency, cases, reviews, asOf)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			if s.metrics != nil {
				s.metrics.SnapshotsSkipped.Inc()
			}
			continue
		}
		assessment.Entries = append(assessment.Entries, *entry)
		if s.metrics != nil {
			s.metrics.SnapshotsComputed.Inc()
		}
	}

	if s.metrics != nil {
		s.metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	}

	if len(assessment.Entries) == 0 {
		return nil, apperrors.ErrInsufficientData
	}

	s.logger.ZL.Debug().
		Str("physician_id", physicianID.String()).
		Int("snapshots", len(assessment.Entries)).
		Int("cases", len(cases)).
		Int("reviews", len(reviews)).
		Msg("recomputed competency scores")

	return assessment, nil
}

// recomputeOne serializes per (physician, competency): concurrent triggers
// for the same pair queue behind the key lock while different pairs proceed
// in parallel. Returns nil when the pair has no in-window signals.
func (s *Service) recomputeOne(
	ctx context.Context,
	physicianID uuid.UUID,
	competency *model.Competency,
	cases []*model.Case,
	reviews []*model.Review,
	asOf time.Time,
) (*ScoreEntry, error) {
	unlock := s.locks.Lock(physicianID.String() + "/" + competency.ID.String())
	defer unlock()

	var outcomeSignals []float64
	for _, c := range cases {
		if !s.mapping.CaseCounts(c.CaseType, competency.Category) {
			continue
		}
		if signal, ok := NormalizeOutcome(c.Outcome); ok {
			outcomeSignals = append(outcomeSignals, signal)
		}
	}

	var reviewSignals []float64
	if dims := s.mapping.DimensionsFor(competency.Category); len(dims) > 0 {
		for _, review := range reviews {
			reviewSignals = append(reviewSignals, ReviewSignal(review, dims))
		}
	}

	score, ok := combine(outcomeSignals, reviewSignals, s.cfg.OutcomeWeight, s.cfg.ReviewWeight)
	if !ok {
		return nil, nil
	}

	previous, err := s.scores.GetLatest(ctx, physicianID, competency.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous snapshot: %w", err)
	}

	snapshot := &model.CompetencyScore{
		Base:         model.Base{ID: uuid.New()},
		PhysicianID:  physicianID,
		CompetencyID: competency.ID,
		Score:        score,
		AssessedAt:   asOf,
		Notes: fmt.Sprintf("aggregated from %d outcome and %d review signals",
			len(outcomeSignals), len(reviewSignals)),
	}
	if err := s.scores.Insert(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to append snapshot: %w", err)
	}

	return &ScoreEntry{
		Competency: competency,
		Current:    snapshot,
		Previous:   previous,
	}, nil
}

// combine applies the weighted average of the two signal sets. A single
// empty set falls back to the other set's mean; both empty yields no score.
func combine(outcomes, reviews []float64, outcomeWeight, reviewWeight float64) (float64, bool) {
	switch {
	case len(outcomes) == 0 && len(reviews) == 0:
		return 0, false
	case len(reviews) == 0:
		return clamp(mean(outcomes)), true
	case len(outcomes) == 0:
		return clamp(mean(reviews)), true
	default:
		return clamp(outcomeWeight*mean(outcomes) + reviewWeight*mean(reviews)), true
	}
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func summarizeWindow(cases []*model.Case, from, to time.Time) WindowSummary {
	summary := WindowSummary{From: from, To: to, TotalCases: len(cases)}
	for _, c := range cases {
		if c.Outcome.IsComplication() {
			summary.Complications++
		}
		if c.MissingScoringFields() {
			summary.MissingData++
		}
	}
	return summary
}

// LatestScores returns the current snapshot per competency for a physician.
// Competencies without any snapshot yet are omitted.
func (s *Service) LatestScores(ctx context.Context, physicianID uuid.UUID) ([]ScoreEntry, error) {
	competencies, err := s.listCompetencies(ctx)
	if err != nil {
		return nil, err
	}

	var entries []ScoreEntry
	for _, competency := range competencies {
		latest, err := s.scores.GetLatest(ctx, physicianID, competency.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest score: %w", err)
		}
		if latest == nil {
			continue
		}
		entries = append(entries, ScoreEntry{Competency: competency, Current: latest})
	}
	return entries, nil
}

// History returns the full snapshot series for a physician, newest first.
func (s *Service) History(ctx context.Context, physicianID uuid.UUID) ([]*model.CompetencyScore, error) {
	return s.scores.ListForPhysician(ctx, physicianID)
}

// Competencies exposes the cached read-only competency definitions.
func (s *Service) Competencies(ctx context.Context) ([]*model.Competency, error) {
	return s.listCompetencies(ctx)
}

func (s *Service) listCompetencies(ctx context.Context) ([]*model.Competency, error) {
	if cached, ok := s.cache.Get(competencyCacheKey); ok {
		return cached.([]*model.Competency), nil
	}

	competencies, err := s.competencies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list competencies: %w", err)
	}

	s.cache.Set(competencyCacheKey, competencies, gocache.DefaultExpiration)
	return competencies, nil
}
