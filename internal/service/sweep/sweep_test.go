package sweep

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/oppe-api/internal/config"
	"github.com/jwalitptl/oppe-api/internal/email"
	"github.com/jwalitptl/oppe-api/internal/model"
	"github.com/jwalitptl/oppe-api/internal/service/alerting"
	"github.com/jwalitptl/oppe-api/internal/service/scoring"
	apperrors "github.com/jwalitptl/oppe-api/pkg/errors"
	"github.com/jwalitptl/oppe-api/pkg/logger"
)

type fakePhysicianRepo struct {
	active []uuid.UUID
}

func (f *fakePhysicianRepo) Create(ctx context.Context, physician *model.Physician) error {
	return nil
}

func (f *fakePhysicianRepo) Get(ctx context.Context, id uuid.UUID) (*model.Physician, error) {
	return nil, apperrors.ErrPhysicianNotFound
}

func (f *fakePhysicianRepo) GetByEmail(ctx context.Context, email string) (*model.Physician, error) {
	return nil, apperrors.ErrPhysicianNotFound
}

func (f *fakePhysicianRepo) List(ctx context.Context, filters *model.PhysicianFilters) ([]*model.Physician, error) {
	return nil, nil
}

func (f *fakePhysicianRepo) ListActiveSince(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	return f.active, nil
}

// fakeCaseRepo fails on demand for specific physicians so unit isolation
// can be exercised.
type fakeCaseRepo struct {
	cases   []*model.Case
	failFor map[uuid.UUID]error
	calls   int
}

func (f *fakeCaseRepo) Create(ctx context.Context, c *model.Case) error { return nil }

func (f *fakeCaseRepo) Get(ctx context.Context, id uuid.UUID) (*model.Case, error) {
	return nil, apperrors.ErrCaseNotFound
}

func (f *fakeCaseRepo) List(ctx context.Context, filters *model.CaseFilters) ([]*model.Case, error) {
	return f.cases, nil
}

func (f *fakeCaseRepo) ListInWindow(ctx context.Context, physicianID uuid.UUID, since time.Time) ([]*model.Case, error) {
	f.calls++
	if err, ok := f.failFor[physicianID]; ok {
		return nil, err
	}
	var out []*model.Case
	for _, c := range f.cases {
		if c.PhysicianID == physicianID && !c.OccurredAt.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCaseRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.ReviewStatus) (bool, error) {
	return false, nil
}

type fakeReviewRepo struct{}

func (fakeReviewRepo) Create(ctx context.Context, review *model.Review) error { return nil }

func (fakeReviewRepo) List(ctx context.Context, filters *model.ReviewFilters) ([]*model.Review, error) {
	return nil, nil
}

func (fakeReviewRepo) ListForCases(ctx context.Context, caseIDs []uuid.UUID) ([]*model.Review, error) {
	return nil, nil
}

type fakeScoreRepo struct {
	snapshots []*model.CompetencyScore
}

func (f *fakeScoreRepo) Insert(ctx context.Context, score *model.CompetencyScore) error {
	f.snapshots = append(f.snapshots, score)
	return nil
}

func (f *fakeScoreRepo) GetLatest(ctx context.Context, physicianID, competencyID uuid.UUID) (*model.CompetencyScore, error) {
	var latest *model.CompetencyScore
	for _, s := range f.snapshots {
		if s.PhysicianID != physicianID || s.CompetencyID != competencyID {
			continue
		}
		if latest == nil || s.AssessedAt.After(latest.AssessedAt) {
			latest = s
		}
	}
	return latest, nil
}

func (f *fakeScoreRepo) ListRecent(ctx context.Context, physicianID, competencyID uuid.UUID, limit int) ([]*model.CompetencyScore, error) {
	return nil, nil
}

func (f *fakeScoreRepo) ListForPhysician(ctx context.Context, physicianID uuid.UUID) ([]*model.CompetencyScore, error) {
	return f.snapshots, nil
}

type fakeCompetencyRepo struct {
	competencies []*model.Competency
}

func (f *fakeCompetencyRepo) Get(ctx context.Context, id uuid.UUID) (*model.Competency, error) {
	return nil, apperrors.NewNotFound("competency", nil)
}

func (f *fakeCompetencyRepo) List(ctx context.Context) ([]*model.Competency, error) {
	return f.competencies, nil
}

type fakeAlertRepo struct {
	open map[string]*model.Alert
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{open: make(map[string]*model.Alert)}
}

func (f *fakeAlertRepo) Upsert(ctx context.Context, alert *model.Alert) (*model.Alert, error) {
	key := alert.PhysicianID.String() + "/" + string(alert.Type)
	if existing, ok := f.open[key]; ok {
		existing.Severity = alert.Severity
		existing.Details = alert.Details
		return existing, nil
	}
	f.open[key] = alert
	return alert, nil
}

func (f *fakeAlertRepo) Get(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	return nil, apperrors.NewNotFound("alert", nil)
}

func (f *fakeAlertRepo) List(ctx context.Context, filters *model.AlertFilters) ([]*model.Alert, error) {
	return nil, nil
}

func (f *fakeAlertRepo) Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

type fixture struct {
	sweeper       *Sweeper
	physicianRepo *fakePhysicianRepo
	caseRepo      *fakeCaseRepo
	scoreRepo     *fakeScoreRepo
	alertRepo     *fakeAlertRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.NewLogger(&logger.Config{Output: io.Discard})
	physicianRepo := &fakePhysicianRepo{}
	caseRepo := &fakeCaseRepo{failFor: make(map[uuid.UUID]error)}
	scoreRepo := &fakeScoreRepo{}
	alertRepo := newFakeAlertRepo()
	competencyRepo := &fakeCompetencyRepo{competencies: []*model.Competency{{
		Base:         model.Base{ID: uuid.New()},
		Name:         "Patient Care",
		Category:     model.CategoryPatientCare,
		MinimumScore: 75,
	}}}

	scoringSvc := scoring.NewService(caseRepo, fakeReviewRepo{}, scoreRepo, competencyRepo,
		scoring.DefaultMapping(),
		config.ScoringConfig{WindowDays: 90, OutcomeWeight: 0.4, ReviewWeight: 0.6, CompetencyCacheTTL: time.Minute},
		log, nil)
	alertingSvc := alerting.NewService(alertRepo, nil, email.NoopService{},
		config.AlertsConfig{CriticalScoreMargin: 15, ComplicationBaseline: 0.10, ComplicationMargin: 0.10, MinCasesForRate: 5, MissingDataFraction: 0.10},
		log, nil)

	return &fixture{
		sweeper:       NewSweeper(physicianRepo, scoringSvc, alertingSvc, log, nil),
		physicianRepo: physicianRepo,
		caseRepo:      caseRepo,
		scoreRepo:     scoreRepo,
		alertRepo:     alertRepo,
	}
}

func seedPhysician(f *fixture, asOf time.Time, outcome model.CaseOutcome) uuid.UUID {
	id := uuid.New()
	f.physicianRepo.active = append(f.physicianRepo.active, id)
	diagnosis := "J18.9"
	f.caseRepo.cases = append(f.caseRepo.cases, &model.Case{
		Base:        model.Base{ID: uuid.New()},
		PhysicianID: id,
		PatientMRN:  "MRN-3001",
		CaseType:    model.CaseTypeMedical,
		Diagnosis:   &diagnosis,
		Outcome:     outcome,
		OccurredAt:  asOf.AddDate(0, 0, -3),
	})
	return id
}

func TestSweepRecomputesEveryActivePhysician(t *testing.T) {
	f := newFixture(t)
	asOf := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seedPhysician(f, asOf, model.OutcomeGood)
	seedPhysician(f, asOf, model.OutcomeExcellent)

	summary, err := f.sweeper.Run(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Physicians)
	assert.Equal(t, 2, summary.Snapshots)
	assert.Empty(t, summary.Failures)
	assert.Len(t, f.scoreRepo.snapshots, 2)
}

func TestSweepIsolatesUnitFailures(t *testing.T) {
	f := newFixture(t)
	asOf := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	broken := seedPhysician(f, asOf, model.OutcomeGood)
	healthy := seedPhysician(f, asOf, model.OutcomeGood)
	f.caseRepo.failFor[broken] = errors.New("connection reset")

	summary, err := f.sweeper.Run(context.Background(), asOf)
	require.NoError(t, err)

	require.Len(t, summary.Failures, 1)
	assert.Equal(t, broken, summary.Failures[0].PhysicianID)
	assert.Equal(t, 1, summary.Snapshots)
	require.Len(t, f.scoreRepo.snapshots, 1)
	assert.Equal(t, healthy, f.scoreRepo.snapshots[0].PhysicianID)
}

func TestSweepSkipsPhysiciansWithoutSignals(t *testing.T) {
	f := newFixture(t)
	asOf := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Active per the roster but with no in-window cases.
	f.physicianRepo.active = append(f.physicianRepo.active, uuid.New())

	summary, err := f.sweeper.Run(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Snapshots)
	assert.Empty(t, summary.Failures)
}

func TestSweepRerunIsIdempotentForAlerts(t *testing.T) {
	f := newFixture(t)
	asOf := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seedPhysician(f, asOf, model.OutcomeAdverseEvent)

	_, err := f.sweeper.Run(context.Background(), asOf)
	require.NoError(t, err)
	firstOpen := len(f.alertRepo.open)

	_, err = f.sweeper.Run(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, firstOpen, len(f.alertRepo.open), "re-running must not duplicate open alerts")
}

func TestSweepStopsOnCancellation(t *testing.T) {
	f := newFixture(t)
	asOf := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		seedPhysician(f, asOf, model.OutcomeGood)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := f.sweeper.Run(ctx, asOf)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Zero(t, f.caseRepo.calls, "no unit should start after cancellation")
}
