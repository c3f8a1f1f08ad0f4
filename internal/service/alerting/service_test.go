package alerting

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/oppe-api/internal/config"
	"github.com/jwalitptl/oppe-api/internal/email"
	"github.com/jwalitptl/oppe-api/internal/model"
	"github.com/jwalitptl/oppe-api/internal/service/scoring"
	apperrors "github.com/jwalitptl/oppe-api/pkg/errors"
	"github.com/jwalitptl/oppe-api/pkg/logger"
	"github.com/jwalitptl/oppe-api/pkg/messaging"
)

type alertKey struct {
	physicianID uuid.UUID
	alertType   model.AlertType
}

// fakeAlertRepo mirrors the partial-unique-index upsert: at most one
// unacknowledged alert per (physician, type).
type fakeAlertRepo struct {
	open     map[alertKey]*model.Alert
	resolved []*model.Alert
	upserts  int
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{open: make(map[alertKey]*model.Alert)}
}

func (f *fakeAlertRepo) Upsert(ctx context.Context, alert *model.Alert) (*model.Alert, error) {
	f.upserts++
	key := alertKey{alert.PhysicianID, alert.Type}
	if existing, ok := f.open[key]; ok {
		existing.Severity = alert.Severity
		existing.Message = alert.Message
		existing.Details = alert.Details
		existing.UpdatedAt = time.Now()
		return existing, nil
	}
	alert.CreatedAt = time.Now()
	f.open[key] = alert
	return alert, nil
}

func (f *fakeAlertRepo) Get(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	for _, a := range f.all() {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, apperrors.NewNotFound("alert", nil)
}

func (f *fakeAlertRepo) List(ctx context.Context, filters *model.AlertFilters) ([]*model.Alert, error) {
	var out []*model.Alert
	for _, a := range f.all() {
		if filters.PhysicianID != uuid.Nil && a.PhysicianID != filters.PhysicianID {
			continue
		}
		if filters.Acknowledged != nil && a.Acknowledged != *filters.Acknowledged {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAlertRepo) Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) error {
	for key, a := range f.open {
		if a.ID == id {
			a.Acknowledged = true
			a.AcknowledgedAt = &at
			f.resolved = append(f.resolved, a)
			delete(f.open, key)
			return nil
		}
	}
	return apperrors.NewNotFound("unacknowledged alert", nil)
}

func (f *fakeAlertRepo) all() []*model.Alert {
	out := make([]*model.Alert, 0, len(f.open)+len(f.resolved))
	for _, a := range f.open {
		out = append(out, a)
	}
	out = append(out, f.resolved...)
	return out
}

type fakeBroker struct {
	published []messaging.Message
}

func (f *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	f.published = append(f.published, message.(messaging.Message))
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (f *fakeBroker) Close() error { return nil }

func testAlertsConfig() config.AlertsConfig {
	return config.AlertsConfig{
		CriticalScoreMargin:  15,
		ComplicationBaseline: 0.10,
		ComplicationMargin:   0.10,
		MinCasesForRate:      5,
		MissingDataFraction:  0.10,
		PublishChannel:       "alerts",
	}
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Output: io.Discard})
}

func newService(repo *fakeAlertRepo, broker *fakeBroker) *Service {
	return NewService(repo, broker, email.NoopService{}, testAlertsConfig(), testLogger(), nil)
}

func entry(name string, minimum, current float64, previous *float64) scoring.ScoreEntry {
	competency := &model.Competency{
		Base:         model.Base{ID: uuid.New()},
		Name:         name,
		MinimumScore: minimum,
	}
	e := scoring.ScoreEntry{
		Competency: competency,
		Current: &model.CompetencyScore{
			Base:         model.Base{ID: uuid.New()},
			CompetencyID: competency.ID,
			Score:        current,
			AssessedAt:   time.Now(),
		},
	}
	if previous != nil {
		e.Previous = &model.CompetencyScore{
			Base:         model.Base{ID: uuid.New()},
			CompetencyID: competency.ID,
			Score:        *previous,
			AssessedAt:   time.Now().AddDate(0, 0, -1),
		}
	}
	return e
}

func assessment(physicianID uuid.UUID, entries []scoring.ScoreEntry, window scoring.WindowSummary) *scoring.Assessment {
	return &scoring.Assessment{
		PhysicianID: physicianID,
		AsOf:        time.Now(),
		Entries:     entries,
		Window:      window,
	}
}

func TestEvaluateRaisesWarningOnLowScore(t *testing.T) {
	repo := newFakeAlertRepo()
	broker := &fakeBroker{}
	svc := newService(repo, broker)
	physicianID := uuid.New()

	a := assessment(physicianID, []scoring.ScoreEntry{
		entry("Patient Care", 75, 70, nil),
	}, scoring.WindowSummary{TotalCases: 3})

	require.NoError(t, svc.Evaluate(context.Background(), a))

	stored := repo.open[alertKey{physicianID, model.AlertLowCompetencyScore}]
	require.NotNil(t, stored)
	assert.Equal(t, model.SeverityWarning, stored.Severity)
	assert.Contains(t, stored.Details, "Patient Care")
	require.Len(t, broker.published, 1)
	assert.Equal(t, "alert.low_competency_score", broker.published[0].Type)
}

func TestEvaluateEscalatesOnDeepShortfall(t *testing.T) {
	repo := newFakeAlertRepo()
	svc := newService(repo, &fakeBroker{})
	physicianID := uuid.New()

	// 75 - 55 = 20 exceeds the critical margin of 15.
	a := assessment(physicianID, []scoring.ScoreEntry{
		entry("Patient Care", 75, 55, nil),
	}, scoring.WindowSummary{TotalCases: 3})

	require.NoError(t, svc.Evaluate(context.Background(), a))

	stored := repo.open[alertKey{physicianID, model.AlertLowCompetencyScore}]
	require.NotNil(t, stored)
	assert.Equal(t, model.SeverityCritical, stored.Severity)
}

func TestEvaluateEscalatesOnConsecutiveBelowMinimum(t *testing.T) {
	repo := newFakeAlertRepo()
	svc := newService(repo, &fakeBroker{})
	physicianID := uuid.New()

	previous := 60.0
	a := assessment(physicianID, []scoring.ScoreEntry{
		entry("Medical Knowledge", 75, 68, &previous),
	}, scoring.WindowSummary{TotalCases: 3})

	require.NoError(t, svc.Evaluate(context.Background(), a))

	stored := repo.open[alertKey{physicianID, model.AlertLowCompetencyScore}]
	require.NotNil(t, stored)
	assert.Equal(t, model.SeverityCritical, stored.Severity)
	assert.Contains(t, stored.Details, "consecutive")
}

func TestEvaluateAggregatesFailingCompetencies(t *testing.T) {
	repo := newFakeAlertRepo()
	svc := newService(repo, &fakeBroker{})
	physicianID := uuid.New()

	a := assessment(physicianID, []scoring.ScoreEntry{
		entry("Patient Care", 75, 70, nil),
		entry("Professionalism", 80, 74, nil),
		entry("Medical Knowledge", 75, 90, nil),
	}, scoring.WindowSummary{TotalCases: 3})

	require.NoError(t, svc.Evaluate(context.Background(), a))

	require.Len(t, repo.open, 1)
	stored := repo.open[alertKey{physicianID, model.AlertLowCompetencyScore}]
	require.NotNil(t, stored)
	assert.Contains(t, stored.Details, "Patient Care")
	assert.Contains(t, stored.Details, "Professionalism")
	assert.NotContains(t, stored.Details, "Medical Knowledge")
}

func TestEvaluateRaisesComplicationRateAlert(t *testing.T) {
	repo := newFakeAlertRepo()
	svc := newService(repo, &fakeBroker{})
	physicianID := uuid.New()

	// 2 of 6 is 33%, above the 20% threshold.
	a := assessment(physicianID, nil, scoring.WindowSummary{TotalCases: 6, Complications: 2})

	require.NoError(t, svc.Evaluate(context.Background(), a))

	stored := repo.open[alertKey{physicianID, model.AlertHighComplicationRate}]
	require.NotNil(t, stored)
	assert.Equal(t, model.SeverityWarning, stored.Severity)
}

func TestEvaluateSkipsRateWithTooFewCases(t *testing.T) {
	repo := newFakeAlertRepo()
	svc := newService(repo, &fakeBroker{})

	// 2 of 4 would be 50%, but the window is below the minimum case count.
	a := assessment(uuid.New(), nil, scoring.WindowSummary{TotalCases: 4, Complications: 2})

	require.NoError(t, svc.Evaluate(context.Background(), a))
	assert.Empty(t, repo.open)
}

func TestEvaluateRaisesMissingDataAlert(t *testing.T) {
	repo := newFakeAlertRepo()
	svc := newService(repo, &fakeBroker{})
	physicianID := uuid.New()

	a := assessment(physicianID, nil, scoring.WindowSummary{TotalCases: 10, MissingData: 2})

	require.NoError(t, svc.Evaluate(context.Background(), a))

	stored := repo.open[alertKey{physicianID, model.AlertMissingData}]
	require.NotNil(t, stored)
	assert.Equal(t, model.SeverityInfo, stored.Severity)
}

func TestEvaluateDeduplicatesOpenAlerts(t *testing.T) {
	repo := newFakeAlertRepo()
	svc := newService(repo, &fakeBroker{})
	physicianID := uuid.New()

	a := assessment(physicianID, []scoring.ScoreEntry{
		entry("Patient Care", 75, 70, nil),
	}, scoring.WindowSummary{TotalCases: 3})

	require.NoError(t, svc.Evaluate(context.Background(), a))
	require.NoError(t, svc.Evaluate(context.Background(), a))

	assert.Equal(t, 2, repo.upserts)
	assert.Len(t, repo.open, 1)
}

func TestEvaluateDoesNotResolveRecoveredAlerts(t *testing.T) {
	repo := newFakeAlertRepo()
	svc := newService(repo, &fakeBroker{})
	physicianID := uuid.New()

	low := assessment(physicianID, []scoring.ScoreEntry{
		entry("Patient Care", 75, 70, nil),
	}, scoring.WindowSummary{TotalCases: 3})
	require.NoError(t, svc.Evaluate(context.Background(), low))

	recovered := assessment(physicianID, []scoring.ScoreEntry{
		entry("Patient Care", 75, 85, nil),
	}, scoring.WindowSummary{TotalCases: 3})
	require.NoError(t, svc.Evaluate(context.Background(), recovered))

	// The prior alert stays open until someone acknowledges it.
	stored := repo.open[alertKey{physicianID, model.AlertLowCompetencyScore}]
	require.NotNil(t, stored)
	assert.False(t, stored.Acknowledged)
}

func TestAcknowledge(t *testing.T) {
	repo := newFakeAlertRepo()
	svc := newService(repo, &fakeBroker{})
	physicianID := uuid.New()

	a := assessment(physicianID, []scoring.ScoreEntry{
		entry("Patient Care", 75, 70, nil),
	}, scoring.WindowSummary{TotalCases: 3})
	require.NoError(t, svc.Evaluate(context.Background(), a))

	stored := repo.open[alertKey{physicianID, model.AlertLowCompetencyScore}]
	require.NotNil(t, stored)

	require.NoError(t, svc.Acknowledge(context.Background(), stored.ID))
	assert.True(t, stored.Acknowledged)
	assert.NotNil(t, stored.AcknowledgedAt)

	err := svc.Acknowledge(context.Background(), stored.ID)
	assert.Error(t, err)
}
