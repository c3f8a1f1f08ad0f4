package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/oppe-api/internal/config"
	"github.com/jwalitptl/oppe-api/internal/email"
	"github.com/jwalitptl/oppe-api/internal/model"
	"github.com/jwalitptl/oppe-api/internal/repository"
	"github.com/jwalitptl/oppe-api/internal/service/scoring"
	"github.com/jwalitptl/oppe-api/pkg/logger"
	"github.com/jwalitptl/oppe-api/pkg/messaging"
	"github.com/jwalitptl/oppe-api/pkg/metrics"
)

// Service evaluates threshold rules over assessment output and maintains
// the alert store. It never reads case, review, or score records itself;
// everything it needs arrives in the scoring.Assessment.
type Service struct {
	alerts   repository.AlertRepository
	broker   messaging.Broker
	emailSvc email.Service
	cfg      config.AlertsConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	alerts repository.AlertRepository,
	broker messaging.Broker,
	emailSvc email.Service,
	cfg config.AlertsConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		alerts:   alerts,
		broker:   broker,
		emailSvc: emailSvc,
		cfg:      cfg,
		logger:   log,
		metrics:  m,
	}
}

// Evaluate runs every rule against the assessment. Rules are independent:
// a condition that holds raises or refreshes the (physician, type) alert,
// a condition that no longer holds leaves prior alerts untouched so the
// audit trail of past concerns survives until someone acknowledges them.
func (s *Service) Evaluate(ctx context.Context, assessment *scoring.Assessment) error {
	if err := s.evaluateCompetencyScores(ctx, assessment); err != nil {
		return err
	}
	if err := s.evaluateComplicationRate(ctx, assessment); err != nil {
		return err
	}
	return s.evaluateMissingData(ctx, assessment)
}

func (s *Service) evaluateCompetencyScores(ctx context.Context, assessment *scoring.Assessment) error {
	severity := model.SeverityWarning
	var failing []string

	for _, entry := range assessment.Entries {
		minimum := entry.Competency.MinimumScore
		if entry.Current.Score >= minimum {
			continue
		}

		line := fmt.Sprintf("%s: %.1f (minimum %.1f)", entry.Competency.Name, entry.Current.Score, minimum)

		// Escalate on a deep shortfall or a second consecutive
		// below-minimum snapshot.
		if minimum-entry.Current.Score > s.cfg.CriticalScoreMargin {
			severity = model.SeverityCritical
			line += ", critically low"
		} else if entry.Previous != nil && entry.Previous.Score < minimum {
			severity = model.SeverityCritical
			line += ", below minimum for consecutive assessments"
		}

		failing = append(failing, line)
	}

	if len(failing) == 0 {
		return nil
	}

	return s.raise(ctx, assessment.PhysicianID, model.AlertLowCompetencyScore, severity,
		"Competency score below configured minimum",
		strings.Join(failing, "; "))
}

func (s *Service) evaluateComplicationRate(ctx context.Context, assessment *scoring.Assessment) error {
	window := assessment.Window
	if window.TotalCases < s.cfg.MinCasesForRate {
		// Too few cases to distinguish signal from noise.
		return nil
	}

	rate := float64(window.Complications) / float64(window.TotalCases)
	threshold := s.cfg.ComplicationBaseline + s.cfg.ComplicationMargin
	if rate <= threshold {
		return nil
	}

	return s.raise(ctx, assessment.PhysicianID, model.AlertHighComplicationRate, model.SeverityWarning,
		"Elevated complication rate detected",
		fmt.Sprintf("%d of %d in-window cases (%.0f%%) had POOR or ADVERSE_EVENT outcomes; department threshold is %.0f%%",
			window.Complications, window.TotalCases, rate*100, threshold*100))
}

func (s *Service) evaluateMissingData(ctx context.Context, assessment *scoring.Assessment) error {
	window := assessment.Window
	if window.TotalCases == 0 {
		return nil
	}

	fraction := float64(window.MissingData) / float64(window.TotalCases)
	if fraction <= s.cfg.MissingDataFraction {
		return nil
	}

	return s.raise(ctx, assessment.PhysicianID, model.AlertMissingData, model.SeverityInfo,
		"Incomplete case documentation",
		fmt.Sprintf("%d of %d in-window cases are missing fields required for scoring",
			window.MissingData, window.TotalCases))
}

// raise creates or refreshes the single unacknowledged alert for the
// (physician, type) pair, then fans the result out to the broker and, for
// critical severities, to the notification address.
func (s *Service) raise(ctx context.Context, physicianID uuid.UUID, alertType model.AlertType, severity model.AlertSeverity, message, details string) error {
	alert := &model.Alert{
		Base:        model.Base{ID: uuid.New()},
		PhysicianID: physicianID,
		Severity:    severity,
		Type:        alertType,
		Message:     message,
		Details:     details,
	}

	stored, err := s.alerts.Upsert(ctx, alert)
	if err != nil {
		return fmt.Errorf("failed to upsert alert: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AlertsRaised.WithLabelValues(string(alertType), string(severity)).Inc()
	}

	s.logger.ZL.Info().
		Str("physician_id", physicianID.String()).
		Str("type", string(alertType)).
		Str("severity", string(severity)).
		Msg("alert raised")

	if s.broker != nil {
		event := messaging.Message{Type: "alert." + strings.ToLower(string(alertType)), Payload: stored}
		if err := s.broker.Publish(ctx, s.cfg.PublishChannel, event); err != nil {
			s.logger.ZL.Error().Err(err).Str("alert_id", stored.ID.String()).Msg("failed to publish alert event")
		}
	}

	if severity == model.SeverityCritical && !s.cfg.DisableNotifications && s.cfg.NotifyEmail != "" && s.emailSvc != nil {
		subject := fmt.Sprintf("CRITICAL performance alert: %s", alertType)
		body := fmt.Sprintf("Physician %s\n\n%s\n\n%s", physicianID, message, details)
		if err := s.emailSvc.SendAlertNotification(ctx, s.cfg.NotifyEmail, subject, body); err != nil {
			s.logger.ZL.Error().Err(err).Str("alert_id", stored.ID.String()).Msg("failed to send alert notification")
		}
	}

	return nil
}

// ListAlerts returns alerts for the dashboard and review workflows.
func (s *Service) ListAlerts(ctx context.Context, filters *model.AlertFilters) ([]*model.Alert, error) {
	alerts, err := s.alerts.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// Acknowledge resolves an alert on behalf of an external actor. The
// evaluation engine itself never acknowledges.
func (s *Service) Acknowledge(ctx context.Context, id uuid.UUID) error {
	if err := s.alerts.Acknowledge(ctx, id, time.Now()); err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	return nil
}
