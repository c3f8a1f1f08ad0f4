package model

import (
	"time"

	"github.com/google/uuid"
)

// AlertSeverity is ordered INFO < WARNING < CRITICAL.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "INFO"
	SeverityWarning  AlertSeverity = "WARNING"
	SeverityCritical AlertSeverity = "CRITICAL"
)

func (s AlertSeverity) Rank() int {
	switch s {
	case SeverityInfo:
		return 0
	case SeverityWarning:
		return 1
	case SeverityCritical:
		return 2
	}
	return -1
}

type AlertType string

const (
	AlertHighComplicationRate AlertType = "HIGH_COMPLICATION_RATE"
	AlertLowCompetencyScore   AlertType = "LOW_COMPETENCY_SCORE"
	AlertMissingData          AlertType = "MISSING_DATA"
)

// Alert is raised by the rule evaluator. At most one unacknowledged alert
// of a given (physician, type) pair exists at any time; a re-triggered
// condition updates the existing record instead of duplicating it.
// Acknowledgement comes only from an external actor.
type Alert struct {
	Base
	PhysicianID    uuid.UUID     `db:"physician_id" json:"physician_id"`
	Severity       AlertSeverity `db:"severity" json:"severity"`
	Type           AlertType     `db:"type" json:"type"`
	Message        string        `db:"message" json:"message"`
	Details        string        `db:"details" json:"details,omitempty"`
	Acknowledged   bool          `db:"acknowledged" json:"acknowledged"`
	AcknowledgedAt *time.Time    `db:"acknowledged_at" json:"acknowledged_at,omitempty"`
}

type AlertFilters struct {
	PhysicianID  uuid.UUID
	Acknowledged *bool
	Pagination
}
