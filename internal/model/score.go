package model

import (
	"time"

	"github.com/google/uuid"
)

// CompetencyScore is one immutable snapshot in the append-only score time
// series for a (physician, competency) pair. The current score is the most
// recent snapshot by assessment timestamp; prior snapshots are never
// mutated or deleted.
type CompetencyScore struct {
	Base
	PhysicianID  uuid.UUID `db:"physician_id" json:"physician_id"`
	CompetencyID uuid.UUID `db:"competency_id" json:"competency_id"`
	Score        float64   `db:"score" json:"score"`
	AssessedAt   time.Time `db:"assessed_at" json:"assessed_at"`
	Notes        string    `db:"notes" json:"notes,omitempty"`
}
