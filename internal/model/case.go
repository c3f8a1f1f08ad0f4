package model

import (
	"time"

	"github.com/google/uuid"
)

type CaseType string

const (
	CaseTypeSurgical     CaseType = "SURGICAL"
	CaseTypeMedical      CaseType = "MEDICAL"
	CaseTypeProcedural   CaseType = "PROCEDURAL"
	CaseTypeConsultation CaseType = "CONSULTATION"
	CaseTypeEmergency    CaseType = "EMERGENCY"
)

// CaseOutcome is ordinal: EXCELLENT > GOOD > ACCEPTABLE > POOR > ADVERSE_EVENT.
type CaseOutcome string

const (
	OutcomeExcellent    CaseOutcome = "EXCELLENT"
	OutcomeGood         CaseOutcome = "GOOD"
	OutcomeAcceptable   CaseOutcome = "ACCEPTABLE"
	OutcomePoor         CaseOutcome = "POOR"
	OutcomeAdverseEvent CaseOutcome = "ADVERSE_EVENT"
)

// IsComplication reports whether the outcome counts toward the
// complication rate.
func (o CaseOutcome) IsComplication() bool {
	return o == OutcomePoor || o == OutcomeAdverseEvent
}

type ReviewStatus string

const (
	ReviewStatusPending   ReviewStatus = "PENDING"
	ReviewStatusCompleted ReviewStatus = "COMPLETED"
)

// Case is immutable once created except for the single
// PENDING -> COMPLETED review status transition.
type Case struct {
	Base
	PhysicianID   uuid.UUID    `db:"physician_id" json:"physician_id"`
	PatientMRN    string       `db:"patient_mrn" json:"patient_mrn"`
	CaseType      CaseType     `db:"case_type" json:"case_type"`
	ProcedureCode *string      `db:"procedure_code" json:"procedure_code,omitempty"`
	Diagnosis     *string      `db:"diagnosis" json:"diagnosis,omitempty"`
	Outcome       CaseOutcome  `db:"outcome" json:"outcome"`
	Complications *string      `db:"complications" json:"complications,omitempty"`
	OccurredAt    time.Time    `db:"occurred_at" json:"occurred_at"`
	ReviewStatus  ReviewStatus `db:"review_status" json:"review_status"`
	Notes         string       `db:"notes" json:"notes,omitempty"`
}

// MissingScoringFields reports whether the case lacks fields the scoring
// pipeline needs, e.g. a procedure code on a surgical or procedural case.
func (c *Case) MissingScoringFields() bool {
	switch c.CaseType {
	case CaseTypeSurgical, CaseTypeProcedural:
		if c.ProcedureCode == nil || *c.ProcedureCode == "" {
			return true
		}
	}
	return c.Diagnosis == nil || *c.Diagnosis == ""
}

type CreateCaseRequest struct {
	PhysicianID   uuid.UUID   `json:"physician_id" binding:"required"`
	PatientMRN    string      `json:"patient_mrn" binding:"required,max=50"`
	CaseType      CaseType    `json:"case_type" binding:"required,oneof=SURGICAL MEDICAL PROCEDURAL CONSULTATION EMERGENCY"`
	ProcedureCode *string     `json:"procedure_code" binding:"omitempty,max=20"`
	Diagnosis     *string     `json:"diagnosis" binding:"omitempty,max=200"`
	Outcome       CaseOutcome `json:"outcome" binding:"required,oneof=EXCELLENT GOOD ACCEPTABLE POOR ADVERSE_EVENT"`
	Complications *string     `json:"complications" binding:"omitempty,max=2000"`
	OccurredAt    time.Time   `json:"occurred_at" binding:"required"`
	Notes         string      `json:"notes" binding:"omitempty,max=2000"`
}

type CaseFilters struct {
	PhysicianID uuid.UUID
	Status      ReviewStatus
	Pagination
}
