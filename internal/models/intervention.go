package models

import "time"

// InterventionType classifies a follow-up action.
type InterventionType string

const (
	InterventionStimulation InterventionType = "stimulation"
	InterventionReferral    InterventionType = "referral"
	InterventionFollowUp    InterventionType = "follow_up"
	InterventionCounseling  InterventionType = "counseling"
	InterventionOther       InterventionType = "other"
)

// InterventionStatus tracks execution of a follow-up action.
type InterventionStatus string

const (
	InterventionPlanned    InterventionStatus = "planned"
	InterventionInProgress InterventionStatus = "in_progress"
	InterventionCompleted  InterventionStatus = "completed"
	InterventionCancelled  InterventionStatus = "cancelled"
)

// Intervention is a follow-up action attached to a completed screening.
type Intervention struct {
	ID           string             `db:"id" json:"id"`
	ScreeningID  string             `db:"screening_id" json:"screening_id"`
	DomainID     *string            `db:"domain_id" json:"domain_id,omitempty"`
	Type         InterventionType   `db:"type" json:"type"`
	Action       string             `db:"action" json:"action"`
	Notes        *string            `db:"notes" json:"notes,omitempty"`
	Status       InterventionStatus `db:"status" json:"status"`
	FollowUpDate *time.Time         `db:"follow_up_date" json:"follow_up_date,omitempty"`
	CompletedAt  *time.Time         `db:"completed_at" json:"completed_at,omitempty"`
	CreatedBy    *string            `db:"created_by" json:"created_by,omitempty"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updated_at"`
}
