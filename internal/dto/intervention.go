package dto

// CreateInterventionRequest adds a follow-up action to a completed screening.
type CreateInterventionRequest struct {
	DomainID     *string `json:"domain_id" validate:"omitempty"`
	Type         string  `json:"type" validate:"omitempty,oneof=stimulation referral follow_up counseling other"`
	Action       string  `json:"action" validate:"required,max=5000"`
	Notes        *string `json:"notes" validate:"omitempty,max=5000"`
	FollowUpDate *string `json:"follow_up_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateInterventionRequest changes the provided fields only.
type UpdateInterventionRequest struct {
	DomainID     *string `json:"domain_id" validate:"omitempty"`
	Type         *string `json:"type" validate:"omitempty,oneof=stimulation referral follow_up counseling other"`
	Action       *string `json:"action" validate:"omitempty,min=1,max=5000"`
	Notes        *string `json:"notes" validate:"omitempty,max=5000"`
	Status       *string `json:"status" validate:"omitempty,oneof=planned in_progress completed cancelled"`
	FollowUpDate *string `json:"follow_up_date" validate:"omitempty,datetime=2006-01-02"`
}
