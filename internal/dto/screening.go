package dto

import "github.com/noah-isme/asq3-api/internal/models"

// StartScreeningRequest starts a screening. ScreeningDate defaults to today.
type StartScreeningRequest struct {
	ScreeningDate *string `json:"screening_date" validate:"omitempty,datetime=2006-01-02"`
	Notes         *string `json:"notes" validate:"omitempty,max=5000"`
}

// AnswerItem is one caregiver response in a batch.
type AnswerItem struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"required,oneof=yes sometimes no"`
}

// SubmitAnswersRequest is a batch of answers applied atomically.
type SubmitAnswersRequest struct {
	Answers []AnswerItem `json:"answers" validate:"required,min=1,max=200,dive"`
}

// UpdateNotesRequest replaces the screening notes; null clears them.
type UpdateNotesRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=5000"`
}

// ListScreeningsQuery filters a child's screening history.
type ListScreeningsQuery struct {
	Status   string `form:"status" validate:"omitempty,oneof=in_progress completed cancelled"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// SubmitAnswersResponse reports the saved batch and the new progress.
type SubmitAnswersResponse struct {
	ScreeningID string                   `json:"screening_id"`
	SavedCount  int                      `json:"saved_count"`
	Progress    models.ScreeningProgress `json:"progress"`
}

// DomainRecommendations groups recommendation texts for one domain of a screening.
type DomainRecommendations struct {
	DomainID        string              `json:"domain_id"`
	DomainCode      models.DomainCode   `json:"domain_code"`
	DomainName      string              `json:"domain_name"`
	Status          models.DomainStatus `json:"status"`
	Recommendations []string            `json:"recommendations"`
}

// ScreeningRecommendations maps each domain code of a completed screening to its recommendations.
type ScreeningRecommendations struct {
	ScreeningID   string                                       `json:"screening_id"`
	AgeIntervalID string                                       `json:"age_interval_id"`
	Domains       map[models.DomainCode]DomainRecommendations `json:"domains"`
}
