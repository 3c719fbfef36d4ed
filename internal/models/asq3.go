package models

import "time"

// DomainCode identifies one of the five ASQ-3 developmental areas.
type DomainCode string

const (
	DomainCommunication  DomainCode = "communication"
	DomainGrossMotor     DomainCode = "gross_motor"
	DomainFineMotor      DomainCode = "fine_motor"
	DomainProblemSolving DomainCode = "problem_solving"
	DomainPersonalSocial DomainCode = "personal_social"
)

// DomainCodes lists every domain in canonical display order.
var DomainCodes = []DomainCode{
	DomainCommunication,
	DomainGrossMotor,
	DomainFineMotor,
	DomainProblemSolving,
	DomainPersonalSocial,
}

// Valid reports whether the code is one of the five known domains.
func (c DomainCode) Valid() bool {
	for _, known := range DomainCodes {
		if c == known {
			return true
		}
	}
	return false
}

// ScreeningStatus captures the lifecycle of a screening session.
type ScreeningStatus string

const (
	ScreeningInProgress ScreeningStatus = "in_progress"
	ScreeningCompleted  ScreeningStatus = "completed"
	ScreeningCancelled  ScreeningStatus = "cancelled"
)

// Valid reports whether the status is known.
func (s ScreeningStatus) Valid() bool {
	switch s {
	case ScreeningInProgress, ScreeningCompleted, ScreeningCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further workflow transitions are possible.
func (s ScreeningStatus) Terminal() bool {
	return s == ScreeningCompleted || s == ScreeningCancelled
}

// DomainStatus is the three-tier classification of a domain score.
type DomainStatus string

const (
	StatusSesuai       DomainStatus = "sesuai"
	StatusPantau       DomainStatus = "pantau"
	StatusPerluRujukan DomainStatus = "perlu_rujukan"
)

// Valid reports whether the status is known.
func (s DomainStatus) Valid() bool {
	return s.Severity() > 0
}

// Severity orders statuses: perlu_rujukan > pantau > sesuai. Unknown values are 0.
func (s DomainStatus) Severity() int {
	switch s {
	case StatusSesuai:
		return 1
	case StatusPantau:
		return 2
	case StatusPerluRujukan:
		return 3
	}
	return 0
}

// Label returns the Indonesian display label.
func (s DomainStatus) Label() string {
	switch s {
	case StatusSesuai:
		return "Perkembangan Sesuai"
	case StatusPantau:
		return "Perlu Pemantauan"
	case StatusPerluRujukan:
		return "Perlu Rujukan"
	}
	return string(s)
}

// AnswerValue is a caregiver response to a single question.
type AnswerValue string

const (
	AnswerYes       AnswerValue = "yes"
	AnswerSometimes AnswerValue = "sometimes"
	AnswerNo        AnswerValue = "no"
)

// Score returns the points for the answer and false when the value is unknown.
func (a AnswerValue) Score() (int, bool) {
	switch a {
	case AnswerYes:
		return 10, true
	case AnswerSometimes:
		return 5, true
	case AnswerNo:
		return 0, true
	}
	return 0, false
}

// AgeInterval is one of the standard questionnaire age bands.
type AgeInterval struct {
	ID         string `db:"id" json:"id"`
	AgeMonths  int    `db:"age_months" json:"age_months"`
	AgeLabel   string `db:"age_label" json:"age_label"`
	MinAgeDays int    `db:"min_age_days" json:"min_age_days"`
	MaxAgeDays int    `db:"max_age_days" json:"max_age_days"`
}

// Contains reports whether ageDays falls inside the interval, both ends inclusive.
func (i AgeInterval) Contains(ageDays int) bool {
	return ageDays >= i.MinAgeDays && ageDays <= i.MaxAgeDays
}

// Domain is a developmental area.
type Domain struct {
	ID           string     `db:"id" json:"id"`
	Code         DomainCode `db:"code" json:"code"`
	Name         string     `db:"name" json:"name"`
	Icon         *string    `db:"icon" json:"icon,omitempty"`
	Color        *string    `db:"color" json:"color,omitempty"`
	DisplayOrder int        `db:"display_order" json:"display_order"`
}

// Question is a single questionnaire item for an (interval, domain) pair.
type Question struct {
	ID             string  `db:"id" json:"id"`
	AgeIntervalID  string  `db:"age_interval_id" json:"age_interval_id"`
	DomainID       string  `db:"domain_id" json:"domain_id"`
	QuestionNumber int     `db:"question_number" json:"question_number"`
	QuestionText   string  `db:"question_text" json:"question_text"`
	HintText       *string `db:"hint_text" json:"hint_text,omitempty"`
	ImageURL       *string `db:"image_url" json:"image_url,omitempty"`
	DisplayOrder   int     `db:"display_order" json:"display_order"`
}

// CutoffScore holds the referral and monitoring thresholds for an (interval, domain) pair.
type CutoffScore struct {
	ID              string  `db:"id" json:"id"`
	AgeIntervalID   string  `db:"age_interval_id" json:"age_interval_id"`
	DomainID        string  `db:"domain_id" json:"domain_id"`
	CutoffScore     float64 `db:"cutoff_score" json:"cutoff_score"`
	MonitoringScore float64 `db:"monitoring_score" json:"monitoring_score"`
	MaxScore        float64 `db:"max_score" json:"max_score"`
}

// Recommendation is a stimulation suggestion for an (interval, domain) pair.
type Recommendation struct {
	ID                 string `db:"id" json:"id"`
	DomainID           string `db:"domain_id" json:"domain_id"`
	AgeIntervalID      string `db:"age_interval_id" json:"age_interval_id"`
	Priority           int    `db:"priority" json:"priority"`
	RecommendationText string `db:"recommendation_text" json:"recommendation_text"`
}

// Screening is one questionnaire session for a child.
type Screening struct {
	ID                   string          `db:"id" json:"id"`
	ChildID              string          `db:"child_id" json:"child_id"`
	AgeIntervalID        string          `db:"age_interval_id" json:"age_interval_id"`
	ScreeningDate        time.Time       `db:"screening_date" json:"screening_date"`
	AgeAtScreeningMonths int             `db:"age_at_screening_months" json:"age_at_screening_months"`
	AgeAtScreeningDays   int             `db:"age_at_screening_days" json:"age_at_screening_days"`
	Status               ScreeningStatus `db:"status" json:"status"`
	OverallStatus        *DomainStatus   `db:"overall_status" json:"overall_status,omitempty"`
	CompletedAt          *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	Notes                *string         `db:"notes" json:"notes,omitempty"`
	Version              int             `db:"version" json:"version"`
	CreatedBy            *string         `db:"created_by" json:"created_by,omitempty"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

// Answer is the recorded response to one question within a screening.
type Answer struct {
	ID          string      `db:"id" json:"id"`
	ScreeningID string      `db:"screening_id" json:"screening_id"`
	QuestionID  string      `db:"question_id" json:"question_id"`
	Answer      AnswerValue `db:"answer" json:"answer"`
	Score       int         `db:"score" json:"score"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// DomainResult is the immutable per-domain outcome written when a screening completes.
// Thresholds are copied so later reference edits never change a past result.
type DomainResult struct {
	ID              string       `db:"id" json:"id"`
	ScreeningID     string       `db:"screening_id" json:"screening_id"`
	DomainID        string       `db:"domain_id" json:"domain_id"`
	TotalScore      float64      `db:"total_score" json:"total_score"`
	CutoffScore     float64      `db:"cutoff_score" json:"cutoff_score"`
	MonitoringScore float64      `db:"monitoring_score" json:"monitoring_score"`
	MaxScore        float64      `db:"max_score" json:"max_score"`
	Status          DomainStatus `db:"status" json:"status"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
}

// ScreeningFilter narrows a child's screening history.
type ScreeningFilter struct {
	ChildID  string
	Status   *ScreeningStatus
	Page     int
	PageSize int
}

// DomainProgress is the answered/total count for a single domain.
type DomainProgress struct {
	DomainCode        DomainCode `json:"domain_code"`
	DomainName        string     `json:"domain_name"`
	AnsweredQuestions int        `json:"answered_questions"`
	TotalQuestions    int        `json:"total_questions"`
	ProgressPercent   int        `json:"progress_percent"`
}

// ScreeningProgress summarises how much of the questionnaire has been answered.
type ScreeningProgress struct {
	ScreeningID         string           `json:"screening_id"`
	Status              ScreeningStatus  `json:"status"`
	TotalQuestions      int              `json:"total_questions"`
	AnsweredQuestions   int              `json:"answered_questions"`
	ProgressPercent     int              `json:"progress_percent"`
	Domains             []DomainProgress `json:"domains"`
	AnsweredQuestionIDs []string         `json:"answered_question_ids"`
	LastSavedAt         *time.Time       `json:"last_saved_at"`
}

// DomainResultView decorates a stored result with domain metadata for clients.
type DomainResultView struct {
	DomainID        string       `json:"domain_id"`
	DomainCode      DomainCode   `json:"domain_code"`
	DomainName      string       `json:"domain_name"`
	TotalScore      float64      `json:"total_score"`
	CutoffScore     float64      `json:"cutoff_score"`
	MonitoringScore float64      `json:"monitoring_score"`
	MaxScore        float64      `json:"max_score"`
	Status          DomainStatus `json:"status"`
	StatusLabel     string       `json:"status_label"`
}

// ScreeningResults is the outcome view of a completed screening.
type ScreeningResults struct {
	ScreeningID   string             `json:"screening_id"`
	ChildID       string             `json:"child_id"`
	AgeIntervalID string             `json:"age_interval_id"`
	AgeLabel      string             `json:"age_label"`
	ScreeningDate time.Time          `json:"screening_date"`
	CompletedAt   *time.Time         `json:"completed_at"`
	OverallStatus DomainStatus       `json:"overall_status"`
	OverallLabel  string             `json:"overall_label"`
	Domains       []DomainResultView `json:"domains"`
}

// ScreeningDetail is a screening with its answers and, once completed, its results.
type ScreeningDetail struct {
	Screening
	AgeLabel string             `json:"age_label"`
	Answers  []Answer           `json:"answers"`
	Results  []DomainResultView `json:"results,omitempty"`
}

// ScreeningSummary is a history row returned from list endpoints.
type ScreeningSummary struct {
	Screening
	AgeLabel string `json:"age_label"`
}

// DomainQuestions is one domain's block of a question sheet.
type DomainQuestions struct {
	Domain    Domain       `json:"domain"`
	Cutoff    *CutoffScore `json:"cutoff,omitempty"`
	Questions []Question   `json:"questions"`
}

// QuestionSheet is the full questionnaire of an age interval grouped by domain.
type QuestionSheet struct {
	AgeInterval    AgeInterval       `json:"age_interval"`
	TotalQuestions int               `json:"total_questions"`
	Domains        []DomainQuestions `json:"domains"`
}

// ReferenceStats reports the size of the loaded reference catalog.
type ReferenceStats struct {
	Counts   map[string]int `json:"counts"`
	LoadedAt time.Time      `json:"loaded_at"`
}
