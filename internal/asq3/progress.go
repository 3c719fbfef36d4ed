package asq3

import (
	"math"
	"time"

	"github.com/noah-isme/asq3-api/internal/models"
)

// Percent is round(100*part/whole), half away from zero, and 0 for an empty whole.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}

// ComputeProgress reports answered/total counts overall and per domain.
// Answers to questions outside questionsByDomain are ignored in the counts,
// but every answer is considered for LastSavedAt.
func ComputeProgress(
	screening models.Screening,
	domains []models.Domain,
	questionsByDomain map[models.DomainCode][]models.Question,
	answers []models.Answer,
) models.ScreeningProgress {
	answered := make(map[string]struct{}, len(answers))
	var lastSaved *time.Time
	for i := range answers {
		answered[answers[i].QuestionID] = struct{}{}
		if lastSaved == nil || answers[i].UpdatedAt.After(*lastSaved) {
			ts := answers[i].UpdatedAt
			lastSaved = &ts
		}
	}

	progress := models.ScreeningProgress{
		ScreeningID:         screening.ID,
		Status:              screening.Status,
		Domains:             make([]models.DomainProgress, 0, len(domains)),
		AnsweredQuestionIDs: []string{},
		LastSavedAt:         lastSaved,
	}

	for _, domain := range domains {
		questions := questionsByDomain[domain.Code]
		dp := models.DomainProgress{
			DomainCode:     domain.Code,
			DomainName:     domain.Name,
			TotalQuestions: len(questions),
		}
		for _, q := range questions {
			if _, ok := answered[q.ID]; ok {
				dp.AnsweredQuestions++
				progress.AnsweredQuestionIDs = append(progress.AnsweredQuestionIDs, q.ID)
			}
		}
		dp.ProgressPercent = Percent(dp.AnsweredQuestions, dp.TotalQuestions)

		progress.TotalQuestions += dp.TotalQuestions
		progress.AnsweredQuestions += dp.AnsweredQuestions
		progress.Domains = append(progress.Domains, dp)
	}
	progress.ProgressPercent = Percent(progress.AnsweredQuestions, progress.TotalQuestions)

	return progress
}
