package asq3

import (
	"fmt"

	"github.com/noah-isme/asq3-api/internal/models"
)

// ErrInvalidAnswer is returned for answer values other than yes, sometimes or no.
var ErrInvalidAnswer = fmt.Errorf("asq3: answer must be one of %q, %q or %q", models.AnswerYes, models.AnswerSometimes, models.AnswerNo)

// ScoreAnswer maps an answer value to its points.
func ScoreAnswer(value models.AnswerValue) (int, error) {
	score, ok := value.Score()
	if !ok {
		return 0, ErrInvalidAnswer
	}
	return score, nil
}

// DomainTotal sums the recorded scores of answers whose question belongs to
// the given domain question list. Unanswered questions contribute nothing.
func DomainTotal(answers []models.Answer, domainQuestions []models.Question) float64 {
	inDomain := make(map[string]struct{}, len(domainQuestions))
	for _, q := range domainQuestions {
		inDomain[q.ID] = struct{}{}
	}

	var total float64
	for _, a := range answers {
		if _, ok := inDomain[a.QuestionID]; ok {
			total += float64(a.Score)
		}
	}
	return total
}
