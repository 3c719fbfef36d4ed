package asq3

import (
	"errors"
	"fmt"

	"github.com/noah-isme/asq3-api/internal/models"
)

var (
	// ErrIncomplete is returned when evaluation is attempted before every question is answered.
	ErrIncomplete = errors.New("asq3: screening has unanswered questions")
	// ErrMissingCutoff is returned when a domain with questions has no thresholds.
	ErrMissingCutoff = errors.New("asq3: cutoff score missing")
)

// DomainOutcome is the classification of one domain.
type DomainOutcome struct {
	Domain models.Domain
	Total  float64
	Cutoff models.CutoffScore
	Status models.DomainStatus
}

// Evaluation is the full outcome of a completed questionnaire.
type Evaluation struct {
	Domains []DomainOutcome
	Overall models.DomainStatus
}

// Unanswered returns the questions of the interval that have no answer, in question-set order.
func (c *Catalog) Unanswered(intervalID string, answers []models.Answer) []models.Question {
	answered := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = struct{}{}
	}
	var missing []models.Question
	for _, q := range c.questionsByInterval[intervalID] {
		if _, ok := answered[q.ID]; !ok {
			missing = append(missing, q)
		}
	}
	return missing
}

// Evaluate scores and classifies every domain that has questions in the
// interval and aggregates the overall status. All questions must be answered.
func (c *Catalog) Evaluate(intervalID string, answers []models.Answer) (Evaluation, error) {
	if missing := c.Unanswered(intervalID, answers); len(missing) > 0 {
		return Evaluation{}, fmt.Errorf("%w: %d remaining", ErrIncomplete, len(missing))
	}

	grouped := c.QuestionsFor(intervalID)
	eval := Evaluation{Domains: make([]DomainOutcome, 0, len(c.domains))}
	statuses := make([]models.DomainStatus, 0, len(c.domains))

	for _, domain := range c.domains {
		questions := grouped[domain.Code]
		if len(questions) == 0 {
			continue
		}
		cutoff, ok := c.Cutoff(intervalID, domain.ID)
		if !ok {
			return Evaluation{}, fmt.Errorf("%w for domain %s", ErrMissingCutoff, domain.Code)
		}
		total := DomainTotal(answers, questions)
		status := Classify(total, cutoff.CutoffScore, cutoff.MonitoringScore)
		eval.Domains = append(eval.Domains, DomainOutcome{
			Domain: domain,
			Total:  total,
			Cutoff: cutoff,
			Status: status,
		})
		statuses = append(statuses, status)
	}
	eval.Overall = Aggregate(statuses)

	return eval, nil
}
