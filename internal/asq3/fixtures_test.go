package asq3

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/asq3-api/internal/models"
)

// standardBands are the 21 ASQ-3 intervals as {months, min days, max days}.
var standardBands = [][3]int{
	{2, 46, 76}, {4, 107, 137}, {6, 168, 198}, {8, 229, 259}, {9, 260, 289},
	{10, 290, 319}, {12, 350, 380}, {14, 411, 441}, {16, 472, 502}, {18, 533, 563},
	{20, 594, 624}, {22, 655, 685}, {24, 716, 746}, {27, 807, 837}, {30, 898, 928},
	{33, 989, 1019}, {36, 1080, 1110}, {42, 1262, 1292}, {48, 1444, 1474},
	{54, 1626, 1656}, {60, 1808, 1838},
}

func standardIntervals() []models.AgeInterval {
	intervals := make([]models.AgeInterval, 0, len(standardBands))
	for _, band := range standardBands {
		intervals = append(intervals, models.AgeInterval{
			ID:         fmt.Sprintf("interval-%d", band[0]),
			AgeMonths:  band[0],
			AgeLabel:   fmt.Sprintf("%d Bulan", band[0]),
			MinAgeDays: band[1],
			MaxAgeDays: band[2],
		})
	}
	return intervals
}

func testDomains() []models.Domain {
	domains := make([]models.Domain, 0, len(models.DomainCodes))
	for i, code := range models.DomainCodes {
		domains = append(domains, models.Domain{
			ID:           "domain-" + string(code),
			Code:         code,
			Name:         string(code),
			DisplayOrder: i + 1,
		})
	}
	return domains
}

// twelveMonthCutoffs are the published 12-month thresholds in canonical domain order.
var twelveMonthCutoffs = []float64{15.64, 21.49, 34.50, 36.30, 28.12}

// testReferenceData seeds 6 questions per domain for the 12-month interval
// with cutoffs, plus three communication recommendations in shuffled priority.
func testReferenceData() ReferenceData {
	data := ReferenceData{Intervals: standardIntervals(), Domains: testDomains()}
	intervalID := "interval-12"
	for i, domain := range data.Domains {
		for n := 1; n <= 6; n++ {
			data.Questions = append(data.Questions, models.Question{
				ID:             fmt.Sprintf("q-%s-%d", domain.Code, n),
				AgeIntervalID:  intervalID,
				DomainID:       domain.ID,
				QuestionNumber: n,
				QuestionText:   fmt.Sprintf("%s question %d", domain.Code, n),
				DisplayOrder:   n,
			})
		}
		data.Cutoffs = append(data.Cutoffs, models.CutoffScore{
			ID:              "cutoff-" + string(domain.Code),
			AgeIntervalID:   intervalID,
			DomainID:        domain.ID,
			CutoffScore:     twelveMonthCutoffs[i],
			MonitoringScore: MonitoringScore(twelveMonthCutoffs[i], MaxDomainScore),
			MaxScore:        MaxDomainScore,
		})
	}
	data.Recommendations = []models.Recommendation{
		{ID: "r3", DomainID: "domain-communication", AgeIntervalID: intervalID, Priority: 3, RecommendationText: "third"},
		{ID: "r1", DomainID: "domain-communication", AgeIntervalID: intervalID, Priority: 1, RecommendationText: "first"},
		{ID: "r2", DomainID: "domain-communication", AgeIntervalID: intervalID, Priority: 2, RecommendationText: "second"},
	}
	return data
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := NewCatalog(testReferenceData())
	require.NoError(t, err)
	return catalog
}

// answerAll answers every question of the interval with the value chosen per domain.
func answerAll(c *Catalog, intervalID string, pick func(models.DomainCode) models.AnswerValue) []models.Answer {
	var answers []models.Answer
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, q := range c.QuestionSet(intervalID) {
		domain, _ := c.Domain(q.DomainID)
		value := pick(domain.Code)
		score, _ := value.Score()
		answers = append(answers, models.Answer{
			ID:         fmt.Sprintf("a-%d", i),
			QuestionID: q.ID,
			Answer:     value,
			Score:      score,
			UpdatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}
	return answers
}
