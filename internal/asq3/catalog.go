package asq3

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/asq3-api/internal/models"
)

// ReferenceData is the raw reference tables a Catalog is built from.
type ReferenceData struct {
	Intervals       []models.AgeInterval
	Domains         []models.Domain
	Questions       []models.Question
	Cutoffs         []models.CutoffScore
	Recommendations []models.Recommendation
}

type pairKey struct {
	intervalID string
	domainID   string
}

// Catalog is an immutable, indexed view over the reference tables. It is safe
// for concurrent reads; reloading means building a new Catalog.
type Catalog struct {
	intervals    []models.AgeInterval
	intervalByID map[string]models.AgeInterval

	domains      []models.Domain
	domainByID   map[string]models.Domain
	domainByCode map[models.DomainCode]models.Domain

	questionByID        map[string]models.Question
	questionsByInterval map[string][]models.Question

	cutoffs         map[pairKey]models.CutoffScore
	recommendations map[pairKey][]models.Recommendation

	builtAt time.Time
}

// NewCatalog validates the reference data and indexes it.
func NewCatalog(data ReferenceData) (*Catalog, error) {
	c := &Catalog{
		intervalByID:        make(map[string]models.AgeInterval, len(data.Intervals)),
		domainByID:          make(map[string]models.Domain, len(data.Domains)),
		domainByCode:        make(map[models.DomainCode]models.Domain, len(data.Domains)),
		questionByID:        make(map[string]models.Question, len(data.Questions)),
		questionsByInterval: make(map[string][]models.Question),
		cutoffs:             make(map[pairKey]models.CutoffScore, len(data.Cutoffs)),
		recommendations:     make(map[pairKey][]models.Recommendation),
		builtAt:             time.Now().UTC(),
	}

	for _, interval := range data.Intervals {
		if interval.MinAgeDays > interval.MaxAgeDays {
			return nil, fmt.Errorf("interval %d months: min_age_days %d exceeds max_age_days %d", interval.AgeMonths, interval.MinAgeDays, interval.MaxAgeDays)
		}
		if _, dup := c.intervalByID[interval.ID]; dup {
			return nil, fmt.Errorf("duplicate interval id %s", interval.ID)
		}
		c.intervalByID[interval.ID] = interval
		c.intervals = append(c.intervals, interval)
	}
	sort.SliceStable(c.intervals, func(i, j int) bool { return c.intervals[i].AgeMonths < c.intervals[j].AgeMonths })

	for _, domain := range data.Domains {
		if !domain.Code.Valid() {
			return nil, fmt.Errorf("unknown domain code %q", domain.Code)
		}
		if _, dup := c.domainByCode[domain.Code]; dup {
			return nil, fmt.Errorf("duplicate domain code %q", domain.Code)
		}
		c.domainByID[domain.ID] = domain
		c.domainByCode[domain.Code] = domain
		c.domains = append(c.domains, domain)
	}
	sort.SliceStable(c.domains, func(i, j int) bool { return c.domains[i].DisplayOrder < c.domains[j].DisplayOrder })

	for _, q := range data.Questions {
		if _, ok := c.intervalByID[q.AgeIntervalID]; !ok {
			return nil, fmt.Errorf("question %s references unknown interval %s", q.ID, q.AgeIntervalID)
		}
		if _, ok := c.domainByID[q.DomainID]; !ok {
			return nil, fmt.Errorf("question %s references unknown domain %s", q.ID, q.DomainID)
		}
		if _, dup := c.questionByID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %s", q.ID)
		}
		c.questionByID[q.ID] = q
		c.questionsByInterval[q.AgeIntervalID] = append(c.questionsByInterval[q.AgeIntervalID], q)
	}
	for intervalID, questions := range c.questionsByInterval {
		sort.SliceStable(questions, func(i, j int) bool {
			di, dj := c.domainByID[questions[i].DomainID].DisplayOrder, c.domainByID[questions[j].DomainID].DisplayOrder
			if di != dj {
				return di < dj
			}
			if questions[i].DisplayOrder != questions[j].DisplayOrder {
				return questions[i].DisplayOrder < questions[j].DisplayOrder
			}
			return questions[i].QuestionNumber < questions[j].QuestionNumber
		})
		c.questionsByInterval[intervalID] = questions
	}

	for _, cutoff := range data.Cutoffs {
		key := pairKey{cutoff.AgeIntervalID, cutoff.DomainID}
		if _, ok := c.intervalByID[key.intervalID]; !ok {
			return nil, fmt.Errorf("cutoff references unknown interval %s", key.intervalID)
		}
		if _, ok := c.domainByID[key.domainID]; !ok {
			return nil, fmt.Errorf("cutoff references unknown domain %s", key.domainID)
		}
		if cutoff.MaxScore == 0 {
			cutoff.MaxScore = MaxDomainScore
		}
		c.cutoffs[key] = cutoff
	}

	for _, rec := range data.Recommendations {
		key := pairKey{rec.AgeIntervalID, rec.DomainID}
		c.recommendations[key] = append(c.recommendations[key], rec)
	}
	for key, recs := range c.recommendations {
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority < recs[j].Priority })
		c.recommendations[key] = recs
	}

	return c, nil
}

// BuiltAt is when the catalog was indexed.
func (c *Catalog) BuiltAt() time.Time { return c.builtAt }

// Intervals returns all intervals ordered by age.
func (c *Catalog) Intervals() []models.AgeInterval {
	out := make([]models.AgeInterval, len(c.intervals))
	copy(out, c.intervals)
	return out
}

// Interval looks up an interval by id.
func (c *Catalog) Interval(id string) (models.AgeInterval, bool) {
	interval, ok := c.intervalByID[id]
	return interval, ok
}

// Resolve picks the interval for a child aged ageDays.
func (c *Catalog) Resolve(ageDays int) (models.AgeInterval, error) {
	return ResolveInterval(c.intervals, ageDays)
}

// Domains returns all domains in display order.
func (c *Catalog) Domains() []models.Domain {
	out := make([]models.Domain, len(c.domains))
	copy(out, c.domains)
	return out
}

// Domain looks up a domain by id.
func (c *Catalog) Domain(id string) (models.Domain, bool) {
	domain, ok := c.domainByID[id]
	return domain, ok
}

// DomainByCode looks up a domain by its code.
func (c *Catalog) DomainByCode(code models.DomainCode) (models.Domain, bool) {
	domain, ok := c.domainByCode[code]
	return domain, ok
}

// Question looks up a question by id.
func (c *Catalog) Question(id string) (models.Question, bool) {
	q, ok := c.questionByID[id]
	return q, ok
}

// QuestionSet returns the interval's questions ordered by domain then display order.
func (c *Catalog) QuestionSet(intervalID string) []models.Question {
	questions := c.questionsByInterval[intervalID]
	out := make([]models.Question, len(questions))
	copy(out, questions)
	return out
}

// QuestionsFor groups the interval's questions by domain code.
func (c *Catalog) QuestionsFor(intervalID string) map[models.DomainCode][]models.Question {
	grouped := make(map[models.DomainCode][]models.Question, len(c.domains))
	for _, q := range c.questionsByInterval[intervalID] {
		code := c.domainByID[q.DomainID].Code
		grouped[code] = append(grouped[code], q)
	}
	return grouped
}

// Cutoff returns the thresholds for an (interval, domain) pair.
func (c *Catalog) Cutoff(intervalID, domainID string) (models.CutoffScore, bool) {
	cutoff, ok := c.cutoffs[pairKey{intervalID, domainID}]
	return cutoff, ok
}

// CutoffsFor returns every cutoff of an interval keyed by domain code.
func (c *Catalog) CutoffsFor(intervalID string) map[models.DomainCode]models.CutoffScore {
	out := make(map[models.DomainCode]models.CutoffScore, len(c.domains))
	for _, domain := range c.domains {
		if cutoff, ok := c.cutoffs[pairKey{intervalID, domain.ID}]; ok {
			out[domain.Code] = cutoff
		}
	}
	return out
}

// Recommendations returns the recommendation rows for an exact (domain, interval) pair in priority order.
func (c *Catalog) Recommendations(domainID, intervalID string) []models.Recommendation {
	recs := c.recommendations[pairKey{intervalID, domainID}]
	out := make([]models.Recommendation, len(recs))
	copy(out, recs)
	return out
}

// RecommendationsFor returns the recommendation texts for an exact (domain, interval) pair.
// There is no fallback to neighbouring intervals.
func (c *Catalog) RecommendationsFor(domainID, intervalID string) []string {
	recs := c.recommendations[pairKey{intervalID, domainID}]
	texts := make([]string, 0, len(recs))
	for _, rec := range recs {
		texts = append(texts, rec.RecommendationText)
	}
	return texts
}

// Stats reports row counts, used in reload logs.
func (c *Catalog) Stats() map[string]int {
	recs := 0
	for _, r := range c.recommendations {
		recs += len(r)
	}
	return map[string]int{
		"intervals":       len(c.intervals),
		"domains":         len(c.domains),
		"questions":       len(c.questionByID),
		"cutoffs":         len(c.cutoffs),
		"recommendations": recs,
	}
}
