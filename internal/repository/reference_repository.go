package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/asq3-api/internal/asq3"
)

const (
	selectDomainsQuery = `SELECT id, code, name, icon, color, display_order
FROM asq3_domains
ORDER BY display_order ASC`

	selectIntervalsQuery = `SELECT id, age_months, age_label, min_age_days, max_age_days
FROM asq3_age_intervals
ORDER BY age_months ASC`

	selectQuestionsQuery = `SELECT id, age_interval_id, domain_id, question_number, question_text, hint_text, image_url, display_order
FROM asq3_questions
WHERE retired_at IS NULL
ORDER BY age_interval_id, domain_id, display_order, question_number`

	selectCutoffsQuery = `SELECT id, age_interval_id, domain_id, cutoff_score, monitoring_score, max_score
FROM asq3_cutoff_scores`

	selectRecommendationsQuery = `SELECT id, domain_id, age_interval_id, priority, recommendation_text
FROM asq3_recommendations
ORDER BY domain_id, age_interval_id, priority`

	upsertDomainQuery = `INSERT INTO asq3_domains (id, code, name, icon, color, display_order)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name, icon = EXCLUDED.icon,
	color = EXCLUDED.color, display_order = EXCLUDED.display_order`

	upsertIntervalQuery = `INSERT INTO asq3_age_intervals (id, age_months, age_label, min_age_days, max_age_days)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET age_months = EXCLUDED.age_months, age_label = EXCLUDED.age_label,
	min_age_days = EXCLUDED.min_age_days, max_age_days = EXCLUDED.max_age_days`

	upsertQuestionQuery = `INSERT INTO asq3_questions (id, age_interval_id, domain_id, question_number, question_text, hint_text, image_url, display_order)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET question_number = EXCLUDED.question_number, question_text = EXCLUDED.question_text,
	hint_text = EXCLUDED.hint_text, image_url = EXCLUDED.image_url, display_order = EXCLUDED.display_order,
	retired_at = NULL`

	pruneQuestionsQuery = `DELETE FROM asq3_questions q
WHERE NOT (q.id = ANY($1))
AND NOT EXISTS (SELECT 1 FROM asq3_screening_answers a WHERE a.question_id = q.id)`

	retireQuestionsQuery = `UPDATE asq3_questions SET retired_at = $2
WHERE NOT (id = ANY($1)) AND retired_at IS NULL`

	upsertCutoffQuery = `INSERT INTO asq3_cutoff_scores (id, age_interval_id, domain_id, cutoff_score, monitoring_score, max_score)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (age_interval_id, domain_id) DO UPDATE SET cutoff_score = EXCLUDED.cutoff_score,
	monitoring_score = EXCLUDED.monitoring_score, max_score = EXCLUDED.max_score`

	upsertRecommendationQuery = `INSERT INTO asq3_recommendations (id, domain_id, age_interval_id, priority, recommendation_text)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET priority = EXCLUDED.priority, recommendation_text = EXCLUDED.recommendation_text`

	pruneRecommendationsQuery = `DELETE FROM asq3_recommendations WHERE NOT (id = ANY($1))`
)

// ReferenceRepository reads and writes the ASQ-3 reference tables.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository constructs a new repository instance.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// LoadAll reads every reference table.
func (r *ReferenceRepository) LoadAll(ctx context.Context) (asq3.ReferenceData, error) {
	var data asq3.ReferenceData
	if err := r.db.SelectContext(ctx, &data.Domains, selectDomainsQuery); err != nil {
		return asq3.ReferenceData{}, fmt.Errorf("list domains: %w", err)
	}
	if err := r.db.SelectContext(ctx, &data.Intervals, selectIntervalsQuery); err != nil {
		return asq3.ReferenceData{}, fmt.Errorf("list age intervals: %w", err)
	}
	if err := r.db.SelectContext(ctx, &data.Questions, selectQuestionsQuery); err != nil {
		return asq3.ReferenceData{}, fmt.Errorf("list questions: %w", err)
	}
	if err := r.db.SelectContext(ctx, &data.Cutoffs, selectCutoffsQuery); err != nil {
		return asq3.ReferenceData{}, fmt.Errorf("list cutoff scores: %w", err)
	}
	if err := r.db.SelectContext(ctx, &data.Recommendations, selectRecommendationsQuery); err != nil {
		return asq3.ReferenceData{}, fmt.Errorf("list recommendations: %w", err)
	}
	return data, nil
}

// CountIntervals returns the number of seeded age intervals.
func (r *ReferenceRepository) CountIntervals(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM asq3_age_intervals`); err != nil {
		return 0, fmt.Errorf("count age intervals: %w", err)
	}
	return count, nil
}

// Replace upserts the reference tables in one transaction. Questions missing
// from data are deleted, or retired when recorded answers still reference
// them; retired questions are left out of LoadAll. Recommendations missing
// from data are pruned.
func (r *ReferenceRepository) Replace(ctx context.Context, data asq3.ReferenceData) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reference tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, d := range data.Domains {
		if _, err = tx.ExecContext(ctx, upsertDomainQuery, d.ID, d.Code, d.Name, d.Icon, d.Color, d.DisplayOrder); err != nil {
			return fmt.Errorf("upsert domain %s: %w", d.Code, err)
		}
	}
	for _, i := range data.Intervals {
		if _, err = tx.ExecContext(ctx, upsertIntervalQuery, i.ID, i.AgeMonths, i.AgeLabel, i.MinAgeDays, i.MaxAgeDays); err != nil {
			return fmt.Errorf("upsert age interval %d: %w", i.AgeMonths, err)
		}
	}
	questionIDs := make([]string, 0, len(data.Questions))
	for _, q := range data.Questions {
		if _, err = tx.ExecContext(ctx, upsertQuestionQuery, q.ID, q.AgeIntervalID, q.DomainID, q.QuestionNumber, q.QuestionText, q.HintText, q.ImageURL, q.DisplayOrder); err != nil {
			return fmt.Errorf("upsert question %s: %w", q.ID, err)
		}
		questionIDs = append(questionIDs, q.ID)
	}
	if _, err = tx.ExecContext(ctx, pruneQuestionsQuery, pq.Array(questionIDs)); err != nil {
		return fmt.Errorf("prune questions: %w", err)
	}
	if _, err = tx.ExecContext(ctx, retireQuestionsQuery, pq.Array(questionIDs), time.Now().UTC()); err != nil {
		return fmt.Errorf("retire questions: %w", err)
	}
	for _, c := range data.Cutoffs {
		if _, err = tx.ExecContext(ctx, upsertCutoffQuery, c.ID, c.AgeIntervalID, c.DomainID, c.CutoffScore, c.MonitoringScore, c.MaxScore); err != nil {
			return fmt.Errorf("upsert cutoff %s: %w", c.ID, err)
		}
	}

	ids := make([]string, 0, len(data.Recommendations))
	for _, rec := range data.Recommendations {
		if _, err = tx.ExecContext(ctx, upsertRecommendationQuery, rec.ID, rec.DomainID, rec.AgeIntervalID, rec.Priority, rec.RecommendationText); err != nil {
			return fmt.Errorf("upsert recommendation %s: %w", rec.ID, err)
		}
		ids = append(ids, rec.ID)
	}
	if _, err = tx.ExecContext(ctx, pruneRecommendationsQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("prune recommendations: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reference tx: %w", err)
	}
	return nil
}
