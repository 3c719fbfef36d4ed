package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/asq3-api/internal/models"
)

// ErrVersionConflict is returned when a screening changed since it was read.
var ErrVersionConflict = errors.New("screening version conflict")

const screeningColumns = `id, child_id, age_interval_id, screening_date, age_at_screening_months, age_at_screening_days,
	status, overall_status, completed_at, notes, version, created_by, created_at, updated_at`

const (
	insertScreeningQuery = `INSERT INTO asq3_screenings (` + screeningColumns + `)
VALUES (:id, :child_id, :age_interval_id, :screening_date, :age_at_screening_months, :age_at_screening_days,
	:status, :overall_status, :completed_at, :notes, :version, :created_by, :created_at, :updated_at)`

	bumpVersionQuery = `UPDATE asq3_screenings SET version = version + 1, updated_at = $3
WHERE id = $1 AND version = $2 AND status = 'in_progress'`

	upsertAnswerQuery = `INSERT INTO asq3_screening_answers (id, screening_id, question_id, answer, score, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (screening_id, question_id) DO UPDATE
SET answer = EXCLUDED.answer, score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
WHERE asq3_screening_answers.answer IS DISTINCT FROM EXCLUDED.answer`

	completeScreeningQuery = `UPDATE asq3_screenings
SET status = 'completed', overall_status = $3, completed_at = $4, version = version + 1, updated_at = $4
WHERE id = $1 AND version = $2 AND status = 'in_progress'`

	cancelScreeningQuery = `UPDATE asq3_screenings
SET status = 'cancelled', version = version + 1, updated_at = $3
WHERE id = $1 AND version = $2 AND status = 'in_progress'`

	insertResultQuery = `INSERT INTO asq3_screening_results (id, screening_id, domain_id, total_score, cutoff_score, monitoring_score, max_score, status, created_at)
VALUES (:id, :screening_id, :domain_id, :total_score, :cutoff_score, :monitoring_score, :max_score, :status, :created_at)`
)

// ScreeningRepository persists screening sessions, their answers and results.
type ScreeningRepository struct {
	db *sqlx.DB
}

// NewScreeningRepository constructs a new repository instance.
func NewScreeningRepository(db *sqlx.DB) *ScreeningRepository {
	return &ScreeningRepository{db: db}
}

// Create inserts a new in-progress screening.
func (r *ScreeningRepository) Create(ctx context.Context, screening *models.Screening) error {
	if screening.ID == "" {
		screening.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if screening.CreatedAt.IsZero() {
		screening.CreatedAt = now
	}
	screening.UpdatedAt = screening.CreatedAt
	if screening.Version == 0 {
		screening.Version = 1
	}
	if screening.Status == "" {
		screening.Status = models.ScreeningInProgress
	}
	if _, err := r.db.NamedExecContext(ctx, insertScreeningQuery, screening); err != nil {
		return fmt.Errorf("create screening: %w", err)
	}
	return nil
}

// FindByID returns a screening by id.
func (r *ScreeningRepository) FindByID(ctx context.Context, id string) (*models.Screening, error) {
	var screening models.Screening
	query := `SELECT ` + screeningColumns + ` FROM asq3_screenings WHERE id = $1`
	if err := r.db.GetContext(ctx, &screening, query, id); err != nil {
		return nil, err
	}
	return &screening, nil
}

// ListByChild returns a page of a child's screenings, newest first, plus the total count.
func (r *ScreeningRepository) ListByChild(ctx context.Context, filter models.ScreeningFilter) ([]models.Screening, int, error) {
	conditions := []string{"child_id = $1"}
	args := []interface{}{filter.ChildID}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	listArgs := append(append([]interface{}{}, args...), size, (page-1)*size)
	query := fmt.Sprintf(`SELECT %s FROM asq3_screenings %s ORDER BY screening_date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		screeningColumns, where, len(args)+1, len(args)+2)

	var screenings []models.Screening
	if err := r.db.SelectContext(ctx, &screenings, query, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list screenings: %w", err)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM asq3_screenings %s", where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count screenings: %w", err)
	}

	return screenings, total, nil
}

// UpdateNotes replaces the free-text notes. Notes do not take part in version checks.
func (r *ScreeningRepository) UpdateNotes(ctx context.Context, id string, notes *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE asq3_screenings SET notes = $2, updated_at = $3 WHERE id = $1`, id, notes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update screening notes: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("notes rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListAnswers returns every answer recorded for a screening.
func (r *ScreeningRepository) ListAnswers(ctx context.Context, screeningID string) ([]models.Answer, error) {
	var answers []models.Answer
	query := `SELECT id, screening_id, question_id, answer, score, created_at, updated_at
FROM asq3_screening_answers WHERE screening_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &answers, query, screeningID); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return answers, nil
}

// ListResults returns the stored per-domain results of a screening.
func (r *ScreeningRepository) ListResults(ctx context.Context, screeningID string) ([]models.DomainResult, error) {
	var results []models.DomainResult
	query := `SELECT id, screening_id, domain_id, total_score, cutoff_score, monitoring_score, max_score, status, created_at
FROM asq3_screening_results WHERE screening_id = $1`
	if err := r.db.SelectContext(ctx, &results, query, screeningID); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// SaveAnswers upserts a batch of answers against the screening version that was
// read. Resubmitting an identical answer leaves its timestamps untouched. The
// batch is applied entirely or not at all.
func (r *ScreeningRepository) SaveAnswers(ctx context.Context, screeningID string, version int, answers []models.Answer) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin answers tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if err = bumpVersion(ctx, tx, bumpVersionQuery, screeningID, version, now); err != nil {
		return err
	}

	for _, answer := range answers {
		id := answer.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err = tx.ExecContext(ctx, upsertAnswerQuery, id, screeningID, answer.QuestionID, answer.Answer, answer.Score, now); err != nil {
			return fmt.Errorf("upsert answer %s: %w", answer.QuestionID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit answers tx: %w", err)
	}
	return nil
}

// Complete marks the screening completed and writes its domain results atomically.
func (r *ScreeningRepository) Complete(ctx context.Context, screening *models.Screening, results []models.DomainResult) (err error) {
	if screening.OverallStatus == nil || screening.CompletedAt == nil {
		return errors.New("complete screening: overall status and completion time are required")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin complete tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, completeScreeningQuery, screening.ID, screening.Version, *screening.OverallStatus, *screening.CompletedAt)
	if err != nil {
		return fmt.Errorf("complete screening: %w", err)
	}
	if err = expectOneRow(res); err != nil {
		return err
	}

	for i := range results {
		if results[i].ID == "" {
			results[i].ID = uuid.NewString()
		}
		results[i].ScreeningID = screening.ID
		results[i].CreatedAt = *screening.CompletedAt
		if _, err = tx.NamedExecContext(ctx, insertResultQuery, results[i]); err != nil {
			return fmt.Errorf("insert result %s: %w", results[i].DomainID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit complete tx: %w", err)
	}
	screening.Status = models.ScreeningCompleted
	screening.Version++
	screening.UpdatedAt = *screening.CompletedAt
	return nil
}

// Cancel moves an in-progress screening to cancelled.
func (r *ScreeningRepository) Cancel(ctx context.Context, id string, version int) error {
	res, err := r.db.ExecContext(ctx, cancelScreeningQuery, id, version, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cancel screening: %w", err)
	}
	return expectOneRow(res)
}

func bumpVersion(ctx context.Context, tx *sqlx.Tx, query, id string, version int, now time.Time) error {
	res, err := tx.ExecContext(ctx, query, id, version, now)
	if err != nil {
		return fmt.Errorf("bump screening version: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}
