package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/asq3-api/internal/models"
)

const interventionColumns = `id, screening_id, domain_id, type, action, notes, status, follow_up_date, completed_at, created_by, created_at, updated_at`

// InterventionRepository persists follow-up actions of completed screenings.
type InterventionRepository struct {
	db *sqlx.DB
}

// NewInterventionRepository constructs a new repository instance.
func NewInterventionRepository(db *sqlx.DB) *InterventionRepository {
	return &InterventionRepository{db: db}
}

// ListByScreening returns the screening's interventions, oldest first.
func (r *InterventionRepository) ListByScreening(ctx context.Context, screeningID string) ([]models.Intervention, error) {
	var items []models.Intervention
	query := `SELECT ` + interventionColumns + ` FROM asq3_screening_interventions WHERE screening_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &items, query, screeningID); err != nil {
		return nil, fmt.Errorf("list interventions: %w", err)
	}
	return items, nil
}

// FindByID returns an intervention scoped to its screening.
func (r *InterventionRepository) FindByID(ctx context.Context, screeningID, id string) (*models.Intervention, error) {
	var item models.Intervention
	query := `SELECT ` + interventionColumns + ` FROM asq3_screening_interventions WHERE id = $1 AND screening_id = $2`
	if err := r.db.GetContext(ctx, &item, query, id, screeningID); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new intervention.
func (r *InterventionRepository) Create(ctx context.Context, item *models.Intervention) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	query := `INSERT INTO asq3_screening_interventions (` + interventionColumns + `)
VALUES (:id, :screening_id, :domain_id, :type, :action, :notes, :status, :follow_up_date, :completed_at, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create intervention: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of an intervention.
func (r *InterventionRepository) Update(ctx context.Context, item *models.Intervention) error {
	item.UpdatedAt = time.Now().UTC()
	query := `UPDATE asq3_screening_interventions
SET domain_id = :domain_id, type = :type, action = :action, notes = :notes, status = :status,
	follow_up_date = :follow_up_date, completed_at = :completed_at, updated_at = :updated_at
WHERE id = :id AND screening_id = :screening_id`
	res, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update intervention: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("intervention rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an intervention.
func (r *InterventionRepository) Delete(ctx context.Context, screeningID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM asq3_screening_interventions WHERE id = $1 AND screening_id = $2`, id, screeningID)
	if err != nil {
		return fmt.Errorf("delete intervention: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("intervention rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
