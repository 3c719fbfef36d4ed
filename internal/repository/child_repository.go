package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/asq3-api/internal/models"
)

// ChildRepository reads child records from the local registry table.
type ChildRepository struct {
	db *sqlx.DB
}

// NewChildRepository constructs a new repository instance.
func NewChildRepository(db *sqlx.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// FindByID returns an active, non-deleted child.
func (r *ChildRepository) FindByID(ctx context.Context, id string) (*models.Child, error) {
	var child models.Child
	query := `SELECT id, parent_id, name, birthday, gender, is_active
FROM children WHERE id = $1 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &child, query, id); err != nil {
		return nil, err
	}
	return &child, nil
}
