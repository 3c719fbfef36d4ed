package models

import "time"

// Child is the subset of the child registry the screening engine needs.
type Child struct {
	ID       string    `db:"id" json:"id"`
	ParentID *string   `db:"parent_id" json:"parent_id,omitempty"`
	Name     string    `db:"name" json:"name"`
	Birthday time.Time `db:"birthday" json:"birthday"`
	Gender   string    `db:"gender" json:"gender"`
	IsActive bool      `db:"is_active" json:"is_active"`
}
