package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ClassRepository reads class counts used for capacity planning.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// Count returns the number of classes that need a timetable, optionally for one grade.
func (r *ClassRepository) Count(ctx context.Context, grade string) (int, error) {
	query := `SELECT COUNT(*) FROM classes`
	var args []interface{}
	if grade != "" {
		query += ` WHERE grade = $1`
		args = append(args, grade)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count classes: %w", err)
	}
	return count, nil
}
