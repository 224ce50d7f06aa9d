package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// SubjectRepository reads subjects and their weekly loads.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListForTimetable returns subjects in display order, optionally limited to one school phase.
func (r *SubjectRepository) ListForTimetable(ctx context.Context, phase string) ([]models.Subject, error) {
	query := `SELECT id, code, name, periods_per_class, phases, created_at, updated_at FROM subjects`
	var args []interface{}
	if phase != "" {
		query += ` WHERE $1 = ANY(phases)`
		args = append(args, phase)
	}
	query += ` ORDER BY code ASC, id ASC`

	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("list subjects for timetable: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, code, name, periods_per_class, phases, created_at, updated_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}
