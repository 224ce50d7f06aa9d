package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// ScheduleSettingsRepository persists the constraint document of each term.
type ScheduleSettingsRepository struct {
	db *sqlx.DB
}

// NewScheduleSettingsRepository constructs the repository.
func NewScheduleSettingsRepository(db *sqlx.DB) *ScheduleSettingsRepository {
	return &ScheduleSettingsRepository{db: db}
}

// GetByTerm returns the stored settings record for a term. It returns sql.ErrNoRows when
// the term has never been edited.
func (r *ScheduleSettingsRepository) GetByTerm(ctx context.Context, termID string) (*models.ScheduleSettingsRecord, error) {
	const query = `SELECT id, term_id, payload, updated_by, created_at, updated_at FROM schedule_settings WHERE term_id = $1`
	var record models.ScheduleSettingsRecord
	if err := r.db.GetContext(ctx, &record, query, termID); err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert creates or replaces the settings document of a term.
func (r *ScheduleSettingsRepository) Upsert(ctx context.Context, record *models.ScheduleSettingsRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if len(record.Payload) == 0 {
		record.Payload = []byte("{}")
	}

	const query = `INSERT INTO schedule_settings (id, term_id, payload, updated_by, created_at, updated_at)
		VALUES (:id, :term_id, :payload, :updated_by, :created_at, :updated_at)
		ON CONFLICT (term_id) DO UPDATE
		SET payload = EXCLUDED.payload,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert schedule settings: %w", err)
	}
	return nil
}
