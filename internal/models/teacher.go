package models

import "time"

// Teacher represents an instructor record with its weekly teaching quota.
type Teacher struct {
	ID               string    `db:"id" json:"id" yaml:"id"`
	Name             string    `db:"full_name" json:"name" yaml:"name"`
	QuotaLimit       int       `db:"quota_limit" json:"quotaLimit" yaml:"quotaLimit"`
	SpecializationID string    `db:"specialization_id" json:"specializationId" yaml:"specializationId"`
	Active           bool      `db:"active" json:"active" yaml:"-"`
	CreatedAt        time.Time `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at" yaml:"-"`
}
