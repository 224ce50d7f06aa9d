package models

import (
	"time"

	"github.com/lib/pq"
)

// Subject represents an academic subject and its weekly load per class.
type Subject struct {
	ID              string         `db:"id" json:"id" yaml:"id"`
	Code            string         `db:"code" json:"code" yaml:"code"`
	Name            string         `db:"name" json:"name" yaml:"name"`
	PeriodsPerClass int            `db:"periods_per_class" json:"periodsPerClass" yaml:"periodsPerClass"`
	Phases          pq.StringArray `db:"phases" json:"phases" yaml:"phases"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at" yaml:"-"`
}
