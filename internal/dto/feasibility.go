package dto

import (
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/feasibility"
	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// FeasibilityQuery selects the term (and optionally phase or entity) to validate.
type FeasibilityQuery struct {
	TermID    string `form:"termId" validate:"required"`
	Phase     string `form:"phase" validate:"omitempty,max=32"`
	RelatedID string `form:"relatedId"`
}

// FeasibilityReport is the validated warning list of a term.
type FeasibilityReport struct {
	TermID      string                     `json:"termId"`
	Phase       string                     `json:"phase,omitempty"`
	Fingerprint string                     `json:"fingerprint"`
	Warnings    []models.ValidationWarning `json:"warnings"`
	Summary     feasibility.Summary        `json:"summary"`
	Timing      models.SchoolTiming        `json:"timing"`
	GeneratedAt time.Time                  `json:"generatedAt"`
	Cached      bool                       `json:"-"`
}

// PreflightResult gates the start of timetable generation.
type PreflightResult struct {
	TermID   string                     `json:"termId"`
	Blocked  bool                       `json:"blocked"`
	Errors   []models.ValidationWarning `json:"errors"`
	Warnings []models.ValidationWarning `json:"warnings"`
	Summary  feasibility.Summary        `json:"summary"`
}

// CheckRequest is an ad-hoc snapshot validated without touching storage. Day names are
// validated after Normalized.
type CheckRequest struct {
	Settings   models.ScheduleSettings `json:"settings"`
	Subjects   []models.Subject        `json:"subjects" validate:"max=500,dive"`
	Teachers   []models.Teacher        `json:"teachers" validate:"max=1000,dive"`
	Timing     models.SchoolTiming     `json:"timing"`
	ClassCount int                     `json:"classCount" validate:"min=0,max=500"`
}

// Normalized returns a copy with every day name lower-cased and trimmed.
func (r CheckRequest) Normalized() CheckRequest {
	r.Settings = feasibility.NormalizeDays(r.Settings)
	r.Timing.ActiveDays = feasibility.NormalizeDayList(r.Timing.ActiveDays)
	return r
}

// Snapshot converts the request into a normalized engine snapshot.
func (r CheckRequest) Snapshot() feasibility.Snapshot {
	return feasibility.Snapshot{
		Settings:   r.Settings,
		Subjects:   r.Subjects,
		Teachers:   r.Teachers,
		Timing:     r.Timing,
		ClassCount: r.ClassCount,
	}.Normalized()
}

// CheckResponse carries the diagnostics of an ad-hoc snapshot.
type CheckResponse struct {
	Warnings []models.ValidationWarning `json:"warnings"`
	Summary  feasibility.Summary        `json:"summary"`
}

// DistributionQuery asks how a weekly load spreads over the week.
type DistributionQuery struct {
	PeriodsPerClass int `form:"periodsPerClass" validate:"min=0,max=80"`
	WeekDays        int `form:"weekDays" validate:"required,min=1,max=7"`
}

// DistributionResponse describes the even spread of a weekly load.
type DistributionResponse struct {
	PeriodsPerClass   int                      `json:"periodsPerClass"`
	WeekDays          int                      `json:"weekDays"`
	MaxDailyPeriods   int                      `json:"maxDailyPeriods"`
	Distribution      feasibility.Distribution `json:"distribution"`
	Description       string                   `json:"description"`
	NeedsSpreadReview bool                     `json:"needsSpreadReview"`
}

// SubstitutionBalanceResponse reports substitution coverage for a term.
type SubstitutionBalanceResponse struct {
	TermID             string                          `json:"termId"`
	Method             models.SubstitutionMethod       `json:"method"`
	TotalWeeklyPeriods int                             `json:"totalWeeklyPeriods"`
	Balance            feasibility.SubstitutionBalance `json:"balance"`
}

// ExportQuery selects the report format to download.
type ExportQuery struct {
	TermID string `form:"termId" validate:"required"`
	Phase  string `form:"phase" validate:"omitempty,max=32"`
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// ExportResult is a rendered report file.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportLink points at an archived report file.
type ExportLink struct {
	URL         string    `json:"url"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
