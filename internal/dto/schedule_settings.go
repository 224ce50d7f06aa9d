package dto

import (
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// ScheduleSettingsResponse wraps the constraint document of a term.
type ScheduleSettingsResponse struct {
	TermID    string                  `json:"termId"`
	Settings  models.ScheduleSettings `json:"settings"`
	UpdatedAt *time.Time              `json:"updatedAt,omitempty"`
	UpdatedBy *string                 `json:"updatedBy,omitempty"`
}

// UpsertSubjectConstraintRequest replaces the period rules of one subject.
type UpsertSubjectConstraintRequest struct {
	ExcludedPeriods     []int `json:"excludedPeriods" validate:"omitempty,max=16,dive,min=1,max=16"`
	PreferredPeriods    []int `json:"preferredPeriods" validate:"omitempty,max=16,dive,min=1,max=16"`
	EnableDoublePeriods bool  `json:"enableDoublePeriods"`
}

// DailyLimitRequest bounds a teacher's load on one day.
type DailyLimitRequest struct {
	Min         int `json:"min" validate:"min=0,max=16"`
	Max         int `json:"max" validate:"min=0,max=16"`
	WindowStart int `json:"windowStart" validate:"min=0,max=16"`
	WindowEnd   int `json:"windowEnd" validate:"min=0,max=16"`
}

// UpsertTeacherConstraintRequest replaces the availability rules of one teacher.
type UpsertTeacherConstraintRequest struct {
	MaxConsecutive  int                          `json:"maxConsecutive" validate:"min=0,max=16"`
	ExcludedSlots   map[string][]int             `json:"excludedSlots" validate:"omitempty,dive,keys,required,endkeys,dive,min=1,max=16"`
	DailyLimits     map[string]DailyLimitRequest `json:"dailyLimits" validate:"omitempty,dive,keys,required,endkeys"`
	EarlyExitMode   string                       `json:"earlyExitMode" validate:"omitempty,oneof=manual auto"`
	EarlyExit       map[string]int               `json:"earlyExit" validate:"omitempty,dive,keys,required,endkeys,min=0,max=16"`
	MaxFirstPeriods *int                         `json:"maxFirstPeriods" validate:"omitempty,min=0,max=7"`
	MaxLastPeriods  *int                         `json:"maxLastPeriods" validate:"omitempty,min=0,max=7"`
}

// UpdateSubstitutionRequest sets the substitution duty policy.
type UpdateSubstitutionRequest struct {
	Method         string `json:"method" validate:"required,oneof=auto fixed manual"`
	MaxTotalQuota  int    `json:"maxTotalQuota" validate:"required,min=1,max=60"`
	MaxDailyTotal  int    `json:"maxDailyTotal" validate:"min=0,max=16"`
	FixedPerPeriod int    `json:"fixedPerPeriod" validate:"min=0,max=50"`
}

// MeetingRequest describes one specialization meeting slot.
type MeetingRequest struct {
	ID               string   `json:"id"`
	SpecializationID string   `json:"specializationId" validate:"required"`
	Day              string   `json:"day" validate:"required"`
	Period           int      `json:"period" validate:"required,min=1,max=16"`
	TeacherIDs       []string `json:"teacherIds" validate:"omitempty,dive,required"`
}

// ReplaceMeetingsRequest replaces every meeting of the term.
type ReplaceMeetingsRequest struct {
	Meetings []MeetingRequest `json:"meetings" validate:"omitempty,dive"`
}
