package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// EarlyExitMode controls how a teacher's shortened day is chosen.
type EarlyExitMode string

const (
	EarlyExitManual EarlyExitMode = "manual"
	EarlyExitAuto   EarlyExitMode = "auto"
)

// AutoEarlyExitDay is the sentinel day key used when the generator picks the early-exit day.
const AutoEarlyExitDay = "*"

// SubstitutionMethod selects how substitution (waiting) duty is planned.
type SubstitutionMethod string

const (
	SubstitutionAuto   SubstitutionMethod = "auto"
	SubstitutionFixed  SubstitutionMethod = "fixed"
	SubstitutionManual SubstitutionMethod = "manual"
)

// SubjectConstraint narrows the periods a subject may occupy.
type SubjectConstraint struct {
	SubjectID           string `json:"subjectId" yaml:"subjectId"`
	ExcludedPeriods     []int  `json:"excludedPeriods" yaml:"excludedPeriods"`
	PreferredPeriods    []int  `json:"preferredPeriods" yaml:"preferredPeriods"`
	EnableDoublePeriods bool   `json:"enableDoublePeriods" yaml:"enableDoublePeriods"`
}

// DailyLimit bounds a teacher's load and presence window on one day. Zero values mean unset.
type DailyLimit struct {
	Min         int `json:"min" yaml:"min"`
	Max         int `json:"max" yaml:"max"`
	WindowStart int `json:"windowStart,omitempty" yaml:"windowStart,omitempty"`
	WindowEnd   int `json:"windowEnd,omitempty" yaml:"windowEnd,omitempty"`
}

// TeacherConstraint captures availability and workload rules for a teacher.
type TeacherConstraint struct {
	TeacherID       string                `json:"teacherId" yaml:"teacherId"`
	MaxConsecutive  int                   `json:"maxConsecutive" yaml:"maxConsecutive"`
	ExcludedSlots   map[string][]int      `json:"excludedSlots" yaml:"excludedSlots"`
	DailyLimits     map[string]DailyLimit `json:"dailyLimits,omitempty" yaml:"dailyLimits,omitempty"`
	EarlyExitMode   EarlyExitMode         `json:"earlyExitMode,omitempty" yaml:"earlyExitMode,omitempty"`
	EarlyExit       map[string]int        `json:"earlyExit,omitempty" yaml:"earlyExit,omitempty"`
	MaxFirstPeriods *int                  `json:"maxFirstPeriods,omitempty" yaml:"maxFirstPeriods,omitempty"`
	MaxLastPeriods  *int                  `json:"maxLastPeriods,omitempty" yaml:"maxLastPeriods,omitempty"`
}

// SpecializedMeeting reserves a slot for all teachers of a specialization.
type SpecializedMeeting struct {
	ID               string   `json:"id" yaml:"id"`
	SpecializationID string   `json:"specializationId" yaml:"specializationId"`
	Day              string   `json:"day" yaml:"day"`
	Period           int      `json:"period" yaml:"period"`
	TeacherIDs       []string `json:"teacherIds" yaml:"teacherIds"`
}

// SubstitutionConfig describes the substitution coverage policy.
type SubstitutionConfig struct {
	Method         SubstitutionMethod `json:"method" yaml:"method"`
	MaxTotalQuota  int                `json:"maxTotalQuota" yaml:"maxTotalQuota"`
	MaxDailyTotal  int                `json:"maxDailyTotal" yaml:"maxDailyTotal"`
	FixedPerPeriod int                `json:"fixedPerPeriod,omitempty" yaml:"fixedPerPeriod,omitempty"`
}

// ScheduleSettings is the user-edited constraint set feeding timetable generation.
type ScheduleSettings struct {
	SubjectConstraints []SubjectConstraint  `json:"subjectConstraints" yaml:"subjectConstraints"`
	TeacherConstraints []TeacherConstraint  `json:"teacherConstraints" yaml:"teacherConstraints"`
	Meetings           []SpecializedMeeting `json:"meetings" yaml:"meetings"`
	Substitution       SubstitutionConfig   `json:"substitution" yaml:"substitution"`
}

// DefaultSubstitutionConfig mirrors the values the settings screen starts from.
func DefaultSubstitutionConfig() SubstitutionConfig {
	return SubstitutionConfig{
		Method:        SubstitutionAuto,
		MaxTotalQuota: 24,
		MaxDailyTotal: 5,
	}
}

// ScheduleSettingsRecord stores the settings of one term as a JSON document.
type ScheduleSettingsRecord struct {
	ID        string         `db:"id" json:"id"`
	TermID    string         `db:"term_id" json:"term_id"`
	Payload   types.JSONText `db:"payload" json:"payload"`
	UpdatedBy *string        `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
