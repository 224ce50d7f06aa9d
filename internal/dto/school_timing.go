package dto

import "time"

// SchoolTimingResponse exposes the active school week.
type SchoolTimingResponse struct {
	ActiveDays         []string   `json:"activeDays"`
	PeriodsPerDay      int        `json:"periodsPerDay"`
	TotalWeeklyPeriods int        `json:"totalWeeklyPeriods"`
	Source             string     `json:"source"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
}

// UpdateSchoolTimingRequest replaces the active school week.
type UpdateSchoolTimingRequest struct {
	ActiveDays    []string `json:"activeDays" validate:"required,min=1,max=7,unique,dive,required"`
	PeriodsPerDay int      `json:"periodsPerDay" validate:"required,min=1,max=16"`
}
