package models

// SchoolTiming describes the active school week.
type SchoolTiming struct {
	ActiveDays    []string `json:"activeDays" yaml:"activeDays" validate:"max=7,unique,dive,oneof=sunday monday tuesday wednesday thursday friday saturday"`
	PeriodsPerDay int      `json:"periodsPerDay" yaml:"periodsPerDay" validate:"min=0,max=16"`
}

// WeekDays returns the number of active days.
func (t SchoolTiming) WeekDays() int {
	return len(t.ActiveDays)
}

// TotalWeeklyPeriods returns the number of period slots in one week.
func (t SchoolTiming) TotalWeeklyPeriods() int {
	return len(t.ActiveDays) * t.PeriodsPerDay
}
