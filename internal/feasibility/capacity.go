package feasibility

import "github.com/noah-isme/sma-timetable-api/internal/models"

// EdgeCapacity compares first and last period supply against whole-school demand.
type EdgeCapacity struct {
	NeededFirstSlots    int `json:"neededFirstSlots"`
	NeededLastSlots     int `json:"neededLastSlots"`
	AvailableFirstSlots int `json:"availableFirstSlots"`
	AvailableLastSlots  int `json:"availableLastSlots"`
}

// FirstShortfall returns how many period-1 slots cannot be staffed.
func (c EdgeCapacity) FirstShortfall() int {
	return max(0, c.NeededFirstSlots-c.AvailableFirstSlots)
}

// LastShortfall returns how many last-period slots cannot be staffed.
func (c EdgeCapacity) LastShortfall() int {
	return max(0, c.NeededLastSlots-c.AvailableLastSlots)
}

// Deficit reports whether either edge of the day is short.
func (c EdgeCapacity) Deficit() bool {
	return c.FirstShortfall() > 0 || c.LastShortfall() > 0
}

// SummarizeEdgeCapacity sums every teacher's weekly first/last period caps in a single
// pass. Teachers without a cap count as defaultCap, or one per active day when
// defaultCap is not positive. An explicit cap of zero is a real cap.
func SummarizeEdgeCapacity(teachers []models.Teacher, settings models.ScheduleSettings, classCount int, days []string, defaultCap int) EdgeCapacity {
	return summarizeEdgeCapacity(teachers, indexConstraints(settings), classCount, days, defaultCap)
}

func summarizeEdgeCapacity(teachers []models.Teacher, ix constraintIndex, classCount int, days []string, defaultCap int) EdgeCapacity {
	if defaultCap <= 0 {
		defaultCap = len(days)
	}

	needed := max(0, classCount) * len(days)
	summary := EdgeCapacity{NeededFirstSlots: needed, NeededLastSlots: needed}
	for _, teacher := range teachers {
		tc := ix.teachers[teacher.ID]
		summary.AvailableFirstSlots += capOrDefault(tc.MaxFirstPeriods, defaultCap)
		summary.AvailableLastSlots += capOrDefault(tc.MaxLastPeriods, defaultCap)
	}
	return summary
}

func capOrDefault(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return max(0, *value)
}

// exclusionDensity is the share of all subject and teacher period slots that are excluded.
// Duplicate records are counted once, matching the lookups.
func exclusionDensity(ix constraintIndex, subjectCount, teacherCount, weekDays, periodsPerDay int) float64 {
	total := (subjectCount + teacherCount) * weekDays * periodsPerDay
	if total <= 0 {
		return 0
	}
	excluded := 0
	for _, sc := range ix.subjects {
		excluded += len(sc.ExcludedPeriods)
	}
	for _, tc := range ix.teachers {
		for _, periods := range tc.ExcludedSlots {
			excluded += len(periods)
		}
	}
	return float64(excluded) / float64(total)
}
