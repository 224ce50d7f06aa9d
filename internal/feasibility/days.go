package feasibility

import (
	"sort"
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// NormalizeDay lower-cases and trims a day name so "Sunday " and "sunday" match.
func NormalizeDay(day string) string {
	return strings.ToLower(strings.TrimSpace(day))
}

// NormalizeDayList returns a normalized copy of days.
func NormalizeDayList(days []string) []string {
	if days == nil {
		return nil
	}
	out := make([]string, len(days))
	for i, day := range days {
		out[i] = NormalizeDay(day)
	}
	return out
}

// NormalizeDays returns a copy of settings whose day keys and meeting days are normalized.
// When two keys collapse into one, excluded periods are merged and the key that was
// already normalized wins for daily limits and early exits.
func NormalizeDays(settings models.ScheduleSettings) models.ScheduleSettings {
	out := settings
	if settings.TeacherConstraints != nil {
		out.TeacherConstraints = make([]models.TeacherConstraint, len(settings.TeacherConstraints))
		for i, tc := range settings.TeacherConstraints {
			tc.ExcludedSlots = mergeDayPeriods(tc.ExcludedSlots)
			tc.DailyLimits = normalizeDayKeys(tc.DailyLimits)
			tc.EarlyExit = normalizeDayKeys(tc.EarlyExit)
			out.TeacherConstraints[i] = tc
		}
	}
	if settings.Meetings != nil {
		out.Meetings = make([]models.SpecializedMeeting, len(settings.Meetings))
		for i, meeting := range settings.Meetings {
			meeting.Day = NormalizeDay(meeting.Day)
			out.Meetings[i] = meeting
		}
	}
	return out
}

// Normalized returns a copy of the snapshot with every day name normalized.
func (s Snapshot) Normalized() Snapshot {
	s.Settings = NormalizeDays(s.Settings)
	s.Timing.ActiveDays = NormalizeDayList(s.Timing.ActiveDays)
	return s
}

func mergeDayPeriods(slots map[string][]int) map[string][]int {
	if slots == nil {
		return nil
	}
	out := make(map[string][]int, len(slots))
	for _, day := range sortedKeys(slots) {
		key := NormalizeDay(day)
		out[key] = append(out[key], slots[day]...)
	}
	return out
}

func normalizeDayKeys[V any](values map[string]V) map[string]V {
	if values == nil {
		return nil
	}
	days := sortedKeys(values)
	out := make(map[string]V, len(values))
	for _, day := range days {
		if NormalizeDay(day) == day {
			out[day] = values[day]
		}
	}
	for _, day := range days {
		key := NormalizeDay(day)
		if _, taken := out[key]; !taken {
			out[key] = values[day]
		}
	}
	return out
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
