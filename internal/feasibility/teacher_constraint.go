package feasibility

import (
	"sort"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// DefaultMaxConsecutive is applied to teachers without an explicit limit.
const DefaultMaxConsecutive = 4

// EarlyExitRule is the resolved early-exit setting of a teacher. Period 0 means none.
type EarlyExitRule struct {
	Period int
	Day    string
	// Resolved is false under auto mode, where the generator picks the day.
	Resolved bool
}

// Active reports whether the teacher leaves early on some day.
func (r EarlyExitRule) Active() bool {
	return r.Period > 0
}

// AppliesTo reports whether the rule is pinned to the given day.
func (r EarlyExitRule) AppliesTo(day string) bool {
	return r.Active() && r.Resolved && r.Day == day
}

// TeacherConstraintFor returns the teacher's stored constraint or the documented default.
// When several records share the teacher id the first one wins.
func TeacherConstraintFor(settings models.ScheduleSettings, teacherID string) models.TeacherConstraint {
	for _, tc := range settings.TeacherConstraints {
		if tc.TeacherID == teacherID {
			return withTeacherDefaults(tc)
		}
	}
	return defaultTeacherConstraint(teacherID)
}

// SubjectConstraintFor returns the subject's stored constraint or an empty one.
// When several records share the subject id the first one wins.
func SubjectConstraintFor(settings models.ScheduleSettings, subjectID string) (models.SubjectConstraint, bool) {
	for _, sc := range settings.SubjectConstraints {
		if sc.SubjectID == subjectID {
			return sc, true
		}
	}
	return models.SubjectConstraint{SubjectID: subjectID}, false
}

// constraintIndex maps entity ids to their stored constraint records, first record wins.
type constraintIndex struct {
	teachers map[string]models.TeacherConstraint
	subjects map[string]models.SubjectConstraint
}

func indexConstraints(settings models.ScheduleSettings) constraintIndex {
	ix := constraintIndex{
		teachers: make(map[string]models.TeacherConstraint, len(settings.TeacherConstraints)),
		subjects: make(map[string]models.SubjectConstraint, len(settings.SubjectConstraints)),
	}
	for _, tc := range settings.TeacherConstraints {
		if _, ok := ix.teachers[tc.TeacherID]; !ok {
			ix.teachers[tc.TeacherID] = tc
		}
	}
	for _, sc := range settings.SubjectConstraints {
		if _, ok := ix.subjects[sc.SubjectID]; !ok {
			ix.subjects[sc.SubjectID] = sc
		}
	}
	return ix
}

func (ix constraintIndex) teacher(teacherID string) models.TeacherConstraint {
	tc, ok := ix.teachers[teacherID]
	if !ok {
		return defaultTeacherConstraint(teacherID)
	}
	return withTeacherDefaults(tc)
}

func (ix constraintIndex) subject(subjectID string) (models.SubjectConstraint, bool) {
	sc, ok := ix.subjects[subjectID]
	if !ok {
		return models.SubjectConstraint{SubjectID: subjectID}, false
	}
	return sc, true
}

func withTeacherDefaults(tc models.TeacherConstraint) models.TeacherConstraint {
	if tc.MaxConsecutive <= 0 {
		tc.MaxConsecutive = DefaultMaxConsecutive
	}
	if tc.EarlyExitMode == "" {
		tc.EarlyExitMode = models.EarlyExitManual
	}
	return tc
}

func defaultTeacherConstraint(teacherID string) models.TeacherConstraint {
	return models.TeacherConstraint{
		TeacherID:      teacherID,
		MaxConsecutive: DefaultMaxConsecutive,
		EarlyExitMode:  models.EarlyExitManual,
	}
}

// DailyLimitFor fills unset bounds of the teacher's limit on day. Inverted windows and
// Min above Max are returned as stored.
func DailyLimitFor(tc models.TeacherConstraint, day string, periodsPerDay int) models.DailyLimit {
	limit := tc.DailyLimits[day]
	if limit.WindowStart <= 0 {
		limit.WindowStart = 1
	}
	if limit.WindowEnd <= 0 {
		limit.WindowEnd = periodsPerDay
	}
	if limit.Max <= 0 {
		limit.Max = periodsPerDay
	}
	if limit.Min < 0 {
		limit.Min = 0
	}
	return limit
}

// EarlyExitFor resolves manual and auto early exit into one rule.
func EarlyExitFor(tc models.TeacherConstraint) EarlyExitRule {
	if len(tc.EarlyExit) == 0 {
		return EarlyExitRule{}
	}

	days := make([]string, 0, len(tc.EarlyExit))
	for day, period := range tc.EarlyExit {
		if period > 0 {
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return EarlyExitRule{}
	}
	sort.Strings(days)

	if tc.EarlyExitMode == models.EarlyExitAuto {
		day := days[0]
		if _, ok := tc.EarlyExit[models.AutoEarlyExitDay]; ok {
			day = models.AutoEarlyExitDay
		}
		return EarlyExitRule{Period: tc.EarlyExit[day]}
	}
	return EarlyExitRule{Period: tc.EarlyExit[days[0]], Day: days[0], Resolved: true}
}

// usablePeriods counts the periods of one day a teacher can actually teach: inside the
// window, before the early exit, and not excluded, capped by the daily maximum.
func usablePeriods(tc models.TeacherConstraint, day string, periodsPerDay, exitPeriod int) int {
	limit := DailyLimitFor(tc, day, periodsPerDay)
	start := max(limit.WindowStart, 1)
	end := min(limit.WindowEnd, periodsPerDay)
	if exitPeriod > 0 {
		end = min(end, exitPeriod)
	}
	if end < start {
		return 0
	}

	excluded := make(map[int]struct{}, len(tc.ExcludedSlots[day]))
	for _, p := range tc.ExcludedSlots[day] {
		excluded[p] = struct{}{}
	}
	count := 0
	for p := start; p <= end; p++ {
		if _, ok := excluded[p]; !ok {
			count++
		}
	}
	return min(count, limit.Max)
}
