package feasibility

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// DefaultDensityThreshold is the share of excluded slots above which generation is likely to fail.
const DefaultDensityThreshold = 0.4

// Snapshot is the immutable input of one validation run.
type Snapshot struct {
	Settings   models.ScheduleSettings `json:"settings" yaml:"settings"`
	Subjects   []models.Subject        `json:"subjects" yaml:"subjects"`
	Teachers   []models.Teacher        `json:"teachers" yaml:"teachers"`
	Timing     models.SchoolTiming     `json:"timing" yaml:"timing"`
	ClassCount int                     `json:"classCount" yaml:"classCount"`
}

// Options tunes the advisory thresholds of the validator.
type Options struct {
	// EdgeCapacityDefault is the weekly first/last period cap assumed for teachers
	// without one. Zero means one per active day.
	EdgeCapacityDefault int
	// DensityThreshold is the exclusion ratio that triggers general-density.
	DensityThreshold float64
}

// Validator checks a snapshot for provable infeasibility. It holds no state between calls.
type Validator struct {
	opts Options
}

// NewValidator constructs a validator, filling unset options with defaults.
func NewValidator(opts Options) *Validator {
	if opts.DensityThreshold <= 0 {
		opts.DensityThreshold = DefaultDensityThreshold
	}
	if opts.EdgeCapacityDefault < 0 {
		opts.EdgeCapacityDefault = 0
	}
	return &Validator{opts: opts}
}

// Validate runs every check against the snapshot.
func (v *Validator) Validate(snapshot Snapshot) []models.ValidationWarning {
	return v.run(input{
		settings:      snapshot.Settings,
		subjects:      snapshot.Subjects,
		teachers:      snapshot.Teachers,
		weekDays:      snapshot.Timing.WeekDays(),
		periodsPerDay: snapshot.Timing.PeriodsPerDay,
		activeDays:    snapshot.Timing.ActiveDays,
		classCount:    snapshot.ClassCount,
	})
}

// ValidateAllConstraints validates with default options.
func ValidateAllConstraints(settings models.ScheduleSettings, subjects []models.Subject, teachers []models.Teacher,
	weekDays, periodsPerDay int, activeDays []string, classCount int) []models.ValidationWarning {
	return NewValidator(Options{}).run(input{
		settings:      settings,
		subjects:      subjects,
		teachers:      teachers,
		weekDays:      weekDays,
		periodsPerDay: periodsPerDay,
		activeDays:    activeDays,
		classCount:    classCount,
	})
}

type input struct {
	settings      models.ScheduleSettings
	subjects      []models.Subject
	teachers      []models.Teacher
	weekDays      int
	periodsPerDay int
	activeDays    []string
	classCount    int
	constraints   constraintIndex
}

type collector struct {
	items []models.ValidationWarning
}

func (c *collector) add(level models.WarningLevel, kind models.WarningType, id, relatedID, message, suggestion string) {
	c.items = append(c.items, models.ValidationWarning{
		ID:         id,
		Level:      level,
		Message:    message,
		Suggestion: suggestion,
		RelatedID:  relatedID,
		Type:       kind,
	})
}

func (v *Validator) run(in input) (result []models.ValidationWarning) {
	defer func() {
		if r := recover(); r != nil {
			result = []models.ValidationWarning{{
				ID:         "internal-failure",
				Level:      models.LevelInfo,
				Message:    fmt.Sprintf("Validation could not complete: %v", r),
				Suggestion: "Review the school timing and constraint data",
				Type:       models.WarningTypeGeneral,
			}}
		}
	}()

	if in.weekDays <= 0 || in.periodsPerDay <= 0 || len(in.activeDays) == 0 {
		return []models.ValidationWarning{{
			ID:         "timing-insufficient",
			Level:      models.LevelInfo,
			Message:    "School timing is incomplete: no active days or no periods per day",
			Suggestion: "Configure active days and periods per day before validating",
			Type:       models.WarningTypeGeneral,
		}}
	}

	in.settings = NormalizeDays(in.settings)
	in.activeDays = NormalizeDayList(in.activeDays)
	in.constraints = indexConstraints(in.settings)

	c := &collector{}
	v.checkSubjects(c, in)
	v.checkSubjectConstraints(c, in)
	v.checkTeachers(c, in)
	v.checkCapacity(c, in)
	v.checkSubstitution(c, in)
	v.checkMeetings(c, in)

	if len(c.items) == 0 {
		c.add(models.LevelInfo, models.WarningTypeGeneral, "all-clear", "",
			"All constraint checks passed", "")
	}

	sort.SliceStable(c.items, func(i, j int) bool {
		return levelRank(c.items[i].Level) < levelRank(c.items[j].Level)
	})
	return c.items
}

func levelRank(level models.WarningLevel) int {
	switch level {
	case models.LevelError:
		return 0
	case models.LevelWarning:
		return 1
	default:
		return 2
	}
}

func (v *Validator) checkSubjects(c *collector, in input) {
	for _, subject := range in.subjects {
		p := subject.PeriodsPerClass
		if p < 0 {
			c.add(models.LevelError, models.WarningTypeSubject, "subj-load-"+subject.ID, subject.ID,
				fmt.Sprintf("%q has a negative weekly load (%d)", subject.Name, p),
				"Set the weekly periods to zero or more")
			continue
		}
		if p == 0 {
			continue
		}

		if daily := MaxDailyPeriods(p, in.weekDays); daily >= 3 {
			c.add(models.LevelWarning, models.WarningTypeSubject, "subj-heavy-"+subject.ID, subject.ID,
				fmt.Sprintf("%q needs up to %d periods on one day (%s)", subject.Name, daily, DescribeDistribution(p, in.weekDays)),
				"Review instructor and room availability for long blocks")
		}
		if NeedsSlotSpreadReview(p, in.weekDays) {
			c.add(models.LevelWarning, models.WarningTypeSubject, "subj-spread-"+subject.ID, subject.ID,
				fmt.Sprintf("%q cannot avoid using the same period slot on more than %d days (%d periods over %d days)",
					subject.Name, MaxSameSlotPerWeek, p, in.weekDays),
				"Reduce the weekly load or add active days")
		}
	}
}

func (v *Validator) checkSubjectConstraints(c *collector, in input) {
	for _, subject := range in.subjects {
		sc, ok := in.constraints.subject(subject.ID)
		if !ok {
			continue
		}

		outOfRange := append(outOfRangePeriods(sc.ExcludedPeriods, in.periodsPerDay),
			outOfRangePeriods(sc.PreferredPeriods, in.periodsPerDay)...)
		if len(outOfRange) > 0 {
			c.add(models.LevelError, models.WarningTypeSubject, "subj-range-"+subject.ID, subject.ID,
				fmt.Sprintf("%q references periods outside 1-%d: %s", subject.Name, in.periodsPerDay, joinInts(outOfRange)),
				"Remove the invalid periods")
		}

		excluded := periodSet(sc.ExcludedPeriods, in.periodsPerDay)
		usable := in.periodsPerDay - len(excluded)
		daily := MaxDailyPeriods(subject.PeriodsPerClass, in.weekDays)
		switch {
		case usable <= 0:
			c.add(models.LevelError, models.WarningTypeSubject, "subj-excl-"+subject.ID, subject.ID,
				fmt.Sprintf("%q excludes every period of the day", subject.Name),
				"Allow at least one period")
		case usable < daily:
			c.add(models.LevelError, models.WarningTypeSubject, "subj-excl-"+subject.ID, subject.ID,
				fmt.Sprintf("%q has %d usable periods per day but needs up to %d", subject.Name, usable, daily),
				"Reduce excluded periods or the weekly load")
		}

		var overlap []int
		for _, p := range sc.PreferredPeriods {
			if _, ok := excluded[p]; ok {
				overlap = append(overlap, p)
			}
		}
		if len(overlap) > 0 {
			c.add(models.LevelWarning, models.WarningTypeSubject, "subj-conflict-"+subject.ID, subject.ID,
				fmt.Sprintf("%q marks periods %s as both preferred and excluded; excluded wins", subject.Name, joinInts(overlap)),
				"Remove the periods from one of the lists")
		}

		if sc.EnableDoublePeriods && subject.PeriodsPerClass%2 == 1 {
			c.add(models.LevelWarning, models.WarningTypeSubject, "subj-double-"+subject.ID, subject.ID,
				fmt.Sprintf("%q allows double periods but its load (%d) is odd", subject.Name, subject.PeriodsPerClass),
				"One single period will remain after pairing")
		}
	}
}

func (v *Validator) checkTeachers(c *collector, in input) {
	ceiling := in.settings.Substitution.MaxTotalQuota
	for _, teacher := range in.teachers {
		tc := in.constraints.teacher(teacher.ID)
		rule := EarlyExitFor(tc)

		if bad := outOfRangeSlots(tc.ExcludedSlots, in.periodsPerDay); len(bad) > 0 {
			c.add(models.LevelError, models.WarningTypeTeacher, "teacher-range-"+teacher.ID, teacher.ID,
				fmt.Sprintf("%q excludes periods outside 1-%d: %s", teacher.Name, in.periodsPerDay, strings.Join(bad, ", ")),
				"Remove the invalid periods")
		}
		if rule.Active() && rule.Period > in.periodsPerDay {
			c.add(models.LevelError, models.WarningTypeTeacher, "teacher-exit-range-"+teacher.ID, teacher.ID,
				fmt.Sprintf("%q leaves after period %d but the day has %d", teacher.Name, rule.Period, in.periodsPerDay),
				"Pick an early-exit period within the day")
		}

		weekly := 0
		for _, day := range in.activeDays {
			limit := DailyLimitFor(tc, day, in.periodsPerDay)
			exit := 0
			if rule.AppliesTo(day) {
				exit = rule.Period
			}

			if limit.WindowStart > limit.WindowEnd {
				c.add(models.LevelError, models.WarningTypeTeacher, fmt.Sprintf("teacher-window-%s-%s", teacher.ID, day), teacher.ID,
					fmt.Sprintf("%q on %s: window starts at %d after it ends at %d", teacher.Name, day, limit.WindowStart, limit.WindowEnd),
					"Fix the presence window")
			}
			if limit.Min > limit.Max {
				c.add(models.LevelError, models.WarningTypeTeacher, fmt.Sprintf("teacher-minmax-%s-%s", teacher.ID, day), teacher.ID,
					fmt.Sprintf("%q on %s: minimum (%d) exceeds maximum (%d)", teacher.Name, day, limit.Min, limit.Max),
					"Correct the daily limits")
			}
			if exit > 0 && limit.WindowStart > exit && limit.WindowStart <= limit.WindowEnd {
				c.add(models.LevelError, models.WarningTypeTeacher, fmt.Sprintf("window-early-exit-mismatch-%s-%s", teacher.ID, day), teacher.ID,
					fmt.Sprintf("%q on %s: presence window %d-%d starts after the early exit (period %d)",
						teacher.Name, day, limit.WindowStart, limit.WindowEnd, exit),
					"Move the early exit or widen the window")
			}

			usable := usablePeriods(tc, day, in.periodsPerDay, exit)
			if limit.Min > usable {
				c.add(models.LevelError, models.WarningTypeTeacher, fmt.Sprintf("teacher-min-%s-%s", teacher.ID, day), teacher.ID,
					fmt.Sprintf("%q on %s: minimum (%d) exceeds usable periods (%d)", teacher.Name, day, limit.Min, usable),
					"Lower the minimum or loosen the exit and window limits")
			}
			weekly += usable
		}

		autoNote := ""
		if rule.Active() && !rule.Resolved {
			weekly -= v.cheapestEarlyExit(tc, in, rule.Period)
			autoNote = " assuming the automatic early exit"
		}
		if weekly < teacher.QuotaLimit {
			c.add(models.LevelError, models.WarningTypeTeacher, "quota-conflict-"+teacher.ID, teacher.ID,
				fmt.Sprintf("%q is over-constrained relative to quota: quota %d exceeds %d available periods%s",
					teacher.Name, teacher.QuotaLimit, max(weekly, 0), autoNote),
				"Loosen exclusions and early exit or lower the quota")
		}

		if ceiling > 0 && teacher.QuotaLimit > ceiling {
			c.add(models.LevelWarning, models.WarningTypeTeacher, "sub-ceiling-"+teacher.ID, teacher.ID,
				fmt.Sprintf("%q has a quota (%d) above the total quota ceiling (%d)", teacher.Name, teacher.QuotaLimit, ceiling),
				"Raise the ceiling or lower the quota")
		}
	}
}

// cheapestEarlyExit returns the fewest periods an automatic early exit can cost, since
// the generator will pick the least damaging day.
func (v *Validator) cheapestEarlyExit(tc models.TeacherConstraint, in input, exitPeriod int) int {
	cheapest := -1
	for _, day := range in.activeDays {
		lost := usablePeriods(tc, day, in.periodsPerDay, 0) - usablePeriods(tc, day, in.periodsPerDay, exitPeriod)
		if cheapest < 0 || lost < cheapest {
			cheapest = lost
		}
	}
	return max(cheapest, 0)
}

func (v *Validator) checkCapacity(c *collector, in input) {
	if in.classCount > 0 {
		edge := summarizeEdgeCapacity(in.teachers, in.constraints, in.classCount, in.activeDays, v.opts.EdgeCapacityDefault)
		if edge.Deficit() {
			c.add(models.LevelWarning, models.WarningTypeGeneral, "general-overload", "",
				fmt.Sprintf("Edge period shortfall: first periods %d/%d (short %d), last periods %d/%d (short %d)",
					edge.AvailableFirstSlots, edge.NeededFirstSlots, edge.FirstShortfall(),
					edge.AvailableLastSlots, edge.NeededLastSlots, edge.LastShortfall()),
				"Raise teachers' first and last period caps")
		}
	}

	density := exclusionDensity(in.constraints, len(in.subjects), len(in.teachers), in.weekDays, in.periodsPerDay)
	if density > v.opts.DensityThreshold {
		c.add(models.LevelWarning, models.WarningTypeGeneral, "general-density", "",
			fmt.Sprintf("%.0f%% of all slots are excluded; generation is likely to fail", density*100),
			"Reduce exclusions")
	}
}

func (v *Validator) checkSubstitution(c *collector, in input) {
	sub := in.settings.Substitution
	switch sub.Method {
	case models.SubstitutionAuto, models.SubstitutionManual, "":
	case models.SubstitutionFixed:
		if sub.FixedPerPeriod <= 0 {
			c.add(models.LevelInfo, models.WarningTypeGeneral, "sub-fixed-unset", "",
				"Fixed substitution is selected but no per-period headcount is set",
				"Set the number of substitutes per period")
			return
		}
		balance := CalculateSubstitutionBalance(in.teachers, sub.MaxTotalQuota, in.weekDays*in.periodsPerDay, sub.FixedPerPeriod)
		if balance.Deficit > 0 {
			c.add(models.LevelWarning, models.WarningTypeGeneral, "sub-deficit", "",
				fmt.Sprintf("Requested substitutes per period (%d) exceed availability (%d)", balance.Required, balance.Available),
				fmt.Sprintf("Nearest achievable: %d", balance.SuggestedMax))
		}
	default:
		c.add(models.LevelError, models.WarningTypeGeneral, "sub-method", "",
			fmt.Sprintf("Unknown substitution method %q", sub.Method),
			"Choose auto, fixed or manual")
	}
}

func (v *Validator) checkMeetings(c *collector, in input) {
	active := make(map[string]struct{}, len(in.activeDays))
	for _, day := range in.activeDays {
		active[day] = struct{}{}
	}

	var order []string
	bySlot := make(map[string]int)
	for _, meeting := range in.settings.Meetings {
		_, dayOK := active[meeting.Day]
		if !dayOK || meeting.Period < 1 || meeting.Period > in.periodsPerDay {
			c.add(models.LevelError, models.WarningTypeGeneral, "meeting-range-"+meeting.ID, meeting.SpecializationID,
				fmt.Sprintf("Meeting %s is set on %s period %d, outside the school week", meeting.ID, meeting.Day, meeting.Period),
				"Move the meeting to an active day and period")
			continue
		}
		key := fmt.Sprintf("%s-%d", meeting.Day, meeting.Period)
		if _, seen := bySlot[key]; !seen {
			order = append(order, key)
		}
		bySlot[key]++
	}

	for _, key := range order {
		if bySlot[key] < 2 {
			continue
		}
		c.add(models.LevelWarning, models.WarningTypeGeneral, "meeting-conflict-"+key, "",
			fmt.Sprintf("%d meetings share the slot %s", bySlot[key], key),
			"Move one of the meetings")
	}
}

func periodSet(periods []int, periodsPerDay int) map[int]struct{} {
	set := make(map[int]struct{}, len(periods))
	for _, p := range periods {
		if p >= 1 && p <= periodsPerDay {
			set[p] = struct{}{}
		}
	}
	return set
}

func outOfRangePeriods(periods []int, periodsPerDay int) []int {
	var out []int
	for _, p := range periods {
		if p < 1 || p > periodsPerDay {
			out = append(out, p)
		}
	}
	return out
}

func outOfRangeSlots(slots map[string][]int, periodsPerDay int) []string {
	days := make([]string, 0, len(slots))
	for day := range slots {
		days = append(days, day)
	}
	sort.Strings(days)

	var out []string
	for _, day := range days {
		for _, p := range outOfRangePeriods(slots[day], periodsPerDay) {
			out = append(out, fmt.Sprintf("%s:%d", day, p))
		}
	}
	return out
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
