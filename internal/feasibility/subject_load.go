package feasibility

import "fmt"

// MaxSameSlotPerWeek caps how many days a subject may sit in the same period slot.
const MaxSameSlotPerWeek = 2

// Distribution is the per-day shape of a subject's weekly load.
type Distribution struct {
	// BasePerDay is the number of periods every scheduled day carries.
	BasePerDay int `json:"basePerDay"`
	// HeavyDays carry BasePerDay+1 periods.
	HeavyDays int `json:"heavyDays"`
	// LightDays carry BasePerDay periods.
	LightDays int `json:"lightDays"`
	// IdleDays do not carry the subject at all.
	IdleDays int `json:"idleDays"`
}

// MaxDailyPeriods returns the most periods of one subject a class sees on a single day.
func MaxDailyPeriods(periodsPerClass, weekDays int) int {
	if periodsPerClass <= 0 {
		return 0
	}
	if weekDays <= 0 {
		return periodsPerClass
	}
	if periodsPerClass <= weekDays {
		return 1
	}
	return ceilDiv(periodsPerClass, weekDays)
}

// QuotaDistribution spreads a weekly load over the active days as evenly as possible.
func QuotaDistribution(periodsPerClass, weekDays int) Distribution {
	if periodsPerClass <= 0 || weekDays <= 0 {
		return Distribution{IdleDays: max(weekDays, 0)}
	}
	if periodsPerClass <= weekDays {
		return Distribution{
			BasePerDay: 1,
			LightDays:  periodsPerClass,
			IdleDays:   weekDays - periodsPerClass,
		}
	}
	base := periodsPerClass / weekDays
	heavy := periodsPerClass % weekDays
	return Distribution{
		BasePerDay: base,
		HeavyDays:  heavy,
		LightDays:  weekDays - heavy,
	}
}

// DescribeDistribution renders the distribution for display.
func DescribeDistribution(periodsPerClass, weekDays int) string {
	head := fmt.Sprintf("%s / %s", plural(periodsPerClass, "period"), plural(weekDays, "day"))
	if periodsPerClass <= 0 {
		return head + " → not scheduled"
	}
	if weekDays <= 0 {
		return head + " → no active days"
	}

	d := QuotaDistribution(periodsPerClass, weekDays)
	switch {
	case periodsPerClass == weekDays:
		return head + " → 1 per day"
	case periodsPerClass < weekDays:
		return fmt.Sprintf("%s → 1 per day on %s", head, plural(d.LightDays, "day"))
	case d.HeavyDays == 0:
		return fmt.Sprintf("%s → %d per day", head, d.BasePerDay)
	case d.BasePerDay == 1:
		return fmt.Sprintf("%s → %s with a double period", head, plural(d.HeavyDays, "day"))
	default:
		return fmt.Sprintf("%s → %s with %d periods, %d with %d",
			head, plural(d.HeavyDays, "day"), d.BasePerDay+1, d.LightDays, d.BasePerDay)
	}
}

// NeedsSlotSpreadReview reports whether the load cannot avoid repeating a period slot
// on more than MaxSameSlotPerWeek days.
func NeedsSlotSpreadReview(periodsPerClass, weekDays int) bool {
	if periodsPerClass <= 0 {
		return false
	}
	return weekDays < ceilDiv(periodsPerClass, MaxSameSlotPerWeek)
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
