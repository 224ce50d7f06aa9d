package feasibility

import "github.com/noah-isme/sma-timetable-api/internal/models"

// SubstitutionBalance compares the requested per-period substitute headcount with the
// spare capacity the staff can offer.
type SubstitutionBalance struct {
	Required     int `json:"required"`
	Available    int `json:"available"`
	Deficit      int `json:"deficit"`
	SuggestedMax int `json:"suggestedMax"`
}

// CalculateSubstitutionBalance estimates how many teachers are free in every period.
// Each teacher contributes max(0, maxTotalQuota-quotaLimit) spare periods per week.
func CalculateSubstitutionBalance(teachers []models.Teacher, maxTotalQuota, totalWeeklyPeriods, fixedPerPeriod int) SubstitutionBalance {
	spare := 0
	for _, teacher := range teachers {
		spare += max(0, maxTotalQuota-teacher.QuotaLimit)
	}

	balance := SubstitutionBalance{Required: max(0, fixedPerPeriod)}
	if totalWeeklyPeriods > 0 {
		balance.Available = spare / totalWeeklyPeriods
	}
	balance.Deficit = max(0, balance.Required-balance.Available)
	if balance.Deficit > 0 {
		balance.SuggestedMax = balance.Available
	}
	return balance
}
