package service

import (
	"sort"
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// weekOrder ranks day names for canonical ordering.
var weekOrder = map[string]int{
	"sunday":    0,
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
}

func normalizeDay(day string) (string, bool) {
	day = strings.ToLower(strings.TrimSpace(day))
	_, ok := weekOrder[day]
	return day, ok
}

func sortDays(days []string) {
	sort.SliceStable(days, func(i, j int) bool {
		return weekOrder[days[i]] < weekOrder[days[j]]
	})
}

// uniqueSorted returns the distinct values in ascending order.
func uniqueSorted(values []int) []int {
	if len(values) == 0 {
		return []int{}
	}
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func userIDPtr(actor *models.JWTClaims) *string {
	if actor == nil || actor.UserID == "" {
		return nil
	}
	return &actor.UserID
}

func strPtr(value string) *string {
	if value == "" {
		return nil
	}
	result := value
	return &result
}
