package feasibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func intPtr(v int) *int { return &v }

var fiveDays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday"}

func TestSummarizeEdgeCapacityDefaults(t *testing.T) {
	teachers := []models.Teacher{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got := SummarizeEdgeCapacity(teachers, models.ScheduleSettings{}, 2, fiveDays, 0)

	assert.Equal(t, EdgeCapacity{
		NeededFirstSlots:    10,
		NeededLastSlots:     10,
		AvailableFirstSlots: 15,
		AvailableLastSlots:  15,
	}, got)
	assert.False(t, got.Deficit())
}

func TestSummarizeEdgeCapacityHonoursCaps(t *testing.T) {
	teachers := []models.Teacher{{ID: "a"}, {ID: "b"}}
	settings := models.ScheduleSettings{TeacherConstraints: []models.TeacherConstraint{
		{TeacherID: "a", MaxFirstPeriods: intPtr(1), MaxLastPeriods: intPtr(0)},
		{TeacherID: "ghost", MaxFirstPeriods: intPtr(50)},
	}}

	got := SummarizeEdgeCapacity(teachers, settings, 2, fiveDays, 0)

	assert.Equal(t, 6, got.AvailableFirstSlots)
	assert.Equal(t, 5, got.AvailableLastSlots)
	assert.Equal(t, 4, got.FirstShortfall())
	assert.Equal(t, 5, got.LastShortfall())
	assert.True(t, got.Deficit())
}

func TestSummarizeEdgeCapacityConfiguredDefault(t *testing.T) {
	teachers := []models.Teacher{{ID: "a"}, {ID: "b"}}
	got := SummarizeEdgeCapacity(teachers, models.ScheduleSettings{}, 1, []string{"sunday", "monday"}, 5)
	assert.Equal(t, 10, got.AvailableFirstSlots)
	assert.Equal(t, 2, got.NeededLastSlots)
}

func TestExclusionDensity(t *testing.T) {
	settings := models.ScheduleSettings{
		SubjectConstraints: []models.SubjectConstraint{{SubjectID: "s", ExcludedPeriods: []int{1, 2}}},
		TeacherConstraints: []models.TeacherConstraint{{TeacherID: "t", ExcludedSlots: map[string][]int{"sunday": {1, 2}}}},
	}
	assert.InDelta(t, 0.4, exclusionDensity(indexConstraints(settings), 1, 0, 1, 10), 1e-9)
	assert.Zero(t, exclusionDensity(indexConstraints(settings), 0, 0, 5, 7))
}

func TestSummarizeEdgeCapacityZeroCapAndDuplicates(t *testing.T) {
	teachers := []models.Teacher{{ID: "a"}, {ID: "b"}}
	settings := models.ScheduleSettings{TeacherConstraints: []models.TeacherConstraint{
		{TeacherID: "a", MaxFirstPeriods: intPtr(0), MaxLastPeriods: intPtr(0)},
		{TeacherID: "a", MaxFirstPeriods: intPtr(5), MaxLastPeriods: intPtr(5)},
	}}

	got := SummarizeEdgeCapacity(teachers, settings, 2, fiveDays, 0)

	assert.Equal(t, 5, got.AvailableFirstSlots)
	assert.Equal(t, 5, got.AvailableLastSlots)
	assert.Equal(t, 5, got.FirstShortfall())
	assert.True(t, got.Deficit())
	assert.Equal(t, TeacherConstraintFor(settings, "a").MaxFirstPeriods, indexConstraints(settings).teacher("a").MaxFirstPeriods)
}
