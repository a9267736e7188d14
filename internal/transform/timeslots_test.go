package transform_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citybike/warehouse/internal/domain"
	"github.com/citybike/warehouse/internal/transform"
)

func TestBuildTimeSlots(t *testing.T) {
	trips := []domain.StagedTrip{
		{StartTime: time.Date(2023, 6, 10, 8, 15, 0, 0, time.UTC)},
		{StartTime: time.Date(2023, 6, 10, 8, 55, 0, 0, time.UTC)}, // same slot
		{StartTime: time.Date(2023, 6, 10, 17, 0, 0, 0, time.UTC)},
		{StartTime: time.Date(2023, 6, 9, 23, 30, 0, 0, time.UTC)},
	}

	slots := transform.BuildTimeSlots(trips)

	require.Len(t, slots, 3)

	// Sorted by (date, hour) ascending.
	assert.Equal(t, time.Date(2023, 6, 9, 0, 0, 0, 0, time.UTC), slots[0].Date)
	assert.Equal(t, 23, slots[0].Hour)
	assert.Equal(t, 8, slots[1].Hour)
	assert.Equal(t, 17, slots[2].Hour)

	// 2023-06-10 was a Saturday in Q2.
	sat := slots[1]
	assert.Equal(t, 2023, sat.Year)
	assert.Equal(t, 6, sat.Month)
	assert.Equal(t, 10, sat.Day)
	assert.Equal(t, 6, sat.DayOfWeek)
	assert.Equal(t, 2, sat.Quarter)
	assert.True(t, sat.IsWeekend)
	assert.Equal(t, "June", sat.MonthName)
	assert.Equal(t, "Saturday", sat.DayName)
	assert.Equal(t, "Morning", sat.TimeOfDay)

	// 2023-06-09 was a Friday.
	fri := slots[0]
	assert.Equal(t, 5, fri.DayOfWeek)
	assert.False(t, fri.IsWeekend)
	assert.Equal(t, "Evening", fri.TimeOfDay)
}

func TestBuildTimeSlots_empty(t *testing.T) {
	assert.Empty(t, transform.BuildTimeSlots(nil))
}
