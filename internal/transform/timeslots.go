package transform

import (
	"sort"
	"time"

	"github.com/citybike/warehouse/internal/domain"
	"github.com/citybike/warehouse/internal/derive"
)

type slotKey struct {
	date time.Time
	hour int
}

// BuildTimeSlots derives the time-slot set from staged trip start times:
// one slot per distinct (date, hour), carrying the full calendar hierarchy.
// Output is sorted by (date, hour) ascending.
func BuildTimeSlots(trips []domain.StagedTrip) []domain.TimeSlot {
	seen := make(map[slotKey]bool)
	var slots []domain.TimeSlot

	for _, trip := range trips {
		cal := derive.CalendarOf(trip.StartTime)
		key := slotKey{date: cal.Date, hour: cal.Hour}
		if seen[key] {
			continue
		}
		seen[key] = true
		slots = append(slots, domain.TimeSlot{
			Date:      cal.Date,
			Hour:      cal.Hour,
			Year:      cal.Year,
			Month:     cal.Month,
			Day:       cal.Day,
			DayOfWeek: cal.DayOfWeek,
			Quarter:   cal.Quarter,
			IsWeekend: cal.IsWeekend,
			MonthName: cal.MonthName,
			DayName:   cal.DayName,
			TimeOfDay: cal.TimeOfDay,
		})
	}

	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		return slots[i].Hour < slots[j].Hour
	})
	return slots
}
