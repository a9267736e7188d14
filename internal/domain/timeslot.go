package domain

import "time"

// TimeSlot is one distinct (date, hour) observed among trip start times,
// carrying the full calendar hierarchy for that slot. Date is always midnight
// UTC; Hour is 0–23.
type TimeSlot struct {
	Date      time.Time
	Hour      int
	Year      int
	Month     int
	Day       int
	DayOfWeek int // 0 = Sunday … 6 = Saturday
	Quarter   int
	IsWeekend bool
	MonthName string
	DayName   string
	TimeOfDay string
}

// DimTime is the marts-layer time dimension: a slot plus its surrogate key,
// assigned in (date, hour) ascending order.
type DimTime struct {
	TimeKey int
	TimeSlot
}
