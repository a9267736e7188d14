// Package derive holds the pure derived-attribute functions shared by the
// staging/intermediate builders and the marts aggregator. Both call sites use
// these exact functions: the fact layer re-derives age_group and time_of_day
// when resolving dimension keys, and any drift between the two derivations
// would silently break key resolution. Keep this the only implementation.
package derive

import (
	"fmt"
	"time"
)

// Age group bucket labels, in ascending age order.
const (
	AgeGroupUnder18 = "Under 18"
	AgeGroup18To24  = "18-24"
	AgeGroup25To34  = "25-34"
	AgeGroup35To44  = "35-44"
	AgeGroup45To54  = "45-54"
	AgeGroup55To64  = "55-64"
	AgeGroup65Plus  = "65+"
	AgeGroupUnknown = "Unknown"
)

// Time-of-day bucket labels.
const (
	TimeOfDayMorning   = "Morning"
	TimeOfDayAfternoon = "Afternoon"
	TimeOfDayEvening   = "Evening"
	TimeOfDayNight     = "Night"
)

// Age returns evaluation-year minus birth year, or nil when birthYear is nil
// or zero (the source uses 0 for "not provided"). The result is deliberately
// not range-checked; implausible ages flow through and surface in the age
// group distribution instead.
func Age(birthYear *int, evaluatedAt time.Time) *int {
	if birthYear == nil || *birthYear == 0 {
		return nil
	}
	age := evaluatedAt.Year() - *birthYear
	return &age
}

// AgeGroup buckets an age. Boundaries are <18, 18-24, 25-34, 35-44, 45-54,
// 55-64, 65+; a nil age falls in "Unknown".
func AgeGroup(age *int) string {
	if age == nil {
		return AgeGroupUnknown
	}
	switch a := *age; {
	case a < 18:
		return AgeGroupUnder18
	case a <= 24:
		return AgeGroup18To24
	case a <= 34:
		return AgeGroup25To34
	case a <= 44:
		return AgeGroup35To44
	case a <= 54:
		return AgeGroup45To54
	case a <= 64:
		return AgeGroup55To64
	default:
		return AgeGroup65Plus
	}
}

// TimeOfDay buckets an hour of day: [6,12) Morning, [12,18) Afternoon,
// [18,24) Evening, everything else Night.
func TimeOfDay(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return TimeOfDayMorning
	case hour >= 12 && hour < 18:
		return TimeOfDayAfternoon
	case hour >= 18 && hour < 24:
		return TimeOfDayEvening
	default:
		return TimeOfDayNight
	}
}

// Calendar is the full calendar hierarchy for one timestamp.
type Calendar struct {
	Date      time.Time // midnight UTC
	Hour      int
	Year      int
	Month     int // 1-12
	Day       int
	DayOfWeek int // 0 = Sunday … 6 = Saturday
	Quarter   int
	IsWeekend bool
	MonthName string
	DayName   string
	TimeOfDay string
}

// CalendarOf expands a timestamp into its calendar hierarchy. The timestamp
// is interpreted in UTC so the same instant always yields the same calendar
// row regardless of the host timezone.
func CalendarOf(ts time.Time) Calendar {
	ts = ts.UTC()
	dow := int(ts.Weekday()) // time.Sunday == 0, matching the warehouse convention
	return Calendar{
		Date:      time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
		Hour:      ts.Hour(),
		Year:      ts.Year(),
		Month:     int(ts.Month()),
		Day:       ts.Day(),
		DayOfWeek: dow,
		Quarter:   (int(ts.Month())-1)/3 + 1,
		IsWeekend: dow == 0 || dow == 6,
		MonthName: ts.Month().String(),
		DayName:   ts.Weekday().String(),
		TimeOfDay: TimeOfDay(ts.Hour()),
	}
}

// RouteID builds the composite route identifier for a station pair.
// It is string concatenation, not arithmetic: routes 1→23 and 12→3 must not
// collide, and "{start}-{end}" keeps them distinct.
func RouteID(startStationID, endStationID int) string {
	return fmt.Sprintf("%d-%d", startStationID, endStationID)
}
