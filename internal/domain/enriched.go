package domain

import "time"

// EnrichedTrip is the wide per-trip record produced by the intermediate
// layer: one row per staged trip, with station attributes looked up for both
// endpoints, gender/age resolved from the user profiles, and calendar fields
// resolved from the time slots.
//
// All lookups are left joins: a missing station leaves the station attribute
// pointers nil, and a missing profile leaves Gender empty and Age nil. The
// row itself is never dropped or multiplied.
type EnrichedTrip struct {
	TripDurationSeconds int
	TripDurationMinutes int
	StartTime           time.Time
	StopTime            time.Time
	StartStationID      int
	EndStationID        int
	BikeID              int
	UserType            UserType
	BirthYear           *int

	StartStationName *string
	StartLatitude    *float64
	StartLongitude   *float64
	EndStationName   *string
	EndLatitude      *float64
	EndLongitude     *float64

	Gender Gender // empty when no profile matched
	Age    *int

	// Calendar fields are date-level only; the slot's hour is deliberately
	// not propagated. TimeOfDay is derived from the trip's own start hour.
	Date      time.Time
	Year      int
	Month     int
	Day       int
	DayOfWeek int
	Quarter   int
	IsWeekend bool
	MonthName string
	DayName   string
	TimeOfDay string

	RouteID string
}
