package domain

import "time"

// RideSummary is one marts-layer fact row: an aggregate over all enriched
// trips sharing the same 12-column group key, plus summary statistics and
// dimension foreign keys.
//
// UserKey and TimeKey are resolved by matching dimension attribute tuples,
// not by carrying keys through the pipeline. A group that matches no
// dimension row gets a nil key; the relationships validation rules surface
// that gap, the aggregator never fails on it.
type RideSummary struct {
	// Group key.
	Date           time.Time
	StartStationID int
	EndStationID   int
	BikeID         int
	UserType       UserType
	Gender         Gender
	Age            *int
	RouteID        string
	TimeOfDay      string
	DayOfWeek      int
	IsWeekend      bool
	Month          int

	// Measures.
	RideCount          int
	AvgTripDurationMin float64
	MinTripDurationMin int
	MaxTripDurationMin int

	// Foreign keys, nil on a resolution gap.
	UserKey *int
	TimeKey *int
}
