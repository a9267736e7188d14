// Package domain contains the core data types for the bike-share warehouse.
// This package has zero external dependencies and is imported by every other
// internal package (transform, validate, warehouse, pipeline, handler).
package domain

import "time"

// RawTrip is one trip record exactly as ingested from the source: every field
// is still a string keyed by its source column name. Parsing and type
// coercion happen in the staging transforms, never at ingestion time.
type RawTrip map[string]string

// Source column names for the raw_rides input. Every canonical staged field
// maps to exactly one of these; a missing column is a SchemaMismatchError,
// not a silent skip.
const (
	ColTripDuration   = "Trip Duration"
	ColStartTime      = "Start Time"
	ColStopTime       = "Stop Time"
	ColStartStationID = "Start Station ID"
	ColStartName      = "Start Station Name"
	ColStartLatitude  = "Start Station Latitude"
	ColStartLongitude = "Start Station Longitude"
	ColEndStationID   = "End Station ID"
	ColEndName        = "End Station Name"
	ColEndLatitude    = "End Station Latitude"
	ColEndLongitude   = "End Station Longitude"
	ColBikeID         = "Bike ID"
	ColUserType       = "User Type"
	ColBirthYear      = "Birth Year"
	ColGender         = "Gender"
	ColTripDurationMin = "Trip_Duration_in_min"
)

// RequiredColumns lists every source column the staging layer reads.
// Ingestion verifies the full set up front so a schema drift fails the run
// before any row-level work starts.
var RequiredColumns = []string{
	ColTripDuration, ColStartTime, ColStopTime,
	ColStartStationID, ColStartName, ColStartLatitude, ColStartLongitude,
	ColEndStationID, ColEndName, ColEndLatitude, ColEndLongitude,
	ColBikeID, ColUserType, ColBirthYear, ColGender, ColTripDurationMin,
}

// UserType classifies the rider's relationship with the service.
type UserType string

const (
	UserTypeSubscriber UserType = "Subscriber"
	UserTypeCustomer   UserType = "Customer"
)

// StagedTrip is the canonical, typed form of a trip after schema
// normalization. Rows that fail coercion never become StagedTrips; they are
// excluded and counted by the normalizer.
type StagedTrip struct {
	TripDurationSeconds int
	StartTime           time.Time
	StopTime            time.Time
	StartStationID      int
	EndStationID        int
	BikeID              int
	UserType            UserType
	BirthYear           *int // nil when the source value is missing or zero
	TripDurationMinutes int
}
