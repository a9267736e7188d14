// Package transform contains the layer transformations of the warehouse:
// schema normalization, station deduplication, profile and time-slot
// building, surrogate key assignment, enrichment, and fact aggregation.
//
// Every function here is pure: output depends only on the input row sets and
// the explicit evaluation time. No wall-clock reads, no I/O, no shared state.
// Reading upstream materializations and writing results belongs to the
// pipeline runner and the store, never to this package.
package transform

import (
	"strconv"
	"strings"
	"time"

	"github.com/citybike/warehouse/internal/domain"
)

// timeLayouts are the accepted source timestamp formats, tried in order.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
}

// RequireColumns verifies that every canonical staged field has a source
// column. Returns a *domain.SchemaMismatchError naming the first missing
// column; this aborts the run before any row-level work starts.
func RequireColumns(have []string) error {
	present := make(map[string]bool, len(have))
	for _, c := range have {
		present[c] = true
	}
	for _, c := range domain.RequiredColumns {
		if !present[c] {
			return &domain.SchemaMismatchError{Column: c}
		}
	}
	return nil
}

// Normalize turns raw trip records into canonical staged trips.
//
// A record with any malformed required field is excluded and counted, never
// fatal: the second return value is the number of excluded records. User type
// is only trimmed, not checked against the enum; the accepted_values rule on
// stg_trips owns that assertion.
func Normalize(raws []domain.RawTrip) ([]domain.StagedTrip, int) {
	staged := make([]domain.StagedTrip, 0, len(raws))
	var parseErrors int

	for _, raw := range raws {
		trip, ok := normalizeOne(raw)
		if !ok {
			parseErrors++
			continue
		}
		staged = append(staged, trip)
	}
	return staged, parseErrors
}

func normalizeOne(raw domain.RawTrip) (domain.StagedTrip, bool) {
	var (
		trip domain.StagedTrip
		ok   bool
	)

	if trip.TripDurationSeconds, ok = parseIntField(raw[domain.ColTripDuration]); !ok {
		return domain.StagedTrip{}, false
	}
	if trip.StartTime, ok = parseTimeField(raw[domain.ColStartTime]); !ok {
		return domain.StagedTrip{}, false
	}
	if trip.StopTime, ok = parseTimeField(raw[domain.ColStopTime]); !ok {
		return domain.StagedTrip{}, false
	}
	if trip.StartStationID, ok = parseIntField(raw[domain.ColStartStationID]); !ok {
		return domain.StagedTrip{}, false
	}
	if trip.EndStationID, ok = parseIntField(raw[domain.ColEndStationID]); !ok {
		return domain.StagedTrip{}, false
	}
	if trip.BikeID, ok = parseIntField(raw[domain.ColBikeID]); !ok {
		return domain.StagedTrip{}, false
	}
	if trip.TripDurationMinutes, ok = parseIntField(raw[domain.ColTripDurationMin]); !ok {
		return domain.StagedTrip{}, false
	}

	trip.UserType = domain.UserType(strings.TrimSpace(raw[domain.ColUserType]))

	birthYear, ok := parseOptionalIntField(raw[domain.ColBirthYear])
	if !ok {
		return domain.StagedTrip{}, false
	}
	trip.BirthYear = birthYear

	return trip, true
}

// parseIntField parses a required integer field. Sources routinely deliver
// integer columns as "1.0"-style floats, so a float form with an integral
// value is accepted too.
func parseIntField(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// parseOptionalIntField parses a nullable integer field. Empty means null;
// a present but malformed value fails the record.
func parseOptionalIntField(s string) (*int, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	n, ok := parseIntField(s)
	if !ok {
		return nil, false
	}
	return &n, true
}

// parseFloatField parses a required float field.
func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// parseTimeField parses a required timestamp field, trying each accepted
// layout in order. Timestamps are interpreted as UTC.
func parseTimeField(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
