package transform_test

import (
	"time"

	"github.com/citybike/warehouse/internal/domain"
)

// ---- helpers ----

// evalDate is the fixed evaluation time used by every transform test.
var evalDate = time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC)

func intPtr(n int) *int { return &n }

// rawRecord returns a fully valid raw trip with sensible defaults. Tests
// mutate individual columns via the overrides map.
func rawRecord(overrides map[string]string) domain.RawTrip {
	raw := domain.RawTrip{
		domain.ColTripDuration:    "600",
		domain.ColStartTime:       "2023-06-10 08:15:00",
		domain.ColStopTime:        "2023-06-10 08:25:00",
		domain.ColStartStationID:  "1",
		domain.ColStartName:       "Grove St PATH",
		domain.ColStartLatitude:   "40.7196",
		domain.ColStartLongitude:  "-74.0434",
		domain.ColEndStationID:    "2",
		domain.ColEndName:         "Exchange Place",
		domain.ColEndLatitude:     "40.7162",
		domain.ColEndLongitude:    "-74.0334",
		domain.ColBikeID:          "101",
		domain.ColUserType:        "Subscriber",
		domain.ColBirthYear:       "1990",
		domain.ColGender:          "1",
		domain.ColTripDurationMin: "10",
	}
	for col, val := range overrides {
		raw[col] = val
	}
	return raw
}
