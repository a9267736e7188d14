package transform

import (
	"time"

	"github.com/citybike/warehouse/internal/domain"
	"github.com/citybike/warehouse/internal/derive"
)

// userLookupKey is the enrichment join key for user profiles. Gender is
// deliberately absent even though it is part of the profile identity: the
// trip itself only carries (user_type, birth_year). When one pair maps to
// multiple genders the first profile in surrogate-key order wins.
type userLookupKey struct {
	userType  domain.UserType
	birthYear int
	hasYear   bool
}

// Enrich widens every staged trip with station, user, and calendar
// attributes. All three lookups are left joins: output cardinality is exactly
// one enriched trip per staged trip, never more, never fewer.
//
//   - Station attributes come from the station set keyed by id; a missing id
//     leaves the attributes nil. When an id has conflicting attribute tuples
//     the first row in station sort order is used; the unique(station_id)
//     rule flags the conflict, the joiner does not.
//   - Gender and age come from the profile matching (user_type, birth_year).
//   - Calendar fields come from the time slot matching the trip's start date
//     only; hour-level slot fields are not propagated. TimeOfDay is derived
//     from the trip's own start hour with the shared derive function.
func Enrich(trips []domain.StagedTrip, stations []domain.Station,
	profiles []domain.UserProfile, slots []domain.TimeSlot) []domain.EnrichedTrip {

	stationByID := make(map[int]domain.Station, len(stations))
	for _, s := range stations {
		if _, ok := stationByID[s.StationID]; !ok {
			stationByID[s.StationID] = s
		}
	}

	ordered := make([]domain.UserProfile, len(profiles))
	copy(ordered, profiles)
	sortProfiles(ordered)
	profileByKey := make(map[userLookupKey]domain.UserProfile, len(ordered))
	for _, p := range ordered {
		key := userLookupKey{userType: p.UserType}
		if p.BirthYear != nil {
			key.birthYear = *p.BirthYear
			key.hasYear = true
		}
		if _, ok := profileByKey[key]; !ok {
			profileByKey[key] = p
		}
	}

	// Date-level fields are identical across all slots of one date, so the
	// first slot per date is as good as any.
	slotByDate := make(map[time.Time]domain.TimeSlot, len(slots))
	for _, s := range slots {
		if _, ok := slotByDate[s.Date]; !ok {
			slotByDate[s.Date] = s
		}
	}

	enriched := make([]domain.EnrichedTrip, 0, len(trips))
	for _, trip := range trips {
		e := domain.EnrichedTrip{
			TripDurationSeconds: trip.TripDurationSeconds,
			TripDurationMinutes: trip.TripDurationMinutes,
			StartTime:           trip.StartTime,
			StopTime:            trip.StopTime,
			StartStationID:      trip.StartStationID,
			EndStationID:        trip.EndStationID,
			BikeID:              trip.BikeID,
			UserType:            trip.UserType,
			BirthYear:           trip.BirthYear,
			RouteID:             derive.RouteID(trip.StartStationID, trip.EndStationID),
		}

		if s, ok := stationByID[trip.StartStationID]; ok {
			name, lat, long := s.Name, s.Latitude, s.Longitude
			e.StartStationName, e.StartLatitude, e.StartLongitude = &name, &lat, &long
		}
		if s, ok := stationByID[trip.EndStationID]; ok {
			name, lat, long := s.Name, s.Latitude, s.Longitude
			e.EndStationName, e.EndLatitude, e.EndLongitude = &name, &lat, &long
		}

		lookup := userLookupKey{userType: trip.UserType}
		if trip.BirthYear != nil {
			lookup.birthYear = *trip.BirthYear
			lookup.hasYear = true
		}
		if p, ok := profileByKey[lookup]; ok {
			e.Gender = p.Gender
			e.Age = p.Age
		}

		cal := derive.CalendarOf(trip.StartTime)
		e.Date = cal.Date
		e.TimeOfDay = derive.TimeOfDay(cal.Hour)
		if slot, ok := slotByDate[cal.Date]; ok {
			e.Year = slot.Year
			e.Month = slot.Month
			e.Day = slot.Day
			e.DayOfWeek = slot.DayOfWeek
			e.Quarter = slot.Quarter
			e.IsWeekend = slot.IsWeekend
			e.MonthName = slot.MonthName
			e.DayName = slot.DayName
		} else {
			// A trip whose date produced no slot cannot happen when slots are
			// built from the same staged set, but the join stays total anyway.
			e.Year = cal.Year
			e.Month = cal.Month
			e.Day = cal.Day
			e.DayOfWeek = cal.DayOfWeek
			e.Quarter = cal.Quarter
			e.IsWeekend = cal.IsWeekend
			e.MonthName = cal.MonthName
			e.DayName = cal.DayName
		}

		enriched = append(enriched, e)
	}
	return enriched
}
