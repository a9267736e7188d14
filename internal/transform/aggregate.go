package transform

import (
	"sort"
	"time"

	"github.com/citybike/warehouse/internal/domain"
	"github.com/citybike/warehouse/internal/derive"
)

// factKey is the 12-column group key of the ride summary fact.
type factKey struct {
	date           time.Time
	startStationID int
	endStationID   int
	bikeID         int
	userType       domain.UserType
	gender         domain.Gender
	age            int
	hasAge         bool
	routeID        string
	timeOfDay      string
	dayOfWeek      int
	isWeekend      bool
	month          int
}

type userAttrKey struct {
	userType domain.UserType
	gender   domain.Gender
	ageGroup string
}

type timeAttrKey struct {
	date      time.Time
	timeOfDay string
}

// Aggregate groups enriched trips by the 12-column fact key and computes the
// ride count and duration statistics, then resolves dimension foreign keys by
// matching attribute tuples.
//
// Key resolution re-derives age_group from the group's age and time_of_day
// from the group key using the same shared derive functions the builders
// used, and matches dim_users on (user_type, gender, age_group)
// and dim_time on (date, time_of_day). Several dimension rows can share one
// attribute tuple (two birth years in the same age group, two hours in the
// same time-of-day bucket); the row with the lowest surrogate key wins.
// A tuple with no dimension match produces a nil key, never an error.
func Aggregate(trips []domain.EnrichedTrip, users []domain.DimUser,
	times []domain.DimTime) []domain.RideSummary {

	userKeyByAttr := make(map[userAttrKey]int, len(users))
	for _, u := range users {
		key := userAttrKey{userType: u.UserType, gender: u.Gender, ageGroup: u.AgeGroup}
		if _, ok := userKeyByAttr[key]; !ok {
			userKeyByAttr[key] = u.UserKey
		}
	}

	timeKeyByAttr := make(map[timeAttrKey]int, len(times))
	for _, d := range times {
		key := timeAttrKey{date: d.Date, timeOfDay: d.TimeOfDay}
		if _, ok := timeKeyByAttr[key]; !ok {
			timeKeyByAttr[key] = d.TimeKey
		}
	}

	groups := make(map[factKey]*domain.RideSummary)
	var order []factKey
	for _, t := range trips {
		key := factKey{
			date:           t.Date,
			startStationID: t.StartStationID,
			endStationID:   t.EndStationID,
			bikeID:         t.BikeID,
			userType:       t.UserType,
			gender:         t.Gender,
			routeID:        t.RouteID,
			timeOfDay:      t.TimeOfDay,
			dayOfWeek:      t.DayOfWeek,
			isWeekend:      t.IsWeekend,
			month:          t.Month,
		}
		if t.Age != nil {
			key.age = *t.Age
			key.hasAge = true
		}

		f, ok := groups[key]
		if !ok {
			f = &domain.RideSummary{
				Date:               t.Date,
				StartStationID:     t.StartStationID,
				EndStationID:       t.EndStationID,
				BikeID:             t.BikeID,
				UserType:           t.UserType,
				Gender:             t.Gender,
				Age:                t.Age,
				RouteID:            t.RouteID,
				TimeOfDay:          t.TimeOfDay,
				DayOfWeek:          t.DayOfWeek,
				IsWeekend:          t.IsWeekend,
				Month:              t.Month,
				MinTripDurationMin: t.TripDurationMinutes,
				MaxTripDurationMin: t.TripDurationMinutes,
			}
			groups[key] = f
			order = append(order, key)
		}

		f.RideCount++
		// AvgTripDurationMin accumulates the sum until the final pass below.
		f.AvgTripDurationMin += float64(t.TripDurationMinutes)
		if t.TripDurationMinutes < f.MinTripDurationMin {
			f.MinTripDurationMin = t.TripDurationMinutes
		}
		if t.TripDurationMinutes > f.MaxTripDurationMin {
			f.MaxTripDurationMin = t.TripDurationMinutes
		}
	}

	facts := make([]domain.RideSummary, 0, len(order))
	for _, key := range order {
		f := groups[key]
		f.AvgTripDurationMin /= float64(f.RideCount)

		ageGroup := derive.AgeGroup(f.Age)
		if k, ok := userKeyByAttr[userAttrKey{userType: f.UserType, gender: f.Gender, ageGroup: ageGroup}]; ok {
			userKey := k
			f.UserKey = &userKey
		}
		if k, ok := timeKeyByAttr[timeAttrKey{date: f.Date, timeOfDay: f.TimeOfDay}]; ok {
			timeKey := k
			f.TimeKey = &timeKey
		}

		facts = append(facts, *f)
	}

	sortFacts(facts)
	return facts
}

// sortFacts orders fact rows deterministically so identical input always
// materializes an identical table.
func sortFacts(facts []domain.RideSummary) {
	sort.SliceStable(facts, func(i, j int) bool {
		a, b := facts[i], facts[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StartStationID != b.StartStationID {
			return a.StartStationID < b.StartStationID
		}
		if a.EndStationID != b.EndStationID {
			return a.EndStationID < b.EndStationID
		}
		if a.BikeID != b.BikeID {
			return a.BikeID < b.BikeID
		}
		if a.UserType != b.UserType {
			return a.UserType < b.UserType
		}
		if a.Gender != b.Gender {
			return a.Gender < b.Gender
		}
		if ar, br := birthYearRank(a.Age), birthYearRank(b.Age); ar != br {
			return ar < br
		}
		return a.TimeOfDay < b.TimeOfDay
	})
}
