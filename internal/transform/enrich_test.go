package transform_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citybike/warehouse/internal/domain"
	"github.com/citybike/warehouse/internal/transform"
)

func TestEnrich(t *testing.T) {
	start := time.Date(2023, 6, 10, 8, 15, 0, 0, time.UTC)
	trips := []domain.StagedTrip{{
		TripDurationSeconds: 600,
		TripDurationMinutes: 10,
		StartTime:           start,
		StopTime:            start.Add(10 * time.Minute),
		StartStationID:      1,
		EndStationID:        2,
		BikeID:              101,
		UserType:            domain.UserTypeSubscriber,
		BirthYear:           intPtr(1990),
	}}
	stations := []domain.Station{
		{StationID: 1, Name: "Grove St PATH", Latitude: 40.7196, Longitude: -74.0434},
		{StationID: 2, Name: "Exchange Place", Latitude: 40.7162, Longitude: -74.0334},
	}
	profiles := []domain.UserProfile{{
		UserType:  domain.UserTypeSubscriber,
		BirthYear: intPtr(1990),
		Gender:    domain.GenderMale,
		Age:       intPtr(33),
		AgeGroup:  "25-34",
	}}
	slots := transform.BuildTimeSlots(trips)

	enriched := transform.Enrich(trips, stations, profiles, slots)

	require.Len(t, enriched, 1)
	e := enriched[0]

	require.NotNil(t, e.StartStationName)
	assert.Equal(t, "Grove St PATH", *e.StartStationName)
	assert.Equal(t, 40.7196, *e.StartLatitude)
	assert.Equal(t, "Exchange Place", *e.EndStationName)

	assert.Equal(t, domain.GenderMale, e.Gender)
	require.NotNil(t, e.Age)
	assert.Equal(t, 33, *e.Age)

	assert.Equal(t, time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC), e.Date)
	assert.Equal(t, "Morning", e.TimeOfDay)
	assert.Equal(t, 6, e.DayOfWeek)
	assert.True(t, e.IsWeekend)
	assert.Equal(t, "Saturday", e.DayName)
	assert.Equal(t, "1-2", e.RouteID)
}

// TestEnrich_leftJoin verifies a trip referencing unknown stations and an
// unknown profile still produces exactly one output row, with nil station
// attributes and an empty gender.
func TestEnrich_leftJoin(t *testing.T) {
	trips := []domain.StagedTrip{{
		StartTime:      time.Date(2023, 6, 10, 8, 0, 0, 0, time.UTC),
		StartStationID: 99,
		EndStationID:   98,
		UserType:       domain.UserTypeCustomer,
	}}

	enriched := transform.Enrich(trips, nil, nil, nil)

	require.Len(t, enriched, 1)
	e := enriched[0]
	assert.Nil(t, e.StartStationName)
	assert.Nil(t, e.StartLatitude)
	assert.Nil(t, e.EndStationName)
	assert.Empty(t, e.Gender)
	assert.Nil(t, e.Age)
	assert.Equal(t, "99-98", e.RouteID)

	// Calendar fields fall back to direct derivation when no slot matches.
	assert.Equal(t, 2023, e.Year)
	assert.Equal(t, "Morning", e.TimeOfDay)
	assert.Equal(t, 6, e.DayOfWeek)
}

// TestEnrich_timeOfDayFromOwnHour verifies time_of_day reflects the trip's
// own start hour rather than whichever slot represented the date.
func TestEnrich_timeOfDayFromOwnHour(t *testing.T) {
	trips := []domain.StagedTrip{
		{StartTime: time.Date(2023, 6, 10, 8, 0, 0, 0, time.UTC)},
		{StartTime: time.Date(2023, 6, 10, 20, 0, 0, 0, time.UTC)},
	}
	slots := transform.BuildTimeSlots(trips)

	enriched := transform.Enrich(trips, nil, nil, slots)

	require.Len(t, enriched, 2)
	assert.Equal(t, "Morning", enriched[0].TimeOfDay)
	assert.Equal(t, "Evening", enriched[1].TimeOfDay)
}

// TestEnrich_ambiguousProfile verifies that when one (user_type, birth_year)
// pair maps to several genders, the first profile in surrogate-key order wins.
func TestEnrich_ambiguousProfile(t *testing.T) {
	trips := []domain.StagedTrip{{
		StartTime: time.Date(2023, 6, 10, 8, 0, 0, 0, time.UTC),
		UserType:  domain.UserTypeSubscriber,
		BirthYear: intPtr(1990),
	}}
	profiles := []domain.UserProfile{
		{UserType: domain.UserTypeSubscriber, BirthYear: intPtr(1990), Gender: domain.GenderMale},
		{UserType: domain.UserTypeSubscriber, BirthYear: intPtr(1990), Gender: domain.GenderFemale},
	}

	enriched := transform.Enrich(trips, nil, profiles, nil)

	require.Len(t, enriched, 1)
	assert.Equal(t, domain.GenderFemale, enriched[0].Gender)
}
