package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citybike/warehouse/internal/domain"
)

func intPtr(n int) *int { return &n }

func TestStagedTripsCodec(t *testing.T) {
	trips := []domain.StagedTrip{
		{
			TripDurationSeconds: 600,
			StartTime:           time.Date(2023, 6, 10, 8, 15, 0, 0, time.UTC),
			StopTime:            time.Date(2023, 6, 10, 8, 25, 0, 0, time.UTC),
			StartStationID:      1,
			EndStationID:        2,
			BikeID:              101,
			UserType:            domain.UserTypeSubscriber,
			BirthYear:           intPtr(1990),
			TripDurationMinutes: 10,
		},
		{UserType: domain.UserTypeCustomer}, // nil birth year
	}

	table := domain.StagedTripsTable(trips)
	assert.Equal(t, domain.ModelStgTrips, table.Name)
	assert.Nil(t, table.Value(1, "birth_year"))

	got, err := domain.StagedTripsFromTable(table)
	require.NoError(t, err)
	assert.Equal(t, trips, got)
}

// TestStagedTripsFromTable_int64Cells verifies decoding survives the integer
// widening a database round-trip introduces.
func TestStagedTripsFromTable_int64Cells(t *testing.T) {
	table := domain.StagedTripsTable([]domain.StagedTrip{{BikeID: 101}})
	i := table.Index("bike_id")
	table.Rows[0][i] = int64(101)

	got, err := domain.StagedTripsFromTable(table)
	require.NoError(t, err)
	assert.Equal(t, 101, got[0].BikeID)
}

func TestStagedTripsFromTable_missingColumn(t *testing.T) {
	table := domain.NewTable(domain.ModelStgTrips, "bike_id")
	table.Append(101)

	_, err := domain.StagedTripsFromTable(table)

	require.Error(t, err)
	assert.ErrorContains(t, err, "missing column")
}

func TestStagedTripsFromTable_wrongCellType(t *testing.T) {
	table := domain.StagedTripsTable([]domain.StagedTrip{{}})
	i := table.Index("bike_id")
	table.Rows[0][i] = "not-an-int"

	_, err := domain.StagedTripsFromTable(table)

	require.Error(t, err)
	assert.ErrorContains(t, err, "bike_id")
}

func TestEnrichedTripsCodec(t *testing.T) {
	name := "Grove St PATH"
	lat := 40.7196
	trips := []domain.EnrichedTrip{
		{
			TripDurationMinutes: 10,
			StartTime:           time.Date(2023, 6, 10, 8, 15, 0, 0, time.UTC),
			StartStationID:      1,
			EndStationID:        2,
			UserType:            domain.UserTypeSubscriber,
			StartStationName:    &name,
			StartLatitude:       &lat,
			Gender:              domain.GenderMale,
			Age:                 intPtr(33),
			Date:                time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC),
			TimeOfDay:           "Morning",
			RouteID:             "1-2",
		},
		// Unresolved joins: nil station attrs, empty gender, nil age.
		{RouteID: "99-98", TimeOfDay: "Night"},
	}

	table := domain.EnrichedTripsTable(trips)

	// The unresolved gender encodes as a null cell, not an empty string, so
	// SQL consumers see a proper NULL.
	assert.Nil(t, table.Value(1, "gender"))
	assert.Nil(t, table.Value(1, "start_station_name"))

	got, err := domain.EnrichedTripsFromTable(table)
	require.NoError(t, err)
	assert.Equal(t, trips, got)
}

func TestDimUsersCodec(t *testing.T) {
	users := []domain.DimUser{
		{UserKey: 1, UserProfile: domain.UserProfile{
			UserType: domain.UserTypeCustomer, Gender: domain.GenderUnknown, AgeGroup: "Unknown",
		}},
		{UserKey: 2, UserProfile: domain.UserProfile{
			UserType: domain.UserTypeSubscriber, BirthYear: intPtr(1990),
			Gender: domain.GenderMale, Age: intPtr(33), AgeGroup: "25-34",
		}},
	}

	table := domain.DimUsersTable(users)
	got, err := domain.DimUsersFromTable(table)

	require.NoError(t, err)
	assert.Equal(t, users, got)
}

func TestDimTimesCodec(t *testing.T) {
	times := []domain.DimTime{
		{TimeKey: 1, TimeSlot: domain.TimeSlot{
			Date: time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC), Hour: 8,
			Year: 2023, Month: 6, Day: 10, DayOfWeek: 6, Quarter: 2,
			IsWeekend: true, MonthName: "June", DayName: "Saturday", TimeOfDay: "Morning",
		}},
	}

	table := domain.DimTimesTable(times)
	got, err := domain.DimTimesFromTable(table)

	require.NoError(t, err)
	assert.Equal(t, times, got)
}

// TestFromTable_reorderedColumns verifies decoders match columns by name,
// not position, since SELECT * order follows the migration.
func TestFromTable_reorderedColumns(t *testing.T) {
	table := domain.NewTable(domain.ModelStgStations,
		"longitude", "latitude", "station_name", "station_id")
	table.Append(-74.0434, 40.7196, "Grove St PATH", 1)

	got, err := domain.StationsFromTable(table)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.Station{
		StationID: 1, Name: "Grove St PATH", Latitude: 40.7196, Longitude: -74.0434,
	}, got[0])
}

func TestRideSummariesTable(t *testing.T) {
	facts := []domain.RideSummary{{
		Date:               time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC),
		StartStationID:     1,
		EndStationID:       2,
		BikeID:             101,
		UserType:           domain.UserTypeSubscriber,
		Gender:             domain.GenderMale,
		Age:                intPtr(33),
		RouteID:            "1-2",
		TimeOfDay:          "Morning",
		DayOfWeek:          6,
		IsWeekend:          true,
		Month:              6,
		RideCount:          3,
		AvgTripDurationMin: 20,
		MinTripDurationMin: 10,
		MaxTripDurationMin: 30,
		UserKey:            intPtr(2),
		TimeKey:            nil, // unresolved time key persists as NULL
	}}

	table := domain.RideSummariesTable(facts)

	assert.Equal(t, domain.ModelFactRides, table.Name)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, 3, table.Value(0, "ride_count"))
	assert.Equal(t, 20.0, table.Value(0, "avg_trip_duration_min"))
	assert.Equal(t, 2, table.Value(0, "user_key"))
	assert.Nil(t, table.Value(0, "time_key"))
}
