package domain

import (
	"fmt"
	"time"
)

// This file converts between the typed entity slices the transforms work on
// and the generic Tables the store and validation engine work on. Encoders
// define the persisted column order; decoders tolerate column reordering but
// fail loudly on a missing column or a wrong cell type, because a shape
// mismatch here means the upstream model wrote something it never should have.

// --- nullable encode helpers ------------------------------------------------

func cellOfIntPtr(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func cellOfStringPtr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func cellOfFloatPtr(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// reader resolves column positions once and then reads typed cells, keeping
// the per-entity decoders short. The first error wins and is carried until
// Err is checked.
type reader struct {
	t   *Table
	idx map[string]int
	err error
}

func newReader(t *Table, columns ...string) *reader {
	r := &reader{t: t, idx: make(map[string]int, len(columns))}
	for _, c := range columns {
		i := t.Index(c)
		if i < 0 {
			r.err = fmt.Errorf("table %s: missing column %q", t.Name, c)
			return r
		}
		r.idx[c] = i
	}
	return r
}

func (r *reader) fail(row int, column, want string, v any) {
	if r.err == nil {
		r.err = fmt.Errorf("table %s: row %d: column %q: want %s, got %T",
			r.t.Name, row, column, want, v)
	}
}

func (r *reader) intAt(row int, column string) int {
	if r.err != nil {
		return 0
	}
	v := r.t.Rows[row][r.idx[column]]
	n, ok := CellInt(v)
	if !ok {
		r.fail(row, column, "int", v)
	}
	return n
}

func (r *reader) intPtrAt(row int, column string) *int {
	if r.err != nil {
		return nil
	}
	v := r.t.Rows[row][r.idx[column]]
	if v == nil {
		return nil
	}
	n, ok := CellInt(v)
	if !ok {
		r.fail(row, column, "int or nil", v)
		return nil
	}
	return &n
}

func (r *reader) floatAt(row int, column string) float64 {
	if r.err != nil {
		return 0
	}
	v := r.t.Rows[row][r.idx[column]]
	f, ok := CellFloat(v)
	if !ok {
		r.fail(row, column, "float64", v)
	}
	return f
}

func (r *reader) floatPtrAt(row int, column string) *float64 {
	if r.err != nil {
		return nil
	}
	v := r.t.Rows[row][r.idx[column]]
	if v == nil {
		return nil
	}
	f, ok := CellFloat(v)
	if !ok {
		r.fail(row, column, "float64 or nil", v)
		return nil
	}
	return &f
}

func (r *reader) stringAt(row int, column string) string {
	if r.err != nil {
		return ""
	}
	v := r.t.Rows[row][r.idx[column]]
	s, ok := CellString(v)
	if !ok {
		r.fail(row, column, "string", v)
	}
	return s
}

func (r *reader) stringPtrAt(row int, column string) *string {
	if r.err != nil {
		return nil
	}
	v := r.t.Rows[row][r.idx[column]]
	if v == nil {
		return nil
	}
	s, ok := CellString(v)
	if !ok {
		r.fail(row, column, "string or nil", v)
		return nil
	}
	return &s
}

// nullableStringAt reads a cell that encodes "unresolved" as nil and decodes
// it to the empty string.
func (r *reader) nullableStringAt(row int, column string) string {
	if r.err != nil {
		return ""
	}
	v := r.t.Rows[row][r.idx[column]]
	if v == nil {
		return ""
	}
	s, ok := CellString(v)
	if !ok {
		r.fail(row, column, "string or nil", v)
	}
	return s
}

func (r *reader) timeAt(row int, column string) time.Time {
	if r.err != nil {
		return time.Time{}
	}
	v := r.t.Rows[row][r.idx[column]]
	ts, ok := CellTime(v)
	if !ok {
		r.fail(row, column, "time.Time", v)
	}
	return ts
}

func (r *reader) boolAt(row int, column string) bool {
	if r.err != nil {
		return false
	}
	v := r.t.Rows[row][r.idx[column]]
	b, ok := CellBool(v)
	if !ok {
		r.fail(row, column, "bool", v)
	}
	return b
}

// --- staged trips -----------------------------------------------------------

// StagedTripsTable encodes staged trips as the staging.stg_trips table.
func StagedTripsTable(trips []StagedTrip) *Table {
	t := NewTable(ModelStgTrips,
		"trip_duration_seconds", "start_time", "stop_time",
		"start_station_id", "end_station_id", "bike_id",
		"user_type", "birth_year", "trip_duration_minutes",
	)
	for _, trip := range trips {
		t.Append(
			trip.TripDurationSeconds, trip.StartTime, trip.StopTime,
			trip.StartStationID, trip.EndStationID, trip.BikeID,
			string(trip.UserType), cellOfIntPtr(trip.BirthYear), trip.TripDurationMinutes,
		)
	}
	return t
}

// StagedTripsFromTable decodes a staging.stg_trips materialization.
func StagedTripsFromTable(t *Table) ([]StagedTrip, error) {
	r := newReader(t,
		"trip_duration_seconds", "start_time", "stop_time",
		"start_station_id", "end_station_id", "bike_id",
		"user_type", "birth_year", "trip_duration_minutes",
	)
	trips := make([]StagedTrip, 0, t.Len())
	for i := range t.Rows {
		trips = append(trips, StagedTrip{
			TripDurationSeconds: r.intAt(i, "trip_duration_seconds"),
			StartTime:           r.timeAt(i, "start_time"),
			StopTime:            r.timeAt(i, "stop_time"),
			StartStationID:      r.intAt(i, "start_station_id"),
			EndStationID:        r.intAt(i, "end_station_id"),
			BikeID:              r.intAt(i, "bike_id"),
			UserType:            UserType(r.stringAt(i, "user_type")),
			BirthYear:           r.intPtrAt(i, "birth_year"),
			TripDurationMinutes: r.intAt(i, "trip_duration_minutes"),
		})
	}
	if r.err != nil {
		return nil, fmt.Errorf("domain.StagedTripsFromTable: %w", r.err)
	}
	return trips, nil
}

// --- stations ---------------------------------------------------------------

// StationsTable encodes stations as the staging.stg_stations table.
func StationsTable(stations []Station) *Table {
	t := NewTable(ModelStgStations, "station_id", "station_name", "latitude", "longitude")
	for _, s := range stations {
		t.Append(s.StationID, s.Name, s.Latitude, s.Longitude)
	}
	return t
}

// StationsFromTable decodes a staging.stg_stations materialization.
func StationsFromTable(t *Table) ([]Station, error) {
	r := newReader(t, "station_id", "station_name", "latitude", "longitude")
	stations := make([]Station, 0, t.Len())
	for i := range t.Rows {
		stations = append(stations, Station{
			StationID: r.intAt(i, "station_id"),
			Name:      r.stringAt(i, "station_name"),
			Latitude:  r.floatAt(i, "latitude"),
			Longitude: r.floatAt(i, "longitude"),
		})
	}
	if r.err != nil {
		return nil, fmt.Errorf("domain.StationsFromTable: %w", r.err)
	}
	return stations, nil
}

// DimStationsTable encodes the marts.dim_stations dimension.
func DimStationsTable(stations []DimStation) *Table {
	t := NewTable(ModelDimStations,
		"station_id", "station_name", "latitude", "longitude", "total_traffic")
	for _, s := range stations {
		t.Append(s.StationID, s.Name, s.Latitude, s.Longitude, s.TotalTraffic)
	}
	return t
}

// --- user profiles ----------------------------------------------------------

// UserProfilesTable encodes user profiles as the staging.stg_users table.
func UserProfilesTable(profiles []UserProfile) *Table {
	t := NewTable(ModelStgUsers, "user_type", "birth_year", "gender", "age", "age_group")
	for _, p := range profiles {
		t.Append(string(p.UserType), cellOfIntPtr(p.BirthYear), string(p.Gender),
			cellOfIntPtr(p.Age), p.AgeGroup)
	}
	return t
}

// UserProfilesFromTable decodes a staging.stg_users materialization.
func UserProfilesFromTable(t *Table) ([]UserProfile, error) {
	r := newReader(t, "user_type", "birth_year", "gender", "age", "age_group")
	profiles := make([]UserProfile, 0, t.Len())
	for i := range t.Rows {
		profiles = append(profiles, UserProfile{
			UserType:  UserType(r.stringAt(i, "user_type")),
			BirthYear: r.intPtrAt(i, "birth_year"),
			Gender:    Gender(r.stringAt(i, "gender")),
			Age:       r.intPtrAt(i, "age"),
			AgeGroup:  r.stringAt(i, "age_group"),
		})
	}
	if r.err != nil {
		return nil, fmt.Errorf("domain.UserProfilesFromTable: %w", r.err)
	}
	return profiles, nil
}

// DimUsersTable encodes the marts.dim_users dimension.
func DimUsersTable(users []DimUser) *Table {
	t := NewTable(ModelDimUsers,
		"user_key", "user_type", "birth_year", "gender", "age", "age_group")
	for _, u := range users {
		t.Append(u.UserKey, string(u.UserType), cellOfIntPtr(u.BirthYear),
			string(u.Gender), cellOfIntPtr(u.Age), u.AgeGroup)
	}
	return t
}

// DimUsersFromTable decodes a marts.dim_users materialization.
func DimUsersFromTable(t *Table) ([]DimUser, error) {
	r := newReader(t, "user_key", "user_type", "birth_year", "gender", "age", "age_group")
	users := make([]DimUser, 0, t.Len())
	for i := range t.Rows {
		users = append(users, DimUser{
			UserKey: r.intAt(i, "user_key"),
			UserProfile: UserProfile{
				UserType:  UserType(r.stringAt(i, "user_type")),
				BirthYear: r.intPtrAt(i, "birth_year"),
				Gender:    Gender(r.stringAt(i, "gender")),
				Age:       r.intPtrAt(i, "age"),
				AgeGroup:  r.stringAt(i, "age_group"),
			},
		})
	}
	if r.err != nil {
		return nil, fmt.Errorf("domain.DimUsersFromTable: %w", r.err)
	}
	return users, nil
}

// --- time slots -------------------------------------------------------------

var timeSlotColumns = []string{
	"date", "hour", "year", "month", "day", "day_of_week",
	"quarter", "is_weekend", "month_name", "day_name", "time_of_day",
}

// TimeSlotsTable encodes time slots as the intermediate.int_time_slots table.
func TimeSlotsTable(slots []TimeSlot) *Table {
	t := NewTable(ModelIntTimeSlots, timeSlotColumns...)
	for _, s := range slots {
		t.Append(s.Date, s.Hour, s.Year, s.Month, s.Day, s.DayOfWeek,
			s.Quarter, s.IsWeekend, s.MonthName, s.DayName, s.TimeOfDay)
	}
	return t
}

func timeSlotFromRow(r *reader, i int) TimeSlot {
	return TimeSlot{
		Date:      r.timeAt(i, "date"),
		Hour:      r.intAt(i, "hour"),
		Year:      r.intAt(i, "year"),
		Month:     r.intAt(i, "month"),
		Day:       r.intAt(i, "day"),
		DayOfWeek: r.intAt(i, "day_of_week"),
		Quarter:   r.intAt(i, "quarter"),
		IsWeekend: r.boolAt(i, "is_weekend"),
		MonthName: r.stringAt(i, "month_name"),
		DayName:   r.stringAt(i, "day_name"),
		TimeOfDay: r.stringAt(i, "time_of_day"),
	}
}

// TimeSlotsFromTable decodes an intermediate.int_time_slots materialization.
func TimeSlotsFromTable(t *Table) ([]TimeSlot, error) {
	r := newReader(t, timeSlotColumns...)
	slots := make([]TimeSlot, 0, t.Len())
	for i := range t.Rows {
		slots = append(slots, timeSlotFromRow(r, i))
	}
	if r.err != nil {
		return nil, fmt.Errorf("domain.TimeSlotsFromTable: %w", r.err)
	}
	return slots, nil
}

// DimTimesTable encodes the marts.dim_time dimension.
func DimTimesTable(times []DimTime) *Table {
	cols := append([]string{"time_key"}, timeSlotColumns...)
	t := NewTable(ModelDimTime, cols...)
	for _, d := range times {
		t.Append(d.TimeKey, d.Date, d.Hour, d.Year, d.Month, d.Day, d.DayOfWeek,
			d.Quarter, d.IsWeekend, d.MonthName, d.DayName, d.TimeOfDay)
	}
	return t
}

// DimTimesFromTable decodes a marts.dim_time materialization.
func DimTimesFromTable(t *Table) ([]DimTime, error) {
	r := newReader(t, append([]string{"time_key"}, timeSlotColumns...)...)
	times := make([]DimTime, 0, t.Len())
	for i := range t.Rows {
		times = append(times, DimTime{
			TimeKey:  r.intAt(i, "time_key"),
			TimeSlot: timeSlotFromRow(r, i),
		})
	}
	if r.err != nil {
		return nil, fmt.Errorf("domain.DimTimesFromTable: %w", r.err)
	}
	return times, nil
}

// --- enriched trips ---------------------------------------------------------

var enrichedColumns = []string{
	"trip_duration_seconds", "trip_duration_minutes", "start_time", "stop_time",
	"start_station_id", "end_station_id", "bike_id", "user_type", "birth_year",
	"start_station_name", "start_latitude", "start_longitude",
	"end_station_name", "end_latitude", "end_longitude",
	"gender", "age",
	"date", "year", "month", "day", "day_of_week", "quarter", "is_weekend",
	"month_name", "day_name", "time_of_day",
	"route_id",
}

// EnrichedTripsTable encodes enriched trips as the
// intermediate.int_trips_enriched table.
func EnrichedTripsTable(trips []EnrichedTrip) *Table {
	t := NewTable(ModelIntTripsEnriched, enrichedColumns...)
	for _, e := range trips {
		gender := any(string(e.Gender))
		if e.Gender == "" {
			gender = nil
		}
		t.Append(
			e.TripDurationSeconds, e.TripDurationMinutes, e.StartTime, e.StopTime,
			e.StartStationID, e.EndStationID, e.BikeID, string(e.UserType),
			cellOfIntPtr(e.BirthYear),
			cellOfStringPtr(e.StartStationName), cellOfFloatPtr(e.StartLatitude),
			cellOfFloatPtr(e.StartLongitude),
			cellOfStringPtr(e.EndStationName), cellOfFloatPtr(e.EndLatitude),
			cellOfFloatPtr(e.EndLongitude),
			gender, cellOfIntPtr(e.Age),
			e.Date, e.Year, e.Month, e.Day, e.DayOfWeek, e.Quarter, e.IsWeekend,
			e.MonthName, e.DayName, e.TimeOfDay,
			e.RouteID,
		)
	}
	return t
}

// EnrichedTripsFromTable decodes an intermediate.int_trips_enriched
// materialization.
func EnrichedTripsFromTable(t *Table) ([]EnrichedTrip, error) {
	r := newReader(t, enrichedColumns...)
	trips := make([]EnrichedTrip, 0, t.Len())
	for i := range t.Rows {
		trips = append(trips, EnrichedTrip{
			TripDurationSeconds: r.intAt(i, "trip_duration_seconds"),
			TripDurationMinutes: r.intAt(i, "trip_duration_minutes"),
			StartTime:           r.timeAt(i, "start_time"),
			StopTime:            r.timeAt(i, "stop_time"),
			StartStationID:      r.intAt(i, "start_station_id"),
			EndStationID:        r.intAt(i, "end_station_id"),
			BikeID:              r.intAt(i, "bike_id"),
			UserType:            UserType(r.stringAt(i, "user_type")),
			BirthYear:           r.intPtrAt(i, "birth_year"),
			StartStationName:    r.stringPtrAt(i, "start_station_name"),
			StartLatitude:       r.floatPtrAt(i, "start_latitude"),
			StartLongitude:      r.floatPtrAt(i, "start_longitude"),
			EndStationName:      r.stringPtrAt(i, "end_station_name"),
			EndLatitude:         r.floatPtrAt(i, "end_latitude"),
			EndLongitude:        r.floatPtrAt(i, "end_longitude"),
			Gender:              Gender(r.nullableStringAt(i, "gender")),
			Age:                 r.intPtrAt(i, "age"),
			Date:                r.timeAt(i, "date"),
			Year:                r.intAt(i, "year"),
			Month:               r.intAt(i, "month"),
			Day:                 r.intAt(i, "day"),
			DayOfWeek:           r.intAt(i, "day_of_week"),
			Quarter:             r.intAt(i, "quarter"),
			IsWeekend:           r.boolAt(i, "is_weekend"),
			MonthName:           r.stringAt(i, "month_name"),
			DayName:             r.stringAt(i, "day_name"),
			TimeOfDay:           r.stringAt(i, "time_of_day"),
			RouteID:             r.stringAt(i, "route_id"),
		})
	}
	if r.err != nil {
		return nil, fmt.Errorf("domain.EnrichedTripsFromTable: %w", r.err)
	}
	return trips, nil
}

// --- ride summaries ---------------------------------------------------------

// RideSummariesTable encodes fact rows as the marts.fact_rides_summary table.
func RideSummariesTable(facts []RideSummary) *Table {
	t := NewTable(ModelFactRides,
		"date", "start_station_id", "end_station_id", "bike_id",
		"user_type", "gender", "age", "route_id", "time_of_day",
		"day_of_week", "is_weekend", "month",
		"ride_count", "avg_trip_duration_min", "min_trip_duration_min",
		"max_trip_duration_min", "user_key", "time_key",
	)
	for _, f := range facts {
		gender := any(string(f.Gender))
		if f.Gender == "" {
			gender = nil
		}
		t.Append(
			f.Date, f.StartStationID, f.EndStationID, f.BikeID,
			string(f.UserType), gender, cellOfIntPtr(f.Age), f.RouteID, f.TimeOfDay,
			f.DayOfWeek, f.IsWeekend, f.Month,
			f.RideCount, f.AvgTripDurationMin, f.MinTripDurationMin,
			f.MaxTripDurationMin, cellOfIntPtr(f.UserKey), cellOfIntPtr(f.TimeKey),
		)
	}
	return t
}
