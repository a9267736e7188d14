package pipeline

import (
	"context"
	"fmt"

	"github.com/citybike/warehouse/internal/derive"
	"github.com/citybike/warehouse/internal/domain"
	"github.com/citybike/warehouse/internal/transform"
	"github.com/citybike/warehouse/internal/validate"
)

// Model is one materializable entity: how to build its table from upstream
// materializations and which data-quality rules run against the result.
type Model struct {
	Name     string
	Layer    string
	Upstream []string
	Rules    []validate.Rule

	// build returns the new materialization plus the number of source records
	// excluded by row-level parse failures (zero for derived models).
	build func(ctx context.Context, r *Runner) (*domain.Table, int, error)
}

// registry returns the full model graph in declaration order. Upstream lists
// drive the scheduler, so a model's relationships rules may only reference
// models it declares upstream. That is what guarantees validation never sees
// a parent that is not fully materialized.
func registry() []Model {
	return []Model{
		{
			Name:  domain.ModelStgTrips,
			Layer: domain.LayerStaging,
			build: buildStgTrips,
			Rules: []validate.Rule{
				validate.NotNull("start_station_id", validate.SeverityError),
				validate.NotNull("end_station_id", validate.SeverityError),
				validate.AcceptedValues("user_type", validate.SeverityError,
					string(domain.UserTypeSubscriber), string(domain.UserTypeCustomer)),
				validate.Predicate("non_positive_duration", validate.SeverityWarn,
					func(t *domain.Table, row int) bool {
						n, ok := domain.CellInt(t.Value(row, "trip_duration_seconds"))
						return ok && n <= 0
					}),
			},
		},
		{
			Name:  domain.ModelStgStations,
			Layer: domain.LayerStaging,
			build: buildStgStations,
			Rules: []validate.Rule{
				validate.NotNull("station_id", validate.SeverityError),
				validate.Unique(validate.SeverityError, "station_id"),
				validate.Predicate("coordinates_out_of_range", validate.SeverityWarn,
					func(t *domain.Table, row int) bool {
						lat, okLat := domain.CellFloat(t.Value(row, "latitude"))
						long, okLong := domain.CellFloat(t.Value(row, "longitude"))
						return !okLat || !okLong ||
							lat < -90 || lat > 90 || long < -180 || long > 180
					}),
			},
		},
		{
			Name:  domain.ModelStgUsers,
			Layer: domain.LayerStaging,
			build: buildStgUsers,
			Rules: []validate.Rule{
				validate.AcceptedValues("gender", validate.SeverityError,
					string(domain.GenderMale), string(domain.GenderFemale),
					string(domain.GenderUnknown), string(domain.GenderOther)),
				validate.Unique(validate.SeverityError, "user_type", "birth_year", "gender"),
			},
		},
		{
			Name:     domain.ModelIntTimeSlots,
			Layer:    domain.LayerIntermediate,
			Upstream: []string{domain.ModelStgTrips},
			build:    buildIntTimeSlots,
			Rules: []validate.Rule{
				validate.Unique(validate.SeverityError, "date", "hour"),
				validate.AcceptedValues("time_of_day", validate.SeverityError,
					derive.TimeOfDayMorning, derive.TimeOfDayAfternoon,
					derive.TimeOfDayEvening, derive.TimeOfDayNight),
			},
		},
		{
			Name:  domain.ModelIntTripsEnriched,
			Layer: domain.LayerIntermediate,
			Upstream: []string{
				domain.ModelStgTrips, domain.ModelStgStations,
				domain.ModelStgUsers, domain.ModelIntTimeSlots,
			},
			build: buildIntTripsEnriched,
			Rules: []validate.Rule{
				validate.NotNull("route_id", validate.SeverityError),
				validate.Relationships("start_station_id",
					domain.ModelStgStations, "station_id", validate.SeverityWarn),
				validate.Relationships("end_station_id",
					domain.ModelStgStations, "station_id", validate.SeverityWarn),
			},
		},
		{
			Name:     domain.ModelDimStations,
			Layer:    domain.LayerMarts,
			Upstream: []string{domain.ModelStgStations, domain.ModelIntTripsEnriched},
			build:    buildDimStations,
			Rules: []validate.Rule{
				validate.Unique(validate.SeverityError, "station_id"),
			},
		},
		{
			Name:     domain.ModelDimUsers,
			Layer:    domain.LayerMarts,
			Upstream: []string{domain.ModelStgUsers},
			build:    buildDimUsers,
			Rules: []validate.Rule{
				validate.NotNull("user_key", validate.SeverityError),
				validate.Unique(validate.SeverityError, "user_key"),
			},
		},
		{
			Name:     domain.ModelDimTime,
			Layer:    domain.LayerMarts,
			Upstream: []string{domain.ModelIntTimeSlots},
			build:    buildDimTime,
			Rules: []validate.Rule{
				validate.NotNull("time_key", validate.SeverityError),
				validate.Unique(validate.SeverityError, "time_key"),
				validate.Unique(validate.SeverityError, "date", "hour"),
			},
		},
		{
			Name:  domain.ModelFactRides,
			Layer: domain.LayerMarts,
			Upstream: []string{
				domain.ModelIntTripsEnriched, domain.ModelDimStations,
				domain.ModelDimUsers, domain.ModelDimTime,
			},
			build: buildFactRides,
			Rules: []validate.Rule{
				validate.Relationships("start_station_id",
					domain.ModelDimStations, "station_id", validate.SeverityError),
				validate.Relationships("end_station_id",
					domain.ModelDimStations, "station_id", validate.SeverityError),
				validate.Relationships("user_key",
					domain.ModelDimUsers, "user_key", validate.SeverityWarn),
				validate.Relationships("time_key",
					domain.ModelDimTime, "time_key", validate.SeverityWarn),
				validate.Predicate("empty_group", validate.SeverityError,
					func(t *domain.Table, row int) bool {
						n, ok := domain.CellInt(t.Value(row, "ride_count"))
						return !ok || n < 1
					}),
			},
		},
	}
}

// --- build functions --------------------------------------------------------

func buildStgTrips(_ context.Context, r *Runner) (*domain.Table, int, error) {
	if err := transform.RequireColumns(r.source.Columns); err != nil {
		return nil, 0, err
	}
	staged, parseErrors := transform.Normalize(r.source.Records)
	return domain.StagedTripsTable(staged), parseErrors, nil
}

func buildStgStations(_ context.Context, r *Runner) (*domain.Table, int, error) {
	if err := transform.RequireColumns(r.source.Columns); err != nil {
		return nil, 0, err
	}
	stations, parseErrors := transform.DedupeStations(r.source.Records)
	return domain.StationsTable(stations), parseErrors, nil
}

func buildStgUsers(_ context.Context, r *Runner) (*domain.Table, int, error) {
	if err := transform.RequireColumns(r.source.Columns); err != nil {
		return nil, 0, err
	}
	profiles, parseErrors := transform.BuildUserProfiles(r.source.Records, r.evaluatedAt)
	return domain.UserProfilesTable(profiles), parseErrors, nil
}

func buildIntTimeSlots(ctx context.Context, r *Runner) (*domain.Table, int, error) {
	trips, err := readStagedTrips(ctx, r)
	if err != nil {
		return nil, 0, err
	}
	return domain.TimeSlotsTable(transform.BuildTimeSlots(trips)), 0, nil
}

func buildIntTripsEnriched(ctx context.Context, r *Runner) (*domain.Table, int, error) {
	trips, err := readStagedTrips(ctx, r)
	if err != nil {
		return nil, 0, err
	}
	stationsTable, err := r.store.Read(ctx, domain.ModelStgStations)
	if err != nil {
		return nil, 0, err
	}
	stations, err := domain.StationsFromTable(stationsTable)
	if err != nil {
		return nil, 0, err
	}
	usersTable, err := r.store.Read(ctx, domain.ModelStgUsers)
	if err != nil {
		return nil, 0, err
	}
	profiles, err := domain.UserProfilesFromTable(usersTable)
	if err != nil {
		return nil, 0, err
	}
	slotsTable, err := r.store.Read(ctx, domain.ModelIntTimeSlots)
	if err != nil {
		return nil, 0, err
	}
	slots, err := domain.TimeSlotsFromTable(slotsTable)
	if err != nil {
		return nil, 0, err
	}
	enriched := transform.Enrich(trips, stations, profiles, slots)
	return domain.EnrichedTripsTable(enriched), 0, nil
}

func buildDimStations(ctx context.Context, r *Runner) (*domain.Table, int, error) {
	stationsTable, err := r.store.Read(ctx, domain.ModelStgStations)
	if err != nil {
		return nil, 0, err
	}
	stations, err := domain.StationsFromTable(stationsTable)
	if err != nil {
		return nil, 0, err
	}
	enriched, err := readEnrichedTrips(ctx, r)
	if err != nil {
		return nil, 0, err
	}
	return domain.DimStationsTable(transform.BuildDimStations(stations, enriched)), 0, nil
}

func buildDimUsers(ctx context.Context, r *Runner) (*domain.Table, int, error) {
	usersTable, err := r.store.Read(ctx, domain.ModelStgUsers)
	if err != nil {
		return nil, 0, err
	}
	profiles, err := domain.UserProfilesFromTable(usersTable)
	if err != nil {
		return nil, 0, err
	}
	return domain.DimUsersTable(transform.AssignUserKeys(profiles)), 0, nil
}

func buildDimTime(ctx context.Context, r *Runner) (*domain.Table, int, error) {
	slotsTable, err := r.store.Read(ctx, domain.ModelIntTimeSlots)
	if err != nil {
		return nil, 0, err
	}
	slots, err := domain.TimeSlotsFromTable(slotsTable)
	if err != nil {
		return nil, 0, err
	}
	return domain.DimTimesTable(transform.AssignTimeKeys(slots)), 0, nil
}

func buildFactRides(ctx context.Context, r *Runner) (*domain.Table, int, error) {
	enriched, err := readEnrichedTrips(ctx, r)
	if err != nil {
		return nil, 0, err
	}
	usersTable, err := r.store.Read(ctx, domain.ModelDimUsers)
	if err != nil {
		return nil, 0, err
	}
	users, err := domain.DimUsersFromTable(usersTable)
	if err != nil {
		return nil, 0, err
	}
	timesTable, err := r.store.Read(ctx, domain.ModelDimTime)
	if err != nil {
		return nil, 0, err
	}
	times, err := domain.DimTimesFromTable(timesTable)
	if err != nil {
		return nil, 0, err
	}
	facts := transform.Aggregate(enriched, users, times)
	return domain.RideSummariesTable(facts), 0, nil
}

func readStagedTrips(ctx context.Context, r *Runner) ([]domain.StagedTrip, error) {
	t, err := r.store.Read(ctx, domain.ModelStgTrips)
	if err != nil {
		return nil, err
	}
	return domain.StagedTripsFromTable(t)
}

func readEnrichedTrips(ctx context.Context, r *Runner) ([]domain.EnrichedTrip, error) {
	t, err := r.store.Read(ctx, domain.ModelIntTripsEnriched)
	if err != nil {
		return nil, err
	}
	return domain.EnrichedTripsFromTable(t)
}

// modelByName looks a model up in the registry.
func modelByName(models []Model, name string) (*Model, error) {
	for i := range models {
		if models[i].Name == name {
			return &models[i], nil
		}
	}
	return nil, fmt.Errorf("unknown model %q: %w", name, domain.ErrNotFound)
}
