package validate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citybike/warehouse/internal/domain"
	"github.com/citybike/warehouse/internal/validate"
)

// ---- helpers ----

// parentReaderMock satisfies validate.ParentReader with a function field,
// so each test controls exactly what the parent read returns.
type parentReaderMock struct {
	readFn func(ctx context.Context, model string) (*domain.Table, error)
}

func (m *parentReaderMock) Read(ctx context.Context, model string) (*domain.Table, error) {
	return m.readFn(ctx, model)
}

func checkRule(t *testing.T, rule validate.Rule, table *domain.Table, parents validate.ParentReader) validate.Outcome {
	t.Helper()
	result, err := validate.Run(context.Background(), table, []validate.Rule{rule}, parents)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	return result.Outcomes[0]
}

func TestNotNull(t *testing.T) {
	table := domain.NewTable("staging.stg_trips", "station_id", "name")
	table.Append(1, "Grove St PATH")
	table.Append(nil, "Exchange Place")
	table.Append(nil, nil)

	outcome := checkRule(t, validate.NotNull("station_id", validate.SeverityError), table, nil)

	assert.Equal(t, "not_null(station_id)", outcome.Rule)
	assert.Equal(t, validate.SeverityError, outcome.Severity)
	assert.Equal(t, 2, outcome.Violations)
	assert.False(t, outcome.Passed)
}

func TestNotNull_passes(t *testing.T) {
	table := domain.NewTable("staging.stg_trips", "station_id")
	table.Append(1)

	outcome := checkRule(t, validate.NotNull("station_id", validate.SeverityError), table, nil)

	assert.True(t, outcome.Passed)
	assert.Zero(t, outcome.Violations)
}

func TestUnique(t *testing.T) {
	table := domain.NewTable("staging.stg_stations", "station_id")
	table.Append(1)
	table.Append(2)
	table.Append(1)
	table.Append(1)

	outcome := checkRule(t, validate.Unique(validate.SeverityError, "station_id"), table, nil)

	assert.Equal(t, "unique(station_id)", outcome.Rule)
	// All three rows of the duplicated value count as violations.
	assert.Equal(t, 3, outcome.Violations)
	assert.False(t, outcome.Passed)
}

func TestUnique_composite(t *testing.T) {
	table := domain.NewTable("intermediate.int_time_slots", "date", "hour")
	table.Append("2023-06-10", 8)
	table.Append("2023-06-10", 9)
	table.Append("2023-06-11", 8)

	outcome := checkRule(t, validate.Unique(validate.SeverityError, "date", "hour"), table, nil)

	assert.Equal(t, "unique(date, hour)", outcome.Rule)
	assert.True(t, outcome.Passed)
}

// TestUnique_nullsParticipate verifies two rows that are both null in a key
// column and equal elsewhere count as duplicates.
func TestUnique_nullsParticipate(t *testing.T) {
	table := domain.NewTable("staging.stg_users", "user_type", "birth_year")
	table.Append("Customer", nil)
	table.Append("Customer", nil)
	table.Append("Subscriber", nil)

	outcome := checkRule(t, validate.Unique(validate.SeverityError, "user_type", "birth_year"), table, nil)

	assert.Equal(t, 2, outcome.Violations)
}

// TestUnique_crossTypeIntegers verifies an int and an int64 of the same value
// collide, as they do after a store round-trip.
func TestUnique_crossTypeIntegers(t *testing.T) {
	table := domain.NewTable("marts.dim_users", "user_key")
	table.Append(1)
	table.Append(int64(1))

	outcome := checkRule(t, validate.Unique(validate.SeverityError, "user_key"), table, nil)

	assert.Equal(t, 2, outcome.Violations)
}

func TestAcceptedValues(t *testing.T) {
	table := domain.NewTable("staging.stg_trips", "user_type")
	table.Append("Subscriber")
	table.Append("Customer")
	table.Append("Daily Pass")
	table.Append(nil) // nulls are not_null's business, not this rule's

	outcome := checkRule(t,
		validate.AcceptedValues("user_type", validate.SeverityError, "Subscriber", "Customer"),
		table, nil)

	assert.Equal(t, "accepted_values(user_type)", outcome.Rule)
	assert.Equal(t, 1, outcome.Violations)
	assert.False(t, outcome.Passed)
}

func TestRelationships(t *testing.T) {
	child := domain.NewTable("intermediate.int_trips_enriched", "start_station_id")
	child.Append(1)
	child.Append(2)
	child.Append(99)
	child.Append(nil) // nulls pass

	parent := domain.NewTable("staging.stg_stations", "station_id")
	parent.Append(1)
	parent.Append(2)

	parents := &parentReaderMock{
		readFn: func(_ context.Context, model string) (*domain.Table, error) {
			require.Equal(t, "staging.stg_stations", model)
			return parent, nil
		},
	}

	rule := validate.Relationships("start_station_id", "staging.stg_stations", "station_id", validate.SeverityWarn)
	outcome := checkRule(t, rule, child, parents)

	assert.Equal(t, "relationships(start_station_id -> staging.stg_stations.station_id)", outcome.Rule)
	assert.Equal(t, validate.SeverityWarn, outcome.Severity)
	assert.Equal(t, 1, outcome.Violations)
}

// TestRelationships_unreadableParent verifies an unreadable parent is an
// evaluation error, not a data failure.
func TestRelationships_unreadableParent(t *testing.T) {
	child := domain.NewTable("marts.fact_rides_summary", "user_key")
	child.Append(1)

	parents := &parentReaderMock{
		readFn: func(_ context.Context, _ string) (*domain.Table, error) {
			return nil, domain.ErrNotMaterialized
		},
	}

	rule := validate.Relationships("user_key", "marts.dim_users", "user_key", validate.SeverityError)
	_, err := validate.Run(context.Background(), child, []validate.Rule{rule}, parents)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotMaterialized)
}

func TestPredicate(t *testing.T) {
	table := domain.NewTable("staging.stg_trips", "trip_duration")
	table.Append(600)
	table.Append(0)
	table.Append(-30)

	rule := validate.Predicate("non_positive_duration", validate.SeverityWarn,
		func(t *domain.Table, row int) bool {
			n, ok := domain.CellInt(t.Value(row, "trip_duration"))
			return ok && n <= 0
		})
	outcome := checkRule(t, rule, table, nil)

	assert.Equal(t, "non_positive_duration", outcome.Rule)
	assert.Equal(t, 2, outcome.Violations)
}
