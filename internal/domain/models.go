package domain

// Model names, qualified by layer. These are the identifiers the orchestrator
// materializes and validates, and the logical table names the store persists.
const (
	ModelStgTrips         = "staging.stg_trips"
	ModelStgStations      = "staging.stg_stations"
	ModelStgUsers         = "staging.stg_users"
	ModelIntTimeSlots     = "intermediate.int_time_slots"
	ModelIntTripsEnriched = "intermediate.int_trips_enriched"
	ModelDimStations      = "marts.dim_stations"
	ModelDimUsers         = "marts.dim_users"
	ModelDimTime          = "marts.dim_time"
	ModelFactRides        = "marts.fact_rides_summary"
)

// Layer names, in execution order.
const (
	LayerStaging      = "staging"
	LayerIntermediate = "intermediate"
	LayerMarts        = "marts"
)
