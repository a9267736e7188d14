package domain

// Station is one docking station as seen in the staging layer.
// The same StationID may appear with conflicting attribute tuples when the
// source data is inconsistent; the deduplicator keeps one row per distinct
// full tuple and leaves uniqueness of StationID to the validation rules.
type Station struct {
	StationID int
	Name      string
	Latitude  float64
	Longitude float64
}

// DimStation is the marts-layer station dimension: the staged station plus
// TotalTraffic, the number of enriched trips that start or end at it.
type DimStation struct {
	Station
	TotalTraffic int
}
