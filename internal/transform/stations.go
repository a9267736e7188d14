package transform

import (
	"sort"

	"github.com/citybike/warehouse/internal/domain"
)

// DedupeStations builds the station set from the two identity-bearing roles
// of each raw trip: both the start and the end columns are projected into the
// common (id, name, lat, long) shape, the projections are unioned, and one
// representative survives per distinct full tuple.
//
// The same id appearing with two different attribute tuples yields two rows.
// That is intentional: the deduplicator never picks a winner between
// conflicting variants; the unique(station_id) rule on stg_stations is the
// single source of truth about whether the id namespace is clean.
//
// Records whose role columns fail to parse are skipped and counted.
func DedupeStations(raws []domain.RawTrip) ([]domain.Station, int) {
	seen := make(map[domain.Station]bool)
	var stations []domain.Station
	var parseErrors int

	add := func(s domain.Station, ok bool) {
		if !ok {
			parseErrors++
			return
		}
		if !seen[s] {
			seen[s] = true
			stations = append(stations, s)
		}
	}

	for _, raw := range raws {
		add(projectStation(raw, domain.ColStartStationID, domain.ColStartName,
			domain.ColStartLatitude, domain.ColStartLongitude))
		add(projectStation(raw, domain.ColEndStationID, domain.ColEndName,
			domain.ColEndLatitude, domain.ColEndLongitude))
	}

	// Deterministic output order: by id, then by the remaining tuple fields
	// so conflicting variants of one id still sort stably.
	sort.Slice(stations, func(i, j int) bool {
		a, b := stations[i], stations[j]
		if a.StationID != b.StationID {
			return a.StationID < b.StationID
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Latitude != b.Latitude {
			return a.Latitude < b.Latitude
		}
		return a.Longitude < b.Longitude
	})
	return stations, parseErrors
}

// projectStation extracts one station role from a raw record.
func projectStation(raw domain.RawTrip, idCol, nameCol, latCol, longCol string) (domain.Station, bool) {
	id, ok := parseIntField(raw[idCol])
	if !ok {
		return domain.Station{}, false
	}
	lat, ok := parseFloatField(raw[latCol])
	if !ok {
		return domain.Station{}, false
	}
	long, ok := parseFloatField(raw[longCol])
	if !ok {
		return domain.Station{}, false
	}
	return domain.Station{
		StationID: id,
		Name:      raw[nameCol],
		Latitude:  lat,
		Longitude: long,
	}, true
}

// BuildDimStations widens the staged station set with total traffic: the
// number of enriched trips that start or end at the station. A round trip
// that starts and ends at the same station counts once for that station.
func BuildDimStations(stations []domain.Station, trips []domain.EnrichedTrip) []domain.DimStation {
	traffic := make(map[int]int)
	for _, t := range trips {
		traffic[t.StartStationID]++
		if t.EndStationID != t.StartStationID {
			traffic[t.EndStationID]++
		}
	}

	dims := make([]domain.DimStation, 0, len(stations))
	for _, s := range stations {
		dims = append(dims, domain.DimStation{
			Station:      s,
			TotalTraffic: traffic[s.StationID],
		})
	}
	return dims
}
