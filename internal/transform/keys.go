package transform

import (
	"sort"

	"github.com/citybike/warehouse/internal/domain"
)

// Surrogate key assignment. Keys are dense, 1-based integers assigned in a
// deterministic sort order so that re-running the pipeline over identical
// input reproduces every key. Ties in the sort key keep their input order
// (sort.SliceStable); since the profile and slot builders emit at most one
// row per identity tuple, ties only occur on genuinely identical identities.

// AssignUserKeys orders profiles by (user_type, birth_year, gender) ascending
// and assigns user_key 1..n. A nil birth year sorts before any present year.
func AssignUserKeys(profiles []domain.UserProfile) []domain.DimUser {
	ordered := make([]domain.UserProfile, len(profiles))
	copy(ordered, profiles)
	sortProfiles(ordered)

	users := make([]domain.DimUser, len(ordered))
	for i, p := range ordered {
		users[i] = domain.DimUser{UserKey: i + 1, UserProfile: p}
	}
	return users
}

// AssignTimeKeys orders slots by (date, hour) ascending and assigns
// time_key 1..n.
func AssignTimeKeys(slots []domain.TimeSlot) []domain.DimTime {
	ordered := make([]domain.TimeSlot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].Hour < ordered[j].Hour
	})

	times := make([]domain.DimTime, len(ordered))
	for i, s := range ordered {
		times[i] = domain.DimTime{TimeKey: i + 1, TimeSlot: s}
	}
	return times
}

// sortProfiles orders profiles by (user_type, birth_year, gender) ascending,
// nil birth year first. This is both the surrogate key order and the output
// order of the profile builder, so stg_users and dim_users line up row for row.
func sortProfiles(profiles []domain.UserProfile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i], profiles[j]
		if a.UserType != b.UserType {
			return a.UserType < b.UserType
		}
		ay, by := birthYearRank(a.BirthYear), birthYearRank(b.BirthYear)
		if ay != by {
			return ay < by
		}
		return a.Gender < b.Gender
	})
}

// birthYearRank flattens a nullable birth year into a sortable int with nil
// ranked below every real year.
func birthYearRank(y *int) int {
	if y == nil {
		return -1 << 31
	}
	return *y
}
