package transform

import (
	"time"

	"github.com/citybike/warehouse/internal/domain"
	"github.com/citybike/warehouse/internal/derive"
)

// profileKey identifies one distinct user profile. BirthYear is flattened to
// (value, present) so nil birth years can participate in map keys.
type profileKey struct {
	userType  domain.UserType
	birthYear int
	hasYear   bool
	gender    domain.Gender
}

// BuildUserProfiles carves the user profile set out of the raw trip records:
// one profile per distinct (user_type, birth_year, gender) tuple, with the
// gender code mapped to its standardized value and the age fields derived at
// evaluatedAt.
//
// There is no dedicated user entity in the source, so this is the only place
// profiles come from. Records whose gender code fails to parse are skipped
// and counted; an empty birth year is a null, not an error.
func BuildUserProfiles(raws []domain.RawTrip, evaluatedAt time.Time) ([]domain.UserProfile, int) {
	seen := make(map[profileKey]bool)
	var profiles []domain.UserProfile
	var parseErrors int

	for _, raw := range raws {
		code, ok := parseIntField(raw[domain.ColGender])
		if !ok {
			parseErrors++
			continue
		}
		birthYear, ok := parseOptionalIntField(raw[domain.ColBirthYear])
		if !ok {
			parseErrors++
			continue
		}

		key := profileKey{
			userType: domain.UserType(raw[domain.ColUserType]),
			gender:   domain.GenderFromCode(code),
		}
		if birthYear != nil {
			key.birthYear = *birthYear
			key.hasYear = true
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		age := derive.Age(birthYear, evaluatedAt)
		profiles = append(profiles, domain.UserProfile{
			UserType:  key.userType,
			BirthYear: birthYear,
			Gender:    key.gender,
			Age:       age,
			AgeGroup:  derive.AgeGroup(age),
		})
	}

	sortProfiles(profiles)
	return profiles, parseErrors
}
