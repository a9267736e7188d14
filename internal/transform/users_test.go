package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citybike/warehouse/internal/domain"
	"github.com/citybike/warehouse/internal/transform"
)

func TestBuildUserProfiles(t *testing.T) {
	raws := []domain.RawTrip{
		rawRecord(nil), // Subscriber / 1990 / 1
		rawRecord(nil), // duplicate tuple
		rawRecord(map[string]string{domain.ColGender: "2"}),
		rawRecord(map[string]string{
			domain.ColUserType:  "Customer",
			domain.ColBirthYear: "",
			domain.ColGender:    "0",
		}),
	}

	profiles, parseErrors := transform.BuildUserProfiles(raws, evalDate)

	assert.Zero(t, parseErrors)
	require.Len(t, profiles, 3)

	// Output is in surrogate key order: Customer before Subscriber, then
	// birth year (nil first), then gender.
	assert.Equal(t, domain.UserTypeCustomer, profiles[0].UserType)
	assert.Nil(t, profiles[0].BirthYear)
	assert.Equal(t, domain.GenderUnknown, profiles[0].Gender)
	assert.Nil(t, profiles[0].Age)
	assert.Equal(t, "Unknown", profiles[0].AgeGroup)

	assert.Equal(t, domain.UserTypeSubscriber, profiles[1].UserType)
	assert.Equal(t, domain.GenderFemale, profiles[1].Gender)
	assert.Equal(t, domain.GenderMale, profiles[2].Gender)

	require.NotNil(t, profiles[1].Age)
	assert.Equal(t, 33, *profiles[1].Age)
	assert.Equal(t, "25-34", profiles[1].AgeGroup)
}

// TestBuildUserProfiles_genderCodes verifies the full code mapping, including
// out-of-range codes folding to Other.
func TestBuildUserProfiles_genderCodes(t *testing.T) {
	tests := []struct {
		code string
		want domain.Gender
	}{
		{"0", domain.GenderUnknown},
		{"1", domain.GenderMale},
		{"2", domain.GenderFemale},
		{"3", domain.GenderOther},
		{"7", domain.GenderOther},
	}
	for _, tc := range tests {
		profiles, parseErrors := transform.BuildUserProfiles([]domain.RawTrip{
			rawRecord(map[string]string{domain.ColGender: tc.code}),
		}, evalDate)

		assert.Zero(t, parseErrors)
		require.Len(t, profiles, 1, "code %s", tc.code)
		assert.Equal(t, tc.want, profiles[0].Gender, "code %s", tc.code)
	}
}

// TestBuildUserProfiles_parseErrors verifies records with an unparsable
// gender or birth year are skipped and counted.
func TestBuildUserProfiles_parseErrors(t *testing.T) {
	raws := []domain.RawTrip{
		rawRecord(map[string]string{domain.ColGender: "male"}),
		rawRecord(map[string]string{domain.ColBirthYear: "n/a"}),
		rawRecord(nil),
	}

	profiles, parseErrors := transform.BuildUserProfiles(raws, evalDate)

	assert.Equal(t, 2, parseErrors)
	assert.Len(t, profiles, 1)
}
