package domain

// Gender is the standardized rider gender, mapped from the raw numeric code
// at staging time (0 → Unknown, 1 → Male, 2 → Female, anything else → Other).
type Gender string

const (
	GenderUnknown Gender = "Unknown"
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderOther   Gender = "Other"
)

// GenderFromCode maps the raw numeric gender code to its standardized value.
func GenderFromCode(code int) Gender {
	switch code {
	case 0:
		return GenderUnknown
	case 1:
		return GenderMale
	case 2:
		return GenderFemale
	default:
		return GenderOther
	}
}

// UserProfile is one distinct (user_type, birth_year, gender) tuple observed
// across all trips, with the age fields derived at a fixed evaluation time.
// There is no dedicated user entity in the source; profiles are carved out of
// the trip records themselves.
type UserProfile struct {
	UserType  UserType
	BirthYear *int
	Gender    Gender
	Age       *int // nil when BirthYear is nil
	AgeGroup  string
}

// DimUser is the marts-layer user dimension: a profile plus its surrogate key.
// Keys are dense, 1-based, and assigned in (user_type, birth_year, gender)
// ascending order so re-runs over the same input reproduce the same keys.
type DimUser struct {
	UserKey int
	UserProfile
}
