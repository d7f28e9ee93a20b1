package generate

import (
	"fmt"
	"time"

	gberrors "github.com/graphbench/graphbench/internal/errors"
	"github.com/graphbench/graphbench/internal/sampling"
	"github.com/graphbench/graphbench/pkg/types"
)

// Birthday bounds, both inclusive.
var (
	birthdayStart = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	birthdayEnd   = time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC)
)

// DefaultReferenceDate is the "today" ages are computed against.
var DefaultReferenceDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// PersonOptions controls person generation.
type PersonOptions struct {
	Count     int
	Seed      uint64
	Reference time.Time
}

// GeneratePersons synthesizes opts.Count profiles: Count/2 male and the rest
// female. Female profiles are drawn first and stacked above the male ones,
// the stack is shuffled, and ids 1..Count are assigned in shuffled order.
func GeneratePersons(opts PersonOptions) ([]types.Person, error) {
	if opts.Count < 0 {
		return nil, gberrors.NewValidationError(gberrors.CodeInvalidParam,
			fmt.Sprintf("person count must be non-negative, got %d", opts.Count))
	}
	ref := opts.Reference
	if ref.IsZero() {
		ref = DefaultReferenceDate
	}

	s := sampling.New(opts.Seed)
	numMale := opts.Count / 2
	numFemale := opts.Count - numMale

	persons, err := generateProfiles(s, numFemale, types.GenderFemale, ref)
	if err != nil {
		return nil, err
	}
	males, err := generateProfiles(s, numMale, types.GenderMale, ref)
	if err != nil {
		return nil, err
	}
	persons = append(persons, males...)

	s.Shuffle(len(persons), func(i, j int) { persons[i], persons[j] = persons[j], persons[i] })
	for i := range persons {
		persons[i].ID = int64(i + 1)
	}
	return persons, nil
}

func generateProfiles(s *sampling.Sampler, n int, gender string, ref time.Time) ([]types.Person, error) {
	var first []string
	switch gender {
	case types.GenderFemale:
		first = femaleFirstNames
	case types.GenderMale:
		first = maleFirstNames
	default:
		return nil, gberrors.NewValidationError(gberrors.CodeInvalidGender,
			fmt.Sprintf("gender must be %q or %q, got %q", types.GenderMale, types.GenderFemale, gender))
	}

	span := int(birthdayEnd.Sub(birthdayStart).Hours() / 24)
	out := make([]types.Person, n)
	for i := range out {
		name := first[s.IntRange(0, len(first))] + " " + lastNames[s.IntRange(0, len(lastNames))]
		birthday := birthdayStart.AddDate(0, 0, s.DaysBetween(span))
		out[i] = types.Person{
			Name:      name,
			Gender:    gender,
			Birthday:  birthday,
			Age:       AgeAt(birthday, ref),
			IsMarried: s.Bool(),
		}
	}
	return out, nil
}

// AgeAt returns whole 365-day years between birthday and ref.
func AgeAt(birthday, ref time.Time) int64 {
	days := int64(ref.Sub(birthday).Hours()) / 24
	return days / 365
}
