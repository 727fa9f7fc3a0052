package report

import "github.com/baechuer/report-service/internal/domain"

// MergeDistinct returns the set union of left and right under key.
// Rows keep their first-seen order: left rows first, then right rows
// not already present. Duplicates inside either input are dropped too.
func MergeDistinct[T any, K comparable](left, right []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(left)+len(right))
	out := make([]T, 0, len(left)+len(right))

	for _, src := range [][]T{left, right} {
		for _, row := range src {
			k := key(row)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, row)
		}
	}
	return out
}

// nullable makes a *T comparable by value. Two NULLs are equal and a NULL
// never equals a value.
type nullable[T comparable] struct {
	v     T
	valid bool
}

func opt[T comparable](p *T) nullable[T] {
	if p == nil {
		return nullable[T]{}
	}
	return nullable[T]{v: *p, valid: true}
}

type profileKey struct {
	userID    nullable[int64]
	fullName  nullable[string]
	email     nullable[string]
	profileID nullable[int64]
}

// userProfileKey is the identity of a profiles-full row: the whole tuple.
func userProfileKey(r domain.UserProfileRow) profileKey {
	return profileKey{
		userID:    opt(r.UserID),
		fullName:  opt(r.FullName),
		email:     opt(r.Email),
		profileID: opt(r.ProfileID),
	}
}
