package directory

import (
	"sort"
	"strings"
)

// Matches reports whether the user's name or email contains term,
// ignoring case. The empty term matches every user.
func Matches(u User, term string) bool {
	if term == "" {
		return true
	}
	t := strings.ToLower(term)
	return strings.Contains(strings.ToLower(u.Name), t) ||
		strings.Contains(strings.ToLower(u.Email), t)
}

// ComputeDisplayedSet filters users by term and orders the result by col and
// dir using the ordinal comparison. users is never modified.
func ComputeDisplayedSet(users []User, term string, col SortColumn, dir SortDirection) []User {
	return ComputeDisplayedSetWith(users, term, col, dir, OrdinalCompare)
}

// ComputeDisplayedSetWith is ComputeDisplayedSet with a custom key comparison.
// Equal keys keep their relative order in both directions.
func ComputeDisplayedSetWith(users []User, term string, col SortColumn, dir SortDirection, cmp CompareFunc) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if Matches(u, term) {
			out = append(out, u)
		}
	}

	if col == SortNone {
		return out
	}
	if cmp == nil {
		cmp = OrdinalCompare
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(col.key(out[i]), col.key(out[j]))
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}
