package reconcile

import (
	"strings"

	"github.com/kapu/hololive-member-sync/internal/domain"
)

// Matches reports whether x and y refer to the same entity under the
// containment heuristic: one string is a substring of the other. No case,
// whitespace or script folding is applied and empty strings never match.
// Short names can match unrelated longer ones; callers are expected to deal
// with that (see Candidates).
func Matches(x, y string) bool {
	if x == "" || y == "" {
		return false
	}
	return strings.Contains(y, x) || strings.Contains(x, y)
}

// MatchesAny reports whether candidate matches the member's primary name for
// lang or any alias recorded for lang.
func MatchesAny(candidate, lang string, member *domain.Member) bool {
	if member == nil {
		return false
	}
	if Matches(candidate, member.PrimaryName(lang)) {
		return true
	}
	for _, alias := range member.AliasList(lang) {
		if Matches(candidate, alias) {
			return true
		}
	}
	return false
}

// Candidates returns every member that MatchesAny accepts, in input order.
func Candidates(candidate, lang string, members []*domain.Member) []*domain.Member {
	var matched []*domain.Member
	for _, member := range members {
		if MatchesAny(candidate, lang, member) {
			matched = append(matched, member)
		}
	}
	return matched
}
