package reconcile

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kapu/hololive-member-sync/internal/domain"
)

// separatorRun matches two or more label separators (half- or full-width
// colon) with optional whitespace between and after them.
var separatorRun = regexp.MustCompile(`[:：](?:\s*[:：])+\s*`)

// LabelNormalizer rewrites Japanese label prefixes inside hashtag values into
// their Korean equivalents.
type LabelNormalizer struct {
	rules  []domain.LabelRule
	labels map[string]struct{}
}

// NewLabelNormalizer orders rules by pattern length (longest first) so that a
// compound label such as "ファンアートタグ" is rewritten before its root
// "ファンアート" can fire on it. Rules of equal length keep their given order.
// Empty patterns are dropped.
func NewLabelNormalizer(rules []domain.LabelRule, hashtagLabels []string) *LabelNormalizer {
	ordered := make([]domain.LabelRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Pattern == "" {
			continue
		}
		ordered = append(ordered, rule)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return utf8.RuneCountInString(ordered[i].Pattern) > utf8.RuneCountInString(ordered[j].Pattern)
	})

	labels := make(map[string]struct{}, len(hashtagLabels))
	for _, label := range hashtagLabels {
		labels[label] = struct{}{}
	}

	return &LabelNormalizer{rules: ordered, labels: labels}
}

// Rules returns the rules in application order.
func (n *LabelNormalizer) Rules() []domain.LabelRule {
	return append([]domain.LabelRule(nil), n.rules...)
}

// Normalize applies every rule as a plain substring replacement, each on the
// output of the previous one, then collapses doubled separators into ": ".
// Tokens are matched verbatim; a value without any known token is returned as is.
func (n *LabelNormalizer) Normalize(value string) string {
	result := value
	replaced := false
	for _, rule := range n.rules {
		if !strings.Contains(result, rule.Pattern) {
			continue
		}
		result = strings.ReplaceAll(result, rule.Pattern, rule.Replacement)
		replaced = true
	}
	if !replaced {
		return value
	}
	return separatorRun.ReplaceAllString(result, ": ")
}

// IsHashtagLabel reports whether values under label are subject to normalization.
func (n *LabelNormalizer) IsHashtagLabel(label string) bool {
	_, ok := n.labels[label]
	return ok
}

// NormalizeProfile rewrites the hashtag values of profile in place and
// returns the number of entries changed and the number of malformed (nil)
// entries skipped.
func (n *LabelNormalizer) NormalizeProfile(profile *domain.HashtagProfile) (changed, malformed int) {
	if profile == nil {
		return 0, 0
	}
	for _, entry := range profile.Entries {
		if entry == nil {
			malformed++
			continue
		}
		if !n.IsHashtagLabel(entry.Label) {
			continue
		}
		if normalized := n.Normalize(entry.Value); normalized != entry.Value {
			entry.Value = normalized
			changed++
		}
	}
	return changed, malformed
}
