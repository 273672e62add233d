package reconcile

import (
	"github.com/kapu/hololive-member-sync/internal/domain"
)

// NameSource tells which branch of the fallback chain produced a Korean name.
type NameSource string

const (
	SourceOverride     NameSource = "override"
	SourceExisting     NameSource = "existing"
	SourceKoreanAlias  NameSource = "korean_alias"
	SourceRomanization NameSource = "romanization"
	SourceCanonical    NameSource = "canonical"
)

// KoreanNameResolver decides the nameKo value of a member.
type KoreanNameResolver struct {
	overrides    map[string]string
	romanization map[string]string
}

// NewKoreanNameResolver copies both tables; nil tables are treated as empty.
func NewKoreanNameResolver(overrides, romanization map[string]string) *KoreanNameResolver {
	return &KoreanNameResolver{
		overrides:    copyTable(overrides),
		romanization: copyTable(romanization),
	}
}

// Resolve walks the chain override → existing nameKo → first Korean alias →
// romanization table → canonical name. Only an override may replace a
// non-empty nameKo. The result is empty only when the member itself has no
// canonical name.
func (r *KoreanNameResolver) Resolve(member *domain.Member) (string, NameSource) {
	if ko := r.overrides[member.Name]; ko != "" {
		return ko, SourceOverride
	}
	if member.NameKo != "" {
		return member.NameKo, SourceExisting
	}
	for _, alias := range member.AliasList(domain.LangKorean) {
		if alias != "" {
			return alias, SourceKoreanAlias
		}
	}
	if ko := r.romanization[member.Name]; ko != "" {
		return ko, SourceRomanization
	}
	return member.Name, SourceCanonical
}

func copyTable(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
