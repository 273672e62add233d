package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kapu/hololive-member-sync/internal/domain"
)

func TestKoreanNameResolverChain(t *testing.T) {
	resolver := NewKoreanNameResolver(
		map[string]string{"Houshou Marine": "호쇼 마린"},
		map[string]string{"AZKi": "아즈키", "Usada Pekora": "우사다 페코라"},
	)

	tests := []struct {
		name       string
		member     *domain.Member
		want       string
		wantSource NameSource
	}{
		{
			name:       "override replaces existing value",
			member:     &domain.Member{Name: "Houshou Marine", NameKo: "마린 선장"},
			want:       "호쇼 마린",
			wantSource: SourceOverride,
		},
		{
			name:       "existing value is kept",
			member:     &domain.Member{Name: "AZKi", NameKo: "아즈키짱", Aliases: domain.Aliases{domain.LangKorean: {"즈키"}}},
			want:       "아즈키짱",
			wantSource: SourceExisting,
		},
		{
			name:       "first korean alias",
			member:     &domain.Member{Name: "Usada Pekora", Aliases: domain.Aliases{domain.LangKorean: {"페코라", "토끼"}}},
			want:       "페코라",
			wantSource: SourceKoreanAlias,
		},
		{
			name:       "romanization table",
			member:     &domain.Member{Name: "AZKi"},
			want:       "아즈키",
			wantSource: SourceRomanization,
		},
		{
			name:       "canonical fallback",
			member:     &domain.Member{Name: "Gigi Murin", Aliases: domain.Aliases{domain.LangKorean: {}}},
			want:       "Gigi Murin",
			wantSource: SourceCanonical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, source := resolver.Resolve(tt.member)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestKoreanNameResolverNeverEmpty(t *testing.T) {
	resolver := NewKoreanNameResolver(nil, map[string]string{"Empty Entry": ""})
	members := []*domain.Member{
		{Name: "Empty Entry"},
		{Name: "Nobody", Aliases: domain.Aliases{domain.LangKorean: {""}}},
		{Name: "x"},
	}
	for _, m := range members {
		got, _ := resolver.Resolve(m)
		assert.NotEmpty(t, got, m.Name)
	}
}

func TestKoreanNameResolverCopiesTables(t *testing.T) {
	overrides := map[string]string{"AZKi": "아즈키"}
	resolver := NewKoreanNameResolver(overrides, nil)
	overrides["AZKi"] = "changed"

	got, _ := resolver.Resolve(&domain.Member{Name: "AZKi"})
	assert.Equal(t, "아즈키", got)
}
