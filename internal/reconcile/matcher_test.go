package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kapu/hololive-member-sync/internal/domain"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name string
		x, y string
		want bool
	}{
		{name: "identical", x: "兎田ぺこら", y: "兎田ぺこら", want: true},
		{name: "x inside y", x: "ぺこら", y: "兎田ぺこら", want: true},
		{name: "y inside x", x: "兎田ぺこら", y: "ぺこら", want: true},
		{name: "disjoint", x: "さくらみこ", y: "兎田ぺこら", want: false},
		{name: "empty x", x: "", y: "兎田ぺこら", want: false},
		{name: "empty y", x: "ぺこら", y: "", want: false},
		{name: "both empty", x: "", y: "", want: false},
		{name: "no case folding", x: "azki", y: "AZKi", want: false},
		{name: "no whitespace folding", x: "Mori Calliope", y: "MoriCalliope", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.x, tt.y))
			assert.Equal(t, Matches(tt.x, tt.y), Matches(tt.y, tt.x), "match must be symmetric")
		})
	}
}

func TestMatchesSymmetricOverSamples(t *testing.T) {
	samples := []string{"", "a", "ab", "b", "兎田ぺこら", "ぺこら", "ぺこ", "ホロライブ", "AZKi", "AZ"}
	for _, a := range samples {
		for _, b := range samples {
			assert.Equal(t, Matches(a, b), Matches(b, a), "Matches(%q, %q)", a, b)
		}
	}
}

func TestMatchesAny(t *testing.T) {
	member := &domain.Member{
		Name:   "Usada Pekora",
		NameJa: "兎田ぺこら",
		Aliases: domain.Aliases{
			domain.LangJapanese: {"ぺこーら"},
			domain.LangKorean:   {"페코라"},
		},
	}

	assert.True(t, MatchesAny("ぺこら", domain.LangJapanese, member), "substring of nameJa")
	assert.True(t, MatchesAny("ぺこーらちゃん", domain.LangJapanese, member), "contains a ja alias")
	assert.False(t, MatchesAny("페코라", domain.LangJapanese, member), "korean alias is not consulted for ja")
	assert.True(t, MatchesAny("페코", domain.LangKorean, member))
	assert.False(t, MatchesAny("ぺこら", domain.LangJapanese, nil))

	noJa := &domain.Member{Name: "Gigi Murin"}
	assert.False(t, MatchesAny("ぺこら", domain.LangJapanese, noJa), "empty nameJa never matches")
}

func TestCandidatesKeepsOrder(t *testing.T) {
	members := []*domain.Member{
		{Name: "A", NameJa: "星街すいせい"},
		{Name: "B", NameJa: "さくらみこ"},
		{Name: "C", NameJa: "すいせい"},
	}

	got := Candidates("すいせい", domain.LangJapanese, members)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "A", got[0].Name)
		assert.Equal(t, "C", got[1].Name)
	}
	assert.Empty(t, Candidates("ぺこら", domain.LangJapanese, members))
}
