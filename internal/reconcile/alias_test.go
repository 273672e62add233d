package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeAliasIdempotent(t *testing.T) {
	list, added := MergeAlias(nil, "아즈키", "AZKi")
	assert.True(t, added)
	assert.Equal(t, []string{"아즈키"}, list)

	again, added := MergeAlias(list, "아즈키", "AZKi")
	assert.False(t, added)
	assert.Equal(t, []string{"아즈키"}, again)
}

func TestMergeAliasRules(t *testing.T) {
	tests := []struct {
		name      string
		list      []string
		candidate string
		canonical string
		want      []string
		added     bool
	}{
		{name: "canonical rejected", list: []string{"a"}, candidate: "兎田ぺこら", canonical: "兎田ぺこら", want: []string{"a"}},
		{name: "duplicate rejected", list: []string{"a", "b"}, candidate: "b", canonical: "x", want: []string{"a", "b"}},
		{name: "empty rejected", list: []string{"a"}, candidate: "", canonical: "x", want: []string{"a"}},
		{name: "appended at end", list: []string{"b", "a"}, candidate: "c", canonical: "x", want: []string{"b", "a", "c"}, added: true},
		{name: "exact equality only", list: []string{"AZKi"}, candidate: "azki", canonical: "", want: []string{"AZKi", "azki"}, added: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, added := MergeAlias(tt.list, tt.candidate, tt.canonical)
			assert.Equal(t, tt.added, added)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeAliasDoesNotAliasInput(t *testing.T) {
	backing := make([]string, 1, 4)
	backing[0] = "a"

	merged, added := MergeAlias(backing, "b", "")
	assert.True(t, added)
	merged[0] = "changed"
	assert.Equal(t, "a", backing[0])
}

func TestMergeAliasNeverDuplicates(t *testing.T) {
	candidates := []string{"a", "b", "a", "c", "b", "a", "canon"}
	var list []string
	for _, c := range candidates {
		list, _ = MergeAlias(list, c, "canon")
	}
	assert.Equal(t, []string{"a", "b", "c"}, list)
}
