package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const membersFixture = `{
  "version": "1.0",
  "lastUpdated": "2025-10-01",
  "sources": ["holodex"],
  "members": [
    {
      "channelId": "UC0TXe_LYZ4scaW2XMyi5_kw",
      "name": "AZKi",
      "aliases": {"ko": ["아즈키"], "ja": ["あずきち"]},
      "nameJa": "AZKi",
      "nameKo": "아즈키"
    },
    {"channelId": "UC1DCedRgGHBdm81E1llLhOQ", "name": "Usada Pekora", "isGraduated": false}
  ]
}`

func TestParseMembersData(t *testing.T) {
	data, err := ParseMembersData([]byte(membersFixture))
	require.NoError(t, err)
	require.Len(t, data.Members, 2)

	azki := data.Members[0]
	assert.Equal(t, []string{"아즈키"}, azki.AliasList(LangKorean))
	assert.Equal(t, "AZKi", azki.PrimaryName(LangJapanese))
	assert.Equal(t, "아즈키", azki.PrimaryName(LangKorean))
	assert.Equal(t, "AZKi", azki.PrimaryName(LangEnglish))
	assert.True(t, azki.HasAlias("あずきち"))
	assert.Equal(t, []string{"아즈키", "あずきち"}, azki.GetAllAliases())

	pekora := data.Members[1]
	assert.Nil(t, pekora.AliasList(LangJapanese))
}

func TestMemberRoundTripKeepsKeys(t *testing.T) {
	data, err := ParseMembersData([]byte(membersFixture))
	require.NoError(t, err)

	out, err := json.Marshal(data.Members[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"channelId":"UC1DCedRgGHBdm81E1llLhOQ","name":"Usada Pekora"}`, string(out))
}

func TestCloneIsDeep(t *testing.T) {
	m := &Member{Name: "AZKi", Aliases: Aliases{LangJapanese: {"あずきち"}}}
	clone := m.Clone()
	clone.SetAliasList(LangJapanese, append(clone.AliasList(LangJapanese), "AZKi"))
	clone.Aliases[LangJapanese][0] = "changed"

	assert.Equal(t, []string{"あずきち"}, m.AliasList(LangJapanese))
}

func TestOfficialTalentSlug(t *testing.T) {
	withLink := &OfficialTalent{English: "Usada Pekora", Link: "https://hololive.hololivepro.com/talents/usada-pekora/"}
	assert.Equal(t, "usada-pekora", withLink.Slug())

	noLink := &OfficialTalent{English: "Ninomae Ina'nis"}
	assert.Equal(t, "ninomae-inanis", noLink.Slug())

	var missing *OfficialTalent
	assert.Empty(t, missing.Slug())
}
