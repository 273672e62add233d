package member

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kapu/hololive-member-sync/internal/domain"
)

func TestScanMember(t *testing.T) {
	member, err := scanMember(
		sql.NullString{String: "UC1DCedRgGHBdm81E1llLhOQ", Valid: true},
		"Usada Pekora",
		sql.NullString{String: "兎田ぺこら", Valid: true},
		sql.NullString{},
		false,
		[]byte(`{"ko":["페코라"],"ja":["ぺこら"]}`),
	)
	require.NoError(t, err)

	assert.Equal(t, "UC1DCedRgGHBdm81E1llLhOQ", member.ChannelID)
	assert.Equal(t, "兎田ぺこら", member.NameJa)
	assert.Empty(t, member.NameKo)
	assert.Equal(t, []string{"페코라"}, member.AliasList(domain.LangKorean))

	_, err = scanMember(sql.NullString{}, "Broken", sql.NullString{}, sql.NullString{}, false, []byte("["))
	assert.Error(t, err)

	empty, err := scanMember(sql.NullString{}, "AZKi", sql.NullString{}, sql.NullString{}, false, nil)
	require.NoError(t, err)
	assert.Nil(t, empty.Aliases)
}

func TestEncodeAliases(t *testing.T) {
	raw, err := encodeAliases(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))

	raw, err = encodeAliases(domain.Aliases{domain.LangJapanese: {"ぺこら"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ja":["ぺこら"]}`, string(raw))
}

func TestNullString(t *testing.T) {
	assert.False(t, nullString("").Valid)
	assert.Equal(t, sql.NullString{String: "마린", Valid: true}, nullString("마린"))
}

func TestCacheInvalidatorWithoutClient(t *testing.T) {
	deleted, err := NewCacheInvalidator(nil, nil).InvalidateAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
