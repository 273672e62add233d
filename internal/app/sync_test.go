package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/hololive-member-sync/internal/config"
	"github.com/kapu/hololive-member-sync/internal/domain"
	"github.com/kapu/hololive-member-sync/internal/reconcile"
)

const testMembers = `{
  "version": "2",
  "lastUpdated": "2025-01-01",
  "sources": ["holodex"],
  "members": [
    {"channelId": "UC1DCedRgGHBdm81E1llLhOQ", "name": "Usada Pekora", "nameJa": "うさだぺこら", "aliases": {"ko": ["페코라"]}},
    {"channelId": "UCCzUftO8KOVkV4wQG1vkUvg", "name": "Houshou Marine", "nameJa": "宝鐘マリン", "nameKo": "마린"},
    {"channelId": "UC0TXe_LYZ4scaW2XMyi5_kw", "name": "AZKi"}
  ]
}`

func newTestService(t *testing.T) (*Service, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		Paths: config.PathsConfig{
			MembersFile:  filepath.Join(dir, "members.json"),
			TalentsFile:  filepath.Join(dir, "official_talents.json"),
			ScheduleFile: filepath.Join(dir, "official_japanese_names.json"),
			ProfileDir:   filepath.Join(dir, "official_profiles_ko"),
			ProfilesFile: filepath.Join(dir, "official_profiles_ko.json"),
		},
		Reconcile: config.ReconcileConfig{Source: config.SourceFile, ApplyOverrides: true},
		Backup:    config.BackupConfig{Enabled: true, Target: config.BackupTargetFile, Dir: filepath.Join(dir, "backups")},
		Scraper:   config.ScraperConfig{Timeout: time.Second},
	}

	write := func(path, content string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write(cfg.Paths.MembersFile, testMembers)
	write(cfg.Paths.TalentsFile, `[{"japanese":"兎田ぺこら","english":"Usada Pekora"},{"japanese":"AZKi","english":"AZKi"}]`)
	write(cfg.Paths.ScheduleFile, `[{"member_name":"ぺこら"},{"member_name":"ホロライブ"},{"member_name":"マリン"}]`)
	write(filepath.Join(cfg.Paths.ProfileDir, "usada-pekora.json"),
		`{"slug":"usada-pekora","data":[{"label":"해시태그","value":"配信タグ：#ぺこらいぶ"},{"label":"생일","value":"1월 12일"}]}`)

	c, err := Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return NewService(c), cfg
}

func loadMembers(t *testing.T, path string) *domain.MembersData {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	data, err := domain.ParseMembersData(raw)
	require.NoError(t, err)
	return data
}

func TestSyncPersistsAndIsIdempotent(t *testing.T) {
	svc, cfg := newTestService(t)
	ctx := context.Background()

	first, err := svc.Sync(ctx, SyncOptions{Ambiguity: reconcile.AmbiguitySkip})
	require.NoError(t, err)
	assert.True(t, first.Persisted)
	assert.Equal(t, []string{"members.json"}, first.BackedUp)

	data := loadMembers(t, cfg.Paths.MembersFile)
	pekora, marine, azki := data.Members[0], data.Members[1], data.Members[2]

	assert.Equal(t, "兎田ぺこら", pekora.NameJa)
	assert.Equal(t, []string{"ぺこら"}, pekora.AliasList(domain.LangJapanese))
	assert.Equal(t, "우사다 페코라", pekora.NameKo)
	assert.Equal(t, []string{"マリン"}, marine.AliasList(domain.LangJapanese))
	assert.Equal(t, "호쇼 마린", marine.NameKo, "override replaces an existing nameKo")
	assert.Equal(t, "AZKi", azki.NameJa)
	assert.Equal(t, "아즈키", azki.NameKo)
	assert.NotEqual(t, "2025-01-01", data.LastUpdated)

	backups, err := svc.c.Backups.List(ctx, first.Report.RunID)
	require.NoError(t, err)
	assert.Equal(t, []string{"members.json"}, backups)

	second, err := svc.Sync(ctx, SyncOptions{})
	require.NoError(t, err)
	assert.Zero(t, second.Report.Changes())
	assert.False(t, second.Persisted)
	assert.Empty(t, second.BackedUp)
}

func TestSyncDryRunWritesNothing(t *testing.T) {
	svc, cfg := newTestService(t)

	result, err := svc.Sync(context.Background(), SyncOptions{DryRun: true})
	require.NoError(t, err)
	assert.Positive(t, result.Report.Changes())
	assert.False(t, result.Persisted)

	raw, err := os.ReadFile(cfg.Paths.MembersFile)
	require.NoError(t, err)
	assert.Equal(t, testMembers, string(raw))
}

func TestSyncProfilesAndRestore(t *testing.T) {
	svc, cfg := newTestService(t)
	ctx := context.Background()
	profilePath := filepath.Join(cfg.Paths.ProfileDir, "usada-pekora.json")
	before, err := os.ReadFile(profilePath)
	require.NoError(t, err)

	result, err := svc.Sync(ctx, SyncOptions{Passes: []string{reconcile.PassProfiles}})
	require.NoError(t, err)
	require.True(t, result.Persisted)
	assert.Equal(t, []string{"profiles/usada-pekora.json"}, result.BackedUp)
	assert.Equal(t, 1, result.Report.Pass(reconcile.PassProfiles).Updated)

	raw, err := os.ReadFile(profilePath)
	require.NoError(t, err)
	var doc struct {
		Slug string `json:"slug"`
		Data []struct {
			Label string `json:"label"`
			Value string `json:"value"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "usada-pekora", doc.Slug)
	assert.Equal(t, "방송 태그: #ぺこらいぶ", doc.Data[0].Value)
	assert.Equal(t, "1월 12일", doc.Data[1].Value)

	membersRaw, err := os.ReadFile(cfg.Paths.MembersFile)
	require.NoError(t, err)
	assert.Equal(t, testMembers, string(membersRaw), "profile-only run leaves members alone")

	restored, err := svc.Restore(ctx, result.Report.RunID)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)

	raw, err = os.ReadFile(profilePath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(raw))

	_, err = svc.Restore(ctx, "no-such-run")
	assert.Error(t, err)
}

func TestSyncMissingSourceFile(t *testing.T) {
	svc, cfg := newTestService(t)
	require.NoError(t, os.Remove(cfg.Paths.TalentsFile))

	_, err := svc.Sync(context.Background(), SyncOptions{Passes: []string{reconcile.PassNativeNames}})
	assert.Error(t, err)

	result, err := svc.Sync(context.Background(), SyncOptions{Passes: []string{reconcile.PassKoreanNames}})
	require.NoError(t, err)
	assert.Positive(t, result.Report.Changes())
}
