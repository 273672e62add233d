package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/hololive-member-sync/internal/config"
	"github.com/kapu/hololive-member-sync/internal/domain"
	"github.com/kapu/hololive-member-sync/internal/reconcile"
	"github.com/kapu/hololive-member-sync/internal/service/backup"
	"github.com/kapu/hololive-member-sync/internal/service/store"
	"github.com/kapu/hololive-member-sync/internal/util"
	"github.com/kapu/hololive-member-sync/pkg/errors"
)

const (
	postgresSnapshotName = "members.postgres.json"
	profileBackupPrefix  = "profiles/"
	lastUpdatedLayout    = "2006-01-02"
)

type SyncOptions struct {
	Passes    []string
	Ambiguity reconcile.AmbiguityPolicy
	DryRun    bool
}

// SyncResult describes what a run did besides the pass counters.
type SyncResult struct {
	Report    *reconcile.Report
	Persisted bool
	BackedUp  []string
}

// Service runs the member-sync commands against an assembled Container.
type Service struct {
	c      *Container
	logger *zap.Logger
}

func NewService(c *Container) *Service {
	return &Service{c: c, logger: c.Logger}
}

// Sync loads the inputs the requested passes need, runs them, and persists
// the result unless nothing changed or opts.DryRun is set. Every document is
// backed up under the run id before it is overwritten.
func (s *Service) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	passes := opts.Passes
	if len(passes) == 0 {
		passes = reconcile.DefaultPasses
	}
	need := make(map[string]bool, len(passes))
	for _, p := range passes {
		need[p] = true
	}
	memberPasses := need[reconcile.PassNativeNames] || need[reconcile.PassAliases] || need[reconcile.PassKoreanNames]

	var (
		src      reconcile.Sources
		data     *domain.MembersData
		snapshot []byte
		registry *reconcile.Registry
		profiles *store.ProfileSet
		err      error
	)

	if memberPasses {
		data, snapshot, err = s.loadMembers(ctx)
		if err != nil {
			return nil, err
		}
		registry = reconcile.NewRegistry(data.Members)
	}
	if need[reconcile.PassNativeNames] {
		if src.Talents, err = store.LoadOfficialTalents(s.c.Config.Paths.TalentsFile); err != nil {
			return nil, err
		}
	}
	if need[reconcile.PassAliases] {
		if src.ScheduleNames, err = store.LoadScheduleNames(s.c.Config.Paths.ScheduleFile); err != nil {
			return nil, err
		}
	}
	if need[reconcile.PassProfiles] {
		if profiles, err = s.c.Profiles.Load(ctx); err != nil {
			return nil, err
		}
		src.Profiles = profiles.Profiles()
	}

	pipeline := reconcile.NewPipelineFromTables(registry, s.c.Tables, s.c.Config.Reconcile.ApplyOverrides, opts.Ambiguity, s.logger)
	report, err := pipeline.Run(ctx, src, passes...)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Report: report}
	for _, note := range report.Notes() {
		s.logger.Debug("Data quality note",
			zap.String("kind", string(note.Kind)),
			zap.String("subject", note.Subject),
			zap.String("detail", note.Detail),
		)
	}

	if report.Changes() == 0 {
		s.logger.Info("No changes to persist", zap.String("run_id", report.RunID))
		return result, nil
	}
	if opts.DryRun {
		s.logger.Info("Dry run, nothing written",
			zap.String("run_id", report.RunID),
			zap.Int("changes", report.Changes()),
		)
		return result, nil
	}

	memberChanges := report.Changes()
	if p := report.Pass(reconcile.PassProfiles); p != nil {
		memberChanges -= p.Changes()
	}

	if memberChanges > 0 {
		if err := s.persistMembers(ctx, report.RunID, data, snapshot, registry, result); err != nil {
			return result, err
		}
	}
	if profiles != nil && len(profiles.Changed()) > 0 {
		if err := s.persistProfiles(ctx, report.RunID, profiles, result); err != nil {
			return result, err
		}
	}

	result.Persisted = true
	return result, nil
}

// loadMembers returns the member records and a serialized copy of their
// pre-run state for the backup.
func (s *Service) loadMembers(ctx context.Context) (*domain.MembersData, []byte, error) {
	if s.c.Config.Reconcile.Source != config.SourcePostgres {
		snapshot, err := s.c.Members.Raw()
		if err != nil {
			return nil, nil, err
		}
		data, err := s.c.Members.Load(ctx)
		return data, snapshot, err
	}

	if s.c.Repository == nil {
		return nil, nil, errors.NewContractError("sync", "postgres source selected but no repository configured")
	}
	members, err := s.c.Repository.GetAllMembers(ctx)
	if err != nil {
		return nil, nil, err
	}
	data := &domain.MembersData{Sources: []string{config.SourcePostgres}, Members: members}
	snapshot, err := store.EncodeJSON(data)
	if err != nil {
		return nil, nil, errors.NewStoreError("failed to encode member snapshot", "backup", "encode", err)
	}
	return data, snapshot, nil
}

func (s *Service) persistMembers(ctx context.Context, runID string, data *domain.MembersData, snapshot []byte, registry *reconcile.Registry, result *SyncResult) error {
	if s.c.Config.Reconcile.Source == config.SourcePostgres {
		if err := s.backup(ctx, runID, postgresSnapshotName, snapshot, result); err != nil {
			return err
		}
		if _, err := s.c.Repository.SaveReconciled(ctx, registry.Usable()); err != nil {
			return err
		}
	} else {
		if err := s.backup(ctx, runID, filepath.Base(s.c.Members.Path()), snapshot, result); err != nil {
			return err
		}
		data.LastUpdated = util.NowKST().Format(lastUpdatedLayout)
		if err := s.c.Members.Save(ctx, data); err != nil {
			return err
		}
	}

	if _, err := s.c.Cache.InvalidateAll(ctx); err != nil {
		s.logger.Warn("Failed to invalidate member cache", zap.Error(err))
	}
	return nil
}

func (s *Service) persistProfiles(ctx context.Context, runID string, profiles *store.ProfileSet, result *SyncResult) error {
	for _, path := range profiles.ChangedFiles() {
		raw, err := os.ReadFile(path)
		if err != nil {
			return errors.NewStoreError(fmt.Sprintf("failed to read %s", path), "profiles", "backup", err)
		}
		if err := s.backup(ctx, runID, profileBackupPrefix+filepath.Base(path), raw, result); err != nil {
			return err
		}
	}
	_, err := s.c.Profiles.Save(ctx, profiles)
	return err
}

func (s *Service) backup(ctx context.Context, runID, name string, content []byte, result *SyncResult) error {
	if s.c.Backups == nil {
		return nil
	}
	if err := s.c.Backups.Put(ctx, runID, name, content); err != nil {
		return errors.NewStoreError(fmt.Sprintf("failed to back up %s", name), "backup", "put", err)
	}
	result.BackedUp = append(result.BackedUp, name)
	s.logger.Info("Backup written", zap.String("run_id", runID), zap.String("name", name))
	return nil
}

// Restore writes every document backed up under runID back to where it came
// from and returns how many were restored.
func (s *Service) Restore(ctx context.Context, runID string) (int, error) {
	if s.c.Backups == nil {
		return 0, errors.NewContractError("restore", "backups are disabled")
	}

	names, err := s.c.Backups.List(ctx, runID)
	if err != nil {
		return 0, errors.NewStoreError("failed to list backups", "backup", "list", err)
	}
	if len(names) == 0 {
		return 0, backup.ErrNotFound
	}

	restored := 0
	for _, name := range names {
		content, err := s.c.Backups.Get(ctx, runID, name)
		if err != nil {
			return restored, errors.NewStoreError(fmt.Sprintf("failed to read backup %s", name), "backup", "get", err)
		}

		switch {
		case name == postgresSnapshotName:
			if s.c.Repository == nil {
				return restored, errors.NewContractError("restore", "postgres snapshot found but no repository configured")
			}
			data, err := domain.ParseMembersData(content)
			if err != nil {
				return restored, errors.NewStoreError("failed to parse postgres snapshot", "backup", "parse", err)
			}
			if _, err := s.c.Repository.SaveReconciled(ctx, data.Members); err != nil {
				return restored, err
			}
			if _, err := s.c.Cache.InvalidateAll(ctx); err != nil {
				s.logger.Warn("Failed to invalidate member cache", zap.Error(err))
			}
		default:
			target := s.restoreTarget(name)
			if target == "" {
				s.logger.Warn("Skipping unknown backup entry", zap.String("name", name))
				continue
			}
			if err := store.WriteFileAtomic(target, content); err != nil {
				return restored, errors.NewStoreError(fmt.Sprintf("failed to restore %s", target), "backup", "restore", err)
			}
		}

		restored++
		s.logger.Info("Restored backup", zap.String("run_id", runID), zap.String("name", name))
	}
	return restored, nil
}

func (s *Service) restoreTarget(name string) string {
	paths := s.c.Config.Paths
	if name == filepath.Base(paths.MembersFile) {
		return paths.MembersFile
	}
	if !strings.HasPrefix(name, profileBackupPrefix) {
		return ""
	}
	base := filepath.Base(strings.TrimPrefix(name, profileBackupPrefix))
	if paths.ProfilesFile != "" && base == filepath.Base(paths.ProfilesFile) {
		return paths.ProfilesFile
	}
	if paths.ProfileDir == "" {
		return ""
	}
	return filepath.Join(paths.ProfileDir, base)
}

// Fetch scrapes the requested sources into their JSON files. With neither
// flag set both sources are fetched.
func (s *Service) Fetch(ctx context.Context, talents, schedule bool) error {
	if !talents && !schedule {
		talents, schedule = true, true
	}
	paths := s.c.Config.Paths

	if talents {
		list, err := s.c.Scraper.FetchTalents(ctx)
		if err != nil {
			return err
		}
		if err := store.WriteJSON(paths.TalentsFile, list); err != nil {
			return errors.NewStoreError(fmt.Sprintf("failed to write %s", paths.TalentsFile), "talents", "save", err)
		}
		s.logger.Info("Talents written", zap.String("path", paths.TalentsFile), zap.Int("count", len(list)))
	}

	if schedule {
		names, err := s.c.Scraper.FetchScheduleNames(ctx)
		if err != nil {
			return err
		}
		if err := store.WriteJSON(paths.ScheduleFile, names); err != nil {
			return errors.NewStoreError(fmt.Sprintf("failed to write %s", paths.ScheduleFile), "schedule", "save", err)
		}
		s.logger.Info("Schedule names written", zap.String("path", paths.ScheduleFile), zap.Int("count", len(names)))
	}
	return nil
}
