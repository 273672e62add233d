package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/hololive-member-sync/internal/config"
	"github.com/kapu/hololive-member-sync/internal/constants"
	"github.com/kapu/hololive-member-sync/internal/domain"
	"github.com/kapu/hololive-member-sync/internal/service/backup"
	"github.com/kapu/hololive-member-sync/internal/service/database"
	"github.com/kapu/hololive-member-sync/internal/service/member"
	"github.com/kapu/hololive-member-sync/internal/service/scraper"
	"github.com/kapu/hololive-member-sync/internal/service/store"
)

// Container bundles the assembled stores and clients a command needs.
// Optional collaborators (Repository, Cache, Backups) are nil when disabled.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Tables *domain.Tables

	Members    *store.MemberFile
	Profiles   *store.ProfileStore
	Scraper    *scraper.Client
	Repository *member.Repository
	Cache      *member.CacheInvalidator
	Backups    backup.Store

	closers []func()
}

// Build assembles every service the configuration enables. Connections to
// PostgreSQL and Redis are opened here; on error everything opened so far
// is closed again.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	tables, err := domain.LoadTables(cfg.Tables.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load lookup tables: %w", err)
	}
	c.Tables = tables
	logger.Info("Lookup tables loaded",
		zap.String("override_dir", cfg.Tables.Dir),
		zap.Int("label_rules", len(tables.Labels.Rules)),
		zap.Int("korean_overrides", len(tables.KoreanNames.Overrides)),
		zap.Int("romanizations", len(tables.KoreanNames.Romanization)),
	)

	c.Members = store.NewMemberFile(cfg.Paths.MembersFile, logger)
	c.Profiles = store.NewProfileStore(cfg.Paths.ProfileDir, cfg.Paths.ProfilesFile, constants.StoreConfig.ProfileWorkers, logger)
	c.Scraper = scraper.NewClient(scraper.Config{
		TalentsURL:  cfg.Scraper.TalentsURL,
		ScheduleURL: cfg.Scraper.ScheduleURL,
		UserAgent:   cfg.Scraper.UserAgent,
		Timeout:     cfg.Scraper.Timeout,
	}, logger)

	if cfg.Reconcile.Source == config.SourcePostgres {
		postgresSvc, err := database.NewPostgresService(ctx, database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", err)
		}
		c.closers = append(c.closers, func() {
			_ = postgresSvc.Close()
		})
		c.Repository = member.NewRepository(postgresSvc, logger)
	}

	if cfg.Redis.Enabled {
		client, err := member.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		c.closers = append(c.closers, func() {
			_ = client.Close()
		})
		c.Cache = member.NewCacheInvalidator(client, logger)
	}

	if cfg.Backup.Enabled {
		switch cfg.Backup.Target {
		case config.BackupTargetS3:
			s3Store, err := backup.NewS3Store(backup.S3Config{
				Endpoint:  cfg.S3.Endpoint,
				AccessKey: cfg.S3.AccessKey,
				SecretKey: cfg.S3.SecretKey,
				Bucket:    cfg.S3.Bucket,
				Prefix:    cfg.S3.Prefix,
				UseSSL:    cfg.S3.UseSSL,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create s3 backup store: %w", err)
			}
			c.Backups = s3Store
		default:
			c.Backups = backup.NewFileStore(cfg.Backup.Dir)
		}
	}

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
