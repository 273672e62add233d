package member

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/hololive-member-sync/internal/domain"
	"github.com/kapu/hololive-member-sync/internal/service/database"
	"github.com/kapu/hololive-member-sync/pkg/errors"
)

// Repository reads and writes the bot's members table.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepository(postgres *database.PostgresService, logger *zap.Logger) *Repository {
	return &Repository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

// GetAllMembers returns every member ordered by english_name. Rows that
// cannot be decoded are logged and skipped.
func (r *Repository) GetAllMembers(ctx context.Context) ([]*domain.Member, error) {
	query := `
		SELECT channel_id, english_name, japanese_name, korean_name,
		       is_graduated, aliases
		FROM members
		ORDER BY english_name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewStoreError("failed to query all members", "postgres", "select", err)
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		var (
			channelID    sql.NullString
			englishName  string
			japaneseName sql.NullString
			koreanName   sql.NullString
			isGraduated  bool
			aliasesJSON  []byte
		)

		if err := rows.Scan(&channelID, &englishName, &japaneseName, &koreanName,
			&isGraduated, &aliasesJSON); err != nil {
			r.logger.Warn("Failed to scan member row", zap.Error(err))
			continue
		}

		member, err := scanMember(channelID, englishName, japaneseName, koreanName, isGraduated, aliasesJSON)
		if err != nil {
			r.logger.Warn("Failed to parse member", zap.String("name", englishName), zap.Error(err))
			continue
		}

		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to iterate members", "postgres", "select", err)
	}

	return members, nil
}

// SaveReconciled writes the reconciled name fields and aliases of members
// back in one transaction. Members are matched by english_name; it returns
// the number of rows updated.
func (r *Repository) SaveReconciled(ctx context.Context, members []*domain.Member) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.NewStoreError("failed to begin transaction", "postgres", "begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE members
		SET japanese_name = $2,
		    korean_name = $3,
		    aliases = $4
		WHERE english_name = $1
	`)
	if err != nil {
		return 0, errors.NewStoreError("failed to prepare member update", "postgres", "prepare", err)
	}
	defer stmt.Close()

	updated := 0
	for _, member := range members {
		if member == nil || member.Name == "" {
			continue
		}

		aliasesJSON, err := encodeAliases(member.Aliases)
		if err != nil {
			return 0, errors.NewStoreError(fmt.Sprintf("failed to encode aliases of %s", member.Name), "postgres", "update", err)
		}

		res, err := stmt.ExecContext(ctx, member.Name, nullString(member.NameJa), nullString(member.NameKo), string(aliasesJSON))
		if err != nil {
			return 0, errors.NewStoreError(fmt.Sprintf("failed to update %s", member.Name), "postgres", "update", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			updated += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.NewStoreError("failed to commit member update", "postgres", "commit", err)
	}

	r.logger.Info("Members persisted", zap.Int("rows", updated))
	return updated, nil
}

func scanMember(
	channelID sql.NullString,
	englishName string,
	japaneseName sql.NullString,
	koreanName sql.NullString,
	isGraduated bool,
	aliasesJSON []byte,
) (*domain.Member, error) {
	aliases, err := decodeAliases(aliasesJSON)
	if err != nil {
		return nil, err
	}

	member := &domain.Member{
		Name:        englishName,
		Aliases:     aliases,
		IsGraduated: isGraduated,
	}

	if channelID.Valid {
		member.ChannelID = channelID.String
	}
	if japaneseName.Valid {
		member.NameJa = japaneseName.String
	}
	if koreanName.Valid {
		member.NameKo = koreanName.String
	}

	return member, nil
}

func decodeAliases(raw []byte) (domain.Aliases, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var aliases domain.Aliases
	if err := json.Unmarshal(raw, &aliases); err != nil {
		return nil, fmt.Errorf("failed to unmarshal aliases: %w", err)
	}
	return aliases, nil
}

func encodeAliases(aliases domain.Aliases) ([]byte, error) {
	if aliases == nil {
		aliases = domain.Aliases{}
	}
	return json.Marshal(aliases)
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
