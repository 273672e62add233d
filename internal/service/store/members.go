package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kapu/hololive-member-sync/internal/domain"
	"github.com/kapu/hololive-member-sync/pkg/errors"
)

// MemberFile is the members.json document store.
type MemberFile struct {
	path   string
	logger *zap.Logger
}

func NewMemberFile(path string, logger *zap.Logger) *MemberFile {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberFile{path: path, logger: logger}
}

func (f *MemberFile) Path() string {
	return f.path
}

// Raw returns the current file contents, used for backups.
func (f *MemberFile) Raw() ([]byte, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errors.NewStoreError(fmt.Sprintf("failed to read %s", f.path), "members_file", "read", err)
	}
	return raw, nil
}

func (f *MemberFile) Load(ctx context.Context) (*domain.MembersData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := f.Raw()
	if err != nil {
		return nil, err
	}

	data, err := domain.ParseMembersData(raw)
	if err != nil {
		return nil, errors.NewStoreError(fmt.Sprintf("failed to parse %s", f.path), "members_file", "load", err)
	}

	f.logger.Info("Members loaded",
		zap.String("path", f.path),
		zap.Int("count", len(data.Members)),
		zap.String("version", data.Version),
	)
	return data, nil
}

func (f *MemberFile) Save(ctx context.Context, data *domain.MembersData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if data == nil {
		return errors.NewContractError("members_file", "nothing to save")
	}

	if err := WriteJSON(f.path, data); err != nil {
		return errors.NewStoreError(fmt.Sprintf("failed to write %s", f.path), "members_file", "save", err)
	}

	f.logger.Info("Members saved", zap.String("path", f.path), zap.Int("count", len(data.Members)))
	return nil
}

// LoadOfficialTalents reads the roster file: a JSON array of talents.
func LoadOfficialTalents(path string) ([]*domain.OfficialTalent, error) {
	var talents []*domain.OfficialTalent
	if err := readJSON(path, &talents); err != nil {
		return nil, err
	}
	return talents, nil
}

// LoadScheduleNames reads the schedule name file: a JSON array of
// {"member_name": ...} objects.
func LoadScheduleNames(path string) ([]*domain.ScheduleName, error) {
	var names []*domain.ScheduleName
	if err := readJSON(path, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.NewStoreError("failed to read source file", path, "read", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.NewStoreError(fmt.Sprintf("failed to parse %s", path), path, "parse", err)
	}
	return nil
}
