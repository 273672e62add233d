package backup

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/kapu/hololive-member-sync/internal/constants"
)

// FileStore writes backups to <dir>/<runID>/<name>.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Put(ctx context.Context, runID, name string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runID, name, err := validateKey(runID, name)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, runID, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(constants.StoreConfig.DirMode)); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}
	return os.WriteFile(path, content, os.FileMode(constants.StoreConfig.FileMode))
}

func (s *FileStore) Get(ctx context.Context, runID, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runID, name, err := validateKey(runID, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, runID, filepath.FromSlash(name)))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *FileStore) List(ctx context.Context, runID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runID, _, err := validateKey(runID, "-")
	if err != nil {
		return nil, err
	}

	root := filepath.Join(s.dir, runID)
	var names []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
