package backup

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when no backup exists under the key.
var ErrNotFound = errors.New("backup not found")

// Store keeps pre-write snapshots of the documents a run is about to
// overwrite. Snapshots are grouped by run id.
type Store interface {
	Put(ctx context.Context, runID, name string, content []byte) error
	Get(ctx context.Context, runID, name string) ([]byte, error)
	List(ctx context.Context, runID string) ([]string, error)
}

func validateKey(runID, name string) (string, string, error) {
	runID = strings.TrimSpace(runID)
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if runID == "" {
		return "", "", fmt.Errorf("run_id is required")
	}
	if strings.ContainsAny(runID, `/\`) || runID == "." || runID == ".." {
		return "", "", fmt.Errorf("invalid run_id %q", runID)
	}
	if name == "" {
		return "", "", fmt.Errorf("name is required")
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return "", "", fmt.Errorf("invalid name %q", name)
		}
	}
	return runID, name, nil
}
