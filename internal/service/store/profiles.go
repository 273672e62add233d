package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/hololive-member-sync/internal/domain"
	"github.com/kapu/hololive-member-sync/pkg/errors"
)

// profileDocument is one profile JSON object as read from disk. Saving keeps
// every field and only replaces data[].value; keys come out sorted.
type profileDocument struct {
	path     string
	key      string // set for documents that live in the combined file; path is then the combined file
	fields   map[string]json.RawMessage
	rawItems []json.RawMessage
	items    []map[string]json.RawMessage
	onDisk   []string
	profile  *domain.HashtagProfile
}

func (d *profileDocument) changed() bool {
	if d.profile == nil {
		return false
	}
	for i, entry := range d.profile.Entries {
		if entry != nil && entry.Value != d.onDisk[i] {
			return true
		}
	}
	return false
}

func (d *profileDocument) encode() (json.RawMessage, error) {
	for i, entry := range d.profile.Entries {
		if entry == nil || entry.Value == d.onDisk[i] {
			continue
		}
		value, err := encodeCompact(entry.Value)
		if err != nil {
			return nil, err
		}
		d.items[i]["value"] = value
		item, err := encodeCompact(d.items[i])
		if err != nil {
			return nil, err
		}
		d.rawItems[i] = item
	}

	data, err := encodeCompact(d.rawItems)
	if err != nil {
		return nil, err
	}
	d.fields["data"] = data
	return EncodeJSON(d.fields)
}

func (d *profileDocument) commit() {
	for i, entry := range d.profile.Entries {
		if entry != nil {
			d.onDisk[i] = entry.Value
		}
	}
}

// ProfileSet is the loaded profile collection. Profiles from the directory
// come first, sorted by file name, then the combined file sorted by key.
type ProfileSet struct {
	docs []*profileDocument
}

// Profiles returns the profiles in load order. Unreadable documents show up
// as nil entries.
func (s *ProfileSet) Profiles() []*domain.HashtagProfile {
	out := make([]*domain.HashtagProfile, len(s.docs))
	for i, doc := range s.docs {
		out[i] = doc.profile
	}
	return out
}

// Changed lists the ids of profiles whose values differ from disk.
func (s *ProfileSet) Changed() []string {
	var ids []string
	for _, doc := range s.docs {
		if doc.changed() {
			ids = append(ids, doc.profile.ID)
		}
	}
	return ids
}

// ChangedFiles lists the files Save would rewrite, sorted.
func (s *ProfileSet) ChangedFiles() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, doc := range s.docs {
		if doc.changed() && !seen[doc.path] {
			seen[doc.path] = true
			paths = append(paths, doc.path)
		}
	}
	sort.Strings(paths)
	return paths
}

// ProfileStore reads and writes the hashtag profile documents: one
// <slug>.json file per profile in dir, and/or a combined slug-to-profile file.
type ProfileStore struct {
	dir          string
	combinedFile string
	workers      int
	logger       *zap.Logger
}

func NewProfileStore(dir, combinedFile string, workers int, logger *zap.Logger) *ProfileStore {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileStore{dir: dir, combinedFile: combinedFile, workers: workers, logger: logger}
}

// Load reads every profile document. A missing directory or combined file is
// not an error; an unparsable document becomes a nil profile.
func (s *ProfileStore) Load(ctx context.Context) (*ProfileSet, error) {
	set := &ProfileSet{}

	dirDocs, err := s.loadDir(ctx)
	if err != nil {
		return nil, err
	}
	set.docs = append(set.docs, dirDocs...)

	combinedDocs, err := s.loadCombined()
	if err != nil {
		return nil, err
	}
	set.docs = append(set.docs, combinedDocs...)

	s.logger.Info("Profiles loaded",
		zap.Int("files", len(dirDocs)),
		zap.Int("combined", len(combinedDocs)),
	)
	return set, nil
}

func (s *ProfileStore) loadDir(ctx context.Context) ([]*profileDocument, error) {
	if s.dir == "" {
		return nil, nil
	}

	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, errors.NewStoreError("failed to list profile directory", "profiles", "list", err)
	}
	sort.Strings(paths)

	docs := make([]*profileDocument, len(paths))
	p := pool.New().WithMaxGoroutines(s.workers).WithErrors()
	for idx, path := range paths {
		p.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return errors.NewStoreError(fmt.Sprintf("failed to read %s", path), "profiles", "read", err)
			}
			id := strings.TrimSuffix(filepath.Base(path), ".json")
			docs[idx] = s.decode(id, raw)
			docs[idx].path = path
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *ProfileStore) loadCombined() ([]*profileDocument, error) {
	if s.combinedFile == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(s.combinedFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError(fmt.Sprintf("failed to read %s", s.combinedFile), "profiles", "read", err)
	}

	var byKey map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return nil, errors.NewStoreError(fmt.Sprintf("failed to parse %s", s.combinedFile), "profiles", "parse", err)
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	docs := make([]*profileDocument, len(keys))
	for i, key := range keys {
		docs[i] = s.decode(key, byKey[key])
		docs[i].key = key
		docs[i].path = s.combinedFile
	}
	return docs, nil
}

func (s *ProfileStore) decode(id string, raw []byte) *profileDocument {
	doc := &profileDocument{}

	if err := json.Unmarshal(raw, &doc.fields); err != nil || doc.fields == nil {
		s.logger.Warn("Unreadable profile document", zap.String("profile", id), zap.Error(err))
		return doc
	}

	if data, ok := doc.fields["data"]; ok {
		if err := json.Unmarshal(data, &doc.rawItems); err != nil {
			s.logger.Warn("Profile data is not a list", zap.String("profile", id), zap.Error(err))
			return doc
		}
	}

	profile := &domain.HashtagProfile{ID: id, Entries: make([]*domain.ProfileEntry, len(doc.rawItems))}
	doc.items = make([]map[string]json.RawMessage, len(doc.rawItems))
	doc.onDisk = make([]string, len(doc.rawItems))

	for i, rawItem := range doc.rawItems {
		var item map[string]json.RawMessage
		if err := json.Unmarshal(rawItem, &item); err != nil || item == nil {
			continue
		}
		var label, value string
		if json.Unmarshal(item["label"], &label) != nil || json.Unmarshal(item["value"], &value) != nil {
			continue
		}
		doc.items[i] = item
		doc.onDisk[i] = value
		profile.Entries[i] = &domain.ProfileEntry{Label: label, Value: value}
	}

	doc.profile = profile
	return doc
}

// Save writes back the profiles whose values changed and returns how many
// documents were rewritten. Directory files are written in parallel; the
// combined file is rewritten once if any of its profiles changed.
func (s *ProfileStore) Save(ctx context.Context, set *ProfileSet) (int, error) {
	var (
		files       []*profileDocument
		combinedHit bool
	)
	for _, doc := range set.docs {
		if !doc.changed() {
			continue
		}
		if doc.key != "" {
			combinedHit = true
			continue
		}
		files = append(files, doc)
	}

	var (
		mu      sync.Mutex
		written int
	)
	p := pool.New().WithMaxGoroutines(s.workers).WithErrors()
	for _, doc := range files {
		p.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := doc.encode()
			if err != nil {
				return errors.NewStoreError(fmt.Sprintf("failed to encode %s", doc.path), "profiles", "encode", err)
			}
			if err := WriteFileAtomic(doc.path, data); err != nil {
				return errors.NewStoreError(fmt.Sprintf("failed to write %s", doc.path), "profiles", "save", err)
			}
			doc.commit()
			mu.Lock()
			written++
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return written, err
	}

	if combinedHit {
		if err := s.saveCombined(set); err != nil {
			return written, err
		}
		written++
	}

	s.logger.Info("Profiles saved", zap.Int("documents", written))
	return written, nil
}

func (s *ProfileStore) saveCombined(set *ProfileSet) error {
	raw, err := os.ReadFile(s.combinedFile)
	if err != nil {
		return errors.NewStoreError(fmt.Sprintf("failed to read %s", s.combinedFile), "profiles", "read", err)
	}
	var byKey map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return errors.NewStoreError(fmt.Sprintf("failed to parse %s", s.combinedFile), "profiles", "parse", err)
	}

	var committed []*profileDocument
	for _, doc := range set.docs {
		if doc.key == "" || !doc.changed() {
			continue
		}
		data, err := doc.encode()
		if err != nil {
			return errors.NewStoreError(fmt.Sprintf("failed to encode profile %s", doc.key), "profiles", "encode", err)
		}
		byKey[doc.key] = data
		committed = append(committed, doc)
	}

	if err := WriteJSON(s.combinedFile, byKey); err != nil {
		return errors.NewStoreError(fmt.Sprintf("failed to write %s", s.combinedFile), "profiles", "save", err)
	}
	for _, doc := range committed {
		doc.commit()
	}
	return nil
}

func encodeCompact(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
