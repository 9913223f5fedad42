package lib

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gingerrexayers/smarthash-go/internal/smarthash/types"
	"github.com/tidwall/jsonc"
)

// ConsolidatedStore keeps the records of many data files in a single text
// or JSON file.
//
// Save never edits the file in place: the previous file is copied to a
// "<store>.back.<id>" sibling, the whole file is regenerated, and the
// backup is removed only once the write has succeeded. A failed write
// leaves the backup behind for manual recovery.
type ConsolidatedStore struct {
	path     string
	opts     StoreOptions
	records  map[string]*types.HashRecord
	loadErr  error
	lastSync time.Time
	logger   *slog.Logger
	clock    Clock
	create   func(name string) (io.WriteCloser, error)
}

// NewConsolidatedStore returns a store backed by the file at path. Nothing
// is read until Load is called.
func NewConsolidatedStore(path string, opts StoreOptions) (*ConsolidatedStore, error) {
	abs, err := AbsPath(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve absolute path for %s: %w", path, err)
	}
	clock := opts.clock()
	return &ConsolidatedStore{
		path:     abs,
		opts:     opts,
		records:  make(map[string]*types.HashRecord),
		lastSync: clock.Now(),
		logger:   opts.logger(),
		clock:    clock,
		create:   createFile,
	}, nil
}

func createFile(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// Path returns the absolute path of the store file.
func (s *ConsolidatedStore) Path() string { return s.path }

// Len returns the number of records held in memory.
func (s *ConsolidatedStore) Len() int { return len(s.records) }

// Load replaces the in-memory records with the content of the store file.
// A missing file yields an empty store. A malformed line, an invalid JSON
// document or two records for the same file fail with a *FormatError and
// leave the store unusable for Save, so the file on disk stays untouched.
func (s *ConsolidatedStore) Load() error {
	records, err := s.readRecords()
	s.loadErr = err
	if err != nil {
		s.records = make(map[string]*types.HashRecord)
		return err
	}
	s.records = records
	s.lastSync = s.clock.Now()
	s.logger.Debug("hash storage loaded", "path", s.path, "records", len(records))
	return nil
}

func (s *ConsolidatedStore) readRecords() (map[string]*types.HashRecord, error) {
	records := make(map[string]*types.HashRecord)

	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return records, nil
		}
		return nil, fmt.Errorf("failed to read hash storage %s: %w", s.path, err)
	}

	var stored []storedRecord
	if s.opts.JSON {
		stored, err = parseJSONStore(s.path, content)
	} else {
		stored, err = parseTextStore(s.path, content)
	}
	if err != nil {
		return nil, err
	}

	digestLen := s.opts.digestLen()
	for _, r := range stored {
		abs, err := ResolvePath(r.path, s.path)
		if err != nil {
			return nil, fmt.Errorf("could not resolve %s from %s: %w", r.path, s.path, err)
		}
		if digestLen > 0 && len(r.hash) != digestLen {
			s.logger.Warn("stored hash length does not match the algorithm",
				"path", abs, "algorithm", s.opts.Algorithm, "length", len(r.hash), "expected", digestLen)
		}
		identity := abs
		if s.opts.NormCase {
			identity = foldCase(abs)
		}
		if _, exists := records[identity]; exists {
			return nil, s.duplicateError(r)
		}
		records[identity] = &types.HashRecord{Identity: identity, Path: abs, Hash: r.hash}
	}
	return records, nil
}

func (s *ConsolidatedStore) duplicateError(r storedRecord) error {
	if s.opts.JSON {
		return &FormatError{
			Path:    s.path,
			Excerpt: excerpt(r.path),
			Reason:  fmt.Sprintf("entry %d duplicates the record of an earlier entry", r.line),
		}
	}
	return &FormatError{
		Path:    s.path,
		Line:    r.line,
		Excerpt: excerpt(r.path),
		Reason:  "duplicate record for the same file",
	}
}

func parseJSONStore(storePath string, content []byte) ([]storedRecord, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, nil
	}

	var doc types.StoreDocument
	if err := json.Unmarshal(jsonc.ToJSON(content), &doc); err != nil {
		return nil, &FormatError{Path: storePath, Reason: "invalid JSON: " + err.Error()}
	}

	stored := make([]storedRecord, 0, len(doc.Data))
	for i, entry := range doc.Data {
		if !isHexString(entry.Hash) {
			return nil, &FormatError{
				Path:    storePath,
				Excerpt: excerpt(entry.Hash),
				Reason:  fmt.Sprintf("entry %d has an invalid hash value", i+1),
			}
		}
		if !isValidPath(entry.FileName) {
			return nil, &FormatError{
				Path:    storePath,
				Excerpt: excerpt(entry.FileName),
				Reason:  fmt.Sprintf("entry %d has an invalid file name", i+1),
			}
		}
		stored = append(stored, storedRecord{line: i + 1, path: entry.FileName, hash: entry.Hash})
	}
	return stored, nil
}

// RecordPath returns the store file, which holds the records of every data file.
func (s *ConsolidatedStore) RecordPath(string) string { return s.path }

// Has reports whether a record for dataFile exists and marks it as used,
// so it survives the next Save.
func (s *ConsolidatedStore) Has(dataFile string) (bool, error) {
	if err := checkDistinct(dataFile, s.path, s.opts.NormCase); err != nil {
		return false, err
	}
	identity, err := CanonicalPath(dataFile, s.opts.NormCase)
	if err != nil {
		return false, err
	}

	record, ok := s.records[identity]
	if !ok {
		return false, nil
	}
	record.Touched = true
	return true, nil
}

// Set stores the record for dataFile and applies the autosave policy. A
// name that could not be read back from the store is refused with a
// *UsageError.
func (s *ConsolidatedStore) Set(dataFile, hash string) error {
	if err := checkDistinct(dataFile, s.path, s.opts.NormCase); err != nil {
		return err
	}
	abs, err := AbsPath(dataFile)
	if err != nil {
		return err
	}
	rendered, err := RelPath(abs, s.path, s.opts.AbsolutePaths, s.opts.NormCase)
	if err != nil {
		return fmt.Errorf("could not render path of %s: %w", dataFile, err)
	}
	if err := checkStorable(dataFile, rendered, s.path); err != nil {
		return err
	}
	identity := abs
	if s.opts.NormCase {
		identity = foldCase(abs)
	}

	s.records[identity] = &types.HashRecord{Identity: identity, Path: abs, Hash: hash, Touched: true}
	return s.autosave()
}

func (s *ConsolidatedStore) autosave() error {
	interval := s.opts.AutosaveInterval
	switch {
	case interval < AutosaveEverySet:
		return nil
	case interval == AutosaveEverySet:
		return s.Save()
	}
	if s.clock.Now().Sub(s.lastSync) < time.Duration(interval)*time.Second {
		return nil
	}
	s.logger.Debug("autosaving hash storage", "path", s.path)
	return s.Save()
}

// Evict drops every record for which drop returns true and reports how
// many were removed.
func (s *ConsolidatedStore) Evict(drop func(types.HashRecord) bool) int {
	removed := 0
	for identity, record := range s.records {
		if drop(*record) {
			delete(s.records, identity)
			removed++
		}
	}
	return removed
}

// Records returns a sorted copy of all records held in memory.
func (s *ConsolidatedStore) Records() []types.HashRecord {
	records := make([]types.HashRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, *record)
	}
	s.sortRecords(records)
	return records
}

// Save regenerates the store file from the records that were used during
// this run, or from all records when PreserveUnused is set.
func (s *ConsolidatedStore) Save() error {
	if s.loadErr != nil {
		return fmt.Errorf("refusing to overwrite hash storage %s that failed to load: %w", s.path, s.loadErr)
	}

	records := s.survivors()
	content, err := s.render(records)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	backup := ""
	if _, err := os.Stat(s.path); err == nil {
		backup = backupPathFor(s.path)
		if err := CopyFile(s.path, backup); err != nil {
			return fmt.Errorf("failed to back up hash storage %s: %w", s.path, err)
		}
		s.logger.Debug("hash storage backed up", "path", s.path, "backup", backup)
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := s.write(content); err != nil {
		if backup != "" {
			return fmt.Errorf("failed to write hash storage %s, previous content kept in %s: %w", s.path, backup, err)
		}
		return fmt.Errorf("failed to write hash storage %s: %w", s.path, err)
	}

	if backup != "" {
		if err := os.Remove(backup); err != nil {
			s.logger.Warn("could not remove hash storage backup", "backup", backup, "error", err)
		}
	}
	s.lastSync = s.clock.Now()
	s.logger.Debug("hash storage saved", "path", s.path, "records", len(records))
	return nil
}

// write replaces the store file with content and syncs it when the file
// supports it, so the backup is only dropped once the data is on disk.
func (s *ConsolidatedStore) write(content []byte) error {
	file, err := s.create(s.path)
	if err != nil {
		return err
	}
	_, writeErr := file.Write(content)
	if writeErr == nil {
		if syncer, ok := file.(interface{ Sync() error }); ok {
			writeErr = syncer.Sync()
		}
	}
	closeErr := file.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

func (s *ConsolidatedStore) survivors() []types.HashRecord {
	records := make([]types.HashRecord, 0, len(s.records))
	for _, record := range s.records {
		if record.Touched || s.opts.PreserveUnused {
			records = append(records, *record)
		}
	}
	s.sortRecords(records)
	return records
}

func (s *ConsolidatedStore) header(count int) []string {
	if s.opts.SuppressComments {
		return nil
	}
	lines := make([]string, 0, len(s.opts.Comments)+1)
	lines = append(lines, s.opts.Comments...)
	return append(lines, fmt.Sprintf("Record count: %d", count))
}

func (s *ConsolidatedStore) render(records []types.HashRecord) ([]byte, error) {
	rendered := make([]string, len(records))
	for i, record := range records {
		path, err := RelPath(record.Path, s.path, s.opts.AbsolutePaths, s.opts.NormCase)
		if err != nil {
			return nil, fmt.Errorf("could not render path of %s: %w", record.Path, err)
		}
		rendered[i] = path
	}

	var buf bytes.Buffer
	if s.opts.JSON {
		doc := types.StoreDocument{
			Comment: s.header(len(records)),
			Data:    make([]types.StoreEntry, len(records)),
		}
		for i, record := range records {
			doc.Data[i] = types.StoreEntry{FileName: rendered[i], Hash: record.Hash}
		}
		encoder := json.NewEncoder(&buf)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode hash storage: %w", err)
		}
		return buf.Bytes(), nil
	}

	buf.WriteString(FormatComments(s.header(len(records))))
	for i, record := range records {
		buf.WriteString(record.Hash)
		buf.WriteString(" *")
		buf.WriteString(rendered[i])
		buf.WriteString("\n")
	}
	buf.WriteString(EndOfFileMarker + "\n")
	return buf.Bytes(), nil
}

// sortRecords orders records by case-folded path, or by case-folded hash
// first when SortByHash is set. Ties fall back to the raw strings so the
// order is the same on every run.
func (s *ConsolidatedStore) sortRecords(records []types.HashRecord) {
	type keyed struct {
		record  types.HashRecord
		pathKey string
		hashKey string
	}
	items := make([]keyed, len(records))
	for i, record := range records {
		items[i] = keyed{record: record, pathKey: foldCase(record.Path), hashKey: strings.ToLower(record.Hash)}
	}

	byPath := func(a, b keyed) int {
		if c := strings.Compare(a.pathKey, b.pathKey); c != 0 {
			return c
		}
		return strings.Compare(a.record.Path, b.record.Path)
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if s.opts.SortByHash {
			if c := strings.Compare(a.hashKey, b.hashKey); c != 0 {
				return c < 0
			}
			if c := strings.Compare(a.record.Hash, b.record.Hash); c != 0 {
				return c < 0
			}
		}
		return byPath(a, b) < 0
	})

	for i := range items {
		records[i] = items[i].record
	}
}

// OpenExisting loads a store that must already exist on disk.
func OpenExisting(path string, opts StoreOptions) (*ConsolidatedStore, error) {
	store, err := NewConsolidatedStore(path, opts)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(store.Path()); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoStore, store.Path())
		}
		return nil, err
	}
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}
