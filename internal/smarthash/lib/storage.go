package lib

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Autosave intervals with a special meaning.
const (
	// AutosaveDisabled persists records only on the final Save.
	AutosaveDisabled = -1
	// AutosaveEverySet persists records after every Set.
	AutosaveEverySet = 0
)

// RecordStore persists the mapping from data files to their hashes.
type RecordStore interface {
	// Load reads previously saved records. A missing store is empty.
	Load() error

	// Save persists the records kept in memory.
	Save() error

	// RecordPath returns the file that holds (or would hold) the record
	// for dataFile. It is meant for reporting; use Has to test for a record.
	RecordPath(dataFile string) string

	// Has reports whether a record for dataFile exists.
	Has(dataFile string) (bool, error)

	// Set stores hash as the record for dataFile, replacing any previous one.
	Set(dataFile, hash string) error
}

// StoreOptions configures how records are rendered and persisted.
type StoreOptions struct {
	// AbsolutePaths writes absolute data file paths instead of paths
	// relative to the record file.
	AbsolutePaths bool
	// NormCase case-folds data file paths for both keys and output.
	NormCase bool
	// SortByHash orders consolidated records by hash value, then path.
	SortByHash bool
	// PreserveUnused keeps consolidated records that were neither read nor
	// written during this run.
	PreserveUnused bool
	// AutosaveInterval is in seconds; see AutosaveDisabled and AutosaveEverySet.
	AutosaveInterval int
	// Comments are header lines, written without the leading "# ".
	Comments []string
	// SuppressComments omits the header entirely.
	SuppressComments bool
	// JSON selects the JSON encoding for a consolidated store.
	JSON bool
	// Algorithm names the hash algorithm of the stored digests. When set,
	// loaded digests of the wrong length are logged.
	Algorithm string

	Logger *slog.Logger
	Clock  Clock
}

func (o StoreOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return discardLogger()
}

// digestLen returns the expected hex length of stored digests, or 0 when
// it is unknown.
func (o StoreOptions) digestLen() int {
	if o.Algorithm == "" {
		return 0
	}
	size, err := DigestSize(o.Algorithm)
	if err != nil {
		return 0
	}
	return size
}

func (o StoreOptions) clock() Clock {
	if o.Clock != nil {
		return o.Clock
	}
	return RealClock()
}

// WithStore loads store, runs fn and saves store on every exit path,
// including when fn fails or panics. Errors from fn and from the save are
// both reported.
func WithStore(store RecordStore, fn func(RecordStore) error) (err error) {
	if err := store.Load(); err != nil {
		return err
	}
	defer func() {
		if saveErr := store.Save(); saveErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to save hashes: %w", saveErr))
		}
	}()
	return fn(store)
}

// FormatComments renders header lines as "# "-prefixed text lines.
func FormatComments(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			b.WriteString("#\n")
			continue
		}
		b.WriteString("# ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// checkDistinct fails with a *UsageError when writing a record for
// dataFile into recordFile would overwrite the data file itself.
func checkDistinct(dataFile, recordFile string, normCase bool) error {
	same, err := SamePath(dataFile, recordFile, normCase)
	if err != nil {
		return err
	}
	if same {
		return &UsageError{DataFile: dataFile, RecordFile: recordFile}
	}
	return nil
}

// checkStorable fails with a *UsageError when rendered, the form of
// dataFile written into recordFile, would not parse back on load.
func checkStorable(dataFile, rendered, recordFile string) error {
	if !isValidPath(rendered) {
		return &UsageError{
			DataFile:   dataFile,
			RecordFile: recordFile,
			Reason:     "file name contains control characters or invalid UTF-8",
		}
	}
	return nil
}
