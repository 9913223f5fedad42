package lib

import (
	"errors"
	"fmt"
)

var (
	// ErrUserInterrupted is returned when the caller's context is cancelled
	// while a file is being read or a pause is in progress.
	ErrUserInterrupted = errors.New("program interrupted by user")

	// ErrDataRead matches every *DataReadError.
	ErrDataRead = errors.New("data read error")

	// ErrFormat matches every *FormatError.
	ErrFormat = errors.New("invalid hash storage format")

	// ErrUsage matches every *UsageError.
	ErrUsage = errors.New("incorrect application usage")

	// ErrNoStore is returned by OpenExisting when the store file is missing.
	ErrNoStore = errors.New("hash storage does not exist")

	// ErrUnknownAlgorithm is returned for hash algorithm names missing from the registry.
	ErrUnknownAlgorithm = errors.New("unknown hash algorithm")
)

// DataReadError reports that a file could not be read after all retry
// attempts. Callers skip the file and continue with the others.
type DataReadError struct {
	Path     string
	Attempts int
	Err      error
}

func (e *DataReadError) Error() string {
	return fmt.Sprintf("failed to read %q after %d attempt(s): %v", e.Path, e.Attempts, e.Err)
}

func (e *DataReadError) Unwrap() error { return e.Err }

func (e *DataReadError) Is(target error) bool { return target == ErrDataRead }

// maxExcerptLen bounds the offending line quoted in a FormatError.
const maxExcerptLen = 200

// FormatError reports a malformed store file. Line is 1-based and zero when
// the problem is not tied to a single line (JSON stores).
type FormatError struct {
	Path    string
	Line    int
	Excerpt string
	Reason  string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("hash storage %q, line %d: %s: %q", e.Path, e.Line, e.Reason, e.Excerpt)
	}
	if e.Excerpt != "" {
		return fmt.Sprintf("hash storage %q: %s: %q", e.Path, e.Reason, e.Excerpt)
	}
	return fmt.Sprintf("hash storage %q: %s", e.Path, e.Reason)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// UsageError reports a data file that can't get a record in RecordFile:
// either both resolve to the same path, so writing the record would
// overwrite the data, or Reason says why the name can't be stored.
type UsageError struct {
	DataFile   string
	RecordFile string
	Reason     string
}

func (e *UsageError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("data file %q can't be recorded in %q: %s", e.DataFile, e.RecordFile, e.Reason)
	}
	return fmt.Sprintf("data file %q and hash file %q are the same file", e.DataFile, e.RecordFile)
}

func (e *UsageError) Is(target error) bool { return target == ErrUsage }

// excerpt truncates a line to maxExcerptLen runes for error messages.
func excerpt(line string) string {
	runes := []rune(line)
	if len(runes) <= maxExcerptLen {
		return line
	}
	return string(runes[:maxExcerptLen])
}
