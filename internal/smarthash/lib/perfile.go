package lib

import (
	"fmt"
	"os"
)

// PerFileStore keeps one record file next to every data file, named
// "<data file><suffix>". It holds no state between calls, so Load and Save
// do nothing.
type PerFileStore struct {
	suffix string
	header string
	opts   StoreOptions
}

// NewPerFileStore returns a store writing "<data file><suffix>" records.
// The suffix normally starts with a dot, e.g. ".sha1".
func NewPerFileStore(suffix string, opts StoreOptions) *PerFileStore {
	s := &PerFileStore{suffix: suffix, opts: opts}
	if !opts.SuppressComments {
		s.header = FormatComments(opts.Comments)
	}
	return s
}

func (s *PerFileStore) Load() error { return nil }

func (s *PerFileStore) Save() error { return nil }

// RecordPath returns the sidecar record file of dataFile.
func (s *PerFileStore) RecordPath(dataFile string) string {
	return dataFile + s.suffix
}

// Has reports whether the sidecar record file exists. A directory in its
// place is an error.
func (s *PerFileStore) Has(dataFile string) (bool, error) {
	recordFile := s.RecordPath(dataFile)
	if err := checkDistinct(dataFile, recordFile, s.opts.NormCase); err != nil {
		return false, err
	}

	info, err := os.Stat(recordFile)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("path %q is a directory and can't be used to save hash value", recordFile)
	}
	return true, nil
}

// Set writes the sidecar record file: the header, then one
// "<hash> *<path>" line.
func (s *PerFileStore) Set(dataFile, hash string) error {
	recordFile := s.RecordPath(dataFile)
	if err := checkDistinct(dataFile, recordFile, s.opts.NormCase); err != nil {
		return err
	}

	rendered, err := RelPath(dataFile, recordFile, s.opts.AbsolutePaths, s.opts.NormCase)
	if err != nil {
		return fmt.Errorf("could not render path of %s: %w", dataFile, err)
	}
	if err := checkStorable(dataFile, rendered, recordFile); err != nil {
		return err
	}

	content := s.header + hash + " *" + rendered + "\n"
	if err := os.WriteFile(recordFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write hash file %s: %w", recordFile, err)
	}
	s.opts.logger().Debug("hash file written", "path", recordFile)
	return nil
}
