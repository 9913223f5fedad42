package lib

import (
	"os"
	"path/filepath"

	"golang.org/x/text/cases"
)

// AbsPath returns the cleaned absolute form of path with an upper-case
// drive letter, so "c:\x" and "C:\x" produce the same key.
func AbsPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return upperDriveLetter(abs), nil
}

// CanonicalPath returns the comparison key for a file reference: its
// absolute path, case-folded when normCase is set.
func CanonicalPath(path string, normCase bool) (string, error) {
	abs, err := AbsPath(path)
	if err != nil {
		return "", err
	}
	if normCase {
		return foldCase(abs), nil
	}
	return abs, nil
}

// SamePath reports whether two references point at the same file. Paths are
// compared in canonical form, case-folded only when normCase is set; when
// both files exist os.SameFile also catches symlinks and case-insensitive
// file systems.
func SamePath(a, b string, normCase bool) (bool, error) {
	ca, err := CanonicalPath(a, normCase)
	if err != nil {
		return false, err
	}
	cb, err := CanonicalPath(b, normCase)
	if err != nil {
		return false, err
	}
	if ca == cb {
		return true, nil
	}

	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return false, nil
	}
	return os.SameFile(infoA, infoB), nil
}

// RelPath renders dataFile the way it is written into the record file
// recordFile: relative to the record file's directory unless absolute is
// requested, and case-folded when normCase is set. If no relative path
// exists (different volumes) the absolute path is used.
func RelPath(dataFile, recordFile string, absolute, normCase bool) (string, error) {
	dataAbs, err := AbsPath(dataFile)
	if err != nil {
		return "", err
	}

	rendered := dataAbs
	if !absolute {
		recordAbs, err := AbsPath(recordFile)
		if err != nil {
			return "", err
		}
		if rel, err := filepath.Rel(filepath.Dir(recordAbs), dataAbs); err == nil {
			rendered = rel
		}
	}

	if normCase {
		rendered = foldCase(rendered)
	}
	return rendered, nil
}

// ResolvePath turns a path read from a record file back into an absolute
// path. Relative paths are relative to the record file's directory.
func ResolvePath(stored, recordFile string) (string, error) {
	if filepath.IsAbs(stored) || filepath.VolumeName(stored) != "" {
		return AbsPath(stored)
	}
	recordAbs, err := AbsPath(recordFile)
	if err != nil {
		return "", err
	}
	return AbsPath(filepath.Join(filepath.Dir(recordAbs), stored))
}

// foldCase applies Unicode simple case folding. A new Caser is created per
// call because cases.Caser keeps state between calls.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

func upperDriveLetter(path string) string {
	if len(path) >= 2 && path[1] == ':' {
		c := path[0]
		if c >= 'a' && c <= 'z' {
			return string(c-'a'+'A') + path[1:]
		}
	}
	return path
}
