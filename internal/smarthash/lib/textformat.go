package lib

import (
	"strings"
	"unicode/utf8"
)

// EndOfFileMarker closes every text store written by ConsolidatedStore.
const EndOfFileMarker = "# End of file"

// storedRecord is a record as found in a store file, before its path is
// resolved against the store location.
type storedRecord struct {
	line int
	path string
	hash string
}

// parseTextStore parses the line-oriented store grammar:
//
//	# comment
//	<hex hash><whitespace>*<path>
//
// Blank and comment lines are skipped; any other line is a *FormatError.
func parseTextStore(storePath string, content []byte) ([]storedRecord, error) {
	text := strings.TrimPrefix(string(content), "\ufeff")

	var records []storedRecord
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if isCommentOrBlank(line) {
			continue
		}
		hash, path, ok := parseRecordLine(line)
		if !ok {
			return nil, &FormatError{
				Path:    storePath,
				Line:    i + 1,
				Excerpt: excerpt(line),
				Reason:  "line is neither a comment nor a hash record",
			}
		}
		records = append(records, storedRecord{line: i + 1, path: path, hash: hash})
	}
	return records, nil
}

func isCommentOrBlank(line string) bool {
	trimmed := strings.TrimLeft(line, " \t\v\f")
	return trimmed == "" || trimmed[0] == '#'
}

// parseRecordLine splits "<hash> *<path>" into its parts.
func parseRecordLine(line string) (hash, path string, ok bool) {
	i := 0
	for i < len(line) && isHexDigit(line[i]) {
		i++
	}
	if i == 0 {
		return "", "", false
	}

	j := i
	for j < len(line) && isBlank(line[j]) {
		j++
	}
	if j == i || j >= len(line) || line[j] != '*' {
		return "", "", false
	}

	path = line[j+1:]
	if !isValidPath(path) {
		return "", "", false
	}
	return line[:i], path, true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}

// isValidPath accepts any non-empty UTF-8 string free of control characters.
func isValidPath(path string) bool {
	if path == "" || !utf8.ValidString(path) {
		return false
	}
	for _, r := range path {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// isHexString reports whether s is a non-empty hexadecimal string.
func isHexString(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}
