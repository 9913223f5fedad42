package lib

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/denormal/go-gitignore"
)

// IgnoreFilename is the name of the file containing user-defined ignore
// patterns, looked up in the root of every input folder.
const IgnoreFilename = ".smarthashignore"

// MaskSeparator separates several file masks given as one value.
const MaskSeparator = ";"

// InputFilter decides which files found under an input folder are hashed.
// Include masks select files; exclude masks and the folder's ignore file
// are applied afterwards to both files and directories.
type InputFilter struct {
	baseDir string
	include gitignore.GitIgnore
	exclude gitignore.GitIgnore
}

// NewInputFilter compiles the ";"-separated include and exclude masks and
// the ignore file of baseDir, if any, into a filter. An empty include mask
// includes every file.
func NewInputFilter(baseDir, includeMasks, excludeMasks string) *InputFilter {
	canonicalBaseDir, err := filepath.EvalSymlinks(baseDir)
	if err != nil {
		canonicalBaseDir = baseDir
	}

	filter := &InputFilter{baseDir: canonicalBaseDir}
	if patterns := splitMasks(includeMasks); len(patterns) > 0 {
		filter.include = compilePatterns(canonicalBaseDir, patterns)
	}

	excludes := splitMasks(excludeMasks)
	ignoreFilePath := filepath.Join(canonicalBaseDir, IgnoreFilename)
	if content, err := readIgnoreFile(ignoreFilePath); err == nil {
		excludes = append(excludes, cleanPatterns(strings.Split(content, "\n"))...)
		excludes = append(excludes, IgnoreFilename)
	}
	if len(excludes) > 0 {
		filter.exclude = compilePatterns(canonicalBaseDir, excludes)
	}
	return filter
}

// Excluded reports whether path, found while walking the filter's base
// directory, must be skipped.
func (f *InputFilter) Excluded(path string, isDir bool) bool {
	if f.exclude != nil && f.matches(f.exclude, path) {
		return true
	}
	if !isDir && f.include != nil && !f.matches(f.include, path) {
		return true
	}
	return false
}

func (f *InputFilter) matches(matcher gitignore.GitIgnore, path string) bool {
	canonicalPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		canonicalPath = path
	}

	relativePath, err := filepath.Rel(f.baseDir, canonicalPath)
	if err != nil {
		return false
	}
	// The gitignore library expects forward-slash separators, even on Windows.
	match := matcher.Match(filepath.ToSlash(relativePath))
	if match == nil {
		match = matcher.Match(canonicalPath)
	}
	return match != nil && match.Ignore()
}

func readIgnoreFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func splitMasks(masks string) []string {
	if strings.TrimSpace(masks) == "" {
		return nil
	}
	return cleanPatterns(strings.Split(masks, MaskSeparator))
}

// cleanPatterns drops blanks and comments and normalizes separators and
// directory patterns for the gitignore matcher.
func cleanPatterns(raw []string) []string {
	var patterns []string
	for _, p := range raw {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		trimmed = strings.ReplaceAll(trimmed, "\\", "/")
		if strings.HasSuffix(trimmed, "/") && !strings.HasSuffix(trimmed, "**/") {
			trimmed += "**"
		}
		patterns = append(patterns, trimmed)
	}
	return patterns
}

func compilePatterns(baseDir string, patterns []string) gitignore.GitIgnore {
	matcher := gitignore.New(
		strings.NewReader(strings.Join(patterns, "\n")),
		baseDir,
		// Keep parsing past invalid patterns.
		func(err gitignore.Error) bool { return true },
	)
	if matcher == nil {
		return gitignore.New(strings.NewReader(""), baseDir, nil)
	}
	return matcher
}
