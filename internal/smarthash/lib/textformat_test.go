package lib

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTextStore(t *testing.T) {
	t.Run("records, comments and blank lines", func(t *testing.T) {
		content := "\ufeff# Generated by smarthash\r\n" +
			"\r\n" +
			"e8b0faa145c4590e3e424403e758f6d4b5347c45 *file1.txt\r\n" +
			"   # indented comment\n" +
			"D41D8CD98F00B204E9800998ECF8427E\t*dir/with spaces/empty file\n" +
			"# End of file\n"

		records, err := parseTextStore("store.sha1", []byte(content))
		require.NoError(t, err)
		assert.Equal(t, []storedRecord{
			{line: 3, path: "file1.txt", hash: "e8b0faa145c4590e3e424403e758f6d4b5347c45"},
			{line: 5, path: "dir/with spaces/empty file", hash: "D41D8CD98F00B204E9800998ECF8427E"},
		}, records)
	})

	t.Run("empty content", func(t *testing.T) {
		records, err := parseTextStore("store.sha1", nil)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	tests := []struct {
		name string
		line string
	}{
		{name: "no separator", line: "e8b0faa145c4590e3e424403e758f6d4b5347c45file1.txt"},
		{name: "no star", line: "e8b0faa1 file1.txt"},
		{name: "no whitespace before star", line: "e8b0faa1*file1.txt"},
		{name: "non-hex hash", line: "xyz *file1.txt"},
		{name: "empty path", line: "e8b0faa1 *"},
		{name: "control character in path", line: "e8b0faa1 *file\x01.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "# header\n" + tt.line + "\n"
			_, err := parseTextStore("store.sha1", []byte(content))
			require.ErrorIs(t, err, ErrFormat)

			var formatErr *FormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, 2, formatErr.Line)
			assert.Equal(t, "store.sha1", formatErr.Path)
			assert.Equal(t, tt.line, formatErr.Excerpt)
		})
	}

	t.Run("long lines are truncated in the error", func(t *testing.T) {
		line := strings.Repeat("z", 500)
		_, err := parseTextStore("store.sha1", []byte(line))

		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Len(t, formatErr.Excerpt, maxExcerptLen)
		assert.Contains(t, formatErr.Error(), "line 1")
	})
}
