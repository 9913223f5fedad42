package commands_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gingerrexayers/smarthash-go/internal/smarthash/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverCommand(t *testing.T) {
	setup := func(t *testing.T) (string, string) {
		dir := createTestFolder(t, map[string]string{
			"hashes.sha1":              "truncated",
			"hashes.sha1.back.older":   "older snapshot\n",
			"hashes.sha1.back.newer":   "newer snapshot\n",
			"hashes.sha1.back.unknown": "",
		})
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, os.Chtimes(filepath.Join(dir, "hashes.sha1.back.unknown"), base, base))
		require.NoError(t, os.Chtimes(filepath.Join(dir, "hashes.sha1.back.older"), base.Add(time.Hour), base.Add(time.Hour)))
		require.NoError(t, os.Chtimes(filepath.Join(dir, "hashes.sha1.back.newer"), base.Add(2*time.Hour), base.Add(2*time.Hour)))
		return dir, filepath.Join(dir, "hashes.sha1")
	}

	t.Run("should restore the newest backup and keep the others", func(t *testing.T) {
		dir, storePath := setup(t)

		output := captureStdout(t, func() {
			require.NoError(t, commands.Recover(storePath, commands.RecoverOptions{}))
		})

		assert.Equal(t, "newer snapshot\n", readFile(t, storePath))
		assert.NoFileExists(t, filepath.Join(dir, "hashes.sha1.back.newer"))
		assert.FileExists(t, filepath.Join(dir, "hashes.sha1.back.older"))
		assert.Contains(t, output, "2 older backups kept")
	})

	t.Run("should delete older backups with clean", func(t *testing.T) {
		dir, storePath := setup(t)

		captureStdout(t, func() {
			require.NoError(t, commands.Recover(storePath, commands.RecoverOptions{Clean: true}))
		})

		assert.Equal(t, "newer snapshot\n", readFile(t, storePath))
		matches, err := filepath.Glob(filepath.Join(dir, "*.back.*"))
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("should do nothing without backups", func(t *testing.T) {
		dir := createTestFolder(t, map[string]string{"hashes.sha1": "intact\n"})

		output := captureStdout(t, func() {
			require.NoError(t, commands.Recover(filepath.Join(dir, "hashes.sha1"), commands.RecoverOptions{}))
		})
		assert.Contains(t, output, "Nothing to recover")
		assert.Equal(t, "intact\n", readFile(t, filepath.Join(dir, "hashes.sha1")))
	})
}
