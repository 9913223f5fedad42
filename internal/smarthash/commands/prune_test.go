package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gingerrexayers/smarthash-go/internal/smarthash/commands"
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneCommand(t *testing.T) {
	setup := func(t *testing.T) (string, string) {
		dir := createTestFolder(t, map[string]string{"keep.txt": "keep", "drop.txt": "drop"})
		storePath := filepath.Join(dir, "hashes.sha1")
		content := "# old header\n" + sha1Hex("drop") + " *drop.txt\n" + sha1Hex("keep") + " *keep.txt\n"
		require.NoError(t, os.WriteFile(storePath, []byte(content), 0644))
		require.NoError(t, os.Remove(filepath.Join(dir, "drop.txt")))
		return dir, storePath
	}

	t.Run("should remove records of missing files", func(t *testing.T) {
		dir, storePath := setup(t)

		var pruneErr error
		output := captureStdout(t, func() {
			pruneErr = commands.Prune(storePath, commands.PruneOptions{
				StoreOptions: commands.StoreOptions{Clock: newFakeClock()},
			})
		})
		require.NoError(t, pruneErr)

		assert.Contains(t, output, "Removing "+filepath.Join(dir, "drop.txt"))
		assert.Contains(t, output, "Removed 1 records, 1 left.")
		assert.Equal(t, []string{sha1Hex("keep") + " *keep.txt"}, recordLines(t, storePath))

		content := readFile(t, storePath)
		assert.Contains(t, content, "# Pruned at: 2024.05.17 10:30:00\n")
		assert.Contains(t, content, "# Record count: 1\n")

		backups, err := lib.FindBackups(storePath)
		require.NoError(t, err)
		assert.Empty(t, backups)
	})

	t.Run("dry run leaves the store untouched", func(t *testing.T) {
		_, storePath := setup(t)
		before := readFile(t, storePath)

		output := captureStdout(t, func() {
			require.NoError(t, commands.Prune(storePath, commands.PruneOptions{DryRun: true}))
		})
		assert.Contains(t, output, "1 of 2 records would be removed")
		assert.Equal(t, before, readFile(t, storePath))
	})

	t.Run("nothing to prune", func(t *testing.T) {
		dir := createTestFolder(t, map[string]string{"a.txt": "a"})
		storePath := filepath.Join(dir, "hashes.sha1")
		content := sha1Hex("a") + " *a.txt\n"
		require.NoError(t, os.WriteFile(storePath, []byte(content), 0644))

		output := captureStdout(t, func() {
			require.NoError(t, commands.Prune(storePath, commands.PruneOptions{}))
		})
		assert.Contains(t, output, "Nothing to prune")
		assert.Equal(t, content, readFile(t, storePath))
	})

	t.Run("corrupted store", func(t *testing.T) {
		dir := createTestFolder(t, map[string]string{"hashes.sha1": "garbage\n"})
		err := commands.Prune(filepath.Join(dir, "hashes.sha1"), commands.PruneOptions{})
		assert.ErrorIs(t, err, lib.ErrFormat)
		assert.Equal(t, "garbage\n", readFile(t, filepath.Join(dir, "hashes.sha1")))
	})
}
