package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gingerrexayers/smarthash-go/internal/smarthash/commands"
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCommand(t *testing.T) {
	t.Run("should list records with current sizes", func(t *testing.T) {
		dir := createTestFolder(t, map[string]string{"big.bin": strings.Repeat("x", 2048)})
		storePath := filepath.Join(dir, "hashes.sha1")
		content := "# header\n" + sha1Hex("x") + " *big.bin\n" + sha1Hex("y") + " *gone.bin\n"
		require.NoError(t, os.WriteFile(storePath, []byte(content), 0644))

		var listErr error
		output := captureStdout(t, func() {
			listErr = commands.List(storePath, commands.StoreOptions{})
		})
		require.NoError(t, listErr)

		assert.Contains(t, output, "Hashes in \""+storePath+"\"")
		lines := strings.Split(output, "\n")
		var bigLine, goneLine string
		for _, line := range lines {
			if strings.HasSuffix(line, filepath.Join(dir, "big.bin")) {
				bigLine = line
			}
			if strings.HasSuffix(line, filepath.Join(dir, "gone.bin")) {
				goneLine = line
			}
		}
		assert.Contains(t, bigLine, "2.0 KiB")
		assert.Contains(t, goneLine, " - ")
		assert.Contains(t, output, "2 records, 2.0 KiB hashed data present, 1 missing files.")
	})

	t.Run("should read json stores by extension", func(t *testing.T) {
		dir := createTestFolder(t, map[string]string{
			"hashes.json": `{"data": [{"file_name": "a.txt", "hash": "0a"}]}`,
		})

		var listErr error
		output := captureStdout(t, func() {
			listErr = commands.List(filepath.Join(dir, "hashes.json"), commands.StoreOptions{})
		})
		require.NoError(t, listErr)
		assert.Contains(t, output, filepath.Join(dir, "a.txt"))
	})

	t.Run("should report an empty store", func(t *testing.T) {
		dir := createTestFolder(t, map[string]string{"hashes.sha1": "# End of file\n"})

		output := captureStdout(t, func() {
			require.NoError(t, commands.List(filepath.Join(dir, "hashes.sha1"), commands.StoreOptions{}))
		})
		assert.Contains(t, output, "No hashes found")
	})

	t.Run("should fail for a missing store", func(t *testing.T) {
		err := commands.List(filepath.Join(t.TempDir(), "absent.sha1"), commands.StoreOptions{})
		assert.ErrorIs(t, err, lib.ErrNoStore)
	})
}
