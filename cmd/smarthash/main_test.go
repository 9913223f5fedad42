package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gingerrexayers/smarthash-go/internal/smarthash/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the command line with an isolated config directory.
func runCLI(t *testing.T, args ...string) (types.ExitCode, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var stderr bytes.Buffer
	code := run(context.Background(), args, &stderr)
	return code, stderr.String()
}

func writeData(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file1.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunHash(t *testing.T) {
	t.Run("hashes a file with the default algorithm", func(t *testing.T) {
		file := writeData(t, "qwerty1234567890")

		code, stderr := runCLI(t, "hash", "-s", "-i", file)
		assert.Equal(t, types.ExitOK, code, stderr)

		content, err := os.ReadFile(file + ".sha1")
		require.NoError(t, err)
		assert.Contains(t, string(content), "e8b0faa145c4590e3e424403e758f6d4b5347c45 *file1.txt")

		code, _ = runCLI(t, "hash", "-s", "-i", file)
		assert.Equal(t, types.ExitOKSkippedAlreadyHashed, code)
	})

	t.Run("algorithm from a config file", func(t *testing.T) {
		file := writeData(t, "a")
		config := filepath.Join(t.TempDir(), "smarthash.yaml")
		require.NoError(t, os.WriteFile(config, []byte("hash_algo: md5\n"), 0644))

		code, stderr := runCLI(t, "--config", config, "hash", "-s", "-i", file)
		assert.Equal(t, types.ExitOK, code, stderr)
		assert.FileExists(t, file+".md5")
	})

	t.Run("algorithm from the environment, overridden by the flag", func(t *testing.T) {
		file := writeData(t, "a")
		t.Setenv("SMARTHASH_HASH_ALGO", "sha256")

		code, _ := runCLI(t, "hash", "-s", "-i", file)
		assert.Equal(t, types.ExitOK, code)
		assert.FileExists(t, file+".sha256")

		code, _ = runCLI(t, "hash", "-s", "-i", file, "--hash-algo", "blake3")
		assert.Equal(t, types.ExitOK, code)
		assert.FileExists(t, file+".blake3")
	})

	t.Run("invalid command lines", func(t *testing.T) {
		file := writeData(t, "a")
		tests := map[string][]string{
			"no input":          {"hash"},
			"unknown flag":      {"hash", "--no-such-flag"},
			"unknown algorithm": {"hash", "-i", file, "--hash-algo", "crc1"},
			"exclusive stores":  {"hash", "-i", file, "--single-hash-file-name-base", "a", "--single-hash-file-name-base-json", "b"},
			"negative pause":    {"hash", "-i", file, "--pause-after-file", "-1"},
			"unknown command":   {"frobnicate"},
			"missing argument":  {"list"},
			"missing config":    {"--config", filepath.Join(t.TempDir(), "absent.yaml"), "hash", "-i", file},
		}
		for name, args := range tests {
			code, stderr := runCLI(t, args...)
			assert.Equal(t, types.ExitInvalidCommandLineParams, code, name)
			assert.True(t, strings.HasPrefix(stderr, "Error:"), name)
		}
	})
}

func TestRunMaintenance(t *testing.T) {
	t.Run("list of a missing store is a usage error", func(t *testing.T) {
		code, stderr := runCLI(t, "list", filepath.Join(t.TempDir(), "absent.sha1"))
		assert.Equal(t, types.ExitAppUsageError, code)
		assert.Contains(t, stderr, "does not exist")
	})

	t.Run("single hash file round trip through list and prune", func(t *testing.T) {
		file := writeData(t, "a")
		base := filepath.Join(filepath.Dir(file), "hashes")

		code, _ := runCLI(t, "hash", "-s", "-i", file, "--single-hash-file-name-base", base)
		require.Equal(t, types.ExitOK, code)

		code, _ = runCLI(t, "list", base+".sha1")
		assert.Equal(t, types.ExitOK, code)

		require.NoError(t, os.Remove(file))
		code, _ = runCLI(t, "prune", base+".sha1")
		assert.Equal(t, types.ExitOK, code)

		content, err := os.ReadFile(base + ".sha1")
		require.NoError(t, err)
		assert.NotContains(t, string(content), "file1.txt")
	})

	t.Run("recover without backups", func(t *testing.T) {
		code, _ := runCLI(t, "recover", filepath.Join(t.TempDir(), "hashes.sha1"))
		assert.Equal(t, types.ExitOK, code)
	})
}

func TestAlgorithmCompletions(t *testing.T) {
	suggestions, _ := algorithmCompletions(nil, nil, "")
	assert.Contains(t, suggestions, "sha1\tdefault")
	assert.Contains(t, suggestions, "blake3")
}

func TestBackupCompletions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"hashes.sha1", "hashes.sha1.back.1", "hashes.sha1.back.2", "other.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	suggestions, _ := backupCompletions(nil, nil, dir+string(filepath.Separator))
	assert.Equal(t, []string{filepath.Join(dir, "hashes.sha1") + "\t2 backups"}, suggestions)
}
