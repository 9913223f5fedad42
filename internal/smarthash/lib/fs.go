package lib

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// backupInfix separates a store path from the random id of its backup.
const backupInfix = ".back."

// CopyFile copies src to dst, keeping the permission bits of src. If dst
// exists it is overwritten. The copy is synced before returning.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	info, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	destFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// backupPathFor returns a fresh sibling path for a pre-save snapshot of
// target: "<target>.back.<uuid>".
func backupPathFor(target string) string {
	return target + backupInfix + uuid.NewString()
}

// IsBackupOf reports whether path names a backup of target.
func IsBackupOf(path, target string) bool {
	return strings.HasPrefix(path, target+backupInfix) && len(path) > len(target+backupInfix)
}

// BackupTarget returns the store path a backup was taken from.
func BackupTarget(path string) (string, bool) {
	i := strings.LastIndex(path, backupInfix)
	if i <= 0 || i+len(backupInfix) == len(path) {
		return "", false
	}
	return path[:i], true
}

// FindBackups returns the backups left next to target by interrupted saves,
// newest first.
func FindBackups(target string) ([]string, error) {
	target = filepath.Clean(target)
	entries, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type backup struct {
		path    string
		modTime int64
	}
	var backups []backup
	for _, entry := range entries {
		path := filepath.Join(filepath.Dir(target), entry.Name())
		if entry.IsDir() || !IsBackupOf(path, target) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{path: path, modTime: info.ModTime().UnixNano()})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].modTime != backups[j].modTime {
			return backups[i].modTime > backups[j].modTime
		}
		return backups[i].path < backups[j].path
	})

	paths := make([]string, len(backups))
	for i, b := range backups {
		paths[i] = b.path
	}
	return paths, nil
}
