package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gingerrexayers/smarthash-go/internal/smarthash/lib"
)

// RecoverOptions holds the configuration for the recover command.
type RecoverOptions struct {
	// Clean deletes the older backups once the newest one is restored.
	Clean bool
}

// Recover restores the newest backup left next to the store at storePath
// by an interrupted save.
func Recover(storePath string, options RecoverOptions) error {
	absStorePath, err := filepath.Abs(storePath)
	if err != nil {
		return fmt.Errorf("could not resolve path: %w", err)
	}

	backups, err := lib.FindBackups(absStorePath)
	if err != nil {
		return fmt.Errorf("failed to look for backups: %w", err)
	}
	if len(backups) == 0 {
		fmt.Printf("No backups found for \"%s\". Nothing to recover.\n", absStorePath)
		return nil
	}

	newest := backups[0]
	fmt.Printf("Restoring \"%s\" from \"%s\"...\n", absStorePath, newest)
	if err := lib.CopyFile(newest, absStorePath); err != nil {
		return fmt.Errorf("failed to restore %s: %w", absStorePath, err)
	}
	if err := os.Remove(newest); err != nil {
		return fmt.Errorf("failed to remove restored backup %s: %w", newest, err)
	}

	if options.Clean {
		for _, backup := range backups[1:] {
			if err := os.Remove(backup); err != nil {
				return fmt.Errorf("failed to remove backup %s: %w", backup, err)
			}
			fmt.Printf("  - Removed older backup \"%s\"\n", backup)
		}
	} else if len(backups) > 1 {
		fmt.Printf("%d older backups kept. Use --clean to remove them.\n", len(backups)-1)
	}

	fmt.Println("Recovery complete.")
	return nil
}
