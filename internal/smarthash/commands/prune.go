package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gingerrexayers/smarthash-go/internal/smarthash/lib"
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/types"
)

// PruneOptions holds the configuration for the prune command.
type PruneOptions struct {
	StoreOptions
	// DryRun reports stale records without rewriting the store.
	DryRun bool
}

// Prune removes the records of data files that no longer exist from the
// consolidated store at storePath and saves the store.
func Prune(storePath string, options PruneOptions) error {
	absStorePath, err := filepath.Abs(storePath)
	if err != nil {
		return fmt.Errorf("could not resolve path: %w", err)
	}

	fmt.Printf("Starting prune for \"%s\"...\n", absStorePath)

	storeOptions := options.libOptions(absStorePath)
	clock := storeOptions.Clock
	if clock == nil {
		clock = lib.RealClock()
	}
	storeOptions.Comments = []string{
		"Pruned at: " + clock.Now().Format(timestampLayout),
		GeneratedByBanner,
	}

	store, err := lib.OpenExisting(absStorePath, storeOptions)
	if err != nil {
		return fmt.Errorf("failed to load hashes: %w", err)
	}

	stale := func(record types.HashRecord) bool {
		info, err := os.Stat(record.Path)
		return err != nil || info.IsDir()
	}

	staleIdentities := make(map[string]bool)
	for _, record := range store.Records() {
		if stale(record) {
			staleIdentities[record.Identity] = true
			if options.DryRun {
				fmt.Printf("  - Would remove %s\n", record.Path)
			} else {
				fmt.Printf("  - Removing %s\n", record.Path)
			}
		}
	}

	if options.DryRun {
		fmt.Printf("Dry run: %d of %d records would be removed.\n", len(staleIdentities), store.Len())
		return nil
	}

	removed := store.Evict(func(record types.HashRecord) bool {
		return staleIdentities[record.Identity]
	})

	if removed == 0 {
		fmt.Println("No stale records found. Nothing to prune.")
		return nil
	}

	if err := store.Save(); err != nil {
		return fmt.Errorf("failed to save hashes: %w", err)
	}
	fmt.Printf("Prune complete. Removed %d records, %d left.\n", removed, store.Len())
	return nil
}
