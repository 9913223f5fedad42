package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/lib"
)

// missingSize marks records whose data file no longer exists.
const missingSize = "-"

// List prints every record of the consolidated store at storePath with the
// current size of its data file.
func List(storePath string, options StoreOptions) error {
	absStorePath, err := filepath.Abs(storePath)
	if err != nil {
		return fmt.Errorf("could not resolve absolute path for %s: %w", storePath, err)
	}

	store, err := lib.OpenExisting(absStorePath, options.libOptions(absStorePath))
	if err != nil {
		return fmt.Errorf("failed to load hashes: %w", err)
	}

	records := store.Records()
	if len(records) == 0 {
		fmt.Printf("No hashes found in \"%s\".\n", absStorePath)
		return nil
	}

	hashWidth := len("HASH")
	for _, record := range records {
		hashWidth = max(hashWidth, len(record.Hash))
	}

	fmt.Printf("Hashes in \"%s\":\n", absStorePath)
	fmt.Printf("%-*s %-12s %s\n", hashWidth, "HASH", "SIZE", "FILE")

	var totalSize int64
	missing := 0
	for _, record := range records {
		size := missingSize
		if info, err := os.Stat(record.Path); err == nil && !info.IsDir() {
			size = humanize.IBytes(uint64(info.Size()))
			totalSize += info.Size()
		} else {
			missing++
		}
		fmt.Printf("%-*s %-12s %s\n", hashWidth, record.Hash, size, record.Path)
	}

	fmt.Printf("\n%s records, %s hashed data present, %s missing files.\n",
		humanize.Comma(int64(len(records))),
		humanize.IBytes(uint64(totalSize)),
		humanize.Comma(int64(missing)),
	)
	return nil
}
