package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gingerrexayers/smarthash-go/internal/smarthash/lib"
	"github.com/spf13/cobra"
)

// algorithmCompletions completes --hash-algo from the algorithm registry.
func algorithmCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var suggestions []string
	for _, name := range lib.Algorithms() {
		suggestion := name
		if name == lib.DefaultAlgorithm {
			suggestion += "\tdefault"
		}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}

// backupCompletions suggests the hash files that have backups left next to
// them, in the directory being completed.
func backupCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// This completion function is for the first argument only.
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	dir := filepath.Dir(toComplete)
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Don't return an error, just fail to complete.
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	counts := make(map[string]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		target, ok := lib.BackupTarget(entry.Name())
		if !ok {
			continue
		}
		if dir != "." {
			target = filepath.Join(dir, target)
		}
		counts[target]++
	}

	var suggestions []string
	for target, count := range counts {
		suggestions = append(suggestions, fmt.Sprintf("%s\t%d backups", target, count))
	}
	sort.Strings(suggestions)
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}
