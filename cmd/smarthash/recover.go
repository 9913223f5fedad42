package main

import (
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/commands"
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/types"
	"github.com/spf13/cobra"
)

func NewRecoverCommand() *cobra.Command {
	var options commands.RecoverOptions

	cmd := &cobra.Command{
		Use:               "recover <hash-file>",
		Short:             "Restore a single hash file from the backup left by an interrupted save.",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: backupCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := commands.Recover(args[0], options); err != nil {
				return &exitError{code: types.ExitFailed, err: err}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&options.Clean, "clean", false, "Delete older backups after restoring the newest one")

	return cmd
}
