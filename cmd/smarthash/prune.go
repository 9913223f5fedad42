package main

import (
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/commands"
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/lib"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewPruneCommand(v *viper.Viper) *cobra.Command {
	var options commands.PruneOptions

	cmd := &cobra.Command{
		Use:   "prune <hash-file>",
		Short: "Remove records of files that no longer exist from a single hash file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Logger = lib.NewCommandLogger(v.GetBool(keyVerbose))
			if err := commands.Prune(args[0], options); err != nil {
				return &exitError{code: storeErrorCode(err), err: err}
			}
			return nil
		},
	}

	addStoreFlags(cmd.Flags(), &options.StoreOptions)
	cmd.Flags().BoolVar(&options.AbsolutePaths, "use-absolute-file-names", false, "Write absolute file names instead of relative ones")
	cmd.Flags().BoolVar(&options.SuppressComments, "suppress-output-file-comments", false, "Don't write comments to the hash file")
	cmd.Flags().BoolVarP(&options.DryRun, "dry-run", "n", false, "Only report the records that would be removed")

	return cmd
}
