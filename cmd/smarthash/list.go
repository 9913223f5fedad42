package main

import (
	"errors"

	"github.com/gingerrexayers/smarthash-go/internal/smarthash/commands"
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/lib"
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func NewListCommand(v *viper.Viper) *cobra.Command {
	var options commands.StoreOptions

	cmd := &cobra.Command{
		Use:   "list <hash-file>",
		Short: "List the records of a single hash file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Logger = lib.NewCommandLogger(v.GetBool(keyVerbose))
			if err := commands.List(args[0], options); err != nil {
				return &exitError{code: storeErrorCode(err), err: err}
			}
			return nil
		},
	}

	addStoreFlags(cmd.Flags(), &options)

	return cmd
}

// storeErrorCode maps a failure of a maintenance command to an exit code.
func storeErrorCode(err error) types.ExitCode {
	switch {
	case errors.Is(err, lib.ErrFormat), errors.Is(err, lib.ErrNoStore):
		return types.ExitAppUsageError
	default:
		return types.ExitFailed
	}
}

// addStoreFlags registers the flags shared by commands reading an existing
// single hash file.
func addStoreFlags(flags *pflag.FlagSet, options *commands.StoreOptions) {
	flags.BoolVar(&options.JSON, "json", false, "Read the hash file as JSON regardless of its extension")
	flags.BoolVar(&options.NormCase, "norm-case-file-names", false, "Use case-folded file names")
	flags.BoolVar(&options.SortByHash, "sort-by-hash-value", false, "Sort records by hash value instead of file name")
}
