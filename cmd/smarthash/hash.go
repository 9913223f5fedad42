package main

import (
	"fmt"
	"time"

	"github.com/gingerrexayers/smarthash-go/internal/smarthash/commands"
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/lib"
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewHashCommand(v *viper.Viper) *cobra.Command {
	var options commands.HashOptions
	var pauseSeconds int

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Calculate hashes for files and folders.",
		Example: `  smarthash hash -i movie.mkv
  smarthash hash -d photos --single-hash-file-name-base photos/hashes --hash-algo sha256`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			options.Algorithm = v.GetString(keyHashAlgo)
			options.RetryCount = v.GetInt(keyRetryCount)
			options.RetryPause = time.Duration(v.GetInt(keyRetryPause)) * time.Second
			options.AutosaveInterval = v.GetInt(keyAutosave)
			options.ChunkSize = v.GetInt(keyChunkSize)
			options.PauseAfterFile = time.Duration(pauseSeconds) * time.Second
			if err := options.Validate(); err != nil {
				return &exitError{code: types.ExitInvalidCommandLineParams, err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Stdout = cmd.OutOrStdout()
			options.Logger = lib.NewCommandLogger(v.GetBool(keyVerbose))

			code, err := commands.Hash(cmd.Context(), options)
			if err != nil || code != types.ExitOK {
				return &exitError{code: code, err: err}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&options.InputFiles, "input-file", "i", nil, "Input file; can be repeated")
	flags.StringArrayVarP(&options.InputFolders, "input-folder", "d", nil, "Input folder, handled recursively; can be repeated")
	flags.StringVar(&options.IncludeMasks, "input-folder-file-mask-include", "", fmt.Sprintf("File masks to include from input folders, separated with %q", lib.MaskSeparator))
	flags.StringVar(&options.ExcludeMasks, "input-folder-file-mask-exclude", "", fmt.Sprintf("File masks to exclude from input folders, applied after the include masks, separated with %q", lib.MaskSeparator))
	flags.StringVarP(&options.OutputPostfix, "hash-file-name-output-postfix", "p", "", "Postfix appended to the end of hash file names")
	flags.String("hash-algo", lib.DefaultAlgorithm, "Hash algorithm")
	flags.BoolVarP(&options.SuppressOutput, "suppress-console-reporting-output", "s", false, "Suppress progress reporting on the console")
	flags.IntVar(&pauseSeconds, "pause-after-file", 0, "Pause after every hashed file, in seconds")
	flags.Int("retry-count-on-data-read-error", lib.DefaultRetryCount, "Number of read attempts on data read error")
	flags.Int("retry-pause-on-data-read-error", int(lib.DefaultRetryPause.Seconds()), "Pause before retrying on data read error, in seconds")
	flags.Int("autosave-timeout", defaultAutosaveTimeout, "Save a single hash file every given number of seconds; 0 saves after every file, -1 only at the end")
	flags.Int("chunk-size", lib.DefaultChunkSize, "Read buffer size in bytes")
	flags.BoolVarP(&options.ForceCalc, "force-calc-hash", "f", false, "Calculate hashes even if they are already stored")
	flags.BoolVar(&options.AddTimestamp, "add-output-file-name-timestamp", false, "Add the run timestamp to hash file names")
	flags.BoolVar(&options.SuppressComments, "suppress-output-file-comments", false, "Don't write comments to hash files")
	flags.StringArrayVar(&options.Comments, "comment", nil, "Extra comment line for hash files; can be repeated")
	flags.BoolVar(&options.AbsolutePaths, "use-absolute-file-names", false, "Write absolute file names instead of relative ones")
	flags.StringVar(&options.SingleFileBase, "single-hash-file-name-base", "", "Store all hashes in one text file with this name base")
	flags.StringVar(&options.SingleFileBaseJSON, "single-hash-file-name-base-json", "", "Store all hashes in one JSON file with this name base")
	flags.BoolVar(&options.SuppressPostfix, "suppress-hash-file-name-postfix", false, "Don't add the algorithm name to hash file names")
	flags.BoolVar(&options.PreserveUnused, "preserve-unused-hash-records", false, "Keep records of files not handled in this run in a single hash file")
	flags.BoolVar(&options.NormCase, "norm-case-file-names", false, "Use case-folded file names")
	flags.BoolVar(&options.SortByHash, "sort-by-hash-value", false, "Sort single hash file records by hash value instead of file name")

	v.BindPFlag(keyHashAlgo, flags.Lookup("hash-algo"))
	v.BindPFlag(keyRetryCount, flags.Lookup("retry-count-on-data-read-error"))
	v.BindPFlag(keyRetryPause, flags.Lookup("retry-pause-on-data-read-error"))
	v.BindPFlag(keyAutosave, flags.Lookup("autosave-timeout"))
	v.BindPFlag(keyChunkSize, flags.Lookup("chunk-size"))

	cmd.RegisterFlagCompletionFunc("hash-algo", algorithmCompletions)

	return cmd
}
