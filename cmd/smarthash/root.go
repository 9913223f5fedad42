package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gingerrexayers/smarthash-go/internal/smarthash/lib"
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration keys. Each can be set in the config file or through a
// SMARTHASH_<KEY> environment variable; flags win over both.
const (
	keyHashAlgo   = "hash_algo"
	keyRetryCount = "retry_count_on_data_read_error"
	keyRetryPause = "retry_pause_on_data_read_error"
	keyAutosave   = "autosave_timeout"
	keyChunkSize  = "chunk_size"
	keyVerbose    = "verbose"
)

// defaultAutosaveTimeout is in seconds.
const defaultAutosaveTimeout = 60

// NewRootCommand builds the smarthash command tree around its own viper
// instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "smarthash",
		Short:         "Calculate file hashes and keep them next to the data.",
		Long:          "smarthash calculates hashes of files and folders and stores them in per-file sidecars or in one consolidated text or JSON file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cmd.Root())
		},
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &exitError{code: types.ExitInvalidCommandLineParams, err: err}
	})

	rootCmd.PersistentFlags().String("config", "", "config file (default: ~/.config/smarthash/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug diagnostics")
	v.BindPFlag(keyVerbose, rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(NewHashCommand(v))
	rootCmd.AddCommand(NewListCommand(v))
	rootCmd.AddCommand(NewPruneCommand(v))
	rootCmd.AddCommand(NewRecoverCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

func initConfig(v *viper.Viper, rootCmd *cobra.Command) error {
	cfg, _ := rootCmd.PersistentFlags().GetString("config")
	if cfg != "" {
		v.SetConfigFile(cfg)
	} else {
		v.AddConfigPath(configDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SMARTHASH")
	v.AutomaticEnv()
	v.SetDefault(keyHashAlgo, lib.DefaultAlgorithm)
	v.SetDefault(keyRetryCount, lib.DefaultRetryCount)
	v.SetDefault(keyRetryPause, int(lib.DefaultRetryPause.Seconds()))
	v.SetDefault(keyAutosave, defaultAutosaveTimeout)
	v.SetDefault(keyChunkSize, lib.DefaultChunkSize)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfg != "" || !errors.As(err, &notFound) {
			return &exitError{code: types.ExitInvalidCommandLineParams, err: err}
		}
	}
	return nil
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "smarthash")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "smarthash")
	}
	return ".smarthash"
}
