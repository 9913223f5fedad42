package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the 'completion' command, which prints a
// shell completion script for smarthash.
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `Prints a completion script for the given shell.

Bash (current session):
  $ source <(smarthash completion bash)

Zsh (new sessions, with compinit enabled):
  $ smarthash completion zsh > "${fpath[1]}/_smarthash"

Fish:
  $ smarthash completion fish > ~/.config/fish/completions/smarthash.fish

Powershell:
  PS> smarthash completion powershell | Out-String | Invoke-Expression

Completions cover --hash-algo values and the hash files accepted by 'recover'.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}
