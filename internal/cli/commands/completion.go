package commands

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the completion command for shell completions
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for the algodoc CLI.

To load completions:

Bash:

  $ source <(algodoc completion bash)

Zsh:

  $ algodoc completion zsh > "${fpath[1]}/_algodoc"

Fish:

  $ algodoc completion fish | source

PowerShell:

  PS> algodoc completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}

	return cmd
}

// completeIDs completes the first positional argument with the algorithm
// ids of the configured package.
func completeIDs(a *app) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		if a.scanner == nil {
			if err := a.setup(cmd); err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
		}
		snap, err := a.scanner.Snapshot(cmd.Context(), a.cfg.Library.Package)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		var ids []string
		for _, alg := range snap.Algorithms() {
			if strings.HasPrefix(alg.ID, toComplete) {
				ids = append(ids, alg.ID)
			}
		}
		sort.Strings(ids)
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}
