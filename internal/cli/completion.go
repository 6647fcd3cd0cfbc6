package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/pkg/codegraph/layout"
	"github.com/matzehuels/codegraph/pkg/integrations/vectorizer"
	"github.com/matzehuels/codegraph/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for codegraph.

Bash:
  $ source <(codegraph completion bash)

Zsh:
  $ codegraph completion zsh > "${fpath[1]}/_codegraph"

Fish:
  $ codegraph completion fish > ~/.config/fish/completions/codegraph.fish

PowerShell:
  PS> codegraph completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}

// registerFlagCompletions adds value completion for the enumerated flags
// that cmd defines.
func registerFlagCompletions(cmd *cobra.Command) {
	fixed := func(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		}
	}

	if cmd.Flags().Lookup("view") != nil {
		_ = cmd.RegisterFlagCompletionFunc("view", fixed(vectorizer.ViewFunctions, vectorizer.ViewComponents))
	}
	if cmd.Flags().Lookup("layout") != nil {
		names := make([]string, 0, len(layout.Strategies()))
		for _, s := range layout.Strategies() {
			names = append(names, string(s))
		}
		_ = cmd.RegisterFlagCompletionFunc("layout", fixed(names...))
	}
	if cmd.Flags().Lookup("format") != nil {
		_ = cmd.RegisterFlagCompletionFunc("format", fixed(pipeline.Formats...))
	}
	if cmd.Flags().Lookup("file") != nil {
		_ = cmd.RegisterFlagCompletionFunc("file", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
		})
	}
}
