package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/piemenu/pkg/session"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for piemenu.

Besides commands and flags, the scripts complete provider IDs (publish,
tree --provider, --providers), output formats and click buttons.

Bash:
  $ source <(piemenu completion bash)

Zsh:
  $ piemenu completion zsh > "${fpath[1]}/_piemenu"

Fish:
  $ piemenu completion fish > ~/.config/fish/completions/piemenu.fish

PowerShell:
  PS> piemenu completion powershell | Out-String | Invoke-Expression
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

	return cmd
}

type completeFunc = func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective)

// registerCompletions attaches value completions to the flags and
// arguments of every command under root.
func (c *CLI) registerCompletions(root *cobra.Command) {
	_ = root.RegisterFlagCompletionFunc("providers", c.completeProviderList)

	var visit func(cmd *cobra.Command)
	visit = func(cmd *cobra.Command) {
		flags := cmd.Flags()
		if flags.Lookup("format") != nil {
			if cmd.Name() == "tree" {
				_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletions(formatDOT, formatSVG, formatPNG, formatPDF))
			} else {
				_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletions(formatJSON, formatYAML))
			}
		}
		if flags.Lookup("click") != nil {
			_ = cmd.RegisterFlagCompletionFunc("click", fixedCompletions("left", "right", "middle", "boundary"))
		}
		if flags.Lookup("provider") != nil {
			_ = cmd.RegisterFlagCompletionFunc("provider", c.completeProviders)
		}
		for _, sub := range cmd.Commands() {
			visit(sub)
		}
	}
	visit(root)

	if publish, _, err := root.Find([]string{"publish"}); err == nil && publish != root {
		publish.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return c.completeProviders(cmd, args, toComplete)
		}
	}
}

func fixedCompletions(values ...string) completeFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeProviders offers the providers enabled by the config, or the
// defaults when the config cannot be read.
func (c *CLI) completeProviders(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return c.knownProviders(), cobra.ShellCompDirectiveNoFileComp
}

// completeProviderList completes the last entry of a comma-separated list.
func (c *CLI) completeProviderList(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
	}
	var out []string
	for _, id := range session.DefaultProviders {
		if !strings.Contains(","+prefix, ","+id+",") {
			out = append(out, prefix+id)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func (c *CLI) knownProviders() []string {
	cfg, err := session.LoadConfig(c.configPath)
	if err != nil {
		return session.DefaultProviders
	}
	return cfg.Providers
}
