package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lethalposters/pkg/output"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for lethalposters.

Besides subcommands and flags, completion offers the four output formats for
"generate --format", directories for --input and --output, and image files for
the two template flags. A typical session once completion is loaded:

  $ lethalposters init
  $ lethalposters generate --format <TAB>
  0  -- PNG - Raw
  1  -- PNG - Modified
  2  -- JPG - Raw
  3  -- JPG - Modified

Bash:
  $ source <(lethalposters completion bash)
  # Persist (Linux):
  $ lethalposters completion bash > /etc/bash_completion.d/lethalposters

Zsh:
  # compinit must be enabled in ~/.zshrc
  $ lethalposters completion zsh > "${fpath[1]}/_lethalposters"

Fish:
  $ lethalposters completion fish > ~/.config/fish/completions/lethalposters.fish

PowerShell:
  PS> lethalposters completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

// registerPathCompletions restricts file completion of the input and output
// flags shared by generate and init.
func registerPathCompletions(cmd *cobra.Command) {
	for _, name := range []string{"input", "output"} {
		if cmd.Flags().Lookup(name) != nil {
			_ = cmd.MarkFlagDirname(name)
		}
	}
	for _, name := range []string{"posters-template", "painting-template"} {
		if cmd.Flags().Lookup(name) != nil {
			_ = cmd.MarkFlagFilename(name, "png", "jpg", "jpeg")
		}
	}
	if cmd.Flags().Lookup("config") != nil {
		_ = cmd.MarkFlagFilename("config", "toml")
	}
}

// completeFormat offers every output format with its menu label.
func completeFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, 0, len(output.Formats))
	for _, f := range output.Formats {
		out = append(out, strconv.Itoa(int(f))+"\t"+f.String())
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeCompression offers common levels of both families.
func completeCompression(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	_, pngHi := output.OptimizedPNG.LevelRange()
	_, jpgHi := output.CompressedJPEG.LevelRange()
	return []string{
		"0\tPNG no compression, JPG smallest file",
		"6\tPNG default",
		strconv.Itoa(pngHi) + "\tPNG best compression",
		"85\tJPG good quality",
		strconv.Itoa(jpgHi) + "\tJPG best quality",
	}, cobra.ShellCompDirectiveNoFileComp
}
