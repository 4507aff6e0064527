package cli

import "github.com/spf13/cobra"

// newCompletionCmd creates the 'completion' command group. It replaces
// cobra's default so the help text can carry setup instructions.
func newCompletionCmd(rootCmd *cobra.Command) *cobra.Command {
	completionCmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Enable tab-completion for rescale-copy commands",
		Long: `Generate shell completion scripts to enable tab-completion for rescale-copy.

Tab-completion lets you press Tab to:
  • Auto-complete command names (e.g., "rescale-copy c<Tab>" → "copy")
  • Auto-complete flag names (e.g., "rescale-copy copy --<Tab>" → shows all flags)
  • See available subcommands

QUICK START:

  macOS with zsh (default on modern Macs):
    mkdir -p ~/.zsh/completions
    rescale-copy completion zsh > ~/.zsh/completions/_rescale-copy
    # Then add to ~/.zshrc: fpath=(~/.zsh/completions $fpath)
    # Restart terminal

  macOS with bash:
    rescale-copy completion bash > $(brew --prefix)/etc/bash_completion.d/rescale-copy
    # Restart terminal

  Linux with bash:
    rescale-copy completion bash | sudo tee /etc/bash_completion.d/rescale-copy
    # Restart terminal

For detailed instructions, use: rescale-copy completion [shell] --help`,
	}
	completionCmd.AddCommand(&cobra.Command{
		Use:   "bash",
		Short: "Generate bash completion script",
		Long: `Generate the autocompletion script for bash.

SETUP INSTRUCTIONS:

macOS:
  1. Install bash-completion (if not already installed):
       brew install bash-completion@2

  2. Generate completion script:
       rescale-copy completion bash > $(brew --prefix)/etc/bash_completion.d/rescale-copy

  3. Add to ~/.bash_profile (if not already there):
       [[ -r "$(brew --prefix)/etc/profile.d/bash_completion.sh" ]] && . "$(brew --prefix)/etc/profile.d/bash_completion.sh"

  4. Restart your terminal

Linux:
  1. Install bash-completion (if not already installed):
       # Ubuntu/Debian:
       sudo apt-get install bash-completion
       # RHEL/CentOS:
       sudo yum install bash-completion

  2. Generate completion script:
       rescale-copy completion bash | sudo tee /etc/bash_completion.d/rescale-copy

  3. Restart your terminal

QUICK TEST (temporary, current session only):
  source <(rescale-copy completion bash)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenBashCompletion(cmd.OutOrStdout())
		},
	})

	completionCmd.AddCommand(&cobra.Command{
		Use:   "zsh",
		Short: "Generate zsh completion script",
		Long: `Generate the autocompletion script for zsh.

SETUP INSTRUCTIONS:

macOS (modern Macs use zsh by default):
  1. Create completions directory:
       mkdir -p ~/.zsh/completions

  2. Generate completion script:
       rescale-copy completion zsh > ~/.zsh/completions/_rescale-copy

  3. Add to ~/.zshrc (if not already there):
       fpath=(~/.zsh/completions $fpath)
       autoload -Uz compinit && compinit

  4. Restart your terminal (or run: source ~/.zshrc)

Linux:
  1. Generate completion script:
       rescale-copy completion zsh > "${fpath[1]}/_rescale-copy"

  2. Restart your terminal

QUICK TEST (temporary, current session only):
  source <(rescale-copy completion zsh)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenZshCompletion(cmd.OutOrStdout())
		},
	})

	completionCmd.AddCommand(&cobra.Command{
		Use:   "fish",
		Short: "Generate fish completion script",
		Long: `Generate the autocompletion script for fish.

SETUP INSTRUCTIONS:

  1. Generate completion script:
       rescale-copy completion fish > ~/.config/fish/completions/rescale-copy.fish

  2. Restart your terminal

QUICK TEST (temporary, current session only):
  rescale-copy completion fish | source`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})

	completionCmd.AddCommand(&cobra.Command{
		Use:   "powershell",
		Short: "Generate PowerShell completion script",
		Long: `Generate the autocompletion script for PowerShell.

SETUP INSTRUCTIONS (Windows):

  1. Find your PowerShell profile location:
       $PROFILE

  2. Generate completion script:
       rescale-copy completion powershell >> $PROFILE

  3. Restart PowerShell

QUICK TEST (temporary, current session only):
  rescale-copy completion powershell | Out-String | Invoke-Expression`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenPowerShellCompletion(cmd.OutOrStdout())
		},
	})

	return completionCmd
}
