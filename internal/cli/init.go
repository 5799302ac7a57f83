package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/dirmap/internal/integration"
)

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Print the zsh integration script",
		Long: heredoc.Doc(`
			Print a zsh script defining 'dm', which pipes the largest directories to
			fzf and changes into the selected one, and 'dmf', which does the same for
			files and prints the selection.

			Add this to ~/.zshrc:

			  eval "$(dirmap init)"
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rendered, err := integration.Render()
			if err != nil {
				return fmt.Errorf("rendering integration script: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)

			return err
		},
	}
}
