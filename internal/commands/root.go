package commands

import (
	"github.com/spf13/cobra"

	"github.com/algebank/algebank/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "algebank",
		Short:   "Matrix algebra kernel and bank simulation",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newMatrixCommand())
	rootCmd.AddCommand(newSimulateCommand())

	return rootCmd
}
