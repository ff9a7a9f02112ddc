package daemon

import (
	"github.com/spf13/cobra"

	"github.com/commitd-io/commitd/registry/config"
	"github.com/commitd-io/commitd/version"
)

// NewRootCmd creates a new root command for commitd. It is called once in the main function.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "commitd",
		Short:         "A daemon program for coordinating commit-reveal flows (commitd).",
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().String(homeFlag, config.DefaultCommitdDir, "The application home directory")

	rootCmd.AddCommand(
		NewInitCmd(),
		NewStartCmd(),
		NewCommitCmd(),
		NewCommitFromCmd(),
		NewRevealCmd(),
		NewListCmd(),
		version.CommandVersion("commitd"),
	)

	return rootCmd
}
