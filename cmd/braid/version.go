package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"braid/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE:  versionExecution,
}

func init() {
	versionCmd.Flags().Bool("verbose", false, "include commit and build date")
}

func versionExecution(cmd *cobra.Command, _ []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "braid %s\n", version.Version)
	if verbose {
		if version.GitCommit != "" {
			fmt.Fprintf(out, "commit: %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Fprintf(out, "built:  %s\n", version.BuildDate)
		}
	}
	return nil
}
