package main

import (
	"fmt"

	"pip-api/internal/version"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pipctl %s (%s)\n", version.Version, version.Commit)
		},
	}
}
