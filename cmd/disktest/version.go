package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags="-X main.version=vX.Y.Z".
var version = "v0.0.0-unset"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the disktest version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "disktest %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
