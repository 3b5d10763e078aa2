package main

import (
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Verify a device or file still holds the deterministic byte stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := prepareRun(args[0], false)
		if err != nil {
			return err
		}
		defer rs.close()

		_, err = rs.drv.Verify(rs.ctx, globalFlags.seek, globalFlags.maxBytes)
		return err
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
