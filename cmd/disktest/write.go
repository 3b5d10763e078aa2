package main

import (
	"github.com/spf13/cobra"
)

var writeCmd = &cobra.Command{
	Use:   "write <path>",
	Short: "Write the deterministic byte stream to a device or file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if globalFlags.randomSeed {
			seed, err := generateRandomSeed()
			if err != nil {
				return err
			}
			globalFlags.seed = seed
		}

		rs, err := prepareRun(args[0], true)
		if err != nil {
			return err
		}
		defer rs.close()

		if globalFlags.randomSeed {
			rs.log.Infof("generated run seed %s; pass it to verify to check this write later", globalFlags.seed)
		}

		_, err = rs.drv.Write(rs.ctx, globalFlags.seek, globalFlags.maxBytes)
		return err
	},
}

func init() {
	writeCmd.Flags().BoolVar(&globalFlags.randomSeed, "random-seed", false, "generate a fresh random seed instead of requiring --seed; it is printed so it can be reused with verify")
	rootCmd.AddCommand(writeCmd)
}
