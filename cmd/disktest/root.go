package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "disktest",
	Short: "Write and verify a deterministic pseudo-random byte stream against a block device",
	Long: `disktest writes a seed-derived pseudo-random byte stream to a device or file and can
later verify the device still holds exactly that stream, to catch corruption, bad sectors, or
counterfeit storage that silently wraps or truncates.`,
}

// globalFlags are shared by both the write and verify subcommands.
var globalFlags struct {
	seed        string
	workers     int
	generator   string
	configPath  string
	directIO    bool
	metricsAddr string
	seek        uint64
	maxBytes    uint64
	randomSeed  bool
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&globalFlags.seed, "seed", "s", "", "seed string the byte stream is derived from (required)")
	pf.IntVarP(&globalFlags.workers, "workers", "j", 0, "number of parallel worker streams (0 = one per CPU)")
	pf.StringVarP(&globalFlags.generator, "generator", "g", "chacha12", "keystream generator: chacha8, chacha12, chacha20, or crc")
	pf.StringVarP(&globalFlags.configPath, "config", "c", "", "optional HuJSON config file; flags override its values")
	pf.BoolVar(&globalFlags.directIO, "direct-io", false, "request O_DIRECT, falling back to buffered I/O if the filesystem rejects it")
	pf.StringVar(&globalFlags.metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9110)")
	pf.Uint64Var(&globalFlags.seek, "seek", 0, "byte offset to start at, rounded down to the nearest chunk boundary")
	pf.Uint64Var(&globalFlags.maxBytes, "bytes", ^uint64(0), "maximum number of bytes to process (default: until end of device)")
}

// newLogger builds the structured logger shared by the CLI's own messages and the pipeline
// core's injected Warner.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

// Execute runs the root command, exiting the process with a non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "disktest: %v\n", err)
		os.Exit(1)
	}
}
