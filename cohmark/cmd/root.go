// Package cmd provides the command-line interface of the benchmark.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "cohmark",
	Short: "cohmark measures inter-core communication latency through " +
		"shared memory without hardware coherency.",
	Long: `cohmark exchanges packets through a shared memory region using a ` +
		`lock-free control-word handshake, with explicit cache flushes and ` +
		`invalidations standing in for the coherency traffic the hardware ` +
		`does not provide. It reports per-packet latency from a tick counter ` +
		`both sides can read.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Optional defaults from a .env file; absence is not an error.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	_ = os.Stderr.Sync()
}
