package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/cohlab/cohmark/bench"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Run the sending side over a named shared-memory segment.",
	Long: `send creates the shared segment, waits for a recv process to ` +
		`report ready, sweeps the packet sizes and drains the results the ` +
		`receiver left in the region.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := benchConfig(cmd)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		exp, err := bench.NewExperiment(cfg)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		segment := stringSetting(cmd, "segment", envSegment)

		summary, err := exp.RunSenderMapped(segment)
		if err != nil {
			log.Fatalf("Error running sender: %v", err)
		}

		printSummary(summary)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	addBenchFlags(sendCmd)
	sendCmd.Flags().String("segment", "cohmark",
		"shared-memory segment name")
}
