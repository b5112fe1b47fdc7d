package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/cohlab/cohmark/bench"
)

var recvCmd = &cobra.Command{
	Use:   "recv",
	Short: "Run the receiving side over a named shared-memory segment.",
	Long: `recv attaches to the shared segment a send process creates, ` +
		`reports ready, and serves packets until the sender ends the run. ` +
		`The variant and policy must match the sender's.`,
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
		attachTimeout, _ := cmd.Flags().GetDuration("attach-timeout")

		if err := exp.RunReceiverMapped(segment, attachTimeout); err != nil {
			log.Fatalf("Error running receiver: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(recvCmd)
	addBenchFlags(recvCmd)
	recvCmd.Flags().String("segment", "cohmark",
		"shared-memory segment name")
	recvCmd.Flags().Duration("attach-timeout", 30*time.Second,
		"how long to wait for the sender to create the segment")
}
