package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/cohlab/cohmark/bench"
	"github.com/cohlab/cohmark/monitoring"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark with both sides in one process.",
	Long: `run sweeps the packet sizes with the sender and the receiver in ` +
		`one process, each seeing the shared region through its own ` +
		`simulated cache. The coherent baseline is available with --coherent.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := benchConfig(cmd)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		exp, err := bench.NewExperiment(cfg)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		if port, _ := cmd.Flags().GetInt("monitor-port"); port != 0 {
			monitor := monitoring.NewMonitor().WithPortNumber(port)

			if open, _ := cmd.Flags().GetBool("browser"); open {
				monitor.WithBrowser()
			}

			monitor.StartServer()
			exp.WithMonitor(monitor)
		}

		summary, err := exp.Run()
		if err != nil {
			log.Fatalf("Error running benchmark: %v", err)
		}

		printSummary(summary)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addBenchFlags(runCmd)
	runCmd.Flags().Int("monitor-port", 0,
		"serve run progress on this port, 0 disables")
	runCmd.Flags().Bool("browser", false,
		"open the monitor page in the default browser")
}
