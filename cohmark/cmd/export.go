package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/cohlab/cohmark/datarecording"
	"github.com/cohlab/cohmark/results"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-export an archived run from SQLite to CSV.",
	Run: func(cmd *cobra.Command, args []string) {
		dbPath, _ := cmd.Flags().GetString("db")
		csvPath, _ := cmd.Flags().GetString("csv")

		if dbPath == "" {
			log.Fatal("Error: --db is required")
		}

		rows, err := datarecording.ReadMeasurements(dbPath)
		if err != nil {
			log.Fatalf("Error reading archive: %v", err)
		}

		w := results.NewCSVWriter(csvPath)
		if err := w.Init(); err != nil {
			log.Fatalf("Error creating CSV: %v", err)
		}

		for _, row := range rows {
			w.Write(results.Record{
				PacketSize:        row.PacketSize,
				SenderTimestamp:   row.SenderTimestamp,
				ReceiverTimestamp: row.ReceiverTimestamp,
				DeltaTicks:        row.DeltaTicks,
				Valid:             results.ValidMarker,
			})
		}

		if err := w.Close(); err != nil {
			log.Fatalf("Error writing CSV: %v", err)
		}

		fmt.Printf("Exported %d records to %s\n", len(rows), w.Path())
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("db", "", "SQLite archive to read")
	exportCmd.Flags().String("csv", "", "CSV output path, empty generates one")
}
