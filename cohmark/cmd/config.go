package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cohlab/cohmark/bench"
	"github.com/cohlab/cohmark/protocol"
)

// Environment variables consulted for flags the user did not set, typically
// loaded from a .env file.
const (
	envVariant    = "COHMARK_VARIANT"
	envPolicy     = "COHMARK_POLICY"
	envIterations = "COHMARK_ITERATIONS"
	envSegment    = "COHMARK_SEGMENT"
)

func addBenchFlags(cmd *cobra.Command) {
	cmd.Flags().String("variant", "tcm",
		"region geometry, ddr or tcm")
	cmd.Flags().String("policy", "invalidate",
		"payload handling, invalidate or checksum")
	cmd.Flags().Bool("coherent", false,
		"disable the simulated caches, coherent baseline")
	cmd.Flags().Int("iterations", 0,
		"packets per size, 0 for the variant default")
	cmd.Flags().IntSlice("sizes", nil,
		"packet sizes to sweep, empty for the variant default")
	cmd.Flags().Duration("settle", 100*time.Microsecond,
		"pause between consecutive packets")
	cmd.Flags().Duration("ack-timeout", 10*time.Millisecond,
		"per-packet ack wait bound")
	cmd.Flags().String("csv", "", "CSV output path")
	cmd.Flags().String("db", "", "SQLite archive path")
}

// stringSetting reads a flag, falling back to the environment when the flag
// was left at its default.
func stringSetting(cmd *cobra.Command, flag, envKey string) string {
	v, _ := cmd.Flags().GetString(flag)

	if !cmd.Flags().Changed(flag) && envKey != "" {
		if env := os.Getenv(envKey); env != "" {
			return env
		}
	}

	return v
}

func benchConfig(cmd *cobra.Command) (bench.Config, error) {
	variant := stringSetting(cmd, "variant", envVariant)

	cfg, err := bench.ConfigForVariant(bench.Variant(variant))
	if err != nil {
		return bench.Config{}, err
	}

	policy := stringSetting(cmd, "policy", envPolicy)
	switch policy {
	case "invalidate":
		cfg.Policy = protocol.MeasureInvalidation
	case "checksum":
		cfg.Policy = protocol.ChecksumPayload
	default:
		return bench.Config{}, fmt.Errorf("unknown policy %q", policy)
	}

	cfg.Coherent, _ = cmd.Flags().GetBool("coherent")

	iterations, _ := cmd.Flags().GetInt("iterations")
	if !cmd.Flags().Changed("iterations") {
		if env := os.Getenv(envIterations); env != "" {
			iterations, err = strconv.Atoi(env)
			if err != nil {
				return bench.Config{}, fmt.Errorf(
					"invalid %s: %w", envIterations, err)
			}
		}
	}
	if iterations > 0 {
		cfg.Iterations = iterations
	}

	if sizes, _ := cmd.Flags().GetIntSlice("sizes"); len(sizes) > 0 {
		cfg.Sizes = sizes
	}

	cfg.SettleDelay, _ = cmd.Flags().GetDuration("settle")
	cfg.AckTimeout, _ = cmd.Flags().GetDuration("ack-timeout")
	cfg.CSVPath, _ = cmd.Flags().GetString("csv")
	cfg.DBPath, _ = cmd.Flags().GetString("db")

	return cfg, nil
}

func printSummary(summary *bench.Summary) {
	fmt.Printf("run %s: sent %d, failed %d, drained %d, skipped %d in %s\n",
		summary.RunID, summary.Sent, summary.Failed,
		summary.Drained, summary.Skipped, summary.Elapsed)

	means := summary.MeanMicrosBySize()

	sizes := make([]int, 0, len(means))
	for size := range means {
		sizes = append(sizes, int(size))
	}
	sort.Ints(sizes)

	var b strings.Builder
	fmt.Fprintf(&b, "%12s %12s\n", "size (B)", "mean (us)")
	for _, size := range sizes {
		fmt.Fprintf(&b, "%12d %12.3f\n", size, means[uint32(size)])
	}

	fmt.Print(b.String())
}
