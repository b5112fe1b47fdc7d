// Package bench orchestrates full benchmark runs: the size sweep, the two
// sides wired over one region, and the export of drained results.
package bench

import (
	"fmt"
	"time"

	"github.com/cohlab/cohmark/protocol"
)

// A Variant names one of the standard region geometries.
type Variant string

const (
	// VariantDDR is the large DRAM-backed geometry.
	VariantDDR Variant = "ddr"

	// VariantTCM is the small tightly-coupled-memory geometry.
	VariantTCM Variant = "tcm"
)

// DDRSizes returns the packet size sweep of the large variant.
func DDRSizes() []int {
	return []int{1, 16, 32, 64, 128, 256, 512, 1024,
		2048, 4096, 8192, 16384, 32768, 65536}
}

// TCMSizes returns the packet size sweep of the small variant.
func TCMSizes() []int {
	return []int{1, 4, 16, 32, 64, 128, 256, 512, 1024}
}

// Config carries the externally supplied parameters of one benchmark run.
type Config struct {
	// Variant names the geometry, used in exported summaries.
	Variant Variant

	// Layout is the region geometry of the run.
	Layout protocol.Layout

	// Sizes is the packet size sweep.
	Sizes []int

	// Iterations is the number of packets sent per size.
	Iterations int

	// Policy selects the receiver's payload handling.
	Policy protocol.Policy

	// Coherent disables the simulated write-back caches, the baseline a
	// non-coherent run is compared against.
	Coherent bool

	// SettleDelay is the pause between consecutive packets.
	SettleDelay time.Duration

	// AckTimeout bounds the per-packet wait for an ack.
	AckTimeout time.Duration

	// CSVPath, when set, receives one line per drained record.
	CSVPath string

	// DBPath, when set, receives the SQLite archive of the run.
	DBPath string

	// RunID identifies the run in exported archives. Empty generates one.
	RunID string
}

// DDRConfig returns the default configuration of the large variant.
func DDRConfig() Config {
	return Config{
		Variant:     VariantDDR,
		Layout:      protocol.DDRLayout(),
		Sizes:       DDRSizes(),
		Iterations:  100,
		SettleDelay: 100 * time.Microsecond,
		AckTimeout:  10 * time.Millisecond,
	}
}

// TCMConfig returns the default configuration of the small variant.
func TCMConfig() Config {
	return Config{
		Variant:     VariantTCM,
		Layout:      protocol.TCMLayout(),
		Sizes:       TCMSizes(),
		Iterations:  100,
		SettleDelay: 100 * time.Microsecond,
		AckTimeout:  10 * time.Millisecond,
	}
}

// ConfigForVariant returns the default configuration for a named variant.
func ConfigForVariant(v Variant) (Config, error) {
	switch v {
	case VariantDDR:
		return DDRConfig(), nil
	case VariantTCM:
		return TCMConfig(), nil
	default:
		return Config{}, fmt.Errorf("unknown variant %q", v)
	}
}

// Validate checks the configuration against its layout.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}

	if len(c.Sizes) == 0 {
		return fmt.Errorf("empty packet size sweep")
	}

	for _, size := range c.Sizes {
		if size < 0 || size > c.Layout.PayloadCapacity {
			return fmt.Errorf("packet size %d outside payload capacity %d",
				size, c.Layout.PayloadCapacity)
		}
	}

	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	}

	if c.AckTimeout <= 0 {
		return fmt.Errorf("ack timeout must be positive, got %s", c.AckTimeout)
	}

	return nil
}
