package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how far one sweep step has advanced. Packets are
// exchanged strictly one at a time, so finished is the only moving part.
type ProgressBar struct {
	mu sync.Mutex

	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// Add marks a number of packets as finished.
func (b *ProgressBar) Add(amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Finished += amount
}

// Progress returns the finished and total counts.
func (b *ProgressBar) Progress() (finished, total uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.Finished, b.Total
}
