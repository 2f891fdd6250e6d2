package bench

import (
	"context"
	"time"
)

// Measurement is the raw result of one traffic drive.
type Measurement struct {
	Bytes   int64
	Elapsed time.Duration
}

// ThroughputBps returns the goodput in bits per second.
func (m Measurement) ThroughputBps() float64 {
	if m.Elapsed <= 0 {
		return 0
	}
	return float64(m.Bytes*8) / m.Elapsed.Seconds()
}

// Driver moves traffic through the shaped path for the given window and
// reports how much got through.
type Driver interface {
	Drive(ctx context.Context, window time.Duration) (Measurement, error)
}
