package bench

import "time"

// Sample is one policy's measurement inside a run.
type Sample struct {
	ID        string        `json:"id"`
	RunID     string        `json:"run_id"`
	Policy    string        `json:"policy"`
	Interface string        `json:"interface"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	// Bytes is the payload volume moved during the drive window.
	Bytes int64 `json:"bytes"`

	// ThroughputBps is the observed goodput in bits per second.
	ThroughputBps float64 `json:"throughput_bps"`

	// Error is set when the drive failed; the sample is still recorded.
	Error string `json:"error,omitempty"`
}

// Run groups the samples of one suite execution.
type Run struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Samples     []Sample  `json:"samples"`
}
