package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// WriteCSV renders a run's samples as CSV, one row per sample.
func WriteCSV(w io.Writer, run *Run) error {
	cw := csv.NewWriter(w)

	header := []string{"run_id", "policy", "interface", "started_at", "duration_ms", "bytes", "throughput_bps", "error"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, sample := range run.Samples {
		row := []string{
			run.ID,
			sample.Policy,
			sample.Interface,
			sample.StartedAt.Format(time.RFC3339),
			strconv.FormatInt(sample.Duration.Milliseconds(), 10),
			strconv.FormatInt(sample.Bytes, 10),
			strconv.FormatFloat(sample.ThroughputBps, 'f', 2, 64),
			sample.Error,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
