package bench

import (
	"bytes"
	"encoding/csv"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testRun()); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2 samples", len(records))
	}
	if records[0][1] != "policy" || records[0][6] != "throughput_bps" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][1] != "slow_link" || records[1][6] != "10000000.00" {
		t.Errorf("unexpected first row: %v", records[1])
	}
	if records[2][7] != "drive failed: connection reset" {
		t.Errorf("error column missing: %v", records[2])
	}
}
