// Package ingest reads raw trip records into the pipeline. The only
// supported physical source is CSV with a header row; records stay untyped
// string maps here; all parsing and coercion belongs to the staging
// transforms.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/citybike/warehouse/internal/domain"
)

// Source is one batch of raw trip records plus the column set they share.
// The pipeline checks Columns against the required set before any row-level
// work; a missing column is a schema mismatch, never a silent skip.
type Source struct {
	Columns []string
	Records []domain.RawTrip
}

// ReadCSVFile reads a raw_rides CSV from disk.
func ReadCSVFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest.ReadCSVFile: %w", err)
	}
	defer f.Close()

	src, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("ingest.ReadCSVFile: %s: %w", path, err)
	}
	return src, nil
}

// ReadCSV reads raw trip records from CSV data with a header row.
// Every record carries every header column; csv.Reader already rejects
// ragged rows, so records and columns always line up.
func ReadCSV(r io.Reader) (*Source, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("ingest.ReadCSV: empty input, no header row")
		}
		return nil, fmt.Errorf("ingest.ReadCSV: header: %w", err)
	}

	src := &Source{Columns: header}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest.ReadCSV: line %d: %w", line, err)
		}
		raw := make(domain.RawTrip, len(header))
		for i, col := range header {
			raw[col] = record[i]
		}
		src.Records = append(src.Records, raw)
	}
	return src, nil
}
