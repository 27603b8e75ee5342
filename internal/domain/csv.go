package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// CSVHeader is the fixed column order of a scan export
var CSVHeader = []string{"Drop Zone ID", "Status", "Pallet Count", "Unit Count", "Sortation Category", "Last Updated"}

// CSVTimeLayout formats the Last Updated column
const CSVTimeLayout = time.RFC3339

// ErrInvalidCSV is returned when an export cannot be read back
var ErrInvalidCSV = errors.New("invalid scan export")

// WriteCSV writes results with a header row. Fields containing a comma, a
// quote or a line break are quoted and inner quotes doubled.
func WriteCSV(w io.Writer, results []ZoneScanResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, result := range results {
		record := []string{
			result.ZoneID,
			string(result.Status),
			strconv.Itoa(result.PalletCount),
			strconv.Itoa(result.UnitCount),
			result.SortationCategory,
			result.ScannedAt.UTC().Format(CSVTimeLayout),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write zone %s: %w", result.ZoneID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ParseCSV reads an export produced by WriteCSV
func ParseCSV(r io.Reader) ([]ZoneScanResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(CSVHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	for i, column := range CSVHeader {
		if strings.TrimSpace(header[i]) != column {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrInvalidCSV, i+1, header[i], column)
		}
	}

	results := make([]ZoneScanResult, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}

		result, err := parseCSVRecord(record)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidCSV, line, err)
		}
		results = append(results, result)
	}

	return results, nil
}

func parseCSVRecord(record []string) (ZoneScanResult, error) {
	status := ZoneStatus(record[1])
	if !status.IsValid() {
		return ZoneScanResult{}, fmt.Errorf("unknown status %q", record[1])
	}

	pallets, err := strconv.Atoi(record[2])
	if err != nil || pallets < 0 {
		return ZoneScanResult{}, fmt.Errorf("bad pallet count %q", record[2])
	}

	units, err := strconv.Atoi(record[3])
	if err != nil || units < 0 {
		return ZoneScanResult{}, fmt.Errorf("bad unit count %q", record[3])
	}

	scannedAt, err := time.Parse(CSVTimeLayout, record[5])
	if err != nil {
		return ZoneScanResult{}, fmt.Errorf("bad timestamp %q", record[5])
	}

	return ZoneScanResult{
		ZoneID:            record[0],
		Status:            status,
		PalletCount:       pallets,
		UnitCount:         units,
		SortationCategory: record[4],
		ScannedAt:         scannedAt.UTC(),
	}, nil
}
