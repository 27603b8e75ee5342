package domain

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestWriteCSV(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	results := []ZoneScanResult{
		activeZoneAt("DZ-A01", 3, 12, "2 - NON TECH TTA, BWS", at),
		NewEmptyZoneResult("DZ-A02", CategoryNotAvailable, at),
		activeZoneAt(`DZ "B"`, 1, 0, "SHARP", at),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, results))

	expected := strings.Join([]string{
		"Drop Zone ID,Status,Pallet Count,Unit Count,Sortation Category,Last Updated",
		`DZ-A01,Active,3,12,"2 - NON TECH TTA, BWS",2026-01-02T03:04:05Z`,
		"DZ-A02,Empty,0,0,N/A,2026-01-02T03:04:05Z",
		`"DZ ""B""",Active,1,0,SHARP,2026-01-02T03:04:05Z`,
	}, "\n") + "\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(CSVHeader, ",")+"\n", buf.String())
}

func TestParseCSV_Errors(t *testing.T) {
	header := strings.Join(CSVHeader, ",") + "\n"

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "wrong header", input: "Zone,Status,Pallets,Units,Category,Updated\n"},
		{name: "unknown status", input: header + "DZ-A01,Busy,1,1,BWS,2026-01-02T03:04:05Z\n"},
		{name: "negative pallets", input: header + "DZ-A01,Active,-1,1,BWS,2026-01-02T03:04:05Z\n"},
		{name: "bad units", input: header + "DZ-A01,Active,1,many,BWS,2026-01-02T03:04:05Z\n"},
		{name: "bad timestamp", input: header + "DZ-A01,Active,1,1,BWS,yesterday\n"},
		{name: "missing column", input: header + "DZ-A01,Active,1,1,BWS\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrInvalidCSV)
		})
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		results := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) ZoneScanResult {
			return ZoneScanResult{
				ZoneID:            rapid.StringMatching(`[A-Z]{2}-[A-Z0-9 ,"\n]{1,8}`).Draw(t, "zone"),
				Status:            rapid.SampledFrom([]ZoneStatus{ZoneStatusActive, ZoneStatusEmpty, ZoneStatusError}).Draw(t, "status"),
				PalletCount:       rapid.IntRange(0, 500).Draw(t, "pallets"),
				UnitCount:         rapid.IntRange(0, 50000).Draw(t, "units"),
				SortationCategory: rapid.SampledFrom([]string{"N/A", "Empty", "Error", "BWS", "BWS, SHARP", `say "hi"`}).Draw(t, "category"),
				ScannedAt:         time.Unix(rapid.Int64Range(0, 4102444800).Draw(t, "unix"), 0).UTC(),
			}
		}), 1, 10).Draw(t, "results")

		var first bytes.Buffer
		if err := WriteCSV(&first, results); err != nil {
			t.Fatalf("write: %v", err)
		}

		parsed, err := ParseCSV(bytes.NewReader(first.Bytes()))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		assert.Equal(t, results, parsed)

		var second bytes.Buffer
		if err := WriteCSV(&second, parsed); err != nil {
			t.Fatalf("rewrite: %v", err)
		}
		assert.Equal(t, first.String(), second.String())
	})
}

func activeZoneAt(zoneID string, pallets, units int, category string, at time.Time) ZoneScanResult {
	result := activeZone(zoneID, pallets, units, category)
	result.ScannedAt = at
	return result
}
