package domain

import "time"

// ZoneStatus is the outcome of scanning one drop zone
type ZoneStatus string

const (
	ZoneStatusActive ZoneStatus = "Active"
	ZoneStatusEmpty  ZoneStatus = "Empty"
	ZoneStatusError  ZoneStatus = "Error"
)

// IsValid checks if the status is valid
func (s ZoneStatus) IsValid() bool {
	switch s {
	case ZoneStatusActive, ZoneStatusEmpty, ZoneStatusError:
		return true
	default:
		return false
	}
}

// ZoneScanResult is the reduced outcome of one zone scan. Values are never
// modified after creation.
type ZoneScanResult struct {
	ZoneID            string     `json:"zoneId"`
	Status            ZoneStatus `json:"status"`
	PalletCount       int        `json:"palletCount"`
	UnitCount         int        `json:"unitCount"`
	SortationCategory string     `json:"sortationCategory"`
	ScannedAt         time.Time  `json:"scannedAt"`
}

// NewActiveZoneResult builds the result for a zone holding pallets
func NewActiveZoneResult(zoneID string, pallets, units int, categories []string, at time.Time) ZoneScanResult {
	return ZoneScanResult{
		ZoneID:            zoneID,
		Status:            ZoneStatusActive,
		PalletCount:       pallets,
		UnitCount:         units,
		SortationCategory: JoinCategories(categories),
		ScannedAt:         at,
	}
}

// NewEmptyZoneResult builds the result for a zone with no contents. category
// is N/A when the search itself signalled emptiness and Empty when the zone
// answered without children.
func NewEmptyZoneResult(zoneID, category string, at time.Time) ZoneScanResult {
	return ZoneScanResult{
		ZoneID:            zoneID,
		Status:            ZoneStatusEmpty,
		SortationCategory: category,
		ScannedAt:         at,
	}
}

// NewErrorZoneResult builds the result for a zone whose search failed
func NewErrorZoneResult(zoneID string, at time.Time) ZoneScanResult {
	return ZoneScanResult{
		ZoneID:            zoneID,
		Status:            ZoneStatusError,
		SortationCategory: CategoryError,
		ScannedAt:         at,
	}
}

// Categories returns the non-sentinel categories recorded for the zone
func (r ZoneScanResult) Categories() []string {
	return SplitCategories(r.SortationCategory)
}
