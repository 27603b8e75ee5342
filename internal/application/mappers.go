package application

import (
	"sort"
	"time"

	"github.com/wms-platform/dropzone-service/internal/domain"
)

// ToScanDTO converts a scan snapshot to its DTO
func ToScanDTO(scan *domain.Scan, now time.Time) *ScanDTO {
	if scan == nil {
		return nil
	}

	results := scan.Results
	if results == nil {
		results = []domain.ZoneScanResult{}
	}

	return &ScanDTO{
		ScanID:      scan.ScanID,
		Mode:        string(scan.Mode),
		ProfileName: scan.ProfileName,
		Status:      string(scan.Status),
		Completed:   scan.Completed,
		Total:       scan.Total,
		Progress:    scan.Progress(),
		Results:     results,
		Failure:     scan.Failure,
		StartedAt:   scan.StartedAt,
		FinishedAt:  scan.FinishedAt,
		DurationMs:  scan.Duration(now).Milliseconds(),
	}
}

// ToAggregationDTO converts an aggregation of scan's results to its DTO
func ToAggregationDTO(scan *domain.Scan, agg domain.Aggregation) *AggregationDTO {
	names := agg.DestinationNames()
	destinations := make([]DestinationDTO, 0, len(names))
	for _, name := range names {
		destinations = append(destinations, toDestinationDTO(agg.PerDestination[name]))
	}

	return &AggregationDTO{
		ScanID:       scan.ScanID,
		Status:       string(scan.Status),
		Completed:    scan.Completed,
		Total:        scan.Total,
		Summary:      agg.Summary,
		Destinations: destinations,
		PerCategory:  agg.PerCategory,
	}
}

func toDestinationDTO(dest *domain.DestinationAggregate) DestinationDTO {
	categories := make([]CategoryDTO, 0, len(dest.Categories))
	for _, category := range dest.Categories {
		share := dest.PerCategory[category]
		if share == nil {
			continue
		}
		categories = append(categories, CategoryDTO{
			Category:    category,
			ZoneShare:   share.ZoneShare,
			PalletShare: share.PalletShare,
			UnitShare:   share.UnitShare,
			PerLocation: share.PerLocation,
		})
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].UnitShare > categories[j].UnitShare
	})

	return DestinationDTO{
		Name:        dest.DestinationName,
		ZoneShare:   dest.ZoneShare,
		PalletShare: dest.PalletShare,
		UnitShare:   dest.UnitShare,
		Categories:  categories,
	}
}

// ToProfileDTO converts a zone profile to its DTO
func ToProfileDTO(profile *domain.ZoneProfile) *ProfileDTO {
	zoneCount := 0
	if ids, err := profile.ZoneIDs(); err == nil {
		zoneCount = len(ids)
	}

	return &ProfileDTO{
		Name:        profile.Name,
		Description: profile.Description,
		ZoneList:    profile.ZoneList,
		Mode:        string(profile.Mode),
		BatchSize:   profile.BatchSize,
		ZoneCount:   zoneCount,
		CreatedAt:   profile.CreatedAt,
		UpdatedAt:   profile.UpdatedAt,
	}
}
