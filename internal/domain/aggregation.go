package domain

import (
	"math"
	"sort"
)

// ScanSummary counts zones by status. Pallet and unit totals cover every
// zone regardless of status.
type ScanSummary struct {
	TotalZones   int `json:"totalZones"`
	ActiveZones  int `json:"activeZones"`
	EmptyZones   int `json:"emptyZones"`
	ErrorZones   int `json:"errorZones"`
	TotalPallets int `json:"totalPallets"`
	TotalUnits   int `json:"totalUnits"`
}

// LocationBreakdown is the share of one zone credited to a category
type LocationBreakdown struct {
	Pallets int `json:"pallets"`
	Units   int `json:"units"`
}

// CategoryShare is a category's contribution to its destination
type CategoryShare struct {
	ZoneShare   float64                      `json:"zoneShare"`
	PalletShare int                          `json:"palletShare"`
	UnitShare   int                          `json:"unitShare"`
	PerLocation map[string]LocationBreakdown `json:"perLocation"`
}

// DestinationAggregate groups every category that maps to one destination
type DestinationAggregate struct {
	DestinationName string                    `json:"destinationName"`
	ZoneShare       float64                   `json:"zoneShare"`
	PalletShare     int                       `json:"palletShare"`
	UnitShare       int                       `json:"unitShare"`
	Categories      []string                  `json:"categories"`
	PerCategory     map[string]*CategoryShare `json:"perCategory"`
}

// CategoryTotals is the fractional total credited to one category
type CategoryTotals struct {
	Zones   float64 `json:"zones"`
	Pallets int     `json:"pallets"`
	Units   int     `json:"units"`
}

// Aggregation is the full statistical view over one scan's results
type Aggregation struct {
	Summary        ScanSummary                      `json:"summary"`
	PerDestination map[string]*DestinationAggregate `json:"perDestination"`
	PerCategory    map[string]*CategoryTotals       `json:"perCategory"`
}

// Aggregate rebuilds all statistics from results. It has no side effects and
// returns a fresh structure on every call.
//
// A zone carrying n categories credits each of them 1/n of a zone and
// round(count/n) of its pallets and units. Rounding is per category, so the
// credited shares of one zone may not add up to its raw totals when n > 1.
func Aggregate(results []ZoneScanResult) Aggregation {
	agg := Aggregation{
		PerDestination: make(map[string]*DestinationAggregate),
		PerCategory:    make(map[string]*CategoryTotals),
	}
	categorySets := make(map[string]map[string]struct{})

	for _, result := range results {
		agg.Summary.TotalZones++
		agg.Summary.TotalPallets += result.PalletCount
		agg.Summary.TotalUnits += result.UnitCount

		switch result.Status {
		case ZoneStatusActive:
			agg.Summary.ActiveZones++
		case ZoneStatusEmpty:
			agg.Summary.EmptyZones++
		case ZoneStatusError:
			agg.Summary.ErrorZones++
		}

		if result.Status != ZoneStatusActive {
			continue
		}

		categories := result.Categories()
		if len(categories) == 0 {
			continue
		}

		contribution := 1.0 / float64(len(categories))
		pallets := int(math.Round(float64(result.PalletCount) * contribution))
		units := int(math.Round(float64(result.UnitCount) * contribution))

		for _, category := range categories {
			totals, ok := agg.PerCategory[category]
			if !ok {
				totals = &CategoryTotals{}
				agg.PerCategory[category] = totals
			}
			totals.Zones += contribution
			totals.Pallets += pallets
			totals.Units += units

			name := DestinationFor(category)
			dest, ok := agg.PerDestination[name]
			if !ok {
				dest = &DestinationAggregate{
					DestinationName: name,
					PerCategory:     make(map[string]*CategoryShare),
				}
				agg.PerDestination[name] = dest
				categorySets[name] = make(map[string]struct{})
			}
			dest.ZoneShare += contribution
			dest.PalletShare += pallets
			dest.UnitShare += units
			categorySets[name][category] = struct{}{}

			share, ok := dest.PerCategory[category]
			if !ok {
				share = &CategoryShare{PerLocation: make(map[string]LocationBreakdown)}
				dest.PerCategory[category] = share
			}
			share.ZoneShare += contribution
			share.PalletShare += pallets
			share.UnitShare += units

			location := share.PerLocation[result.ZoneID]
			location.Pallets += pallets
			location.Units += units
			share.PerLocation[result.ZoneID] = location
		}
	}

	for name, set := range categorySets {
		categories := make([]string, 0, len(set))
		for category := range set {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		agg.PerDestination[name].Categories = categories
	}

	return agg
}

// DestinationNames returns the destinations present in agg, sorted by
// descending unit share and then by name.
func (a Aggregation) DestinationNames() []string {
	names := make([]string, 0, len(a.PerDestination))
	for name := range a.PerDestination {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		left, right := a.PerDestination[names[i]], a.PerDestination[names[j]]
		if left.UnitShare != right.UnitShare {
			return left.UnitShare > right.UnitShare
		}
		return names[i] < names[j]
	})
	return names
}
