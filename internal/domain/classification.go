package domain

import (
	"sort"
	"strings"
)

// Destinations
const (
	DestinationBTS2    = "BTS2"
	DestinationKTW1    = "KTW1"
	DestinationLCJ4    = "LCJ4"
	DestinationWRO1    = "WRO1"
	DestinationUnknown = "Unknown"
)

// categoryDestinations is the static sortation category -> destination table.
// Both spellings of the speciality urgent category are in use upstream.
var categoryDestinations = map[string]string{
	"2 - NON TECH TTA":        DestinationBTS2,
	"9 - SPECIALITY URGENT":   DestinationBTS2,
	"9 - SPECIALTY URGENT":    DestinationBTS2,
	"7 - HRV URGENT":          DestinationBTS2,
	"5 - FAST PROCESSING TTA": DestinationBTS2,
	"1 - TECH TTA":            DestinationBTS2,

	"PROBLEM SOLVE":           DestinationKTW1,
	"3 - APPAREL TTA":         DestinationKTW1,
	"APPAREL URGENT":          DestinationKTW1,
	"S&A FAST PROCESSING TTA": DestinationKTW1,
	"SHOES URGENT":            DestinationKTW1,
	"BROKEN AND LEAKING":      DestinationKTW1,
	"SHARP":                   DestinationKTW1,
	"BWS":                     DestinationKTW1,

	"8 - BMVD URGENT":   DestinationLCJ4,
	"URGENT LCJ4":       DestinationLCJ4,
	"NON TECH TTA LCJ4": DestinationLCJ4,
	"4 - LOW VALUE TTA": DestinationLCJ4,
	"Tech TTA LCJ4":     DestinationLCJ4,

	"0 - NON-SORT": DestinationWRO1,
}

// DestinationFor maps a sortation category to its destination. Matching is
// exact after trimming; unmapped and sentinel categories map to Unknown.
func DestinationFor(category string) string {
	if destination, ok := categoryDestinations[strings.TrimSpace(category)]; ok {
		return destination
	}
	return DestinationUnknown
}

// CategoryMapping is one row of the classification table
type CategoryMapping struct {
	Category    string `json:"category" yaml:"category"`
	Destination string `json:"destination" yaml:"destination"`
}

// ClassificationTable returns the table ordered by destination, then category
func ClassificationTable() []CategoryMapping {
	table := make([]CategoryMapping, 0, len(categoryDestinations))
	for category, destination := range categoryDestinations {
		table = append(table, CategoryMapping{Category: category, Destination: destination})
	}
	sort.Slice(table, func(i, j int) bool {
		if table[i].Destination != table[j].Destination {
			return table[i].Destination < table[j].Destination
		}
		return table[i].Category < table[j].Category
	})
	return table
}

// KnownDestinations lists every destination a category can map to, Unknown last
func KnownDestinations() []string {
	return []string{DestinationBTS2, DestinationKTW1, DestinationLCJ4, DestinationWRO1, DestinationUnknown}
}
