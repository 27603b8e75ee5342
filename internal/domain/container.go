package domain

import (
	"sort"
	"strings"
)

// Category values the search endpoint uses for "no category"
const (
	CategoryNotAvailable = "N/A"
	CategoryEmpty        = "Empty"
	CategoryError        = "Error"
)

// ContainerRecord is one node of the zone -> pallet -> tote hierarchy as
// returned by the container-search endpoint. Totes carry a unit count in
// NumOfChildContainers instead of children.
type ContainerRecord struct {
	ContainerID          string            `json:"containerId"`
	ContainerType        string            `json:"containerType,omitempty"`
	ContainerStatus      string            `json:"containerStatus,omitempty"`
	Location             string            `json:"location,omitempty"`
	ChildContainers      []ContainerRecord `json:"childContainers,omitempty"`
	SortationCategories  []string          `json:"sortationCategories,omitempty"`
	SortationCategory    string            `json:"sortationCategory,omitempty"`
	NumOfChildContainers int               `json:"numOfChildContainers,omitempty"`
}

// HasChildren reports whether the record lists at least one child
func (c *ContainerRecord) HasChildren() bool {
	return c != nil && len(c.ChildContainers) > 0
}

// Categories returns the record's sortation categories with sentinels removed.
// The list field wins over the singular field when both are present.
func (c *ContainerRecord) Categories() []string {
	raw := c.SortationCategories
	if len(raw) == 0 && c.SortationCategory != "" {
		raw = []string{c.SortationCategory}
	}

	out := make([]string, 0, len(raw))
	for _, category := range raw {
		if category = strings.TrimSpace(category); !IsSentinelCategory(category) {
			out = append(out, category)
		}
	}
	return out
}

// PrimaryCategory returns the single category used in flat exports: the first
// list element, else the singular field, else N/A.
func (c *ContainerRecord) PrimaryCategory() string {
	if len(c.SortationCategories) > 0 && strings.TrimSpace(c.SortationCategories[0]) != "" {
		return strings.TrimSpace(c.SortationCategories[0])
	}
	if category := strings.TrimSpace(c.SortationCategory); category != "" {
		return category
	}
	return CategoryNotAvailable
}

// ToteUnitCount sums the unit counts of the record's direct children
func (c *ContainerRecord) ToteUnitCount() int {
	total := 0
	for _, tote := range c.ChildContainers {
		if tote.NumOfChildContainers > 0 {
			total += tote.NumOfChildContainers
		}
	}
	return total
}

// PalletCategoryUnion collects the sorted unique categories of all pallets
func PalletCategoryUnion(pallets []ContainerRecord) []string {
	seen := make(map[string]struct{})
	for i := range pallets {
		for _, category := range pallets[i].Categories() {
			seen[category] = struct{}{}
		}
	}

	union := make([]string, 0, len(seen))
	for category := range seen {
		union = append(union, category)
	}
	sort.Strings(union)
	return union
}

// IsSentinelCategory reports whether category means "no category"
func IsSentinelCategory(category string) bool {
	switch strings.TrimSpace(category) {
	case "", CategoryNotAvailable, CategoryEmpty, CategoryError:
		return true
	}
	return false
}

// JoinCategories renders a category set the way ZoneScanResult stores it
func JoinCategories(categories []string) string {
	if len(categories) == 0 {
		return CategoryNotAvailable
	}
	return strings.Join(categories, ", ")
}

// SplitCategories parses a stored category string back into its members,
// dropping sentinels.
func SplitCategories(joined string) []string {
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); !IsSentinelCategory(part) {
			out = append(out, part)
		}
	}
	return out
}

// PalletRow is the flat, one-category view of a pallet used for exports
type PalletRow struct {
	ZoneID            string `json:"zoneId"`
	PalletID          string `json:"palletId"`
	SortationCategory string `json:"sortationCategory"`
	Destination       string `json:"destination"`
	ToteCount         int    `json:"toteCount"`
	UnitCount         int    `json:"unitCount"`
}

// NewPalletRow flattens pallet. UnitCount is the pallet's own reported count.
func NewPalletRow(zoneID string, pallet *ContainerRecord) PalletRow {
	category := pallet.PrimaryCategory()
	return PalletRow{
		ZoneID:            zoneID,
		PalletID:          pallet.ContainerID,
		SortationCategory: category,
		Destination:       DestinationFor(category),
		ToteCount:         len(pallet.ChildContainers),
		UnitCount:         pallet.NumOfChildContainers,
	}
}
