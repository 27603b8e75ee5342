package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ScanMode selects how deep a zone scan goes
type ScanMode string

const (
	// ScanModeSurface counts pallets and categories only; unit counts stay 0
	ScanModeSurface ScanMode = "surface"
	// ScanModeDeep also searches every pallet to total its tote units
	ScanModeDeep ScanMode = "deep"
)

// IsValid checks if the mode is valid
func (m ScanMode) IsValid() bool {
	return m == ScanModeSurface || m == ScanModeDeep
}

// ParseScanMode parses a mode name, defaulting to deep for ""
func ParseScanMode(s string) (ScanMode, error) {
	switch mode := ScanMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return ScanModeDeep, nil
	case ScanModeSurface, ScanModeDeep:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidScanMode, s)
	}
}

var profileNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// ZoneProfile is a named, reusable scan configuration
type ZoneProfile struct {
	Name        string       `bson:"name" json:"name" yaml:"name"`
	Description string       `bson:"description,omitempty" json:"description,omitempty" yaml:"description,omitempty"`
	ZoneList    ZoneListSpec `bson:"zoneList" json:"zoneList" yaml:"zoneList"`
	Mode        ScanMode     `bson:"mode" json:"mode" yaml:"mode"`
	BatchSize   int          `bson:"batchSize,omitempty" json:"batchSize,omitempty" yaml:"batchSize,omitempty"`
	CreatedAt   time.Time    `bson:"createdAt" json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time    `bson:"updatedAt" json:"updatedAt" yaml:"-"`
}

// Validate checks the profile before it is stored or used
func (p *ZoneProfile) Validate() error {
	if !profileNamePattern.MatchString(p.Name) {
		return fmt.Errorf("%w: name %q must be lowercase letters, digits, '-' or '_'", ErrInvalidProfile, p.Name)
	}
	if p.Mode == "" {
		p.Mode = ScanModeDeep
	}
	if !p.Mode.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidScanMode, p.Mode)
	}
	if p.BatchSize < 0 {
		return fmt.Errorf("%w: negative batch size", ErrInvalidProfile)
	}
	if p.ZoneList.IsEmpty() {
		return fmt.Errorf("%w: profile %s", ErrNoDestinationsConfigured, p.Name)
	}
	return p.ZoneList.Validate()
}

// ZoneIDs expands the profile's zone list
func (p *ZoneProfile) ZoneIDs() ([]string, error) {
	return p.ZoneList.Expand()
}
