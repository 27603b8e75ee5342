package application

import "github.com/wms-platform/dropzone-service/internal/domain"

// StartScanCommand starts a scan. Zones come from the first non-empty source
// of ZoneIDs, ZoneList, ProfileName and finally the configured default list.
type StartScanCommand struct {
	ZoneIDs     []string
	ZoneList    *domain.ZoneListSpec
	ProfileName string
	Mode        string
	BatchSize   int
}

// ScanZoneCommand scans one zone outside of any scan run
type ScanZoneCommand struct {
	ZoneID string
	Mode   string
}

// SaveProfileCommand creates or replaces a zone profile
type SaveProfileCommand struct {
	Name        string
	Description string
	ZoneList    domain.ZoneListSpec
	Mode        string
	BatchSize   int
}
