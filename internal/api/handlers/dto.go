package handlers

import (
	"github.com/wms-platform/dropzone-service/internal/application"
	"github.com/wms-platform/dropzone-service/internal/domain"
)

// ZoneListRequest describes a generated zone list
type ZoneListRequest struct {
	Prefix string   `json:"prefix" binding:"max=32"`
	Start  int      `json:"start" binding:"gte=0,lte=999999999"`
	End    int      `json:"end" binding:"gte=0,lte=999999999"`
	Width  int      `json:"width" binding:"gte=0,lte=9"`
	Custom []string `json:"custom" binding:"omitempty,max=5000,dive,zone_id"`
}

func (r *ZoneListRequest) toSpec() domain.ZoneListSpec {
	return domain.ZoneListSpec{
		Prefix: r.Prefix,
		Start:  r.Start,
		End:    r.End,
		Width:  r.Width,
		Custom: r.Custom,
	}
}

// StartScanRequest is the body of POST /api/v1/scans. All fields are
// optional; without zones the configured default list is scanned.
type StartScanRequest struct {
	ZoneIDs   []string         `json:"zoneIds" binding:"omitempty,max=5000,dive,zone_id"`
	ZoneList  *ZoneListRequest `json:"zoneList"`
	Profile   string           `json:"profile" binding:"omitempty,profile_name"`
	Mode      string           `json:"mode" binding:"scan_mode"`
	BatchSize int              `json:"batchSize" binding:"gte=0,lte=50"`
}

func (r *StartScanRequest) toCommand() application.StartScanCommand {
	cmd := application.StartScanCommand{
		ZoneIDs:     r.ZoneIDs,
		ProfileName: r.Profile,
		Mode:        r.Mode,
		BatchSize:   r.BatchSize,
	}
	if r.ZoneList != nil {
		spec := r.ZoneList.toSpec()
		cmd.ZoneList = &spec
	}
	return cmd
}

// UpdateSessionRequest is the body of PUT /api/v1/session
type UpdateSessionRequest struct {
	ZoneID     string `json:"zoneId" binding:"required,max=64"`
	OperatorID string `json:"operatorId" binding:"required,max=64"`
	Cookie     string `json:"cookie"`
}

// ZoneRequest holds the path and query of the single-zone routes
type ZoneRequest struct {
	ZoneID string `json:"zoneId" validate:"required,zone_id"`
	Mode   string `json:"mode" validate:"scan_mode"`
}

// SaveProfileRequest is the body of PUT /api/v1/profiles/:name
type SaveProfileRequest struct {
	Description string          `json:"description" binding:"max=256"`
	ZoneList    ZoneListRequest `json:"zoneList"`
	Mode        string          `json:"mode" binding:"scan_mode"`
	BatchSize   int             `json:"batchSize" binding:"gte=0,lte=50"`
}
