package application

import (
	"time"

	"github.com/wms-platform/dropzone-service/internal/domain"
)

// ScanDTO is the externally visible state of a scan
type ScanDTO struct {
	ScanID      string                  `json:"scanId"`
	Mode        string                  `json:"mode"`
	ProfileName string                  `json:"profileName,omitempty"`
	Status      string                  `json:"status"`
	Completed   int                     `json:"completed"`
	Total       int                     `json:"total"`
	Progress    float64                 `json:"progress"`
	Results     []domain.ZoneScanResult `json:"results"`
	Failure     string                  `json:"failure,omitempty"`
	StartedAt   time.Time               `json:"startedAt"`
	FinishedAt  *time.Time              `json:"finishedAt,omitempty"`
	DurationMs  int64                   `json:"durationMs"`
}

// CategoryDTO is one category's share within a destination
type CategoryDTO struct {
	Category    string                              `json:"category"`
	ZoneShare   float64                             `json:"zoneShare"`
	PalletShare int                                 `json:"palletShare"`
	UnitShare   int                                 `json:"unitShare"`
	PerLocation map[string]domain.LocationBreakdown `json:"perLocation"`
}

// DestinationDTO is one destination of the aggregation
type DestinationDTO struct {
	Name        string        `json:"name"`
	ZoneShare   float64       `json:"zoneShare"`
	PalletShare int           `json:"palletShare"`
	UnitShare   int           `json:"unitShare"`
	Categories  []CategoryDTO `json:"categories"`
}

// AggregationDTO is the aggregated view of the current scan. Destinations
// are ordered by unit share, largest first.
type AggregationDTO struct {
	ScanID       string                            `json:"scanId"`
	Status       string                            `json:"status"`
	Completed    int                               `json:"completed"`
	Total        int                               `json:"total"`
	Summary      domain.ScanSummary                `json:"summary"`
	Destinations []DestinationDTO                  `json:"destinations"`
	PerCategory  map[string]*domain.CategoryTotals `json:"perCategory"`
}

// SessionDTO is the ambient session as reported to clients
type SessionDTO struct {
	ZoneID     string    `json:"zoneId"`
	OperatorID string    `json:"operatorId"`
	HasCookie  bool      `json:"hasCookie"`
	Valid      bool      `json:"valid"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// ProfileDTO is a stored zone profile with its expanded size
type ProfileDTO struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	ZoneList    domain.ZoneListSpec `json:"zoneList"`
	Mode        string              `json:"mode"`
	BatchSize   int                 `json:"batchSize,omitempty"`
	ZoneCount   int                 `json:"zoneCount"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}
