package domain

import "time"

// DomainEvent represents a domain event interface
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// Event types
const (
	EventTypeScanStarted   = "wms.dropzone.scan-started"
	EventTypeScanCompleted = "wms.dropzone.scan-completed"
	EventTypeScanCancelled = "wms.dropzone.scan-cancelled"
)

// ScanStartedEvent is emitted when a scan begins
type ScanStartedEvent struct {
	ScanID      string    `json:"scanId"`
	Mode        ScanMode  `json:"mode"`
	ProfileName string    `json:"profileName,omitempty"`
	WarehouseID string    `json:"warehouseId"`
	OperatorID  string    `json:"operatorId"`
	ZoneCount   int       `json:"zoneCount"`
	StartedAt   time.Time `json:"startedAt"`
}

func (e *ScanStartedEvent) EventType() string     { return EventTypeScanStarted }
func (e *ScanStartedEvent) OccurredAt() time.Time { return e.StartedAt }

// ScanCompletedEvent is emitted when every batch of a scan has finished.
// It carries the summary only; per-zone results are never published.
type ScanCompletedEvent struct {
	ScanID       string         `json:"scanId"`
	Mode         ScanMode       `json:"mode"`
	WarehouseID  string         `json:"warehouseId"`
	Summary      ScanSummary    `json:"summary"`
	Destinations map[string]int `json:"destinationUnits"`
	DurationMs   int64          `json:"durationMs"`
	CompletedAt  time.Time      `json:"completedAt"`
}

func (e *ScanCompletedEvent) EventType() string     { return EventTypeScanCompleted }
func (e *ScanCompletedEvent) OccurredAt() time.Time { return e.CompletedAt }

// ScanCancelledEvent is emitted when a scan is abandoned between batches
type ScanCancelledEvent struct {
	ScanID      string    `json:"scanId"`
	WarehouseID string    `json:"warehouseId"`
	Completed   int       `json:"completed"`
	Total       int       `json:"total"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelledAt"`
}

func (e *ScanCancelledEvent) EventType() string     { return EventTypeScanCancelled }
func (e *ScanCancelledEvent) OccurredAt() time.Time { return e.CancelledAt }

// NewScanStartedEvent builds the start event for scan
func NewScanStartedEvent(scan *Scan) *ScanStartedEvent {
	return &ScanStartedEvent{
		ScanID:      scan.ScanID,
		Mode:        scan.Mode,
		ProfileName: scan.ProfileName,
		WarehouseID: scan.Session.ZoneID,
		OperatorID:  scan.Session.OperatorID,
		ZoneCount:   scan.Total,
		StartedAt:   scan.StartedAt,
	}
}

// NewScanCompletedEvent builds the completion event from the final aggregation
func NewScanCompletedEvent(scan *Scan, agg Aggregation) *ScanCompletedEvent {
	units := make(map[string]int, len(agg.PerDestination))
	for name, dest := range agg.PerDestination {
		units[name] = dest.UnitShare
	}

	completedAt := scan.StartedAt
	if scan.FinishedAt != nil {
		completedAt = *scan.FinishedAt
	}

	return &ScanCompletedEvent{
		ScanID:       scan.ScanID,
		Mode:         scan.Mode,
		WarehouseID:  scan.Session.ZoneID,
		Summary:      agg.Summary,
		Destinations: units,
		DurationMs:   completedAt.Sub(scan.StartedAt).Milliseconds(),
		CompletedAt:  completedAt,
	}
}

// NewScanCancelledEvent builds the cancellation event
func NewScanCancelledEvent(scan *Scan, reason string) *ScanCancelledEvent {
	cancelledAt := scan.StartedAt
	if scan.FinishedAt != nil {
		cancelledAt = *scan.FinishedAt
	}

	return &ScanCancelledEvent{
		ScanID:      scan.ScanID,
		WarehouseID: scan.Session.ZoneID,
		Completed:   scan.Completed,
		Total:       scan.Total,
		Reason:      reason,
		CancelledAt: cancelledAt,
	}
}
