package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScanStatus represents the lifecycle of a scan run
type ScanStatus string

const (
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusCancelled ScanStatus = "cancelled"
	ScanStatusFailed    ScanStatus = "failed"
)

// IsTerminal reports whether no further transition is possible
func (s ScanStatus) IsTerminal() bool {
	return s == ScanStatusCompleted || s == ScanStatusCancelled || s == ScanStatusFailed
}

// CanTransitionTo checks if the status can transition to another status
func (s ScanStatus) CanTransitionTo(target ScanStatus) bool {
	if s != ScanStatusRunning {
		return false
	}
	return target.IsTerminal()
}

// Scan holds the in-memory state of one sweep over a zone list. It is
// discarded when the next scan starts.
type Scan struct {
	ScanID      string           `json:"scanId"`
	Mode        ScanMode         `json:"mode"`
	ProfileName string           `json:"profileName,omitempty"`
	Session     SessionContext   `json:"session"`
	ZoneIDs     []string         `json:"zoneIds"`
	Status      ScanStatus       `json:"status"`
	Completed   int              `json:"completed"`
	Total       int              `json:"total"`
	Results     []ZoneScanResult `json:"results"`
	Failure     string           `json:"failure,omitempty"`
	StartedAt   time.Time        `json:"startedAt"`
	FinishedAt  *time.Time       `json:"finishedAt,omitempty"`
}

// NewScan creates a running scan over zoneIDs
func NewScan(mode ScanMode, session SessionContext, zoneIDs []string, now time.Time) *Scan {
	ids := make([]string, len(zoneIDs))
	copy(ids, zoneIDs)

	return &Scan{
		ScanID:    "SCN-" + uuid.New().String()[:8],
		Mode:      mode,
		Session:   session,
		ZoneIDs:   ids,
		Status:    ScanStatusRunning,
		Total:     len(ids),
		Results:   make([]ZoneScanResult, 0, len(ids)),
		StartedAt: now,
	}
}

// RecordProgress replaces the cumulative results after a batch
func (s *Scan) RecordProgress(results []ZoneScanResult, completed int) {
	s.Results = append(s.Results[:0], results...)
	s.Completed = completed
}

// Finish moves the scan to a terminal status
func (s *Scan) Finish(status ScanStatus, failure string, now time.Time) error {
	if !s.Status.CanTransitionTo(status) {
		return ErrInvalidStatusTransition
	}
	s.Status = status
	s.Failure = failure
	s.FinishedAt = &now
	return nil
}

// Progress returns the completed fraction in [0, 1]
func (s *Scan) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total)
}

// Duration returns the elapsed run time, up to now for a running scan
func (s *Scan) Duration(now time.Time) time.Duration {
	if s.FinishedAt != nil {
		return s.FinishedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}

// Clone returns a deep copy safe to hand out while the scan keeps running
func (s *Scan) Clone() *Scan {
	clone := *s
	clone.ZoneIDs = append([]string(nil), s.ZoneIDs...)
	clone.Results = append([]ZoneScanResult(nil), s.Results...)
	if s.FinishedAt != nil {
		finished := *s.FinishedAt
		clone.FinishedAt = &finished
	}
	return &clone
}
