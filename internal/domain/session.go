package domain

import (
	"fmt"
	"strings"
)

// Placeholder values the host application reports before a real session
// exists. A snapshot holding any of them cannot be used for searches.
const (
	SentinelZoneID     = "CDPL1"
	SentinelOperatorID = "System"
	unsetValue         = "unset"
)

// SessionContext carries the two credentials every container search needs
type SessionContext struct {
	ZoneID     string `json:"zoneId"`
	OperatorID string `json:"operatorId"`
}

// Validate returns ErrSessionInvalid when either field is missing or a placeholder
func (s SessionContext) Validate() error {
	zone := strings.TrimSpace(s.ZoneID)
	operator := strings.TrimSpace(s.OperatorID)

	switch {
	case zone == "" || strings.EqualFold(zone, unsetValue) || zone == SentinelZoneID:
		return fmt.Errorf("%w: zone %q", ErrSessionInvalid, s.ZoneID)
	case operator == "" || strings.EqualFold(operator, unsetValue) || operator == SentinelOperatorID:
		return fmt.Errorf("%w: operator %q", ErrSessionInvalid, s.OperatorID)
	}
	return nil
}

// IsValid reports whether the session can be used to start a scan
func (s SessionContext) IsValid() bool {
	return s.Validate() == nil
}

// SessionProvider exposes the ambient session maintained outside the engine.
// Snapshot must return a copy that later updates do not affect.
type SessionProvider interface {
	Snapshot() SessionContext
}
