package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Scan errors
var (
	ErrSessionInvalid           = errors.New("session invalid: warehouse and operator must be set")
	ErrNoDestinationsConfigured = errors.New("no destinations configured")
	ErrScanInProgress           = errors.New("scan already in progress")
	ErrScanNotFound             = errors.New("scan not found")
	ErrInvalidStatusTransition  = errors.New("invalid status transition")
	ErrInvalidScanMode          = errors.New("invalid scan mode")
	ErrInvalidZoneList          = errors.New("invalid zone list")
	ErrProfileNotFound          = errors.New("zone profile not found")
	ErrInvalidProfile           = errors.New("invalid zone profile")
)

// SearchErrorKind classifies a failed container search
type SearchErrorKind string

const (
	SearchErrorNetwork SearchErrorKind = "network_error"
	SearchErrorHTTP    SearchErrorKind = "http_error"
	SearchErrorParse   SearchErrorKind = "parse_error"
)

// SearchError is the single error type returned by a ContainerSearcher
type SearchError struct {
	Kind        SearchErrorKind
	ContainerID string
	StatusCode  int    // set for SearchErrorHTTP
	Message     string // upstream-provided message, if any
	Err         error
}

// Error implements the error interface
func (e *SearchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "container search %s for %q", e.Kind, e.ContainerID)
	if e.Kind == SearchErrorHTTP {
		fmt.Fprintf(&b, ": HTTP %d", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the wrapped error
func (e *SearchError) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps a transport failure (no response received)
func NewNetworkError(containerID string, err error) *SearchError {
	return &SearchError{Kind: SearchErrorNetwork, ContainerID: containerID, Err: err}
}

// NewHTTPError reports a non-200 response
func NewHTTPError(containerID string, status int, message string) *SearchError {
	return &SearchError{Kind: SearchErrorHTTP, ContainerID: containerID, StatusCode: status, Message: message}
}

// NewParseError reports a 200 response whose body is not a container record
func NewParseError(containerID string, err error) *SearchError {
	return &SearchError{Kind: SearchErrorParse, ContainerID: containerID, Err: err}
}

// IsEmptyContainerError reports whether err means "the container has no
// contents or does not exist" rather than a failure. The search endpoint
// answers HTTP 400 for empty drop zones.
func IsEmptyContainerError(err error) bool {
	if err == nil {
		return false
	}

	var searchErr *SearchError
	if errors.As(err, &searchErr) {
		if searchErr.Kind == SearchErrorHTTP && searchErr.StatusCode == 400 {
			return true
		}
		return mentionsEmpty(searchErr.Message)
	}
	return mentionsEmpty(err.Error())
}

func mentionsEmpty(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "empty")
}

// SearchErrorKindOf returns the kind of a search error, or "" for other errors
func SearchErrorKindOf(err error) SearchErrorKind {
	var searchErr *SearchError
	if errors.As(err, &searchErr) {
		return searchErr.Kind
	}
	return ""
}
