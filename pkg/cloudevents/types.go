package cloudevents

import (
	"time"
)

// EventType constants for drop-zone events
const (
	ScanStarted   = "wms.dropzone.scan-started"
	ScanCompleted = "wms.dropzone.scan-completed"
	ScanCancelled = "wms.dropzone.scan-cancelled"
)

// SourceDropzone is the event source of this service
const SourceDropzone = "/wms/dropzone-service"

// CloudEvents extension attribute names
const (
	ExtCorrelationID = "wmscorrelationid"
	ExtWarehouseID   = "wmswarehouseid"
	ExtScanID        = "wmsscanid"
)

// WMSCloudEvent represents a CloudEvents v1.0 compliant event for WMS
type WMSCloudEvent struct {
	SpecVersion     string                 `json:"specversion"`
	Type            string                 `json:"type"`
	Source          string                 `json:"source"`
	Subject         string                 `json:"subject,omitempty"`
	ID              string                 `json:"id"`
	Time            time.Time              `json:"time"`
	DataContentType string                 `json:"datacontenttype"`
	Data            interface{}            `json:"data"`
	Extensions      map[string]interface{} `json:"-"`

	// WMS-specific extensions
	CorrelationID string `json:"wmscorrelationid,omitempty"`
	WarehouseID   string `json:"wmswarehouseid,omitempty"`
	ScanID        string `json:"wmsscanid,omitempty"`

	// W3C trace context
	TraceParent string `json:"traceparent,omitempty"`
	TraceState  string `json:"tracestate,omitempty"`
}

// WithWarehouse sets the warehouse extension and returns the event
func (e *WMSCloudEvent) WithWarehouse(warehouseID string) *WMSCloudEvent {
	e.WarehouseID = warehouseID
	return e
}

// WithScan sets the scan extension and returns the event
func (e *WMSCloudEvent) WithScan(scanID string) *WMSCloudEvent {
	e.ScanID = scanID
	return e
}
