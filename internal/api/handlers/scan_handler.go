package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/dropzone-service/internal/application"
	"github.com/wms-platform/dropzone-service/internal/domain"
	"github.com/wms-platform/dropzone-service/pkg/logging"
	"github.com/wms-platform/dropzone-service/pkg/middleware"
)

// ScanHandler handles HTTP requests for scans and single zones
type ScanHandler struct {
	service *application.ScanService
	logger  *logging.Logger
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(service *application.ScanService, logger *logging.Logger) *ScanHandler {
	return &ScanHandler{
		service: service,
		logger:  logger,
	}
}

// StartScan handles POST /api/v1/scans
func (h *ScanHandler) StartScan(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	// an empty body scans the default zone list
	var req StartScanRequest
	if c.Request.ContentLength != 0 {
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
	}

	middleware.AddSpanAttributes(c, map[string]any{
		"dropzone.zone_count": len(req.ZoneIDs),
		"dropzone.profile":    req.Profile,
		"dropzone.scan_mode":  req.Mode,
	})

	result, err := h.service.StartScan(c.Request.Context(), req.toCommand())
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"data": result})
}

// GetCurrentScan handles GET /api/v1/scans/current
func (h *ScanHandler) GetCurrentScan(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	result, err := h.service.GetCurrentScan(c.Request.Context())
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// CancelScan handles POST /api/v1/scans/current/cancel
func (h *ScanHandler) CancelScan(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	result, err := h.service.CancelScan(c.Request.Context())
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// GetAggregate handles GET /api/v1/scans/current/aggregate
func (h *ScanHandler) GetAggregate(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	result, err := h.service.Aggregate(c.Request.Context())
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ExportCSV handles GET /api/v1/scans/current/export.csv
func (h *ScanHandler) ExportCSV(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	scan, err := h.service.GetCurrentScan(c.Request.Context())
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportCSV(c.Request.Context(), &buf); err != nil {
		responder.RespondWithError(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="dropzones-%s.csv"`, scan.ScanID))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ScanZone handles GET /api/v1/zones/:zoneId
func (h *ScanHandler) ScanZone(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	req := ZoneRequest{ZoneID: c.Param("zoneId"), Mode: c.Query("mode")}
	if appErr := middleware.ValidateStruct(&req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	result, err := h.service.ScanSingleZone(c.Request.Context(), application.ScanZoneCommand{
		ZoneID: req.ZoneID,
		Mode:   req.Mode,
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ListPallets handles GET /api/v1/zones/:zoneId/pallets
func (h *ScanHandler) ListPallets(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	req := ZoneRequest{ZoneID: c.Param("zoneId")}
	if appErr := middleware.ValidateStruct(&req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	rows, err := h.service.ListPallets(c.Request.Context(), req.ZoneID)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows, "count": len(rows)})
}

// GetClassification handles GET /api/v1/classification
func (h *ScanHandler) GetClassification(c *gin.Context) {
	if category := c.Query("category"); category != "" {
		c.JSON(http.StatusOK, gin.H{"data": domain.CategoryMapping{
			Category:    category,
			Destination: domain.DestinationFor(category),
		}})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":         domain.ClassificationTable(),
		"destinations": domain.KnownDestinations(),
	})
}
