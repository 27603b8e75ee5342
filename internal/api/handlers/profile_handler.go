package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/dropzone-service/internal/application"
	"github.com/wms-platform/dropzone-service/pkg/logging"
	"github.com/wms-platform/dropzone-service/pkg/middleware"
)

// ProfileHandler handles HTTP requests for zone profiles
type ProfileHandler struct {
	service *application.ProfileService
	logger  *logging.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(service *application.ProfileService, logger *logging.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger,
	}
}

// ListProfiles handles GET /api/v1/profiles
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	profiles, err := h.service.ListProfiles(c.Request.Context())
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profiles, "count": len(profiles)})
}

// GetProfile handles GET /api/v1/profiles/:name
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	profile, err := h.service.GetProfile(c.Request.Context(), c.Param("name"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

// SaveProfile handles PUT /api/v1/profiles/:name
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req SaveProfileRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	profile, err := h.service.SaveProfile(c.Request.Context(), application.SaveProfileCommand{
		Name:        c.Param("name"),
		Description: req.Description,
		ZoneList:    req.ZoneList.toSpec(),
		Mode:        req.Mode,
		BatchSize:   req.BatchSize,
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

// DeleteProfile handles DELETE /api/v1/profiles/:name
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	if err := h.service.DeleteProfile(c.Request.Context(), c.Param("name")); err != nil {
		responder.RespondWithError(err)
		return
	}

	c.Status(http.StatusNoContent)
}
