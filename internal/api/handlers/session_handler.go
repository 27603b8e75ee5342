package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/dropzone-service/internal/application"
	"github.com/wms-platform/dropzone-service/internal/domain"
	"github.com/wms-platform/dropzone-service/internal/infrastructure/session"
	"github.com/wms-platform/dropzone-service/pkg/logging"
	"github.com/wms-platform/dropzone-service/pkg/middleware"
)

// SessionHandler exposes the ambient session written by the credential
// discovery side of the warehouse front end
type SessionHandler struct {
	store  *session.Store
	logger *logging.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(store *session.Store, logger *logging.Logger) *SessionHandler {
	return &SessionHandler{
		store:  store,
		logger: logger,
	}
}

// GetSession handles GET /api/v1/session
func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": toSessionDTO(h.store.State())})
}

// UpdateSession handles PUT /api/v1/session
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req UpdateSessionRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	h.store.Update(domain.SessionContext{
		ZoneID:     strings.TrimSpace(req.ZoneID),
		OperatorID: strings.TrimSpace(req.OperatorID),
	}, req.Cookie)

	state := h.store.State()
	h.logger.Info("Session updated",
		"zoneId", state.Session.ZoneID,
		"valid", state.Valid,
		"hasCookie", state.HasCookie,
	)

	c.JSON(http.StatusOK, gin.H{"data": toSessionDTO(state)})
}

func toSessionDTO(state session.State) application.SessionDTO {
	return application.SessionDTO{
		ZoneID:     state.Session.ZoneID,
		OperatorID: state.Session.OperatorID,
		HasCookie:  state.HasCookie,
		Valid:      state.Valid,
		UpdatedAt:  state.UpdatedAt,
	}
}
