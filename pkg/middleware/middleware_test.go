package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/dropzone-service/pkg/errors"
	"github.com/wms-platform/dropzone-service/pkg/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter() *gin.Engine {
	router := gin.New()
	Setup(router, DefaultConfig("dropzone-service", logging.NewNop().Logger))
	router.NoRoute(NoRoute())
	return router
}

func TestErrorHandler(t *testing.T) {
	router := newTestRouter()
	router.GET("/fail", WrapHandler(func(c *gin.Context) error {
		return errors.ErrSessionInvalid()
	}))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	t.Run("AppError rendered", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/fail", nil)
		req.Header.Set(HeaderRequestID, "req-1")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusPreconditionFailed, w.Code)
		assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))

		var body APIErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, errors.CodeSessionInvalid, body.Code)
		assert.Equal(t, "req-1", body.RequestID)
		assert.Equal(t, "/fail", body.Path)
	})

	t.Run("Panic recovered", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	})

	t.Run("Unknown route", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "ROUTE_NOT_FOUND")
	})

	t.Run("Content type enforced", func(t *testing.T) {
		router.POST("/echo", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("zone=DZ-1"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})
}

type scanRequest struct {
	ZoneIDs []string `json:"zoneIds" binding:"omitempty,max=5000,dive,zone_id"`
	Mode    string   `json:"mode" binding:"scan_mode"`
	Profile string   `json:"profile" binding:"omitempty,profile_name"`
}

func TestBindAndValidate(t *testing.T) {
	router := newTestRouter()
	router.POST("/scans", func(c *gin.Context) {
		var req scanRequest
		if appErr := BindAndValidate(c, &req); appErr != nil {
			_ = c.Error(appErr)
			return
		}
		c.JSON(http.StatusOK, req)
	})

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"Valid", `{"zoneIds":["DZ-A01","dz.b_2"],"mode":"surface"}`, http.StatusOK, ""},
		{"Empty mode", `{"zoneIds":["DZ-A01"]}`, http.StatusOK, ""},
		{"Bad zone id", `{"zoneIds":["DZ A01"]}`, http.StatusBadRequest, "zoneIds[0]"},
		{"Bad mode", `{"mode":"sideways"}`, http.StatusBadRequest, "mode"},
		{"Bad profile", `{"profile":"Morning Shift"}`, http.StatusBadRequest, "profile"},
		{"Malformed", `{"zoneIds":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/scans", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.field != "" {
				var body APIErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, errors.CodeValidationError, body.Code)
				assert.Contains(t, body.Details, tt.field)
			}
		})
	}
}
