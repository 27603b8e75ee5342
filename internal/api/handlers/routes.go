package handlers

import "github.com/gin-gonic/gin"

// Handlers groups every API handler. Profiles is nil when no profile
// storage is configured.
type Handlers struct {
	Scans    *ScanHandler
	Sessions *SessionHandler
	Profiles *ProfileHandler
}

// RegisterRoutes mounts the v1 API on router
func RegisterRoutes(router gin.IRouter, h Handlers) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/session", h.Sessions.GetSession)
		v1.PUT("/session", h.Sessions.UpdateSession)

		scans := v1.Group("/scans")
		{
			scans.POST("", h.Scans.StartScan)
			scans.GET("/current", h.Scans.GetCurrentScan)
			scans.POST("/current/cancel", h.Scans.CancelScan)
			scans.GET("/current/aggregate", h.Scans.GetAggregate)
			scans.GET("/current/export.csv", h.Scans.ExportCSV)
		}

		zones := v1.Group("/zones")
		{
			zones.GET("/:zoneId", h.Scans.ScanZone)
			zones.GET("/:zoneId/pallets", h.Scans.ListPallets)
		}

		v1.GET("/classification", h.Scans.GetClassification)

		if h.Profiles != nil {
			profiles := v1.Group("/profiles")
			{
				profiles.GET("", h.Profiles.ListProfiles)
				profiles.GET("/:name", h.Profiles.GetProfile)
				profiles.PUT("/:name", h.Profiles.SaveProfile)
				profiles.DELETE("/:name", h.Profiles.DeleteProfile)
			}
		}
	}
}
