package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"martapp/kiosk/internal/config"
	"martapp/kiosk/internal/handler/middleware"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authHandler *AuthHandler,
	playbackHandler *PlaybackHandler,
	audioHandler *AudioHandler,
	catalogHandler *CatalogHandler,
	settingsHandler *SettingsHandler,
	chatHandler *ChatHandler,
	reportHandler *ReportHandler,
	mediaHandler *MediaHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Login gate
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	// Kiosk floor surface (no login required)
	floor := r.Group("/api/v1")
	{
		floor.POST("/playback/ambient/play", playbackHandler.AmbientPlay)
		floor.POST("/playback/ambient/stop", playbackHandler.AmbientStop)
		floor.PUT("/playback/ambient/volume", playbackHandler.AmbientVolume)
		floor.POST("/playback/spot/play", playbackHandler.SpotPlay)
		floor.POST("/playback/spot/stop", playbackHandler.SpotStop)
		floor.PUT("/playback/spot/volume", playbackHandler.SpotVolume)
		floor.GET("/playback/state", playbackHandler.State)

		floor.POST("/interactions", reportHandler.RecordInteraction)

		floor.GET("/catalog/products", catalogHandler.ListProducts)
		floor.GET("/catalog/brands", catalogHandler.ListBrands)
		floor.GET("/catalog/discounts", catalogHandler.ListDiscounts)

		floor.GET("/settings/labels", settingsHandler.GetLabels)
		floor.GET("/settings/theme", settingsHandler.GetTheme)

		floor.GET("/chat/messages", chatHandler.History)
		floor.POST("/chat/messages", chatHandler.Send)

		floor.GET("/images/:key", mediaHandler.ServeImage)
	}

	// Admin surface (session required)
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.SessionAuth(authHandler.Service()))
	{
		admin.GET("/audio", audioHandler.List)
		admin.POST("/audio", audioHandler.Upload)
		admin.DELETE("/audio/:id", audioHandler.Delete)
		admin.PUT("/audio/:id/slots", audioHandler.AssignSlots)
		admin.POST("/audio/:id/preview", audioHandler.Preview)
		admin.GET("/playlists", audioHandler.Playlists)

		admin.GET("/spots", audioHandler.SpotAssignments)
		admin.PUT("/spots/:slot", audioHandler.SetSpotAudio)
		admin.DELETE("/spots/:slot", audioHandler.RemoveSpotAudio)

		admin.POST("/products/:id/toggle-managed", catalogHandler.ToggleManaged)
		admin.PUT("/products/:id/image", catalogHandler.UpdateProductImage)
		admin.POST("/brands", catalogHandler.AddBrand)
		admin.DELETE("/brands/:name", catalogHandler.RemoveBrand)
		admin.POST("/discounts", catalogHandler.AddDiscount)
		admin.DELETE("/discounts/:percent", catalogHandler.RemoveDiscount)

		admin.PUT("/settings/labels", settingsHandler.SetLabels)
		admin.PUT("/settings/theme", settingsHandler.SetTheme)

		admin.GET("/storage/blobs", mediaHandler.ListBlobs)

		admin.GET("/reports/interactions", reportHandler.Interactions)
		admin.GET("/reports/insights", reportHandler.Insights)
	}

	return r
}
