package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter creates the gin engine with every API route registered
func NewRouter(options *OptionsController, dashboard *DashboardController, lookups *LookupController, logger *logrus.Logger) *gin.Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	registerRoutes(router, options, dashboard, lookups)
	return router
}

func registerRoutes(router *gin.Engine, options *OptionsController, dashboard *DashboardController, lookups *LookupController) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	// Option chains
	api.GET("/options/:ticker/expirations", options.HandleGetExpirations)
	api.GET("/options/:ticker/price", options.HandleGetPrice)
	api.GET("/options/:ticker/chain", options.HandleGetChain)
	api.GET("/options/:ticker/table", options.HandleGetTable)

	// Price history
	api.GET("/history/:symbol", options.HandleGetHistory)

	// Dashboard
	api.GET("/dashboard/:ticker", dashboard.HandleGetDashboard)

	// Charts
	api.GET("/charts/chain.png", options.HandleChainChartPNG)
	api.GET("/charts/price.png", options.HandleHistoryChartPNG("price"))
	api.GET("/charts/volume.png", options.HandleHistoryChartPNG("volume"))
	api.GET("/charts/overlay.png", options.HandleHistoryChartPNG("overlay"))

	// Journal
	api.GET("/lookups", lookups.HandleGetLookups)
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(started).String(),
		}).Info("Request handled")
	}
}
