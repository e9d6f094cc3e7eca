package controllers

import (
	"net/http"
	"option-explorer/services"

	"github.com/gin-gonic/gin"
)

// DashboardController serves the composed dashboard view
type DashboardController struct {
	dashboard *services.DashboardService
	defaults  Defaults
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(dashboard *services.DashboardService, defaults Defaults) *DashboardController {
	return &DashboardController{
		dashboard: dashboard,
		defaults:  defaults,
	}
}

// HandleGetDashboard handles GET /api/v1/dashboard/:ticker.
// Section failures are reported inside the view, so a rendered dashboard is always 200.
func (dc *DashboardController) HandleGetDashboard(c *gin.Context) {
	selection, err := selectionFromQuery(c, dc.defaults)
	if err != nil {
		respondError(c, "Invalid request", err)
		return
	}

	view := dc.dashboard.Render(c.Request.Context(), selection)
	c.JSON(http.StatusOK, view)
}
