package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/service"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/internal/middleware"
)

type DashboardController struct {
	dashboardService service.DashboardService
}

func NewDashboardController(dashboardService service.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// Stats returns platform totals (admin)
// GET /api/dashboard/stats
func (ctrl *DashboardController) Stats(c *gin.Context) {
	stats, err := ctrl.dashboardService.Stats(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load dashboard stats", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "dashboard")
		return
	}
	c.JSON(http.StatusOK, stats)
}
