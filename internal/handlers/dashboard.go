package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"societypay_echo/internal/services"
)

const adminStatsCacheTTL = 30 * time.Second

// DashboardHandler serves the derived dashboard views
type DashboardHandler struct {
	stats *services.StatsService
	cache *services.RedisCache
}

// NewDashboardHandler creates a new DashboardHandler. cache may be nil.
func NewDashboardHandler(stats *services.StatsService, cache *services.RedisCache) *DashboardHandler {
	return &DashboardHandler{stats: stats, cache: cache}
}

// AdminStats returns the association-wide dashboard, cached briefly since
// it aggregates the whole ledger
func (h *DashboardHandler) AdminStats(c echo.Context) error {
	stats, err := services.GetOrSet(h.cache, c.Request().Context(), "dashboard:admin_stats", adminStatsCacheTTL,
		func() (*services.AdminStats, error) {
			return h.stats.Admin(time.Now().UTC())
		})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// ResidentDashboard returns the caller's per-flat view
func (h *DashboardHandler) ResidentDashboard(c echo.Context) error {
	dashboard, err := h.stats.Resident(getUintFromContext(c, "userID"), time.Now().UTC())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboard)
}
