package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminDashboard serves storewide aggregates. Admin only.
func (s *Server) AdminDashboard(c *gin.Context) {
	stats, err := s.dashboardSvc.AdminStats(c.Request.Context(), s.location(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CashierDashboard serves the caller's own-day figures.
func (s *Server) CashierDashboard(c *gin.Context) {
	stats, err := s.dashboardSvc.CashierStats(c.Request.Context(), s.userID(c), s.location(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
