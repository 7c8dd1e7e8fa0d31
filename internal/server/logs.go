package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/kahera/kahera/internal/auth/domain"
	ledgerdomain "github.com/kahera/kahera/internal/ledger/domain"
	timelogdomain "github.com/kahera/kahera/internal/timelog/domain"
)

func (s *Server) ListInventoryLogs(c *gin.Context) {
	page, perPage := parsePagination(c)

	userID, err := parseOptionalInt64(c.Query("user_id"))
	if err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_user_id", "user_id must be an integer"))
		return
	}
	productID, err := parseOptionalInt64(c.Query("product_id"))
	if err != nil {
		AbortWithError(c, newValidationError("product_id", "invalid_product_id", "product_id must be an integer"))
		return
	}

	logs, total, err := s.ledgerSvc.ListInventory(c.Request.Context(), ledgerdomain.ListInventoryRequest{
		UserID:    userID,
		ProductID: productID,
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs, "total": total, "current_page": page, "per_page": perPage})
}

func (s *Server) ListSalesLogs(c *gin.Context) {
	page, perPage := parsePagination(c)

	userID, err := parseOptionalInt64(c.Query("user_id"))
	if err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_user_id", "user_id must be an integer"))
		return
	}
	date, err := parseOptionalDate(c.Query("date"), s.location(c))
	if err != nil {
		AbortWithError(c, newValidationError("date", "invalid_date", "date must be YYYY-MM-DD"))
		return
	}

	// Cashiers only see their own activity.
	if s.userRole(c) != authdomain.RoleAdmin {
		own := s.userID(c)
		userID = &own
	}

	logs, total, err := s.ledgerSvc.ListSales(c.Request.Context(), ledgerdomain.ListSalesRequest{
		UserID:  userID,
		Date:    date,
		Loc:     s.location(c),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs, "total": total, "current_page": page, "per_page": perPage})
}

func (s *Server) ListTimeLogs(c *gin.Context) {
	page, perPage := parsePagination(c)

	userID, err := parseOptionalInt64(c.Query("user_id"))
	if err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_user_id", "user_id must be an integer"))
		return
	}

	if s.userRole(c) != authdomain.RoleAdmin {
		own := s.userID(c)
		userID = &own
	}

	logs, total, err := s.timelogSvc.List(c.Request.Context(), timelogdomain.ListRequest{
		UserID:  userID,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs, "total": total, "current_page": page, "per_page": perPage})
}
