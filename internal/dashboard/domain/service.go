package domain

import (
	"context"
	"time"

	saledomain "github.com/kahera/kahera/internal/sale/domain"
)

type Service interface {
	AdminStats(ctx context.Context, loc *time.Location) (*AdminStats, error)
	CashierStats(ctx context.Context, userID int64, loc *time.Location) (*CashierStats, error)
}

// AdminStats aggregates storewide figures. Amounts are centavos;
// ChangePercentage compares this calendar month against the previous
// one in the caller's timezone.
type AdminStats struct {
	TodaySalesTotal  int64             `json:"today_sales_total"`
	TodaySalesCount  int64             `json:"today_sales_count"`
	ItemsSoldToday   int64             `json:"items_sold_today"`
	MonthRevenue     int64             `json:"month_revenue"`
	PrevMonthRevenue int64             `json:"prev_month_revenue"`
	ChangePercentage float64           `json:"change_percentage"`
	TotalProducts    int64             `json:"total_products"`
	LowStockCount    int64             `json:"low_stock_count"`
	ActiveUsers      int64             `json:"active_users"`
	RecentSales      []saledomain.Sale `json:"recent_sales"`
}

// CashierStats covers only the requesting cashier's own day.
type CashierStats struct {
	TodayTotal  int64             `json:"today_total"`
	TodayCount  int64             `json:"today_count"`
	RecentSales []saledomain.Sale `json:"recent_sales"`
}
