package service

import (
	"context"
	"math"
	"time"

	catalogdomain "github.com/kahera/kahera/internal/catalog/domain"
	"github.com/kahera/kahera/internal/dashboard/domain"
	saledomain "github.com/kahera/kahera/internal/sale/domain"
	timelogdomain "github.com/kahera/kahera/internal/timelog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Sales saledomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	sales saledomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dashboard.service"),
		sales: p.Sales,
	}
}

const recentSalesLimit = 5

func (s *Service) AdminStats(ctx context.Context, loc *time.Location) (*domain.AdminStats, error) {
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	dayFrom, dayTo := dayWindow(now, loc)
	monthFrom, monthTo := monthWindow(now, loc)
	prevFrom, prevTo := prevMonthWindow(now, loc)

	stats := &domain.AdminStats{}

	var err error
	if stats.TodaySalesTotal, err = s.sales.SumBetween(ctx, s.db, dayFrom, dayTo); err != nil {
		return nil, err
	}
	if stats.TodaySalesCount, err = s.sales.CountBetween(ctx, s.db, dayFrom, dayTo); err != nil {
		return nil, err
	}
	if stats.ItemsSoldToday, err = s.itemsSold(ctx, dayFrom, dayTo); err != nil {
		return nil, err
	}
	if stats.MonthRevenue, err = s.sales.SumBetween(ctx, s.db, monthFrom, monthTo); err != nil {
		return nil, err
	}
	if stats.PrevMonthRevenue, err = s.sales.SumBetween(ctx, s.db, prevFrom, prevTo); err != nil {
		return nil, err
	}
	stats.ChangePercentage = changePercentage(stats.MonthRevenue, stats.PrevMonthRevenue)

	if err = s.db.WithContext(ctx).Model(&catalogdomain.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err = s.db.WithContext(ctx).Model(&catalogdomain.Product{}).
		Where("stock_quantity <= low_stock_threshold").
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	// Open shifts count as active users.
	if err = s.db.WithContext(ctx).Model(&timelogdomain.TimeLog{}).
		Where("status = ?", timelogdomain.StatusLoggedIn).
		Distinct("user_id").
		Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}

	if stats.RecentSales, err = s.recent(ctx, nil); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Service) itemsSold(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&saledomain.SaleItem{}).
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.created_at >= ? AND sales.created_at < ?", from, to).
		Select("COALESCE(SUM(sale_items.quantity), 0)").
		Scan(&total).Error
	return total, err
}

func (s *Service) CashierStats(ctx context.Context, userID int64, loc *time.Location) (*domain.CashierStats, error) {
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	dayFrom, dayTo := dayWindow(now, loc)

	stats := &domain.CashierStats{}

	var err error
	if stats.TodayTotal, err = s.sales.SumBetweenForUser(ctx, s.db, userID, dayFrom, dayTo); err != nil {
		return nil, err
	}
	if stats.TodayCount, err = s.sales.CountBetweenForUser(ctx, s.db, userID, dayFrom, dayTo); err != nil {
		return nil, err
	}
	if stats.RecentSales, err = s.recent(ctx, &userID); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Service) recent(ctx context.Context, userID *int64) ([]saledomain.Sale, error) {
	query := s.db.WithContext(ctx).Model(&saledomain.Sale{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	var sales []saledomain.Sale
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Limit(recentSalesLimit).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// dayWindow is the half-open UTC window covering the local calendar
// day of t.
func dayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return from.UTC(), from.AddDate(0, 0, 1).UTC()
}

func monthWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	from := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return from.UTC(), from.AddDate(0, 1, 0).UTC()
}

// prevMonthWindow steps back from the first of t's month: AddDate on
// the 29th-31st would normalize past a shorter previous month.
func prevMonthWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	from, _ := monthWindow(t, loc)
	return monthWindow(from.In(loc).AddDate(0, -1, 0), loc)
}

// changePercentage is the month-over-month delta rounded to two
// decimals: with no prior revenue, any current revenue reads as +100%.
func changePercentage(current, previous int64) float64 {
	if previous > 0 {
		pct := (float64(current) - float64(previous)) / float64(previous) * 100
		return math.Round(pct*100) / 100
	}
	if current > 0 {
		return 100
	}
	return 0
}
