package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/kahera/kahera/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.InventoryLog{}, &domain.SalesLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{DB: db, Log: zap.NewNop(), GenID: node}), db
}

func TestAppendInventory_RunsInCallerTransaction(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	productID := int64(42)

	boom := errors.New("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.AppendInventory(ctx, tx, domain.InventoryEntry{
			UserID:         1,
			ProductID:      &productID,
			Action:         domain.ActionRestock,
			QuantityChange: 5,
			SnapshotName:   "Bigas",
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The rolled-back entry never lands.
	var count int64
	require.NoError(t, db.Model(&domain.InventoryLog{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return svc.AppendInventory(ctx, tx, domain.InventoryEntry{
			UserID:         1,
			ProductID:      &productID,
			Action:         domain.ActionRestock,
			QuantityChange: 5,
			SnapshotName:   "Bigas",
		})
	}))
	require.NoError(t, db.Model(&domain.InventoryLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListInventory_Filters(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	p1, p2 := int64(1), int64(2)
	entries := []domain.InventoryEntry{
		{UserID: 10, ProductID: &p1, Action: domain.ActionCreated, QuantityChange: 5, SnapshotName: "A"},
		{UserID: 10, ProductID: &p2, Action: domain.ActionDeducted, QuantityChange: -2, SnapshotName: "B"},
		{UserID: 20, ProductID: &p1, Action: domain.ActionRestock, QuantityChange: 3, SnapshotName: "A"},
	}
	for _, entry := range entries {
		require.NoError(t, svc.AppendInventory(ctx, db, entry))
	}

	userID := int64(10)
	byUser, total, err := svc.ListInventory(ctx, domain.ListInventoryRequest{UserID: &userID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byUser, 2)

	byProduct, total, err := svc.ListInventory(ctx, domain.ListInventoryRequest{ProductID: &p1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byProduct, 2)
}

func TestListSales_DateFilterUsesLocalDay(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	// 23:30 Manila on the 10th and 01:00 on the 11th are only 90
	// minutes apart in UTC but fall on different local days.
	late := time.Date(2026, 3, 10, 23, 30, 0, 0, manila)
	early := time.Date(2026, 3, 11, 1, 0, 0, 0, manila)

	require.NoError(t, svc.AppendSale(ctx, db, domain.SaleEntry{
		UserID: 1, SaleID: 100, Action: domain.SaleActionCreated, OccurredAt: late.UTC(),
	}))
	require.NoError(t, svc.AppendSale(ctx, db, domain.SaleEntry{
		UserID: 1, SaleID: 101, Action: domain.SaleActionCreated, OccurredAt: early.UTC(),
	}))

	day := time.Date(2026, 3, 10, 12, 0, 0, 0, manila)
	logs, total, err := svc.ListSales(ctx, domain.ListSalesRequest{Date: &day, Loc: manila})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(100), logs[0].SaleID)
}
