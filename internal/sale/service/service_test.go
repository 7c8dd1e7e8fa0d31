package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/kahera/kahera/internal/catalog/domain"
	catalogrepository "github.com/kahera/kahera/internal/catalog/repository"
	ledgerdomain "github.com/kahera/kahera/internal/ledger/domain"
	ledgerservice "github.com/kahera/kahera/internal/ledger/service"
	"github.com/kahera/kahera/internal/sale/domain"
	"github.com/kahera/kahera/internal/sale/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc     domain.Service
	db      *gorm.DB
	catalog catalogdomain.Repository
	genID   *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// SQLite support hack: strip row-locking clauses.
	db.Callback().Query().Before("gorm:query").Register("sqlite_strip_for_update", func(d *gorm.DB) {
		delete(d.Statement.Clauses, "FOR")
		delete(d.Statement.Clauses, "FOR UPDATE")
	})

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Product{},
		&catalogdomain.Category{},
		&domain.Sale{},
		&domain.SaleItem{},
		&ledgerdomain.InventoryLog{},
		&ledgerdomain.SalesLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	catalogRepo := catalogrepository.Provide()
	ledger := ledgerservice.New(ledgerservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.Provide(),
		Catalog: catalogRepo,
		Ledger:  ledger,
	})
	return &fixture{svc: svc, db: db, catalog: catalogRepo, genID: node}
}

func (f *fixture) seedProduct(t *testing.T, name string, price int64, stock int) *catalogdomain.Product {
	t.Helper()
	product := &catalogdomain.Product{
		ID:                f.genID.Generate().Int64(),
		Name:              name,
		Price:             price,
		StockQuantity:     stock,
		LowStockThreshold: catalogdomain.DefaultLowStockThreshold,
	}
	require.NoError(t, f.db.Create(product).Error)
	return product
}

func (f *fixture) stockOf(t *testing.T, id int64) int {
	t.Helper()
	var product catalogdomain.Product
	require.NoError(t, f.db.First(&product, "id = ?", id).Error)
	return product.StockQuantity
}

func TestCreateSale_ComputesTotalFromSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	coke := f.seedProduct(t, "Coke Sakto", 1500, 24)
	bread := f.seedProduct(t, "Pandesal", 250, 100)

	sale, err := f.svc.Create(ctx, domain.CreateRequest{
		UserID: 11,
		Items: []domain.LineItem{
			{ProductID: coke.ID, Quantity: 2},
			{ProductID: bread.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	// 2*15.00 + 2*2.50 = 35.00 pesos in centavos.
	assert.Equal(t, int64(3500), sale.TotalAmount)
	require.Len(t, sale.Items, 2)

	assert.Equal(t, 22, f.stockOf(t, coke.ID))
	assert.Equal(t, 98, f.stockOf(t, bread.ID))

	for _, item := range sale.Items {
		require.NotNil(t, item.ProductID)
		switch *item.ProductID {
		case coke.ID:
			assert.Equal(t, "Coke Sakto", item.SnapshotName)
			assert.Equal(t, int64(1500), item.SnapshotPrice)
		case bread.ID:
			assert.Equal(t, "Pandesal", item.SnapshotName)
			assert.Equal(t, int64(250), item.SnapshotPrice)
		default:
			t.Fatalf("unexpected product id %d", *item.ProductID)
		}
	}
}

func TestCreateSale_FillsTransactionalColumns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := f.seedProduct(t, "Toyo", 1200, 8)

	sale, err := f.svc.Create(ctx, domain.CreateRequest{
		UserID: 1,
		Items:  []domain.LineItem{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	// quantity, price and subtotal are NOT NULL in the schema; read
	// them back raw to prove the insert fills them.
	var row struct {
		Quantity int
		Price    int64
		Subtotal int64
	}
	require.NoError(t, f.db.Table("sale_items").
		Select("quantity, price, subtotal").
		Where("sale_id = ?", sale.ID).
		Scan(&row).Error)
	assert.Equal(t, 3, row.Quantity)
	assert.Equal(t, int64(1200), row.Price)
	assert.Equal(t, int64(3600), row.Subtotal)
}

func TestCreateSale_InsufficientStockRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok := f.seedProduct(t, "Plenty", 1000, 50)
	scarce := f.seedProduct(t, "Scarce", 1000, 1)

	_, err := f.svc.Create(ctx, domain.CreateRequest{
		UserID: 3,
		Items: []domain.LineItem{
			{ProductID: ok.ID, Quantity: 5},
			{ProductID: scarce.ID, Quantity: 2},
		},
	})
	var stockErr *catalogdomain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, scarce.ID, stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 2, stockErr.Requested)

	// Nothing committed: stock, sales, items and ledger all untouched.
	assert.Equal(t, 50, f.stockOf(t, ok.ID))
	assert.Equal(t, 1, f.stockOf(t, scarce.ID))

	var sales, items, invLogs, saleLogs int64
	require.NoError(t, f.db.Model(&domain.Sale{}).Count(&sales).Error)
	require.NoError(t, f.db.Model(&domain.SaleItem{}).Count(&items).Error)
	require.NoError(t, f.db.Model(&ledgerdomain.InventoryLog{}).Count(&invLogs).Error)
	require.NoError(t, f.db.Model(&ledgerdomain.SalesLog{}).Count(&saleLogs).Error)
	assert.Zero(t, sales)
	assert.Zero(t, items)
	assert.Zero(t, invLogs)
	assert.Zero(t, saleLogs)
}

func TestCreateSale_SequentialOverSellingStopsAtZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := f.seedProduct(t, "Limited", 2000, 5)

	_, err := f.svc.Create(ctx, domain.CreateRequest{
		UserID: 1,
		Items:  []domain.LineItem{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		UserID: 2,
		Items:  []domain.LineItem{{ProductID: product.ID, Quantity: 3}},
	})
	var stockErr *catalogdomain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	// Stock never crosses zero.
	assert.Equal(t, 2, f.stockOf(t, product.ID))
}

func TestCreateSale_WritesFullLedgerTrail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seedProduct(t, "A", 100, 10)
	b := f.seedProduct(t, "B", 200, 10)

	sale, err := f.svc.Create(ctx, domain.CreateRequest{
		UserID: 9,
		Items: []domain.LineItem{
			{ProductID: a.ID, Quantity: 1},
			{ProductID: b.ID, Quantity: 4},
		},
	})
	require.NoError(t, err)

	var invLogs []ledgerdomain.InventoryLog
	require.NoError(t, f.db.Find(&invLogs).Error)
	require.Len(t, invLogs, 2)
	for _, entry := range invLogs {
		assert.Equal(t, ledgerdomain.ActionDeducted, entry.Action)
		assert.Negative(t, entry.QuantityChange)
		assert.Equal(t, int64(9), entry.UserID)
	}

	var saleLogs []ledgerdomain.SalesLog
	require.NoError(t, f.db.Find(&saleLogs).Error)
	require.Len(t, saleLogs, 1)
	assert.Equal(t, ledgerdomain.SaleActionCreated, saleLogs[0].Action)
	assert.Equal(t, sale.ID, saleLogs[0].SaleID)
}

func TestCreateSale_DuplicateLineItemsShareOneLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := f.seedProduct(t, "Doubled", 500, 10)

	sale, err := f.svc.Create(ctx, domain.CreateRequest{
		UserID: 1,
		Items: []domain.LineItem{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	// Both lines survive, stock drops by the combined quantity.
	require.Len(t, sale.Items, 2)
	assert.Equal(t, int64(2500), sale.TotalAmount)
	assert.Equal(t, 5, f.stockOf(t, product.ID))
}

func TestCreateSale_DeclaredTotalDoesNotOverrideComputed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := f.seedProduct(t, "Honest", 1000, 10)

	declared := int64(1) // a client lying about the price
	sale, err := f.svc.Create(ctx, domain.CreateRequest{
		UserID:        1,
		Items:         []domain.LineItem{{ProductID: product.ID, Quantity: 2}},
		DeclaredTotal: &declared,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), sale.TotalAmount)
}

func TestCreateSale_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CreateRequest{UserID: 1})
	assert.ErrorIs(t, err, domain.ErrEmptySale)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		UserID: 1,
		Items:  []domain.LineItem{{ProductID: 5, Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidItem)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		UserID: 1,
		Items:  []domain.LineItem{{ProductID: 12345, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrProductGone)
}

func TestDeleteSale_KeepsStockAndAuditTrail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := f.seedProduct(t, "Keeper", 700, 10)

	sale, err := f.svc.Create(ctx, domain.CreateRequest{
		UserID: 4,
		Items:  []domain.LineItem{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, 7, f.stockOf(t, product.ID))

	require.NoError(t, f.svc.Delete(ctx, 4, sale.ID))

	// The goods already left the counter: stock stays deducted.
	assert.Equal(t, 7, f.stockOf(t, product.ID))

	_, err = f.svc.Get(ctx, sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var items int64
	require.NoError(t, f.db.Model(&domain.SaleItem{}).Count(&items).Error)
	assert.Zero(t, items)

	// Both the creation and the deletion remain in the sales log.
	var saleLogs []ledgerdomain.SalesLog
	require.NoError(t, f.db.Order("created_at ASC").Find(&saleLogs).Error)
	require.Len(t, saleLogs, 2)
	assert.Equal(t, ledgerdomain.SaleActionCreated, saleLogs[0].Action)
	assert.Equal(t, ledgerdomain.SaleActionDeleted, saleLogs[1].Action)
	assert.Equal(t, sale.ID, saleLogs[1].SaleID)
}

func TestSaleItemSnapshot_SurvivesProductDeletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := f.seedProduct(t, "Ephemeral", 900, 10)

	sale, err := f.svc.Create(ctx, domain.CreateRequest{
		UserID: 1,
		Items:  []domain.LineItem{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&catalogdomain.Product{}, "id = ?", product.ID).Error)

	got, err := f.svc.Get(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Ephemeral", got.Items[0].SnapshotName)
	assert.Equal(t, int64(900), got.Items[0].SnapshotPrice)
}

func TestSaleItemSnapshot_ImmutableAfterRenameAndReprice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := f.seedProduct(t, "Widget", 1000, 10)

	sale, err := f.svc.Create(ctx, domain.CreateRequest{
		UserID: 1,
		Items:  []domain.LineItem{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&catalogdomain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{"name": "Gadget Pro", "price": 2500}).Error)

	got, err := f.svc.Get(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Widget", got.Items[0].SnapshotName)
	assert.Equal(t, int64(1000), got.Items[0].SnapshotPrice)
	assert.Equal(t, 2, got.Items[0].SnapshotQuantity)
	assert.Equal(t, int64(2000), got.Items[0].Subtotal)
	assert.Equal(t, int64(2000), got.TotalAmount)
}

func TestGetSale_LegacyItemWithoutSnapshotReadsAsDeletedProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Pre-snapshot rows have neither a name nor a product reference.
	saleID := f.genID.Generate().Int64()
	require.NoError(t, f.db.Create(&domain.Sale{ID: saleID, UserID: 1, TotalAmount: 500}).Error)
	require.NoError(t, f.db.Create(&domain.SaleItem{
		ID:               f.genID.Generate().Int64(),
		SaleID:           saleID,
		SnapshotQuantity: 1,
		SnapshotPrice:    500,
	}).Error)

	got, err := f.svc.Get(ctx, saleID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Deleted Product", got.Items[0].SnapshotName)
}

func TestListSales_PaginatesAndFiltersByUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := f.seedProduct(t, "Bulk", 100, 100)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, domain.CreateRequest{
			UserID: 1,
			Items:  []domain.LineItem{{ProductID: product.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, domain.CreateRequest{
		UserID: 2,
		Items:  []domain.LineItem{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, domain.ListRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)

	userID := int64(1)
	own, err := f.svc.List(ctx, domain.ListRequest{UserID: &userID, Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), own.Total)
	assert.Len(t, own.Items, 2)
	assert.True(t, own.HasMore)
}
