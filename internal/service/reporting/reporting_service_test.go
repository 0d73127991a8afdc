package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/i18n"
	"github.com/mamadbah2/inventory/internal/repository/recordstore"
)

// MockReportRepository is a mock implementation of mongodb.Repository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) SaveInventoryReport(ctx context.Context, report models.InventoryReport) error {
	return m.Called(ctx, report).Error(0)
}

// MockSheet is a mock implementation of sheets.Repository
type MockSheet struct {
	mock.Mock
}

func (m *MockSheet) AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	return m.Called(ctx, sheetRange, rows).Error(0)
}

// MockAlerts is a mock implementation of AlertSender
type MockAlerts struct {
	mock.Mock
}

func (m *MockAlerts) SendAlert(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

func product(name, category string, qty int, price string, threshold int) models.Product {
	return models.Product{
		ID:                "id-" + name,
		Name:              name,
		Category:          category,
		Quantity:          qty,
		Price:             decimal.RequireFromString(price),
		LowStockThreshold: threshold,
	}
}

func sampleProducts() []models.Product {
	return []models.Product{
		product("Laptop", "Electronics", 0, "999.99", 5),
		product("Mouse", "Electronics", 3, "19.99", 5),
		product("Monitor", "Electronics", 25, "229.00", 5),
		product("Desk", "Furniture", 12, "149.50", 4),
	}
}

var reportTime = time.Date(2026, 10, 16, 20, 0, 0, 0, time.FixedZone("MSK", 3*60*60))

func TestGenerate(t *testing.T) {
	report := Generate(sampleProducts(), reportTime)

	assert.Equal(t, "2026-10-16", report.Date.Format(dateLayout))
	assert.Equal(t, reportTime.UTC(), report.CreatedAt)
	assert.Equal(t, 4, report.TotalProducts)
	assert.Equal(t, "7578.97", report.TotalValue)
	assert.Equal(t, 2, report.InStock)
	assert.Equal(t, 1, report.LowStock)
	assert.Equal(t, 1, report.OutOfStock)

	require.Len(t, report.RestockItems, 2)
	assert.Equal(t, models.RestockItem{
		ProductID: "id-Laptop", Name: "Laptop", Category: "Electronics",
		Quantity: 0, Threshold: 5, Status: models.StatusOutOfStock,
	}, report.RestockItems[0])
	assert.Equal(t, models.StatusLowStock, report.RestockItems[1].Status)

	assert.Equal(t, []models.CategoryAmount{
		{Category: "Electronics", Amount: "5784.97"},
		{Category: "Furniture", Amount: "1794.00"},
	}, report.CategoryValues)
}

func TestGenerate_Empty(t *testing.T) {
	report := Generate(nil, reportTime)

	assert.Zero(t, report.TotalProducts)
	assert.Equal(t, "0.00", report.TotalValue)
	assert.NotNil(t, report.RestockItems)
	assert.Empty(t, report.RestockItems)
}

func TestRestockRows(t *testing.T) {
	report := Generate(sampleProducts(), reportTime)

	rows := RestockRows(report, i18n.For(i18n.English))
	assert.Equal(t, [][]interface{}{
		{"2026-10-16", "Laptop", "Electronics", 0, 5, "Out of Stock"},
		{"2026-10-16", "Mouse", "Electronics", 3, 5, "Low Stock"},
	}, rows)
}

func TestFormatAlert(t *testing.T) {
	report := Generate(sampleProducts(), reportTime)

	en := FormatAlert(report, i18n.For(i18n.English))
	assert.Equal(t, "Restock alert for 2026-10-16: 2 product(s) need attention.\n"+
		"- Laptop (Electronics): 0 left, threshold 5, Out of Stock\n"+
		"- Mouse (Electronics): 3 left, threshold 5, Low Stock\n"+
		"Inventory value: 7578.97 USD across 4 product(s).", en)

	ru := FormatAlert(report, i18n.For(i18n.Russian))
	assert.Contains(t, ru, "- Laptop (Electronics): осталось 0, порог 5, Нет в наличии")

	calm := FormatAlert(Generate(sampleProducts()[2:], reportTime), i18n.For(i18n.English))
	assert.Equal(t, "All products are in stock.\nInventory value: 7519.00 USD across 2 product(s).", calm)
}

func TestRun_DeliversToEverySink(t *testing.T) {
	store := recordstore.NewMemoryStore()
	for _, p := range sampleProducts() {
		_, err := store.Insert(context.Background(), models.ProductInput{
			Name: p.Name, Category: p.Category, Quantity: p.Quantity, Price: p.Price, LowStockThreshold: p.LowStockThreshold,
		})
		require.NoError(t, err)
	}

	reports := new(MockReportRepository)
	sheet := new(MockSheet)
	alerts := new(MockAlerts)
	reports.On("SaveInventoryReport", mock.Anything, mock.MatchedBy(func(r models.InventoryReport) bool {
		return r.TotalProducts == 4 && len(r.RestockItems) == 2
	})).Return(nil).Once()
	sheet.On("AppendRows", mock.Anything, "Restock!A:F", mock.MatchedBy(func(rows [][]interface{}) bool {
		return len(rows) == 2
	})).Return(nil).Once()
	alerts.On("SendAlert", mock.Anything, mock.MatchedBy(func(text string) bool {
		return len(text) > 0
	})).Return(nil).Once()

	svc := NewService(store, Sinks{Reports: reports, Sheet: sheet, Alerts: alerts}, i18n.English, time.UTC, nil)
	svc.now = func() time.Time { return reportTime }

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalProducts)

	reports.AssertExpectations(t)
	sheet.AssertExpectations(t)
	alerts.AssertExpectations(t)
}

func TestRun_SinkFailuresAreIndependent(t *testing.T) {
	store := recordstore.NewMemoryStore()
	_, err := store.Insert(context.Background(), models.ProductInput{
		Name: "Laptop", Category: "Electronics", Quantity: 0, Price: decimal.NewFromInt(1000), LowStockThreshold: 5,
	})
	require.NoError(t, err)

	reports := new(MockReportRepository)
	sheet := new(MockSheet)
	alerts := new(MockAlerts)
	reports.On("SaveInventoryReport", mock.Anything, mock.Anything).Return(errors.New("mongo down")).Once()
	sheet.On("AppendRows", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("quota")).Once()
	alerts.On("SendAlert", mock.Anything, mock.Anything).Return(nil).Once()

	svc := NewService(store, Sinks{Reports: reports, Sheet: sheet, Alerts: alerts}, i18n.English, nil, nil)

	_, err = svc.Run(context.Background())
	require.NoError(t, err)
	alerts.AssertExpectations(t)
}

func TestRun_NoRestockSkipsSheetAndAlert(t *testing.T) {
	store := recordstore.NewMemoryStore()
	_, err := store.Insert(context.Background(), models.ProductInput{
		Name: "Monitor", Category: "Electronics", Quantity: 25, Price: decimal.NewFromInt(229), LowStockThreshold: 5,
	})
	require.NoError(t, err)

	reports := new(MockReportRepository)
	sheet := new(MockSheet)
	alerts := new(MockAlerts)
	reports.On("SaveInventoryReport", mock.Anything, mock.Anything).Return(nil).Once()

	svc := NewService(store, Sinks{Reports: reports, Sheet: sheet, Alerts: alerts}, i18n.English, nil, nil)
	_, err = svc.Run(context.Background())
	require.NoError(t, err)

	sheet.AssertNotCalled(t, "AppendRows", mock.Anything, mock.Anything, mock.Anything)
	alerts.AssertNotCalled(t, "SendAlert", mock.Anything, mock.Anything)
	reports.AssertExpectations(t)
}

func TestRun_StoreFailure(t *testing.T) {
	svc := NewService(failingStore{}, Sinks{}, i18n.English, nil, nil)

	_, err := svc.Run(context.Background())
	var storeErr *models.StoreError
	assert.True(t, errors.As(err, &storeErr))
}

type failingStore struct {
	recordstore.Store
}

func (failingStore) List(context.Context) ([]models.Product, error) {
	return nil, &models.StoreError{Op: "list", Status: 503}
}
