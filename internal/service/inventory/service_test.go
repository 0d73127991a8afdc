package inventory_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/i18n"
	"github.com/mamadbah2/inventory/internal/repository/recordstore"
	"github.com/mamadbah2/inventory/internal/service/access"
	"github.com/mamadbah2/inventory/internal/service/export"
	"github.com/mamadbah2/inventory/internal/service/inventory"
	"github.com/mamadbah2/inventory/internal/service/session"
)

// MockPublisher is a mock implementation of rabbitmq.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductEvent(ctx context.Context, event models.ProductEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

func sessionFor(role models.Role) *session.Session {
	return &session.Session{
		AccessToken:  "token-" + string(role),
		User:         session.User{ID: "user-" + string(role)},
		Role:         role,
		Capabilities: access.Resolve(role),
	}
}

func productInput(name, category string, qty int, price string, threshold int) models.ProductInput {
	return models.ProductInput{
		Name:              name,
		Category:          category,
		Quantity:          qty,
		Price:             decimal.RequireFromString(price),
		LowStockThreshold: threshold,
	}
}

func newService(t *testing.T) (*inventory.Service, *recordstore.MemoryStore, *MockPublisher) {
	t.Helper()
	store := recordstore.NewMemoryStore()
	publisher := new(MockPublisher)
	return inventory.NewService(store, publisher, nil), store, publisher
}

func seed(t *testing.T, svc *inventory.Service, publisher *MockPublisher, inputs ...models.ProductInput) []*models.Product {
	t.Helper()
	publisher.On("PublishProductEvent", mock.Anything, mock.Anything).Return(nil).Times(len(inputs))

	admin := sessionFor(models.RoleAdmin)
	created := make([]*models.Product, 0, len(inputs))
	for _, in := range inputs {
		p, err := svc.Add(context.Background(), admin, in)
		require.NoError(t, err)
		created = append(created, p)
	}
	return created
}

func TestAdd_PublishesCreatedEvent(t *testing.T) {
	svc, _, publisher := newService(t)
	publisher.On("PublishProductEvent", mock.Anything, mock.MatchedBy(func(e models.ProductEvent) bool {
		return e.Type == models.ProductCreated && e.ActorID == "user-user" && e.Product != nil && e.Product.Name == "Desk"
	})).Return(nil).Once()

	p, err := svc.Add(context.Background(), sessionFor(models.RoleUser), productInput("  Desk ", " Furniture", 2, "149.50", 1))
	require.NoError(t, err)

	assert.Equal(t, "Desk", p.Name)
	assert.Equal(t, "Furniture", p.Category)
	assert.NotEmpty(t, p.ID)
	publisher.AssertExpectations(t)
}

func TestAdd_ValidationHappensBeforeTheStore(t *testing.T) {
	svc, store, publisher := newService(t)

	_, err := svc.Add(context.Background(), sessionFor(models.RoleAdmin), models.ProductInput{
		Name:              strings.Repeat("x", 201),
		Quantity:          -1,
		Price:             decimal.Zero,
		LowStockThreshold: -1,
	})

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "must be at most 200 characters", fields["name"])
	assert.Equal(t, "is required", fields["category"])
	assert.Equal(t, "must be at least 0", fields["quantity"])
	assert.Equal(t, "must be greater than 0", fields["price"])
	assert.Equal(t, "must be at least 0", fields["lowStockThreshold"])

	products, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
	publisher.AssertNotCalled(t, "PublishProductEvent", mock.Anything, mock.Anything)
}

func TestAdd_NameLimitCountsCharacters(t *testing.T) {
	svc, _, publisher := newService(t)
	publisher.On("PublishProductEvent", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := svc.Add(context.Background(), sessionFor(models.RoleAdmin), productInput(strings.Repeat("ж", 200), "Разное", 1, "1", 0))
	assert.NoError(t, err)
}

func TestAdd_Duplicate(t *testing.T) {
	svc, _, publisher := newService(t)
	seed(t, svc, publisher, productInput("Desk", "Furniture", 1, "10", 1))

	_, err := svc.Add(context.Background(), sessionFor(models.RoleAdmin), productInput("Desk ", "Furniture", 9, "11", 1))
	assert.True(t, errors.Is(err, models.ErrDuplicate))
}

func TestMutations_RequireCanModify(t *testing.T) {
	for _, role := range []models.Role{models.RoleViewer, models.RoleNone, models.Role("auditor")} {
		t.Run(string(role), func(t *testing.T) {
			svc, _, publisher := newService(t)
			sess := sessionFor(role)
			in := productInput("Desk", "Furniture", 1, "10", 1)

			_, err := svc.Add(context.Background(), sess, in)
			assert.True(t, errors.Is(err, models.ErrForbidden))
			_, err = svc.Update(context.Background(), sess, "id", in)
			assert.True(t, errors.Is(err, models.ErrForbidden))
			assert.True(t, errors.Is(svc.Delete(context.Background(), sess, "id"), models.ErrForbidden))

			publisher.AssertNotCalled(t, "PublishProductEvent", mock.Anything, mock.Anything)
		})
	}
}

func TestNilSessionIsUnauthenticated(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.List(context.Background(), nil, "")
	assert.True(t, errors.Is(err, models.ErrUnauthenticated))
	_, err = svc.Add(context.Background(), nil, models.ProductInput{})
	assert.True(t, errors.Is(err, models.ErrUnauthenticated))
}

func TestUpdate_FullReplace(t *testing.T) {
	svc, _, publisher := newService(t)
	created := seed(t, svc, publisher, productInput("Desk", "Furniture", 1, "10", 1))
	publisher.On("PublishProductEvent", mock.Anything, mock.MatchedBy(func(e models.ProductEvent) bool {
		return e.Type == models.ProductUpdated && e.ProductID == created[0].ID
	})).Return(nil).Once()

	updated, err := svc.Update(context.Background(), sessionFor(models.RoleUser), created[0].ID, productInput("Standing desk", "Office", 4, "320", 2))
	require.NoError(t, err)

	assert.Equal(t, created[0].ID, updated.ID)
	assert.Equal(t, "Standing desk", updated.Name)
	assert.Equal(t, "Office", updated.Category)
	assert.Equal(t, 2, updated.LowStockThreshold)
	assert.Equal(t, created[0].CreatedAt, updated.CreatedAt)
	publisher.AssertExpectations(t)
}

func TestUpdateDelete_MissingProduct(t *testing.T) {
	svc, _, _ := newService(t)
	admin := sessionFor(models.RoleAdmin)

	_, err := svc.Update(context.Background(), admin, "ghost", productInput("Desk", "Furniture", 1, "10", 1))
	var storeErr *models.StoreError
	assert.True(t, errors.As(err, &storeErr))
	assert.True(t, errors.Is(err, models.ErrNotFound))

	err = svc.Delete(context.Background(), admin, "ghost")
	assert.True(t, errors.As(err, &storeErr))

	var verr *models.ValidationError
	assert.True(t, errors.As(svc.Delete(context.Background(), admin, " "), &verr))
}

func TestDelete_PublishesEventAndToleratesBrokerFailure(t *testing.T) {
	svc, store, publisher := newService(t)
	created := seed(t, svc, publisher, productInput("Desk", "Furniture", 1, "10", 1))
	publisher.On("PublishProductEvent", mock.Anything, mock.MatchedBy(func(e models.ProductEvent) bool {
		return e.Type == models.ProductDeleted
	})).Return(errors.New("broker down")).Once()

	require.NoError(t, svc.Delete(context.Background(), sessionFor(models.RoleAdmin), created[0].ID))

	products, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
	publisher.AssertExpectations(t)
}

func TestList_FiltersByQuery(t *testing.T) {
	svc, _, publisher := newService(t)
	seed(t, svc, publisher,
		productInput("Laptop", "Electronics", 0, "999.99", 5),
		productInput("Chair", "Furniture", 2, "89.50", 5),
		productInput("Pen", "Stationery", 500, "0.50", 50),
	)

	all, err := svc.List(context.Background(), sessionFor(models.RoleViewer), "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Pen", all[0].Name, "newest first")

	hits, err := svc.List(context.Background(), sessionFor(models.RoleViewer), "FURN")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Chair", hits[0].Name)
}

func TestMetrics(t *testing.T) {
	svc, _, publisher := newService(t)
	seed(t, svc, publisher,
		productInput("Laptop", "Electronics", 0, "999.99", 5),
		productInput("Mouse", "Electronics", 3, "19.99", 5),
		productInput("Monitor", "Electronics", 25, "229.00", 5),
	)

	snap, err := svc.Metrics(context.Background(), sessionFor(models.RoleViewer))
	require.NoError(t, err)

	assert.Equal(t, 3, snap.TotalProducts)
	assert.Equal(t, "5784.97", snap.TotalValue.StringFixed(2))
	assert.Len(t, snap.LowStockItems, 1)
	assert.Len(t, snap.OutOfStockItems, 1)
	assert.Len(t, snap.RestockItems(), 2)
}

func TestExport(t *testing.T) {
	svc, _, publisher := newService(t)
	seed(t, svc, publisher,
		productInput("Laptop", "Electronics", 0, "999.99", 5),
		productInput("Monitor", "Electronics", 25, "229.00", 5),
	)
	admin := sessionFor(models.RoleAdmin)

	file, err := svc.Export(context.Background(), admin, export.ReportLowStock, export.FormatCSV, i18n.English)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.Name, "inventory-low-stock-"))

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(file.Data, []byte("\uFEFF"))))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Laptop", records[1][0])

	full, err := svc.Export(context.Background(), admin, export.ReportFull, export.FormatXLSX, i18n.Russian)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(full.Name, ".xlsx"))
}

func TestExport_EmptySelection(t *testing.T) {
	svc, _, publisher := newService(t)
	admin := sessionFor(models.RoleAdmin)

	_, err := svc.Export(context.Background(), admin, export.ReportFull, export.FormatCSV, i18n.English)
	var empty *models.EmptyExportError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, "full", empty.ReportType)

	seed(t, svc, publisher, productInput("Monitor", "Electronics", 25, "229.00", 5))
	_, err = svc.Export(context.Background(), admin, export.ReportLowStock, export.FormatCSV, i18n.English)
	assert.True(t, errors.Is(err, models.ErrEmptyExport))
}

func TestExport_RequiresCanExport(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Export(context.Background(), sessionFor(models.RoleUser), export.ReportFull, export.FormatCSV, i18n.English)
	assert.True(t, errors.Is(err, models.ErrForbidden))
}

func TestAuditLog(t *testing.T) {
	svc, _, publisher := newService(t)
	created := seed(t, svc, publisher, productInput("Desk", "Furniture", 1, "10", 1))
	publisher.On("PublishProductEvent", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Update(context.Background(), sessionFor(models.RoleAdmin), created[0].ID, productInput("Desk", "Furniture", 7, "10", 1))
	require.NoError(t, err)

	entries, err := svc.AuditLog(context.Background(), sessionFor(models.RoleAdmin), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "quantity: 1 → 7", entries[0].Summary())

	one, err := svc.AuditLog(context.Background(), sessionFor(models.RoleAdmin), 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	_, err = svc.AuditLog(context.Background(), sessionFor(models.RoleUser), 10)
	assert.True(t, errors.Is(err, models.ErrForbidden))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, inventory.IsClientError(models.NewValidationError("name", "is required")))
	assert.True(t, inventory.IsClientError(&models.DuplicateError{}))
	assert.True(t, inventory.IsClientError(&models.EmptyExportError{}))
	assert.False(t, inventory.IsClientError(&models.StoreError{Op: "list", Status: 500}))
	assert.False(t, inventory.IsClientError(errors.New("boom")))
}
