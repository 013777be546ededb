package handlers

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"traders/internal/models"
)

var testLogger = zap.NewNop()

type MockDraftService struct {
	mock.Mock
}

func (m *MockDraftService) draftResult(args mock.Arguments) (*models.DraftOrder, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DraftOrder), args.Error(1)
}

func (m *MockDraftService) Load(ctx context.Context, sessionID string) (*models.DraftOrder, error) {
	return m.draftResult(m.Called(ctx, sessionID))
}

func (m *MockDraftService) SetCustomer(ctx context.Context, sessionID string, sel models.CustomerSelection) (*models.DraftOrder, error) {
	return m.draftResult(m.Called(ctx, sessionID, sel))
}

func (m *MockDraftService) AddLine(ctx context.Context, sessionID string, sel models.ProductSelection) (*models.DraftOrder, error) {
	return m.draftResult(m.Called(ctx, sessionID, sel))
}

func (m *MockDraftService) RemoveLine(ctx context.Context, sessionID string, productID int) (*models.DraftOrder, error) {
	return m.draftResult(m.Called(ctx, sessionID, productID))
}

func (m *MockDraftService) SetDetails(ctx context.Context, sessionID string, form models.OrderDetailsForm) (*models.DraftOrder, error) {
	return m.draftResult(m.Called(ctx, sessionID, form))
}

// ComputeTotals is pure, so the double delegates instead of recording.
func (m *MockDraftService) ComputeTotals(draft *models.DraftOrder) models.DraftTotals {
	return draft.Totals()
}

func (m *MockDraftService) Clear(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type MockOrderCommitService struct {
	mock.Mock
}

func (m *MockOrderCommitService) Commit(ctx context.Context, sessionID string) (int, error) {
	args := m.Called(ctx, sessionID)
	return args.Int(0), args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) FindCustomers(ctx context.Context, filter models.CustomerFilter) (*models.Page[*models.Customer], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[*models.Customer]), args.Error(1)
}

func (m *MockCatalogService) FindProducts(ctx context.Context, filter models.ProductFilter) (*models.Page[*models.Product], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[*models.Product]), args.Error(1)
}

func (m *MockCatalogService) AvailableCountries(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCatalogService) RefreshCountries(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCatalogService) Customer(ctx context.Context, id string) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCatalogService) CustomerDetail(ctx context.Context, id, search string) (*models.CustomerDetail, error) {
	args := m.Called(ctx, id, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomerDetail), args.Error(1)
}

func (m *MockCatalogService) ProductDetail(ctx context.Context, id int) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCatalogService) SelectableCustomers(ctx context.Context) ([]*models.Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *MockCatalogService) OrderableProducts(ctx context.Context) ([]*models.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockCatalogService) Employees(ctx context.Context) ([]*models.Employee, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Employee), args.Error(1)
}

func (m *MockCatalogService) Shippers(ctx context.Context) ([]*models.Shipper, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Shipper), args.Error(1)
}

func (m *MockCatalogService) Categories(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCatalogService) Suppliers(ctx context.Context) ([]*models.Supplier, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Supplier), args.Error(1)
}

func (m *MockCatalogService) OrderSummary(ctx context.Context, orderID int) (*models.OrderSummary, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderSummary), args.Error(1)
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, form models.ProductForm) (*models.Product, error) {
	args := m.Called(ctx, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id int, form models.ProductForm) (*models.Product, error) {
	args := m.Called(ctx, id, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) UploadImage(ctx context.Context, id int, contentType string, reader io.Reader, size int64) error {
	return m.Called(ctx, id, contentType, reader, size).Error(0)
}

func (m *MockProductService) ImageURL(ctx context.Context, id int) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockProductService) DeleteImage(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}
