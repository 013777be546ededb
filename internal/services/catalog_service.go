package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"traders/internal/caching"
	"traders/internal/common"
	"traders/internal/models"
	"traders/internal/repositories"
)

const (
	countriesTTL = 10 * time.Minute
	productTTL   = 15 * time.Minute
)

// CatalogService is the read side of the application: listings, detail pages
// and the reference data offered by the order wizard.
type CatalogService interface {
	FindCustomers(ctx context.Context, filter models.CustomerFilter) (*models.Page[*models.Customer], error)
	FindProducts(ctx context.Context, filter models.ProductFilter) (*models.Page[*models.Product], error)
	AvailableCountries(ctx context.Context) ([]string, error)
	RefreshCountries(ctx context.Context) ([]string, error)
	Customer(ctx context.Context, id string) (*models.Customer, error)
	CustomerDetail(ctx context.Context, id, search string) (*models.CustomerDetail, error)
	ProductDetail(ctx context.Context, id int) (*models.Product, error)
	SelectableCustomers(ctx context.Context) ([]*models.Customer, error)
	OrderableProducts(ctx context.Context) ([]*models.Product, error)
	Employees(ctx context.Context) ([]*models.Employee, error)
	Shippers(ctx context.Context) ([]*models.Shipper, error)
	Categories(ctx context.Context) ([]*models.Category, error)
	Suppliers(ctx context.Context) ([]*models.Supplier, error)
	OrderSummary(ctx context.Context, orderID int) (*models.OrderSummary, error)
}

// CatalogRepos groups the repositories read by the catalog.
type CatalogRepos struct {
	Customers  repositories.CustomerRepository
	Products   repositories.ProductRepository
	Employees  repositories.EmployeeRepository
	Shippers   repositories.ShipperRepository
	Categories repositories.CategoryRepository
	Suppliers  repositories.SupplierRepository
	Orders     repositories.OrderRepository
	OrderLines repositories.OrderLineRepository
}

type catalogService struct {
	repos  CatalogRepos
	cache  caching.CacheService
	logger *zap.Logger
}

func NewCatalogService(repos CatalogRepos, cache caching.CacheService, logger *zap.Logger) CatalogService {
	return &catalogService{repos: repos, cache: cache, logger: logger}
}

func (s *catalogService) FindCustomers(ctx context.Context, filter models.CustomerFilter) (*models.Page[*models.Customer], error) {
	page := max(filter.Page, 1)
	filter.Company = common.SanitizeSearchQuery(filter.Company)
	filter.Title = common.SanitizeSearchQuery(filter.Title)
	filter.Country = common.SanitizeSearchQuery(filter.Country)

	customers, total, err := s.repos.Customers.Find(ctx, filter, common.DefaultPageSize, common.PageOffset(page, common.DefaultPageSize))
	if err != nil {
		return nil, err
	}
	return models.NewPage(customers, total, page, common.DefaultPageSize), nil
}

func (s *catalogService) FindProducts(ctx context.Context, filter models.ProductFilter) (*models.Page[*models.Product], error) {
	page := max(filter.Page, 1)
	filter.Search = common.SanitizeSearchQuery(filter.Search)
	filter.Name = common.SanitizeSearchQuery(filter.Name)
	filter.Category = common.SanitizeSearchQuery(filter.Category)
	filter.Supplier = common.SanitizeSearchQuery(filter.Supplier)

	products, total, err := s.repos.Products.Find(ctx, filter, common.DefaultPageSize, common.PageOffset(page, common.DefaultPageSize))
	if err != nil {
		return nil, err
	}
	return models.NewPage(products, total, page, common.DefaultPageSize), nil
}

func (s *catalogService) AvailableCountries(ctx context.Context) ([]string, error) {
	if countries, err := s.cache.GetCountries(ctx); countries != nil {
		return countries, nil
	} else if err != nil {
		s.logger.Warn("countries cache read failed", zap.Error(err))
	}
	return s.RefreshCountries(ctx)
}

// RefreshCountries reloads the country list from the database into the cache.
func (s *catalogService) RefreshCountries(ctx context.Context) ([]string, error) {
	countries, err := s.repos.Customers.Countries(ctx)
	if err != nil {
		return nil, err
	}
	if countries == nil {
		countries = []string{}
	}
	if err := s.cache.SetCountries(ctx, countries, countriesTTL); err != nil {
		s.logger.Warn("countries cache write failed", zap.Error(err))
	}
	return countries, nil
}

func (s *catalogService) Customer(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := s.repos.Customers.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "customer", id)
	}
	return customer, nil
}

func (s *catalogService) CustomerDetail(ctx context.Context, id, search string) (*models.CustomerDetail, error) {
	var (
		customer *models.Customer
		orders   []*models.Order
		lines    []*models.OrderLine
		products []*models.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customer, err = s.Customer(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.repos.Orders.ListByCustomer(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		lines, err = s.repos.OrderLines.ListByCustomerID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.repos.Products.ListByCustomer(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	linesByOrder := make(map[int][]*models.OrderLine)
	for _, l := range lines {
		linesByOrder[l.OrderID] = append(linesByOrder[l.OrderID], l)
	}
	withTotals := make([]*models.OrderWithTotal, 0, len(orders))
	for _, o := range orders {
		withTotals = append(withTotals, &models.OrderWithTotal{Order: o, Total: models.OrderTotal(linesByOrder[o.ID])})
	}

	search = common.SanitizeSearchQuery(search)
	if products == nil {
		products = []*models.Product{}
	}
	return &models.CustomerDetail{
		Customer:   customer,
		Orders:     withTotals,
		Products:   products,
		OrderLines: filterLines(lines, search),
		Search:     search,
	}, nil
}

// filterLines keeps the lines whose product name or order id contains search.
func filterLines(lines []*models.OrderLine, search string) []*models.OrderLine {
	filtered := make([]*models.OrderLine, 0, len(lines))
	needle := strings.ToLower(search)
	for _, l := range lines {
		if needle == "" ||
			strings.Contains(strings.ToLower(l.ProductName), needle) ||
			strings.Contains(strconv.Itoa(l.OrderID), needle) {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

func (s *catalogService) ProductDetail(ctx context.Context, id int) (*models.Product, error) {
	if cached, err := s.cache.GetProduct(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("product cache read failed", zap.Int("product_id", id), zap.Error(err))
	}

	product, err := s.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}

	if err := s.cache.SetProduct(ctx, product, productTTL); err != nil {
		s.logger.Warn("product cache write failed", zap.Int("product_id", id), zap.Error(err))
	}
	return product, nil
}

func (s *catalogService) SelectableCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.repos.Customers.ListAll(ctx)
}

func (s *catalogService) OrderableProducts(ctx context.Context) ([]*models.Product, error) {
	return s.repos.Products.ListOrderable(ctx)
}

func (s *catalogService) Employees(ctx context.Context) ([]*models.Employee, error) {
	return s.repos.Employees.List(ctx)
}

func (s *catalogService) Shippers(ctx context.Context) ([]*models.Shipper, error) {
	return s.repos.Shippers.List(ctx)
}

func (s *catalogService) Categories(ctx context.Context) ([]*models.Category, error) {
	return s.repos.Categories.List(ctx)
}

func (s *catalogService) Suppliers(ctx context.Context) ([]*models.Supplier, error) {
	return s.repos.Suppliers.List(ctx)
}

func (s *catalogService) OrderSummary(ctx context.Context, orderID int) (*models.OrderSummary, error) {
	order, err := s.repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order", orderID)
	}
	lines, err := s.repos.OrderLines.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	summary := &models.OrderSummary{Order: order, Lines: lines, Total: models.OrderTotal(lines)}
	if order.CustomerID != nil {
		customer, err := s.repos.Customers.GetByID(ctx, *order.CustomerID)
		if err != nil {
			// The order outlives its customer; show it without one.
			s.logger.Warn("order customer lookup failed", zap.Int("order_id", orderID), zap.Error(err))
		} else {
			summary.Customer = customer
		}
	}
	return summary, nil
}
