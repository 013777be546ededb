package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"traders/internal/caching"
	"traders/internal/common"
	"traders/internal/models"
	"traders/internal/repositories"
)

// OrderCommitService turns a completed draft into a persisted order.
type OrderCommitService interface {
	Commit(ctx context.Context, sessionID string) (int, error)
}

type orderCommitService struct {
	store        caching.DraftStore
	customerRepo repositories.CustomerRepository
	employeeRepo repositories.EmployeeRepository
	shipperRepo  repositories.ShipperRepository
	productRepo  repositories.ProductRepository
	orderRepo    repositories.OrderRepository
	now          func() time.Time
	logger       *zap.Logger
}

func NewOrderCommitService(store caching.DraftStore, customerRepo repositories.CustomerRepository, employeeRepo repositories.EmployeeRepository, shipperRepo repositories.ShipperRepository, productRepo repositories.ProductRepository, orderRepo repositories.OrderRepository, now func() time.Time, logger *zap.Logger) OrderCommitService {
	if now == nil {
		now = time.Now
	}
	return &orderCommitService{
		store:        store,
		customerRepo: customerRepo,
		employeeRepo: employeeRepo,
		shipperRepo:  shipperRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		now:          now,
		logger:       logger,
	}
}

// Commit re-validates every reference of the session draft against the
// database, writes the order with its lines atomically and clears the draft.
// Nothing is written when any check fails.
func (s *orderCommitService) Commit(ctx context.Context, sessionID string) (int, error) {
	draft, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if draft == nil {
		draft = models.NewDraftOrder()
	}
	if err := Enter(Committed, draft); err != nil {
		return 0, err
	}

	order, lines, err := s.build(ctx, draft)
	if err != nil {
		return 0, err
	}

	id, err := s.orderRepo.CreateWithLines(ctx, order, lines)
	if err != nil {
		return 0, err
	}
	s.logger.Info("order committed",
		zap.Int("order_id", id),
		zap.String("customer_id", *draft.CustomerID),
		zap.Int("lines", len(lines)))

	if err := s.store.Clear(ctx, sessionID); err != nil {
		s.logger.Warn("draft clear after commit failed", zap.Int("order_id", id), zap.Error(err))
	}
	return id, nil
}

func (s *orderCommitService) build(ctx context.Context, draft *models.DraftOrder) (*models.Order, []*models.OrderLine, error) {
	customerID := *draft.CustomerID
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		return nil, nil, notFound(err, "customer", customerID)
	}

	details := draft.Details
	if _, err := s.employeeRepo.GetByID(ctx, details.EmployeeID); err != nil {
		return nil, nil, notFound(err, "employee", details.EmployeeID)
	}
	if _, err := s.shipperRepo.GetByID(ctx, details.ShipperID); err != nil {
		return nil, nil, notFound(err, "shipper", details.ShipperID)
	}

	today := common.Today(s.now())
	if !details.RequiredDate.After(today) {
		return nil, nil, common.NewValidationError("required_date", "Required date must be in the future.")
	}

	lines := make([]*models.OrderLine, 0, len(draft.Lines))
	for _, l := range draft.Lines {
		if err := l.Validate(); err != nil {
			return nil, nil, err
		}
		product, err := s.productRepo.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, nil, notFound(err, "product", l.ProductID)
		}
		if product.Discontinued {
			return nil, nil, common.NewValidationError("product", product.Name+" has been discontinued and cannot be ordered.")
		}
		lines = append(lines, &models.OrderLine{
			ProductID:   l.ProductID,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Discount:    l.Discount,
			ProductName: l.ProductName,
		})
	}

	employeeID := details.EmployeeID
	shipperID := details.ShipperID
	required := details.RequiredDate
	order := &models.Order{
		CustomerID:   &customerID,
		EmployeeID:   &employeeID,
		OrderDate:    today,
		RequiredDate: &required,
		ShipVia:      &shipperID,
		Freight:      0,
		Ship:         details.Ship,
	}
	return order, lines, nil
}
