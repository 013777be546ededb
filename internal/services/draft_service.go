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

// DraftService drives the session draft order. Every mutation loads the
// draft, applies the change and saves it back.
type DraftService interface {
	Load(ctx context.Context, sessionID string) (*models.DraftOrder, error)
	SetCustomer(ctx context.Context, sessionID string, sel models.CustomerSelection) (*models.DraftOrder, error)
	AddLine(ctx context.Context, sessionID string, sel models.ProductSelection) (*models.DraftOrder, error)
	RemoveLine(ctx context.Context, sessionID string, productID int) (*models.DraftOrder, error)
	SetDetails(ctx context.Context, sessionID string, form models.OrderDetailsForm) (*models.DraftOrder, error)
	ComputeTotals(draft *models.DraftOrder) models.DraftTotals
	Clear(ctx context.Context, sessionID string) error
}

type draftService struct {
	store        caching.DraftStore
	customerRepo repositories.CustomerRepository
	productRepo  repositories.ProductRepository
	employeeRepo repositories.EmployeeRepository
	shipperRepo  repositories.ShipperRepository
	now          func() time.Time
	logger       *zap.Logger
}

func NewDraftService(store caching.DraftStore, customerRepo repositories.CustomerRepository, productRepo repositories.ProductRepository, employeeRepo repositories.EmployeeRepository, shipperRepo repositories.ShipperRepository, now func() time.Time, logger *zap.Logger) DraftService {
	if now == nil {
		now = time.Now
	}
	return &draftService{
		store:        store,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		employeeRepo: employeeRepo,
		shipperRepo:  shipperRepo,
		now:          now,
		logger:       logger,
	}
}

// Load returns the session's draft, or a new empty one on first entry.
func (s *draftService) Load(ctx context.Context, sessionID string) (*models.DraftOrder, error) {
	draft, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return models.NewDraftOrder(), nil
	}
	return draft, nil
}

func (s *draftService) mutate(ctx context.Context, sessionID string, apply func(d *models.DraftOrder) error) (*models.DraftOrder, error) {
	draft, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := apply(draft); err != nil {
		return draft, err
	}
	if err := s.store.Set(ctx, sessionID, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *draftService) SetCustomer(ctx context.Context, sessionID string, sel models.CustomerSelection) (*models.DraftOrder, error) {
	return s.mutate(ctx, sessionID, func(d *models.DraftOrder) error {
		if err := common.ValidateStruct(sel); err != nil {
			return err
		}
		customer, err := s.customerRepo.GetByID(ctx, sel.CustomerID)
		if err != nil {
			return notFound(err, "customer", sel.CustomerID)
		}
		id := customer.ID
		d.CustomerID = &id
		return nil
	})
}

func (s *draftService) AddLine(ctx context.Context, sessionID string, sel models.ProductSelection) (*models.DraftOrder, error) {
	return s.mutate(ctx, sessionID, func(d *models.DraftOrder) error {
		if sel.ProductID <= 0 {
			return common.NewValidationError("product", "Select a valid choice.")
		}
		product, err := s.productRepo.GetByID(ctx, sel.ProductID)
		if err != nil {
			return notFound(err, "product", sel.ProductID)
		}
		return d.AddLine(product, sel)
	})
}

func (s *draftService) RemoveLine(ctx context.Context, sessionID string, productID int) (*models.DraftOrder, error) {
	return s.mutate(ctx, sessionID, func(d *models.DraftOrder) error {
		d.RemoveLine(productID)
		return nil
	})
}

func (s *draftService) SetDetails(ctx context.Context, sessionID string, form models.OrderDetailsForm) (*models.DraftOrder, error) {
	return s.mutate(ctx, sessionID, func(d *models.DraftOrder) error {
		details, err := form.Validate(s.now())
		verr, ok := common.AsValidationError(err)
		if err != nil && !ok {
			return err
		}
		if verr == nil {
			verr = &common.ValidationError{}
		}

		if form.EmployeeID > 0 {
			if _, err := s.employeeRepo.GetByID(ctx, form.EmployeeID); err != nil {
				verr.Add("employee", "Select a valid choice.")
			}
		}
		if form.ShipperID > 0 {
			if _, err := s.shipperRepo.GetByID(ctx, form.ShipperID); err != nil {
				verr.Add("shipper", "Select a valid choice.")
			}
		}
		if !verr.Empty() {
			return verr
		}

		d.Details = details
		return nil
	})
}

func (s *draftService) ComputeTotals(draft *models.DraftOrder) models.DraftTotals {
	return draft.Totals()
}

func (s *draftService) Clear(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}
