package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"traders/internal/caching"
	"traders/internal/common"
	"traders/internal/models"
	"traders/internal/repositories"
)

const (
	imageURLExpiry = 15 * time.Minute
	maxImageSize   = 5 << 20
)

// ProductService handles administrative product edits and product pictures.
type ProductService interface {
	Create(ctx context.Context, form models.ProductForm) (*models.Product, error)
	Update(ctx context.Context, id int, form models.ProductForm) (*models.Product, error)
	UploadImage(ctx context.Context, id int, contentType string, reader io.Reader, size int64) error
	ImageURL(ctx context.Context, id int) (string, error)
	DeleteImage(ctx context.Context, id int) error
}

type productService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	supplierRepo repositories.SupplierRepository
	images       ImageStore
	cacheService caching.CacheService
	logger       *zap.Logger
}

func NewProductService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, supplierRepo repositories.SupplierRepository, images ImageStore, cacheService caching.CacheService, logger *zap.Logger) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		images:       images,
		cacheService: cacheService,
		logger:       logger,
	}
}

func productImageObject(id int) string {
	return fmt.Sprintf("products/%d", id)
}

func (s *productService) Create(ctx context.Context, form models.ProductForm) (*models.Product, error) {
	form = normalizeProductForm(form)
	verr := s.validate(ctx, form)

	if _, bad := verr.Fields["product_id"]; !bad {
		_, err := s.productRepo.GetByID(ctx, form.ID)
		switch {
		case err == nil:
			verr.Add("product_id", "Product with this Product id already exists.")
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, err
		}
	}
	if !verr.Empty() {
		return nil, verr
	}

	product := form.Product()
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("product created", zap.Int("product_id", product.ID))
	return product, nil
}

func (s *productService) Update(ctx context.Context, id int, form models.ProductForm) (*models.Product, error) {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		return nil, notFound(err, "product", id)
	}

	form = normalizeProductForm(form)
	form.ID = id
	if verr := s.validate(ctx, form); !verr.Empty() {
		return nil, verr
	}

	product := form.Product()
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	if err := s.cacheService.DeleteProduct(ctx, id); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.Int("product_id", id), zap.Error(err))
	}
	return product, nil
}

func normalizeProductForm(form models.ProductForm) models.ProductForm {
	form.Name = strings.TrimSpace(form.Name)
	form.QuantityPerUnit = strings.TrimSpace(form.QuantityPerUnit)
	return form
}

// validate checks the form rules and that referenced category and supplier exist.
func (s *productService) validate(ctx context.Context, form models.ProductForm) *common.ValidationError {
	verr := &common.ValidationError{}
	if err := common.ValidateStruct(form); err != nil {
		if fieldErrs, ok := common.AsValidationError(err); ok {
			for field, msg := range fieldErrs.Fields {
				verr.Add(field, msg)
			}
		} else {
			verr.Add("__all__", err.Error())
		}
	}

	if form.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *form.CategoryID); err != nil {
			verr.Add("category", "Select a valid choice.")
		}
	}
	if form.SupplierID != nil {
		if _, err := s.supplierRepo.GetByID(ctx, *form.SupplierID); err != nil {
			verr.Add("supplier", "Select a valid choice.")
		}
	}
	return verr
}

func (s *productService) UploadImage(ctx context.Context, id int, contentType string, reader io.Reader, size int64) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		return notFound(err, "product", id)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return common.NewValidationError("image", "Upload a valid image.")
	}
	if size <= 0 || size > maxImageSize {
		return common.NewValidationError("image", "Ensure the image is at most 5 MB.")
	}

	if err := s.images.Upload(ctx, productImageObject(id), contentType, reader, size); err != nil {
		return fmt.Errorf("upload image for product %d: %w", id, err)
	}
	return nil
}

func (s *productService) ImageURL(ctx context.Context, id int) (string, error) {
	object := productImageObject(id)
	exists, err := s.images.Exists(ctx, object)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", common.NewNotFoundError("product image", id)
	}
	return s.images.PresignedURL(ctx, object, imageURLExpiry)
}

// DeleteImage removes the product's picture. A product without one is left as is.
func (s *productService) DeleteImage(ctx context.Context, id int) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		return notFound(err, "product", id)
	}

	object := productImageObject(id)
	exists, err := s.images.Exists(ctx, object)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if err := s.images.Delete(ctx, object); err != nil {
		return fmt.Errorf("delete image of product %d: %w", id, err)
	}
	s.logger.Info("product image deleted", zap.Int("product_id", id))
	return nil
}
