package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"traders/internal/common"
	"traders/internal/middleware"
	"traders/internal/models"
	"traders/internal/services"
)

// ProductHandlers handles the administrative product pages
type ProductHandlers struct {
	products services.ProductService
	catalog  services.CatalogService
	logger   *zap.Logger
}

func NewProductHandlers(products services.ProductService, catalog services.CatalogService, logger *zap.Logger) *ProductHandlers {
	return &ProductHandlers{products: products, catalog: catalog, logger: logger}
}

func (h *ProductHandlers) readForm(c echo.Context) (models.ProductForm, *formReader) {
	f := newFormReader(c)
	form := models.ProductForm{
		ID:              f.int("product_id"),
		Name:            f.str("product_name"),
		SupplierID:      f.optInt("supplier"),
		CategoryID:      f.optInt("category"),
		QuantityPerUnit: f.str("quantity_per_unit"),
		UnitPrice:       f.optFloat("unit_price"),
		UnitsInStock:    f.optInt("units_in_stock"),
		UnitsOnOrder:    f.optInt("units_on_order"),
		ReorderLevel:    f.optInt("reorder_level"),
		Discontinued:    f.bool("discontinued"),
	}
	return form, f
}

func (h *ProductHandlers) renderForm(c echo.Context, status int, form models.ProductForm, editing bool, errs *common.ValidationError) error {
	ctx := c.Request().Context()
	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		return httpError(h.logger, err)
	}
	suppliers, err := h.catalog.Suppliers(ctx)
	if err != nil {
		return httpError(h.logger, err)
	}

	var fieldErrs map[string]string
	if errs != nil {
		fieldErrs = errs.Fields
	}
	return render(c, status, "product_form.html", echo.Map{
		"Form":       form,
		"Editing":    editing,
		"Errors":     fieldErrs,
		"Categories": categories,
		"Suppliers":  suppliers,
	})
}

// NewProduct handles GET /products/new
func (h *ProductHandlers) NewProduct(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, models.ProductForm{}, false, nil)
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	form, f := h.readForm(c)
	if !f.errs.Empty() {
		return h.renderForm(c, http.StatusUnprocessableEntity, form, false, f.errs)
	}

	product, err := h.products.Create(c.Request().Context(), form)
	if err != nil {
		if verr := f.merge(err); verr != nil {
			return h.renderForm(c, http.StatusUnprocessableEntity, form, false, verr)
		}
		return httpError(h.logger, err)
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Product "+product.Name+" created.")
	return redirect(c, "/products/"+strconv.Itoa(product.ID))
}

// EditProduct handles GET /products/:id/edit
func (h *ProductHandlers) EditProduct(c echo.Context) error {
	id, err := pathInt(c, "id")
	if err != nil {
		return err
	}
	product, err := h.catalog.ProductDetail(c.Request().Context(), id)
	if err != nil {
		return httpError(h.logger, err)
	}
	return h.renderForm(c, http.StatusOK, models.NewProductForm(product), true, nil)
}

// UpdateProduct handles POST /products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	id, err := pathInt(c, "id")
	if err != nil {
		return err
	}
	form, f := h.readForm(c)
	form.ID = id
	if !f.errs.Empty() {
		return h.renderForm(c, http.StatusUnprocessableEntity, form, true, f.errs)
	}

	product, err := h.products.Update(c.Request().Context(), id, form)
	if err != nil {
		if verr := f.merge(err); verr != nil {
			return h.renderForm(c, http.StatusUnprocessableEntity, form, true, verr)
		}
		return httpError(h.logger, err)
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Product "+product.Name+" updated.")
	return redirect(c, "/products/"+strconv.Itoa(id))
}

// UploadImage handles POST /products/:id/image
func (h *ProductHandlers) UploadImage(c echo.Context) error {
	id, err := pathInt(c, "id")
	if err != nil {
		return err
	}
	back := "/products/" + strconv.Itoa(id)

	file, err := c.FormFile("image")
	if err != nil {
		middleware.SetFlash(c, middleware.FlashError, "Choose an image to upload.")
		return redirect(c, back)
	}
	src, err := file.Open()
	if err != nil {
		return httpError(h.logger, err)
	}
	defer src.Close()

	err = h.products.UploadImage(c.Request().Context(), id, file.Header.Get("Content-Type"), src, file.Size)
	if verr, ok := common.AsValidationError(err); ok {
		middleware.SetFlash(c, middleware.FlashError, verr.Fields["image"])
		return redirect(c, back)
	}
	if err != nil {
		return httpError(h.logger, err)
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Image uploaded.")
	return redirect(c, back)
}

// DeleteImage handles POST /products/:id/image/delete
func (h *ProductHandlers) DeleteImage(c echo.Context) error {
	id, err := pathInt(c, "id")
	if err != nil {
		return err
	}
	if err := h.products.DeleteImage(c.Request().Context(), id); err != nil {
		return httpError(h.logger, err)
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Image removed.")
	return redirect(c, "/products/"+strconv.Itoa(id))
}

// Image handles GET /products/:id/image by redirecting to a presigned URL
func (h *ProductHandlers) Image(c echo.Context) error {
	id, err := pathInt(c, "id")
	if err != nil {
		return err
	}
	url, err := h.products.ImageURL(c.Request().Context(), id)
	if err != nil {
		return httpError(h.logger, err)
	}
	return c.Redirect(http.StatusFound, url)
}
