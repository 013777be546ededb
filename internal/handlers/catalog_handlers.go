package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"traders/internal/common"
	"traders/internal/models"
	"traders/internal/services"
)

// CatalogHandlers serves the customer and product browsing pages
type CatalogHandlers struct {
	catalog services.CatalogService
	logger  *zap.Logger
}

func NewCatalogHandlers(catalog services.CatalogService, logger *zap.Logger) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog, logger: logger}
}

func (h *CatalogHandlers) Home(c echo.Context) error {
	return render(c, http.StatusOK, "home.html", nil)
}

// ListCustomers handles GET /customers?customer=&title=&country=&page=
func (h *CatalogHandlers) ListCustomers(c echo.Context) error {
	ctx := c.Request().Context()
	filter := models.CustomerFilter{
		Company: c.QueryParam("customer"),
		Title:   c.QueryParam("title"),
		Country: c.QueryParam("country"),
		Page:    common.ParsePage(c.QueryParam("page")),
	}

	page, err := h.catalog.FindCustomers(ctx, filter)
	if err != nil {
		return httpError(h.logger, err)
	}
	countries, err := h.catalog.AvailableCountries(ctx)
	if err != nil {
		return httpError(h.logger, err)
	}

	return render(c, http.StatusOK, "customers.html", echo.Map{
		"Page":      page,
		"Filter":    filter,
		"Countries": countries,
		"Query":     c.QueryParams(),
	})
}

// CustomerDetail handles GET /customers/:id?search=
func (h *CatalogHandlers) CustomerDetail(c echo.Context) error {
	detail, err := h.catalog.CustomerDetail(c.Request().Context(), c.Param("id"), c.QueryParam("search"))
	if err != nil {
		return httpError(h.logger, err)
	}
	return render(c, http.StatusOK, "customer_detail.html", echo.Map{"Detail": detail})
}

// ListProducts handles GET /products?search=&name=&category=&supplier=&page=
func (h *CatalogHandlers) ListProducts(c echo.Context) error {
	filter := models.ProductFilter{
		Search:   c.QueryParam("search"),
		Name:     c.QueryParam("name"),
		Category: c.QueryParam("category"),
		Supplier: c.QueryParam("supplier"),
		Page:     common.ParsePage(c.QueryParam("page")),
	}

	page, err := h.catalog.FindProducts(c.Request().Context(), filter)
	if err != nil {
		return httpError(h.logger, err)
	}
	return render(c, http.StatusOK, "products.html", echo.Map{
		"Page":   page,
		"Filter": filter,
		"Query":  c.QueryParams(),
	})
}

func (h *CatalogHandlers) ProductDetail(c echo.Context) error {
	id, err := pathInt(c, "id")
	if err != nil {
		return err
	}
	product, err := h.catalog.ProductDetail(c.Request().Context(), id)
	if err != nil {
		return httpError(h.logger, err)
	}
	return render(c, http.StatusOK, "product_detail.html", echo.Map{"Product": product})
}
