package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"traders/internal/common"
	"traders/internal/models"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	renderer, err := NewRenderer()
	require.NoError(t, err)
	e := echo.New()
	e.Renderer = renderer
	e.HTTPErrorHandler = ErrorHandler(testLogger)
	return e
}

func strPtr(s string) *string { return &s }

func TestListCustomers(t *testing.T) {
	e := newTestEcho(t)
	catalog := new(MockCatalogService)
	h := NewCatalogHandlers(catalog, testLogger)

	filter := models.CustomerFilter{Company: "alf", Country: "Germany", Page: 2}
	customers := []*models.Customer{{ID: "ALFKI", CompanyName: "Alfreds Futterkiste", Country: strPtr("Germany")}}
	catalog.On("FindCustomers", mock.Anything, filter).Return(models.NewPage(customers, 11, 2, common.DefaultPageSize), nil)
	catalog.On("AvailableCountries", mock.Anything).Return([]string{"France", "Germany"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/customers?customer=alf&country=Germany&page=2", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.ListCustomers(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Alfreds Futterkiste")
	assert.Contains(t, body, `<option value="Germany" selected>`)
	assert.Contains(t, body, "Page 2 of 2")
	assert.Contains(t, body, "Previous")
	assert.NotContains(t, body, ">Next<")
	catalog.AssertExpectations(t)
}

func TestCustomerDetail_NotFound(t *testing.T) {
	e := newTestEcho(t)
	catalog := new(MockCatalogService)
	h := NewCatalogHandlers(catalog, testLogger)
	catalog.On("CustomerDetail", mock.Anything, "NOPE", "").Return(nil, common.NewNotFoundError("customer", "NOPE"))

	req := httptest.NewRequest(http.MethodGet, "/customers/NOPE", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("NOPE")

	err := h.CustomerDetail(c)
	require.Error(t, err)
	e.HTTPErrorHandler(err, c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "customer NOPE not found")
}

func TestProductDetail_BadID(t *testing.T) {
	e := newTestEcho(t)
	h := NewCatalogHandlers(new(MockCatalogService), testLogger)

	req := httptest.NewRequest(http.MethodGet, "/products/abc", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.ProductDetail(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestListProducts_EscapesInput(t *testing.T) {
	e := newTestEcho(t)
	catalog := new(MockCatalogService)
	h := NewCatalogHandlers(catalog, testLogger)
	catalog.On("FindProducts", mock.Anything, models.ProductFilter{Search: "<b>", Page: 1}).
		Return(models.NewPage[*models.Product](nil, 0, 1, common.DefaultPageSize), nil)

	req := httptest.NewRequest(http.MethodGet, "/products?search=%3Cb%3E", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.ListProducts(e.NewContext(req, rec)))

	assert.Contains(t, rec.Body.String(), "No products found.")
	assert.NotContains(t, rec.Body.String(), `value="<b>"`)
}

func TestCreateProduct(t *testing.T) {
	e := newTestEcho(t)
	products := new(MockProductService)
	catalog := new(MockCatalogService)
	h := NewProductHandlers(products, catalog, testLogger)

	form := url.Values{"product_id": {"78"}, "product_name": {"Rhönbräu"}, "unit_price": {"7.75"}, "discontinued": {"on"}}
	price := 7.75
	expected := models.ProductForm{ID: 78, Name: "Rhönbräu", UnitPrice: &price, Discontinued: true}
	products.On("Create", mock.Anything, expected).Return(&models.Product{ID: 78, Name: "Rhönbräu"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	require.NoError(t, h.CreateProduct(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products/78", rec.Header().Get(echo.HeaderLocation))
	products.AssertExpectations(t)
}

func TestCreateProduct_ValidationRerenders(t *testing.T) {
	e := newTestEcho(t)
	products := new(MockProductService)
	catalog := new(MockCatalogService)
	h := NewProductHandlers(products, catalog, testLogger)

	products.On("Create", mock.Anything, mock.AnythingOfType("models.ProductForm")).
		Return(nil, common.NewValidationError("product_id", "Product with this Product id already exists."))
	catalog.On("Categories", mock.Anything).Return([]*models.Category{{ID: 1, Name: "Beverages"}}, nil)
	catalog.On("Suppliers", mock.Anything).Return([]*models.Supplier{{ID: 1, CompanyName: "Exotic Liquids"}}, nil)

	form := url.Values{"product_id": {"1"}, "product_name": {"Chai"}, "category": {"1"}}
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	require.NoError(t, h.CreateProduct(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Product with this Product id already exists.")
	assert.Contains(t, body, `<option value="1" selected>Beverages</option>`)
}

func TestUploadImage(t *testing.T) {
	e := newTestEcho(t)
	products := new(MockProductService)
	h := NewProductHandlers(products, new(MockCatalogService), testLogger)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", "chai.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG"))
	require.NoError(t, w.Close())

	products.On("UploadImage", mock.Anything, 1, "application/octet-stream", mock.Anything, int64(4)).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/products/1/image", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UploadImage(c))

	assert.Equal(t, "/products/1", rec.Header().Get(echo.HeaderLocation))
	products.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	e := echo.New()
	failing := PingFunc(func(context.Context) error { return errors.New("down") })
	ok := PingFunc(func(context.Context) error { return nil })

	h := NewHealthHandlers(ok, failing, nil, "test", testLogger)

	rec := httptest.NewRecorder()
	require.NoError(t, h.HealthCheck(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	assert.Contains(t, rec.Body.String(), `"redis":"unhealthy"`)
	assert.NotContains(t, rec.Body.String(), `"storage"`)

	rec = httptest.NewRecorder()
	require.NoError(t, h.ReadinessCheck(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h = NewHealthHandlers(ok, ok, ok, "test", testLogger)
	rec = httptest.NewRecorder()
	require.NoError(t, h.ReadinessCheck(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteImage(t *testing.T) {
	e := newTestEcho(t)
	products := new(MockProductService)
	h := NewProductHandlers(products, new(MockCatalogService), testLogger)

	products.On("DeleteImage", mock.Anything, 3).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/products/3/image/delete", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.DeleteImage(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products/3", rec.Header().Get(echo.HeaderLocation))
	products.AssertExpectations(t)
}

func TestDeleteImage_MissingProduct(t *testing.T) {
	e := newTestEcho(t)
	products := new(MockProductService)
	h := NewProductHandlers(products, new(MockCatalogService), testLogger)

	products.On("DeleteImage", mock.Anything, 404).Return(common.NewNotFoundError("product", 404))

	req := httptest.NewRequest(http.MethodPost, "/products/404/image/delete", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("404")

	var he *echo.HTTPError
	require.ErrorAs(t, h.DeleteImage(c), &he)
	assert.Equal(t, http.StatusNotFound, he.Code)
}
