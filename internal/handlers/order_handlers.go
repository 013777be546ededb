package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"traders/internal/common"
	"traders/internal/middleware"
	"traders/internal/models"
	"traders/internal/services"
)

const (
	createPath  = "/orders/create"
	confirmPath = "/orders/confirm"
)

// OrderHandlers drives the order wizard over HTTP. Every request resolves the
// requested step against the session draft and redirects when a prerequisite
// is missing.
type OrderHandlers struct {
	drafts  services.DraftService
	commits services.OrderCommitService
	catalog services.CatalogService
	now     func() time.Time
	logger  *zap.Logger
}

func NewOrderHandlers(drafts services.DraftService, commits services.OrderCommitService, catalog services.CatalogService, now func() time.Time, logger *zap.Logger) *OrderHandlers {
	if now == nil {
		now = time.Now
	}
	return &OrderHandlers{drafts: drafts, commits: commits, catalog: catalog, now: now, logger: logger}
}

// stepURL is where state is rendered
func stepURL(state services.WizardState) string {
	if state == services.Confirming {
		return confirmPath
	}
	return fmt.Sprintf("%s?step=%d", createPath, state.Step())
}

func (h *OrderHandlers) session(c echo.Context) (string, error) {
	sid := middleware.SessionID(c)
	if sid == "" {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Session unavailable")
	}
	return sid, nil
}

// Create handles GET /orders/create[/:customerId]?step=1|2|3
func (h *OrderHandlers) Create(c echo.Context) error {
	sid, err := h.session(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if customerID := c.Param("customerId"); customerID != "" {
		_, err := h.drafts.SetCustomer(ctx, sid, models.CustomerSelection{CustomerID: customerID})
		if err != nil {
			return h.redirectOnError(c, err, services.AwaitingCustomer)
		}
		return redirect(c, stepURL(services.SelectingProducts))
	}

	draft, err := h.drafts.Load(ctx, sid)
	if err != nil {
		return httpError(h.logger, err)
	}
	requested := services.StateForStep(c.QueryParam("step"))
	if state := services.Resolve(requested, draft); state != requested {
		return redirect(c, stepURL(state))
	}
	return h.renderStep(c, http.StatusOK, requested, draft, nil, nil)
}

// Submit handles POST /orders/create?step=1|2|3
func (h *OrderHandlers) Submit(c echo.Context) error {
	sid, err := h.session(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	draft, err := h.drafts.Load(ctx, sid)
	if err != nil {
		return httpError(h.logger, err)
	}
	requested := services.StateForStep(c.QueryParam("step"))
	state := services.Resolve(requested, draft)
	if state != requested {
		return redirect(c, stepURL(state))
	}

	event := h.event(c, state)
	next, err := services.Next(state, event)
	if err != nil {
		h.logger.Debug("wizard event rejected", zap.Error(err))
		return redirect(c, stepURL(state))
	}

	if next.Terminal() {
		return h.cancel(c, sid)
	}

	switch event {
	case services.ChooseCustomer:
		f := newFormReader(c)
		sel := models.CustomerSelection{CustomerID: f.str("customer")}
		if draft, err = h.drafts.SetCustomer(ctx, sid, sel); err != nil {
			return h.stepError(c, state, draft, err, f, echo.Map{"Selected": sel.CustomerID})
		}

	case services.AddLine:
		f := newFormReader(c)
		sel := models.ProductSelection{
			ProductID: f.int("product"),
			Quantity:  f.int("quantity"),
			Discount:  f.float("discount"),
		}
		if !f.errs.Empty() {
			return h.renderStep(c, http.StatusOK, state, draft, f.errs, echo.Map{"Selection": sel})
		}
		if draft, err = h.drafts.AddLine(ctx, sid, sel); err != nil {
			return h.stepError(c, state, draft, err, f, echo.Map{"Selection": sel})
		}

	case services.RemoveLine:
		productID, _ := strconv.Atoi(c.FormValue("product"))
		if _, err := h.drafts.RemoveLine(ctx, sid, productID); err != nil {
			return httpError(h.logger, err)
		}

	case services.Proceed:
		if err := services.Enter(next, draft); err != nil {
			middleware.SetFlash(c, middleware.FlashWarning, "Add at least one product before continuing.")
			return redirect(c, stepURL(state))
		}

	case services.SubmitDetails:
		f := newFormReader(c)
		form := models.OrderDetailsForm{
			EmployeeID:   f.int("employee"),
			RequiredDate: f.str("required_date"),
			ShipperID:    f.int("shipper"),
			Ship: models.ShipAddress{
				Name:       f.str("ship_name"),
				Address:    f.str("ship_address"),
				City:       f.str("ship_city"),
				Region:     f.str("ship_region"),
				PostalCode: f.str("ship_postal_code"),
				Country:    f.str("ship_country"),
			},
		}
		if !f.errs.Empty() {
			return h.renderStep(c, http.StatusOK, state, draft, f.errs, echo.Map{"Form": form})
		}
		if draft, err = h.drafts.SetDetails(ctx, sid, form); err != nil {
			return h.stepError(c, state, draft, err, f, echo.Map{"Form": form})
		}
	}

	return redirect(c, stepURL(next))
}

// event maps the submitted action of a step onto a wizard event.
func (h *OrderHandlers) event(c echo.Context, state services.WizardState) services.WizardEvent {
	action := c.FormValue("action")
	if action == "cancel" {
		return services.Cancel
	}
	switch state {
	case services.AwaitingCustomer:
		return services.ChooseCustomer
	case services.SelectingProducts:
		switch action {
		case "remove":
			return services.RemoveLine
		case "proceed":
			return services.Proceed
		case "customer":
			return services.ChooseCustomer
		}
		return services.AddLine
	case services.EnteringDetails:
		return services.SubmitDetails
	}
	return services.Confirm
}

// stepError re-renders the step for validation failures and otherwise
// recovers through a flash message and redirect.
func (h *OrderHandlers) stepError(c echo.Context, state services.WizardState, draft *models.DraftOrder, err error, f *formReader, extra echo.Map) error {
	if _, ok := common.AsNotFoundError(err); ok || draft == nil {
		return h.redirectOnError(c, err, state)
	}
	if verr := f.merge(err); verr != nil {
		return h.renderStep(c, http.StatusOK, state, draft, verr, extra)
	}
	return h.redirectOnError(c, err, state)
}

// redirectOnError turns a failed wizard operation into a redirect to the step that
// can fix it.
func (h *OrderHandlers) redirectOnError(c echo.Context, err error, fallback services.WizardState) error {
	var stateErr *services.StateError
	if errors.As(err, &stateErr) {
		sid := middleware.SessionID(c)
		draft, loadErr := h.drafts.Load(c.Request().Context(), sid)
		if loadErr != nil {
			return httpError(h.logger, loadErr)
		}
		return redirect(c, stepURL(services.Furthest(draft)))
	}

	if nerr, ok := common.AsNotFoundError(err); ok {
		middleware.SetFlash(c, middleware.FlashWarning, capitalize(nerr.Error())+". Please choose again.")
		return redirect(c, stepURL(stepForResource(nerr.Resource, fallback)))
	}

	if verr, ok := common.AsValidationError(err); ok {
		for field, msg := range verr.Fields {
			middleware.SetFlash(c, middleware.FlashWarning, msg)
			return redirect(c, stepURL(stepForField(field, fallback)))
		}
	}
	return httpError(h.logger, err)
}

func stepForResource(resource string, fallback services.WizardState) services.WizardState {
	switch resource {
	case "customer":
		return services.AwaitingCustomer
	case "product":
		return services.SelectingProducts
	case "employee", "shipper":
		return services.EnteringDetails
	}
	return fallback
}

func stepForField(field string, fallback services.WizardState) services.WizardState {
	switch field {
	case "customer":
		return services.AwaitingCustomer
	case "product", "quantity", "discount":
		return services.SelectingProducts
	case "employee", "shipper", "required_date":
		return services.EnteringDetails
	}
	return fallback
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func (h *OrderHandlers) renderStep(c echo.Context, status int, state services.WizardState, draft *models.DraftOrder, errs *common.ValidationError, extra echo.Map) error {
	ctx := c.Request().Context()
	data := echo.Map{
		"Step":   state.Step(),
		"Draft":  draft,
		"Totals": h.drafts.ComputeTotals(draft),
	}
	if errs != nil {
		data["Errors"] = errs.Fields
	}

	var customer *models.Customer
	if draft.HasCustomer() {
		var err error
		customer, err = h.catalog.Customer(ctx, *draft.CustomerID)
		switch {
		case err == nil:
			data["Customer"] = customer
		case state == services.AwaitingCustomer:
			// the stale selection is simply not preselected
			if _, ok := common.AsNotFoundError(err); !ok {
				return httpError(h.logger, err)
			}
		default:
			return h.redirectOnError(c, err, services.AwaitingCustomer)
		}
	}

	var page string
	switch state {
	case services.AwaitingCustomer:
		page = "order_customer.html"
		customers, err := h.catalog.SelectableCustomers(ctx)
		if err != nil {
			return httpError(h.logger, err)
		}
		data["Customers"] = customers
		data["Selected"] = ""
		if customer != nil {
			data["Selected"] = customer.ID
		}

	case services.SelectingProducts:
		page = "order_products.html"
		products, err := h.catalog.OrderableProducts(ctx)
		if err != nil {
			return httpError(h.logger, err)
		}
		data["Products"] = products
		data["Selection"] = models.ProductSelection{Quantity: 1}

	case services.EnteringDetails:
		page = "order_details.html"
		employees, err := h.catalog.Employees(ctx)
		if err != nil {
			return httpError(h.logger, err)
		}
		shippers, err := h.catalog.Shippers(ctx)
		if err != nil {
			return httpError(h.logger, err)
		}
		data["Employees"] = employees
		data["Shippers"] = shippers
		data["Form"] = models.NewOrderDetailsForm(draft.Details, customer, h.now())

	default:
		return redirect(c, stepURL(services.Furthest(draft)))
	}

	for k, v := range extra {
		data[k] = v
	}
	return render(c, status, page, data)
}

// ConfirmPage handles GET /orders/confirm
func (h *OrderHandlers) ConfirmPage(c echo.Context) error {
	sid, err := h.session(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	draft, err := h.drafts.Load(ctx, sid)
	if err != nil {
		return httpError(h.logger, err)
	}
	if state := services.Resolve(services.Confirming, draft); state != services.Confirming {
		return redirect(c, stepURL(state))
	}

	customer, err := h.catalog.Customer(ctx, *draft.CustomerID)
	if err != nil {
		return h.redirectOnError(c, err, services.AwaitingCustomer)
	}
	employees, err := h.catalog.Employees(ctx)
	if err != nil {
		return httpError(h.logger, err)
	}
	shippers, err := h.catalog.Shippers(ctx)
	if err != nil {
		return httpError(h.logger, err)
	}

	data := echo.Map{
		"Draft":    draft,
		"Totals":   h.drafts.ComputeTotals(draft),
		"Customer": customer,
	}
	for _, e := range employees {
		if e.ID == draft.Details.EmployeeID {
			data["Employee"] = e
		}
	}
	for _, s := range shippers {
		if s.ID == draft.Details.ShipperID {
			data["Shipper"] = s
		}
	}
	return render(c, http.StatusOK, "order_confirm.html", data)
}

// Confirm handles POST /orders/confirm with action=confirm|cancel
func (h *OrderHandlers) Confirm(c echo.Context) error {
	sid, err := h.session(c)
	if err != nil {
		return err
	}

	var event services.WizardEvent
	switch c.FormValue("action") {
	case "confirm":
		event = services.Confirm
	case "cancel":
		event = services.Cancel
	default:
		return redirect(c, confirmPath)
	}
	if _, err := services.Next(services.Confirming, event); err != nil {
		return redirect(c, confirmPath)
	}
	if event == services.Cancel {
		return h.cancel(c, sid)
	}

	orderID, err := h.commits.Commit(c.Request().Context(), sid)
	if err != nil {
		return h.redirectOnError(c, err, services.Confirming)
	}
	middleware.SetFlash(c, middleware.FlashSuccess, fmt.Sprintf("Order %d has been placed.", orderID))
	return redirect(c, fmt.Sprintf("/orders/success/%d", orderID))
}

// Success handles GET /orders/success/:orderId
func (h *OrderHandlers) Success(c echo.Context) error {
	orderID, err := pathInt(c, "orderId")
	if err != nil {
		return err
	}
	summary, err := h.catalog.OrderSummary(c.Request().Context(), orderID)
	if err != nil {
		return httpError(h.logger, err)
	}
	return render(c, http.StatusOK, "order_success.html", echo.Map{"Summary": summary})
}

// Cancel handles POST /orders/cancel
func (h *OrderHandlers) Cancel(c echo.Context) error {
	sid, err := h.session(c)
	if err != nil {
		return err
	}
	return h.cancel(c, sid)
}

func (h *OrderHandlers) cancel(c echo.Context, sid string) error {
	if err := h.drafts.Clear(c.Request().Context(), sid); err != nil {
		return httpError(h.logger, err)
	}
	middleware.SetFlash(c, middleware.FlashWarning, "Order cancelled.")
	return redirect(c, "/")
}
