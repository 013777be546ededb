package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"traders/internal/common"
)

// DraftLine is one cart line of a draft order. Name and price are snapshots
// taken when the product was first added.
type DraftLine struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Discount    float64 `json:"discount"`
}

// Validate checks a line read back from the draft store before it is written.
func (l DraftLine) Validate() error {
	switch {
	case l.Quantity < 1 || l.Quantity > MaxLineQuantity:
		return common.NewValidationError("quantity", fmt.Sprintf("Quantity of %s must be between 1 and %d.", l.ProductName, MaxLineQuantity))
	case l.Discount < 0 || l.Discount > 100:
		return common.NewValidationError("discount", fmt.Sprintf("Discount of %s must be between 0 and 100.", l.ProductName))
	}
	return nil
}

func (l DraftLine) LineTotal() decimal.Decimal {
	return LineTotal(l.UnitPrice, l.Quantity, l.Discount)
}

// OrderDetails holds the third wizard step: commission, dates and shipping.
type OrderDetails struct {
	EmployeeID   int         `json:"employee_id"`
	RequiredDate time.Time   `json:"required_date"`
	ShipperID    int         `json:"shipper_id"`
	Ship         ShipAddress `json:"ship"`
}

// Complete reports whether every mandatory detail has been provided.
func (d *OrderDetails) Complete() bool {
	return d != nil && d.EmployeeID > 0 && d.ShipperID > 0 && !d.RequiredDate.IsZero()
}

// DraftOrder is the session-resident order under construction.
type DraftOrder struct {
	CustomerID *string       `json:"customer_id"`
	Lines      []DraftLine   `json:"lines"`
	Details    *OrderDetails `json:"details"`
}

func NewDraftOrder() *DraftOrder {
	return &DraftOrder{Lines: []DraftLine{}}
}

func (d *DraftOrder) HasCustomer() bool {
	return d.CustomerID != nil && *d.CustomerID != ""
}

func (d *DraftOrder) HasLines() bool {
	return len(d.Lines) > 0
}

// Line returns the line for productID, if present.
func (d *DraftOrder) Line(productID int) (*DraftLine, bool) {
	for i := range d.Lines {
		if d.Lines[i].ProductID == productID {
			return &d.Lines[i], true
		}
	}
	return nil, false
}

// MaxLineQuantity is the largest quantity a single order line can hold.
const MaxLineQuantity = 32767

// ProductSelection is the second wizard step's add-to-cart form.
type ProductSelection struct {
	ProductID int     `form:"product" validate:"choice"`
	Quantity  int     `form:"quantity" validate:"gte=1,lte=32767"`
	Discount  float64 `form:"discount" validate:"gte=0,lte=100"`
}

// AddLine adds sel for product p. An existing line for the same product has its
// quantity increased and keeps its original discount and price snapshot.
// Discontinued products are rejected whatever the quantity and discount.
func (d *DraftOrder) AddLine(p *Product, sel ProductSelection) error {
	if p.Discontinued {
		return common.NewValidationError("product", "This product has been discontinued and cannot be ordered.")
	}
	if err := common.ValidateStruct(sel); err != nil {
		return err
	}

	if line, ok := d.Line(p.ID); ok {
		if line.Quantity > MaxLineQuantity-sel.Quantity {
			return common.NewValidationError("quantity", fmt.Sprintf("Ensure this value is less than or equal to %d.", MaxLineQuantity-line.Quantity))
		}
		line.Quantity += sel.Quantity
		return nil
	}

	d.Lines = append(d.Lines, DraftLine{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price(),
		Quantity:    sel.Quantity,
		Discount:    sel.Discount,
	})
	return nil
}

// RemoveLine drops the line for productID and reports whether one was removed.
func (d *DraftOrder) RemoveLine(productID int) bool {
	for i := range d.Lines {
		if d.Lines[i].ProductID == productID {
			d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// DraftLineTotal is a draft line with its computed total.
type DraftLineTotal struct {
	DraftLine
	Total decimal.Decimal `json:"total"`
}

// DraftTotals holds per-line totals and the cart grand total.
type DraftTotals struct {
	Lines []DraftLineTotal `json:"lines"`
	Total decimal.Decimal  `json:"total"`
}

// Totals computes line and cart totals without modifying the draft.
func (d *DraftOrder) Totals() DraftTotals {
	totals := DraftTotals{Lines: make([]DraftLineTotal, 0, len(d.Lines)), Total: decimal.Zero}
	for _, l := range d.Lines {
		lt := l.LineTotal()
		totals.Lines = append(totals.Lines, DraftLineTotal{DraftLine: l, Total: lt})
		totals.Total = totals.Total.Add(lt)
	}
	return totals
}

// OrderDetailsForm is the third wizard step's form.
type OrderDetailsForm struct {
	EmployeeID   int         `form:"employee" validate:"choice"`
	RequiredDate string      `form:"required_date" validate:"required,datetime=2006-01-02"`
	ShipperID    int         `form:"shipper" validate:"choice"`
	Ship         ShipAddress `form:"ship"`
}

// NewOrderDetailsForm pre-fills the form from existing details, or from the
// customer's address with a required date one week out.
func NewOrderDetailsForm(details *OrderDetails, customer *Customer, today time.Time) OrderDetailsForm {
	if details != nil {
		return OrderDetailsForm{
			EmployeeID:   details.EmployeeID,
			RequiredDate: details.RequiredDate.Format(common.DateLayout),
			ShipperID:    details.ShipperID,
			Ship:         details.Ship,
		}
	}
	form := OrderDetailsForm{RequiredDate: today.AddDate(0, 0, 7).Format(common.DateLayout)}
	if customer != nil {
		form.Ship = customer.ShipAddress()
	}
	return form
}

// Validate checks the form and requires the required date to be after today.
func (f OrderDetailsForm) Validate(today time.Time) (*OrderDetails, error) {
	verr := &common.ValidationError{}
	if err := common.ValidateStruct(f); err != nil {
		fieldErrs, ok := common.AsValidationError(err)
		if !ok {
			return nil, err
		}
		for field, msg := range fieldErrs.Fields {
			verr.Add(field, msg)
		}
	}

	var required time.Time
	if _, bad := verr.Fields["required_date"]; !bad {
		parsed, err := common.ParseDate(f.RequiredDate)
		switch {
		case err != nil:
			verr.Add("required_date", "Enter a valid date.")
		case !parsed.After(common.Today(today)):
			verr.Add("required_date", "Required date must be in the future.")
		default:
			required = parsed
		}
	}

	if !verr.Empty() {
		return nil, verr
	}
	return &OrderDetails{
		EmployeeID:   f.EmployeeID,
		RequiredDate: required,
		ShipperID:    f.ShipperID,
		Ship:         f.Ship,
	}, nil
}
