package models

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ShipAddress is the shipping address snapshot stored with an order.
type ShipAddress struct {
	Name       string `json:"name" form:"ship_name" validate:"max=40"`
	Address    string `json:"address" form:"ship_address" validate:"max=60"`
	City       string `json:"city" form:"ship_city" validate:"max=15"`
	Region     string `json:"region" form:"ship_region" validate:"max=15"`
	PostalCode string `json:"postal_code" form:"ship_postal_code" validate:"max=10"`
	Country    string `json:"country" form:"ship_country" validate:"max=15"`
}

type Order struct {
	ID           int         `json:"order_id" db:"order_id"`
	CustomerID   *string     `json:"customer_id" db:"customer_id"`
	EmployeeID   *int        `json:"employee_id" db:"employee_id"`
	OrderDate    time.Time   `json:"order_date" db:"order_date"`
	RequiredDate *time.Time  `json:"required_date" db:"required_date"`
	ShippedDate  *time.Time  `json:"shipped_date" db:"shipped_date"`
	ShipVia      *int        `json:"ship_via" db:"ship_via"`
	Freight      float64     `json:"freight" db:"freight"`
	Ship         ShipAddress `json:"ship"`
}

// OrderLine is one product line of a persisted order, keyed by (OrderID, ProductID).
type OrderLine struct {
	OrderID   int     `json:"order_id" db:"order_id"`
	ProductID int     `json:"product_id" db:"product_id"`
	UnitPrice float64 `json:"unit_price" db:"unit_price"`
	Quantity  int     `json:"quantity" db:"quantity"`
	Discount  float64 `json:"discount" db:"discount"`

	ProductName string `json:"product_name,omitempty" db:"-"`
}

// LineTotal is unit price * quantity less the percentage discount.
func (l *OrderLine) LineTotal() decimal.Decimal {
	return LineTotal(l.UnitPrice, l.Quantity, l.Discount)
}

// LineTotal computes unit_price * quantity * (1 - discount/100).
func LineTotal(unitPrice float64, quantity int, discount float64) decimal.Decimal {
	gross := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
	return gross.Sub(gross.Mul(decimal.NewFromFloat(discount)).Div(hundred))
}

// OrderTotal sums the line totals of lines.
func OrderTotal(lines []*OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// OrderWithTotal pairs an order with its derived total for listings.
type OrderWithTotal struct {
	*Order
	Total decimal.Decimal `json:"total"`
}

// OrderSummary is the read model of the order confirmation page.
type OrderSummary struct {
	Order    *Order          `json:"order"`
	Customer *Customer       `json:"customer,omitempty"`
	Lines    []*OrderLine    `json:"lines"`
	Total    decimal.Decimal `json:"total"`
}

// CustomerDetail is the read model of the customer detail page.
type CustomerDetail struct {
	Customer   *Customer         `json:"customer"`
	Orders     []*OrderWithTotal `json:"orders"`
	Products   []*Product        `json:"products"`
	OrderLines []*OrderLine      `json:"order_lines"`
	Search     string            `json:"search"`
}
