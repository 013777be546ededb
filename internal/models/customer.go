package models

import "strings"

type Customer struct {
	ID           string  `json:"customer_id" db:"customer_id"`
	CompanyName  string  `json:"company_name" db:"company_name"`
	ContactName  *string `json:"contact_name" db:"contact_name"`
	ContactTitle *string `json:"contact_title" db:"contact_title"`
	Address      *string `json:"address" db:"address"`
	City         *string `json:"city" db:"city"`
	Region       *string `json:"region" db:"region"`
	PostalCode   *string `json:"postal_code" db:"postal_code"`
	Country      *string `json:"country" db:"country"`
	Phone        *string `json:"phone" db:"phone"`
	Fax          *string `json:"fax" db:"fax"`
}

// CustomerFilter holds the search criteria of the customer listing
type CustomerFilter struct {
	Company string // case-insensitive substring of company name
	Title   string // case-insensitive substring of contact title
	Country string // case-insensitive exact country
	Page    int
}

// CustomerSelection is the first wizard step's form
type CustomerSelection struct {
	CustomerID string `form:"customer" validate:"required,max=5"`
}

// Label renders the customer as shown in selection lists.
func (c *Customer) Label() string {
	return c.CompanyName + " (" + c.ID + ")"
}

// FullAddress joins the non-empty address parts.
func (c *Customer) FullAddress() string {
	parts := make([]string, 0, 5)
	for _, p := range []*string{c.Address, c.City, c.Region, c.PostalCode, c.Country} {
		if v := strings.TrimSpace(deref(p)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// ShipAddress snapshots the customer's current address as a shipping address.
func (c *Customer) ShipAddress() ShipAddress {
	return ShipAddress{
		Name:       c.CompanyName,
		Address:    deref(c.Address),
		City:       deref(c.City),
		Region:     deref(c.Region),
		PostalCode: deref(c.PostalCode),
		Country:    deref(c.Country),
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
