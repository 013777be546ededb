package models

import "fmt"

// ProductFilter holds search criteria for the product catalog
type ProductFilter struct {
	Search   string // matched against name, category, supplier and quantity per unit
	Name     string
	Category string
	Supplier string
	Page     int
}

type Product struct {
	ID              int      `json:"product_id" db:"product_id"`
	Name            string   `json:"product_name" db:"product_name"`
	SupplierID      *int     `json:"supplier_id" db:"supplier_id"`
	CategoryID      *int     `json:"category_id" db:"category_id"`
	QuantityPerUnit *string  `json:"quantity_per_unit" db:"quantity_per_unit"`
	UnitPrice       *float64 `json:"unit_price" db:"unit_price"`
	UnitsInStock    *int     `json:"units_in_stock" db:"units_in_stock"`
	UnitsOnOrder    *int     `json:"units_on_order" db:"units_on_order"`
	ReorderLevel    *int     `json:"reorder_level" db:"reorder_level"`
	Discontinued    bool     `json:"discontinued" db:"discontinued"`

	CategoryName *string `json:"category_name,omitempty" db:"-"`
	SupplierName *string `json:"supplier_name,omitempty" db:"-"`
}

// Price returns the unit price, treating a missing price as zero.
func (p *Product) Price() float64 {
	return deref(p.UnitPrice)
}

// Label renders the product as shown in the order-entry selector.
func (p *Product) Label() string {
	return fmt.Sprintf("%s - $%.2f", p.Name, p.Price())
}

// ProductForm is the administrative create/edit form.
type ProductForm struct {
	ID              int      `form:"product_id" validate:"gt=0"`
	Name            string   `form:"product_name" validate:"required,notblank,max=40"`
	SupplierID      *int     `form:"supplier" validate:"omitempty,gt=0"`
	CategoryID      *int     `form:"category" validate:"omitempty,gt=0"`
	QuantityPerUnit string   `form:"quantity_per_unit" validate:"max=20"`
	UnitPrice       *float64 `form:"unit_price" validate:"omitempty,gte=0"`
	UnitsInStock    *int     `form:"units_in_stock" validate:"omitempty,gte=0"`
	UnitsOnOrder    *int     `form:"units_on_order" validate:"omitempty,gte=0"`
	ReorderLevel    *int     `form:"reorder_level" validate:"omitempty,gte=0"`
	Discontinued    bool     `form:"discontinued"`
}

// NewProductForm fills a form from an existing product for editing
func NewProductForm(p *Product) ProductForm {
	return ProductForm{
		ID:              p.ID,
		Name:            p.Name,
		SupplierID:      p.SupplierID,
		CategoryID:      p.CategoryID,
		QuantityPerUnit: deref(p.QuantityPerUnit),
		UnitPrice:       p.UnitPrice,
		UnitsInStock:    p.UnitsInStock,
		UnitsOnOrder:    p.UnitsOnOrder,
		ReorderLevel:    p.ReorderLevel,
		Discontinued:    p.Discontinued,
	}
}

// Product converts a validated form into a product record.
func (f ProductForm) Product() *Product {
	p := &Product{
		ID:           f.ID,
		Name:         f.Name,
		SupplierID:   f.SupplierID,
		CategoryID:   f.CategoryID,
		UnitPrice:    f.UnitPrice,
		UnitsInStock: f.UnitsInStock,
		UnitsOnOrder: f.UnitsOnOrder,
		ReorderLevel: f.ReorderLevel,
		Discontinued: f.Discontinued,
	}
	if f.QuantityPerUnit != "" {
		qpu := f.QuantityPerUnit
		p.QuantityPerUnit = &qpu
	}
	return p
}
