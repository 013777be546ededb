package repositories

import (
	"context"

	"traders/internal/models"
)

type SupplierRepository interface {
	GetByID(ctx context.Context, id int) (*models.Supplier, error)
	List(ctx context.Context) ([]*models.Supplier, error)
}

type supplierRepo struct {
	db DB
}

func NewSupplierRepo(db DB) SupplierRepository {
	return &supplierRepo{db: db}
}

func (r *supplierRepo) GetByID(ctx context.Context, id int) (*models.Supplier, error) {
	supplier := &models.Supplier{}
	query := `
		SELECT supplier_id, company_name, contact_name, city, country, phone
		FROM suppliers
		WHERE supplier_id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&supplier.ID, &supplier.CompanyName, &supplier.ContactName, &supplier.City, &supplier.Country, &supplier.Phone)
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

func (r *supplierRepo) List(ctx context.Context) ([]*models.Supplier, error) {
	query := `
		SELECT supplier_id, company_name, contact_name, city, country, phone
		FROM suppliers
		ORDER BY company_name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []*models.Supplier
	for rows.Next() {
		supplier := &models.Supplier{}
		if err := rows.Scan(&supplier.ID, &supplier.CompanyName, &supplier.ContactName, &supplier.City, &supplier.Country, &supplier.Phone); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, supplier)
	}
	return suppliers, rows.Err()
}
