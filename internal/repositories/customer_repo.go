package repositories

import (
	"context"
	"fmt"

	"traders/internal/models"
)

type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	Find(ctx context.Context, filter models.CustomerFilter, limit, offset int) ([]*models.Customer, int, error)
	ListAll(ctx context.Context) ([]*models.Customer, error)
	Countries(ctx context.Context) ([]string, error)
}

type customerRepo struct {
	db DB
}

func NewCustomerRepo(db DB) CustomerRepository {
	return &customerRepo{db: db}
}

const customerColumns = `customer_id, company_name, contact_name, contact_title, address, city, region, postal_code, country, phone, fax`

func scanCustomer(row rowScanner) (*models.Customer, error) {
	c := &models.Customer{}
	err := row.Scan(&c.ID, &c.CompanyName, &c.ContactName, &c.ContactTitle, &c.Address, &c.City, &c.Region, &c.PostalCode, &c.Country, &c.Phone, &c.Fax)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE customer_id = $1`
	return scanCustomer(r.db.QueryRow(ctx, query, id))
}

func (r *customerRepo) Find(ctx context.Context, filter models.CustomerFilter, limit, offset int) ([]*models.Customer, int, error) {
	where := &whereBuilder{}
	if filter.Company != "" {
		where.add(`company_name ILIKE $%[1]d`, containsPattern(filter.Company))
	}
	if filter.Title != "" {
		where.add(`contact_title ILIKE $%[1]d`, containsPattern(filter.Title))
	}
	if filter.Country != "" {
		where.add(`LOWER(country) = LOWER($%[1]d)`, filter.Country)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM customers` + where.sql()
	if err := r.db.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + customerColumns + ` FROM customers` + where.sql() +
		fmt.Sprintf(` ORDER BY company_name LIMIT $%d OFFSET $%d`, where.next(), where.next()+1)
	args := append(append([]interface{}{}, where.args...), limit, offset)

	customers, err := r.queryCustomers(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *customerRepo) ListAll(ctx context.Context) ([]*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY company_name`
	return r.queryCustomers(ctx, query)
}

func (r *customerRepo) Countries(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT country
		FROM customers
		WHERE country IS NOT NULL AND country <> ''
		ORDER BY country DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var countries []string
	for rows.Next() {
		var country string
		if err := rows.Scan(&country); err != nil {
			return nil, err
		}
		countries = append(countries, country)
	}
	return countries, rows.Err()
}

func (r *customerRepo) queryCustomers(ctx context.Context, query string, args ...interface{}) ([]*models.Customer, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
