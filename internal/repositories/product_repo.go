package repositories

import (
	"context"
	"fmt"

	"traders/internal/models"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id int) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Find(ctx context.Context, filter models.ProductFilter, limit, offset int) ([]*models.Product, int, error)
	ListOrderable(ctx context.Context) ([]*models.Product, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*models.Product, error)
}

type productRepo struct {
	db DB
}

func NewProductRepo(db DB) ProductRepository {
	return &productRepo{db: db}
}

const productSelect = `
	SELECT p.product_id, p.product_name, p.supplier_id, p.category_id, p.quantity_per_unit, p.unit_price,
		p.units_in_stock, p.units_on_order, p.reorder_level, p.discontinued, c.category_name, s.company_name
	FROM products p
	LEFT JOIN categories c ON c.category_id = p.category_id
	LEFT JOIN suppliers s ON s.supplier_id = p.supplier_id`

const productJoins = `
	FROM products p
	LEFT JOIN categories c ON c.category_id = p.category_id
	LEFT JOIN suppliers s ON s.supplier_id = p.supplier_id`

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	var discontinued int
	err := row.Scan(&p.ID, &p.Name, &p.SupplierID, &p.CategoryID, &p.QuantityPerUnit, &p.UnitPrice,
		&p.UnitsInStock, &p.UnitsOnOrder, &p.ReorderLevel, &discontinued, &p.CategoryName, &p.SupplierName)
	if err != nil {
		return nil, err
	}
	p.Discontinued = discontinued != 0
	return p, nil
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (product_id, product_name, supplier_id, category_id, quantity_per_unit, unit_price, units_in_stock, units_on_order, reorder_level, discontinued)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query, product.ID, product.Name, product.SupplierID, product.CategoryID, product.QuantityPerUnit,
		product.UnitPrice, product.UnitsInStock, product.UnitsOnOrder, product.ReorderLevel, boolToInt(product.Discontinued))
	return err
}

func (r *productRepo) GetByID(ctx context.Context, id int) (*models.Product, error) {
	return scanProduct(r.db.QueryRow(ctx, productSelect+` WHERE p.product_id = $1`, id))
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET product_name = $1, supplier_id = $2, category_id = $3, quantity_per_unit = $4, unit_price = $5,
			units_in_stock = $6, units_on_order = $7, reorder_level = $8, discontinued = $9
		WHERE product_id = $10
	`
	_, err := r.db.Exec(ctx, query, product.Name, product.SupplierID, product.CategoryID, product.QuantityPerUnit, product.UnitPrice,
		product.UnitsInStock, product.UnitsOnOrder, product.ReorderLevel, boolToInt(product.Discontinued), product.ID)
	return err
}

func (r *productRepo) Find(ctx context.Context, filter models.ProductFilter, limit, offset int) ([]*models.Product, int, error) {
	where := &whereBuilder{}

	// Free-text search across the columns shown in the catalog
	if filter.Search != "" {
		where.add(`(p.product_name ILIKE $%[1]d OR c.category_name ILIKE $%[1]d OR s.company_name ILIKE $%[1]d OR p.quantity_per_unit ILIKE $%[1]d)`,
			containsPattern(filter.Search))
	}
	if filter.Name != "" {
		where.add(`p.product_name ILIKE $%[1]d`, containsPattern(filter.Name))
	}
	if filter.Category != "" {
		where.add(`c.category_name ILIKE $%[1]d`, containsPattern(filter.Category))
	}
	if filter.Supplier != "" {
		where.add(`s.company_name ILIKE $%[1]d`, containsPattern(filter.Supplier))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+productJoins+where.sql(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := productSelect + where.sql() +
		fmt.Sprintf(` ORDER BY p.product_name, p.product_id LIMIT $%d OFFSET $%d`, where.next(), where.next()+1)
	args := append(append([]interface{}{}, where.args...), limit, offset)

	products, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepo) ListOrderable(ctx context.Context) ([]*models.Product, error) {
	return r.queryProducts(ctx, productSelect+` WHERE p.discontinued = 0 ORDER BY p.product_name`)
}

func (r *productRepo) ListByCustomer(ctx context.Context, customerID string) ([]*models.Product, error) {
	query := productSelect + `
		WHERE p.product_id IN (
			SELECT od.product_id
			FROM order_details od
			JOIN orders o ON o.order_id = od.order_id
			WHERE o.customer_id = $1
		)
		ORDER BY p.product_name`
	return r.queryProducts(ctx, query, customerID)
}

func (r *productRepo) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*models.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
