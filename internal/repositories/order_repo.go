package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"traders/internal/models"
)

// orderIDLockKey serializes order id allocation across concurrent commits.
const orderIDLockKey int64 = 0x7472616465727301

type OrderRepository interface {
	CreateWithLines(ctx context.Context, order *models.Order, lines []*models.OrderLine) (int, error)
	GetByID(ctx context.Context, id int) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*models.Order, error)
}

type orderRepo struct {
	db DB
}

func NewOrderRepo(db DB) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `order_id, customer_id, employee_id, order_date, required_date, shipped_date, ship_via, freight,
	ship_name, ship_address, ship_city, ship_region, ship_postal_code, ship_country`

func scanOrder(row rowScanner) (*models.Order, error) {
	o := &models.Order{}
	var name, address, city, region, postal, country *string
	err := row.Scan(&o.ID, &o.CustomerID, &o.EmployeeID, &o.OrderDate, &o.RequiredDate, &o.ShippedDate, &o.ShipVia, &o.Freight,
		&name, &address, &city, &region, &postal, &country)
	if err != nil {
		return nil, err
	}
	o.Ship = models.ShipAddress{
		Name:       stringValue(name),
		Address:    stringValue(address),
		City:       stringValue(city),
		Region:     stringValue(region),
		PostalCode: stringValue(postal),
		Country:    stringValue(country),
	}
	return o, nil
}

// CreateWithLines allocates the next order id and writes the order with all of
// its lines in a single transaction. Nothing is written when any step fails.
func (r *orderRepo) CreateWithLines(ctx context.Context, order *models.Order, lines []*models.OrderLine) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin order transaction: %w", err)
	}

	id, err := r.createInTx(ctx, tx, order, lines)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit order %d: %w", id, err)
	}

	order.ID = id
	return id, nil
}

func (r *orderRepo) createInTx(ctx context.Context, tx pgx.Tx, order *models.Order, lines []*models.OrderLine) (int, error) {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, orderIDLockKey); err != nil {
		return 0, fmt.Errorf("lock order ids: %w", err)
	}

	var id int
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(order_id), 0) + 1 FROM orders`).Scan(&id); err != nil {
		return 0, fmt.Errorf("allocate order id: %w", err)
	}

	query := `
		INSERT INTO orders (order_id, customer_id, employee_id, order_date, required_date, shipped_date, ship_via, freight,
			ship_name, ship_address, ship_city, ship_region, ship_postal_code, ship_country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := tx.Exec(ctx, query, id, order.CustomerID, order.EmployeeID, order.OrderDate, order.RequiredDate, order.ShippedDate,
		order.ShipVia, order.Freight, nullIfEmpty(order.Ship.Name), nullIfEmpty(order.Ship.Address), nullIfEmpty(order.Ship.City),
		nullIfEmpty(order.Ship.Region), nullIfEmpty(order.Ship.PostalCode), nullIfEmpty(order.Ship.Country))
	if err != nil {
		return 0, fmt.Errorf("insert order %d: %w", id, err)
	}

	if err := insertLines(ctx, tx, id, lines); err != nil {
		return 0, fmt.Errorf("insert lines of order %d: %w", id, err)
	}
	return id, nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`
	return scanOrder(r.db.QueryRow(ctx, query, id))
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID string) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		ORDER BY order_date DESC, order_id DESC`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
