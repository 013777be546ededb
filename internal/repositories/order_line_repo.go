package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"traders/internal/models"
)

type OrderLineRepository interface {
	ListByOrderID(ctx context.Context, orderID int) ([]*models.OrderLine, error)
	ListByCustomerID(ctx context.Context, customerID string) ([]*models.OrderLine, error)
}

type orderLineRepo struct {
	db DB
}

func NewOrderLineRepo(db DB) OrderLineRepository {
	return &orderLineRepo{db: db}
}

const orderLineSelect = `
	SELECT od.order_id, od.product_id, od.unit_price, od.quantity, od.discount, COALESCE(p.product_name, '')
	FROM order_details od
	LEFT JOIN products p ON p.product_id = od.product_id`

func (r *orderLineRepo) ListByOrderID(ctx context.Context, orderID int) ([]*models.OrderLine, error) {
	query := orderLineSelect + `
		WHERE od.order_id = $1
		ORDER BY od.product_id`
	return r.queryLines(ctx, query, orderID)
}

// ListByCustomerID returns every line of every order placed by the customer,
// most recent orders first.
func (r *orderLineRepo) ListByCustomerID(ctx context.Context, customerID string) ([]*models.OrderLine, error) {
	query := orderLineSelect + `
		JOIN orders o ON o.order_id = od.order_id
		WHERE o.customer_id = $1
		ORDER BY o.order_date DESC, od.order_id DESC, od.product_id`
	return r.queryLines(ctx, query, customerID)
}

func (r *orderLineRepo) queryLines(ctx context.Context, query string, args ...interface{}) ([]*models.OrderLine, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*models.OrderLine
	for rows.Next() {
		l := &models.OrderLine{}
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.UnitPrice, &l.Quantity, &l.Discount, &l.ProductName); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// insertLines writes the lines of orderID inside tx
func insertLines(ctx context.Context, tx pgx.Tx, orderID int, lines []*models.OrderLine) error {
	query := `
		INSERT INTO order_details (order_id, product_id, unit_price, quantity, discount)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, l := range lines {
		l.OrderID = orderID
		if _, err := tx.Exec(ctx, query, orderID, l.ProductID, l.UnitPrice, l.Quantity, l.Discount); err != nil {
			return err
		}
	}
	return nil
}
