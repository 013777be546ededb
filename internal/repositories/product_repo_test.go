package repositories

import (
	"context"
	"testing"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traders/internal/models"
)

var productColumnNames = []string{"product_id", "product_name", "supplier_id", "category_id", "quantity_per_unit", "unit_price",
	"units_in_stock", "units_on_order", "reorder_level", "discontinued", "category_name", "company_name"}

func floatPtr(f float64) *float64 { return &f }

func TestProductRepo_GetByIDConvertsDiscontinued(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM products p`).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows(productColumnNames).
			AddRow(5, "Chef Anton's Gumbo Mix", intPtr(2), intPtr(2), stringPtr("36 boxes"), floatPtr(21.35),
				intPtr(0), intPtr(0), intPtr(0), 1, stringPtr("Condiments"), stringPtr("New Orleans Cajun Delights")))

	p, err := NewProductRepo(mock).GetByID(context.Background(), 5)

	require.NoError(t, err)
	assert.True(t, p.Discontinued)
	assert.Equal(t, "Condiments", *p.CategoryName)
	assert.Equal(t, 21.35, p.Price())
}

func TestProductRepo_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM products p`).WithArgs(404).WillReturnError(pgx.ErrNoRows)

	p, err := NewProductRepo(mock).GetByID(context.Background(), 404)

	assert.Nil(t, p)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestProductRepo_FindSearchesAcrossColumns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM products p.*WHERE \(p.product_name ILIKE \$1 OR c.category_name ILIKE \$1`).
		WithArgs("%bottles%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY p.product_name, p.product_id LIMIT \$2 OFFSET \$3`).
		WithArgs("%bottles%", 10, 0).
		WillReturnRows(pgxmock.NewRows(productColumnNames).
			AddRow(2, "Chang", intPtr(1), intPtr(1), stringPtr("24 - 12 oz bottles"), floatPtr(19),
				intPtr(17), intPtr(40), intPtr(25), 0, stringPtr("Beverages"), stringPtr("Exotic Liquids")))

	products, total, err := NewProductRepo(mock).Find(context.Background(), models.ProductFilter{Search: "bottles"}, 10, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.False(t, products[0].Discontinued)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_CreateEncodesDiscontinued(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	product := &models.Product{ID: 78, Name: "Rhönbräu Klosterbier", Discontinued: true}
	mock.ExpectExec(`INSERT INTO products`).
		WithArgs(78, "Rhönbräu Klosterbier", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewProductRepo(mock).Create(context.Background(), product))
	assert.NoError(t, mock.ExpectationsWereMet())
}
