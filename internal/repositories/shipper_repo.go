package repositories

import (
	"context"

	"traders/internal/models"
)

type ShipperRepository interface {
	GetByID(ctx context.Context, id int) (*models.Shipper, error)
	List(ctx context.Context) ([]*models.Shipper, error)
}

type shipperRepo struct {
	db DB
}

func NewShipperRepo(db DB) ShipperRepository {
	return &shipperRepo{db: db}
}

func (r *shipperRepo) GetByID(ctx context.Context, id int) (*models.Shipper, error) {
	s := &models.Shipper{}
	query := `SELECT shipper_id, company_name, phone FROM shippers WHERE shipper_id = $1`
	if err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.CompanyName, &s.Phone); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *shipperRepo) List(ctx context.Context) ([]*models.Shipper, error) {
	rows, err := r.db.Query(ctx, `SELECT shipper_id, company_name, phone FROM shippers ORDER BY company_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shippers []*models.Shipper
	for rows.Next() {
		s := &models.Shipper{}
		if err := rows.Scan(&s.ID, &s.CompanyName, &s.Phone); err != nil {
			return nil, err
		}
		shippers = append(shippers, s)
	}
	return shippers, rows.Err()
}
