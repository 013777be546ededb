package repositories

import (
	"context"

	"traders/internal/models"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id int) (*models.Employee, error)
	List(ctx context.Context) ([]*models.Employee, error)
}

type employeeRepo struct {
	db DB
}

func NewEmployeeRepo(db DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) GetByID(ctx context.Context, id int) (*models.Employee, error) {
	e := &models.Employee{}
	query := `
		SELECT employee_id, last_name, first_name, title, reports_to
		FROM employees
		WHERE employee_id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&e.ID, &e.LastName, &e.FirstName, &e.Title, &e.ReportsTo)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *employeeRepo) List(ctx context.Context) ([]*models.Employee, error) {
	query := `
		SELECT employee_id, last_name, first_name, title, reports_to
		FROM employees
		ORDER BY last_name, first_name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		e := &models.Employee{}
		if err := rows.Scan(&e.ID, &e.LastName, &e.FirstName, &e.Title, &e.ReportsTo); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}
