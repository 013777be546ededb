package models

type Category struct {
	ID          int     `json:"category_id" db:"category_id"`
	Name        string  `json:"category_name" db:"category_name"`
	Description *string `json:"description" db:"description"`
}

type Supplier struct {
	ID          int     `json:"supplier_id" db:"supplier_id"`
	CompanyName string  `json:"company_name" db:"company_name"`
	ContactName *string `json:"contact_name" db:"contact_name"`
	City        *string `json:"city" db:"city"`
	Country     *string `json:"country" db:"country"`
	Phone       *string `json:"phone" db:"phone"`
}

type Employee struct {
	ID        int     `json:"employee_id" db:"employee_id"`
	LastName  string  `json:"last_name" db:"last_name"`
	FirstName string  `json:"first_name" db:"first_name"`
	Title     *string `json:"title" db:"title"`
	ReportsTo *int    `json:"reports_to" db:"reports_to"`
}

// FullName is the label used when assigning an employee to an order.
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type Shipper struct {
	ID          int     `json:"shipper_id" db:"shipper_id"`
	CompanyName string  `json:"company_name" db:"company_name"`
	Phone       *string `json:"phone" db:"phone"`
}
