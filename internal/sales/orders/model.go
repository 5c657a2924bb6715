package orders

import "time"

type SalesOrderStatus string

const (
	SalesOrderStatusDraft     SalesOrderStatus = "DRAFT"
	SalesOrderStatusConfirmed SalesOrderStatus = "CONFIRMED"
	SalesOrderStatusCancelled SalesOrderStatus = "CANCELLED"
	SalesOrderStatusCompleted SalesOrderStatus = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s SalesOrderStatus) Valid() bool {
	switch s {
	case SalesOrderStatusDraft, SalesOrderStatusConfirmed, SalesOrderStatusCancelled, SalesOrderStatusCompleted:
		return true
	}
	return false
}

type SalesOrder struct {
	ID          int64            `json:"id" db:"id"`
	DocNumber   string           `json:"doc_number" db:"doc_number"`
	CustomerID  int64            `json:"customer_id" db:"customer_id"`
	OrderDate   time.Time        `json:"order_date" db:"order_date"`
	Status      SalesOrderStatus `json:"status" db:"status"`
	Currency    string           `json:"currency" db:"currency"`
	TotalAmount float64          `json:"total_amount" db:"total_amount"`
	Notes       *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

type SalesOrderWithDetails struct {
	SalesOrder
	CustomerName string `json:"customer_name" db:"customer_name"`
}
