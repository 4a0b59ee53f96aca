package models

import "time"

// Invoice status constants
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
)

// DateLayout is the ISO calendar date format invoices are stored with
const DateLayout = "2006-01-02"

// Invoice represents a persisted invoice row. Amount is in cents.
type Invoice struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
	Date       string `json:"date"`
}

// InvoiceRow is an invoice joined with the customer it was issued to
type InvoiceRow struct {
	ID       string    `json:"id"`
	Amount   int64     `json:"amount"`
	Date     time.Time `json:"date"`
	Status   string    `json:"status"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	ImageURL *string   `json:"image_url,omitempty"`
}

// InvoiceFilter holds search and pagination options for listing invoices
type InvoiceFilter struct {
	Query    string
	Page     int
	PageSize int
}
