package models

// Customer represents a customer in the system
type Customer struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	ImageURL *string `json:"image_url"`
}

// CustomerSummary is a customer with invoice aggregates, amounts in cents
type CustomerSummary struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	ImageURL      *string `json:"image_url"`
	TotalInvoices int64   `json:"total_invoices"`
	TotalPending  int64   `json:"total_pending"`
	TotalPaid     int64   `json:"total_paid"`
}

// CustomerOption is the minimal projection used by invoice form selects
type CustomerOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CustomerFilter holds filtering options for listing customers
type CustomerFilter struct {
	Query    string
	Page     int
	PageSize int
}
