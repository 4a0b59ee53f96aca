package service

import (
	"github.com/shopspring/decimal"

	"github.com/Raymond9734/acme-dashboard-backend/internal/auth"
	"github.com/Raymond9734/acme-dashboard-backend/internal/models"
	"github.com/Raymond9734/acme-dashboard-backend/internal/validation"
)

// User-facing form messages
const (
	MsgCreateInvoiceMissingFields  = "Missing Fields. Failed to Create Invoice."
	MsgCreateInvoiceDBError        = "Database Error: Failed to Create Invoice."
	MsgUpdateInvoiceDBError        = "Database Error: Failed to Update Invoice."
	MsgDeleteInvoiceDBError        = "Database Error: Failed to Delete Invoice."
	MsgCreateCustomerMissingFields = "Missing Fields. Failed to Create Customer."
	MsgCreateCustomerDBError       = "Database Error: Failed to Create Customer."
	MsgImageUploadFailed           = "Image upload failed. Please try again."
	MsgInvalidCredentials          = "Invalid credentials."
	MsgSomethingWentWrong          = "Something went wrong."
)

// Navigation targets
const (
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"
)

// FormState is what a form shows after a failed submission
type FormState struct {
	Errors  validation.FieldErrors `json:"errors,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// Outcome is the result of a mutation. State is set when the form stays on
// screen; otherwise RedirectTo names the next page, which may be empty for
// in-place mutations. Invalidate lists the cache paths made stale.
type Outcome struct {
	State      *FormState
	RedirectTo string
	Invalidate []string
}

// Failed reports whether the outcome carries a form state
func (o Outcome) Failed() bool {
	return o.State != nil
}

func invalid(errs validation.FieldErrors, message string) Outcome {
	return Outcome{State: &FormState{Errors: errs, Message: message}}
}

func failed(message string) Outcome {
	return Outcome{State: &FormState{Message: message}}
}

func succeeded(redirectTo string, invalidate ...string) Outcome {
	return Outcome{RedirectTo: redirectTo, Invalidate: invalidate}
}

// InvoiceView is an invoice table row with the amount formatted
type InvoiceView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	ImageURL *string `json:"image_url,omitempty"`
	Amount   string  `json:"amount"`
	Date     string  `json:"date"`
	Status   string  `json:"status"`
}

// InvoiceListResult represents a page of the invoices table
type InvoiceListResult struct {
	Data       []*InvoiceView          `json:"data"`
	Pagination models.PaginationResult `json:"pagination"`
}

// InvoiceForm is an invoice as the edit form shows it, amount in dollars
type InvoiceForm struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	Date       string          `json:"date"`
}

// CustomerView is a customers table row with totals formatted
type CustomerView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	ImageURL      *string `json:"image_url,omitempty"`
	TotalInvoices int64   `json:"total_invoices"`
	TotalPending  string  `json:"total_pending"`
	TotalPaid     string  `json:"total_paid"`
}

// CustomerListResult represents a page of the customers table
type CustomerListResult struct {
	Data       []*CustomerView         `json:"data"`
	Pagination models.PaginationResult `json:"pagination"`
}

// AuthResult is the result of a sign-in attempt. Message is set on failure,
// Session and RedirectTo on success.
type AuthResult struct {
	Message    string
	Session    *auth.Session
	RedirectTo string
}

func newInvoiceView(row *models.InvoiceRow) *InvoiceView {
	return &InvoiceView{
		ID:       row.ID,
		Name:     row.Name,
		Email:    row.Email,
		ImageURL: row.ImageURL,
		Amount:   models.FormatCurrency(row.Amount),
		Date:     row.Date.Format(models.DateLayout),
		Status:   row.Status,
	}
}

func newCustomerView(c *models.CustomerSummary) *CustomerView {
	return &CustomerView{
		ID:            c.ID,
		Name:          c.Name,
		Email:         c.Email,
		ImageURL:      c.ImageURL,
		TotalInvoices: c.TotalInvoices,
		TotalPending:  models.FormatCurrency(c.TotalPending),
		TotalPaid:     models.FormatCurrency(c.TotalPaid),
	}
}
