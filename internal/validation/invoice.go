package validation

import (
	"github.com/shopspring/decimal"

	"github.com/Raymond9734/acme-dashboard-backend/internal/models"
)

// Invoice form messages
const (
	MsgSelectCustomer = "Please select a customer."
	MsgAmountPositive = "Please enter an amount greater than $0."
	MsgAmountTooLarge = "Please enter an amount no greater than $21474836.47."
	MsgSelectStatus   = "Please select an invoice status."
)

// InvoiceInput is a validated invoice submission. Amount is in major units,
// AmountInCents is Amount rounded to whole cents.
type InvoiceInput struct {
	CustomerID    string
	Amount        decimal.Decimal
	AmountInCents int64
	Status        string
}

// The max bound mirrors models.MaxAmountCents.
type invoiceFields struct {
	CustomerID    string `form:"customerId" validate:"required"`
	AmountInCents int64  `form:"amount" validate:"gt=0,max=2147483647"`
	Status        string `form:"status" validate:"required,oneof=pending paid"`
}

var invoiceMessages = messages{
	"customerId": {"*": MsgSelectCustomer},
	"amount":     {"max": MsgAmountTooLarge, "*": MsgAmountPositive},
	"status":     {"*": MsgSelectStatus},
}

// ParseInvoice validates an invoice form and returns every field error found
func ParseInvoice(form Form) (InvoiceInput, FieldErrors) {
	amount := parseAmount(form.Value("amount"))
	fields := invoiceFields{
		CustomerID:    form.Value("customerId"),
		AmountInCents: models.CentsFromAmount(amount),
		Status:        form.Value("status"),
	}

	errs := FieldErrors{}
	check(fields, invoiceMessages, errs)
	if len(errs) > 0 {
		return InvoiceInput{}, errs
	}

	return InvoiceInput{
		CustomerID:    fields.CustomerID,
		Amount:        amount,
		AmountInCents: fields.AmountInCents,
		Status:        fields.Status,
	}, nil
}

// MustParseInvoice is the strict variant: invalid input is an error wrapping
// ErrInvalidSubmission instead of a result.
func MustParseInvoice(form Form) (InvoiceInput, error) {
	input, errs := ParseInvoice(form)
	if err := strict(errs); err != nil {
		return InvoiceInput{}, err
	}
	return input, nil
}
