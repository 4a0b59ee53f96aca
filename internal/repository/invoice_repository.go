package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Raymond9734/acme-dashboard-backend/internal/db"
	"github.com/Raymond9734/acme-dashboard-backend/internal/models"
)

// InvoiceRepository defines the interface for invoice data access
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	ListFiltered(ctx context.Context, filter models.InvoiceFilter) ([]*models.InvoiceRow, int64, error)
	Count(ctx context.Context, query string) (int64, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, id string) error
}

// invoiceRepository implements InvoiceRepository using PostgreSQL
type invoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// invoiceSearchClause is shared by the listing and Count
const invoiceSearchClause = `
			customers.name ILIKE $1 OR
			customers.email ILIKE $1 OR
			invoices.amount::text ILIKE $1 OR
			invoices.date::text ILIKE $1 OR
			invoices.status ILIKE $1`

// Create inserts a new invoice, assigning its ID
func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}

	query := `
		INSERT INTO invoices (id, customer_id, amount, status, date)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(
		ctx,
		query,
		invoice.ID,
		invoice.CustomerID,
		invoice.Amount,
		invoice.Status,
		invoice.Date,
	)
	if db.IsForeignKeyViolation(err) {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %s not found", invoice.CustomerID))
	}
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

// GetByID retrieves an invoice by ID
func (r *invoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	query := `
		SELECT id, customer_id, amount, status, date
		FROM invoices
		WHERE id = $1`

	invoice := &models.Invoice{}
	var date time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&invoice.ID,
		&invoice.CustomerID,
		&invoice.Amount,
		&invoice.Status,
		&date,
	)

	if err == sql.ErrNoRows || db.IsInvalidInput(err) {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("invoice with ID %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	invoice.Date = date.Format(models.DateLayout)
	return invoice, nil
}

// ListFiltered retrieves invoices joined with their customer, newest first
func (r *invoiceRepository) ListFiltered(ctx context.Context, filter models.InvoiceFilter) ([]*models.InvoiceRow, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	totalCount, err := r.Count(ctx, filter.Query)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			invoices.id,
			invoices.amount,
			invoices.date,
			invoices.status,
			customers.name,
			customers.email,
			customers.image_url
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		WHERE` + invoiceSearchClause + `
		ORDER BY invoices.date DESC, invoices.id DESC
		LIMIT $2 OFFSET $3`

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	rows, err := r.db.QueryContext(ctx, query, likePattern(filter.Query), filter.PageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []*models.InvoiceRow{}
	for rows.Next() {
		invoice := &models.InvoiceRow{}
		var imageURL sql.NullString
		err := rows.Scan(
			&invoice.ID,
			&invoice.Amount,
			&invoice.Date,
			&invoice.Status,
			&invoice.Name,
			&invoice.Email,
			&imageURL,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoice.ImageURL = stringPtr(imageURL)
		invoices = append(invoices, invoice)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, totalCount, nil
}

// Count returns how many invoices match the search text
func (r *invoiceRepository) Count(ctx context.Context, query string) (int64, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		WHERE` + invoiceSearchClause

	var totalCount int64
	if err := r.db.QueryRowContext(ctx, countQuery, likePattern(query)).Scan(&totalCount); err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	return totalCount, nil
}

// Update overwrites customer, amount and status of an existing invoice.
// The issue date is left untouched.
func (r *invoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	query := `
		UPDATE invoices
		SET customer_id = $1, amount = $2, status = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(
		ctx,
		query,
		invoice.CustomerID,
		invoice.Amount,
		invoice.Status,
		invoice.ID,
	)
	if db.IsInvalidInput(err) {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("invoice with ID %s not found", invoice.ID))
	}
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("invoice with ID %s not found", invoice.ID))
	}

	return nil
}

// Delete removes an invoice
func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM invoices WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if db.IsInvalidInput(err) {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("invoice with ID %s not found", id))
	}
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("invoice with ID %s not found", id))
	}

	return nil
}
