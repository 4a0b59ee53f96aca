package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Raymond9734/acme-dashboard-backend/internal/db"
	"github.com/Raymond9734/acme-dashboard-backend/internal/models"
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	ListFiltered(ctx context.Context, filter models.CustomerFilter) ([]*models.CustomerSummary, int64, error)
	ListAll(ctx context.Context) ([]*models.CustomerOption, error)
}

// customerRepository implements CustomerRepository using PostgreSQL
type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// customerSearchClause matches name or email case-insensitively. The listing
// and the count share it so page totals agree with the rows shown.
const customerSearchClause = `c.name ILIKE $1 OR c.email ILIKE $1`

// Create inserts a new customer, assigning its ID
func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}

	query := `
		INSERT INTO customers (id, name, email, image_url)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(
		ctx,
		query,
		customer.ID,
		customer.Name,
		customer.Email,
		nullString(customer.ImageURL),
	)
	if db.IsUniqueViolation(err) {
		return models.ErrAlreadyExistsWithMsg(fmt.Sprintf("customer with email %s already exists", customer.Email))
	}
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// ListFiltered retrieves customers matching the search text with invoice totals
func (r *customerRepository) ListFiltered(ctx context.Context, filter models.CustomerFilter) ([]*models.CustomerSummary, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)
	pattern := likePattern(filter.Query)

	countQuery := `SELECT COUNT(*) FROM customers c WHERE ` + customerSearchClause

	var totalCount int64
	if err := r.db.QueryRowContext(ctx, countQuery, pattern).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	query := `
		SELECT
			c.id,
			c.name,
			c.email,
			c.image_url,
			COUNT(i.id) AS total_invoices,
			COALESCE(SUM(CASE WHEN i.status = 'pending' THEN i.amount ELSE 0 END), 0) AS total_pending,
			COALESCE(SUM(CASE WHEN i.status = 'paid' THEN i.amount ELSE 0 END), 0) AS total_paid
		FROM customers c
		LEFT JOIN invoices i ON c.id = i.customer_id
		WHERE ` + customerSearchClause + `
		GROUP BY c.id, c.name, c.email, c.image_url
		ORDER BY c.name ASC
		LIMIT $2 OFFSET $3`

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	rows, err := r.db.QueryContext(ctx, query, pattern, filter.PageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*models.CustomerSummary{}
	for rows.Next() {
		customer := &models.CustomerSummary{}
		var imageURL sql.NullString
		err := rows.Scan(
			&customer.ID,
			&customer.Name,
			&customer.Email,
			&imageURL,
			&customer.TotalInvoices,
			&customer.TotalPending,
			&customer.TotalPaid,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customer.ImageURL = stringPtr(imageURL)
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, totalCount, nil
}

// ListAll retrieves every customer as a select option, ordered by name
func (r *customerRepository) ListAll(ctx context.Context) ([]*models.CustomerOption, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM customers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer options: %w", err)
	}
	defer rows.Close()

	options := []*models.CustomerOption{}
	for rows.Next() {
		option := &models.CustomerOption{}
		if err := rows.Scan(&option.ID, &option.Name); err != nil {
			return nil, fmt.Errorf("failed to scan customer option: %w", err)
		}
		options = append(options, option)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customer options: %w", err)
	}

	return options, nil
}
