package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Raymond9734/acme-dashboard-backend/internal/cache"
	"github.com/Raymond9734/acme-dashboard-backend/internal/models"
	"github.com/Raymond9734/acme-dashboard-backend/internal/repository"
	"github.com/Raymond9734/acme-dashboard-backend/internal/validation"
)

// InvoiceService handles invoice business logic
type InvoiceService interface {
	CreateInvoice(ctx context.Context, prev FormState, form validation.Form) (Outcome, error)
	UpdateInvoice(ctx context.Context, id string, prev FormState, form validation.Form) (Outcome, error)
	DeleteInvoice(ctx context.Context, id string) (Outcome, error)
	GetInvoice(ctx context.Context, id string) (*InvoiceForm, error)
	ListInvoices(ctx context.Context, query string, page int) (*InvoiceListResult, error)
	InvoicePages(ctx context.Context, query string) (int, error)
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	cache        cache.Client
	itemsPerPage int
	now          func() time.Time
	logger       *slog.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	cacheClient cache.Client,
	itemsPerPage int,
	logger *slog.Logger,
) InvoiceService {
	if cacheClient == nil {
		cacheClient = cache.NewNopClient()
	}
	if itemsPerPage < 1 {
		itemsPerPage = models.DefaultPageSize
	}
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		cache:        cacheClient,
		itemsPerPage: itemsPerPage,
		now:          time.Now,
		logger:       logger,
	}
}

// CreateInvoice validates the form and inserts an invoice dated today
func (s *invoiceService) CreateInvoice(ctx context.Context, prev FormState, form validation.Form) (Outcome, error) {
	input, errs := validation.ParseInvoice(form)
	if errs != nil {
		return invalid(errs, MsgCreateInvoiceMissingFields), nil
	}

	invoice := &models.Invoice{
		CustomerID: input.CustomerID,
		Amount:     input.AmountInCents,
		Status:     input.Status,
		Date:       s.now().UTC().Format(models.DateLayout),
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		s.logger.Error("failed to create invoice",
			slog.String("customer_id", invoice.CustomerID),
			slog.String("error", err.Error()),
		)
		return failed(MsgCreateInvoiceDBError), nil
	}

	s.logger.Info("invoice created",
		slog.String("invoice_id", invoice.ID),
		slog.String("customer_id", invoice.CustomerID),
		slog.Int64("amount", invoice.Amount),
	)

	return succeeded(cache.PathInvoices, cache.PathInvoices), nil
}

// UpdateInvoice overwrites an invoice. The form is expected to come from the
// edit page already valid, so invalid input is returned as an error wrapping
// validation.ErrInvalidSubmission rather than as a form state.
func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, prev FormState, form validation.Form) (Outcome, error) {
	input, err := validation.MustParseInvoice(form)
	if err != nil {
		return Outcome{}, fmt.Errorf("update invoice %s: %w", id, err)
	}

	invoice := &models.Invoice{
		ID:         id,
		CustomerID: input.CustomerID,
		Amount:     input.AmountInCents,
		Status:     input.Status,
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		s.logStorageError(ctx, "failed to update invoice", id, err)
		return failed(MsgUpdateInvoiceDBError), nil
	}

	s.logger.Info("invoice updated",
		slog.String("invoice_id", id),
		slog.Int64("amount", invoice.Amount),
		slog.String("status", invoice.Status),
	)

	return succeeded(cache.PathInvoices, cache.PathInvoices), nil
}

// DeleteInvoice removes an invoice in place; there is no redirect
func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) (Outcome, error) {
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		s.logStorageError(ctx, "failed to delete invoice", id, err)
		return failed(MsgDeleteInvoiceDBError), nil
	}

	s.logger.Info("invoice deleted", slog.String("invoice_id", id))

	return succeeded("", cache.PathInvoices), nil
}

// GetInvoice retrieves an invoice for the edit form
func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*InvoiceForm, error) {
	variant := "invoice:" + id

	var cached InvoiceForm
	gen, hit := s.cacheGet(ctx, variant, &cached)
	if hit {
		return &cached, nil
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &InvoiceForm{
		ID:         invoice.ID,
		CustomerID: invoice.CustomerID,
		Amount:     models.AmountFromCents(invoice.Amount),
		Status:     invoice.Status,
		Date:       invoice.Date,
	}
	s.cacheSet(ctx, variant, gen, result)

	return result, nil
}

// ListInvoices retrieves one page of invoices matching the search text
func (s *invoiceService) ListInvoices(ctx context.Context, query string, page int) (*InvoiceListResult, error) {
	query = strings.TrimSpace(query)
	if page < 1 {
		page = 1
	}
	variant := cache.ListVariant(query, page)

	var cached InvoiceListResult
	gen, hit := s.cacheGet(ctx, variant, &cached)
	if hit {
		return &cached, nil
	}

	filter := models.InvoiceFilter{Query: query, Page: page, PageSize: s.itemsPerPage}
	rows, totalCount, err := s.invoiceRepo.ListFiltered(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	views := make([]*InvoiceView, 0, len(rows))
	for _, row := range rows {
		views = append(views, newInvoiceView(row))
	}

	result := &InvoiceListResult{
		Data:       views,
		Pagination: models.NewPaginationResult(page, s.itemsPerPage, totalCount),
	}
	s.cacheSet(ctx, variant, gen, result)

	return result, nil
}

// InvoicePages returns the page count for the search text
func (s *invoiceService) InvoicePages(ctx context.Context, query string) (int, error) {
	query = strings.TrimSpace(query)
	variant := "pages:" + cache.ListVariant(query, 0)

	var cached int
	gen, hit := s.cacheGet(ctx, variant, &cached)
	if hit {
		return cached, nil
	}

	totalCount, err := s.invoiceRepo.Count(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	totalPages := models.TotalPages(totalCount, s.itemsPerPage)
	s.cacheSet(ctx, variant, gen, totalPages)

	return totalPages, nil
}

func (s *invoiceService) logStorageError(ctx context.Context, msg, id string, err error) {
	level := slog.LevelError
	if errors.Is(err, models.ErrNotFound) {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, msg,
		slog.String("invoice_id", id),
		slog.String("error", err.Error()),
	)
}

func (s *invoiceService) cacheGet(ctx context.Context, variant string, dst interface{}) (cache.Generation, bool) {
	gen, hit, err := s.cache.Get(ctx, cache.PathInvoices, variant, dst)
	if err != nil {
		s.logger.Warn("page cache read failed",
			slog.String("path", cache.PathInvoices),
			slog.String("error", err.Error()),
		)
		return gen, false
	}
	return gen, hit
}

func (s *invoiceService) cacheSet(ctx context.Context, variant string, gen cache.Generation, v interface{}) {
	if err := s.cache.Set(ctx, cache.PathInvoices, variant, gen, v); err != nil {
		s.logger.Warn("page cache write failed",
			slog.String("path", cache.PathInvoices),
			slog.String("error", err.Error()),
		)
	}
}
