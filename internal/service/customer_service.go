package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Raymond9734/acme-dashboard-backend/internal/cache"
	"github.com/Raymond9734/acme-dashboard-backend/internal/models"
	"github.com/Raymond9734/acme-dashboard-backend/internal/repository"
	"github.com/Raymond9734/acme-dashboard-backend/internal/storage"
	"github.com/Raymond9734/acme-dashboard-backend/internal/validation"
)

const customerOptionsVariant = "options"

// CustomerService handles customer business logic
type CustomerService interface {
	CreateCustomer(ctx context.Context, prev FormState, form validation.Form) (Outcome, error)
	ListCustomers(ctx context.Context, query string, page int) (*CustomerListResult, error)
	ListCustomerOptions(ctx context.Context) ([]*models.CustomerOption, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	images       storage.ImageStore
	cache        cache.Client
	itemsPerPage int
	logger       *slog.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(
	customerRepo repository.CustomerRepository,
	images storage.ImageStore,
	cacheClient cache.Client,
	itemsPerPage int,
	logger *slog.Logger,
) CustomerService {
	if cacheClient == nil {
		cacheClient = cache.NewNopClient()
	}
	if itemsPerPage < 1 {
		itemsPerPage = models.DefaultPageSize
	}
	return &customerService{
		customerRepo: customerRepo,
		images:       images,
		cache:        cacheClient,
		itemsPerPage: itemsPerPage,
		logger:       logger,
	}
}

// CreateCustomer validates the form, uploads the image if one was sent and
// inserts the customer. A failed upload leaves no row behind.
func (s *customerService) CreateCustomer(ctx context.Context, prev FormState, form validation.Form) (Outcome, error) {
	input, errs := validation.ParseCustomer(form)
	if errs != nil {
		return invalid(errs, MsgCreateCustomerMissingFields), nil
	}

	customer := &models.Customer{
		Name:  input.Name,
		Email: input.Email,
	}

	if input.Image != nil {
		ref, err := s.images.Upload(ctx, storage.Image{
			Filename:    input.Image.Filename,
			ContentType: input.Image.MediaType(),
			Data:        input.Image.Data,
		})
		if err != nil {
			s.logger.Error("failed to upload customer image",
				slog.String("filename", input.Image.Filename),
				slog.String("error", err.Error()),
			)
			return failed(MsgImageUploadFailed), nil
		}
		customer.ImageURL = &ref
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		s.logger.Error("failed to create customer",
			slog.String("email", customer.Email),
			slog.String("error", err.Error()),
		)
		return failed(MsgCreateCustomerDBError), nil
	}

	s.logger.Info("customer created",
		slog.String("customer_id", customer.ID),
		slog.String("email", customer.Email),
	)

	return succeeded(cache.PathCustomers, cache.PathCustomers), nil
}

// ListCustomers retrieves one page of customers matching the search text.
// The page count uses the same predicate as the rows.
func (s *customerService) ListCustomers(ctx context.Context, query string, page int) (*CustomerListResult, error) {
	query = strings.TrimSpace(query)
	if page < 1 {
		page = 1
	}
	variant := cache.ListVariant(query, page)

	var cached CustomerListResult
	gen, hit := s.cacheGet(ctx, variant, &cached)
	if hit {
		return &cached, nil
	}

	filter := models.CustomerFilter{Query: query, Page: page, PageSize: s.itemsPerPage}
	customers, totalCount, err := s.customerRepo.ListFiltered(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	views := make([]*CustomerView, 0, len(customers))
	for _, c := range customers {
		views = append(views, newCustomerView(c))
	}

	result := &CustomerListResult{
		Data:       views,
		Pagination: models.NewPaginationResult(page, s.itemsPerPage, totalCount),
	}
	s.cacheSet(ctx, variant, gen, result)

	return result, nil
}

// ListCustomerOptions retrieves every customer for the invoice form select
func (s *customerService) ListCustomerOptions(ctx context.Context) ([]*models.CustomerOption, error) {
	var cached []*models.CustomerOption
	gen, hit := s.cacheGet(ctx, customerOptionsVariant, &cached)
	if hit {
		return cached, nil
	}

	options, err := s.customerRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer options: %w", err)
	}

	s.cacheSet(ctx, customerOptionsVariant, gen, options)
	return options, nil
}

func (s *customerService) cacheGet(ctx context.Context, variant string, dst interface{}) (cache.Generation, bool) {
	gen, hit, err := s.cache.Get(ctx, cache.PathCustomers, variant, dst)
	if err != nil {
		s.logger.Warn("page cache read failed",
			slog.String("path", cache.PathCustomers),
			slog.String("error", err.Error()),
		)
		return gen, false
	}
	return gen, hit
}

func (s *customerService) cacheSet(ctx context.Context, variant string, gen cache.Generation, v interface{}) {
	if err := s.cache.Set(ctx, cache.PathCustomers, variant, gen, v); err != nil {
		s.logger.Warn("page cache write failed",
			slog.String("path", cache.PathCustomers),
			slog.String("error", err.Error()),
		)
	}
}
