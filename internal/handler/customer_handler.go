package handler

import (
	"log/slog"
	"net/http"

	"github.com/Raymond9734/acme-dashboard-backend/internal/cache"
	"github.com/Raymond9734/acme-dashboard-backend/internal/service"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerSvc service.CustomerService
	outcomes    *outcomeWriter
	logger      *slog.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerSvc service.CustomerService, cacheClient cache.Client, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerSvc: customerSvc,
		outcomes:    newOutcomeWriter(cacheClient, logger),
		logger:      logger,
	}
}

// ListCustomers handles GET /dashboard/customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result, err := h.customerSvc.ListCustomers(r.Context(), q.Get("query"), parsePage(q.Get("page")))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// ListCustomerOptions handles GET /dashboard/customers/options
func (h *CustomerHandler) ListCustomerOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.customerSvc.ListCustomerOptions(r.Context())
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, options)
}

// CreateCustomer handles POST /dashboard/customers
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(w, r)
	if err != nil {
		respondBadForm(w)
		return
	}

	outcome, err := h.customerSvc.CreateCustomer(r.Context(), service.FormState{}, form)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	h.outcomes.write(w, r, outcome)
}
