package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Raymond9734/acme-dashboard-backend/internal/cache"
	"github.com/Raymond9734/acme-dashboard-backend/internal/service"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceSvc service.InvoiceService
	outcomes   *outcomeWriter
	logger     *slog.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceSvc service.InvoiceService, cacheClient cache.Client, logger *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceSvc: invoiceSvc,
		outcomes:   newOutcomeWriter(cacheClient, logger),
		logger:     logger,
	}
}

// PagesResponse is the page count for a search
type PagesResponse struct {
	TotalPages int `json:"total_pages"`
}

// ListInvoices handles GET /dashboard/invoices
func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result, err := h.invoiceSvc.ListInvoices(r.Context(), q.Get("query"), parsePage(q.Get("page")))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// InvoicePages handles GET /dashboard/invoices/pages
func (h *InvoiceHandler) InvoicePages(w http.ResponseWriter, r *http.Request) {
	totalPages, err := h.invoiceSvc.InvoicePages(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, PagesResponse{TotalPages: totalPages})
}

// GetInvoice handles GET /dashboard/invoices/{id}
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoiceSvc.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, invoice)
}

// CreateInvoice handles POST /dashboard/invoices
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(w, r)
	if err != nil {
		respondBadForm(w)
		return
	}

	outcome, err := h.invoiceSvc.CreateInvoice(r.Context(), service.FormState{}, form)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	h.outcomes.write(w, r, outcome)
}

// UpdateInvoice handles POST /dashboard/invoices/{id}/edit
func (h *InvoiceHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(w, r)
	if err != nil {
		respondBadForm(w)
		return
	}

	outcome, err := h.invoiceSvc.UpdateInvoice(r.Context(), chi.URLParam(r, "id"), service.FormState{}, form)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	h.outcomes.write(w, r, outcome)
}

// DeleteInvoice handles POST /dashboard/invoices/{id}/delete and DELETE /dashboard/invoices/{id}
func (h *InvoiceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.invoiceSvc.DeleteInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	h.outcomes.write(w, r, outcome)
}
