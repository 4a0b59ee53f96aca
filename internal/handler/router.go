package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers groups everything the router serves
type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Invoices  *InvoiceHandler
	Customers *CustomerHandler
	Sessions  SessionValidator
}

// NewRouter registers every route. The /dashboard tree requires a session.
func NewRouter(h Handlers, allowedOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware(allowedOrigins))

	r.Get("/health", h.Health.Health)

	r.Post("/login", h.Auth.Login)
	r.Post("/logout", h.Auth.Logout)

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(RequireSession(h.Sessions, h.Auth.secureCookie, logger))

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", h.Invoices.ListInvoices)
			r.Post("/", h.Invoices.CreateInvoice)
			r.Get("/pages", h.Invoices.InvoicePages)
			r.Get("/{id}", h.Invoices.GetInvoice)
			r.Post("/{id}/edit", h.Invoices.UpdateInvoice)
			r.Post("/{id}/delete", h.Invoices.DeleteInvoice)
			r.Delete("/{id}", h.Invoices.DeleteInvoice)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.Customers.ListCustomers)
			r.Post("/", h.Customers.CreateCustomer)
			r.Get("/options", h.Customers.ListCustomerOptions)
		})
	})

	return r
}
