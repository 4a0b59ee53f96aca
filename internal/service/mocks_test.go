package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/Raymond9734/acme-dashboard-backend/internal/cache"
	"github.com/Raymond9734/acme-dashboard-backend/internal/models"
	"github.com/Raymond9734/acme-dashboard-backend/internal/storage"
	"github.com/Raymond9734/acme-dashboard-backend/internal/validation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func formOf(pairs ...string) validation.Form {
	values := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		values.Set(pairs[i], pairs[i+1])
	}
	return validation.NewForm(values)
}

// mockInvoiceRepository keeps invoices in memory
type mockInvoiceRepository struct {
	invoices    map[string]*models.Invoice
	rows        []*models.InvoiceRow
	createCalls int
	updateCalls int
	listCalls   int
	err         error

	// onList runs after the rows are read, before they are returned
	onList func()
}

func newMockInvoiceRepository() *mockInvoiceRepository {
	return &mockInvoiceRepository{invoices: map[string]*models.Invoice{}}
}

func (m *mockInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	m.createCalls++
	if m.err != nil {
		return m.err
	}
	invoice.ID = fmt.Sprintf("inv_%d", len(m.invoices)+1)
	stored := *invoice
	m.invoices[invoice.ID] = &stored
	return nil
}

func (m *mockInvoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	invoice, ok := m.invoices[id]
	if !ok {
		return nil, models.ErrNotFoundWithMsg("invoice not found")
	}
	stored := *invoice
	return &stored, nil
}

func (m *mockInvoiceRepository) ListFiltered(ctx context.Context, filter models.InvoiceFilter) ([]*models.InvoiceRow, int64, error) {
	m.listCalls++
	if m.err != nil {
		return nil, 0, m.err
	}

	matched := []*models.InvoiceRow{}
	for _, row := range m.rows {
		if filter.Query == "" || strings.Contains(strings.ToLower(row.Name), strings.ToLower(filter.Query)) {
			matched = append(matched, row)
		}
	}

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	start := offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	page := matched[start:end]
	if m.onList != nil {
		m.onList()
	}
	return page, int64(len(matched)), nil
}

func (m *mockInvoiceRepository) Count(ctx context.Context, query string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var count int64
	for _, row := range m.rows {
		if query == "" || strings.Contains(strings.ToLower(row.Name), strings.ToLower(query)) {
			count++
		}
	}
	return count, nil
}

func (m *mockInvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	m.updateCalls++
	if m.err != nil {
		return m.err
	}
	existing, ok := m.invoices[invoice.ID]
	if !ok {
		return models.ErrNotFoundWithMsg("invoice not found")
	}
	existing.CustomerID = invoice.CustomerID
	existing.Amount = invoice.Amount
	existing.Status = invoice.Status
	return nil
}

func (m *mockInvoiceRepository) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.invoices[id]; !ok {
		return models.ErrNotFoundWithMsg("invoice not found")
	}
	delete(m.invoices, id)
	return nil
}

// mockCustomerRepository keeps customers in memory
type mockCustomerRepository struct {
	customers   []*models.Customer
	summaries   []*models.CustomerSummary
	total       int64
	createCalls int
	listCalls   int
	err         error
}

func (m *mockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	m.createCalls++
	if m.err != nil {
		return m.err
	}
	customer.ID = "cust_new"
	m.customers = append(m.customers, customer)
	return nil
}

func (m *mockCustomerRepository) ListFiltered(ctx context.Context, filter models.CustomerFilter) ([]*models.CustomerSummary, int64, error) {
	m.listCalls++
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.summaries, m.total, nil
}

func (m *mockCustomerRepository) ListAll(ctx context.Context) ([]*models.CustomerOption, error) {
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}
	options := make([]*models.CustomerOption, 0, len(m.customers))
	for _, c := range m.customers {
		options = append(options, &models.CustomerOption{ID: c.ID, Name: c.Name})
	}
	sort.Slice(options, func(i, j int) bool { return options[i].Name < options[j].Name })
	return options, nil
}

// mockImageStore records uploads
type mockImageStore struct {
	uploads []storage.Image
	err     error
}

func (m *mockImageStore) Upload(ctx context.Context, image storage.Image) (string, error) {
	m.uploads = append(m.uploads, image)
	if m.err != nil {
		return "", m.err
	}
	return "/customers/" + image.Filename, nil
}

// mockCache is an in-memory page cache with per-path generations
type mockCache struct {
	entries map[string][]byte
	gens    map[string]cache.Generation
	err     error
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string][]byte{}, gens: map[string]cache.Generation{}}
}

func (m *mockCache) key(path, variant string, gen cache.Generation) string {
	return fmt.Sprintf("%s|%d|%s", path, gen, variant)
}

func (m *mockCache) Get(ctx context.Context, path, variant string, dst interface{}) (cache.Generation, bool, error) {
	if m.err != nil {
		return cache.NoGeneration, false, m.err
	}
	gen := m.gens[path]
	data, ok := m.entries[m.key(path, variant, gen)]
	if !ok {
		return gen, false, nil
	}
	return gen, true, json.Unmarshal(data, dst)
}

func (m *mockCache) Set(ctx context.Context, path, variant string, gen cache.Generation, v interface{}) error {
	if m.err != nil {
		return m.err
	}
	if gen < 0 {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.entries[m.key(path, variant, gen)] = data
	return nil
}

func (m *mockCache) Invalidate(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		m.gens[p]++
	}
	return nil
}

func (m *mockCache) Close() error {
	return nil
}

func (m *mockCache) Health(ctx context.Context) error {
	return nil
}

var errDatabase = errors.New("connection reset by peer")
