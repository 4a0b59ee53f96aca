package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Raymond9734/acme-dashboard-backend/internal/auth"
	"github.com/Raymond9734/acme-dashboard-backend/internal/cache"
	"github.com/Raymond9734/acme-dashboard-backend/internal/models"
	"github.com/Raymond9734/acme-dashboard-backend/internal/service"
	"github.com/Raymond9734/acme-dashboard-backend/internal/validation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockInvoiceService returns canned outcomes and records the submitted form
type mockInvoiceService struct {
	outcome  service.Outcome
	err      error
	lastID   string
	lastForm validation.Form
	list     *service.InvoiceListResult
	pages    int
	lastPage int
}

func (m *mockInvoiceService) CreateInvoice(ctx context.Context, prev service.FormState, form validation.Form) (service.Outcome, error) {
	m.lastForm = form
	return m.outcome, m.err
}

func (m *mockInvoiceService) UpdateInvoice(ctx context.Context, id string, prev service.FormState, form validation.Form) (service.Outcome, error) {
	m.lastID = id
	m.lastForm = form
	return m.outcome, m.err
}

func (m *mockInvoiceService) DeleteInvoice(ctx context.Context, id string) (service.Outcome, error) {
	m.lastID = id
	return m.outcome, m.err
}

func (m *mockInvoiceService) GetInvoice(ctx context.Context, id string) (*service.InvoiceForm, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &service.InvoiceForm{ID: id}, nil
}

func (m *mockInvoiceService) ListInvoices(ctx context.Context, query string, page int) (*service.InvoiceListResult, error) {
	m.lastPage = page
	return m.list, m.err
}

func (m *mockInvoiceService) InvoicePages(ctx context.Context, query string) (int, error) {
	return m.pages, m.err
}

// mockCustomerService returns canned outcomes and records the submitted form
type mockCustomerService struct {
	outcome  service.Outcome
	err      error
	lastForm validation.Form
}

func (m *mockCustomerService) CreateCustomer(ctx context.Context, prev service.FormState, form validation.Form) (service.Outcome, error) {
	m.lastForm = form
	return m.outcome, m.err
}

func (m *mockCustomerService) ListCustomers(ctx context.Context, query string, page int) (*service.CustomerListResult, error) {
	return &service.CustomerListResult{}, m.err
}

func (m *mockCustomerService) ListCustomerOptions(ctx context.Context) ([]*models.CustomerOption, error) {
	return []*models.CustomerOption{{ID: "c1", Name: "Amy Burns"}}, m.err
}

type mockAuthService struct {
	result *service.AuthResult
	err    error
}

func (m *mockAuthService) Authenticate(ctx context.Context, prev service.FormState, form validation.Form) (*service.AuthResult, error) {
	return m.result, m.err
}

// recordingCache records invalidated paths
type recordingCache struct {
	invalidated []string
	err         error
}

func (c *recordingCache) Get(ctx context.Context, path, variant string, dst interface{}) (cache.Generation, bool, error) {
	return cache.NoGeneration, false, nil
}

func (c *recordingCache) Set(ctx context.Context, path, variant string, gen cache.Generation, v interface{}) error {
	return nil
}

func (c *recordingCache) Invalidate(ctx context.Context, paths ...string) error {
	c.invalidated = append(c.invalidated, paths...)
	return c.err
}

func (c *recordingCache) Close() error {
	return nil
}

func (c *recordingCache) Health(ctx context.Context) error {
	return c.err
}

type staticSessions struct {
	token string
}

func (s staticSessions) Validate(token string) (*auth.Claims, error) {
	if token != s.token {
		return nil, auth.ErrInvalidToken
	}
	claims := &auth.Claims{Email: "user@nextmail.com"}
	claims.Subject = "u1"
	return claims, nil
}

type healthStub struct {
	err error
}

func (h healthStub) Health(ctx context.Context) error {
	return h.err
}

const validToken = "valid-token"

type testServer struct {
	router    http.Handler
	invoices  *mockInvoiceService
	customers *mockCustomerService
	authSvc   *mockAuthService
	cache     *recordingCache
}

func newTestServer() *testServer {
	return newTestServerWithCookies(false)
}

func newTestServerWithCookies(secureCookie bool) *testServer {
	ts := &testServer{
		invoices:  &mockInvoiceService{},
		customers: &mockCustomerService{},
		authSvc:   &mockAuthService{},
		cache:     &recordingCache{},
	}
	logger := testLogger()
	ts.router = NewRouter(Handlers{
		Health:    NewHealthHandler(healthStub{}, ts.cache, logger),
		Auth:      NewAuthHandler(ts.authSvc, secureCookie, logger),
		Invoices:  NewInvoiceHandler(ts.invoices, ts.cache, logger),
		Customers: NewCustomerHandler(ts.customers, ts.cache, logger),
		Sessions:  staticSessions{token: validToken},
	}, []string{"http://localhost:3000"}, logger)
	return ts
}

func (ts *testServer) do(req *http.Request, signedIn bool) *httptest.ResponseRecorder {
	if signedIn {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: validToken})
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) service.FormState {
	t.Helper()
	var state service.FormState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
	return state
}

func TestCreateInvoice_Outcomes(t *testing.T) {
	tests := []struct {
		name            string
		outcome         service.Outcome
		wantStatus      int
		wantLocation    string
		wantInvalidated string
		wantMessage     string
	}{
		{
			name:            "success redirects",
			outcome:         service.Outcome{RedirectTo: cache.PathInvoices, Invalidate: []string{cache.PathInvoices}},
			wantStatus:      http.StatusSeeOther,
			wantLocation:    "/dashboard/invoices",
			wantInvalidated: "/dashboard/invoices",
		},
		{
			name: "field errors",
			outcome: service.Outcome{State: &service.FormState{
				Errors:  validation.FieldErrors{"amount": {validation.MsgAmountPositive}},
				Message: service.MsgCreateInvoiceMissingFields,
			}},
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: service.MsgCreateInvoiceMissingFields,
		},
		{
			name:        "database error",
			outcome:     service.Outcome{State: &service.FormState{Message: service.MsgCreateInvoiceDBError}},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: service.MsgCreateInvoiceDBError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			ts.invoices.outcome = tt.outcome

			rec := ts.do(postForm("/dashboard/invoices", url.Values{
				"customerId": {"cust_1"}, "amount": {"49.99"}, "status": {"pending"},
			}), true)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := rec.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
			if got := rec.Header().Get(HeaderInvalidatedPaths); got != tt.wantInvalidated {
				t.Errorf("%s = %q, want %q", HeaderInvalidatedPaths, got, tt.wantInvalidated)
			}
			if tt.wantMessage != "" {
				if state := decodeState(t, rec); state.Message != tt.wantMessage {
					t.Errorf("message = %q, want %q", state.Message, tt.wantMessage)
				}
			}

			wantCalls := 0
			if tt.wantInvalidated != "" {
				wantCalls = 1
			}
			if len(ts.cache.invalidated) != wantCalls {
				t.Errorf("invalidated %v, want %d paths", ts.cache.invalidated, wantCalls)
			}

			if got := ts.invoices.lastForm.Value("amount"); got != "49.99" {
				t.Errorf("form amount = %q, want 49.99", got)
			}
		})
	}
}

func TestCreateInvoice_InvalidationFailureIsNotSurfaced(t *testing.T) {
	ts := newTestServer()
	ts.cache.err = errors.New("redis down")
	ts.invoices.outcome = service.Outcome{RedirectTo: cache.PathInvoices, Invalidate: []string{cache.PathInvoices}}

	rec := ts.do(postForm("/dashboard/invoices", url.Values{}), true)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestUpdateInvoice_FatalError(t *testing.T) {
	ts := newTestServer()
	ts.invoices.err = fmt.Errorf("update invoice inv_1: %w", validation.ErrInvalidSubmission)

	rec := ts.do(postForm("/dashboard/invoices/inv_1/edit", url.Values{"amount": {"0"}}), true)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want INTERNAL_ERROR", resp.Error.Code)
	}
	if ts.invoices.lastID != "inv_1" {
		t.Errorf("id = %q, want inv_1", ts.invoices.lastID)
	}
}

func TestDeleteInvoice(t *testing.T) {
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/dashboard/invoices/inv_1/delete", nil),
		httptest.NewRequest(http.MethodDelete, "/dashboard/invoices/inv_1", nil),
	} {
		t.Run(req.Method, func(t *testing.T) {
			ts := newTestServer()
			ts.invoices.outcome = service.Outcome{Invalidate: []string{cache.PathInvoices}}

			rec := ts.do(req, true)

			if rec.Code != http.StatusNoContent {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
			}
			if rec.Header().Get("Location") != "" {
				t.Error("delete redirected")
			}
			if rec.Header().Get(HeaderInvalidatedPaths) != cache.PathInvoices {
				t.Errorf("%s = %q", HeaderInvalidatedPaths, rec.Header().Get(HeaderInvalidatedPaths))
			}
			if ts.invoices.lastID != "inv_1" {
				t.Errorf("id = %q, want inv_1", ts.invoices.lastID)
			}
		})
	}
}

func TestDeleteInvoice_NotFound(t *testing.T) {
	ts := newTestServer()
	ts.invoices.outcome = service.Outcome{State: &service.FormState{Message: service.MsgDeleteInvoiceDBError}}

	rec := ts.do(httptest.NewRequest(http.MethodDelete, "/dashboard/invoices/inv_404", nil), true)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if state := decodeState(t, rec); state.Message != service.MsgDeleteInvoiceDBError {
		t.Errorf("message = %q", state.Message)
	}
	if len(ts.cache.invalidated) != 0 {
		t.Errorf("invalidated %v, want none", ts.cache.invalidated)
	}
}

func TestListInvoices_Page(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"3", 3},
		{"0", 1},
		{"-4", 1},
		{"abc", 1},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ts := newTestServer()
			ts.invoices.list = &service.InvoiceListResult{}

			rec := ts.do(httptest.NewRequest(http.MethodGet, "/dashboard/invoices?query=lee&page="+tt.raw, nil), true)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if ts.invoices.lastPage != tt.want {
				t.Errorf("page = %d, want %d", ts.invoices.lastPage, tt.want)
			}
		})
	}
}

func TestInvoicePages(t *testing.T) {
	ts := newTestServer()
	ts.invoices.pages = 4

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/dashboard/invoices/pages?query=paid", nil), true)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp PagesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalPages != 4 {
		t.Errorf("total_pages = %d, want 4", resp.TotalPages)
	}
}

func TestGetInvoice_NotFound(t *testing.T) {
	ts := newTestServer()
	ts.invoices.err = models.ErrNotFoundWithMsg("invoice with ID inv_404 not found")

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/dashboard/invoices/inv_404", nil), true)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCreateCustomer_Multipart(t *testing.T) {
	ts := newTestServer()
	ts.customers.outcome = service.Outcome{RedirectTo: cache.PathCustomers, Invalidate: []string{cache.PathCustomers}}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("name", "Evil Rabbit")
	_ = mw.WriteField("email", "evil@rabbit.com")
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="image_url"; filename="evil-rabbit.png"`},
		"Content-Type":        {"image/png"},
	})
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/dashboard/customers", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := ts.do(req, true)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (body %s)", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Location") != "/dashboard/customers" {
		t.Errorf("Location = %q", rec.Header().Get("Location"))
	}

	form := ts.customers.lastForm
	if form.Value("name") != "Evil Rabbit" {
		t.Errorf("name = %q", form.Value("name"))
	}
	file := form.File("image_url")
	if file == nil {
		t.Fatal("image_url part missing")
	}
	if file.Filename != "evil-rabbit.png" || file.ContentType != "image/png" {
		t.Errorf("file = %s (%s)", file.Filename, file.ContentType)
	}
	if len(file.Data) != 8 {
		t.Errorf("file data = %d bytes, want 8", len(file.Data))
	}
}

func TestListCustomerOptions(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/dashboard/customers/options", nil), true)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Amy Burns") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRequireSession(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"invalid token", &http.Cookie{Name: auth.SessionCookie, Value: "forged"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			req := httptest.NewRequest(http.MethodGet, "/dashboard/customers", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			rec := ts.do(req, false)

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want 303", rec.Code)
			}
			if rec.Header().Get("Location") != "/login" {
				t.Errorf("Location = %q, want /login", rec.Header().Get("Location"))
			}
		})
	}
}

func TestRequireSession_ClearsCookieWithConfiguredSecureFlag(t *testing.T) {
	for _, secure := range []bool{true, false} {
		ts := newTestServerWithCookies(secure)
		// Plain HTTP as seen behind a TLS-terminating proxy
		req := httptest.NewRequest(http.MethodGet, "/dashboard/customers", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "forged"})

		rec := ts.do(req, false)

		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != auth.SessionCookie {
			t.Fatalf("secure=%v: cookies = %v, want cleared session cookie", secure, cookies)
		}
		if cookies[0].MaxAge >= 0 {
			t.Errorf("secure=%v: MaxAge = %d, want negative", secure, cookies[0].MaxAge)
		}
		if cookies[0].Secure != secure {
			t.Errorf("Secure = %v, want %v", cookies[0].Secure, secure)
		}
	}
}

func TestOutcomeWriter_LogsSessionUser(t *testing.T) {
	var buf bytes.Buffer
	w := newOutcomeWriter(&recordingCache{}, slog.New(slog.NewJSONHandler(&buf, nil)))

	claims := &auth.Claims{Email: "user@nextmail.com"}
	claims.Subject = "u1"
	req := httptest.NewRequest(http.MethodPost, "/dashboard/invoices", nil)
	req = req.WithContext(context.WithValue(req.Context(), claimsContextKey, claims))

	w.write(httptest.NewRecorder(), req, service.Outcome{RedirectTo: "/dashboard/invoices"})

	if !strings.Contains(buf.String(), `"user_id":"u1"`) {
		t.Errorf("log = %s, want user_id u1", buf.String())
	}
}

func TestRequireSession_StoresClaims(t *testing.T) {
	var got *auth.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = claimsFromContext(r.Context())
	})
	h := RequireSession(staticSessions{token: validToken}, false, testLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: validToken})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Subject != "u1" {
		t.Errorf("claims = %+v, want subject u1", got)
	}
}

func TestLogin(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		ts := newTestServer()
		ts.authSvc.result = &service.AuthResult{Message: service.MsgInvalidCredentials}

		rec := ts.do(postForm("/login", url.Values{"email": {"user@nextmail.com"}, "password": {"wrong!"}}), false)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if state := decodeState(t, rec); state.Message != service.MsgInvalidCredentials {
			t.Errorf("message = %q", state.Message)
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Error("cookie set on failed sign-in")
		}
	})

	t.Run("success", func(t *testing.T) {
		ts := newTestServer()
		expires := time.Now().Add(time.Hour)
		ts.authSvc.result = &service.AuthResult{
			Session:    &auth.Session{Token: "signed", ExpiresAt: expires},
			RedirectTo: "/dashboard",
		}

		rec := ts.do(postForm("/login", url.Values{"email": {"user@nextmail.com"}, "password": {"123456"}}), false)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303", rec.Code)
		}
		if rec.Header().Get("Location") != "/dashboard" {
			t.Errorf("Location = %q", rec.Header().Get("Location"))
		}
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != auth.SessionCookie || cookies[0].Value != "signed" {
			t.Fatalf("cookies = %+v", cookies)
		}
		if !cookies[0].HttpOnly {
			t.Error("session cookie is not HttpOnly")
		}
	})

	t.Run("unrecognized failure", func(t *testing.T) {
		ts := newTestServer()
		ts.authSvc.err = errors.New("provider exploded")

		rec := ts.do(postForm("/login", url.Values{}), false)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}

func TestLogout(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/logout", nil), true)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("cookies = %+v, want cleared session", cookies)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		dbErr      error
		cache      cache.Client
		wantStatus int
		wantCache  string
	}{
		{"healthy", nil, &recordingCache{}, http.StatusOK, "healthy"},
		{"cache disabled", nil, nil, http.StatusOK, "not_configured"},
		{"database down", errors.New("dial tcp: refused"), nil, http.StatusServiceUnavailable, "not_configured"},
		{"cache down", nil, &recordingCache{err: errors.New("redis down")}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(healthStub{err: tt.dbErr}, tt.cache, testLogger())
			rec := httptest.NewRecorder()

			h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Services["cache"] != tt.wantCache {
				t.Errorf("cache = %q, want %q", resp.Services["cache"], tt.wantCache)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodOptions, "/dashboard/invoices", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := ts.do(req, false)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("allow origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = ts.do(req, false)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("foreign origin allowed: %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
