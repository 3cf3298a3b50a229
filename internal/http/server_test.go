package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/core"
	"finanzas/internal/dashboard"
	"finanzas/internal/live"
	"finanzas/internal/metrics"
	"finanzas/internal/services"
	"finanzas/internal/store"
	"finanzas/internal/store/memory"
)

var fixedNow = time.Date(2025, time.March, 8, 9, 0, 0, 0, time.UTC)

type testServer struct {
	*Server
	docs *memory.Store
}

func newTestServer(t *testing.T, mutate func(*Deps)) *testServer {
	t.Helper()
	docs := memory.New()
	clock := func() time.Time { return fixedNow }
	sd := services.Deps{Store: docs, Metrics: metrics.NewCollector(), Clock: clock}

	view := live.New(store.NewRepositories(docs), sd.Metrics, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- view.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	select {
	case <-view.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("view never became ready")
	}

	deps := Deps{
		Ledger:   services.NewLedgerService(sd),
		Accounts: services.NewAccountService(sd),
		Registry: services.NewRegistryService(sd),
		Budgets:  services.NewBudgetService(sd),
		View:     view,
		Metrics:  sd.Metrics,
		Clock:    clock,
		Upcoming: 5,
	}
	if mutate != nil {
		mutate(&deps)
	}
	srv := NewServer(":0", deps)
	t.Cleanup(srv.limiter.Stop)
	return &testServer{Server: srv, docs: docs}
}

func (ts *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

const expenseBody = `{
	"type": "expense", "amount": "1500.50", "currency": "ARS",
	"unit": "HOGAR", "category": "Vivienda y Vida Diaria", "concept": "Abastecimiento",
	"detail": "Supermercado", "account": "mp"
}`

func TestHealthReadyAndMetrics(t *testing.T) {
	ts := newTestServer(t, nil)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/readyz", "").Code)

	metricsResp := ts.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, metricsResp.Code)
	assert.Contains(t, metricsResp.Body.String(), "finanzas_http_requests_total")

	assert.Equal(t, http.StatusMethodNotAllowed, ts.do(t, http.MethodPut, "/api/dashboard", "").Code)
}

func TestReadyFailsWhenStoreDown(t *testing.T) {
	ts := newTestServer(t, func(d *Deps) {
		d.Ping = func(context.Context) error { return errors.New("disk gone") }
	})
	rr := ts.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestCatalogLookups(t *testing.T) {
	ts := newTestServer(t, nil)

	units := decode[[]string](t, ts.do(t, http.MethodGet, "/api/catalog/units", ""))
	assert.Equal(t, []string{"HOGAR", "PROFESIONAL", "BRASIL"}, units)

	cats := decode[[]string](t, ts.do(t, http.MethodGet, "/api/catalog/categories?unit=HOGAR", ""))
	assert.Contains(t, cats, "Vivienda y Vida Diaria")

	concepts := decode[[]string](t, ts.do(t, http.MethodGet, "/api/catalog/concepts?unit=HOGAR&category=Vivienda+y+Vida+Diaria", ""))
	assert.Contains(t, concepts, "Abastecimiento")

	missing := decode[[]string](t, ts.do(t, http.MethodGet, "/api/catalog/concepts?unit=NOPE&category=x", ""))
	assert.Empty(t, missing, "unknown keys yield an empty list, not an error")
}

func TestSelectionCascade(t *testing.T) {
	ts := newTestServer(t, nil)

	type selection struct {
		Unit     string `json:"unit"`
		Category string `json:"category"`
		Concept  string `json:"concept"`
		Detail   string `json:"detail"`
		Valid    bool   `json:"valid"`
	}

	def := decode[selection](t, ts.do(t, http.MethodPost, "/api/catalog/selection", `{}`))
	assert.Equal(t, "HOGAR", def.Unit)
	assert.True(t, def.Valid)

	rr := ts.do(t, http.MethodPost, "/api/catalog/selection",
		`{"selection":{"unit":"HOGAR","category":"Vivienda y Vida Diaria","concept":"Abastecimiento","detail":"x"},"level":"unit","value":"PROFESIONAL"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[selection](t, rr)
	assert.Equal(t, "PROFESIONAL", got.Unit)
	assert.NotEqual(t, "Vivienda y Vida Diaria", got.Category, "changing unit resets the category")
	assert.True(t, got.Valid)

	bad := ts.do(t, http.MethodPost, "/api/catalog/selection", `{"level":"planet","value":"x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, bad.Code)
}

func TestPostTransactionUpsertsAccount(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(t, http.MethodPost, "/api/transactions", expenseBody)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	tx := decode[core.Transaction](t, rr)
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, core.SourceManual, tx.Source)

	require.Eventually(t, func() bool {
		body := decode[listBody[core.Account]](t, ts.do(t, http.MethodGet, "/api/accounts", ""))
		return len(body.Items) == 1 && body.Items[0].Balance.Cents == -150050
	}, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		body := decode[listBody[core.Transaction]](t, ts.do(t, http.MethodGet, "/api/transactions?account=mp", ""))
		return len(body.Items) == 1 && body.Items[0].ID == tx.ID
	}, time.Second, 10*time.Millisecond)

	got := ts.do(t, http.MethodGet, "/api/transactions/"+tx.ID, "")
	assert.Equal(t, http.StatusOK, got.Code)
}

func TestTransactionErrors(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"malformed json", http.MethodPost, "/api/transactions", `{"type":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/transactions", `{"tipo":"expense"}`, http.StatusBadRequest},
		{"trailing data", http.MethodPost, "/api/transactions", expenseBody + `{}`, http.StatusBadRequest},
		{"unknown type", http.MethodPost, "/api/transactions", strings.Replace(expenseBody, `"expense"`, `"gift"`, 1), http.StatusUnprocessableEntity},
		{"non-numeric amount", http.MethodPost, "/api/transactions", strings.Replace(expenseBody, `"1500.50"`, `"mucho"`, 1), http.StatusUnprocessableEntity},
		{"zero amount", http.MethodPost, "/api/transactions", strings.Replace(expenseBody, `"1500.50"`, `"0"`, 1), http.StatusUnprocessableEntity},
		{"missing account", http.MethodPost, "/api/transactions", strings.Replace(expenseBody, `"mp"`, `""`, 1), http.StatusUnprocessableEntity},
		{"bad classification", http.MethodPost, "/api/transactions", strings.Replace(expenseBody, `"Abastecimiento"`, `"Yates"`, 1), http.StatusUnprocessableEntity},
		{"update missing", http.MethodPatch, "/api/transactions/nope", `{"detail":"x"}`, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/api/transactions/nope", "", http.StatusNotFound},
		{"get missing", http.MethodGet, "/api/transactions/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}

	txs, err := store.NewRepository[core.Transaction](ts.docs, store.Transactions).List(context.Background(), store.Query[core.Transaction]{})
	require.NoError(t, err)
	assert.Empty(t, txs, "rejected requests write nothing")
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	ts := newTestServer(t, nil)
	tx := decode[core.Transaction](t, ts.do(t, http.MethodPost, "/api/transactions", expenseBody))

	accounts := store.NewRepository[core.Account](ts.docs, store.Accounts)
	rr := ts.do(t, http.MethodPatch, "/api/transactions/"+tx.ID, `{"amount":"500"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	a, err := accounts.Get(context.Background(), "mp")
	require.NoError(t, err)
	assert.Equal(t, int64(-50000), a.Balance.Cents)

	rr = ts.do(t, http.MethodDelete, "/api/transactions/"+tx.ID, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	a, err = accounts.Get(context.Background(), "mp")
	require.NoError(t, err)
	assert.True(t, a.Balance.IsZero())
}

func TestAccountsEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(t, http.MethodPost, "/api/accounts", `{"name":"  BNA  ","type":"bank","currency":"ARS","initial_balance":"1000"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	a := decode[core.Account](t, rr)
	assert.Equal(t, "BNA", a.Name)
	assert.Equal(t, int64(100000), a.Balance.Cents)

	rr = ts.do(t, http.MethodPatch, "/api/accounts/"+a.ID, `{"color":"#00f"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, http.StatusUnprocessableEntity,
		ts.do(t, http.MethodPost, "/api/accounts", `{"name":"X","type":"piggybank","currency":"ARS"}`).Code)

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodPost, "/api/accounts/"+a.ID+"/deactivate", "").Code)
	require.Eventually(t, func() bool {
		body := decode[listBody[core.Account]](t, ts.do(t, http.MethodGet, "/api/accounts", ""))
		return len(body.Items) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestServiceLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(t, http.MethodPost, "/api/services", `{
		"name":"EPEC","amount":"45000","currency":"ARS","unit":"HOGAR",
		"category":"Vivienda y Vida Diaria","concept":"Servicios","detail":"EPEC","dueDate":10
	}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	svc := decode[core.Service](t, rr)
	assert.Equal(t, core.StatusPending, svc.Status)

	rr = ts.do(t, http.MethodPost, "/api/services/"+svc.ID+"/advance", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, core.StatusReserved, decode[core.Service](t, rr).Status)

	rr = ts.do(t, http.MethodPut, "/api/services/"+svc.ID+"/amount", `{"amount":"52000"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decode[core.Service](t, rr)
	assert.Equal(t, core.VariationUp, updated.Variation)
	assert.Equal(t, int64(4500000), updated.LastAmount.Cents)

	require.Eventually(t, func() bool {
		body := decode[listBody[dashboard.Deadline]](t, ts.do(t, http.MethodGet, "/api/services?view=upcoming", ""))
		return len(body.Items) == 1 && body.Items[0].Service.Status == core.StatusReserved
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, http.StatusUnprocessableEntity, ts.do(t, http.MethodGet, "/api/services?view=monthly", "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/services/nope/advance", "").Code)
	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/services/"+svc.ID, "").Code)
}

func TestBudgetsAndDashboard(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(t, http.MethodPost, "/api/budgets", `{"target_type":"concept","target_name":"Abastecimiento","unit":"HOGAR","limit":"1000","currency":"ARS"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[dashboard.BudgetView](t, rr)
	assert.Equal(t, core.BudgetOK, created.Evaluation.Status)
	assert.Equal(t, core.DefaultAlertThreshold, created.Budget.AlertThreshold)

	bad := ts.do(t, http.MethodPost, "/api/budgets", `{"target_type":"concept","target_name":"Yates","unit":"HOGAR","limit":"1000","currency":"ARS"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, bad.Code)

	require.Eventually(t, func() bool {
		body := decode[listBody[dashboard.BudgetView]](t, ts.do(t, http.MethodGet, "/api/budgets", ""))
		return len(body.Items) == 1
	}, time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/transactions", expenseBody).Code)
	require.Eventually(t, func() bool {
		sum := decode[dashboard.Summary](t, ts.do(t, http.MethodGet, "/api/dashboard", ""))
		return sum.TotalBalance.Cents == -150050 && len(sum.Budgets) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/budgets/"+created.Budget.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/api/budgets/"+created.Budget.ID, "").Code)
}

func TestMiddlewareChain(t *testing.T) {
	ts := newTestServer(t, func(d *Deps) { d.WritesPerMinute = 1 })

	rr := ts.do(t, http.MethodGet, "/api/accounts", "")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/transactions", expenseBody).Code)
	limited := ts.do(t, http.MethodPost, "/api/transactions", expenseBody)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/dashboard", "").Code, "reads are not limited")
}

func TestRecovererAnswersJSON(t *testing.T) {
	ts := newTestServer(t, nil)
	h := ts.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rr.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errMalformedBody, http.StatusBadRequest},
		{core.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{store.ErrNotFound, http.StatusNotFound},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
