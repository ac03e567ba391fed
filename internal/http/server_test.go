package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/events"
	applog "budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/storage"
	"budgetbuddy/internal/storage/memory"
)

const testOrigin = "https://budgetbudddy.onrender.com"

type deleteFailStore struct{ storage.Store }

func (deleteFailStore) DeleteTransaction(context.Context, string) error {
	return errors.New("disk on fire")
}

type testEnv struct {
	srv   *Server
	store storage.Store
	queue *events.Queue
	txs   *services.TransactionService
}

func newTestEnv(t *testing.T, store storage.Store, rateLimit int) testEnv {
	t.Helper()
	return newTestEnvWith(t, store, nil, rateLimit, nil)
}

func newTestEnvWith(t *testing.T, store storage.Store, publisher events.Publisher, rateLimit int, logger *applog.Logger) testEnv {
	t.Helper()
	if store == nil {
		store = memory.New()
	}
	queue := events.NewQueue(64, nil)
	if publisher == nil {
		publisher = queue
	}
	txs := services.NewTransactionService(store, publisher, nil)
	srv := NewServer(Config{Addr: ":0", CORSOrigin: testOrigin, RateLimitPerMinute: rateLimit},
		txs,
		services.NewUserService(store, nil),
		logger)
	t.Cleanup(srv.limiter.Stop)
	return testEnv{srv: srv, store: store, queue: queue, txs: txs}
}

func (e testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, nil, 60)

	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := env.do(http.MethodGet, path, ""); rr.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rr.Code)
		}
	}

	env.srv.SetReadinessCheck(func(context.Context) error { return errors.New("db down") })
	if rr := env.do(http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz with failing check status = %d, want 503", rr.Code)
	}
}

func TestCreateAndListTransactions(t *testing.T) {
	env := newTestEnv(t, nil, 60)

	rr := env.do(http.MethodPost, "/api/transaction",
		`{"type":"income","category":"Salary","amount":1000,"userEmail":"u@example.com","date":"2024-05-01"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("create status = %d body = %s", rr.Code, rr.Body)
	}
	if msg := decodeBody[messageResponse](t, rr); msg.Message != "Transaction Added!" {
		t.Errorf("message = %q", msg.Message)
	}

	rr = env.do(http.MethodPost, "/api/transaction", `{"type":"expense","category":"Rent","amount":"700","userEmail":"u@example.com"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("create with string amount status = %d body = %s", rr.Code, rr.Body)
	}
	if err := env.txs.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if env.queue.Len() != 2 {
		t.Errorf("queued events = %d, want 2", env.queue.Len())
	}

	rr = env.do(http.MethodGet, "/api/transactions/u@example.com", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"amount":1000`) || !strings.Contains(body, `"type":"income"`) || !strings.Contains(body, `"_id":"`) {
		t.Errorf("unexpected wire format %s", body)
	}
	txs := decodeBody[[]core.Transaction](t, rr)
	if len(txs) != 2 || txs[0].Category != "Salary" || txs[1].Category != "Rent" {
		t.Fatalf("list = %+v", txs)
	}
	if txs[0].OccurredAt.Format("2006-01-02") != "2024-05-01" {
		t.Errorf("date = %v", txs[0].OccurredAt)
	}

	rr = env.do(http.MethodGet, "/api/transactions/u%40example.com", "")
	if got := decodeBody[[]core.Transaction](t, rr); len(got) != 2 {
		t.Errorf("escaped email returned %d transactions, want 2", len(got))
	}

	rr = env.do(http.MethodGet, "/api/transactions/nobody@example.com", "")
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("empty list body = %q, want []", rr.Body.String())
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	env := newTestEnv(t, nil, 1000)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"type":`},
		{"empty body", ``},
		{"unknown type", `{"type":"gift","amount":5,"userEmail":"u@example.com"}`},
		{"missing type", `{"amount":5,"userEmail":"u@example.com"}`},
		{"non-numeric amount", `{"type":"income","amount":"abc","userEmail":"u@example.com"}`},
		{"negative amount", `{"type":"income","amount":-5,"userEmail":"u@example.com"}`},
		{"zero amount", `{"type":"income","amount":0,"userEmail":"u@example.com"}`},
		{"missing amount", `{"type":"income","userEmail":"u@example.com"}`},
		{"missing owner", `{"type":"income","amount":5}`},
		{"blank owner", `{"type":"income","amount":5,"userEmail":"  "}`},
		{"bad date", `{"type":"income","amount":5,"userEmail":"u@example.com","date":"yesterday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(http.MethodPost, "/api/transaction", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rr.Code, rr.Body)
			}
			if e := decodeBody[errorResponse](t, rr); e.Error == "" {
				t.Error("expected an error message")
			}
		})
	}

	if err := env.txs.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := env.queue.Len(); n != 0 {
		t.Errorf("rejected requests queued %d events", n)
	}
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	env := newTestEnv(t, nil, 60)
	stored, err := env.store.InsertTransaction(context.Background(), core.Transaction{
		Kind: core.Expense, Category: "Food", Amount: mustAmount(t, "20"), OwnerEmail: "u@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}

	rr := env.do(http.MethodPut, "/api/transaction/"+stored.ID, `{"category":"Groceries","amount":25.5}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d body = %s", rr.Code, rr.Body)
	}
	if msg := decodeBody[messageResponse](t, rr); msg.Message != "Transaction Updated!" {
		t.Errorf("message = %q", msg.Message)
	}
	got, _ := env.store.GetTransaction(context.Background(), stored.ID)
	if got.Category != "Groceries" || got.Amount.String() != "25.5" || got.Kind != core.Expense {
		t.Errorf("after update: %+v", got)
	}

	if rr := env.do(http.MethodPut, "/api/transaction/"+stored.ID, `{"type":"loan"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("invalid patch status = %d, want 400", rr.Code)
	}
	if rr := env.do(http.MethodPut, "/api/transaction/does-not-exist", `{"category":"x"}`); rr.Code != http.StatusOK {
		t.Errorf("update missing id status = %d, want 200", rr.Code)
	}

	rr = env.do(http.MethodDelete, "/api/transaction/"+stored.ID, "")
	if rr.Code != http.StatusOK || decodeBody[messageResponse](t, rr).Message != "Transaction Deleted!" {
		t.Fatalf("delete status = %d body = %s", rr.Code, rr.Body)
	}
	if _, err := env.store.GetTransaction(context.Background(), stored.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("record still present: %v", err)
	}
	if rr := env.do(http.MethodDelete, "/api/transaction/does-not-exist", ""); rr.Code != http.StatusOK {
		t.Errorf("delete missing id status = %d, want 200", rr.Code)
	}
}

func TestDeleteTransactionStoreFailure(t *testing.T) {
	env := newTestEnv(t, deleteFailStore{memory.New()}, 60)

	rr := env.do(http.MethodDelete, "/api/transaction/abc", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if e := decodeBody[errorResponse](t, rr); e.Error != "Error deleting transaction" {
		t.Errorf("error = %q", e.Error)
	}
}

func TestUserEndpoints(t *testing.T) {
	env := newTestEnv(t, nil, 60)

	rr := env.do(http.MethodGet, "/api/user/ada@example.com", "")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "null" {
		t.Fatalf("unknown user = %d %q, want 200 null", rr.Code, rr.Body.String())
	}

	rr = env.do(http.MethodPost, "/api/user", `{"name":"Ada","email":"ada@example.com"}`)
	if msg := decodeBody[messageResponse](t, rr); msg.Message != "User Registered" {
		t.Errorf("first register = %q", msg.Message)
	}
	rr = env.do(http.MethodPost, "/api/user", `{"name":"Ada","email":"ada@example.com"}`)
	if msg := decodeBody[messageResponse](t, rr); msg.Message != "User already exists" {
		t.Errorf("second register = %q", msg.Message)
	}

	rr = env.do(http.MethodGet, "/api/user/ada@example.com", "")
	u := decodeBody[*core.User](t, rr)
	if u == nil || u.Name != "Ada" || u.Email != "ada@example.com" {
		t.Errorf("user = %+v", u)
	}

	for _, body := range []string{`{"email":"x@example.com"}`, `{"name":"X"}`, `not json`} {
		if rr := env.do(http.MethodPost, "/api/user", body); rr.Code != http.StatusBadRequest {
			t.Errorf("register %s status = %d, want 400", body, rr.Code)
		}
	}
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, nil, 60)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/transaction", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		rr := httptest.NewRecorder()
		env.srv.Handler.ServeHTTP(rr, req)
		return rr
	}

	rr := preflight(testOrigin)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != testOrigin {
		t.Errorf("allowed origin header = %q, want %q", got, testOrigin)
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost) {
		t.Errorf("allow methods = %q", rr.Header().Get("Access-Control-Allow-Methods"))
	}

	rr = preflight("https://evil.example.com")
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin got Access-Control-Allow-Origin = %q", got)
	}
}

func TestWriteRateLimit(t *testing.T) {
	env := newTestEnv(t, nil, 2)
	body := `{"name":"Ada","email":"ada@example.com"}`

	for i := 0; i < 2; i++ {
		if rr := env.do(http.MethodPost, "/api/user", body); rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rr.Code)
		}
	}
	rr := env.do(http.MethodPost, "/api/user", body)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("third write status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	if rr := env.do(http.MethodGet, "/api/user/ada@example.com", ""); rr.Code != http.StatusOK {
		t.Errorf("reads must not be limited, got %d", rr.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, nil, 60)
	rr := env.do(http.MethodGet, "/api/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("responses should carry a request id")
	}
}

// stalledPublisher never finishes until its context ends.
type stalledPublisher struct{}

func (stalledPublisher) PublishBalanceChanged(ctx context.Context, _ core.BalanceChanged) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCreateTransactionDoesNotWaitForBroker(t *testing.T) {
	env := newTestEnvWith(t, nil, stalledPublisher{}, 60, nil)

	start := time.Now()
	rr := env.do(http.MethodPost, "/api/transaction", `{"type":"expense","category":"Food","amount":12,"userEmail":"u@example.com"}`)
	elapsed := time.Since(start)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body)
	}
	if elapsed > time.Second {
		t.Errorf("response took %v while the publisher was stalled", elapsed)
	}
}

func newBufferLogger(buf *bytes.Buffer) *applog.Logger {
	return applog.New(applog.Config{Output: buf, Component: applog.ComponentHTTP})
}

func TestRateLimitLogsComponent(t *testing.T) {
	var buf bytes.Buffer
	env := newTestEnvWith(t, nil, nil, 1, newBufferLogger(&buf))
	body := `{"name":"Ada","email":"ada@example.com"}`

	env.do(http.MethodPost, "/api/user", body)
	if rr := env.do(http.MethodPost, "/api/user", body); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	if !strings.Contains(buf.String(), "component=rate_limit") {
		t.Errorf("rate limit log missing component:\n%s", buf.String())
	}
}

func TestStoreFailureLogsErrorType(t *testing.T) {
	var buf bytes.Buffer
	env := newTestEnvWith(t, deleteFailStore{memory.New()}, nil, 60, newBufferLogger(&buf))

	if rr := env.do(http.MethodDelete, "/api/transaction/abc", ""); rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if !strings.Contains(buf.String(), "error_type=database_error") {
		t.Errorf("store failure log missing error type:\n%s", buf.String())
	}
}
