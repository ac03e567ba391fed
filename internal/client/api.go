// Package client is the consumer side of the budgetbuddy API: a typed HTTP
// client, the on-device profile store and the application state driven by
// the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// TransactionUpdate carries the fields of a partial update. Nil fields are
// omitted from the request and left untouched by the server.
type TransactionUpdate struct {
	Kind       *core.Kind       `json:"type,omitempty"`
	Category   *string          `json:"category,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	OccurredAt *time.Time       `json:"date,omitempty"`
	OwnerEmail *string          `json:"userEmail,omitempty"`
}

type createTransactionRequest struct {
	Kind       core.Kind       `json:"type"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt *time.Time      `json:"date,omitempty"`
	OwnerEmail string          `json:"userEmail"`
}

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// API calls the budgetbuddy REST endpoints.
type API struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPI returns a client for the server at baseURL. A nil httpClient gets
// a pooled client with a request timeout.
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = newHTTPClient()
	}
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: defaultTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// CreateTransaction posts t. The server does not echo the assigned id.
func (a *API) CreateTransaction(ctx context.Context, t core.Transaction) error {
	req := createTransactionRequest{
		Kind:       t.Kind,
		Category:   t.Category,
		Amount:     t.Amount,
		OwnerEmail: t.OwnerEmail,
	}
	if !t.OccurredAt.IsZero() {
		req.OccurredAt = &t.OccurredAt
	}
	_, err := a.message(ctx, http.MethodPost, "/api/transaction", req)
	return err
}

func (a *API) ListTransactions(ctx context.Context, email string) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := a.do(ctx, http.MethodGet, "/api/transactions/"+url.PathEscape(email), nil, &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

func (a *API) UpdateTransaction(ctx context.Context, id string, upd TransactionUpdate) error {
	_, err := a.message(ctx, http.MethodPut, "/api/transaction/"+url.PathEscape(id), upd)
	return err
}

func (a *API) DeleteTransaction(ctx context.Context, id string) error {
	_, err := a.message(ctx, http.MethodDelete, "/api/transaction/"+url.PathEscape(id), nil)
	return err
}

// GetUser returns nil, nil when the server knows no such user.
func (a *API) GetUser(ctx context.Context, email string) (*core.User, error) {
	var u *core.User
	if err := a.do(ctx, http.MethodGet, "/api/user/"+url.PathEscape(email), nil, &u); err != nil {
		return nil, err
	}
	return u, nil
}

// RegisterUser returns the server acknowledgment, either "User Registered"
// or "User already exists".
func (a *API) RegisterUser(ctx context.Context, name, email string) (string, error) {
	return a.message(ctx, http.MethodPost, "/api/user", core.User{Name: name, Email: email})
}

func (a *API) message(ctx context.Context, method, path string, body any) (string, error) {
	var resp messageResponse
	if err := a.do(ctx, method, path, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var m messageResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &m) == nil && m.Error != "" {
			apiErr.Message = m.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
