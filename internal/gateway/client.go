package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// SplitRule mirrors the provider's income split configuration: a portion
// of each payment routed to a sub-account.
type SplitRule struct {
	SubAccountCode string `json:"subAccountCode"`
	FeePercentage  int    `json:"feePercentage"`
	SplitAmount    int64  `json:"splitAmount"`
	FeeBearer      bool   `json:"feeBearer"`
}

// ParseSplitRules decodes the JSON split configuration carried in the
// environment.  An empty string yields no rules.
func ParseSplitRules(raw string) ([]SplitRule, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var rules []SplitRule
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, fmt.Errorf("parse split config: %w", err)
	}
	return rules, nil
}

// ClientConfig is the injected provider configuration.  Nothing here is
// hard-coded in the workflow; main builds this from the environment.
type ClientConfig struct {
	BaseURL      string
	APIKey       string
	ContractCode string
	Description  string
	SplitRules   []SplitRule
}

// Client talks to the provider's merchant API over HTTP and keeps a
// registry of sessions awaiting their notification callback.  The
// callback handler resolves sessions through Resolve.
type Client struct {
	cfg  ClientConfig
	http *http.Client

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewClient returns a provider client.  The configuration is validated
// lazily: Initialize reports ErrUnavailable when the key or URL is
// missing, mirroring the "widget script not loaded" precondition.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: 10 * time.Second},
		sessions: make(map[string]*Session),
	}
}

type initTransactionRequest struct {
	Amount             int64       `json:"amount"`
	CurrencyCode       string      `json:"currencyCode"`
	PaymentReference   string      `json:"paymentReference"`
	CustomerFullName   string      `json:"customerFullName"`
	CustomerEmail      string      `json:"customerEmail"`
	ContractCode       string      `json:"contractCode"`
	PaymentDescription string      `json:"paymentDescription"`
	IncomeSplitConfig  []SplitRule `json:"incomeSplitConfig,omitempty"`
}

type initTransactionResponse struct {
	RequestSuccessful bool   `json:"requestSuccessful"`
	ResponseMessage   string `json:"responseMessage"`
	ResponseBody      struct {
		TransactionReference string `json:"transactionReference"`
		CheckoutURL          string `json:"checkoutUrl"`
	} `json:"responseBody"`
}

// Initialize opens a checkout session at the provider and registers it
// for callback resolution.  It returns as soon as the provider hands back
// a checkout URL; the payment outcome arrives later on the session's
// outcome channel when the provider notifies us.
func (c *Client) Initialize(ctx context.Context, req InitRequest) (*Session, error) {
	if c.cfg.BaseURL == "" || c.cfg.APIKey == "" {
		return nil, ErrUnavailable
	}

	payload := initTransactionRequest{
		Amount:             req.AmountMinor,
		CurrencyCode:       req.Currency,
		PaymentReference:   req.Reference,
		CustomerFullName:   req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		ContractCode:       c.cfg.ContractCode,
		PaymentDescription: c.cfg.Description,
		IncomeSplitConfig:  c.cfg.SplitRules,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gateway: marshal init request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/api/v1/merchant/transactions/init-transaction",
		bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway: build init request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: provider returned %s", ErrUnavailable, resp.Status)
	}
	var decoded initTransactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode init response: %v", ErrUnavailable, err)
	}
	if !decoded.RequestSuccessful {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, decoded.ResponseMessage)
	}

	session := NewSession(req.Reference, decoded.ResponseBody.CheckoutURL)
	c.mu.Lock()
	c.sessions[req.Reference] = session
	c.mu.Unlock()
	return session, nil
}

// Resolve delivers a provider notification to the session awaiting it and
// removes the session from the registry.  It reports false for an
// unknown reference, which the callback handler turns into a 404 so the
// provider retries against the right instance.
func (c *Client) Resolve(reference string, completed bool, providerRef string) bool {
	c.mu.Lock()
	session, ok := c.sessions[reference]
	if ok {
		delete(c.sessions, reference)
	}
	c.mu.Unlock()
	if !ok {
		log.Printf("gateway: notification for unknown reference %q", reference)
		return false
	}
	if completed {
		session.Complete(providerRef)
	} else {
		session.Close(providerRef)
	}
	return true
}
