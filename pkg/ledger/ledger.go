// Package ledger is the client for the Levsek debt ledger API. Payments
// registered here enter the merchant's review queue; they do not affect the
// debt balance until approved.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Payment is the registration payload for a swap-settled payment. Amounts
// are decimal strings in token units; provenance fields identify the swap
// that funded the payment for audit.
type Payment struct {
	Amount              string `json:"amount"`
	PaymentType         string `json:"paymentType"`
	Notes               string `json:"notes,omitempty"`
	SwapTransactionHash string `json:"swapTxHash"`
	SourceToken         string `json:"sourceToken"`
	SourceAmount        string `json:"sourceAmount"`
}

// SettlementRecord is the ledger's view of a registered payment.
type SettlementRecord struct {
	ID                  string    `json:"id"`
	DebtID              string    `json:"debtId"`
	Amount              string    `json:"amount"`
	PaymentType         string    `json:"paymentType"`
	Status              string    `json:"status"`
	Notes               string    `json:"notes,omitempty"`
	SwapTransactionHash string    `json:"swapTxHash,omitempty"`
	SourceToken         string    `json:"sourceToken,omitempty"`
	SourceAmount        string    `json:"sourceAmount,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Client talks to the ledger API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// New creates a ledger client authenticated with the merchant session token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterPayment registers a payment against a debt. Exactly one attempt is
// made: a failure here after a confirmed swap must go to a human, since a
// blind retry could register the same payment twice.
func (c *Client) RegisterPayment(ctx context.Context, debtID string, p Payment) (SettlementRecord, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return SettlementRecord{}, fmt.Errorf("failed to encode payment: %w", err)
	}

	url := fmt.Sprintf("%s/api/debts/%s/payments", c.baseURL, debtID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return SettlementRecord{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return SettlementRecord{}, fmt.Errorf("ledger request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return SettlementRecord{}, fmt.Errorf("ledger returned status %d: %s", resp.StatusCode, string(msg))
	}

	var rec SettlementRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return SettlementRecord{}, fmt.Errorf("failed to decode settlement record: %w", err)
	}

	return rec, nil
}
