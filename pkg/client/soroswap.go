// Package client implements the Soroswap aggregator API: exact-input
// quoting, unsigned transaction construction, and submission.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"levsek-swap/pkg/token"
	"levsek-swap/pkg/zapper"
)

const (
	// slippageBps is the fixed slippage tolerance requested on every quote.
	slippageBps = 500

	// protocolFilter restricts quotes to a single liquidity protocol so
	// consecutive quotes stay comparable.
	protocolFilter = "soroswap"
)

// Soroswap is the HTTP client for the Soroswap aggregator API.
type Soroswap struct {
	baseURL string
	apiKey  string
	network string
	http    *http.Client
}

// Option configures a Soroswap client.
type Option func(*Soroswap)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *Soroswap) {
		s.http = httpClient
	}
}

// New creates a Soroswap client for the given network ("testnet" or
// "mainnet").
func New(baseURL, apiKey, network string, opts ...Option) *Soroswap {
	s := &Soroswap{
		baseURL: baseURL,
		apiKey:  apiKey,
		network: network,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type quoteRequest struct {
	AssetIn     string   `json:"assetIn"`
	AssetOut    string   `json:"assetOut"`
	Amount      string   `json:"amount"`
	TradeType   string   `json:"tradeType"`
	Protocols   []string `json:"protocols"`
	SlippageBps int      `json:"slippageBps"`
}

type quoteResponse struct {
	AssetIn        string `json:"assetIn"`
	AssetOut       string `json:"assetOut"`
	AmountIn       string `json:"amountIn"`
	AmountOut      string `json:"amountOut"`
	PriceImpactPct string `json:"priceImpactPct"`
	Platform       string `json:"platform"`
}

type buildRequest struct {
	Quote json.RawMessage `json:"quote"`
	From  string          `json:"from"`
}

type buildResponse struct {
	XDR string `json:"xdr"`
}

type sendRequest struct {
	XDR string `json:"xdr"`
}

type sendResponse struct {
	Hash string `json:"hash"`
}

// Quote requests an exact-input quote for swapping amountIn atomic units of
// tokenIn into tokenOut. The venue's reported output and price impact are
// returned verbatim. Equal tokens are a caller error, never quoted 1:1.
func (s *Soroswap) Quote(ctx context.Context, tokenIn, tokenOut token.Token, amountIn int64) (zapper.Quote, error) {
	if tokenIn.Address == tokenOut.Address {
		return zapper.Quote{}, fmt.Errorf("%w: %s", zapper.ErrInvalidPair, tokenIn.Symbol)
	}
	if amountIn <= 0 {
		return zapper.Quote{}, fmt.Errorf("%w: input amount must be positive", zapper.ErrQuoteUnavailable)
	}

	req := quoteRequest{
		AssetIn:     tokenIn.Address,
		AssetOut:    tokenOut.Address,
		Amount:      strconv.FormatInt(amountIn, 10),
		TradeType:   "EXACT_IN",
		Protocols:   []string{protocolFilter},
		SlippageBps: slippageBps,
	}

	raw, err := s.post(ctx, "/quote", req)
	if err != nil {
		return zapper.Quote{}, fmt.Errorf("%w: %v", zapper.ErrQuoteUnavailable, err)
	}

	var resp quoteResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return zapper.Quote{}, fmt.Errorf("%w: failed to decode quote: %v", zapper.ErrQuoteUnavailable, err)
	}

	in, err := strconv.ParseInt(resp.AmountIn, 10, 64)
	if err != nil {
		return zapper.Quote{}, fmt.Errorf("%w: bad amountIn %q", zapper.ErrQuoteUnavailable, resp.AmountIn)
	}
	out, err := strconv.ParseInt(resp.AmountOut, 10, 64)
	if err != nil {
		return zapper.Quote{}, fmt.Errorf("%w: bad amountOut %q", zapper.ErrQuoteUnavailable, resp.AmountOut)
	}

	return zapper.Quote{
		TokenIn:        tokenIn,
		TokenOut:       tokenOut,
		AmountIn:       in,
		AmountOut:      out,
		PriceImpactPct: resp.PriceImpactPct,
		Platform:       resp.Platform,
		Raw:            raw,
	}, nil
}

// Build asks the venue to construct an unsigned transaction envelope for a
// previously obtained quote, to be signed by the from account.
func (s *Soroswap) Build(ctx context.Context, quote zapper.Quote, from string) (string, error) {
	raw, err := s.post(ctx, "/quote/build", buildRequest{Quote: quote.Raw, From: from})
	if err != nil {
		return "", fmt.Errorf("%w: %v", zapper.ErrBuildFailed, err)
	}

	var resp buildResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to decode build response: %v", zapper.ErrBuildFailed, err)
	}
	if resp.XDR == "" {
		return "", fmt.Errorf("%w: empty transaction envelope", zapper.ErrBuildFailed)
	}

	return resp.XDR, nil
}

// Submit sends a signed transaction envelope to the network through the
// venue and returns the transaction hash.
func (s *Soroswap) Submit(ctx context.Context, signedXDR string) (string, error) {
	raw, err := s.post(ctx, "/send", sendRequest{XDR: signedXDR})
	if err != nil {
		return "", fmt.Errorf("%w: %v", zapper.ErrSubmissionRejected, err)
	}

	var resp sendResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to decode send response: %v", zapper.ErrSubmissionRejected, err)
	}
	if resp.Hash == "" {
		return "", fmt.Errorf("%w: no transaction hash returned", zapper.ErrSubmissionRejected)
	}

	return resp.Hash, nil
}

func (s *Soroswap) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s%s?network=%s", s.baseURL, path, s.network)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp.StatusCode, raw)
	}

	return raw, nil
}

// apiError extracts the venue's error message from a failed response body.
func apiError(status int, body []byte) error {
	var errorResp map[string]interface{}
	if err := json.Unmarshal(body, &errorResp); err == nil {
		if message, ok := errorResp["message"].(string); ok {
			return fmt.Errorf("API error (status %d): %s", status, message)
		}
		if errs, ok := errorResp["errors"]; ok {
			return fmt.Errorf("API error (status %d): %v", status, errs)
		}
	}
	if len(body) > 0 {
		return fmt.Errorf("API error (status %d): %s", status, string(body))
	}
	return fmt.Errorf("API returned status code %d", status)
}
