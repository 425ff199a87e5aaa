// Package chain talks to the Stellar network: transaction status lookups
// through Horizon and local credential handling for signing.
package chain

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stellar/go/clients/horizonclient"
)

// TxState is the observed status of a submitted transaction.
type TxState string

const (
	TxPending   TxState = "PENDING"
	TxConfirmed TxState = "CONFIRMED"
	TxFailed    TxState = "FAILED"
)

// Horizon wraps a Horizon client for confirmation polling.
type Horizon struct {
	client *horizonclient.Client
}

// NewHorizon creates a Horizon-backed status client.
func NewHorizon(horizonURL string) *Horizon {
	return NewHorizonWithClient(horizonURL, http.DefaultClient)
}

// NewHorizonWithClient creates a status client with a custom HTTP client.
func NewHorizonWithClient(horizonURL string, httpClient *http.Client) *Horizon {
	return &Horizon{
		client: &horizonclient.Client{HorizonURL: horizonURL, HTTP: httpClient},
	}
}

// GetTransaction returns the current status of a transaction. A transaction
// Horizon has not seen yet is reported as pending, not as an error.
func (h *Horizon) GetTransaction(ctx context.Context, hash string) (TxState, error) {
	if err := ctx.Err(); err != nil {
		return TxPending, err
	}

	tx, err := h.client.TransactionDetail(hash)
	if err != nil {
		var herr *horizonclient.Error
		if errors.As(err, &herr) && herr.Problem.Status == http.StatusNotFound {
			// Not ingested yet; keep polling.
			return TxPending, nil
		}
		return TxPending, fmt.Errorf("failed to get transaction %s: %w", hash, err)
	}

	if tx.Successful {
		return TxConfirmed, nil
	}
	return TxFailed, nil
}
