package zapper

import (
	"context"
	"fmt"
	"time"

	"levsek-swap/pkg/chain"
	"levsek-swap/pkg/token"
)

const (
	// DefaultPollInterval is the spacing between confirmation checks.
	DefaultPollInterval = time.Second

	// DefaultMaxPollAttempts bounds the confirmation wait (~30 seconds).
	// Exhausting it means we stop waiting, not that the swap failed.
	DefaultMaxPollAttempts = 30
)

// SignerFactory decodes a secret key into a Signer for one attempt.
type SignerFactory func(secret string) (Signer, error)

// Executor signs and submits a swap, then polls the chain for confirmation.
type Executor struct {
	venue     Venue
	chain     Chain
	newSigner SignerFactory

	pollInterval    time.Duration
	maxPollAttempts int
}

// NewExecutor creates an executor with the default polling budget.
func NewExecutor(venue Venue, chainClient Chain, newSigner SignerFactory) *Executor {
	return &Executor{
		venue:           venue,
		chain:           chainClient,
		newSigner:       newSigner,
		pollInterval:    DefaultPollInterval,
		maxPollAttempts: DefaultMaxPollAttempts,
	}
}

// Execute runs one swap: derive the signing identity, re-quote at the exact
// input (a caller-supplied quote is never trusted, the price may have
// moved), build, sign locally, submit, and poll for confirmation. The
// submitted hook, if non-nil, fires once the transaction is on the wire,
// after which the operation can no longer be abandoned.
func (e *Executor) Execute(ctx context.Context, secret string, tokenIn, tokenOut token.Token, amountIn int64, submitted func(hash string)) (SwapResult, error) {
	signer, err := e.newSigner(secret)
	if err != nil {
		return SwapResult{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	quote, err := e.venue.Quote(ctx, tokenIn, tokenOut, amountIn)
	if err != nil {
		return SwapResult{}, err
	}

	envelope, err := e.venue.Build(ctx, quote, signer.Address())
	if err != nil {
		return SwapResult{}, err
	}

	signedEnvelope, err := signer.Sign(envelope)
	if err != nil {
		return SwapResult{}, fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	hash, err := e.venue.Submit(ctx, signedEnvelope)
	if err != nil {
		return SwapResult{}, err
	}

	result := SwapResult{
		TransactionHash:    hash,
		ConfirmationStatus: StatusPending,
		AmountIn:           quote.AmountIn,
		AmountOut:          quote.AmountOut,
		PriceImpactPct:     quote.PriceImpactPct,
	}

	if submitted != nil {
		submitted(hash)
	}

	return e.awaitConfirmation(ctx, result)
}

// awaitConfirmation polls transaction status until a terminal state or the
// polling budget runs out. The transaction itself cannot be cancelled once
// submitted: context cancellation here only stops the waiting, so it is
// reported the same way as a timeout, with the outcome left ambiguous.
func (e *Executor) awaitConfirmation(ctx context.Context, result SwapResult) (SwapResult, error) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < e.maxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			result.ConfirmationStatus = StatusTimedOut
			return result, fmt.Errorf("%w: stopped waiting for %s (the swap may still confirm)", ErrConfirmationTimeout, result.TransactionHash)
		case <-ticker.C:
		}

		state, err := e.chain.GetTransaction(ctx, result.TransactionHash)
		if err != nil {
			// Transient lookup failure; retry on the next tick.
			continue
		}

		switch state {
		case chain.TxConfirmed:
			result.ConfirmationStatus = StatusConfirmed
			return result, nil
		case chain.TxFailed:
			result.ConfirmationStatus = StatusFailed
			return result, fmt.Errorf("%w: transaction %s failed on chain", ErrSubmissionRejected, result.TransactionHash)
		}
	}

	result.ConfirmationStatus = StatusTimedOut
	return result, fmt.Errorf("%w: no terminal status for %s after %d attempts (the swap may still confirm)",
		ErrConfirmationTimeout, result.TransactionHash, e.maxPollAttempts)
}
