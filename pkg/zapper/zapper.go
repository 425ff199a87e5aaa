// Package zapper implements the swap-and-pay pipeline: solve the input
// amount for an exact settlement-token output, execute the swap, and
// register the received amount against a debt once the swap is confirmed.
// Settlement is never registered before confirmation; that ordering is the
// core correctness property of the whole subsystem.
package zapper

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"levsek-swap/pkg/amount"
	"levsek-swap/pkg/ledger"
	"levsek-swap/pkg/token"
)

// PaymentTypeSwap is the ledger payment type for swap-settled payments.
const PaymentTypeSwap = "crypto-swap"

// Zapper orchestrates one swap-and-pay attempt end to end. An attempt is
// strictly sequential; callers must not start a second attempt for the same
// debt while one is in flight.
type Zapper struct {
	registry  *token.Registry
	solver    *Solver
	executor  *Executor
	registrar Registrar

	onState func(State)
}

// Option configures a Zapper.
type Option func(*Zapper)

// WithStateHook registers a callback fired on every state transition, for
// UI progress reporting.
func WithStateHook(fn func(State)) Option {
	return func(z *Zapper) {
		z.onState = fn
	}
}

// WithRegistry overrides the default token registry.
func WithRegistry(r *token.Registry) Option {
	return func(z *Zapper) {
		z.registry = r
	}
}

// New wires the pipeline over a venue, a chain status client, a settlement
// registrar, and a signer factory for decoding the user's credential.
func New(venue Venue, chainClient Chain, registrar Registrar, newSigner SignerFactory, opts ...Option) *Zapper {
	z := &Zapper{
		registry:  token.Default(),
		solver:    NewSolver(venue),
		executor:  NewExecutor(venue, chainClient, newSigner),
		registrar: registrar,
	}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

// GetPaymentTokens lists the tokens a debt can be paid with.
func (z *Zapper) GetPaymentTokens() []token.Token {
	return z.registry.List()
}

// GetPaymentQuote solves the tokenIn amount needed to cover targetAmount
// atomic units of the settlement token.
func (z *Zapper) GetPaymentQuote(ctx context.Context, tokenIn token.Token, targetAmount int64) (PaymentQuote, error) {
	return z.solver.SolveInputForExactOutput(ctx, tokenIn, z.registry.Settlement(), targetAmount)
}

// EstimatePaymentCost derives the pre-commit cost breakdown for a quote.
func (z *Zapper) EstimatePaymentCost(q PaymentQuote) CostEstimate {
	return EstimateCost(q)
}

// ExecuteSwapAndPay runs the full pipeline for one debt payment. The secret
// key lives only on this call's stack; no component retains it past the
// attempt. The returned result is non-nil even on failure so callers can
// inspect how far the attempt got and whether the outcome is ambiguous.
func (z *Zapper) ExecuteSwapAndPay(ctx context.Context, secret, debtID string, tokenIn token.Token, targetAmount int64, notes string) (*OrchestrationResult, error) {
	result := &OrchestrationResult{
		AttemptID: uuid.NewString(),
		State:     StateIdle,
	}

	tokenOut := z.registry.Settlement()
	if tokenIn.Address == tokenOut.Address {
		return result, z.fail(result, fmt.Errorf("%w: debt is denominated in %s, use direct payment instead", ErrInvalidPair, tokenOut.Symbol))
	}

	z.transition(result, StateQuoting)
	quote, err := z.solver.solve(ctx, tokenIn, tokenOut, targetAmount, defaultBufferPct)
	if err != nil {
		return result, z.fail(result, err)
	}
	if quote.ShortOfTarget() {
		// The two-pass approximation came in under the target; try once
		// more with twice the safety buffer before giving up.
		quote, err = z.solver.solve(ctx, tokenIn, tokenOut, targetAmount, 2*defaultBufferPct)
		if err != nil {
			return result, z.fail(result, err)
		}
		if quote.ShortOfTarget() {
			return result, z.fail(result, fmt.Errorf("%w: solved output %s falls short of target %s",
				ErrQuoteUnavailable, amount.Format(quote.TokenOutAmount), amount.Format(targetAmount)))
		}
	}
	result.Quote = &quote

	z.transition(result, StateSwapping)
	swap, err := z.executor.Execute(ctx, secret, tokenIn, tokenOut, quote.TokenInAmount, func(string) {
		z.transition(result, StateConfirming)
	})
	if swap.TransactionHash != "" {
		result.Swap = &swap
	}
	if err != nil {
		if swap.ConfirmationStatus == StatusTimedOut {
			// Funds may have moved; this is not a "funds did not move"
			// failure and must go to a human.
			result.Ambiguous = true
		}
		return result, z.fail(result, err)
	}

	z.transition(result, StateSettling)
	payment := ledger.Payment{
		// The amount registered is the swap's actual output, never the
		// pre-swap estimate.
		Amount:              amount.Format(swap.AmountOut),
		PaymentType:         PaymentTypeSwap,
		Notes:               notes,
		SwapTransactionHash: swap.TransactionHash,
		SourceToken:         tokenIn.Symbol,
		SourceAmount:        amount.Format(swap.AmountIn),
	}
	record, err := z.registrar.RegisterPayment(ctx, debtID, payment)
	if err != nil {
		// Swap confirmed but the ledger call failed: a reportable
		// inconsistency, not something to retry automatically.
		result.Ambiguous = true
		return result, z.fail(result, fmt.Errorf("%w: %v", ErrSettlementRegistrationFailed, err))
	}
	result.Settlement = &record

	z.transition(result, StateDone)
	result.Summary = fmt.Sprintf("swapped %s %s for %s %s and registered payment %s against debt %s",
		amount.Format(swap.AmountIn), tokenIn.Symbol,
		amount.Format(swap.AmountOut), tokenOut.Symbol,
		record.ID, debtID)

	return result, nil
}

func (z *Zapper) transition(result *OrchestrationResult, s State) {
	result.State = s
	if z.onState != nil {
		z.onState(s)
	}
}

func (z *Zapper) fail(result *OrchestrationResult, err error) error {
	z.transition(result, StateFailed)
	return err
}
