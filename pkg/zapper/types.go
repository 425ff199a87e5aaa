package zapper

import (
	"context"
	"encoding/json"

	"levsek-swap/pkg/chain"
	"levsek-swap/pkg/ledger"
	"levsek-swap/pkg/token"
)

// Quote is one point-in-time exchange observation for swapping a fixed input
// amount of TokenIn into TokenOut. Amounts are atomic units. For a fixed pool
// state AmountOut is non-decreasing in AmountIn, which the solver relies on.
type Quote struct {
	TokenIn        token.Token
	TokenOut       token.Token
	AmountIn       int64
	AmountOut      int64
	PriceImpactPct string
	Platform       string

	// Raw is the venue's quote document, passed back verbatim when building
	// the transaction.
	Raw json.RawMessage
}

// PaymentQuote is the solved answer to "how much of tokenIn buys at least
// the target amount of the settlement token". Created fresh per request and
// superseded by the next one; never mutated.
type PaymentQuote struct {
	TokenInAmount  int64
	TokenOutAmount int64
	TargetAmount   int64
	PriceImpactPct string
	TokenInSymbol  string
	TokenOutSymbol string
}

// ShortOfTarget reports whether the solved output fell below the target.
// The two-pass solver samples its price ratio from a larger trade than the
// final one, so this can happen on strongly nonlinear pool curves; callers
// must check before committing.
func (q PaymentQuote) ShortOfTarget() bool {
	return q.TokenOutAmount < q.TargetAmount
}

// CostEstimate is the user-facing cost breakdown shown before committing.
// It is never the authoritative amount debited; that is always the executed
// swap's actual AmountIn.
type CostEstimate struct {
	TokenInAmount       int64
	EstimatedNetworkFee int64
	EstimatedSwapFee    int64
	TotalCost           int64
}

// ConfirmationStatus is the terminal disposition of a submitted swap.
type ConfirmationStatus string

const (
	StatusPending   ConfirmationStatus = "PENDING"
	StatusConfirmed ConfirmationStatus = "CONFIRMED"
	StatusFailed    ConfirmationStatus = "FAILED"
	StatusTimedOut  ConfirmationStatus = "TIMED_OUT"
)

// SwapResult records a submitted swap. Immutable once the executor returns.
// AmountIn/AmountOut come from the executor's own re-quote, not from any
// caller-supplied estimate.
type SwapResult struct {
	TransactionHash    string
	ConfirmationStatus ConfirmationStatus
	AmountIn           int64
	AmountOut          int64
	PriceImpactPct     string
}

// State tracks one swap-and-pay attempt. States are never re-entered; a
// failed attempt is not resumed, the caller starts fresh with a new quote.
type State string

const (
	StateIdle       State = "IDLE"
	StateQuoting    State = "QUOTING"
	StateSwapping   State = "SWAPPING"
	StateConfirming State = "CONFIRMING"
	StateSettling   State = "SETTLING"
	StateDone       State = "DONE"
	StateFailed     State = "FAILED"
)

// OrchestrationResult is the aggregate outcome of one swap-and-pay attempt.
type OrchestrationResult struct {
	AttemptID  string
	State      State
	Quote      *PaymentQuote
	Swap       *SwapResult
	Settlement *ledger.SettlementRecord

	// Ambiguous marks outcomes where funds may have moved without the
	// attempt completing: a confirmation timeout, or a ledger failure after
	// a confirmed swap. These need a human, never an automatic retry.
	Ambiguous bool

	Summary string
}

// Venue is the swap venue surface the pipeline consumes: exact-input
// quoting, unsigned transaction construction, and submission.
type Venue interface {
	Quote(ctx context.Context, tokenIn, tokenOut token.Token, amountIn int64) (Quote, error)
	Build(ctx context.Context, quote Quote, from string) (string, error)
	Submit(ctx context.Context, signedXDR string) (string, error)
}

// Chain looks up transaction status for confirmation polling.
type Chain interface {
	GetTransaction(ctx context.Context, hash string) (chain.TxState, error)
}

// Registrar registers a settled payment against a debt on the external
// ledger. Implementations perform exactly one attempt per call.
type Registrar interface {
	RegisterPayment(ctx context.Context, debtID string, p ledger.Payment) (ledger.SettlementRecord, error)
}

// Signer holds a decoded credential for the duration of one attempt: it can
// derive its public identity and sign envelopes locally. The credential
// itself never appears in any payload.
type Signer interface {
	Address() string
	Sign(envelopeXDR string) (string, error)
}
