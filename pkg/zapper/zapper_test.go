package zapper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"levsek-swap/pkg/chain"
	"levsek-swap/pkg/token"
)

type pipelineFixture struct {
	venue     *fakeVenue
	chain     *fakeChain
	signer    *fakeSigner
	registrar *fakeRegistrar
	states    []State
	zapper    *Zapper
}

func newPipelineFixture(t *testing.T, venue *fakeVenue, chainClient *fakeChain, registrar *fakeRegistrar) *pipelineFixture {
	t.Helper()
	f := &pipelineFixture{
		venue:     venue,
		chain:     chainClient,
		signer:    &fakeSigner{address: "GPIPELINETEST"},
		registrar: registrar,
	}
	f.zapper = New(venue, chainClient, registrar, newFakeSignerFactory(f.signer),
		WithStateHook(func(s State) { f.states = append(f.states, s) }))
	f.zapper.executor.pollInterval = time.Millisecond
	return f
}

func TestExecuteSwapAndPayHappyPath(t *testing.T) {
	venue := &fakeVenue{rate: linearRate(10)}
	chainClient := &fakeChain{states: []chain.TxState{chain.TxPending, chain.TxConfirmed}}
	registrar := &fakeRegistrar{}
	f := newPipelineFixture(t, venue, chainClient, registrar)

	target := int64(500_000_000) // pay off 50 USDC of debt with XLM
	res, err := f.zapper.ExecuteSwapAndPay(context.Background(), testSecret, "debt-42", token.Default().Native(), target, "rent")
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.False(t, res.Ambiguous)
	assert.NotEmpty(t, res.AttemptID)
	assert.Equal(t, []State{StateQuoting, StateSwapping, StateConfirming, StateSettling, StateDone}, f.states)

	// Two solver quotes plus the executor's re-quote at the exact input.
	require.Len(t, venue.quoteCalls, 3)
	assert.Equal(t, int64(5_000_000_000), venue.quoteCalls[0])
	assert.Equal(t, int64(5_250_000_000), venue.quoteCalls[1])
	assert.Equal(t, int64(5_250_000_000), venue.quoteCalls[2])
	assert.Equal(t, 1, venue.buildCount)
	assert.Equal(t, 1, venue.submitCount)
	assert.Equal(t, 1, f.signer.signCount)

	require.NotNil(t, res.Quote)
	assert.False(t, res.Quote.ShortOfTarget())
	require.NotNil(t, res.Swap)
	assert.Equal(t, StatusConfirmed, res.Swap.ConfirmationStatus)

	require.Len(t, registrar.payments, 1)
	p := registrar.payments[0]
	assert.Equal(t, "debt-42", registrar.debtIDs[0])
	assert.Equal(t, "52.5", p.Amount, "the registered amount is the swap's actual output")
	assert.Equal(t, PaymentTypeSwap, p.PaymentType)
	assert.Equal(t, "rent", p.Notes)
	assert.Equal(t, "txhash1", p.SwapTransactionHash)
	assert.Equal(t, "XLM", p.SourceToken)
	assert.Equal(t, "525", p.SourceAmount)
	assert.NotContains(t, p.Notes+p.Amount+p.SourceAmount, testSecret)

	require.NotNil(t, res.Settlement)
	assert.Equal(t, "debt-42", res.Settlement.DebtID)
	assert.Contains(t, res.Summary, "debt-42")
}

func TestExecuteSwapAndPaySettlementToken(t *testing.T) {
	venue := &fakeVenue{rate: linearRate(10)}
	registrar := &fakeRegistrar{}
	f := newPipelineFixture(t, venue, &fakeChain{}, registrar)

	res, err := f.zapper.ExecuteSwapAndPay(context.Background(), testSecret, "debt-42", token.Default().Settlement(), 500_000_000, "")
	require.ErrorIs(t, err, ErrInvalidPair)

	assert.Equal(t, StateFailed, res.State)
	assert.False(t, res.Ambiguous)
	assert.Empty(t, venue.quoteCalls, "paying in the settlement token must not touch the venue")
	assert.Zero(t, venue.submitCount)
	assert.Empty(t, registrar.payments)
}

func TestExecuteSwapAndPayConfirmationTimeout(t *testing.T) {
	venue := &fakeVenue{rate: linearRate(10)}
	chainClient := &fakeChain{states: []chain.TxState{chain.TxPending}}
	registrar := &fakeRegistrar{}
	f := newPipelineFixture(t, venue, chainClient, registrar)

	res, err := f.zapper.ExecuteSwapAndPay(context.Background(), testSecret, "debt-42", token.Default().Native(), 500_000_000, "")
	require.ErrorIs(t, err, ErrConfirmationTimeout)

	assert.Equal(t, StateFailed, res.State)
	assert.True(t, res.Ambiguous, "a timed out swap may still confirm; the outcome is not a plain failure")
	require.NotNil(t, res.Swap)
	assert.Equal(t, StatusTimedOut, res.Swap.ConfirmationStatus)
	assert.Equal(t, "txhash1", res.Swap.TransactionHash)
	assert.Empty(t, registrar.payments, "no settlement may be registered without a confirmed swap")
	assert.Equal(t, 1, venue.submitCount, "the swap is never re-submitted after a timeout")
}

func TestExecuteSwapAndPayBuildFailure(t *testing.T) {
	venue := &fakeVenue{rate: linearRate(10), buildErr: ErrBuildFailed}
	registrar := &fakeRegistrar{}
	f := newPipelineFixture(t, venue, &fakeChain{}, registrar)

	res, err := f.zapper.ExecuteSwapAndPay(context.Background(), testSecret, "debt-42", token.Default().Native(), 500_000_000, "")
	require.ErrorIs(t, err, ErrBuildFailed)

	assert.Equal(t, StateFailed, res.State)
	assert.False(t, res.Ambiguous, "no funds moved, so the failure is unambiguous")
	assert.Nil(t, res.Swap)
	assert.Zero(t, f.signer.signCount)
	assert.Zero(t, venue.submitCount)
	assert.Empty(t, registrar.payments)
}

func TestExecuteSwapAndPaySettlementRegistrationFails(t *testing.T) {
	venue := &fakeVenue{rate: linearRate(10)}
	chainClient := &fakeChain{states: []chain.TxState{chain.TxConfirmed}}
	registrar := &fakeRegistrar{err: assert.AnError}
	f := newPipelineFixture(t, venue, chainClient, registrar)

	res, err := f.zapper.ExecuteSwapAndPay(context.Background(), testSecret, "debt-42", token.Default().Native(), 500_000_000, "")
	require.ErrorIs(t, err, ErrSettlementRegistrationFailed)

	assert.Equal(t, StateFailed, res.State)
	assert.True(t, res.Ambiguous, "the swap confirmed but the ledger was not updated")
	require.NotNil(t, res.Swap)
	assert.Equal(t, StatusConfirmed, res.Swap.ConfirmationStatus)
	assert.Len(t, registrar.payments, 1, "registration is attempted exactly once, never retried")
	assert.Nil(t, res.Settlement)
}

func TestExecuteSwapAndPayResolvesWithWiderBuffer(t *testing.T) {
	// The first solve comes in short because the pool prices the final trade
	// worse than the seed sampled; the pipeline re-solves once with a doubled
	// buffer and the wider input clears the target.
	venue := &fakeVenue{rate: func(call int, amountIn int64) int64 {
		if call == 0 {
			return amountIn / 10
		}
		return amountIn / 11
	}}
	chainClient := &fakeChain{states: []chain.TxState{chain.TxConfirmed}}
	registrar := &fakeRegistrar{}
	f := newPipelineFixture(t, venue, chainClient, registrar)

	res, err := f.zapper.ExecuteSwapAndPay(context.Background(), testSecret, "debt-42", token.Default().Native(), 500_000_000, "")
	require.NoError(t, err)

	// Two solves of two quotes each, then the executor's re-quote.
	require.Len(t, venue.quoteCalls, 5)
	assert.Greater(t, venue.quoteCalls[3], venue.quoteCalls[1], "the re-solve carries the doubled buffer")

	require.NotNil(t, res.Quote)
	assert.False(t, res.Quote.ShortOfTarget())
	assert.GreaterOrEqual(t, res.Quote.TokenOutAmount, int64(500_000_000))
	require.Len(t, registrar.payments, 1)
	assert.Equal(t, "55", registrar.payments[0].Amount)
}

func TestExecuteSwapAndPayQuoteStaysShort(t *testing.T) {
	// Even the doubled buffer cannot clear the target on this curve, so the
	// attempt fails before any funds move.
	venue := &fakeVenue{rate: func(call int, amountIn int64) int64 {
		if call%2 == 0 {
			return amountIn / 10
		}
		return amountIn / 20
	}}
	registrar := &fakeRegistrar{}
	f := newPipelineFixture(t, venue, &fakeChain{}, registrar)

	res, err := f.zapper.ExecuteSwapAndPay(context.Background(), testSecret, "debt-42", token.Default().Native(), 500_000_000, "")
	require.ErrorIs(t, err, ErrQuoteUnavailable)

	assert.Equal(t, StateFailed, res.State)
	assert.False(t, res.Ambiguous)
	assert.Len(t, venue.quoteCalls, 4, "two solves, no execution")
	assert.Zero(t, venue.buildCount)
	assert.Zero(t, venue.submitCount)
	assert.Empty(t, registrar.payments)
}

func TestExecuteSwapAndPayInvalidCredential(t *testing.T) {
	venue := &fakeVenue{rate: linearRate(10)}
	registrar := &fakeRegistrar{}
	f := newPipelineFixture(t, venue, &fakeChain{}, registrar)

	res, err := f.zapper.ExecuteSwapAndPay(context.Background(), "garbage", "debt-42", token.Default().Native(), 500_000_000, "")
	require.ErrorIs(t, err, ErrInvalidCredential)

	assert.Equal(t, StateFailed, res.State)
	assert.Len(t, venue.quoteCalls, 2, "the credential is only decoded at execution time")
	assert.Zero(t, venue.buildCount)
	assert.Zero(t, venue.submitCount)
	assert.Empty(t, registrar.payments)
}

func TestGetPaymentTokens(t *testing.T) {
	f := newPipelineFixture(t, &fakeVenue{rate: linearRate(10)}, &fakeChain{}, &fakeRegistrar{})

	tokens := f.zapper.GetPaymentTokens()
	require.NotEmpty(t, tokens)
	assert.Equal(t, "XLM", tokens[0].Symbol, "the native token leads the list")
}

func TestGetPaymentQuoteAndEstimate(t *testing.T) {
	venue := &fakeVenue{rate: linearRate(10)}
	f := newPipelineFixture(t, venue, &fakeChain{}, &fakeRegistrar{})

	q, err := f.zapper.GetPaymentQuote(context.Background(), token.Default().Native(), 500_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(5_250_000_000), q.TokenInAmount)

	est := f.zapper.EstimatePaymentCost(q)
	assert.Equal(t, q.TokenInAmount, est.TokenInAmount)
	assert.Greater(t, est.TotalCost, q.TokenInAmount)
}
