package zapper

import (
	"context"
	"encoding/json"
	"fmt"

	"levsek-swap/pkg/chain"
	"levsek-swap/pkg/ledger"
	"levsek-swap/pkg/token"
)

// fakeVenue is a scripted venue. rate maps (quote call index, amountIn) to
// amountOut, which lets tests model both linear and nonlinear pools.
type fakeVenue struct {
	rate      func(call int, amountIn int64) int64
	quoteErr  error
	buildErr  error
	submitErr error
	hash      string

	quoteCalls  []int64
	buildCount  int
	builtFrom   []string
	submitCount int
	submittedXDR []string
}

func linearRate(divisor int64) func(int, int64) int64 {
	return func(_ int, amountIn int64) int64 {
		return amountIn / divisor
	}
}

func (v *fakeVenue) Quote(_ context.Context, tokenIn, tokenOut token.Token, amountIn int64) (Quote, error) {
	if v.quoteErr != nil {
		return Quote{}, v.quoteErr
	}
	call := len(v.quoteCalls)
	v.quoteCalls = append(v.quoteCalls, amountIn)
	return Quote{
		TokenIn:        tokenIn,
		TokenOut:       tokenOut,
		AmountIn:       amountIn,
		AmountOut:      v.rate(call, amountIn),
		PriceImpactPct: "0.5",
		Platform:       "soroswap",
		Raw:            json.RawMessage(`{}`),
	}, nil
}

func (v *fakeVenue) Build(_ context.Context, _ Quote, from string) (string, error) {
	v.buildCount++
	v.builtFrom = append(v.builtFrom, from)
	if v.buildErr != nil {
		return "", v.buildErr
	}
	return "UNSIGNED-XDR", nil
}

func (v *fakeVenue) Submit(_ context.Context, signedXDR string) (string, error) {
	v.submitCount++
	v.submittedXDR = append(v.submittedXDR, signedXDR)
	if v.submitErr != nil {
		return "", v.submitErr
	}
	if v.hash == "" {
		return "txhash1", nil
	}
	return v.hash, nil
}

// fakeChain replays a status sequence, repeating the last entry forever.
type fakeChain struct {
	states []chain.TxState
	calls  int
}

func (c *fakeChain) GetTransaction(_ context.Context, _ string) (chain.TxState, error) {
	idx := c.calls
	c.calls++
	if idx >= len(c.states) {
		idx = len(c.states) - 1
	}
	if idx < 0 {
		return chain.TxPending, nil
	}
	return c.states[idx], nil
}

// fakeSigner signs by tagging the envelope; it records usage so tests can
// assert nothing was signed on early failures.
type fakeSigner struct {
	address   string
	signCount int
	signErr   error
}

func (s *fakeSigner) Address() string {
	return s.address
}

func (s *fakeSigner) Sign(envelopeXDR string) (string, error) {
	s.signCount++
	if s.signErr != nil {
		return "", s.signErr
	}
	return "SIGNED:" + envelopeXDR, nil
}

func newFakeSignerFactory(signer *fakeSigner) SignerFactory {
	return func(secret string) (Signer, error) {
		if len(secret) != 56 || secret[0] != 'S' {
			return nil, fmt.Errorf("malformed secret key")
		}
		return signer, nil
	}
}

const testSecret = "SXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"

// fakeRegistrar records registrations.
type fakeRegistrar struct {
	err      error
	debtIDs  []string
	payments []ledger.Payment
}

func (r *fakeRegistrar) RegisterPayment(_ context.Context, debtID string, p ledger.Payment) (ledger.SettlementRecord, error) {
	r.debtIDs = append(r.debtIDs, debtID)
	r.payments = append(r.payments, p)
	if r.err != nil {
		return ledger.SettlementRecord{}, r.err
	}
	return ledger.SettlementRecord{
		ID:     fmt.Sprintf("pay-%d", len(r.payments)),
		DebtID: debtID,
		Amount: p.Amount,
		Status: "pending",
	}, nil
}
