package zapper

import (
	"context"
	"fmt"
	"math/big"

	"levsek-swap/pkg/token"
)

const (
	// seedMultiplier sizes the speculative first quote used only to sample
	// the current price ratio.
	seedMultiplier = 10

	// defaultBufferPct pads the solved input to absorb slippage and price
	// impact drift between the seed quote and the final one.
	defaultBufferPct = 5
)

// Solver answers "exact output" payment questions with a venue that only
// quotes "exact input". It is a two-pass approximation, not a convergent
// search: a seed quote samples the price ratio, the padded solved input is
// then quoted for real. Because the ratio is sampled from a larger trade
// than the final one, the result can fall short of the target on strongly
// nonlinear pools; callers must check PaymentQuote.ShortOfTarget.
type Solver struct {
	venue Venue
}

// NewSolver creates a solver over the given venue.
func NewSolver(venue Venue) *Solver {
	return &Solver{venue: venue}
}

// SolveInputForExactOutput determines how much tokenIn must be swapped so
// the output meets or exceeds targetOutput atomic units of tokenOut.
func (s *Solver) SolveInputForExactOutput(ctx context.Context, tokenIn, tokenOut token.Token, targetOutput int64) (PaymentQuote, error) {
	return s.solve(ctx, tokenIn, tokenOut, targetOutput, defaultBufferPct)
}

func (s *Solver) solve(ctx context.Context, tokenIn, tokenOut token.Token, targetOutput int64, bufferPct int64) (PaymentQuote, error) {
	if tokenIn.Address == tokenOut.Address {
		return PaymentQuote{}, fmt.Errorf("%w: %s, use direct payment instead", ErrInvalidPair, tokenIn.Symbol)
	}
	if targetOutput <= 0 {
		return PaymentQuote{}, fmt.Errorf("%w: target amount must be positive", ErrQuoteUnavailable)
	}

	// Seed quote at a deliberately oversized input; its only purpose is to
	// sample the current price ratio. The seed input is never used as the
	// final input.
	seedInput := new(big.Int).Mul(big.NewInt(targetOutput), big.NewInt(seedMultiplier))
	if !seedInput.IsInt64() {
		return PaymentQuote{}, fmt.Errorf("%w: target amount too large", ErrQuoteUnavailable)
	}

	seed, err := s.venue.Quote(ctx, tokenIn, tokenOut, seedInput.Int64())
	if err != nil {
		return PaymentQuote{}, fmt.Errorf("seed quote: %w", err)
	}
	if seed.AmountOut <= 0 {
		return PaymentQuote{}, fmt.Errorf("%w: venue reported zero output for seed quote", ErrQuoteUnavailable)
	}

	neededInput := solveNeededInput(targetOutput, seed.AmountIn, seed.AmountOut, bufferPct)
	if neededInput <= 0 {
		return PaymentQuote{}, fmt.Errorf("%w: solved input amount is not positive", ErrQuoteUnavailable)
	}

	final, err := s.venue.Quote(ctx, tokenIn, tokenOut, neededInput)
	if err != nil {
		return PaymentQuote{}, fmt.Errorf("final quote: %w", err)
	}

	return PaymentQuote{
		TokenInAmount:  neededInput,
		TokenOutAmount: final.AmountOut,
		TargetAmount:   targetOutput,
		PriceImpactPct: final.PriceImpactPct,
		TokenInSymbol:  tokenIn.Symbol,
		TokenOutSymbol: tokenOut.Symbol,
	}, nil
}

// solveNeededInput computes ceil(target * (seedIn/seedOut) * (1 + buffer)).
func solveNeededInput(target, seedIn, seedOut, bufferPct int64) int64 {
	num := new(big.Int).Mul(big.NewInt(target), big.NewInt(seedIn))
	num.Mul(num, big.NewInt(100+bufferPct))
	den := new(big.Int).Mul(big.NewInt(seedOut), big.NewInt(100))

	quo, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	if !quo.IsInt64() {
		return 0
	}
	return quo.Int64()
}
