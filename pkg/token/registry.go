package token

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup does not match any registered token.
var ErrNotFound = errors.New("token not found")

// Token describes one swappable asset. Address is the Soroban contract ID of
// the asset on the configured network. All Stellar assets use 7 decimals.
type Token struct {
	Address  string
	Symbol   string
	Name     string
	Decimals int
}

// Registry is a static, ordered catalog of the tokens a merchant can pay
// with. The first entry is the native token; USDC is the settlement token
// debts are denominated in.
type Registry struct {
	tokens []Token
}

var defaultTokens = []Token{
	{
		Address:  "CDLZFC3SYJYDZT7K67VZ75HPJVIEUVNIXF47ZG2FB2RMQQVU2HHGCYSC",
		Symbol:   "XLM",
		Name:     "Stellar Lumens",
		Decimals: 7,
	},
	{
		Address:  "CAQCFVLOBK5GIULPNZRGATJJMIZL5BSP7X5YJVMGCPTUEPFM4AVSRCJU",
		Symbol:   "USDC",
		Name:     "USD Coin",
		Decimals: 7,
	},
	{
		Address:  "CCUWGNQ2ULW3XONLULVF4NQ2W4OVJYL3KIAF5TDE6YPMNMWBQ3RDBZVC",
		Symbol:   "EURC",
		Name:     "Euro Coin",
		Decimals: 7,
	},
	{
		Address:  "CDJF2JQINO7WRFXB2AAHLONFDPPI4M3W2UM5THGQQ7JMJDIEJYC4CMPG",
		Symbol:   "AQUA",
		Name:     "Aquarius",
		Decimals: 7,
	},
	{
		Address:  "CB64D3G7SM2RTH6JSGG34DDTFTQ5CFDKVDZJZSODMCX4NJ2HV2KN7OHT",
		Symbol:   "BTCLN",
		Name:     "Bitcoin Lightning",
		Decimals: 7,
	},
}

// Default returns the registry for the supported network.
func Default() *Registry {
	return &Registry{tokens: defaultTokens}
}

// List returns the tokens in their stable display order.
func (r *Registry) List() []Token {
	out := make([]Token, len(r.tokens))
	copy(out, r.tokens)
	return out
}

// Native returns the native token (always the first catalog entry).
func (r *Registry) Native() Token {
	return r.tokens[0]
}

// Settlement returns the token debts are denominated and settled in.
func (r *Registry) Settlement() Token {
	t, err := r.BySymbol("USDC")
	if err != nil {
		panic("registry is missing the settlement token")
	}
	return t
}

// BySymbol looks up a token by its symbol, case-insensitively.
func (r *Registry) BySymbol(symbol string) (Token, error) {
	for _, t := range r.tokens {
		if strings.EqualFold(t.Symbol, symbol) {
			return t, nil
		}
	}
	return Token{}, ErrNotFound
}

// ByAddress looks up a token by its contract address.
func (r *Registry) ByAddress(address string) (Token, error) {
	for _, t := range r.tokens {
		if t.Address == address {
			return t, nil
		}
	}
	return Token{}, ErrNotFound
}
