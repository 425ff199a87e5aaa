package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayment(t *testing.T) {
	req, err := ParsePayment([]string{"50", "XLM"})
	require.NoError(t, err)
	assert.Equal(t, "50", req.Amount)
	assert.Equal(t, "XLM", req.TokenSymbol)

	req, err = ParsePayment([]string{"12.5000000", "eurc"})
	require.NoError(t, err)
	assert.Equal(t, "12.5000000", req.Amount)
	assert.Equal(t, "EURC", req.TokenSymbol)
}

func TestParsePayment_Aliases(t *testing.T) {
	req, err := ParsePayment([]string{"1", "lumens"})
	require.NoError(t, err)
	assert.Equal(t, "XLM", req.TokenSymbol)
}

func TestParsePayment_Invalid(t *testing.T) {
	for _, args := range [][]string{
		{"XLM", "50"},
		{"50"},
		{"-5", "XLM"},
		{"50", "XLM", "extra"},
	} {
		_, err := ParsePayment(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestNormalizeTokenSymbol(t *testing.T) {
	assert.Equal(t, "USDC", NormalizeTokenSymbol(" usd "))
	assert.Equal(t, "AQUA", NormalizeTokenSymbol("aqua"))
}
