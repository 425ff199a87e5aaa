package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// PaymentRequest is a parsed "<amount> <token>" command argument pair.
type PaymentRequest struct {
	Amount      string
	TokenSymbol string
}

// ParsePayment parses payment command arguments
// Examples:
//   - "50 XLM"
//   - "12.5000000 EURC"
//   - "0.25 AQUA"
func ParsePayment(args []string) (*PaymentRequest, error) {
	command := strings.TrimSpace(strings.ToUpper(strings.Join(args, " ")))

	// Pattern: <amount> <token>
	pattern := regexp.MustCompile(`^(\d+\.?\d*)\s+([A-Z0-9]+)$`)

	matches := pattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid payment format. Expected: '<amount> <token>' (e.g., '50 XLM')")
	}

	return &PaymentRequest{
		Amount:      matches[1],
		TokenSymbol: NormalizeTokenSymbol(matches[2]),
	}, nil
}

// NormalizeTokenSymbol normalizes token symbols to standard format
func NormalizeTokenSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	// Handle common aliases
	aliases := map[string]string{
		"LUMEN":  "XLM",
		"LUMENS": "XLM",
		"USD":    "USDC",
		"EUR":    "EURC",
		"EURO":   "EURC",
	}

	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}

	return symbol
}
