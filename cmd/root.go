package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "levsek-swap",
	Short: "Pay Levsek debts by swapping Stellar tokens into the settlement currency",
	Long: `levsek-swap is a command-line tool for merchants on the Levsek debt ledger.
It pays a registered debt by swapping another Stellar token into USDC through
the Soroswap aggregator, waits for on-chain confirmation, and registers the
received amount against the debt for merchant review.

Examples:
  levsek-swap list-tokens
  levsek-swap quote 50 XLM
  levsek-swap pay debt-7c2f 50 XLM
  levsek-swap status <tx-hash> --watch`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
