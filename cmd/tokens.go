package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"levsek-swap/pkg/token"
)

var filterSymbol string

var tokensCmd = &cobra.Command{
	Use:     "list-tokens",
	Aliases: []string{"tokens", "ls"},
	Short:   "List the tokens a debt can be paid with",
	Long: `List the tokens supported for swap-and-pay. The first entry is the native
token; USDC is the settlement currency debts are denominated in.

Examples:
  levsek-swap list-tokens
  levsek-swap list-tokens --symbol EURC`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
}

func runListTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	tokens := token.Default().List()

	if filterSymbol != "" {
		var filtered []token.Token
		for _, t := range tokens {
			if strings.Contains(strings.ToUpper(t.Symbol), strings.ToUpper(filterSymbol)) {
				filtered = append(filtered, t)
			}
		}
		tokens = filtered
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(tokens, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayTokens(tokens)
}

func displayTokens(tokens []token.Token) {
	if len(tokens) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                            PAYMENT TOKENS")
	fmt.Println(strings.Repeat("=", 90))
	fmt.Println()

	settlement := token.Default().Settlement()
	for _, t := range tokens {
		note := ""
		if t.Address == settlement.Address {
			note = color.GreenString("  (settlement currency)")
		}

		address := t.Address
		if len(address) > 40 {
			address = address[:37] + "..."
		}

		fmt.Printf("  %-8s  %-18s  %d decimals  %s%s\n",
			color.YellowString(t.Symbol),
			t.Name,
			t.Decimals,
			color.HiBlackString(address),
			note)
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens\n\n", len(tokens))
}
