package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"levsek-swap/config"
	"levsek-swap/pkg/amount"
	"levsek-swap/pkg/client"
	"levsek-swap/pkg/parser"
	"levsek-swap/pkg/token"
	"levsek-swap/pkg/zapper"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <token>",
	Short: "Quote the input needed to cover a debt amount",
	Long: `Solve how much of a token must be swapped to cover a debt amount in USDC,
and show the estimated cost breakdown. The amount is the debt amount in USDC.

Examples:
  levsek-swap quote 50 XLM
  levsek-swap quote 12.50 EURC`,
	Args: cobra.MinimumNArgs(2),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	req, err := parser.ParsePayment(args)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	registry := token.Default()
	tokenIn, err := registry.BySymbol(req.TokenSymbol)
	if err != nil {
		printError(fmt.Errorf("unknown token '%s' (try: levsek-swap list-tokens)", req.TokenSymbol))
		os.Exit(1)
	}

	target, err := amount.Parse(req.Amount)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if tokenIn.Address == registry.Settlement().Address {
		printError(fmt.Errorf("debts are denominated in %s; pay them directly from the debt page instead of swapping", tokenIn.Symbol))
		os.Exit(1)
	}

	venue := client.New(cfg.VenueBaseURL, cfg.VenueAPIKey, cfg.Network)
	solver := zapper.NewSolver(venue)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Solving payment quote..."
		s.Start()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	quote, err := solver.SolveInputForExactOutput(ctx, tokenIn, registry.Settlement(), target)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		if errors.Is(err, zapper.ErrQuoteUnavailable) {
			printError(fmt.Errorf("no quote available right now, try again: %w", err))
		} else {
			printError(err)
		}
		os.Exit(1)
	}

	cost := zapper.EstimateCost(quote)

	if jsonOutput {
		output := map[string]interface{}{
			"token_in":          quote.TokenInSymbol,
			"token_in_amount":   amount.Format(quote.TokenInAmount),
			"token_out":         quote.TokenOutSymbol,
			"token_out_amount":  amount.Format(quote.TokenOutAmount),
			"target_amount":     amount.Format(quote.TargetAmount),
			"price_impact_pct":  quote.PriceImpactPct,
			"estimated_network": amount.Format(cost.EstimatedNetworkFee),
			"estimated_fee":     amount.Format(cost.EstimatedSwapFee),
			"total_cost":        amount.Format(cost.TotalCost),
			"short_of_target":   quote.ShortOfTarget(),
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayPaymentQuote(quote, cost)
}

func displayPaymentQuote(quote zapper.PaymentQuote, cost zapper.CostEstimate) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                    PAYMENT QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Debt amount:       %s %s\n", amount.Format(quote.TargetAmount), color.YellowString(quote.TokenOutSymbol))
	fmt.Printf("  You pay:           %s %s\n", amount.Format(quote.TokenInAmount), color.YellowString(quote.TokenInSymbol))
	fmt.Printf("  You receive:       ~%s %s\n", amount.Format(quote.TokenOutAmount), color.YellowString(quote.TokenOutSymbol))
	if quote.PriceImpactPct != "" {
		fmt.Printf("  Price impact:      %s%%\n", quote.PriceImpactPct)
	}

	fmt.Println("\n  Estimated cost breakdown:")
	fmt.Printf("    Swap input:      %s %s\n", amount.Format(cost.TokenInAmount), quote.TokenInSymbol)
	fmt.Printf("    Network fee:     %s %s\n", amount.Format(cost.EstimatedNetworkFee), quote.TokenInSymbol)
	fmt.Printf("    Venue fee (est): %s %s\n", amount.Format(cost.EstimatedSwapFee), quote.TokenInSymbol)
	fmt.Printf("    Total:           %s %s\n", amount.Format(cost.TotalCost), quote.TokenInSymbol)

	if quote.ShortOfTarget() {
		color.Yellow("\n  Warning: solved output falls short of the debt amount; re-quote before paying.")
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
