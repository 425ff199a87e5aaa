package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"levsek-swap/config"
	"levsek-swap/pkg/amount"
	"levsek-swap/pkg/chain"
	"levsek-swap/pkg/client"
	"levsek-swap/pkg/journal"
	"levsek-swap/pkg/ledger"
	"levsek-swap/pkg/parser"
	"levsek-swap/pkg/token"
	"levsek-swap/pkg/zapper"
)

var (
	payNotes     string
	payNoConfirm bool
)

var payCmd = &cobra.Command{
	Use:   "pay <debt-id> <amount> <token>",
	Short: "Pay a debt by swapping a token into the settlement currency",
	Long: `Pay a registered Levsek debt by swapping a token into USDC. The command
solves the required input amount, executes the swap with your secret key,
waits for on-chain confirmation, and registers the received amount against
the debt. The payment then awaits merchant review.

The secret key is read from the terminal without echo (or from
LEVSEK_SECRET_KEY) and is held in memory only for the duration of the
attempt.

Once the swap transaction is submitted it cannot be cancelled; if
confirmation times out, check 'levsek-swap status' before retrying.

Examples:
  levsek-swap pay debt-7c2f 50 XLM
  levsek-swap pay debt-7c2f 12.50 EURC --notes "invoice 2031" --yes`,
	Args: cobra.MinimumNArgs(3),
	Run:  runPay,
}

func init() {
	rootCmd.AddCommand(payCmd)

	payCmd.Flags().StringVar(&payNotes, "notes", "", "Notes attached to the registered payment")
	payCmd.Flags().BoolVarP(&payNoConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runPay(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	debtID := args[0]
	req, err := parser.ParsePayment(args[1:])
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if cfg.LedgerToken == "" {
		printError(fmt.Errorf("ledger session token not found. Please set LEVSEK_LEDGER_TOKEN or add ledger_token to your config file"))
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
		printError(fmt.Errorf("this debt is denominated in %s; pay it directly from the debt page instead of swapping", tokenIn.Symbol))
		os.Exit(1)
	}

	if !payNoConfirm && !jsonOutput {
		fmt.Printf("\nPay %s %s against debt %s by swapping %s?\n",
			req.Amount, registry.Settlement().Symbol, color.CyanString(debtID), color.YellowString(tokenIn.Symbol))
		if !confirmPayment() {
			fmt.Println("\nPayment cancelled.")
			os.Exit(0)
		}
	}

	secret, err := readSecret()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	venue := client.New(cfg.VenueBaseURL, cfg.VenueAPIKey, cfg.Network)
	horizon := chain.NewHorizon(cfg.HorizonURL)
	registrar := ledger.New(cfg.LedgerBaseURL, cfg.LedgerToken)
	newSigner := func(s string) (zapper.Signer, error) {
		return chain.FromSecret(s, cfg.NetworkPassphrase)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Start()
	}

	z := zapper.New(venue, horizon, registrar, newSigner,
		zapper.WithRegistry(registry),
		zapper.WithStateHook(func(state zapper.State) {
			if jsonOutput {
				return
			}
			switch state {
			case zapper.StateQuoting:
				s.Suffix = " Solving payment quote..."
			case zapper.StateSwapping:
				s.Suffix = " Signing and submitting swap..."
			case zapper.StateConfirming:
				s.Suffix = " Waiting for on-chain confirmation..."
			case zapper.StateSettling:
				s.Suffix = " Registering payment with the ledger..."
			}
		}))

	jnl, jerr := journal.New(cfg.JournalPath)
	if jerr != nil {
		// The journal is advisory; continue without it.
		jnl = nil
	}

	// Sequential flow; the attempt owns the process until it finishes, so a
	// duplicate attempt for the same debt cannot start from here.
	ctx := context.Background()
	result, err := z.ExecuteSwapAndPay(ctx, secret, debtID, tokenIn, target, payNotes)
	// Drop the secret as soon as the attempt returns.
	secret = ""
	_ = secret

	if !jsonOutput {
		s.Stop()
	}

	recordAttempt(jnl, result, debtID, tokenIn.Symbol, req.Amount, err)

	if jsonOutput {
		printPayJSON(result, err)
	} else {
		displayPayResult(result, debtID, err)
	}

	if err != nil {
		os.Exit(1)
	}
}

func recordAttempt(jnl *journal.Journal, result *zapper.OrchestrationResult, debtID, tokenIn, target string, runErr error) {
	if jnl == nil || result == nil {
		return
	}

	a := journal.Attempt{
		ID:           result.AttemptID,
		DebtID:       debtID,
		TokenIn:      tokenIn,
		TargetAmount: target,
		State:        string(result.State),
		Ambiguous:    result.Ambiguous,
	}
	if result.Swap != nil {
		a.TxHash = result.Swap.TransactionHash
		a.AmountIn = amount.Format(result.Swap.AmountIn)
		a.AmountOut = amount.Format(result.Swap.AmountOut)
	}
	if result.Settlement != nil {
		a.SettlementID = result.Settlement.ID
	}
	if runErr != nil {
		a.ErrorMessage = runErr.Error()
	}

	if err := jnl.Record(a); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record attempt: %v\n", err)
	}
}

func printPayJSON(result *zapper.OrchestrationResult, runErr error) {
	output := map[string]interface{}{
		"attempt_id": result.AttemptID,
		"state":      result.State,
		"ambiguous":  result.Ambiguous,
	}
	if result.Swap != nil {
		output["tx_hash"] = result.Swap.TransactionHash
		output["confirmation_status"] = result.Swap.ConfirmationStatus
		output["amount_in"] = amount.Format(result.Swap.AmountIn)
		output["amount_out"] = amount.Format(result.Swap.AmountOut)
	}
	if result.Settlement != nil {
		output["settlement_id"] = result.Settlement.ID
		output["settlement_status"] = result.Settlement.Status
	}
	if runErr != nil {
		output["error"] = runErr.Error()
	}
	jsonData, _ := json.MarshalIndent(output, "", "  ")
	fmt.Println(string(jsonData))
}

func displayPayResult(result *zapper.OrchestrationResult, debtID string, runErr error) {
	if runErr == nil {
		color.Green("\n✓ Payment registered")
		fmt.Printf("\n  %s\n", result.Summary)
		if result.Settlement != nil {
			fmt.Printf("  Settlement:      %s (%s)\n", color.CyanString(result.Settlement.ID), result.Settlement.Status)
		}
		if result.Swap != nil {
			fmt.Printf("  Swap tx:         %s\n", color.HiBlackString(result.Swap.TransactionHash))
		}
		fmt.Println("\nThe payment now awaits merchant review.")
		fmt.Println()
		return
	}

	switch {
	case errors.Is(runErr, zapper.ErrConfirmationTimeout):
		color.Yellow("\n⚠ Confirmation timed out — outcome unknown")
		fmt.Printf("\n  The swap transaction may still confirm. Do NOT retry blindly.\n")
		if result.Swap != nil {
			fmt.Printf("  Check it with: levsek-swap status %s\n", result.Swap.TransactionHash)
		}
	case errors.Is(runErr, zapper.ErrSettlementRegistrationFailed):
		color.Red("\n✗ Swap confirmed but payment registration failed")
		fmt.Printf("\n  The swap moved funds; the debt was NOT marked paid.\n")
		fmt.Printf("  Contact support with debt %s", debtID)
		if result.Swap != nil {
			fmt.Printf(" and transaction %s", result.Swap.TransactionHash)
		}
		fmt.Println(" for manual reconciliation.")
	case errors.Is(runErr, zapper.ErrInvalidCredential):
		color.Red("\n✗ Invalid secret key")
		fmt.Println("\n  Check the key and try again. Nothing was submitted.")
	case errors.Is(runErr, zapper.ErrQuoteUnavailable):
		color.Red("\n✗ No quote available")
		fmt.Println("\n  No funds moved; it is safe to retry.")
	default:
		color.Red("\n✗ Payment failed")
	}

	fmt.Printf("\n  Error: %v\n\n", runErr)
}

func readSecret() (string, error) {
	if secret := os.Getenv("LEVSEK_SECRET_KEY"); secret != "" {
		return secret, nil
	}

	fmt.Print("\nSecret key (input hidden): ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read secret key: %w", err)
	}

	secret := strings.TrimSpace(string(raw))
	if secret == "" {
		return "", fmt.Errorf("secret key is required")
	}

	return secret, nil
}

func confirmPayment() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Proceed? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
