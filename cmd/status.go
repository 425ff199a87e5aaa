package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"levsek-swap/config"
	"levsek-swap/pkg/chain"
	"levsek-swap/pkg/journal"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status [tx-hash]",
	Short: "Check the status of a swap transaction",
	Long: `Check the on-chain status of a swap transaction, or list recorded
payment attempts when no hash is given. Attempts marked AMBIGUOUS may have
moved funds without completing and need manual review.

Examples:
  levsek-swap status
  levsek-swap status 3389e9f0f1a65f19736cacf544c2e825313e8447f569233bb8db39aa607c8889
  levsek-swap status <tx-hash> --watch --interval 10`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if len(args) == 0 {
		listAttempts(cfg, jsonOutput)
		return
	}

	txHash := args[0]
	horizon := chain.NewHorizon(cfg.HorizonURL)

	if watchStatus {
		watchTxStatus(horizon, txHash, jsonOutput)
	} else {
		checkTxStatus(horizon, txHash, jsonOutput)
	}
}

func listAttempts(cfg *config.Config, jsonOutput bool) {
	jnl, err := journal.New(cfg.JournalPath)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	attempts := jnl.List()

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(attempts, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(attempts) == 0 {
		fmt.Println("\nNo recorded payment attempts.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	color.Green("                        PAYMENT ATTEMPTS")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	for _, a := range attempts {
		marker := "  "
		if a.Ambiguous {
			marker = color.YellowString("! ")
		}
		fmt.Printf("%s%s  debt %s  %s %s -> %s\n",
			marker,
			a.CreatedAt.Format("2006-01-02 15:04"),
			color.CyanString(a.DebtID),
			a.TargetAmount,
			a.TokenIn,
			coloredState(a.State))
		if a.TxHash != "" {
			fmt.Printf("      tx: %s\n", color.HiBlackString(a.TxHash))
		}
		if a.Ambiguous {
			color.Yellow("      AMBIGUOUS: funds may have moved; verify the transaction before retrying")
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 80) + "\n")
}

func checkTxStatus(horizon *chain.Horizon, txHash string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking transaction status..."
		s.Start()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	state, err := horizon.GetTransaction(ctx, txHash)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(map[string]string{
			"tx_hash": txHash,
			"status":  string(state),
		}, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayTxStatus(txHash, state)
}

func watchTxStatus(horizon *chain.Horizon, txHash string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching transaction %s\n", color.CyanString(txHash))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	check := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		state, err := horizon.GetTransaction(ctx, txHash)
		if err != nil {
			color.Red("Error: %v", err)
			return false
		}
		displayTxStatus(txHash, state)
		return state != chain.TxPending
	}

	// Check immediately first
	if check() {
		return
	}

	for range ticker.C {
		if check() {
			return
		}
	}
}

func displayTxStatus(txHash string, state chain.TxState) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                     TRANSACTION STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Transaction:  %s\n", color.CyanString(txHash))
	fmt.Printf("  Status:       %s\n", coloredState(string(state)))

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func coloredState(state string) string {
	switch strings.ToUpper(state) {
	case "CONFIRMED", "DONE":
		return color.GreenString(state)
	case "PENDING", "QUOTING", "SWAPPING", "CONFIRMING", "SETTLING":
		return color.YellowString(state)
	case "FAILED":
		return color.RedString(state)
	default:
		return state
	}
}
