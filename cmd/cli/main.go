package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chainvault-cli",
		Short: "ChainVault CLI tool",
		Long:  `A command line interface for interacting with the ChainVault API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ChainVault API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Address commands
	addressCmd := &cobra.Command{
		Use:   "addresses",
		Short: "Address operations",
	}

	var quantity int
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Derive new deposit addresses",
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/addresses", map[string]any{"quantity": quantity})
		},
	}
	generateCmd.Flags().IntVar(&quantity, "quantity", 1, "Number of addresses to derive")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List managed addresses",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/addresses")
		},
	}

	addressCmd.AddCommand(generateCmd, listCmd)

	// Balance command
	var asset string
	balanceCmd := &cobra.Command{
		Use:   "balance [address]",
		Short: "Show confirmed and available balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/addresses/" + args[0] + "/balance?asset=" + asset)
		},
	}
	balanceCmd.Flags().StringVar(&asset, "asset", "ETH", "Asset symbol")

	// Deposit processing command
	processCmd := &cobra.Command{
		Use:   "process [tx-hash]",
		Short: "Process an inbound chain transaction",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/process-transaction", map[string]any{"tx_hash": args[0]})
		},
	}

	// Withdrawal command
	var from, to, withdrawAsset, amount string
	withdrawCmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Submit an outgoing transfer",
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/withdraw", map[string]any{
				"from_address": from,
				"to_address":   to,
				"asset":        withdrawAsset,
				"amount":       amount,
			})
		},
	}
	withdrawCmd.Flags().StringVar(&from, "from", "", "Managed sender address")
	withdrawCmd.Flags().StringVar(&to, "to", "", "Recipient address")
	withdrawCmd.Flags().StringVar(&withdrawAsset, "asset", "ETH", "Asset symbol")
	withdrawCmd.Flags().StringVar(&amount, "amount", "", "Amount in base units")
	withdrawCmd.MarkFlagRequired("from")
	withdrawCmd.MarkFlagRequired("to")
	withdrawCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(addressCmd, balanceCmd, processCmd, withdrawCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getJSON(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	printResponse(resp)
}

func postJSON(path string, payload map[string]any) {
	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("Error encoding request: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	printResponse(resp)
}

func printResponse(resp *http.Response) {
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
	} else {
		fmt.Println(pretty.String())
	}

	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}
