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
		Use:   "marketledger-cli",
		Short: "MarketLedger CLI tool",
		Long:  `A command line interface for interacting with the MarketLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the MarketLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(partyCmd())
	rootCmd.AddCommand(accountCmd())
	rootCmd.AddCommand(orderCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func partyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "party",
		Short: "Party operations",
	}

	var initialBalance string
	registerCmd := &cobra.Command{
		Use:   "register [name]",
		Short: "Register a new party with its bank account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/parties", map[string]any{
				"name":            args[0],
				"initial_balance": initialBalance,
			})
		},
	}
	registerCmd.Flags().StringVar(&initialBalance, "balance", "0", "Initial account balance")

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Get a party by id",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/parties/"+args[0], nil)
		},
	}

	var storeName string
	storefrontCmd := &cobra.Command{
		Use:   "open-storefront [id]",
		Short: "Upgrade a party to a seller",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/parties/"+args[0]+"/storefront", map[string]any{
				"store_name": storeName,
			})
		},
	}
	storefrontCmd.Flags().StringVar(&storeName, "name", "", "Storefront display name")

	cmd.AddCommand(registerCmd, getCmd, storefrontCmd)
	return cmd
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Get an account by id",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/accounts/"+args[0], nil)
		},
	}

	creditCmd := &cobra.Command{
		Use:   "credit [id] [amount]",
		Short: "Top up an account",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/accounts/"+args[0]+"/credit", map[string]any{
				"amount": args[1],
			})
		},
	}

	debitCmd := &cobra.Command{
		Use:   "debit [id] [amount]",
		Short: "Withdraw from an account",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/accounts/"+args[0]+"/debit", map[string]any{
				"amount": args[1],
			})
		},
	}

	var sinceDays int
	transactionsCmd := &cobra.Command{
		Use:   "transactions [id]",
		Short: "List an account's ledger entries",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/transactions?since_days=%d", args[0], sinceDays), nil)
		},
	}
	transactionsCmd.Flags().IntVar(&sinceDays, "since-days", 7, "Trailing window in days")

	cmd.AddCommand(getCmd, creditCmd, debitCmd, transactionsCmd)
	return cmd
}

func orderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Order operations",
	}

	var buyerID, sellerID, itemID, quantity int64
	placeCmd := &cobra.Command{
		Use:   "place",
		Short: "Place an order through checkout",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/orders", map[string]any{
				"buyer_id":  buyerID,
				"seller_id": sellerID,
				"item_id":   itemID,
				"quantity":  quantity,
			})
		},
	}
	placeCmd.Flags().Int64Var(&buyerID, "buyer", 0, "Buyer party id")
	placeCmd.Flags().Int64Var(&sellerID, "seller", 0, "Seller party id")
	placeCmd.Flags().Int64Var(&itemID, "item", 0, "Item id")
	placeCmd.Flags().Int64Var(&quantity, "quantity", 1, "Quantity")

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Get an order by id",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/orders/"+args[0], nil)
		},
	}

	var payBuyerID, buyerAccountID, sellerAccountID int64
	payCmd := &cobra.Command{
		Use:   "pay [id]",
		Short: "Settle a pending order",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/orders/"+args[0]+"/pay", map[string]any{
				"buyer_id":          payBuyerID,
				"buyer_account_id":  buyerAccountID,
				"seller_account_id": sellerAccountID,
			})
		},
	}
	payCmd.Flags().Int64Var(&payBuyerID, "buyer", 0, "Buyer party id")
	payCmd.Flags().Int64Var(&buyerAccountID, "buyer-account", 0, "Buyer account id")
	payCmd.Flags().Int64Var(&sellerAccountID, "seller-account", 0, "Seller account id")

	completeCmd := &cobra.Command{
		Use:   "complete [id]",
		Short: "Mark a paid order as completed",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/orders/"+args[0]+"/complete", map[string]any{})
		},
	}

	cancelCmd := &cobra.Command{
		Use:   "cancel [id]",
		Short: "Cancel a pending order",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/orders/"+args[0]+"/cancel", map[string]any{})
		},
	}

	cmd.AddCommand(placeCmd, getCmd, payCmd, completeCmd, cancelCmd)
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregation reports",
	}

	var n int
	topActiveCmd := &cobra.Command{
		Use:   "top-active-accounts",
		Short: "Rank accounts by today's activity",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, fmt.Sprintf("/api/v1/reports/top-active-accounts?n=%d", n), nil)
		},
	}
	topActiveCmd.Flags().IntVar(&n, "n", 10, "Number of accounts")

	var days int
	dormantCmd := &cobra.Command{
		Use:   "dormant-accounts",
		Short: "List accounts with no recent activity",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, fmt.Sprintf("/api/v1/reports/dormant-accounts?days=%d", days), nil)
		},
	}
	dormantCmd.Flags().IntVar(&days, "days", 30, "Dormancy threshold in days")

	var m int
	topSoldCmd := &cobra.Command{
		Use:   "top-sold-items",
		Short: "Rank items by quantity sold",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, fmt.Sprintf("/api/v1/reports/top-sold-items?m=%d", m), nil)
		},
	}
	topSoldCmd.Flags().IntVar(&m, "m", 10, "Number of items")

	cmd.AddCommand(topActiveCmd, dormantCmd, topSoldCmd)
	return cmd
}

// doRequest performs an API call and pretty-prints the JSON response.
func doRequest(method, path string, body map[string]any) {
	client := &http.Client{Timeout: timeout}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		pretty.Write(raw)
	}

	fmt.Printf("Status: %d\n%s\n", resp.StatusCode, pretty.String())
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}
