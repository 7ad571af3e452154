package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
	storeID string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "storeledger-cli",
		Short: "StoreLedger CLI tool",
		Long:  `A command line interface for interacting with the StoreLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the StoreLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&storeID, "store", "", "Store ID")

	rootCmd.AddCommand(ledgerCmd(), stockCmd(), cashCmd(), reportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	var stream, productID string
	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check that running totals match recomputed prefix sums",
		Run: func(cmd *cobra.Command, args []string) {
			query := url.Values{}
			if stream != "" {
				query.Set("stream", stream)
			}
			if productID != "" {
				query.Set("product_id", productID)
			}
			body, status := apiGet(storePath("/ledger/consistency", query))
			if status != http.StatusOK {
				fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", status, string(body))
				os.Exit(1)
			}
			fmt.Println("Consistency check PASSED")
			printBody(body)
		},
	}
	consistencyCmd.Flags().StringVar(&stream, "stream", "cash", "Stream to check (cash or stock)")
	consistencyCmd.Flags().StringVar(&productID, "product", "", "Product ID (required for the stock stream)")

	cmd.AddCommand(consistencyCmd)
	return cmd
}

func stockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Stock level operations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stock levels for a store",
		Run: func(cmd *cobra.Command, args []string) {
			body, status := apiGet(storePath("/stock", nil))
			exitUnless(status, body)
			printBody(body)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <product-id>",
		Short: "Show the on-hand quantity for one product",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			body, status := apiGet(storePath("/stock/"+url.PathEscape(args[0]), nil))
			exitUnless(status, body)
			printBody(body)
		},
	}

	cmd.AddCommand(listCmd, getCmd)
	return cmd
}

func cashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cash",
		Short: "Cash stream operations",
	}

	var asOf string
	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the cash balance, optionally as of a point in time",
		Run: func(cmd *cobra.Command, args []string) {
			query := url.Values{}
			if asOf != "" {
				query.Set("as_of", asOf)
			}
			body, status := apiGet(storePath("/cash/balance", query))
			exitUnless(status, body)
			printBody(body)
		},
	}
	balanceCmd.Flags().StringVar(&asOf, "as-of", "", "RFC 3339 timestamp for a historical balance")

	cmd.AddCommand(balanceCmd)
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Profit reports",
	}

	var productID, start, end string
	var limit int

	profitCmd := &cobra.Command{
		Use:   "profit",
		Short: "FIFO profit report for one product over a window",
		Run: func(cmd *cobra.Command, args []string) {
			query := url.Values{}
			query.Set("product_id", productID)
			query.Set("start", start)
			query.Set("end", end)
			body, status := apiGet(storePath("/reports/profit", query))
			exitUnless(status, body)
			printBody(body)
		},
	}
	profitCmd.Flags().StringVar(&productID, "product", "", "Product ID")
	profitCmd.Flags().StringVar(&start, "start", "", "Window start (RFC 3339, inclusive)")
	profitCmd.Flags().StringVar(&end, "end", "", "Window end (RFC 3339, exclusive)")

	topCmd := &cobra.Command{
		Use:   "top-products",
		Short: "Rank products sold in a window by total profit",
		Run: func(cmd *cobra.Command, args []string) {
			query := url.Values{}
			query.Set("start", start)
			query.Set("end", end)
			if limit > 0 {
				query.Set("limit", fmt.Sprint(limit))
			}
			body, status := apiGet(storePath("/reports/top-products", query))
			exitUnless(status, body)
			printBody(body)
		},
	}
	topCmd.Flags().StringVar(&start, "start", "", "Window start (RFC 3339, inclusive)")
	topCmd.Flags().StringVar(&end, "end", "", "Window end (RFC 3339, exclusive)")
	topCmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of products")

	cmd.AddCommand(profitCmd, topCmd)
	return cmd
}

// storePath builds an API path scoped to the configured store.
func storePath(suffix string, query url.Values) string {
	path := "/api/v1/stores/" + url.PathEscape(storeID) + suffix
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return path
}

func apiGet(path string) ([]byte, int) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return body, resp.StatusCode
}

func exitUnless(status int, body []byte) {
	if status != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}
}

func printBody(body []byte) {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		fmt.Println(string(body))
		return
	}
	printJSON(parsed)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
