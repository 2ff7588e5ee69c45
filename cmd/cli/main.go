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
	token   string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bankctl",
		Short: "bankd CLI tool",
		Long:  `A command line interface for interacting with the bankd API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the bankd API")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated endpoints")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	reconcileCmd := &cobra.Command{
		Use:   "reconcile [account-id]",
		Short: "Check the balance invariant for one account or all accounts",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := "/api/v1/users/me/reconciliation"
			if len(args) == 1 {
				path = "/api/v1/accounts/" + args[0] + "/reconciliation"
			}
			doRequest(http.MethodGet, path, nil)
		},
	}

	var (
		transferFrom   string
		transferTo     string
		transferAmount string
		transferDesc   string
	)
	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move funds between two accounts",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/transfers", map[string]any{
				"from_account_id": transferFrom,
				"to_account_id":   transferTo,
				"amount":          transferAmount,
				"description":     transferDesc,
			})
		},
	}
	transferCmd.Flags().StringVar(&transferFrom, "from", "", "Source account ID")
	transferCmd.Flags().StringVar(&transferTo, "to", "", "Destination account ID")
	transferCmd.Flags().StringVar(&transferAmount, "amount", "", "Amount to transfer")
	transferCmd.Flags().StringVar(&transferDesc, "description", "", "Transfer description")
	transferCmd.MarkFlagRequired("from")
	transferCmd.MarkFlagRequired("to")
	transferCmd.MarkFlagRequired("amount")

	var (
		depositAmount string
		depositDesc   string
	)
	depositCmd := &cobra.Command{
		Use:   "deposit [account-id]",
		Short: "Credit an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/accounts/"+args[0]+"/deposit", map[string]any{
				"amount":      depositAmount,
				"description": depositDesc,
			})
		},
	}
	depositCmd.Flags().StringVar(&depositAmount, "amount", "", "Amount to deposit")
	depositCmd.Flags().StringVar(&depositDesc, "description", "", "Deposit description")
	depositCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(reconcileCmd, transferCmd, depositCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func doRequest(method, path string, payload map[string]any) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(respBody))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, respBody, "", "  "); err != nil {
		fmt.Println(string(respBody))
		return
	}
	fmt.Println(pretty.String())
}
