package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/commledger/internal/infrastructure/config"
	"github.com/iho/commledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "commledger-cli",
		Short: "CommLedger CLI tool",
		Long:  `A command line interface for operating a CommLedger deployment.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the CommLedger API")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated endpoints")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	var migrationsPath string
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "Path to migration files")

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(migrationsPath, false)
		},
	}
	migrateDownCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(migrationsPath, true)
		},
	}
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)

	integrityCmd := &cobra.Command{
		Use:   "integrity",
		Short: "Verify ledger integrity",
		Run: func(cmd *cobra.Command, args []string) {
			checkIntegrity()
		},
	}
	rootCmd.AddCommand(integrityCmd)

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the authenticated user's balance",
		Run: func(cmd *cobra.Command, args []string) {
			showBalance()
		},
	}
	rootCmd.AddCommand(balanceCmd)

	pendingCmd := &cobra.Command{
		Use:   "pending",
		Short: "List contributions awaiting moderation",
		Run: func(cmd *cobra.Command, args []string) {
			listPending()
		},
	}
	rootCmd.AddCommand(pendingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runMigrations(path string, down bool) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if down {
		err = postgres.RunMigrationsDown(cfg.DatabaseURL, path)
	} else {
		err = postgres.RunMigrations(cfg.DatabaseURL, path)
	}
	if err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migrations applied")
}

func apiGet(path string) (int, []byte) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func checkIntegrity() {
	status, body := apiGet("/api/v1/ledger/integrity")

	var result struct {
		Consistent     bool `json:"consistent"`
		UsersChecked   int  `json:"users_checked"`
		EntriesChecked int  `json:"entries_checked"`
		Issues         []struct {
			UserID  string `json:"user_id"`
			EntryID string `json:"entry_id"`
			Kind    string `json:"kind"`
			Detail  string `json:"detail"`
		} `json:"issues"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response (status %d): %s\n", status, string(body))
		os.Exit(1)
	}

	fmt.Printf("Users checked:   %d\n", result.UsersChecked)
	fmt.Printf("Entries checked: %d\n", result.EntriesChecked)

	if result.Consistent {
		fmt.Println("Integrity check PASSED")
		return
	}

	fmt.Printf("Integrity check FAILED: %d issue(s)\n", len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Printf("  [%s] user=%s entry=%s %s\n", issue.Kind, issue.UserID, issue.EntryID, issue.Detail)
	}
	os.Exit(1)
}

func showBalance() {
	status, body := apiGet("/api/v1/balance")
	if status != http.StatusOK {
		fmt.Printf("Request failed (status %d): %s\n", status, string(body))
		os.Exit(1)
	}

	var result struct {
		Balance   string `json:"balance"`
		HoldSum   string `json:"hold_sum"`
		Available string `json:"available"`
		AsOf      string `json:"as_of"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Balance:   %s\n", result.Balance)
	fmt.Printf("On hold:   %s\n", result.HoldSum)
	fmt.Printf("Available: %s\n", result.Available)
	fmt.Printf("As of:     %s\n", result.AsOf)
}

func listPending() {
	status, body := apiGet("/api/v1/contributions/all?status=PENDING")
	if status != http.StatusOK {
		fmt.Printf("Request failed (status %d): %s\n", status, string(body))
		os.Exit(1)
	}

	var contributions []struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
		Amount string `json:"amount"`
		Memo   string `json:"memo"`
	}
	if err := json.Unmarshal(body, &contributions); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if len(contributions) == 0 {
		fmt.Println("No pending contributions")
		return
	}

	for _, c := range contributions {
		fmt.Printf("%s  %-12s  %8s  %s\n", c.ID, c.UserID, c.Amount, truncate(c.Memo, 40))
	}
}

// truncate shortens s to max characters, ending with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
