package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

// Swappable for tests.
var bcryptGenerate = bcrypt.GenerateFromPassword

func main() {
	rootCmd := &cobra.Command{
		Use:   "agencyledger-cli",
		Short: "Agency ledger CLI tool",
		Long:  `A command line interface for the agency ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the agency ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated endpoints")

	treasuryCmd := &cobra.Command{
		Use:   "treasury",
		Short: "Treasury operations",
	}
	treasuryCmd.AddCommand(balanceCmd(), consistencyCmd(), entriesCmd(), depositCmd(), withdrawCmd())
	rootCmd.AddCommand(treasuryCmd)

	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "User management helpers",
	}
	usersCmd.AddCommand(hashPasswordCmd())
	rootCmd.AddCommand(usersCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the current till balance",
		Run: func(cmd *cobra.Command, args []string) {
			printJSON(get("/api/v1/treasury/"))
		},
	}
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Replay the entry history against the stored balance",
		Run: func(cmd *cobra.Command, args []string) {
			resp, raw := request(http.MethodGet, "/api/v1/treasury/consistency", nil)

			var report map[string]any
			if err := json.Unmarshal(raw, &report); err != nil {
				fmt.Printf("Failed to parse response: %v\n", err)
				os.Exit(1)
			}

			if resp.StatusCode != http.StatusOK {
				fmt.Printf("Consistency check FAILED (Status: %d)\n", resp.StatusCode)
				printJSON(report)
				os.Exit(1)
			}

			fmt.Println("Consistency check PASSED")
			printJSON(report)
		},
	}
}

func entriesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List recent ledger entries",
		Run: func(cmd *cobra.Command, args []string) {
			raw := get(fmt.Sprintf("/api/v1/treasury/entries?limit=%d", limit))

			var entries []struct {
				Direction    string `json:"direction"`
				Amount       string `json:"amount"`
				Description  string `json:"description"`
				OriginKind   string `json:"origin_kind"`
				BalanceAfter string `json:"balance_after"`
				CreatedAt    string `json:"created_at"`
			}
			if err := json.Unmarshal(raw, &entries); err != nil {
				fmt.Printf("Failed to parse response: %v\n", err)
				os.Exit(1)
			}

			for _, e := range entries {
				fmt.Printf("%-4s %12s  %-14s %-30s balance=%s  %s\n",
					e.Direction, e.Amount, e.OriginKind,
					truncate(e.Description, 30), e.BalanceAfter, e.CreatedAt)
			}
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of entries to show")

	return cmd
}

func depositCmd() *cobra.Command {
	return moveCashCmd("deposit", "Record cash put into the till")
}

func withdrawCmd() *cobra.Command {
	return moveCashCmd("withdraw", "Record cash taken out of the till")
}

func moveCashCmd(action, short string) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   action + " <amount>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			payload, err := json.Marshal(map[string]string{
				"amount":      args[0],
				"description": description,
			})
			if err != nil {
				fmt.Printf("Failed to build request: %v\n", err)
				os.Exit(1)
			}

			printJSON(post("/api/v1/treasury/"+action, payload))
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Free-form note for the ledger entry")

	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Hash a password for manual user provisioning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}

			fmt.Println(string(hash))
			return nil
		},
	}
}

func get(path string) json.RawMessage {
	resp, raw := request(http.MethodGet, path, nil)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(raw))
		os.Exit(1)
	}
	return raw
}

func post(path string, payload []byte) json.RawMessage {
	resp, raw := request(http.MethodPost, path, payload)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(raw))
		os.Exit(1)
	}
	return raw
}

func request(method, path string, payload []byte) (*http.Response, []byte) {
	client := &http.Client{Timeout: timeout}

	var body io.Reader
	if payload != nil {
		body = strings.NewReader(string(payload))
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
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

	raw, _ := io.ReadAll(resp.Body)

	return resp, raw
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
