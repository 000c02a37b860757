package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/proposal-cli/internal/api"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the analytics API",
	Long:  "Signs a development token carrying the given company id with the configured auth.jwt_secret.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		company, _ := cmd.Flags().GetString("company")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		return runToken(os.Stdout, company, ttl)
	},
}

func runToken(w io.Writer, companyID string, ttl time.Duration) error {
	if companyID == "" {
		return eris.New("token: --company is required")
	}
	if ttl <= 0 {
		return eris.New("token: --ttl must be positive")
	}
	tok, err := api.NewAuthenticator(cfg.Auth).Issue(companyID, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, tok)
	return nil
}

func init() {
	tokenCmd.Flags().String("company", "", "company id to embed in the token")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
