package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	jwttoken "clearance/internal/jwt_token"
)

var (
	tokenOfficer string
	tokenStation string
	tokenTTL     time.Duration
)

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenOfficer, "officer", "", "Officer identifier (required)")
	tokenCmd.Flags().StringVar(&tokenStation, "station", "", "Station or port of entry (optional)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 8*time.Hour, "Token lifetime")
	tokenCmd.MarkFlagRequired("officer")
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an officer bearer token for POST /overrides",
	Long:  "Signs an HS256 officer token with OFFICER_JWT_SIGNING_KEY, the same key the server validates with.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		key := os.Getenv("OFFICER_JWT_SIGNING_KEY")
		if key == "" {
			return errors.New("OFFICER_JWT_SIGNING_KEY is not set")
		}
		svc := jwttoken.NewJWTService(key, jwttoken.DefaultIssuer, jwttoken.DefaultAudience)
		token, err := svc.GenerateOfficerToken(tokenOfficer, tokenStation, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
