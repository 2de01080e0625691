package commands

import (
	"fmt"
	"time"

	"shop-catalog/internal/config"
	"shop-catalog/internal/domain"
	"shop-catalog/internal/middleware"

	"github.com/spf13/cobra"
)

var (
	tokenUserID int64
	tokenRole   string
	tokenTTL    time.Duration
)

// tokenCmd mints a bearer token signed with JWT_SECRET for local testing
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a development access token",
	Long: `Sign an access token with JWT_SECRET for calling the API locally.

Examples:
  catalogctl token --user 1 --role admin
  catalogctl token --user 7 --role user --ttl 10m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.JWT.Secret == "" {
			return fmt.Errorf("JWT_SECRET is not set")
		}

		role := domain.Role(tokenRole)
		if !role.Valid() {
			return fmt.Errorf("unknown role %q", tokenRole)
		}
		if tokenUserID < 1 {
			return fmt.Errorf("--user must be a positive id")
		}

		token, err := middleware.SignToken(cfg.JWT.Secret, tokenUserID, role, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenUserID, "user", 0, "User id placed in the user_id claim")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(domain.RoleUser), "Role claim: admin, manager or user")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
