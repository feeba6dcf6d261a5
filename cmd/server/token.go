// cmd/server/token.go
package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/javajoker/rental-backend/internal/utils"
)

var tokenEmail string

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	rootCmd.AddCommand(tokenCmd)
}

// Login belongs to the account service; this mints bearer tokens for local
// testing against the same secret.
var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Print a bearer token for a user id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}

		utils.SetJWTSecret(cfg.JWT.SecretKey)
		token, err := utils.GenerateJWT(userID, tokenEmail, cfg.JWT.AccessTokenTTL)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
