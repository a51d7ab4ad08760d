package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/coursewizard/internal/auth"
)

var (
	tokenSecret string
	tokenUser   int64
	tokenScopes []int64
	tokenAdmin  bool
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an identity token",
	Long: `Issue a signed identity token for a user. The secret must match the
server's WIZARD_TOKEN_SECRET.

EXAMPLES:
  wizard token --user 1 --scopes 42,43
  export WIZARD_TOKEN=$(wizard token --user 1 --scopes 42)`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", os.Getenv("WIZARD_TOKEN_SECRET"), "signing secret")
	tokenCmd.Flags().Int64Var(&tokenUser, "user", 0, "user id")
	tokenCmd.Flags().Int64SliceVar(&tokenScopes, "scopes", nil, "courses the user may use the wizard in")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant the manage capability in every course")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "token lifetime")
	tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, args []string) error {
	tokens, err := auth.NewTokens(tokenSecret)
	if err != nil {
		return err
	}
	signed, err := tokens.Issue(auth.Identity{UserID: tokenUser, Scopes: tokenScopes, Admin: tokenAdmin}, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), signed)
	return nil
}
