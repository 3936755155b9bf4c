package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"txhistory-server/internal/domain/transaction"
	authinfra "txhistory-server/internal/infrastructure/auth"
)

// NewTokenCommand アカウント用のJWTを発行するコマンド
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "token <account_id>",
		Short:         "アカウントのJWTを発行",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(opts, cmd, args[0])
		},
	}
}

func runToken(opts *RootOptions, cmd *cobra.Command, rawAccount string) error {
	account, err := transaction.NewAccountID(rawAccount)
	if err != nil {
		return WrapExitError(ExitFailure, err)
	}

	cfg, err := opts.config()
	if err != nil {
		return err
	}

	token, expiresAt, err := authinfra.IssueToken(&cfg.JWT, account, time.Now())
	if err != nil {
		return WrapExitError(ExitFailure, err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"token":      token,
			"expires_at": expiresAt.UTC().Format(time.RFC3339),
			"token_type": "Bearer",
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
