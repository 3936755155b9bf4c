package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"txhistory-server/internal/domain/service"
	"txhistory-server/internal/domain/transaction"
	authinfra "txhistory-server/internal/infrastructure/auth"
	"txhistory-server/internal/infrastructure/clock"
	"txhistory-server/internal/infrastructure/config"
	otelinfra "txhistory-server/internal/infrastructure/observability/otel"
	"txhistory-server/internal/infrastructure/persistence/codec"
)

// HistoryOptions historyコマンドのフラグ
type HistoryOptions struct {
	*RootOptions
	Category string
}

// NewHistoryCommand アカウントの履歴を表示するコマンド
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "history <account_id>",
		Short:         "アカウントのトランザクション履歴を表示",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Category, "tx-type", "", "指定したカテゴリだけを表示")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command, rawAccount string) error {
	account, err := transaction.NewAccountID(rawAccount)
	if err != nil {
		return WrapExitError(ExitFailure, err)
	}

	ctx := cmd.Context()
	store, cleanup, err := openHistoryStore(ctx, opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	// 空文字列も有効なカテゴリのため、フラグの有無で絞り込みを判定する
	var txns []*transaction.Transaction
	if cmd.Flags().Changed("tx-type") {
		category, cerr := transaction.NewCategory(opts.Category)
		if cerr != nil {
			return WrapExitError(ExitFailure, cerr)
		}
		txns, err = store.GetHistoryByCategory(ctx, account, category)
	} else {
		txns, err = store.GetHistory(ctx, account)
	}
	if err != nil {
		return WrapExitError(ExitFailure, err)
	}

	return writeTransactions(cmd.OutOrStdout(), opts.Format, txns)
}

// NewCountCommand 記録済みトランザクション総数を表示するコマンド
func NewCountCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "count",
		Short:         "記録済みトランザクションの総数を表示",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(opts, cmd)
		},
	}
}

func runCount(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	store, cleanup, err := openHistoryStore(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	count, err := store.TotalCount(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]uint64{"count": count})
	}
	fmt.Fprintln(cmd.OutOrStdout(), count)
	return nil
}

// openHistoryStore 設定に応じたストレージで読み取り用のHistoryStoreを組み立てる
func openHistoryStore(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*service.HistoryStore, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := opts.config()
	if err != nil {
		return nil, nil, err
	}
	// memoryドライバーはプロセスごとに空のストアになるため参照できない
	if cfg.Storage.Driver == config.StorageDriverMemory {
		return nil, nil, WrapExitError(ExitConfig, fmt.Errorf("%s requires a persistent STORAGE_DRIVER, got %q", cmd.Name(), cfg.Storage.Driver))
	}

	level := otelinfra.LogLevelWarn
	if opts.Verbose {
		level = otelinfra.LogLevelDebug
	}
	logger := otelinfra.NewLogger(otelinfra.WithOutput(cmd.ErrOrStderr()), otelinfra.WithLevel(level))

	backend, err := opts.openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, WrapExitError(ExitFailure, err)
	}

	store := service.NewHistoryStore(
		backend.Reader,
		backend.TxManager,
		backend.Retention,
		codec.NewProtoCodec(),
		clock.NewSystemClock(),
		authinfra.NewContextAuthorizer(),
		logger,
		service.RetentionPolicy{MinRemaining: cfg.Retention.MinRemaining, ExtendTo: cfg.Retention.ExtendTo},
	)

	cleanup := func() {
		if err := backend.Cleanup(); err != nil {
			logger.Error(ctx, "Failed to close storage", err, nil)
		}
	}
	return store, cleanup, nil
}
