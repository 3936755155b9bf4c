package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"txhistory-server/internal/infrastructure/messaging/amqp"
)

// WatchOptions watchコマンドのフラグ
type WatchOptions struct {
	*RootOptions
	Queue string
}

// NewWatchCommand 記録イベントを購読して表示するコマンド
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "watch",
		Short:         "トランザクション記録イベントを購読して表示",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Queue, "queue", "", "購読するキュー名（空の場合は一時キュー）")

	return cmd
}

func runWatch(opts *WatchOptions, cmd *cobra.Command) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	if !cfg.AMQP.Enabled {
		return WrapExitError(ExitConfig, errors.New("watch requires AMQP_ENABLED=true"))
	}

	subscriber, err := amqp.NewSubscriber(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
	if err != nil {
		return WrapExitError(ExitFailure, err)
	}
	defer subscriber.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	err = subscriber.Consume(ctx, opts.Queue, func(msg *amqp.TransactionRecordedMessage) error {
		return printEvent(out, opts.Format, msg)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return WrapExitError(ExitFailure, err)
}

func printEvent(w io.Writer, format string, msg *amqp.TransactionRecordedMessage) error {
	if format == "json" {
		return writeJSON(w, msg)
	}
	_, err := fmt.Fprintf(w, "#%d %s -> %s %s [%s] %s\n", msg.TxID, msg.From, msg.To, msg.Amount, msg.TxType, msg.Description)
	return err
}
