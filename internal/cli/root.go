package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"txhistory-server/internal/infrastructure/config"
	"txhistory-server/internal/infrastructure/persistence"
)

// RootOptions 全コマンド共通のフラグ
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// loadConfig, openBackend テストで差し替える
	loadConfig  func() (*config.Config, error)
	openBackend func(ctx context.Context, cfg *config.Config) (*persistence.Backend, error)
}

// ValidFormats 出力形式
var ValidFormats = []string{"text", "json"}

// NewRootCommand txctlのルートコマンドを作成
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{
		loadConfig:  config.Load,
		openBackend: persistence.NewBackend,
	})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "txctl",
		Short: "txhistory-server の運用ツール",
		Long:  "トランザクション履歴ストアのマイグレーション、トークン発行、履歴参照、イベント購読を行う。",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

// config 設定を読み込む
func (o *RootOptions) config() (*config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitConfig, err)
	}
	return cfg, nil
}
