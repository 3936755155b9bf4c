package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"txhistory-server/internal/infrastructure/config"
	"txhistory-server/internal/infrastructure/persistence/mysql"
)

// MigrateOptions migrateコマンドのフラグ
type MigrateOptions struct {
	*RootOptions
	Version bool
}

// NewMigrateCommand 埋め込みマイグレーションを適用するコマンド
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "MySQLスキーマのマイグレーションを適用",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Version, "version", false, "適用済みバージョンを表示するだけで適用しない")

	return cmd
}

func runMigrate(opts *MigrateOptions, cmd *cobra.Command) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	if cfg.Storage.Driver != config.StorageDriverMySQL {
		return WrapExitError(ExitConfig, fmt.Errorf("migrate requires STORAGE_DRIVER=%s, got %q", config.StorageDriverMySQL, cfg.Storage.Driver))
	}

	if !opts.Version {
		if err := mysql.RunMigrations(&cfg.Database); err != nil {
			return WrapExitError(ExitFailure, err)
		}
	}

	version, dirty, err := mysql.MigrationVersion(&cfg.Database)
	if err != nil {
		return WrapExitError(ExitFailure, err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"version": version, "dirty": dirty})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d (dirty=%t)\n", version, dirty)
	return nil
}
