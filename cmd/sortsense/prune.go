package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/sortsense/internal/cli"
	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/ledger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func pruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop old entries from the transaction log",
		Long: `Remove transaction log entries older than the given age. Pruned sessions
can no longer be undone.

Examples:
  sortsense prune --older-than 720h`,
		Args: cobra.NoArgs,
		RunE: runPrune,
	}

	cmd.Flags().Duration("older-than", 90*24*time.Hour, "Remove entries older than this")
	_ = viper.BindPFlag("prune.older_than", cmd.Flags().Lookup("older-than"))

	return cmd
}

func runPrune(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	maxAge := viper.GetDuration("prune.older_than")
	if maxAge <= 0 {
		return common.NewUserError("--older-than must be positive", common.ErrInvalidConfig)
	}

	led, err := ledger.Open(cfg.Settings.TransactionLog)
	if err != nil {
		return common.NewUserError("Cannot read the transaction log", err)
	}

	removed, err := led.Prune(maxAge)
	if err != nil {
		return fmt.Errorf("failed to prune transaction log: %w", err)
	}

	out := cmd.OutOrStdout()
	if removed == 0 {
		fmt.Fprintln(out, cli.FormatInfo("Nothing to prune"))
		return nil
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Removed %d entries older than %s", removed, maxAge)))
	return nil
}
