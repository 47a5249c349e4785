package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/Veraticus/sortsense/internal/cli"
	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/ledger"
	"github.com/Veraticus/sortsense/internal/storage"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const historyTimeFormat = "2006-01-02 15:04"

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past reorganization sessions",
		Long: `List past sessions from the run history database. With --ledger the
sessions are read from the transaction log instead, which only knows about
moves that actually happened.`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().IntP("limit", "l", 20, "Number of sessions to show (0 = all)")
	cmd.Flags().Bool("ledger", false, "Read sessions from the transaction log")

	_ = viper.BindPFlag("history.limit", cmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("history.ledger", cmd.Flags().Lookup("ledger"))

	cmd.AddCommand(historyShowCmd())

	return cmd
}

func historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session>",
		Short: "Show every item of one session",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	}
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	limit := viper.GetInt("history.limit")

	if viper.GetBool("history.ledger") {
		led, openErr := ledger.Open(cfg.Settings.TransactionLog)
		if openErr != nil {
			return common.NewUserError("Cannot read the transaction log", openErr)
		}
		fmt.Fprintln(out, formatLedgerSessions(led.Sessions(), limit))
		return nil
	}

	store, err := initStorage(cmd.Context(), cfg.Settings.HistoryDB)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(closeErr.Error()))
		}
	}()

	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatRuns(runs))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cmd.Context(), cfg.Settings.HistoryDB)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(closeErr.Error()))
		}
	}()

	files, err := store.RunFiles(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return common.NewUserError(fmt.Sprintf("No items recorded for session %s", args[0]), nil)
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatRunFiles(args[0], files))
	return nil
}

func formatRuns(runs []storage.Run) string {
	if len(runs) == 0 {
		return cli.FormatInfo("No sessions recorded yet")
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := "done"
		switch {
		case r.UndoneAt != nil:
			status = "undone " + humanize.Time(*r.UndoneAt)
		case r.DryRun:
			status = "dry run"
		}
		rows = append(rows, []string{
			r.SessionID,
			r.StartedAt.Local().Format(historyTimeFormat),
			r.Source,
			strconv.Itoa(r.Moved),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Errors),
			status,
		})
	}

	return renderTable("Sessions", []column{
		{title: "Session"},
		{title: "Started"},
		{title: "Source", max: 40},
		{title: "Moved", right: true},
		{title: "Skipped", right: true},
		{title: "Errors", right: true},
		{title: "Status"},
	}, rows)
}

func formatLedgerSessions(sessions []ledger.SessionSummary, limit int) string {
	if len(sessions) == 0 {
		return cli.FormatInfo("The transaction log is empty")
	}
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		status := "active"
		if s.Undone == s.Moves {
			status = "undone"
		} else if s.Undone > 0 {
			status = fmt.Sprintf("%d undone", s.Undone)
		}
		rows = append(rows, []string{
			s.ID,
			s.Started.Local().Format(historyTimeFormat),
			humanize.Time(s.Finished),
			strconv.Itoa(s.Moves),
			status,
		})
	}

	return renderTable("Transaction log", []column{
		{title: "Session"},
		{title: "Started"},
		{title: "Last move"},
		{title: "Moves", right: true},
		{title: "Status"},
	}, rows)
}

func formatRunFiles(sessionID string, files []storage.RunFile) string {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		dest := f.Destination
		if f.Error != "" {
			dest = f.Error
		}
		rows = append(rows, []string{
			filepath.Base(f.Source),
			f.Category,
			fmt.Sprintf("%.0f%%", f.Confidence*100),
			f.Method,
			f.Outcome,
			dest,
		})
	}

	return renderTable("Session "+sessionID, []column{
		{title: "Item", max: 40},
		{title: "Category"},
		{title: "Score", right: true},
		{title: "Method"},
		{title: "Outcome"},
		{title: "Destination", max: 60},
	}, rows)
}
