package main

import (
	"errors"
	"fmt"

	"github.com/Veraticus/sortsense/internal/cli"
	"github.com/Veraticus/sortsense/internal/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func undoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Roll back the most recent session",
		Long: `Move every item of the most recent session back to where it came from.
Items whose original location is taken, or that are no longer at their
destination, are reported and left alone.`,
		Args: cobra.NoArgs,
		RunE: runUndo,
	}

	cmd.Flags().BoolP("yes", "y", false, "Undo without asking for confirmation")
	_ = viper.BindPFlag("undo.yes", cmd.Flags().Lookup("yes"))

	return cmd
}

func runUndo(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := openApp(ctx, appOptions{in: cmd.InOrStdin(), out: out})
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID, ok := a.ledger.LastSession()
	if !ok {
		fmt.Fprintln(out, cli.FormatInfo("No sessions to undo"))
		return nil
	}

	if !viper.GetBool("undo.yes") {
		moves := len(a.ledger.SessionEntries(sessionID))
		confirmed, confirmErr := a.prompter.Confirm(ctx,
			fmt.Sprintf("Undo %d moves from session %s?", moves, sessionID))
		if confirmErr != nil {
			if errors.Is(confirmErr, cli.ErrInputCancelled) {
				return nil
			}
			return confirmErr
		}
		if !confirmed {
			fmt.Fprintln(out, cli.FormatInfo("Nothing undone"))
			return nil
		}
	}

	report, err := a.engine.Undo(ctx)
	if report != nil {
		fmt.Fprintln(out, cli.FormatUndo(report))
	}
	if err != nil {
		if errors.Is(err, common.ErrLocked) {
			return common.NewUserError("Another sortsense run is in progress", err)
		}
		return err
	}
	return nil
}
