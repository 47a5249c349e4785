package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/sortsense/internal/cli"
	"github.com/Veraticus/sortsense/internal/config"
	"github.com/Veraticus/sortsense/internal/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <source>",
		Short: "Show how a folder would be sorted without moving anything",
		Long: `Analyze every file under a source folder and report the category each one
belongs to, which folders would be kept together and how files were read.
Nothing is moved.

Examples:
  sortsense analyze ~/Downloads
  sortsense analyze ~/Downloads -r --report downloads.json`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	addAnalysisFlags(cmd, "analyze")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	a, err := openApp(cmd.Context(), appOptions{
		in:        cmd.InOrStdin(),
		out:       out,
		useVision: viper.GetBool("analyze.vision"),
	})
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := runOptions("analyze", args[0], a.cfg.Destination)
	if err != nil {
		return err
	}

	interrupts := cli.NewInterruptHandler(out)
	ctx := interrupts.HandleInterrupts(cmd.Context(), false)

	progress := cli.NewProgress(cmd.ErrOrStderr())
	opts.Progress = progress.Update

	analysis, err := a.engine.Analyze(ctx, opts)
	if err != nil {
		if interrupts.WasInterrupted() {
			return nil
		}
		return err
	}

	fmt.Fprintln(out, cli.FormatAnalysis(a.cfg.Registry, analysis))

	return writeReport(viper.GetString("analyze.report"), analysis)
}

// writeReport saves the JSON analysis report to path. An empty path writes
// nothing.
func writeReport(path string, analysis *engine.Analysis) error {
	if path == "" {
		return nil
	}
	path = config.ExpandPath(path)

	data, err := json.MarshalIndent(analysis.Report(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	slog.Info("Wrote analysis report", "path", path)
	return nil
}
