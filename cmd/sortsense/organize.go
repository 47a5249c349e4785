package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/sortsense/internal/cli"
	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func organizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize <source>",
		Short: "Sort a folder into category folders",
		Long: `Analyze every file under a source folder and move it into the category
folder that matches its content. Folders that hold one kind of content are
moved as a whole. Every move is recorded and can be rolled back with
'sortsense undo'.

Examples:
  sortsense organize ~/Downloads -d ~/Documents
  sortsense organize ~/Downloads --dry-run
  sortsense organize ~/Desktop -r --existing-only
  sortsense organize ~/Scans -i --misc-threshold 0.4`,
		Args: cobra.ExactArgs(1),
		RunE: runOrganize,
	}

	addAnalysisFlags(cmd, "organize")
	cmd.Flags().Bool("dry-run", false, "Show the planned moves without touching anything")
	cmd.Flags().Bool("existing-only", false, "Never create new top-level folders")
	cmd.Flags().BoolP("interactive", "i", false, "Ask before creating each new folder")
	cmd.Flags().Float64("misc-threshold", 0, "Send files below this confidence (0-1) to the misc folder")
	cmd.Flags().BoolP("yes", "y", false, "Move without asking for confirmation")

	_ = viper.BindPFlag("organize.dry_run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("organize.existing_only", cmd.Flags().Lookup("existing-only"))
	_ = viper.BindPFlag("organize.interactive", cmd.Flags().Lookup("interactive"))
	_ = viper.BindPFlag("organize.misc_threshold", cmd.Flags().Lookup("misc-threshold"))
	_ = viper.BindPFlag("organize.yes", cmd.Flags().Lookup("yes"))

	return cmd
}

// addAnalysisFlags registers the flags shared by analyze and organize under
// the viper section prefix.
func addAnalysisFlags(cmd *cobra.Command, prefix string) {
	cmd.Flags().BoolP("recursive", "r", false, "Descend into subfolders that are not kept together")
	cmd.Flags().IntP("max-files", "n", 0, "Stop after this many files (0 = no limit)")
	cmd.Flags().Bool("vision", false, "Classify uncategorized images with the vision model")
	cmd.Flags().String("report", "", "Write the analysis report as JSON to this file")

	_ = viper.BindPFlag(prefix+".recursive", cmd.Flags().Lookup("recursive"))
	_ = viper.BindPFlag(prefix+".max_files", cmd.Flags().Lookup("max-files"))
	_ = viper.BindPFlag(prefix+".vision", cmd.Flags().Lookup("vision"))
	_ = viper.BindPFlag(prefix+".report", cmd.Flags().Lookup("report"))
}

// runOptions builds engine options from the flags bound under prefix.
func runOptions(prefix, source, destination string) (engine.Options, error) {
	if destination == "" {
		return engine.Options{}, common.NewUserError(
			"No destination folder: pass --dest or set destination in the config file",
			common.ErrMissingConfig)
	}

	threshold := viper.GetFloat64(prefix + ".misc_threshold")
	if threshold < 0 || threshold > 1 {
		return engine.Options{}, common.NewUserError(
			fmt.Sprintf("--misc-threshold must be between 0 and 1, got %v", threshold),
			common.ErrInvalidConfig)
	}
	maxFiles := viper.GetInt(prefix + ".max_files")
	if maxFiles < 0 {
		return engine.Options{}, common.NewUserError("--max-files cannot be negative", common.ErrInvalidConfig)
	}

	return engine.Options{
		Source:        source,
		Destination:   destination,
		MaxFiles:      maxFiles,
		MiscThreshold: threshold,
		Recursive:     viper.GetBool(prefix + ".recursive"),
		DryRun:        viper.GetBool(prefix + ".dry_run"),
		ExistingOnly:  viper.GetBool(prefix + ".existing_only"),
		Interactive:   viper.GetBool(prefix + ".interactive"),
		UseVision:     viper.GetBool(prefix+".vision") || viper.GetBool("vision.enabled"),
	}, nil
}

func runOrganize(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	a, err := openApp(cmd.Context(), appOptions{
		in:        cmd.InOrStdin(),
		out:       out,
		useVision: viper.GetBool("organize.vision"),
	})
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := runOptions("organize", args[0], a.cfg.Destination)
	if err != nil {
		return err
	}

	interrupts := cli.NewInterruptHandler(out)
	ctx := interrupts.HandleInterrupts(cmd.Context(), !opts.DryRun)

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
	fmt.Fprintln(out)

	if err := writeReport(viper.GetString("organize.report"), analysis); err != nil {
		return err
	}

	if len(analysis.Files) == 0 && len(analysis.Folders) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("Nothing to organize"))
		return nil
	}

	if !opts.DryRun && !viper.GetBool("organize.yes") {
		question := fmt.Sprintf("Move %d folders and %d files into %s?",
			len(analysis.Folders), len(analysis.Files), analysis.Destination)
		ok, confirmErr := a.prompter.Confirm(ctx, question)
		if confirmErr != nil {
			if errors.Is(confirmErr, cli.ErrInputCancelled) {
				return nil
			}
			return confirmErr
		}
		if !ok {
			fmt.Fprintln(out, cli.FormatInfo("Nothing moved"))
			return nil
		}
	}

	if opts.DryRun {
		fmt.Fprintln(out, cli.FormatTitle("Dry run: planned moves"))
	} else {
		fmt.Fprintln(out, cli.FormatTitle("Organizing"))
	}

	res, err := a.engine.Execute(ctx, analysis, opts)
	if res != nil {
		fmt.Fprintln(out, cli.FormatResult(res))
	}
	if err != nil {
		if errors.Is(err, common.ErrLocked) {
			return common.NewUserError("Another sortsense run is in progress", err)
		}
		if interrupts.WasInterrupted() && res != nil {
			slog.Warn("Organize interrupted", "session_id", res.SessionID)
			return nil
		}
		return err
	}
	return nil
}
