package main

import (
	"fmt"
	"sort"

	"github.com/Veraticus/sortsense/internal/cli"
	"github.com/Veraticus/sortsense/internal/extract"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report which extraction tools are installed",
		Long: `Check for the external programs used to read scanned documents and images.
Plain text and office documents are always readable; PDFs need pdftotext,
and images or scanned PDFs need tesseract and pdftoppm.`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	extractor := extract.New(extract.Tools{
		Tesseract: cfg.Tools.Tesseract,
		Pdftotext: cfg.Tools.Pdftotext,
		Pdftoppm:  cfg.Tools.Pdftoppm,
	}, cfg.Settings.ExtractTimeout, cfg.Settings.MaxTextLength)

	fmt.Fprintln(cmd.OutOrStdout(), formatTools(extractor.Available()))
	return nil
}

func formatTools(available map[string]bool) string {
	names := make([]string, 0, len(available))
	for name := range available {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		status := cli.ErrorIcon + " missing"
		if available[name] {
			status = cli.SuccessIcon + " found"
		}
		rows = append(rows, []string{name, status})
	}
	return renderTable("Extraction tools", []column{
		{title: "Tool"},
		{title: "Status"},
	}, rows)
}
