package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/sortsense/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the configured categories",
		Long: `List every category files can be sorted into, the folder it maps to under
the destination and the keywords that select it. Categories are configured
under 'categories' in the config file.`,
		Args: cobra.NoArgs,
		RunE: runCategories,
	}

	cmd.Flags().BoolP("keywords", "k", false, "Show every keyword instead of a count")
	_ = viper.BindPFlag("display.keywords", cmd.Flags().Lookup("keywords"))

	return cmd
}

func runCategories(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatCategories(cfg.Registry, viper.GetBool("display.keywords")))
	return nil
}

func formatCategories(registry *model.Registry, showKeywords bool) string {
	categories := registry.Categories()
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		id, folder := string(c.ID), c.Folder+"/"
		if registry.IsDefault(c.ID) {
			id += " (default)"
			folder = "left in place"
		}
		keywords := strconv.Itoa(len(c.Keywords))
		if showKeywords {
			keywords = strings.Join(c.Keywords, ", ")
		}
		rows = append(rows, []string{id, folder, c.Description, keywords})
	}

	return renderTable("Categories", []column{
		{title: "ID"},
		{title: "Folder"},
		{title: "Description", max: 40},
		{title: "Keywords", right: !showKeywords, max: 60},
	}, rows)
}
