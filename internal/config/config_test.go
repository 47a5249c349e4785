package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadYAML(t *testing.T, doc string) (*Config, error) {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return Load(v)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, model.CategoryID("unsorted"), cfg.Registry.Default())
	assert.Equal(t, DefaultExtractTimeout, cfg.Settings.ExtractTimeout)
	assert.Equal(t, DefaultMaxTextLength, cfg.Settings.MaxTextLength)
	assert.Equal(t, DefaultDiscoveryDepth, cfg.Settings.DiscoveryDepth)
	assert.True(t, cfg.Settings.SkipHidden)
	assert.NotContains(t, cfg.Settings.TransactionLog, "~")

	cats := cfg.Registry.Categories()
	require.NotEmpty(t, cats)
	assert.Equal(t, model.CategoryID("documents"), cats[0].ID)

	// finance is not a default category, so only documents survives
	assert.Equal(t, []string{"documents"}, cfg.Settings.FinancialCategories)
	assert.Equal(t, model.CategoryID("photos"), cfg.Cohesion.Force["dcim"])
}

func TestLoad_MergeCategories(t *testing.T) {
	cfg, err := loadYAML(t, `
categories:
  work:
    description: Jobs
    folder: career
    keywords: [payslip]
  finance:
    folder: documents/finance
    keywords: [bank, brokerage]
settings:
  financial_categories: [finance]
  extract_timeout: 5s
`)
	require.NoError(t, err)

	work, ok := cfg.Registry.Get("work")
	require.True(t, ok)
	assert.Equal(t, "career", work.Folder)
	assert.Equal(t, []string{"payslip"}, work.Keywords)

	_, ok = cfg.Registry.Get("school")
	assert.True(t, ok, "defaults are kept when merging")

	finance, ok := cfg.Registry.Get("finance")
	require.True(t, ok)
	assert.Equal(t, "documents/finance", finance.Folder)
	assert.Equal(t, []string{"finance"}, cfg.Settings.FinancialCategories)
	assert.Equal(t, 5*time.Second, cfg.Settings.ExtractTimeout)
}

func TestLoad_ReplaceCategories(t *testing.T) {
	cfg, err := loadYAML(t, `
replace_default_categories: true
categories:
  recipes:
    keywords: [flour]
`)
	require.NoError(t, err)

	_, ok := cfg.Registry.Get("school")
	assert.False(t, ok)
	_, ok = cfg.Registry.Get("recipes")
	assert.True(t, ok)
	assert.Empty(t, cfg.Cohesion.Force, "built-in force entries without a category are dropped")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown force category", doc: "cohesion:\n  force:\n    dcim: pictures\n"},
		{name: "unknown financial category", doc: "settings:\n  financial_categories: [banking]\n"},
		{name: "bad share", doc: "cohesion:\n  share: 1.5\n"},
		{name: "bad depth", doc: "settings:\n  discovery_depth: 0\n"},
		{name: "escaping folder", doc: "categories:\n  work:\n    folder: ../../etc\n"},
		{name: "replace without categories", doc: "replace_default_categories: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadYAML(t, tt.doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("SORTSENSE_DATA", "/data")

	assert.Equal(t, "/home/tester/ledger.json", ExpandPath("~/ledger.json"))
	assert.Equal(t, "/home/tester", ExpandPath("~"))
	assert.Equal(t, "/data/x", ExpandPath("$SORTSENSE_DATA/x"))
	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/home/tester/state", ExpandPath(" ~/state/ "))

	t.Setenv("SORTSENSE_HOME", "~/sortsense")
	assert.Equal(t, "/home/tester/sortsense/log.json", ExpandPath("$SORTSENSE_HOME/log.json"))
}

func TestStatePath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	dir := t.TempDir()
	chdir(t, dir)

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty", path: "", want: ""},
		{name: "memory", path: MemoryDB, want: MemoryDB},
		{name: "home", path: "~/ledger.json", want: "/home/tester/ledger.json"},
		{name: "relative", path: "state/../ledger.json", want: filepath.Join(dir, "ledger.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StatePath("settings.transaction_log", tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := StatePath("settings.history_db", dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.ErrorContains(t, err, "settings.history_db")
}

func TestLoad_RelativeStatePaths(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := loadYAML(t, "settings:\n  transaction_log: log.json\n  history_db: history.db\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "log.json"), cfg.Settings.TransactionLog)
	assert.Equal(t, filepath.Join(dir, "history.db"), cfg.Settings.HistoryDB)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
