package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/model"
	"github.com/spf13/viper"
)

// Config is the validated runtime configuration.
type Config struct {
	Registry    *model.Registry
	Destination string
	Tools       Tools
	Settings    Settings
	Cohesion    Cohesion
	Vision      Vision
}

// Settings holds general runtime settings.
type Settings struct {
	DefaultCategory     string        `mapstructure:"default_category"`
	TransactionLog      string        `mapstructure:"transaction_log"`
	HistoryDB           string        `mapstructure:"history_db"`
	FinancialCategories []string      `mapstructure:"financial_categories"`
	ExtractTimeout      time.Duration `mapstructure:"extract_timeout"`
	MaxTextLength       int           `mapstructure:"max_text_length"`
	StoredTextLength    int           `mapstructure:"stored_text_length"`
	DiscoveryDepth      int           `mapstructure:"discovery_depth"`
	SkipHidden          bool          `mapstructure:"skip_hidden"`
}

// Cohesion holds the folder-unit detection rules.
type Cohesion struct {
	Force      map[string]model.CategoryID `mapstructure:"-"`
	Exempt     []string                    `mapstructure:"exempt"`
	Deny       []string                    `mapstructure:"deny"`
	SampleSize int                         `mapstructure:"sample_size"`
	Share      float64                     `mapstructure:"share"`
}

// Tools holds paths to external extraction programs.
type Tools struct {
	Tesseract string `mapstructure:"tesseract"`
	Pdftotext string `mapstructure:"pdftotext"`
	Pdftoppm  string `mapstructure:"pdftoppm"`
}

// Vision configures the optional image classifier.
type Vision struct {
	Hints         map[model.CategoryID][]string `mapstructure:"-"`
	BaseURL       string                        `mapstructure:"base_url"`
	APIKey        string                        `mapstructure:"api_key"`
	Model         string                        `mapstructure:"model"`
	Timeout       time.Duration                 `mapstructure:"timeout"`
	MaxWidth      int                           `mapstructure:"max_width"`
	MinConfidence float64                       `mapstructure:"min_confidence"`
	Enabled       bool                          `mapstructure:"enabled"`
}

type categorySpec struct {
	Description string   `mapstructure:"description"`
	Folder      string   `mapstructure:"folder"`
	Keywords    []string `mapstructure:"keywords"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("settings.default_category", string(model.DefaultID))
	v.SetDefault("settings.transaction_log", DefaultTransactionLog)
	v.SetDefault("settings.history_db", DefaultHistoryDB)
	v.SetDefault("settings.extract_timeout", DefaultExtractTimeout)
	v.SetDefault("settings.max_text_length", DefaultMaxTextLength)
	v.SetDefault("settings.stored_text_length", DefaultStoredTextLength)
	v.SetDefault("settings.discovery_depth", DefaultDiscoveryDepth)
	v.SetDefault("settings.skip_hidden", true)

	v.SetDefault("cohesion.exempt", DefaultExemptList)
	v.SetDefault("cohesion.deny", DefaultDenyList)
	v.SetDefault("cohesion.sample_size", DefaultSampleSize)
	v.SetDefault("cohesion.share", DefaultCohesionShare)

	v.SetDefault("tools.tesseract", "tesseract")
	v.SetDefault("tools.pdftotext", "pdftotext")
	v.SetDefault("tools.pdftoppm", "pdftoppm")

	v.SetDefault("vision.base_url", "")
	v.SetDefault("vision.model", DefaultVisionModel)
	v.SetDefault("vision.timeout", DefaultExtractTimeout)
	v.SetDefault("vision.max_width", DefaultVisionMaxWidth)
	v.SetDefault("vision.min_confidence", DefaultVisionConfidence)
}

// Load reads and validates the configuration held by v. Every problem is
// reported as a *common.ConfigError.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Destination: ExpandPath(v.GetString("destination")),
	}

	if err := v.UnmarshalKey("settings", &cfg.Settings); err != nil {
		return nil, common.NewConfigError("settings", "%v", err)
	}
	if err := v.UnmarshalKey("cohesion", &cfg.Cohesion); err != nil {
		return nil, common.NewConfigError("cohesion", "%v", err)
	}
	if err := v.UnmarshalKey("tools", &cfg.Tools); err != nil {
		return nil, common.NewConfigError("tools", "%v", err)
	}
	if err := v.UnmarshalKey("vision", &cfg.Vision); err != nil {
		return nil, common.NewConfigError("vision", "%v", err)
	}

	var err error
	if cfg.Settings.TransactionLog, err = StatePath("settings.transaction_log", cfg.Settings.TransactionLog); err != nil {
		return nil, err
	}
	if cfg.Settings.HistoryDB, err = StatePath("settings.history_db", cfg.Settings.HistoryDB); err != nil {
		return nil, err
	}

	if err := cfg.Settings.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cohesion.validate(); err != nil {
		return nil, err
	}

	categories, err := loadCategories(v)
	if err != nil {
		return nil, err
	}
	cfg.Registry, err = model.NewRegistry(cfg.Settings.DefaultCategory, categories)
	if err != nil {
		return nil, err
	}

	if cfg.Cohesion.Force, err = loadForceMap(v, cfg.Registry); err != nil {
		return nil, err
	}
	if cfg.Settings.FinancialCategories, err = loadFinancial(v, cfg.Registry); err != nil {
		return nil, err
	}
	if cfg.Vision.Hints, err = loadVisionHints(v, cfg.Registry); err != nil {
		return nil, err
	}
	if cfg.Vision.Enabled && cfg.Vision.Model == "" {
		return nil, common.NewConfigError("vision.model", "required when vision is enabled")
	}

	return cfg, nil
}

func (s Settings) validate() error {
	switch {
	case s.ExtractTimeout <= 0:
		return common.NewConfigError("settings.extract_timeout", "must be positive, got %s", s.ExtractTimeout)
	case s.MaxTextLength <= 0:
		return common.NewConfigError("settings.max_text_length", "must be positive, got %d", s.MaxTextLength)
	case s.StoredTextLength < 0:
		return common.NewConfigError("settings.stored_text_length", "cannot be negative")
	case s.DiscoveryDepth < 1:
		return common.NewConfigError("settings.discovery_depth", "must be at least 1, got %d", s.DiscoveryDepth)
	case strings.TrimSpace(s.TransactionLog) == "":
		return common.NewConfigError("settings.transaction_log", "cannot be empty")
	}
	return nil
}

func (c Cohesion) validate() error {
	if c.SampleSize < 1 {
		return common.NewConfigError("cohesion.sample_size", "must be at least 1, got %d", c.SampleSize)
	}
	if c.Share <= 0 || c.Share > 1 {
		return common.NewConfigError("cohesion.share", "must be in (0, 1], got %v", c.Share)
	}
	return nil
}

// loadCategories merges configured categories over the defaults. Defaults
// keep their order; additional categories follow sorted by id.
func loadCategories(v *viper.Viper) ([]model.Category, error) {
	specs := map[string]categorySpec{}
	if v.IsSet("categories") {
		if err := v.UnmarshalKey("categories", &specs); err != nil {
			return nil, common.NewConfigError("categories", "%v", err)
		}
	}

	fromSpec := func(id string, s categorySpec) model.Category {
		return model.Category{
			ID:          model.CategoryID(id),
			Description: s.Description,
			Folder:      s.Folder,
			Keywords:    s.Keywords,
		}
	}

	var out []model.Category
	seen := make(map[string]bool, len(specs))

	if !v.GetBool("replace_default_categories") {
		for _, def := range DefaultCategories {
			id := string(def.ID)
			if s, ok := specs[id]; ok {
				out = append(out, fromSpec(id, s))
				seen[id] = true
				continue
			}
			out = append(out, def)
		}
	} else if len(specs) == 0 {
		return nil, common.NewConfigError("categories", "replace_default_categories requires at least one category")
	}

	extra := make([]string, 0, len(specs))
	for id := range specs {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		out = append(out, fromSpec(id, specs[id]))
	}

	return out, nil
}

// loadForceMap validates configured force mappings strictly. Built-in
// mappings whose category is not registered are dropped.
func loadForceMap(v *viper.Viper, reg *model.Registry) (map[string]model.CategoryID, error) {
	raw := DefaultForceMap
	strict := v.IsSet("cohesion.force")
	if strict {
		raw = v.GetStringMapString("cohesion.force")
	}

	out := make(map[string]model.CategoryID, len(raw))
	for name, category := range raw {
		id, err := reg.Resolve(category)
		if err != nil {
			if strict {
				return nil, common.NewConfigError("cohesion.force."+name, "%v", err)
			}
			continue
		}
		out[model.FoldName(name)] = id
	}
	return out, nil
}

func loadFinancial(v *viper.Viper, reg *model.Registry) ([]string, error) {
	raw := DefaultFinancialCategories
	strict := v.IsSet("settings.financial_categories")
	if strict {
		raw = v.GetStringSlice("settings.financial_categories")
	}

	out := make([]string, 0, len(raw))
	for _, name := range raw {
		id, err := reg.Resolve(name)
		if err != nil {
			if strict {
				return nil, common.NewConfigError("settings.financial_categories", "%v", err)
			}
			continue
		}
		out = append(out, string(id))
	}
	return out, nil
}

func loadVisionHints(v *viper.Viper, reg *model.Registry) (map[model.CategoryID][]string, error) {
	raw := DefaultVisionHints
	strict := v.IsSet("vision.categories")
	if strict {
		raw = map[string][]string{}
		if err := v.UnmarshalKey("vision.categories", &raw); err != nil {
			return nil, common.NewConfigError("vision.categories", "%v", err)
		}
	}

	out := make(map[model.CategoryID][]string, len(raw))
	for name, hints := range raw {
		id, err := reg.Resolve(name)
		if err != nil {
			if strict {
				return nil, common.NewConfigError("vision.categories."+name, "%v", err)
			}
			continue
		}
		out[id] = hints
	}
	return out, nil
}

// String summarizes the loaded configuration for debug logging.
func (c *Config) String() string {
	return fmt.Sprintf("destination=%s categories=%d default=%s ledger=%s",
		c.Destination, len(c.Registry.Categories()), c.Registry.Default(), c.Settings.TransactionLog)
}
