// Package model defines the core domain models for sortsense.
package model

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/Veraticus/sortsense/internal/common"
)

// CategoryID identifies a category in a Registry. Values outside the
// registry are rejected by Registry.Resolve.
type CategoryID string

// Reserved category identifiers.
const (
	// MiscID is the catch-all category used by the misc threshold.
	MiscID CategoryID = "misc"
	// AppsID receives application bundles.
	AppsID CategoryID = "downloaded-apps"
	// DefaultID is the fallback category when none is configured.
	DefaultID CategoryID = "unsorted"
)

// Aliases that always resolve to the registry's default category.
var defaultAliases = []string{"uncategorized", "unsorted"}

// ErrUnknownCategory is returned when a category name is not in the registry.
var ErrUnknownCategory = errors.New("unknown category")

// Category is a named bucket with a destination folder and keyword list.
type Category struct {
	ID          CategoryID `json:"id"`
	Description string     `json:"description"`
	Folder      string     `json:"folder"`
	Keywords    []string   `json:"keywords,omitempty"`
}

// Leaf returns the last segment of the category folder.
func (c Category) Leaf() string {
	return path.Base(c.Folder)
}

// Registry is the validated, read-only set of categories for a run.
type Registry struct {
	byID      map[CategoryID]Category
	aliases   map[string]CategoryID
	order     []CategoryID
	defaultID CategoryID
}

// NewRegistry validates categories and builds a registry. Categories keep the
// given order, which decides keyword score ties. The default, misc and
// application categories are added when absent.
func NewRegistry(defaultID string, categories []Category) (*Registry, error) {
	def := CategoryID(FoldName(defaultID))
	if def == "" {
		def = DefaultID
	}
	if err := validateID(def); err != nil {
		return nil, common.NewConfigError("settings.default_category", "%v", err)
	}

	r := &Registry{
		byID:      make(map[CategoryID]Category, len(categories)+3),
		aliases:   make(map[string]CategoryID, len(defaultAliases)),
		defaultID: def,
	}

	for _, c := range categories {
		if err := r.add(c); err != nil {
			return nil, err
		}
	}

	builtins := []Category{
		{ID: def, Description: "Files without a confident category", Folder: string(def)},
		{ID: MiscID, Description: "Uncategorized files", Folder: "personal/misc"},
		{ID: AppsID, Description: "Downloaded applications", Folder: "downloaded-apps"},
	}
	for _, c := range builtins {
		if _, ok := r.byID[c.ID]; ok {
			continue
		}
		if err := r.add(c); err != nil {
			return nil, err
		}
	}

	for _, alias := range defaultAliases {
		if CategoryID(alias) != def {
			r.aliases[alias] = def
		}
	}

	if err := r.checkLeaves(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Registry) add(c Category) error {
	c.ID = CategoryID(FoldName(string(c.ID)))
	key := "categories." + string(c.ID)
	if err := validateID(c.ID); err != nil {
		return common.NewConfigError(key, "%v", err)
	}
	if _, dup := r.byID[c.ID]; dup {
		return common.NewConfigError(key, "duplicate category")
	}

	folder := strings.TrimSpace(c.Folder)
	if folder == "" {
		folder = string(c.ID)
	}
	folder = strings.Trim(path.Clean(strings.ReplaceAll(folder, `\`, "/")), "/")
	if folder == "" || folder == "." {
		return common.NewConfigError(key, "folder must name a directory")
	}
	for _, seg := range strings.Split(folder, "/") {
		if seg == ".." {
			return common.NewConfigError(key, "folder %q escapes the destination root", c.Folder)
		}
	}
	c.Folder = folder

	keywords := make([]string, 0, len(c.Keywords))
	for _, kw := range c.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	c.Keywords = keywords

	r.byID[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

// checkLeaves rejects two categories whose folders end in the same name,
// since discovery keys folders by leaf.
func (r *Registry) checkLeaves() error {
	seen := make(map[string]CategoryID, len(r.order))
	for _, id := range r.order {
		leaf := FoldName(r.byID[id].Leaf())
		if other, ok := seen[leaf]; ok {
			return common.NewConfigError("categories."+string(id),
				"folder name %q already used by category %q", leaf, other)
		}
		seen[leaf] = id
	}
	return nil
}

func validateID(id CategoryID) error {
	if id == "" {
		return errors.New("category id cannot be empty")
	}
	for _, r := range string(id) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("category id %q may only contain letters, digits, '-' and '_'", id)
		}
	}
	return nil
}

// Resolve turns a raw category name into a registered CategoryID.
func (r *Registry) Resolve(name string) (CategoryID, error) {
	key := FoldName(name)
	if target, ok := r.aliases[key]; ok {
		return target, nil
	}
	id := CategoryID(key)
	if _, ok := r.byID[id]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Get returns the category for id.
func (r *Registry) Get(id CategoryID) (Category, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Folder returns the configured folder for id, or the id itself when unknown.
func (r *Registry) Folder(id CategoryID) string {
	if c, ok := r.byID[id]; ok {
		return c.Folder
	}
	return string(id)
}

// Default returns the default category id.
func (r *Registry) Default() CategoryID {
	return r.defaultID
}

// IsDefault reports whether id is the default category.
func (r *Registry) IsDefault(id CategoryID) bool {
	return id == r.defaultID
}

// Categories returns all categories in registry order.
func (r *Registry) Categories() []Category {
	out := make([]Category, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// IDs returns the registered ids sorted alphabetically.
func (r *Registry) IDs() []CategoryID {
	ids := append([]CategoryID(nil), r.order...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// LeafNames maps every category's folder leaf (case-folded) to its id.
func (r *Registry) LeafNames() map[string]CategoryID {
	out := make(map[string]CategoryID, len(r.order))
	for _, id := range r.order {
		out[FoldName(r.byID[id].Leaf())] = id
	}
	return out
}
