// Package categories builds category registries for tests.
//
// Example usage:
//
//	reg := categories.NewBuilder(t).
//		WithFixture(categories.FixtureOffice).
//		WithCategory("housing", "lease").
//		Build()
package categories

import (
	"testing"

	"github.com/Veraticus/sortsense/internal/model"
)

// Builder assembles a registry. Categories keep the order they were added
// in, which decides keyword score ties.
type Builder struct {
	t          *testing.T
	index      map[model.CategoryID]int
	defaultID  string
	categories []model.Category
}

// NewBuilder creates a builder whose default category is "unsorted".
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{
		t:         t,
		index:     make(map[model.CategoryID]int),
		defaultID: string(model.DefaultID),
	}
}

// WithDefault sets the default category id.
func (b *Builder) WithDefault(id string) *Builder {
	b.defaultID = id
	return b
}

// WithCategory adds a category stored in a folder named after its id. Adding
// an id twice replaces the earlier definition in place.
func (b *Builder) WithCategory(id model.CategoryID, keywords ...string) *Builder {
	return b.With(model.Category{ID: id, Folder: string(id), Keywords: keywords})
}

// WithFolder adds a category stored under folder.
func (b *Builder) WithFolder(id model.CategoryID, folder string, keywords ...string) *Builder {
	return b.With(model.Category{ID: id, Folder: folder, Keywords: keywords})
}

// With adds a fully specified category.
func (b *Builder) With(c model.Category) *Builder {
	if i, ok := b.index[c.ID]; ok {
		b.categories[i] = c
		return b
	}
	b.index[c.ID] = len(b.categories)
	b.categories = append(b.categories, c)
	return b
}

// WithFixture adds every category of fixture.
func (b *Builder) WithFixture(fixture Fixture) *Builder {
	for _, c := range fixture.Categories {
		b.With(c)
	}
	return b
}

// Build validates the categories and returns the registry. Invalid input
// fails the test.
func (b *Builder) Build() *model.Registry {
	b.t.Helper()
	reg, err := model.NewRegistry(b.defaultID, b.categories)
	if err != nil {
		b.t.Fatalf("failed to build test registry: %v", err)
	}
	return reg
}
