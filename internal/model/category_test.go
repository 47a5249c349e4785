package model

import (
	"errors"
	"testing"

	"github.com/Veraticus/sortsense/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_AddsReservedCategories(t *testing.T) {
	reg, err := NewRegistry("unsorted", []Category{
		{ID: "work", Folder: "work", Keywords: []string{" Resume ", ""}},
	})
	require.NoError(t, err)

	assert.Equal(t, CategoryID("unsorted"), reg.Default())
	for _, id := range []CategoryID{"work", "unsorted", MiscID, AppsID} {
		_, ok := reg.Get(id)
		assert.True(t, ok, "expected %s in registry", id)
	}

	work, _ := reg.Get("work")
	assert.Equal(t, []string{"resume"}, work.Keywords)
	assert.Equal(t, "personal/misc", reg.Folder(MiscID))
}

func TestRegistry_ResolveAliases(t *testing.T) {
	reg, err := NewRegistry("inbox", []Category{{ID: "housing"}})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  CategoryID
	}{
		{name: "uncategorized alias", input: "uncategorized", want: "inbox"},
		{name: "unsorted alias", input: "Unsorted", want: "inbox"},
		{name: "registered id", input: " HOUSING ", want: "housing"},
		{name: "default id", input: "inbox", want: "inbox"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.Resolve(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = reg.Resolve("taxes")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name       string
		categories []Category
	}{
		{name: "duplicate id", categories: []Category{{ID: "work"}, {ID: "WORK"}}},
		{name: "bad id", categories: []Category{{ID: "my stuff"}}},
		{name: "escaping folder", categories: []Category{{ID: "work", Folder: "../work"}}},
		{name: "duplicate leaf", categories: []Category{{ID: "work", Folder: "a/docs"}, {ID: "school", Folder: "b/docs"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry("unsorted", tt.categories)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)

			var cfgErr *common.ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestRegistry_LeafNamesAndOrder(t *testing.T) {
	reg, err := NewRegistry("unsorted", []Category{
		{ID: "work", Folder: "Work"},
		{ID: "finance", Folder: "documents/Finance"},
	})
	require.NoError(t, err)

	leaves := reg.LeafNames()
	assert.Equal(t, CategoryID("work"), leaves["work"])
	assert.Equal(t, CategoryID("finance"), leaves["finance"])
	assert.Equal(t, CategoryID(MiscID), leaves["misc"])

	cats := reg.Categories()
	require.GreaterOrEqual(t, len(cats), 2)
	assert.Equal(t, CategoryID("work"), cats[0].ID)
	assert.Equal(t, CategoryID("finance"), cats[1].ID)
}

func TestNormalizeSegment(t *testing.T) {
	assert.Equal(t, "tax-stuff", NormalizeSegment("Tax Stuff"))
	assert.Equal(t, "a-b", NormalizeSegment("  A   B "))
	assert.Equal(t, "projects", FoldName(" Projects"))
}
