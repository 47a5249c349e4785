package categories

import "github.com/Veraticus/sortsense/internal/model"

// Fixture is a named, reusable set of categories.
type Fixture struct {
	Name       string
	Categories []model.Category
}

// Predefined fixtures for common test scenarios.
var (
	// FixtureOffice covers paperwork with short keyword lists, so a single
	// word decides a file's category.
	FixtureOffice = Fixture{
		Name: "Office",
		Categories: []model.Category{
			{ID: "work", Folder: "work", Keywords: []string{"invoice", "meeting"}},
			{ID: "health", Folder: "health", Keywords: []string{"doctor", "prescription"}},
			{ID: "documents", Folder: "documents", Keywords: []string{"bank statement", "account"}},
			{ID: "photos", Folder: "photos"},
		},
	}

	// FixtureFolders has categories without keywords, for tests that only
	// route by category.
	FixtureFolders = Fixture{
		Name: "Folders",
		Categories: []model.Category{
			{ID: "work", Folder: "work"},
			{ID: "health", Folder: "health"},
			{ID: "housing", Folder: "housing"},
			{ID: "documents", Folder: "documents"},
		},
	}
)
