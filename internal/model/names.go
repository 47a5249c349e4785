package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FoldName case-folds a folder or category name for comparisons.
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// NormalizeSegment lowercases a directory name and replaces whitespace runs
// with single dashes.
func NormalizeSegment(name string) string {
	fields := strings.Fields(cases.Lower(language.Und).String(name))
	return strings.Join(fields, "-")
}

// IsHidden reports whether a file or directory name is hidden.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
