// Package classify assigns categories to file content.
package classify

import (
	"strings"

	"github.com/Veraticus/sortsense/internal/model"
)

// Keyword scores categories by counting case-insensitive keyword matches in
// a file's text and name.
type Keyword struct {
	registry *model.Registry
}

// NewKeyword creates a keyword classifier over the registry's categories.
func NewKeyword(registry *model.Registry) *Keyword {
	return &Keyword{registry: registry}
}

// Classify returns the best category, its keyword score and the matched
// keywords. Ties go to the category that comes first in the registry. When
// nothing matches the default category is returned with a zero score.
func (k *Keyword) Classify(text, filename string) (model.CategoryID, model.Confidence, []string) {
	combined := strings.ToLower(text + " " + filename)

	best := k.registry.Default()
	bestScore := 0
	var bestMatches []string

	for _, c := range k.registry.Categories() {
		var matched []string
		for _, kw := range c.Keywords {
			if strings.Contains(combined, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > bestScore {
			best = c.ID
			bestScore = len(matched)
			bestMatches = matched
		}
	}

	return best, model.KeywordScore(bestScore), bestMatches
}
