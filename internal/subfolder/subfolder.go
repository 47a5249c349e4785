// Package subfolder derives an optional extra path segment beneath a
// category folder.
package subfolder

import (
	"strings"

	"github.com/Veraticus/sortsense/internal/model"
)

// Institution maps a subfolder name to the text fragments that identify it.
type Institution struct {
	Name     string
	Patterns []string
}

// Institutions is checked in order; the first institution with a matching
// pattern wins.
var Institutions = []Institution{
	{Name: "chase", Patterns: []string{"chase", "jpmorgan"}},
	{Name: "bank-of-america", Patterns: []string{"bank of america", "bankofamerica"}},
	{Name: "wells-fargo", Patterns: []string{"wells fargo", "wellsfargo"}},
	{Name: "citi", Patterns: []string{"citibank", "citi card", "citigroup"}},
	{Name: "capital-one", Patterns: []string{"capital one", "capitalone"}},
	{Name: "american-express", Patterns: []string{"american express", "amex"}},
	{Name: "discover", Patterns: []string{"discover card", "discover bank"}},
	{Name: "us-bank", Patterns: []string{"u.s. bank", "usbank"}},
	{Name: "fidelity", Patterns: []string{"fidelity"}},
	{Name: "vanguard", Patterns: []string{"vanguard"}},
	{Name: "schwab", Patterns: []string{"schwab"}},
	{Name: "paypal", Patterns: []string{"paypal"}},
	{Name: "venmo", Patterns: []string{"venmo"}},
}

// GenericNames are container directory names that never become subfolders.
var GenericNames = []string{
	"downloads", "download", "desktop", "documents", "home", "users",
	"tmp", "temp", "inbox", "new folder", "untitled folder", "misc",
}

// Detector picks a subfolder from a file's parent directory or, for
// financial categories, from institution names in its text.
type Detector struct {
	generic      map[string]bool
	financial    map[model.CategoryID]bool
	institutions []Institution
}

// NewDetector creates a detector for the given financial categories.
func NewDetector(financial []string) *Detector {
	d := &Detector{
		generic:      make(map[string]bool, len(GenericNames)),
		financial:    make(map[model.CategoryID]bool, len(financial)),
		institutions: Institutions,
	}
	for _, n := range GenericNames {
		d.generic[model.FoldName(n)] = true
	}
	for _, c := range financial {
		d.financial[model.CategoryID(model.FoldName(c))] = true
	}
	return d
}

// Detect returns the subfolder for a file, or "" when there is none.
// parentName is the name of the file's immediate parent directory and is
// empty when the file sits directly in the scanned root.
func (d *Detector) Detect(parentName, text string, category model.CategoryID) string {
	parent := strings.TrimSpace(parentName)
	if parent != "" && !model.IsHidden(parent) && !d.generic[model.FoldName(parent)] {
		if seg := model.NormalizeSegment(parent); seg != "" {
			return seg
		}
	}

	if !d.financial[category] {
		return ""
	}

	lowered := strings.ToLower(text)
	for _, inst := range d.institutions {
		for _, p := range inst.Patterns {
			if strings.Contains(lowered, p) {
				return inst.Name
			}
		}
	}
	return ""
}
