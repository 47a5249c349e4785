package subfolder

import (
	"testing"

	"github.com/Veraticus/sortsense/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	d := NewDetector([]string{"documents", "Finance"})

	tests := []struct {
		name     string
		parent   string
		text     string
		category string
		want     string
	}{
		{name: "meaningful parent", parent: "Tax Stuff", text: "", category: "documents", want: "tax-stuff"},
		{name: "parent wins over institution", parent: "Apartment", text: "Chase statement", category: "documents", want: "apartment"},
		{name: "generic parent falls back to institution", parent: "Downloads", text: "Your CHASE statement", category: "documents", want: "chase"},
		{name: "root file", parent: "", text: "Wells Fargo account summary", category: "finance", want: "wells-fargo"},
		{name: "hidden parent ignored", parent: ".cache", text: "", category: "work", want: ""},
		{name: "non financial category", parent: "Desktop", text: "chase bank", category: "work", want: ""},
		{name: "no institution", parent: "desktop", text: "quarterly statement", category: "documents", want: ""},
		{name: "table order decides", parent: "", text: "paypal transfer from chase", category: "documents", want: "chase"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.parent, tt.text, model.CategoryID(tt.category)))
		})
	}
}
