package classify

import (
	"testing"

	"github.com/Veraticus/sortsense/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyword_Classify(t *testing.T) {
	reg, err := model.NewRegistry("unsorted", []model.Category{
		{ID: "documents", Keywords: []string{"invoice", "bank", "statement"}},
		{ID: "work", Keywords: []string{"resume", "interview", "statement"}},
		{ID: "health", Keywords: []string{"doctor"}},
	})
	require.NoError(t, err)
	k := NewKeyword(reg)

	tests := []struct {
		name      string
		text      string
		filename  string
		want      model.CategoryID
		wantScore int
		matches   []string
	}{
		{name: "text match", text: "Monthly BANK Statement", filename: "scan.pdf", want: "documents", wantScore: 2, matches: []string{"bank", "statement"}},
		{name: "filename match", text: "", filename: "My_Resume.docx", want: "work", wantScore: 1, matches: []string{"resume"}},
		{name: "tie goes to first category", text: "statement", filename: "", want: "documents", wantScore: 1, matches: []string{"statement"}},
		{name: "no match", text: "lorem ipsum", filename: "x.bin", want: "unsorted", wantScore: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conf, matches := k.Classify(tt.text, tt.filename)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, model.KeywordScore(tt.wantScore), conf)
			assert.Equal(t, tt.matches, matches)
		})
	}
}
