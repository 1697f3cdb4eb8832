package retrieval

import (
	"testing"

	"github.com/docuquery/docuquery/model"
	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	t.Run("Indonesian question words are dropped", func(t *testing.T) {
		keywords := ExtractKeywords("Berapa aset lancar?")
		assert.Equal(t, []string{"aset", "lancar"}, keywords)
	})

	t.Run("English question words are dropped", func(t *testing.T) {
		keywords := ExtractKeywords("What was the total revenue in 2024?")
		assert.Equal(t, []string{"total", "revenue", "2024"}, keywords)
	})

	t.Run("Tokens are lowercased and punctuation stripped", func(t *testing.T) {
		keywords := ExtractKeywords("REVENUE, profit; margin!")
		assert.Equal(t, []string{"revenue", "profit", "margin"}, keywords)
	})

	t.Run("Short tokens are dropped", func(t *testing.T) {
		keywords := ExtractKeywords("go vs net income")
		assert.Equal(t, []string{"net", "income"}, keywords)
	})

	t.Run("Duplicates are removed preserving first position", func(t *testing.T) {
		keywords := ExtractKeywords("revenue growth revenue margin")
		assert.Equal(t, []string{"revenue", "growth", "margin"}, keywords)
	})

	t.Run("Question of only stop-words yields nothing", func(t *testing.T) {
		keywords := ExtractKeywords("What is this?")
		assert.Empty(t, keywords)
	})

	t.Run("Empty question yields nothing", func(t *testing.T) {
		assert.Empty(t, ExtractKeywords(""))
	})
}

func TestMatchKeywords(t *testing.T) {
	results := []model.SearchResult{
		{Text: "Aset lancar perusahaan sebesar 120 miliar rupiah."},
		{Text: "Total revenue grew in the last quarter."},
	}

	t.Run("Matches are case-insensitive", func(t *testing.T) {
		matches := MatchKeywords([]string{"aset", "revenue"}, results)
		assert.Equal(t, []string{"aset", "revenue"}, matches)
	})

	t.Run("Unmatched keywords are omitted", func(t *testing.T) {
		matches := MatchKeywords([]string{"liabilitas", "aset"}, results)
		assert.Equal(t, []string{"aset"}, matches)
	})

	t.Run("No keywords yields no matches", func(t *testing.T) {
		assert.Empty(t, MatchKeywords(nil, results))
	})

	t.Run("No results yields no matches", func(t *testing.T) {
		assert.Empty(t, MatchKeywords([]string{"aset"}, nil))
	})
}
