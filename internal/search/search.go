package search

import (
	"github.com/nikbrunner/netmark/internal/model"
	"github.com/sahilm/fuzzy"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Bookmark       model.Bookmark
	MatchedIndexes []int // indexes into Text
	Score          int
	Text           string
}

// haystack implements fuzzy.Source over "name value" strings.
type haystack []model.Bookmark

func (h haystack) String(i int) string {
	return Text(h[i])
}

func (h haystack) Len() int {
	return len(h)
}

// Text is the string a bookmark is matched against.
func Text(b model.Bookmark) string {
	return b.Name + " " + b.Value
}

// FuzzySearchBookmarks searches the non-trash bookmarks of one organization
// by name and value using fuzzy matching.
// Returns results sorted by match score (best first).
func FuzzySearchBookmarks(state *model.AppState, orgID, query string) []SearchResult {
	if query == "" {
		return nil
	}

	var candidates haystack
	for _, b := range state.GetBookmarksInOrg(orgID) {
		if !b.InTrash() {
			candidates = append(candidates, b)
		}
	}

	// Run fuzzy matching
	matches := fuzzy.FindFrom(query, candidates)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Bookmark:       candidates[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
			Text:           m.Str,
		}
	}

	return results
}
