package commands

import (
	"context"
	"sort"
	"strings"

	"github.com/mozillazg/go-unidecode"

	"stylebook/internal/application"
	"stylebook/internal/domain"
)

// SearchHit is a catalog entry matching a search, with its location and
// relevance score
type SearchHit struct {
	Profile *domain.Profile
	Kind    domain.CatalogKind
	Entry   domain.CatalogEntry
	Score   int
}

// SearchCatalogCommand searches the stored catalogs of every profile with
// fuzzy matching on id, name and title
type SearchCatalogCommand struct {
	app   *application.App
	Query string
	// Kinds limits the search; empty means every kind
	Kinds []domain.CatalogKind
	// Limit caps the hits returned; zero means no cap
	Limit int
}

// NewSearchCatalogCommand creates a new SearchCatalogCommand
func NewSearchCatalogCommand(app *application.App, query string) *SearchCatalogCommand {
	return &SearchCatalogCommand{
		app:   app,
		Query: query,
	}
}

// Execute returns the hits ordered by descending score. Queries shorter
// than two characters return nothing.
func (c *SearchCatalogCommand) Execute(ctx context.Context) ([]SearchHit, error) {
	query := strings.TrimSpace(c.Query)
	if len(query) < 2 {
		return nil, nil
	}

	kinds := c.Kinds
	if len(kinds) == 0 {
		kinds = domain.CatalogKinds
	}

	profiles, err := c.app.Profiles.List(ctx)
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	for _, p := range profiles {
		for _, kind := range kinds {
			for _, e := range p.Entries(kind) {
				score := max(
					FuzzyScore(e.ID.Or(""), query),
					FuzzyScore(e.Name.Or(""), query),
					FuzzyScore(e.Title.Or(""), query),
				)
				if score > 0 {
					hits = append(hits, SearchHit{Profile: p, Kind: kind, Entry: e, Score: score})
				}
			}
		}
	}

	// stable keeps store order among equal scores
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if c.Limit > 0 && len(hits) > c.Limit {
		hits = hits[:c.Limit]
	}
	return hits, nil
}

// fold lowercases s and transliterates it to ASCII so "legende" finds
// "Légende"
func fold(s string) string {
	return strings.ToLower(unidecode.Unidecode(s))
}

// maxFuzzyScore keeps every fuzzy match below the plain substring score
// of 100, however long the query
const maxFuzzyScore = 99

// FuzzyScore calculates a relevance score for how well target matches
// query, ignoring case and accents
func FuzzyScore(target, query string) int {
	target = fold(target)
	query = fold(query)

	if len(query) == 0 {
		return 0
	}

	// Substring matches rank above any fuzzy match
	if strings.Contains(target, query) {
		score := 100
		if strings.HasPrefix(target, query) {
			score += 50
		}
		return score
	}

	// Fuzzy match: every query char appears in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] != query[queryIdx] {
			continue
		}
		if prevMatchIdx == i-1 {
			score += 10 // consecutive chars
		}
		if i == 0 {
			score += 15 // start of string
		}
		if i > 0 && isSeparator(target[i-1]) {
			score += 10 // start of a word
		}
		score++
		prevMatchIdx = i
		queryIdx++
	}

	if queryIdx == len(query) {
		return min(score, maxFuzzyScore)
	}
	return 0
}

// isSeparator reports word breaks common in template and style names
func isSeparator(b byte) bool {
	switch b {
	case ' ', '_', '-', '.', '/':
		return true
	}
	return false
}
