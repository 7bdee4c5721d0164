package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylebook/internal/domain"
)

func TestFuzzyScore(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		query     string
		wantScore int
		wantMin   int // use this for relative comparisons
	}{
		{
			name:      "exact match",
			target:    "world_map",
			query:     "world_map",
			wantScore: 150, // 100 for contains + 50 for prefix
		},
		{
			name:      "prefix match",
			target:    "A4 Portrait",
			query:     "a4",
			wantScore: 150,
		},
		{
			name:      "substring match",
			target:    "Flood extent map",
			query:     "extent",
			wantScore: 100, // contains only
		},
		{
			name:    "fuzzy across words",
			target:  "index_map",
			query:   "imap",
			wantMin: 20, // start of string and start of word
		},
		{
			name:      "no match",
			target:    "world_map",
			query:     "xyz",
			wantScore: 0,
		},
		{
			name:      "empty query",
			target:    "world_map",
			query:     "",
			wantScore: 0,
		},
		{
			name:      "accent insensitive",
			target:    "Légende des cartes",
			query:     "legende",
			wantScore: 150,
		},
		{
			name:    "case insensitive",
			target:  "WORLD MAP",
			query:   "world",
			wantMin: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := FuzzyScore(tt.target, tt.query)

			if tt.wantScore > 0 {
				if score != tt.wantScore {
					t.Errorf("expected score %d, got %d", tt.wantScore, score)
				}
			} else if tt.wantMin > 0 {
				if score < tt.wantMin {
					t.Errorf("expected score >= %d, got %d", tt.wantMin, score)
				}
			} else {
				if score != 0 {
					t.Errorf("expected score 0, got %d", score)
				}
			}
		})
	}
}

func TestFuzzyScore_Ordering(t *testing.T) {
	query := "portrait"

	exactScore := FuzzyScore("portrait", query)
	prefixScore := FuzzyScore("portrait a4", query)
	containsScore := FuzzyScore("a4 portrait", query)
	fuzzyScore := FuzzyScore("p.o.r.t.r.a.i.t", query)

	if exactScore < prefixScore {
		t.Errorf("exact match should score >= prefix: %d < %d", exactScore, prefixScore)
	}
	if prefixScore < containsScore {
		t.Errorf("prefix match should score >= contains: %d < %d", prefixScore, containsScore)
	}
	if containsScore <= fuzzyScore {
		t.Errorf("contains match should score higher than fuzzy: %d <= %d", containsScore, fuzzyScore)
	}
}

func TestFuzzyScore_LongFuzzyStaysBelowSubstring(t *testing.T) {
	for _, query := range []string{"portrait", "landscape_a3", "humanitarian"} {
		spread := strings.Join(strings.Split(query, ""), ".")
		fuzzy := FuzzyScore(spread, query)
		assert.Positive(t, fuzzy, "%q should fuzzy match %q", query, spread)
		assert.Less(t, fuzzy, FuzzyScore("x "+query, query), "query %q", query)
	}
}

func TestSearchCatalogCommand(t *testing.T) {
	f := newFixture(t)
	hot := f.addHOT(t)

	osm := domain.NewProfile("OSM")
	require.NoError(t, f.app.Profiles.Save(f.ctx, osm))
	_, err := f.app.Catalogs.Reconcile(f.ctx, osm.ID, []domain.CatalogEntry{
		{ID: domain.Some("o1"), Name: domain.Some("osm_map"), Title: domain.Some("OSM carto map")},
		{ID: domain.Some("o2"), Name: domain.Some("roads")},
	}, domain.KindSymbology)
	require.NoError(t, err)
	_, err = f.app.Catalogs.Reconcile(f.ctx, hot.ID, []domain.CatalogEntry{
		{ID: domain.Some("h1"), Name: domain.Some("map_grid"), Title: domain.Some("Map grid")},
	}, domain.KindTemplates)
	require.NoError(t, err)

	t.Run("ranks prefix matches first", func(t *testing.T) {
		hits, err := NewSearchCatalogCommand(f.app, "map").Execute(f.ctx)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "h1", hits[0].Entry.ID.Or(""))
		assert.Equal(t, hot.ID, hits[0].Profile.ID)
		assert.Equal(t, domain.KindTemplates, hits[0].Kind)
		assert.Equal(t, "o1", hits[1].Entry.ID.Or(""))
	})

	t.Run("kind filter and limit", func(t *testing.T) {
		c := NewSearchCatalogCommand(f.app, "map")
		c.Kinds = []domain.CatalogKind{domain.KindSymbology}
		c.Limit = 1
		hits, err := c.Execute(f.ctx)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "o1", hits[0].Entry.ID.Or(""))
	})

	t.Run("short query", func(t *testing.T) {
		hits, err := NewSearchCatalogCommand(f.app, "m").Execute(f.ctx)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}
