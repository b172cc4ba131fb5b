package search

import (
	"strings"
	"testing"
)

func TestDetectCategory(t *testing.T) {
	cases := []struct {
		topic string
		want  Category
	}{
		{"parliament election reform", CategoryPolitics},
		{"medieval trade routes history", CategoryHistory},
		{"rivers of the Amazon basin", CategoryGeography},
		{"machine learning algorithms", CategoryTechnology},
		{"inflation and market trends", CategoryEconomics},
		{"peer effects in biology experiments", CategoryScience},
		{"renewable energy storage", CategoryGeneral},
		// Earlier categories win when signals overlap.
		{"history of political elections", CategoryPolitics},
	}
	for _, c := range cases {
		if got := DetectCategory(c.topic); got != c.want {
			t.Fatalf("DetectCategory(%q) = %q, want %q", c.topic, got, c.want)
		}
	}
}

func TestBuildQueries_SiteTargetedVariants(t *testing.T) {
	topic := "inflation and market trends"
	queries := BuildQueries(topic)

	if queries[0] != topic {
		t.Fatalf("first query must be the bare topic, got %q", queries[0])
	}
	wantSite := topic + " site:reuters.com"
	wantKeyword := topic + " forecast"
	var haveSite, haveKeyword, havePhrase bool
	for _, q := range queries {
		switch q {
		case wantSite:
			haveSite = true
		case wantKeyword:
			haveKeyword = true
		case `"` + topic + `"`:
			havePhrase = true
		}
	}
	if !haveSite {
		t.Fatalf("expected site-targeted variant %q in %v", wantSite, queries)
	}
	if !haveKeyword {
		t.Fatalf("expected category keyword variant %q in %v", wantKeyword, queries)
	}
	if !havePhrase {
		t.Fatalf("expected exact-phrase variant in %v", queries)
	}

	siteCount := 0
	for _, q := range queries {
		if strings.Contains(q, " site:") {
			siteCount++
		}
	}
	if siteCount != siteQueryDomains {
		t.Fatalf("expected %d site-targeted variants, got %d", siteQueryDomains, siteCount)
	}
}

func TestBuildQueries_GeneralTopicFallsBack(t *testing.T) {
	queries := BuildQueries("renewable energy storage")
	var haveWikipedia bool
	for _, q := range queries {
		if strings.HasSuffix(q, "site:wikipedia.org") {
			haveWikipedia = true
		}
	}
	if !haveWikipedia {
		t.Fatalf("general topics must target the general outlets, got %v", queries)
	}
}

func TestBuildQueries_RecencyOnlyForTimeSensitiveCategories(t *testing.T) {
	tech := BuildQueries("machine learning algorithms")
	if !containsQuery(tech, "machine learning algorithms latest") {
		t.Fatalf("expected recency variant for technology topic, got %v", tech)
	}
	hist := BuildQueries("medieval trade routes history")
	if containsQuery(hist, "medieval trade routes history latest") {
		t.Fatalf("history topics must not get recency variants, got %v", hist)
	}
}

func TestBuildQueries_NoDuplicates(t *testing.T) {
	queries := BuildQueries("breaking news about elections")
	seen := map[string]struct{}{}
	for _, q := range queries {
		if _, dup := seen[q]; dup {
			t.Fatalf("duplicate query %q in %v", q, queries)
		}
		seen[q] = struct{}{}
	}
}

func containsQuery(queries []string, want string) bool {
	for _, q := range queries {
		if q == want {
			return true
		}
	}
	return false
}
