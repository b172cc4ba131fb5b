package search

import "strings"

// Category groups topics so query expansion can target outlets that cover
// them well.
type Category string

const (
	CategoryPolitics       Category = "politics"
	CategoryHistory        Category = "history"
	CategoryGeography      Category = "geography"
	CategoryCurrentAffairs Category = "current_affairs"
	CategoryTechnology     Category = "technology"
	CategoryWar            Category = "war"
	CategoryEconomics      Category = "economics"
	CategoryScience        Category = "science"
	CategoryGeneral        Category = "general"
)

// categorySignals is checked in order; the first category with a matching
// signal wins, so a "history of political warfare" topic lands on politics.
var categorySignals = []struct {
	category Category
	signals  []string
}{
	{CategoryPolitics, []string{"politic", "government", "policy", "election", "democracy", "parliament", "congress", "senate", "president", "minister", "diplomacy", "foreign policy", "international relations"}},
	{CategoryHistory, []string{"history", "historical", "ancient", "medieval", "world war", "civilization", "empire", "dynasty", "revolution", "century", "heritage"}},
	{CategoryGeography, []string{"geograph", "country", "continent", "ocean", "mountain", "river", "climate", "population", "capital", "border", "territory"}},
	{CategoryCurrentAffairs, []string{"current", "news", "today", "recent", "latest", "breaking", "this year", "now"}},
	{CategoryTechnology, []string{"technolog", "artificial intelligence", "machine learning", "software", "hardware", "computer", "digital", "programming", "algorithm", "cybersecurity"}},
	{CategoryWar, []string{"war", "conflict", "battle", "military", "army", "defense", "weapon", "combat", "invasion"}},
	{CategoryEconomics, []string{"econom", "finance", "financial", "market", "trade", "business", "industry", "gdp", "inflation", "recession"}},
	{CategoryScience, []string{"science", "scientific", "research", "study", "experiment", "discovery", "physics", "chemistry", "biology", "medicine", "health"}},
}

// DetectCategory classifies a topic by keyword signals. Unrecognized topics
// fall back to CategoryGeneral.
func DetectCategory(topic string) Category {
	lower := strings.ToLower(topic)
	for _, entry := range categorySignals {
		for _, signal := range entry.signals {
			if strings.Contains(lower, signal) {
				return entry.category
			}
		}
	}
	return CategoryGeneral
}

// categoryDomains are outlets with consistently extractable coverage of a
// category, used for site-targeted query variants.
var categoryDomains = map[Category][]string{
	CategoryPolitics:       {"reuters.com", "bbc.com", "politico.com", "foreignaffairs.com", "brookings.edu"},
	CategoryHistory:        {"britannica.com", "history.com", "smithsonianmag.com", "worldhistory.org"},
	CategoryGeography:      {"nationalgeographic.com", "worldatlas.com", "britannica.com", "worldbank.org"},
	CategoryCurrentAffairs: {"reuters.com", "bbc.com", "apnews.com", "npr.org", "theguardian.com"},
	CategoryTechnology:     {"techcrunch.com", "wired.com", "ieee.org", "nature.com", "mit.edu"},
	CategoryWar:            {"janes.com", "defensenews.com", "csis.org", "rand.org"},
	CategoryEconomics:      {"reuters.com", "bloomberg.com", "economist.com", "worldbank.org", "imf.org"},
	CategoryScience:        {"nature.com", "scientificamerican.com", "newscientist.com", "pnas.org"},
	CategoryGeneral:        {"wikipedia.org", "britannica.com", "reuters.com", "bbc.com"},
}

// categoryKeywords bias additional query variants toward the material a
// category tends to publish.
var categoryKeywords = map[Category][]string{
	CategoryPolitics:       {"policy", "official statement", "legislation"},
	CategoryHistory:        {"timeline", "primary source", "historian"},
	CategoryGeography:      {"statistics", "demographic", "atlas"},
	CategoryCurrentAffairs: {"latest", "developing", "headlines"},
	CategoryTechnology:     {"innovation", "breakthrough", "emerging"},
	CategoryWar:            {"strategy", "assessment", "briefing"},
	CategoryEconomics:      {"forecast", "market data", "outlook"},
	CategoryScience:        {"peer-reviewed", "findings", "methodology"},
	CategoryGeneral:        {"overview", "explanation", "background"},
}

// recencyCategories get time-biased query variants on top of the rest.
var recencyCategories = map[Category]bool{
	CategoryCurrentAffairs: true,
	CategoryPolitics:       true,
	CategoryTechnology:     true,
}
