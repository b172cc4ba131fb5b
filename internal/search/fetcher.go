package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// Fetcher turns a research topic into a deduplicated candidate set by
// expanding the topic into query variants, fanning them out to the provider,
// and merging the grouped results. A per-query transport failure only narrows
// the candidate set; Fetch fails only when every query fails.
type Fetcher struct {
	Provider Provider
	// PerQueryLimit caps hits requested per query variant. Zero means a
	// provider-side default.
	PerQueryLimit int
}

// ErrAllQueriesFailed indicates the provider returned a transport error for
// every query variant, so no candidate set could be discovered at all.
var ErrAllQueriesFailed = errors.New("all search queries failed")

// Hosts that consistently resist extraction or carry little citable text.
// Results on these hosts are dropped before deduplication.
var lowQualityHosts = []string{
	"pinterest.com",
	"instagram.com",
	"facebook.com",
	"twitter.com",
	"x.com",
	"tiktok.com",
	"reddit.com",
}

// Fetch returns up to maxResults distinct candidates for the topic, ordered
// by discovery. Zero results is not an error; the caller decides whether the
// run can proceed.
func (f *Fetcher) Fetch(ctx context.Context, topic string, maxResults int) ([]Result, error) {
	if f == nil || f.Provider == nil {
		return nil, fmt.Errorf("search fetcher not configured")
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("maxResults must be positive, got %d", maxResults)
	}
	perQuery := f.PerQueryLimit
	if perQuery <= 0 {
		perQuery = maxResults
	}

	queries := BuildQueries(topic)
	groups := make([][]Result, 0, len(queries))
	failures := 0
	for _, q := range queries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		results, err := f.Provider.Search(ctx, q, perQuery)
		if err != nil {
			failures++
			log.Warn().Err(err).Str("query", q).Msg("search query failed")
			continue
		}
		groups = append(groups, results)
	}
	if failures == len(queries) {
		return nil, ErrAllQueriesFailed
	}

	merged := mergeAndDedupe(groups)
	if len(merged) > maxResults {
		merged = merged[:maxResults]
	}
	return merged, nil
}

// siteQueryDomains caps how many site-targeted variants one run issues.
const siteQueryDomains = 3

// BuildQueries expands a topic into a bounded set of query variants: the
// topic itself, an exact-phrase form, site-targeted queries against the
// detected category's outlets, category-biased keywords, broadening
// modifiers, and recency modifiers for time-sensitive categories. Order is
// stable so discovery order is stable; duplicates collapse.
func BuildQueries(topic string) []string {
	topic = strings.TrimSpace(topic)
	category := DetectCategory(topic)

	seen := map[string]struct{}{}
	queries := make([]string, 0, 16)
	add := func(q string) {
		if _, dup := seen[q]; dup {
			return
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}

	add(topic)
	if strings.ContainsRune(topic, ' ') {
		add(`"` + topic + `"`)
	}
	domains := categoryDomains[category]
	if len(domains) > siteQueryDomains {
		domains = domains[:siteQueryDomains]
	}
	for _, domain := range domains {
		add(topic + " site:" + domain)
	}
	for _, kw := range categoryKeywords[category] {
		add(topic + " " + kw)
	}
	for _, mod := range []string{"analysis", "research", "comprehensive overview"} {
		add(topic + " " + mod)
	}
	if recencyCategories[category] {
		for _, mod := range []string{"latest", "recent"} {
			add(topic + " " + mod)
		}
	}
	return queries
}

// mergeAndDedupe flattens result groups in query order, drops low-quality
// hosts and junk titles, and keeps the first hit per normalized URL.
func mergeAndDedupe(groups [][]Result) []Result {
	seen := map[string]struct{}{}
	out := make([]Result, 0, 32)
	for _, g := range groups {
		for _, r := range g {
			if !usableResult(r) {
				continue
			}
			key, ok := NormalizeURL(r.URL)
			if !ok {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

func usableResult(r Result) bool {
	if strings.TrimSpace(r.URL) == "" {
		return false
	}
	title := strings.ToLower(strings.TrimSpace(r.Title))
	if len(title) < 10 {
		return false
	}
	switch title {
	case "no title", "untitled", "page not found":
		return false
	}
	u, err := url.Parse(r.URL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, bad := range lowQualityHosts {
		if host == bad || strings.HasSuffix(host, "."+bad) {
			return false
		}
	}
	return true
}

// NormalizeURL reduces a URL to its dedupe key: lowercase scheme and host,
// default ports dropped, path with the trailing slash trimmed. Query strings
// and fragments are treated as variance and ignored. The second return is
// false when the URL does not parse or has no host.
func NormalizeURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	if (scheme == "http" && strings.HasSuffix(host, ":80")) || (scheme == "https" && strings.HasSuffix(host, ":443")) {
		host = u.Hostname()
	}
	path := u.EscapedPath()
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	return scheme + "://" + host + path, true
}
