// Package rank scores extracted sources for relevance and quality and selects
// the subset fed to synthesis. Scoring is fully deterministic: identical
// inputs always yield identical scores and ordering, with ties broken by the
// original discovery order so citation numbering never depends on extraction
// completion order.
package rank

import (
	"sort"
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/deepresearch-ai/deepresearch/internal/extract"
)

// Ranked is an extracted source with its relevance score attached.
type Ranked struct {
	extract.Source
	Score float64
}

// Options configures selection constraints.
type Options struct {
	// MaxSources caps the selected subset.
	MaxSources int
	// MinQualifying is the minimum number of ok sources required for the run
	// to proceed; fewer yields an empty result.
	MinQualifying int
	// MinContentChars disqualifies extractions shorter than this many
	// characters. Zero applies the default.
	MinContentChars int
}

const (
	defaultMinContentChars = 150
	// fullLengthChars is the body length at which the length term saturates.
	fullLengthChars = 2000

	weightLength   = 0.5
	weightKeywords = 0.4
	// boilerplatePenalty is charged once per distinct marker phrase found,
	// capped at boilerplatePenaltyCap.
	boilerplatePenalty    = 0.15
	boilerplatePenaltyCap = 0.30
)

// Phrases that indicate the extraction captured consent walls or gated pages
// rather than content.
var boilerplateMarkers = []string{
	"accept all cookies",
	"we use cookies",
	"enable javascript",
	"subscribe to continue reading",
	"sign in to continue",
	"this content is for subscribers",
}

// Rank scores every ok source against the topic and returns the top
// MaxSources in descending score order. Sources whose status is not ok, or
// whose body is below the minimum content threshold, never qualify. If fewer
// than MinQualifying sources qualify the result is empty and the caller must
// treat the run as unable to proceed.
func Rank(topic string, sources []extract.Source, opt Options) []Ranked {
	if opt.MaxSources <= 0 {
		opt.MaxSources = 5
	}
	if opt.MinQualifying <= 0 {
		opt.MinQualifying = 1
	}
	minChars := opt.MinContentChars
	if minChars <= 0 {
		minChars = defaultMinContentChars
	}

	topicStems := stemSet(topic)

	qualified := make([]Ranked, 0, len(sources))
	for _, s := range sources {
		if s.Status != extract.StatusOK {
			continue
		}
		if len(s.Body) < minChars {
			continue
		}
		qualified = append(qualified, Ranked{Source: s, Score: score(topicStems, s.Body)})
	}
	if len(qualified) < opt.MinQualifying {
		return nil
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		if qualified[i].Score != qualified[j].Score {
			return qualified[i].Score > qualified[j].Score
		}
		return qualified[i].Discovered < qualified[j].Discovered
	})
	if len(qualified) > opt.MaxSources {
		qualified = qualified[:opt.MaxSources]
	}
	return qualified
}

// score combines a saturating length term, stemmed topic-keyword coverage,
// and a boilerplate penalty. The exact weights are an implementation choice;
// what matters is that the function is pure.
func score(topicStems map[string]struct{}, body string) float64 {
	lengthScore := float64(len(body)) / float64(fullLengthChars)
	if lengthScore > 1 {
		lengthScore = 1
	}

	coverage := 0.0
	if len(topicStems) > 0 {
		bodyStems := stemSet(body)
		hits := 0
		for stem := range topicStems {
			if _, ok := bodyStems[stem]; ok {
				hits++
			}
		}
		coverage = float64(hits) / float64(len(topicStems))
	}

	penalty := 0.0
	lower := strings.ToLower(body)
	for _, marker := range boilerplateMarkers {
		if strings.Contains(lower, marker) {
			penalty += boilerplatePenalty
			if penalty >= boilerplatePenaltyCap {
				penalty = boilerplatePenaltyCap
				break
			}
		}
	}

	s := weightLength*lengthScore + weightKeywords*coverage - penalty
	if s < 0 {
		s = 0
	}
	return s
}

var foldCaser = cases.Fold()

// stemSet tokenizes text into folded, NFC-normalized, stemmed terms with
// English stop words removed.
func stemSet(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, token := range tokenize(text) {
		if len(token) < 3 || snowballeng.IsStopWord(token) {
			continue
		}
		out[snowballeng.Stem(token, false)] = struct{}{}
	}
	return out
}

func tokenize(text string) []string {
	folded := foldCaser.String(norm.NFC.String(text))
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
