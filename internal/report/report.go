// Package report assembles the terminal Report artifact from synthesis
// output and the ranked source set. Assembly is a pure data transformation:
// no I/O, no mutation of inputs.
package report

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/deepresearch-ai/deepresearch/internal/rank"
	"github.com/deepresearch-ai/deepresearch/internal/synth"
)

// Report is the final in-memory artifact handed to renderers. It is never
// mutated after assembly and is discarded when the process ends.
type Report struct {
	Topic       string
	GeneratedAt time.Time
	Sections    []synth.Section
	Citations   map[int]rank.Ranked
	// Bibliography preserves the ranked order used during synthesis so
	// citation numbers in the rendered document match the numbered list.
	Bibliography []rank.Ranked
}

// InvariantError signals an internal consistency failure at assembly time.
// If upstream contracts hold it cannot occur; seeing one means a defect, not
// bad input.
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string {
	return "report invariant violated: " + e.Detail
}

var citationRe = regexp.MustCompile(`\[(\d+)\]`)

// Assemble merges the synthesized sections, citation map, and ranked sources
// into a Report, re-verifying that every citation marker in the section
// bodies resolves to a citation entry and a bibliography position. It fails
// fast with an InvariantError rather than emitting an inconsistent report.
func Assemble(topic string, result synth.Result, ranked []rank.Ranked, now time.Time) (Report, error) {
	if len(result.Sections) == 0 {
		return Report{}, &InvariantError{Detail: "synthesis result has no sections"}
	}
	for _, sec := range result.Sections {
		for _, m := range citationRe.FindAllStringSubmatch(sec.Body, -1) {
			id, err := strconv.Atoi(m[1])
			if err != nil {
				// Digits too long for int cannot name any bibliography entry.
				return Report{}, &InvariantError{Detail: fmt.Sprintf("section %q cites %s which has no citation entry", sec.Heading, m[0])}
			}
			cited, ok := result.Citations[id]
			if !ok {
				return Report{}, &InvariantError{Detail: fmt.Sprintf("section %q cites [%d] which has no citation entry", sec.Heading, id)}
			}
			if id < 1 || id > len(ranked) {
				return Report{}, &InvariantError{Detail: fmt.Sprintf("citation [%d] has no bibliography position (have %d sources)", id, len(ranked))}
			}
			if ranked[id-1].URL != cited.URL {
				return Report{}, &InvariantError{Detail: fmt.Sprintf("citation [%d] maps to %s but bibliography position %d is %s", id, cited.URL, id, ranked[id-1].URL)}
			}
		}
	}

	bib := make([]rank.Ranked, len(ranked))
	copy(bib, ranked)
	sections := make([]synth.Section, len(result.Sections))
	copy(sections, result.Sections)
	citations := make(map[int]rank.Ranked, len(result.Citations))
	for id, src := range result.Citations {
		citations[id] = src
	}

	return Report{
		Topic:        topic,
		GeneratedAt:  now.UTC(),
		Sections:     sections,
		Citations:    citations,
		Bibliography: bib,
	}, nil
}
