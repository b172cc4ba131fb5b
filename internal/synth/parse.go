package synth

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/deepresearch-ai/deepresearch/internal/rank"
)

// ParseError reports a model response that did not match the expected
// section schema or referenced sources that were never supplied. It is never
// retried: the response is already paid for and a retry would not fix a
// schema mismatch.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "synthesis response did not match expected structure: " + e.Reason
}

var citationRe = regexp.MustCompile(`\[(\d+)\]`)

// Parse validates raw model output against SectionSchema and resolves every
// citation marker against the supplied sources. All schema headings must be
// present in order at H2 level with non-empty bodies, and every [n] must
// fall in 1..len(sources); unresolved markers are an error, never dropped.
func Parse(raw string, sources []rank.Ranked) (Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{}, &ParseError{Reason: "empty response"}
	}

	sections, err := splitSections(raw)
	if err != nil {
		return Result{}, err
	}

	citations := make(map[int]rank.Ranked)
	for _, sec := range sections {
		for _, m := range citationRe.FindAllStringSubmatch(sec.Body, -1) {
			id, convErr := strconv.Atoi(m[1])
			if convErr != nil {
				// Digits too long for int cannot name any source.
				return Result{}, &ParseError{Reason: fmt.Sprintf("citation %s does not resolve to a supplied source (have 1..%d)", m[0], len(sources))}
			}
			if id < 1 || id > len(sources) {
				return Result{}, &ParseError{Reason: fmt.Sprintf("citation [%d] does not resolve to a supplied source (have 1..%d)", id, len(sources))}
			}
			citations[id] = sources[id-1]
		}
	}
	return Result{Sections: sections, Citations: citations}, nil
}

// splitSections walks the markdown headings and matches them against the
// schema in order. A leading title or date above the first schema heading is
// tolerated; extra or reordered schema headings are not.
func splitSections(raw string) ([]Section, error) {
	lines := strings.Split(raw, "\n")

	type block struct {
		heading string
		body    []string
	}
	var blocks []block
	current := -1
	for _, line := range lines {
		if heading, ok := h2Heading(line); ok {
			blocks = append(blocks, block{heading: heading})
			current = len(blocks) - 1
			continue
		}
		if current >= 0 {
			blocks[current].body = append(blocks[current].body, line)
		}
	}

	if len(blocks) != len(SectionSchema) {
		return nil, &ParseError{Reason: fmt.Sprintf("expected %d sections, found %d", len(SectionSchema), len(blocks))}
	}
	sections := make([]Section, 0, len(SectionSchema))
	for i, want := range SectionSchema {
		got := blocks[i].heading
		if !strings.EqualFold(strings.TrimSpace(got), want) {
			return nil, &ParseError{Reason: fmt.Sprintf("section %d: expected heading %q, found %q", i+1, want, got)}
		}
		body := strings.TrimSpace(strings.Join(blocks[i].body, "\n"))
		if body == "" {
			return nil, &ParseError{Reason: fmt.Sprintf("section %q has an empty body", want)}
		}
		sections = append(sections, Section{Heading: want, Body: body})
	}
	return sections, nil
}

func h2Heading(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, "## ") {
		return "", false
	}
	if strings.HasPrefix(s, "###") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(s, "## ")), true
}
