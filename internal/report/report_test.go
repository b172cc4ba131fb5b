package report

import (
	"errors"
	"testing"
	"time"

	"github.com/deepresearch-ai/deepresearch/internal/extract"
	"github.com/deepresearch-ai/deepresearch/internal/rank"
	"github.com/deepresearch-ai/deepresearch/internal/synth"
)

func ranked(n int) []rank.Ranked {
	out := make([]rank.Ranked, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, rank.Ranked{
			Source: extract.Source{
				URL:    "https://example.com/" + string(rune('a'+i)),
				Title:  "Source " + string(rune('A'+i)),
				Status: extract.StatusOK,
			},
			Score: 1 - float64(i)*0.1,
		})
	}
	return out
}

func validResult(sources []rank.Ranked) synth.Result {
	return synth.Result{
		Sections: []synth.Section{
			{Heading: "Summary", Body: "Finding one [1]."},
			{Heading: "Detailed Analysis", Body: "Detail citing [1] and [2]."},
			{Heading: "Applications", Body: "Usage [2]."},
			{Heading: "Future Outlook", Body: "Outlook [1]."},
		},
		Citations: map[int]rank.Ranked{1: sources[0], 2: sources[1]},
	}
}

func TestAssemble_PreservesBibliographyOrder(t *testing.T) {
	sources := ranked(3)
	rep, err := Assemble("topic", validResult(sources), sources, time.Now())
	if err != nil {
		t.Fatalf("assemble error: %v", err)
	}
	if len(rep.Bibliography) != 3 {
		t.Fatalf("expected full bibliography, got %d", len(rep.Bibliography))
	}
	for i := range sources {
		if rep.Bibliography[i].URL != sources[i].URL {
			t.Fatalf("bibliography order diverged at %d", i)
		}
	}
	if rep.GeneratedAt.IsZero() {
		t.Fatalf("expected generated_at to be stamped")
	}
}

func TestAssemble_DanglingCitationFailsFast(t *testing.T) {
	sources := ranked(2)
	res := validResult(sources)
	delete(res.Citations, 2)
	_, err := Assemble("topic", res, sources, time.Now())
	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvariantError for dangling citation, got %v", err)
	}
}

func TestAssemble_OverlongCitationDigitsRejected(t *testing.T) {
	sources := ranked(2)
	res := validResult(sources)
	res.Sections[0].Body = "Finding one [99999999999999999999]."
	_, err := Assemble("topic", res, sources, time.Now())
	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvariantError for unresolvable citation digits, got %v", err)
	}
}

func TestAssemble_CitationBeyondBibliography(t *testing.T) {
	sources := ranked(2)
	res := validResult(sources)
	// Citation entry exists but the bibliography is shorter than the id.
	res.Citations[5] = sources[0]
	res.Sections[0].Body += " And another claim [5]."
	_, err := Assemble("topic", res, sources, time.Now())
	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvariantError for out-of-range citation, got %v", err)
	}
}

func TestAssemble_CitationSourceMismatch(t *testing.T) {
	sources := ranked(2)
	res := validResult(sources)
	// Swap the mapping so [1] points at the second-ranked source.
	res.Citations[1] = sources[1]
	_, err := Assemble("topic", res, sources, time.Now())
	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvariantError for mismatched citation, got %v", err)
	}
}

func TestAssemble_EmptySectionsRejected(t *testing.T) {
	sources := ranked(1)
	_, err := Assemble("topic", synth.Result{}, sources, time.Now())
	if err == nil {
		t.Fatalf("expected error for empty synthesis result")
	}
}
