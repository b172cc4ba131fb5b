package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deepresearch-ai/deepresearch/internal/extract"
	"github.com/deepresearch-ai/deepresearch/internal/rank"
	"github.com/deepresearch-ai/deepresearch/internal/report"
	"github.com/deepresearch-ai/deepresearch/internal/synth"
)

func sampleReport() report.Report {
	sources := []rank.Ranked{
		{Source: extract.Source{URL: "https://example.com/a", Title: "First Source", Status: extract.StatusOK}, Score: 0.9},
		{Source: extract.Source{URL: "https://example.com/b", Title: "Second Source", Status: extract.StatusOK}, Score: 0.8},
	}
	return report.Report{
		Topic:       "Sample Topic",
		GeneratedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Sections: []synth.Section{
			{Heading: "Summary", Body: "A claim [1]."},
			{Heading: "Detailed Analysis", Body: "More detail [2]."},
			{Heading: "Applications", Body: "Usage [1]."},
			{Heading: "Future Outlook", Body: "Outlook [2]."},
		},
		Citations:    map[int]rank.Ranked{1: sources[0], 2: sources[1]},
		Bibliography: sources,
	}
}

func TestMarkdown_Structure(t *testing.T) {
	md := Markdown(sampleReport())
	if !strings.HasPrefix(md, "# Sample Topic\n") {
		t.Fatalf("expected H1 title first, got:\n%s", md)
	}
	if !strings.Contains(md, "2026-03-14") {
		t.Fatalf("expected ISO date")
	}
	for _, h := range []string{"## Summary", "## Detailed Analysis", "## Applications", "## Future Outlook", "## References"} {
		if !strings.Contains(md, h) {
			t.Fatalf("expected heading %q", h)
		}
	}
	first := strings.Index(md, "1. First Source — https://example.com/a")
	second := strings.Index(md, "2. Second Source — https://example.com/b")
	if first == -1 || second == -1 || second < first {
		t.Fatalf("references must be numbered in bibliography order:\n%s", md)
	}
}

func TestMarkdown_Deterministic(t *testing.T) {
	rep := sampleReport()
	first := Markdown(rep)
	for i := 0; i < 3; i++ {
		if got := Markdown(rep); got != first {
			t.Fatalf("markdown rendering not deterministic")
		}
	}
}

func TestHTML_WrapsConvertedMarkdown(t *testing.T) {
	out, err := HTML(sampleReport())
	if err != nil {
		t.Fatalf("html render error: %v", err)
	}
	if !strings.Contains(out, "<title>Sample Topic</title>") {
		t.Fatalf("expected escaped title, got:\n%s", out)
	}
	if !strings.Contains(out, "<h2>Summary</h2>") {
		t.Fatalf("expected converted section heading, got:\n%s", out)
	}
	if !strings.Contains(out, "https://example.com/a") {
		t.Fatalf("expected reference URL in output")
	}
}

func TestPDF_WritesFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.pdf")
	if err := PDF(sampleReport(), out); err != nil {
		t.Fatalf("pdf render error: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat pdf: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected non-empty pdf")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Climate change solutions 2024", "Climate_change_solutions_2024"},
		{"what/about: slashes?", "what_about_slashes"},
		{"  spaced   out  ", "spaced_out"},
		{"", "research_report"},
		{"***", "research_report"},
	}
	for _, c := range cases {
		if got := SanitizeFilename(c.in); got != c.want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	long := strings.Repeat("x", 400)
	if got := SanitizeFilename(long); len(got) > 200 {
		t.Fatalf("expected length cap, got %d", len(got))
	}
}
