package extract

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/deepresearch-ai/deepresearch/internal/fetch"
	"github.com/deepresearch-ai/deepresearch/internal/search"
)

// Status classifies the outcome of one extraction attempt.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Source is the record produced for every candidate URL attempted. It is
// never mutated after creation; downstream stages copy what they need.
type Source struct {
	URL           string
	Title         string
	Body          string
	FetchedAt     time.Time
	Status        Status
	FailureReason string
	// Discovered is the zero-based position in the original candidate set,
	// kept so downstream tie-breaking never depends on completion order.
	Discovered int
}

// Extractor retrieves a page and reduces it to a bounded plain-text Source.
type Extractor struct {
	Client *fetch.Client
	// ContentLength caps Body characters per source.
	ContentLength int
	// Timeout bounds one extraction end to end. Zero means the caller's
	// context is the only bound.
	Timeout time.Duration
	// now is a test seam.
	now func() time.Time
}

// Extract fetches one candidate and returns its Source. Failures are encoded
// in the record's Status, never returned as an error: a failed or skipped
// source is still a result for the batch.
func (e *Extractor) Extract(ctx context.Context, candidate search.Result, discovered int) Source {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	src := Source{
		URL:        candidate.URL,
		Title:      candidate.Title,
		FetchedAt:  now().UTC(),
		Discovered: discovered,
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	page, err := e.Client.Get(ctx, candidate.URL)
	if err != nil {
		if errors.Is(err, fetch.ErrUnsupportedContentType) {
			src.Status = StatusSkipped
		} else {
			src.Status = StatusFailed
		}
		src.FailureReason = err.Error()
		return src
	}

	var text string
	if strings.HasPrefix(strings.ToLower(page.ContentType), "text/plain") {
		text = normalizeWhitespace(string(page.Body))
	} else {
		doc := FromHTML(page.Body)
		text = doc.Text
		if doc.Title != "" {
			src.Title = doc.Title
		}
	}
	if strings.TrimSpace(text) == "" {
		src.Status = StatusFailed
		src.FailureReason = "no extractable text"
		return src
	}
	src.Body = TruncateAtBoundary(text, e.ContentLength)
	src.Status = StatusOK
	return src
}
