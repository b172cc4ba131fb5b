package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/deepresearch-ai/deepresearch/internal/fetch"
	"github.com/deepresearch-ai/deepresearch/internal/search"
)

func TestFromHTML_PrefersMainOverBody(t *testing.T) {
	page := `<!doctype html>
	<html>
	  <head><title>Test Page</title></head>
	  <body>
	    <nav>Nav should be ignored</nav>
	    <main>
	      <h1>Main Heading</h1>
	      <p>This is the main content paragraph.</p>
	    </main>
	    <footer>Footer text</footer>
	  </body>
	</html>`

	doc := FromHTML([]byte(page))
	if doc.Title != "Test Page" {
		t.Fatalf("expected title 'Test Page', got %q", doc.Title)
	}
	if !strings.Contains(doc.Text, "Main Heading") {
		t.Fatalf("expected to contain main heading")
	}
	if !strings.Contains(doc.Text, "This is the main content paragraph.") {
		t.Fatalf("expected to contain main paragraph")
	}
	if strings.Contains(doc.Text, "Nav should be ignored") {
		t.Fatalf("did not expect nav text in extracted content")
	}
	if strings.Contains(doc.Text, "Footer text") {
		t.Fatalf("did not expect footer text in extracted content")
	}
}

func TestFromHTML_SkipsConsentBanner(t *testing.T) {
	page := `<html><head><title>x</title></head><body>
	  <div class="cookie-consent-banner">We value your privacy. Accept cookies?</div>
	  <article><p>Actual article text here.</p></article>
	</body></html>`

	doc := FromHTML([]byte(page))
	if strings.Contains(doc.Text, "privacy") {
		t.Fatalf("expected consent banner to be dropped, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Actual article text here.") {
		t.Fatalf("expected article text, got %q", doc.Text)
	}
}

func TestFromHTML_Deterministic(t *testing.T) {
	page := `<html><head><title>t</title></head><body><main>
	  <p>First paragraph with some words.</p>
	  <ul><li>one</li><li>two</li></ul>
	</main></body></html>`

	first := FromHTML([]byte(page))
	for i := 0; i < 5; i++ {
		if got := FromHTML([]byte(page)); got.Text != first.Text {
			t.Fatalf("extraction not deterministic: %q vs %q", got.Text, first.Text)
		}
	}
}

func TestTruncateAtBoundary_PrefersSentenceEnd(t *testing.T) {
	text := "This is the first sentence. This is the second sentence that will be cut somewhere in the middle of it"
	got := TruncateAtBoundary(text, 60)
	if got != "This is the first sentence." {
		t.Fatalf("expected cut at sentence end, got %q", got)
	}
}

func TestTruncateAtBoundary_PrefersParagraphBreak(t *testing.T) {
	text := "First paragraph here.\n\nSecond paragraph keeps going with more and more words to push past the limit"
	got := TruncateAtBoundary(text, 80)
	if got != "First paragraph here." {
		t.Fatalf("expected cut at paragraph break, got %q", got)
	}
}

func TestTruncateAtBoundary_NoOpUnderLimit(t *testing.T) {
	text := "short text"
	if got := TruncateAtBoundary(text, 100); got != text {
		t.Fatalf("expected unchanged text, got %q", got)
	}
}

func TestTruncateAtBoundary_WordBoundaryFallback(t *testing.T) {
	text := strings.Repeat("word ", 100) // no sentence punctuation
	got := TruncateAtBoundary(text, 52)
	if len(got) > 52 {
		t.Fatalf("result exceeds limit: %d", len(got))
	}
	if strings.HasSuffix(got, "wor") {
		t.Fatalf("expected cut between words, got %q", got)
	}
}

func TestTruncateAtBoundary_Idempotent(t *testing.T) {
	text := strings.Repeat("A sentence that fills space. ", 40)
	first := TruncateAtBoundary(text, 300)
	for i := 0; i < 3; i++ {
		if got := TruncateAtBoundary(text, 300); got != first {
			t.Fatalf("truncation not deterministic")
		}
	}
}

func TestExtractor_OKSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Page Title</title></head><body><main><p>Body content sentence.</p></main></body></html>`))
	}))
	defer srv.Close()

	e := &Extractor{Client: &fetch.Client{HTTPClient: srv.Client()}, ContentLength: 1000}
	src := e.Extract(context.Background(), search.Result{URL: srv.URL, Title: "fallback"}, 3)
	if src.Status != StatusOK {
		t.Fatalf("expected ok status, got %v (%s)", src.Status, src.FailureReason)
	}
	if src.Title != "Page Title" {
		t.Fatalf("expected page title to win over search title, got %q", src.Title)
	}
	if !strings.Contains(src.Body, "Body content sentence.") {
		t.Fatalf("unexpected body: %q", src.Body)
	}
	if src.Discovered != 3 {
		t.Fatalf("expected discovery index preserved, got %d", src.Discovered)
	}
	if src.FetchedAt.IsZero() {
		t.Fatalf("expected fetched_at to be stamped")
	}
}

func TestExtractor_SkipsBinary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
	}))
	defer srv.Close()

	e := &Extractor{Client: &fetch.Client{HTTPClient: srv.Client()}, ContentLength: 1000}
	src := e.Extract(context.Background(), search.Result{URL: srv.URL, Title: "a video"}, 0)
	if src.Status != StatusSkipped {
		t.Fatalf("expected skipped, got %v", src.Status)
	}
	if src.FailureReason == "" {
		t.Fatalf("expected failure reason populated")
	}
}

func TestExtractor_TimeoutBecomesFailed(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	e := &Extractor{
		Client:        &fetch.Client{HTTPClient: srv.Client()},
		ContentLength: 1000,
		Timeout:       50 * time.Millisecond,
	}
	start := time.Now()
	src := e.Extract(context.Background(), search.Result{URL: srv.URL, Title: "slow page"}, 0)
	if src.Status != StatusFailed {
		t.Fatalf("expected failed, got %v", src.Status)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout did not bound the extraction")
	}
}

func TestExtractor_CapsBodyLength(t *testing.T) {
	long := strings.Repeat("A filler sentence for the page. ", 200)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><main><p>" + long + "</p></main></body></html>"))
	}))
	defer srv.Close()

	e := &Extractor{Client: &fetch.Client{HTTPClient: srv.Client()}, ContentLength: 500}
	src := e.Extract(context.Background(), search.Result{URL: srv.URL, Title: "long page"}, 0)
	if src.Status != StatusOK {
		t.Fatalf("expected ok, got %v", src.Status)
	}
	if len(src.Body) > 500 {
		t.Fatalf("body exceeds content length cap: %d", len(src.Body))
	}
}
