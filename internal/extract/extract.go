package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Document is a simplified representation of extracted page content.
type Document struct {
	Title string
	Text  string
}

// Elements whose subtree is never readable body content.
var skippedElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"nav":      {},
	"header":   {},
	"footer":   {},
	"aside":    {},
	"iframe":   {},
	"form":     {},
}

// FromHTML extracts readable text from HTML, preferring <main> or <article>
// and falling back to <body>. Headings, paragraphs, and list items keep their
// line breaks; navigation, scripts, and consent banners are dropped. The
// result is deterministic for identical input.
func FromHTML(input []byte) Document {
	root, err := html.Parse(bytes.NewReader(input))
	if err != nil || root == nil {
		return Document{}
	}

	title := strings.TrimSpace(pageTitle(root))
	content := firstElement(root, "main")
	if content == nil {
		content = firstElement(root, "article")
	}
	if content == nil {
		content = firstElement(root, "body")
	}
	var b strings.Builder
	if content != nil {
		walkText(&b, content)
	}
	return Document{Title: title, Text: normalizeWhitespace(b.String())}
}

func pageTitle(root *html.Node) string {
	head := firstElement(root, "head")
	if head == nil {
		return ""
	}
	t := firstElement(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return t.FirstChild.Data
}

func firstElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := firstElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func walkText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		if _, skip := skippedElements[name]; skip {
			return
		}
		if isConsentContainer(n) {
			return
		}
		switch name {
		case "br", "hr", "ul", "ol", "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "tr", "blockquote", "pre":
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		data := strings.ReplaceAll(n.Data, "\t", " ")
		data = strings.ReplaceAll(data, "\r", " ")
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(b, c)
	}

	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre":
			b.WriteString("\n\n")
		case "li", "tr":
			b.WriteString("\n")
		}
	}
}

// isConsentContainer returns true when the element looks like a cookie or
// consent banner based on id/class/aria markers.
func isConsentContainer(n *html.Node) bool {
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && key != "role" && key != "aria-label" && !strings.HasPrefix(key, "data-") {
			continue
		}
		val := strings.ToLower(attr.Val)
		for _, marker := range []string{"cookie", "consent", "gdpr", "paywall", "subscribe-wall"} {
			if strings.Contains(val, marker) {
				return true
			}
		}
	}
	return false
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// keep at most one consecutive blank
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
