package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"

	"github.com/deepresearch-ai/deepresearch/internal/report"
)

// HTML renders the report as a standalone HTML page by converting the
// Markdown rendering and wrapping it in a minimal document shell.
func HTML(rep report.Report) (string, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(rep)), &body); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	var sb bytes.Buffer
	sb.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	sb.WriteString(html.EscapeString(rep.Topic))
	sb.WriteString("</title>\n</head>\n<body>\n")
	sb.Write(body.Bytes())
	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}
